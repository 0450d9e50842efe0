package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/involex/involex/pkg/common"
	"github.com/involex/involex/pkg/types"
)

// LoggingBrowser is the default tab collaborator in headless runs: it logs
// the URL and emits an event so an attached UI surface can open the real tab
// and report navigations back.
type LoggingBrowser struct {
	eventBus *common.EventBus
}

func NewLoggingBrowser(eventBus *common.EventBus) *LoggingBrowser {
	return &LoggingBrowser{eventBus: eventBus}
}

func (b *LoggingBrowser) OpenTab(ctx context.Context, url string) (string, error) {
	tabID := common.GenerateTabID()
	log.Info().Str("tab_id", tabID).Str("url", url).Msg("auth tab requested")

	if b.eventBus != nil {
		b.eventBus.Emit(common.Event{
			Type: common.EventTabOpen,
			Data: map[string]any{"tab_id": tabID, "url": url},
		})
	}
	return tabID, nil
}

func (b *LoggingBrowser) CloseTab(ctx context.Context, tabID string) error {
	log.Info().Str("tab_id", tabID).Msg("auth tab close requested")
	if b.eventBus != nil {
		b.eventBus.Emit(common.Event{
			Type: common.EventTabClose,
			Data: map[string]any{"tab_id": tabID},
		})
	}
	return nil
}

// ReadBody cannot observe a page without a UI attached; wire a real
// PageReader through WithPageReader for the auth flow to complete.
func (b *LoggingBrowser) ReadBody(ctx context.Context, tabID string) (string, error) {
	return "", fmt.Errorf("no page reader attached for tab %s", tabID)
}

// LogNotifier reports intent outcomes in the agent log.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SubmissionSucceeded(surfaceID string, result *types.SubmissionResult) {
	log.Info().
		Str("surface_id", surfaceID).
		Int("word_count_original", result.OriginalWordCount).
		Int("word_count_summary", result.SummaryWordCount).
		Msg("email analyzed")
}

func (n *LogNotifier) SubmissionFailed(surfaceID string, err error) {
	log.Warn().Str("surface_id", surfaceID).Err(err).Msg("analysis failed")
}

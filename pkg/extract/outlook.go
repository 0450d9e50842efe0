package extract

import (
	"strings"

	"github.com/involex/involex/pkg/dom"
	"github.com/involex/involex/pkg/types"
)

var (
	outlookRecipientStrategies = []fieldStrategy{
		{selector: `[data-automation-id=to-field] input`, attrs: []string{"value"}, requireAt: true},
		{selector: `[placeholder*=To] input`, attrs: []string{"value"}, requireAt: true},
	}

	outlookSubjectStrategies = []fieldStrategy{
		{selector: `[data-automation-id=subject-field] input`, attrs: []string{"value"}},
		{selector: `input[placeholder*=Subject]`, attrs: []string{"value"}},
	}

	outlookBodyStrategies = []fieldStrategy{
		{selector: `[data-automation-id=editor] [contenteditable=true]`},
		{selector: `[contenteditable=true]`},
	}

	outlookSenderStrategies = []fieldStrategy{
		{selector: `[data-automation-id=primaryAccountDisplayName]`, attrs: []string{"title"}, requireAt: true},
		{selector: `[title*=@]`, attrs: []string{"title"}, requireAt: true},
	}
)

type OutlookExtractor struct{}

func NewOutlookExtractor() *OutlookExtractor { return &OutlookExtractor{} }

func (e *OutlookExtractor) Platform() types.Platform { return types.PlatformOutlook }

func (e *OutlookExtractor) Extract(region *dom.Node) *types.EmailDraft {
	if region == nil {
		return nil
	}

	recipient := firstValue(region, outlookRecipientStrategies)
	if recipient == "" {
		recipient = scanForEmail(region)
	}

	subject := firstValue(region, outlookSubjectStrategies)

	body := ""
	for _, s := range outlookBodyStrategies {
		if n := region.Query(s.selector); n != nil {
			body = strings.TrimSpace(n.FullText())
			break
		}
	}

	sender := firstValue(documentRoot(region), outlookSenderStrategies)

	draft := &types.EmailDraft{
		Body:             body,
		SenderAddress:    sender,
		RecipientAddress: recipient,
		Subject:          subject,
	}
	if emptyDraft(draft) {
		return nil
	}
	return draft
}

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/involex/involex/pkg/common"
	"github.com/involex/involex/pkg/repository"
	"github.com/involex/involex/pkg/types"
)

const DefaultRequestTimeout = 25 * time.Second

// SessionSource exposes the current practice-management session to the
// submission path. Implementations return ErrNotAuthenticated (or
// ErrSessionExpired) when no session is usable; the client treats both as
// "submit without session fields".
type SessionSource interface {
	Current(ctx context.Context) (*types.Session, error)
}

// SubmissionClient sends validated drafts to the summarization endpoint and
// records successful submissions in the bounded history.
type SubmissionClient struct {
	httpClient *http.Client
	sessions   SessionSource
	settings   repository.SettingsRepository
	history    repository.HistoryRepository
	eventBus   *common.EventBus
}

func NewSubmissionClient(config types.APIConfig, sessions SessionSource, settings repository.SettingsRepository, history repository.HistoryRepository, eventBus *common.EventBus) *SubmissionClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &SubmissionClient{
		httpClient: &http.Client{Timeout: timeout},
		sessions:   sessions,
		settings:   settings,
		history:    history,
		eventBus:   eventBus,
	}
}

type summarizeRequest struct {
	Body             string `json:"email_content"`
	SenderAddress    string `json:"sender_email"`
	RecipientAddress string `json:"recipient_email"`
	Subject          string `json:"subject"`
	MatterID         string `json:"matter_id,omitempty"`
}

// Submit sends the draft for summarization. When a session is established,
// the authenticated identity overrides the extracted sender and the selected
// matter rides along as matter_id. Success is recorded in the history before
// returning.
func (c *SubmissionClient) Submit(ctx context.Context, draft *types.ValidatedDraft) (*types.SubmissionResult, error) {
	settings, err := c.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	req := summarizeRequest{
		Body:             draft.Body,
		SenderAddress:    draft.SenderAddress,
		RecipientAddress: draft.RecipientAddress,
		Subject:          draft.Subject,
	}

	if session, err := c.sessions.Current(ctx); err == nil && session != nil {
		req.SenderAddress = session.UserIdentity
		req.MatterID = session.SelectedMatterID
	} else if err != nil && !errors.Is(err, types.ErrNotAuthenticated) && !errors.Is(err, types.ErrSessionExpired) {
		log.Warn().Err(err).Msg("session lookup failed, submitting without session fields")
	}

	if req.Body == "" || req.RecipientAddress == "" || req.SenderAddress == "" {
		return nil, types.ErrInvalidInput
	}

	result, err := c.summarize(ctx, settings.APIURL, &req)
	if err != nil {
		return nil, err
	}

	record := &types.AnalysisRecord{
		Timestamp: time.Now(),
		Draft: types.EmailDraft{
			Body:             req.Body,
			SenderAddress:    req.SenderAddress,
			RecipientAddress: req.RecipientAddress,
			Subject:          req.Subject,
		},
		Result: *result,
	}
	if err := c.record(ctx, record, settings.MaxStoredAnalyses); err != nil {
		// The summary already exists remotely; losing the local history
		// entry is not worth failing the submission over.
		log.Error().Err(err).Msg("failed to record analysis")
	}

	return result, nil
}

func (c *SubmissionClient) summarize(ctx context.Context, url string, payload *summarizeRequest) (*types.SubmissionResult, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, types.ErrRemoteTimeout
		}
		return nil, &types.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.TransportError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &types.HTTPError{Status: resp.StatusCode, Body: errorDetail(body)}
	}

	var result types.SubmissionResult
	if err := json.Unmarshal(body, &result); err != nil || result.Summary == "" {
		return nil, fmt.Errorf("%w: %s", types.ErrMalformedResponse, truncate(string(body), 200))
	}
	return &result, nil
}

func (c *SubmissionClient) record(ctx context.Context, record *types.AnalysisRecord, maxStored int) error {
	if err := c.history.Add(ctx, record); err != nil {
		return err
	}
	if removed, err := c.history.Prune(ctx, maxStored); err != nil {
		log.Warn().Err(err).Msg("history prune failed")
	} else if removed > 0 {
		log.Debug().Int("removed", removed).Msg("pruned analysis history")
	}

	if c.eventBus != nil {
		c.eventBus.Emit(common.Event{
			Type: common.EventAnalysisStored,
			Data: map[string]any{"subject": record.Draft.Subject},
		})
	}
	return nil
}

// errorDetail pulls the server's message out of a failure body. The endpoint
// answers some failures with JSON {detail} or {message} and others with
// plain text.
func errorDetail(body []byte) string {
	var payload struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(body))
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

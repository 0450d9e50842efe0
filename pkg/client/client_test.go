package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/involex/involex/pkg/repository"
	"github.com/involex/involex/pkg/types"
)

type stubSessions struct {
	session *types.Session
	err     error
}

func (s *stubSessions) Current(ctx context.Context) (*types.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func sampleDraft() *types.ValidatedDraft {
	return &types.ValidatedDraft{
		EmailDraft: types.EmailDraft{
			Body:             "Dear Mr. Smith, following up on the contract review we discussed.",
			SenderAddress:    "lawyer@firm.com",
			RecipientAddress: "client@example.com",
			Subject:          "Contract Review",
		},
		Fingerprint: "abc123",
	}
}

func newTestClient(t *testing.T, url string, sessions SessionSource) (*SubmissionClient, repository.HistoryRepository) {
	t.Helper()

	config := types.AppConfig{
		API: types.APIConfig{SummarizeURL: url, Timeout: 5 * time.Second},
		Analysis: types.AnalysisConfig{
			MinContentLength:     10,
			MaxStoredAnalyses:    50,
			NotificationDuration: 8 * time.Second,
		},
	}
	kv := repository.NewMemoryKV()
	history := repository.NewKVHistoryRepository(kv, nil)
	settings := repository.NewKVSettingsRepository(kv, config)
	return NewSubmissionClient(config.API, sessions, settings, history, nil), history
}

func summarizeHandler(t *testing.T, capture *summarizeRequest) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		json.NewEncoder(w).Encode(types.SubmissionResult{
			Summary:               "Follow-up on contract review.",
			OriginalWordCount:     11,
			SummaryWordCount:      4,
			ProcessingTimeSeconds: 0.3,
		})
	}
}

func TestSubmitSuccess(t *testing.T) {
	var got summarizeRequest
	srv := httptest.NewServer(summarizeHandler(t, &got))
	defer srv.Close()

	c, history := newTestClient(t, srv.URL, &stubSessions{err: types.ErrNotAuthenticated})

	result, err := c.Submit(context.Background(), sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, "Follow-up on contract review.", result.Summary)
	assert.Equal(t, 11, result.OriginalWordCount)

	assert.Equal(t, "lawyer@firm.com", got.SenderAddress)
	assert.Equal(t, "client@example.com", got.RecipientAddress)
	assert.Empty(t, got.MatterID)

	count, err := history.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSubmitInjectsSessionFields(t *testing.T) {
	var got summarizeRequest
	srv := httptest.NewServer(summarizeHandler(t, &got))
	defer srv.Close()

	sessions := &stubSessions{session: &types.Session{
		UserIdentity:     "jane@firm.com",
		EstablishedAt:    time.Now(),
		SelectedMatterID: "matter-77",
	}}
	c, _ := newTestClient(t, srv.URL, sessions)

	_, err := c.Submit(context.Background(), sampleDraft())
	require.NoError(t, err)

	assert.Equal(t, "jane@firm.com", got.SenderAddress, "session identity overrides extracted sender")
	assert.Equal(t, "matter-77", got.MatterID)
}

func TestSubmitInvalidInputSkipsNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c, history := newTestClient(t, srv.URL, &stubSessions{err: types.ErrNotAuthenticated})

	draft := sampleDraft()
	draft.RecipientAddress = ""
	_, err := c.Submit(context.Background(), draft)
	assert.ErrorIs(t, err, types.ErrInvalidInput)
	assert.False(t, called)

	count, err := history.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count, "failed submissions are not recorded")
}

func TestSubmitHTTPErrorBodies(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		detail string
	}{
		{"json detail", 422, `{"detail": "content too short"}`, "content too short"},
		{"json message", 500, `{"message": "internal error"}`, "internal error"},
		{"plain text", 503, "Service Unavailable", "Service Unavailable"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c, _ := newTestClient(t, srv.URL, &stubSessions{err: types.ErrNotAuthenticated})

			_, err := c.Submit(context.Background(), sampleDraft())
			var httpErr *types.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tc.status, httpErr.Status)
			assert.Equal(t, tc.detail, httpErr.Body)
		})
	}
}

func TestSubmitMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "<html>login page</html>"},
		{"empty object", "{}"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			c, history := newTestClient(t, srv.URL, &stubSessions{err: types.ErrNotAuthenticated})

			_, err := c.Submit(context.Background(), sampleDraft())
			assert.ErrorIs(t, err, types.ErrMalformedResponse)

			count, err := history.Count(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 0, count)
		})
	}
}

func TestSubmitTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c, _ := newTestClient(t, srv.URL, &stubSessions{err: types.ErrNotAuthenticated})

	_, err := c.Submit(context.Background(), sampleDraft())
	var te *types.TransportError
	assert.ErrorAs(t, err, &te)
}

func TestSubmitTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	config := types.APIConfig{SummarizeURL: srv.URL, Timeout: 100 * time.Millisecond}
	kv := repository.NewMemoryKV()
	c := NewSubmissionClient(config, &stubSessions{err: types.ErrNotAuthenticated},
		repository.NewKVSettingsRepository(kv, types.AppConfig{
			API:      config,
			Analysis: types.AnalysisConfig{MinContentLength: 10, MaxStoredAnalyses: 50, NotificationDuration: 8 * time.Second},
		}),
		repository.NewKVHistoryRepository(kv, nil), nil)

	_, err := c.Submit(context.Background(), sampleDraft())
	assert.ErrorIs(t, err, types.ErrRemoteTimeout)
}

func TestSubmitPrunesHistory(t *testing.T) {
	var got summarizeRequest
	srv := httptest.NewServer(summarizeHandler(t, &got))
	defer srv.Close()

	config := types.AppConfig{
		API: types.APIConfig{SummarizeURL: srv.URL, Timeout: 5 * time.Second},
		Analysis: types.AnalysisConfig{
			MinContentLength:     10,
			MaxStoredAnalyses:    10, // validation floor
			NotificationDuration: 8 * time.Second,
		},
	}
	kv := repository.NewMemoryKV()
	history := repository.NewKVHistoryRepository(kv, nil)
	c := NewSubmissionClient(config.API, &stubSessions{err: types.ErrNotAuthenticated},
		repository.NewKVSettingsRepository(kv, config), history, nil)

	for i := 0; i < 13; i++ {
		draft := sampleDraft()
		_, err := c.Submit(context.Background(), draft)
		require.NoError(t, err)
		time.Sleep(time.Millisecond) // distinct unix-nano keys
	}

	count, err := history.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestSubmitSessionLookupErrorDoesNotBlock(t *testing.T) {
	var got summarizeRequest
	srv := httptest.NewServer(summarizeHandler(t, &got))
	defer srv.Close()

	c, _ := newTestClient(t, srv.URL, &stubSessions{err: errors.New("redis down")})

	_, err := c.Submit(context.Background(), sampleDraft())
	require.NoError(t, err)
	assert.Equal(t, "lawyer@firm.com", got.SenderAddress)
}

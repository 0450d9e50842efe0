package types

import (
	"errors"
	"fmt"
)

// Soft failures: absorbed below the watcher, never block the native send.
var (
	// ErrExtractionFailed means no selector strategy produced a usable draft.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrValidationFailed means the draft did not meet minimum quality rules.
	ErrValidationFailed = errors.New("draft failed validation")

	// ErrDuplicateDraft means the draft's fingerprint matches the most
	// recently analyzed one.
	ErrDuplicateDraft = errors.New("duplicate draft")
)

// Messenger failures.
var (
	// ErrChannelDown means the background context is unreachable. Surfaced to
	// the user with a "reload" affordance.
	ErrChannelDown = errors.New("background channel unreachable")

	// ErrMessageTimeout means the caller-side timeout won the race against
	// the reply channel. The call is not retried automatically.
	ErrMessageTimeout = errors.New("message timed out")
)

// Remote submission failures.
var (
	// ErrInvalidInput means required fields were still missing after session
	// injection; no network call was made.
	ErrInvalidInput = errors.New("submission missing required fields")

	// ErrRemoteTimeout means the summarization endpoint did not answer
	// within the configured timeout.
	ErrRemoteTimeout = errors.New("remote call timed out")

	// ErrMalformedResponse means the endpoint returned 2xx with a body that
	// does not decode as a SubmissionResult.
	ErrMalformedResponse = errors.New("malformed remote response")
)

// Session failures.
var (
	// ErrCallbackClassification means the OAuth callback page content could
	// not be classified as a success payload. No session is persisted.
	ErrCallbackClassification = errors.New("unrecognized auth callback content")

	// ErrSessionExpired means a read found the persisted session past its
	// absolute expiry; it has been purged.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotAuthenticated means no session is established.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrUnknownMatter means a matter selection referenced an id not present
	// in the current matters list.
	ErrUnknownMatter = errors.New("unknown matter id")
)

// TransportError wraps a network-level failure reaching the remote endpoint.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// HTTPError is a non-2xx response from the remote endpoint. Body carries the
// server's detail/message field when the body was JSON, else the raw text.
type HTTPError struct {
	Status int
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("remote returned HTTP %d: %s", e.Status, e.Body)
}

// RemoteError is the structured failure payload carried across the messenger
// when the background-side submission fails.
type RemoteError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// NewRemoteError converts a submission failure into its wire form.
func NewRemoteError(err error) *RemoteError {
	if err == nil {
		return nil
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re
	}

	typ := "error"
	switch {
	case errors.Is(err, ErrInvalidInput):
		typ = "invalid_input"
	case errors.Is(err, ErrRemoteTimeout):
		typ = "timeout"
	case errors.Is(err, ErrMalformedResponse):
		typ = "malformed_response"
	default:
		var he *HTTPError
		var te *TransportError
		if errors.As(err, &he) {
			typ = "http_error"
		} else if errors.As(err, &te) {
			typ = "transport_error"
		}
	}
	return &RemoteError{Type: typ, Message: err.Error()}
}

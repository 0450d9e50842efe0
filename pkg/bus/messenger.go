// Package bus carries the page-context to background-context request/response
// protocol. The two sides share no state; every call owns a private reply
// channel, so responses correlate implicitly and no request IDs are needed.
package bus

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/involex/involex/pkg/types"
)

// DefaultMessageTimeout bounds one round trip when the config does not
// override it.
const DefaultMessageTimeout = 25 * time.Second

// Submitter is the background-side submission operation.
type Submitter interface {
	Submit(ctx context.Context, draft *types.ValidatedDraft) (*types.SubmissionResult, error)
}

// Response is the wire shape of one background reply.
type Response struct {
	Success bool                    `json:"success"`
	Result  *types.SubmissionResult `json:"result,omitempty"`
	Error   *types.RemoteError      `json:"error,omitempty"`
}

// Dispatcher is the background context's serving side. Its context bounds
// the lifetime of in-flight work, not any single caller's patience: a caller
// that times out abandons the call, but the dispatcher runs it to completion
// so the result is still recorded.
type Dispatcher struct {
	ctx       context.Context
	submitter Submitter
	flight    singleflight.Group
}

func NewDispatcher(ctx context.Context, submitter Submitter) *Dispatcher {
	return &Dispatcher{ctx: ctx, submitter: submitter}
}

func (d *Dispatcher) serve(draft *types.ValidatedDraft, reply chan<- Response) {
	// Concurrent submissions of the same draft share one remote call.
	v, err, shared := d.flight.Do(draft.Fingerprint, func() (any, error) {
		return d.submitter.Submit(d.ctx, draft)
	})
	if shared {
		log.Debug().Str("fingerprint", draft.Fingerprint).Msg("submission shared an in-flight call")
	}

	if err != nil {
		reply <- Response{Success: false, Error: types.NewRemoteError(err)}
		return
	}
	reply <- Response{Success: true, Result: v.(*types.SubmissionResult)}
}

// Messenger is the page context's calling side.
type Messenger struct {
	timeout    time.Duration
	dispatcher atomic.Pointer[Dispatcher]
}

func NewMessenger(timeout time.Duration) *Messenger {
	if timeout <= 0 {
		timeout = DefaultMessageTimeout
	}
	return &Messenger{timeout: timeout}
}

// Attach connects the background side. Until attached (or after the
// dispatcher's context ends) calls fail with ErrChannelDown.
func (m *Messenger) Attach(d *Dispatcher) {
	m.dispatcher.Store(d)
}

// Submit ships a validated draft to the background context and waits for the
// reply, the caller's context, or the messenger timeout, whichever is first.
// A timed-out call is abandoned, never retried automatically; retries are a
// user action so duplicate billable entries can't appear on their own.
func (m *Messenger) Submit(ctx context.Context, draft *types.ValidatedDraft) (*types.SubmissionResult, error) {
	d := m.dispatcher.Load()
	if d == nil || d.ctx.Err() != nil {
		return nil, types.ErrChannelDown
	}

	reply := make(chan Response, 1)
	go d.serve(draft, reply)

	timer := time.NewTimer(m.timeout)
	defer timer.Stop()

	select {
	case resp := <-reply:
		if !resp.Success {
			if resp.Error != nil {
				return nil, resp.Error
			}
			return nil, types.ErrChannelDown
		}
		return resp.Result, nil
	case <-timer.C:
		return nil, types.ErrMessageTimeout
	case <-ctx.Done():
		// Shutdown or caller cancellation is not a remote timeout.
		return nil, ctx.Err()
	}
}

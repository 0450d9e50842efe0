package watch

import (
	"context"

	"github.com/involex/involex/pkg/dom"
	"github.com/involex/involex/pkg/types"
)

// ComposeSurface is one live compose window. The surface owns send-intent
// suppression: a click delivered on Clicks() has already had its native send
// withheld, and stays withheld until Release is called.
type ComposeSurface interface {
	ID() string
	Platform() types.Platform

	// Region is the compose container subtree extraction runs against.
	Region() *dom.Node

	// Clicks delivers intercepted send-intents. The channel closes when the
	// surface goes away (window closed, draft discarded).
	Clicks() <-chan struct{}

	// Release re-invokes the native send for the most recent intercepted
	// intent. Safe to call once per intent; the surface decides whether a
	// direct click or a synthesized pointer event is needed.
	Release(ctx context.Context) error
}

// Notifier receives per-intent outcomes for user-visible fan-out.
type Notifier interface {
	SubmissionSucceeded(surfaceID string, result *types.SubmissionResult)
	SubmissionFailed(surfaceID string, err error)
}

// NopNotifier drops all outcomes.
type NopNotifier struct{}

func (NopNotifier) SubmissionSucceeded(string, *types.SubmissionResult) {}
func (NopNotifier) SubmissionFailed(string, error)                      {}

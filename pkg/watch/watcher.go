package watch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/involex/involex/pkg/bus"
	"github.com/involex/involex/pkg/common"
	"github.com/involex/involex/pkg/extract"
	"github.com/involex/involex/pkg/types"
	"github.com/involex/involex/pkg/validate"
)

const (
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultReleaseTimeout = 10 * time.Second

	// clickDebounceWindow collapses button-mashing into one intent.
	clickDebounceWindow = 300 * time.Millisecond

	// attachedSurfaceCacheSize bounds the attach marks; far beyond any
	// plausible number of simultaneously open compose windows.
	attachedSurfaceCacheSize = 256
)

// intentState is the per-intent lifecycle.
type intentState string

const (
	stateIdle        intentState = "idle"
	stateIntercepted intentState = "intercepted"
	stateAnalyzing   intentState = "analyzing"
	stateReleased    intentState = "released"
)

// Watcher attaches to discovered compose surfaces and runs the
// intercept-analyze-release cycle for each send-intent. Analysis is best
// effort: every failure path still releases the native send.
type Watcher struct {
	discovery Discovery
	registry  *extract.Registry
	validator atomic.Pointer[validate.Validator]
	messenger *bus.Messenger
	notifier  Notifier

	pollInterval   time.Duration
	releaseTimeout time.Duration

	attached  *lru.Cache[string, struct{}]
	debouncer *common.Debouncer

	// lastFingerprint is the single-slot duplicate check, shared by every
	// surface: the same draft must not submit twice no matter which compose
	// window it is sent from.
	dedupMu         sync.Mutex
	lastFingerprint string

	wg sync.WaitGroup
}

func NewWatcher(discovery Discovery, registry *extract.Registry, validator *validate.Validator, messenger *bus.Messenger, notifier Notifier, config types.AnalysisConfig) (*Watcher, error) {
	attached, err := lru.New[string, struct{}](attachedSurfaceCacheSize)
	if err != nil {
		return nil, err
	}

	pollInterval := config.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	releaseTimeout := config.ReleaseTimeout
	if releaseTimeout <= 0 {
		releaseTimeout = DefaultReleaseTimeout
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}

	w := &Watcher{
		discovery:      discovery,
		registry:       registry,
		messenger:      messenger,
		notifier:       notifier,
		pollInterval:   pollInterval,
		releaseTimeout: releaseTimeout,
		attached:       attached,
		debouncer:      common.NewDebouncer(clickDebounceWindow),
	}
	w.validator.Store(validator)
	return w, nil
}

// SetValidator swaps the validation rules, used when settings change at
// runtime. In-flight intents keep the validator they started with.
func (w *Watcher) SetValidator(v *validate.Validator) {
	if v != nil {
		w.validator.Store(v)
	}
}

// Run polls for compose surfaces until ctx is cancelled, attaching to each
// exactly once. Blocks; call as a goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		w.scan(ctx)

		select {
		case <-ctx.Done():
			w.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	surfaces, err := w.discovery.Discover(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("compose discovery failed")
		return
	}

	for _, surface := range surfaces {
		if _, seen := w.attached.Get(surface.ID()); seen {
			continue
		}
		w.attached.Add(surface.ID(), struct{}{})

		log.Info().
			Str("surface_id", surface.ID()).
			Str("platform", string(surface.Platform())).
			Msg("attached to compose surface")

		w.wg.Add(1)
		go func(s ComposeSurface) {
			defer w.wg.Done()
			w.watchSurface(ctx, s)
		}(surface)
	}
}

// watchSurface consumes send-intents until the surface closes or ctx ends.
func (w *Watcher) watchSurface(ctx context.Context, surface ComposeSurface) {
	runner := &surfaceRunner{watcher: w, surface: surface, state: stateIdle}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-surface.Clicks():
			if !ok {
				log.Debug().Str("surface_id", surface.ID()).Msg("compose surface closed")
				return
			}
			runner.setState(stateIntercepted)
			w.debouncer.Call(surface.ID(), func() {
				runner.handleIntent(ctx)
			})
		}
	}
}

// surfaceRunner carries per-surface intent state.
type surfaceRunner struct {
	watcher *Watcher
	surface ComposeSurface

	mu    sync.Mutex
	state intentState
}

func (r *surfaceRunner) setState(s intentState) {
	r.mu.Lock()
	prev := r.state
	r.state = s
	r.mu.Unlock()

	if prev != s {
		log.Debug().
			Str("surface_id", r.surface.ID()).
			Str("from", string(prev)).
			Str("to", string(s)).
			Msg("intent state")
	}
}

// handleIntent runs one intercept-analyze-release cycle. The release fires
// exactly once no matter which path the analysis takes.
func (r *surfaceRunner) handleIntent(ctx context.Context) {
	var releaseOnce sync.Once
	release := func() {
		releaseOnce.Do(func() {
			r.setState(stateReleased)
			releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := r.surface.Release(releaseCtx); err != nil {
				log.Error().Err(err).Str("surface_id", r.surface.ID()).Msg("release failed")
			}
			r.setState(stateIdle)
		})
	}
	defer release()

	r.setState(stateAnalyzing)

	draft, err := r.analyze()
	if err != nil {
		// Soft failure: the email sends natively, unanalyzed.
		log.Debug().Err(err).Str("surface_id", r.surface.ID()).Msg("skipping analysis")
		if errors.Is(err, types.ErrValidationFailed) || errors.Is(err, types.ErrDuplicateDraft) {
			r.watcher.notifier.SubmissionFailed(r.surface.ID(), err)
		}
		return
	}

	// Race the submission against the release budget. A slow submission
	// keeps running after release; its outcome is still fanned out and the
	// background side records it either way.
	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := r.watcher.messenger.Submit(ctx, draft)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				log.Debug().Str("surface_id", r.surface.ID()).Msg("submission abandoned on shutdown")
				return
			}
			r.watcher.notifier.SubmissionFailed(r.surface.ID(), err)
			return
		}
		r.watcher.notifier.SubmissionSucceeded(r.surface.ID(), result)
	}()

	select {
	case <-done:
	case <-time.After(r.watcher.releaseTimeout):
		log.Warn().
			Str("surface_id", r.surface.ID()).
			Dur("timeout", r.watcher.releaseTimeout).
			Msg("analysis exceeded release budget, sending anyway")
	case <-ctx.Done():
	}
}

// analyze extracts and validates the surface's current draft, applying the
// watcher-wide single-slot duplicate check.
func (r *surfaceRunner) analyze() (*types.ValidatedDraft, error) {
	extractor, ok := r.watcher.registry.Get(r.surface.Platform())
	if !ok {
		return nil, types.ErrExtractionFailed
	}

	draft := extractor.Extract(r.surface.Region())
	if draft == nil {
		return nil, types.ErrExtractionFailed
	}

	validated, err := r.watcher.validator.Load().Validate(draft)
	if err != nil {
		return nil, err
	}

	w := r.watcher
	w.dedupMu.Lock()
	dup := validated.Fingerprint == w.lastFingerprint
	if !dup {
		w.lastFingerprint = validated.Fingerprint
	}
	w.dedupMu.Unlock()
	if dup {
		return nil, types.ErrDuplicateDraft
	}

	return validated, nil
}

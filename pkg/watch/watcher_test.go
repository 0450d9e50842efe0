package watch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/involex/involex/pkg/bus"
	"github.com/involex/involex/pkg/dom"
	"github.com/involex/involex/pkg/extract"
	"github.com/involex/involex/pkg/types"
	"github.com/involex/involex/pkg/validate"
)

// composeFixture builds a document with one gmail compose dialog holding a
// complete draft.
func composeFixture(recipient, subject, body string) (root, dialog *dom.Node) {
	dialog = dom.NewNode("div", map[string]string{"role": "dialog"},
		dom.NewNode("input", map[string]string{"type": "email", "value": recipient}),
		dom.NewNode("input", map[string]string{"name": "subjectbox", "value": subject}),
		dom.NewNode("div", map[string]string{"contenteditable": "true", "role": "textbox"},
			dom.TextNode(body)),
	)
	root = dom.NewNode("html", nil,
		dom.NewNode("div", map[string]string{"data-hovercard-id": "me@firm.com"}),
		dialog,
	)
	return root, dialog
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []*types.SubmissionResult
	failures  []error
}

func (n *recordingNotifier) SubmissionSucceeded(surfaceID string, result *types.SubmissionResult) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, result)
}

func (n *recordingNotifier) SubmissionFailed(surfaceID string, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failures = append(n.failures, err)
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.successes), len(n.failures)
}

func (n *recordingNotifier) lastFailure() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.failures) == 0 {
		return nil
	}
	return n.failures[len(n.failures)-1]
}

type countingSubmitter struct {
	mu    sync.Mutex
	calls int
	delay time.Duration
}

func (s *countingSubmitter) Submit(ctx context.Context, draft *types.ValidatedDraft) (*types.SubmissionResult, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return &types.SubmissionResult{Summary: "summary of " + draft.Subject}, nil
}

func (s *countingSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestRegistry() *extract.Registry {
	registry := extract.NewRegistry()
	registry.Register(extract.NewGmailExtractor())
	registry.Register(extract.NewOutlookExtractor())
	return registry
}

func newTestWatcher(t *testing.T, discovery Discovery, submitter bus.Submitter, notifier Notifier, config types.AnalysisConfig) (*Watcher, context.CancelFunc) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	messenger := bus.NewMessenger(config.MessageTimeout)
	messenger.Attach(bus.NewDispatcher(ctx, submitter))

	w, err := NewWatcher(discovery, newTestRegistry(), validate.NewValidator(config.MinContentLength), messenger, notifier, config)
	require.NoError(t, err)

	go w.Run(ctx)
	return w, cancel
}

func fastConfig() types.AnalysisConfig {
	return types.AnalysisConfig{
		MinContentLength: 10,
		PollInterval:     10 * time.Millisecond,
		ReleaseTimeout:   2 * time.Second,
		MessageTimeout:   2 * time.Second,
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestWatcherInterceptAnalyzeRelease(t *testing.T) {
	root, _ := composeFixture("client@example.com", "Contract Review", "Following up on the contract terms we discussed yesterday.")
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	submitter := &countingSubmitter{}
	notifier := &recordingNotifier{}
	_, cancel := newTestWatcher(t, discovery, submitter, notifier, fastConfig())
	defer cancel()

	surfaces, err := discovery.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, surfaces, 1)
	surface := surfaces[0].(*DOMSurface)

	surface.Click()

	waitFor(t, func() bool { return surface.Released() == 1 }, "surface never released")
	waitFor(t, func() bool { s, _ := notifier.counts(); return s == 1 }, "success never notified")
	assert.Equal(t, 1, submitter.callCount())
}

func TestWatcherAttachesOnce(t *testing.T) {
	root, _ := composeFixture("client@example.com", "s", "A body long enough to pass the minimum length check.")
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	submitter := &countingSubmitter{}
	notifier := &recordingNotifier{}
	_, cancel := newTestWatcher(t, discovery, submitter, notifier, fastConfig())
	defer cancel()

	// Several poll ticks pass; the same surface must not get a second reader.
	time.Sleep(100 * time.Millisecond)

	surfaces, _ := discovery.Discover(context.Background())
	surface := surfaces[0].(*DOMSurface)
	surface.Click()

	waitFor(t, func() bool { return surface.Released() == 1 }, "surface never released")
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, submitter.callCount(), "one goroutine per surface means one submission per intent")
}

func TestWatcherReleasesOnExtractionFailure(t *testing.T) {
	// Dialog with no draft fields at all.
	dialog := dom.NewNode("div", map[string]string{"role": "dialog"})
	root := dom.NewNode("html", nil, dialog)
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	submitter := &countingSubmitter{}
	notifier := &recordingNotifier{}
	_, cancel := newTestWatcher(t, discovery, submitter, notifier, fastConfig())
	defer cancel()

	surfaces, _ := discovery.Discover(context.Background())
	surface := surfaces[0].(*DOMSurface)
	surface.Click()

	waitFor(t, func() bool { return surface.Released() == 1 }, "extraction failure must still release the send")
	assert.Equal(t, 0, submitter.callCount())
}

func TestWatcherReleasesOnValidationFailure(t *testing.T) {
	root, _ := composeFixture("client@example.com", "hi", "short")
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	submitter := &countingSubmitter{}
	notifier := &recordingNotifier{}
	_, cancel := newTestWatcher(t, discovery, submitter, notifier, fastConfig())
	defer cancel()

	surfaces, _ := discovery.Discover(context.Background())
	surface := surfaces[0].(*DOMSurface)
	surface.Click()

	waitFor(t, func() bool { return surface.Released() == 1 }, "validation failure must still release the send")
	assert.Equal(t, 0, submitter.callCount())
	assert.ErrorIs(t, notifier.lastFailure(), types.ErrValidationFailed)
}

func TestWatcherDuplicateDraftSuppressed(t *testing.T) {
	root, _ := composeFixture("client@example.com", "Contract Review", "Following up on the contract terms we discussed yesterday.")
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	submitter := &countingSubmitter{}
	notifier := &recordingNotifier{}
	_, cancel := newTestWatcher(t, discovery, submitter, notifier, fastConfig())
	defer cancel()

	surfaces, _ := discovery.Discover(context.Background())
	surface := surfaces[0].(*DOMSurface)

	surface.Click()
	waitFor(t, func() bool { return surface.Released() == 1 }, "first intent never released")
	waitFor(t, func() bool { s, _ := notifier.counts(); return s == 1 }, "first intent never succeeded")

	// Unchanged draft, second send: duplicate, released but not resubmitted.
	surface.Click()
	waitFor(t, func() bool { return surface.Released() == 2 }, "duplicate intent never released")
	assert.Equal(t, 1, submitter.callCount())
	assert.ErrorIs(t, notifier.lastFailure(), types.ErrDuplicateDraft)

	// An edited draft goes through again.
	dialog := surface.Region()
	dialog.Query(`input[name=subjectbox]`).SetAttr("value", "Contract Review v2")
	surface.Click()
	waitFor(t, func() bool { return submitter.callCount() == 2 }, "edited draft never resubmitted")
}

func TestWatcherDuplicateAcrossSurfaces(t *testing.T) {
	// Two compose windows carrying the identical draft. Whichever window the
	// second send comes from, the draft must not reach the remote side twice.
	makeDialog := func() *dom.Node {
		return dom.NewNode("div", map[string]string{"role": "dialog"},
			dom.NewNode("input", map[string]string{"type": "email", "value": "client@example.com"}),
			dom.NewNode("input", map[string]string{"name": "subjectbox", "value": "Contract Review"}),
			dom.NewNode("div", map[string]string{"contenteditable": "true", "role": "textbox"},
				dom.TextNode("Following up on the contract terms we discussed yesterday.")),
		)
	}
	root := dom.NewNode("html", nil,
		dom.NewNode("div", map[string]string{"data-hovercard-id": "me@firm.com"}),
		makeDialog(),
		makeDialog(),
	)
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	submitter := &countingSubmitter{}
	notifier := &recordingNotifier{}
	_, cancel := newTestWatcher(t, discovery, submitter, notifier, fastConfig())
	defer cancel()

	surfaces, err := discovery.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, surfaces, 2)
	first := surfaces[0].(*DOMSurface)
	second := surfaces[1].(*DOMSurface)

	first.Click()
	waitFor(t, func() bool { return first.Released() == 1 }, "first window never released")
	waitFor(t, func() bool { s, _ := notifier.counts(); return s == 1 }, "first window never succeeded")

	// Same fingerprint from the other window: released, not resubmitted.
	second.Click()
	waitFor(t, func() bool { return second.Released() == 1 }, "second window never released")
	assert.Equal(t, 1, submitter.callCount(), "equal-fingerprint drafts submit at most once across windows")
	assert.ErrorIs(t, notifier.lastFailure(), types.ErrDuplicateDraft)
}

func TestWatcherBurstClicksCollapse(t *testing.T) {
	root, _ := composeFixture("client@example.com", "Contract Review", "Following up on the contract terms we discussed yesterday.")
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	submitter := &countingSubmitter{}
	notifier := &recordingNotifier{}
	_, cancel := newTestWatcher(t, discovery, submitter, notifier, fastConfig())
	defer cancel()

	surfaces, _ := discovery.Discover(context.Background())
	surface := surfaces[0].(*DOMSurface)

	surface.Click()
	surface.Click()
	surface.Click()

	waitFor(t, func() bool { return surface.Released() >= 1 }, "burst never released")
	time.Sleep(500 * time.Millisecond)
	assert.Equal(t, 1, submitter.callCount(), "burst clicks collapse into one submission")
	assert.Equal(t, 1, surface.Released())
}

func TestWatcherReleaseBudgetBeatsSlowSubmission(t *testing.T) {
	root, _ := composeFixture("client@example.com", "Contract Review", "Following up on the contract terms we discussed yesterday.")
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	submitter := &countingSubmitter{delay: 400 * time.Millisecond}
	notifier := &recordingNotifier{}
	config := fastConfig()
	config.ReleaseTimeout = 50 * time.Millisecond
	_, cancel := newTestWatcher(t, discovery, submitter, notifier, config)
	defer cancel()

	surfaces, _ := discovery.Discover(context.Background())
	surface := surfaces[0].(*DOMSurface)
	surface.Click()

	// Release fires on the budget even though the submission is still going.
	waitFor(t, func() bool { return surface.Released() == 1 }, "release budget never fired")
	s, _ := notifier.counts()
	assert.Equal(t, 0, s, "submission should still be in flight at release time")

	// The late result is still fanned out.
	waitFor(t, func() bool { s, _ := notifier.counts(); return s == 1 }, "late result never notified")
}

func TestWatcherChannelDown(t *testing.T) {
	root, _ := composeFixture("client@example.com", "Contract Review", "Following up on the contract terms we discussed yesterday.")
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A messenger with no dispatcher attached: the background context is
	// unreachable.
	messenger := bus.NewMessenger(time.Second)
	notifier := &recordingNotifier{}
	w, err := NewWatcher(discovery, newTestRegistry(), validate.NewValidator(10), messenger, notifier, fastConfig())
	require.NoError(t, err)
	go w.Run(ctx)

	surfaces, _ := discovery.Discover(context.Background())
	surface := surfaces[0].(*DOMSurface)
	surface.Click()

	waitFor(t, func() bool { return surface.Released() == 1 }, "channel failure must still release the send")
	waitFor(t, func() bool { _, f := notifier.counts(); return f == 1 }, "channel failure never notified")
	assert.ErrorIs(t, notifier.lastFailure(), types.ErrChannelDown)
}

func TestDOMDiscoveryHonorsPlatformFlags(t *testing.T) {
	root := dom.NewNode("html", nil,
		dom.NewNode("div", map[string]string{"role": "dialog"}),
		dom.NewNode("div", map[string]string{"data-app-section": "MailCompose"}),
	)

	tests := []struct {
		name      string
		platforms types.PlatformsConfig
		want      int
	}{
		{"both enabled", types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}, Outlook: types.PlatformConfig{Enabled: true}}, 2},
		{"gmail only", types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}}, 1},
		{"both disabled", types.PlatformsConfig{}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			discovery := NewDOMDiscovery(root, tc.platforms)
			surfaces, err := discovery.Discover(context.Background())
			require.NoError(t, err)
			assert.Len(t, surfaces, tc.want)
		})
	}
}

func TestDOMDiscoveryEvictsDepartedSurfaces(t *testing.T) {
	root, dialog := composeFixture("client@example.com", "s", "A body long enough to pass the minimum length check.")
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	surfaces, err := discovery.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, surfaces, 1)
	gone := surfaces[0].(*DOMSurface)

	// The compose window closes and its container leaves the tree.
	root.RemoveChild(dialog)

	surfaces, err = discovery.Discover(context.Background())
	require.NoError(t, err)
	assert.Empty(t, surfaces)

	// The departed surface is closed so its reader detaches.
	_, open := <-gone.Clicks()
	assert.False(t, open, "departed surface's click channel should be closed")
	assert.Equal(t, 0, len(discovery.surfaces), "departed surface must leave the tracking map")
}

func TestDOMDiscoveryStableSurfaceIdentity(t *testing.T) {
	root, _ := composeFixture("client@example.com", "s", "A body long enough to pass the minimum length check.")
	discovery := NewDOMDiscovery(root, types.PlatformsConfig{Gmail: types.PlatformConfig{Enabled: true}})

	first, err := discovery.Discover(context.Background())
	require.NoError(t, err)
	second, err := discovery.Discover(context.Background())
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID(), second[0].ID(), "same container yields the same surface across scans")
}

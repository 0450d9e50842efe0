package watch

import (
	"context"
	"sync"

	"github.com/involex/involex/pkg/common"
	"github.com/involex/involex/pkg/dom"
	"github.com/involex/involex/pkg/types"
)

// Discovery finds the compose surfaces currently present.
type Discovery interface {
	Discover(ctx context.Context) ([]ComposeSurface, error)
}

// Platform compose-container selectors. Gmail renders compose windows as
// dialogs; Outlook tags its compose pane with an app-section attribute.
var composeSelectors = map[types.Platform]string{
	types.PlatformGmail:   `div[role="dialog"]`,
	types.PlatformOutlook: `div[data-app-section="MailCompose"]`,
}

// DOMDiscovery scans a document tree for compose containers and wraps each
// in a DOMSurface. The same container node maps to the same surface across
// scans, so the watcher's attach marks stay stable.
type DOMDiscovery struct {
	root     *dom.Node
	enabled  map[types.Platform]bool
	mu       sync.Mutex
	surfaces map[*dom.Node]*DOMSurface
}

func NewDOMDiscovery(root *dom.Node, platforms types.PlatformsConfig) *DOMDiscovery {
	return &DOMDiscovery{
		root: root,
		enabled: map[types.Platform]bool{
			types.PlatformGmail:   platforms.Gmail.Enabled,
			types.PlatformOutlook: platforms.Outlook.Enabled,
		},
		surfaces: make(map[*dom.Node]*DOMSurface),
	}
}

func (d *DOMDiscovery) Discover(ctx context.Context) ([]ComposeSurface, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var found []ComposeSurface
	present := make(map[*dom.Node]struct{})
	for platform, selector := range composeSelectors {
		if !d.enabled[platform] {
			continue
		}
		for _, node := range d.root.QueryAll(selector) {
			present[node] = struct{}{}
			surface, ok := d.surfaces[node]
			if !ok {
				surface = NewDOMSurface(platform, node)
				d.surfaces[node] = surface
			}
			found = append(found, surface)
		}
	}

	// Compose windows that left the tree are gone for good; close their
	// surfaces so the watcher detaches and drop them from the map.
	for node, surface := range d.surfaces {
		if _, ok := present[node]; !ok {
			surface.Close()
			delete(d.surfaces, node)
		}
	}
	return found, nil
}

// DOMSurface adapts a compose container node to the ComposeSurface contract.
// Send-intents arrive via Click; callers outside tests are the page-side glue
// that observes the real send button.
type DOMSurface struct {
	id       string
	platform types.Platform
	region   *dom.Node

	clicks chan struct{}
	once   sync.Once

	mu       sync.Mutex
	released int
}

func NewDOMSurface(platform types.Platform, region *dom.Node) *DOMSurface {
	return &DOMSurface{
		id:       common.GenerateSurfaceID(),
		platform: platform,
		region:   region,
		clicks:   make(chan struct{}, 4),
	}
}

func (s *DOMSurface) ID() string               { return s.id }
func (s *DOMSurface) Platform() types.Platform { return s.platform }
func (s *DOMSurface) Region() *dom.Node        { return s.region }

func (s *DOMSurface) Clicks() <-chan struct{} { return s.clicks }

// Click records one intercepted send-intent. Intents beyond the buffer are
// dropped; the debounced watcher would collapse them anyway.
func (s *DOMSurface) Click() {
	select {
	case s.clicks <- struct{}{}:
	default:
	}
}

// Close signals the compose window went away.
func (s *DOMSurface) Close() {
	s.once.Do(func() { close(s.clicks) })
}

func (s *DOMSurface) Release(ctx context.Context) error {
	s.mu.Lock()
	s.released++
	s.mu.Unlock()
	return nil
}

// Released reports how many times the native send was re-invoked.
func (s *DOMSurface) Released() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

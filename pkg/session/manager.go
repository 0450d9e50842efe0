package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/involex/involex/pkg/common"
	"github.com/involex/involex/pkg/repository"
	"github.com/involex/involex/pkg/types"
)

// TabOpener opens and closes the transient browser surface the OAuth
// authorization page renders in.
type TabOpener interface {
	OpenTab(ctx context.Context, url string) (tabID string, err error)
	CloseTab(ctx context.Context, tabID string) error
}

// PageReader reads the text content of a navigated page, used to classify
// the OAuth callback body.
type PageReader interface {
	ReadBody(ctx context.Context, tabID string) (string, error)
}

// callbackBody is the strict success shape the callback page must render.
// Anything else (HTML error page, partial JSON, wrong status) is treated as
// a failed flow.
type callbackBody struct {
	Status string `json:"status"`
	Email  string `json:"email"`
}

// Manager drives the OAuth session lifecycle against the practice-management
// backend. Expiry is lazy: there is no background timer, each read validates
// the persisted token and purges on failure.
type Manager struct {
	kv       repository.KeyValue
	auth     AuthService
	tabs     TabOpener
	pages    PageReader
	eventBus *common.EventBus
	codec    *tokenCodec

	callbackPrefix    string
	closeTabOnFailure bool

	mu        sync.Mutex
	state     types.SessionState
	authTabID string
}

func NewManager(kv repository.KeyValue, auth AuthService, tabs TabOpener, pages PageReader, eventBus *common.EventBus, config types.AuthConfig) *Manager {
	return &Manager{
		kv:                kv,
		auth:              auth,
		tabs:              tabs,
		pages:             pages,
		eventBus:          eventBus,
		codec:             newTokenCodec(config.SessionKey),
		callbackPrefix:    config.CallbackPrefix,
		closeTabOnFailure: config.CloseTabOnFailure,
		state:             types.SessionLoggedOut,
	}
}

// State reports the manager's flow state. Authenticated is only as fresh as
// the last Current call; the persisted token is the source of truth.
func (m *Manager) State() types.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

func (m *Manager) setState(s types.SessionState) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// Login starts a fresh OAuth flow: stale session state is purged first so a
// failed flow cannot leave a partial identity behind.
func (m *Manager) Login(ctx context.Context) error {
	if err := m.purge(ctx); err != nil {
		return err
	}
	m.setState(types.SessionAuthInitiated)

	authURL, err := m.auth.AuthURL(ctx)
	if err != nil {
		m.setState(types.SessionLoggedOut)
		return fmt.Errorf("auth init: %w", err)
	}

	tabID, err := m.tabs.OpenTab(ctx, authURL)
	if err != nil {
		m.setState(types.SessionLoggedOut)
		return fmt.Errorf("open auth tab: %w", err)
	}

	m.mu.Lock()
	m.authTabID = tabID
	m.state = types.SessionAwaitingCallback
	m.mu.Unlock()

	log.Info().Str("tab_id", tabID).Msg("auth flow started")
	return nil
}

// HandleNavigation classifies a navigation in the auth tab. Only URLs that
// start with the callback prefix are callbacks; the authorization page
// itself may embed the callback URL in its query string, so a contains-match
// would fire early and kill the flow.
func (m *Manager) HandleNavigation(ctx context.Context, tabID, rawURL string) error {
	if !strings.HasPrefix(rawURL, m.callbackPrefix) {
		return nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return m.failFlow(ctx, tabID, fmt.Errorf("%w: unparseable callback url", types.ErrCallbackClassification))
	}
	query := parsed.Query()

	if authErr := query.Get("error"); authErr != "" {
		return m.failFlow(ctx, tabID, fmt.Errorf("authorization denied: %s", authErr))
	}
	if query.Get("code") == "" {
		return m.failFlow(ctx, tabID, fmt.Errorf("%w: callback carries neither code nor error", types.ErrCallbackClassification))
	}

	body, err := m.pages.ReadBody(ctx, tabID)
	if err != nil {
		return m.failFlow(ctx, tabID, fmt.Errorf("read callback page: %w", err))
	}

	var payload callbackBody
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &payload); err != nil {
		return m.failFlow(ctx, tabID, fmt.Errorf("%w: callback body is not JSON", types.ErrCallbackClassification))
	}
	if payload.Status != "success" || payload.Email == "" {
		return m.failFlow(ctx, tabID, fmt.Errorf("%w: status=%q email=%q", types.ErrCallbackClassification, payload.Status, payload.Email))
	}

	return m.establish(ctx, tabID, payload.Email)
}

func (m *Manager) establish(ctx context.Context, tabID, email string) error {
	token, err := m.codec.Create(email, time.Now())
	if err != nil {
		return m.failFlow(ctx, tabID, fmt.Errorf("sign session: %w", err))
	}
	if err := m.kv.Set(ctx, common.Keys.SessionToken(), []byte(token)); err != nil {
		return m.failFlow(ctx, tabID, fmt.Errorf("persist session: %w", err))
	}

	m.setState(types.SessionAuthenticated)

	// Matters are a convenience; a fetch failure leaves an established
	// session with an empty list that Matters() will refetch.
	if matters, err := m.auth.Matters(ctx, email); err != nil {
		log.Warn().Err(err).Msg("matters fetch failed after login")
	} else if err := m.storeMatters(ctx, matters); err != nil {
		log.Warn().Err(err).Msg("matters persist failed after login")
	}

	if m.eventBus != nil {
		m.eventBus.Emit(common.Event{
			Type: common.EventSessionEstablished,
			Data: map[string]any{"email": email},
		})
	}

	if err := m.tabs.CloseTab(ctx, tabID); err != nil {
		log.Warn().Err(err).Str("tab_id", tabID).Msg("auth tab close failed")
	}

	log.Info().Str("email", email).Msg("session established")
	return nil
}

// failFlow ends a flow without persisting anything. The auth tab stays open
// by default so the user can see the provider's error page.
func (m *Manager) failFlow(ctx context.Context, tabID string, cause error) error {
	m.setState(types.SessionLoggedOut)

	if m.eventBus != nil {
		m.eventBus.Emit(common.Event{
			Type: common.EventAuthFailed,
			Data: map[string]any{"reason": cause.Error()},
		})
	}
	if m.closeTabOnFailure {
		if err := m.tabs.CloseTab(ctx, tabID); err != nil {
			log.Warn().Err(err).Str("tab_id", tabID).Msg("auth tab close failed")
		}
	}

	log.Warn().Err(cause).Msg("auth flow failed")
	return cause
}

// Current returns the established session, lazily purging an expired or
// invalid token.
func (m *Manager) Current(ctx context.Context) (*types.Session, error) {
	data, err := m.kv.Get(ctx, common.Keys.SessionToken())
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, types.ErrNotAuthenticated
	}

	claims, err := m.codec.Validate(string(data))
	if err != nil {
		if purgeErr := m.purge(ctx); purgeErr != nil {
			log.Error().Err(purgeErr).Msg("session purge failed")
		}
		if m.eventBus != nil {
			m.eventBus.Emit(common.Event{Type: common.EventSessionExpired})
		}
		m.setState(types.SessionExpired)
		return nil, types.ErrSessionExpired
	}

	session := &types.Session{
		UserIdentity:  claims.Email,
		EstablishedAt: claims.IssuedAt.Time,
	}

	if mattersData, err := m.kv.Get(ctx, common.Keys.SessionMatters()); err == nil && mattersData != nil {
		if err := json.Unmarshal(mattersData, &session.Matters); err != nil {
			log.Warn().Err(err).Msg("dropping undecodable matters record")
		}
	}
	if selected, err := m.kv.Get(ctx, common.Keys.SessionSelectedMatter()); err == nil && selected != nil {
		session.SelectedMatterID = string(selected)
	}

	return session, nil
}

// Matters returns the cached matters list, refetching when it is empty.
func (m *Manager) Matters(ctx context.Context) ([]types.Matter, error) {
	session, err := m.Current(ctx)
	if err != nil {
		return nil, err
	}
	if len(session.Matters) > 0 {
		return session.Matters, nil
	}

	matters, err := m.auth.Matters(ctx, session.UserIdentity)
	if err != nil {
		return nil, fmt.Errorf("fetch matters: %w", err)
	}
	if err := m.storeMatters(ctx, matters); err != nil {
		return nil, err
	}
	return matters, nil
}

// SelectMatter sets the matter attached to subsequent submissions. An empty
// id clears the selection.
func (m *Manager) SelectMatter(ctx context.Context, id string) error {
	if id == "" {
		return m.kv.Delete(ctx, common.Keys.SessionSelectedMatter())
	}

	matters, err := m.Matters(ctx)
	if err != nil {
		return err
	}
	for _, matter := range matters {
		if matter.ID == id {
			return m.kv.Set(ctx, common.Keys.SessionSelectedMatter(), []byte(id))
		}
	}
	return fmt.Errorf("%w: %s", types.ErrUnknownMatter, id)
}

// Logout purges all session state.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.purge(ctx); err != nil {
		return err
	}
	m.setState(types.SessionLoggedOut)
	if m.eventBus != nil {
		m.eventBus.Emit(common.Event{Type: common.EventSessionLoggedOut})
	}
	log.Info().Msg("logged out")
	return nil
}

func (m *Manager) storeMatters(ctx context.Context, matters []types.Matter) error {
	data, err := json.Marshal(matters)
	if err != nil {
		return err
	}
	return m.kv.Set(ctx, common.Keys.SessionMatters(), data)
}

// purge removes identity, matters and selection together so no read can see
// a half-cleared session.
func (m *Manager) purge(ctx context.Context) error {
	for _, key := range []string{
		common.Keys.SessionToken(),
		common.Keys.SessionMatters(),
		common.Keys.SessionSelectedMatter(),
	} {
		if err := m.kv.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

package agent

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	apiv1 "github.com/involex/involex/pkg/api/v1"
	"github.com/involex/involex/pkg/bus"
	"github.com/involex/involex/pkg/client"
	"github.com/involex/involex/pkg/common"
	"github.com/involex/involex/pkg/extract"
	"github.com/involex/involex/pkg/repository"
	"github.com/involex/involex/pkg/session"
	"github.com/involex/involex/pkg/types"
	"github.com/involex/involex/pkg/validate"
	"github.com/involex/involex/pkg/watch"
)

const shutdownTimeout = 10 * time.Second

// Agent hosts the background side of the pipeline: storage, the submission
// client, the session manager, the messenger dispatcher, the compose watcher
// and the local HTTP API the popup/settings surfaces talk to.
type Agent struct {
	Config      types.AppConfig
	RedisClient *common.RedisClient

	httpServer *http.Server
	echo       *echo.Echo
	ctx        context.Context
	cancelFunc context.CancelFunc

	baseRouteGroup *echo.Group

	kv       repository.KeyValue
	history  repository.HistoryRepository
	settings repository.SettingsRepository
	eventBus *common.EventBus

	sessionManager *session.Manager
	submission     *client.SubmissionClient
	messenger      *bus.Messenger
	watcher        *watch.Watcher

	discovery watch.Discovery
	tabs      session.TabOpener
	pages     session.PageReader
	notifier  watch.Notifier
}

// Option overrides a collaborator that is environment-specific (how tabs
// open, where compose surfaces come from).
type Option func(*Agent)

// WithDiscovery attaches a compose-surface source; without one the watcher
// is not started.
func WithDiscovery(d watch.Discovery) Option {
	return func(a *Agent) { a.discovery = d }
}

func WithTabOpener(t session.TabOpener) Option {
	return func(a *Agent) { a.tabs = t }
}

func WithPageReader(p session.PageReader) Option {
	return func(a *Agent) { a.pages = p }
}

func WithNotifier(n watch.Notifier) Option {
	return func(a *Agent) { a.notifier = n }
}

func NewAgent(opts ...Option) (*Agent, error) {
	configManager, err := common.NewConfigManager[types.AppConfig]()
	if err != nil {
		return nil, err
	}
	config := configManager.GetConfig()

	// Setup logging
	if config.PrettyLogs {
		log.Logger = log.Logger.Level(zerolog.DebugLevel)
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	var redisClient *common.RedisClient
	if config.IsMemoryMode() {
		log.Info().Msg("running in memory mode - Redis disabled")
	} else {
		redisClient, err = common.NewRedisClient(config.Storage.Redis)
		if err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	agent := &Agent{
		Config:      config,
		RedisClient: redisClient,
		ctx:         ctx,
		cancelFunc:  cancel,
	}
	for _, opt := range opts {
		opt(agent)
	}

	if err := agent.initStorage(); err != nil {
		cancel()
		return nil, err
	}
	agent.initPipeline()

	return agent, nil
}

func (a *Agent) initStorage() error {
	var lock *common.RedisLock
	if a.RedisClient != nil {
		a.kv = repository.NewRedisKV(a.RedisClient)
		lock = common.NewRedisLock(a.RedisClient)
		log.Info().Msg("storage initialized (redis backend)")
	} else {
		a.kv = repository.NewMemoryKV()
		log.Info().Msg("storage initialized (memory backend)")
	}

	a.history = repository.NewKVHistoryRepository(a.kv, lock)
	a.settings = repository.NewKVSettingsRepository(a.kv, a.Config)
	a.eventBus = common.NewEventBus(a.ctx, a.RedisClient)
	return nil
}

func (a *Agent) initPipeline() {
	if a.tabs == nil || a.pages == nil {
		browser := NewLoggingBrowser(a.eventBus)
		if a.tabs == nil {
			a.tabs = browser
		}
		if a.pages == nil {
			a.pages = browser
		}
	}

	a.sessionManager = session.NewManager(a.kv, session.NewHTTPAuthService(a.Config.Auth), a.tabs, a.pages, a.eventBus, a.Config.Auth)
	a.submission = client.NewSubmissionClient(a.Config.API, a.sessionManager, a.settings, a.history, a.eventBus)

	a.messenger = bus.NewMessenger(a.Config.Analysis.MessageTimeout)
	a.messenger.Attach(bus.NewDispatcher(a.ctx, a.submission))
}

func (a *Agent) initHTTP() error {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())

	if a.Config.HTTP.EnablePrettyLogs {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${method} ${uri} ${status} ${latency_human}\n",
		}))
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: a.Config.HTTP.CORS.AllowedOrigins,
		AllowHeaders: a.Config.HTTP.CORS.AllowedHeaders,
		AllowMethods: a.Config.HTTP.CORS.AllowedMethods,
	}))

	e.Use(middleware.Recover())

	a.echo = e
	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.Config.HTTP.Host, a.Config.HTTP.Port),
		Handler: e,
	}

	a.baseRouteGroup = e.Group(apiv1.HttpServerBaseRoute)

	apiv1.NewHealthGroup(a.baseRouteGroup.Group("/health"), a.RedisClient)
	apiv1.NewAnalysesGroup(a.baseRouteGroup.Group("/analyses"), a.history)
	apiv1.NewSettingsGroup(a.baseRouteGroup.Group("/settings"), a.settings, a.eventBus)
	apiv1.NewSessionGroup(a.baseRouteGroup.Group("/session"), a.sessionManager)
	apiv1.NewStatusGroup(a.baseRouteGroup.Group("/status"), a.Config, a.history, a.sessionManager)

	return nil
}

func (a *Agent) initWatcher() error {
	if a.discovery == nil {
		log.Info().Msg("no compose discovery configured - watcher disabled")
		return nil
	}

	registry := extract.NewRegistry()
	registry.Register(extract.NewGmailExtractor())
	registry.Register(extract.NewOutlookExtractor())

	settings, err := a.settings.Get(a.ctx)
	if err != nil {
		return err
	}

	notifier := a.notifier
	if notifier == nil {
		notifier = NewLogNotifier()
	}

	watcher, err := watch.NewWatcher(a.discovery, registry, validate.NewValidator(settings.MinEmailLength), a.messenger, notifier, a.Config.Analysis)
	if err != nil {
		return err
	}
	a.watcher = watcher

	// Threshold changes apply without a restart.
	a.eventBus.On(common.EventSettingsUpdated, func(common.Event) {
		updated, err := a.settings.Get(a.ctx)
		if err != nil {
			log.Warn().Err(err).Msg("settings reload failed")
			return
		}
		watcher.SetValidator(validate.NewValidator(updated.MinEmailLength))
	})

	return nil
}

// StartAsync starts the agent without blocking. Use when embedding the agent
// in another process.
func (a *Agent) StartAsync() error {
	if err := a.initHTTP(); err != nil {
		return fmt.Errorf("failed to initialize http server: %w", err)
	}
	if err := a.initWatcher(); err != nil {
		return fmt.Errorf("failed to initialize watcher: %w", err)
	}

	go a.eventBus.Start()

	if a.watcher != nil {
		go a.watcher.Run(a.ctx)
	}

	go func() {
		addr := fmt.Sprintf("%s:%d", a.Config.HTTP.Host, a.Config.HTTP.Port)
		lis, err := net.Listen("tcp", addr)
		if err != nil {
			log.Error().Err(err).Msg("failed to listen on http")
			return
		}

		if err := a.httpServer.Serve(lis); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server error")
		}
	}()

	log.Info().
		Str("host", a.Config.HTTP.Host).
		Int("port", a.Config.HTTP.Port).
		Msg("agent http server running")

	return nil
}

// Start runs the agent until a termination signal arrives.
func (a *Agent) Start() error {
	if err := a.StartAsync(); err != nil {
		return err
	}

	terminationSignal := make(chan os.Signal, 1)
	signal.Notify(terminationSignal, os.Interrupt, syscall.SIGTERM)
	<-terminationSignal

	log.Info().Msg("termination signal received. shutting down...")
	a.shutdown()

	return nil
}

// Shutdown gracefully shuts down the agent (exported for external use)
func (a *Agent) Shutdown() {
	a.shutdown()
}

func (a *Agent) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return a.httpServer.Shutdown(ctx)
	})

	a.cancelFunc()

	if err := eg.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to shutdown agent gracefully")
	}

	log.Info().Msg("agent stopped")
}

package types

import "time"

// Storage mode constants
const (
	StorageModeMemory = "memory" // in-process maps, no Redis
	StorageModeRedis  = "redis"
)

// AppConfig is the root configuration for the involex agent
type AppConfig struct {
	DebugMode  bool `key:"debugMode" json:"debug_mode"`
	PrettyLogs bool `key:"prettyLogs" json:"pretty_logs"`

	Storage   StorageConfig   `key:"storage" json:"storage"`
	API       APIConfig       `key:"api" json:"api"`
	Auth      AuthConfig      `key:"auth" json:"auth"`
	Platforms PlatformsConfig `key:"platforms" json:"platforms"`
	Analysis  AnalysisConfig  `key:"analysis" json:"analysis"`
	HTTP      HTTPConfig      `key:"http" json:"http"`
}

// IsMemoryMode returns true when running without Redis.
func (c *AppConfig) IsMemoryMode() bool {
	return c.Storage.Mode != StorageModeRedis
}

// ----------------------------------------------------------------------------
// Storage Configuration
// ----------------------------------------------------------------------------

type StorageConfig struct {
	Mode  string      `key:"mode" json:"mode"` // "memory" or "redis"
	Redis RedisConfig `key:"redis" json:"redis"`
}

type RedisConfig struct {
	Addrs        []string      `key:"addrs" json:"addrs"`
	Username     string        `key:"username" json:"username"`
	Password     string        `key:"password" json:"password"`
	ClientName   string        `key:"clientName" json:"client_name"`
	PoolSize     int           `key:"poolSize" json:"pool_size"`
	DialTimeout  time.Duration `key:"dialTimeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `key:"readTimeout" json:"read_timeout"`
	WriteTimeout time.Duration `key:"writeTimeout" json:"write_timeout"`
}

// ----------------------------------------------------------------------------
// Remote API Configuration
// ----------------------------------------------------------------------------

// APIConfig points at the summarization endpoint.
type APIConfig struct {
	SummarizeURL string        `key:"summarizeUrl" json:"summarize_url"`
	Timeout      time.Duration `key:"timeout" json:"timeout"`
}

// AuthConfig points at the practice-management auth endpoints.
type AuthConfig struct {
	InitURL        string `key:"initUrl" json:"init_url"`
	MattersURL     string `key:"mattersUrl" json:"matters_url"`
	CallbackPrefix string `key:"callbackPrefix" json:"callback_prefix"`

	// SessionKey signs the persisted session record. Empty means a random
	// per-process key (sessions won't survive a restart).
	SessionKey string `key:"sessionKey" json:"session_key"`

	// CloseTabOnFailure closes the transient auth tab on a failed flow.
	// Default false so the user can inspect the error page.
	CloseTabOnFailure bool `key:"closeTabOnFailure" json:"close_tab_on_failure"`
}

// ----------------------------------------------------------------------------
// Watcher / Analysis Configuration
// ----------------------------------------------------------------------------

type PlatformsConfig struct {
	Gmail   PlatformConfig `key:"gmail" json:"gmail"`
	Outlook PlatformConfig `key:"outlook" json:"outlook"`
}

type PlatformConfig struct {
	Enabled bool `key:"enabled" json:"enabled"`
}

type AnalysisConfig struct {
	MinContentLength     int           `key:"minContentLength" json:"min_content_length"`
	MaxStoredAnalyses    int           `key:"maxStoredAnalyses" json:"max_stored_analyses"`
	NotificationDuration time.Duration `key:"notificationDuration" json:"notification_duration"`

	// ReleaseTimeout bounds how long a suppressed send may be held.
	ReleaseTimeout time.Duration `key:"releaseTimeout" json:"release_timeout"`

	// MessageTimeout bounds one page->background round trip.
	MessageTimeout time.Duration `key:"messageTimeout" json:"message_timeout"`

	// PollInterval is the compose-surface discovery tick.
	PollInterval time.Duration `key:"pollInterval" json:"poll_interval"`
}

// ----------------------------------------------------------------------------
// Local HTTP Configuration
// ----------------------------------------------------------------------------

type HTTPConfig struct {
	Host             string     `key:"host" json:"host"`
	Port             int        `key:"port" json:"port"`
	EnablePrettyLogs bool       `key:"enablePrettyLogs" json:"enable_pretty_logs"`
	CORS             CORSConfig `key:"cors" json:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `key:"allowOrigins" json:"allow_origins"`
	AllowedMethods []string `key:"allowMethods" json:"allow_methods"`
	AllowedHeaders []string `key:"allowHeaders" json:"allow_headers"`
}

package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	configEnvVar      = "CONFIG_PATH"
	defaultConfigName = "config.yaml"
)

// defaultConfig carries the documented defaults for every tunable. A config
// file only needs to override what it changes.
var defaultConfig = []byte(`
debugMode: false
prettyLogs: false
storage:
  mode: memory
  redis:
    addrs: ["localhost:6379"]
    dialTimeout: 5s
    readTimeout: 3s
    writeTimeout: 3s
api:
  summarizeUrl: "http://127.0.0.1:8000/api/summarize-email/"
  timeout: 30s
auth:
  initUrl: "http://127.0.0.1:8000/api/clio/auth/"
  mattersUrl: "http://127.0.0.1:8000/api/clio/matters/"
  callbackPrefix: "http://127.0.0.1:8000/api/clio/callback"
  closeTabOnFailure: false
platforms:
  gmail:
    enabled: true
  outlook:
    enabled: true
analysis:
  minContentLength: 10
  maxStoredAnalyses: 50
  notificationDuration: 8s
  releaseTimeout: 10s
  messageTimeout: 25s
  pollInterval: 500ms
http:
  host: "127.0.0.1"
  port: 8113
  enablePrettyLogs: false
  cors:
    allowOrigins: ["*"]
    allowMethods: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
    allowHeaders: ["Content-Type", "Authorization"]
`)

// ConfigManager loads defaults, merges an optional config file pointed at by
// CONFIG_PATH (or ./config.yaml when present), and unmarshals into T using
// the `key` struct tag.
type ConfigManager[T any] struct {
	k      *koanf.Koanf
	config T
}

func NewConfigManager[T any]() (*ConfigManager[T], error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultConfig), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	path := os.Getenv(configEnvVar)
	if path == "" {
		if _, err := os.Stat(defaultConfigName); err == nil {
			path = defaultConfigName
		}
	}

	if path != "" {
		parser, err := parserForPath(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	cm := &ConfigManager[T]{k: k}
	if err := k.UnmarshalWithConf("", &cm.config, koanf.UnmarshalConf{Tag: "key"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return cm, nil
}

// GetConfig returns the resolved configuration.
func (cm *ConfigManager[T]) GetConfig() T {
	return cm.config
}

func parserForPath(path string) (koanf.Parser, error) {
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	default:
		return nil, fmt.Errorf("unsupported config format: %s", path)
	}
}

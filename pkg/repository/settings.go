package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/involex/involex/pkg/common"
	"github.com/involex/involex/pkg/types"
)

const (
	minEmailLengthFloor    = 1
	minEmailLengthCeil     = 100
	notificationFloorSecs  = 3
	notificationCeilSecs   = 30
	maxStoredAnalysesFloor = 10
	maxStoredAnalysesCeil  = 500
)

// KVSettingsRepository persists user-adjustable settings as a single record.
// When no record exists, Get returns the defaults derived from the app config
// without writing them back.
type KVSettingsRepository struct {
	kv       KeyValue
	defaults types.Settings
}

func NewKVSettingsRepository(kv KeyValue, config types.AppConfig) *KVSettingsRepository {
	return &KVSettingsRepository{
		kv: kv,
		defaults: types.Settings{
			APIURL:               config.API.SummarizeURL,
			EnableGmail:          config.Platforms.Gmail.Enabled,
			EnableOutlook:        config.Platforms.Outlook.Enabled,
			MinEmailLength:       config.Analysis.MinContentLength,
			ShowNotifications:    true,
			NotificationDuration: int(config.Analysis.NotificationDuration / time.Second),
			MaxStoredAnalyses:    config.Analysis.MaxStoredAnalyses,
		},
	}
}

func (r *KVSettingsRepository) Get(ctx context.Context) (*types.Settings, error) {
	data, err := r.kv.Get(ctx, common.Keys.SettingsRecord())
	if err != nil {
		return nil, err
	}

	settings := r.defaults
	if data != nil {
		if err := json.Unmarshal(data, &settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
	}
	return &settings, nil
}

func (r *KVSettingsRepository) Update(ctx context.Context, settings *types.Settings) error {
	if err := ValidateSettings(settings); err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return r.kv.Set(ctx, common.Keys.SettingsRecord(), data)
}

func ValidateSettings(s *types.Settings) error {
	if !strings.HasPrefix(s.APIURL, "http") {
		return fmt.Errorf("%w: apiUrl must start with http", types.ErrValidationFailed)
	}
	if s.MinEmailLength < minEmailLengthFloor || s.MinEmailLength > minEmailLengthCeil {
		return fmt.Errorf("%w: minEmailLength must be between %d and %d", types.ErrValidationFailed, minEmailLengthFloor, minEmailLengthCeil)
	}
	if s.NotificationDuration < notificationFloorSecs || s.NotificationDuration > notificationCeilSecs {
		return fmt.Errorf("%w: notificationDuration must be between %ds and %ds", types.ErrValidationFailed, notificationFloorSecs, notificationCeilSecs)
	}
	if s.MaxStoredAnalyses < maxStoredAnalysesFloor || s.MaxStoredAnalyses > maxStoredAnalysesCeil {
		return fmt.Errorf("%w: maxStoredAnalyses must be between %d and %d", types.ErrValidationFailed, maxStoredAnalysesFloor, maxStoredAnalysesCeil)
	}
	return nil
}

package repository

import (
	"context"

	"github.com/involex/involex/pkg/types"
)

// KeyValue is the narrow store every persisted record lives behind, so the
// backend is swappable and testable with an in-memory fake.
//
// Writers follow read-modify-write with last-writer-wins semantics; there is
// no transactional guard. Two contexts writing the same record in a narrow
// window is a known, accepted race.
type KeyValue interface {
	// Get returns the value, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Keys returns all keys with the given prefix, in no particular order.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// HistoryRepository manages the bounded submission history.
type HistoryRepository interface {
	Add(ctx context.Context, record *types.AnalysisRecord) error
	// Recent returns up to n records, newest first.
	Recent(ctx context.Context, n int) ([]types.AnalysisRecord, error)
	// Prune removes oldest-first until at most max entries remain,
	// returning how many were removed.
	Prune(ctx context.Context, max int) (int, error)
	Clear(ctx context.Context) (int, error)
	Count(ctx context.Context) (int, error)
}

// SettingsRepository manages the user-tunable settings record.
type SettingsRepository interface {
	// Get returns the stored settings, or the defaults when none are stored.
	Get(ctx context.Context) (*types.Settings, error)
	// Update validates and persists the settings.
	Update(ctx context.Context, s *types.Settings) error
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/involex/involex/pkg/common"
	"github.com/involex/involex/pkg/types"
)

// KVHistoryRepository stores analysis records as individual keys whose
// zero-padded unix-nano suffix makes lexicographic order chronological, so
// pruning oldest-first is a key sort.
type KVHistoryRepository struct {
	kv   KeyValue
	lock *common.RedisLock // nil in memory mode
}

func NewKVHistoryRepository(kv KeyValue, lock *common.RedisLock) *KVHistoryRepository {
	return &KVHistoryRepository{kv: kv, lock: lock}
}

func (r *KVHistoryRepository) Add(ctx context.Context, record *types.AnalysisRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	key := common.Keys.AnalysisEntry(record.Timestamp.UnixNano())
	return r.kv.Set(ctx, key, data)
}

func (r *KVHistoryRepository) sortedKeys(ctx context.Context) ([]string, error) {
	keys, err := r.kv.Keys(ctx, common.Keys.AnalysisPrefix())
	if err != nil {
		return nil, err
	}
	sort.Strings(keys) // oldest first
	return keys, nil
}

func (r *KVHistoryRepository) Recent(ctx context.Context, n int) ([]types.AnalysisRecord, error) {
	keys, err := r.sortedKeys(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]types.AnalysisRecord, 0, n)
	for i := len(keys) - 1; i >= 0 && len(out) < n; i-- {
		data, err := r.kv.Get(ctx, keys[i])
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		var rec types.AnalysisRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			log.Warn().Str("key", keys[i]).Err(err).Msg("dropping undecodable analysis record")
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *KVHistoryRepository) Prune(ctx context.Context, max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}

	if r.lock != nil {
		lockKey := common.Keys.HistoryPruneLock()
		if err := r.lock.Acquire(ctx, lockKey, common.RedisLockOptions{TtlS: 10, Retries: 3}); err != nil {
			return 0, fmt.Errorf("prune lock: %w", err)
		}
		defer r.lock.Release(lockKey)
	}

	keys, err := r.sortedKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) <= max {
		return 0, nil
	}

	removed := 0
	for _, key := range keys[:len(keys)-max] {
		if err := r.kv.Delete(ctx, key); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

func (r *KVHistoryRepository) Clear(ctx context.Context) (int, error) {
	keys, err := r.kv.Keys(ctx, common.Keys.AnalysisPrefix())
	if err != nil {
		return 0, err
	}
	for i, key := range keys {
		if err := r.kv.Delete(ctx, key); err != nil {
			return i, err
		}
	}
	return len(keys), nil
}

func (r *KVHistoryRepository) Count(ctx context.Context) (int, error) {
	keys, err := r.kv.Keys(ctx, common.Keys.AnalysisPrefix())
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

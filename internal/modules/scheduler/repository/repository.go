package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"anoa.com/cpquest/internal/entity"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobStateStore keeps the last successful run per named job.
type JobStateStore interface {
	LastRun(ctx context.Context, name string) (time.Time, bool, error)
	MarkRun(ctx context.Context, name string, at time.Time) error
}

type gormStateStore struct {
	db *gorm.DB
}

func NewGormStateStore(db *gorm.DB) JobStateStore {
	return &gormStateStore{db: db}
}

func (s *gormStateStore) LastRun(ctx context.Context, name string) (time.Time, bool, error) {
	var state entity.JobState
	err := s.db.WithContext(ctx).Where("name = ?", name).First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return state.LastRunAt, true, nil
}

func (s *gormStateStore) MarkRun(ctx context.Context, name string, at time.Time) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_run_at", "updated_at"}),
	}).Create(&entity.JobState{Name: name, LastRunAt: at}).Error
}

const redisKeyPrefix = "jobs:last_run:"

type redisStateStore struct {
	client *redis.Client
}

func NewRedisStateStore(client *redis.Client) JobStateStore {
	return &redisStateStore{client: client}
}

func (s *redisStateStore) LastRun(ctx context.Context, name string) (time.Time, bool, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+name).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("corrupt job state for %s: %w", name, err)
	}
	return at, true, nil
}

func (s *redisStateStore) MarkRun(ctx context.Context, name string, at time.Time) error {
	return s.client.Set(ctx, redisKeyPrefix+name, at.UTC().Format(time.RFC3339Nano), 0).Err()
}

// MemoryStateStore is a process-local store for tests and single-shot runs.
type MemoryStateStore struct {
	mu    sync.Mutex
	state map[string]time.Time
}

func NewMemoryStateStore() *MemoryStateStore {
	return &MemoryStateStore{state: make(map[string]time.Time)}
}

func (s *MemoryStateStore) LastRun(_ context.Context, name string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.state[name]
	return at, ok, nil
}

func (s *MemoryStateStore) MarkRun(_ context.Context, name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state[name] = at
	return nil
}

// NewStateStore picks the backend by name: "postgres", "redis" or "memory".
// Redis falls back to postgres when no client is available.
func NewStateStore(backend string, db *gorm.DB, rdb *redis.Client) (JobStateStore, error) {
	switch backend {
	case "", "postgres":
		return NewGormStateStore(db), nil
	case "redis":
		if rdb == nil {
			return NewGormStateStore(db), nil
		}
		return NewRedisStateStore(rdb), nil
	case "memory":
		return NewMemoryStateStore(), nil
	default:
		return nil, fmt.Errorf("unknown job state backend %q", backend)
	}
}

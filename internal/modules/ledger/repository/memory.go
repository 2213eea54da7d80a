package repository

import (
	"context"
	"sync"
	"time"

	"anoa.com/cpquest/internal/entity"
	"anoa.com/cpquest/pkg/apperror"
	"github.com/google/uuid"
)

// MemoryRepository is an in-process LedgerRepository honoring the same
// (user_id, reference_id) uniqueness as the database. Used in tests and local
// dry runs.
type MemoryRepository struct {
	mu       sync.Mutex
	Profiles map[uuid.UUID]*entity.Profile
	Logs     []entity.XPLog
	// FailNext, when set, rolls back the next append with this error.
	FailNext error
}

func NewMemoryRepository(profiles ...*entity.Profile) *MemoryRepository {
	m := &MemoryRepository{Profiles: make(map[uuid.UUID]*entity.Profile)}
	for _, p := range profiles {
		m.Profiles[p.UserID] = p
	}
	return m
}

func (m *MemoryRepository) FindProfile(_ context.Context, userID uuid.UUID) (*entity.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Profiles[userID]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryRepository) AppendAndIncrement(_ context.Context, log *entity.XPLog) (int64, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log.ReferenceID != nil {
		for _, l := range m.Logs {
			if l.UserID == log.UserID && l.ReferenceID != nil && *l.ReferenceID == *log.ReferenceID {
				return 0, 0, apperror.ErrDuplicate
			}
		}
	}
	p, ok := m.Profiles[log.UserID]
	if !ok {
		return 0, 0, apperror.ErrNotFound
	}
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return 0, 0, err
	}

	log.ID = uint(len(m.Logs) + 1)
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	m.Logs = append(m.Logs, *log)
	p.XP += log.Amount
	if p.XP < 0 {
		p.XP = 0
	}
	return p.XP, p.Level, nil
}

func (m *MemoryRepository) UpdateLevel(_ context.Context, userID uuid.UUID, level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Profiles[userID]; ok {
		p.Level = level
	}
	return nil
}

func (m *MemoryRepository) SumSince(_ context.Context, userID uuid.UUID, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, l := range m.Logs {
		if l.UserID == userID && !l.CreatedAt.Before(since) {
			total += l.Amount
		}
	}
	return total, nil
}

// LogsFor returns a copy of the user's ledger entries.
func (m *MemoryRepository) LogsFor(userID uuid.UUID) []entity.XPLog {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.XPLog
	for _, l := range m.Logs {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out
}

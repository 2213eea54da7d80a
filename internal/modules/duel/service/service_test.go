package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"anoa.com/cpquest/internal/entity"
	duelDto "anoa.com/cpquest/internal/modules/duel/dto"
	ledgerRepo "anoa.com/cpquest/internal/modules/ledger/repository"
	ledgerService "anoa.com/cpquest/internal/modules/ledger/service"
	notifMock "anoa.com/cpquest/internal/modules/notification/mock"
	"anoa.com/cpquest/internal/modules/platform/client"
	platformMock "anoa.com/cpquest/internal/modules/platform/mock"
	"anoa.com/cpquest/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type memDuelRepo struct {
	mu       sync.Mutex
	duels    map[uuid.UUID]*entity.Duel
	profiles map[uuid.UUID]entity.Profile
}

func (m *memDuelRepo) Create(_ context.Context, d *entity.Duel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	cp := *d
	m.duels[d.ID] = &cp
	return nil
}

func (m *memDuelRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.duels[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDuelRepo) FindActive(context.Context) ([]entity.Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Duel
	for _, d := range m.duels {
		if d.Status == entity.DuelActive {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memDuelRepo) FindProfiles(_ context.Context, ids ...uuid.UUID) (map[uuid.UUID]entity.Profile, error) {
	out := map[uuid.UUID]entity.Profile{}
	for _, id := range ids {
		if p, ok := m.profiles[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func (m *memDuelRepo) ExpirePending(_ context.Context, cutoff time.Time) ([]entity.Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Duel
	for _, d := range m.duels {
		if d.Status == entity.DuelPending && d.CreatedAt.Before(cutoff) {
			d.Status = entity.DuelExpired
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memDuelRepo) Transition(_ context.Context, id uuid.UUID, from entity.DuelStatus, updates map[string]interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.duels[id]
	if !ok || d.Status != from {
		return false, nil
	}
	for k, v := range updates {
		switch k {
		case "status":
			d.Status = v.(entity.DuelStatus)
		case "winner_id":
			d.WinnerID = v.(*uuid.UUID)
		case "challenger_solve_seconds":
			d.ChallengerSolveSeconds = v.(*int)
		case "challenged_solve_seconds":
			d.ChallengedSolveSeconds = v.(*int)
		case "started_at":
			t := v.(time.Time)
			d.StartedAt = &t
		case "expires_at":
			t := v.(time.Time)
			d.ExpiresAt = &t
		case "completed_at":
			t := v.(time.Time)
			d.CompletedAt = &t
		}
	}
	return true, nil
}

func (m *memDuelRepo) FindUnpaid(context.Context) ([]entity.Duel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Duel
	for _, d := range m.duels {
		if d.Status == entity.DuelCompleted && d.PaidAt == nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memDuelRepo) MarkPaid(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.duels[id]
	if !ok || d.Status != entity.DuelCompleted || d.PaidAt != nil {
		return false, nil
	}
	d.PaidAt = &at
	return true, nil
}

var now = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	repo       *memDuelRepo
	ledger     *ledgerRepo.MemoryRepository
	cf         *platformMock.MockClient
	notifier   *notifMock.MockNotificationService
	svc        *duelService
	challenger entity.Profile
	challenged entity.Profile
}

func handle(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	a := &entity.Profile{UserID: uuid.New(), Username: "ana", CodeforcesHandle: handle("ana_cf"), Level: 1}
	b := &entity.Profile{UserID: uuid.New(), Username: "ben", CodeforcesHandle: handle("ben_cf"), Level: 1}
	lrepo := ledgerRepo.NewMemoryRepository(a, b)
	repo := &memDuelRepo{
		duels:    map[uuid.UUID]*entity.Duel{},
		profiles: map[uuid.UUID]entity.Profile{a.UserID: *a, b.UserID: *b},
	}
	cf := platformMock.NewMockClient(ctrl)
	notifier := notifMock.NewMockNotificationService(ctrl)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).AnyTimes()

	svc := NewDuelService(repo, cf, ledgerService.NewLedgerService(lrepo, nil), notifier, Options{
		WinXP:           50,
		ParticipationXP: 10,
		PendingTTL:      24 * time.Hour,
		Window:          50,
	}).(*duelService)
	svc.now = func() time.Time { return now }

	return &fixture{repo: repo, ledger: lrepo, cf: cf, notifier: notifier, svc: svc, challenger: *a, challenged: *b}
}

func (f *fixture) activeDuel(started time.Time, limit time.Duration) *entity.Duel {
	expires := started.Add(limit)
	d := &entity.Duel{
		ID:               uuid.New(),
		ChallengerID:     f.challenger.UserID,
		ChallengedID:     f.challenged.UserID,
		ProblemID:        "1850C",
		TimeLimitMinutes: int(limit.Minutes()),
		Status:           entity.DuelActive,
		StartedAt:        &started,
		ExpiresAt:        &expires,
		CreatedAt:        started.Add(-time.Minute),
	}
	f.repo.duels[d.ID] = d
	return d
}

func accepted(problem string, at time.Time) client.Submission {
	return client.Submission{ProblemID: problem, Verdict: client.VerdictAccepted, SubmittedAt: at}
}

func (f *fixture) submissions(h string, subs ...client.Submission) {
	f.cf.EXPECT().RecentSubmissions(gomock.Any(), h, 50).Return(subs, nil).AnyTimes()
}

func (f *fixture) xp(id uuid.UUID) int64 {
	return f.ledger.Profiles[id].XP
}

func TestResolveAll_FasterSolveWins(t *testing.T) {
	f := newFixture(t)
	start := now.Add(-10 * time.Minute)
	d := f.activeDuel(start, 30*time.Minute)

	f.submissions("ana_cf", accepted("1850C", start.Add(90*time.Second)))
	f.submissions("ben_cf", accepted("1850C", start.Add(75*time.Second)))

	summary, err := f.svc.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Completed)

	got := f.repo.duels[d.ID]
	assert.Equal(t, entity.DuelCompleted, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, f.challenged.UserID, *got.WinnerID)
	assert.Equal(t, 90, *got.ChallengerSolveSeconds)
	assert.Equal(t, 75, *got.ChallengedSolveSeconds)
	assert.Equal(t, int64(50), f.xp(f.challenged.UserID))
	assert.Equal(t, int64(10), f.xp(f.challenger.UserID))
}

func TestResolveAll_SingleSolverWinsAtExpiry(t *testing.T) {
	f := newFixture(t)
	start := now.Add(-40 * time.Minute)
	d := f.activeDuel(start, 30*time.Minute)

	f.submissions("ana_cf", accepted("1850C", start.Add(20*time.Minute)))
	f.submissions("ben_cf", accepted("1850C", start.Add(35*time.Minute)))

	_, err := f.svc.ResolveAll(context.Background())
	require.NoError(t, err)

	got := f.repo.duels[d.ID]
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, f.challenger.UserID, *got.WinnerID)
	assert.Nil(t, got.ChallengedSolveSeconds)
}

func TestResolveAll_OneSolveBeforeExpiryWaits(t *testing.T) {
	f := newFixture(t)
	start := now.Add(-5 * time.Minute)
	d := f.activeDuel(start, 30*time.Minute)

	f.submissions("ana_cf", accepted("1850C", start.Add(time.Minute)))
	f.submissions("ben_cf")

	summary, err := f.svc.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Waiting)
	assert.Equal(t, entity.DuelActive, f.repo.duels[d.ID].Status)
	assert.Empty(t, f.ledger.Logs)
}

func TestResolveAll_DrawPaysBothParticipation(t *testing.T) {
	f := newFixture(t)
	start := now.Add(-2 * time.Hour)
	d := f.activeDuel(start, 60*time.Minute)

	f.submissions("ana_cf", accepted("1A", start.Add(time.Minute)))
	f.submissions("ben_cf", accepted("1850C", start.Add(-time.Hour)))

	_, err := f.svc.ResolveAll(context.Background())
	require.NoError(t, err)

	got := f.repo.duels[d.ID]
	assert.Equal(t, entity.DuelCompleted, got.Status)
	assert.Nil(t, got.WinnerID)
	assert.Equal(t, int64(10), f.xp(f.challenger.UserID))
	assert.Equal(t, int64(10), f.xp(f.challenged.UserID))
}

func TestResolveAll_EqualTimesDraw(t *testing.T) {
	f := newFixture(t)
	start := now.Add(-10 * time.Minute)
	d := f.activeDuel(start, 30*time.Minute)

	f.submissions("ana_cf", accepted("1850C", start.Add(time.Minute)))
	f.submissions("ben_cf", accepted("1850C", start.Add(time.Minute)))

	_, err := f.svc.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, f.repo.duels[d.ID].WinnerID)
}

func TestResolveAll_SinglePayout(t *testing.T) {
	f := newFixture(t)
	start := now.Add(-10 * time.Minute)
	d := f.activeDuel(start, 30*time.Minute)
	f.submissions("ana_cf", accepted("1850C", start.Add(time.Minute)))
	f.submissions("ben_cf", accepted("1850C", start.Add(2*time.Minute)))

	_, err := f.svc.ResolveAll(context.Background())
	require.NoError(t, err)

	// a re-entrant run that still sees the duel as active
	f.repo.duels[d.ID].Status = entity.DuelActive
	_, err = f.svc.ResolveAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, f.ledger.LogsFor(f.challenger.UserID), 1)
	assert.Len(t, f.ledger.LogsFor(f.challenged.UserID), 1)
	assert.Equal(t, int64(50), f.xp(f.challenger.UserID))
}

func TestResolveAll_ExpiryIgnoresSubmissionsCachedBeforeDeadline(t *testing.T) {
	f := newFixture(t)
	cached, err := client.NewCachedClient(f.cf, 16, time.Minute)
	require.NoError(t, err)
	f.svc.platform = cached

	// the cache stamps entries with the wall clock, so keep the duel clock ahead of it
	clock := time.Now().Add(time.Hour)
	f.svc.now = func() time.Time { return clock }
	start := clock.Add(-31 * time.Minute)
	d := f.activeDuel(start, 30*time.Minute)

	gomock.InOrder(
		f.cf.EXPECT().RecentSubmissions(gomock.Any(), "ben_cf", 50).Return(nil, nil),
		f.cf.EXPECT().RecentSubmissions(gomock.Any(), "ben_cf", 50).
			Return([]client.Submission{accepted("1850C", start.Add(300*time.Second))}, nil),
	)
	f.submissions("ana_cf", accepted("1850C", start.Add(1200*time.Second)))

	// an earlier sync in the same trigger warmed the cache
	_, err = cached.RecentSubmissions(context.Background(), "ben_cf", 50)
	require.NoError(t, err)

	_, err = f.svc.ResolveAll(context.Background())
	require.NoError(t, err)

	got := f.repo.duels[d.ID]
	assert.Equal(t, entity.DuelCompleted, got.Status)
	require.NotNil(t, got.WinnerID)
	assert.Equal(t, f.challenged.UserID, *got.WinnerID)
	require.NotNil(t, got.ChallengedSolveSeconds)
	assert.Equal(t, 300, *got.ChallengedSolveSeconds)
}

func TestResolveAll_FailedPayoutRetriedNextRun(t *testing.T) {
	f := newFixture(t)
	start := now.Add(-10 * time.Minute)
	d := f.activeDuel(start, 30*time.Minute)
	f.submissions("ana_cf", accepted("1850C", start.Add(time.Minute)))
	f.submissions("ben_cf", accepted("1850C", start.Add(2*time.Minute)))
	f.ledger.FailNext = errors.New("connection reset")

	summary, err := f.svc.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, entity.DuelCompleted, f.repo.duels[d.ID].Status)
	assert.Nil(t, f.repo.duels[d.ID].PaidAt)
	assert.Equal(t, int64(0), f.xp(f.challenger.UserID))

	summary, err = f.svc.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Repaid)
	assert.NotNil(t, f.repo.duels[d.ID].PaidAt)
	assert.Equal(t, int64(50), f.xp(f.challenger.UserID))
	assert.Equal(t, int64(10), f.xp(f.challenged.UserID))
	assert.Len(t, f.ledger.LogsFor(f.challenger.UserID), 1)
	assert.Len(t, f.ledger.LogsFor(f.challenged.UserID), 1)
}

func TestResolveAll_PlatformFailureSkipsDuel(t *testing.T) {
	f := newFixture(t)
	start := now.Add(-10 * time.Minute)
	d := f.activeDuel(start, 30*time.Minute)
	f.cf.EXPECT().RecentSubmissions(gomock.Any(), "ana_cf", 50).Return(nil, apperror.ErrExternal)

	summary, err := f.svc.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, entity.DuelActive, f.repo.duels[d.ID].Status)
}

func TestResolveAll_ExpiresStalePending(t *testing.T) {
	f := newFixture(t)
	stale := &entity.Duel{ID: uuid.New(), ChallengerID: f.challenger.UserID, ChallengedID: f.challenged.UserID,
		Status: entity.DuelPending, CreatedAt: now.Add(-25 * time.Hour)}
	fresh := &entity.Duel{ID: uuid.New(), ChallengerID: f.challenger.UserID, ChallengedID: f.challenged.UserID,
		Status: entity.DuelPending, CreatedAt: now.Add(-time.Hour)}
	f.repo.duels[stale.ID] = stale
	f.repo.duels[fresh.ID] = fresh

	summary, err := f.svc.ResolveAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Expired)
	assert.Equal(t, entity.DuelExpired, stale.Status)
	assert.Equal(t, entity.DuelPending, fresh.Status)
}

func TestChallengeLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	duel, err := f.svc.Challenge(ctx, f.challenger.UserID, duelDto.ChallengeRequest{
		ChallengedID:     f.challenged.UserID,
		ProblemID:        "1850C",
		TimeLimitMinutes: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, entity.DuelPending, duel.Status)

	_, err = f.svc.Accept(ctx, duel.ID, f.challenger.UserID)
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	accepted, err := f.svc.Accept(ctx, duel.ID, f.challenged.UserID)
	require.NoError(t, err)
	assert.Equal(t, entity.DuelActive, accepted.Status)
	assert.Equal(t, now.Add(30*time.Minute), *accepted.ExpiresAt)

	_, err = f.svc.Decline(ctx, duel.ID, f.challenged.UserID)
	assert.ErrorIs(t, err, apperror.ErrConflict)
}

func TestChallenge_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  duelDto.ChallengeRequest
		want error
	}{
		{"missing problem", duelDto.ChallengeRequest{ChallengedID: f.challenged.UserID, TimeLimitMinutes: 30}, apperror.ErrInvalidInput},
		{"limit too short", duelDto.ChallengeRequest{ChallengedID: f.challenged.UserID, ProblemID: "1A", TimeLimitMinutes: 1}, apperror.ErrInvalidInput},
		{"self challenge", duelDto.ChallengeRequest{ChallengedID: f.challenger.UserID, ProblemID: "1A", TimeLimitMinutes: 30}, apperror.ErrInvalidInput},
		{"unknown opponent", duelDto.ChallengeRequest{ChallengedID: uuid.New(), ProblemID: "1A", TimeLimitMinutes: 30}, apperror.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Challenge(ctx, f.challenger.UserID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDecline(t *testing.T) {
	f := newFixture(t)
	d := &entity.Duel{ID: uuid.New(), ChallengerID: f.challenger.UserID, ChallengedID: f.challenged.UserID,
		Status: entity.DuelPending, CreatedAt: now}
	f.repo.duels[d.ID] = d

	got, err := f.svc.Decline(context.Background(), d.ID, f.challenged.UserID)
	require.NoError(t, err)
	assert.Equal(t, entity.DuelDeclined, got.Status)
	assert.True(t, got.Status.Terminal())
}

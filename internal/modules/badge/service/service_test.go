package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"anoa.com/cpquest/internal/entity"
	"anoa.com/cpquest/internal/modules/badge/condition"
	ledgerRepo "anoa.com/cpquest/internal/modules/ledger/repository"
	ledgerService "anoa.com/cpquest/internal/modules/ledger/service"
	"anoa.com/cpquest/internal/modules/notification/mock"
	"anoa.com/cpquest/pkg/apperror"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/datatypes"
)

type fakeBadgeRepo struct {
	mu     sync.Mutex
	badges []entity.Badge
	earned map[uuid.UUID]map[string]bool
	stats  condition.Stats
	// grantConflict simulates a concurrent evaluator inserting first.
	grantConflict map[string]bool
}

func newFakeBadgeRepo(stats condition.Stats, badges ...entity.Badge) *fakeBadgeRepo {
	return &fakeBadgeRepo{
		badges:        badges,
		earned:        make(map[uuid.UUID]map[string]bool),
		stats:         stats,
		grantConflict: make(map[string]bool),
	}
}

func (f *fakeBadgeRepo) FindAutoBadges(context.Context) ([]entity.Badge, error) {
	var out []entity.Badge
	for _, b := range f.badges {
		if b.ConditionType == entity.BadgeConditionAuto {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBadgeRepo) FindByID(_ context.Context, id string) (*entity.Badge, error) {
	for _, b := range f.badges {
		if b.ID == id {
			b := b
			return &b, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (f *fakeBadgeRepo) FindEarnedBadgeIDs(_ context.Context, userID uuid.UUID) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id := range f.earned[userID] {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeBadgeRepo) GrantBadge(_ context.Context, userID uuid.UUID, badgeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.grantConflict[badgeID] {
		return false, nil
	}
	if f.earned[userID] == nil {
		f.earned[userID] = make(map[string]bool)
	}
	if f.earned[userID][badgeID] {
		return false, nil
	}
	f.earned[userID][badgeID] = true
	return true, nil
}

func (f *fakeBadgeRepo) BuildStats(context.Context, uuid.UUID, *time.Location) (condition.Stats, error) {
	return f.stats, nil
}

func badge(id, kind, cond string) entity.Badge {
	return entity.Badge{ID: id, Name: id, ConditionType: kind, Condition: datatypes.JSON(cond)}
}

type fixture struct {
	repo     *fakeBadgeRepo
	ledger   *ledgerRepo.MemoryRepository
	notifier *mock.MockNotificationService
	svc      BadgeService
	user     *entity.Profile
}

func newFixture(t *testing.T, stats condition.Stats, badges ...entity.Badge) *fixture {
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockNotificationService(ctrl)
	user := &entity.Profile{UserID: uuid.New(), Username: "bob", Level: 1}
	lrepo := ledgerRepo.NewMemoryRepository(user)
	repo := newFakeBadgeRepo(stats, badges...)

	return &fixture{
		repo:     repo,
		ledger:   lrepo,
		notifier: notifier,
		svc:      NewBadgeService(repo, ledgerService.NewLedgerService(lrepo, nil), notifier, 50, time.UTC),
		user:     user,
	}
}

func TestCheckAndAward_GrantsSatisfiedOnly(t *testing.T) {
	f := newFixture(t, condition.Stats{TotalSolves: 12, LongestStreak: 3},
		badge("ten_solves", entity.BadgeConditionAuto, `{"type":"total_solves","count":10}`),
		badge("week_streak", entity.BadgeConditionAuto, `{"type":"streak","days":7}`),
		badge("mentor", entity.BadgeConditionManual, `{}`),
	)
	f.notifier.EXPECT().
		Notify(gomock.Any(), f.user.UserID, entity.NotifBadgeEarned, gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).
		Times(1)

	granted, err := f.svc.CheckAndAward(context.Background(), f.user.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ten_solves"}, granted)

	logs := f.ledger.LogsFor(f.user.UserID)
	require.Len(t, logs, 1)
	assert.Equal(t, "badge_ten_solves", *logs[0].ReferenceID)
	assert.Equal(t, int64(50), logs[0].Amount)
}

func TestCheckAndAward_SecondRunIsNoop(t *testing.T) {
	f := newFixture(t, condition.Stats{TotalSolves: 12},
		badge("ten_solves", entity.BadgeConditionAuto, `{"type":"total_solves","count":10}`),
	)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).Times(1)

	ctx := context.Background()
	_, err := f.svc.CheckAndAward(ctx, f.user.UserID)
	require.NoError(t, err)

	granted, err := f.svc.CheckAndAward(ctx, f.user.UserID)
	require.NoError(t, err)
	assert.Empty(t, granted)
	assert.Len(t, f.ledger.LogsFor(f.user.UserID), 1)
}

func TestCheckAndAward_ConflictSkipsDownstreamEffects(t *testing.T) {
	f := newFixture(t, condition.Stats{TotalSolves: 100, DuelsWon: 1},
		badge("century", entity.BadgeConditionAuto, `{"type":"total_solves","count":100}`),
		badge("first_duel", entity.BadgeConditionAuto, `{"type":"duels_won","count":1}`),
	)
	// a concurrent evaluator already paid and inserted century
	ref := ReferenceID("century")
	_, _, err := f.ledger.AppendAndIncrement(context.Background(), &entity.XPLog{UserID: f.user.UserID, Amount: 50, ReferenceID: &ref})
	require.NoError(t, err)
	f.repo.grantConflict["century"] = true
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).Times(1)

	granted, err := f.svc.CheckAndAward(context.Background(), f.user.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"first_duel"}, granted)

	logs := f.ledger.LogsFor(f.user.UserID)
	require.Len(t, logs, 2)
	assert.Equal(t, "badge_century", *logs[0].ReferenceID)
	assert.Equal(t, "badge_first_duel", *logs[1].ReferenceID)
	assert.Equal(t, int64(100), f.ledger.Profiles[f.user.UserID].XP)
}

func TestCheckAndAward_FailedPayoutIsRetried(t *testing.T) {
	f := newFixture(t, condition.Stats{TotalSolves: 10},
		badge("ten_solves", entity.BadgeConditionAuto, `{"type":"total_solves","count":10}`),
	)
	f.ledger.FailNext = errors.New("connection reset")
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).Times(1)
	ctx := context.Background()

	granted, err := f.svc.CheckAndAward(ctx, f.user.UserID)
	require.NoError(t, err)
	assert.Empty(t, granted)
	assert.False(t, f.repo.earned[f.user.UserID]["ten_solves"])

	granted, err = f.svc.CheckAndAward(ctx, f.user.UserID)
	require.NoError(t, err)
	assert.Equal(t, []string{"ten_solves"}, granted)
	assert.Len(t, f.ledger.LogsFor(f.user.UserID), 1)
	assert.Equal(t, int64(50), f.ledger.Profiles[f.user.UserID].XP)
}

func TestCheckAndAward_UnknownTypeNeverFires(t *testing.T) {
	f := newFixture(t, condition.Stats{TotalSolves: 1 << 20},
		badge("mystery", entity.BadgeConditionAuto, `{"type":"telepathy","count":1}`),
		badge("broken", entity.BadgeConditionAuto, `{"type":"total_solves","count":"many"}`),
	)

	granted, err := f.svc.CheckAndAward(context.Background(), f.user.UserID)
	require.NoError(t, err)
	assert.Empty(t, granted)
	assert.Empty(t, f.ledger.LogsFor(f.user.UserID))
}

func TestCheckAndAward_ConcurrentCallsPayOnce(t *testing.T) {
	f := newFixture(t, condition.Stats{TotalSolves: 10},
		badge("ten_solves", entity.BadgeConditionAuto, `{"type":"total_solves","count":10}`),
	)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).Times(1)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.CheckAndAward(context.Background(), f.user.UserID)
		}()
	}
	wg.Wait()

	assert.Len(t, f.ledger.LogsFor(f.user.UserID), 1)
	assert.Equal(t, int64(50), f.ledger.Profiles[f.user.UserID].XP)
}

func TestGrantManual(t *testing.T) {
	f := newFixture(t, condition.Stats{},
		badge("mentor", entity.BadgeConditionManual, `{}`),
		badge("ten_solves", entity.BadgeConditionAuto, `{"type":"total_solves","count":10}`),
	)
	f.notifier.EXPECT().Notify(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil).Times(1)
	ctx := context.Background()

	ok, err := f.svc.GrantManual(ctx, f.user.UserID, "mentor")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.GrantManual(ctx, f.user.UserID, "mentor")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.svc.GrantManual(ctx, f.user.UserID, "ten_solves")
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	_, err = f.svc.GrantManual(ctx, f.user.UserID, "nope")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

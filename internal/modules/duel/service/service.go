package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"anoa.com/cpquest/internal/entity"
	duelDto "anoa.com/cpquest/internal/modules/duel/dto"
	duelRepo "anoa.com/cpquest/internal/modules/duel/repository"
	ledgerService "anoa.com/cpquest/internal/modules/ledger/service"
	notifService "anoa.com/cpquest/internal/modules/notification/service"
	"anoa.com/cpquest/internal/modules/platform/client"
	"anoa.com/cpquest/pkg/apperror"
	"anoa.com/cpquest/pkg/batch"
	pkgValidator "anoa.com/cpquest/pkg/validator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type Options struct {
	WinXP           int64
	ParticipationXP int64
	PendingTTL      time.Duration
	PollDelay       time.Duration
	Window          int
}

type ResolveSummary struct {
	Expired   int
	Checked   int
	Completed int
	Waiting   int
	Failed    int
	// Repaid counts completed duels whose earlier payout failed and was
	// settled on this run.
	Repaid int
}

type DuelService interface {
	Challenge(ctx context.Context, challengerID uuid.UUID, req duelDto.ChallengeRequest) (*entity.Duel, error)
	Accept(ctx context.Context, duelID, userID uuid.UUID) (*entity.Duel, error)
	Decline(ctx context.Context, duelID, userID uuid.UUID) (*entity.Duel, error)
	GetDuel(ctx context.Context, duelID uuid.UUID) (*entity.Duel, error)
	// ResolveAll expires stale challenges, retries unconfirmed payouts and
	// settles finished active duels. Duels are polled one at a time with a
	// fixed pause between them.
	ResolveAll(ctx context.Context) (ResolveSummary, error)
}

type duelService struct {
	repo                duelRepo.DuelRepository
	platform            client.Client
	ledger              ledgerService.LedgerService
	notificationService notifService.NotificationService
	validate            *validator.Validate
	opts                Options
	now                 func() time.Time
}

func NewDuelService(repo duelRepo.DuelRepository, platform client.Client, ledger ledgerService.LedgerService, notificationService notifService.NotificationService, opts Options) DuelService {
	if opts.PendingTTL <= 0 {
		opts.PendingTTL = 24 * time.Hour
	}
	if opts.Window <= 0 {
		opts.Window = client.DefaultWindow
	}
	return &duelService{
		repo:                repo,
		platform:            platform,
		ledger:              ledger,
		notificationService: notificationService,
		validate:            validator.New(),
		opts:                opts,
		now:                 time.Now,
	}
}

// ReferenceID is the ledger key shared by both payouts of a duel.
func ReferenceID(duelID uuid.UUID) string {
	return "duel_" + duelID.String()
}

func (s *duelService) Challenge(ctx context.Context, challengerID uuid.UUID, req duelDto.ChallengeRequest) (*entity.Duel, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperror.New(http.StatusBadRequest, pkgValidator.FormatValidationError(err), apperror.ErrInvalidInput)
	}
	if req.ChallengedID == challengerID {
		return nil, fmt.Errorf("%w: cannot challenge yourself", apperror.ErrInvalidInput)
	}

	profiles, err := s.repo.FindProfiles(ctx, challengerID, req.ChallengedID)
	if err != nil {
		return nil, err
	}
	for _, id := range []uuid.UUID{challengerID, req.ChallengedID} {
		p, ok := profiles[id]
		if !ok {
			return nil, fmt.Errorf("%w: profile %s", apperror.ErrNotFound, id)
		}
		if p.Handle() == "" {
			return nil, fmt.Errorf("%w: %s has no linked codeforces handle", apperror.ErrBadRequest, p.Username)
		}
	}

	duel := &entity.Duel{
		ChallengerID:     challengerID,
		ChallengedID:     req.ChallengedID,
		ProblemID:        req.ProblemID,
		ProblemName:      req.ProblemName,
		TimeLimitMinutes: req.TimeLimitMinutes,
		Status:           entity.DuelPending,
		CreatedAt:        s.now(),
	}
	if err := s.repo.Create(ctx, duel); err != nil {
		return nil, err
	}
	return duel, nil
}

func (s *duelService) Accept(ctx context.Context, duelID, userID uuid.UUID) (*entity.Duel, error) {
	duel, err := s.pendingFor(ctx, duelID, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if now.Sub(duel.CreatedAt) >= s.opts.PendingTTL {
		if _, err := s.repo.Transition(ctx, duelID, entity.DuelPending, map[string]interface{}{"status": entity.DuelExpired}); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: challenge has expired", apperror.ErrConflict)
	}

	expires := now.Add(time.Duration(duel.TimeLimitMinutes) * time.Minute)
	ok, err := s.repo.Transition(ctx, duelID, entity.DuelPending, map[string]interface{}{
		"status":     entity.DuelActive,
		"started_at": now,
		"expires_at": expires,
	})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: duel is no longer pending", apperror.ErrConflict)
	}

	duel.Status = entity.DuelActive
	duel.StartedAt = &now
	duel.ExpiresAt = &expires
	return duel, nil
}

func (s *duelService) Decline(ctx context.Context, duelID, userID uuid.UUID) (*entity.Duel, error) {
	duel, err := s.pendingFor(ctx, duelID, userID)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.Transition(ctx, duelID, entity.DuelPending, map[string]interface{}{"status": entity.DuelDeclined})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: duel is no longer pending", apperror.ErrConflict)
	}
	duel.Status = entity.DuelDeclined
	return duel, nil
}

func (s *duelService) pendingFor(ctx context.Context, duelID, userID uuid.UUID) (*entity.Duel, error) {
	duel, err := s.repo.FindByID(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if duel.ChallengedID != userID {
		return nil, apperror.ErrForbidden
	}
	if duel.Status != entity.DuelPending {
		return nil, fmt.Errorf("%w: duel is %s", apperror.ErrConflict, duel.Status)
	}
	return duel, nil
}

func (s *duelService) GetDuel(ctx context.Context, duelID uuid.UUID) (*entity.Duel, error) {
	return s.repo.FindByID(ctx, duelID)
}

func (s *duelService) ResolveAll(ctx context.Context) (ResolveSummary, error) {
	var summary ResolveSummary

	expired, err := s.repo.ExpirePending(ctx, s.now().Add(-s.opts.PendingTTL))
	if err != nil {
		return summary, fmt.Errorf("expire pending duels: %w", err)
	}
	summary.Expired = len(expired)
	for _, d := range expired {
		s.notify(ctx, d.ChallengerID, entity.NotifDuelExpired, "⌛ Duel challenge expired",
			fmt.Sprintf("Your challenge on %s was not accepted in time.", problemLabel(d)), d.ID)
	}

	unpaid, err := s.repo.FindUnpaid(ctx)
	if err != nil {
		return summary, fmt.Errorf("load unpaid duels: %w", err)
	}
	for _, d := range unpaid {
		if err := s.settle(ctx, d); err != nil {
			summary.Failed++
			log.Printf("❌ [Duel] payout for %s still failing: %v", d.ID, err)
			continue
		}
		summary.Repaid++
	}

	active, err := s.repo.FindActive(ctx)
	if err != nil {
		return summary, fmt.Errorf("load active duels: %w", err)
	}

	for i, d := range active {
		if i > 0 && s.opts.PollDelay > 0 {
			if err := batch.Sleep(ctx, s.opts.PollDelay); err != nil {
				return summary, err
			}
		}

		summary.Checked++
		done, err := s.resolveOne(ctx, d)
		switch {
		case err != nil:
			summary.Failed++
			log.Printf("❌ [Duel] %s skipped: %v", d.ID, err)
		case done:
			summary.Completed++
		default:
			summary.Waiting++
		}
	}

	log.Printf("✅ [Duel] expired=%d checked=%d completed=%d repaid=%d failed=%d",
		summary.Expired, summary.Checked, summary.Completed, summary.Repaid, summary.Failed)
	return summary, nil
}

func (s *duelService) resolveOne(ctx context.Context, d entity.Duel) (bool, error) {
	if d.StartedAt == nil {
		return false, fmt.Errorf("active duel without start time")
	}

	profiles, err := s.repo.FindProfiles(ctx, d.ChallengerID, d.ChallengedID)
	if err != nil {
		return false, err
	}

	deadline := s.now()
	if d.ExpiresAt != nil && d.ExpiresAt.Before(deadline) {
		deadline = *d.ExpiresAt
		// the result is final, so it must not rest on a list cached before expiry
		ctx = client.FetchedAfter(ctx, deadline)
	}

	challengerSecs, err := s.sideSolve(ctx, profiles[d.ChallengerID], d, deadline)
	if err != nil {
		return false, err
	}
	challengedSecs, err := s.sideSolve(ctx, profiles[d.ChallengedID], d, deadline)
	if err != nil {
		return false, err
	}

	done, winner := outcome(d, challengerSecs, challengedSecs, s.now())
	if !done {
		return false, nil
	}

	completedAt := s.now()
	ok, err := s.repo.Transition(ctx, d.ID, entity.DuelActive, map[string]interface{}{
		"status":                   entity.DuelCompleted,
		"winner_id":                winner,
		"challenger_solve_seconds": challengerSecs,
		"challenged_solve_seconds": challengedSecs,
		"completed_at":             completedAt,
	})
	if err != nil {
		return false, fmt.Errorf("complete duel: %w", err)
	}
	if !ok {
		// Completed by a concurrent run, which also pays out.
		return true, nil
	}

	d.Status = entity.DuelCompleted
	d.WinnerID = winner
	if err := s.settle(ctx, d); err != nil {
		return true, fmt.Errorf("payout: %w", err)
	}
	return true, nil
}

func (s *duelService) sideSolve(ctx context.Context, p entity.Profile, d entity.Duel, deadline time.Time) (*int, error) {
	handle := p.Handle()
	if handle == "" {
		return nil, nil
	}
	subs, err := s.platform.RecentSubmissions(ctx, handle, s.opts.Window)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("submissions for %s: %w", handle, err)
	}
	return solveSeconds(subs, d.ProblemID, *d.StartedAt, deadline), nil
}

// settle pays both sides of a completed duel and then confirms it. Awards are
// keyed by the duel reference id, so a retry after a partial failure pays only
// what is missing. Only the run that confirms the payout notifies.
func (s *duelService) settle(ctx context.Context, d entity.Duel) error {
	ref := ReferenceID(d.ID)
	label := problemLabel(d)
	winner := d.WinnerID

	if winner == nil {
		for _, id := range []uuid.UUID{d.ChallengerID, d.ChallengedID} {
			if err := s.award(ctx, id, s.opts.ParticipationXP, "Duel draw: "+label, ref); err != nil {
				return err
			}
		}
	} else {
		if err := s.award(ctx, *winner, s.opts.WinXP, "Duel won: "+label, ref); err != nil {
			return err
		}
		if err := s.award(ctx, loserOf(d, *winner), s.opts.ParticipationXP, "Duel participation: "+label, ref); err != nil {
			return err
		}
	}

	confirmed, err := s.repo.MarkPaid(ctx, d.ID, s.now())
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	if !confirmed {
		return nil
	}

	if winner == nil {
		for _, id := range []uuid.UUID{d.ChallengerID, d.ChallengedID} {
			s.notify(ctx, id, entity.NotifDuelDraw, "🤝 Duel ended in a draw",
				fmt.Sprintf("Nobody out-solved the other on %s. +%d XP", label, s.opts.ParticipationXP), d.ID)
		}
		return nil
	}
	s.notify(ctx, *winner, entity.NotifDuelWon, "⚔️ You won the duel!",
		fmt.Sprintf("You solved %s first. +%d XP", label, s.opts.WinXP), d.ID)
	s.notify(ctx, loserOf(d, *winner), entity.NotifDuelLost, "Duel lost",
		fmt.Sprintf("Your opponent solved %s first. +%d XP for taking part", label, s.opts.ParticipationXP), d.ID)
	return nil
}

func loserOf(d entity.Duel, winner uuid.UUID) uuid.UUID {
	if winner == d.ChallengerID {
		return d.ChallengedID
	}
	return d.ChallengerID
}

func (s *duelService) award(ctx context.Context, userID uuid.UUID, amount int64, reason, ref string) error {
	if amount <= 0 {
		return nil
	}
	if _, err := s.ledger.AwardXP(ctx, userID, amount, reason, ref); err != nil {
		return fmt.Errorf("award %s: %w", userID, err)
	}
	return nil
}

func (s *duelService) notify(ctx context.Context, userID uuid.UUID, notifType, title, body string, duelID uuid.UUID) {
	if s.notificationService == nil {
		return
	}
	if err := s.notificationService.Notify(ctx, userID, notifType, title, body, map[string]any{"duel_id": duelID.String()}); err != nil {
		log.Printf("⚠️ [Duel] %s notification for %s failed: %v", notifType, userID, err)
	}
}

func problemLabel(d entity.Duel) string {
	if d.ProblemName != "" {
		return fmt.Sprintf("%s (%s)", d.ProblemName, d.ProblemID)
	}
	return d.ProblemID
}

package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"anoa.com/cpquest/internal/entity"
	"anoa.com/cpquest/internal/modules/badge/condition"
	badgeRepo "anoa.com/cpquest/internal/modules/badge/repository"
	ledgerService "anoa.com/cpquest/internal/modules/ledger/service"
	notifService "anoa.com/cpquest/internal/modules/notification/service"
	"anoa.com/cpquest/pkg/apperror"
	"github.com/google/uuid"
)

type BadgeService interface {
	// CheckAndAward grants every unearned auto badge whose condition holds and
	// returns the ids granted by this call.
	CheckAndAward(ctx context.Context, userID uuid.UUID) ([]string, error)
	// GrantManual awards a manual badge out of band. Reports false when the
	// user already had it.
	GrantManual(ctx context.Context, userID uuid.UUID, badgeID string) (bool, error)
}

type badgeService struct {
	repo                badgeRepo.BadgeRepository
	ledger              ledgerService.LedgerService
	notificationService notifService.NotificationService
	badgeXP             int64
	loc                 *time.Location
}

func NewBadgeService(repo badgeRepo.BadgeRepository, ledger ledgerService.LedgerService, notificationService notifService.NotificationService, badgeXP int64, loc *time.Location) BadgeService {
	if loc == nil {
		loc = time.UTC
	}
	return &badgeService{
		repo:                repo,
		ledger:              ledger,
		notificationService: notificationService,
		badgeXP:             badgeXP,
		loc:                 loc,
	}
}

// ReferenceID is the ledger key for a badge payout.
func ReferenceID(badgeID string) string {
	return "badge_" + badgeID
}

func (s *badgeService) CheckAndAward(ctx context.Context, userID uuid.UUID) ([]string, error) {
	badges, err := s.repo.FindAutoBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("load badges: %w", err)
	}

	earnedIDs, err := s.repo.FindEarnedBadgeIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load earned badges: %w", err)
	}
	earned := make(map[string]struct{}, len(earnedIDs))
	for _, id := range earnedIDs {
		earned[id] = struct{}{}
	}

	var candidates []entity.Badge
	for _, b := range badges {
		if _, ok := earned[b.ID]; !ok {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	stats, err := s.repo.BuildStats(ctx, userID, s.loc)
	if err != nil {
		return nil, fmt.Errorf("build stats: %w", err)
	}

	var granted []string
	for _, b := range candidates {
		cond := condition.Decode(b.Condition)
		if u, ok := cond.(*condition.Unsupported); ok {
			log.Printf("⚠️ [Badge] %s has unsupported condition %q: %s", b.ID, u.Kind, u.Reason)
			continue
		}
		if !cond.Satisfied(stats) {
			continue
		}

		ok, err := s.grant(ctx, userID, b)
		if err != nil {
			log.Printf("❌ [Badge] grant %s to %s failed: %v", b.ID, userID, err)
			continue
		}
		if ok {
			granted = append(granted, b.ID)
		}
	}

	return granted, nil
}

func (s *badgeService) GrantManual(ctx context.Context, userID uuid.UUID, badgeID string) (bool, error) {
	badge, err := s.repo.FindByID(ctx, badgeID)
	if err != nil {
		return false, err
	}
	if badge.ConditionType != entity.BadgeConditionManual {
		return false, fmt.Errorf("%w: badge %s is awarded automatically", apperror.ErrBadRequest, badgeID)
	}
	return s.grant(ctx, userID, *badge)
}

// grant pays the badge XP, then inserts the user badge, and notifies only if
// this call created it. The payout is keyed by the badge reference id, so a
// failure on either step is retried by the next check without paying twice.
func (s *badgeService) grant(ctx context.Context, userID uuid.UUID, b entity.Badge) (bool, error) {
	if s.badgeXP > 0 {
		if _, err := s.ledger.AwardXP(ctx, userID, s.badgeXP, "Badge: "+b.Name, ReferenceID(b.ID)); err != nil {
			return false, fmt.Errorf("badge xp: %w", err)
		}
	}

	inserted, err := s.repo.GrantBadge(ctx, userID, b.ID)
	if err != nil {
		return false, err
	}
	if !inserted {
		return false, nil
	}

	if s.notificationService != nil {
		title := fmt.Sprintf("%s Badge unlocked: %s", b.Icon, b.Name)
		data := map[string]any{"badge_id": b.ID, "xp": s.badgeXP}
		if err := s.notificationService.Notify(ctx, userID, entity.NotifBadgeEarned, title, b.Description, data); err != nil {
			log.Printf("⚠️ [Badge] notification for %s failed: %v", b.ID, err)
		}
	}

	log.Printf("✅ [Badge] %s awarded to %s", b.ID, userID)
	return true, nil
}

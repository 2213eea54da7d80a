package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"anoa.com/cpquest/internal/entity"
	ledgerDto "anoa.com/cpquest/internal/modules/ledger/dto"
	ledgerRepo "anoa.com/cpquest/internal/modules/ledger/repository"
	notifService "anoa.com/cpquest/internal/modules/notification/service"
	"anoa.com/cpquest/pkg/apperror"
	"github.com/google/uuid"
)

// AwardResult reports the profile state after an award. Duplicate is set when
// the reference id had already been paid; nothing was written in that case.
type AwardResult struct {
	NewXP     int64
	NewLevel  int
	LeveledUp bool
	Duplicate bool
}

type LedgerService interface {
	// AwardXP appends a ledger entry and applies it to the profile. amount must
	// not be negative; an empty referenceID disables de-duplication.
	AwardXP(ctx context.Context, userID uuid.UUID, amount int64, reason, referenceID string) (*AwardResult, error)
	// AdjustXP is the administrative correction path and accepts negative
	// amounts. The stored level follows the corrected total in both directions.
	AdjustXP(ctx context.Context, userID uuid.UUID, amount int64, reason string) (*AwardResult, error)
	GetProgress(ctx context.Context, userID uuid.UUID) (*ledgerDto.ProgressResponse, error)
}

type ledgerService struct {
	repo                ledgerRepo.LedgerRepository
	notificationService notifService.NotificationService
	now                 func() time.Time
}

func NewLedgerService(repo ledgerRepo.LedgerRepository, notificationService notifService.NotificationService) LedgerService {
	return &ledgerService{
		repo:                repo,
		notificationService: notificationService,
		now:                 time.Now,
	}
}

func (s *ledgerService) AwardXP(ctx context.Context, userID uuid.UUID, amount int64, reason, referenceID string) (*AwardResult, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: negative award %d", apperror.ErrInvalidInput, amount)
	}
	return s.apply(ctx, userID, amount, reason, referenceID, false)
}

func (s *ledgerService) AdjustXP(ctx context.Context, userID uuid.UUID, amount int64, reason string) (*AwardResult, error) {
	return s.apply(ctx, userID, amount, reason, "", true)
}

func (s *ledgerService) apply(ctx context.Context, userID uuid.UUID, amount int64, reason, referenceID string, admin bool) (*AwardResult, error) {
	if _, err := s.repo.FindProfile(ctx, userID); err != nil {
		return nil, err
	}

	entry := &entity.XPLog{
		UserID:    userID,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: s.now(),
	}
	if referenceID != "" {
		ref := referenceID
		entry.ReferenceID = &ref
	}

	newXP, storedLevel, err := s.repo.AppendAndIncrement(ctx, entry)
	if err != nil {
		if errors.Is(err, apperror.ErrDuplicate) {
			return &AwardResult{Duplicate: true}, nil
		}
		return nil, err
	}

	newLevel := LevelFor(newXP).Level
	result := &AwardResult{NewXP: newXP, NewLevel: newLevel}

	switch {
	case newLevel > storedLevel:
		if err := s.repo.UpdateLevel(ctx, userID, newLevel); err != nil {
			return nil, fmt.Errorf("update level: %w", err)
		}
		result.LeveledUp = true
		s.sendLevelUpNotification(ctx, userID, newLevel)
	case admin && newLevel < storedLevel:
		if err := s.repo.UpdateLevel(ctx, userID, newLevel); err != nil {
			return nil, fmt.Errorf("update level: %w", err)
		}
	default:
		result.NewLevel = storedLevel
	}

	return result, nil
}

func (s *ledgerService) sendLevelUpNotification(ctx context.Context, userID uuid.UUID, level int) {
	if s.notificationService == nil {
		return
	}
	levelTitle := Levels[level-1].Title
	title := fmt.Sprintf("Level up! You reached level %d", level)
	body := fmt.Sprintf("🎉 You are now a %s.", levelTitle)
	data := map[string]any{"level": level, "title": levelTitle}

	if err := s.notificationService.Notify(ctx, userID, entity.NotifLevelUp, title, body, data); err != nil {
		log.Printf("⚠️ [Ledger] level up notification for %s failed: %v", userID, err)
	}
}

func (s *ledgerService) GetProgress(ctx context.Context, userID uuid.UUID) (*ledgerDto.ProgressResponse, error) {
	profile, err := s.repo.FindProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	weekly, err := s.repo.SumSince(ctx, userID, s.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, err
	}

	info := LevelFor(profile.XP)
	return &ledgerDto.ProgressResponse{
		UserID:      profile.UserID,
		Username:    profile.Username,
		XP:          profile.XP,
		Level:       info.Level,
		Title:       info.Title,
		NextLevelXP: info.NextLevelXP,
		Progress:    info.Progress,
		WeeklyXP:    weekly,
	}, nil
}

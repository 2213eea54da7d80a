package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DuelStatus string

const (
	DuelPending   DuelStatus = "pending"
	DuelActive    DuelStatus = "active"
	DuelCompleted DuelStatus = "completed"
	DuelExpired   DuelStatus = "expired"
	DuelDeclined  DuelStatus = "declined"
)

// Terminal reports whether no further transition is allowed.
func (s DuelStatus) Terminal() bool {
	return s == DuelCompleted || s == DuelExpired || s == DuelDeclined
}

type Duel struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ChallengerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"challenger_id"`
	ChallengedID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"challenged_id"`
	ProblemID        string     `gorm:"size:32;not null" json:"problem_id"`
	ProblemName      string     `gorm:"size:255" json:"problem_name"`
	TimeLimitMinutes int        `gorm:"not null" json:"time_limit_minutes"`
	Status           DuelStatus `gorm:"size:16;not null;default:'pending';index" json:"status"`
	WinnerID         *uuid.UUID `gorm:"type:uuid;index" json:"winner_id,omitempty"`

	ChallengerSolveSeconds *int `json:"challenger_solve_seconds,omitempty"`
	ChallengedSolveSeconds *int `json:"challenged_solve_seconds,omitempty"`

	StartedAt   *time.Time `json:"started_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	// PaidAt is set once both payouts of a completed duel are in the ledger.
	PaidAt    *time.Time `gorm:"index" json:"paid_at,omitempty"`
	CreatedAt   time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (d *Duel) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

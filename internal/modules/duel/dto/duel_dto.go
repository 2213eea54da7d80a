package dto

import (
	"time"

	"anoa.com/cpquest/internal/entity"
	"github.com/google/uuid"
)

type ChallengeRequest struct {
	ChallengedID     uuid.UUID `json:"challenged_id" validate:"required"`
	ProblemID        string    `json:"problem_id" validate:"required,max=32"`
	ProblemName      string    `json:"problem_name" validate:"max=255"`
	TimeLimitMinutes int       `json:"time_limit_minutes" validate:"required,min=5,max=180"`
}

type DuelResponse struct {
	ID                     uuid.UUID         `json:"id"`
	ChallengerID           uuid.UUID         `json:"challenger_id"`
	ChallengedID           uuid.UUID         `json:"challenged_id"`
	ProblemID              string            `json:"problem_id"`
	ProblemName            string            `json:"problem_name"`
	TimeLimitMinutes       int               `json:"time_limit_minutes"`
	Status                 entity.DuelStatus `json:"status"`
	WinnerID               *uuid.UUID        `json:"winner_id,omitempty"`
	ChallengerSolveSeconds *int              `json:"challenger_solve_seconds,omitempty"`
	ChallengedSolveSeconds *int              `json:"challenged_solve_seconds,omitempty"`
	StartedAt              *time.Time        `json:"started_at,omitempty"`
	ExpiresAt              *time.Time        `json:"expires_at,omitempty"`
	CompletedAt            *time.Time        `json:"completed_at,omitempty"`
	CreatedAt              time.Time         `json:"created_at"`
}

func FromEntity(d *entity.Duel) DuelResponse {
	return DuelResponse{
		ID:                     d.ID,
		ChallengerID:           d.ChallengerID,
		ChallengedID:           d.ChallengedID,
		ProblemID:              d.ProblemID,
		ProblemName:            d.ProblemName,
		TimeLimitMinutes:       d.TimeLimitMinutes,
		Status:                 d.Status,
		WinnerID:               d.WinnerID,
		ChallengerSolveSeconds: d.ChallengerSolveSeconds,
		ChallengedSolveSeconds: d.ChallengedSolveSeconds,
		StartedAt:              d.StartedAt,
		ExpiresAt:              d.ExpiresAt,
		CompletedAt:            d.CompletedAt,
		CreatedAt:              d.CreatedAt,
	}
}

package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the per-user gamification state. It is created at account setup
// by the host application and never deleted.
type Profile struct {
	UserID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	Username         string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	CodeforcesHandle *string   `gorm:"size:64;index" json:"codeforces_handle,omitempty"`

	XP    int64 `gorm:"not null;default:0" json:"xp"`
	Level int   `gorm:"not null;default:1" json:"level"`

	CurrentStreak int `gorm:"not null;default:0" json:"current_streak"`
	LongestStreak int `gorm:"not null;default:0" json:"longest_streak"`
	StreakShields int `gorm:"not null;default:0" json:"streak_shields"`
	// LastLostStreak is the length of the most recently reset streak.
	LastLostStreak int `gorm:"not null;default:0" json:"last_lost_streak"`

	LastSolveDate       *time.Time `gorm:"type:date" json:"last_solve_date,omitempty"`
	LastStreakProcessed *time.Time `gorm:"type:date;index" json:"last_streak_processed,omitempty"`

	PlatformRating int `gorm:"not null;default:0" json:"platform_rating"`
	BaselineRating int `gorm:"not null;default:0" json:"baseline_rating"`
	RankClimb      int `gorm:"not null;default:0" json:"rank_climb"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.UserID == uuid.Nil {
		p.UserID = uuid.New()
	}
	if p.Level < 1 {
		p.Level = 1
	}
	return nil
}

// Handle returns the linked Codeforces handle or "".
func (p *Profile) Handle() string {
	if p.CodeforcesHandle == nil {
		return ""
	}
	return *p.CodeforcesHandle
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// XPLog is an immutable ledger entry.
type XPLog struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_xp_user_date,priority:1;uniqueIndex:idx_xp_user_ref,priority:1" json:"user_id"`
	Amount int64     `gorm:"not null" json:"amount"`
	Reason string    `gorm:"size:255;not null" json:"reason"`
	// ReferenceID de-duplicates one-time awards ("badge_<id>", "duel_<id>",
	// "streak_<date>"). NULLs never collide in the unique index.
	ReferenceID *string   `gorm:"size:100;uniqueIndex:idx_xp_user_ref,priority:2" json:"reference_id,omitempty"`
	CreatedAt   time.Time `gorm:"index:idx_xp_user_date,priority:2;index:idx_xp_date" json:"created_at"`
}

func (XPLog) TableName() string { return "xp_logs" }

// UniqueIndex: idx_xp_user_ref on (user_id, reference_id)
// The same one-time event can never be paid twice to the same user.

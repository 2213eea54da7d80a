package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	NotifLevelUp      = "level_up"
	NotifBadgeEarned  = "badge_earned"
	NotifStreakSaved  = "streak_saved"
	NotifStreakLost   = "streak_lost"
	NotifStreakWarn   = "streak_warning"
	NotifDuelWon      = "duel_won"
	NotifDuelLost     = "duel_lost"
	NotifDuelDraw     = "duel_draw"
	NotifDuelExpired  = "duel_expired"
	NotifWeeklyDigest = "weekly_digest"
)

// Notification is a stored message. A nil UserID marks a broadcast.
type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    *uuid.UUID     `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Type      string         `gorm:"type:varchar(50);not null" json:"type"`
	Title     string         `gorm:"type:varchar(255);not null" json:"title"`
	Body      string         `gorm:"type:text" json:"body"`
	Data      datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"`
	IsRead    bool           `gorm:"default:false" json:"is_read"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

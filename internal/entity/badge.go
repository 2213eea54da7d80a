package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	BadgeConditionAuto   = "auto"
	BadgeConditionManual = "manual"
)

// Badge is a static catalog entry. Condition holds the JSON descriptor, e.g.
// {"type":"total_solves","count":100}.
type Badge struct {
	ID            string         `gorm:"size:64;primaryKey" json:"id"`
	Name          string         `gorm:"size:100;not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	Icon          string         `gorm:"size:64" json:"icon"`
	Rarity        string         `gorm:"size:16;default:'common'" json:"rarity"`
	ConditionType string         `gorm:"size:16;not null;default:'auto';index" json:"condition_type"`
	Condition     datatypes.JSON `gorm:"type:jsonb" json:"condition"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

type UserBadge struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_badge,priority:1" json:"user_id"`
	BadgeID   string    `gorm:"size:64;not null;uniqueIndex:idx_user_badge,priority:2" json:"badge_id"`
	AwardedAt time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

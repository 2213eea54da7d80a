package dto

import "github.com/google/uuid"

type ProgressResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	XP          int64     `json:"xp"`
	Level       int       `json:"level"`
	Title       string    `json:"title"`
	NextLevelXP int64     `json:"next_level_xp"`
	Progress    float64   `json:"progress"`
	WeeklyXP    int64     `json:"weekly_xp"`
}

package dto

import "github.com/google/uuid"

// LeaderboardEntry is one ranked user. Position is 1-based; Score is the XP
// that produced the ranking for the requested timeframe.
type LeaderboardEntry struct {
	UserID           uuid.UUID `json:"user_id"`
	Username         string    `json:"username"`
	CodeforcesHandle *string   `json:"codeforces_handle,omitempty"`
	Position         int       `json:"position"`
	Score            int64     `json:"score"`
	XP               int64     `json:"xp"`
	Level            int       `json:"level"`
	Title            string    `json:"title"`
	Progress         float64   `json:"progress"`
	WeeklyXP         int64     `json:"weekly_xp"`
	WeeklyLabel      string    `json:"weekly_label"`
}

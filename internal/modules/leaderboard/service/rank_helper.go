package service

import ledgerService "anoa.com/cpquest/internal/modules/ledger/service"

// Weekly activity thresholds, in XP earned over the last 7 days.
const (
	WeeklyOnFire   = 300
	WeeklyTrending = 150
	WeeklyActive   = 50
)

// Status pairs the permanent level (all-time XP) with a label for recent
// activity.
type Status struct {
	ledgerService.LevelInfo
	WeeklyXP    int64  `json:"weekly_xp"`
	WeeklyLabel string `json:"weekly_label"`
}

func GetStatus(allTimeXP, weeklyXP int64) Status {
	return Status{
		LevelInfo:   ledgerService.LevelFor(allTimeXP),
		WeeklyXP:    weeklyXP,
		WeeklyLabel: WeeklyLabel(weeklyXP),
	}
}

func WeeklyLabel(weeklyXP int64) string {
	switch {
	case weeklyXP >= WeeklyOnFire:
		return "🔥 On Fire!"
	case weeklyXP >= WeeklyTrending:
		return "⚡ Trending"
	case weeklyXP >= WeeklyActive:
		return "📈 Active"
	default:
		return ""
	}
}

package bootstrap

import (
	"log"

	"anoa.com/cpquest/internal/entity"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Profile{},
		&entity.XPLog{},
		&entity.Badge{},
		&entity.UserBadge{},
		&entity.Duel{},
		&entity.Solve{},
		&entity.ProblemShare{},
		&entity.BossBattleEntry{},
		&entity.ResourceSubmission{},
		&entity.QuestAssignment{},
		&entity.Notification{},
		&entity.JobState{},
	)
}

func cond(raw string) datatypes.JSON {
	return datatypes.JSON(raw)
}

// BadgeCatalog is the default badge set. Ids are stable: they form the
// ledger reference of the badge reward.
var BadgeCatalog = []entity.Badge{
	{ID: "first_blood", Name: "First Blood", Description: "Solve your first problem", Icon: "🩸", Rarity: "common",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"total_solves","count":1}`)},
	{ID: "centurion", Name: "Centurion", Description: "Solve 100 problems", Icon: "💯", Rarity: "rare",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"total_solves","count":100}`)},
	{ID: "cf_regular", Name: "Codeforces Regular", Description: "Solve 50 problems on Codeforces", Icon: "📊", Rarity: "uncommon",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"total_solves","count":50,"platform":"codeforces"}`)},
	{ID: "week_warrior", Name: "Week Warrior", Description: "Keep a 7 day streak", Icon: "🔥", Rarity: "common",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"streak","days":7}`)},
	{ID: "unstoppable", Name: "Unstoppable", Description: "Keep a 30 day streak", Icon: "⚡", Rarity: "epic",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"streak","days":30}`)},
	{ID: "sharer", Name: "Sharer", Description: "Share 10 problems", Icon: "📤", Rarity: "common",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"problems_shared","count":10}`)},
	{ID: "duelist", Name: "Duelist", Description: "Win 5 duels", Icon: "⚔️", Rarity: "uncommon",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"duels_won","count":5}`)},
	{ID: "boss_slayer", Name: "Boss Slayer", Description: "Defeat 3 bosses", Icon: "🐉", Rarity: "rare",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"bosses_defeated","count":3}`)},
	{ID: "speed_demon", Name: "Speed Demon", Description: "Be first to solve a boss", Icon: "🏎️", Rarity: "epic",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"boss_first_solves","count":1}`)},
	{ID: "librarian", Name: "Librarian", Description: "Get 5 resources approved", Icon: "📚", Rarity: "uncommon",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"resources_approved","count":5}`)},
	{ID: "questmaster", Name: "Questmaster", Description: "Complete every quest in a week", Icon: "🗺️", Rarity: "rare",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"all_quests_week"}`)},
	{ID: "polymath", Name: "Polymath", Description: "Solve problems across 15 topics", Icon: "🧠", Rarity: "rare",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"unique_topics","count":15}`)},
	{ID: "daily_devotee", Name: "Daily Devotee", Description: "Solve 30 daily problems", Icon: "📅", Rarity: "uncommon",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"daily_solves","count":30}`)},
	{ID: "climber", Name: "Climber", Description: "Gain 200 rating points", Icon: "🧗", Rarity: "epic",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"rank_climb","amount":200}`)},
	{ID: "night_owl", Name: "Night Owl", Description: "Solve 10 problems between midnight and 4am", Icon: "🦉", Rarity: "uncommon",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"solve_hour_range","start_hour":0,"end_hour":4,"count":10}`)},
	{ID: "early_bird", Name: "Early Bird", Description: "Solve 10 problems between 5am and 8am", Icon: "🐦", Rarity: "uncommon",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"solve_hour_range","start_hour":5,"end_hour":8,"count":10}`)},
	{ID: "phoenix", Name: "Phoenix", Description: "Rebuild a 7 day streak after losing one of 14+", Icon: "🐦‍🔥", Rarity: "epic",
		ConditionType: entity.BadgeConditionAuto, Condition: cond(`{"type":"streak_restart_after","lost_streak":14,"new_streak":7}`)},
	{ID: "contributor", Name: "Contributor", Description: "Awarded by the team for outstanding help", Icon: "🏅", Rarity: "legendary",
		ConditionType: entity.BadgeConditionManual},
}

// SeedBadges upserts the catalog by id, so edited descriptors take effect on
// the next start.
func SeedBadges(db *gorm.DB) error {
	result := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "description", "icon", "rarity", "condition_type", "condition"}),
	}).Create(&BadgeCatalog)
	if result.Error != nil {
		return result.Error
	}

	log.Printf("✅ Badge catalog seeded (%d badges)", len(BadgeCatalog))
	return nil
}

// Package condition models badge conditions as a closed set of variants. Each
// variant carries only its own parameters and evaluates against a Stats
// snapshot. Descriptors that cannot be decoded become Unsupported, which is
// never satisfied.
package condition

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Stats is the per-user aggregate snapshot conditions are evaluated against.
type Stats struct {
	TotalSolves       int            `json:"total_solves"`
	PlatformSolves    map[string]int `json:"platform_solves"`
	CurrentStreak     int            `json:"current_streak"`
	LongestStreak     int            `json:"longest_streak"`
	ProblemsShared    int            `json:"problems_shared"`
	DuelsWon          int            `json:"duels_won"`
	BossesDefeated    int            `json:"bosses_defeated"`
	BossFirstSolves   int            `json:"boss_first_solves"`
	ResourcesApproved int            `json:"resources_approved"`
	AllQuestWeeks     int            `json:"all_quest_weeks"`
	UniqueTopics      int            `json:"unique_topics"`
	DailySolves       int            `json:"daily_solves"`
	SolveHours        [24]int        `json:"solve_hours"`
	RankClimb         int            `json:"rank_climb"`
	LastLostStreak    int            `json:"last_lost_streak"`
}

// Condition is implemented only by the variants in this package.
type Condition interface {
	Type() string
	Satisfied(s Stats) bool
	validate() error
}

const (
	TypeTotalSolves        = "total_solves"
	TypeStreak             = "streak"
	TypeProblemsShared     = "problems_shared"
	TypeDuelsWon           = "duels_won"
	TypeBossesDefeated     = "bosses_defeated"
	TypeBossFirstSolves    = "boss_first_solves"
	TypeResourcesApproved  = "resources_approved"
	TypeAllQuestsWeek      = "all_quests_week"
	TypeUniqueTopics       = "unique_topics"
	TypeDailySolves        = "daily_solves"
	TypeRankClimb          = "rank_climb"
	TypeSolveHourRange     = "solve_hour_range"
	TypeStreakRestartAfter = "streak_restart_after"
)

var registry = map[string]func() Condition{
	TypeTotalSolves:        func() Condition { return &TotalSolves{} },
	TypeStreak:             func() Condition { return &Streak{} },
	TypeProblemsShared:     func() Condition { return &ProblemsShared{} },
	TypeDuelsWon:           func() Condition { return &DuelsWon{} },
	TypeBossesDefeated:     func() Condition { return &BossesDefeated{} },
	TypeBossFirstSolves:    func() Condition { return &BossFirstSolves{} },
	TypeResourcesApproved:  func() Condition { return &ResourcesApproved{} },
	TypeAllQuestsWeek:      func() Condition { return &AllQuestsWeek{} },
	TypeUniqueTopics:       func() Condition { return &UniqueTopics{} },
	TypeDailySolves:        func() Condition { return &DailySolves{} },
	TypeRankClimb:          func() Condition { return &RankClimb{} },
	TypeSolveHourRange:     func() Condition { return &SolveHourRange{} },
	TypeStreakRestartAfter: func() Condition { return &StreakRestartAfter{} },
}

// KnownTypes lists every supported discriminator, sorted.
func KnownTypes() []string {
	types := make([]string, 0, len(registry))
	for t := range registry {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// Decode parses a descriptor such as {"type":"streak","days":7}. It never
// fails: unknown types and malformed parameters yield an Unsupported carrying
// the reason.
func Decode(raw []byte) Condition {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return &Unsupported{Reason: fmt.Sprintf("invalid descriptor: %v", err)}
	}

	newCond, ok := registry[head.Type]
	if !ok {
		return &Unsupported{Kind: head.Type, Reason: "unknown condition type"}
	}

	cond := newCond()
	if err := json.Unmarshal(raw, cond); err != nil {
		return &Unsupported{Kind: head.Type, Reason: fmt.Sprintf("invalid parameters: %v", err)}
	}
	if err := cond.validate(); err != nil {
		return &Unsupported{Kind: head.Type, Reason: err.Error()}
	}
	return cond
}

// Supported reports whether c is a real, evaluable condition.
func Supported(c Condition) bool {
	_, bad := c.(*Unsupported)
	return !bad
}

func positive(name string, v int) error {
	if v <= 0 {
		return fmt.Errorf("%s must be positive", name)
	}
	return nil
}

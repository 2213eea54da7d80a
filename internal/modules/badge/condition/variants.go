package condition

import "fmt"

// TotalSolves counts all solves, or only one platform's when Platform is set.
type TotalSolves struct {
	Count    int    `json:"count"`
	Platform string `json:"platform,omitempty"`
}

func (c *TotalSolves) Type() string    { return TypeTotalSolves }
func (c *TotalSolves) validate() error { return positive("count", c.Count) }
func (c *TotalSolves) Satisfied(s Stats) bool {
	if c.Platform != "" {
		return s.PlatformSolves[c.Platform] >= c.Count
	}
	return s.TotalSolves >= c.Count
}

// Streak fires once the longest streak ever reached is at least Days.
type Streak struct {
	Days int `json:"days"`
}

func (c *Streak) Type() string           { return TypeStreak }
func (c *Streak) validate() error        { return positive("days", c.Days) }
func (c *Streak) Satisfied(s Stats) bool { return max(s.LongestStreak, s.CurrentStreak) >= c.Days }

type ProblemsShared struct {
	Count int `json:"count"`
}

func (c *ProblemsShared) Type() string           { return TypeProblemsShared }
func (c *ProblemsShared) validate() error        { return positive("count", c.Count) }
func (c *ProblemsShared) Satisfied(s Stats) bool { return s.ProblemsShared >= c.Count }

type DuelsWon struct {
	Count int `json:"count"`
}

func (c *DuelsWon) Type() string           { return TypeDuelsWon }
func (c *DuelsWon) validate() error        { return positive("count", c.Count) }
func (c *DuelsWon) Satisfied(s Stats) bool { return s.DuelsWon >= c.Count }

type BossesDefeated struct {
	Count int `json:"count"`
}

func (c *BossesDefeated) Type() string           { return TypeBossesDefeated }
func (c *BossesDefeated) validate() error        { return positive("count", c.Count) }
func (c *BossesDefeated) Satisfied(s Stats) bool { return s.BossesDefeated >= c.Count }

type BossFirstSolves struct {
	Count int `json:"count"`
}

func (c *BossFirstSolves) Type() string           { return TypeBossFirstSolves }
func (c *BossFirstSolves) validate() error        { return positive("count", c.Count) }
func (c *BossFirstSolves) Satisfied(s Stats) bool { return s.BossFirstSolves >= c.Count }

type ResourcesApproved struct {
	Count int `json:"count"`
}

func (c *ResourcesApproved) Type() string           { return TypeResourcesApproved }
func (c *ResourcesApproved) validate() error        { return positive("count", c.Count) }
func (c *ResourcesApproved) Satisfied(s Stats) bool { return s.ResourcesApproved >= c.Count }

// AllQuestsWeek counts weeks in which every assigned quest was completed.
// Count defaults to 1.
type AllQuestsWeek struct {
	Count int `json:"count"`
}

func (c *AllQuestsWeek) Type() string { return TypeAllQuestsWeek }
func (c *AllQuestsWeek) validate() error {
	if c.Count == 0 {
		c.Count = 1
	}
	return positive("count", c.Count)
}
func (c *AllQuestsWeek) Satisfied(s Stats) bool { return s.AllQuestWeeks >= c.Count }

type UniqueTopics struct {
	Count int `json:"count"`
}

func (c *UniqueTopics) Type() string           { return TypeUniqueTopics }
func (c *UniqueTopics) validate() error        { return positive("count", c.Count) }
func (c *UniqueTopics) Satisfied(s Stats) bool { return s.UniqueTopics >= c.Count }

type DailySolves struct {
	Count int `json:"count"`
}

func (c *DailySolves) Type() string           { return TypeDailySolves }
func (c *DailySolves) validate() error        { return positive("count", c.Count) }
func (c *DailySolves) Satisfied(s Stats) bool { return s.DailySolves >= c.Count }

// RankClimb compares the rating gained since the baseline was recorded.
type RankClimb struct {
	Amount int `json:"amount"`
}

func (c *RankClimb) Type() string           { return TypeRankClimb }
func (c *RankClimb) validate() error        { return positive("amount", c.Amount) }
func (c *RankClimb) Satisfied(s Stats) bool { return s.RankClimb >= c.Amount }

// SolveHourRange counts solves whose local hour falls in [StartHour, EndHour).
// A range with StartHour > EndHour wraps past midnight. Count defaults to 1.
type SolveHourRange struct {
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
	Count     int `json:"count"`
}

func (c *SolveHourRange) Type() string { return TypeSolveHourRange }
func (c *SolveHourRange) validate() error {
	if c.StartHour < 0 || c.StartHour > 23 || c.EndHour < 0 || c.EndHour > 24 {
		return fmt.Errorf("hours out of range: %d-%d", c.StartHour, c.EndHour)
	}
	if c.StartHour == c.EndHour {
		return fmt.Errorf("empty hour range")
	}
	if c.Count == 0 {
		c.Count = 1
	}
	return positive("count", c.Count)
}
func (c *SolveHourRange) Satisfied(s Stats) bool {
	n := 0
	for h := 0; h < 24; h++ {
		if c.contains(h) {
			n += s.SolveHours[h]
		}
	}
	return n >= c.Count
}

func (c *SolveHourRange) contains(h int) bool {
	if c.StartHour < c.EndHour {
		return h >= c.StartHour && h < c.EndHour
	}
	return h >= c.StartHour || h < c.EndHour
}

// StreakRestartAfter rewards coming back: a streak of at least LostStreak was
// lost and a new one of at least NewStreak (minimum 1) is running.
type StreakRestartAfter struct {
	LostStreak int `json:"lost_streak"`
	NewStreak  int `json:"new_streak"`
}

func (c *StreakRestartAfter) Type() string { return TypeStreakRestartAfter }
func (c *StreakRestartAfter) validate() error {
	if c.NewStreak < 0 {
		return fmt.Errorf("new_streak must not be negative")
	}
	return positive("lost_streak", c.LostStreak)
}
func (c *StreakRestartAfter) Satisfied(s Stats) bool {
	return s.LastLostStreak >= c.LostStreak && s.CurrentStreak >= max(c.NewStreak, 1)
}

// Unsupported stands in for any descriptor that could not be decoded.
type Unsupported struct {
	Kind   string
	Reason string
}

func (c *Unsupported) Type() string         { return c.Kind }
func (c *Unsupported) validate() error      { return nil }
func (c *Unsupported) Satisfied(Stats) bool { return false }

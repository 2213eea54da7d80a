package condition

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_EveryKnownType(t *testing.T) {
	descriptors := map[string]string{
		TypeTotalSolves:        `{"type":"total_solves","count":10}`,
		TypeStreak:             `{"type":"streak","days":7}`,
		TypeProblemsShared:     `{"type":"problems_shared","count":5}`,
		TypeDuelsWon:           `{"type":"duels_won","count":1}`,
		TypeBossesDefeated:     `{"type":"bosses_defeated","count":3}`,
		TypeBossFirstSolves:    `{"type":"boss_first_solves","count":1}`,
		TypeResourcesApproved:  `{"type":"resources_approved","count":2}`,
		TypeAllQuestsWeek:      `{"type":"all_quests_week"}`,
		TypeUniqueTopics:       `{"type":"unique_topics","count":15}`,
		TypeDailySolves:        `{"type":"daily_solves","count":30}`,
		TypeRankClimb:          `{"type":"rank_climb","amount":200}`,
		TypeSolveHourRange:     `{"type":"solve_hour_range","start_hour":0,"end_hour":5}`,
		TypeStreakRestartAfter: `{"type":"streak_restart_after","lost_streak":7,"new_streak":3}`,
	}
	require.Len(t, descriptors, len(KnownTypes()))

	for _, typ := range KnownTypes() {
		raw, ok := descriptors[typ]
		require.True(t, ok, "no fixture for %s", typ)

		c := Decode([]byte(raw))
		assert.True(t, Supported(c), "%s decoded as unsupported: %+v", typ, c)
		assert.Equal(t, typ, c.Type())
		assert.False(t, c.Satisfied(Stats{}), "%s satisfied by empty stats", typ)
	}
}

func TestDecode_UnknownOrMalformedNeverFires(t *testing.T) {
	full := Stats{TotalSolves: 1 << 20, LongestStreak: 1 << 20, CurrentStreak: 1 << 20}
	for i := range full.SolveHours {
		full.SolveHours[i] = 100
	}

	cases := []string{
		`{"type":"moon_landing","count":1}`,
		`{"count":1}`,
		`not json`,
		`{"type":"total_solves","count":"ten"}`,
		`{"type":"total_solves"}`,
		`{"type":"solve_hour_range","start_hour":3,"end_hour":3}`,
		`{"type":"solve_hour_range","start_hour":25,"end_hour":3}`,
		`{"type":"streak_restart_after","new_streak":2}`,
	}
	for _, raw := range cases {
		c := Decode([]byte(raw))
		assert.False(t, Supported(c), raw)
		assert.False(t, c.Satisfied(full), raw)
	}
}

func TestSatisfied(t *testing.T) {
	stats := Stats{
		TotalSolves:    120,
		PlatformSolves: map[string]int{"codeforces": 80},
		CurrentStreak:  3,
		LongestStreak:  14,
		DuelsWon:       2,
		AllQuestWeeks:  1,
		RankClimb:      150,
		LastLostStreak: 9,
	}
	stats.SolveHours[2] = 4
	stats.SolveHours[23] = 1

	tests := []struct {
		raw  string
		want bool
	}{
		{`{"type":"total_solves","count":100}`, true},
		{`{"type":"total_solves","count":121}`, false},
		{`{"type":"total_solves","count":80,"platform":"codeforces"}`, true},
		{`{"type":"total_solves","count":1,"platform":"atcoder"}`, false},
		{`{"type":"streak","days":14}`, true},
		{`{"type":"streak","days":15}`, false},
		{`{"type":"duels_won","count":2}`, true},
		{`{"type":"all_quests_week"}`, true},
		{`{"type":"all_quests_week","count":2}`, false},
		{`{"type":"rank_climb","amount":200}`, false},
		{`{"type":"solve_hour_range","start_hour":0,"end_hour":5,"count":4}`, true},
		{`{"type":"solve_hour_range","start_hour":22,"end_hour":3,"count":5}`, true},
		{`{"type":"solve_hour_range","start_hour":22,"end_hour":2,"count":2}`, false},
		{`{"type":"streak_restart_after","lost_streak":7,"new_streak":3}`, true},
		{`{"type":"streak_restart_after","lost_streak":10}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			c := Decode([]byte(tt.raw))
			require.True(t, Supported(c))
			assert.Equal(t, tt.want, c.Satisfied(stats))
		})
	}
}

func TestStreakRestartAfter_NeedsActiveStreak(t *testing.T) {
	c := Decode([]byte(`{"type":"streak_restart_after","lost_streak":5}`))
	assert.False(t, c.Satisfied(Stats{LastLostStreak: 8, CurrentStreak: 0}))
	assert.True(t, c.Satisfied(Stats{LastLostStreak: 8, CurrentStreak: 1}))
}

func ExampleDecode() {
	c := Decode([]byte(`{"type":"duels_won","count":3}`))
	fmt.Println(c.Type(), c.Satisfied(Stats{DuelsWon: 3}))
	// Output: duels_won true
}

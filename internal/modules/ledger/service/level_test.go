package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		xp        int64
		wantLevel int
		wantTitle string
	}{
		{0, 1, "Newbie"},
		{99, 1, "Newbie"},
		{100, 2, "Apprentice"},
		{499, 3, "Coder"},
		{12000, 10, "Legendary Grandmaster"},
		{1 << 40, 10, "Legendary Grandmaster"},
		{-50, 1, "Newbie"},
	}
	for _, tt := range tests {
		got := LevelFor(tt.xp)
		assert.Equal(t, tt.wantLevel, got.Level, "xp=%d", tt.xp)
		assert.Equal(t, tt.wantTitle, got.Title, "xp=%d", tt.xp)
	}
}

func TestLevelFor_Monotonic(t *testing.T) {
	prev := LevelFor(0).Level
	assert.Equal(t, 1, prev)
	for xp := int64(1); xp <= 15000; xp += 7 {
		cur := LevelFor(xp).Level
		if cur < prev {
			t.Fatalf("level decreased at xp=%d: %d -> %d", xp, prev, cur)
		}
		prev = cur
	}
}

func TestLevelFor_Progress(t *testing.T) {
	info := LevelFor(175)
	assert.Equal(t, int64(250), info.NextLevelXP)
	assert.Equal(t, 50.0, info.Progress)

	maxed := LevelFor(20000)
	assert.Equal(t, int64(0), maxed.NextLevelXP)
	assert.Equal(t, 100.0, maxed.Progress)
}

func TestLevels_Sorted(t *testing.T) {
	assert.Equal(t, int64(0), Levels[0].MinXP)
	for i := 1; i < len(Levels); i++ {
		assert.Greater(t, Levels[i].MinXP, Levels[i-1].MinXP)
		assert.Equal(t, Levels[i-1].Level+1, Levels[i].Level)
	}
}

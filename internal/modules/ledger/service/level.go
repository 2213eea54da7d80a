package service

import "math"

// LevelThreshold is one row of the level table.
type LevelThreshold struct {
	Level int
	MinXP int64
	Title string
}

// Levels is sorted by MinXP ascending; the first row must start at 0.
var Levels = []LevelThreshold{
	{Level: 1, MinXP: 0, Title: "Newbie"},
	{Level: 2, MinXP: 100, Title: "Apprentice"},
	{Level: 3, MinXP: 250, Title: "Coder"},
	{Level: 4, MinXP: 500, Title: "Solver"},
	{Level: 5, MinXP: 1000, Title: "Specialist"},
	{Level: 6, MinXP: 2000, Title: "Expert"},
	{Level: 7, MinXP: 3500, Title: "Candidate Master"},
	{Level: 8, MinXP: 5500, Title: "Master"},
	{Level: 9, MinXP: 8000, Title: "Grandmaster"},
	{Level: 10, MinXP: 12000, Title: "Legendary Grandmaster"},
}

// LevelInfo describes where a given XP total sits in the level table.
type LevelInfo struct {
	Level       int     `json:"level"`
	Title       string  `json:"title"`
	MinXP       int64   `json:"min_xp"`
	NextLevelXP int64   `json:"next_level_xp"` // 0 at max level
	Progress    float64 `json:"progress"`      // percentage towards next level
}

// LevelFor scans the table for the highest threshold not above xp.
func LevelFor(xp int64) LevelInfo {
	idx := 0
	for i, t := range Levels {
		if xp >= t.MinXP {
			idx = i
		}
	}

	cur := Levels[idx]
	info := LevelInfo{Level: cur.Level, Title: cur.Title, MinXP: cur.MinXP}
	if idx == len(Levels)-1 {
		info.Progress = 100
		return info
	}

	next := Levels[idx+1]
	info.NextLevelXP = next.MinXP
	if xp > cur.MinXP {
		info.Progress = float64(xp-cur.MinXP) / float64(next.MinXP-cur.MinXP) * 100
	}
	info.Progress = math.Round(info.Progress*100) / 100
	return info
}

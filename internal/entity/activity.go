package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Activity tables are owned by the host application. This core reads them to
// build badge statistics; only Solve is also written, by the submission sync.

const PlatformCodeforces = "codeforces"

type Solve struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_solve_unique,priority:1;index:idx_solve_user_time,priority:1" json:"user_id"`
	Platform    string         `gorm:"size:32;not null;uniqueIndex:idx_solve_unique,priority:2" json:"platform"`
	ProblemID   string         `gorm:"size:32;not null;uniqueIndex:idx_solve_unique,priority:3" json:"problem_id"`
	ProblemName string         `gorm:"size:255" json:"problem_name"`
	Tags        datatypes.JSON `gorm:"type:jsonb" json:"tags"`
	IsDaily     bool           `gorm:"not null;default:false" json:"is_daily"`
	SolvedAt    time.Time      `gorm:"not null;index:idx_solve_user_time,priority:2" json:"solved_at"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

type ProblemShare struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	ProblemID string    `gorm:"size:32;not null" json:"problem_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BossBattleEntry is a user's result in a boss battle; Placement 1 is a
// first-place finish, 0 means not solved.
type BossBattleEntry struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	BossBattleID uuid.UUID  `gorm:"type:uuid;not null;index" json:"boss_battle_id"`
	UserID       uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	SolvedAt     *time.Time `json:"solved_at,omitempty"`
	Placement    int        `gorm:"not null;default:0" json:"placement"`
}

const ResourceApproved = "approved"

type ResourceSubmission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	URL       string    `gorm:"type:text" json:"url"`
	Status    string    `gorm:"size:16;not null;default:'pending'" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// QuestAssignment is one quest assigned to a user for a given week.
type QuestAssignment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index:idx_quest_user_week,priority:1" json:"user_id"`
	WeekStart time.Time `gorm:"type:date;not null;index:idx_quest_user_week,priority:2" json:"week_start"`
	QuestID   string    `gorm:"size:64;not null" json:"quest_id"`
	Completed bool      `gorm:"not null;default:false" json:"completed"`
}

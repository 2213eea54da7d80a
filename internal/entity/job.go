package entity

import "time"

// JobState holds the last successful run of a named periodic job.
type JobState struct {
	Name      string    `gorm:"size:64;primaryKey" json:"name"`
	LastRunAt time.Time `gorm:"not null" json:"last_run_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

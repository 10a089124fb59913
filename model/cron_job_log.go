package model

import (
	"time"

	"gorm.io/gorm"
)

// CronJobStatus represents the outcome of a scheduled job run
type CronJobStatus string

const (
	CronJobRunning   CronJobStatus = "running"
	CronJobCompleted CronJobStatus = "completed"
	CronJobFailed    CronJobStatus = "failed"
)

// CronJobLog records one run of a scheduled background job
type CronJobLog struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	JobName    string         `gorm:"type:varchar(100);not null;index" json:"job_name"`
	Status     CronJobStatus  `gorm:"type:varchar(20);default:'running'" json:"status"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt *time.Time     `json:"finished_at"`
	Error      string         `gorm:"type:text" json:"error,omitempty"`
	ItemCount  int            `gorm:"default:0" json:"item_count"`
}

// TableName specifies the table name for CronJobLog
func (CronJobLog) TableName() string {
	return "cron_job_logs"
}

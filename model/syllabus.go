package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TopicStatus classifies a syllabus topic for one student
type TopicStatus string

const (
	TopicDone    TopicStatus = "DONE"
	TopicPending TopicStatus = "PENDING"
)

// SubjectTopics is one subject's ordered topic list inside a month
type SubjectTopics struct {
	Subject string   `json:"subject"`
	Topics  []string `json:"topics"`
}

// MonthlySyllabus is one month of the twelve-month study plan
type MonthlySyllabus struct {
	Month       int             `json:"month"` // 1-12
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Subjects    []SubjectTopics `json:"subjects"`
}

// SyllabusOverride is an administrator-edited replacement for the bundled
// default plan of one class level. Overrides live only in the document store
// and are never pushed to the live tree.
type SyllabusOverride struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
	ClassLevel string         `gorm:"type:varchar(10);uniqueIndex;not null" json:"class_level"`
	Plan       datatypes.JSON `gorm:"type:jsonb;not null" json:"plan"` // []MonthlySyllabus
	EditedByID uint           `gorm:"index" json:"edited_by_id"`
}

// TableName specifies the table name for SyllabusOverride
func (SyllabusOverride) TableName() string {
	return "syllabus_overrides"
}

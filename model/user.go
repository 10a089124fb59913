package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
)

// Subscription tiers and levels, snapshotted onto messages at send time
const (
	TierFree     = "FREE"
	TierMonthly  = "MONTHLY"
	TierYearly   = "YEARLY"
	TierLifetime = "LIFETIME"

	LevelBasic = "BASIC"
	LevelPro   = "PRO"
	LevelUltra = "ULTRA"
)

// SubjectProgress tracks how far a student has advanced in one subject.
// CurrentChapterIndex is the index of the chapter the student is on; every
// chapter strictly before it counts as completed.
type SubjectProgress struct {
	CurrentChapterIndex int `json:"currentChapterIndex"`
}

// ProgressMap maps internal subject ids (e.g. "math", "sst") to progress.
// Stored as JSONB.
type ProgressMap map[string]SubjectProgress

// Scan implements the sql.Scanner interface for reading from database
func (p *ProgressMap) Scan(value interface{}) error {
	if value == nil {
		*p = ProgressMap{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal ProgressMap value")
	}

	if len(bytes) == 0 {
		*p = ProgressMap{}
		return nil
	}

	return json.Unmarshal(bytes, p)
}

// Value implements the driver.Valuer interface for writing to database
func (p ProgressMap) Value() (driver.Value, error) {
	if len(p) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(p)
}

// User represents a registered user in the system.
//
// The whole record is the unit of replication: saves go out as a full
// overwrite of both the live tree node and the database row, last write wins.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Name         string         `gorm:"not null" json:"name"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"` // student, admin
	TokenVersion int            `gorm:"default:0" json:"-"`                             // Increment to invalidate all user tokens

	// Subscription & credits
	IsPremium         bool   `gorm:"default:false" json:"is_premium"`
	SubscriptionTier  string `gorm:"type:varchar(20);default:'FREE'" json:"subscription_tier"`
	SubscriptionLevel string `gorm:"type:varchar(20);default:'BASIC'" json:"subscription_level"`
	Credits           int    `gorm:"default:0" json:"credits"`

	// Chat state
	LastChatTime       *time.Time `json:"last_chat_time"`
	IsChatBanned       bool       `gorm:"default:false" json:"is_chat_banned"`
	IsAutoDebitEnabled bool       `gorm:"default:false" json:"is_auto_debit_enabled"`

	// Enrollment / class metadata
	Board          string     `gorm:"type:varchar(20);default:'CBSE'" json:"board"`
	ClassLevel     string     `gorm:"type:varchar(10);default:'10'" json:"class_level"`
	EnrollmentDate *time.Time `json:"enrollment_date"`

	// Presence
	LastActiveTime *time.Time `json:"last_active_time"`
	IsOnline       bool       `gorm:"default:false" json:"is_online"`

	// Per-subject progress record (subject id -> chapter index)
	Progress ProgressMap `gorm:"type:jsonb;default:'{}'" json:"progress"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user has the administrator role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// StreamID returns the user's id as used in live tree paths
func (u *User) StreamID() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}

// CanStyleMessages reports whether the user may attach custom color/animation
// tags to chat messages (admins, and premium ULTRA subscribers)
func (u *User) CanStyleMessages() bool {
	return u.IsAdmin() || (u.IsPremium && u.SubscriptionLevel == LevelUltra)
}

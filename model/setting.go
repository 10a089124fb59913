package model

import "time"

// SystemSettingsPath is the live tree path of the settings singleton
const SystemSettingsPath = "system_settings"

// SystemSettings is the global chat configuration. A single record shared by
// every client: administrator-writable, read by all, last write wins with no
// versioning. JSON field names are the stored wire format.
type SystemSettings struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	IsChatEnabled     bool      `gorm:"default:true" json:"isChatEnabled"`
	ChatCost          int       `gorm:"default:1" json:"chatCost"`          // credits per message, 0 = free
	ChatCooldownHours float64   `gorm:"default:6" json:"chatCooldownHours"` // min hours between charged sends
	ChatMode          ChatMode  `gorm:"type:varchar(20);default:'BOTH'" json:"chatMode"`
	UpdatedAt         time.Time `json:"-"`
}

// TableName specifies the table name for SystemSettings
func (SystemSettings) TableName() string {
	return "system_settings"
}

// DefaultSettings returns the configuration used when no record exists yet
func DefaultSettings() *SystemSettings {
	return &SystemSettings{
		IsChatEnabled:     true,
		ChatCost:          1,
		ChatCooldownHours: 6,
		ChatMode:          ChatModeBoth,
	}
}

// IsFreeMode reports whether messages currently cost nothing
func (s *SystemSettings) IsFreeMode() bool {
	return s.ChatCost == 0
}

// ValidMode reports whether the stored chat mode is one of the known values
func (s *SystemSettings) ValidMode() bool {
	switch s.ChatMode {
	case ChatModeUniversalOnly, ChatModePrivateOnly, ChatModeBoth:
		return true
	}
	return false
}

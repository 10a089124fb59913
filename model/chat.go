package model

import (
	"sort"
	"time"
)

// ChatMode controls which streams are open to students
type ChatMode string

const (
	ChatModeUniversalOnly ChatMode = "UNIVERSAL_ONLY"
	ChatModePrivateOnly   ChatMode = "PRIVATE_ONLY"
	ChatModeBoth          ChatMode = "BOTH"
)

// ChatTab identifies which stream a view is looking at
type ChatTab string

const (
	TabUniversal ChatTab = "UNIVERSAL"
	TabPrivate   ChatTab = "PRIVATE"
)

// Live tree paths for chat streams. The broadcast stream is a single flat
// list of messages; each student gets a private tree holding thread metadata
// plus a messages child.
const (
	BroadcastPath    = "universal_chat"
	PrivateTreeRoot  = "chats"
	MessagesChildKey = "messages"
)

// PrivateThreadPath returns the root of a student's private chat tree
func PrivateThreadPath(studentID string) string {
	return PrivateTreeRoot + "/" + studentID
}

// PrivateMessagesPath returns the message list path of a student's private chat
func PrivateMessagesPath(studentID string) string {
	return PrivateThreadPath(studentID) + "/" + MessagesChildKey
}

// ChatMessage is a single message in a stream. Messages live on the live
// tree only; field names match the stored wire format. A message is
// immutable after send except for a text-only edit, or full deletion.
type ChatMessage struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	UserRole string `json:"userRole"`

	// Subscription snapshot captured at send time, used for display styling
	SubscriptionTier  string `json:"subscriptionTier,omitempty"`
	SubscriptionLevel string `json:"subscriptionLevel,omitempty"`

	// Optional custom styling (admin / ULTRA senders only)
	Color     string `json:"color,omitempty"`
	Animation string `json:"animation,omitempty"`

	Text      string `json:"text"`
	Timestamp string `json:"timestamp"` // ISO 8601
}

// SentAt parses the message timestamp. Unparseable timestamps sort first.
func (m *ChatMessage) SentAt() time.Time {
	t, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// SortMessages orders messages by timestamp ascending. Ordering is a
// display-time concern; the store itself guarantees no order.
func SortMessages(msgs []ChatMessage) {
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].SentAt().Before(msgs[j].SentAt())
	})
}

package model

import "sort"

// ChatSessionSummary is a derived, non-persisted summary of one student's
// private thread, used only for the administrator inbox list. It is rebuilt
// by scanning every private chat tree.
type ChatSessionSummary struct {
	StudentID   string `json:"studentId"`
	StudentName string `json:"studentName"`
	LastMessage string `json:"lastMessage,omitempty"`
	Timestamp   int64  `json:"timestamp"` // unix millis of the last message, 0 if none
}

// SortSessions orders summaries by most recent message first
func SortSessions(sessions []ChatSessionSummary) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp > sessions[j].Timestamp
	})
}

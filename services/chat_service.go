package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/nstclasses/tutor-api/database"
	"github.com/nstclasses/tutor-api/livestore"
	"github.com/nstclasses/tutor-api/model"
)

// ErrNoDestination means the view has no message destination (an admin on
// the private tab with no student selected)
var ErrNoDestination = errors.New("chat: view has no destination stream")

// SessionIndexPath is the live tree path of the cron-maintained inbox index
const SessionIndexPath = "chat_index"

// ChatService orchestrates sending, editing and deleting chat messages,
// including the credit debit flow
type ChatService struct {
	live   livestore.Store
	remote *database.RemoteStore
}

// NewChatService creates a new chat service
func NewChatService(live livestore.Store, remote *database.RemoteStore) *ChatService {
	return &ChatService{live: live, remote: remote}
}

// SendRequest carries one attempted message send
type SendRequest struct {
	User      *model.User
	View      ChatView
	Text      string
	Color     string
	Animation string

	// ConfirmDebit acknowledges the charge for this send; EnableAutoDebit
	// additionally turns auto-debit on for future sends
	ConfirmDebit    bool
	EnableAutoDebit bool
}

// SendResult is the outcome of a send attempt. Exactly one of Denied,
// RequiresConfirmation, or Message is meaningful.
type SendResult struct {
	Denied     bool   `json:"denied,omitempty"`
	DenyReason string `json:"deny_reason,omitempty"`

	RequiresConfirmation bool `json:"requires_confirmation,omitempty"`
	Cost                 int  `json:"cost,omitempty"`

	Message *model.ChatMessage `json:"message,omitempty"`
}

// Send runs the full flow: policy check, debit confirmation gate, debit,
// message write, thread metadata update.
//
// The debit (a full user-record overwrite) and the message write are two
// independent remote operations with no atomicity between them; a failure of
// either is logged and not rolled back against the other.
func (s *ChatService) Send(ctx context.Context, req SendRequest) (*SendResult, error) {
	settings := s.remote.GetSettings(ctx)

	decision := CanSend(req.User, settings, req.View.Tab)
	if !decision.Allowed {
		return &SendResult{Denied: true, DenyReason: decision.Reason}, nil
	}

	needsPayment := NeedsPayment(req.User, settings)
	if needsPayment && !req.User.IsAutoDebitEnabled && !req.ConfirmDebit {
		return &SendResult{RequiresConfirmation: true, Cost: settings.ChatCost}, nil
	}

	dest, ok := ResolveDestination(req.View)
	if !ok {
		return nil, ErrNoDestination
	}

	now := time.Now().UTC()

	if needsPayment {
		if req.EnableAutoDebit {
			req.User.IsAutoDebitEnabled = true
		}
		req.User.Credits -= settings.ChatCost
		req.User.LastChatTime = &now
		if err := s.remote.SaveUser(ctx, req.User); err != nil {
			log.Printf("chat: debit write failed for user %d: %v", req.User.ID, err)
		}
	}

	msg := model.ChatMessage{
		ID:                s.live.Push(dest),
		UserID:            req.User.StreamID(),
		UserName:          req.User.Name,
		UserRole:          req.User.Role,
		SubscriptionTier:  defaultStr(req.User.SubscriptionTier, model.TierFree),
		SubscriptionLevel: defaultStr(req.User.SubscriptionLevel, model.LevelBasic),
		Text:              req.Text,
		Timestamp:         now.Format(time.RFC3339),
	}
	if req.User.CanStyleMessages() {
		msg.Color = req.Color
		msg.Animation = req.Animation
	}

	if err := s.live.Write(ctx, dest+"/"+msg.ID, msg); err != nil {
		return nil, err
	}

	// Record the student's display name on the thread so the admin inbox
	// can label it
	if !req.View.IsAdminView && req.View.State() == StatePrivateThread {
		err := s.live.Patch(ctx, model.PrivateThreadPath(req.User.StreamID()), map[string]interface{}{
			"studentName": req.User.Name,
		})
		if err != nil {
			log.Printf("chat: thread metadata update failed for user %d: %v", req.User.ID, err)
		}
	}

	return &SendResult{Message: &msg}, nil
}

// GetMessage reads a single message off the view's resolved stream
func (s *ChatService) GetMessage(ctx context.Context, view ChatView, messageID string) (*model.ChatMessage, error) {
	dest, ok := ResolveDestination(view)
	if !ok {
		return nil, ErrNoDestination
	}

	raw, err := s.live.Read(ctx, dest+"/"+messageID)
	if err != nil {
		return nil, err
	}

	var msg model.ChatMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		msg.ID = messageID
	}
	return &msg, nil
}

// Edit replaces the text of a message on the view's resolved stream. Only
// the text field changes; id, sender and timestamp stay as sent.
func (s *ChatService) Edit(ctx context.Context, view ChatView, messageID, text string) error {
	dest, ok := ResolveDestination(view)
	if !ok {
		return ErrNoDestination
	}
	return s.live.Patch(ctx, dest+"/"+messageID, map[string]interface{}{"text": text})
}

// Delete removes a message from the view's resolved stream
func (s *ChatService) Delete(ctx context.Context, view ChatView, messageID string) error {
	dest, ok := ResolveDestination(view)
	if !ok {
		return ErrNoDestination
	}
	return s.live.Delete(ctx, dest+"/"+messageID)
}

// History reads the view's stream and returns its messages sorted by
// timestamp ascending. The sort is display-time only; the store does not
// guarantee order.
func (s *ChatService) History(ctx context.Context, view ChatView) ([]model.ChatMessage, error) {
	dest, ok := ResolveDestination(view)
	if !ok {
		return nil, ErrNoDestination
	}

	raw, err := s.live.Read(ctx, dest)
	if err != nil {
		if errors.Is(err, livestore.ErrNotFound) {
			return []model.ChatMessage{}, nil
		}
		return nil, err
	}

	return decodeMessages(raw), nil
}

// StreamPath resolves the live tree path a view should subscribe to
func (s *ChatService) StreamPath(view ChatView) (string, bool) {
	if view.IsAdminView && view.State() == StatePrivateList {
		return model.PrivateTreeRoot, true
	}
	return ResolveDestination(view)
}

// ScanSessions walks every private chat tree and summarizes each student's
// thread for the admin inbox, most recent first. A full-collection scan:
// fine at this scale, the cron-maintained index exists for when it is not.
func (s *ChatService) ScanSessions(ctx context.Context) ([]model.ChatSessionSummary, error) {
	raw, err := s.live.Read(ctx, model.PrivateTreeRoot)
	if err != nil {
		if errors.Is(err, livestore.ErrNotFound) {
			return []model.ChatSessionSummary{}, nil
		}
		return nil, err
	}

	var threads map[string]struct {
		StudentName string                       `json:"studentName"`
		Messages    map[string]model.ChatMessage `json:"messages"`
	}
	if err := json.Unmarshal(raw, &threads); err != nil {
		return nil, err
	}

	sessions := make([]model.ChatSessionSummary, 0, len(threads))
	for studentID, thread := range threads {
		summary := model.ChatSessionSummary{
			StudentID:   studentID,
			StudentName: defaultStr(thread.StudentName, "Unknown Student"),
		}

		msgs := make([]model.ChatMessage, 0, len(thread.Messages))
		for id, m := range thread.Messages {
			if m.ID == "" {
				m.ID = id
			}
			msgs = append(msgs, m)
		}
		model.SortMessages(msgs)
		if len(msgs) > 0 {
			last := msgs[len(msgs)-1]
			summary.LastMessage = last.Text
			summary.Timestamp = last.SentAt().UnixMilli()
		}

		sessions = append(sessions, summary)
	}

	model.SortSessions(sessions)
	return sessions, nil
}

// CachedSessions serves the inbox from the cron-maintained index, falling
// back to a live scan when the index is missing
func (s *ChatService) CachedSessions(ctx context.Context) ([]model.ChatSessionSummary, error) {
	raw, err := s.live.Read(ctx, SessionIndexPath)
	if err == nil {
		var sessions []model.ChatSessionSummary
		if err := json.Unmarshal(raw, &sessions); err == nil {
			return sessions, nil
		}
	}
	return s.ScanSessions(ctx)
}

// RebuildSessionIndex regenerates the cached inbox index from a full scan.
// Called by the cron manager.
func (s *ChatService) RebuildSessionIndex(ctx context.Context) (int, error) {
	sessions, err := s.ScanSessions(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.live.Write(ctx, SessionIndexPath, sessions); err != nil {
		return 0, err
	}
	return len(sessions), nil
}

// decodeMessages turns a stream branch value into an ordered message slice
func decodeMessages(raw json.RawMessage) []model.ChatMessage {
	var byID map[string]model.ChatMessage
	if err := json.Unmarshal(raw, &byID); err != nil {
		return []model.ChatMessage{}
	}

	msgs := make([]model.ChatMessage, 0, len(byID))
	for id, m := range byID {
		if m.ID == "" {
			m.ID = id
		}
		msgs = append(msgs, m)
	}
	model.SortMessages(msgs)
	return msgs
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

package services

import "github.com/nstclasses/tutor-api/model"

// ViewState classifies what a chat view is showing. The combinations of
// role, configured mode, tab and selection collapse into three legal states;
// an admin on the private tab with no student selected is the list state,
// which has no message destination.
type ViewState string

const (
	StateBroadcastView ViewState = "BROADCAST_VIEW"
	StatePrivateList   ViewState = "PRIVATE_LIST"
	StatePrivateThread ViewState = "PRIVATE_THREAD"
)

// ChatView is everything destination resolution depends on. Edits and
// deletes resolve through the same view as sends, so an operation started on
// one tab and completed after switching tabs targets the stream of the new
// tab, not the one the message came from.
type ChatView struct {
	IsAdminView       bool
	Tab               model.ChatTab
	SelectedStudentID string // admin's selection on the private tab
	Mode              model.ChatMode
	UserID            string // stream id of the viewing user
	SendToAdmin       bool   // student's toggle, honored only in BOTH mode
}

// State returns the explicit view state for this combination
func (v ChatView) State() ViewState {
	if v.IsAdminView {
		if v.Tab == model.TabPrivate {
			if v.SelectedStudentID == "" {
				return StatePrivateList
			}
			return StatePrivateThread
		}
		return StateBroadcastView
	}

	if v.studentTargetsPrivate() {
		return StatePrivateThread
	}
	return StateBroadcastView
}

// ThreadStudentID returns which student's private thread this view reads
func (v ChatView) ThreadStudentID() string {
	if v.IsAdminView {
		return v.SelectedStudentID
	}
	return v.UserID
}

func (v ChatView) studentTargetsPrivate() bool {
	return v.Mode == model.ChatModePrivateOnly ||
		(v.Mode == model.ChatModeBoth && v.SendToAdmin)
}

// ResolveDestination returns the message-list path for this view, or
// ok=false when the view has no destination (admin private list: the caller
// must present the student list instead).
func ResolveDestination(v ChatView) (string, bool) {
	switch v.State() {
	case StateBroadcastView:
		return model.BroadcastPath, true
	case StatePrivateThread:
		return model.PrivateMessagesPath(v.ThreadStudentID()), true
	default:
		return "", false
	}
}

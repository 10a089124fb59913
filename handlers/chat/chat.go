package chat

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/nstclasses/tutor-api/database"
	"github.com/nstclasses/tutor-api/livestore"
	"github.com/nstclasses/tutor-api/model"
	"github.com/nstclasses/tutor-api/services"
	"github.com/nstclasses/tutor-api/utils/middleware"
	"github.com/nstclasses/tutor-api/utils/response"
	"github.com/nstclasses/tutor-api/utils/validation"
)

// ChatHandler handles the chat message endpoints
type ChatHandler struct {
	chat      *services.ChatService
	remote    *database.RemoteStore
	live      livestore.Store
	validator *validation.Validator
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chat *services.ChatService, remote *database.RemoteStore, live livestore.Store) *ChatHandler {
	return &ChatHandler{
		chat:      chat,
		remote:    remote,
		live:      live,
		validator: validation.NewValidator(),
	}
}

// viewParams are the client-side view fields that destination resolution
// depends on. Sent in the body for writes and as query params for reads.
type viewParams struct {
	Tab               string `json:"tab" query:"tab"`
	SelectedStudentID string `json:"selectedStudentId" query:"selected_student_id"`
	SendToAdmin       bool   `json:"sendToAdmin" query:"send_to_admin"`
}

// buildView combines the caller's identity, the current chat mode and the
// client view fields into the view that resolution operates on. Students
// never pick a tab directly: their effective tab follows from the mode and
// the send-to-admin toggle.
func (h *ChatHandler) buildView(c *fiber.Ctx, user *model.User, p viewParams) services.ChatView {
	settings := h.remote.GetSettings(c.Context())

	view := services.ChatView{
		IsAdminView: user.IsAdmin(),
		Mode:        settings.ChatMode,
		UserID:      user.StreamID(),
		SendToAdmin: p.SendToAdmin,
	}

	if user.IsAdmin() {
		view.Tab = model.TabUniversal
		if p.Tab == string(model.TabPrivate) {
			view.Tab = model.TabPrivate
			view.SelectedStudentID = p.SelectedStudentID
		}
		return view
	}

	if view.State() == services.StatePrivateThread {
		view.Tab = model.TabPrivate
	} else {
		view.Tab = model.TabUniversal
	}
	return view
}

// SendMessageRequest is the payload for sending a chat message
type SendMessageRequest struct {
	viewParams
	Text            string `json:"text" validate:"required,max=2000"`
	Color           string `json:"color" validate:"omitempty,max=30"`
	Animation       string `json:"animation" validate:"omitempty,max=30"`
	ConfirmDebit    bool   `json:"confirmDebit"`
	EnableAutoDebit bool   `json:"enableAutoDebit"`
}

// Send handles POST /chat/messages
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.chat.Send(c.Context(), services.SendRequest{
		User:            user,
		View:            h.buildView(c, user, req.viewParams),
		Text:            req.Text,
		Color:           req.Color,
		Animation:       req.Animation,
		ConfirmDebit:    req.ConfirmDebit,
		EnableAutoDebit: req.EnableAutoDebit,
	})
	if err != nil {
		if errors.Is(err, services.ErrNoDestination) {
			return response.BadRequest(c, "No chat stream selected")
		}
		return response.InternalServerError(c, "Failed to send message")
	}

	// Policy denials are payloads, not transport errors: the client shows
	// the reason inline
	return response.Success(c, result)
}

// EditMessageRequest is the payload for a text-only message edit
type EditMessageRequest struct {
	viewParams
	Text string `json:"text" validate:"required,max=2000"`
}

// Edit handles PATCH /chat/messages/:id. Only the text changes; the edit
// targets whatever stream the caller's current view resolves to.
func (h *ChatHandler) Edit(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	messageID := c.Params("id")

	var req EditMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	view := h.buildView(c, user, req.viewParams)
	if err := h.authorizeMessage(c, user, view, messageID); err != nil {
		return err
	}

	if err := h.chat.Edit(c.Context(), view, messageID, req.Text); err != nil {
		if errors.Is(err, services.ErrNoDestination) {
			return response.BadRequest(c, "No chat stream selected")
		}
		return response.InternalServerError(c, "Failed to edit message")
	}
	return response.SuccessWithMessage(c, "Message updated", nil)
}

// Delete handles DELETE /chat/messages/:id
func (h *ChatHandler) Delete(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	messageID := c.Params("id")

	var p viewParams
	if err := c.QueryParser(&p); err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}

	view := h.buildView(c, user, p)
	if err := h.authorizeMessage(c, user, view, messageID); err != nil {
		return err
	}

	if err := h.chat.Delete(c.Context(), view, messageID); err != nil {
		if errors.Is(err, services.ErrNoDestination) {
			return response.BadRequest(c, "No chat stream selected")
		}
		return response.InternalServerError(c, "Failed to delete message")
	}
	return response.SuccessWithMessage(c, "Message deleted", nil)
}

// History handles GET /chat/messages
func (h *ChatHandler) History(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var p viewParams
	if err := c.QueryParser(&p); err != nil {
		return response.BadRequest(c, "Invalid query parameters")
	}

	msgs, err := h.chat.History(c.Context(), h.buildView(c, user, p))
	if err != nil {
		if errors.Is(err, services.ErrNoDestination) {
			return response.BadRequest(c, "No chat stream selected")
		}
		return response.InternalServerError(c, "Failed to load messages")
	}
	return response.Success(c, msgs)
}

// Sessions handles GET /chat/sessions, the admin inbox. With ?cached=true
// the cron-maintained index is served instead of a live scan.
func (h *ChatHandler) Sessions(c *fiber.Ctx) error {
	var (
		sessions []model.ChatSessionSummary
		err      error
	)
	if c.QueryBool("cached") {
		sessions, err = h.chat.CachedSessions(c.Context())
	} else {
		sessions, err = h.chat.ScanSessions(c.Context())
	}
	if err != nil {
		return response.InternalServerError(c, "Failed to load chat sessions")
	}
	return response.Success(c, sessions)
}

// authorizeMessage verifies the caller may modify the message as resolved
// through their current view. Admins may touch anything; students only their
// own messages.
func (h *ChatHandler) authorizeMessage(c *fiber.Ctx, user *model.User, view services.ChatView, messageID string) error {
	msg, err := h.chat.GetMessage(c.Context(), view, messageID)
	if err != nil {
		if errors.Is(err, services.ErrNoDestination) {
			return response.BadRequest(c, "No chat stream selected")
		}
		if errors.Is(err, livestore.ErrNotFound) {
			return response.NotFound(c, "Message not found on this stream")
		}
		return response.InternalServerError(c, "Failed to load message")
	}

	if !user.IsAdmin() && msg.UserID != user.StreamID() {
		return response.Forbidden(c, "You can only modify your own messages")
	}
	return nil
}

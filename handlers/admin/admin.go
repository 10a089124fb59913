package admin

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nstclasses/tutor-api/model"
	"github.com/nstclasses/tutor-api/services"
	"github.com/nstclasses/tutor-api/utils/middleware"
	"github.com/nstclasses/tutor-api/utils/response"
	"github.com/nstclasses/tutor-api/utils/validation"
)

// AdminHandler handles the administrator endpoints: global chat settings,
// user management and cron job inspection
type AdminHandler struct {
	db        *gorm.DB
	settings  *services.SettingsService
	users     *services.UserService
	validator *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, settings *services.SettingsService, users *services.UserService) *AdminHandler {
	return &AdminHandler{
		db:        db,
		settings:  settings,
		users:     users,
		validator: validation.NewValidator(),
	}
}

// GetSettings handles GET /admin/settings
func (h *AdminHandler) GetSettings(c *fiber.Ctx) error {
	return response.Success(c, h.settings.Get(c.Context()))
}

// UpdateSettings handles PUT /admin/settings with a partial update
func (h *AdminHandler) UpdateSettings(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	var req services.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	settings, err := h.settings.Update(c.Context(), user, req)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			return response.Forbidden(c, "")
		}
		return response.BadRequest(c, err.Error())
	}
	return response.Success(c, settings)
}

// ListUsers handles GET /admin/users with limit/offset pagination
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	offset := c.QueryInt("offset", 0)

	users, total, err := h.users.List(c.Context(), limit, offset)
	if err != nil {
		return response.InternalServerError(c, "Failed to list users")
	}
	return response.Success(c, fiber.Map{
		"users": users,
		"total": total,
	})
}

// GetUser handles GET /admin/users/:id
func (h *AdminHandler) GetUser(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user id")
	}

	user, err := h.users.Get(c.Context(), uint(id))
	if err != nil {
		return response.NotFound(c, "User not found")
	}
	return response.Success(c, user)
}

// BanRequest toggles a user's chat ban
type BanRequest struct {
	Banned bool `json:"banned"`
}

// SetChatBan handles PATCH /admin/users/:id/ban
func (h *AdminHandler) SetChatBan(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user id")
	}

	var req BanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	user, err := h.users.SetChatBan(c.Context(), uint(id), req.Banned)
	if err != nil {
		return h.userMutationError(c, err)
	}
	return response.Success(c, user)
}

// CreditsRequest adjusts a user's credit balance by a delta
type CreditsRequest struct {
	Delta int `json:"delta" validate:"required"`
}

// AdjustCredits handles PATCH /admin/users/:id/credits
func (h *AdminHandler) AdjustCredits(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user id")
	}

	var req CreditsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	user, err := h.users.AdjustCredits(c.Context(), uint(id), req.Delta)
	if err != nil {
		return h.userMutationError(c, err)
	}
	return response.Success(c, user)
}

// SubscriptionRequest updates a user's premium status
type SubscriptionRequest struct {
	IsPremium bool   `json:"is_premium"`
	Tier      string `json:"tier" validate:"omitempty,oneof=FREE MONTHLY YEARLY LIFETIME"`
	Level     string `json:"level" validate:"omitempty,oneof=BASIC PRO ULTRA"`
}

// SetSubscription handles PATCH /admin/users/:id/subscription
func (h *AdminHandler) SetSubscription(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user id")
	}

	var req SubscriptionRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	user, err := h.users.SetSubscription(c.Context(), uint(id), req.IsPremium, req.Tier, req.Level)
	if err != nil {
		return h.userMutationError(c, err)
	}
	return response.Success(c, user)
}

// ProgressRequest moves a student's chapter index for one subject
type ProgressRequest struct {
	SubjectID    string `json:"subject_id" validate:"required,max=30"`
	ChapterIndex int    `json:"chapter_index" validate:"min=0,max=50"`
}

// UpdateProgress handles PATCH /admin/users/:id/progress
func (h *AdminHandler) UpdateProgress(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user id")
	}

	var req ProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	user, err := h.users.UpdateProgress(c.Context(), uint(id), req.SubjectID, req.ChapterIndex)
	if err != nil {
		return h.userMutationError(c, err)
	}
	return response.Success(c, user)
}

// EnrollmentRequest sets a student's enrollment date
type EnrollmentRequest struct {
	Date time.Time `json:"date" validate:"required"`
}

// SetEnrollmentDate handles PATCH /admin/users/:id/enrollment
func (h *AdminHandler) SetEnrollmentDate(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return response.BadRequest(c, "Invalid user id")
	}

	var req EnrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	user, err := h.users.SetEnrollmentDate(c.Context(), uint(id), req.Date)
	if err != nil {
		return h.userMutationError(c, err)
	}
	return response.Success(c, user)
}

// ListCronLogs handles GET /admin/cron-logs, most recent runs first
func (h *AdminHandler) ListCronLogs(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var logs []model.CronJobLog
	err := h.db.WithContext(c.Context()).
		Order("started_at DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load cron logs")
	}
	return response.Success(c, logs)
}

func (h *AdminHandler) userMutationError(c *fiber.Ctx, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return response.NotFound(c, "User not found")
	}
	return response.InternalServerError(c, "Failed to update user")
}

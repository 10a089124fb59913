package syllabus

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nstclasses/tutor-api/model"
	"github.com/nstclasses/tutor-api/services"
	"github.com/nstclasses/tutor-api/utils/middleware"
	"github.com/nstclasses/tutor-api/utils/response"
	"github.com/nstclasses/tutor-api/utils/validation"
)

// SyllabusHandler handles the study plan endpoints
type SyllabusHandler struct {
	syllabus  *services.SyllabusService
	validator *validation.Validator
}

// NewSyllabusHandler creates a new syllabus handler
func NewSyllabusHandler(syllabus *services.SyllabusService) *SyllabusHandler {
	return &SyllabusHandler{
		syllabus:  syllabus,
		validator: validation.NewValidator(),
	}
}

// GetPlan handles GET /syllabus: the viewer's annotated twelve-month plan
func (h *SyllabusHandler) GetPlan(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	months, err := h.syllabus.BuildView(c.Context(), user, time.Now().UTC())
	if err != nil {
		return response.InternalServerError(c, "Failed to load syllabus")
	}

	return response.Success(c, fiber.Map{
		"classLevel": user.ClassLevel,
		"months":     months,
	})
}

// OverrideRequest is the payload for replacing a class level's plan
type OverrideRequest struct {
	Plan []model.MonthlySyllabus `json:"plan" validate:"required,min=1,max=12"`
}

// SaveOverride handles PUT /syllabus/:classLevel. Admin only; the bundled
// default stays untouched and can be restored by deleting the override.
func (h *SyllabusHandler) SaveOverride(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	classLevel := c.Params("classLevel")

	var req OverrideRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	for _, m := range req.Plan {
		if m.Month < 1 || m.Month > 12 {
			return response.BadRequest(c, "Plan months must be between 1 and 12")
		}
	}

	if err := h.syllabus.SaveOverride(c.Context(), classLevel, req.Plan, user.ID); err != nil {
		return response.InternalServerError(c, "Failed to save syllabus override")
	}
	return response.SuccessWithMessage(c, "Syllabus updated", nil)
}

// DeleteOverride handles DELETE /syllabus/:classLevel, restoring the bundled
// default plan
func (h *SyllabusHandler) DeleteOverride(c *fiber.Ctx) error {
	classLevel := c.Params("classLevel")

	if err := h.syllabus.DeleteOverride(c.Context(), classLevel); err != nil {
		return response.InternalServerError(c, "Failed to delete syllabus override")
	}
	return response.SuccessWithMessage(c, "Default syllabus restored", nil)
}

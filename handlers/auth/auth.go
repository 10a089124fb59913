package auth

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nstclasses/tutor-api/database"
	"github.com/nstclasses/tutor-api/model"
	"github.com/nstclasses/tutor-api/utils/auth"
	"github.com/nstclasses/tutor-api/utils/middleware"
	"github.com/nstclasses/tutor-api/utils/response"
	"github.com/nstclasses/tutor-api/utils/validation"
)

// AuthHandler handles registration, login and session endpoints
type AuthHandler struct {
	db         *gorm.DB
	remote     *database.RemoteStore
	jwtManager *auth.JWTManager
	validator  *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, remote *database.RemoteStore, jwtManager *auth.JWTManager) *AuthHandler {
	return &AuthHandler{
		db:         db,
		remote:     remote,
		jwtManager: jwtManager,
		validator:  validation.NewValidator(),
	}
}

// RegisterRequest is the payload for user registration
type RegisterRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=8"`
	Name       string `json:"name" validate:"required,min=2,max=100"`
	ClassLevel string `json:"class_level" validate:"omitempty,oneof=9 10"`
	Board      string `json:"board" validate:"omitempty,oneof=CBSE ICSE"`
}

// LoginRequest is the payload for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries a refresh token
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// tokenPair bundles the tokens returned on login and refresh
type tokenPair struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *model.User `json:"user"`
}

// Register creates a new student account. The record is written through the
// two-store layer so the live tree copy exists from the start.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var existing model.User
	err := h.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return response.Conflict(c, "Email is already registered")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.InternalServerError(c, "Failed to check existing users")
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	now := time.Now().UTC()
	user := model.User{
		Email:          req.Email,
		PasswordHash:   hash,
		Name:           req.Name,
		Role:           model.RoleStudent,
		Board:          defaultStr(req.Board, "CBSE"),
		ClassLevel:     defaultStr(req.ClassLevel, "10"),
		EnrollmentDate: &now,
		Progress:       model.ProgressMap{},
	}

	if err := h.remote.SaveUser(c.Context(), &user); err != nil {
		log.Printf("Register: failed to save user %s: %v", req.Email, err)
		return response.InternalServerError(c, "Failed to create account")
	}

	return response.Created(c, user)
}

// Login verifies credentials and issues an access/refresh token pair
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return response.Unauthorized(c, "Invalid email or password")
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return response.Unauthorized(c, "Invalid email or password")
	}

	pair, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to issue tokens")
	}

	h.remote.TouchPresence(c.Context(), &user)

	return response.Success(c, pair)
}

// Refresh exchanges a valid refresh token for a new token pair
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	claims, err := h.jwtManager.ValidateToken(req.RefreshToken)
	if err != nil {
		return response.Unauthorized(c, "Invalid refresh token")
	}
	if claims.TokenType != "refresh" {
		return response.Unauthorized(c, "Invalid token type")
	}

	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		return response.Unauthorized(c, "User not found")
	}
	if user.TokenVersion != claims.TokenVersion {
		return response.Unauthorized(c, "Token has been invalidated")
	}

	pair, err := h.issueTokens(&user)
	if err != nil {
		return response.InternalServerError(c, "Failed to issue tokens")
	}
	return response.Success(c, pair)
}

// Logout invalidates every outstanding token for the user by bumping the
// token version
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	user.TokenVersion++
	user.IsOnline = false
	if err := h.remote.SaveUser(c.Context(), user); err != nil {
		return response.InternalServerError(c, "Failed to log out")
	}

	return response.SuccessWithMessage(c, "Logged out", nil)
}

// Me returns the authenticated user's record
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}
	return response.Success(c, user)
}

// Presence records a heartbeat on the user's live node
func (h *AuthHandler) Presence(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "")
	}

	h.remote.TouchPresence(c.Context(), user)
	return response.Success(c, fiber.Map{"online": true})
}

func (h *AuthHandler) issueTokens(user *model.User) (*tokenPair, error) {
	access, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, err
	}
	refresh, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return nil, err
	}
	return &tokenPair{AccessToken: access, RefreshToken: refresh, User: user}, nil
}

func defaultStr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

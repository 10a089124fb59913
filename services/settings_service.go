package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/nstclasses/tutor-api/database"
	"github.com/nstclasses/tutor-api/model"
)

// ErrForbidden is returned by service methods that re-check authorization
// below the middleware layer
var ErrForbidden = errors.New("operation requires administrator role")

// SettingsService reads and updates the global chat settings through the
// two-store layer
type SettingsService struct {
	remote *database.RemoteStore
}

// NewSettingsService creates a new settings service
func NewSettingsService(remote *database.RemoteStore) *SettingsService {
	return &SettingsService{remote: remote}
}

// UpdateSettingsRequest is a partial settings update; nil fields are left
// unchanged
type UpdateSettingsRequest struct {
	IsChatEnabled     *bool    `json:"isChatEnabled"`
	ChatCost          *int     `json:"chatCost" validate:"omitempty,min=0"`
	ChatCooldownHours *float64 `json:"chatCooldownHours" validate:"omitempty,min=0"`
	ChatMode          *string  `json:"chatMode"`
}

// Get returns the effective settings, falling back to defaults when no
// record exists yet
func (s *SettingsService) Get(ctx context.Context) *model.SystemSettings {
	return s.remote.GetSettings(ctx)
}

// Update applies a partial settings change and writes the result to both
// stores. The admin check here backs up the route middleware.
func (s *SettingsService) Update(ctx context.Context, actor *model.User, req UpdateSettingsRequest) (*model.SystemSettings, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	settings := s.remote.GetSettings(ctx)

	if req.IsChatEnabled != nil {
		settings.IsChatEnabled = *req.IsChatEnabled
	}
	if req.ChatCost != nil {
		settings.ChatCost = *req.ChatCost
	}
	if req.ChatCooldownHours != nil {
		settings.ChatCooldownHours = *req.ChatCooldownHours
	}
	if req.ChatMode != nil {
		settings.ChatMode = model.ChatMode(*req.ChatMode)
		if !settings.ValidMode() {
			return nil, fmt.Errorf("invalid chat mode %q", *req.ChatMode)
		}
	}

	if err := s.remote.SaveSettings(ctx, settings); err != nil {
		return nil, err
	}
	return settings, nil
}

package database

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/nstclasses/tutor-api/livestore"
	"github.com/nstclasses/tutor-api/model"
)

// UserPath returns the live tree node of one user record
func UserPath(streamID string) string {
	return "users/" + streamID
}

// RemoteStore joins the live tree and the document store behind one surface.
// Reads prefer the live tree and fall back to the document store; user and
// settings writes are dual writes to both. There is no transaction spanning
// the two stores: either side can land without the other, last write wins.
type RemoteStore struct {
	Live livestore.Store
	Docs DocumentStore
}

// NewRemoteStore creates the adapter over the two stores
func NewRemoteStore(live livestore.Store, docs DocumentStore) *RemoteStore {
	return &RemoteStore{Live: live, Docs: docs}
}

// GetUser reads a user record, live tree first
func (r *RemoteStore) GetUser(ctx context.Context, id uint) (*model.User, error) {
	streamID := strconv.FormatUint(uint64(id), 10)
	raw, err := r.Live.Read(ctx, UserPath(streamID))
	if err == nil {
		var user model.User
		if err := json.Unmarshal(raw, &user); err == nil && user.ID == id {
			return &user, nil
		}
	}
	return r.Docs.GetUserByID(id)
}

// SaveUser writes the full user record to both stores. New users without a
// role default to student. Both writes are attempted even if the first
// fails; the first error is returned.
func (r *RemoteStore) SaveUser(ctx context.Context, user *model.User) error {
	if user.Role == "" {
		user.Role = model.RoleStudent
	}
	user.UpdatedAt = time.Now().UTC()

	docErr := r.Docs.SaveUser(user)
	liveErr := r.Live.Write(ctx, UserPath(user.StreamID()), user)

	if docErr != nil {
		return docErr
	}
	return liveErr
}

// GetSettings reads the system settings, live tree first, then document
// store, then built-in defaults
func (r *RemoteStore) GetSettings(ctx context.Context) *model.SystemSettings {
	raw, err := r.Live.Read(ctx, model.SystemSettingsPath)
	if err == nil {
		var settings model.SystemSettings
		if err := json.Unmarshal(raw, &settings); err == nil && settings.ValidMode() {
			return &settings
		}
	}

	if settings, err := r.Docs.GetSettings(); err == nil {
		return settings
	}
	return model.DefaultSettings()
}

// SaveSettings writes the settings singleton to both stores
func (r *RemoteStore) SaveSettings(ctx context.Context, settings *model.SystemSettings) error {
	docErr := r.Docs.SaveSettings(settings)
	liveErr := r.Live.Write(ctx, model.SystemSettingsPath, settings)

	if docErr != nil {
		return docErr
	}
	return liveErr
}

// TouchPresence patches the user's live node with activity fields.
// Fire-and-forget: failures are logged and swallowed.
func (r *RemoteStore) TouchPresence(ctx context.Context, user *model.User) {
	err := r.Live.Patch(ctx, UserPath(user.StreamID()), map[string]interface{}{
		"last_active_time": time.Now().UTC().Format(time.RFC3339),
		"is_online":        true,
	})
	if err != nil {
		log.Printf("Warning: presence update failed for user %d: %v", user.ID, err)
	}
}

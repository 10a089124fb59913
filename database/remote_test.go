package database

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nstclasses/tutor-api/livestore"
	"github.com/nstclasses/tutor-api/model"
)

type memDocs struct {
	users    map[uint]model.User
	settings *model.SystemSettings
	nextID   uint
}

func newMemDocs() *memDocs {
	return &memDocs{users: make(map[uint]model.User), nextID: 1}
}

func (m *memDocs) GetUserByID(id uint) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return &u, nil
}

func (m *memDocs) SaveUser(user *model.User) error {
	if user.ID == 0 {
		user.ID = m.nextID
		m.nextID++
	}
	m.users[user.ID] = *user
	return nil
}

func (m *memDocs) GetSettings() (*model.SystemSettings, error) {
	if m.settings == nil {
		return nil, errors.New("not found")
	}
	return m.settings, nil
}

func (m *memDocs) SaveSettings(settings *model.SystemSettings) error {
	m.settings = settings
	return nil
}

func TestGetUserPrefersLiveTree(t *testing.T) {
	live := livestore.NewMemoryStore()
	docs := newMemDocs()
	remote := NewRemoteStore(live, docs)
	ctx := context.Background()

	docs.users[7] = model.User{ID: 7, Name: "From Docs", Role: model.RoleStudent}

	liveCopy := model.User{ID: 7, Name: "From Live", Role: model.RoleStudent}
	if err := live.Write(ctx, UserPath("7"), liveCopy); err != nil {
		t.Fatal(err)
	}

	got, err := remote.GetUser(ctx, 7)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Name != "From Live" {
		t.Errorf("name = %q, want From Live", got.Name)
	}
}

func TestGetUserFallsBackToDocs(t *testing.T) {
	live := livestore.NewMemoryStore()
	docs := newMemDocs()
	remote := NewRemoteStore(live, docs)

	docs.users[7] = model.User{ID: 7, Name: "From Docs", Role: model.RoleStudent}

	got, err := remote.GetUser(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Name != "From Docs" {
		t.Errorf("name = %q, want From Docs", got.Name)
	}
}

func TestSaveUserWritesBothStores(t *testing.T) {
	live := livestore.NewMemoryStore()
	docs := newMemDocs()
	remote := NewRemoteStore(live, docs)
	ctx := context.Background()

	user := &model.User{Name: "Asha"}
	if err := remote.SaveUser(ctx, user); err != nil {
		t.Fatalf("SaveUser failed: %v", err)
	}

	if user.Role != model.RoleStudent {
		t.Errorf("role not defaulted: %q", user.Role)
	}
	if user.ID == 0 {
		t.Fatal("no id assigned")
	}

	if _, err := docs.GetUserByID(user.ID); err != nil {
		t.Errorf("document store missing user: %v", err)
	}

	raw, err := live.Read(ctx, UserPath(user.StreamID()))
	if err != nil {
		t.Fatalf("live tree missing user: %v", err)
	}
	var fromLive model.User
	if err := json.Unmarshal(raw, &fromLive); err != nil {
		t.Fatal(err)
	}
	if fromLive.Name != "Asha" || fromLive.ID != user.ID {
		t.Errorf("live copy = %+v", fromLive)
	}
}

func TestGetSettingsFallbackChain(t *testing.T) {
	live := livestore.NewMemoryStore()
	docs := newMemDocs()
	remote := NewRemoteStore(live, docs)
	ctx := context.Background()

	// Nothing anywhere: built-in defaults
	got := remote.GetSettings(ctx)
	if got.ChatCost != 1 || got.ChatMode != model.ChatModeBoth {
		t.Errorf("defaults = %+v", got)
	}

	// Document store only
	docs.settings = &model.SystemSettings{IsChatEnabled: true, ChatCost: 3, ChatCooldownHours: 2, ChatMode: model.ChatModeBoth}
	if got := remote.GetSettings(ctx); got.ChatCost != 3 {
		t.Errorf("docs settings not used: %+v", got)
	}

	// Live tree wins once present
	liveSettings := model.SystemSettings{IsChatEnabled: false, ChatCost: 9, ChatCooldownHours: 1, ChatMode: model.ChatModePrivateOnly}
	if err := live.Write(ctx, model.SystemSettingsPath, liveSettings); err != nil {
		t.Fatal(err)
	}
	got = remote.GetSettings(ctx)
	if got.ChatCost != 9 || got.ChatMode != model.ChatModePrivateOnly {
		t.Errorf("live settings not preferred: %+v", got)
	}
}

func TestSaveSettingsWritesBothStores(t *testing.T) {
	live := livestore.NewMemoryStore()
	docs := newMemDocs()
	remote := NewRemoteStore(live, docs)
	ctx := context.Background()

	settings := &model.SystemSettings{IsChatEnabled: true, ChatCost: 2, ChatCooldownHours: 4, ChatMode: model.ChatModeUniversalOnly}
	if err := remote.SaveSettings(ctx, settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}

	if docs.settings == nil || docs.settings.ChatCost != 2 {
		t.Errorf("document store settings = %+v", docs.settings)
	}
	if _, err := live.Read(ctx, model.SystemSettingsPath); err != nil {
		t.Errorf("live tree settings missing: %v", err)
	}
}

func TestTouchPresencePatchesLiveNode(t *testing.T) {
	live := livestore.NewMemoryStore()
	remote := NewRemoteStore(live, newMemDocs())
	ctx := context.Background()

	user := &model.User{ID: 7, Name: "Asha", Role: model.RoleStudent}
	remote.TouchPresence(ctx, user)

	raw, err := live.Read(ctx, UserPath("7"))
	if err != nil {
		t.Fatalf("presence node missing: %v", err)
	}
	var node map[string]interface{}
	if err := json.Unmarshal(raw, &node); err != nil {
		t.Fatal(err)
	}
	if node["is_online"] != true {
		t.Errorf("is_online = %v", node["is_online"])
	}
	if _, ok := node["last_active_time"]; !ok {
		t.Error("last_active_time not set")
	}
}

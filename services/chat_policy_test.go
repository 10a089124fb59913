package services

import (
	"strings"
	"testing"
	"time"

	"github.com/nstclasses/tutor-api/model"
)

func testSettings() *model.SystemSettings {
	return &model.SystemSettings{
		IsChatEnabled:     true,
		ChatCost:          5,
		ChatCooldownHours: 6,
		ChatMode:          model.ChatModeBoth,
	}
}

func TestCanSendAdminAlwaysAllowed(t *testing.T) {
	// Even banned, broke and mid-cooldown
	lastChat := time.Now().Add(-1 * time.Minute)
	admin := &model.User{
		Role:         model.RoleAdmin,
		IsChatBanned: true,
		Credits:      0,
		LastChatTime: &lastChat,
	}
	settings := testSettings()
	settings.IsChatEnabled = false

	for _, tab := range []model.ChatTab{model.TabUniversal, model.TabPrivate} {
		if d := CanSend(admin, settings, tab); !d.Allowed {
			t.Errorf("admin denied on %s tab: %s", tab, d.Reason)
		}
	}
}

func TestCanSendBannedUserDenied(t *testing.T) {
	user := &model.User{Role: model.RoleStudent, IsChatBanned: true, IsPremium: true}

	d := CanSend(user, testSettings(), model.TabPrivate)
	if d.Allowed {
		t.Fatal("banned user allowed to send")
	}
	if d.Reason != "You are banned from chat." {
		t.Errorf("reason = %q", d.Reason)
	}
}

func TestCanSendChatDisabledBlocksOnlyBroadcast(t *testing.T) {
	user := &model.User{Role: model.RoleStudent, IsPremium: true}
	settings := testSettings()
	settings.IsChatEnabled = false

	if d := CanSend(user, settings, model.TabUniversal); d.Allowed {
		t.Error("broadcast allowed while chat disabled")
	}
	if d := CanSend(user, settings, model.TabPrivate); !d.Allowed {
		t.Errorf("private denied while chat disabled: %s", d.Reason)
	}
}

func TestCanSendFreeModeAdmitsEveryone(t *testing.T) {
	lastChat := time.Now().Add(-1 * time.Minute)
	user := &model.User{Role: model.RoleStudent, Credits: 0, LastChatTime: &lastChat}
	settings := testSettings()
	settings.ChatCost = 0

	if d := CanSend(user, settings, model.TabUniversal); !d.Allowed {
		t.Errorf("free mode denied: %s", d.Reason)
	}
}

func TestCanSendPremiumSkipsCreditsAndCooldown(t *testing.T) {
	lastChat := time.Now().Add(-1 * time.Minute)
	user := &model.User{Role: model.RoleStudent, IsPremium: true, Credits: 0, LastChatTime: &lastChat}

	if d := CanSend(user, testSettings(), model.TabUniversal); !d.Allowed {
		t.Errorf("premium denied: %s", d.Reason)
	}
}

func TestCanSendInsufficientCredits(t *testing.T) {
	user := &model.User{Role: model.RoleStudent, Credits: 4}

	d := CanSend(user, testSettings(), model.TabUniversal)
	if d.Allowed {
		t.Fatal("allowed with credits below cost")
	}
	if !strings.Contains(d.Reason, "5") {
		t.Errorf("reason should name the cost: %q", d.Reason)
	}
}

func TestCanSendCooldown(t *testing.T) {
	settings := testSettings()
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		last    time.Time
		allowed bool
	}{
		{"mid cooldown", now.Add(-1 * time.Hour), false},
		{"just under boundary", now.Add(-6*time.Hour + time.Second), false},
		{"exactly at boundary", now.Add(-6 * time.Hour), true},
		{"past boundary", now.Add(-7 * time.Hour), true},
		{"never sent", time.Time{}, true},
	}

	for _, c := range cases {
		user := &model.User{Role: model.RoleStudent, Credits: 100}
		if !c.last.IsZero() {
			last := c.last
			user.LastChatTime = &last
		}

		d := CanSendAt(user, settings, model.TabUniversal, now)
		if d.Allowed != c.allowed {
			t.Errorf("%s: allowed = %v, want %v (%s)", c.name, d.Allowed, c.allowed, d.Reason)
		}
		if !d.Allowed && !strings.Contains(d.Reason, "Cooldown") {
			t.Errorf("%s: reason = %q", c.name, d.Reason)
		}
	}
}

func TestNeedsPayment(t *testing.T) {
	settings := testSettings()

	cases := []struct {
		name string
		user *model.User
		want bool
	}{
		{"student", &model.User{Role: model.RoleStudent}, true},
		{"admin", &model.User{Role: model.RoleAdmin}, false},
		{"premium", &model.User{Role: model.RoleStudent, IsPremium: true}, false},
	}
	for _, c := range cases {
		if got := NeedsPayment(c.user, settings); got != c.want {
			t.Errorf("%s: NeedsPayment = %v, want %v", c.name, got, c.want)
		}
	}

	settings.ChatCost = 0
	if NeedsPayment(&model.User{Role: model.RoleStudent}, settings) {
		t.Error("payment required in free mode")
	}
}

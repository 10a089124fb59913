package services

import (
	"fmt"
	"time"

	"github.com/nstclasses/tutor-api/model"
)

// Decision is the outcome of a send-permission check
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// CanSend decides whether a user may send a chat message right now. Pure
// function of (user, settings, target tab) with no side effects, so it is
// safe to evaluate on every request. First matching rule wins:
//
//  1. admins always may
//  2. chat-banned users never may
//  3. the broadcast stream can be disabled globally
//  4. free mode admits everyone
//  5. premium users skip credit and cooldown checks
//  6. the balance must cover the configured cost
//  7. the cooldown must have fully elapsed (allowed at exactly the boundary)
func CanSend(user *model.User, settings *model.SystemSettings, tab model.ChatTab) Decision {
	return CanSendAt(user, settings, tab, time.Now())
}

// CanSendAt is CanSend evaluated against an explicit clock
func CanSendAt(user *model.User, settings *model.SystemSettings, tab model.ChatTab, now time.Time) Decision {
	if user.IsAdmin() {
		return allow()
	}

	if user.IsChatBanned {
		return deny("You are banned from chat.")
	}

	if !settings.IsChatEnabled && tab == model.TabUniversal {
		return deny("Chat disabled by admin")
	}

	if settings.IsFreeMode() {
		return allow()
	}

	if user.IsPremium {
		return allow()
	}

	if user.Credits < settings.ChatCost {
		return deny(fmt.Sprintf("Insufficient credits (need %d)", settings.ChatCost))
	}

	if user.LastChatTime != nil {
		elapsed := now.Sub(*user.LastChatTime).Hours()
		if elapsed < settings.ChatCooldownHours {
			return deny(fmt.Sprintf("Cooldown: wait %.1f hrs", settings.ChatCooldownHours-elapsed))
		}
	}

	return allow()
}

// NeedsPayment reports whether a send by this user is chargeable under the
// given settings. Admins and premium users never pay; nobody pays in free
// mode.
func NeedsPayment(user *model.User, settings *model.SystemSettings) bool {
	return !user.IsAdmin() && !user.IsPremium && settings.ChatCost > 0
}

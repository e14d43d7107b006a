package chat

import (
	"fmt"
	"time"

	"casr-tracker/internal/models"
)

const (
	DefaultOnlineWindow = 2 * time.Minute
	DefaultAwayWindow   = 15 * time.Minute
)

// PresencePolicy turns last-seen timestamps into presence states.
type PresencePolicy struct {
	OnlineWindow time.Duration
	AwayWindow   time.Duration
}

func DefaultPolicy() PresencePolicy {
	return PresencePolicy{OnlineWindow: DefaultOnlineWindow, AwayWindow: DefaultAwayWindow}
}

// State classifies lastSeen relative to now. A zero lastSeen is offline.
func (p PresencePolicy) State(lastSeen, now time.Time) models.PresenceState {
	if lastSeen.IsZero() {
		return models.PresenceOffline
	}
	age := now.Sub(lastSeen)
	switch {
	case age <= p.OnlineWindow:
		return models.PresenceOnline
	case age <= p.AwayWindow:
		return models.PresenceAway
	}
	return models.PresenceOffline
}

// View decorates a presence record with its state and a last-seen label.
func (p PresencePolicy) View(pr models.Presence, now time.Time) models.PresenceView {
	state := p.State(pr.LastSeen, now)
	return models.PresenceView{Presence: pr, State: state, LastSeenLabel: lastSeenLabel(state, pr.LastSeen, now)}
}

func lastSeenLabel(state models.PresenceState, lastSeen, now time.Time) string {
	if state == models.PresenceOnline {
		return "online"
	}
	if lastSeen.IsZero() {
		return "never seen"
	}
	age := now.Sub(lastSeen)
	switch {
	case age < time.Hour:
		return fmt.Sprintf("last seen %d min ago", int(age.Minutes()))
	case age < 24*time.Hour:
		return fmt.Sprintf("last seen %d h ago", int(age.Hours()))
	case age < 48*time.Hour:
		return "last seen yesterday"
	}
	return "last seen " + lastSeen.Format("02 Jan 2006")
}

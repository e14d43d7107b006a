package chat

import (
	"reflect"
	"testing"
	"time"

	"casr-tracker/internal/models"
)

func TestMarkRead_Idempotent(t *testing.T) {
	m := models.ChatMessage{ID: "m1", SenderID: "ani", ReadBy: []string{"budi"}}

	once, changed := MarkRead(m, "citra")
	if !changed {
		t.Fatal("first mark reported no change")
	}
	twice, changed := MarkRead(once, "citra")
	if changed {
		t.Error("second mark reported a change")
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("state changed: %+v -> %+v", once, twice)
	}
	if len(m.ReadBy) != 1 {
		t.Errorf("input mutated: %v", m.ReadBy)
	}
}

func TestMarkRead_SenderAndEmptyUser(t *testing.T) {
	m := models.ChatMessage{ID: "m1", SenderID: "ani"}
	if _, changed := MarkRead(m, "ani"); changed {
		t.Error("sender marking own message changed it")
	}
	if _, changed := MarkRead(m, ""); changed {
		t.Error("empty user changed message")
	}
}

func TestUnread(t *testing.T) {
	msgs := []models.ChatMessage{
		{ID: "1", SenderID: "ani"},
		{ID: "2", SenderID: "budi", ReadBy: []string{"ani"}},
		{ID: "3", SenderID: "budi"},
	}
	if got := Unread(msgs, "ani"); !reflect.DeepEqual(got, []string{"3"}) {
		t.Errorf("Unread = %v, want [3]", got)
	}
}

func TestPresenceState(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	p := DefaultPolicy()
	tests := []struct {
		ago  time.Duration
		want models.PresenceState
	}{
		{0, models.PresenceOnline},
		{2 * time.Minute, models.PresenceOnline},
		{3 * time.Minute, models.PresenceAway},
		{15 * time.Minute, models.PresenceAway},
		{16 * time.Minute, models.PresenceOffline},
	}
	for _, tt := range tests {
		if got := p.State(now.Add(-tt.ago), now); got != tt.want {
			t.Errorf("State(%v ago) = %q, want %q", tt.ago, got, tt.want)
		}
	}
	if got := p.State(time.Time{}, now); got != models.PresenceOffline {
		t.Errorf("zero lastSeen = %q", got)
	}
}

func TestPresenceView_Label(t *testing.T) {
	now := time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC)
	p := DefaultPolicy()
	tests := []struct {
		lastSeen time.Time
		want     string
	}{
		{now.Add(-30 * time.Second), "online"},
		{now.Add(-20 * time.Minute), "last seen 20 min ago"},
		{now.Add(-5 * time.Hour), "last seen 5 h ago"},
		{now.Add(-30 * time.Hour), "last seen yesterday"},
		{time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC), "last seen 01 Jun 2026"},
		{time.Time{}, "never seen"},
	}
	for _, tt := range tests {
		v := p.View(models.Presence{UserID: "u", LastSeen: tt.lastSeen}, now)
		if v.LastSeenLabel != tt.want {
			t.Errorf("label(%v) = %q, want %q", tt.lastSeen, v.LastSeenLabel, tt.want)
		}
	}
}

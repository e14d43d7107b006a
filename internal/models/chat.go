package models

import "time"

type ChatMessage struct {
	RoomID    string    `json:"roomId"`
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text" validate:"required,max=4000"`
	CreatedAt time.Time `json:"createdAt"`
	ReadBy    []string  `json:"readBy"`
}

type Presence struct {
	UserID   string    `json:"userId"`
	LastSeen time.Time `json:"lastSeen"`
}

type PresenceState string

const (
	PresenceOnline  PresenceState = "online"
	PresenceAway    PresenceState = "away"
	PresenceOffline PresenceState = "offline"
)

type PresenceView struct {
	Presence
	State         PresenceState `json:"state"`
	LastSeenLabel string        `json:"lastSeenLabel"`
}

// Package chat holds the read-receipt and presence rules of the chat
// feature. Storage lives in the repositories package.
package chat

import (
	"slices"

	"casr-tracker/internal/models"
)

// IsRead reports whether userID has read m. Senders have read their own
// messages.
func IsRead(m models.ChatMessage, userID string) bool {
	return m.SenderID == userID || slices.Contains(m.ReadBy, userID)
}

// MarkRead returns m with userID in ReadBy and whether anything changed.
// Marking an already-read message leaves it untouched.
func MarkRead(m models.ChatMessage, userID string) (models.ChatMessage, bool) {
	if userID == "" || IsRead(m, userID) {
		return m, false
	}
	readBy := make([]string, len(m.ReadBy), len(m.ReadBy)+1)
	copy(readBy, m.ReadBy)
	m.ReadBy = append(readBy, userID)
	return m, true
}

// Unread lists the IDs of messages userID has not read yet, in input order.
func Unread(msgs []models.ChatMessage, userID string) []string {
	var ids []string
	for _, m := range msgs {
		if !IsRead(m, userID) {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

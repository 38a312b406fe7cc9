package models

import "time"

// Message is one chat message between two users. Messages are append-only;
// a conversation is the unordered pair {sender, receiver} and is ordered by
// timestamp ascending.
type Message struct {
	ID         string    `json:"id"`
	SenderID   string    `json:"sender_id"`
	ReceiverID string    `json:"receiver_id"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
	Read       bool      `json:"read"`
}

// InConversation reports whether the message belongs to the conversation
// between the two given users, in either direction.
func (m *Message) InConversation(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

package services

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"thesis-management-api/models"
	"thesis-management-api/storage"
)

// MessageService handles the chat collection: append-only messages between
// two users, ordered within a conversation by timestamp.
type MessageService struct {
	store *storage.Store
}

func NewMessageService(store *storage.Store) *MessageService {
	return &MessageService{store: store}
}

// Send appends one message. Text must be non-blank; the read flag starts
// unset and only the receiver may set it.
func (s *MessageService) Send(senderID, receiverID, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, validationErr("message text is required")
	}
	if receiverID == "" || receiverID == senderID {
		return nil, validationErr("a message needs a receiver other than the sender")
	}
	msg := models.Message{
		ID:         uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  time.Now().UTC(),
	}
	msgs := s.store.LoadMessages()
	if err := s.store.SaveMessages(append(msgs, msg)); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Conversation returns all messages between the two users, oldest first.
func (s *MessageService) Conversation(userID, otherID string) []models.Message {
	var out []models.Message
	for _, m := range s.store.LoadMessages() {
		if m.InConversation(userID, otherID) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// MarkRead flags every message sent by otherID to userID as read.
func (s *MessageService) MarkRead(userID, otherID string) error {
	msgs := s.store.LoadMessages()
	changed := false
	for i := range msgs {
		if msgs[i].SenderID == otherID && msgs[i].ReceiverID == userID && !msgs[i].Read {
			msgs[i].Read = true
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.store.SaveMessages(msgs)
}

// UnreadCount returns how many messages addressed to userID are unread.
func (s *MessageService) UnreadCount(userID string) int {
	n := 0
	for _, m := range s.store.LoadMessages() {
		if m.ReceiverID == userID && !m.Read {
			n++
		}
	}
	return n
}

package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.etcd.io/bbolt"

	"aromi/models"
)

const bucketConversations = "Conversations"

// ErrConversationNotFound is returned when no conversation exists for
// an ID
var ErrConversationNotFound = fmt.Errorf("conversation not found")

// ConversationStorage persists chat exchanges so conversation
// history survives restarts and clients that do not resend it
type ConversationStorage struct {
	db *bbolt.DB
}

// NewConversationStorage creates a conversation storage backed by db
func NewConversationStorage(db *bbolt.DB) *ConversationStorage {
	return &ConversationStorage{db: db}
}

// AppendExchange adds one round trip to the conversation, creating it
// if needed. An empty conversationID allocates a new one. Returns the
// conversation ID.
func (s *ConversationStorage) AppendExchange(conversationID string, exchange models.Exchange) (string, error) {
	if conversationID == "" {
		conversationID = uuid.New().String()
	}
	if exchange.At.IsZero() {
		exchange.At = time.Now()
	}

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketConversations))

		conv := models.Conversation{
			ID:        conversationID,
			CreatedAt: exchange.At,
		}
		if raw := bucket.Get([]byte(conversationID)); raw != nil {
			if err := json.Unmarshal(raw, &conv); err != nil {
				return fmt.Errorf("failed to unmarshal conversation: %w", err)
			}
		}

		conv.Exchanges = append(conv.Exchanges, exchange)
		conv.UpdatedAt = exchange.At

		data, err := json.Marshal(conv)
		if err != nil {
			return fmt.Errorf("failed to marshal conversation: %w", err)
		}
		return bucket.Put([]byte(conversationID), data)
	})
	if err != nil {
		return "", err
	}

	return conversationID, nil
}

// GetConversation retrieves a conversation by ID
func (s *ConversationStorage) GetConversation(conversationID string) (*models.Conversation, error) {
	var conv models.Conversation

	err := s.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket([]byte(bucketConversations)).Get([]byte(conversationID))
		if raw == nil {
			return ErrConversationNotFound
		}
		return json.Unmarshal(raw, &conv)
	})
	if err != nil {
		return nil, err
	}

	return &conv, nil
}

// History returns the stored wire-format history for a conversation.
// An unknown ID yields empty history, not an error: the chat endpoint
// treats absence as a fresh conversation.
func (s *ConversationStorage) History(conversationID string) []models.ChatMessage {
	if conversationID == "" {
		return nil
	}

	conv, err := s.GetConversation(conversationID)
	if err != nil {
		return nil
	}
	return conv.History()
}

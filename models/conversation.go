package models

import "time"

// Exchange is one stored user/assistant round trip
type Exchange struct {
	UserMessage string       `json:"user_message"`
	Reply       string       `json:"reply"`
	Data        WellnessData `json:"data"`
	At          time.Time    `json:"at"`
}

// Conversation is the persisted log of a chat session
type Conversation struct {
	ID        string     `json:"id"`
	Exchanges []Exchange `json:"exchanges"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// History converts the stored exchanges back into wire messages,
// newest last
func (c *Conversation) History() []ChatMessage {
	history := make([]ChatMessage, 0, len(c.Exchanges)*2)
	for _, ex := range c.Exchanges {
		history = append(history,
			ChatMessage{Role: "user", Content: ex.UserMessage},
			ChatMessage{Role: "assistant", Content: ex.Reply},
		)
	}
	return history
}

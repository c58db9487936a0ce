package models

// ChatMessage is a single turn in a conversation, in the
// chat-completions wire shape
type ChatMessage struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload the dashboard posts to /api/chat
type ChatRequest struct {
	Message             string        `json:"message"`
	ConversationID      string        `json:"conversation_id,omitempty"`
	ConversationHistory []ChatMessage `json:"conversation_history,omitempty"`
}

// WellnessData holds the metrics the assistant extracts from a user
// message. Fields the model cannot infer stay empty.
type WellnessData struct {
	Goal        string `json:"goal"`
	Diet        string `json:"diet"`
	Time        string `json:"time"`
	Energy      string `json:"energy"`
	Consistency string `json:"consistency"`
	Insights    string `json:"insights"`
}

// ChatResponse is the structured reply returned to the dashboard
type ChatResponse struct {
	Reply          string       `json:"reply"`
	Data           WellnessData `json:"data"`
	ConversationID string       `json:"conversation_id,omitempty"`
}

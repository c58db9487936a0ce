package api

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"aromi/models"
	"aromi/storage"
	"aromi/utils"
)

// systemPrompt enforces the strict JSON contract the dashboard relies
// on for its wellness metric cards
const systemPrompt = `You are AroMi, a health and wellness AI assistant. Your task is to analyze user messages about their health and wellness and respond in a specific JSON format.

RULES:
1. ALWAYS respond with VALID JSON only - no other text, no markdown
2. Extract health/wellness metrics from user's message
3. For missing information, use empty string ""
4. Keep conversational replies friendly, motivational, and supportive
5. Never provide medical diagnosis - encourage professional consultation

RESPONSE FORMAT (JSON only):
{
  "reply": "Your friendly conversational reply here",
  "data": {
    "goal": "e.g., 'Weight management' or 'Better sleep'",
    "diet": "e.g., 'Balanced' or 'Needs improvement'",
    "time": "e.g., 'Morning person' or 'Night owl'",
    "energy": "e.g., 'High', 'Medium', 'Low'",
    "consistency": "e.g., 'Regular', 'Intermittent', 'Starting'",
    "insights": "One actionable insight based on conversation"
  }
}

EXAMPLES:
User: "I slept for 7 hours last night and ate a healthy breakfast"
Response: {"reply": "Great job on the 7 hours of sleep and healthy breakfast! Consistency with sleep and nutrition is key for energy levels throughout the day.", "data": {"goal": "", "diet": "Healthy", "time": "Morning routine", "energy": "Medium", "consistency": "Regular", "insights": "Maintain consistent sleep schedule"}}

User: "I want to lose 5kg in the next month"
Response: {"reply": "That's an achievable goal! Remember that sustainable weight loss is about 0.5-1kg per week. Let's focus on balanced nutrition and regular exercise.", "data": {"goal": "Lose 5kg", "diet": "Needs planning", "time": "", "energy": "", "consistency": "Starting", "insights": "Combine cardio and strength training 3-4x weekly"}}

User: "I feel tired all the time"
Response: {"reply": "I'm sorry to hear you're feeling tired. Let's explore some factors - how's your sleep quality, hydration, and stress levels been recently?", "data": {"goal": "Increase energy", "diet": "", "time": "", "energy": "Low", "consistency": "", "insights": "Review sleep patterns and hydration"}}

IMPORTANT: Response must be parseable JSON. No extra text before or after.`

var (
	errNotJSON  = errors.New("assistant reply is not valid JSON")
	errBadShape = errors.New("assistant reply is missing reply or data")
)

// ChatHandler proxies dashboard chat messages to the AI backend
type ChatHandler struct {
	completer     Completer
	configured    bool
	maxHistory    int
	conversations *storage.ConversationStorage
	notifier      *NotificationHandler
}

// NewChatHandler creates a chat handler. completer may be backed by a
// GroqClient; configured is false when no API key is available.
func NewChatHandler(completer Completer, configured bool, maxHistory int,
	conversations *storage.ConversationStorage, notifier *NotificationHandler) *ChatHandler {
	if maxHistory <= 0 {
		maxHistory = 5
	}
	return &ChatHandler{
		completer:     completer,
		configured:    configured,
		maxHistory:    maxHistory,
		conversations: conversations,
		notifier:      notifier,
	}
}

// HandleChat processes a chat message and returns the assistant reply
// with extracted wellness metrics
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid chat request body", err)
	}
	if req.Message == "" {
		return utils.BadRequestError("Message is required", nil)
	}

	if !h.configured {
		return utils.InternalServerError("Groq API key not configured", nil)
	}

	content, err := h.completer.Complete(h.buildMessages(&req))
	if err != nil {
		return err
	}

	reply, data, err := decodeAssistantReply(content)
	switch {
	case errors.Is(err, errNotJSON):
		utils.Log.Error("Failed to parse assistant reply as JSON: %s", utils.Excerpt(content, 120))
		reply, data = fallbackReply()
	case errors.Is(err, errBadShape):
		utils.Log.Error("Invalid assistant response structure: %s", utils.Excerpt(content, 120))
		return utils.InternalServerError("AI returned invalid response format", err)
	}

	reply = utils.SanitizeReply(reply)

	conversationID := h.recordExchange(req, reply, data)

	if h.notifier != nil {
		h.notifier.NotifyChatReply(conversationID, utils.Excerpt(utils.HTMLToText(reply), 80))
	}

	utils.Log.Info("Processed chat request: %s", utils.Excerpt(req.Message, 50))

	return c.JSON(models.ChatResponse{
		Reply:          reply,
		Data:           data,
		ConversationID: conversationID,
	})
}

// buildMessages assembles the prompt: system prompt first, then
// bounded history, then the current message. History sent by the
// client wins over the stored one.
func (h *ChatHandler) buildMessages(req *models.ChatRequest) []models.ChatMessage {
	history := req.ConversationHistory
	if len(history) == 0 && h.conversations != nil {
		history = h.conversations.History(req.ConversationID)
	}

	// Keep only the most recent messages to stay inside token limits.
	if len(history) > h.maxHistory {
		history = history[len(history)-h.maxHistory:]
	}

	messages := make([]models.ChatMessage, 0, len(history)+2)
	messages = append(messages, models.ChatMessage{Role: "system", Content: systemPrompt})
	messages = append(messages, history...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: req.Message})

	return messages
}

func (h *ChatHandler) recordExchange(req models.ChatRequest, reply string, data models.WellnessData) string {
	if h.conversations == nil {
		return req.ConversationID
	}

	conversationID, err := h.conversations.AppendExchange(req.ConversationID, models.Exchange{
		UserMessage: req.Message,
		Reply:       reply,
		Data:        data,
	})
	if err != nil {
		utils.Log.Warn("Failed to store chat exchange: %v", err)
		return req.ConversationID
	}
	return conversationID
}

// assistantPayload mirrors the JSON contract of the system prompt.
// Pointers distinguish a missing key from an empty value.
type assistantPayload struct {
	Reply *string              `json:"reply"`
	Data  *models.WellnessData `json:"data"`
}

// decodeAssistantReply validates and unpacks the assistant content.
// Unparseable JSON and a parseable-but-wrong shape are different
// failures: the first gets a canned fallback, the second is a hard
// error.
func decodeAssistantReply(content string) (string, models.WellnessData, error) {
	var payload assistantPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return "", models.WellnessData{}, errNotJSON
	}

	if payload.Reply == nil || payload.Data == nil {
		return "", models.WellnessData{}, errBadShape
	}

	return *payload.Reply, *payload.Data, nil
}

// fallbackReply is returned when the model ignores the JSON contract
func fallbackReply() (string, models.WellnessData) {
	return "I understand your message about health and wellness. Let me help you track your progress!",
		models.WellnessData{
			Insights: "Start tracking daily habits for better insights",
		}
}

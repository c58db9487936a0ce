package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"aromi/config"
	"aromi/models"
	"aromi/utils"
)

// Completer produces an assistant reply for a message sequence.
// Satisfied by GroqClient; tests substitute a stub.
type Completer interface {
	Complete(messages []models.ChatMessage) (string, error)
}

// GroqClient calls a Groq-compatible chat-completions endpoint
type GroqClient struct {
	apiURL  string
	apiKey  string
	model   string
	timeout time.Duration
	client  *fasthttp.Client
}

// NewGroqClient creates a client from the AI configuration
func NewGroqClient(cfg config.AIConfig) *GroqClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &GroqClient{
		apiURL:  cfg.APIURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: timeout,
		client:  &fasthttp.Client{},
	}
}

type completionRequest struct {
	Model          string               `json:"model"`
	Messages       []models.ChatMessage `json:"messages"`
	Temperature    float64              `json:"temperature"`
	MaxTokens      int                  `json:"max_tokens"`
	ResponseFormat responseFormat       `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends the message sequence to the model and returns the
// raw assistant content
func (g *GroqClient) Complete(messages []models.ChatMessage) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:          g.model,
		Messages:       messages,
		Temperature:    0.7,
		MaxTokens:      500,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", utils.InternalServerError("Failed to encode completion request", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(g.apiURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.SetBody(body)

	utils.Log.Debug("Sending completion request with model %s (%d messages)", g.model, len(messages))

	if err := g.client.DoTimeout(req, resp, g.timeout); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) {
			return "", utils.UpstreamError(fasthttp.StatusGatewayTimeout, "AI service timeout", err)
		}
		return "", utils.UpstreamError(fasthttp.StatusServiceUnavailable, "Service temporarily unavailable", err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		utils.Log.Error("AI backend error: %d - %s", resp.StatusCode(), resp.Body())
		return "", utils.UpstreamError(resp.StatusCode(),
			fmt.Sprintf("AI backend error: %s", resp.Body()), nil)
	}

	var completion completionResponse
	if err := json.Unmarshal(resp.Body(), &completion); err != nil {
		return "", utils.UpstreamError(fasthttp.StatusBadGateway, "Invalid AI backend response", err)
	}
	if len(completion.Choices) == 0 {
		return "", utils.UpstreamError(fasthttp.StatusBadGateway, "AI backend returned no choices", nil)
	}

	return completion.Choices[0].Message.Content, nil
}

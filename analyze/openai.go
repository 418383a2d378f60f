package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mseshachalam/vector/app"
)

const openAIChatURL = "https://api.openai.com/v1/chat/completions"

// OpenAI generates through the chat completions API.
type OpenAI struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewOpenAI returns a generator authenticating with apiKey.
func NewOpenAI(apiKey, model string, hc *http.Client) *OpenAI {
	if hc == nil {
		hc = &http.Client{Timeout: 2 * time.Minute}
	}
	return &OpenAI{APIKey: apiKey, Model: model, BaseURL: openAIChatURL, HTTPClient: hc}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model    string          `json:"model"`
	Messages []openAIMessage `json:"messages"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Generate produces a fresh report for the story.
func (o *OpenAI) Generate(ctx context.Context, story *app.Story, article string, comments []*app.Comment) (string, app.Usage, error) {
	msgs := []openAIMessage{{Role: "user", Content: reportPrompt(story, article, comments)}}
	text, usage, err := o.chat(ctx, msgs)
	usage.Op = OpReport
	return text, usage, err
}

// Chat answers a follow-up question with the bundle's transcript as history.
func (o *OpenAI) Chat(ctx context.Context, b *app.ReportBundle, question string) (string, app.Usage, error) {
	msgs := make([]openAIMessage, 0, len(b.Chat)+1)
	for _, turn := range b.Chat {
		msgs = append(msgs, openAIMessage{Role: turn.Role, Content: turn.Message})
	}
	msgs = append(msgs, openAIMessage{Role: "user", Content: chatPrompt(b, question)})
	text, usage, err := o.chat(ctx, msgs)
	usage.Op = OpChat
	return text, usage, err
}

func (o *OpenAI) chat(ctx context.Context, msgs []openAIMessage) (string, app.Usage, error) {
	body, err := json.Marshal(openAIRequest{Model: o.Model, Messages: msgs})
	if err != nil {
		return "", app.Usage{Model: o.Model}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL, bytes.NewReader(body))
	if err != nil {
		return "", app.Usage{Model: o.Model}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.APIKey)

	start := time.Now()
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return "", app.Usage{Model: o.Model}, fmt.Errorf("analyze: openai chat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", app.Usage{Model: o.Model}, fmt.Errorf("analyze: openai chat: status %d", resp.StatusCode)
	}

	var out openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", app.Usage{Model: o.Model}, fmt.Errorf("analyze: decode openai response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", app.Usage{Model: o.Model}, fmt.Errorf("analyze: openai chat: no choices")
	}

	usage := app.Usage{
		Model:        o.Model,
		InputTokens:  out.Usage.PromptTokens,
		OutputTokens: out.Usage.CompletionTokens,
		Duration:     time.Since(start),
	}
	return out.Choices[0].Message.Content, usage, nil
}

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

// Ollama generates through a local ollama server.
type Ollama struct {
	Host       string
	Model      string
	HTTPClient *http.Client
}

// NewOllama returns a generator against host, e.g. http://localhost:11434.
func NewOllama(host, model string, hc *http.Client) *Ollama {
	if hc == nil {
		hc = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Ollama{Host: host, Model: model, HTTPClient: hc}
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
}

type ollamaChatResponse struct {
	Message         ollamaMessage `json:"message"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	// TotalDuration is in nanoseconds.
	TotalDuration int64 `json:"total_duration"`
}

// Generate produces a fresh report for the story.
func (o *Ollama) Generate(ctx context.Context, story *app.Story, article string, comments []*app.Comment) (string, app.Usage, error) {
	msgs := []ollamaMessage{{Role: "user", Content: reportPrompt(story, article, comments)}}
	text, usage, err := o.chat(ctx, msgs)
	usage.Op = OpReport
	return text, usage, err
}

// Chat answers a follow-up question with the bundle's transcript as history.
func (o *Ollama) Chat(ctx context.Context, b *app.ReportBundle, question string) (string, app.Usage, error) {
	msgs := make([]ollamaMessage, 0, len(b.Chat)+1)
	for _, turn := range b.Chat {
		msgs = append(msgs, ollamaMessage{Role: turn.Role, Content: turn.Message})
	}
	msgs = append(msgs, ollamaMessage{Role: "user", Content: chatPrompt(b, question)})
	text, usage, err := o.chat(ctx, msgs)
	usage.Op = OpChat
	return text, usage, err
}

func (o *Ollama) chat(ctx context.Context, msgs []ollamaMessage) (string, app.Usage, error) {
	body, err := json.Marshal(ollamaChatRequest{Model: o.Model, Messages: msgs})
	if err != nil {
		return "", app.Usage{Model: o.Model}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.Host+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", app.Usage{Model: o.Model}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return "", app.Usage{Model: o.Model}, fmt.Errorf("analyze: ollama chat: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", app.Usage{Model: o.Model}, fmt.Errorf("analyze: ollama chat: status %d", resp.StatusCode)
	}

	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", app.Usage{Model: o.Model}, fmt.Errorf("analyze: decode ollama response: %w", err)
	}

	usage := app.Usage{
		Model:        o.Model,
		InputTokens:  out.PromptEvalCount,
		OutputTokens: out.EvalCount,
		Duration:     time.Duration(out.TotalDuration),
	}
	return out.Message.Content, usage, nil
}

// CheckModel reports whether the configured model is pulled on the server.
func (o *Ollama) CheckModel(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.Host+"/api/tags", nil)
	if err != nil {
		return false, err
	}
	resp, err := o.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("analyze: ollama tags: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("analyze: ollama tags: status %d", resp.StatusCode)
	}

	var out struct {
		Models []struct {
			Name  string `json:"name"`
			Model string `json:"model"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, err
	}
	for _, m := range out.Models {
		if m.Name == o.Model || m.Model == o.Model {
			return true, nil
		}
	}
	return false, nil
}

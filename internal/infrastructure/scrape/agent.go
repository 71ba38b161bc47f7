package scrape

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"scraperd/internal/domain"
	"scraperd/internal/ports"
)

const (
	agentInstruction = "List me all the articles with their title, URL, and description."

	agentSystemPrompt = "You are a web extraction agent. Visit the source URL the user names and " +
		"answer with a single JSON object of the form " +
		`{"content": [{"title": "...", "url": "...", "description": "..."}]}. ` +
		"Include only articles actually present on the page; omit fields you cannot find."
)

// AgentExtractor delegates extraction to an LLM agent: one natural-language
// instruction plus the target locator, a structured list back. The result
// shape is probabilistic; everything unexpected is logged and skipped.
type AgentExtractor struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.Extractor = (*AgentExtractor)(nil)

// NewAgentExtractor builds the agent client from the configured credential.
func NewAgentExtractor(apiKey, model string, timeout time.Duration, logger *slog.Logger) *AgentExtractor {
	return &AgentExtractor{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Name identifies the strategy inside the registry.
func (e *AgentExtractor) Name() string {
	return "agent"
}

// Extract asks the agent for the article list on the locator page.
func (e *AgentExtractor) Extract(ctx context.Context, locator string) ([]domain.Candidate, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: agentSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: agentInstruction + "\nSource: " + locator},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("extraction agent: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("extraction agent returned no choices")
	}

	return e.parseResult([]byte(resp.Choices[0].Message.Content)), nil
}

// parseResult decodes the agent's answer. The expected shape is an object
// with a "content" list of items; a non-list content or a non-object item
// is a logged type mismatch, never a failure.
func (e *AgentExtractor) parseResult(raw []byte) []domain.Candidate {
	var result struct {
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		e.logger.Error("agent result is not valid JSON", "error", err)
		return nil
	}
	if len(result.Content) == 0 {
		e.logger.Info("no items found in agent result")
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(result.Content, &items); err != nil {
		e.logger.Error("agent result content is not a list", "content", truncate(string(result.Content), 200))
		return nil
	}

	candidates := make([]domain.Candidate, 0, len(items))
	for _, rawItem := range items {
		var item struct {
			Title       *string `json:"title"`
			URL         *string `json:"url"`
			Description *string `json:"description"`
		}
		if err := json.Unmarshal(rawItem, &item); err != nil {
			e.logger.Warn("expected an object in agent result", "item", truncate(string(rawItem), 200))
			continue
		}
		candidates = append(candidates, domain.Candidate{
			Title:       item.Title,
			URL:         item.URL,
			Description: item.Description,
		})
	}
	return candidates
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

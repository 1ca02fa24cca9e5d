// Package ai provides the free-form conversation fallback for messages that
// are not scheduling requests. Each user gets a rolling conversation history
// so the model keeps context across turns; idle conversations are evicted.
package ai

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are Remo, a friendly personal assistant who helps " +
	"people schedule meetings over chat. When the conversation drifts away " +
	"from scheduling, chat naturally and keep replies short, warm, and " +
	"helpful. If the user seems to want a meeting scheduled, suggest they " +
	"say something like \"schedule a meeting tomorrow at 2pm\"."

const (
	defaultModel       = openai.GPT4oMini
	historyLimit       = 20
	conversationMaxAge = time.Hour
	sweepInterval      = 10 * time.Minute
)

type conversation struct {
	messages []openai.ChatCompletionMessage
	lastUsed time.Time
}

// Chat answers non-scheduling messages through the OpenAI chat API.
type Chat struct {
	client *openai.Client
	model  string

	mu            sync.Mutex
	conversations map[string]*conversation

	now func() time.Time
}

// Option configures a Chat.
type Option func(*Chat)

// WithModel overrides the chat model.
func WithModel(model string) Option {
	return func(c *Chat) {
		if model != "" {
			c.model = model
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Chat) { c.now = now }
}

// New creates a Chat backed by the given API key.
func New(apiKey string, opts ...Option) *Chat {
	c := &Chat{
		client:        openai.NewClient(apiKey),
		model:         defaultModel,
		conversations: make(map[string]*conversation),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reply sends the user's message with their conversation history and returns
// the model's answer. The exchange is appended to the history on success.
func (c *Chat) Reply(ctx context.Context, userID, text string) (string, error) {
	history := c.history(userID)

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	messages = append(messages, history...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	answer := resp.Choices[0].Message.Content

	c.remember(userID, text, answer)
	return answer, nil
}

func (c *Chat) history(userID string) []openai.ChatCompletionMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	conv, ok := c.conversations[userID]
	if !ok {
		return nil
	}
	out := make([]openai.ChatCompletionMessage, len(conv.messages))
	copy(out, conv.messages)
	return out
}

func (c *Chat) remember(userID, question, answer string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	conv, ok := c.conversations[userID]
	if !ok {
		conv = &conversation{}
		c.conversations[userID] = conv
	}
	conv.messages = append(conv.messages,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: question},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: answer},
	)
	if len(conv.messages) > historyLimit {
		conv.messages = conv.messages[len(conv.messages)-historyLimit:]
	}
	conv.lastUsed = c.now()
}

// Forget drops the user's conversation history.
func (c *Chat) Forget(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.conversations, userID)
}

// RunEviction sweeps idle conversations until the context is cancelled.
func (c *Chat) RunEviction(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.evictIdle()
		}
	}
}

func (c *Chat) evictIdle() {
	cutoff := c.now().Add(-conversationMaxAge)

	c.mu.Lock()
	defer c.mu.Unlock()
	for userID, conv := range c.conversations {
		if conv.lastUsed.Before(cutoff) {
			delete(c.conversations, userID)
			slog.Debug("evicted idle conversation", "user_id", userID)
		}
	}
}

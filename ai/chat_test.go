package ai

import (
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChat(now *time.Time) *Chat {
	return New("test-key", WithClock(func() time.Time { return *now }))
}

func TestRememberAndHistory(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)
	c := newTestChat(&now)

	c.remember("1", "hello", "hi there")
	c.remember("1", "how are you", "great")

	history := c.history("1")
	require.Len(t, history, 4)
	assert.Equal(t, openai.ChatMessageRoleUser, history[0].Role)
	assert.Equal(t, "hello", history[0].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, history[3].Role)
	assert.Equal(t, "great", history[3].Content)

	assert.Empty(t, c.history("2"))
}

func TestHistoryTrimmed(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)
	c := newTestChat(&now)

	for i := 0; i < historyLimit; i++ {
		c.remember("1", "question", "answer")
	}

	history := c.history("1")
	assert.Len(t, history, historyLimit)
}

func TestForget(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)
	c := newTestChat(&now)

	c.remember("1", "hello", "hi")
	c.Forget("1")
	assert.Empty(t, c.history("1"))
}

func TestEvictIdle(t *testing.T) {
	now := time.Date(2026, time.August, 26, 10, 0, 0, 0, time.UTC)
	c := newTestChat(&now)

	c.remember("stale", "hello", "hi")

	now = now.Add(30 * time.Minute)
	c.remember("fresh", "hello", "hi")

	now = now.Add(45 * time.Minute)
	c.evictIdle()

	assert.Empty(t, c.history("stale"))
	assert.NotEmpty(t, c.history("fresh"))
}

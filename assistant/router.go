// Package assistant routes inbound chat messages: bot commands, the
// scheduling dialogue, meeting listings, and the free-form chat fallback.
package assistant

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/remohq/remo/assistant/intent"
	"github.com/remohq/remo/calendar"
	"github.com/remohq/remo/chat"
	"github.com/remohq/remo/chat/metrics"
)

const greeting = "👋 Hi! I'm Remo, your personal scheduling assistant.\n\n" +
	"I can help you schedule meetings and manage your calendar. Just tell me " +
	"things like:\n\n" +
	"• \"Schedule a meeting with alice@example.com tomorrow at 2pm\"\n" +
	"• \"Show me my meetings for next week\"\n\n" +
	"You can also just chat with me about anything else!"

const rateLimitedReply = "You're sending messages too quickly. Give me a second to catch up!"

const chatErrorReply = "I'm having trouble thinking right now. Could you try again in a moment?"

// Dialogue is the scheduling state machine the router defers to whenever the
// user has a session in progress.
type Dialogue interface {
	HasSession(userID string) bool
	HandleMessage(ctx context.Context, userID, text string) string
}

// Authorizer manages Google Calendar credentials.
type Authorizer interface {
	HasCredential(userID string) bool
	StartAuth(userID string) string
	Commit(userID string, permanent bool) error
}

// Lister reads back scheduled meetings.
type Lister interface {
	ListEvents(ctx context.Context, ownerID string, start, end time.Time) []*calendar.Event
}

// Chatter answers messages that are not scheduling requests.
type Chatter interface {
	Reply(ctx context.Context, userID, text string) (string, error)
}

// Router implements chat.Handler.
type Router struct {
	dialogue Dialogue
	auth     Authorizer
	lister   Lister
	chatter  Chatter
	metrics  *metrics.Metrics

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	now func() time.Time
}

// Option configures a Router.
type Option func(*Router)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Router) { r.now = now }
}

// New creates a Router. chatter and m may be nil; without a chatter,
// non-scheduling messages get the greeting instead of a conversation.
func New(dialogue Dialogue, auth Authorizer, lister Lister, chatter Chatter, m *metrics.Metrics, opts ...Option) *Router {
	r := &Router{
		dialogue: dialogue,
		auth:     auth,
		lister:   lister,
		chatter:  chatter,
		metrics:  m,
		limiters: make(map[string]*rate.Limiter),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// limiter returns the per-user rate limiter, creating it on first contact.
// One message per second with a burst of three absorbs normal typing while
// shedding flood traffic before it reaches the extractors or the LLM.
func (r *Router) limiter(userID string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	lim, ok := r.limiters[userID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Second), 3)
		r.limiters[userID] = lim
	}
	return lim
}

// HandleMessage routes one inbound message and returns the reply.
func (r *Router) HandleMessage(ctx context.Context, msg *chat.IncomingMessage) (*chat.OutgoingMessage, error) {
	started := r.now()

	if !r.limiter(msg.UserID).Allow() {
		r.record(metrics.RouteDialogue, metrics.StatusLimited, started)
		slog.Warn("message rate limited", "user_id", msg.UserID)
		return r.reply(msg, rateLimitedReply), nil
	}

	route, status := metrics.RouteChat, metrics.StatusOK
	text := strings.TrimSpace(msg.Text)

	var response string
	switch {
	case text == "/start":
		route = metrics.RouteCommand
		response = greeting

	case text == "/auth" || strings.HasPrefix(text, "/auth "):
		route = metrics.RouteAuth
		response = "Authorize me to access your Google Calendar here:\n" + r.auth.StartAuth(msg.UserID)

	case r.dialogue.HasSession(msg.UserID):
		route = metrics.RouteDialogue
		response = r.dialogue.HandleMessage(ctx, msg.UserID, text)

	case intent.IsSchedulingRequest(text):
		if intent.DetermineAction(text) == intent.ActionList {
			route = metrics.RouteList
			response = r.handleList(ctx, msg.UserID, text)
		} else {
			route = metrics.RouteDialogue
			response = r.dialogue.HandleMessage(ctx, msg.UserID, text)
		}

	default:
		response, status = r.handleChat(ctx, msg.UserID, text)
	}

	r.record(route, status, started)
	slog.Debug("message routed", "user_id", msg.UserID, "route", route, "status", status)
	return r.reply(msg, response), nil
}

func (r *Router) handleChat(ctx context.Context, userID, text string) (string, string) {
	if r.chatter == nil {
		return greeting, metrics.StatusOK
	}
	response, err := r.chatter.Reply(ctx, userID, text)
	if err != nil {
		slog.Error("chat fallback failed", "user_id", userID, "error", err)
		return chatErrorReply, metrics.StatusError
	}
	return response, metrics.StatusOK
}

// HandleCallback processes inline-keyboard presses. The only callbacks the
// bot issues are the authorization persistence choices.
func (r *Router) HandleCallback(ctx context.Context, cb *chat.Callback) (*chat.OutgoingMessage, error) {
	started := r.now()

	var permanent bool
	switch {
	case strings.HasPrefix(cb.Data, "auth_perm_"):
		permanent = true
	case strings.HasPrefix(cb.Data, "auth_temp_"):
		permanent = false
	default:
		slog.Warn("unknown callback data", "user_id", cb.UserID, "data", cb.Data)
		return nil, nil
	}

	text := "✅ Authorization successful! You'll need to reauthorize in your next session."
	if permanent {
		text = "✅ Authorization successful! Your access will be remembered for future sessions."
	}

	status := metrics.StatusOK
	if err := r.auth.Commit(cb.UserID, permanent); err != nil {
		slog.Error("authorization commit failed", "user_id", cb.UserID, "error", err)
		text = "❌ Authorization failed: No tokens found. Please try authorizing again."
		status = metrics.StatusError
	}
	r.record(metrics.RouteAuth, status, started)

	return &chat.OutgoingMessage{
		ChatID:        cb.ChatID,
		Text:          text,
		EditMessageID: cb.MessageID,
	}, nil
}

func (r *Router) reply(msg *chat.IncomingMessage, text string) *chat.OutgoingMessage {
	if text == "" {
		return nil
	}
	return &chat.OutgoingMessage{ChatID: msg.ChatID, Text: text}
}

func (r *Router) record(route, status string, started time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RecordMessage(route, status, r.now().Sub(started))
}

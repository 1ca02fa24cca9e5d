// Package chat defines the platform-neutral message model between the chat
// transport and the assistant.
package chat

import (
	"context"
	"time"
)

// IncomingMessage is a text message from a chat platform.
type IncomingMessage struct {
	UserID    string // stable per-user identifier
	ChatID    string // destination for replies
	Username  string
	Text      string
	Timestamp time.Time
}

// Button is one inline keyboard choice attached to an outgoing message.
type Button struct {
	Text string
	Data string // opaque callback payload
}

// OutgoingMessage is a reply to send to a chat platform. When EditMessageID
// is set the message replaces an earlier one instead of appending.
type OutgoingMessage struct {
	ChatID        string
	Text          string
	Buttons       []Button // rendered as a single inline keyboard row
	EditMessageID int
}

// Callback is a button press on a previously sent inline keyboard.
type Callback struct {
	UserID    string
	ChatID    string
	MessageID int
	Data      string
}

// Handler consumes inbound traffic from a channel. Implemented by the
// assistant router.
type Handler interface {
	// HandleMessage processes one text message and returns the reply, or nil
	// when there is nothing to say.
	HandleMessage(ctx context.Context, msg *IncomingMessage) (*OutgoingMessage, error)

	// HandleCallback processes an inline keyboard press.
	HandleCallback(ctx context.Context, cb *Callback) (*OutgoingMessage, error)
}

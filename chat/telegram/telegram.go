// Package telegram implements the Telegram transport: a long-polling update
// loop that feeds inbound messages to the assistant and sends its replies.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/remohq/remo/chat"
)

const pollTimeoutSeconds = 30

// Bot wraps the Telegram Bot API connection.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler chat.Handler
}

// New connects to the Telegram Bot API.
func New(token string, handler chat.Handler) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	slog.Info("telegram bot connected", "username", api.Self.UserName)
	return &Bot{api: api, handler: handler}, nil
}

// Run long-polls for updates until the context is cancelled. Each update is
// handled in its own goroutine; Telegram delivers one user's messages in
// order, but distinct users proceed concurrently.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = pollTimeoutSeconds
	updates := b.api.GetUpdatesChan(cfg)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallbackQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Text != "":
		b.handleTextMessage(ctx, update.Message)
	}
}

func (b *Bot) handleTextMessage(ctx context.Context, tgMsg *tgbotapi.Message) {
	if tgMsg.From == nil {
		slog.Warn("telegram: message without sender, dropping")
		return
	}

	msg := &chat.IncomingMessage{
		UserID:    strconv.FormatInt(tgMsg.From.ID, 10),
		ChatID:    strconv.FormatInt(tgMsg.Chat.ID, 10),
		Username:  tgMsg.From.UserName,
		Text:      tgMsg.Text,
		Timestamp: tgMsg.Time(),
	}

	reply, err := b.handler.HandleMessage(ctx, msg)
	if err != nil {
		slog.Error("telegram: message handling failed", "user_id", msg.UserID, "error", err)
		reply = &chat.OutgoingMessage{
			ChatID: msg.ChatID,
			Text:   "I encountered an error. Please try again.",
		}
	}
	if reply == nil || reply.Text == "" {
		return
	}
	if err := b.SendMessage(ctx, reply); err != nil {
		slog.Error("telegram: failed to send reply", "chat_id", reply.ChatID, "error", err)
	}
}

func (b *Bot) handleCallbackQuery(ctx context.Context, query *tgbotapi.CallbackQuery) {
	cb := &chat.Callback{
		UserID: strconv.FormatInt(query.From.ID, 10),
		Data:   query.Data,
	}
	if query.Message != nil {
		cb.ChatID = strconv.FormatInt(query.Message.Chat.ID, 10)
		cb.MessageID = query.Message.MessageID
	}

	// Acknowledge the press so the client stops its spinner.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		slog.Warn("telegram: failed to answer callback query", "error", err)
	}

	reply, err := b.handler.HandleCallback(ctx, cb)
	if err != nil {
		slog.Error("telegram: callback handling failed", "user_id", cb.UserID, "error", err)
		return
	}
	if reply == nil || reply.Text == "" {
		return
	}
	if err := b.SendMessage(ctx, reply); err != nil {
		slog.Error("telegram: failed to send callback reply", "chat_id", reply.ChatID, "error", err)
	}
}

// SendMessage delivers one outgoing message, as a new message or an edit.
func (b *Bot) SendMessage(_ context.Context, msg *chat.OutgoingMessage) error {
	chatID, err := strconv.ParseInt(msg.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID: %w", err)
	}

	if msg.EditMessageID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, msg.EditMessageID, msg.Text)
		// Editing also clears any inline keyboard on the original message.
		_, err = b.api.Send(edit)
		return err
	}

	tgMsg := tgbotapi.NewMessage(chatID, msg.Text)
	if len(msg.Buttons) > 0 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(msg.Buttons))
		for _, btn := range msg.Buttons {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		tgMsg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	}
	_, err = b.api.Send(tgMsg)
	return err
}

// NotifyAuthChoice asks the user how to keep a freshly granted authorization.
// Called by the OAuth callback server after a successful code exchange.
func (b *Bot) NotifyAuthChoice(ctx context.Context, userID string) error {
	return b.SendMessage(ctx, &chat.OutgoingMessage{
		// For direct chats the Telegram chat ID equals the user ID.
		ChatID: userID,
		Text: "🔐 Authorization successful!\n\n" +
			"How would you like to handle authorization?\n\n" +
			"1️⃣ Allow for this session only (You'll need to reauthorize next time)\n" +
			"2️⃣ Always allow (Your access will be remembered)",
		Buttons: []chat.Button{
			{Text: "This session only", Data: "auth_temp_" + userID},
			{Text: "Always allow", Data: "auth_perm_" + userID},
		},
	})
}

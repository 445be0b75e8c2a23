package middleware

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const panicReply = "❌ Something went wrong. Send /new to start a fresh session."

// Recover returns middleware that logs a handler panic, drops the chat's
// session through reset and tells the chat. reset may be nil.
func Recover(reset func(chatID int64)) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				chatID := updateChatID(update)
				slog.Error("panic recovered in handler",
					"update_id", update.ID,
					"chat_id", chatID,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				if chatID == 0 {
					return
				}
				if reset != nil {
					reset(chatID)
				}
				b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: panicReply})
			}()
			next(ctx, b, update)
		}
	}
}

func updateChatID(update *models.Update) int64 {
	switch {
	case update.Message != nil:
		return update.Message.Chat.ID
	case update.CallbackQuery != nil:
		return callbackChatID(update.CallbackQuery)
	}
	return 0
}

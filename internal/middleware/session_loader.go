package middleware

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ElarizT/Mavericks/internal/service"
)

type ctxKey string

const SessionKey ctxKey = "session"

// SessionProvider returns the chat session of a Telegram chat, starting one
// on first contact.
type SessionProvider interface {
	Session(ctx context.Context, b *bot.Bot, chatID int64) (*service.SessionController, error)
}

// GetSession extracts the chat session from context.
func GetSession(ctx context.Context) *service.SessionController {
	s, ok := ctx.Value(SessionKey).(*service.SessionController)
	if !ok {
		return nil
	}
	return s
}

// SessionLoader returns middleware that puts the chat's session into context.
// A session whose start failed is still passed on so handlers can report its
// state. /new starts its own session and is passed through untouched.
func SessionLoader(sessions SessionProvider) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			chatID := updateChatID(update)
			if chatID == 0 || (update.Message != nil && isCommand(update.Message.Text, "new")) {
				next(ctx, b, update)
				return
			}

			sess, err := sessions.Session(ctx, b, chatID)
			if err != nil {
				slog.Error("start chat session", "chat_id", chatID, "error", err)
			}
			if sess != nil {
				ctx = context.WithValue(ctx, SessionKey, sess)
			}
			next(ctx, b, update)
		}
	}
}

// isCommand reports whether text invokes /name, with or without a bot
// mention or arguments.
func isCommand(text, name string) bool {
	word, _, _ := strings.Cut(text, " ")
	word, _, _ = strings.Cut(word, "@")
	return word == "/"+name
}

package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// handleNew replaces the chat's session with a fresh one and registers it as
// a saved conversation.
func (h *Handler) handleNew(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	h.sessions.Reset(chatID)

	ctrl, err := h.sessions.Session(ctx, b, chatID)
	if err != nil {
		slog.Error("start new session", "chat_id", chatID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   "❌ Could not connect to the server: " + userMessage(err),
		})
		return
	}

	st := ctrl.State()
	if st.Session.ID != "" {
		if err := h.chats.Create(ctx, st.Session.ID); err != nil {
			slog.Warn("register chat", "chat_id", chatID, "session_id", st.Session.ID, "error", err)
		}
	}

	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   "🔄 New session started.\n\n" + statusText(st),
	})
}

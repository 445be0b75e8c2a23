package handler

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	tg "github.com/ElarizT/Mavericks/internal/telegram"
)

// handlePrompt shows the backend's default system prompt.
func (h *Handler) handlePrompt(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	prompt, err := h.models.Prompt(ctx)
	if err != nil {
		slog.Error("get prompt", "chat_id", chatID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   userMessage(err),
		})
		return
	}
	if prompt == "" {
		prompt = "No default system prompt is set."
	}

	if err := tg.SendLongMessage(ctx, b, chatID, "📜 *System prompt*\n\n"+prompt, nil); err != nil {
		slog.Error("send prompt", "chat_id", chatID, "error", err)
	}
}

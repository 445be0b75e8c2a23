package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ElarizT/Mavericks/internal/domain"
	"github.com/ElarizT/Mavericks/internal/middleware"
	"github.com/ElarizT/Mavericks/internal/render"
	tg "github.com/ElarizT/Mavericks/internal/telegram"
)

// handleFiles shows the attachments waiting to be sent.
func (h *Handler) handleFiles(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	ctrl := middleware.GetSession(ctx)
	if ctrl == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: userMessage(domain.ErrNoSession)})
		return
	}

	list := ctrl.Attachments().List()
	msgID, err := tg.SendText(ctx, b, chatID, render.Attachments(list), tg.AttachmentKeyboard(list))
	if err != nil {
		slog.Error("send attachments", "chat_id", chatID, "error", err)
		return
	}
	h.sessions.TrackAttachments(chatID, msgID)
}

func (h *Handler) handleAttachmentCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	q := update.CallbackQuery

	answer := func(text string) {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID, Text: text})
	}

	action, clientID, ok := tg.ParseAttachmentCallback(q.Data)
	ctrl := middleware.GetSession(ctx)
	if !ok || ctrl == nil {
		answer(userMessage(domain.ErrAttachmentNotFound))
		return
	}

	chatID, messageID := callbackTarget(q)
	if chatID != 0 {
		h.sessions.TrackAttachments(chatID, messageID)
	}

	switch action {
	case "retry":
		answer("🔁 Retrying upload...")
		if err := ctrl.Attachments().Retry(ctx, clientID); err != nil {
			slog.Warn("retry attachment", "chat_id", chatID, "client_id", clientID, "error", err)
			if errors.Is(err, domain.ErrAttachmentNotFound) || errors.Is(err, domain.ErrAttachmentBusy) {
				b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: userMessage(err)})
			}
		}
	case "remove":
		if err := ctrl.Attachments().Remove(clientID); err != nil {
			answer(userMessage(err))
			return
		}
		answer("✖ Removed")
	}
}

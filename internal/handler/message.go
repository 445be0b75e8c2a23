package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ElarizT/Mavericks/internal/domain"
	"github.com/ElarizT/Mavericks/internal/middleware"
	"github.com/ElarizT/Mavericks/internal/service"
	tg "github.com/ElarizT/Mavericks/internal/telegram"
)

// HandleMessage routes plain text to the session and turns documents and
// photos into attachments. A caption is sent together with its file.
func (h *Handler) HandleMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || strings.HasPrefix(msg.Text, "/") {
		return
	}
	chatID := msg.Chat.ID

	ctrl := middleware.GetSession(ctx)
	if ctrl == nil {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: userMessage(domain.ErrNoSession)})
		return
	}

	switch {
	case msg.Document != nil:
		doc := msg.Document
		meta := domain.LocalFile{Name: doc.FileName, MediaType: doc.MimeType, Size: doc.FileSize}
		if _, err := service.ValidateFile(meta); err != nil {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: userMessage(err)})
			return
		}
		h.attach(ctx, b, ctrl, msg, func() (domain.LocalFile, error) {
			return tg.DocumentFile(ctx, b, doc)
		})
	case len(msg.Photo) > 0:
		h.attach(ctx, b, ctrl, msg, func() (domain.LocalFile, error) {
			return tg.PhotoFile(ctx, b, msg.Photo)
		})
	case strings.TrimSpace(msg.Text) != "":
		h.submit(ctx, b, ctrl, chatID, msg.Text)
	}
}

func (h *Handler) attach(ctx context.Context, b *bot.Bot, ctrl *service.SessionController, msg *models.Message, download func() (domain.LocalFile, error)) {
	chatID := msg.Chat.ID

	file, err := download()
	if err != nil {
		slog.Error("download telegram file", "chat_id", chatID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Could not download the file from Telegram."})
		return
	}

	msgID, err := tg.SendText(ctx, b, chatID, "📎 Uploading "+file.Name+"...", nil)
	if err != nil {
		slog.Error("send upload notice", "chat_id", chatID, "error", err)
	} else {
		h.sessions.TrackAttachments(chatID, msgID)
	}

	_, rejected := ctrl.Attachments().Attach(ctx, file)
	if len(rejected) > 0 {
		text := userMessage(rejected[0].Err)
		if msgID != 0 {
			tg.EditText(ctx, b, chatID, msgID, text, nil)
		} else {
			b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
		}
		return
	}

	if caption := strings.TrimSpace(msg.Caption); caption != "" {
		h.submit(ctx, b, ctrl, chatID, caption)
	}
}

func (h *Handler) submit(ctx context.Context, b *bot.Bot, ctrl *service.SessionController, chatID int64, text string) {
	if err := ctrl.Submit(ctx, text); err != nil {
		slog.Warn("submit message", "chat_id", chatID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: userMessage(err)})
	}
}

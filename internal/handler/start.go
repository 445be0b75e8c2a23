package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ElarizT/Mavericks/internal/domain"
	"github.com/ElarizT/Mavericks/internal/middleware"
	"github.com/ElarizT/Mavericks/internal/render"
	"github.com/ElarizT/Mavericks/internal/service"
)

const welcomeText = "👋 Hi! I relay your questions to the legal assistant.\n\n" +
	"📋 *Commands:*\n" +
	"/new — Start a new session\n" +
	"/status — Connection and model\n" +
	"/files — Attachments waiting to be sent\n" +
	"/chats — Saved conversations\n" +
	"/history <session id> — Messages of a conversation\n" +
	"/rename <title> — Rename the current conversation\n" +
	"/model — Available models\n" +
	"/prompt — Default system prompt\n" +
	"/logout — Sign out\n\n" +
	"Send a message, document or photo to begin."

func (h *Handler) handleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      welcomeText,
		ParseMode: models.ParseModeMarkdownV1,
	})

	if ctrl := middleware.GetSession(ctx); ctrl != nil {
		b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID: chatID,
			Text:   statusText(ctrl.State()),
		})
	}
}

func (h *Handler) handleStatus(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	text := "⚠️ No session for this chat. Send /new."
	if ctrl := middleware.GetSession(ctx); ctrl != nil {
		text = statusText(ctrl.State())
	}
	b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   text,
	})
}

func statusText(st service.SessionState) string {
	var sb strings.Builder

	icon := "🔴"
	switch st.Session.Status {
	case domain.StatusConnected:
		icon = "🟢"
	case domain.StatusConnecting:
		icon = "🟡"
	}
	sb.WriteString(fmt.Sprintf("%s %s\n", icon, st.Placeholder))
	sb.WriteString(fmt.Sprintf("Connection: %s\n", st.Session.Status))

	if st.Session.ID != "" {
		sb.WriteString(fmt.Sprintf("Session: %s\n", st.Session.ID))
	}
	if st.Model != nil && st.Model.Usable() {
		sb.WriteString(fmt.Sprintf("Model: %s / %s\n", st.Model.Provider, st.Model.LLMName()))
	} else {
		sb.WriteString("Model: none\n")
	}
	sb.WriteString(fmt.Sprintf("Messages: %d\n", len(st.Messages)))

	if len(st.Attachments) > 0 {
		sb.WriteString("\n")
		sb.WriteString(render.Attachments(st.Attachments))
		sb.WriteString("\n")
	}
	if st.Typing {
		sb.WriteString("\n✍️ Waiting for a reply...")
	}
	return strings.TrimRight(sb.String(), "\n")
}

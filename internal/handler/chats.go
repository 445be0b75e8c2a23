package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ElarizT/Mavericks/internal/config"
	"github.com/ElarizT/Mavericks/internal/middleware"
	tg "github.com/ElarizT/Mavericks/internal/telegram"
)

const (
	chatsPagePrefix   = "chats_page_"
	chatDeletePrefix  = "chat_rm:"
	historyPerPage    = 10
	historySnippetLen = 300
)

func (h *Handler) handleChats(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendChatsPage(ctx, b, update.Message.Chat.ID, 0, 0)
}

func (h *Handler) handleChatsPage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: update.CallbackQuery.ID})

	page, _ := strconv.Atoi(strings.TrimPrefix(update.CallbackQuery.Data, chatsPagePrefix))
	chatID, messageID := callbackTarget(update.CallbackQuery)
	if chatID == 0 {
		return
	}
	h.sendChatsPage(ctx, b, chatID, page, messageID)
}

func (h *Handler) handleChatDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery == nil {
		return
	}
	q := update.CallbackQuery
	sessionID := strings.TrimPrefix(q.Data, chatDeletePrefix)

	if err := h.chats.Delete(ctx, sessionID); err != nil {
		slog.Error("delete chat", "session_id", sessionID, "error", err)
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: q.ID,
			Text:            userMessage(err),
			ShowAlert:       true,
		})
		return
	}
	b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID, Text: "🗑 Deleted"})

	if chatID, messageID := callbackTarget(q); chatID != 0 {
		h.sendChatsPage(ctx, b, chatID, 0, messageID)
	}
}

// sendChatsPage lists saved conversations. A non-zero messageID edits that
// message instead of sending a new one.
func (h *Handler) sendChatsPage(ctx context.Context, b *bot.Bot, chatID int64, page, messageID int) {
	if page < 0 {
		page = 0
	}

	// One extra row tells whether a next page exists.
	chats, err := h.chats.List(ctx, page*config.ChatsPerPage, config.ChatsPerPage+1)
	if err != nil {
		slog.Error("list chats", "chat_id", chatID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: userMessage(err)})
		return
	}
	hasNext := len(chats) > config.ChatsPerPage
	if hasNext {
		chats = chats[:config.ChatsPerPage]
	}

	var sb strings.Builder
	sb.WriteString("📂 Saved conversations\n\n")
	if len(chats) == 0 {
		sb.WriteString("Nothing here yet.")
	}

	var rows [][]models.InlineKeyboardButton
	for i, c := range chats {
		title := c.Title
		if title == "" {
			title = "Untitled"
		}
		sb.WriteString(fmt.Sprintf("%d. %s (%s)\n   %s\n", page*config.ChatsPerPage+i+1, title, c.UpdatedAt.Format("02.01 15:04"), c.SessionID))
		rows = append(rows, tg.ButtonRow(tg.InlineButton("🗑 "+title, chatDeletePrefix+c.SessionID)))
	}
	if page > 0 || hasNext {
		rows = append(rows, tg.PagerRow(page, hasNext, chatsPagePrefix))
	}

	text := sb.String()
	var markup *models.InlineKeyboardMarkup
	if len(rows) > 0 {
		markup = tg.InlineKeyboard(rows...)
	}

	if messageID != 0 {
		if err := tg.EditText(ctx, b, chatID, messageID, text, markup); err != nil {
			slog.Warn("edit chats page", "chat_id", chatID, "error", err)
		}
		return
	}
	if _, err := tg.SendText(ctx, b, chatID, text, markup); err != nil {
		slog.Error("send chats page", "chat_id", chatID, "error", err)
	}
}

// handleHistory prints the latest messages of a saved conversation, the
// current session when no id is given.
func (h *Handler) handleHistory(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	sessionID := commandArg(update.Message.Text)
	if sessionID == "" {
		if ctrl := middleware.GetSession(ctx); ctrl != nil {
			sessionID = ctrl.State().Session.ID
		}
	}
	if sessionID == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Usage: /history <session id>"})
		return
	}

	history, err := h.chats.History(ctx, sessionID, 1, historyPerPage)
	if err != nil {
		slog.Error("chat history", "chat_id", chatID, "session_id", sessionID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: userMessage(err)})
		return
	}
	if len(history.Items) == 0 {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "No messages in this conversation."})
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🕘 Last %d of %d messages\n\n", len(history.Items), history.TotalCount))
	for _, item := range history.Items {
		who := "🤖"
		if item.SenderType == "user" {
			who = "👤"
		}
		content := []rune(item.Content)
		if len(content) > historySnippetLen {
			content = append(content[:historySnippetLen], '…')
		}
		sb.WriteString(fmt.Sprintf("%s %s\n%s\n\n", who, item.CreatedAt.Format("02.01 15:04"), string(content)))
	}

	if err := tg.SendLongMessage(ctx, b, chatID, sb.String(), nil); err != nil {
		slog.Error("send history", "chat_id", chatID, "error", err)
	}
}

// handleRename sets the title of the current session's conversation.
func (h *Handler) handleRename(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	title := commandArg(update.Message.Text)
	ctrl := middleware.GetSession(ctx)
	if title == "" || ctrl == nil || ctrl.State().Session.ID == "" {
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Usage: /rename <title> (needs an active session)"})
		return
	}

	if err := h.chats.Rename(ctx, ctrl.State().Session.ID, title); err != nil {
		slog.Error("rename chat", "chat_id", chatID, "error", err)
		b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: userMessage(err)})
		return
	}
	b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "✏️ Renamed to " + title})
}

// commandArg returns the text after the command word.
func commandArg(text string) string {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

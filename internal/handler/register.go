package handler

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	tg "github.com/ElarizT/Mavericks/internal/telegram"
)

// Register registers all command and callback handlers on the bot instance.
// Plain messages, photos and documents reach HandleMessage through the
// bot's default handler.
func (h *Handler) Register() {
	// Commands
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypePrefix, h.handleStart)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/new", bot.MatchTypePrefix, h.handleNew)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/status", bot.MatchTypePrefix, h.handleStatus)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/files", bot.MatchTypePrefix, h.handleFiles)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/chats", bot.MatchTypePrefix, h.handleChats)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/history", bot.MatchTypePrefix, h.handleHistory)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/rename", bot.MatchTypePrefix, h.handleRename)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/model", bot.MatchTypePrefix, h.handleModel)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/prompt", bot.MatchTypePrefix, h.handlePrompt)
	h.bot.RegisterHandler(bot.HandlerTypeMessageText, "/logout", bot.MatchTypePrefix, h.handleLogout)

	// Attachment callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.CallbackRetry, bot.MatchTypePrefix, h.handleAttachmentCallback)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, tg.CallbackRemove, bot.MatchTypePrefix, h.handleAttachmentCallback)

	// Chat list callbacks
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, chatsPagePrefix, bot.MatchTypePrefix, h.handleChatsPage)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, chatDeletePrefix, bot.MatchTypePrefix, h.handleChatDelete)
	h.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "cur", bot.MatchTypeExact, h.handleNoop)
}

// handleNoop acknowledges callbacks of non-interactive buttons.
func (h *Handler) handleNoop(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.CallbackQuery != nil {
		b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
		})
	}
}

func callbackTarget(q *models.CallbackQuery) (chatID int64, messageID int) {
	if msg := q.Message.Message; msg != nil {
		return msg.Chat.ID, msg.ID
	}
	return 0, 0
}

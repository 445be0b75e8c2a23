package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/ElarizT/Mavericks/internal/domain"
)

// Callback data prefixes for attachment buttons.
const (
	CallbackRetry  = "att:retry:"
	CallbackRemove = "att:rm:"
)

// InlineButton creates a single inline keyboard button.
func InlineButton(text, callbackData string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{
		Text:         text,
		CallbackData: callbackData,
	}
}

// InlineKeyboard creates an inline keyboard from rows of buttons.
func InlineKeyboard(rows ...[]models.InlineKeyboardButton) *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: rows,
	}
}

// ButtonRow creates a row of inline buttons.
func ButtonRow(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}

// PagerRow creates prev/next buttons around the current page. The total page
// count is not known, so the next button depends on hasNext.
func PagerRow(page int, hasNext bool, callbackPrefix string) []models.InlineKeyboardButton {
	var row []models.InlineKeyboardButton
	if page > 0 {
		row = append(row, InlineButton("⬅️", fmt.Sprintf("%s%d", callbackPrefix, page-1)))
	}
	row = append(row, InlineButton(fmt.Sprintf("%d", page+1), "cur"))
	if hasNext {
		row = append(row, InlineButton("➡️", fmt.Sprintf("%s%d", callbackPrefix, page+1)))
	}
	return row
}

// AttachmentKeyboard offers retry for failed attachments and remove for all
// of them. Nil when there is nothing to act on.
func AttachmentKeyboard(list []domain.AttachedFile) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for _, a := range list {
		name := shorten(a.File.Name, 24)
		if a.Failed() {
			rows = append(rows, ButtonRow(
				InlineButton("🔁 "+name, CallbackRetry+a.ClientID),
				InlineButton("✖", CallbackRemove+a.ClientID),
			))
			continue
		}
		rows = append(rows, ButtonRow(InlineButton("✖ "+name, CallbackRemove+a.ClientID)))
	}
	if len(rows) == 0 {
		return nil
	}
	return InlineKeyboard(rows...)
}

// ParseAttachmentCallback splits callback data into an action and a client id.
func ParseAttachmentCallback(data string) (action, clientID string, ok bool) {
	switch {
	case strings.HasPrefix(data, CallbackRetry):
		return "retry", strings.TrimPrefix(data, CallbackRetry), true
	case strings.HasPrefix(data, CallbackRemove):
		return "remove", strings.TrimPrefix(data, CallbackRemove), true
	}
	return "", "", false
}

func shorten(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

package handler

import (
	"errors"

	"github.com/ElarizT/Mavericks/internal/domain"
	"github.com/ElarizT/Mavericks/internal/service"
)

// userMessage maps an error onto the text shown in the chat.
func userMessage(err error) string {
	var apiErr *service.APIError
	switch {
	case errors.Is(err, domain.ErrEmptyMessage):
		return "Nothing to send. Type a message or attach a file first."
	case errors.Is(err, domain.ErrNoModelConfig):
		return "⚠️ No model configuration is available yet. Check /status or start over with /new."
	case errors.Is(err, domain.ErrNoSession), errors.Is(err, domain.ErrNotAuthenticated):
		return "⚠️ Not signed in to the server. Send /new to start a session."
	case errors.Is(err, domain.ErrChannelClosed):
		return "⚠️ Not connected to the server. Your message was not delivered."
	case errors.Is(err, domain.ErrSessionClosed):
		return "The session was closed. Send /new to start a new one."
	case errors.Is(err, domain.ErrInvalidFileType):
		return "❌ This file type is not supported. Send images, PDF, text, Word, CSV or Excel files."
	case errors.Is(err, domain.ErrFileTooLarge):
		return "❌ The file is larger than 50 MB."
	case errors.Is(err, domain.ErrAttachmentNotFound):
		return "This attachment is gone."
	case errors.Is(err, domain.ErrAttachmentBusy):
		return "This attachment is uploading or already uploaded."
	case errors.As(err, &apiErr):
		return "❌ Server error: " + apiErr.Message
	default:
		return "❌ Something went wrong. Please try again."
	}
}

package domain

import "errors"

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNoModelConfig      = errors.New("no model configuration available")
	ErrNoSession          = errors.New("no session id available")
	ErrChannelClosed      = errors.New("channel is not connected")
	ErrSessionClosed      = errors.New("session closed")
	ErrEmptyMessage       = errors.New("message is empty")
	ErrInvalidFileType    = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrAttachmentNotFound = errors.New("attachment not found")
	ErrAttachmentBusy     = errors.New("attachment is uploading or already uploaded")
	ErrCredentialNotFound = errors.New("credential not found")
)

package config

import "time"

const (
	// Credential store backends
	StoreMemory   = "memory"
	StoreFile     = "file"
	StorePostgres = "postgres"

	// Credential keys
	TokenKey        = "access_token"
	RefreshTokenKey = "refresh_token"
	UserKey         = "user"

	// Attachment limits
	MaxFileSize = 50 * 1024 * 1024

	// Inbound frames of this type never reach the message log
	AgentLogType = "agent_log"

	// Largest inbound websocket frame accepted
	MaxFrameSize = 8 * 1024 * 1024

	// Reconnect backoff ceiling
	MaxReconnectBackoff = 30 * time.Second

	// Model configs cache duration
	ModelCacheDuration = 10 * time.Minute

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Chats per /chats page
	ChatsPerPage = 10
)

// Composer placeholders.
const (
	PlaceholderAuthenticating = "Authenticating..."
	PlaceholderConnecting     = "Connecting to server..."
	PlaceholderReady          = "Type your message or upload a document..."
)

// AllowedFileTypes lists the media types accepted for upload.
var AllowedFileTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"application/pdf",
	"text/plain",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"text/csv",
	"application/vnd.ms-excel",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// IsAllowedFileType reports whether mediaType is in AllowedFileTypes.
func IsAllowedFileType(mediaType string) bool {
	for _, t := range AllowedFileTypes {
		if t == mediaType {
			return true
		}
	}
	return false
}

package domain

import "time"

// Chat is a server-side conversation listed by the chats API.
type Chat struct {
	SessionID string    `json:"session_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ChatHistory struct {
	TotalCount int               `json:"total_count"`
	Items      []ChatHistoryItem `json:"items"`
}

type ChatHistoryItem struct {
	Content    string    `json:"content"`
	SenderType string    `json:"sender_type"`
	CreatedAt  time.Time `json:"created_at"`
	RequestID  string    `json:"request_id"`
}

// FileMetadata describes a stored upload.
type FileMetadata struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	RequestID    string    `json:"request_id"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mimetype"`
	InternalID   string    `json:"internal_id"`
	InternalName string    `json:"internal_name"`
	FromAgent    bool      `json:"from_agent"`
	CreatedAt    time.Time `json:"created_at"`
	Size         int64     `json:"size"`
}

// SessionFile links an uploaded file to the session it was sent in.
type SessionFile struct {
	FileID    string `json:"file_id"`
	SessionID string `json:"session_id"`
	RequestID string `json:"request_id"`
}

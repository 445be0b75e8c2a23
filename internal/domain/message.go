package domain

import (
	"bytes"
	"encoding/json"
)

type MessageType string

const (
	MessageTypeUser    MessageType = "user_message"
	MessageTypeRawText MessageType = "raw_text"
)

// Message is one entry of the ordered session log.
type Message struct {
	Type  MessageType
	Data  string
	Files []FileRef

	// Raw is the verbatim inbound frame. Empty for locally built messages.
	Raw json.RawMessage
}

// FileRef is an attachment reference carried by a message.
type FileRef struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	OriginalName string `json:"original_name,omitempty"`
	Size         int64  `json:"size"`
}

// DisplayName prefers the display name over the stored original name.
func (f FileRef) DisplayName() string {
	if f.Name != "" {
		return f.Name
	}
	return f.OriginalName
}

// IsUser reports whether the message was authored locally.
func (m Message) IsUser() bool {
	return m.Type == MessageTypeUser
}

// RawTextMessage wraps an undecodable frame so it can still be displayed.
func RawTextMessage(frame []byte) Message {
	return Message{Type: MessageTypeRawText, Data: string(frame)}
}

// ParseMessage decodes an inbound frame. Only JSON objects are accepted; the
// "data" field is kept when it is a string.
func ParseMessage(frame []byte) (Message, error) {
	var aux struct {
		Type  MessageType     `json:"type"`
		Data  json.RawMessage `json:"data"`
		Files []FileRef       `json:"files"`
	}
	if err := json.Unmarshal(frame, &aux); err != nil {
		return Message{}, err
	}

	msg := Message{
		Type:  aux.Type,
		Files: aux.Files,
		Raw:   append(json.RawMessage(nil), frame...),
	}
	if len(aux.Data) > 0 {
		var s string
		if err := json.Unmarshal(aux.Data, &s); err == nil {
			msg.Data = s
		}
	}
	return msg, nil
}

// Content returns the text a presentation layer should display.
func (m Message) Content() string {
	switch m.Type {
	case MessageTypeUser, MessageTypeRawText:
		return m.Data
	}
	if text := m.agentResponse(); text != "" {
		return text
	}
	if len(m.Raw) == 0 {
		return m.Data
	}
	var out bytes.Buffer
	if err := json.Indent(&out, m.Raw, "", "  "); err != nil {
		return string(m.Raw)
	}
	return out.String()
}

// agentResponse digs out response.response.response from structured replies.
func (m Message) agentResponse() string {
	if len(m.Raw) == 0 {
		return ""
	}
	var node any
	if err := json.Unmarshal(m.Raw, &node); err != nil {
		return ""
	}
	for i := 0; i < 3; i++ {
		obj, ok := node.(map[string]any)
		if !ok {
			return ""
		}
		node = obj["response"]
	}
	text, _ := node.(string)
	return text
}

// Package render turns session state into plain text for the chat front-ends.
package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ElarizT/Mavericks/internal/domain"
)

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FileSize formats bytes with 1024-based units and at most two decimals.
func FileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	k := decimal.NewFromInt(1024)
	value := decimal.NewFromInt(bytes)
	unit := 0
	for unit < len(sizeUnits)-1 && value.GreaterThanOrEqual(k) {
		value = value.Div(k)
		unit++
	}
	return value.Round(2).String() + " " + sizeUnits[unit]
}

// FileIcon picks an icon for a media type.
func FileIcon(mediaType string) string {
	switch {
	case strings.HasPrefix(mediaType, "image/"):
		return "🖼️"
	case mediaType == "application/pdf":
		return "📄"
	case strings.HasPrefix(mediaType, "text/"):
		return "📝"
	case strings.Contains(mediaType, "word"), strings.Contains(mediaType, "document"):
		return "📄"
	case strings.Contains(mediaType, "sheet"), strings.Contains(mediaType, "excel"), strings.Contains(mediaType, "csv"):
		return "📊"
	default:
		return "📎"
	}
}

// NameIcon picks an icon from a file name when no media type is known.
func NameIcon(name string) string {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "jpg", "jpeg", "png", "gif", "webp":
		return "🖼️"
	case "pdf":
		return "📄"
	default:
		return "📎"
	}
}

// Content returns the displayable text of msg. Agent replies written in HTML
// are flattened to text.
func Content(msg domain.Message) string {
	text := msg.Content()
	if msg.IsUser() || !looksLikeHTML(text) {
		return text
	}
	plain, err := HTMLToText(text)
	if err != nil {
		return text
	}
	return plain
}

// Message renders content followed by one line per referenced file.
func Message(msg domain.Message) string {
	var b strings.Builder
	b.WriteString(Content(msg))
	for _, f := range msg.Files {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FileRef(f))
	}
	return b.String()
}

func FileRef(f domain.FileRef) string {
	name := f.DisplayName()
	if name == "" {
		name = f.ID
	}
	line := NameIcon(name) + " " + name
	if f.Size > 0 {
		line += " (" + FileSize(f.Size) + ")"
	}
	return line
}

// Attachment renders one composer attachment with its upload state.
func Attachment(a domain.AttachedFile) string {
	line := fmt.Sprintf("%s %s (%s)", FileIcon(a.File.MediaType), a.File.Name, FileSize(a.File.Size))
	switch {
	case a.Loading:
		return line + " uploading..."
	case a.Failed():
		return line + " failed: " + a.Error
	default:
		return line + " ready"
	}
}

// Attachments renders the list, one attachment per line.
func Attachments(list []domain.AttachedFile) string {
	if len(list) == 0 {
		return "No attachments."
	}
	lines := make([]string, len(list))
	for i, a := range list {
		lines[i] = Attachment(a)
	}
	return strings.Join(lines, "\n")
}

package domain

import "strings"

// LocalFile is the raw binary handle behind an attachment.
type LocalFile struct {
	Name      string
	MediaType string
	Size      int64
	Data      []byte
}

// IsImage reports whether the file has an image media type.
func (f LocalFile) IsImage() bool {
	return strings.HasPrefix(f.MediaType, "image/")
}

// AttachedFile tracks one file from selection until it is sent or removed.
type AttachedFile struct {
	ClientID    string
	File        LocalFile
	RemoteID    string
	Loading     bool
	Error       string
	PreviewPath string
}

// Ready reports whether the attachment can be referenced by a message.
func (a AttachedFile) Ready() bool {
	return !a.Loading && a.RemoteID != "" && a.Error == ""
}

// Failed reports whether the last upload attempt failed.
func (a AttachedFile) Failed() bool {
	return !a.Loading && a.Error != ""
}

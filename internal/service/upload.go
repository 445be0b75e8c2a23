package service

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ElarizT/Mavericks/internal/config"
	"github.com/ElarizT/Mavericks/internal/domain"
)

// Uploader sends one file to the backend.
type Uploader interface {
	UploadFile(ctx context.Context, file domain.LocalFile) (domain.FileRef, error)
}

// Rejection is a file refused by validation before any network call.
type Rejection struct {
	File domain.LocalFile
	Err  error
}

var extensionTypes = map[string]string{
	".txt":  "text/plain",
	".csv":  "text/csv",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".xls":  "application/vnd.ms-excel",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// UploadCoordinator tracks composer attachments through upload, failure,
// retry and removal. Every update addresses an attachment by client id.
type UploadCoordinator struct {
	uploader   Uploader
	previewDir string

	mu       sync.Mutex
	files    []domain.AttachedFile
	onChange func([]domain.AttachedFile)
}

func NewUploadCoordinator(uploader Uploader, previewDir string) *UploadCoordinator {
	return &UploadCoordinator{uploader: uploader, previewDir: previewDir}
}

// OnChange sets the listener that receives a copy of the list after every change.
func (u *UploadCoordinator) OnChange(fn func([]domain.AttachedFile)) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.onChange = fn
}

// ValidateFile normalizes the media type of f and checks it against the
// allow-list and the size ceiling.
func ValidateFile(f domain.LocalFile) (domain.LocalFile, error) {
	f.MediaType = normalizeMediaType(f.MediaType, f.Name)
	if f.Size == 0 {
		f.Size = int64(len(f.Data))
	}
	if !config.IsAllowedFileType(f.MediaType) {
		return f, fmt.Errorf("%s (%s): %w", f.Name, f.MediaType, domain.ErrInvalidFileType)
	}
	if f.Size > config.MaxFileSize {
		return f, fmt.Errorf("%s (%d bytes): %w", f.Name, f.Size, domain.ErrFileTooLarge)
	}
	return f, nil
}

// Attach validates files, shows the accepted ones as loading right away and
// uploads them one after another. Upload failures stay in the list; only
// validation failures are returned.
func (u *UploadCoordinator) Attach(ctx context.Context, files ...domain.LocalFile) ([]string, []Rejection) {
	var rejected []Rejection
	var accepted []domain.AttachedFile

	for _, f := range files {
		valid, err := ValidateFile(f)
		if err != nil {
			slog.Warn("attachment rejected", "name", f.Name, "error", err)
			rejected = append(rejected, Rejection{File: f, Err: err})
			continue
		}
		accepted = append(accepted, domain.AttachedFile{
			ClientID:    uuid.NewString(),
			File:        valid,
			Loading:     true,
			PreviewPath: u.createPreview(valid),
		})
	}
	if len(accepted) == 0 {
		return nil, rejected
	}

	u.mu.Lock()
	u.files = append(u.files, accepted...)
	u.mu.Unlock()
	u.notify()

	ids := make([]string, len(accepted))
	for i, a := range accepted {
		ids[i] = a.ClientID
		u.upload(ctx, a.ClientID, a.File)
	}
	return ids, rejected
}

// Retry re-uploads a failed attachment under the same client id.
func (u *UploadCoordinator) Retry(ctx context.Context, clientID string) error {
	u.mu.Lock()
	idx := u.indexLocked(clientID)
	if idx < 0 {
		u.mu.Unlock()
		return domain.ErrAttachmentNotFound
	}
	a := &u.files[idx]
	if a.Loading || a.RemoteID != "" {
		u.mu.Unlock()
		return domain.ErrAttachmentBusy
	}
	a.Loading = true
	a.Error = ""
	file := a.File
	u.mu.Unlock()
	u.notify()

	return u.upload(ctx, clientID, file)
}

// Remove drops an attachment and deletes its preview.
func (u *UploadCoordinator) Remove(clientID string) error {
	u.mu.Lock()
	idx := u.indexLocked(clientID)
	if idx < 0 {
		u.mu.Unlock()
		return domain.ErrAttachmentNotFound
	}
	removed := u.files[idx]
	u.files = append(u.files[:idx], u.files[idx+1:]...)
	u.mu.Unlock()

	releasePreview(removed.PreviewPath)
	u.notify()
	return nil
}

// List returns a copy of the tracked attachments in selection order.
func (u *UploadCoordinator) List() []domain.AttachedFile {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]domain.AttachedFile(nil), u.files...)
}

// ReadyIDs returns the remote ids of successfully uploaded attachments.
func (u *UploadCoordinator) ReadyIDs() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	var ids []string
	for _, a := range u.files {
		if a.Ready() {
			ids = append(ids, a.RemoteID)
		}
	}
	return ids
}

// RemoveSent drops uploaded attachments whose remote id was sent. Loading and
// failed attachments are kept for retry.
func (u *UploadCoordinator) RemoveSent(remoteIDs []string) {
	if len(remoteIDs) == 0 {
		return
	}
	sent := make(map[string]struct{}, len(remoteIDs))
	for _, id := range remoteIDs {
		sent[id] = struct{}{}
	}

	var released []string
	u.mu.Lock()
	kept := u.files[:0]
	for _, a := range u.files {
		if _, ok := sent[a.RemoteID]; ok && a.Ready() {
			released = append(released, a.PreviewPath)
			continue
		}
		kept = append(kept, a)
	}
	u.files = kept
	u.mu.Unlock()

	for _, p := range released {
		releasePreview(p)
	}
	u.notify()
}

// Close releases every preview and empties the list.
func (u *UploadCoordinator) Close() {
	u.mu.Lock()
	files := u.files
	u.files = nil
	u.mu.Unlock()

	for _, a := range files {
		releasePreview(a.PreviewPath)
	}
}

func (u *UploadCoordinator) upload(ctx context.Context, clientID string, file domain.LocalFile) error {
	ref, err := u.uploader.UploadFile(ctx, file)

	u.mu.Lock()
	if idx := u.indexLocked(clientID); idx >= 0 {
		a := &u.files[idx]
		a.Loading = false
		if err != nil {
			a.Error = err.Error()
		} else {
			a.RemoteID = ref.ID
			a.Error = ""
		}
	}
	u.mu.Unlock()

	if err != nil {
		slog.Error("attachment upload failed", "client_id", clientID, "name", file.Name, "error", err)
	}
	u.notify()
	return err
}

func (u *UploadCoordinator) indexLocked(clientID string) int {
	for i, a := range u.files {
		if a.ClientID == clientID {
			return i
		}
	}
	return -1
}

func (u *UploadCoordinator) notify() {
	u.mu.Lock()
	fn := u.onChange
	snapshot := append([]domain.AttachedFile(nil), u.files...)
	u.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

func (u *UploadCoordinator) createPreview(f domain.LocalFile) string {
	if u.previewDir == "" || !f.IsImage() {
		return ""
	}
	tmp, err := os.CreateTemp(u.previewDir, "preview-*"+filepath.Ext(f.Name))
	if err != nil {
		slog.Warn("create preview", "name", f.Name, "error", err)
		return ""
	}
	defer tmp.Close()
	if _, err := tmp.Write(f.Data); err != nil {
		slog.Warn("write preview", "name", f.Name, "error", err)
		os.Remove(tmp.Name())
		return ""
	}
	return tmp.Name()
}

func releasePreview(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("remove preview", "path", path, "error", err)
	}
}

func normalizeMediaType(declared, name string) string {
	if declared == "" {
		ext := strings.ToLower(filepath.Ext(name))
		if t, ok := extensionTypes[ext]; ok {
			return t
		}
		declared = mime.TypeByExtension(ext)
	}
	if declared == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(declared))
	}
	return mediaType
}

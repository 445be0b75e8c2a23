package service

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"net/url"

	"github.com/google/uuid"

	"github.com/ElarizT/Mavericks/internal/domain"
)

type FileService struct {
	api *APIClient
}

func NewFileService(api *APIClient) *FileService {
	return &FileService{api: api}
}

// Upload sends file as multipart form data and returns its remote id. Empty
// or malformed request/session ids are replaced with fresh random ones.
func (s *FileService) Upload(ctx context.Context, file domain.LocalFile, requestID, sessionID string) (string, error) {
	requestID = validOrNewUUID(requestID)
	sessionID = validOrNewUUID(sessionID)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, file.Name))
	if file.MediaType != "" {
		header.Set("Content-Type", file.MediaType)
	} else {
		header.Set("Content-Type", "application/octet-stream")
	}
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return "", fmt.Errorf("write file part: %w", err)
	}
	if err := w.WriteField("request_id", requestID); err != nil {
		return "", fmt.Errorf("write request_id: %w", err)
	}
	if err := w.WriteField("session_id", sessionID); err != nil {
		return "", fmt.Errorf("write session_id: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart: %w", err)
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := s.api.PostMultipart(ctx, "/files", &body, w.FormDataContentType(), &resp); err != nil {
		return "", fmt.Errorf("upload %s: %w", file.Name, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("upload %s: empty file id", file.Name)
	}
	return resp.ID, nil
}

// Download returns the stored file contents and media type.
func (s *FileService) Download(ctx context.Context, fileID string) ([]byte, string, error) {
	data, contentType, err := s.api.GetRaw(ctx, "/files/"+url.PathEscape(fileID))
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	return data, contentType, nil
}

func (s *FileService) Metadata(ctx context.Context, fileID string) (*domain.FileMetadata, error) {
	var meta domain.FileMetadata
	if err := s.api.Get(ctx, "/files/"+url.PathEscape(fileID)+"/metadata", nil, &meta); err != nil {
		return nil, fmt.Errorf("get file metadata: %w", err)
	}
	return &meta, nil
}

func (s *FileService) ListBySession(ctx context.Context, sessionID string) ([]domain.SessionFile, error) {
	var files []domain.SessionFile
	if err := s.api.Get(ctx, "/files", url.Values{"session_id": {sessionID}}, &files); err != nil {
		return nil, fmt.Errorf("list session files: %w", err)
	}
	return files, nil
}

func validOrNewUUID(id string) string {
	if id == "" {
		return uuid.NewString()
	}
	if _, err := uuid.Parse(id); err != nil {
		return uuid.NewString()
	}
	return id
}

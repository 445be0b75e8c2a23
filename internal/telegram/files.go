package telegram

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/ElarizT/Mavericks/internal/domain"
)

var downloadClient = &http.Client{Timeout: 60 * time.Second}

// DownloadFile downloads a file from Telegram by file ID.
func DownloadFile(ctx context.Context, b *bot.Bot, fileID string) ([]byte, string, error) {
	file, err := b.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.FileDownloadLink(file), nil)
	if err != nil {
		return nil, "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := downloadClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read file data: %w", err)
	}
	return data, file.FilePath, nil
}

// DocumentFile downloads a document attachment.
func DocumentFile(ctx context.Context, b *bot.Bot, doc *models.Document) (domain.LocalFile, error) {
	data, filePath, err := DownloadFile(ctx, b, doc.FileID)
	if err != nil {
		return domain.LocalFile{}, err
	}
	name := doc.FileName
	if name == "" {
		name = path.Base(filePath)
	}
	return domain.LocalFile{
		Name:      name,
		MediaType: doc.MimeType,
		Size:      int64(len(data)),
		Data:      data,
	}, nil
}

// PhotoFile downloads the largest size of a photo. Telegram re-encodes
// photos as JPEG.
func PhotoFile(ctx context.Context, b *bot.Bot, sizes []models.PhotoSize) (domain.LocalFile, error) {
	if len(sizes) == 0 {
		return domain.LocalFile{}, fmt.Errorf("photo has no sizes")
	}
	largest := sizes[len(sizes)-1]

	data, _, err := DownloadFile(ctx, b, largest.FileID)
	if err != nil {
		return domain.LocalFile{}, err
	}
	return domain.LocalFile{
		Name:      "photo_" + largest.FileUniqueID + ".jpg",
		MediaType: "image/jpeg",
		Size:      int64(len(data)),
		Data:      data,
	}, nil
}

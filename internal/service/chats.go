package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ElarizT/Mavericks/internal/domain"
)

// ChatService manages the server-side chat list and history.
type ChatService struct {
	api *APIClient
}

func NewChatService(api *APIClient) *ChatService {
	return &ChatService{api: api}
}

func (s *ChatService) List(ctx context.Context, offset, limit int) ([]domain.Chat, error) {
	params := url.Values{}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp struct {
		Chats []domain.Chat `json:"chats"`
	}
	if err := s.api.Get(ctx, "/api/chats", params, &resp); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return resp.Chats, nil
}

func (s *ChatService) History(ctx context.Context, sessionID string, page, perPage int) (*domain.ChatHistory, error) {
	params := url.Values{"session_id": {sessionID}}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if perPage > 0 {
		params.Set("per_page", strconv.Itoa(perPage))
	}

	var history domain.ChatHistory
	if err := s.api.Get(ctx, "/api/chat", params, &history); err != nil {
		return nil, fmt.Errorf("get chat history: %w", err)
	}
	return &history, nil
}

func (s *ChatService) Create(ctx context.Context, sessionID string) error {
	if err := s.api.PostJSON(ctx, "/api/chats", map[string]string{"session_id": sessionID}, nil); err != nil {
		return fmt.Errorf("create chat: %w", err)
	}
	return nil
}

func (s *ChatService) Rename(ctx context.Context, sessionID, title string) error {
	params := url.Values{"session_id": {sessionID}}
	if err := s.api.Patch(ctx, "/api/chat", params, map[string]string{"title": title}, nil); err != nil {
		return fmt.Errorf("rename chat: %w", err)
	}
	return nil
}

func (s *ChatService) Delete(ctx context.Context, sessionID string) error {
	if err := s.api.Delete(ctx, "/api/chat", url.Values{"session_id": {sessionID}}, nil); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return nil
}

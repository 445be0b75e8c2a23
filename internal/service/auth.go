package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/ElarizT/Mavericks/internal/credstore"
	"github.com/ElarizT/Mavericks/internal/domain"
)

type AuthService struct {
	api   *APIClient
	creds *credstore.Credentials
}

func NewAuthService(api *APIClient, creds *credstore.Credentials) *AuthService {
	return &AuthService{api: api, creds: creds}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

// CurrentUser returns the stored user, or nil when there is no token or the
// record cannot be read. An unreadable record logs the user out.
func (s *AuthService) CurrentUser(ctx context.Context) (*domain.User, error) {
	token, err := s.creds.Token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, nil
	}

	user, err := s.creds.User(ctx)
	if err != nil {
		slog.Warn("stored user record unreadable, logging out", "error", err)
		if err := s.Logout(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return user, nil
}

// Login exchanges a username and password for a bearer token and stores it.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", username)
	form.Set("password", password)

	var resp tokenResponse
	if err := s.api.PostForm(ctx, "/api/login/access-token", form, &resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login: empty access token")
	}

	user := &domain.User{
		Username:    username,
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
	}
	if err := s.creds.SaveLogin(ctx, user, resp.RefreshToken); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) Signup(ctx context.Context, username, password string) (*domain.Account, error) {
	body := map[string]string{"username": username, "password": password}

	var account domain.Account
	if err := s.api.PostJSON(ctx, "/api/register", body, &account); err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	return &account, nil
}

func (s *AuthService) Logout(ctx context.Context) error {
	return s.creds.Clear(ctx)
}

func (s *AuthService) Profile(ctx context.Context, id string) (*domain.Profile, error) {
	var profile domain.Profile
	if err := s.api.Get(ctx, "/api/profiles/"+url.PathEscape(id), nil, &profile); err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &profile, nil
}

// UpdateProfile sets how many earlier messages the backend feeds the model.
func (s *AuthService) UpdateProfile(ctx context.Context, id string, maxLastMessages int) (*domain.Profile, error) {
	body := map[string]int{"max_last_messages": maxLastMessages}

	var profile domain.Profile
	if err := s.api.Patch(ctx, "/api/profiles/"+url.PathEscape(id), nil, body, &profile); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return &profile, nil
}

// Package credstore keeps the bearer token and user record shared by every
// chat session of the process.
package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ElarizT/Mavericks/internal/config"
	"github.com/ElarizT/Mavericks/internal/domain"
)

// Store is a durable string key-value store.
type Store interface {
	// Get returns domain.ErrCredentialNotFound when key is unset.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Credentials reads and writes the login state under fixed keys.
type Credentials struct {
	store Store
}

func NewCredentials(store Store) *Credentials {
	return &Credentials{store: store}
}

// Token returns the stored bearer token or "" when there is none.
func (c *Credentials) Token(ctx context.Context) (string, error) {
	return c.get(ctx, config.TokenKey)
}

func (c *Credentials) RefreshToken(ctx context.Context) (string, error) {
	return c.get(ctx, config.RefreshTokenKey)
}

// User returns the stored user record, nil when absent.
func (c *Credentials) User(ctx context.Context) (*domain.User, error) {
	raw, err := c.get(ctx, config.UserKey)
	if err != nil || raw == "" {
		return nil, err
	}
	var u domain.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil, fmt.Errorf("decode user record: %w", err)
	}
	return &u, nil
}

// SaveLogin stores the tokens and the user record of a successful login.
func (c *Credentials) SaveLogin(ctx context.Context, user *domain.User, refreshToken string) error {
	if err := c.store.Set(ctx, config.TokenKey, user.AccessToken); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if refreshToken != "" {
		if err := c.store.Set(ctx, config.RefreshTokenKey, refreshToken); err != nil {
			return fmt.Errorf("store refresh token: %w", err)
		}
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}
	if err := c.store.Set(ctx, config.UserKey, string(raw)); err != nil {
		return fmt.Errorf("store user record: %w", err)
	}
	return nil
}

// Clear removes the token, the refresh token and the user record together.
func (c *Credentials) Clear(ctx context.Context) error {
	if err := c.store.Delete(ctx, config.TokenKey, config.RefreshTokenKey, config.UserKey); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

func (c *Credentials) get(ctx context.Context, key string) (string, error) {
	v, err := c.store.Get(ctx, key)
	if errors.Is(err, domain.ErrCredentialNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

package domain

import "time"

// User is the lightweight record kept next to the bearer token.
type User struct {
	ID          string     `json:"id,omitempty"`
	Username    string     `json:"username"`
	AccessToken string     `json:"accessToken"`
	TokenType   string     `json:"tokenType"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// Account is returned by signup.
type Account struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Profile holds per-user chat preferences.
type Profile struct {
	ID              string `json:"id"`
	MaxLastMessages int    `json:"max_last_messages"`
}

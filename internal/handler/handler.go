package handler

import (
	"github.com/go-telegram/bot"

	"github.com/ElarizT/Mavericks/internal/service"
)

// Handler holds all dependencies needed by command and callback handlers.
type Handler struct {
	bot      *bot.Bot
	sessions *Sessions
	auth     *service.AuthService
	models   *service.ModelService
	chats    *service.ChatService
}

// Deps contains all dependencies required to construct a Handler.
type Deps struct {
	Bot      *bot.Bot
	Sessions *Sessions
	Auth     *service.AuthService
	Models   *service.ModelService
	Chats    *service.ChatService
}

// New creates a new Handler from the provided dependencies.
func New(deps Deps) *Handler {
	return &Handler{
		bot:      deps.Bot,
		sessions: deps.Sessions,
		auth:     deps.Auth,
		models:   deps.Models,
		chats:    deps.Chats,
	}
}

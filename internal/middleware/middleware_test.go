package middleware

import (
	"context"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"

	"github.com/ElarizT/Mavericks/internal/service"
)

func TestChatLimiter(t *testing.T) {
	l := NewChatLimiter(3)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow(1), i)
	}
	assert.False(t, l.Allow(1))

	// Chats are limited independently.
	assert.True(t, l.Allow(2))
}

func TestChatLimiter_Disabled(t *testing.T) {
	l := NewChatLimiter(0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow(1))
	}
}

func TestMessageKind(t *testing.T) {
	assert.Equal(t, "document", messageKind(&models.Message{Document: &models.Document{FileID: "d"}}))
	assert.Equal(t, "photo", messageKind(&models.Message{Photo: []models.PhotoSize{{FileID: "p"}}}))
	assert.Equal(t, "message", messageKind(&models.Message{Text: "hi"}))
}

func TestRecover_SwallowsPanic(t *testing.T) {
	var resets int
	handler := Recover(func(int64) { resets++ })(func(ctx context.Context, b *bot.Bot, update *models.Update) {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		handler(context.Background(), nil, &models.Update{ID: 7})
	})
	assert.Zero(t, resets)
}

func TestUpdateChatID(t *testing.T) {
	assert.EqualValues(t, 42, updateChatID(&models.Update{Message: &models.Message{Chat: models.Chat{ID: 42}}}))
	assert.EqualValues(t, 9, updateChatID(&models.Update{CallbackQuery: &models.CallbackQuery{
		Message: models.MaybeInaccessibleMessage{Message: &models.Message{Chat: models.Chat{ID: 9}}},
	}}))
	assert.Zero(t, updateChatID(&models.Update{}))
}

type countingSessions struct{ calls []int64 }

func (c *countingSessions) Session(ctx context.Context, b *bot.Bot, chatID int64) (*service.SessionController, error) {
	c.calls = append(c.calls, chatID)
	return nil, nil
}

func TestSessionLoader_SkipsNew(t *testing.T) {
	sessions := &countingSessions{}
	var handled int
	handler := SessionLoader(sessions)(func(ctx context.Context, b *bot.Bot, update *models.Update) {
		handled++
		assert.Nil(t, GetSession(ctx))
	})
	send := func(text string) {
		handler(context.Background(), nil, &models.Update{Message: &models.Message{Chat: models.Chat{ID: 5}, Text: text}})
	}

	send("/new")
	send("/new@lawco_bot")
	send("/new contract review")
	assert.Empty(t, sessions.calls)

	send("/news")
	send("hello")
	assert.Equal(t, []int64{5, 5}, sessions.calls)
	assert.Equal(t, 5, handled)
}

func TestIsCommand(t *testing.T) {
	assert.True(t, isCommand("/new", "new"))
	assert.True(t, isCommand("/new@bot arg", "new"))
	assert.False(t, isCommand("/newer", "new"))
	assert.False(t, isCommand("new", "new"))
	assert.False(t, isCommand("", "new"))
}

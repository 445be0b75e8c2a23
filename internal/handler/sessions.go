package handler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"

	"github.com/ElarizT/Mavericks/internal/domain"
	"github.com/ElarizT/Mavericks/internal/render"
	"github.com/ElarizT/Mavericks/internal/service"
	tg "github.com/ElarizT/Mavericks/internal/telegram"
)

const sendTimeout = 30 * time.Second

// Sessions maps Telegram chats to their chat sessions. Each chat gets its own
// controller, created on first contact.
type Sessions struct {
	newSession func() *service.SessionController

	mu    sync.Mutex
	chats map[int64]*chatSession
}

func NewSessions(newSession func() *service.SessionController) *Sessions {
	return &Sessions{
		newSession: newSession,
		chats:      make(map[int64]*chatSession),
	}
}

// Session returns the live session of chatID, creating and starting one when
// needed. The start error is only reported to the caller that triggered it.
func (s *Sessions) Session(ctx context.Context, b *bot.Bot, chatID int64) (*service.SessionController, error) {
	s.mu.Lock()
	cs, ok := s.chats[chatID]
	if !ok || !cs.ctrl.Alive() {
		cs = newChatSession(s.newSession(), b, chatID)
		s.chats[chatID] = cs
	}
	s.mu.Unlock()

	return cs.ctrl, cs.ctrl.Start(ctx)
}

// Reset closes the session of chatID. The next update starts a new one.
func (s *Sessions) Reset(chatID int64) {
	s.mu.Lock()
	cs, ok := s.chats[chatID]
	delete(s.chats, chatID)
	s.mu.Unlock()

	if ok {
		cs.close()
	}
}

// CloseAll closes every session.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	chats := s.chats
	s.chats = make(map[int64]*chatSession)
	s.mu.Unlock()

	for _, cs := range chats {
		cs.close()
	}
}

// TrackAttachments makes messageID the message that mirrors the attachment
// list of chatID.
func (s *Sessions) TrackAttachments(chatID int64, messageID int) {
	s.mu.Lock()
	cs, ok := s.chats[chatID]
	s.mu.Unlock()
	if ok {
		cs.setAttachmentMessage(messageID)
	}
}

// chatSession relays controller events into one Telegram chat.
type chatSession struct {
	ctrl        *service.SessionController
	bot         *bot.Bot
	chatID      int64
	unsubscribe func()

	mu           sync.Mutex
	stopTyping   context.CancelFunc
	attachMsgID  int
	wasConnected bool
	dropped      bool
}

func newChatSession(ctrl *service.SessionController, b *bot.Bot, chatID int64) *chatSession {
	cs := &chatSession{ctrl: ctrl, bot: b, chatID: chatID}
	cs.unsubscribe = ctrl.Subscribe(cs.handle)
	return cs
}

func (cs *chatSession) handle(ev service.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	switch ev.Kind {
	case service.EventMessage:
		if ev.Message.IsUser() {
			return
		}
		if err := tg.SendLongMessage(ctx, cs.bot, cs.chatID, render.Message(ev.Message), nil); err != nil {
			slog.Error("relay agent message", "chat_id", cs.chatID, "error", err)
		}
	case service.EventTyping:
		cs.setTyping(ev.Typing)
	case service.EventStatus:
		cs.statusChanged(ctx, ev.Status)
	case service.EventAttachments:
		cs.attachmentsChanged(ctx, ev.Attachments)
	}
}

func (cs *chatSession) setTyping(on bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if on && cs.stopTyping == nil {
		cs.stopTyping = tg.StartTyping(context.Background(), cs.bot, cs.chatID)
		return
	}
	if !on && cs.stopTyping != nil {
		cs.stopTyping()
		cs.stopTyping = nil
	}
}

func (cs *chatSession) statusChanged(ctx context.Context, status domain.ConnectionStatus) {
	cs.mu.Lock()
	var notice string
	switch status {
	case domain.StatusConnected:
		if cs.dropped {
			notice = "✅ Reconnected to the server."
		}
		cs.wasConnected = true
		cs.dropped = false
	case domain.StatusDisconnected:
		if cs.wasConnected && !cs.dropped {
			notice = "⚠️ Connection to the server lost. Reconnecting..."
			cs.dropped = true
		}
	}
	cs.mu.Unlock()

	if notice == "" {
		return
	}
	if _, err := tg.SendText(ctx, cs.bot, cs.chatID, notice, nil); err != nil {
		slog.Error("send status notice", "chat_id", cs.chatID, "error", err)
	}
}

func (cs *chatSession) setAttachmentMessage(messageID int) {
	cs.mu.Lock()
	cs.attachMsgID = messageID
	cs.mu.Unlock()
}

func (cs *chatSession) attachmentsChanged(ctx context.Context, list []domain.AttachedFile) {
	cs.mu.Lock()
	msgID := cs.attachMsgID
	cs.mu.Unlock()
	if msgID == 0 {
		return
	}

	if err := tg.EditText(ctx, cs.bot, cs.chatID, msgID, render.Attachments(list), tg.AttachmentKeyboard(list)); err != nil {
		slog.Warn("update attachment message", "chat_id", cs.chatID, "error", err)
	}
}

func (cs *chatSession) close() {
	cs.unsubscribe()
	cs.setTyping(false)
	cs.ctrl.Close()
}

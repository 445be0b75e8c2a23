package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ElarizT/Mavericks/internal/config"
	"github.com/ElarizT/Mavericks/internal/domain"
	"github.com/ElarizT/Mavericks/internal/realtime"
)

// Channel is the realtime transport a session talks through.
type Channel interface {
	Connect(ctx context.Context) error
	OnMessage(h realtime.Handler)
	OnStatus(fn func(domain.ConnectionStatus))
	OnDisconnect(fn func(error))
	Send(ctx context.Context, msg realtime.OutboundMessage) error
	Status() domain.ConnectionStatus
	Close()
}

type SessionOptions struct {
	Username          string
	Password          string
	ReconnectAttempts int
	ReconnectBackoff  time.Duration
	TypingTimeout     time.Duration
	PreviewDir        string
}

func SessionOptionsFromConfig(cfg *config.Config) SessionOptions {
	return SessionOptions{
		Username:          cfg.AuthUsername,
		Password:          cfg.AuthPassword,
		ReconnectAttempts: cfg.ReconnectAttempts,
		ReconnectBackoff:  cfg.ReconnectBackoff,
		TypingTimeout:     cfg.TypingTimeout,
		PreviewDir:        cfg.PreviewDir,
	}
}

type EventKind string

const (
	EventMessage     EventKind = "message"
	EventTyping      EventKind = "typing"
	EventStatus      EventKind = "status"
	EventAttachments EventKind = "attachments"
	EventUploading   EventKind = "uploading"
)

// Event is delivered to subscribers after a state change. Only the field
// matching Kind is set.
type Event struct {
	Kind        EventKind
	Message     domain.Message
	Typing      bool
	Status      domain.ConnectionStatus
	Attachments []domain.AttachedFile
	Uploading   bool
}

// SessionState is a point-in-time copy of everything a presentation layer shows.
type SessionState struct {
	Session         domain.Session
	Messages        []domain.Message
	Typing          bool
	Uploading       bool
	Attachments     []domain.AttachedFile
	Model           *domain.ProviderConfig
	Placeholder     string
	ComposerEnabled bool
}

// SessionController orchestrates one chat session: authentication, the
// realtime channel, the message log and the composer attachments.
type SessionController struct {
	auth    *AuthService
	models  *ModelService
	files   *FileService
	channel Channel
	opts    SessionOptions
	uploads *UploadCoordinator

	ctx          context.Context
	cancel       context.CancelFunc
	alive        atomic.Bool
	reconnecting atomic.Bool
	once         sync.Once

	mu          sync.Mutex
	session     domain.Session
	messages    []domain.Message
	typing      bool
	typingTimer *time.Timer
	uploading   bool
	model       *domain.ProviderConfig

	subMu     sync.Mutex
	subs      map[int]func(Event)
	nextSubID int
}

func NewSessionController(auth *AuthService, models *ModelService, files *FileService, channel Channel, opts SessionOptions) *SessionController {
	ctx, cancel := context.WithCancel(context.Background())
	c := &SessionController{
		auth:    auth,
		models:  models,
		files:   files,
		channel: channel,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		session: domain.Session{Status: domain.StatusDisconnected},
		subs:    make(map[int]func(Event)),
	}
	c.alive.Store(true)
	c.uploads = NewUploadCoordinator(c, opts.PreviewDir)
	c.uploads.OnChange(func(list []domain.AttachedFile) {
		c.emit(Event{Kind: EventAttachments, Attachments: list})
	})
	return c
}

// Start authenticates, connects the channel and loads the model config. It
// runs its steps at most once. Missing credentials are not an error; the
// session simply stays unauthenticated.
func (c *SessionController) Start(ctx context.Context) error {
	var err error
	c.once.Do(func() { err = c.start(ctx) })
	return err
}

func (c *SessionController) start(ctx context.Context) error {
	ctx, stop := c.bind(ctx)
	defer stop()

	user, err := c.auth.CurrentUser(ctx)
	if err != nil {
		slog.Error("read current user", "error", err)
	}
	if user == nil {
		if c.opts.Username == "" || c.opts.Password == "" {
			slog.Warn("no stored user and no credentials configured, staying unauthenticated")
			return nil
		}
		user, err = c.auth.Login(ctx, c.opts.Username, c.opts.Password)
		if err != nil {
			if !c.alive.Load() {
				return domain.ErrSessionClosed
			}
			slog.Error("auto-login failed", "error", err)
			return nil
		}
		slog.Info("auto-login succeeded", "username", user.Username)
	}

	sessionID := uuid.NewString()
	if !c.write(func() {
		c.session.Authenticated = true
		c.session.ID = sessionID
	}) {
		return domain.ErrSessionClosed
	}

	// Connection status only ever comes from the channel.
	c.channel.OnMessage(c.receive)
	c.channel.OnStatus(c.statusChanged)
	c.channel.OnDisconnect(c.dropped)

	err = c.channel.Connect(ctx)
	if !c.alive.Load() {
		// Close may have missed a socket dialed concurrently.
		c.channel.Close()
		return domain.ErrSessionClosed
	}
	if err != nil {
		slog.Error("connect channel", "session_id", sessionID, "error", err)
		return fmt.Errorf("connect channel: %w", err)
	}

	model, err := c.models.First(ctx)
	if err != nil {
		slog.Error("fetch model configs", "session_id", sessionID, "error", err)
		return nil
	}
	if model == nil {
		slog.Warn("model config listing is empty", "session_id", sessionID)
		return nil
	}
	c.write(func() { c.model = model })
	slog.Info("session started", "session_id", sessionID, "provider", model.Provider, "llm_name", model.LLMName())
	return nil
}

// bind returns ctx additionally cancelled by Close.
func (c *SessionController) bind(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(c.ctx, cancel)
	return ctx, func() {
		stopAfter()
		cancel()
	}
}

// SendMessage appends a local user message and transmits it. fileIDs are
// remote ids of already uploaded files.
func (c *SessionController) SendMessage(ctx context.Context, text string, fileIDs []string) error {
	if !c.alive.Load() {
		return domain.ErrSessionClosed
	}

	c.mu.Lock()
	model := c.model
	sessionID := c.session.ID
	c.mu.Unlock()

	if !model.Usable() {
		slog.Error("no model configuration available")
		return domain.ErrNoModelConfig
	}
	if sessionID == "" {
		slog.Error("no session id available")
		return domain.ErrNoSession
	}

	c.setTyping(true)

	msg := domain.Message{Type: domain.MessageTypeUser, Data: text}
	if len(fileIDs) > 0 {
		msg.Files = make([]domain.FileRef, len(fileIDs))
		for i, id := range fileIDs {
			msg.Files[i] = domain.FileRef{ID: id}
		}
	}
	c.appendMessage(msg)

	out := realtime.OutboundMessage{
		Message:  text,
		LLMName:  model.LLMName(),
		Provider: model.Provider,
		Files:    fileIDs,
	}
	if err := c.channel.Send(ctx, out); err != nil {
		slog.Error("send message", "session_id", sessionID, "error", err)
		c.setTyping(false)
		return err
	}
	return nil
}

// Submit sends text together with every ready attachment, then drops the
// sent attachments. Loading and failed attachments stay for retry.
func (c *SessionController) Submit(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	ids := c.uploads.ReadyIDs()
	if text == "" && len(ids) == 0 {
		return domain.ErrEmptyMessage
	}
	if err := c.SendMessage(ctx, text, ids); err != nil {
		return err
	}
	c.uploads.RemoveSent(ids)
	return nil
}

// UploadFile uploads one file outside any request or session scope.
func (c *SessionController) UploadFile(ctx context.Context, file domain.LocalFile) (domain.FileRef, error) {
	c.setUploading(true)
	defer c.setUploading(false)

	id, err := c.files.Upload(ctx, file, "", "")
	if err != nil {
		return domain.FileRef{}, err
	}
	return domain.FileRef{ID: id, Name: file.Name, Size: file.Size}, nil
}

// Attachments returns the composer attachment list of this session.
func (c *SessionController) Attachments() *UploadCoordinator {
	return c.uploads
}

func (c *SessionController) State() SessionState {
	c.mu.Lock()
	st := SessionState{
		Session:   c.session,
		Messages:  append([]domain.Message(nil), c.messages...),
		Typing:    c.typing,
		Uploading: c.uploading,
	}
	if c.model != nil {
		m := *c.model
		st.Model = &m
	}
	c.mu.Unlock()

	st.Attachments = c.uploads.List()
	st.Placeholder = placeholder(st.Session)
	st.ComposerEnabled = st.Session.Authenticated && st.Session.Status == domain.StatusConnected && !st.Uploading
	return st
}

// Subscribe registers fn for state change events and returns a function that
// removes it. fn is called without any controller lock held.
func (c *SessionController) Subscribe(fn func(Event)) func() {
	c.subMu.Lock()
	id := c.nextSubID
	c.nextSubID++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

// Alive reports whether Close has not been called yet.
func (c *SessionController) Alive() bool {
	return c.alive.Load()
}

// Close stops the session. Pending work finishing afterwards no longer
// changes its state.
func (c *SessionController) Close() {
	if !c.alive.CompareAndSwap(true, false) {
		return
	}
	c.cancel()
	c.channel.Close()
	c.uploads.Close()

	c.mu.Lock()
	if c.typingTimer != nil {
		c.typingTimer.Stop()
		c.typingTimer = nil
	}
	c.mu.Unlock()

	c.subMu.Lock()
	c.subs = make(map[int]func(Event))
	c.subMu.Unlock()
}

func (c *SessionController) receive(msg domain.Message) {
	if string(msg.Type) == config.AgentLogType {
		return
	}
	if !c.appendMessage(msg) {
		return
	}
	c.setTyping(false)
}

func (c *SessionController) statusChanged(status domain.ConnectionStatus) {
	changed := false
	if !c.write(func() {
		changed = c.session.Status != status
		c.session.Status = status
	}) || !changed {
		return
	}
	c.emit(Event{Kind: EventStatus, Status: status})
}

func (c *SessionController) dropped(err error) {
	if !c.alive.Load() {
		return
	}
	if c.opts.ReconnectAttempts <= 0 {
		slog.Warn("channel dropped, reconnect disabled", "error", err)
		return
	}
	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	go c.reconnect()
}

func (c *SessionController) reconnect() {
	defer c.reconnecting.Store(false)

	backoff := c.opts.ReconnectBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	for attempt := 1; attempt <= c.opts.ReconnectAttempts; attempt++ {
		timer := time.NewTimer(backoff)
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		if !c.alive.Load() {
			return
		}

		err := c.channel.Connect(c.ctx)
		if !c.alive.Load() {
			c.channel.Close()
			return
		}
		if err == nil {
			slog.Info("channel reconnected", "attempt", attempt)
			return
		}
		if errors.Is(err, domain.ErrNotAuthenticated) {
			slog.Error("reconnect aborted, no token", "error", err)
			return
		}
		slog.Warn("reconnect failed", "attempt", attempt, "backoff", backoff, "error", err)

		backoff *= 2
		if backoff > config.MaxReconnectBackoff {
			backoff = config.MaxReconnectBackoff
		}
	}
	slog.Error("giving up reconnecting", "attempts", c.opts.ReconnectAttempts)
}

func (c *SessionController) appendMessage(msg domain.Message) bool {
	if !c.write(func() { c.messages = append(c.messages, msg) }) {
		return false
	}
	c.emit(Event{Kind: EventMessage, Message: msg})
	return true
}

func (c *SessionController) setTyping(on bool) {
	changed := false
	if !c.write(func() {
		changed = c.typing != on
		c.typing = on
		if c.typingTimer != nil {
			c.typingTimer.Stop()
			c.typingTimer = nil
		}
		if on && c.opts.TypingTimeout > 0 {
			c.typingTimer = time.AfterFunc(c.opts.TypingTimeout, func() { c.setTyping(false) })
		}
	}) || !changed {
		return
	}
	c.emit(Event{Kind: EventTyping, Typing: on})
}

func (c *SessionController) setUploading(on bool) {
	changed := false
	if !c.write(func() {
		changed = c.uploading != on
		c.uploading = on
	}) || !changed {
		return
	}
	c.emit(Event{Kind: EventUploading, Uploading: on})
}

// write applies fn under the state lock unless the controller is closed.
func (c *SessionController) write(fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.alive.Load() {
		return false
	}
	fn()
	return true
}

func (c *SessionController) emit(ev Event) {
	if !c.alive.Load() {
		return
	}
	c.subMu.Lock()
	subs := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.subMu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
}

func placeholder(s domain.Session) string {
	switch {
	case !s.Authenticated:
		return config.PlaceholderAuthenticating
	case s.Status != domain.StatusConnected:
		return config.PlaceholderConnecting
	default:
		return config.PlaceholderReady
	}
}

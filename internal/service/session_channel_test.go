package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ElarizT/Mavericks/internal/credstore"
	"github.com/ElarizT/Mavericks/internal/domain"
	"github.com/ElarizT/Mavericks/internal/realtime"
)

// gatedToken blocks Token until released, ignoring the caller's context.
type gatedToken struct {
	entered chan struct{}
	release chan struct{}
}

func (g *gatedToken) Token(context.Context) (string, error) {
	close(g.entered)
	<-g.release
	return "tok", nil
}

func newAcceptingServer(t *testing.T) (string, *atomic.Int32) {
	t.Helper()
	var accepted atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
		if err != nil {
			return
		}
		accepted.Add(1)
		for {
			if _, _, err := conn.Read(context.Background()); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http") + "/frontend/ws", &accepted
}

func TestSessionController_CloseDuringConnect(t *testing.T) {
	wsURL, accepted := newAcceptingServer(t)
	tokens := &gatedToken{entered: make(chan struct{}), release: make(chan struct{})}
	channel := realtime.NewChannel(wsURL, tokens)
	fx := newSessionFixtureWith(t, modelConfigsJSON, autoLogin(), func(*credstore.Credentials) Channel { return channel })

	errc := make(chan error, 1)
	go func() { errc <- fx.ctrl.Start(context.Background()) }()

	select {
	case <-tokens.entered:
	case <-time.After(5 * time.Second):
		t.Fatal("connect never asked for a token")
	}
	fx.ctrl.Close()
	close(tokens.release)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, domain.ErrSessionClosed)
	case <-time.After(5 * time.Second):
		t.Fatal("Start did not return")
	}
	assert.False(t, fx.ctrl.Alive())
	assert.Equal(t, domain.StatusDisconnected, channel.Status())
	assert.Zero(t, accepted.Load())
}

func TestSessionController_CloseReleasesRealSocket(t *testing.T) {
	wsURL, accepted := newAcceptingServer(t)
	var channel *realtime.Channel
	fx := newSessionFixtureWith(t, modelConfigsJSON, autoLogin(), func(creds *credstore.Credentials) Channel {
		channel = realtime.NewChannel(wsURL, creds)
		return channel
	})

	require.NoError(t, fx.ctrl.Start(context.Background()))
	assert.Equal(t, domain.StatusConnected, fx.ctrl.State().Session.Status)
	assert.Eventually(t, func() bool { return accepted.Load() == 1 }, time.Second, 5*time.Millisecond)

	fx.ctrl.Close()
	assert.Equal(t, domain.StatusDisconnected, channel.Status())
}

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anstrom/netsight/internal/logging"
	"github.com/anstrom/netsight/internal/metrics"
	"github.com/anstrom/netsight/internal/session"
)

type hubEnv struct {
	hub    *SessionHub
	server *httptest.Server
}

func newHubEnv(t *testing.T, current func() session.Snapshot) *hubEnv {
	t.Helper()
	hub := NewSessionHub(current, logging.Discard(), metrics.Noop{})
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		hub.Close()
		server.Close()
	})
	return &hubEnv{hub: hub, server: server}
}

func (e *hubEnv) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(e.server.URL, "http")
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readSnapshot(t *testing.T, conn *websocket.Conn) session.Snapshot {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Type      string           `json:"type"`
		Timestamp time.Time        `json:"timestamp"`
		Data      session.Snapshot `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageSessionUpdate, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())
	return msg.Data
}

func TestSessionHubSendsCurrentSnapshotOnConnect(t *testing.T) {
	current := session.Snapshot{ID: "abc", Phase: session.PhaseScanning, Target: "10.0.0.0/24", Progress: 40}
	env := newHubEnv(t, func() session.Snapshot { return current })

	conn := env.dial(t)
	got := readSnapshot(t, conn)

	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, session.PhaseScanning, got.Phase)
	assert.Equal(t, 40, got.Progress)
}

func TestSessionHubBroadcastsToEveryClient(t *testing.T) {
	env := newHubEnv(t, func() session.Snapshot { return session.Snapshot{Phase: session.PhaseIdle} })

	first := env.dial(t)
	second := env.dial(t)
	readSnapshot(t, first)
	readSnapshot(t, second)
	require.Eventually(t, func() bool { return env.hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	env.hub.Publish(session.Snapshot{ID: "s1", Phase: session.PhaseComplete, Progress: session.ProgressDone})

	for _, conn := range []*websocket.Conn{first, second} {
		got := readSnapshot(t, conn)
		assert.Equal(t, "s1", got.ID)
		assert.Equal(t, session.PhaseComplete, got.Phase)
		assert.Equal(t, session.ProgressDone, got.Progress)
	}
}

func TestSessionHubUnregistersClosedClients(t *testing.T) {
	env := newHubEnv(t, func() session.Snapshot { return session.Snapshot{Phase: session.PhaseIdle} })

	conn := env.dial(t)
	readSnapshot(t, conn)
	require.Eventually(t, func() bool { return env.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return env.hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestSessionHubCloseDisconnectsClients(t *testing.T) {
	env := newHubEnv(t, func() session.Snapshot { return session.Snapshot{Phase: session.PhaseIdle} })

	conn := env.dial(t)
	readSnapshot(t, conn)
	require.Eventually(t, func() bool { return env.hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	env.hub.Close()
	assert.Zero(t, env.hub.ClientCount())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err, "connection is closed by the hub")

	// Closed hubs accept publishes without blocking and close idempotently.
	done := make(chan struct{})
	go func() {
		env.hub.Publish(session.Snapshot{Phase: session.PhaseIdle})
		env.hub.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish after close blocked")
	}
}

func TestSessionHubPublishKeepsPhaseChangesWhenQueueFull(t *testing.T) {
	// No run loop, so the broadcast queue is never drained.
	h := &SessionHub{
		logger:    logging.Discard(),
		metrics:   metrics.Noop{},
		broadcast: make(chan []byte, 2),
		done:      make(chan struct{}),
	}

	h.Publish(session.Snapshot{ID: "s1", Phase: session.PhaseScanning, Progress: 2})
	h.Publish(session.Snapshot{ID: "s1", Phase: session.PhaseScanning, Progress: 4})
	h.Publish(session.Snapshot{ID: "s1", Phase: session.PhaseScanning, Progress: 6})
	h.Publish(session.Snapshot{ID: "s1", Phase: session.PhaseComplete, Progress: session.ProgressDone})

	require.Len(t, h.broadcast, 2)
	var queued []session.Snapshot
	for len(h.broadcast) > 0 {
		var msg struct {
			Data session.Snapshot `json:"data"`
		}
		require.NoError(t, json.Unmarshal(<-h.broadcast, &msg))
		queued = append(queued, msg.Data)
	}

	assert.Equal(t, 4, queued[0].Progress, "oldest update evicted, tick at full queue dropped")
	assert.Equal(t, session.PhaseComplete, queued[1].Phase)
	assert.Equal(t, session.ProgressDone, queued[1].Progress)
}

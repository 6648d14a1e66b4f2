package websocket

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luminagames/ludo-backend/internal/entity"
	"github.com/luminagames/ludo-backend/internal/rules"
)

type stubRegistry struct {
	mu          sync.Mutex
	disconnects []string
}

func (that *stubRegistry) Join(roomID, _, _ string) (*entity.Room, error) {
	return entity.NewRoom(roomID, entity.MaxPlayers), nil
}

func (that *stubRegistry) Disconnect(roomID, playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.disconnects = append(that.disconnects, roomID+"/"+playerID)
}

func (that *stubRegistry) Start(_, _ string) error { return nil }

func (that *stubRegistry) Roll(_, _ string) (int, error) { return 0, nil }

func (that *stubRegistry) Move(_, _ string, _, _ int) (*rules.Move, error) { return nil, nil }

func (that *stubRegistry) Disconnects() []string {
	that.mu.Lock()
	defer that.mu.Unlock()

	return append([]string(nil), that.disconnects...)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dialTestServer(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	return conn
}

func joinRoom(t *testing.T, conn *websocket.Conn, roomID, playerID string) {
	t.Helper()

	payload, err := json.Marshal(JoinRoomPayload{RoomID: roomID, PlayerID: playerID, Name: "Guest"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(Message{Action: "room:join", Payload: payload}))

	var reply Message
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, "room:join", reply.Action)
}

func TestServer_JoiningSecondRoomDetachesFirstIdentity(t *testing.T) {
	reg := &stubRegistry{}
	server := New(testLogger(), reg)

	ts := httptest.NewServer(http.HandlerFunc(server.serveWS))
	defer ts.Close()

	conn := dialTestServer(t, ts)
	defer conn.Close()

	// Given: a connection joined to one room
	joinRoom(t, conn, "room-a", "guest-1")
	require.Empty(t, reg.Disconnects())

	// When: the same connection joins a different room
	joinRoom(t, conn, "room-b", "guest-1")

	// Then: the abandoned identity is reported disconnected and room A has
	// no subscribers left
	assert.Equal(t, []string{"room-a/guest-1"}, reg.Disconnects())

	server.mu.RLock()
	_, stillSubscribed := server.rooms["room-a"]
	server.mu.RUnlock()
	assert.False(t, stillSubscribed)
}

func TestServer_RebindingPlayerIdentityDetachesPreviousOne(t *testing.T) {
	reg := &stubRegistry{}
	server := New(testLogger(), reg)

	ts := httptest.NewServer(http.HandlerFunc(server.serveWS))
	defer ts.Close()

	conn := dialTestServer(t, ts)
	defer conn.Close()

	// Given: a connection bound to one player in a room
	joinRoom(t, conn, "room-a", "guest-1")

	// When: the same connection rebinds to another player in the same room
	joinRoom(t, conn, "room-a", "guest-2")

	// Then: the first identity is reported disconnected
	assert.Equal(t, []string{"room-a/guest-1"}, reg.Disconnects())
}

func TestServer_BroadcastDropsUnwritableConnection(t *testing.T) {
	reg := &stubRegistry{}
	server := New(testLogger(), reg)

	ts := httptest.NewServer(http.HandlerFunc(server.serveWS))
	defer ts.Close()

	conn := dialTestServer(t, ts)
	defer conn.Close()

	joinRoom(t, conn, "room-a", "guest-1")

	// Kill the server-side connection underneath the subscriber so the next
	// write to it fails.
	server.mu.RLock()
	require.Len(t, server.rooms["room-a"], 1)
	var subscriber *client
	for c := range server.rooms["room-a"] {
		subscriber = c
	}
	server.mu.RUnlock()
	require.NoError(t, subscriber.conn.Close())

	server.Broadcast("room-a", "room:state", ErrorPayload{Error: "x"})

	// Then: the failing subscriber is unsubscribed instead of wedging
	// future broadcasts
	require.Eventually(t, func() bool {
		server.mu.RLock()
		defer server.mu.RUnlock()

		_, ok := server.rooms["room-a"]

		return !ok
	}, time.Second, 10*time.Millisecond)
}

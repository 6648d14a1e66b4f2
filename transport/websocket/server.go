package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/luminagames/ludo-backend/internal/entity"
	"github.com/luminagames/ludo-backend/internal/rules"
)

// writeWait bounds every websocket write so a stalled reader cannot block
// the caller forever.
const writeWait = 10 * time.Second

type registry interface {
	Join(roomID, playerID, name string) (*entity.Room, error)
	Disconnect(roomID, playerID string)
	Start(roomID, playerID string) error
	Roll(roomID, playerID string) (int, error)
	Move(roomID, playerID string, pieceID, dice int) (*rules.Move, error)
}

// client is one live websocket connection, attached to at most one room and
// player identity after a successful join.
type client struct {
	conn *websocket.Conn

	writeMu sync.Mutex

	roomID   string
	playerID string
}

func (that *client) send(action string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	_ = that.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err = that.conn.WriteJSON(Message{Action: action, Payload: raw}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

type Server struct {
	logger   *slog.Logger
	registry registry
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}

	handlers map[string]func(c *client, payload json.RawMessage) error
}

func New(logger *slog.Logger, reg registry) *Server {
	server := &Server{
		logger:   logger.With("component", "websocket"),
		registry: reg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		rooms:    make(map[string]map[*client]struct{}),
		handlers: make(map[string]func(*client, json.RawMessage) error),
	}

	server.handlers["room:join"] = server.handleJoinRoom
	server.handlers["game:start"] = server.handleStartGame
	server.handlers["dice:roll"] = server.handleRollDice
	server.handlers["piece:move"] = server.handleMovePiece

	return server
}

// SetRegistry wires the intent router after construction. The registry
// broadcasts through this server, so the two are built in tandem.
func (that *Server) SetRegistry(reg registry) {
	that.registry = reg
}

// Start serves websocket upgrades on /ws until the listener fails or the
// context is canceled.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", that.serveWS)

	srv := &http.Server{
		Addr:        ":" + port,
		Handler:     mux,
		ReadTimeout: 0, // connections are long-lived
		IdleTimeout: 0,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

func (that *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "serveWS")

	conn, err := that.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	c := &client{conn: conn}

	defer func() {
		that.detach(c)
		_ = conn.Close()
	}()

	for {
		var msg Message
		if err = conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("error reading message", "error", err)
			}

			return
		}

		handler, ok := that.handlers[msg.Action]
		if !ok {
			_ = c.send(msg.Action, ErrorPayload{Error: "unknown action"})
			continue
		}

		if err = handler(c, msg.Payload); err != nil {
			log.Error("error processing message", "action", msg.Action, "error", err)
		}
	}
}

// Broadcast implements room.Broadcaster: delivers the event to every
// connection subscribed to the room.
func (that *Server) Broadcast(roomID, action string, payload any) {
	that.mu.RLock()
	clients := make([]*client, 0, len(that.rooms[roomID]))
	for c := range that.rooms[roomID] {
		clients = append(clients, c)
	}
	that.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(action, payload); err != nil {
			that.logger.Error("dropping unresponsive connection", "roomID", roomID, "action", action, "error", err)
			that.drop(c)
		}
	}
}

// drop unsubscribes a connection whose writes fail and closes it, which
// wakes its read loop so the disconnect is reported through detach.
func (that *Server) drop(c *client) {
	that.mu.Lock()
	if c.roomID != "" {
		delete(that.rooms[c.roomID], c)
		if len(that.rooms[c.roomID]) == 0 {
			delete(that.rooms, c.roomID)
		}
	}
	that.mu.Unlock()

	_ = c.conn.Close()
}

func (that *Server) subscribe(c *client, roomID, playerID string) {
	that.mu.Lock()

	oldRoomID, oldPlayerID := c.roomID, c.playerID

	// A connection follows at most one room.
	if oldRoomID != "" && oldRoomID != roomID {
		delete(that.rooms[oldRoomID], c)
		if len(that.rooms[oldRoomID]) == 0 {
			delete(that.rooms, oldRoomID)
		}
	}

	if _, ok := that.rooms[roomID]; !ok {
		that.rooms[roomID] = make(map[*client]struct{})
	}

	that.rooms[roomID][c] = struct{}{}
	c.roomID = roomID
	c.playerID = playerID
	that.mu.Unlock()

	// Rebinding abandons the previous identity. The room must observe that
	// as a disconnect, or the player stays marked as having a live
	// connection it no longer has.
	if oldRoomID != "" && oldPlayerID != "" && (oldRoomID != roomID || oldPlayerID != playerID) {
		that.registry.Disconnect(oldRoomID, oldPlayerID)
		that.logger.Info("player detached by rebind", "roomID", oldRoomID, "playerID", oldPlayerID)
	}
}

// detach unsubscribes the connection and reports the disconnect to the
// registry if the client ever joined a room.
func (that *Server) detach(c *client) {
	that.mu.Lock()
	if c.roomID != "" {
		delete(that.rooms[c.roomID], c)
		if len(that.rooms[c.roomID]) == 0 {
			delete(that.rooms, c.roomID)
		}
	}
	roomID, playerID := c.roomID, c.playerID
	that.mu.Unlock()

	if roomID != "" && playerID != "" {
		that.registry.Disconnect(roomID, playerID)
		that.logger.Info("player disconnected", "roomID", roomID, "playerID", playerID)
	}
}

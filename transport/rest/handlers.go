package rest

import (
	"encoding/json"
	"net/http"

	"github.com/luminagames/ludo-backend/internal/entity"
)

type CreateRoomRequest struct {
	Name         string            `json:"name"`
	MaxPlayers   int               `json:"maxPlayers"`
	AICount      int               `json:"aiCount"`
	AIDifficulty entity.Difficulty `json:"aiDifficulty,omitempty"`
}

type CreateRoomResponse struct {
	Room     *entity.Room `json:"room"`
	PlayerID string       `json:"playerId"`
}

type ListRoomsResponse struct {
	Rooms []*entity.Room `json:"rooms"`
}

func (that *Server) roomsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		that.createRoom(w, r)
	case http.MethodGet:
		that.listRooms(w)
	default:
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	}
}

func (that *Server) createRoom(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "createRoom")

	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.AICount < 0 || req.AICount >= entity.MaxPlayers {
		http.Error(w, "aiCount must be between 0 and 3", http.StatusBadRequest)
		return
	}

	snapshot, host, err := that.registry.CreateRoom(req.Name, req.MaxPlayers, req.AICount, req.AIDifficulty)
	if err != nil {
		log.Error("failed to create room", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	log.Info("room created", "roomID", snapshot.ID)

	writeJSON(w, http.StatusCreated, CreateRoomResponse{Room: snapshot, PlayerID: host.ID})
}

func (that *Server) listRooms(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, ListRoomsResponse{Rooms: that.registry.Rooms()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Package devserver is an in-memory stand-in for the production backend,
// exposing the same REST surface and push endpoint. It backs the integration
// tests and the hidden dev-server command; it is a fixture, not a
// specification of the real backend.
package devserver

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bnema/roomtodo/internal/domain"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type Server struct {
	logger   *zap.Logger
	now      func() time.Time
	upgrader websocket.Upgrader

	mu    sync.Mutex
	rooms map[domain.RoomID]*roomState
}

type roomState struct {
	room  domain.Room
	todos []domain.Todo
	hub   *hub
}

func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		logger: logger,
		now:    time.Now,
		rooms:  map[domain.RoomID]*roomState{},
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler routes the REST surface under /api plus the push endpoint.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/todos", s.handleListTodos).Methods(http.MethodGet)
	api.HandleFunc("/todos", s.handleCreateTodo).Methods(http.MethodPost)
	api.HandleFunc("/todos", s.handleUpdateTodo).Methods(http.MethodPut)
	api.HandleFunc("/todos", s.handleDeleteTodo).Methods(http.MethodDelete)
	api.HandleFunc("/rooms", s.handleCreateRoom).Methods(http.MethodPost)
	api.HandleFunc("/rooms", s.handleGetRoom).Methods(http.MethodGet)
	api.HandleFunc("/realtime", s.handleRealtime).Methods(http.MethodGet)
	return r
}

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeEnvelope(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: status < http.StatusMultipleChoices,
		Message: message,
		Data:    data,
	})
}

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		writeEnvelope(w, http.StatusBadRequest, "room name is required", nil)
		return
	}

	now := s.now().UTC()
	room := domain.Room{
		ID:        domain.RoomID(uuid.NewString()),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.rooms[room.ID] = &roomState{room: room, hub: newHub(s.logger)}
	s.mu.Unlock()

	s.logger.Info("room created", zap.String("room", string(room.ID)), zap.String("name", name))
	writeEnvelope(w, http.StatusCreated, "room created", room)
}

func (s *Server) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	id := domain.RoomID(r.URL.Query().Get("id"))

	s.mu.Lock()
	state, ok := s.rooms[id]
	s.mu.Unlock()
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "room not found", nil)
		return
	}
	writeEnvelope(w, http.StatusOK, "room found", state.room)
}

func (s *Server) handleListTodos(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(r.URL.Query().Get("room"))

	s.mu.Lock()
	state, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		writeEnvelope(w, http.StatusNotFound, "room not found", nil)
		return
	}
	todos := make([]domain.Todo, len(state.todos))
	copy(todos, state.todos)
	s.mu.Unlock()

	writeEnvelope(w, http.StatusOK, "todos listed", todos)
}

func (s *Server) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(r.URL.Query().Get("room"))

	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	text := strings.TrimSpace(body.Text)
	if text == "" {
		writeEnvelope(w, http.StatusBadRequest, "todo text is required", nil)
		return
	}

	now := s.now().UTC()
	todo := domain.Todo{
		ID:        domain.TodoID(uuid.NewString()),
		RoomID:    roomID,
		Text:      text,
		Completed: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	state, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		writeEnvelope(w, http.StatusNotFound, "room not found", nil)
		return
	}
	state.todos = append(state.todos, todo)
	hub := state.hub
	s.mu.Unlock()

	hub.broadcast(domain.CreatedEvent(todo))
	writeEnvelope(w, http.StatusCreated, "todo created", todo)
}

func (s *Server) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(r.URL.Query().Get("room"))
	id := domain.TodoID(r.URL.Query().Get("id"))

	var update domain.TodoUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeEnvelope(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	text := strings.TrimSpace(update.Text)
	if text == "" {
		writeEnvelope(w, http.StatusBadRequest, "todo text is required", nil)
		return
	}

	s.mu.Lock()
	state, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		writeEnvelope(w, http.StatusNotFound, "room not found", nil)
		return
	}
	var updated *domain.Todo
	for i := range state.todos {
		if state.todos[i].ID == id {
			state.todos[i].Text = text
			state.todos[i].Completed = update.Completed
			state.todos[i].UpdatedAt = s.now().UTC()
			copied := state.todos[i]
			updated = &copied
			break
		}
	}
	hub := state.hub
	s.mu.Unlock()

	if updated == nil {
		writeEnvelope(w, http.StatusNotFound, "todo not found", nil)
		return
	}
	hub.broadcast(domain.UpdatedEvent(*updated))
	writeEnvelope(w, http.StatusOK, "todo updated", *updated)
}

func (s *Server) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(r.URL.Query().Get("room"))
	id := domain.TodoID(r.URL.Query().Get("id"))

	s.mu.Lock()
	state, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		writeEnvelope(w, http.StatusNotFound, "room not found", nil)
		return
	}
	var deleted *domain.Todo
	for i := range state.todos {
		if state.todos[i].ID == id {
			copied := state.todos[i]
			deleted = &copied
			state.todos = append(state.todos[:i], state.todos[i+1:]...)
			break
		}
	}
	hub := state.hub
	s.mu.Unlock()

	if deleted == nil {
		// A second delete of the same id lands here, so the endpoint is
		// deliberately not idempotent.
		writeEnvelope(w, http.StatusNotFound, "todo not found", nil)
		return
	}
	hub.broadcast(domain.DeletedEvent(*deleted))
	writeEnvelope(w, http.StatusOK, "todo deleted", nil)
}

func (s *Server) handleRealtime(w http.ResponseWriter, r *http.Request) {
	roomID := domain.RoomID(r.URL.Query().Get("room"))

	s.mu.Lock()
	state, ok := s.rooms[roomID]
	s.mu.Unlock()
	if !ok {
		writeEnvelope(w, http.StatusNotFound, "room not found", nil)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	state.hub.add(conn)
}

// InvalidateList broadcasts a full-refresh signal to every subscriber of the
// room. Exposed for tests and the dev-server command.
func (s *Server) InvalidateList(roomID domain.RoomID) {
	s.mu.Lock()
	state, ok := s.rooms[roomID]
	s.mu.Unlock()
	if ok {
		state.hub.broadcast(domain.ListInvalidatedEvent())
	}
}

package application

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/roomtodo/internal/domain"
	"github.com/bnema/roomtodo/internal/ports"
	"go.uber.org/zap"
)

// Controller owns the in-memory todo collection for the currently open room
// and keeps it consistent under its two input sources: the server's echoes of
// the local user's own REST actions, and realtime events from other clients.
// Both go through the same id-matched merge rules; whichever lands last wins.
type Controller struct {
	todos   ports.TodoAPI
	rooms   ports.RoomAPI
	dialer  ports.RealtimeDialer
	session ports.SessionStore
	logger  *zap.Logger
	clock   ports.Clock

	mu      sync.Mutex
	room    *domain.Room
	list    []domain.Todo
	channel *Channel
	notify  func()
}

func NewController(todos ports.TodoAPI, rooms ports.RoomAPI, dialer ports.RealtimeDialer, session ports.SessionStore, logger *zap.Logger, clock ports.Clock) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Controller{
		todos:   todos,
		rooms:   rooms,
		dialer:  dialer,
		session: session,
		logger:  logger,
		clock:   clock,
	}
}

// OnChange registers a callback invoked (on its own goroutine) whenever the
// collection content changes. Used by the live view; nil disables it.
func (c *Controller) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = fn
}

// CreateRoom creates a room on the backend and opens it.
func (c *Controller) CreateRoom(ctx context.Context, name string) (domain.Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Room{}, domain.ErrEmptyRoomName
	}
	room, err := c.rooms.CreateRoom(ctx, name)
	if err != nil {
		return domain.Room{}, err
	}
	if err := c.open(ctx, room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// JoinRoom resolves a room id on the backend and opens it.
func (c *Controller) JoinRoom(ctx context.Context, id domain.RoomID) (domain.Room, error) {
	room, err := c.rooms.GetRoom(ctx, id)
	if err != nil {
		return domain.Room{}, err
	}
	if err := c.open(ctx, room); err != nil {
		return domain.Room{}, err
	}
	return room, nil
}

// ResumeRoom re-opens the room remembered by the session store. When the
// stored id no longer resolves, the stale id is cleared and ok is false.
func (c *Controller) ResumeRoom(ctx context.Context) (room domain.Room, ok bool, err error) {
	id, err := c.session.CurrentRoom()
	if err != nil {
		return domain.Room{}, false, fmt.Errorf("read session room: %w", err)
	}
	if id == "" {
		return domain.Room{}, false, nil
	}
	room, err = c.rooms.GetRoom(ctx, id)
	if err != nil {
		c.logger.Warn("stored room no longer resolves, clearing session",
			zap.String("room", string(id)),
			zap.Error(err))
		if clearErr := c.session.Clear(); clearErr != nil {
			return domain.Room{}, false, fmt.Errorf("clear stale session room: %w", clearErr)
		}
		return domain.Room{}, false, nil
	}
	if err := c.open(ctx, room); err != nil {
		return domain.Room{}, false, err
	}
	return room, true, nil
}

// open switches the active room: tears down the previous channel, discards
// all prior todo state unconditionally, binds a fresh channel to the new room
// and performs the initial list fetch.
func (c *Controller) open(ctx context.Context, room domain.Room) error {
	c.mu.Lock()
	previous := c.channel
	c.room = &room
	c.list = nil
	channel := NewChannel(room.ID, c.dialer, c.applyEvent, c.logger, c.clock)
	c.channel = channel
	c.mu.Unlock()

	if previous != nil {
		previous.Disconnect()
	}
	channel.Connect(ctx)

	if err := c.session.SetCurrentRoom(room.ID); err != nil {
		return fmt.Errorf("persist session room: %w", err)
	}
	return c.refresh(ctx, room.ID)
}

// LeaveRoom tears down the subscription, clears the collection and forgets
// the session room.
func (c *Controller) LeaveRoom() error {
	c.Close()
	if err := c.session.Clear(); err != nil {
		return fmt.Errorf("clear session room: %w", err)
	}
	return nil
}

// Close tears the live session down without forgetting the stored room, so a
// later run can resume it.
func (c *Controller) Close() {
	c.mu.Lock()
	channel := c.channel
	c.channel = nil
	c.room = nil
	c.list = nil
	c.mu.Unlock()

	if channel != nil {
		channel.Disconnect()
	}
}

// Room returns the currently open room, if any.
func (c *Controller) Room() (domain.Room, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil {
		return domain.Room{}, false
	}
	return *c.room, true
}

// Todos returns a snapshot of the collection in its current order.
func (c *Controller) Todos() []domain.Todo {
	c.mu.Lock()
	defer c.mu.Unlock()
	snapshot := make([]domain.Todo, len(c.list))
	copy(snapshot, c.list)
	return snapshot
}

// Connected reports whether the realtime channel is currently connected.
func (c *Controller) Connected() bool {
	c.mu.Lock()
	channel := c.channel
	c.mu.Unlock()
	return channel != nil && channel.State() == StateConnected
}

// AddTodo creates a todo in the open room and applies the server's echo.
func (c *Controller) AddTodo(ctx context.Context, text string) (domain.Todo, error) {
	roomID, err := c.openRoomID()
	if err != nil {
		return domain.Todo{}, err
	}
	todo, err := c.todos.CreateTodo(ctx, roomID, text)
	if err != nil {
		return domain.Todo{}, err
	}
	c.applyEvent(domain.CreatedEvent(todo))
	return todo, nil
}

// ToggleTodo flips the completion state of a todo currently in the
// collection via a full-replace update.
func (c *Controller) ToggleTodo(ctx context.Context, id domain.TodoID) (domain.Todo, error) {
	roomID, err := c.openRoomID()
	if err != nil {
		return domain.Todo{}, err
	}
	current, ok := c.findTodo(id)
	if !ok {
		return domain.Todo{}, domain.ErrTodoNotFound
	}
	updated, err := c.todos.UpdateTodo(ctx, roomID, id, domain.TodoUpdate{
		Text:      current.Text,
		Completed: !current.Completed,
	})
	if err != nil {
		return domain.Todo{}, err
	}
	c.applyEvent(domain.UpdatedEvent(updated))
	return updated, nil
}

// EditTodo replaces a todo's text, preserving its completion state.
func (c *Controller) EditTodo(ctx context.Context, id domain.TodoID, text string) (domain.Todo, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Todo{}, domain.ErrEmptyTodoText
	}
	roomID, err := c.openRoomID()
	if err != nil {
		return domain.Todo{}, err
	}
	current, ok := c.findTodo(id)
	if !ok {
		return domain.Todo{}, domain.ErrTodoNotFound
	}
	updated, err := c.todos.UpdateTodo(ctx, roomID, id, domain.TodoUpdate{
		Text:      text,
		Completed: current.Completed,
	})
	if err != nil {
		return domain.Todo{}, err
	}
	c.applyEvent(domain.UpdatedEvent(updated))
	return updated, nil
}

// RemoveTodo deletes a todo in the open room and removes it locally.
func (c *Controller) RemoveTodo(ctx context.Context, id domain.TodoID) error {
	roomID, err := c.openRoomID()
	if err != nil {
		return err
	}
	if err := c.todos.DeleteTodo(ctx, roomID, id); err != nil {
		return err
	}
	c.applyEvent(domain.DeletedEvent(domain.Todo{ID: id, RoomID: roomID}))
	return nil
}

// applyEvent is the single merge point for both input sources. Rules, applied
// atomically per event in arrival order:
//
//   - created: append, no id de-duplication
//   - updated: replace the matching id, silently drop when absent
//   - deleted: remove the matching id, no-op when absent
//   - list-invalidated: asynchronous wholesale re-fetch
//
// Events whose todo belongs to a foreign room are discarded, which doubles as
// the guard against a stale in-flight response landing after a room switch.
func (c *Controller) applyEvent(event domain.Event) {
	c.mu.Lock()
	if c.room == nil {
		c.mu.Unlock()
		return
	}
	roomID := c.room.ID

	if event.Action == domain.ActionListInvalidated {
		c.mu.Unlock()
		go func() {
			if err := c.refresh(context.Background(), roomID); err != nil {
				c.logger.Warn("refresh after list invalidation failed",
					zap.String("room", string(roomID)),
					zap.Error(err))
			}
		}()
		return
	}

	if event.Todo == nil || event.Todo.RoomID != roomID {
		c.mu.Unlock()
		return
	}

	switch event.Action {
	case domain.ActionCreated:
		c.list = append(c.list, *event.Todo)
	case domain.ActionUpdated:
		for i := range c.list {
			if c.list[i].ID == event.Todo.ID {
				c.list[i] = *event.Todo
				break
			}
		}
	case domain.ActionDeleted:
		for i := range c.list {
			if c.list[i].ID == event.Todo.ID {
				c.list = append(c.list[:i], c.list[i+1:]...)
				break
			}
		}
	}
	fn := c.notify
	c.mu.Unlock()

	if fn != nil {
		go fn()
	}
}

// refresh replaces the collection wholesale with a fresh fetch. Events that
// land between the invalidation and the fetch resolving are applied to the
// soon-to-be-overwritten collection and lost with it.
func (c *Controller) refresh(ctx context.Context, roomID domain.RoomID) error {
	items, err := c.todos.ListTodos(ctx, roomID)
	if err != nil {
		return err
	}
	c.mu.Lock()
	if c.room == nil || c.room.ID != roomID {
		// The room was left or switched while the fetch was in flight.
		c.mu.Unlock()
		return nil
	}
	c.list = items
	fn := c.notify
	c.mu.Unlock()

	if fn != nil {
		go fn()
	}
	return nil
}

func (c *Controller) openRoomID() (domain.RoomID, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.room == nil {
		return "", domain.ErrNoOpenRoom
	}
	return c.room.ID, nil
}

func (c *Controller) findTodo(id domain.TodoID) (domain.Todo, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, todo := range c.list {
		if todo.ID == id {
			return todo, true
		}
	}
	return domain.Todo{}, false
}

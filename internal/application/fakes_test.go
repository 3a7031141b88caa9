package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bnema/roomtodo/internal/domain"
	"github.com/bnema/roomtodo/internal/ports"
)

// fakeClock records AfterFunc calls instead of sleeping; tests fire the
// scheduled callbacks explicitly.
type fakeClock struct {
	mu        sync.Mutex
	scheduled []*fakeTimer
}

type fakeTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasRunning := !t.stopped && !t.fired
	t.stopped = true
	return wasRunning
}

func (c *fakeClock) Now() time.Time { return time.Unix(0, 0) }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) ports.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	timer := &fakeTimer{delay: d, fn: f}
	c.scheduled = append(c.scheduled, timer)
	return timer
}

func (c *fakeClock) delays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]time.Duration, len(c.scheduled))
	for i, timer := range c.scheduled {
		out[i] = timer.delay
	}
	return out
}

// fireLast runs the most recently scheduled pending callback synchronously.
// Each timer fires at most once, like a real AfterFunc timer.
func (c *fakeClock) fireLast() bool {
	c.mu.Lock()
	var timer *fakeTimer
	for i := len(c.scheduled) - 1; i >= 0; i-- {
		candidate := c.scheduled[i]
		if !candidate.stopped && !candidate.fired {
			timer = candidate
			break
		}
	}
	if timer == nil {
		c.mu.Unlock()
		return false
	}
	timer.fired = true
	c.mu.Unlock()
	timer.fn()
	return true
}

type dialResult struct {
	conn ports.RealtimeConn
	err  error
}

// fakeDialer pops one scripted result per Dial call; once the script runs
// out, it keeps returning the final entry.
type fakeDialer struct {
	mu      sync.Mutex
	script  []dialResult
	dials   int
	dialing chan struct{}
}

func (d *fakeDialer) Dial(_ context.Context, _ domain.RoomID) (ports.RealtimeConn, error) {
	d.mu.Lock()
	d.dials++
	result := dialResult{err: errors.New("no scripted dial result")}
	if len(d.script) > 0 {
		result = d.script[0]
		if len(d.script) > 1 {
			d.script = d.script[1:]
		}
	}
	notify := d.dialing
	d.mu.Unlock()

	if notify != nil {
		select {
		case notify <- struct{}{}:
		default:
		}
	}
	return result.conn, result.err
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

type connSignal struct {
	event domain.Event
	err   error
}

// fakeConn feeds scripted events to the channel's read loop.
type fakeConn struct {
	signals chan connSignal
	once    sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{signals: make(chan connSignal, 64)}
}

func (c *fakeConn) push(event domain.Event) {
	c.signals <- connSignal{event: event}
}

func (c *fakeConn) fail(err error) {
	c.signals <- connSignal{err: err}
}

func (c *fakeConn) Receive() (domain.Event, error) {
	signal, ok := <-c.signals
	if !ok {
		return domain.Event{}, context.Canceled
	}
	return signal.event, signal.err
}

func (c *fakeConn) Close() error {
	c.once.Do(func() { close(c.signals) })
	return nil
}

// fakeTodoAPI serves a scripted backend list and lets tests gate ListTodos
// to reproduce in-flight fetch interleavings.
type fakeTodoAPI struct {
	mu        sync.Mutex
	todos     []domain.Todo
	listGate  chan struct{}
	listErr   error
	createErr error
	nextID    int
}

func (f *fakeTodoAPI) setTodos(todos []domain.Todo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.todos = todos
}

func (f *fakeTodoAPI) ListTodos(_ context.Context, roomID domain.RoomID) ([]domain.Todo, error) {
	if f.listGate != nil {
		<-f.listGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.Todo, 0, len(f.todos))
	for _, todo := range f.todos {
		if todo.RoomID == roomID {
			out = append(out, todo)
		}
	}
	return out, nil
}

func (f *fakeTodoAPI) CreateTodo(_ context.Context, roomID domain.RoomID, text string) (domain.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Todo{}, f.createErr
	}
	f.nextID++
	todo := domain.Todo{
		ID:     domain.TodoID(string(rune('a' + f.nextID))),
		RoomID: roomID,
		Text:   text,
	}
	f.todos = append(f.todos, todo)
	return todo, nil
}

func (f *fakeTodoAPI) UpdateTodo(_ context.Context, roomID domain.RoomID, id domain.TodoID, update domain.TodoUpdate) (domain.Todo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.todos {
		if f.todos[i].ID == id && f.todos[i].RoomID == roomID {
			f.todos[i].Text = update.Text
			f.todos[i].Completed = update.Completed
			return f.todos[i], nil
		}
	}
	return domain.Todo{}, domain.NewFetchError("failed to update todo", nil)
}

func (f *fakeTodoAPI) DeleteTodo(_ context.Context, roomID domain.RoomID, id domain.TodoID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.todos {
		if f.todos[i].ID == id && f.todos[i].RoomID == roomID {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			return nil
		}
	}
	return domain.NewFetchError("failed to delete todo", nil)
}

type fakeRoomAPI struct {
	mu    sync.Mutex
	rooms map[domain.RoomID]domain.Room
}

func newFakeRoomAPI(rooms ...domain.Room) *fakeRoomAPI {
	api := &fakeRoomAPI{rooms: map[domain.RoomID]domain.Room{}}
	for _, room := range rooms {
		api.rooms[room.ID] = room
	}
	return api
}

func (f *fakeRoomAPI) CreateRoom(_ context.Context, name string) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room := domain.Room{ID: domain.RoomID("room-" + name), Name: name}
	f.rooms[room.ID] = room
	return room, nil
}

func (f *fakeRoomAPI) GetRoom(_ context.Context, id domain.RoomID) (domain.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	room, ok := f.rooms[id]
	if !ok {
		return domain.Room{}, domain.NewFetchError("failed to fetch room", nil)
	}
	return room, nil
}

type fakeSession struct {
	mu     sync.Mutex
	roomID domain.RoomID
}

func (f *fakeSession) CurrentRoom() (domain.RoomID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roomID, nil
}

func (f *fakeSession) SetCurrentRoom(id domain.RoomID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomID = id
	return nil
}

func (f *fakeSession) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomID = ""
	return nil
}

package application

import (
	"context"
	"testing"
	"time"

	"github.com/bnema/roomtodo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController(t *testing.T, todos *fakeTodoAPI, rooms *fakeRoomAPI, dialer *fakeDialer) (*Controller, *fakeSession) {
	t.Helper()
	session := &fakeSession{}
	controller := NewController(todos, rooms, dialer, session, nil, &fakeClock{})
	t.Cleanup(controller.Close)
	return controller, session
}

func openRoom(t *testing.T, controller *Controller, room domain.Room) {
	t.Helper()
	_, err := controller.JoinRoom(context.Background(), room.ID)
	require.NoError(t, err)
}

func connectedFixture(t *testing.T) (*Controller, *fakeTodoAPI, *fakeConn, *fakeSession) {
	t.Helper()
	room := domain.Room{ID: "r-1", Name: "Groceries"}
	todos := &fakeTodoAPI{}
	conn := newFakeConn()
	dialer := &fakeDialer{script: []dialResult{{conn: conn}}}
	controller, session := newTestController(t, todos, newFakeRoomAPI(room), dialer)
	openRoom(t, controller, room)
	return controller, todos, conn, session
}

func TestControllerEventSequenceConverges(t *testing.T) {
	t.Parallel()

	controller, _, _, _ := connectedFixture(t)

	a := domain.Todo{ID: "a", RoomID: "r-1", Text: "Milk"}
	b := domain.Todo{ID: "b", RoomID: "r-1", Text: "Bread"}
	c := domain.Todo{ID: "c", RoomID: "r-1", Text: "Eggs"}

	controller.applyEvent(domain.CreatedEvent(a))
	controller.applyEvent(domain.CreatedEvent(b))
	controller.applyEvent(domain.CreatedEvent(c))
	bUpdated := b
	bUpdated.Text = "Rye bread"
	bUpdated.Completed = true
	controller.applyEvent(domain.UpdatedEvent(bUpdated))
	controller.applyEvent(domain.DeletedEvent(a))

	// Created-then-not-deleted ids remain, with the latest update applied.
	assert.Equal(t, []domain.Todo{bUpdated, c}, controller.Todos())
}

func TestControllerDropsUpdateForUnknownID(t *testing.T) {
	t.Parallel()

	controller, _, _, _ := connectedFixture(t)
	controller.applyEvent(domain.UpdatedEvent(domain.Todo{ID: "ghost", RoomID: "r-1", Text: "boo"}))
	assert.Empty(t, controller.Todos())
}

func TestControllerIgnoresDeleteForUnknownID(t *testing.T) {
	t.Parallel()

	controller, _, _, _ := connectedFixture(t)
	existing := domain.Todo{ID: "a", RoomID: "r-1", Text: "Milk"}
	controller.applyEvent(domain.CreatedEvent(existing))

	controller.applyEvent(domain.DeletedEvent(domain.Todo{ID: "ghost", RoomID: "r-1"}))
	assert.Equal(t, []domain.Todo{existing}, controller.Todos())
}

func TestControllerDuplicateCreatedProducesTwoEntries(t *testing.T) {
	t.Parallel()

	controller, _, _, _ := connectedFixture(t)
	todo := domain.Todo{ID: "a", RoomID: "r-1", Text: "Milk"}

	// No id de-duplication: an own-echo plus a realtime echo of the same
	// create both land.
	controller.applyEvent(domain.CreatedEvent(todo))
	controller.applyEvent(domain.CreatedEvent(todo))
	assert.Len(t, controller.Todos(), 2)
}

func TestControllerDiscardsEventsForForeignRoom(t *testing.T) {
	t.Parallel()

	controller, _, _, _ := connectedFixture(t)
	controller.applyEvent(domain.CreatedEvent(domain.Todo{ID: "x", RoomID: "other-room", Text: "not mine"}))
	assert.Empty(t, controller.Todos())
}

func TestControllerOwnActionsApplyServerEcho(t *testing.T) {
	t.Parallel()

	controller, todos, _, _ := connectedFixture(t)

	created, err := controller.AddTodo(context.Background(), "Milk")
	require.NoError(t, err)
	assert.Equal(t, []domain.Todo{created}, controller.Todos())

	toggled, err := controller.ToggleTodo(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Equal(t, []domain.Todo{toggled}, controller.Todos())

	edited, err := controller.EditTodo(context.Background(), created.ID, "Oat milk")
	require.NoError(t, err)
	assert.Equal(t, "Oat milk", edited.Text)
	assert.True(t, edited.Completed, "edit preserves completion state")

	require.NoError(t, controller.RemoveTodo(context.Background(), created.ID))
	assert.Empty(t, controller.Todos())

	backend, err := todos.ListTodos(context.Background(), "r-1")
	require.NoError(t, err)
	assert.Empty(t, backend)
}

func TestControllerEditRejectsEmptyText(t *testing.T) {
	t.Parallel()

	controller, _, _, _ := connectedFixture(t)
	_, err := controller.EditTodo(context.Background(), "a", "   ")
	assert.ErrorIs(t, err, domain.ErrEmptyTodoText)
}

func TestControllerToggleUnknownTodoFails(t *testing.T) {
	t.Parallel()

	controller, _, _, _ := connectedFixture(t)
	_, err := controller.ToggleTodo(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrTodoNotFound)
}

func TestControllerListInvalidationTriggersWholesaleRefetch(t *testing.T) {
	t.Parallel()

	controller, todos, _, _ := connectedFixture(t)
	server := []domain.Todo{
		{ID: "a", RoomID: "r-1", Text: "Milk"},
		{ID: "b", RoomID: "r-1", Text: "Bread"},
	}
	todos.setTodos(server)

	controller.applyEvent(domain.ListInvalidatedEvent())

	require.Eventually(t, func() bool {
		return len(controller.Todos()) == 2
	}, time.Second, time.Millisecond)
	assert.Equal(t, server, controller.Todos())
}

// A created event that lands between a list invalidation and its re-fetch
// resolving is overwritten by the fetch result. The race is inherited
// behavior and asserted as such.
func TestControllerInvalidationRaceLosesInterleavedCreate(t *testing.T) {
	t.Parallel()

	room := domain.Room{ID: "r-1", Name: "Groceries"}
	todos := &fakeTodoAPI{listGate: make(chan struct{}, 2)}
	conn := newFakeConn()
	dialer := &fakeDialer{script: []dialResult{{conn: conn}}}
	controller, _ := newTestController(t, todos, newFakeRoomAPI(room), dialer)

	todos.listGate <- struct{}{} // let the initial join fetch through
	openRoom(t, controller, room)

	controller.applyEvent(domain.ListInvalidatedEvent())
	controller.applyEvent(domain.CreatedEvent(domain.Todo{ID: "late", RoomID: "r-1", Text: "Sneaked in"}))
	require.Eventually(t, func() bool {
		return len(controller.Todos()) == 1
	}, time.Second, time.Millisecond)

	todos.listGate <- struct{}{} // now let the invalidation re-fetch resolve
	require.Eventually(t, func() bool {
		return len(controller.Todos()) == 0
	}, time.Second, time.Millisecond)
}

func TestControllerSwitchingRoomsDiscardsStateAndRebinds(t *testing.T) {
	t.Parallel()

	roomOne := domain.Room{ID: "r-1", Name: "One"}
	roomTwo := domain.Room{ID: "r-2", Name: "Two"}
	todos := &fakeTodoAPI{}
	connOne := newFakeConn()
	connTwo := newFakeConn()
	dialer := &fakeDialer{script: []dialResult{{conn: connOne}, {conn: connTwo}}}
	controller, session := newTestController(t, todos, newFakeRoomAPI(roomOne, roomTwo), dialer)

	openRoom(t, controller, roomOne)
	controller.applyEvent(domain.CreatedEvent(domain.Todo{ID: "a", RoomID: "r-1", Text: "Milk"}))
	require.Len(t, controller.Todos(), 1)

	openRoom(t, controller, roomTwo)
	assert.Empty(t, controller.Todos(), "switching rooms discards all prior todo state")
	assert.Equal(t, 2, dialer.dialCount())

	// Events for the previous room no longer apply.
	controller.applyEvent(domain.CreatedEvent(domain.Todo{ID: "b", RoomID: "r-1", Text: "Stale"}))
	assert.Empty(t, controller.Todos())

	stored, err := session.CurrentRoom()
	require.NoError(t, err)
	assert.Equal(t, domain.RoomID("r-2"), stored)
}

func TestControllerLeaveRoomClearsSession(t *testing.T) {
	t.Parallel()

	controller, _, _, session := connectedFixture(t)
	require.NoError(t, controller.LeaveRoom())

	_, open := controller.Room()
	assert.False(t, open)
	stored, err := session.CurrentRoom()
	require.NoError(t, err)
	assert.Empty(t, stored)

	_, err = controller.AddTodo(context.Background(), "orphan")
	assert.ErrorIs(t, err, domain.ErrNoOpenRoom)
}

func TestControllerResumeClearsStaleSessionRoom(t *testing.T) {
	t.Parallel()

	todos := &fakeTodoAPI{}
	dialer := &fakeDialer{}
	controller, session := newTestController(t, todos, newFakeRoomAPI(), dialer)
	require.NoError(t, session.SetCurrentRoom("gone"))

	_, ok, err := controller.ResumeRoom(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := session.CurrentRoom()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

package ports

import (
	"context"

	"github.com/bnema/roomtodo/internal/domain"
)

// TodoAPI performs exactly one network operation per call against the
// room-scoped todo resource. No retries, no caching, no batching.
type TodoAPI interface {
	ListTodos(ctx context.Context, roomID domain.RoomID) ([]domain.Todo, error)
	CreateTodo(ctx context.Context, roomID domain.RoomID, text string) (domain.Todo, error)
	UpdateTodo(ctx context.Context, roomID domain.RoomID, id domain.TodoID, update domain.TodoUpdate) (domain.Todo, error)
	DeleteTodo(ctx context.Context, roomID domain.RoomID, id domain.TodoID) error
}

type RoomAPI interface {
	CreateRoom(ctx context.Context, name string) (domain.Room, error)
	GetRoom(ctx context.Context, id domain.RoomID) (domain.Room, error)
}

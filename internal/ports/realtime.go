package ports

import (
	"context"

	"github.com/bnema/roomtodo/internal/domain"
)

// RealtimeConn is one live subscription to a room's event stream.
type RealtimeConn interface {
	// Receive blocks until the next event arrives and returns events in the
	// order the transport received them. It returns an error once the
	// connection is lost or closed; the connection is unusable after that.
	Receive() (domain.Event, error)
	Close() error
}

// RealtimeDialer opens a subscription to one room's event stream.
type RealtimeDialer interface {
	Dial(ctx context.Context, roomID domain.RoomID) (RealtimeConn, error)
}

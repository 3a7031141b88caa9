package ports

import "github.com/bnema/roomtodo/internal/domain"

// SessionStore is the addressable-location capability: it remembers which
// room the session has open so it can be resumed or shared. CurrentRoom
// returns an empty id when no room is stored.
type SessionStore interface {
	CurrentRoom() (domain.RoomID, error)
	SetCurrentRoom(id domain.RoomID) error
	Clear() error
}

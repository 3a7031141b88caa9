package domain

import (
	"encoding/json"
	"fmt"
)

// Action is the closed set of realtime event kinds. Keeping it a typed
// constant set (rather than a raw wire string) forces every consumer through
// an exhaustive switch.
type Action int

const (
	ActionCreated Action = iota + 1
	ActionUpdated
	ActionDeleted
	ActionListInvalidated
)

// Wire names. "list-updated" is the one name used by both the client and the
// push endpoint for the full-refresh signal.
const (
	actionCreatedWire         = "created"
	actionUpdatedWire         = "updated"
	actionDeletedWire         = "deleted"
	actionListInvalidatedWire = "list-updated"
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return actionCreatedWire
	case ActionUpdated:
		return actionUpdatedWire
	case ActionDeleted:
		return actionDeletedWire
	case ActionListInvalidated:
		return actionListInvalidatedWire
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

func ParseAction(s string) (Action, error) {
	switch s {
	case actionCreatedWire:
		return ActionCreated, nil
	case actionUpdatedWire:
		return ActionUpdated, nil
	case actionDeletedWire:
		return ActionDeleted, nil
	case actionListInvalidatedWire:
		return ActionListInvalidated, nil
	default:
		return 0, fmt.Errorf("unknown realtime action %q", s)
	}
}

// Event is one push notification for a room. Todo is nil exactly when the
// action is ActionListInvalidated, which carries no delta.
type Event struct {
	Action Action
	Todo   *Todo
}

func CreatedEvent(todo Todo) Event { return Event{Action: ActionCreated, Todo: &todo} }
func UpdatedEvent(todo Todo) Event { return Event{Action: ActionUpdated, Todo: &todo} }
func DeletedEvent(todo Todo) Event { return Event{Action: ActionDeleted, Todo: &todo} }
func ListInvalidatedEvent() Event  { return Event{Action: ActionListInvalidated} }

type eventWire struct {
	Action string `json:"action"`
	Todo   *Todo  `json:"todo"`
}

func (e Event) MarshalJSON() ([]byte, error) {
	return json.Marshal(eventWire{Action: e.Action.String(), Todo: e.Todo})
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var wire eventWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	action, err := ParseAction(wire.Action)
	if err != nil {
		return err
	}
	if action != ActionListInvalidated && wire.Todo == nil {
		return fmt.Errorf("realtime action %q without todo payload", wire.Action)
	}
	e.Action = action
	e.Todo = wire.Todo
	return nil
}

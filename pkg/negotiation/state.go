package negotiation

import (
	"errors"
	"fmt"
)

// State is the lifecycle position of a shop session.
type State string

const (
	StateAwaitingClient State = "awaiting_client"
	StateClientActive   State = "client_active"
	StateClientResolved State = "client_resolved"
	StateGameEnded      State = "game_ended"
)

// Event drives a state transition.
type Event string

const (
	EventClientArrived       Event = "client_arrived"
	EventDealCancelled       Event = "deal_cancelled"
	EventDealClosed          Event = "deal_closed"
	EventNextClientRequested Event = "next_client_requested"
	EventCapReached          Event = "cap_reached"
)

var ErrInvalidTransition = errors.New("invalid state transition")

var transitions = map[State]map[Event]State{
	StateAwaitingClient: {
		EventClientArrived: StateClientActive,
	},
	StateClientActive: {
		EventDealCancelled: StateClientResolved,
		EventDealClosed:    StateClientResolved,
	},
	StateClientResolved: {
		EventNextClientRequested: StateAwaitingClient,
		EventCapReached:          StateGameEnded,
	},
}

// Transition returns the state reached from s on ev.
// GameEnded is terminal and accepts no events.
func Transition(s State, ev Event) (State, error) {
	if next, ok := transitions[s][ev]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, ev, s)
}

// AcceptsInput reports whether player messages are processed in s.
func (s State) AcceptsInput() bool {
	return s == StateClientActive
}

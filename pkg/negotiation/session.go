package negotiation

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/haggle/pkg/chat"
)

const (
	StatusSuccess = "Looks like you'll live to deal another day."
	StatusFailure = "You failed. It's time to close shop."
)

// GameProgress holds the totals that span every client of a session.
type GameProgress struct {
	Gains       float64 `json:"gains"`
	ClientCount int     `json:"client_count"`
	MadeDeals   int     `json:"made_deals"`
	MaxClients  int     `json:"max_clients"`
	NeededGains float64 `json:"needed_gains"`
}

func (p GameProgress) CapReached() bool {
	return p.ClientCount >= p.MaxClients
}

// Outcome reports whether the shop made its target.
type Outcome struct {
	Success bool   `json:"success"`
	Status  string `json:"status"`
}

func (p GameProgress) Outcome() Outcome {
	if p.Gains < p.NeededGains {
		return Outcome{Success: false, Status: StatusFailure}
	}
	return Outcome{Success: true, Status: StatusSuccess}
}

// Resolution records how the most recent client left.
type Resolution string

const (
	ResolutionNone      Resolution = ""
	ResolutionCancelled Resolution = "cancelled"
	ResolutionClosed    Resolution = "deal_closed"
)

// Session is one player's run through a shop: the active client, their
// conversation, and the running totals.
type Session struct {
	ID           uuid.UUID          `json:"id"`
	ShopFile     string             `json:"shop"`
	State        State              `json:"state"`
	Item         *Item              `json:"item,omitempty"`
	Conversation *chat.Conversation `json:"conversation,omitempty"`
	DealValue    float64            `json:"deal_value"`
	Progress     GameProgress       `json:"progress"`
	Resolution   Resolution         `json:"resolution,omitempty"`
	Outcome      *Outcome           `json:"outcome,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// NewSession creates a session waiting for its first client.
func NewSession(shopFile string, maxClients int, neededGains float64) *Session {
	now := time.Now()
	return &Session{
		ID:       uuid.New(),
		ShopFile: shopFile,
		State:    StateAwaitingClient,
		Progress: GameProgress{
			MaxClients:  maxClients,
			NeededGains: neededGains,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RequestNextClient moves a resolved session back to waiting. A session
// already waiting is left as is, so a failed arrival can be retried.
func (s *Session) RequestNextClient() error {
	if s.State == StateAwaitingClient {
		return nil
	}
	next, err := Transition(s.State, EventNextClientRequested)
	if err != nil {
		return err
	}
	s.State = next
	return nil
}

// BeginClient installs a new client and their seeded conversation.
func (s *Session) BeginClient(item Item, conv *chat.Conversation) error {
	next, err := Transition(s.State, EventClientArrived)
	if err != nil {
		return err
	}
	s.State = next
	s.Item = &item
	s.Conversation = conv
	s.DealValue = item.DealValue()
	s.Resolution = ResolutionNone
	return nil
}

// Apply runs the actions of a decision in order. It returns how the
// client left, or ResolutionNone if the negotiation continues.
func (s *Session) Apply(actions []Action) (Resolution, error) {
	if !s.State.AcceptsInput() || s.Item == nil {
		return ResolutionNone, fmt.Errorf("%w: no active client in %s", ErrInvalidTransition, s.State)
	}

	for _, a := range actions {
		switch a.Kind {
		case ActionSetOffer:
			if !s.State.AcceptsInput() {
				return s.Resolution, fmt.Errorf("%w: set offer after client left", ErrInvalidTransition)
			}
			s.Item.ClientOffer = a.Value
			s.DealValue = s.Item.DealValue()
		case ActionCloseDeal:
			if err := s.resolve(EventDealClosed); err != nil {
				return s.Resolution, err
			}
			s.Progress.Gains += s.DealValue
			s.Progress.MadeDeals++
			s.Resolution = ResolutionClosed
		case ActionCancelDeal:
			if err := s.resolve(EventDealCancelled); err != nil {
				return s.Resolution, err
			}
			s.Resolution = ResolutionCancelled
		default:
			return s.Resolution, fmt.Errorf("unknown action kind %q", a.Kind)
		}
	}

	if s.State == StateClientResolved && s.Progress.CapReached() {
		next, err := Transition(s.State, EventCapReached)
		if err != nil {
			return s.Resolution, err
		}
		s.State = next
		outcome := s.Progress.Outcome()
		s.Outcome = &outcome
	}
	return s.Resolution, nil
}

func (s *Session) resolve(ev Event) error {
	next, err := Transition(s.State, ev)
	if err != nil {
		return err
	}
	s.State = next
	s.Progress.ClientCount++
	return nil
}

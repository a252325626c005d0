package negotiation

import "fmt"

// ActionKind tags the game mutations a decision can request.
type ActionKind string

const (
	ActionCancelDeal ActionKind = "cancel_deal"
	ActionCloseDeal  ActionKind = "close_deal"
	ActionSetOffer   ActionKind = "set_offer"
)

// Action is a deferred game mutation. Value is only meaningful for SetOffer.
type Action struct {
	Kind  ActionKind `json:"kind"`
	Value float64    `json:"value,omitempty"`
}

func CancelDeal() Action { return Action{Kind: ActionCancelDeal} }

func CloseDeal() Action { return Action{Kind: ActionCloseDeal} }

func SetOffer(v float64) Action { return Action{Kind: ActionSetOffer, Value: v} }

func (a Action) String() string {
	if a.Kind == ActionSetOffer {
		return fmt.Sprintf("%s(%s)", a.Kind, FormatPrice(a.Value))
	}
	return string(a.Kind)
}

// Decision is the outcome of mapping one reasoning result: a hidden
// instruction for the next reply and the actions to apply after it.
type Decision struct {
	Instruction string   `json:"instruction"`
	Actions     []Action `json:"actions"`
}

const (
	outragedInstruction = "You are outraged with the client's response and decide to leave without selling. " +
		"Respond showing your dissatisfaction before leaving."
	dealInstruction = "A deal has been made with the price of %s. " +
		"Your response must reflect the deal being made with that price."
	changedInstruction = "Change the price you're offering to %s. " +
		"Your response must reflect the fact that you changed the offering price."
	holdInstruction = "Do not lower your offering price, keep it at %s. " +
		"Your response must reflect the fact that you did not change the offering price."
)

// Decide maps a reasoning result to a decision. The first matching rule
// wins: outrage, then a closed deal, then a price change, then holding.
//
// When no action fires, NewPrice may be stale, so the hold instruction
// always names currentOffer. Holding never changes the offer.
func Decide(r ReasoningResult, currentOffer float64) Decision {
	switch {
	case r.Outraged:
		return Decision{
			Instruction: outragedInstruction,
			Actions:     []Action{CancelDeal()},
		}
	case r.DealMade:
		return Decision{
			Instruction: fmt.Sprintf(dealInstruction, FormatPrice(r.NewPrice)),
			Actions:     []Action{SetOffer(r.NewPrice), CloseDeal()},
		}
	case r.ChangedPrice:
		return Decision{
			Instruction: fmt.Sprintf(changedInstruction, FormatPrice(r.NewPrice)),
			Actions:     []Action{SetOffer(r.NewPrice)},
		}
	default:
		return Decision{
			Instruction: fmt.Sprintf(holdInstruction, FormatPrice(currentOffer)),
			Actions:     nil,
		}
	}
}

// StalePrice reports whether a result that holds the price carries a
// new_price disagreeing with the stored offer.
func (r ReasoningResult) StalePrice(currentOffer float64) bool {
	holds := !r.Outraged && !r.DealMade && !r.ChangedPrice
	return holds && r.NewPrice > 0 && r.NewPrice != currentOffer
}

package handlers

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/haggle/pkg/negotiation"
)

type commandType string

const (
	cmdLedger commandType = "ledger"
	cmdNext   commandType = "next"
	cmdNone   commandType = "" // Not a command; goes to the client
)

// parseCommand recognizes slash commands typed into the chat box.
func parseCommand(input string) commandType {
	known := map[string]commandType{
		"/ledger": cmdLedger,
		"/status": cmdLedger,
		"/l":      cmdLedger,
		"/next":   cmdNext,
		"/n":      cmdNext,
	}
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if cmd, ok := known[trimmed]; ok {
		return cmd
	}
	return cmdNone
}

// Ledger summarizes the player's standing without a model call.
func Ledger(s *negotiation.Session) string {
	p := s.Progress
	var sb strings.Builder

	client := p.ClientCount
	if s.State == negotiation.StateClientActive {
		client++
	}
	fmt.Fprintf(&sb, "Client %d of %d. Gains %s of %s. Deals made: %d.",
		client, p.MaxClients,
		negotiation.FormatPrice(p.Gains), negotiation.FormatPrice(p.NeededGains),
		p.MadeDeals)

	if s.Item != nil && s.State == negotiation.StateClientActive {
		fmt.Fprintf(&sb, "\n%s: offered at %s, worth %s, deal value %s.",
			s.Item.Name,
			negotiation.FormatPrice(s.Item.ClientOffer),
			negotiation.FormatPrice(s.Item.MarketValue),
			negotiation.FormatPrice(s.DealValue))
	}
	if s.Outcome != nil {
		sb.WriteString("\n")
		sb.WriteString(s.Outcome.Status)
	}
	return sb.String()
}

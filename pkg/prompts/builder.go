package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/haggle/pkg/negotiation"
)

// SeedBuilder assembles the system seed for a new client using a fluent
// interface. Sections are always emitted in the same order: role, personality,
// item facts, rules.
type SeedBuilder struct {
	initialPrompt string
	personality   string
	rules         string
	item          *negotiation.Item
}

// NewClientSeed creates an empty seed builder.
func NewClientSeed() *SeedBuilder {
	return &SeedBuilder{}
}

// WithInitialPrompt sets the base role and scenario instruction.
func (b *SeedBuilder) WithInitialPrompt(p string) *SeedBuilder {
	b.initialPrompt = p
	return b
}

// WithPersonality sets the generated personality, embedded verbatim.
func (b *SeedBuilder) WithPersonality(p string) *SeedBuilder {
	b.personality = p
	return b
}

// WithItem sets the item the client is selling.
func (b *SeedBuilder) WithItem(item negotiation.Item) *SeedBuilder {
	b.item = &item
	return b
}

// WithRules sets the negotiation rules text.
func (b *SeedBuilder) WithRules(r string) *SeedBuilder {
	b.rules = r
	return b
}

// Build returns the seed text.
func (b *SeedBuilder) Build() (string, error) {
	if strings.TrimSpace(b.initialPrompt) == "" {
		return "", fmt.Errorf("initial prompt is required")
	}
	if b.item == nil {
		return "", fmt.Errorf("item is required")
	}

	var sb strings.Builder
	sb.WriteString(strings.TrimSpace(b.initialPrompt))

	if p := strings.TrimSpace(b.personality); p != "" {
		sb.WriteString("\n")
		sb.WriteString(PersonalityPreamble)
		sb.WriteString("\n")
		sb.WriteString(p)
	}

	sb.WriteString("\n")
	sb.WriteString(ItemFacts(*b.item))

	if r := strings.TrimSpace(b.rules); r != "" {
		sb.WriteString("\n")
		sb.WriteString(r)
	}
	return sb.String(), nil
}

// ItemFacts renders the item block of the seed.
func ItemFacts(item negotiation.Item) string {
	return fmt.Sprintf(itemFactsTemplate,
		item.Name,
		item.Description,
		item.Effect,
		negotiation.FormatPrice(item.ClientOffer))
}

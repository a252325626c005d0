package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/haggle/pkg/chat"
	"github.com/jwebster45206/haggle/pkg/negotiation"
	"github.com/jwebster45206/haggle/pkg/shop"
)

// ItemGenerationPrompt concatenates the item-generation context in a fixed
// order: scenario, inspirations, cliches to avoid, operation order and
// rules, price bounds, then the output command and its fields.
func ItemGenerationPrompt(g shop.ItemGeneration) string {
	parts := []string{strings.TrimSpace(g.Scenario)}

	parts = appendSection(parts, g.Inspiration, g.Inspirations)
	parts = appendSection(parts, g.Cliche, g.Cliches)
	parts = appendSection(parts, g.OperationOrder, g.Rules)

	if g.Prices != "" {
		parts = append(parts, strings.TrimSpace(g.Prices))
	}
	parts = append(parts,
		fmt.Sprintf("Minimum Price: %s", negotiation.FormatPrice(g.MinimumPrice)),
		fmt.Sprintf("Maximum Price: %s", negotiation.FormatPrice(g.MaximumPrice)),
	)

	parts = appendSection(parts, g.Command, g.ResultFields)
	return strings.Join(parts, "\n")
}

// ItemGenerationMessages wraps the prompt as the single system message sent
// for each generation attempt.
func ItemGenerationMessages(g shop.ItemGeneration) []chat.ChatMessage {
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: ItemGenerationPrompt(g)},
	}
}

func appendSection(parts []string, heading string, items []string) []string {
	if h := strings.TrimSpace(heading); h != "" {
		parts = append(parts, h)
	}
	// Each entry reads as its own sentence.
	for _, it := range items {
		parts = append(parts, "- "+strings.TrimSuffix(strings.TrimSpace(it), ".")+".")
	}
	return parts
}

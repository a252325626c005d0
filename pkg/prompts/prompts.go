package prompts

import (
	"github.com/jwebster45206/haggle/pkg/chat"
	"github.com/jwebster45206/haggle/pkg/shop"
)

const PersonalityPreamble = "You have a set personality and must keep the dialogue coherent with it. " +
	"Here are your personality traits:"

const itemFactsTemplate = `Here is the information about the item you're selling:
Item name: %s
Item description: %s
Item effect: %s
The price you're offering: %s`

// PersonalityMessages builds the one-shot request that invents a client personality.
func PersonalityMessages(setup shop.ClientSetup) []chat.ChatMessage {
	return []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: setup.PersonalityPrompt},
	}
}

// ReasoningMessages returns history followed by the reasoning instructions.
// The caller's slice is copied, so the stored conversation never sees them.
func ReasoningMessages(history []chat.ChatMessage, setup shop.ClientSetup) []chat.ChatMessage {
	msgs := make([]chat.ChatMessage, 0, len(history)+2)
	msgs = append(msgs, history...)
	msgs = append(msgs,
		chat.ChatMessage{Role: chat.ChatRoleSystem, Content: setup.ResponseReasoning},
		chat.ChatMessage{Role: chat.ChatRoleSystem, Content: setup.ReasoningRules},
	)
	return msgs
}

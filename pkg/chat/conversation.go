package chat

import "encoding/json"

// Conversation is the ordered dialogue with one client. Entries are only
// ever appended; Seed starts a fresh log for a new client.
type Conversation struct {
	messages []ChatMessage
}

// NewConversation returns a conversation seeded with a single system message.
func NewConversation(seed string) *Conversation {
	c := &Conversation{}
	c.Seed(seed)
	return c
}

// Seed replaces the whole log with one system message.
func (c *Conversation) Seed(seed string) {
	c.messages = []ChatMessage{{Role: ChatRoleSystem, Content: seed}}
}

func (c *Conversation) AppendPlayer(text string) {
	c.append(ChatRoleUser, text)
}

func (c *Conversation) AppendAssistant(text string) {
	c.append(ChatRoleAgent, text)
}

// AppendSystem adds a hidden instruction that steers the next reply.
func (c *Conversation) AppendSystem(text string) {
	c.append(ChatRoleSystem, text)
}

func (c *Conversation) append(role, text string) {
	c.messages = append(c.messages, ChatMessage{Role: role, Content: text})
}

// Messages returns a copy of the log, safe for callers to extend.
func (c *Conversation) Messages() []ChatMessage {
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Visible returns the entries the player is allowed to see.
func (c *Conversation) Visible() []ChatMessage {
	out := make([]ChatMessage, 0, len(c.messages))
	for _, m := range c.messages {
		if m.Role != ChatRoleSystem {
			out = append(out, m)
		}
	}
	return out
}

func (c *Conversation) Len() int {
	return len(c.messages)
}

// Last returns the most recent entry, or false when the log is empty.
func (c *Conversation) Last() (ChatMessage, bool) {
	if len(c.messages) == 0 {
		return ChatMessage{}, false
	}
	return c.messages[len(c.messages)-1], true
}

func (c *Conversation) MarshalJSON() ([]byte, error) {
	if c.messages == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.messages)
}

func (c *Conversation) UnmarshalJSON(data []byte) error {
	var msgs []ChatMessage
	if err := json.Unmarshal(data, &msgs); err != nil {
		return err
	}
	c.messages = msgs
	return nil
}

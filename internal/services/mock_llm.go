package services

import (
	"context"
	"sync"

	"github.com/jwebster45206/haggle/pkg/chat"
)

// MockLLMAPI is a mock implementation of LLMService for testing and for
// running the stack without a provider.
type MockLLMAPI struct {
	InitModelFunc func(ctx context.Context, modelName string) error
	ChatFunc      func(ctx context.Context, messages []chat.ChatMessage, params chat.RequestParams) (*chat.ChatResponse, error)

	// Track calls for testing
	InitModelCalls []string
	ChatCalls      []ChatCall

	mu sync.Mutex // protects all fields above
}

type ChatCall struct {
	Messages []chat.ChatMessage
	Params   chat.RequestParams
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls: make([]string, 0),
		ChatCalls:      make([]ChatCall, 0),
	}
}

func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	m.InitModelCalls = append(m.InitModelCalls, modelName)
	fn := m.InitModelFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, modelName)
	}
	return nil
}

// Chat records the call and delegates to ChatFunc. Without one it answers
// with canned output: an item or reasoning object for JSON requests and a
// line of dialogue otherwise.
func (m *MockLLMAPI) Chat(ctx context.Context, messages []chat.ChatMessage, params chat.RequestParams) (*chat.ChatResponse, error) {
	copied := make([]chat.ChatMessage, len(messages))
	copy(copied, messages)

	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, ChatCall{Messages: copied, Params: params})
	fn := m.ChatFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, messages, params)
	}

	if params.JSON {
		if len(messages) == 1 {
			return &chat.ChatResponse{Message: mockItemJSON}, nil
		}
		return &chat.ChatResponse{Message: mockReasoningJSON}, nil
	}
	return &chat.ChatResponse{Message: "Mock response"}, nil
}

const (
	mockItemJSON      = `{"name":"Brass Compass","description":"A compass that always points to the nearest tavern.","effect":"Never lost for a drink.","market_value":80,"client_offer":60}`
	mockReasoningJSON = `{"outraged":false,"deal_made":false,"changed_price":false,"new_price":0}`
)

// SetChatError sets up the mock to return an error on Chat. A nil err
// restores the canned answers.
func (m *MockLLMAPI) SetChatError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		m.ChatFunc = nil
		return
	}
	m.ChatFunc = func(ctx context.Context, messages []chat.ChatMessage, params chat.RequestParams) (*chat.ChatResponse, error) {
		return nil, err
	}
}

// SetInitModelError sets up the mock to return an error on InitModel
func (m *MockLLMAPI) SetInitModelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelFunc = func(ctx context.Context, modelName string) error {
		return err
	}
}

// GetChatCalls returns a copy of the recorded Chat calls
func (m *MockLLMAPI) GetChatCalls() []ChatCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]ChatCall, len(m.ChatCalls))
	copy(calls, m.ChatCalls)
	return calls
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.ChatCalls = make([]ChatCall, 0)
}

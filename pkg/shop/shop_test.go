package shop

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalShop = `
name: Test Shop
game:
  max_clients: 3
  needed_gains: 50
client:
  initial_prompt: You sell things.
  rules: Be brief.
  personality_prompt: Invent a personality.
  response_reasoning: Decide.
  reasoning_rules: Reply in JSON.
  reply_request:
    model: test-model
    max_tokens: 100
    temperature: 0.7
items:
  scenario: Items for a shop.
  command: Reply in JSON.
  minimum_price: 10
  maximum_price: 100
  result_fields: [name, description, effect, market_value, client_offer]
`

func TestLoad(t *testing.T) {
	s, err := Load(strings.NewReader(minimalShop), true)
	require.NoError(t, err)

	assert.Equal(t, "Test Shop", s.Name)
	assert.Equal(t, 3, s.Game.MaxClients)
	assert.Equal(t, 50.0, s.Game.NeededGains)
	assert.Equal(t, "test-model", s.Client.ReplyRequest.Model)
	assert.Equal(t, 100, s.Client.ReplyRequest.MaxTokens)
	require.NotNil(t, s.Client.ReplyRequest.Temperature)
	assert.Equal(t, 0.7, *s.Client.ReplyRequest.Temperature)
	assert.Nil(t, s.Items.Request.Temperature, "unset temperature stays nil")
	assert.Len(t, s.Items.ResultFields, 5)
	assert.NoError(t, s.Validate())
}

func TestLoad_Strict(t *testing.T) {
	doc := minimalShop + "unexpected_key: true\n"

	_, err := Load(strings.NewReader(doc), true)
	assert.Error(t, err)

	_, err = Load(strings.NewReader(doc), false)
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Shop)
		wantErr string
	}{
		{name: "missing name", mutate: func(s *Shop) { s.Name = "" }, wantErr: "name is required"},
		{name: "zero clients", mutate: func(s *Shop) { s.Game.MaxClients = 0 }, wantErr: "max_clients"},
		{name: "inverted prices", mutate: func(s *Shop) { s.Items.MaximumPrice = 5 }, wantErr: "price range"},
		{name: "no reasoning rules", mutate: func(s *Shop) { s.Client.ReasoningRules = " " }, wantErr: "reasoning_rules"},
		{name: "no result fields", mutate: func(s *Shop) { s.Items.ResultFields = nil }, wantErr: "result_fields"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Load(strings.NewReader(minimalShop), true)
			require.NoError(t, err)
			tt.mutate(s)

			err = s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFile_ShippedShops(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "data", "shops", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, p := range paths {
		s, err := LoadFile(p, true)
		require.NoError(t, err, p)
		assert.NoError(t, s.Validate(), p)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"), true)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

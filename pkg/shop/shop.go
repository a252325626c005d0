package shop

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jwebster45206/haggle/pkg/chat"
	"gopkg.in/yaml.v3"
)

// Shop is a playable setup: game rules, the client templates, and the
// context used to generate items.
type Shop struct {
	Name          string         `yaml:"name" json:"name"`
	Description   string         `yaml:"description" json:"description"`
	ContentRating string         `yaml:"content_rating" json:"content_rating"`
	Game          GameRules      `yaml:"game" json:"game"`
	Client        ClientSetup    `yaml:"client" json:"client"`
	Items         ItemGeneration `yaml:"items" json:"items"`
}

// GameRules ends the game after MaxClients and judges it against NeededGains.
type GameRules struct {
	MaxClients  int     `yaml:"max_clients" json:"max_clients"`
	NeededGains float64 `yaml:"needed_gains" json:"needed_gains"`
}

// ClientSetup holds the templates that shape every client of a shop.
type ClientSetup struct {
	InitialPrompt     string `yaml:"initial_prompt" json:"initial_prompt"`
	Rules             string `yaml:"rules" json:"rules"`
	PersonalityPrompt string `yaml:"personality_prompt" json:"personality_prompt"`
	ResponseReasoning string `yaml:"response_reasoning" json:"response_reasoning"`
	ReasoningRules    string `yaml:"reasoning_rules" json:"reasoning_rules"`

	PersonalityRequest chat.RequestParams `yaml:"personality_request" json:"personality_request"`
	ReplyRequest       chat.RequestParams `yaml:"reply_request" json:"reply_request"`
	ReasoningRequest   chat.RequestParams `yaml:"reasoning_request" json:"reasoning_request"`
}

// ItemGeneration is the layered context for the item-generation prompt.
type ItemGeneration struct {
	Scenario       string             `yaml:"scenario" json:"scenario"`
	Inspiration    string             `yaml:"inspiration" json:"inspiration"`
	Inspirations   []string           `yaml:"inspirations" json:"inspirations"`
	Cliche         string             `yaml:"cliche" json:"cliche"`
	Cliches        []string           `yaml:"cliches" json:"cliches"`
	OperationOrder string             `yaml:"operation_order" json:"operation_order"`
	Rules          []string           `yaml:"rules" json:"rules"`
	Prices         string             `yaml:"prices" json:"prices"`
	MinimumPrice   float64            `yaml:"minimum_price" json:"minimum_price"`
	MaximumPrice   float64            `yaml:"maximum_price" json:"maximum_price"`
	Command        string             `yaml:"command" json:"command"`
	ResultFields   []string           `yaml:"result_fields" json:"result_fields"`
	Request        chat.RequestParams `yaml:"request" json:"request"`
}

// Load decodes a shop from YAML. Unknown keys are rejected when strict is set.
func Load(r io.Reader, strict bool) (*Shop, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(strict)

	var s Shop
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode shop: %w", err)
	}
	return &s, nil
}

// LoadFile reads and decodes a shop file.
func LoadFile(path string, strict bool) (*Shop, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shop file %s: %w", path, err)
	}
	s, err := Load(bytes.NewReader(data), strict)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Validate checks that a shop can run a full game.
func (s *Shop) Validate() error {
	var problems []string
	require := func(field, v string) {
		if strings.TrimSpace(v) == "" {
			problems = append(problems, field+" is required")
		}
	}

	require("name", s.Name)
	require("client.initial_prompt", s.Client.InitialPrompt)
	require("client.rules", s.Client.Rules)
	require("client.personality_prompt", s.Client.PersonalityPrompt)
	require("client.response_reasoning", s.Client.ResponseReasoning)
	require("client.reasoning_rules", s.Client.ReasoningRules)
	require("items.scenario", s.Items.Scenario)
	require("items.command", s.Items.Command)

	if s.Game.MaxClients <= 0 {
		problems = append(problems, "game.max_clients must be positive")
	}
	if s.Game.NeededGains < 0 {
		problems = append(problems, "game.needed_gains cannot be negative")
	}
	if s.Items.MinimumPrice < 0 || s.Items.MaximumPrice <= s.Items.MinimumPrice {
		problems = append(problems, "items price range is invalid")
	}
	if len(s.Items.ResultFields) == 0 {
		problems = append(problems, "items.result_fields cannot be empty")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid shop %q: %s", s.Name, strings.Join(problems, "; "))
	}
	return nil
}

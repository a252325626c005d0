package prompts

import (
	"strings"
	"testing"

	"github.com/jwebster45206/haggle/pkg/negotiation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lantern = negotiation.Item{
	Name:        "Whispering Lantern",
	Description: "A dented brass lantern.",
	Effect:      "It only lights for liars.",
	MarketValue: 100,
	ClientOffer: 60,
}

func TestSeedBuilder_Order(t *testing.T) {
	seed, err := NewClientSeed().
		WithRules("Never reveal the market value.").
		WithItem(lantern).
		WithPersonality("Nervous, talks fast.").
		WithInitialPrompt("You are a customer in a pawn shop.").
		Build()
	require.NoError(t, err)

	sections := []string{
		"You are a customer in a pawn shop.",
		PersonalityPreamble,
		"Nervous, talks fast.",
		"Item name: Whispering Lantern",
		"Item description: A dented brass lantern.",
		"Item effect: It only lights for liars.",
		"The price you're offering: 60.00",
		"Never reveal the market value.",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(seed, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", s)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}
	assert.NotContains(t, seed, "100.00", "market value must stay hidden from the client")
}

func TestSeedBuilder_Required(t *testing.T) {
	_, err := NewClientSeed().WithItem(lantern).Build()
	assert.Error(t, err)

	_, err = NewClientSeed().WithInitialPrompt("role").Build()
	assert.Error(t, err)
}

func TestSeedBuilder_NoPersonality(t *testing.T) {
	seed, err := NewClientSeed().WithInitialPrompt("role").WithItem(lantern).Build()
	require.NoError(t, err)
	assert.NotContains(t, seed, PersonalityPreamble)
	assert.True(t, strings.HasPrefix(seed, "role\n"))
}

package rules

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"safespace/domain"
)

func TestEngine_WholeWordBoundaries(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(slog.Default())
	req.NoError(err)

	tests := []struct {
		name  string
		input string
		rule  domain.RuleID
		match string
	}{
		{
			name:  "Unkind word as whole word",
			input: "you are stupid",
			rule:  domain.RuleUnkindWord,
			match: "stupid",
		},
		{
			name:  "Excerpt preserves original casing",
			input: "What a CLOWN",
			rule:  domain.RuleUnkindWord,
			match: "CLOWN",
		},
		{
			name:  "Multi-word threat beats its suffix term",
			input: "I will kill you",
			rule:  domain.RuleThreat,
			match: "I will kill",
		},
		{
			name:  "Threat with apostrophe",
			input: "watch out, I'm coming for you",
			rule:  domain.RuleThreat,
			match: "I'm coming for you",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := engine.Evaluate(tt.input)
			req.Len(violations, 1, "input=%q", tt.input)
			req.Equal(tt.rule, violations[0].Rule)
			req.Equal(tt.match, violations[0].Match)
		})
	}
}

func TestEngine_SubstringsDoNotMatch(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(slog.Default())
	req.NoError(err)

	clean := []string{
		"a classy move",        // "ass" inside "classy"
		"the assassin movie",   // "ass" inside "assassin"
		"don't hurt yourself",  // "hurt you" inside "hurt yourself"
		"shellfish for dinner", // "hell" inside "shellfish"
		"",
		"   ",
	}
	for _, input := range clean {
		req.Empty(engine.Evaluate(input), "input=%q", input)
	}
}

func TestEngine_ProfanityNormalization(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(slog.Default())
	req.NoError(err)

	tests := []struct {
		name  string
		input string
		match string
	}{
		{name: "Plain uppercase", input: "FUCK", match: "FUCK"},
		{name: "Dot separated", input: "f.u.c.k", match: "f.u.c.k"},
		{name: "Dash separated", input: "f-u-c-k", match: "f-u-c-k"},
		{name: "Embedded in sentence", input: "oh what the hell", match: "hell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := engine.Evaluate(tt.input)
			req.Len(violations, 1)
			req.Equal(domain.RuleProfanity, violations[0].Rule)
			req.Equal(tt.match, violations[0].Match)
		})
	}
}

func TestEngine_CategoriesAccumulate(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(slog.Default())
	req.NoError(err)

	violations := engine.Evaluate("you stupid fool, I will hurt you, f.u.c.k")
	req.Len(violations, 3)

	// categories report in engine order, one violation each
	req.Equal(domain.RuleUnkindWord, violations[0].Rule)
	req.Equal("stupid", violations[0].Match)
	req.Equal(domain.RuleThreat, violations[1].Rule)
	req.Equal("hurt you", violations[1].Match)
	req.Equal(domain.RuleProfanity, violations[2].Rule)
	req.Equal("f.u.c.k", violations[2].Match)
}

func TestEngine_LeftmostMatchPerCategory(t *testing.T) {
	req := require.New(t)
	engine, err := NewEngine(slog.Default())
	req.NoError(err)

	violations := engine.Evaluate("idiot loser dummy")
	req.Len(violations, 1)
	req.Equal(domain.RuleUnkindWord, violations[0].Rule)
	req.Equal("idiot", violations[0].Match)
}

func TestSpacedVariant(t *testing.T) {
	req := require.New(t)

	variant, ok := spacedVariant([]rune(" fuck "))
	req.True(ok)
	req.Equal(" f u c k ", string(variant))

	// multi-word terms keep their own spacing
	_, ok = spacedVariant([]rune(" what the fuck "))
	req.False(ok)

	_, ok = spacedVariant([]rune(" a "))
	req.False(ok)
}

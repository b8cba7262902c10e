// Package toxicity wraps the pretrained harm-scoring model behind a
// violation-producing interface. The model is best effort: it loads
// asynchronously, may stay unavailable for a whole session, and its failures
// are absorbed by callers rather than propagated.
package toxicity

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode"

	"safespace/domain"
)

// Prediction is one category score for one input text.
// Match is true iff the score exceeds the configured confidence threshold.
type Prediction struct {
	Label string
	Score float64
	Match bool
}

// Classifier scores a batch of texts against the fixed category set,
// returning one prediction per category per input.
type Classifier interface {
	Classify(ctx context.Context, texts []string) ([][]Prediction, error)
}

type categoryWeights struct {
	Label   string             `json:"label"`
	Bias    float64            `json:"bias"`
	Weights map[string]float64 `json:"weights"`
}

type modelArtifact struct {
	Version    string            `json:"version"`
	Language   string            `json:"language"`
	Categories []categoryWeights `json:"categories"`
}

// LinearModel scores each category with a logistic regression over bag-of-words
// features. Weights come from a pretrained artifact; nothing is learned here.
type LinearModel struct {
	version    string
	threshold  float64
	categories []categoryWeights
}

func newLinearModel(artifact []byte, threshold float64) (*LinearModel, error) {
	var m modelArtifact
	if err := json.Unmarshal(artifact, &m); err != nil {
		return nil, fmt.Errorf("parsing model artifact: %w", err)
	}
	if len(m.Categories) == 0 {
		return nil, fmt.Errorf("model artifact %q holds no categories", m.Version)
	}
	return &LinearModel{
		version:    m.Version,
		threshold:  threshold,
		categories: m.Categories,
	}, nil
}

func (m *LinearModel) Classify(ctx context.Context, texts []string) ([][]Prediction, error) {
	out := make([][]Prediction, len(texts))
	for i, text := range texts {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		tokens := tokenize(text)
		predictions := make([]Prediction, 0, len(m.categories))
		for _, category := range m.categories {
			activation := category.Bias
			for _, token := range tokens {
				activation += category.Weights[token]
			}
			score := sigmoid(activation)
			predictions = append(predictions, Prediction{
				Label: category.Label,
				Score: score,
				Match: score > m.threshold,
			})
		}
		out[i] = predictions
	}
	return out, nil
}

// tokenize keeps preprocessing minimal: lowercase, split on whitespace, strip
// surrounding punctuation. Inner characters stay untouched because "f*ck" is
// a different signal than "fck".
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		token := strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if token != "" {
			tokens = append(tokens, token)
		}
	}
	return tokens
}

func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}

var friendlyLabels = map[string]string{
	"insult":  "AI detected an insult",
	"threat":  "AI detected a threat",
	"obscene": "AI detected bad words",
}

// Violations converts the matched categories of one input into violations.
// The match marker names the category instead of quoting text, because the
// flagged property is semantic, not lexical.
func Violations(predictions []Prediction) []domain.Violation {
	var out []domain.Violation
	for _, p := range predictions {
		if !p.Match {
			continue
		}
		label, ok := friendlyLabels[p.Label]
		if !ok {
			label = "Detected harmful content (AI)"
		}
		out = append(out, domain.Violation{
			Rule:  domain.RuleID("ai_" + p.Label),
			Label: label,
			Match: fmt.Sprintf("AI (%s)", p.Label),
		})
	}
	return out
}

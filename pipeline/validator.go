// Package pipeline runs outgoing text through the deterministic rule layer
// and, when the model is ready, the statistical toxicity layer. Rules always
// run first and short-circuit the model on any hit.
package pipeline

import (
	"context"
	"log/slog"
	"sync/atomic"

	"safespace/domain"
	"safespace/errors"
)

//go:generate go run go.uber.org/mock/mockgen -source=validator.go -destination=../mocks/mock_pipeline.go -package=mocks

// IRuleEngine is the deterministic layer. It is always available.
type IRuleEngine interface {
	Evaluate(text string) []domain.Violation
}

// IToxicityGate is the statistical layer. Classify is only called once Ready
// reports true; before that the layer is skipped, never awaited.
type IToxicityGate interface {
	Ready() bool
	Classify(ctx context.Context, text string) ([]domain.Violation, error)
}

// Validator is the single checkpoint every outgoing message passes through.
// At most one validation runs at a time per client.
type Validator struct {
	log          *slog.Logger
	rules        IRuleEngine
	toxicity     IToxicityGate
	busy         atomic.Bool
	rulesEnabled atomic.Bool
}

func NewValidator(log *slog.Logger, rules IRuleEngine, toxicity IToxicityGate) *Validator {
	v := &Validator{log: log, rules: rules, toxicity: toxicity}
	v.rulesEnabled.Store(true)
	return v
}

// SetRulesEnabled toggles the deterministic layer. The statistical layer is
// unaffected and keeps screening messages either way.
func (v *Validator) SetRulesEnabled(enabled bool) {
	v.rulesEnabled.Store(enabled)
	v.log.Info("Rule layer toggled", "enabled", enabled)
}

func (v *Validator) RulesEnabled() bool {
	return v.rulesEnabled.Load()
}

// Validate returns the verdict for one outgoing message. A second call while
// one is in flight fails with ErrValidationInFlight instead of queueing.
func (v *Validator) Validate(ctx context.Context, text string) (domain.Verdict, error) {
	if !v.busy.CompareAndSwap(false, true) {
		return domain.Verdict{}, errors.ErrValidationInFlight
	}
	defer v.busy.Store(false)

	if v.rulesEnabled.Load() {
		if violations := v.rules.Evaluate(text); len(violations) > 0 {
			return domain.Verdict{Violations: violations}, nil
		}
	}

	verdict := domain.Verdict{Accepted: true}
	if !v.toxicity.Ready() {
		return verdict, nil
	}

	violations, err := v.toxicity.Classify(ctx, text)
	if err != nil {
		// the model misbehaving must never block a rule-clean message
		v.log.Warn("Toxicity classification failed, letting the message pass", "error", err)
		verdict.StatisticalLayerRan = true
		return verdict, nil
	}

	verdict.StatisticalLayerRan = true
	verdict.Violations = violations
	verdict.Accepted = len(violations) == 0
	return verdict, nil
}

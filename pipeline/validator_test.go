package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"safespace/domain"
	"safespace/errors"
	"safespace/mocks"
)

func TestValidator_Verdicts(t *testing.T) {
	ruleHit := domain.Violation{Rule: domain.RuleUnkindWord, Label: "Contains unkind word", Match: "stupid"}
	modelHit := domain.Violation{Rule: "ai_toxicity", Label: "My AI finds this message toxic", Match: "AI (toxicity)"}

	tests := []struct {
		name       string
		rules      []domain.Violation
		modelReady bool
		model      []domain.Violation
		want       domain.Verdict
	}{
		{
			name:       "clean text and ready model",
			modelReady: true,
			want:       domain.Verdict{Accepted: true, StatisticalLayerRan: true},
		},
		{
			name: "rule violation before the model loads",
			rules: []domain.Violation{ruleHit},
			want: domain.Verdict{Violations: []domain.Violation{ruleHit}},
		},
		{
			name:       "model catches what rules miss",
			modelReady: true,
			model:      []domain.Violation{modelHit},
			want:       domain.Verdict{Violations: []domain.Violation{modelHit}, StatisticalLayerRan: true},
		},
		{
			name: "clean text while the model is still loading",
			want: domain.Verdict{Accepted: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			rules := mocks.NewMockIRuleEngine(ctrl)
			rules.EXPECT().Evaluate("some text").Return(tt.rules)

			toxicity := mocks.NewMockIToxicityGate(ctrl)
			if len(tt.rules) == 0 {
				toxicity.EXPECT().Ready().Return(tt.modelReady)
				if tt.modelReady {
					toxicity.EXPECT().Classify(gomock.Any(), "some text").Return(tt.model, nil)
				}
			}

			validator := NewValidator(slog.Default(), rules, toxicity)
			verdict, err := validator.Validate(context.Background(), "some text")
			req.NoError(err)
			req.Equal(tt.want, verdict)
		})
	}
}

func TestValidator_RuleHitShortCircuitsTheModel(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rules := mocks.NewMockIRuleEngine(ctrl)
	rules.EXPECT().Evaluate(gomock.Any()).Return([]domain.Violation{
		{Rule: domain.RuleThreat, Label: "Contains threatening language", Match: "I will kill"},
	})

	// no Ready and no Classify expectations: any call fails the test
	toxicity := mocks.NewMockIToxicityGate(ctrl)

	verdict, err := NewValidator(slog.Default(), rules, toxicity).
		Validate(context.Background(), "I will kill your vibe")
	req.NoError(err)
	req.False(verdict.Accepted)
	req.False(verdict.StatisticalLayerRan)
}

func TestValidator_ClassifierErrorLetsTheMessagePass(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	rules := mocks.NewMockIRuleEngine(ctrl)
	rules.EXPECT().Evaluate(gomock.Any()).Return(nil)

	toxicity := mocks.NewMockIToxicityGate(ctrl)
	toxicity.EXPECT().Ready().Return(true)
	toxicity.EXPECT().Classify(gomock.Any(), gomock.Any()).Return(nil, errors.ErrModelNotReady)

	verdict, err := NewValidator(slog.Default(), rules, toxicity).
		Validate(context.Background(), "hello friend")
	req.NoError(err)
	req.True(verdict.Accepted)
}

func TestValidator_RejectsConcurrentValidation(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entered := make(chan struct{})
	release := make(chan struct{})

	rules := mocks.NewMockIRuleEngine(ctrl)
	rules.EXPECT().Evaluate(gomock.Any()).DoAndReturn(func(string) []domain.Violation {
		close(entered)
		<-release
		return nil
	})

	toxicity := mocks.NewMockIToxicityGate(ctrl)
	toxicity.EXPECT().Ready().Return(false)

	validator := NewValidator(slog.Default(), rules, toxicity)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := validator.Validate(context.Background(), "first")
		req.NoError(err)
	}()

	<-entered
	_, err := validator.Validate(context.Background(), "second")
	req.ErrorIs(err, errors.ErrValidationInFlight)

	close(release)
	wg.Wait()

	// the guard releases once the first validation finishes
	rules.EXPECT().Evaluate(gomock.Any()).Return(nil)
	toxicity.EXPECT().Ready().Return(false)
	_, err = validator.Validate(context.Background(), "third")
	req.NoError(err)
}

func TestValidator_RuleToggle(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// rules are never consulted while disabled
	rules := mocks.NewMockIRuleEngine(ctrl)
	toxicity := mocks.NewMockIToxicityGate(ctrl)
	toxicity.EXPECT().Ready().Return(false)

	validator := NewValidator(slog.Default(), rules, toxicity)
	req.True(validator.RulesEnabled())

	validator.SetRulesEnabled(false)
	verdict, err := validator.Validate(context.Background(), "you are stupid")
	req.NoError(err)
	req.True(verdict.Accepted)
}

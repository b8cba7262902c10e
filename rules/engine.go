// Package rules implements the deterministic layer of message validation:
// three independent vocabulary-based categories matched with an Aho-Corasick
// automaton over whole-word boundaries.
package rules

import (
	"embed"
	"fmt"
	"log/slog"

	goahocorasick "github.com/anknown/ahocorasick"

	"safespace/domain"
)

//go:embed vocab/*.txt
var vocabFS embed.FS

// Engine evaluates a message against every category. Evaluation is pure,
// synchronous and side-effect free; categories never short-circuit each other.
type Engine struct {
	checkers []*categoryChecker
}

type categoryChecker struct {
	rule    domain.RuleID
	label   string
	ascii   bool
	machine *goahocorasick.Machine
}

// NewEngine loads the embedded vocabularies and builds one automaton per
// category. The profanity category runs in ascii mode and additionally
// matches letter-spaced spellings of its single-word terms.
func NewEngine(log *slog.Logger) (*Engine, error) {
	specs := []struct {
		rule  domain.RuleID
		label string
		file  string
		ascii bool
	}{
		{domain.RuleUnkindWord, "Contains unkind word", "vocab/unkind.txt", false},
		{domain.RuleThreat, "Contains threatening language", "vocab/threats.txt", false},
		{domain.RuleProfanity, "Contains inappropriate language", "vocab/profanity.txt", true},
	}

	engine := &Engine{}
	for _, spec := range specs {
		terms, err := loadVocabulary(vocabFS, spec.file)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", spec.file, err)
		}
		checker, err := newCategoryChecker(spec.rule, spec.label, terms, spec.ascii)
		if err != nil {
			return nil, fmt.Errorf("building %s automaton: %w", spec.rule, err)
		}
		log.Info("Vocabulary loaded", "rule", spec.rule, "terms", len(terms))
		engine.checkers = append(engine.checkers, checker)
	}
	return engine, nil
}

func newCategoryChecker(rule domain.RuleID, label string, terms []string, ascii bool) (*categoryChecker, error) {
	seen := make(map[string]struct{})
	var patterns [][]rune
	add := func(p []rune) {
		// a pattern of bare sentinels would match everything
		if len(p) < 3 {
			return
		}
		if _, ok := seen[string(p)]; ok {
			return
		}
		seen[string(p)] = struct{}{}
		patterns = append(patterns, p)
	}

	for _, term := range terms {
		p := normalizeText(term, ascii).norm
		add(p)
		if ascii {
			if variant, ok := spacedVariant(p); ok {
				add(variant)
			}
		}
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &categoryChecker{rule: rule, label: label, ascii: ascii, machine: m}, nil
}

// Evaluate reports at most one violation per category, each carrying the
// leftmost matched excerpt from the original text.
func (e *Engine) Evaluate(text string) []domain.Violation {
	var violations []domain.Violation
	for _, c := range e.checkers {
		if v, ok := c.scan(text); ok {
			violations = append(violations, v)
		}
	}
	return violations
}

func (c *categoryChecker) scan(text string) (domain.Violation, bool) {
	mapping := normalizeText(text, c.ascii)
	spans := c.machine.MultiPatternSearch(mapping.norm, false)
	if len(spans) == 0 {
		return domain.Violation{}, false
	}

	// leftmost match wins; on a tie, prefer the longer phrase
	best := spans[0]
	for _, span := range spans[1:] {
		if span.Pos < best.Pos || (span.Pos == best.Pos && len(span.Word) > len(best.Word)) {
			best = span
		}
	}

	// The pattern's first and last runes are boundary spaces; the excerpt is
	// the original slice spanned by the word runes in between.
	start := best.Pos + 1
	end := best.Pos + len(best.Word) - 2
	if start < 0 || end >= len(mapping.origIdx) || start > end {
		return domain.Violation{Rule: c.rule, Label: c.label}, true
	}

	origRunes := []rune(text)
	excerpt := string(origRunes[mapping.origIdx[start] : mapping.origIdx[end]+1])
	return domain.Violation{Rule: c.rule, Label: c.label, Match: excerpt}, true
}

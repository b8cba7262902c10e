package domain

// RuleID identifies one validation category, deterministic or statistical.
type RuleID string

const (
	RuleUnkindWord RuleID = "unkind_word"
	RuleThreat     RuleID = "threat"
	RuleProfanity  RuleID = "profanity"
)

// Violation is one category flagged against a candidate message.
// Match holds the literal excerpt for deterministic rules and a
// machine-detected marker (e.g. "AI (insult)") for statistical ones.
type Violation struct {
	Rule  RuleID
	Label string
	Match string
}

// Verdict is the final decision of the validation pipeline.
// StatisticalLayerRan is false both when the deterministic layer
// short-circuited and when the model was not ready.
type Verdict struct {
	Accepted            bool
	Violations          []Violation
	StatisticalLayerRan bool
}

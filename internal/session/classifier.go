package session

import "strings"

// Rule maps preset-name substrings to a session kind. Rules are evaluated
// in order; the first match wins.
type Rule struct {
	Name  string
	Match []string
	Kind  Kind
}

// DefaultRules covers the preset vocabulary observed in XVI exports so far.
// The vendor vocabulary is open-ended, which is why this is an ordered rule
// list with an explicit UNKNOWN fallback rather than a closed switch: new
// preset strings degrade safely instead of crashing or misclassifying.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "motionview", Match: []string{"motionview", "motion view"}, Kind: KindKIMMotionView},
		{Name: "kim", Match: []string{"kim"}, Kind: KindKIMLearning},
		{Name: "cbct", Match: []string{"cbct", "volumeview", "symmetry"}, Kind: KindCBCT},
	}
}

// Classifier tags acquisitions by preset name.
type Classifier struct {
	rules []Rule
}

// NewClassifier builds a classifier from an ordered rule list; an empty
// list selects DefaultRules.
func NewClassifier(rules []Rule) *Classifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Classifier{rules: rules}
}

// Classify maps a preset name to a session kind. Matching is
// case-insensitive substring; unmatched presets yield KindUnknown.
func (c *Classifier) Classify(preset string) Kind {
	lower := strings.ToLower(preset)
	for _, rule := range c.rules {
		for _, sub := range rule.Match {
			if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
				return rule.Kind
			}
		}
	}
	return KindUnknown
}

package filter

import (
	"math"

	"github.com/jjeg1979/gbx-analyzer/internal/analysis"
)

// Result is the outcome of evaluating a rule set against one metric set.
type Result struct {
	Passed   bool
	Failures []Rule
}

// FailureStrings renders the failed rules for logging and persistence.
func (r Result) FailureStrings() []string {
	if len(r.Failures) == 0 {
		return nil
	}
	out := make([]string, len(r.Failures))
	for i, rule := range r.Failures {
		out[i] = rule.String()
	}
	return out
}

// Evaluate checks every rule against the metric set. A strategy passes
// only when all rules hold. Missing metrics and NaN values fail their
// rule, so undefined metrics never pass a threshold.
func (rs RuleSet) Evaluate(m analysis.MetricSet) Result {
	result := Result{Passed: true}
	for _, rule := range rs {
		value, ok := m[rule.Metric]
		if !ok || !compare(value, rule.Op, rule.Bound) {
			result.Passed = false
			result.Failures = append(result.Failures, rule)
		}
	}
	return result
}

// compare applies the operator. An undefined (NaN) metric fails every
// operator, including !=.
func compare(value float64, op Operator, bound float64) bool {
	if math.IsNaN(value) {
		return false
	}
	switch op {
	case OpGE:
		return value >= bound
	case OpGT:
		return value > bound
	case OpLE:
		return value <= bound
	case OpLT:
		return value < bound
	case OpEQ:
		return value == bound
	case OpNE:
		return value != bound
	default:
		return false
	}
}

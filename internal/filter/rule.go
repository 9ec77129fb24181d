// Package filter evaluates metric threshold rules against computed
// metric sets to shortlist strategies.
package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jjeg1979/gbx-analyzer/internal/analysis"
)

// ErrInvalidRule marks configuration errors in threshold rules. They are
// surfaced before any evaluation takes place.
var ErrInvalidRule = errors.New("invalid threshold rule")

// Operator is a comparison operator in a threshold rule.
type Operator string

const (
	OpGE Operator = ">="
	OpGT Operator = ">"
	OpLE Operator = "<="
	OpLT Operator = "<"
	OpEQ Operator = "=="
	OpNE Operator = "!="
)

var operators = map[string]Operator{
	">=": OpGE,
	">":  OpGT,
	"<=": OpLE,
	"<":  OpLT,
	"==": OpEQ,
	"!=": OpNE,
}

// Rule is one metric threshold: a metric name, a comparison operator and
// a bound value.
type Rule struct {
	Metric string
	Op     Operator
	Bound  float64
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %s %g", r.Metric, r.Op, r.Bound)
}

// ParseRule parses a rule expression such as "profit_factor >= 1.5".
func ParseRule(expr string) (Rule, error) {
	fields := strings.Fields(expr)
	if len(fields) != 3 {
		return Rule{}, fmt.Errorf("%w %q: want <metric> <op> <bound>", ErrInvalidRule, expr)
	}

	metric := fields[0]
	if !analysis.Known(metric) {
		return Rule{}, fmt.Errorf("%w %q: unknown metric %q", ErrInvalidRule, expr, metric)
	}

	op, ok := operators[fields[1]]
	if !ok {
		return Rule{}, fmt.Errorf("%w %q: unknown operator %q", ErrInvalidRule, expr, fields[1])
	}

	bound, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return Rule{}, fmt.Errorf("%w %q: bad bound %q", ErrInvalidRule, expr, fields[2])
	}

	return Rule{Metric: metric, Op: op, Bound: bound}, nil
}

// RuleSet combines rules with logical AND.
type RuleSet []Rule

// ParseRuleSet parses every expression; a single bad rule rejects the set.
func ParseRuleSet(exprs []string) (RuleSet, error) {
	rules := make(RuleSet, 0, len(exprs))
	for _, expr := range exprs {
		rule, err := ParseRule(expr)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

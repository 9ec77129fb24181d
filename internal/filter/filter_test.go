package filter

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjeg1979/gbx-analyzer/internal/analysis"
)

func TestParseRule(t *testing.T) {
	rule, err := ParseRule("profit_factor >= 1.5")
	require.NoError(t, err)
	assert.Equal(t, Rule{Metric: "profit_factor", Op: OpGE, Bound: 1.5}, rule)
	assert.Equal(t, "profit_factor >= 1.5", rule.String())
}

func TestParseRuleErrors(t *testing.T) {
	cases := []string{
		"profit_factor >=",
		"profit_factor ~ 1.5",
		"made_up_metric >= 1.5",
		"profit_factor >= lots",
		"",
	}
	for _, expr := range cases {
		_, err := ParseRule(expr)
		require.Error(t, err, expr)
		assert.True(t, errors.Is(err, ErrInvalidRule), expr)
	}
}

func TestParseRuleSetRejectsBadRule(t *testing.T) {
	_, err := ParseRuleSet([]string{"win_rate >= 0.5", "bogus <= 1"})
	assert.True(t, errors.Is(err, ErrInvalidRule))
}

func TestEvaluateAllRulesMustHold(t *testing.T) {
	m := analysis.MetricSet{
		analysis.MetricProfitFactor: 1.5,
		analysis.MetricWinRate:      0.6,
	}

	rules, err := ParseRuleSet([]string{"profit_factor >= 1.2", "win_rate >= 0.5"})
	require.NoError(t, err)
	assert.True(t, rules.Evaluate(m).Passed)

	rules, err = ParseRuleSet([]string{"profit_factor >= 2.0", "win_rate >= 0.5"})
	require.NoError(t, err)

	result := rules.Evaluate(m)
	assert.False(t, result.Passed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "profit_factor >= 2", result.Failures[0].String())
}

// Contradictory bounds on the same metric can never both hold.
func TestEvaluateContradictoryBounds(t *testing.T) {
	rules, err := ParseRuleSet([]string{"win_rate >= 0.8", "win_rate <= 0.2"})
	require.NoError(t, err)

	for _, wr := range []float64{0.0, 0.2, 0.5, 0.8, 1.0} {
		result := rules.Evaluate(analysis.MetricSet{analysis.MetricWinRate: wr})
		assert.False(t, result.Passed, "win_rate %v", wr)
	}
}

func TestEvaluateNaNFailsEveryOperator(t *testing.T) {
	m := analysis.MetricSet{analysis.MetricProfitFactor: math.NaN()}

	for _, expr := range []string{
		"profit_factor >= 0",
		"profit_factor < 999",
		"profit_factor != 1",
	} {
		rules, err := ParseRuleSet([]string{expr})
		require.NoError(t, err)
		assert.False(t, rules.Evaluate(m).Passed, expr)
	}
}

func TestEvaluateMissingMetricFails(t *testing.T) {
	rules := RuleSet{{Metric: analysis.MetricExpectancy, Op: OpGT, Bound: 0}}
	result := rules.Evaluate(analysis.MetricSet{})
	assert.False(t, result.Passed)
	assert.Equal(t, []string{"expectancy > 0"}, result.FailureStrings())
}

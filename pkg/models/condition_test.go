package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateConditions_EmptyListPasses(t *testing.T) {
	assert.True(t, EvaluateConditions(nil, map[string]any{"a": 1}, nil))
}

func TestEvaluateConditions_AndShortCircuit(t *testing.T) {
	conditions := []Condition{
		{Field: "a", Operator: OpEquals, Value: 1, LogicalOperator: LogicalAnd},
		{Field: "b", Operator: OpEquals, Value: 2},
	}

	assert.False(t, EvaluateConditions(conditions, map[string]any{"a": 1, "b": 3}, nil))
	assert.True(t, EvaluateConditions(conditions, map[string]any{"a": 1, "b": 2}, nil))
}

func TestEvaluateConditions_OrShortCircuitsTrue(t *testing.T) {
	conditions := []Condition{
		{Field: "a", Operator: OpEquals, Value: 1, LogicalOperator: LogicalOr},
		{Field: "missing", Operator: OpEquals, Value: "x"},
	}

	// First condition passes, OR never evaluates the second.
	assert.True(t, EvaluateConditions(conditions, map[string]any{"a": 1}, nil))
}

func TestEvaluateConditions_OrderDependentFold(t *testing.T) {
	// (a OR b) AND c under standard precedence would be true here; the
	// fold evaluates left to right instead: a=false, OR evaluates b=true,
	// then AND evaluates c=false, so the result is false.
	conditions := []Condition{
		{Field: "a", Operator: OpEquals, Value: 1, LogicalOperator: LogicalOr},
		{Field: "b", Operator: OpEquals, Value: 2, LogicalOperator: LogicalAnd},
		{Field: "c", Operator: OpEquals, Value: 3},
	}

	payload := map[string]any{"a": 9, "b": 2, "c": 9}
	assert.False(t, EvaluateConditions(conditions, payload, nil))
}

func TestEvaluateConditions_DefaultOperatorIsAnd(t *testing.T) {
	conditions := []Condition{
		{Field: "a", Operator: OpEquals, Value: 1},
		{Field: "b", Operator: OpEquals, Value: 2},
	}

	assert.False(t, EvaluateConditions(conditions, map[string]any{"a": 2, "b": 2}, nil))
}

func TestEvaluateConditions_FieldLookupFallsBackToContext(t *testing.T) {
	conditions := []Condition{
		{Field: "user.role", Operator: OpEquals, Value: "admin"},
	}

	payload := map[string]any{"text": "hi"}
	contextData := map[string]any{"user": map[string]any{"role": "admin"}}

	assert.True(t, EvaluateConditions(conditions, payload, contextData))
}

func TestEvaluateConditions_PayloadShadowsContext(t *testing.T) {
	conditions := []Condition{
		{Field: "role", Operator: OpEquals, Value: "admin"},
	}

	payload := map[string]any{"role": "user"}
	contextData := map[string]any{"role": "admin"}

	assert.False(t, EvaluateConditions(conditions, payload, contextData))
}

func TestCondition_Operators(t *testing.T) {
	payload := map[string]any{
		"name":   "hookflow-service",
		"count":  float64(10),
		"email":  "ops@example.com",
		"nested": map[string]any{"level": "deep"},
	}

	tests := []struct {
		name      string
		condition Condition
		expected  bool
	}{
		{"equals numeric coercion", Condition{Field: "count", Operator: OpEquals, Value: 10}, true},
		{"not equals", Condition{Field: "name", Operator: OpNotEquals, Value: "other"}, true},
		{"contains", Condition{Field: "name", Operator: OpContains, Value: "flow"}, true},
		{"not contains", Condition{Field: "name", Operator: OpNotContains, Value: "xyz"}, true},
		{"starts with", Condition{Field: "name", Operator: OpStartsWith, Value: "hook"}, true},
		{"ends with", Condition{Field: "name", Operator: OpEndsWith, Value: "service"}, true},
		{"greater than", Condition{Field: "count", Operator: OpGreaterThan, Value: 5}, true},
		{"greater than false", Condition{Field: "count", Operator: OpGreaterThan, Value: 15}, false},
		{"less than", Condition{Field: "count", Operator: OpLessThan, Value: 15}, true},
		{"regex", Condition{Field: "email", Operator: OpRegex, Value: `^[a-z]+@example\.com$`}, true},
		{"regex no match", Condition{Field: "email", Operator: OpRegex, Value: `^admin@`}, false},
		{"dotted path", Condition{Field: "nested.level", Operator: OpEquals, Value: "deep"}, true},
		{"missing field fails", Condition{Field: "absent", Operator: OpEquals, Value: "x"}, false},
		{"unknown operator fails", Condition{Field: "name", Operator: "unknown", Value: "x"}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EvaluateConditions([]Condition{tc.condition}, payload, nil))
		})
	}
}

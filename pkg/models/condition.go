package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ConditionOperator compares a looked-up field to a literal value.
type ConditionOperator string

const (
	OpEquals      ConditionOperator = "equals"
	OpNotEquals   ConditionOperator = "not_equals"
	OpContains    ConditionOperator = "contains"
	OpNotContains ConditionOperator = "not_contains"
	OpStartsWith  ConditionOperator = "starts_with"
	OpEndsWith    ConditionOperator = "ends_with"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpRegex       ConditionOperator = "regex"
)

// LogicalOperator combines a condition with the one following it.
type LogicalOperator string

const (
	LogicalAnd LogicalOperator = "AND"
	LogicalOr  LogicalOperator = "OR"
)

// Condition is one comparison in an automation's ordered condition list.
// LogicalOperator applies between this condition and the next one.
type Condition struct {
	Field           string            `json:"field"    validate:"required"`
	Operator        ConditionOperator `json:"operator" validate:"required"`
	Value           any               `json:"value"`
	LogicalOperator LogicalOperator   `json:"logical_operator,omitempty"`
}

// EvaluateConditions folds an ordered condition list left to right. The
// first condition seeds the result; each later condition is combined using
// the PRECEDING condition's logical operator (AND when unset). AND
// short-circuits to false as soon as the running result is false, OR
// short-circuits to true as soon as it is true. The fold is intentionally
// order-dependent and does not apply boolean-algebra precedence.
func EvaluateConditions(conditions []Condition, payload, contextData map[string]any) bool {
	if len(conditions) == 0 {
		return true
	}

	result := conditions[0].evaluate(payload, contextData)

	for i := 1; i < len(conditions); i++ {
		operator := conditions[i-1].LogicalOperator
		if operator == "" {
			operator = LogicalAnd
		}

		if operator == LogicalAnd {
			if !result {
				return false
			}

			result = conditions[i].evaluate(payload, contextData)

			continue
		}

		if result {
			return true
		}

		result = conditions[i].evaluate(payload, contextData)
	}

	return result
}

func (c Condition) evaluate(payload, contextData map[string]any) bool {
	value, found := LookupField(c.Field, payload, contextData)
	if !found {
		return false
	}

	switch c.Operator {
	case OpEquals:
		return looseEquals(value, c.Value)
	case OpNotEquals:
		return !looseEquals(value, c.Value)
	case OpContains:
		return strings.Contains(stringify(value), stringify(c.Value))
	case OpNotContains:
		return !strings.Contains(stringify(value), stringify(c.Value))
	case OpStartsWith:
		return strings.HasPrefix(stringify(value), stringify(c.Value))
	case OpEndsWith:
		return strings.HasSuffix(stringify(value), stringify(c.Value))
	case OpGreaterThan:
		left, right, ok := numericPair(value, c.Value)

		return ok && left > right
	case OpLessThan:
		left, right, ok := numericPair(value, c.Value)

		return ok && left < right
	case OpRegex:
		matched, err := regexp.MatchString(stringify(c.Value), stringify(value))

		return err == nil && matched
	default:
		return false
	}
}

// LookupField resolves a dotted path, checking the payload first and then
// the context data.
func LookupField(path string, payload, contextData map[string]any) (any, bool) {
	if value, found := LookupPath(path, payload); found {
		return value, true
	}

	return LookupPath(path, contextData)
}

// LookupPath resolves a dotted path inside one nested map.
func LookupPath(path string, data map[string]any) (any, bool) {
	if data == nil {
		return nil, false
	}

	parts := strings.Split(path, ".")
	current := any(data)

	for _, part := range parts {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = node[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

// looseEquals compares values the way event payloads are compared: numbers
// by value regardless of concrete type, everything else by string form.
func looseEquals(left, right any) bool {
	if left == right {
		return true
	}

	if l, r, ok := numericPair(left, right); ok {
		return l == r
	}

	return stringify(left) == stringify(right)
}

func numericPair(left, right any) (float64, float64, bool) {
	l, lok := toFloat(left)
	r, rok := toFloat(right)

	return l, r, lok && rok
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(v, 64)

		return parsed, err == nil
	default:
		return 0, false
	}
}

func stringify(value any) string {
	if value == nil {
		return ""
	}

	if s, ok := value.(string); ok {
		return s
	}

	return fmt.Sprintf("%v", value)
}

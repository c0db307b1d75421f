package domain

import "fmt"

// CompareOp is an integer comparison operator.
type CompareOp string

const (
	OpEqual        CompareOp = "=="
	OpNotEqual     CompareOp = "!="
	OpGreater      CompareOp = ">"
	OpLess         CompareOp = "<"
	OpGreaterEqual CompareOp = ">="
	OpLessEqual    CompareOp = "<="
)

// ParseCompareOp accepts the canonical operators plus a few authoring aliases.
func ParseCompareOp(s string) (CompareOp, error) {
	switch s {
	case "==", "=", "eq":
		return OpEqual, nil
	case "!=", "<>", "ne", "≠":
		return OpNotEqual, nil
	case ">", "gt":
		return OpGreater, nil
	case "<", "lt":
		return OpLess, nil
	case ">=", "ge", "≥":
		return OpGreaterEqual, nil
	case "<=", "le", "≤":
		return OpLessEqual, nil
	default:
		return "", fmt.Errorf("unknown comparison operator %q", s)
	}
}

// Compare applies the operator to a and b. Aliases accepted by
// ParseCompareOp ("=", "ge", ...) compare like their canonical form;
// unknown operators never match.
func (op CompareOp) Compare(a, b int) bool {
	switch op {
	case OpEqual:
		return a == b
	case OpNotEqual:
		return a != b
	case OpGreater:
		return a > b
	case OpLess:
		return a < b
	case OpGreaterEqual:
		return a >= b
	case OpLessEqual:
		return a <= b
	default:
		canonical, err := ParseCompareOp(string(op))
		if err != nil {
			return false
		}
		return canonical.Compare(a, b)
	}
}

// IntCondition compares an integer variable against a literal.
type IntCondition struct {
	Variable string    `json:"variable" yaml:"variable" mapstructure:"variable"`
	Op       CompareOp `json:"op" yaml:"op" mapstructure:"op"`
	Value    int       `json:"value" yaml:"value" mapstructure:"value"`
}

// BoolCondition requires a boolean variable to hold a value.
type BoolCondition struct {
	Variable string `json:"variable" yaml:"variable" mapstructure:"variable"`
	Value    bool   `json:"value" yaml:"value" mapstructure:"value"`
}

// Condition is satisfied iff every int and bool sub-condition is satisfied.
// The zero Condition is always satisfied.
type Condition struct {
	Ints  []IntCondition  `json:"ints,omitempty" yaml:"ints,omitempty" mapstructure:"ints"`
	Bools []BoolCondition `json:"bools,omitempty" yaml:"bools,omitempty" mapstructure:"bools"`
}

// IsEmpty reports whether the condition has no sub-conditions.
func (c Condition) IsEmpty() bool {
	return len(c.Ints) == 0 && len(c.Bools) == 0
}

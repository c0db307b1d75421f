package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// parseCondition accepts either the structured form
//
//	when: {ints: [{variable: gold, op: ">=", value: 5}], bools: [{variable: met_king, value: true}]}
//
// or a list of compact expressions combined with AND
//
//	when: ["gold >= 5", "met_king", "!door_locked", "flag == false"]
//
// A single expression string is accepted as a one-element list.
func parseCondition(raw any) (domain.Condition, error) {
	var cond domain.Condition
	switch v := raw.(type) {
	case nil:
		return cond, nil
	case string:
		return ParseExpressions([]string{v})
	case []any:
		exprs := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return cond, fmt.Errorf("condition expression must be a string, got %T", item)
			}
			exprs = append(exprs, s)
		}
		return ParseExpressions(exprs)
	case map[string]any:
		if err := decode(v, &cond); err != nil {
			return cond, fmt.Errorf("invalid condition: %w", err)
		}
		for i, ic := range cond.Ints {
			op, err := domain.ParseCompareOp(string(ic.Op))
			if err != nil {
				return cond, err
			}
			cond.Ints[i].Op = op
		}
		return cond, nil
	default:
		return cond, fmt.Errorf("unsupported condition type %T", raw)
	}
}

// ParseExpressions parses compact condition expressions combined with AND:
// "name", "!name" and "name op value" where value is an integer or boolean.
func ParseExpressions(exprs []string) (domain.Condition, error) {
	var cond domain.Condition
	for _, expr := range exprs {
		fields := strings.Fields(expr)
		switch len(fields) {
		case 1:
			name, want := fields[0], true
			if strings.HasPrefix(name, "!") {
				name, want = name[1:], false
			}
			if name == "" {
				return cond, fmt.Errorf("empty variable in condition %q", expr)
			}
			cond.Bools = append(cond.Bools, domain.BoolCondition{Variable: name, Value: want})

		case 3:
			op, err := domain.ParseCompareOp(fields[1])
			if err != nil {
				return cond, fmt.Errorf("condition %q: %w", expr, err)
			}
			if n, err := strconv.Atoi(fields[2]); err == nil {
				cond.Ints = append(cond.Ints, domain.IntCondition{Variable: fields[0], Op: op, Value: n})
				continue
			}
			if b, ok := boolLiteral(fields[2]); ok {
				switch op {
				case domain.OpEqual:
				case domain.OpNotEqual:
					b = !b
				default:
					return cond, fmt.Errorf("condition %q: booleans only support == and !=", expr)
				}
				cond.Bools = append(cond.Bools, domain.BoolCondition{Variable: fields[0], Value: b})
				continue
			}
			return cond, fmt.Errorf("condition %q: value must be an integer or true/false", expr)

		default:
			return cond, fmt.Errorf("malformed condition %q: want 'name', '!name' or 'name op value'", expr)
		}
	}
	return cond, nil
}

// boolLiteral accepts only the words true and false; "1" or "t" are integers or errors.
func boolLiteral(s string) (bool, bool) {
	switch s {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		Result:           out,
		WeaklyTypedInput: false,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

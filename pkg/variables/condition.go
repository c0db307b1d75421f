package variables

import "github.com/aretw0/colloquy/pkg/domain"

// Evaluate reports whether every sub-condition of cond holds.
func (s *Scopes) Evaluate(cond domain.Condition) bool {
	for _, c := range cond.Ints {
		if !c.Op.Compare(s.GetInt(c.Variable), c.Value) {
			return false
		}
	}
	for _, c := range cond.Bools {
		if s.GetBool(c.Variable) != c.Value {
			return false
		}
	}
	return true
}

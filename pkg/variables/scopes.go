package variables

import (
	"log/slog"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
)

// Scopes routes variable access between the session-local and global stores.
//
// Writes land in Global when it already declares the key and in Local otherwise,
// so authors make a variable persistent simply by declaring it globally.
// Reads check Local for presence first, then Global, then fall back to the zero value.
//
// Concurrent writers (parallel branches) to the same name are last-write-wins
// with no defined order.
type Scopes struct {
	Local  *Store
	Global *Store

	logger *slog.Logger
}

var _ domain.Variables = (*Scopes)(nil)

// NewScopes binds a local and a global store. Nil stores are replaced by empty ones.
func NewScopes(local, global *Store) *Scopes {
	if local == nil {
		local = NewStore()
	}
	if global == nil {
		global = NewStore()
	}
	return &Scopes{Local: local, Global: global, logger: logging.NewNop()}
}

// WithLogger sets the logger used to report rejected changes.
func (s *Scopes) WithLogger(logger *slog.Logger) *Scopes {
	if logger != nil {
		s.logger = logger
	}
	return s
}

func (s *Scopes) GetInt(name string) int {
	if s.Local.HasInt(name) {
		return s.Local.GetInt(name)
	}
	return s.Global.GetInt(name)
}

func (s *Scopes) GetBool(name string) bool {
	if s.Local.HasBool(name) {
		return s.Local.GetBool(name)
	}
	return s.Global.GetBool(name)
}

func (s *Scopes) GetString(name string) string {
	if s.Local.HasString(name) {
		return s.Local.GetString(name)
	}
	return s.Global.GetString(name)
}

func (s *Scopes) intTarget(name string) *Store {
	if s.Global.HasInt(name) {
		return s.Global
	}
	return s.Local
}

func (s *Scopes) boolTarget(name string) *Store {
	if s.Global.HasBool(name) {
		return s.Global
	}
	return s.Local
}

func (s *Scopes) stringTarget(name string) *Store {
	if s.Global.HasString(name) {
		return s.Global
	}
	return s.Local
}

func (s *Scopes) SetInt(name string, v int) { s.intTarget(name).SetInt(name, v) }

func (s *Scopes) AddInt(name string, delta int) int { return s.intTarget(name).AddInt(name, delta) }

func (s *Scopes) SetBool(name string, v bool) { s.boolTarget(name).SetBool(name, v) }

func (s *Scopes) ToggleBool(name string) bool { return s.boolTarget(name).ToggleBool(name) }

func (s *Scopes) SetString(name, v string) { s.stringTarget(name).SetString(name, v) }

// Apply executes a declarative change.
func (s *Scopes) Apply(c domain.VariableChange) {
	if c.Name == "" {
		s.logger.Warn("variable change without a name ignored")
		return
	}
	op := c.Op
	if op == "" {
		op = domain.OpSet
	}

	switch c.Type {
	case domain.VarInt:
		switch op {
		case domain.OpSet:
			s.SetInt(c.Name, c.Int)
		case domain.OpAdd:
			s.AddInt(c.Name, c.Int)
		default:
			s.logger.Warn("unsupported operation for int variable", "variable", c.Name, "op", string(op))
		}
	case domain.VarBool:
		switch op {
		case domain.OpSet:
			s.SetBool(c.Name, c.Bool)
		case domain.OpToggle:
			s.ToggleBool(c.Name)
		default:
			s.logger.Warn("unsupported operation for bool variable", "variable", c.Name, "op", string(op))
		}
	case domain.VarString:
		if op != domain.OpSet {
			s.logger.Warn("unsupported operation for string variable", "variable", c.Name, "op", string(op))
			return
		}
		s.SetString(c.Name, c.String)
	default:
		s.logger.Warn("unknown variable type", "variable", c.Name, "type", string(c.Type))
	}
}

// ApplyAll executes changes in order.
func (s *Scopes) ApplyAll(changes []domain.VariableChange) {
	for _, c := range changes {
		s.Apply(c)
	}
}

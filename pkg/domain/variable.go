package domain

// VarType identifies one of the three variable maps.
type VarType string

const (
	VarInt    VarType = "int"
	VarBool   VarType = "bool"
	VarString VarType = "string"
)

// ChangeOp is the operation a VariableChange applies.
type ChangeOp string

const (
	// OpSet assigns the value.
	OpSet ChangeOp = "set"
	// OpAdd adds Int to an integer variable.
	OpAdd ChangeOp = "add"
	// OpToggle flips a boolean variable.
	OpToggle ChangeOp = "toggle"
)

// VariableChange is a declarative write attached to a node or a choice option.
type VariableChange struct {
	Name   string   `json:"name" yaml:"name" mapstructure:"name"`
	Type   VarType  `json:"type" yaml:"type" mapstructure:"type"`
	Op     ChangeOp `json:"op,omitempty" yaml:"op,omitempty" mapstructure:"op"`
	Int    int      `json:"int,omitempty" yaml:"int,omitempty" mapstructure:"int"`
	Bool   bool     `json:"bool,omitempty" yaml:"bool,omitempty" mapstructure:"bool"`
	String string   `json:"string,omitempty" yaml:"string,omitempty" mapstructure:"string"`
}

// SetInt builds a change assigning an integer.
func SetInt(name string, v int) VariableChange {
	return VariableChange{Name: name, Type: VarInt, Op: OpSet, Int: v}
}

// AddInt builds a change adding delta to an integer.
func AddInt(name string, delta int) VariableChange {
	return VariableChange{Name: name, Type: VarInt, Op: OpAdd, Int: delta}
}

// SetBool builds a change assigning a boolean.
func SetBool(name string, v bool) VariableChange {
	return VariableChange{Name: name, Type: VarBool, Op: OpSet, Bool: v}
}

// ToggleBool builds a change flipping a boolean.
func ToggleBool(name string) VariableChange {
	return VariableChange{Name: name, Type: VarBool, Op: OpToggle}
}

// SetString builds a change assigning a string.
func SetString(name, v string) VariableChange {
	return VariableChange{Name: name, Type: VarString, Op: OpSet, String: v}
}

// Variables is the read/write view over the local and global stores that node processing sees.
type Variables interface {
	GetInt(name string) int
	GetBool(name string) bool
	GetString(name string) string
	Apply(change VariableChange)
	Evaluate(cond Condition) bool
	Format(text string) string
}

// IntEntry is one persisted integer variable.
type IntEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value int    `json:"value" yaml:"value"`
}

// BoolEntry is one persisted boolean variable.
type BoolEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value bool   `json:"value" yaml:"value"`
}

// StringEntry is one persisted string variable.
type StringEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// VariableSnapshot is the flat import/export layout of a variable store.
type VariableSnapshot struct {
	Ints    []IntEntry    `json:"ints,omitempty" yaml:"ints,omitempty"`
	Bools   []BoolEntry   `json:"bools,omitempty" yaml:"bools,omitempty"`
	Strings []StringEntry `json:"strings,omitempty" yaml:"strings,omitempty"`
}

// IsEmpty reports whether the snapshot holds no entries.
func (s VariableSnapshot) IsEmpty() bool {
	return len(s.Ints) == 0 && len(s.Bools) == 0 && len(s.Strings) == 0
}

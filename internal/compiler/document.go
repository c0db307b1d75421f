package compiler

import (
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Document is the on-disk layout of a dialogue graph (YAML or JSON).
type Document struct {
	ID          string           `yaml:"id"`
	Start       string           `yaml:"start"`
	AutoAdvance *AutoAdvanceDoc  `yaml:"auto_advance"`
	Globals     map[string]any   `yaml:"globals"`
	Nodes       []map[string]any `yaml:"nodes"`
}

// AutoAdvanceDoc mirrors domain.AutoAdvance with a string duration.
type AutoAdvanceDoc struct {
	Enabled bool   `yaml:"enabled"`
	Delay   string `yaml:"delay"`
}

// NodeDoc is the flat union of every node kind's fields.
// Each kind reads the subset it needs.
type NodeDoc struct {
	ID       string                  `mapstructure:"id"`
	Type     string                  `mapstructure:"type"`
	Disabled bool                    `mapstructure:"disabled"`
	Next     string                  `mapstructure:"next"`
	Changes  []domain.VariableChange `mapstructure:"changes"`

	// text
	Speaker       string        `mapstructure:"speaker"`
	Text          string        `mapstructure:"text"`
	Key           string        `mapstructure:"key"`
	AutoAdvance   *bool         `mapstructure:"auto_advance"`
	Delay         time.Duration `mapstructure:"delay"`
	InterruptOn   string        `mapstructure:"interrupt_on"`
	InterruptTo   string        `mapstructure:"interrupt_to"`
	Interruptible bool          `mapstructure:"interruptible"`

	// choice
	Options []OptionDoc `mapstructure:"options"`

	// condition
	When any    `mapstructure:"when"`
	Then string `mapstructure:"then"`
	Else string `mapstructure:"else"`

	// sequence / parallel
	Start    string           `mapstructure:"start"`
	Branches []string         `mapstructure:"branches"`
	Nodes    []map[string]any `mapstructure:"nodes"`

	// wait
	Duration time.Duration `mapstructure:"duration"`

	// stage
	Transition *domain.TransitionSpec  `mapstructure:"transition"`
	Character  *domain.CharacterAction `mapstructure:"character"`
	Background *domain.BackgroundSpec  `mapstructure:"background"`
	Camera     *domain.CameraAction    `mapstructure:"camera"`
	Effect     *domain.ScreenEffect    `mapstructure:"effect"`
	Event      *domain.EventRequest    `mapstructure:"event"`
}

// OptionDoc is one choice option.
type OptionDoc struct {
	Text    string                  `mapstructure:"text"`
	Key     string                  `mapstructure:"key"`
	To      string                  `mapstructure:"to"`
	When    any                     `mapstructure:"when"`
	Changes []domain.VariableChange `mapstructure:"changes"`
}

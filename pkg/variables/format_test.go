package variables_test

import (
	"testing"

	"github.com/aretw0/colloquy/pkg/variables"
	"github.com/stretchr/testify/assert"
)

func TestScopes_Format(t *testing.T) {
	local := variables.NewStore()
	global := variables.NewStore()
	s := variables.NewScopes(local, global)

	global.SetString("name", "Ada")
	global.SetInt("gold", 12)
	local.SetBool("brave", true)
	local.SetInt("mixed", 1)
	global.SetString("mixed", "text wins")
	local.SetString("hero", "local hero")
	global.SetString("hero", "global hero")

	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"Hello, {name}!", "Hello, Ada!"},
		{"{name} has {gold} gold", "Ada has 12 gold"},
		{"brave: {brave}", "brave: true"},
		{"{mixed}", "text wins"},
		{"{hero}", "local hero"},
		{"{ name }", "Ada"},
		{"unknown {who} stays", "unknown {who} stays"},
		{"{}", "{}"},
		{"open {name", "open {name"},
		{"close name}", "close name}"},
		{"{a {name}", "{a Ada"},
		{"{{name}}", "{Ada}"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, s.Format(tt.in))
		})
	}
}

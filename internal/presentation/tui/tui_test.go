package tui_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/aretw0/colloquy/internal/presentation/tui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpeakerStyle_Plain(t *testing.T) {
	style := tui.SpeakerStyle(false)
	assert.Equal(t, "Keeper", style("Keeper"))
}

func TestSpeakerStyle_Stable(t *testing.T) {
	style := tui.SpeakerStyle(true)
	assert.Equal(t, style("Keeper"), style("Keeper"))
	assert.Contains(t, style("Keeper"), "Keeper")
}

func TestRenderer(t *testing.T) {
	out, err := tui.NewRenderer(40)("**Welcome**, traveller.")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	assert.NotEmpty(t, buf.String())
}

func TestWidth_NotATerminal(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, tui.IsTerminal(f))
	assert.Equal(t, 80, tui.Width(f, 80))
}

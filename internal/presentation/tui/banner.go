package tui

import (
	"fmt"
	"hash/fnv"
	"io"

	"github.com/muesli/termenv"
)

var palette = []string{"#818cf8", "#a78bfa", "#c084fc", "#e879f9", "#f472b6", "#fb7185"}

// PrintBanner writes the Colloquy ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []string{
		"   ___      _ _                       ",
		"  / __|___ | | |___  __ _ _  _ _  _   ",
		" | (__/ _ \\| | / _ \\/ _` | || | || |  ",
		"  \\___\\___/|_|_\\___/\\__, |\\_,_|\\_, |  ",
		"                       |_|     |__/   ",
	}
	fmt.Fprintln(w)
	for i, l := range lines {
		fmt.Fprintln(w, termenv.String(l).Foreground(p.Color(palette[i%len(palette)])))
	}
	fmt.Fprintln(w)
}

// SpeakerStyle returns a function that colours speaker names.
// Each speaker keeps the same colour for the whole run.
// With colour disabled, names are returned unchanged.
func SpeakerStyle(color bool) func(string) string {
	if !color {
		return func(s string) string { return s }
	}
	p := termenv.ColorProfile()
	return func(name string) string {
		h := fnv.New32a()
		_, _ = h.Write([]byte(name))
		c := palette[h.Sum32()%uint32(len(palette))]
		return termenv.String(name).Foreground(p.Color(c)).Bold().String()
	}
}

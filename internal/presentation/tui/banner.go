package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the tradecoin banner.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Earthy gradient, from soil to leaf
	lines := []struct{ text, color string }{
		{" _                 _               _       ", "#a16207"},
		{"| |_ _ __ __ _  __| | ___  ___ ___ (_)_ __  ", "#ca8a04"},
		{"| __| '__/ _` |/ _` |/ _ \\/ __/ _ \\| | '_ \\ ", "#65a30d"},
		{"| |_| | | (_| | (_| |  __/ (_| (_) | | | | |", "#16a34a"},
		{" \\__|_|  \\__,_|\\__,_|\\___|\\___\\___/|_|_| |_|", "#059669"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

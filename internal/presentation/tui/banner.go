package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Lantern banner in lantern-red to gold.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{` _                _                   `, "#dc2626"},
		{`| |    __ _ _ __ | |_ ___ _ __ _ __   `, "#ea580c"},
		{`| |   / _' | '_ \| __/ _ \ '__| '_ \  `, "#f97316"},
		{`| |__| (_| | | | | ||  __/ |  | | | | `, "#f59e0b"},
		{`|_____\__,_|_| |_|\__\___|_|  |_| |_| `, "#eab308"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// palette holds the colors used for diagnostic output, disabled
// whenever stdout isn't a TTY or --no-color is set (honoring NO_COLOR
// too, same convention the pack's CLIs follow).
type palette struct {
	bold  *color.Color
	ok    *color.Color
	warn  *color.Color
	faint *color.Color
}

func newPalette() *palette {
	disabled := noColor || os.Getenv("NO_COLOR") != "" || !isatty.IsTerminal(os.Stdout.Fd())
	p := &palette{
		bold:  color.New(color.Bold),
		ok:    color.New(color.FgGreen),
		warn:  color.New(color.FgYellow),
		faint: color.New(color.Faint),
	}
	if disabled {
		for _, c := range []*color.Color{p.bold, p.ok, p.warn, p.faint} {
			c.DisableColor()
		}
	}
	return p
}

func (p *palette) section(title string) {
	p.bold.Fprintln(os.Stdout, title)
}

func (p *palette) kv(key string, value any) {
	fmt.Printf("  %-16s %v\n", key, value)
}

package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Verbosity selects how much a Console prints
type Verbosity int

const (
	Quiet Verbosity = iota
	Normal
	Verbose
)

// Stat is one line of a Console summary
type Stat struct {
	Name  string
	Value any
}

// Console prints the progress of a metamodel build for people.
// Errors are not its concern; they go through the CLI reporter.
type Console struct {
	level Verbosity
	out   io.Writer
	stamp bool

	heading *color.Color
	phase   *color.Color
	ok      *color.Color
	faint   *color.Color
}

// NewConsole creates a console writing to stdout. Colors follow NO_COLOR,
// FORCE_COLOR and TERM; timestamps are shown in verbose mode.
func NewConsole(level Verbosity) *Console {
	c := &Console{level: level, out: os.Stdout, stamp: level >= Verbose}
	c.colorize(colorsWanted())
	return c
}

// SetOutput redirects output to w and turns colors and timestamps off
func (c *Console) SetOutput(w io.Writer) {
	c.out = w
	c.stamp = false
	c.colorize(false)
}

func (c *Console) colorize(on bool) {
	c.heading = color.New(color.FgCyan, color.Bold)
	c.phase = color.New(color.FgBlue)
	c.ok = color.New(color.FgGreen)
	c.faint = color.New(color.FgHiBlack)
	for _, col := range []*color.Color{c.heading, c.phase, c.ok, c.faint} {
		if on {
			col.EnableColor()
		} else {
			col.DisableColor()
		}
	}
}

func colorsWanted() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}
	term := os.Getenv("TERM")
	return term != "" && term != "dumb"
}

// Header opens a run over the given sources
func (c *Console) Header(title string, sources ...string) {
	if c.level < Normal {
		return
	}
	c.heading.Fprintf(c.out, "metamodel: %s\n", title)
	if len(sources) > 0 {
		fmt.Fprintf(c.out, "Sources: %s\n", strings.Join(sources, ", "))
	}
	fmt.Fprintln(c.out)
}

// Phase starts a named phase such as scanning or introspecting
func (c *Console) Phase(name string) {
	if c.level >= Normal {
		c.phase.Fprintf(c.out, "%s:\n", name)
	}
}

// Step reports something a phase finished
func (c *Console) Step(format string, args ...any) {
	if c.level >= Normal {
		c.ok.Fprint(c.out, "✓ ")
		fmt.Fprintf(c.out, format+"\n", args...)
	}
}

// Info prints a plain progress line
func (c *Console) Info(format string, args ...any) {
	if c.level >= Normal {
		c.line(nil, format, args...)
	}
}

// Success prints a highlighted progress line
func (c *Console) Success(format string, args ...any) {
	if c.level >= Normal {
		c.line(c.ok, format, args...)
	}
}

// Detail prints only in verbose mode
func (c *Console) Detail(format string, args ...any) {
	if c.level >= Verbose {
		c.line(c.faint, "  "+format, args...)
	}
}

// Summary prints stats in the order given
func (c *Console) Summary(title string, stats ...Stat) {
	if c.level < Normal {
		return
	}
	fmt.Fprintf(c.out, "\n%s\n", title)
	for _, s := range stats {
		fmt.Fprintf(c.out, "   %s: %v\n", s.Name, s.Value)
	}
}

// Done closes the run
func (c *Console) Done(message string) {
	if c.level >= Normal {
		fmt.Fprintln(c.out)
		c.ok.Fprintf(c.out, "metamodel: %s\n", message)
	}
}

func (c *Console) line(col *color.Color, format string, args ...any) {
	var b strings.Builder
	if c.stamp {
		b.WriteString(time.Now().Format("15:04:05 "))
	}
	fmt.Fprintf(&b, format, args...)
	if col == nil {
		fmt.Fprintln(c.out, b.String())
		return
	}
	col.Fprintln(c.out, b.String())
}

package tui

import (
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultWidth is used when the output width cannot be determined.
const DefaultWidth = 80

// Terminal describes the output the widget draws on.
type Terminal struct {
	out io.Writer
	fd  int
	tty bool
}

// NewTerminal inspects out. Only *os.File outputs can be terminals.
func NewTerminal(out io.Writer) *Terminal {
	t := &Terminal{out: out, fd: -1}
	if f, ok := out.(*os.File); ok {
		t.fd = int(f.Fd())
		t.tty = term.IsTerminal(t.fd)
	}
	return t
}

// IsTerminal reports whether the output is an interactive terminal.
func (t *Terminal) IsTerminal() bool {
	return t.tty
}

// Width returns the terminal width, or DefaultWidth when unknown.
func (t *Terminal) Width() int {
	if !t.tty {
		return DefaultWidth
	}
	width, _, err := term.GetSize(t.fd)
	if err != nil || width <= 0 {
		return DefaultWidth
	}
	return width
}

// Output returns the underlying writer.
func (t *Terminal) Output() io.Writer {
	return t.out
}

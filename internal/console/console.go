// Package console writes the launcher's user-facing output: the banner,
// progress lines, diagnostics, and the pause before a fatal exit.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/term"
	"github.com/guumaster/logsymbols"
)

// BannerWidth is the width of the banner rule lines.
const BannerWidth = 35

// Printer writes to out and reads key presses from in.
type Printer struct {
	out io.Writer
	in  io.Reader

	headerStyle lipgloss.Style
	errorStyle  lipgloss.Style
	okStyle     lipgloss.Style
}

// New returns a Printer. Styling is dropped automatically when out is not a terminal.
func New(out io.Writer, in io.Reader) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:         out,
		in:          in,
		headerStyle: r.NewStyle().Bold(true),
		errorStyle:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		okStyle:     r.NewStyle().Foreground(lipgloss.Color("10")),
	}
}

// Banner prints title centered between two rule lines, then a blank line.
func (p *Printer) Banner(title string) {
	rule := strings.Repeat("=", BannerWidth)
	pad := (BannerWidth - len(title)) / 2
	if pad < 0 {
		pad = 0
	}
	centered := strings.Repeat(" ", pad) + title
	_, _ = fmt.Fprintln(p.out, p.headerStyle.Render(rule))
	_, _ = fmt.Fprintln(p.out, p.headerStyle.Render(centered))
	_, _ = fmt.Fprintln(p.out, p.headerStyle.Render(rule))
	_, _ = fmt.Fprintln(p.out)
}

// Infof prints one plain line.
func (p *Printer) Infof(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, fmt.Sprintf(format, args...))
}

// Successf prints one line prefixed with the success symbol.
func (p *Printer) Successf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, p.okStyle.Render(string(logsymbols.Success)+" "+fmt.Sprintf(format, args...)))
}

// Errorf prints one line prefixed with the error symbol.
func (p *Printer) Errorf(format string, args ...any) {
	_, _ = fmt.Fprintln(p.out, p.errorStyle.Render(string(logsymbols.Error)+" "+fmt.Sprintf(format, args...)))
}

// Pause prints prompt and blocks until one key is pressed. On a terminal the
// key is read in raw mode so Enter is not needed. End of input returns at once.
func (p *Printer) Pause(prompt string) {
	_, _ = fmt.Fprintln(p.out, prompt)
	if p.in == nil {
		return
	}
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(f.Fd()) {
		if state, err := term.MakeRaw(f.Fd()); err == nil {
			defer func() { _ = term.Restore(f.Fd(), state) }()
		}
	}
	var b [1]byte
	_, _ = p.in.Read(b[:])
}

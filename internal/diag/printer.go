package diag

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorError   = lipgloss.Color("#EF4444")
	colorWarning = lipgloss.Color("#F59E0B")
	colorMuted   = lipgloss.Color("#6B7280")
)

// Printer writes diagnostics in the file:line:col: severity: message form.
// With Color set the severity and location are styled for terminals; the
// renderer is bound to the output writer so non-terminal output stays plain.
type Printer struct {
	w        io.Writer
	color    bool
	errStyle lipgloss.Style
	wrnStyle lipgloss.Style
	locStyle lipgloss.Style
}

func NewPrinter(w io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:        w,
		color:    color,
		errStyle: r.NewStyle().Foreground(colorError).Bold(true),
		wrnStyle: r.NewStyle().Foreground(colorWarning).Bold(true),
		locStyle: r.NewStyle().Foreground(colorMuted),
	}
}

func (p *Printer) Print(d Diagnostic) error {
	if !p.color {
		_, err := fmt.Fprintln(p.w, d.String())
		return err
	}
	sev := d.Severity.String()
	switch d.Severity {
	case SeverityError:
		sev = p.errStyle.Render(sev)
	case SeverityWarning:
		sev = p.wrnStyle.Render(sev)
	}
	_, err := fmt.Fprintf(p.w, "%s: %s: %s\n", p.locStyle.Render(d.Span.String()), sev, d.Message)
	return err
}

func (p *Printer) PrintAll(ds []Diagnostic) error {
	for _, d := range ds {
		if err := p.Print(d); err != nil {
			return err
		}
	}
	return nil
}

package diag

import (
	"fmt"
	"sort"

	"brunhild/internal/source"
)

// Collector accumulates the diagnostics of one run. It is not safe for
// concurrent use; every run owns its own collector.
type Collector struct {
	items  []Diagnostic
	errors int
}

func NewCollector() *Collector {
	return &Collector{}
}

// Record appends d. Recorded diagnostics are never removed.
func (c *Collector) Record(d Diagnostic) {
	c.items = append(c.items, d)
	if d.IsError() {
		c.errors++
	}
}

// Report implements Reporter.
func (c *Collector) Report(d Diagnostic) {
	c.Record(d)
}

func (c *Collector) Errorf(phase Phase, code Code, span source.Span, format string, args ...any) {
	c.Record(Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Phase:    phase,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *Collector) Warnf(phase Phase, code Code, span source.Span, format string, args ...any) {
	c.Record(Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Phase:    phase,
		Span:     span,
		Message:  fmt.Sprintf(format, args...),
	})
}

func (c *Collector) HasErrors() bool {
	return c.errors > 0
}

func (c *Collector) ErrorCount() int {
	return c.errors
}

func (c *Collector) Len() int {
	return len(c.items)
}

// Drain returns every recorded diagnostic ordered by source position and then
// by phase. Diagnostics at the same position and phase keep recording order.
// The collector itself is left untouched.
func (c *Collector) Drain() []Diagnostic {
	out := make([]Diagnostic, len(c.items))
	copy(out, c.items)
	Sort(out)
	return out
}

// Sort orders diagnostics the way Drain does.
func Sort(ds []Diagnostic) {
	sort.SliceStable(ds, func(i, j int) bool {
		a, b := ds[i], ds[j]
		if a.Span.File != b.Span.File {
			return a.Span.File < b.Span.File
		}
		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}
		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}
		return a.Phase < b.Phase
	})
}

// Within counts error diagnostics whose span lies inside span.
func Within(ds []Diagnostic, span source.Span) int {
	n := 0
	for _, d := range ds {
		if d.IsError() && span.Contains(d.Span) {
			n++
		}
	}
	return n
}

// Tally counts diagnostics by severity.
func Tally(ds []Diagnostic) (errors, warnings int) {
	for _, d := range ds {
		switch d.Severity {
		case SeverityError:
			errors++
		case SeverityWarning:
			warnings++
		}
	}
	return errors, warnings
}

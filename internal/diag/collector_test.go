package diag

import (
	"bytes"
	"testing"

	"brunhild/internal/source"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(line, col int) source.Span {
	return source.Span{File: "t.sy", Start: source.Pos{Line: line, Column: col}, End: source.Pos{Line: line, Column: col + 1}}
}

func TestCollector(t *testing.T) {
	t.Run("Empty at start", func(t *testing.T) {
		c := NewCollector()
		assert.Equal(t, 0, c.Len())
		assert.False(t, c.HasErrors())
		assert.Empty(t, c.Drain())
	})

	t.Run("Warnings are not errors", func(t *testing.T) {
		c := NewCollector()
		c.Warnf(PhaseResolve, UnusedVariable, at(1, 1), "unused")
		assert.False(t, c.HasErrors())
		assert.Equal(t, 1, c.Len())
	})

	t.Run("Drain orders by position then phase", func(t *testing.T) {
		c := NewCollector()
		c.Errorf(PhaseEvaluate, RuntimeFault, at(3, 1), "fault")
		c.Errorf(PhaseResolve, UnresolvedReference, at(2, 4), "second")
		c.Errorf(PhaseParse, SyntaxError, at(2, 4), "first")
		c.Errorf(PhaseCheck, TypeMismatch, at(1, 9), "zero")

		out := c.Drain()
		require.Len(t, out, 4)
		assert.Equal(t, "zero", out[0].Message)
		assert.Equal(t, "first", out[1].Message)
		assert.Equal(t, "second", out[2].Message)
		assert.Equal(t, "fault", out[3].Message)
		assert.True(t, c.HasErrors())
		assert.Equal(t, 4, c.ErrorCount())
	})

	t.Run("Drain never removes", func(t *testing.T) {
		c := NewCollector()
		c.Errorf(PhaseParse, SyntaxError, at(1, 1), "x")
		first := c.Drain()
		first[0].Message = "mutated"
		second := c.Drain()
		require.Len(t, second, 1)
		assert.Equal(t, "x", second[0].Message)
	})

	t.Run("Same position keeps recording order", func(t *testing.T) {
		c := NewCollector()
		c.Errorf(PhaseResolve, UnresolvedReference, at(1, 1), "a")
		c.Errorf(PhaseResolve, UnresolvedReference, at(1, 1), "b")
		out := c.Drain()
		assert.Equal(t, "a", out[0].Message)
		assert.Equal(t, "b", out[1].Message)
	})
}

func TestDiagnostic_String(t *testing.T) {
	d := Diagnostic{Severity: SeverityError, Code: RuntimeFault, Span: at(4, 7), Message: "Division by zero"}
	assert.Equal(t, "t.sy:4:7: error: Division by zero", d.String())
}

func TestWithinAndTally(t *testing.T) {
	ds := []Diagnostic{
		{Severity: SeverityError, Span: at(2, 3)},
		{Severity: SeverityWarning, Span: at(2, 5)},
		{Severity: SeverityError, Span: at(9, 1)},
	}
	unit := source.Span{File: "t.sy", Start: source.Pos{Offset: 0, Line: 1, Column: 1}, End: source.Pos{Offset: 100, Line: 5, Column: 1}}
	for i := range ds {
		ds[i].Span.Start.Offset = ds[i].Span.Start.Line * 10
		ds[i].Span.End.Offset = ds[i].Span.Start.Offset + 1
	}
	assert.Equal(t, 1, Within(ds, unit))

	errs, warns := Tally(ds)
	assert.Equal(t, 2, errs)
	assert.Equal(t, 1, warns)
}

func TestPrinter_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)
	require.NoError(t, p.PrintAll([]Diagnostic{
		{Severity: SeverityWarning, Span: at(1, 2), Message: "unused variable `x`"},
		{Severity: SeverityError, Span: at(3, 4), Message: "boom"},
	}))
	assert.Equal(t, "t.sy:1:2: warning: unused variable `x`\nt.sy:3:4: error: boom\n", buf.String())
}

// Package diag defines diagnostics and the per-run collector that gathers them.
package diag

import (
	"fmt"

	"brunhild/internal/source"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Phase is the pipeline stage that produced a diagnostic. The order of the
// constants is the tie-break order used when sorting.
type Phase int

const (
	PhaseParse Phase = iota
	PhaseResolve
	PhaseCheck
	PhaseEvaluate
)

func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseResolve:
		return "resolve"
	case PhaseCheck:
		return "check"
	case PhaseEvaluate:
		return "evaluate"
	default:
		return "unknown"
	}
}

type Code string

const (
	SyntaxError          Code = "SyntaxError"
	MalformedSyntax      Code = "MalformedSyntax"
	UnsupportedConstruct Code = "UnsupportedConstruct"
	DuplicateDeclaration Code = "DuplicateDeclaration"
	UnresolvedReference  Code = "UnresolvedReference"
	UnusedVariable       Code = "UnusedVariable"
	TypeMismatch         Code = "TypeMismatch"
	ArgumentCount        Code = "ArgumentCount"
	InvalidAssignment    Code = "InvalidAssignment"
	InvalidJump          Code = "InvalidJump"
	MissingReturnValue   Code = "MissingReturnValue"
	InvalidConstant      Code = "InvalidConstant"
	RuntimeFault         Code = "RuntimeFault"
)

type Diagnostic struct {
	Severity Severity    `json:"severity"`
	Code     Code        `json:"code"`
	Phase    Phase       `json:"phase"`
	Span     source.Span `json:"span"`
	Message  string      `json:"message"`
}

// String renders the diagnostic as <file>:<line>:<col>: <severity>: <message>.
func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Span, d.Severity, d.Message)
}

func (d Diagnostic) IsError() bool {
	return d.Severity == SeverityError
}

// Reporter receives diagnostics from a pipeline stage.
type Reporter interface {
	Report(d Diagnostic)
}

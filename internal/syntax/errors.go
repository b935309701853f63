package syntax

import (
	"fmt"
	"strings"
	"unicode"

	"brunhild/internal/diag"
)

// SyntaxErrors reports one diagnostic per error-recovery site in the tree:
// every missing node and every outermost ERROR node.
func SyntaxErrors(root *Node, rep diag.Reporter) int {
	count := 0
	Walk(root, func(n *Node) bool {
		switch {
		case n.Missing:
			rep.Report(diag.Diagnostic{
				Severity: diag.SeverityError,
				Code:     diag.SyntaxError,
				Phase:    diag.PhaseParse,
				Span:     n.Span,
				Message:  fmt.Sprintf("syntax error: expected %s", formatExpectedKind(n.Kind)),
			})
			count++
			return false
		case n.IsError():
			rep.Report(diag.Diagnostic{
				Severity: diag.SeverityError,
				Code:     diag.SyntaxError,
				Phase:    diag.PhaseParse,
				Span:     n.Span,
				Message:  unexpectedMessage(n),
			})
			count++
			return false
		}
		return true
	})
	return count
}

func unexpectedMessage(n *Node) string {
	text := strings.TrimSpace(n.Text)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	if len(text) > 24 {
		text = text[:24] + "..."
	}
	if text == "" {
		return "syntax error"
	}
	return fmt.Sprintf("syntax error: unexpected `%s`", text)
}

func formatExpectedKind(kind string) string {
	trimmed := strings.TrimSpace(kind)
	if trimmed == "" {
		return "token"
	}
	isSymbol := true
	for _, r := range trimmed {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			isSymbol = false
			break
		}
	}
	if len(trimmed) == 1 || isSymbol {
		return fmt.Sprintf("'%s'", trimmed)
	}
	return strings.ReplaceAll(trimmed, "_", " ")
}

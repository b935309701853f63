package builder

import (
	"math"
	"strconv"
	"strings"

	"brunhild/internal/ast"
	"brunhild/internal/diag"
	"brunhild/internal/syntax"
)

func (b *builder) number(n *syntax.Node) ast.Expr {
	raw := n.Text
	if isFloatLiteral(raw) {
		f, err := strconv.ParseFloat(strings.TrimRight(raw, "fFlL"), 32)
		if err != nil && !isRangeErr(err) {
			b.malformed(n, "invalid float literal `%s`", raw)
			return &ast.BadExpr{Loc: n.Span}
		}
		return &ast.FloatLit{Loc: n.Span, Value: float32(f), Raw: raw}
	}

	v, err := parseInt(raw)
	switch {
	case isRangeErr(err):
		if !recovered(n) {
			b.report(diag.InvalidConstant, n.Span, "integer literal `%s` does not fit in 32 bits", raw)
		}
		return &ast.BadExpr{Loc: n.Span}
	case err != nil:
		b.malformed(n, "invalid integer literal `%s`", raw)
		return &ast.BadExpr{Loc: n.Span}
	}
	return &ast.IntLit{Loc: n.Span, Value: v, Raw: raw}
}

func isFloatLiteral(s string) bool {
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		return strings.ContainsAny(lower, ".p")
	}
	return strings.ContainsAny(lower, ".e")
}

// parseInt accepts decimal, octal and hexadecimal literals with C suffixes.
// Values wrap modulo 2^32 so that -2147483648 can be written; anything
// above 2^32-1 is a range error.
func parseInt(raw string) (int32, error) {
	s := strings.TrimRight(raw, "uUlL")
	if s == "" {
		return 0, &strconv.NumError{Func: "parseInt", Num: raw, Err: strconv.ErrSyntax}
	}
	base := 10
	switch {
	case len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X"):
		base = 16
		s = s[2:]
	case len(s) > 1 && s[0] == '0':
		base = 8
		s = s[1:]
	}
	v, err := strconv.ParseUint(s, base, 64)
	if err == nil && v > math.MaxUint32 {
		err = &strconv.NumError{Func: "parseInt", Num: raw, Err: strconv.ErrRange}
	}
	if err != nil {
		return 0, err
	}
	return int32(uint32(v)), nil
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

func (b *builder) char(n *syntax.Node) ast.Expr {
	raw := n.Text
	if len(raw) < 3 || raw[0] != '\'' || raw[len(raw)-1] != '\'' {
		b.malformed(n, "invalid character literal %s", raw)
		return &ast.BadExpr{Loc: n.Span}
	}
	body := raw[1 : len(raw)-1]
	if body == `\0` {
		return &ast.IntLit{Loc: n.Span, Value: 0, Raw: raw}
	}
	r, _, tail, err := strconv.UnquoteChar(body, '\'')
	if err != nil || tail != "" {
		b.malformed(n, "invalid character literal %s", raw)
		return &ast.BadExpr{Loc: n.Span}
	}
	return &ast.IntLit{Loc: n.Span, Value: int32(r), Raw: raw}
}

func (b *builder) str(n *syntax.Node) ast.Expr {
	if n.Kind == "concatenated_string" {
		var sb strings.Builder
		for _, part := range n.NamedChildren() {
			if part.Kind != "string_literal" {
				b.unsupported(part, describe(part))
				return &ast.BadExpr{Loc: n.Span}
			}
			sb.WriteString(unquote(part.Text))
		}
		return &ast.StringLit{Loc: n.Span, Value: sb.String()}
	}
	return &ast.StringLit{Loc: n.Span, Value: unquote(n.Text)}
}

func unquote(raw string) string {
	if s, err := strconv.Unquote(strings.ReplaceAll(raw, `\0`, `\x00`)); err == nil {
		return s
	}
	return strings.Trim(raw, `"`)
}

package eval

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"brunhild/internal/ast"
	"brunhild/internal/builtin"
	"brunhild/internal/types"
)

// Timer is one starttime/stoptime pair.
type Timer struct {
	StartLine int
	StopLine  int
	Elapsed   time.Duration
}

type host struct {
	in     *bufio.Reader
	out    *bufio.Writer
	timers []Timer

	started   time.Time
	startLine int
	running   bool
}

func newHost(in io.Reader, out io.Writer) *host {
	return &host{in: newHostReader(in), out: bufio.NewWriter(out)}
}

func (h *host) flush() {
	_ = h.out.Flush()
}

var errEndOfInput = errors.New("unexpected end of input")

func (h *host) skipSpace() error {
	if h.in == nil {
		return errEndOfInput
	}
	for {
		c, err := h.in.ReadByte()
		if err != nil {
			return errEndOfInput
		}
		if !isSpace(c) {
			return h.in.UnreadByte()
		}
	}
}

// token reads up to the next whitespace byte.
func (h *host) token() (string, error) {
	if err := h.skipSpace(); err != nil {
		return "", err
	}
	var b strings.Builder
	for {
		c, err := h.in.ReadByte()
		if err != nil {
			break
		}
		if isSpace(c) {
			_ = h.in.UnreadByte()
			break
		}
		b.WriteByte(c)
	}
	return b.String(), nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f'
}

func (h *host) readInt() (int32, error) {
	tok, err := h.token()
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("expected an integer, got %q", tok)
	}
	return int32(n), nil
}

func (h *host) readFloat() (float32, error) {
	tok, err := h.token()
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(tok, 32)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("expected a float, got %q", tok)
	}
	return float32(f), nil
}

func (h *host) readByte() int32 {
	if h.in == nil {
		return -1
	}
	c, err := h.in.ReadByte()
	if err != nil {
		return -1
	}
	return int32(c)
}

func (it *Interpreter) builtin(e *ast.CallExpr, b *builtin.Builtin, args []Value) (Value, error) {
	h := it.host
	fault := func(err error) (Value, error) {
		return nil, &Fault{Span: e.Loc, Message: fmt.Sprintf("%s: %v", b.Name, err)}
	}

	switch b.Name {
	case "getint":
		n, err := h.readInt()
		if err != nil {
			return fault(err)
		}
		return Int(n), nil
	case "getch":
		return Int(h.readByte()), nil
	case "getfloat":
		f, err := h.readFloat()
		if err != nil {
			return fault(err)
		}
		return Float(f), nil
	case "getarray", "getfarray":
		arr := args[0].(*Array)
		n, err := h.readInt()
		if err != nil {
			return fault(err)
		}
		if n < 0 || int(n) > arr.Len() {
			return fault(fmt.Errorf("%d elements do not fit in an array of %d", n, arr.Len()))
		}
		for i := 0; i < int(n); i++ {
			var v Value
			if arr.Elem == types.KindFloat {
				f, err := h.readFloat()
				if err != nil {
					return fault(err)
				}
				v = Float(f)
			} else {
				x, err := h.readInt()
				if err != nil {
					return fault(err)
				}
				v = Int(x)
			}
			it.setCell(arr, i, v)
		}
		return Int(n), nil

	case "putint":
		fmt.Fprintf(h.out, "%d", int32(toInt(args[0])))
	case "putch":
		h.out.WriteByte(byte(toInt(args[0])))
	case "putfloat":
		h.out.WriteString(hexFloat(float32(toFloat(args[0]))))
	case "putarray", "putfarray":
		n := int(toInt(args[0]))
		arr := args[1].(*Array)
		if n < 0 || n > arr.Len() {
			return fault(fmt.Errorf("cannot print %d elements of an array of %d", n, arr.Len()))
		}
		fmt.Fprintf(h.out, "%d:", n)
		for i := 0; i < n; i++ {
			v := arr.Load(i)
			if f, ok := v.(Float); ok {
				h.out.WriteString(" " + hexFloat(float32(f)))
			} else {
				fmt.Fprintf(h.out, " %d", int32(toInt(v)))
			}
		}
		h.out.WriteByte('\n')
	case "putf":
		format, _ := args[0].(String)
		if err := printf(h.out, string(format), args[1:]); err != nil {
			return fault(err)
		}

	case "starttime":
		h.started = time.Now()
		h.startLine = e.Loc.Start.Line
		h.running = true
	case "stoptime":
		if !h.running {
			return fault(errors.New("no timer is running"))
		}
		h.timers = append(h.timers, Timer{
			StartLine: h.startLine,
			StopLine:  e.Loc.Start.Line,
			Elapsed:   time.Since(h.started),
		})
		h.running = false
	default:
		return nil, &InternalError{Span: e.Loc, Message: fmt.Sprintf("unknown primitive `%s`", b.Name)}
	}
	return Void{}, nil
}

// hexFloat formats like C's %a for a float promoted to double.
func hexFloat(f float32) string {
	s := strconv.FormatFloat(float64(f), 'x', -1, 64)
	i := strings.LastIndexByte(s, 'p')
	if i < 0 || i+2 >= len(s) {
		return s
	}
	exp := strings.TrimLeft(s[i+2:], "0")
	if exp == "" {
		exp = "0"
	}
	return s[:i+2] + exp
}

// printf implements the conversions putf accepts: %d %c %f %a %x %s and %%,
// with optional flags, width and precision.
func printf(w io.Writer, format string, args []Value) error {
	var b strings.Builder
	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		j := i + 1
		for j < len(format) && strings.IndexByte("-+ #0123456789.", format[j]) >= 0 {
			j++
		}
		if j >= len(format) {
			return errors.New("format ends in the middle of a conversion")
		}
		spec, verb := format[i+1:j], format[j]
		i = j
		if verb == '%' {
			b.WriteByte('%')
			continue
		}
		if next >= len(args) {
			return fmt.Errorf("missing argument for %%%c", verb)
		}
		arg := args[next]
		next++
		switch verb {
		case 'd', 'i':
			fmt.Fprintf(&b, "%"+spec+"d", int32(toInt(arg)))
		case 'c':
			fmt.Fprintf(&b, "%"+spec+"c", rune(byte(toInt(arg))))
		case 'x', 'X':
			fmt.Fprintf(&b, "%"+spec+string(verb), uint32(toInt(arg)))
		case 'f', 'F', 'e', 'E', 'g', 'G':
			fmt.Fprintf(&b, "%"+spec+string(verb), float64(toFloat(arg)))
		case 'a', 'A':
			s := hexFloat(float32(toFloat(arg)))
			if verb == 'A' {
				s = strings.ToUpper(s)
			}
			b.WriteString(s)
		case 's':
			if str, ok := arg.(String); ok {
				b.WriteString(string(str))
			} else {
				b.WriteString(arg.String())
			}
		default:
			return fmt.Errorf("unsupported conversion %%%c", verb)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

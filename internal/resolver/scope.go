package resolver

import "brunhild/internal/ast"

type ScopeKind int

const (
	ScopeGlobal ScopeKind = iota
	ScopeFunction
	ScopeBlock
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	default:
		return "unknown"
	}
}

// Scope maps names to bindings for one lexical region. Depth equals the
// lexical nesting depth: 0 for the global scope.
type Scope struct {
	Kind   ScopeKind
	Depth  int
	Parent *Scope
	Node   ast.Node

	names map[string]*Binding
	order []*Binding
}

func newScope(kind ScopeKind, parent *Scope, node ast.Node) *Scope {
	s := &Scope{Kind: kind, Parent: parent, Node: node, names: make(map[string]*Binding)}
	if parent != nil {
		s.Depth = parent.Depth + 1
	}
	return s
}

// Define inserts b. If the name already exists in this scope the existing
// binding is returned and b is not inserted.
func (s *Scope) Define(b *Binding) (*Binding, bool) {
	if prev, ok := s.names[b.Name]; ok {
		return prev, false
	}
	b.Scope = s
	s.names[b.Name] = b
	s.order = append(s.order, b)
	return b, true
}

func (s *Scope) LookupLocal(name string) *Binding {
	return s.names[name]
}

// Lookup searches this scope and then each enclosing scope.
func (s *Scope) Lookup(name string) *Binding {
	for cur := s; cur != nil; cur = cur.Parent {
		if b, ok := cur.names[name]; ok {
			return b
		}
	}
	return nil
}

// Bindings returns the bindings in definition order.
func (s *Scope) Bindings() []*Binding {
	out := make([]*Binding, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Scope) IsGlobal() bool {
	return s.Kind == ScopeGlobal
}

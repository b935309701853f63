package eval

import "brunhild/internal/resolver"

// undo records global writes made by the running unit so a fault can take
// them back. Array cells are recorded only for storage owned by a global.
type undo struct {
	entries []undoEntry
}

type undoEntry struct {
	b   *resolver.Binding
	old Value
	had bool

	arr  *Array
	cell int
	prev Value
}

func (u *undo) rollback(globals map[*resolver.Binding]Value) {
	for i := len(u.entries) - 1; i >= 0; i-- {
		e := u.entries[i]
		switch {
		case e.arr != nil:
			e.arr.Store(e.cell, e.prev)
		case e.had:
			globals[e.b] = e.old
		default:
			delete(globals, e.b)
		}
	}
	u.entries = nil
}

// transact runs fn as one unit. When fn fails, global writes it made are
// reverted before the error is returned.
func (it *Interpreter) transact(fn func() (Value, error)) (Value, error) {
	saved := it.undo
	it.undo = &undo{}
	defer func() { it.undo = saved }()

	v, err := fn()
	if err != nil {
		it.undo.rollback(it.globals)
	}
	return v, err
}

func (it *Interpreter) setGlobal(b *resolver.Binding, v Value) {
	if it.undo != nil {
		old, had := it.globals[b]
		it.undo.entries = append(it.undo.entries, undoEntry{b: b, old: old, had: had})
	}
	if arr, ok := v.(*Array); ok {
		arr.shared = true
	}
	it.globals[b] = v
}

func (it *Interpreter) setCell(arr *Array, i int, v Value) {
	if it.undo != nil && arr.shared {
		it.undo.entries = append(it.undo.entries, undoEntry{arr: arr, cell: i, prev: arr.Load(i)})
	}
	arr.Store(i, v)
}

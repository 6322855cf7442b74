package engine

import (
	"fmt"

	"github.com/justina-lang/justinavm/token"
	"github.com/justina-lang/justinavm/value"
)

// lvalue identifies an addressable storage location: either a whole
// variable slot, or one element of an array slot. Operators that need
// to write back (assignment, ++/--) resolve through this instead of a
// plain value.Value.
type lvalue struct {
	slot   *value.Slot
	isUser bool
	scope  value.Scope
	elem   int // -1 for a scalar slot, element offset for an array slot
}

// read returns the current value at this location.
func (l *lvalue) read() value.Value {
	if l.elem < 0 {
		return l.slot.Value
	}
	return l.slot.Value.Arr.Elems[l.elem]
}

// write stores v at this location, going through value.Store's
// accounting-aware assignment helpers.
func (l *lvalue) write(s *value.Store, v value.Value) error {
	if l.elem < 0 {
		return s.AssignScalar(l.slot, l.isUser, v)
	}
	if l.slot.IsConst {
		return fmt.Errorf("cannot change constant %q", l.slot.Name)
	}
	return s.AssignArrayElement(l.slot.Value.Arr, l.elem, l.isUser, l.scope, v)
}

// stackElem is one operand-stack entry: either a plain value or an
// addressable lvalue (for assignment targets and by-reference
// parameters).
type stackElem struct {
	Val value.Value
	LV  *lvalue
}

func (e *Engine) push(s stackElem) {
	e.stack = append(e.stack, s)
}

func (e *Engine) pop() (stackElem, error) {
	if len(e.stack) == 0 {
		return stackElem{}, fmt.Errorf("internal-error: operand stack underflow")
	}
	top := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	return top, nil
}

// popValue pops an operand and, if it is an lvalue, dereferences it to
// the value currently stored there (the "read" side of spec §4.G's
// operand model: only assignment and increment/decrement operators
// need the lvalue itself).
func (e *Engine) popValue() (value.Value, error) {
	s, err := e.pop()
	if err != nil {
		return value.Value{}, err
	}
	if s.LV != nil {
		return s.LV.read(), nil
	}
	return s.Val, nil
}

// popLvalue pops an operand that must be an addressable location
// (assignment left-hand side, ++/-- operand, by-reference argument).
func (e *Engine) popLvalue() (*lvalue, error) {
	s, err := e.pop()
	if err != nil {
		return nil, err
	}
	if s.LV == nil {
		return nil, fmt.Errorf("operator-not-allowed-here: operand is not an assignable variable")
	}
	return s.LV, nil
}

// pushVarRef resolves a KindVarRef token into an lvalue (popping
// subscript index values first, if the reference was subscripted) and
// pushes it onto the operand stack.
func (e *Engine) pushVarRef(tok token.Token) error {
	scope := value.Scope(tok.VarScope)
	idx := int(tok.VarSlot)
	var slot *value.Slot
	isUser := scope == value.ScopeUser
	if isUser {
		if idx < 0 || idx >= len(e.Vars.UserSlots) {
			return fmt.Errorf("internal-error: user variable slot %d out of range", idx)
		}
		slot = e.Vars.UserSlots[idx]
	} else {
		if idx < 0 || idx >= len(e.Vars.ProgramSlots) {
			return fmt.Errorf("internal-error: program variable slot %d out of range", idx)
		}
		slot = e.Vars.ProgramSlots[idx]
	}

	lv := &lvalue{slot: slot, isUser: isUser, scope: scope, elem: -1}
	if tok.Subscripted {
		if slot.Value.Arr == nil {
			return fmt.Errorf("internal-error: subscripted reference to non-array slot %q", slot.Name)
		}
		ndims := slot.Value.Arr.NDims
		subs := make([]int, ndims)
		for i := ndims - 1; i >= 0; i-- {
			v, err := e.popValue()
			if err != nil {
				return err
			}
			subs[i] = int(v.Long)
		}
		offset, err := slot.Value.Arr.Index(subs)
		if err != nil {
			return err
		}
		lv.elem = offset
	}
	e.push(stackElem{LV: lv})
	return nil
}

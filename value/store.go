package value

import (
	"fmt"

	"github.com/justina-lang/justinavm/ident"
)

// FuncDescriptor is the per-function metadata of spec §3 "Function
// descriptor": a pointer (token index) to the function body, local
// storage layout, and the array-parameter bit pattern.
type FuncDescriptor struct {
	Name             string
	StartToken       int // -1 until the function's body has been parsed
	NumParams        int
	ParamBase        int // absolute ProgramSlots index of parameter 0
	ParamIsArray     uint16 // bit k set => parameter k+1 is an array
	PatternCommitted bool   // false == "pattern not yet committed" sentinel
	DefaultValues    map[int]Value
}

const uncommittedSentinelBit = 1 << 15

// Store holds all variable/function state: parallel program-variable
// arrays, parallel user-variable arrays, function descriptors, and the
// last-values FIFO — the component B data model of spec §4.B.
type Store struct {
	Acct *ident.Accounting

	ProgramNames *ident.NameTable
	ProgramSlots []*Slot

	UserNames *ident.NameTable
	UserSlots []*Slot

	FuncNames *ident.FuncTable
	Funcs     []*FuncDescriptor

	FIFO *LastValuesFIFO
}

// NewStore creates an empty variable/function store.
func NewStore(acct *ident.Accounting, fifoSize int) *Store {
	return &Store{
		Acct:         acct,
		ProgramNames: ident.NewNameTable(),
		UserNames:    ident.NewNameTable(),
		FuncNames:    ident.NewFuncTable(),
		FIFO:         NewLastValuesFIFO(fifoSize),
	}
}

// DeclareProgramVar declares a new program-scope variable (global,
// static-in-function, local-in-function, or parameter) and returns its
// slot index.
func (s *Store) DeclareProgramVar(name string, scope Scope, isArray, isConst bool) (int, error) {
	if _, exists := s.ProgramNames.Lookup(name); exists {
		return 0, fmt.Errorf("variable %q already declared", name)
	}
	idx := s.ProgramNames.Intern(name)
	slot := &Slot{Name: name, Scope: scope, IsArray: isArray, IsConst: isConst}
	s.ProgramSlots = append(s.ProgramSlots, slot)
	if idx != len(s.ProgramSlots)-1 {
		return 0, fmt.Errorf("internal error: program name/slot index mismatch")
	}
	return idx, nil
}

// DeclareUserVar declares a new immediate-mode user variable.
func (s *Store) DeclareUserVar(name string) (int, error) {
	if _, exists := s.UserNames.Lookup(name); exists {
		return 0, fmt.Errorf("user variable %q already declared", name)
	}
	idx := s.UserNames.Intern(name)
	slot := &Slot{Name: name, Scope: ScopeUser}
	s.UserSlots = append(s.UserSlots, slot)
	if idx != len(s.UserSlots)-1 {
		return 0, fmt.Errorf("internal error: user name/slot index mismatch")
	}
	return idx, nil
}

// LookupUserVar returns the slot index for an existing user variable.
func (s *Store) LookupUserVar(name string) (int, bool) {
	return s.UserNames.Lookup(name)
}

// LookupProgramVar returns the slot index for an existing program variable.
func (s *Store) LookupProgramVar(name string) (int, bool) {
	return s.ProgramNames.Lookup(name)
}

// categoryForScalar picks the string accounting category for a scalar
// string assigned into a slot of the given scope/role.
func categoryForScalar(scope Scope, isUser bool) ident.StringCategory {
	if isUser {
		return ident.CatUserVarStrings
	}
	switch scope {
	case ScopeGlobal, ScopeStaticInFunc:
		return ident.CatGlobalStaticVarStrings
	case ScopeLocalInFunc, ScopeParamInFunc:
		return ident.CatLocalVarStrings
	default:
		return ident.CatIntermediateStrings
	}
}

// AssignScalar replaces slot's value, freeing any previously held
// string first (spec §4.B: "assigning a string frees the old string ...
// and allocates a new one"). It refuses to modify a const slot.
func (s *Store) AssignScalar(slot *Slot, isUser bool, v Value) error {
	if slot.IsConst {
		return fmt.Errorf("cannot change constant %q", slot.Name)
	}
	cat := categoryForScalar(slot.Scope, isUser)
	FreeString(s.Acct, slot.Value, cat)
	if v.Kind == KindString && !v.IsEmpty() {
		s.Acct.Alloc(cat)
	}
	slot.Value = v
	return nil
}

// AssignArrayElement preserves the array's fixed element type: numeric
// arrays silently coerce between long and float, but a numeric array
// can never accept a string value or vice versa (spec §4.B / §9).
func (s *Store) AssignArrayElement(arr *Array, offset int, isUser bool, scope Scope, v Value) error {
	if offset < 0 || offset >= len(arr.Elems) {
		return fmt.Errorf("array index %d out of range", offset)
	}
	switch arr.ElemKind {
	case KindString:
		if v.Kind != KindString {
			return fmt.Errorf("cannot assign %s to string array element", v.Kind)
		}
		cat := ident.CatUserArrayStorage
		if !isUser {
			cat = ident.CatGlobalStaticArrayStorage
			if scope == ScopeLocalInFunc || scope == ScopeParamInFunc {
				cat = ident.CatLocalArrayStorage
			}
		}
		FreeString(s.Acct, arr.Elems[offset], cat)
		if !v.IsEmpty() {
			s.Acct.Alloc(cat)
		}
		arr.Elems[offset] = v
	case KindLong, KindFloat:
		switch v.Kind {
		case KindLong:
			if arr.ElemKind == KindFloat {
				arr.Elems[offset] = Float32Val(float32(v.Long))
			} else {
				arr.Elems[offset] = v
			}
		case KindFloat:
			if arr.ElemKind == KindLong {
				arr.Elems[offset] = Long32(int32(v.Float))
			} else {
				arr.Elems[offset] = v
			}
		default:
			return fmt.Errorf("array-value-type-fixed: cannot assign %s to numeric array element", v.Kind)
		}
	}
	return nil
}

// NewArray allocates a fresh array descriptor with zeroed elements of
// the given kind.
func NewArray(dims []int, elemKind Kind) (*Array, error) {
	if len(dims) == 0 || len(dims) > MaxDims {
		return nil, fmt.Errorf("array dimension count must be 1..%d", MaxDims)
	}
	total := 1
	for _, d := range dims {
		if d < 1 || d > MaxArrayDim {
			return nil, fmt.Errorf("array dimension %d out of range 1..%d", d, MaxArrayDim)
		}
		total *= d
	}
	if total > MaxArrayElem {
		return nil, fmt.Errorf("array too large: %d elements exceeds limit %d", total, MaxArrayElem)
	}
	a := &Array{NDims: len(dims), ElemKind: elemKind, Elems: make([]Value, total)}
	copy(a.Dims[:], dims)
	zero := Value{Kind: elemKind}
	for i := range a.Elems {
		a.Elems[i] = zero
	}
	return a, nil
}

// DeleteUserVariable implements spec §4.B "Delete user variable": it
// fails if the variable is referenced by the parsed program, otherwise
// frees its storage and shifts later entries down by one. The caller
// (the interpreter orchestration layer, which owns the token stream) is
// responsible for decrementing any stored var-ref token indices past
// the removed slot; this function reports the removed index so the
// caller can do so.
func (s *Store) DeleteUserVariable(name string) (removedIdx int, err error) {
	idx, ok := s.UserNames.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("user variable %q not declared", name)
	}
	slot := s.UserSlots[idx]
	if slot.ReferencedByProgram {
		return 0, fmt.Errorf("cannot delete %q: referenced by loaded program", name)
	}

	if slot.IsArray && slot.Value.Arr != nil {
		for _, elem := range slot.Value.Arr.Elems {
			FreeString(s.Acct, elem, ident.CatUserArrayStorage)
		}
	} else {
		FreeString(s.Acct, slot.Value, ident.CatUserVarStrings)
	}

	s.UserNames.Remove(idx)
	s.UserSlots = append(s.UserSlots[:idx], s.UserSlots[idx+1:]...)
	return idx, nil
}

// DeclareFunction interns a function name and returns its descriptor
// index, creating a fresh forward-reference descriptor if this is the
// first mention (call or definition) of the name.
func (s *Store) DeclareFunction(name string) int {
	idx := s.FuncNames.Intern(name)
	for len(s.Funcs) <= idx {
		s.Funcs = append(s.Funcs, &FuncDescriptor{Name: name, StartToken: -1})
	}
	return idx
}

// LookupFunction finds a function descriptor index by name.
func (s *Store) LookupFunction(name string) (int, bool) {
	return s.FuncNames.Lookup(name)
}

// CommitArrayPattern commits a function's array-parameter bit pattern
// at the close of its definition, clearing the "not yet committed"
// sentinel.
func (d *FuncDescriptor) CommitArrayPattern(pattern uint16) {
	d.ParamIsArray = pattern &^ uncommittedSentinelBit
	d.PatternCommitted = true
}

// ObserveArrayArg records, for a forward-referenced call, whether
// argument position k (0-based) was passed as an array; once the
// definition has committed the pattern this instead verifies agreement.
func (d *FuncDescriptor) ObserveArrayArg(k int, isArray bool) error {
	bit := uint16(1) << uint(k)
	if d.PatternCommitted {
		want := d.ParamIsArray&bit != 0
		if want != isArray {
			return fmt.Errorf("function %q: argument %d array/scalar mismatch with definition", d.Name, k+1)
		}
		return nil
	}
	if isArray {
		d.ParamIsArray |= bit
	}
	return nil
}

// Reset clears all program and user variables (spec: "On reset with
// user variables the FIFO is cleared, deep-freeing strings").
func (s *Store) Reset(clearUserVars bool) {
	s.ProgramNames = ident.NewNameTable()
	s.ProgramSlots = nil
	s.FuncNames = ident.NewFuncTable()
	s.Funcs = nil
	if clearUserVars {
		for _, slot := range s.UserSlots {
			if slot.IsArray && slot.Value.Arr != nil {
				for _, elem := range slot.Value.Arr.Elems {
					FreeString(s.Acct, elem, ident.CatUserArrayStorage)
				}
			} else {
				FreeString(s.Acct, slot.Value, ident.CatUserVarStrings)
			}
		}
		s.UserNames = ident.NewNameTable()
		s.UserSlots = nil
		s.FIFO.Clear(s.Acct)
	}
}

// LastValuesFIFO is the bounded ring of spec §3 "Last-values FIFO".
type LastValuesFIFO struct {
	entries []Value
	cap     int
}

// NewLastValuesFIFO creates a FIFO holding up to cap entries (cap <= 16
// per spec §3).
func NewLastValuesFIFO(cap int) *LastValuesFIFO {
	if cap > 16 {
		cap = 16
	}
	if cap < 1 {
		cap = 1
	}
	return &LastValuesFIFO{cap: cap}
}

// Push adds a new top-level result, deep-copying any string payload and
// evicting the oldest entry once the FIFO is full.
func (f *LastValuesFIFO) Push(acct *ident.Accounting, v Value) {
	if v.Kind == KindString && !v.IsEmpty() {
		acct.Alloc(ident.CatLastValueFIFO)
	}
	f.entries = append(f.entries, v)
	if len(f.entries) > f.cap {
		evicted := f.entries[0]
		FreeString(acct, evicted, ident.CatLastValueFIFO)
		f.entries = f.entries[1:]
	}
}

// Get retrieves entry k (1 = newest), implementing the last(k) builtin.
func (f *LastValuesFIFO) Get(k int) (Value, error) {
	if k < 1 || k > len(f.entries) {
		return Value{}, fmt.Errorf("last(%d): no such result", k)
	}
	return f.entries[len(f.entries)-k], nil
}

// Clear deep-frees every FIFO entry's string payload.
func (f *LastValuesFIFO) Clear(acct *ident.Accounting) {
	for _, e := range f.entries {
		FreeString(acct, e, ident.CatLastValueFIFO)
	}
	f.entries = nil
}

// Len returns the number of entries currently in the FIFO.
func (f *LastValuesFIFO) Len() int { return len(f.entries) }

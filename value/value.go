// Package value implements the tagged Value variant and the variable
// store (scopes, arrays, last-values FIFO) of component B, grounded on
// the storage shape of the teacher's vm/memory.go (segmented storage
// with explicit accounting) generalized from byte-addressed ARM memory
// to typed interpreter slots.
package value

import (
	"fmt"

	"github.com/justina-lang/justinavm/ident"
)

// Kind tags the active member of a Value.
type Kind uint8

const (
	KindLong Kind = iota
	KindFloat
	KindString
	KindVarRef
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindVarRef:
		return "varRef"
	case KindArray:
		return "array"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// MaxDims is the maximum number of array dimensions (spec §3).
const MaxDims = 3

// MaxArrayDim is the maximum size of a single array dimension.
const MaxArrayDim = 255

// MaxArrayElem is the maximum total element count across all
// dimensions of one array (product of dimensions), an implementation
// choice sized generously for a microcontroller-class interpreter.
const MaxArrayElem = 8192

// Array is the element buffer backing an array-typed slot. Unlike the
// reference C++ implementation (which packs the dimension sizes into
// the array's first element to save an allocation on a microcontroller),
// Go has no equivalent memory-density pressure, so dimensions are kept
// as ordinary fields; this is a deliberate simplification, recorded in
// DESIGN.md.
type Array struct {
	Dims     [MaxDims]int
	NDims    int
	ElemKind Kind // KindLong, KindFloat, or KindString — fixed at declaration
	Elems    []Value
}

// NumElements returns the total element count implied by Dims[:NDims].
func (a *Array) NumElements() int {
	n := 1
	for i := 0; i < a.NDims; i++ {
		n *= a.Dims[i]
	}
	return n
}

// Index computes the flat element offset for a set of subscripts.
func (a *Array) Index(subs []int) (int, error) {
	if len(subs) != a.NDims {
		return 0, fmt.Errorf("array has %d dimensions, got %d subscripts", a.NDims, len(subs))
	}
	offset := 0
	for i := 0; i < a.NDims; i++ {
		if subs[i] < 0 || subs[i] >= a.Dims[i] {
			return 0, fmt.Errorf("array subscript %d out of range [0,%d)", subs[i], a.Dims[i])
		}
		offset = offset*a.Dims[i] + subs[i]
	}
	return offset, nil
}

// Value is the tagged variant every expression, constant, and slot
// holds. A Long is kept alongside a possibly-unused Float/Str/Arr so
// the zero Value is a valid long 0, matching spec §3's "64-bit-unused /
// 32-bit signed integer" remark (the reference embeds a union; Go gets
// a struct since unions are not idiomatic here).
type Value struct {
	Kind  Kind
	Long  int32
	Float float32
	// Str is nil for a zero-length string value: spec §3 requires the
	// empty string to be represented by a null pointer, never an empty
	// allocation.
	Str *string
	Arr *Array
	// Ref is a slot pointer for KindVarRef values. No code in this
	// module sets it: the evaluation engine carries variable identity
	// for assignment and increment/decrement in its own lvalue operand
	// records instead.
	Ref *Slot
}

// Long32 returns a long Value.
func Long32(v int32) Value { return Value{Kind: KindLong, Long: v} }

// Float32Val returns a float Value.
func Float32Val(v float32) Value { return Value{Kind: KindFloat, Float: v} }

// Str returns a string Value, collapsing the empty string to the null
// representation required by spec §3.
func Str(s string) Value {
	if s == "" {
		return Value{Kind: KindString, Str: nil}
	}
	return Value{Kind: KindString, Str: &s}
}

// IsEmpty reports whether a string Value holds the null/empty string.
func (v Value) IsEmpty() bool {
	return v.Kind == KindString && v.Str == nil
}

// AsString returns the Go string content of a string Value.
func (v Value) AsString() string {
	if v.Str == nil {
		return ""
	}
	return *v.Str
}

// Category returns the string accounting category Free/Alloc calls
// for this Value's string payload, given the owning scope/role.
type Category = ident.StringCategory

// FreeString releases v's string payload (if any) from the given
// accounting category. Safe to call on a non-string Value (no-op).
func FreeString(acct *ident.Accounting, v Value, cat Category) {
	if v.Kind == KindString && v.Str != nil {
		acct.Free(cat)
	}
}

// NewString allocates (accounts for) a new string value in category cat.
func NewString(acct *ident.Accounting, s string, cat Category) Value {
	v := Str(s)
	if !v.IsEmpty() {
		acct.Alloc(cat)
	}
	return v
}

// Scope classifies where a variable slot lives.
type Scope uint8

const (
	ScopeUser Scope = iota
	ScopeGlobal
	ScopeStaticInFunc
	ScopeLocalInFunc
	ScopeParamInFunc
)

func (s Scope) String() string {
	switch s {
	case ScopeUser:
		return "user"
	case ScopeGlobal:
		return "global"
	case ScopeStaticInFunc:
		return "static"
	case ScopeLocalInFunc:
		return "local"
	case ScopeParamInFunc:
		return "param"
	default:
		return fmt.Sprintf("Scope(%d)", s)
	}
}

// Slot is a single variable: a Value plus the attribute flags spec §3
// assigns to every variable slot.
type Slot struct {
	Name                string
	Value               Value
	Scope               Scope
	IsArray             bool
	IsConst             bool
	NameHasGlobalValue  bool
	ReferencedByProgram bool
	ForcedFunctionVar   bool
}

package engine

import (
	"fmt"
	"strings"

	"github.com/justina-lang/justinavm/value"
)

// Terminal codes mirror parser.terminalCodes/fixityTerminalCodes; this
// package keeps its own copy rather than importing the parser's
// unexported map, since the two sides agree on the packed Code values
// by construction (both are built from the same fixed operator table,
// spec §4.E "Operators").
const (
	codeAdd          = 20
	codeSub          = 21
	codeMul          = 22
	codeDiv          = 23
	codeMod          = 24
	codeBitAnd       = 30
	codeBitOr        = 31
	codeBitXor       = 32
	codeBitNot       = 33
	codeShl          = 34
	codeShr          = 35
	codeNot          = 40
	codeAnd          = 41
	codeOr           = 42
	codeEq           = 50
	codeNe           = 51
	codeLt           = 52
	codeGt           = 53
	codeLe           = 54
	codeGe           = 55
	codeAssign       = 60
	codeAddAssign    = 61
	codeSubAssign    = 62
	codeMulAssign    = 63
	codeDivAssign    = 64
	codeModAssign    = 65
	codeAndAssign    = 66
	codeOrAssign     = 67
	codeXorAssign    = 68
	codeShlAssign    = 69
	codeShrAssign    = 70
	codePostIncr     = 80
	codePostDecr     = 81
	codePreIncr      = 82
	codePreDecr      = 83
	codeUnaryPlus    = 90
	codeUnaryMinus   = 91
)

// applyOperator pops this operator's operand(s), computes the result
// per spec §4.E's long/float/string coercion rules, and pushes it.
func (e *Engine) applyOperator(code uint16) error {
	switch code {
	case codeAssign:
		return e.applyAssign(nil)
	case codeAddAssign:
		return e.applyAssign(func(a, b value.Value) (value.Value, error) { return arith(a, b, codeAdd) })
	case codeSubAssign:
		return e.applyAssign(func(a, b value.Value) (value.Value, error) { return arith(a, b, codeSub) })
	case codeMulAssign:
		return e.applyAssign(func(a, b value.Value) (value.Value, error) { return arith(a, b, codeMul) })
	case codeDivAssign:
		return e.applyAssign(func(a, b value.Value) (value.Value, error) { return arith(a, b, codeDiv) })
	case codeModAssign:
		return e.applyAssign(func(a, b value.Value) (value.Value, error) { return longOp(a, b, codeMod) })
	case codeAndAssign:
		return e.applyAssign(func(a, b value.Value) (value.Value, error) { return longOp(a, b, codeBitAnd) })
	case codeOrAssign:
		return e.applyAssign(func(a, b value.Value) (value.Value, error) { return longOp(a, b, codeBitOr) })
	case codeXorAssign:
		return e.applyAssign(func(a, b value.Value) (value.Value, error) { return longOp(a, b, codeBitXor) })
	case codeShlAssign:
		return e.applyAssign(func(a, b value.Value) (value.Value, error) { return longOp(a, b, codeShl) })
	case codeShrAssign:
		return e.applyAssign(func(a, b value.Value) (value.Value, error) { return longOp(a, b, codeShr) })

	case codePreIncr, codePreDecr:
		return e.applyIncrDecr(code, true)
	case codePostIncr, codePostDecr:
		return e.applyIncrDecr(code, false)

	case codeUnaryMinus:
		v, err := e.popValue()
		if err != nil {
			return err
		}
		if v.Kind == value.KindFloat {
			e.push(stackElem{Val: value.Float32Val(-v.Float)})
		} else {
			e.push(stackElem{Val: value.Long32(-v.Long)})
		}
		return nil
	case codeUnaryPlus:
		return nil // operand already on the stack unchanged
	case codeBitNot:
		v, err := e.popValue()
		if err != nil {
			return err
		}
		if v.Kind != value.KindLong {
			return fmt.Errorf("operand-not-allowed: '~' requires a long operand")
		}
		e.push(stackElem{Val: value.Long32(^v.Long)})
		return nil
	case codeNot:
		v, err := e.popValue()
		if err != nil {
			return err
		}
		e.push(stackElem{Val: boolValue(!truthy(v))})
		return nil

	case codeAnd, codeOr:
		b, err := e.popValue()
		if err != nil {
			return err
		}
		a, err := e.popValue()
		if err != nil {
			return err
		}
		if code == codeAnd {
			e.push(stackElem{Val: boolValue(truthy(a) && truthy(b))})
		} else {
			e.push(stackElem{Val: boolValue(truthy(a) || truthy(b))})
		}
		return nil

	case codeEq, codeNe, codeLt, codeGt, codeLe, codeGe:
		b, err := e.popValue()
		if err != nil {
			return err
		}
		a, err := e.popValue()
		if err != nil {
			return err
		}
		result, err := compare(a, b, code)
		if err != nil {
			return err
		}
		e.push(stackElem{Val: boolValue(result)})
		return nil

	case codeBitAnd, codeBitOr, codeBitXor, codeShl, codeShr, codeMod:
		b, err := e.popValue()
		if err != nil {
			return err
		}
		a, err := e.popValue()
		if err != nil {
			return err
		}
		v, err := longOp(a, b, code)
		if err != nil {
			return err
		}
		e.push(stackElem{Val: v})
		return nil

	case codeAdd, codeSub, codeMul, codeDiv:
		b, err := e.popValue()
		if err != nil {
			return err
		}
		a, err := e.popValue()
		if err != nil {
			return err
		}
		v, err := arith(a, b, code)
		if err != nil {
			return err
		}
		e.push(stackElem{Val: v})
		return nil
	}
	return fmt.Errorf("internal-error: unknown operator code %d", code)
}

// applyAssign handles '=' and the compound assignment operators: pop
// the rvalue, optionally combine it with the current value through
// combine, write it back through the popped lvalue, and leave the new
// value on the stack (assignment is itself an expression, spec §4.E).
func (e *Engine) applyAssign(combine func(cur, rhs value.Value) (value.Value, error)) error {
	rhs, err := e.popValue()
	if err != nil {
		return err
	}
	lv, err := e.popLvalue()
	if err != nil {
		return err
	}
	newVal := rhs
	if combine != nil {
		newVal, err = combine(lv.read(), rhs)
		if err != nil {
			return err
		}
	}
	newVal, err = coerceToSlotKind(lv, newVal)
	if err != nil {
		return err
	}
	if err := lv.write(e.Vars, newVal); err != nil {
		return err
	}
	e.push(stackElem{Val: newVal})
	return nil
}

// applyIncrDecr handles prefix/postfix ++/--: prefix leaves the new
// value on the stack, postfix leaves the old one (spec §4.E "postfix
// ... evaluates to the value before the change").
func (e *Engine) applyIncrDecr(code uint16, prefix bool) error {
	lv, err := e.popLvalue()
	if err != nil {
		return err
	}
	old := lv.read()
	delta := int32(1)
	if code == codePreDecr || code == codePostDecr {
		delta = -1
	}
	var updated value.Value
	switch old.Kind {
	case value.KindLong:
		updated = value.Long32(old.Long + delta)
	case value.KindFloat:
		updated = value.Float32Val(old.Float + float32(delta))
	default:
		return fmt.Errorf("operand-not-allowed: '++'/'--' require a numeric operand")
	}
	if err := lv.write(e.Vars, updated); err != nil {
		return err
	}
	if prefix {
		e.push(stackElem{Val: updated})
	} else {
		e.push(stackElem{Val: old})
	}
	return nil
}

// coerceToSlotKind mirrors value.Store.AssignArrayElement's numeric
// coercion for plain-slot assignment: a numeric value written into a
// numeric slot is coerced to the slot's current kind. Unlike array
// elements, a plain slot is not type-fixed: whenever either the old or
// the new value is a string, the new value replaces the old one as is.
func coerceToSlotKind(lv *lvalue, v value.Value) (value.Value, error) {
	cur := lv.read()
	if cur.Kind == value.KindString || v.Kind == value.KindString {
		return v, nil // first assignment to an untyped slot, or string<->string
	}
	if cur.Kind == v.Kind {
		return v, nil
	}
	switch cur.Kind {
	case value.KindLong:
		return value.Long32(int32(v.Float)), nil
	case value.KindFloat:
		return value.Float32Val(float32(v.Long)), nil
	}
	return v, nil
}

func boolValue(b bool) value.Value {
	if b {
		return value.Long32(1)
	}
	return value.Long32(0)
}

// arith applies +, -, *, / with the language's numeric/string
// coercion: '+' on two strings concatenates; otherwise both operands
// coerce to float if either is a float, else stay long.
func arith(a, b value.Value, code uint16) (value.Value, error) {
	if code == codeAdd && a.Kind == value.KindString && b.Kind == value.KindString {
		return value.Str(a.AsString() + b.AsString()), nil
	}
	if a.Kind == value.KindString || b.Kind == value.KindString {
		return value.Value{}, fmt.Errorf("operand-not-allowed: arithmetic operator on a string operand")
	}
	if a.Kind == value.KindFloat || b.Kind == value.KindFloat {
		x, y := toFloat(a), toFloat(b)
		switch code {
		case codeAdd:
			return value.Float32Val(x + y), nil
		case codeSub:
			return value.Float32Val(x - y), nil
		case codeMul:
			return value.Float32Val(x * y), nil
		case codeDiv:
			if y == 0 {
				return value.Value{}, fmt.Errorf("divide-by-zero")
			}
			return value.Float32Val(x / y), nil
		}
	}
	x, y := a.Long, b.Long
	switch code {
	case codeAdd:
		return value.Long32(x + y), nil
	case codeSub:
		return value.Long32(x - y), nil
	case codeMul:
		return value.Long32(x * y), nil
	case codeDiv:
		if y == 0 {
			return value.Value{}, fmt.Errorf("divide-by-zero")
		}
		return value.Long32(x / y), nil
	}
	return value.Value{}, fmt.Errorf("internal-error: unreachable arith code %d", code)
}

// longOp applies the long-only operators: %, &, |, ^, <<, >>.
func longOp(a, b value.Value, code uint16) (value.Value, error) {
	if a.Kind != value.KindLong || b.Kind != value.KindLong {
		return value.Value{}, fmt.Errorf("operand-not-allowed: operator requires long operands")
	}
	switch code {
	case codeMod:
		if b.Long == 0 {
			return value.Value{}, fmt.Errorf("divide-by-zero")
		}
		return value.Long32(a.Long % b.Long), nil
	case codeBitAnd:
		return value.Long32(a.Long & b.Long), nil
	case codeBitOr:
		return value.Long32(a.Long | b.Long), nil
	case codeBitXor:
		return value.Long32(a.Long ^ b.Long), nil
	case codeShl:
		return value.Long32(a.Long << uint32(b.Long)), nil
	case codeShr:
		return value.Long32(a.Long >> uint32(b.Long)), nil
	}
	return value.Value{}, fmt.Errorf("internal-error: unreachable longOp code %d", code)
}

// compare implements ==, !=, <, >, <=, >=: numeric operands coerce to
// a common type as in arith; string operands compare lexically and
// only against another string.
func compare(a, b value.Value, code uint16) (bool, error) {
	if a.Kind == value.KindString || b.Kind == value.KindString {
		if a.Kind != value.KindString || b.Kind != value.KindString {
			return false, fmt.Errorf("operand-not-allowed: cannot compare a string to a number")
		}
		c := strings.Compare(a.AsString(), b.AsString())
		return compareResult(c, code), nil
	}
	if a.Kind == value.KindFloat || b.Kind == value.KindFloat {
		x, y := toFloat(a), toFloat(b)
		switch {
		case x < y:
			return compareResult(-1, code), nil
		case x > y:
			return compareResult(1, code), nil
		default:
			return compareResult(0, code), nil
		}
	}
	switch {
	case a.Long < b.Long:
		return compareResult(-1, code), nil
	case a.Long > b.Long:
		return compareResult(1, code), nil
	default:
		return compareResult(0, code), nil
	}
}

func compareResult(c int, code uint16) bool {
	switch code {
	case codeEq:
		return c == 0
	case codeNe:
		return c != 0
	case codeLt:
		return c < 0
	case codeGt:
		return c > 0
	case codeLe:
		return c <= 0
	case codeGe:
		return c >= 0
	}
	return false
}

func toFloat(v value.Value) float32 {
	if v.Kind == value.KindFloat {
		return v.Float
	}
	return float32(v.Long)
}

// symbolicConstValue resolves a KindSymbolicConst token's code to its
// runtime value (spec §4.D item 5, codes assigned in
// parser.symbolicConsts).
func symbolicConstValue(code uint16) (value.Value, bool) {
	switch code {
	case 1: // PI
		return value.Float32Val(3.14159265), true
	case 2: // E
		return value.Float32Val(2.71828183), true
	case 10, 11, 12, 13, 14, 20, 21, 22, 23, 24, 25, 26,
		30, 31, 32, 33, 34, 35, 36, 37, 38, 39:
		return value.Long32(int32(code)), true
	}
	return value.Value{}, false
}

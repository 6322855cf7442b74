package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/justina-lang/justinavm/ident"
	"github.com/justina-lang/justinavm/parser"
	"github.com/justina-lang/justinavm/token"
	"github.com/justina-lang/justinavm/value"
)

// callInternal pops a built-in's arguments and dispatches on its
// parser.Builtin.Code, pushing the single result value the grammar
// always produces for a function call (spec §6 "Built-in functions").
func (e *Engine) callInternal(tok token.Token) error {
	b, ok := parser.BuiltinByCode(tok.Code)
	if !ok {
		return fmt.Errorf("internal-error: unknown builtin code %d", tok.Code)
	}
	argc := int(tok.ArgCount)
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		v, err := e.popValue()
		if err != nil {
			return err
		}
		args[i] = v
	}
	result, err := e.dispatchBuiltin(b, args)
	if err != nil {
		return fmt.Errorf("%s: %w", b.Name, err)
	}
	e.push(stackElem{Val: result})
	return nil
}

// dispatchBuiltin implements the math, lookup, coercion, string, and
// meta categories in full; the digital/analog-IO, stream-IO, and file
// categories are host-dependent (spec §6 "host-supplied semantics")
// and report a uniform not-available error from a NopHost, since this
// engine core carries no concrete peripheral/filesystem binding of its
// own — a real frontend supplies one by extending Host and overriding
// this switch's default arm, not by this package reaching for os/bufio
// itself.
func (e *Engine) dispatchBuiltin(b *parser.Builtin, args []value.Value) (value.Value, error) {
	switch b.Code {
	// --- math ---
	case 1:
		return floatFn(args[0], math.Sqrt)
	case 2:
		return floatFn(args[0], math.Sin)
	case 3:
		return floatFn(args[0], math.Cos)
	case 4:
		return floatFn(args[0], math.Tan)
	case 5:
		return floatFn(args[0], math.Asin)
	case 6:
		return floatFn(args[0], math.Acos)
	case 7:
		return floatFn(args[0], math.Atan)
	case 8:
		return floatFn(args[0], math.Exp)
	case 9:
		return floatFn(args[0], math.Log)
	case 10:
		return floatFn(args[0], math.Log10)
	case 11:
		return value.Float32Val(float32(math.Pow(float64(toFloat(args[0])), float64(toFloat(args[1]))))), nil
	case 12:
		return value.Float32Val(float32(math.Mod(float64(toFloat(args[0])), float64(toFloat(args[1]))))), nil
	case 13:
		if args[0].Kind == value.KindFloat {
			return value.Float32Val(float32(math.Abs(float64(args[0].Float)))), nil
		}
		if args[0].Long < 0 {
			return value.Long32(-args[0].Long), nil
		}
		return args[0], nil
	case 14:
		return minMax(args, false)
	case 15:
		return minMax(args, true)
	case 16:
		return value.Long32(int32(math.Round(float64(toFloat(args[0]))))), nil
	case 17:
		return value.Long32(int32(math.Ceil(float64(toFloat(args[0]))))), nil
	case 18:
		return value.Long32(int32(math.Floor(float64(toFloat(args[0]))))), nil

	// --- lookup ---
	case 30: // ifte(cond, a, b)
		if truthy(args[0]) {
			return args[1], nil
		}
		return args[2], nil
	case 31: // switch(sel, v1, r1, v2, r2, ..., [default])
		return builtinSwitch(args)
	case 32: // choose(idx, v1, v2, ...)
		idx := int(args[0].Long)
		if idx < 1 || idx > len(args)-1 {
			return value.Value{}, fmt.Errorf("index %d out of range", idx)
		}
		return args[idx], nil
	case 33: // index(needle, v1, v2, ...): 1-based position of a match, 0 if none
		for i := 1; i < len(args); i++ {
			if valuesEqual(args[0], args[i]) {
				return value.Long32(int32(i)), nil
			}
		}
		return value.Long32(0), nil

	// --- coercion ---
	case 40:
		return value.Long32(int32(toFloat(args[0]))), nil
	case 41:
		return value.Float32Val(toFloat(args[0])), nil
	case 42:
		return value.Str(formatValue(args[0])), nil

	// --- strings ---
	case 100: // char(code)
		return value.Str(string(rune(args[0].Long))), nil
	case 101:
		return value.Long32(int32(len(args[0].AsString()))), nil
	case 102: // left(s, n)
		s := args[0].AsString()
		n := clampLen(int(args[1].Long), len(s))
		return value.Str(s[:n]), nil
	case 103: // mid(s, start[, len])
		s := args[0].AsString()
		start := int(args[1].Long) - 1
		if start < 0 || start > len(s) {
			return value.Str(""), nil
		}
		n := len(s) - start
		if len(args) == 3 {
			n = clampLen(int(args[2].Long), len(s)-start)
		}
		return value.Str(s[start : start+n]), nil
	case 104: // right(s, n)
		s := args[0].AsString()
		n := clampLen(int(args[1].Long), len(s))
		return value.Str(s[len(s)-n:]), nil
	case 105:
		return value.Str(strings.TrimSpace(args[0].AsString())), nil
	case 106:
		return value.Str(strings.TrimLeft(args[0].AsString(), " \t")), nil
	case 107:
		return value.Str(strings.TrimRight(args[0].AsString(), " \t")), nil
	case 108: // replaceChar(s, old, new)
		old := rune(args[1].Long)
		nw := rune(args[2].Long)
		return value.Str(strings.ReplaceAll(args[0].AsString(), string(old), string(nw))), nil
	case 109: // replaceStr(s, old, new)
		return value.Str(strings.ReplaceAll(args[0].AsString(), args[1].AsString(), args[2].AsString())), nil
	case 110: // findStr(s, sub[, start])
		s := args[0].AsString()
		start := 0
		if len(args) == 3 {
			start = int(args[2].Long) - 1
		}
		if start < 0 || start > len(s) {
			return value.Long32(0), nil
		}
		idx := strings.Index(s[start:], args[1].AsString())
		if idx < 0 {
			return value.Long32(0), nil
		}
		return value.Long32(int32(start + idx + 1)), nil
	case 111:
		return value.Long32(int32(strings.Compare(args[0].AsString(), args[1].AsString()))), nil
	case 112:
		return value.Long32(int32(strings.Compare(strings.ToLower(args[0].AsString()), strings.ToLower(args[1].AsString())))), nil
	case 113:
		return value.Str(fmt.Sprintf("%X", []byte(args[0].AsString()))), nil
	case 114:
		b2, err := hexDecode(args[0].AsString())
		if err != nil {
			return value.Value{}, err
		}
		return value.Str(string(b2)), nil
	case 115:
		return value.Str(strconv.Quote(args[0].AsString())), nil
	case 120:
		return boolValue(isAllRune(args[0].AsString(), isAlphaRune)), nil
	case 121:
		return boolValue(isAllRune(args[0].AsString(), isDigitRune)), nil
	case 122:
		return boolValue(isAllRune(args[0].AsString(), func(r rune) bool { return isAlphaRune(r) || isDigitRune(r) })), nil
	case 123:
		return boolValue(isAllRune(args[0].AsString(), func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' })), nil

	// --- meta ---
	case 140: // eval(s)
		return e.EvalString(args[0].AsString())
	case 141: // ubound(arr[, dim])
		if args[0].Kind != value.KindArray || args[0].Arr == nil {
			return value.Value{}, fmt.Errorf("ubound: argument is not an array")
		}
		dim := 1
		if len(args) == 2 {
			dim = int(args[1].Long)
		}
		if dim < 1 || dim > args[0].Arr.NDims {
			return value.Value{}, fmt.Errorf("ubound: dimension %d out of range", dim)
		}
		return value.Long32(int32(args[0].Arr.Dims[dim-1] - 1)), nil
	case 142: // dims(arr)
		if args[0].Kind != value.KindArray || args[0].Arr == nil {
			return value.Value{}, fmt.Errorf("dims: argument is not an array")
		}
		return value.Long32(int32(args[0].Arr.NDims)), nil
	case 143: // type(v)
		return value.Long32(int32(args[0].Kind)), nil
	case 144: // last(k)
		k := 1
		if len(args) == 1 {
			k = int(args[0].Long)
		}
		return e.Vars.FIFO.Get(k)
	case 145: // err()
		return value.Long32(int32(e.LastErrCode)), nil
	case 146: // isColdStart()
		return value.Long32(0), nil
	case 147: // sysVal(id): ids 0..12 give a category's live string count, 13..25 its free/alloc error count
		id, n := int(args[0].Long), ident.NumCategories
		switch {
		case id >= 0 && id < n:
			return value.Long32(int32(e.Acct.Count(ident.StringCategory(id)))), nil
		case id >= n && id < 2*n:
			return value.Long32(int32(e.Acct.ErrorCount(ident.StringCategory(id - n)))), nil
		}
		return value.Value{}, fmt.Errorf("id %d out of range 0..%d", id, 2*n-1)

	// --- host I/O: digital/analog, timing, streams, files ---
	case 55:
		return value.Long32(int32(e.Host.Millis())), nil
	case 56:
		return value.Long32(int32(e.Host.Micros())), nil

	default:
		return value.Value{}, fmt.Errorf("not-available-on-this-host: %q requires a Host binding this build doesn't provide", b.Name)
	}
}

func floatFn(v value.Value, f func(float64) float64) (value.Value, error) {
	return value.Float32Val(float32(f(float64(toFloat(v))))), nil
}

func minMax(args []value.Value, wantMax bool) (value.Value, error) {
	best := args[0]
	for _, v := range args[1:] {
		code := uint16(codeLt)
		if wantMax {
			code = codeGt
		}
		better, err := compare(v, best, code)
		if err != nil {
			return value.Value{}, err
		}
		if better {
			best = v
		}
	}
	return best, nil
}

func builtinSwitch(args []value.Value) (value.Value, error) {
	sel := args[0]
	rest := args[1:]
	for i := 0; i+1 < len(rest); i += 2 {
		if valuesEqual(sel, rest[i]) {
			return rest[i+1], nil
		}
	}
	if len(rest)%2 == 1 {
		return rest[len(rest)-1], nil
	}
	return value.Value{}, fmt.Errorf("switch: no matching case and no default supplied")
}

func valuesEqual(a, b value.Value) bool {
	eq, err := compare(a, b, codeEq)
	if err != nil {
		return false
	}
	return eq
}

func clampLen(n, max int) int {
	if n < 0 {
		n = 0
	}
	if n > max {
		n = max
	}
	return n
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("hexStrToAsc: odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		b, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return nil, fmt.Errorf("hexStrToAsc: %w", err)
		}
		out[i] = byte(b)
	}
	return out, nil
}

func isAlphaRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigitRune(r rune) bool {
	return r >= '0' && r <= '9'
}

func isAllRune(s string, pred func(rune) bool) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !pred(r) {
			return false
		}
	}
	return true
}

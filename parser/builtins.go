package parser

// Builtin is one row of the fixed internal-function table of spec §6
// ("Built-in functions. Fixed table; each entry carries (name, code,
// min-args, max-args, array-position-mask)").
type Builtin struct {
	Name     string
	Code     uint16
	MinArgs  int
	MaxArgs  int // -1 = unbounded
	ArrayPos uint16 // bit k set => argument k+1 may (or must) be an array
}

// builtins is a representative rendering of the function table spec §6
// lists by category (math, lookup, coercion, string, meta, stream I/O,
// formatting, file). The engine package's dispatch table (component G)
// consumes the same Code values.
var builtins = []Builtin{
	// math
	{"sqrt", 1, 1, 1, 0}, {"sin", 2, 1, 1, 0}, {"cos", 3, 1, 1, 0}, {"tan", 4, 1, 1, 0},
	{"asin", 5, 1, 1, 0}, {"acos", 6, 1, 1, 0}, {"atan", 7, 1, 1, 0}, {"exp", 8, 1, 1, 0},
	{"log", 9, 1, 1, 0}, {"log10", 10, 1, 1, 0}, {"pow", 11, 2, 2, 0}, {"fmod", 12, 2, 2, 0},
	{"abs", 13, 1, 1, 0}, {"min", 14, 2, -1, 0}, {"max", 15, 2, -1, 0}, {"round", 16, 1, 1, 0},
	{"ceil", 17, 1, 1, 0}, {"floor", 18, 1, 1, 0},

	// lookup
	{"ifte", 30, 3, 3, 0}, {"switch", 31, 3, -1, 0}, {"choose", 32, 2, -1, 0}, {"index", 33, 2, -1, 0},

	// type coercion
	{"cInt", 40, 1, 1, 0}, {"cFloat", 41, 1, 1, 0}, {"cStr", 42, 1, 1, 0},

	// digital/analog I/O & timing (Arduino-mirroring; host-supplied semantics)
	{"pinMode", 50, 2, 2, 0}, {"digitalRead", 51, 1, 1, 0}, {"digitalWrite", 52, 2, 2, 0},
	{"analogRead", 53, 1, 1, 0}, {"analogWrite", 54, 2, 2, 0}, {"millis", 55, 0, 0, 0},
	{"micros", 56, 0, 0, 0}, {"delay", 57, 1, 1, 0}, {"delayMicroseconds", 58, 1, 1, 0},

	// bit/byte/word and raw memory
	{"bitSet", 70, 2, 2, 1 << 0}, {"bitClear", 71, 2, 2, 1 << 0}, {"bitRead", 72, 2, 2, 0},
	{"bitWrite", 73, 3, 3, 1 << 0}, {"lowByte", 74, 1, 1, 0}, {"highByte", 75, 1, 1, 0},
	{"memRead32", 80, 1, 1, 0}, {"memWrite32", 81, 2, 2, 0}, {"memRead8", 82, 1, 1, 0}, {"memWrite8", 83, 2, 2, 0},

	// strings
	{"char", 100, 1, 1, 0}, {"len", 101, 1, 1, 0}, {"left", 102, 2, 2, 0}, {"mid", 103, 2, 3, 0},
	{"right", 104, 2, 2, 0}, {"trim", 105, 1, 1, 0}, {"ltrim", 106, 1, 1, 0}, {"rtrim", 107, 1, 1, 0},
	{"replaceChar", 108, 3, 3, 0}, {"replaceStr", 109, 3, 3, 0}, {"findStr", 110, 2, 3, 0},
	{"strCmp", 111, 2, 2, 0}, {"strCaseCmp", 112, 2, 2, 0}, {"ascToHexStr", 113, 1, 1, 0},
	{"hexStrToAsc", 114, 1, 1, 0}, {"quote", 115, 1, 1, 0},
	{"isAlpha", 120, 1, 1, 0}, {"isDigit", 121, 1, 1, 0}, {"isAlphaNumeric", 122, 1, 1, 0}, {"isSpace", 123, 1, 1, 0},

	// meta
	{"eval", 140, 1, 1, 0}, {"ubound", 141, 1, 2, 1 << 0}, {"dims", 142, 1, 1, 1 << 0},
	{"type", 143, 1, 1, 0}, {"last", 144, 0, 1, 0}, {"err", 145, 0, 0, 0},
	{"isColdStart", 146, 0, 0, 0}, {"sysVal", 147, 1, 1, 0},

	// stream I/O
	{"cin", 160, 0, 1, 0}, {"cinLine", 161, 0, 1, 0}, {"cinList", 162, 1, -1, 0xFFFF},
	{"read", 163, 1, 1, 0}, {"readLine", 164, 1, 1, 0}, {"readList", 165, 2, -1, 0xFFFE},
	{"vreadList", 166, 2, -1, 0xFFFE}, {"find", 167, 2, 2, 0}, {"findUntil", 168, 3, 3, 0},
	{"peek", 169, 1, 1, 0}, {"available", 170, 1, 1, 0}, {"flush", 171, 1, 1, 0},
	{"setTimeout", 172, 2, 2, 0}, {"getTimeout", 173, 1, 1, 0},
	{"availableForWrite", 174, 1, 1, 0}, {"getWriteError", 175, 1, 1, 0}, {"clearWriteError", 176, 1, 1, 0},

	// formatting
	{"fmt", 190, 2, 4, 0}, {"tab", 191, 1, 1, 0}, {"col", 192, 1, 1, 0}, {"pos", 193, 0, 0, 0},

	// file
	{"open", 200, 2, 3, 0}, {"close", 201, 1, 1, 0}, {"closeAll", 202, 0, 0, 0}, {"position", 203, 1, 1, 0},
	{"size", 204, 1, 1, 0}, {"seek", 205, 2, 2, 0}, {"name", 206, 1, 1, 0}, {"fullName", 207, 1, 1, 0},
	{"isDirectory", 208, 1, 1, 0}, {"rewindDirectory", 209, 1, 1, 0}, {"openNext", 210, 1, 2, 0},
	{"exists", 211, 1, 1, 0}, {"createDirectory", 212, 1, 1, 0}, {"removeDirectory", 213, 1, 1, 0},
	{"remove", 214, 1, 1, 0}, {"fileNum", 215, 1, 1, 0}, {"isInUse", 216, 1, 1, 0},
}

var builtinByName map[string]*Builtin
var builtinByCode map[uint16]*Builtin

func init() {
	builtinByName = make(map[string]*Builtin, len(builtins))
	builtinByCode = make(map[uint16]*Builtin, len(builtins))
	for i := range builtins {
		builtinByName[builtins[i].Name] = &builtins[i]
		builtinByCode[builtins[i].Code] = &builtins[i]
	}
}

// LookupBuiltin finds a built-in function descriptor by name.
func LookupBuiltin(name string) (*Builtin, bool) {
	b, ok := builtinByName[name]
	return b, ok
}

// BuiltinByCode finds a built-in function descriptor by its runtime
// code, the reverse of LookupBuiltin, for the engine's call dispatch.
func BuiltinByCode(code uint16) (*Builtin, bool) {
	b, ok := builtinByCode[code]
	return b, ok
}

package parser

// symbolicConsts maps predeclared symbolic-constant names (spec §4.D
// item 5: "symbolic constant") to their internal code, consumed at
// runtime by the evaluation engine's symbolic-constant table.
var symbolicConsts = map[string]uint16{
	"PI": 1, "E": 2,
	"HIGH": 10, "LOW": 11, "INPUT": 12, "OUTPUT": 13, "INPUT_PULLUP": 14,
	"READ": 20, "WRITE": 21, "APPEND": 22, "SYNC": 23, "NEW_OK": 24, "NEW_ONLY": 25, "TRUNC": 26,
	"CONSOLE": 30, "IO1": 31, "IO2": 32, "IO3": 33, "IO4": 34,
	"FILE1": 35, "FILE2": 36, "FILE3": 37, "FILE4": 38, "FILE5": 39,
}

// LookupSymbolicConst finds a symbolic constant's code by name.
func LookupSymbolicConst(name string) (uint16, bool) {
	c, ok := symbolicConsts[name]
	return c, ok
}

// terminalCodes maps punctuation/operator lexemes to the Code value
// stored in a KindTerminal token. Infix codes are used by default;
// fixityTerminalCodes overrides a handful of lexemes whose prefix or
// postfix meaning differs in arity or semantics from the infix one
// (unary minus vs subtraction, pre- vs post-increment) so the
// evaluation engine can tell them apart from the Code alone, since the
// packed token carries no separate fixity field.
var terminalCodes = map[string]uint16{
	"(": 1, ")": 2, ",": 3, "[": 4, "]": 5, "{": 6, "}": 7, ".": 8, "#": 9, "?": 10, ":": 11,
	"+": 20, "-": 21, "*": 22, "/": 23, "%": 24,
	"&": 30, "|": 31, "^": 32, "~": 33, "<<": 34, ">>": 35,
	"!": 40, "&&": 41, "||": 42,
	"==": 50, "!=": 51, "<": 52, ">": 53, "<=": 54, ">=": 55,
	"=": 60, "+=": 61, "-=": 62, "*=": 63, "/=": 64, "%=": 65,
	"&=": 66, "|=": 67, "^=": 68, "<<=": 69, ">>=": 70,
	"++": 80, "--": 81,
}

// fixityTerminalCodes overrides terminalCodes for (lexeme, fixity)
// pairs where the prefix/postfix code must differ from the infix one.
var fixityTerminalCodes = map[string]map[OpFixity]uint16{
	"+":  {FixPrefix: 90},
	"-":  {FixPrefix: 91},
	"++": {FixPrefix: 82, FixPostfix: 80},
	"--": {FixPrefix: 83, FixPostfix: 81},
}

// TerminalCode returns the Code a KindTerminal token should carry for
// lexeme at the given fixity.
func TerminalCode(lexeme string, fixity OpFixity) (uint16, bool) {
	if byFix, ok := fixityTerminalCodes[lexeme]; ok {
		if c, ok2 := byFix[fixity]; ok2 {
			return c, true
		}
	}
	c, ok := terminalCodes[lexeme]
	return c, ok
}

package parser

// OpFixity distinguishes how an operator token is positioned relative
// to its operand(s), per spec §4.E "Operators ... three priorities
// (prefix, infix, postfix)".
type OpFixity int

const (
	FixPrefix OpFixity = iota
	FixInfix
	FixPostfix
)

// OpFlags carries the per-operator behavioural bits of spec §4.E.
type OpFlags uint8

const (
	FlagLongOnly     OpFlags = 1 << iota // both operands must coerce to long
	FlagBoolResult                       // result is always long 0/1
	FlagRightToLeft                      // infix only: right-associative
	FlagIsAssignment                     // pure or compound assignment
)

// Operator is one row of the fixed operator table.
type Operator struct {
	Lexeme   string
	Fixity   OpFixity
	Priority int
	Flags    OpFlags
}

// operators enumerates every operator lexeme the parser recognises,
// keyed by (lexeme, fixity) since some lexemes are both prefix and
// infix ('+' '-') or both infix and postfix ('++' '--').
var operators = []Operator{
	// assignment — lowest priority, right-associative
	{"=", FixInfix, 1, FlagIsAssignment},
	{"+=", FixInfix, 1, FlagIsAssignment},
	{"-=", FixInfix, 1, FlagIsAssignment},
	{"*=", FixInfix, 1, FlagIsAssignment},
	{"/=", FixInfix, 1, FlagIsAssignment},
	{"%=", FixInfix, 1, FlagIsAssignment | FlagLongOnly},
	{"&=", FixInfix, 1, FlagIsAssignment | FlagLongOnly},
	{"|=", FixInfix, 1, FlagIsAssignment | FlagLongOnly},
	{"^=", FixInfix, 1, FlagIsAssignment | FlagLongOnly},
	{"<<=", FixInfix, 1, FlagIsAssignment | FlagLongOnly},
	{">>=", FixInfix, 1, FlagIsAssignment | FlagLongOnly},

	// logical
	{"||", FixInfix, 2, FlagBoolResult},
	{"&&", FixInfix, 3, FlagBoolResult},

	// bitwise
	{"|", FixInfix, 4, FlagLongOnly},
	{"^", FixInfix, 5, FlagLongOnly},
	{"&", FixInfix, 6, FlagLongOnly},

	// equality / relational
	{"==", FixInfix, 7, FlagBoolResult},
	{"!=", FixInfix, 7, FlagBoolResult},
	{"<", FixInfix, 8, FlagBoolResult},
	{">", FixInfix, 8, FlagBoolResult},
	{"<=", FixInfix, 8, FlagBoolResult},
	{">=", FixInfix, 8, FlagBoolResult},

	// shift
	{"<<", FixInfix, 9, FlagLongOnly},
	{">>", FixInfix, 9, FlagLongOnly},

	// additive
	{"+", FixInfix, 10, 0},
	{"-", FixInfix, 10, 0},

	// multiplicative
	{"*", FixInfix, 11, 0},
	{"/", FixInfix, 11, 0},
	{"%", FixInfix, 11, FlagLongOnly},

	// unary prefix — highest precedence below postfix
	{"-", FixPrefix, 12, 0},
	{"+", FixPrefix, 12, 0},
	{"!", FixPrefix, 12, FlagBoolResult},
	{"~", FixPrefix, 12, FlagLongOnly},
	{"++", FixPrefix, 12, FlagIsAssignment},
	{"--", FixPrefix, 12, FlagIsAssignment},

	// postfix increment/decrement — highest priority
	{"++", FixPostfix, 13, FlagIsAssignment},
	{"--", FixPostfix, 13, FlagIsAssignment},
}

// LookupOperator finds the operator row for lexeme at the given
// fixity, if any.
func LookupOperator(lexeme string, fixity OpFixity) (Operator, bool) {
	for _, op := range operators {
		if op.Lexeme == lexeme && op.Fixity == fixity {
			return op, true
		}
	}
	return Operator{}, false
}

// IsOperatorLexeme reports whether lexeme is an operator in any fixity.
func IsOperatorLexeme(lexeme string) bool {
	for _, op := range operators {
		if op.Lexeme == lexeme {
			return true
		}
	}
	return false
}

package parser

// BlockRole classifies a command's role in the keyword block-chain
// machinery of spec §4.E "Keyword blocks".
type BlockRole int

const (
	BlockNone BlockRole = iota
	BlockStart
	BlockInOpen // break/continue/return: valid only inside an open block, doesn't itself chain
	BlockEnd
	BlockGenericEnd // elseif/else: both closes the previous alternative and opens the next
)

// Restriction is a bitmask of where a command may appear, mirroring
// the teacher's directive-restriction checks in the old assembly
// parser, generalized to the command table of spec §6.
type Restriction uint16

const (
	RestrProgramOnly Restriction = 1 << iota
	RestrImmediateOnly
	RestrInsideFunctionOnly
	RestrOutsideFunctionOnly
	RestrProgramTopOnly
	RestrImmediateTopOnly
	RestrSkipDuringExec // non-executable: declarations, definitions
)

// ArgKind classifies one positional command argument, per spec §4.E
// "Allowed argument kinds".
type ArgKind int

const (
	ArgAnyExpression ArgKind = iota
	ArgUnqualifiedIdent
	ArgVarOptAssign
	ArgVarNoAssign
	ArgKeyword
)

// ArgSpec describes one positional argument slot.
type ArgSpec struct {
	Kind     ArgKind
	Multiple bool // this slot may repeat (",", "," ...)
	Optional bool
}

// Command is one row of the command-framework table: a keyword that
// begins a statement and controls its own argument/placement/block
// rules (spec §4.E "Command framework").
type Command struct {
	Name         string
	MinArgs      int
	MaxArgs      int // -1 = unbounded
	Args         []ArgSpec
	Restrictions Restriction
	Block        BlockRole
	// Predecessors lists the block-chain predecessor keywords this
	// command may legally follow when Block is BlockGenericEnd or
	// BlockEnd (e.g. "elseif"/"else" must follow "if" or "elseif").
	Predecessors []string
}

// commands is the fixed command table, a representative rendering of
// spec §6's command listing (exhaustive enough to drive the parser's
// command-mode dispatch; the built-in *function* table is separate,
// see builtins.go).
var commands = map[string]*Command{
	"program": {Name: "program", MinArgs: 1, MaxArgs: 1,
		Args:         []ArgSpec{{Kind: ArgUnqualifiedIdent}},
		Restrictions: RestrProgramTopOnly | RestrSkipDuringExec},

	"function": {Name: "function", MinArgs: 1, MaxArgs: -1,
		Args:         []ArgSpec{{Kind: ArgUnqualifiedIdent}, {Kind: ArgVarOptAssign, Multiple: true, Optional: true}},
		Restrictions: RestrProgramOnly | RestrOutsideFunctionOnly | RestrSkipDuringExec,
		Block:        BlockStart},

	"var":    {Name: "var", MinArgs: 1, MaxArgs: 15, Args: []ArgSpec{{Kind: ArgVarOptAssign, Multiple: true}}, Restrictions: RestrSkipDuringExec},
	"const":  {Name: "const", MinArgs: 1, MaxArgs: 15, Args: []ArgSpec{{Kind: ArgVarOptAssign, Multiple: true}}, Restrictions: RestrSkipDuringExec},
	"static": {Name: "static", MinArgs: 1, MaxArgs: 15, Args: []ArgSpec{{Kind: ArgVarOptAssign, Multiple: true}}, Restrictions: RestrInsideFunctionOnly | RestrSkipDuringExec},

	"for": {Name: "for", MinArgs: 3, MaxArgs: 4,
		Args:  []ArgSpec{{Kind: ArgVarNoAssign}, {Kind: ArgAnyExpression}, {Kind: ArgAnyExpression}, {Kind: ArgAnyExpression, Optional: true}},
		Block: BlockStart},
	"while":    {Name: "while", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression}}, Block: BlockStart},
	"if":       {Name: "if", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression}}, Block: BlockStart},
	"elseif":   {Name: "elseif", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression}}, Block: BlockGenericEnd, Predecessors: []string{"if", "elseif"}},
	"else":     {Name: "else", MinArgs: 0, MaxArgs: 0, Block: BlockGenericEnd, Predecessors: []string{"if", "elseif"}},
	"end":      {Name: "end", MinArgs: 0, MaxArgs: 0, Block: BlockEnd, Predecessors: []string{"if", "elseif", "else", "while", "for", "function"}},
	"break":    {Name: "break", MinArgs: 0, MaxArgs: 0, Block: BlockInOpen},
	"continue": {Name: "continue", MinArgs: 0, MaxArgs: 0, Block: BlockInOpen},
	"return":   {Name: "return", MinArgs: 0, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression, Optional: true}}, Block: BlockInOpen},

	"stop": {Name: "stop", MinArgs: 0, MaxArgs: 0, Restrictions: RestrInsideFunctionOnly},
	"nop":  {Name: "nop", MinArgs: 0, MaxArgs: 0, Restrictions: RestrInsideFunctionOnly},

	"go":          {Name: "go", Restrictions: RestrImmediateOnly},
	"step":        {Name: "step", Restrictions: RestrImmediateOnly},
	"stepOut":     {Name: "stepOut", Restrictions: RestrImmediateOnly},
	"stepOver":    {Name: "stepOver", Restrictions: RestrImmediateOnly},
	"bStepOut":    {Name: "bStepOut", Restrictions: RestrImmediateOnly},
	"loop":        {Name: "loop", Restrictions: RestrImmediateOnly},
	"setNextLine": {Name: "setNextLine", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression}}, Restrictions: RestrImmediateOnly},
	"abort":       {Name: "abort", Restrictions: RestrImmediateOnly},
	"debug":       {Name: "debug", Restrictions: RestrImmediateOnly},

	"setBP": {Name: "setBP", MinArgs: 1, MaxArgs: 3,
		Args:         []ArgSpec{{Kind: ArgAnyExpression}, {Kind: ArgAnyExpression, Optional: true}, {Kind: ArgAnyExpression, Optional: true}},
		Restrictions: RestrImmediateOnly},
	"clearBP":    {Name: "clearBP", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression, Multiple: true}}, Restrictions: RestrImmediateOnly},
	"enableBP":   {Name: "enableBP", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression, Multiple: true}}, Restrictions: RestrImmediateOnly},
	"disableBP":  {Name: "disableBP", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression, Multiple: true}}, Restrictions: RestrImmediateOnly},
	"moveBP":     {Name: "moveBP", MinArgs: 2, MaxArgs: 2, Args: []ArgSpec{{Kind: ArgAnyExpression}, {Kind: ArgAnyExpression}}, Restrictions: RestrImmediateOnly},
	"BPon":       {Name: "BPon", Restrictions: RestrImmediateOnly},
	"BPoff":      {Name: "BPoff", Restrictions: RestrImmediateOnly},
	"BPactivate": {Name: "BPactivate", Restrictions: RestrImmediateOnly},
	"listBP":     {Name: "listBP", MinArgs: 0, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression, Optional: true}}, Restrictions: RestrImmediateOnly},

	"raiseError":  {Name: "raiseError", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression}}},
	"trapErrors":  {Name: "trapErrors", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgKeyword}}},
	"clearError":  {Name: "clearError"},
	"quit":        {Name: "quit"},
	"cout":        {Name: "cout", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression, Multiple: true}}},
	"coutLine":    {Name: "coutLine", MinArgs: 0, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression, Multiple: true, Optional: true}}},
	"coutList":    {Name: "coutList", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression, Multiple: true}}},
	"print":       {Name: "print", MinArgs: 2, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression}, {Kind: ArgAnyExpression, Multiple: true}}},
	"printLine":   {Name: "printLine", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression, Multiple: true}}},
	"printList":   {Name: "printList", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression, Multiple: true}}},
	"vprint":      {Name: "vprint", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgVarNoAssign, Multiple: true}}},

	"listVars":      {Name: "listVars", Restrictions: RestrImmediateOnly},
	"listFiles":     {Name: "listFiles", Restrictions: RestrImmediateOnly},
	"listCallStack": {Name: "listCallStack", Restrictions: RestrImmediateOnly},

	"input": {Name: "input", MinArgs: 2, MaxArgs: 3,
		Args: []ArgSpec{{Kind: ArgAnyExpression}, {Kind: ArgVarNoAssign}, {Kind: ArgVarNoAssign, Optional: true}}},
	"info": {Name: "info", MinArgs: 1, MaxArgs: 2,
		Args: []ArgSpec{{Kind: ArgAnyExpression}, {Kind: ArgVarNoAssign, Optional: true}}},

	"dispWidth": {Name: "dispWidth", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression}}},
	"floatFmt":  {Name: "floatFmt", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression, Multiple: true}}},
	"intFmt":    {Name: "intFmt", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgAnyExpression, Multiple: true}}},
	"dispMode":  {Name: "dispMode", MinArgs: 2, MaxArgs: 2, Args: []ArgSpec{{Kind: ArgAnyExpression}, {Kind: ArgAnyExpression}}},
	"tabSize":   {Name: "tabSize", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression}}},
	"angleMode": {Name: "angleMode", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression}}},

	"startSD":     {Name: "startSD"},
	"stopSD":      {Name: "stopSD"},
	"receiveFile": {Name: "receiveFile", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression}}},
	"sendFile":    {Name: "sendFile", MinArgs: 1, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression}}},
	"copyFile":    {Name: "copyFile", MinArgs: 2, MaxArgs: 2, Args: []ArgSpec{{Kind: ArgAnyExpression}, {Kind: ArgAnyExpression}}},

	"clearMem":  {Name: "clearMem", Restrictions: RestrImmediateOnly},
	"clearProg": {Name: "clearProg", Restrictions: RestrImmediateOnly | RestrSkipDuringExec},
	"loadProg":  {Name: "loadProg", MinArgs: 0, MaxArgs: 1, Args: []ArgSpec{{Kind: ArgAnyExpression, Optional: true}}, Restrictions: RestrImmediateOnly},
	"delete":    {Name: "delete", MinArgs: 1, MaxArgs: -1, Args: []ArgSpec{{Kind: ArgUnqualifiedIdent, Multiple: true}}, Restrictions: RestrImmediateOnly},
}

// LookupCommand returns the command descriptor for name, if any.
func LookupCommand(name string) (*Command, bool) {
	c, ok := commands[name]
	return c, ok
}

// IsKeyword reports whether name is a reserved word at all (command
// keyword, block keyword, or boolean/literal keyword).
func IsKeyword(name string) bool {
	if _, ok := commands[name]; ok {
		return true
	}
	switch name {
	case "true", "false", "on", "off":
		return true
	}
	return false
}

package engine

import (
	"fmt"

	"github.com/justina-lang/justinavm/parser"
	"github.com/justina-lang/justinavm/token"
	"github.com/justina-lang/justinavm/value"
)

// blockKind classifies an open blockRecord.
type blockKind int

const (
	blockIf blockKind = iota
	blockWhile
	blockFor
)

// blockRecord is one entry of the runtime block-chain stack, pushed
// when a for/while loop body is entered or an if/elseif/else branch is
// taken, and popped when its "end" is reached (spec §4.E "Keyword
// blocks"). Grounded on the push/pop/depth-tracking shape of the
// teacher's vm/stack_trace.go StackTrace, adapted from a raw
// SP-history log to a typed control-flow record.
type blockRecord struct {
	kind blockKind

	// if-chains: has a branch of this chain already executed? Once
	// true, every subsequent elseif/else reached by fallthrough must
	// skip straight past its own condition/body to the chain's "end".
	resolved bool
	// awaitingCond is set right after falling through into an elseif's
	// own condition expression (which, in the token stream, follows
	// its keyword rather than preceding it); endStatement consumes it.
	awaitingCond bool
	jumpIfFalse  int

	// while: cursor to re-evaluate the condition expression from.
	condStart int

	// for: loop-control state captured when the loop was entered.
	keywordCursor int
	loopVar       *value.Slot
	limit         value.Value
	step          value.Value
}

// callRecord is one entry of the user-function call stack: just enough
// to resume the caller, since parameter/local storage lives at fixed
// value.Store.ProgramSlots indices rather than a per-call frame (this
// language has no recursion, so a stable slot binding at parse time is
// sufficient — see DESIGN.md).
type callRecord struct {
	returnCursor int
	blocksDepth  int
}

// keywordResult is execKeyword's verdict: either an explicit cursor
// override (and whether it's a halting one) or "no override", meaning
// the caller should advance past this token as usual.
type keywordResult struct {
	jumpTo int
	halt   bool
}

const noJump = -1

// execKeyword dispatches one KindKeyword token: block-start/chain/end
// commands, break/continue/return, and the generic argument-list
// commands of parser/keywords.go's command table.
func (e *Engine) execKeyword(tok token.Token, cur int) (keywordResult, error) {
	name, ok := parser.CommandNameByCode(tok.Code)
	if !ok {
		return keywordResult{}, fmt.Errorf("internal-error: unknown command code %d", tok.Code)
	}

	switch name {
	case "program", "var", "const", "static":
		return keywordResult{jumpTo: noJump}, nil

	case "function":
		skip, err := e.skipBlock(cur, tok)
		return keywordResult{jumpTo: skip}, err

	case "if":
		return e.execIf(tok, cur)
	case "elseif":
		return e.execElseif(tok, cur)
	case "else":
		return e.execElse(tok, cur)
	case "while":
		return e.execWhile(tok, cur)
	case "for":
		return e.execForStart(tok, cur)
	case "end":
		return e.execEnd(tok, cur)

	case "break":
		return e.execBreak()
	case "continue":
		return e.execContinue()
	case "return":
		return e.execReturn(tok)

	case "stop", "quit":
		return keywordResult{jumpTo: cur, halt: true}, nil
	case "nop":
		return keywordResult{jumpTo: noJump}, nil

	case "trapErrors":
		// trapErrors on/off is parsed as a bare keyword argument (see
		// parser.parseCommand's "trapErrors" case): nothing is pushed to
		// the operand stack, so the on/off choice travels as ArgCount
		// itself rather than through popKeywordArg.
		e.trapErrors = tok.ArgCount == 1
		return keywordResult{jumpTo: noJump}, nil
	case "clearError":
		e.LastErrCode = 0
		e.LastErrText = ""
		return keywordResult{jumpTo: noJump}, nil
	case "raiseError":
		v, err := e.popKeywordArg(tok)
		if err != nil {
			return keywordResult{}, err
		}
		if len(v) == 1 {
			e.LastErrCode = int(v[0].Long)
		}
		return keywordResult{}, fmt.Errorf("raised-error: %d", e.LastErrCode)

	case "cout", "coutLine", "coutList", "print", "printLine", "printList", "vprint":
		return e.execPrintLike(name, tok)

	case "go":
		e.Mode = ModeRun
		return keywordResult{jumpTo: noJump}, nil
	case "step":
		e.Mode = ModeStep
		return keywordResult{jumpTo: noJump}, nil
	case "stepOver":
		e.Mode = ModeStepOver
		return keywordResult{jumpTo: noJump}, nil
	case "stepOut", "bStepOut":
		e.Mode = ModeStepOut
		return keywordResult{jumpTo: noJump}, nil
	case "debug":
		e.Mode = ModeStep
		return keywordResult{jumpTo: noJump}, nil
	case "abort":
		// Unwinds evaluation, flow-control and call stacks down to the
		// outermost frame, leaving user variables intact (spec §4.H
		// "Debug frame").
		e.stack = e.stack[:0]
		e.blocks = e.blocks[:0]
		e.calls = e.calls[:0]
		e.Mode = ModeRun
		e.State = StateIdle
		return keywordResult{jumpTo: cur, halt: true}, nil

	case "setBP":
		return e.execSetBP(tok)
	case "clearBP", "enableBP", "disableBP":
		if e.Debug == nil {
			return keywordResult{}, fmt.Errorf("debugger-not-wired")
		}
		var op func(line int) error
		switch name {
		case "clearBP":
			op = e.Debug.ClearBreakpoint
		case "enableBP":
			op = e.Debug.EnableBreakpoint
		default:
			op = e.Debug.DisableBreakpoint
		}
		return e.execBPLineList(tok, op)
	case "moveBP":
		args, err := e.popKeywordArg(tok)
		if err != nil {
			return keywordResult{}, err
		}
		if e.Debug == nil {
			return keywordResult{}, fmt.Errorf("debugger-not-wired")
		}
		if err := e.Debug.MoveBreakpoint(int(args[0].Long), int(args[1].Long)); err != nil {
			return keywordResult{}, err
		}
		return keywordResult{jumpTo: noJump}, nil
	case "BPon":
		if e.Debug == nil {
			return keywordResult{}, fmt.Errorf("debugger-not-wired")
		}
		e.Debug.BreakpointsOn()
		return keywordResult{jumpTo: noJump}, nil
	case "BPoff":
		if e.Debug == nil {
			return keywordResult{}, fmt.Errorf("debugger-not-wired")
		}
		e.Debug.BreakpointsOff()
		return keywordResult{jumpTo: noJump}, nil
	case "BPactivate":
		if e.Debug == nil {
			return keywordResult{}, fmt.Errorf("debugger-not-wired")
		}
		e.Debug.BreakpointsOn()
		if err := e.Debug.RearmBreakpoints(); err != nil {
			return keywordResult{}, err
		}
		return keywordResult{jumpTo: noJump}, nil
	case "listBP":
		if _, err := e.popKeywordArg(tok); err != nil {
			return keywordResult{}, err
		}
		if e.Debug == nil {
			return keywordResult{}, fmt.Errorf("debugger-not-wired")
		}
		e.Host.Print(e.Debug.FormatBreakpoints())
		return keywordResult{jumpTo: noJump}, nil

	case "loadProg":
		args, err := e.popKeywordArg(tok)
		if err != nil {
			return keywordResult{}, err
		}
		if e.Debug == nil {
			return keywordResult{}, fmt.Errorf("debugger-not-wired")
		}
		path := ""
		if len(args) == 1 {
			path = args[0].AsString()
		}
		if err := e.Debug.LoadProgram(path); err != nil {
			return keywordResult{}, err
		}
		return keywordResult{jumpTo: cur, halt: true}, nil
	case "clearProg":
		if e.Debug == nil {
			return keywordResult{}, fmt.Errorf("debugger-not-wired")
		}
		if err := e.Debug.ClearProgram(); err != nil {
			return keywordResult{}, err
		}
		return keywordResult{jumpTo: cur, halt: true}, nil
	case "clearMem":
		if e.Debug == nil {
			return keywordResult{}, fmt.Errorf("debugger-not-wired")
		}
		if err := e.Debug.ClearMemory(); err != nil {
			return keywordResult{}, err
		}
		return keywordResult{jumpTo: cur, halt: true}, nil

	case "delete":
		args, err := e.popKeywordArg(tok)
		if err != nil {
			return keywordResult{}, err
		}
		if e.Debug == nil {
			return keywordResult{}, fmt.Errorf("debugger-not-wired")
		}
		for _, v := range args {
			if err := e.Debug.DeleteVariable(v.AsString()); err != nil {
				return keywordResult{}, err
			}
		}
		return keywordResult{jumpTo: noJump}, nil

	default:
		// The remaining generic commands (display formatting, file I/O,
		// housekeeping) are host-facing and not exercised by plain
		// program execution; drain their operands so the stack stays
		// balanced and continue.
		if _, err := e.popKeywordArg(tok); err != nil {
			return keywordResult{}, err
		}
		return keywordResult{jumpTo: noJump}, nil
	}
}

// execSetBP implements the setBP command: a line plus optional view and
// hit-count/trigger attributes (spec §4.F/§6 — the third argument is a
// hit count if it evaluates to a long, a trigger expression if a
// string).
func (e *Engine) execSetBP(tok token.Token) (keywordResult, error) {
	args, err := e.popKeywordArg(tok)
	if err != nil {
		return keywordResult{}, err
	}
	if e.Debug == nil {
		return keywordResult{}, fmt.Errorf("debugger-not-wired")
	}
	line := int(args[0].Long)
	var view, trigger string
	var hasView, hasTrigger bool
	var hitCount int
	if len(args) >= 2 {
		view, hasView = args[1].AsString(), true
	}
	if len(args) >= 3 {
		if args[2].Kind == value.KindString {
			trigger, hasTrigger = args[2].AsString(), true
		} else {
			hitCount = int(args[2].Long)
		}
	}
	if err := e.Debug.SetBreakpoint(line, view, hasView, hitCount, trigger, hasTrigger); err != nil {
		return keywordResult{}, err
	}
	return keywordResult{jumpTo: noJump}, nil
}

// execBPLineList implements clearBP/enableBP/disableBP: each pops a
// variable-length list of line numbers and applies op to every one.
func (e *Engine) execBPLineList(tok token.Token, op func(line int) error) (keywordResult, error) {
	args, err := e.popKeywordArg(tok)
	if err != nil {
		return keywordResult{}, err
	}
	if e.Debug == nil {
		return keywordResult{}, fmt.Errorf("debugger-not-wired")
	}
	for _, v := range args {
		if err := op(int(v.Long)); err != nil {
			return keywordResult{}, err
		}
	}
	return keywordResult{jumpTo: noJump}, nil
}

// popKeywordArg pops tok.ArgCount values (in source order) ahead of a
// keyword token with generic expression arguments.
func (e *Engine) popKeywordArg(tok token.Token) ([]value.Value, error) {
	n := int(tok.ArgCount)
	out := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		v, err := e.popValue()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// execPrintLike handles the output-producing commands by routing their
// arguments to Host.Print, one space-joined line per call — a
// simplified rendering of spec §4.I's display-formatting rules
// (dispWidth/floatFmt/tabSize govern exact columnar layout, which is
// host-presentation detail out of scope for the engine core).
func (e *Engine) execPrintLike(name string, tok token.Token) (keywordResult, error) {
	args, err := e.popKeywordArg(tok)
	if err != nil {
		return keywordResult{}, err
	}
	line := ""
	for i, v := range args {
		if i > 0 {
			line += " "
		}
		line += formatValue(v)
	}
	if name == "coutLine" || name == "printLine" {
		line += "\n"
	}
	e.Host.Print(line)
	return keywordResult{jumpTo: noJump}, nil
}

func formatValue(v value.Value) string {
	switch v.Kind {
	case value.KindLong:
		return fmt.Sprintf("%d", v.Long)
	case value.KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case value.KindString:
		return v.AsString()
	default:
		return ""
	}
}

// rootKeyword decodes the command name of the block-starting keyword
// tok's chain ultimately belongs to (if/while/for/function), following
// the BlockOffset a closing "end" token always carries back to it.
func (e *Engine) rootKeyword(cur int, tok token.Token) (string, int, error) {
	rootCursor := cur + int(tok.BlockOffset)
	rootTok, err := e.Stream.Decode(rootCursor)
	if err != nil {
		return "", 0, err
	}
	name, ok := parser.CommandNameByCode(rootTok.Code)
	if !ok {
		return "", 0, fmt.Errorf("internal-error: unresolvable block root at %d", rootCursor)
	}
	return name, rootCursor, nil
}

// skipBlock jumps from a block-start/chain-link keyword straight past
// its matching "end", for contexts where the block must not execute at
// all (a function definition reached by top-to-bottom fallthrough, or
// a false if/elseif/while condition with no further chain link).
func (e *Engine) skipBlock(cur int, tok token.Token) (int, error) {
	endCursor := cur + int(tok.BlockOffset)
	for {
		t, err := e.Stream.Decode(endCursor)
		if err != nil {
			return 0, err
		}
		name, ok := parser.CommandNameByCode(t.Code)
		if !ok {
			return 0, fmt.Errorf("internal-error: unresolvable chain link at %d", endCursor)
		}
		if name == "end" {
			return e.Stream.Step(endCursor)
		}
		// Landed on another elseif/else link: chase its own chain
		// pointer onward until "end" is reached.
		endCursor = endCursor + int(t.BlockOffset)
	}
}

func (e *Engine) execIf(tok token.Token, cur int) (keywordResult, error) {
	cond, err := e.popValue()
	if err != nil {
		return keywordResult{}, err
	}
	if truthy(cond) {
		e.blocks = append(e.blocks, blockRecord{kind: blockIf, resolved: true})
		return keywordResult{jumpTo: noJump}, nil
	}
	next := cur + int(tok.BlockOffset)
	link, err := e.Stream.Decode(next)
	if err != nil {
		return keywordResult{}, err
	}
	if name, _ := parser.CommandNameByCode(link.Code); name != "end" {
		// Land on the following elseif/else link with the chain still
		// unresolved; execElseif/execElse decide from there.
		e.blocks = append(e.blocks, blockRecord{kind: blockIf})
		return keywordResult{jumpTo: next}, nil
	}
	skip, err := e.skipBlock(cur, tok)
	if err != nil {
		return keywordResult{}, err
	}
	return keywordResult{jumpTo: skip}, nil
}

func (e *Engine) execElseif(tok token.Token, cur int) (keywordResult, error) {
	if len(e.blocks) == 0 {
		return keywordResult{}, fmt.Errorf("internal-error: elseif with no open if-chain")
	}
	top := &e.blocks[len(e.blocks)-1]
	if top.resolved {
		skip, err := e.skipBlock(cur, tok)
		if err != nil {
			return keywordResult{}, err
		}
		e.blocks = e.blocks[:len(e.blocks)-1]
		return keywordResult{jumpTo: skip}, nil
	}
	// Unresolved: this elseif was reached by a forward jump from a
	// false predecessor. Its own condition follows in the stream;
	// fall through to it and let endStatement resolve the branch once
	// that condition expression finishes.
	top.awaitingCond = true
	top.jumpIfFalse = cur + int(tok.BlockOffset)
	return keywordResult{jumpTo: noJump}, nil
}

func (e *Engine) execElse(tok token.Token, cur int) (keywordResult, error) {
	if len(e.blocks) == 0 {
		return keywordResult{}, fmt.Errorf("internal-error: else with no open if-chain")
	}
	top := &e.blocks[len(e.blocks)-1]
	if top.resolved {
		skip, err := e.skipBlock(cur, tok)
		if err != nil {
			return keywordResult{}, err
		}
		e.blocks = e.blocks[:len(e.blocks)-1]
		return keywordResult{jumpTo: skip}, nil
	}
	top.resolved = true
	return keywordResult{jumpTo: noJump}, nil
}

func (e *Engine) execWhile(tok token.Token, cur int) (keywordResult, error) {
	cond, err := e.popValue()
	if err != nil {
		return keywordResult{}, err
	}
	if truthy(cond) {
		e.blocks = append(e.blocks, blockRecord{kind: blockWhile, condStart: e.stmtStart})
		return keywordResult{jumpTo: noJump}, nil
	}
	skip, err := e.skipBlock(cur, tok)
	if err != nil {
		return keywordResult{}, err
	}
	return keywordResult{jumpTo: skip}, nil
}

func (e *Engine) execForStart(tok token.Token, cur int) (keywordResult, error) {
	stepVal, err := e.popValue()
	if err != nil {
		return keywordResult{}, err
	}
	limitVal, err := e.popValue()
	if err != nil {
		return keywordResult{}, err
	}
	startVal, err := e.popValue()
	if err != nil {
		return keywordResult{}, err
	}
	lv, err := e.popLvalue()
	if err != nil {
		return keywordResult{}, err
	}
	if err := lv.write(e.Vars, startVal); err != nil {
		return keywordResult{}, err
	}
	if !forInRange(startVal, limitVal, stepVal) {
		skip, err := e.skipBlock(cur, tok)
		if err != nil {
			return keywordResult{}, err
		}
		return keywordResult{jumpTo: skip}, nil
	}
	e.blocks = append(e.blocks, blockRecord{
		kind:          blockFor,
		keywordCursor: cur,
		loopVar:       lv.slot,
		limit:         limitVal,
		step:          stepVal,
	})
	return keywordResult{jumpTo: noJump}, nil
}

func (e *Engine) execEnd(tok token.Token, cur int) (keywordResult, error) {
	rootName, _, err := e.rootKeyword(cur, tok)
	if err != nil {
		return keywordResult{}, err
	}

	if rootName == "function" {
		if len(e.calls) == 0 {
			return keywordResult{}, fmt.Errorf("internal-error: function end with no active call")
		}
		top := e.calls[len(e.calls)-1]
		e.calls = e.calls[:len(e.calls)-1]
		e.blocks = e.blocks[:top.blocksDepth]
		e.push(stackElem{Val: value.Long32(0)})
		return keywordResult{jumpTo: top.returnCursor}, nil
	}

	if len(e.blocks) == 0 {
		return keywordResult{}, fmt.Errorf("internal-error: end with no open block")
	}
	top := &e.blocks[len(e.blocks)-1]

	switch rootName {
	case "if":
		e.blocks = e.blocks[:len(e.blocks)-1]
		return keywordResult{jumpTo: noJump}, nil

	case "while":
		target := top.condStart
		e.blocks = e.blocks[:len(e.blocks)-1]
		e.stmtStart = target
		return keywordResult{jumpTo: target}, nil

	case "for":
		slot := top.loopVar
		next, err := addStep(slot.Value, top.step)
		if err != nil {
			return keywordResult{}, err
		}
		if err := e.Vars.AssignScalar(slot, false, next); err != nil {
			return keywordResult{}, err
		}
		if forInRange(next, top.limit, top.step) {
			bodyStart, err := e.Stream.Step(top.keywordCursor)
			if err != nil {
				return keywordResult{}, err
			}
			return keywordResult{jumpTo: bodyStart}, nil
		}
		e.blocks = e.blocks[:len(e.blocks)-1]
		return keywordResult{jumpTo: noJump}, nil
	}
	return keywordResult{}, fmt.Errorf("internal-error: end with unrecognized root keyword %q", rootName)
}

// findEnclosingLoop returns the index of the nearest blockFor/blockWhile
// record on the stack, for break/continue.
func (e *Engine) findEnclosingLoop() (int, error) {
	for i := len(e.blocks) - 1; i >= 0; i-- {
		if e.blocks[i].kind == blockFor || e.blocks[i].kind == blockWhile {
			return i, nil
		}
	}
	return 0, fmt.Errorf("internal-error: break/continue outside a loop")
}

func (e *Engine) execBreak() (keywordResult, error) {
	idx, err := e.findEnclosingLoop()
	if err != nil {
		return keywordResult{}, err
	}
	rec := e.blocks[idx]
	endCursor, err := e.loopEndCursor(rec)
	if err != nil {
		return keywordResult{}, err
	}
	past, err := e.Stream.Step(endCursor)
	if err != nil {
		return keywordResult{}, err
	}
	e.blocks = e.blocks[:idx]
	return keywordResult{jumpTo: past}, nil
}

func (e *Engine) execContinue() (keywordResult, error) {
	idx, err := e.findEnclosingLoop()
	if err != nil {
		return keywordResult{}, err
	}
	rec := e.blocks[idx]
	endCursor, err := e.loopEndCursor(rec)
	if err != nil {
		return keywordResult{}, err
	}
	e.blocks = e.blocks[:idx+1]
	return keywordResult{jumpTo: endCursor}, nil
}

func (e *Engine) execReturn(tok token.Token) (keywordResult, error) {
	var result value.Value
	if tok.ArgCount == 1 {
		v, err := e.popValue()
		if err != nil {
			return keywordResult{}, err
		}
		result = v
	}
	if len(e.calls) == 0 {
		// Immediate-mode/top-level return simply ends execution (spec
		// §4.G).
		return keywordResult{jumpTo: e.Stream.Len(), halt: true}, nil
	}
	top := e.calls[len(e.calls)-1]
	e.calls = e.calls[:len(e.calls)-1]
	e.blocks = e.blocks[:top.blocksDepth]
	e.push(stackElem{Val: result})
	return keywordResult{jumpTo: top.returnCursor}, nil
}

// loopEndCursor finds a loop record's "end" token cursor, covering both
// loop kinds: a while loop's own keyword cursor isn't kept directly in
// blockRecord (condStart is enough for the natural end-of-iteration
// path), so break/continue need one extra scan to recover it.
func (e *Engine) loopEndCursor(rec blockRecord) (int, error) {
	if rec.kind == blockFor {
		t, err := e.Stream.Decode(rec.keywordCursor)
		if err != nil {
			return 0, err
		}
		return rec.keywordCursor + int(t.BlockOffset), nil
	}
	// blockWhile: condStart is the cursor of the condition expression
	// that immediately precedes the "while" keyword token; scan
	// forward token-by-token (condition expressions are short) until
	// the keyword itself is found.
	cursor := rec.condStart
	for {
		t, err := e.Stream.Decode(cursor)
		if err != nil {
			return 0, err
		}
		if t.Kind == token.KindKeyword {
			if name, ok := parser.CommandNameByCode(t.Code); ok && name == "while" {
				return cursor + int(t.BlockOffset), nil
			}
		}
		next, err := e.Stream.Step(cursor)
		if err != nil {
			return 0, err
		}
		cursor = next
	}
}

// callUser binds argument values into the callee's fixed parameter
// slots and transfers control into its body; see DESIGN.md for why
// this language's lack of recursion lets parameters live at stable
// absolute slot indices instead of a per-call storage frame.
func (e *Engine) callUser(tok token.Token, cur int) (bool, error) {
	if int(tok.Code) >= len(e.Vars.Funcs) {
		return false, fmt.Errorf("internal-error: unknown function index %d", tok.Code)
	}
	desc := e.Vars.Funcs[tok.Code]
	argc := int(tok.ArgCount)
	args := make([]value.Value, argc)
	for i := argc - 1; i >= 0; i-- {
		v, err := e.popValue()
		if err != nil {
			return false, err
		}
		args[i] = v
	}
	for i := 0; i < desc.NumParams; i++ {
		slot := e.Vars.ProgramSlots[desc.ParamBase+i]
		var v value.Value
		switch {
		case i < argc:
			v = args[i]
		case desc.DefaultValues != nil:
			if dv, ok := desc.DefaultValues[i]; ok {
				v = dv
			} else {
				return false, fmt.Errorf("function-arg-count-wrong: %s: missing argument %d", desc.Name, i+1)
			}
		default:
			return false, fmt.Errorf("function-arg-count-wrong: %s: missing argument %d", desc.Name, i+1)
		}
		if err := e.Vars.AssignScalar(slot, false, v); err != nil {
			return false, err
		}
	}
	returnCursor, err := e.Stream.Step(cur)
	if err != nil {
		return false, err
	}
	e.calls = append(e.calls, callRecord{returnCursor: returnCursor, blocksDepth: len(e.blocks)})
	// StartToken is the "function" keyword; the body begins past the
	// header's own separator.
	headerSep, err := e.Stream.Step(desc.StartToken)
	if err != nil {
		return false, err
	}
	bodyStart, err := e.Stream.Step(headerSep)
	if err != nil {
		return false, err
	}
	e.cursor = bodyStart
	e.stmtStart = bodyStart
	return false, nil
}

// forInRange reports whether a for-loop's control variable is still
// within bounds for the given step's sign, coercing long/float as
// arith does.
func forInRange(cur, limit, step value.Value) bool {
	neg := (step.Kind == value.KindFloat && step.Float < 0) || (step.Kind == value.KindLong && step.Long < 0)
	if cur.Kind == value.KindFloat || limit.Kind == value.KindFloat {
		c, l := toFloat(cur), toFloat(limit)
		if neg {
			return c >= l
		}
		return c <= l
	}
	if neg {
		return cur.Long >= limit.Long
	}
	return cur.Long <= limit.Long
}

// addStep adds step to cur, coercing to float if either operand is one.
func addStep(cur, step value.Value) (value.Value, error) {
	if cur.Kind == value.KindFloat || step.Kind == value.KindFloat {
		return value.Float32Val(toFloat(cur) + toFloat(step)), nil
	}
	return value.Long32(cur.Long + step.Long), nil
}

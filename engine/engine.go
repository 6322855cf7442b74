// Package engine implements components G and H: the evaluation engine
// (operand stack, operator dispatch, function call protocol, eval()
// re-entry) and the control-flow/call stack that drives statement
// execution over a token.Stream.
//
// Grounded on the fetch/decode/execute shape of the teacher's
// vm/executor.go (VM.Step / Fetch / Decode / Execute, the
// ExecutionMode/ExecutionState enums), generalized from a fixed 32-bit
// ARM instruction cycle to a variable-length token walk; the
// flow-control/call-stack record shape is grounded on vm/stack_trace.go
// (StackTrace's push/pop/depth tracking), adapted from a raw SP-history
// log to typed block/call records.
package engine

import (
	"fmt"
	"time"

	"github.com/justina-lang/justinavm/breakpoint"
	"github.com/justina-lang/justinavm/housekeeping"
	"github.com/justina-lang/justinavm/ident"
	"github.com/justina-lang/justinavm/parser"
	"github.com/justina-lang/justinavm/token"
	"github.com/justina-lang/justinavm/value"
)

// Mode mirrors the teacher's ExecutionMode: how the engine should pace
// itself between statements (free-run vs single-step debugging).
type Mode int

const (
	ModeRun Mode = iota
	ModeStep
	ModeStepOver
	ModeStepOut
)

// State mirrors the teacher's ExecutionState.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateAtBreakpoint
	StateHalted
	StateError
)

// Host abstracts the hardware/OS-facing built-ins (spec §6 digital/
// analog I/O, timing, stream I/O, file system) behind an interface, the
// same seam the teacher draws around vm.VM.OutputWriter: a freestanding
// interpreter core that a REPL, test, or embedded target each wire up
// differently.
type Host interface {
	Print(s string)
	ReadLine() (string, bool)
	Millis() int64
	Micros() int64
}

// NopHost discards output and never has input ready; the zero-value
// Host used until a frontend wires up a real one.
type NopHost struct{}

func (NopHost) Print(string)          {}
func (NopHost) ReadLine() (string, bool) { return "", false }
func (NopHost) Millis() int64         { return 0 }
func (NopHost) Micros() int64         { return 0 }

// Engine walks one token.Stream (program or immediate area), evaluating
// expressions on an operand stack and executing commands against a
// shared value.Store.
type Engine struct {
	Stream *token.Stream
	Vars   *value.Store
	Acct   *ident.Accounting
	Pool   *parser.ConstPool
	BP     *breakpoint.Table
	Host   Host

	// Debug abstracts the breakpoint-table and program-control commands
	// (setBP, loadProg, clearProg, delete, ...) out to the orchestration
	// layer; nil means those commands are rejected with
	// debugger-not-wired rather than silently dropped.
	Debug Debug

	Mode  Mode
	State State

	// House is the housekeeping monitor consulted at statement
	// boundaries (component I); nil means no host callback is wired up
	// and only the Request*/killRequested/abortRequested methods below
	// can stop execution.
	House *housekeeping.Monitor

	stack  []stackElem
	blocks []blockRecord
	calls  []callRecord

	cursor int

	// stmtStart is the cursor of the first token of the statement
	// currently executing, set whenever a separator finishes; while
	// loops use it to re-evaluate their condition expression on each
	// iteration (see engine/calls.go execWhile/execEnd).
	stmtStart int

	// LastValue is the most recent bare-expression statement's result,
	// also latched into Vars.FIFO; EvalString's callers (eval()
	// re-entry, breakpoint triggers) read it directly instead of
	// relying on operand-stack residue.
	LastValue value.Value

	// LastErrCode/LastErrText back the err() builtin and raiseError/
	// trapErrors/clearError commands (spec §4.I).
	LastErrCode int
	LastErrText string
	trapErrors  bool

	// killRequested/abortRequested/stopRequested are the housekeeping
	// flags of component I, polled between statements. killRequested
	// and abortRequested can also be set directly (RequestKill/
	// RequestAbort, e.g. from a signal handler); stopRequested is only
	// ever set via House.Poll picking up a host-requested suspend.
	killRequested  bool
	abortRequested bool
	stopRequested  bool
}

// NewEngine creates an engine bound to the given token stream, variable
// store, string accounting ledger, and constant pool.
func NewEngine(stream *token.Stream, vars *value.Store, acct *ident.Accounting, pool *parser.ConstPool) *Engine {
	return &Engine{
		Stream: stream,
		Vars:   vars,
		Acct:   acct,
		Pool:   pool,
		Host:   NopHost{},
		State:  StateIdle,
	}
}

// Reset clears all runtime state (operand/block/call stacks, cursor,
// error latch) without touching the token stream or variable store;
// used between a "go" and a fresh "loadProg"/"clearProg".
func (e *Engine) Reset() {
	e.stack = e.stack[:0]
	e.blocks = e.blocks[:0]
	e.calls = e.calls[:0]
	e.cursor = 0
	e.stmtStart = 0
	e.LastValue = value.Value{}
	e.State = StateIdle
	e.LastErrCode = 0
	e.LastErrText = ""
}

// Cursor returns the token-stream offset execution will resume from on
// the next Run call.
func (e *Engine) Cursor() int { return e.cursor }

// RequestAbort and RequestKill implement the housekeeping flags of
// component I: checked at each statement boundary in Run, they stop
// execution without requiring the token walk itself to be interrupted
// mid-expression.
func (e *Engine) RequestAbort() { e.abortRequested = true }
func (e *Engine) RequestKill()  { e.killRequested = true }

// Run executes statements starting at cursor until a statement
// boundary where execution should pause: program end, an unhandled
// error, a hit breakpoint, a single step boundary, or a housekeeping
// stop/kill request.
func (e *Engine) Run(startCursor int) error {
	e.cursor = startCursor
	e.State = StateRunning
	stepBudget := 1
	if e.Mode == ModeRun {
		stepBudget = -1
	}
	for stepBudget != 0 {
		if e.House != nil {
			flags := e.House.Poll(time.Now())
			if flags.Kill {
				e.killRequested = true
			}
			if flags.Abort {
				e.abortRequested = true
			}
			if flags.Stop {
				e.stopRequested = true
			}
		}
		if e.killRequested {
			e.State = StateHalted
			return fmt.Errorf("kill-requested")
		}
		if e.abortRequested {
			e.abortRequested = false
			if e.House != nil {
				e.House.ClearAbort()
			}
			e.State = StateHalted
			return fmt.Errorf("abort-requested")
		}
		if e.stopRequested {
			e.stopRequested = false
			if e.House != nil {
				e.House.ClearStop()
			}
			e.State = StateAtBreakpoint
			return nil
		}

		tok, err := e.Stream.Decode(e.cursor)
		if err != nil {
			e.State = StateError
			return err
		}
		if tok.Kind == token.KindNoToken {
			e.State = StateHalted
			return nil
		}

		next, halt, err := e.step(tok)
		if err != nil {
			e.LastErrCode = 1
			e.LastErrText = err.Error()
			if !e.trapErrors {
				e.State = StateError
				return err
			}
			skip, serr := e.skipToNextStatement(e.cursor)
			if serr != nil {
				e.State = StateError
				return serr
			}
			e.stack = e.stack[:0]
			e.cursor = skip
			continue
		}
		e.cursor = next
		if halt {
			return nil
		}
		if tok.Kind == token.KindSeparator {
			if stepBudget > 0 {
				stepBudget--
			}
		}
	}
	e.State = StateAtBreakpoint
	return nil
}

// step decodes and acts on one token, returning the next cursor and
// whether execution should stop here (breakpoint hit or "go"/loop
// boundary the caller must re-drive).
func (e *Engine) step(tok token.Token) (next int, halt bool, err error) {
	cur := e.cursor
	switch tok.Kind {
	case token.KindConstLong, token.KindConstFloat, token.KindConstString:
		e.push(stackElem{Val: e.Pool.Get(tok.StrHandle)})

	case token.KindGenericName:
		// An unqualified identifier argument (delete, program, clearProg):
		// pushed as a plain string value, never resolved as a variable.
		e.push(stackElem{Val: e.Pool.Get(tok.StrHandle)})

	case token.KindSymbolicConst:
		v, ok := symbolicConstValue(tok.Code)
		if !ok {
			return 0, false, fmt.Errorf("internal-error: unknown symbolic constant code %d", tok.Code)
		}
		e.push(stackElem{Val: v})

	case token.KindVarRef:
		if err := e.pushVarRef(tok); err != nil {
			return 0, false, err
		}

	case token.KindTerminal:
		if err := e.applyOperator(tok.Code); err != nil {
			return 0, false, err
		}

	case token.KindInternalFunc:
		if err := e.callInternal(tok); err != nil {
			return 0, false, err
		}

	case token.KindUserFunc:
		if done, err := e.callUser(tok, cur); err != nil {
			return 0, false, err
		} else if !done {
			// callUser repositioned the cursor to the callee's body.
			return e.cursor, false, nil
		}

	case token.KindKeyword:
		h, err := e.execKeyword(tok, cur)
		if err != nil {
			return 0, false, err
		}
		if h.jumpTo >= 0 {
			return h.jumpTo, h.halt, nil
		}

	case token.KindSeparator:
		n, err := e.Stream.Step(cur)
		if err != nil {
			return 0, false, err
		}
		jumpTo, err := e.endStatement(tok, cur)
		if err != nil {
			return 0, false, err
		}
		if jumpTo >= 0 {
			n = jumpTo
		}
		e.stmtStart = n
		if hit, err := e.checkBreakpoint(cur); err != nil {
			return 0, false, err
		} else if hit {
			return n, true, nil
		}
		return n, false, nil

	default:
		return 0, false, fmt.Errorf("internal-error: unknown token kind %d", tok.Kind)
	}

	n, err := e.Stream.Step(cur)
	if err != nil {
		return 0, false, err
	}
	return n, false, nil
}

// checkBreakpoint consults the breakpoint table for a hit at this
// separator's cursor, evaluating a trigger expression through eval()
// re-entry when the row has one.
func (e *Engine) checkBreakpoint(sepCursor int) (bool, error) {
	if e.BP == nil || e.Mode != ModeRun {
		return false, nil
	}
	row, _ := e.BP.FindByProgramStep(sepCursor)
	if row == nil {
		return false, nil
	}
	return e.BP.Hit(row, func(expr string) (bool, error) {
		v, err := e.EvalString(expr)
		if err != nil {
			return false, err
		}
		return truthy(v), nil
	})
}

// skipToNextStatement scans forward from a mid-statement failure to the
// next separator token, so a trapped error resumes execution cleanly at
// the following statement instead of re-entering a half-evaluated one.
func (e *Engine) skipToNextStatement(from int) (int, error) {
	cursor := from
	for cursor < e.Stream.Len() {
		tok, err := e.Stream.Decode(cursor)
		if err != nil {
			return 0, err
		}
		next, err := e.Stream.Step(cursor)
		if err != nil {
			return 0, err
		}
		if tok.Kind == token.KindSeparator {
			return next, nil
		}
		cursor = next
	}
	return e.Stream.Len(), nil
}

func truthy(v value.Value) bool {
	switch v.Kind {
	case value.KindLong:
		return v.Long != 0
	case value.KindFloat:
		return v.Float != 0
	case value.KindString:
		return !v.IsEmpty()
	default:
		return false
	}
}

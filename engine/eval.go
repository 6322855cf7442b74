package engine

import (
	"fmt"

	"github.com/justina-lang/justinavm/parser"
	"github.com/justina-lang/justinavm/token"
	"github.com/justina-lang/justinavm/value"
)

// endStatement runs at every statement-terminating separator. Most
// statements have already fully consumed their own operands by the
// time their separator is reached (each keyword/expression token
// leaves the stack balanced); the two exceptions handled here are:
//
//   - an elseif branch's condition, which (unlike if/while) follows
//     its own keyword token in the stream rather than preceding it, so
//     the branch decision can only be made once this condition's own
//     separator is reached (see execElseif in engine/calls.go);
//   - an ordinary bare-expression statement (assignment used as a
//     statement, or a function call for its side effect), whose single
//     result value is latched into the last-values FIFO rather than
//     discarded (spec §3 "Last-values FIFO").
func (e *Engine) endStatement(tok token.Token, cur int) (int, error) {
	_ = tok
	if len(e.blocks) > 0 {
		top := &e.blocks[len(e.blocks)-1]
		if top.kind == blockIf && top.awaitingCond {
			top.awaitingCond = false
			cond, err := e.popValue()
			if err != nil {
				return -1, err
			}
			if truthy(cond) {
				top.resolved = true
				return -1, nil
			}
			return top.jumpIfFalse, nil
		}
	}

	if len(e.stack) > 0 {
		v, err := e.popValue()
		if err != nil {
			return -1, err
		}
		e.LastValue = v
		e.Vars.FIFO.Push(e.Acct, v)
	}
	return -1, nil
}

// EvalString implements the eval() re-entry mechanism (spec §4.G
// "eval"): it parses expr as a standalone statement sharing this
// engine's variable store and string accounting, runs it to
// completion on a throwaway sub-engine, and returns its result. Used
// both by the eval() built-in and by breakpoint trigger-expression
// evaluation (checkBreakpoint in engine.go).
func (e *Engine) EvalString(expr string) (value.Value, error) {
	p := parser.NewParser(32, e.Vars, e.Acct)
	if err := p.ParseLine(expr+";", 0); err != nil {
		return value.Value{}, fmt.Errorf("eval: %w", err)
	}
	sub := NewEngine(p.Stream, e.Vars, e.Acct, p.Pool)
	sub.Host = e.Host
	if err := sub.Run(0); err != nil {
		return value.Value{}, fmt.Errorf("eval: %w", err)
	}
	return sub.LastValue, nil
}

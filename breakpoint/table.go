package breakpoint

import (
	"fmt"
	"sort"
)

// ErrNotAllowedForLine mirrors result_BP_notAllowedForSourceLine.
var ErrNotAllowedForLine = fmt.Errorf("BP-not-allowed-for-source-line")

// ErrStatementNonExecutable mirrors result_BP_statementIsNonExecutable.
var ErrStatementNonExecutable = fmt.Errorf("statement-is-non-executable")

// ErrWasNotSet mirrors result_BP_wasNotSet.
var ErrWasNotSet = fmt.Errorf("BP-was-not-set")

// ErrMaxEntriesReached mirrors result_BP_maxBPentriesReached.
var ErrMaxEntriesReached = fmt.Errorf("BP-max-entries-reached")

// Row is one breakpoint table entry, grounded on
// Breakpoints::BreakpointData.
type Row struct {
	Line        int
	Enabled     bool
	ProgramStep int // token-stream cursor of the statement's first token

	HasView bool
	View    string

	HasHitCount bool
	HitCount    int
	HitCounter  int

	HasTrigger bool
	Trigger    string
}

// Table is the sorted-by-line set of active breakpoints, plus the
// "draft" status flag of spec §4.F ("After clearing the program but
// keeping breakpoints, the table persists but its token pointers are
// stale").
type Table struct {
	Rows      []Row
	On        bool
	IsDraft   bool
	MaxCount  int
	lineRange *LineRangeTable
}

// NewTable creates an empty breakpoint table bound to lineRange for
// line<->sequence-index translation.
func NewTable(lineRange *LineRangeTable, maxCount int) *Table {
	return &Table{On: true, lineRange: lineRange, MaxCount: maxCount}
}

// findByLine returns the row index for line, or -1.
func (t *Table) findByLine(line int) int {
	for i := range t.Rows {
		if t.Rows[i].Line == line {
			return i
		}
	}
	return -1
}

// IsExecutableLookup is supplied by the caller (the interp layer) to
// check a command's skip-during-exec restriction without this package
// depending on the parser's command table.
type IsExecutableLookup func(programStep int) (bool, error)

// StatementLocator finds the sequenced statement start for a line,
// scanning the program area for the nth BP-allowed/BP-set separator,
// mirroring Breakpoints::progMem_getSetClearBP.
type StatementLocator func(lineSeqIndex int) (programStep int, err error)

// Set implements spec §4.F "Setting a breakpoint". locate finds the
// program-step cursor for the computed line sequence index; isExec
// rejects non-executable statements.
func (t *Table) Set(line int, view string, hasView bool, hitCount int, trigger string, hasTrigger bool,
	locate StatementLocator, isExec IsExecutableLookup) error {

	var programStep int
	if !t.IsDraft {
		seq := t.lineRange.LineToIndex(line)
		if seq == -1 {
			return ErrNotAllowedForLine
		}
		step, err := locate(seq)
		if err != nil {
			return err
		}
		if isExec != nil {
			ok, err := isExec(step)
			if err != nil {
				return err
			}
			if !ok {
				return ErrStatementNonExecutable
			}
		}
		programStep = step
	}

	idx := t.findByLine(line)
	wasSet := idx != -1
	extraAttribCount := 0
	if hasView {
		extraAttribCount = 1
	}
	if hitCount > 0 || hasTrigger {
		extraAttribCount = 2
	}

	if idx == -1 {
		if len(t.Rows) >= t.MaxCount && t.MaxCount > 0 {
			return ErrMaxEntriesReached
		}
		t.Rows = append(t.Rows, Row{Line: line, Enabled: true, ProgramStep: programStep})
		idx = len(t.Rows) - 1
	} else if !t.IsDraft {
		t.Rows[idx].ProgramStep = programStep
	}

	// re-setting an existing breakpoint keeps an attribute it already
	// had unless the caller explicitly supplied a new value for it.
	keepView := wasSet && extraAttribCount == 0
	keepCondition := wasSet && extraAttribCount <= 1

	if !keepView {
		t.Rows[idx].HasView = hasView
		t.Rows[idx].View = view
	}
	if !keepCondition {
		t.Rows[idx].HasHitCount = hitCount > 0
		t.Rows[idx].HitCount = hitCount
		t.Rows[idx].HitCounter = 0
		t.Rows[idx].HasTrigger = hasTrigger
		t.Rows[idx].Trigger = trigger
	}

	sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i].Line < t.Rows[j].Line })
	return nil
}

// Clear implements "Clearing a breakpoint": removes the table row for
// line (sorted order preserved).
func (t *Table) Clear(line int) error {
	idx := t.findByLine(line)
	if idx == -1 {
		return nil // matches maintainBP: clearing an unset BP is a no-op
	}
	t.Rows = append(t.Rows[:idx], t.Rows[idx+1:]...)
	return nil
}

// Enable/Disable toggle a breakpoint already set for line.
func (t *Table) Enable(line int) error  { return t.setEnabled(line, true) }
func (t *Table) Disable(line int) error { return t.setEnabled(line, false) }

func (t *Table) setEnabled(line int, enabled bool) error {
	idx := t.findByLine(line)
	if idx == -1 {
		return ErrWasNotSet
	}
	t.Rows[idx].Enabled = enabled
	return nil
}

// Move relocates a breakpoint's attributes from one line to another
// (the "moveBP" supplemented feature of SPEC_FULL.md §4).
func (t *Table) Move(from, to int) error {
	idx := t.findByLine(from)
	if idx == -1 {
		return ErrWasNotSet
	}
	row := t.Rows[idx]
	row.Line = to
	t.Rows = append(t.Rows[:idx], t.Rows[idx+1:]...)
	if existing := t.findByLine(to); existing != -1 {
		t.Rows[existing] = row
	} else {
		t.Rows = append(t.Rows, row)
	}
	sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i].Line < t.Rows[j].Line })
	return nil
}

// FindByProgramStep finds the row matching a program-step cursor, for
// the executor's runtime-hit lookup.
func (t *Table) FindByProgramStep(step int) (*Row, int) {
	for i := range t.Rows {
		if t.Rows[i].ProgramStep == step {
			return &t.Rows[i], i
		}
	}
	return nil, -1
}

// Hit evaluates whether a breakpoint fires, per spec §4.F "Runtime
// hit": disabled rows never fire; a trigger expression must evaluate
// truthy; else a hit-count must reach N; else the row always fires.
// evalTrigger is supplied by the evaluation engine.
func (t *Table) Hit(row *Row, evalTrigger func(expr string) (bool, error)) (bool, error) {
	if !row.Enabled || !t.On {
		return false, nil
	}
	if row.HasTrigger {
		ok, err := evalTrigger(row.Trigger)
		if err != nil {
			return false, err
		}
		return ok, nil
	}
	if row.HasHitCount {
		row.HitCounter++
		if row.HitCounter >= row.HitCount {
			row.HitCounter = 0
			return true, nil
		}
		return false, nil
	}
	return true, nil
}

// MarkDraft puts the table into draft status (program cleared, BPs
// kept but their token pointers are stale).
func (t *Table) MarkDraft() { t.IsDraft = true }

// Rearm clears draft status after a fresh parse has re-established
// program-step pointers for every row (the interp layer re-locates
// each row's statement via locate and calls this once done).
func (t *Table) Rearm() { t.IsDraft = false }

package service

import "github.com/justina-lang/justinavm/engine"

// ExecutionState represents the current state of an interpreter session,
// adapted from the teacher's vm.ExecutionState/service.ExecutionState
// pair to engine.Engine's own State enum.
type ExecutionState string

const (
	StateIdle       ExecutionState = "idle"
	StateRunning    ExecutionState = "running"
	StateBreakpoint ExecutionState = "breakpoint"
	StateHalted     ExecutionState = "halted"
	StateError      ExecutionState = "error"
)

// EngineStateToExecution converts engine.State to service.ExecutionState,
// the direct replacement for the teacher's VMStateToExecution.
func EngineStateToExecution(state engine.State) ExecutionState {
	switch state {
	case engine.StateIdle:
		return StateIdle
	case engine.StateRunning:
		return StateRunning
	case engine.StateAtBreakpoint:
		return StateBreakpoint
	case engine.StateHalted:
		return StateHalted
	case engine.StateError:
		return StateError
	default:
		return StateHalted
	}
}

// BreakpointInfo is the frontend-facing view of one breakpoint row,
// the direct replacement for the teacher's address-keyed BreakpointInfo.
type BreakpointInfo struct {
	Line        int    `json:"line"`
	Enabled     bool   `json:"enabled"`
	View        string `json:"view,omitempty"`
	HasView     bool   `json:"hasView"`
	Trigger     string `json:"trigger,omitempty"`
	HasTrigger  bool   `json:"hasTrigger"`
	HitCount    int    `json:"hitCount,omitempty"`
	HasHitCount bool   `json:"hasHitCount"`
	HitCounter  int    `json:"hitCounter,omitempty"`
}

// VariableInfo is the frontend-facing view of one user variable: the
// replacement for the teacher's register/memory inspection surface,
// since this interpreter has named variables rather than a flat
// register file.
type VariableInfo struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

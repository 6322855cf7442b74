package api

import (
	"fmt"
	"net/http"

	"github.com/justina-lang/justinavm/service"
)

// handleCreateSession handles POST /api/v1/session
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req SessionCreateRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := s.sessions.CreateSession(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to create session: %v", err))
		return
	}

	response := SessionCreateResponse{
		SessionID: session.ID,
		CreatedAt: session.CreatedAt,
	}

	writeJSON(w, http.StatusCreated, response)
}

// handleListSessions handles GET /api/v1/session
func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids := s.sessions.ListSessions()

	response := map[string]interface{}{
		"sessions": ids,
		"count":    len(ids),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleGetSessionStatus handles GET /api/v1/session/{id}
func (s *Server) handleGetSessionStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	state := session.Service.GetExecutionState()

	response := SessionStatusResponse{
		SessionID: sessionID,
		State:     string(state),
	}

	writeJSON(w, http.StatusOK, response)
}

// handleDestroySession handles DELETE /api/v1/session/{id}
func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request, sessionID string) {
	err := s.sessions.DestroySession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Session destroyed",
	})
}

// handleLoadProgram handles POST /api/v1/session/{id}/load
func (s *Server) handleLoadProgram(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req LoadProgramRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var loadErr error
	switch {
	case req.Source != "":
		loadErr = session.Service.LoadSource(req.Source)
	case req.Path != "":
		loadErr = session.Service.LoadProgram(req.Path)
	default:
		writeError(w, http.StatusBadRequest, "Request must set either source or path")
		return
	}

	if loadErr != nil {
		response := LoadProgramResponse{
			Success: false,
			Errors:  []string{loadErr.Error()},
		}
		writeJSON(w, http.StatusBadRequest, response)
		return
	}

	writeJSON(w, http.StatusOK, LoadProgramResponse{Success: true})
}

// handleRun handles POST /api/v1/session/{id}/run
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	go func() {
		_ = session.Service.Run()
		s.broadcastStateChange(sessionID, session.Service.GetExecutionState())
	}()

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Program started",
	})
}

// handlePause handles POST /api/v1/session/{id}/pause
func (s *Server) handlePause(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	session.Service.Pause()

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Pause requested",
	})
}

// handleStep handles POST /api/v1/session/{id}/step(-over|-out)
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.runStep(w, r, sessionID, (*service.DebuggerService).Step)
}

func (s *Server) handleStepOver(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.runStep(w, r, sessionID, (*service.DebuggerService).StepOver)
}

func (s *Server) handleStepOut(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.runStep(w, r, sessionID, (*service.DebuggerService).StepOut)
}

func (s *Server) runStep(w http.ResponseWriter, r *http.Request, sessionID string, step func(*service.DebuggerService) error) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if stepErr := step(session.Service); stepErr != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Step failed: %v", stepErr))
		return
	}

	state := session.Service.GetExecutionState()
	s.broadcastStateChange(sessionID, state)

	writeJSON(w, http.StatusOK, SessionStatusResponse{SessionID: sessionID, State: string(state)})
}

// handleReset handles POST /api/v1/session/{id}/reset
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	if err := session.Service.Reset(); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Reset failed: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, SuccessResponse{
		Success: true,
		Message: "Interpreter reset",
	})
}

// handleGetVariables handles GET /api/v1/session/{id}/variables
func (s *Server) handleGetVariables(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	vars := session.Service.GetVariables()
	views := make([]VariableView, len(vars))
	for i, v := range vars {
		views[i] = VariableView{Name: v.Name, Kind: v.Kind, Value: v.Value}
	}

	writeJSON(w, http.StatusOK, VariablesResponse{Variables: views})
}

// handleBreakpoint handles POST/DELETE /api/v1/session/{id}/breakpoint
func (s *Server) handleBreakpoint(w http.ResponseWriter, r *http.Request, sessionID string) {
	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req BreakpointRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch r.Method {
	case http.MethodPost:
		if err := session.Service.SetBreakpoint(req.Line, req.View, req.HasView, req.HitCount, req.Trigger, req.HasTrigger); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to set breakpoint: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint set"})

	case http.MethodDelete:
		if err := session.Service.ClearBreakpoint(req.Line); err != nil {
			writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to clear breakpoint: %v", err))
			return
		}
		writeJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: "Breakpoint cleared"})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleListBreakpoints handles GET /api/v1/session/{id}/breakpoints
func (s *Server) handleListBreakpoints(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	rows := session.Service.ListBreakpoints()
	views := make([]BreakpointView, len(rows))
	for i, r := range rows {
		views[i] = BreakpointView{
			Line: r.Line, Enabled: r.Enabled,
			View: r.View, HasView: r.HasView,
			Trigger: r.Trigger, HasTrigger: r.HasTrigger,
			HitCount: r.HitCount, HasHitCount: r.HasHitCount,
			HitCounter: r.HitCounter,
		}
	}

	writeJSON(w, http.StatusOK, BreakpointsResponse{Breakpoints: views})
}

// handleExecute handles POST /api/v1/session/{id}/execute: runs one line
// of immediate-mode input, the HTTP counterpart of a debugger REPL line.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	var req ExecuteRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	output, execErr := session.Service.ExecuteLine(req.Line)
	if execErr != nil {
		writeError(w, http.StatusBadRequest, execErr.Error())
		return
	}

	writeJSON(w, http.StatusOK, ExecuteResponse{Output: output})
}

// handleGetOutput handles GET /api/v1/session/{id}/output: drains
// buffered program output since it was last fetched.
func (s *Server) handleGetOutput(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, err := s.sessions.GetSession(sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, OutputResponse{Output: session.Service.GetOutput()})
}

// broadcastStateChange broadcasts an execution-state transition to
// WebSocket clients, the replacement for the teacher's register/flag
// snapshot broadcast (this interpreter has no flat register file to
// include in the payload).
func (s *Server) broadcastStateChange(sessionID string, state service.ExecutionState) {
	if s.broadcaster == nil {
		return
	}
	s.broadcaster.BroadcastState(sessionID, map[string]interface{}{
		"status": string(state),
	})
}

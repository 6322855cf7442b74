package api

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"sync"
	"time"

	"github.com/justina-lang/justinavm/housekeeping"
	"github.com/justina-lang/justinavm/interp"
	"github.com/justina-lang/justinavm/loader"
	"github.com/justina-lang/justinavm/service"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionAlreadyExists is returned when trying to create a session with an existing ID
	ErrSessionAlreadyExists = errors.New("session already exists")
)

// Session represents an active emulator session
type Session struct {
	ID        string
	Service   *service.DebuggerService
	CreatedAt time.Time
	TempDir   string // Temporary directory for filesystem operations (cleaned up on destroy)
}

// SessionManager manages multiple emulator sessions
type SessionManager struct {
	sessions    map[string]*Session
	broadcaster *Broadcaster
	mu          sync.RWMutex
}

// NewSessionManager creates a new session manager
func NewSessionManager(broadcaster *Broadcaster) *SessionManager {
	return &SessionManager{
		sessions:    make(map[string]*Session),
		broadcaster: broadcaster,
	}
}

// CreateSession creates a new session with a unique ID
func (sm *SessionManager) CreateSession(opts SessionCreateRequest) (*Session, error) {
	// Generate unique session ID
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, err
	}

	// Configure filesystem root for security and file operations.
	// If FSRoot is provided, use it; otherwise create a temporary directory
	// for this session's loadProg/file built-ins.
	var tempDir, fsRoot string
	if opts.FSRoot != "" {
		fsRoot = opts.FSRoot
	} else {
		var err error
		tempDir, err = os.MkdirTemp("", "justinavm-session-*")
		if err != nil {
			return nil, err
		}
		fsRoot = tempDir
	}
	root, err := loader.NewRoot(fsRoot)
	if err != nil {
		return nil, err
	}

	limits := interp.DefaultLimits
	if opts.StreamCapacity > 0 {
		limits.StreamCapacity = opts.StreamCapacity
	}
	if opts.MaxBreakpoints > 0 {
		limits.MaxBreakpoints = opts.MaxBreakpoints
	}
	if opts.FIFOSize > 0 {
		limits.FIFOSize = opts.FIFOSize
	}

	// Set up output broadcasting if a broadcaster is available.
	var onOutput func(string)
	if sm.broadcaster != nil {
		outputWriter := NewEventWriter(sm.broadcaster, sessionID, "stdout")
		onOutput = func(s string) { _, _ = outputWriter.Write([]byte(s)) }
		debugLog("Session %s: EventWriter set up for stdout broadcasting", sessionID)
	} else {
		debugLog("Session %s: WARNING - no broadcaster available for output", sessionID)
	}

	house := housekeeping.New()
	debugService := service.NewDebuggerService(limits, house, onOutput)
	debugService.Interp().Root = root

	// Broadcast execution-state transitions the same way the output
	// writer broadcasts program output, polled on demand by callers
	// rather than pushed from inside the engine (engine.Engine has no
	// state-change hook; the server layer polls GetExecutionState after
	// each action instead).

	session := &Session{
		ID:        sessionID,
		Service:   debugService,
		CreatedAt: time.Now(),
		TempDir:   tempDir,
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[sessionID]; exists {
		return nil, ErrSessionAlreadyExists
	}

	sm.sessions[sessionID] = session
	return session, nil
}

// GetSession retrieves a session by ID
func (sm *SessionManager) GetSession(sessionID string) (*Session, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// DestroySession removes a session by ID
func (sm *SessionManager) DestroySession(sessionID string) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return ErrSessionNotFound
	}

	// Clean up session resources
	if session.Service != nil {
		// The service will clean up its own resources
		session.Service = nil
	}

	// Clean up temporary directory if it was created
	if session.TempDir != "" {
		os.RemoveAll(session.TempDir)
	}

	delete(sm.sessions, sessionID)
	return nil
}

// ListSessions returns a list of all session IDs
func (sm *SessionManager) ListSessions() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	ids := make([]string, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Count returns the number of active sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return len(sm.sessions)
}

// generateSessionID generates a unique session ID
func generateSessionID() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

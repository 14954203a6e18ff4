package commands

import (
	"sync"
	"time"

	"github.com/rpmontada/equinos/internal/service/flow"
)

// Session holds the pending chat flows of one sender.
type Session struct {
	Delete   *flow.ConfirmFlow
	Schedule *flow.RepeatFlow

	refs int
}

func (s *Session) idle() bool {
	return s.refs == 0 && s.Delete.State() == flow.ConfirmIdle && s.Schedule.State() == flow.RepeatIdle
}

// SessionManager handles per-sender conversation state. A sender is tracked
// only while a command is running or one of its flows is not idle.
type SessionManager struct {
	sessions     map[string]*Session
	mu           sync.Mutex
	scheduler    flow.Scheduler
	dismissAfter time.Duration
	promptExpiry time.Duration
	onDismiss    func(sender, target string)
}

// NewSessionManager creates a new session manager. onDismiss may be nil.
func NewSessionManager(scheduler flow.Scheduler, dismissAfter, promptExpiry time.Duration, onDismiss func(sender, target string)) *SessionManager {
	return &SessionManager{
		sessions:     make(map[string]*Session),
		scheduler:    scheduler,
		dismissAfter: dismissAfter,
		promptExpiry: promptExpiry,
		onDismiss:    onDismiss,
	}
}

// acquire returns the sender's session, creating it on first use. Every
// acquire must be paired with a release.
func (sm *SessionManager) acquire(sender string) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[sender]; ok {
		s.refs++
		return s
	}

	// Flows that went idle on a timer are only noticed here.
	sm.pruneLocked()

	var dismissed func(string)
	if sm.onDismiss != nil {
		dismissed = func(target string) { sm.onDismiss(sender, target) }
	}
	s := &Session{
		Delete:   flow.NewConfirmFlow(sm.scheduler, sm.dismissAfter, dismissed),
		Schedule: flow.NewRepeatFlow(sm.scheduler, sm.promptExpiry),
		refs:     1,
	}
	sm.sessions[sender] = s
	return s
}

// release drops the session once no command holds it and both flows are idle.
func (sm *SessionManager) release(sender string, s *Session) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s.refs--
	if s.idle() && sm.sessions[sender] == s {
		delete(sm.sessions, sender)
	}
}

func (sm *SessionManager) pruneLocked() {
	for sender, s := range sm.sessions {
		if s.idle() {
			delete(sm.sessions, sender)
		}
	}
}

func (sm *SessionManager) size() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

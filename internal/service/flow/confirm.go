package flow

import (
	"context"
	"sync"
	"time"
)

// ConfirmState is a step of the confirm-then-act flow.
type ConfirmState string

const (
	ConfirmIdle      ConfirmState = "idle"
	ConfirmPending   ConfirmState = "confirming"
	ConfirmCommitted ConfirmState = "committed"
)

const defaultDismiss = 3 * time.Second

// Action is the side effect a flow commits.
type Action func(ctx context.Context) error

// ConfirmFlow asks for confirmation before running an action, then shows the
// committed result until it is dismissed automatically.
type ConfirmFlow struct {
	mu        sync.Mutex
	state     ConfirmState
	target    string
	running   bool
	gen       uint64
	scheduler Scheduler
	dismiss   time.Duration
	timer     Timer
	onDismiss func(target string)
}

// NewConfirmFlow builds an idle flow. A non-positive dismiss delay uses three seconds.
func NewConfirmFlow(scheduler Scheduler, dismiss time.Duration, onDismiss func(target string)) *ConfirmFlow {
	if scheduler == nil {
		scheduler = RealScheduler{}
	}
	if dismiss <= 0 {
		dismiss = defaultDismiss
	}
	return &ConfirmFlow{state: ConfirmIdle, scheduler: scheduler, dismiss: dismiss, onDismiss: onDismiss}
}

// State returns the current step.
func (f *ConfirmFlow) State() ConfirmState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Target returns the item awaiting or holding confirmation.
func (f *ConfirmFlow) Target() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.target
}

// Request moves idle to confirming for the given target. A committed flow
// still waiting for its dismissal is dismissed first.
func (f *ConfirmFlow) Request(target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case ConfirmPending:
		return ErrFlowBusy
	case ConfirmCommitted:
		f.stopTimer()
	}
	f.state = ConfirmPending
	f.target = target
	return nil
}

// Confirm runs the action. On success the flow is committed and returns to
// idle after the dismiss delay; on failure it returns to idle at once.
func (f *ConfirmFlow) Confirm(ctx context.Context, action Action) error {
	f.mu.Lock()
	if f.state != ConfirmPending {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if f.running {
		f.mu.Unlock()
		return ErrFlowBusy
	}
	f.running = true
	target := f.target
	f.mu.Unlock()

	err := action(ctx)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.running = false
	if err != nil {
		f.reset()
		return err
	}
	f.state = ConfirmCommitted
	f.gen++
	gen := f.gen
	f.timer = f.scheduler.AfterFunc(f.dismiss, func() { f.autoDismiss(gen, target) })
	return nil
}

// Cancel abandons a pending confirmation.
func (f *ConfirmFlow) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != ConfirmPending {
		return ErrInvalidTransition
	}
	if f.running {
		return ErrFlowBusy
	}
	f.reset()
	return nil
}

func (f *ConfirmFlow) autoDismiss(gen uint64, target string) {
	f.mu.Lock()
	if f.state != ConfirmCommitted || f.gen != gen {
		f.mu.Unlock()
		return
	}
	f.reset()
	onDismiss := f.onDismiss
	f.mu.Unlock()

	if onDismiss != nil {
		onDismiss(target)
	}
}

func (f *ConfirmFlow) reset() {
	f.stopTimer()
	f.state = ConfirmIdle
	f.target = ""
}

func (f *ConfirmFlow) stopTimer() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

package flow

import (
	"context"
	"sync"
	"time"
)

// RepeatState is a step of the create-then-offer-another flow.
type RepeatState string

const (
	RepeatIdle      RepeatState = "idle"
	RepeatEditing   RepeatState = "editing"
	RepeatPrompting RepeatState = "prompting"
)

const defaultPromptExpiry = 2 * time.Minute

// RepeatFlow saves an item and then asks whether to add another. An
// unanswered prompt expires back to idle.
type RepeatFlow struct {
	mu        sync.Mutex
	state     RepeatState
	saved     int
	scheduler Scheduler
	expiry    time.Duration
	timer     Timer
	gen       uint64
}

// NewRepeatFlow builds an idle flow. A non-positive expiry uses two minutes.
func NewRepeatFlow(scheduler Scheduler, expiry time.Duration) *RepeatFlow {
	if scheduler == nil {
		scheduler = RealScheduler{}
	}
	if expiry <= 0 {
		expiry = defaultPromptExpiry
	}
	return &RepeatFlow{state: RepeatIdle, scheduler: scheduler, expiry: expiry}
}

// State returns the current step.
func (f *RepeatFlow) State() RepeatState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Saved counts the items created since the flow left idle.
func (f *RepeatFlow) Saved() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}

// Start opens the form.
func (f *RepeatFlow) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == RepeatPrompting {
		return ErrFlowBusy
	}
	if f.state == RepeatIdle {
		f.saved = 0
	}
	f.state = RepeatEditing
	return nil
}

// Save runs the create action from the editing step. Success moves to the
// prompt; failure keeps the form open.
func (f *RepeatFlow) Save(ctx context.Context, action Action) error {
	f.mu.Lock()
	if f.state != RepeatEditing {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	f.mu.Unlock()

	if err := action(ctx); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != RepeatEditing {
		return ErrInvalidTransition
	}
	f.saved++
	f.state = RepeatPrompting
	f.gen++
	gen := f.gen
	f.timer = f.scheduler.AfterFunc(f.expiry, func() { f.expire(gen) })
	return nil
}

// Answer resolves the prompt: true reopens the form, false closes the flow.
func (f *RepeatFlow) Answer(another bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != RepeatPrompting {
		return ErrInvalidTransition
	}
	f.stopTimer()
	if another {
		f.state = RepeatEditing
		return nil
	}
	f.state = RepeatIdle
	return nil
}

// Cancel closes the flow from any step.
func (f *RepeatFlow) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimer()
	f.state = RepeatIdle
}

func (f *RepeatFlow) expire(gen uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != RepeatPrompting || f.gen != gen {
		return
	}
	f.timer = nil
	f.state = RepeatIdle
}

func (f *RepeatFlow) stopTimer() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

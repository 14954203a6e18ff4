// Package flow holds the small multi-step conversation state machines used by
// the chat channel: confirm-then-act and create-then-offer-another. Timed
// transitions go through a Scheduler so tests can drive virtual time.
package flow

import (
	"errors"
	"time"
)

// ErrFlowBusy is returned when a flow is asked to start while another step is pending.
var ErrFlowBusy = errors.New("flow already in progress")

// ErrInvalidTransition is returned for an event the current state does not accept.
var ErrInvalidTransition = errors.New("invalid flow transition")

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs a callback after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealScheduler schedules on the wall clock.
type RealScheduler struct{}

// AfterFunc wraps time.AfterFunc.
func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

package flow

import (
	"sort"
	"sync"
	"time"
)

// FakeScheduler is a virtual clock for tests. Callbacks run from Advance.
type FakeScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     int
	pending []*fakeTimer
}

type fakeTimer struct {
	owner   *FakeScheduler
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

// NewFakeScheduler starts the virtual clock at zero.
func NewFakeScheduler() *FakeScheduler {
	return &FakeScheduler{}
}

// AfterFunc registers f to run once the clock passes d from now.
func (s *FakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	t := &fakeTimer{owner: s, at: s.now + d, seq: s.seq, fn: f}
	s.pending = append(s.pending, t)
	return t
}

// Advance moves the clock forward and fires every due callback in order.
func (s *FakeScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	var due []*fakeTimer
	kept := s.pending[:0]
	for _, t := range s.pending {
		switch {
		case t.stopped:
		case t.at <= s.now:
			due = append(due, t)
		default:
			kept = append(kept, t)
		}
	}
	s.pending = kept
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	for _, t := range due {
		t.fn()
	}
}

// Pending counts registered callbacks that have neither fired nor been stopped.
func (s *FakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

func (t *fakeTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	if t.stopped {
		return false
	}
	for _, p := range t.owner.pending {
		if p == t {
			t.stopped = true
			return true
		}
	}
	return false
}

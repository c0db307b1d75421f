package runner

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aretw0/colloquy"
)

// raceWindow is how long an input error waits for a late signal.
const raceWindow = 100 * time.Millisecond

// SignalAction is what the runner does with a caught signal.
type SignalAction int

const (
	// SignalNone means no signal was caught since the last Rearm.
	SignalNone SignalAction = iota
	// SignalInterrupt means the signal is raised as a dialogue interrupt.
	SignalInterrupt
	// SignalStop means the run stops with ErrInterrupted.
	SignalStop
)

func (a SignalAction) String() string {
	switch a {
	case SignalInterrupt:
		return "interrupt"
	case SignalStop:
		return "stop"
	default:
		return "none"
	}
}

// SignalManager watches Ctrl+C and SIGTERM while the runner waits for input.
//
// A Ctrl+C on a node that accepts the manager's interrupt event becomes a
// dialogue interrupt, after which the manager is re-armed for the next
// prompt. Any other signal stops the run.
type SignalManager struct {
	event   string
	release func()
	quit    chan struct{}
	once    sync.Once

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	caught os.Signal
}

// NewSignalManager subscribes to Ctrl+C and SIGTERM. event is the interrupt
// the runner raises on Ctrl+C.
func NewSignalManager(event string) *SignalManager {
	src, release := notifySignals()
	return newSignalManager(event, src, release)
}

func notifySignals() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	return ch, func() { signal.Stop(ch) }
}

func newSignalManager(event string, src <-chan os.Signal, release func()) *SignalManager {
	sm := &SignalManager{event: event, release: release, quit: make(chan struct{})}
	sm.ctx, sm.cancel = context.WithCancel(context.Background())
	go sm.watch(src)
	return sm
}

func (sm *SignalManager) watch(src <-chan os.Signal) {
	for {
		select {
		case sig := <-src:
			sm.mu.Lock()
			// The first signal wins until Rearm.
			if sm.caught == nil {
				sm.caught = sig
				sm.cancel()
			}
			sm.mu.Unlock()
		case <-sm.quit:
			return
		}
	}
}

// Context is cancelled once a signal is caught and stays cancelled until Rearm.
func (sm *SignalManager) Context() context.Context {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.ctx
}

// Caught returns the signal caught since the last Rearm, or nil.
func (sm *SignalManager) Caught() os.Signal {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.caught
}

// Decide tells what the caught signal means for a run waiting on pending.
func (sm *SignalManager) Decide(pending colloquy.Suspension) SignalAction {
	switch sig := sm.Caught(); {
	case sig == nil:
		return SignalNone
	case sig == os.Interrupt && sm.accepts(pending):
		return SignalInterrupt
	default:
		return SignalStop
	}
}

func (sm *SignalManager) accepts(pending colloquy.Suspension) bool {
	if pending.Kind != colloquy.SuspendInput || !pending.Interruptible {
		return false
	}
	return pending.InterruptEventID == "" || pending.InterruptEventID == sm.event
}

// Rearm forgets the caught signal so the next prompt can be interrupted again.
func (sm *SignalManager) Rearm() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.caught == nil {
		return
	}
	sm.caught = nil
	sm.ctx, sm.cancel = context.WithCancel(context.Background())
}

// Stop releases the signal subscription and cancels the context.
func (sm *SignalManager) Stop() {
	sm.once.Do(func() {
		sm.release()
		close(sm.quit)
		sm.mu.Lock()
		sm.cancel()
		sm.mu.Unlock()
	})
}

// CheckRace waits briefly to see if a signal follows an input error.
// On some terminals Ctrl+C surfaces as EOF slightly before the signal is delivered.
func (sm *SignalManager) CheckRace() {
	ctx := sm.Context()
	if ctx.Err() != nil {
		return
	}
	t := time.NewTimer(raceWindow)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	case <-sm.quit:
	}
}

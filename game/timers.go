package game

import (
	"sync"
	"time"
)

// Timer is a handle on a scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler starts timers. Callbacks run on their own goroutine and must
// only hand work back to the engine's queue.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
	Every(d time.Duration, f func()) Timer
}

// RealScheduler is backed by the time package.
type RealScheduler struct{}

func (RealScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (RealScheduler) Every(d time.Duration, f func()) Timer {
	t := &repeatingTimer{
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go t.run(f)
	return t
}

type repeatingTimer struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

func (t *repeatingTimer) run(f func()) {
	for {
		select {
		case <-t.stop:
			return
		case <-t.ticker.C:
			f()
		}
	}
}

func (t *repeatingTimer) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.stop)
		stopped = true
	})
	return stopped
}

type timerKind int

const (
	countdownTimer timerKind = iota
	multiplierTimer
	resetTimer
)

func (k timerKind) String() string {
	switch k {
	case countdownTimer:
		return "countdown"
	case multiplierTimer:
		return "multiplier"
	case resetTimer:
		return "reset"
	}
	return "unknown"
}

// scheduledEvent ties a running timer to the token its firings carry, so a
// firing that races a cancel can be recognised and dropped.
type scheduledEvent struct {
	token uint64
	timer Timer
}

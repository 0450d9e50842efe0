package common

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid calls on the same key into a single callback.
// The watcher uses one to fold a burst of send-button clicks on a compose
// surface into a single analysis intent; each Call resets that key's timer.
type Debouncer struct {
	delay  time.Duration
	timers sync.Map // key -> *time.Timer
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Call schedules fn to run after the delay, replacing any pending callback
// for the same key. Only the last fn of a burst runs.
func (d *Debouncer) Call(key string, fn func()) {
	if v, ok := d.timers.Load(key); ok {
		v.(*time.Timer).Stop()
	}
	d.timers.Store(key, time.AfterFunc(d.delay, func() {
		d.timers.Delete(key)
		fn()
	}))
}

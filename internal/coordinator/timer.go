package coordinator

import (
	"sync"
	"time"
)

// timerSet is the deferred-timer facility: at most one cancellable one-shot
// timer per record. Expired records are handed to a single dispatch
// goroutine, so timeouts arrive on the same serialization context no matter
// which runtime timer fired them.
type timerSet struct {
	mu    sync.Mutex
	armed map[*Record]*time.Timer

	fireCh chan *Record
	stopCh chan struct{}
	doneCh chan struct{}
}

func newTimerSet() *timerSet {
	return &timerSet{
		armed:  make(map[*Record]*time.Timer),
		fireCh: make(chan *Record, 16),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// run delivers expired records to fire until the set is closed.
func (t *timerSet) run(fire func(*Record)) {
	defer close(t.doneCh)

	for {
		select {
		case rec := <-t.fireCh:
			fire(rec)
		case <-t.stopCh:
			return
		}
	}
}

// schedule arms a timer for rec, replacing any timer already armed for it.
func (t *timerSet) schedule(rec *Record, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tm, ok := t.armed[rec]; ok {
		tm.Stop()
	}
	t.armed[rec] = time.AfterFunc(d, func() { t.expire(rec) })
}

// cancel disarms rec's timer if one is outstanding.
func (t *timerSet) cancel(rec *Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if tm, ok := t.armed[rec]; ok {
		tm.Stop()
		delete(t.armed, rec)
	}
}

// armedFor reports whether rec currently has a timer outstanding.
func (t *timerSet) armedFor(rec *Record) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.armed[rec]
	return ok
}

func (t *timerSet) expire(rec *Record) {
	t.mu.Lock()
	_, ok := t.armed[rec]
	if ok {
		delete(t.armed, rec)
	}
	t.mu.Unlock()

	// A cancel that raced the runtime timer wins.
	if !ok {
		return
	}

	select {
	case t.fireCh <- rec:
	case <-t.stopCh:
	}
}

// close stops the dispatch goroutine and disarms everything outstanding.
func (t *timerSet) close() {
	close(t.stopCh)
	<-t.doneCh

	t.mu.Lock()
	defer t.mu.Unlock()
	for rec, tm := range t.armed {
		tm.Stop()
		delete(t.armed, rec)
	}
}

// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package rootcoord

import (
	"sync"
	"time"
)

// DefaultKeepAliveInterval is how long a controller's keep-alive may go
// missing before it's counted as a miss.
const DefaultKeepAliveInterval = 6 * time.Second

// DefaultKeepAliveMisses is how many consecutive missed windows declare a
// controller dead.
const DefaultKeepAliveMisses = 1

// DefaultRootHeartbeat is how often the coordinator sends its own
// outbound heartbeat to every controller.
const DefaultRootHeartbeat = 30 * time.Second

// LivenessTracker declares a controller dead after it misses maxMisses
// consecutive keep-alive windows of interval duration.
type LivenessTracker struct {
	mu        sync.Mutex
	interval  time.Duration
	maxMisses int
	timers    map[string]*time.Timer
	misses    map[string]int

	// OnDead is called (without the tracker's lock held) once a
	// controller crosses maxMisses consecutive misses.
	OnDead func(cid string)
}

// NewLivenessTracker returns a LivenessTracker using interval and
// maxMisses; maxMisses below 1 is treated as 1.
func NewLivenessTracker(interval time.Duration, maxMisses int) *LivenessTracker {
	if maxMisses < 1 {
		maxMisses = 1
	}
	return &LivenessTracker{
		interval:  interval,
		maxMisses: maxMisses,
		timers:    make(map[string]*time.Timer),
		misses:    make(map[string]int),
	}
}

// Touch records a keep-alive from cid, clearing its miss count and
// (re)arming its expiry timer.
func (l *LivenessTracker) Touch(cid string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.misses[cid] = 0
	if t, ok := l.timers[cid]; ok {
		t.Stop()
	}
	l.timers[cid] = time.AfterFunc(l.interval, func() { l.missed(cid) })
}

func (l *LivenessTracker) missed(cid string) {
	l.mu.Lock()
	if _, tracked := l.timers[cid]; !tracked {
		l.mu.Unlock()
		return
	}
	l.misses[cid]++
	dead := l.misses[cid] >= l.maxMisses
	if dead {
		delete(l.misses, cid)
		delete(l.timers, cid)
	} else {
		l.timers[cid] = time.AfterFunc(l.interval, func() { l.missed(cid) })
	}
	cb := l.OnDead
	l.mu.Unlock()

	if dead && cb != nil {
		cb(cid)
	}
}

// Forget stops tracking cid without declaring it dead, for an explicit
// disconnect rather than a missed keep-alive.
func (l *LivenessTracker) Forget(cid string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t, ok := l.timers[cid]; ok {
		t.Stop()
	}
	delete(l.timers, cid)
	delete(l.misses, cid)
}

package game

import (
	"container/heap"
	"time"
)

// Timer is a one-shot callback armed on a Scheduler. A timer whose guard
// reports false when it comes due is dropped without running.
type Timer struct {
	due     time.Duration
	seq     uint64
	fn      func()
	guard   func() bool
	stopped bool
	index   int
}

// Stop cancels the timer. Stopping a nil, fired or stopped timer is a no-op.
func (t *Timer) Stop() {
	if t == nil {
		return
	}
	t.stopped = true
}

// Armed reports whether the timer is still waiting to fire.
func (t *Timer) Armed() bool {
	return t != nil && !t.stopped && t.index >= 0
}

type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }
func (q timerQueue) Less(i, j int) bool {
	if q[i].due == q[j].due {
		return q[i].seq < q[j].seq
	}
	return q[i].due < q[j].due
}
func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}
func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}

// Scheduler runs timers on virtual time. Callbacks execute synchronously
// inside Advance, one at a time, in due order; a callback may arm more timers.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	queue timerQueue
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

func (s *Scheduler) Now() time.Duration { return s.now }

// After arms fn to run delay from now. guard may be nil.
func (s *Scheduler) After(delay time.Duration, guard func() bool, fn func()) *Timer {
	if delay < 0 {
		delay = 0
	}
	s.seq++
	t := &Timer{due: s.now + delay, seq: s.seq, fn: fn, guard: guard}
	heap.Push(&s.queue, t)
	return t
}

// Advance moves time forward by dt and fires every timer due by then.
// It returns the number of callbacks run.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt
	fired := 0
	for len(s.queue) > 0 {
		next := s.queue[0]
		if next.due > target {
			break
		}
		heap.Pop(&s.queue)
		if next.due > s.now {
			s.now = next.due
		}
		if next.stopped {
			continue
		}
		next.stopped = true
		if next.guard != nil && !next.guard() {
			continue
		}
		next.fn()
		fired++
	}
	s.now = target
	return fired
}

// Pending returns the number of armed timers.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.queue {
		if !t.stopped {
			n++
		}
	}
	return n
}

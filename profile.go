package dwtile

import (
	"sync"
	"time"
)

// Profiler receives begin/end event markers bracketing each execution
// path so per-operator-category timing stays correct whichever path a
// node takes. BeginEvent returns a handle that must be passed back to
// EndEvent; events may nest but must close in LIFO order per goroutine.
type Profiler interface {
	BeginEvent(tag string) int
	EndEvent(handle int)
}

// NopProfiler discards all events.
type NopProfiler struct{}

func (NopProfiler) BeginEvent(string) int { return 0 }
func (NopProfiler) EndEvent(int)          {}

// TimeProfiler aggregates wall-clock durations per event tag.
type TimeProfiler struct {
	mu     sync.Mutex
	open   []profEvent
	totals map[string]time.Duration
	counts map[string]int
}

type profEvent struct {
	tag   string
	start time.Time
	done  bool
}

// NewTimeProfiler returns an empty aggregating profiler.
func NewTimeProfiler() *TimeProfiler {
	return &TimeProfiler{
		totals: make(map[string]time.Duration),
		counts: make(map[string]int),
	}
}

// BeginEvent opens an event and returns its handle.
func (p *TimeProfiler) BeginEvent(tag string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = append(p.open, profEvent{tag: tag, start: time.Now()})
	return len(p.open) - 1
}

// EndEvent closes the event and folds its duration into the tag total.
func (p *TimeProfiler) EndEvent(handle int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if handle < 0 || handle >= len(p.open) || p.open[handle].done {
		return
	}
	ev := &p.open[handle]
	ev.done = true
	p.totals[ev.tag] += time.Since(ev.start)
	p.counts[ev.tag]++

	for _, e := range p.open {
		if !e.done {
			return
		}
	}
	p.open = p.open[:0]
}

// Total returns the accumulated duration for a tag.
func (p *TimeProfiler) Total(tag string) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totals[tag]
}

// Count returns how many events closed under a tag.
func (p *TimeProfiler) Count(tag string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[tag]
}

// Reset clears all aggregates.
func (p *TimeProfiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = p.open[:0]
	p.totals = make(map[string]time.Duration)
	p.counts = make(map[string]int)
}

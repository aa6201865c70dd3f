package stats

import "sync/atomic"

// Stats counts what the server has seen. Counters are updated from many
// connection goroutines at once, so everything is atomic.
type Stats struct {
	sets     atomic.Int64
	gets     atomic.Int64
	flushes  atomic.Int64
	incrs    atomic.Int64
	decrs    atomic.Int64
	unknowns atomic.Int64
	hits     atomic.Int64
	misses   atomic.Int64
	errors   atomic.Int64
	rejected atomic.Int64
}

func New() *Stats {
	return &Stats{}
}

func (s *Stats) RecordSet() {
	s.sets.Add(1)
}

func (s *Stats) RecordGet(hit bool) {
	s.gets.Add(1)
	if hit {
		s.hits.Add(1)
	} else {
		s.misses.Add(1)
	}
}

func (s *Stats) RecordFlush() {
	s.flushes.Add(1)
}

func (s *Stats) RecordIncr() {
	s.incrs.Add(1)
}

func (s *Stats) RecordDecr() {
	s.decrs.Add(1)
}

func (s *Stats) RecordUnknown() {
	s.unknowns.Add(1)
}

func (s *Stats) RecordError() {
	s.errors.Add(1)
}

// RecordRejected counts submissions that failed because the dispatcher was
// unavailable.
func (s *Stats) RecordRejected() {
	s.rejected.Add(1)
}

func (s *Stats) Snapshot() map[string]int64 {
	return map[string]int64{
		"sets":     s.sets.Load(),
		"gets":     s.gets.Load(),
		"flushes":  s.flushes.Load(),
		"incrs":    s.incrs.Load(),
		"decrs":    s.decrs.Load(),
		"unknowns": s.unknowns.Load(),
		"hits":     s.hits.Load(),
		"misses":   s.misses.Load(),
		"errors":   s.errors.Load(),
		"rejected": s.rejected.Load(),
	}
}

package report

import (
	"sync"
	"time"
)

// Store is an in-memory collection of analysis reports keyed by report ID.
// It is safe for concurrent use; per-key mutation is last-write-wins.
// Records live for the process lifetime: no eviction, no persistence.
type Store struct {
	mu      sync.RWMutex
	reports map[string]AnalysisReport
}

// NewStore returns an empty report store.
func NewStore() *Store {
	return &Store{
		reports: make(map[string]AnalysisReport),
	}
}

// Create registers a fresh PROCESSING report for the given target and date
// spec and returns it. The record is visible to readers immediately.
func (s *Store) Create(target, targetName string, dates DateSpec) AnalysisReport {
	r := AnalysisReport{
		ID:         NewID(),
		Target:     target,
		TargetName: targetName,
		Dates:      dates,
		Status:     StatusProcessing,
		CreatedAt:  time.Now(),
	}
	s.Upsert(r)
	return r
}

// Get returns a snapshot of the report with the given ID.
func (s *Store) Get(id string) (AnalysisReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	return r, ok
}

// Upsert stores the given report, replacing any existing record with the
// same ID.
func (s *Store) Upsert(r AnalysisReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.ID] = r
}

// ListAll returns a snapshot of every stored report keyed by report ID.
func (s *Store) ListAll() map[string]AnalysisReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]AnalysisReport, len(s.reports))
	for id, r := range s.reports {
		out[id] = r
	}
	return out
}

// FindBySingleDate returns the first report (arbitrary order among ties)
// matching the target and single analysis date exactly.
func (s *Store) FindBySingleDate(target, date string) (AnalysisReport, bool) {
	return s.find(func(r AnalysisReport) bool {
		return r.Target == target && !r.Dates.IsRange() && r.Dates.Date == date
	})
}

// FindByRange returns the first report (arbitrary order among ties)
// matching the target and both range bounds exactly.
func (s *Store) FindByRange(target, start, end string) (AnalysisReport, bool) {
	return s.find(func(r AnalysisReport) bool {
		return r.Target == target && r.Dates.IsRange() &&
			r.Dates.Start == start && r.Dates.End == end
	})
}

// FindBySpec dispatches to the matching dedup lookup for the given spec.
func (s *Store) FindBySpec(target string, dates DateSpec) (AnalysisReport, bool) {
	if dates.IsRange() {
		return s.FindByRange(target, dates.Start, dates.End)
	}
	return s.FindBySingleDate(target, dates.Date)
}

func (s *Store) find(match func(AnalysisReport) bool) (AnalysisReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reports {
		if match(r) {
			return r, true
		}
	}
	return AnalysisReport{}, false
}

package report

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestStore_CreateAndGet(t *testing.T) {
	s := NewStore()

	r := s.Create("friends-group", "Friends", SingleDate("2026-08-20"))
	if r.ID == "" {
		t.Fatal("Create returned report without ID")
	}
	if r.Status != StatusProcessing {
		t.Errorf("Status = %q, want %q", r.Status, StatusProcessing)
	}
	if r.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if !r.CompletedAt.IsZero() {
		t.Error("CompletedAt should be zero for a PROCESSING report")
	}

	got, ok := s.Get(r.ID)
	if !ok {
		t.Fatal("Get did not find the created report")
	}
	if got.Target != "friends-group" || got.TargetName != "Friends" {
		t.Errorf("stored report = %+v", got)
	}
}

func TestStore_GetMissing(t *testing.T) {
	s := NewStore()
	if _, ok := s.Get("nope"); ok {
		t.Error("Get returned a report for an unknown ID")
	}
}

func TestStore_UpsertReplaces(t *testing.T) {
	s := NewStore()
	r := s.Create("g", "G", SingleDate("2026-08-20"))

	r.Status = StatusCompleted
	r.FinalReport = "done"
	r.CompletedAt = time.Now()
	s.Upsert(r)

	got, _ := s.Get(r.ID)
	if got.Status != StatusCompleted || got.FinalReport != "done" {
		t.Errorf("upserted report = %+v", got)
	}
	if got.CompletedAt.IsZero() {
		t.Error("CompletedAt lost on upsert")
	}
}

func TestStore_SnapshotIsolation(t *testing.T) {
	s := NewStore()
	r := s.Create("g", "G", SingleDate("2026-08-20"))

	got, _ := s.Get(r.ID)
	got.FinalReport = "mutated by reader"

	again, _ := s.Get(r.ID)
	if again.FinalReport != "" {
		t.Error("reader mutation leaked into the store")
	}
}

func TestStore_ListAll(t *testing.T) {
	s := NewStore()
	a := s.Create("g1", "G1", SingleDate("2026-08-20"))
	b := s.Create("g2", "G2", DateRange("2026-08-01", "2026-08-07"))

	all := s.ListAll()
	if len(all) != 2 {
		t.Fatalf("ListAll returned %d reports, want 2", len(all))
	}
	if _, ok := all[a.ID]; !ok {
		t.Errorf("report %s missing from ListAll", a.ID)
	}
	if _, ok := all[b.ID]; !ok {
		t.Errorf("report %s missing from ListAll", b.ID)
	}
}

func TestStore_FindBySingleDate(t *testing.T) {
	s := NewStore()
	s.Create("g1", "G1", SingleDate("2026-08-20"))
	want := s.Create("g2", "G2", SingleDate("2026-08-20"))
	s.Create("g2", "G2", SingleDate("2026-08-21"))

	got, ok := s.FindBySingleDate("g2", "2026-08-20")
	if !ok {
		t.Fatal("FindBySingleDate found nothing")
	}
	if got.ID != want.ID {
		t.Errorf("found report %s, want %s", got.ID, want.ID)
	}

	if _, ok := s.FindBySingleDate("g3", "2026-08-20"); ok {
		t.Error("FindBySingleDate matched an unknown target")
	}
}

func TestStore_FindByRange(t *testing.T) {
	s := NewStore()
	want := s.Create("g1", "G1", DateRange("2026-08-01", "2026-08-07"))
	s.Create("g1", "G1", DateRange("2026-08-01", "2026-08-14"))
	s.Create("g1", "G1", SingleDate("2026-08-01"))

	got, ok := s.FindByRange("g1", "2026-08-01", "2026-08-07")
	if !ok {
		t.Fatal("FindByRange found nothing")
	}
	if got.ID != want.ID {
		t.Errorf("found report %s, want %s", got.ID, want.ID)
	}

	// Both bounds must match exactly.
	if _, ok := s.FindByRange("g1", "2026-08-02", "2026-08-07"); ok {
		t.Error("FindByRange matched a different start date")
	}
}

func TestStore_FindDoesNotCrossForms(t *testing.T) {
	s := NewStore()
	s.Create("g", "G", SingleDate("2026-08-01"))

	if _, ok := s.FindByRange("g", "2026-08-01", "2026-08-01"); ok {
		t.Error("range lookup matched a single-date report")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			target := fmt.Sprintf("g%d", n)
			r := s.Create(target, target, SingleDate("2026-08-20"))
			r.Status = StatusCompleted
			r.CompletedAt = time.Now()
			s.Upsert(r)
			s.ListAll()
			s.FindBySingleDate(target, "2026-08-20")
		}(i)
	}
	wg.Wait()

	if len(s.ListAll()) != 16 {
		t.Errorf("store has %d reports, want 16", len(s.ListAll()))
	}
}

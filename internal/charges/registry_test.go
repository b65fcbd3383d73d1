package charges

import (
	"testing"
	"time"
)

func TestRegistrySelectReplacesStore(t *testing.T) {
	r := NewRegistry(time.Minute)
	first := NewStore("JOB-1", "2025")
	second := NewStore("JOB-2", "2025")

	r.Select("station-1", first)
	r.Select("station-1", second)

	got, ok := r.Get("station-1")
	if !ok {
		t.Fatal("expected store for station-1")
	}
	if got.JobReference() != "JOB-2" {
		t.Fatalf("expected JOB-2 store, got %s", got.JobReference())
	}
	if r.Len() != 1 {
		t.Fatalf("expected a single workspace, got %d", r.Len())
	}
}

func TestRegistryDrop(t *testing.T) {
	r := NewRegistry(time.Minute)
	r.Select("station-1", NewStore("JOB-1", "2025"))
	r.Drop("station-1")
	if _, ok := r.Get("station-1"); ok {
		t.Fatal("expected store to be gone after drop")
	}
}

func TestRegistryPurgeIdle(t *testing.T) {
	now := time.Now()
	r := NewRegistry(10 * time.Minute)
	r.now = func() time.Time { return now }

	r.Select("idle", NewStore("JOB-1", "2025"))
	r.Select("active", NewStore("JOB-2", "2025"))

	now = now.Add(9 * time.Minute)
	if _, ok := r.Get("active"); !ok {
		t.Fatal("expected active store")
	}

	now = now.Add(2 * time.Minute)
	if purged := r.PurgeIdle(); purged != 1 {
		t.Fatalf("expected 1 purged workspace, got %d", purged)
	}
	if _, ok := r.Get("idle"); ok {
		t.Fatal("idle workspace should be purged")
	}
	if _, ok := r.Get("active"); !ok {
		t.Fatal("recently touched workspace should survive")
	}
}

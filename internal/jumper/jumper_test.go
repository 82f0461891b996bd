package jumper

import (
	"path/filepath"
	"testing"
	"time"
)

func TestRankThreeVisitsWithinAMinute(t *testing.T) {
	db := New("")
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	path := "/home/u/projects"
	for i := 0; i < 3; i++ {
		db.Visit(path, base.Add(time.Duration(i)*20*time.Second))
	}
	r := db.records[path]
	if r.Visits != 3 {
		t.Fatalf("expected 3 visits, got %d", r.Visits)
	}
	rank := db.rankAt(r, base.Add(40*time.Second), rankContext{})
	if rank != 1200 {
		t.Fatalf("expected rank 1200, got %d", rank)
	}
}

func TestDecayTriggersAboveThreshold(t *testing.T) {
	db := New("")
	db.MaxTotal = 1000
	now := time.Now()
	db.records["/a"] = &Record{Path: "/a", Visits: 20, LastVisit: now, FirstVisit: now}
	db.decayIfNeeded(now)
	r := db.records["/a"]
	if r == nil {
		t.Fatal("expected record to survive decay (above min rank)")
	}
	if r.Visits >= 20 {
		t.Fatalf("expected visits to shrink after decay, got %d", r.Visits)
	}
}

func TestDecayPurgesBelowMinRankUnlessKept(t *testing.T) {
	db := New("")
	db.MaxTotal = 40
	db.MinRank = 50
	now := time.Now()
	old := now.Add(-30 * 24 * time.Hour)
	db.records["/low"] = &Record{Path: "/low", Visits: 1, LastVisit: old, FirstVisit: old}
	db.records["/kept"] = &Record{Path: "/kept", Visits: 1, LastVisit: old, FirstVisit: old, Keep: true}
	db.decayIfNeeded(now)
	if _, ok := db.records["/low"]; ok {
		t.Fatal("expected low-rank unkept record to be purged")
	}
	if _, ok := db.records["/kept"]; !ok {
		t.Fatal("expected kept record to survive despite low rank")
	}
}

func TestRankSumBoundedAcrossVisitSequence(t *testing.T) {
	db := New("")
	db.MaxTotal = 1000
	now := time.Now()
	for i := 0; i < 500; i++ {
		db.Visit("/repo/sub"+string(rune('a'+i%20)), now.Add(time.Duration(i)*time.Second))
	}
	total := db.TotalRank(now.Add(500 * time.Second))
	limit := int64(float64(db.MaxTotal) * 1.1)
	if total > limit {
		t.Fatalf("expected total rank <= %d, got %d", limit, total)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "jumpdb")
	db := New(file)
	now := time.Now()
	db.Visit("/a/b", now)
	db.Visit("/a/b", now.Add(time.Minute))
	if err := db.Save(); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(file, false)
	if err != nil {
		t.Fatal(err)
	}
	r, ok := loaded.records["/a/b"]
	if !ok {
		t.Fatal("expected /a/b to survive round trip")
	}
	if r.Visits != 2 {
		t.Fatalf("expected 2 visits after reload, got %d", r.Visits)
	}
}

func TestLoadPurgesMissingPaths(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "jumpdb")
	db := New(file)
	now := time.Now()
	db.Visit(filepath.Join(dir, "nonexistent"), now)
	db.Save()

	loaded, err := Load(file, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.records) != 0 {
		t.Fatalf("expected purge-jumpdb to drop nonexistent paths, got %d", len(loaded.records))
	}
}

package store

import (
	"testing"

	"odds-sync-service/internal/domain"
)

func TestCategorySlotsAreIndependent(t *testing.T) {
	c := NewCategoryCache()
	c.SetCategory(domain.CategoryLive, []domain.Match{{ID: "l1"}})
	c.SetCategory(domain.CategoryToday, []domain.Match{{ID: "t1"}, {ID: "t2"}})

	c.SetCategory(domain.CategoryLive, []domain.Match{{ID: "l2"}})

	if got := c.Category(domain.CategoryLive); len(got) != 1 || got[0].ID != "l2" {
		t.Fatalf("live slot = %+v", got)
	}
	if got := c.Category(domain.CategoryToday); len(got) != 2 {
		t.Fatalf("today slot clobbered: %+v", got)
	}
}

func TestCategoryReturnsCopy(t *testing.T) {
	c := NewCategoryCache()
	c.SetCategory(domain.CategoryEarly, []domain.Match{{ID: "e1"}})

	got := c.Category(domain.CategoryEarly)
	got[0].ID = "mutated"

	if fresh := c.Category(domain.CategoryEarly); fresh[0].ID != "e1" {
		t.Fatalf("caller mutation leaked into cache: %+v", fresh)
	}
}

func TestSnapshotCombinesAllSlots(t *testing.T) {
	c := NewCategoryCache()
	c.SetCategory(domain.CategoryLive, []domain.Match{{ID: "l1"}})
	c.SetCategory(domain.CategoryToday, []domain.Match{{ID: "t1"}})
	c.SetCategory(domain.CategoryEarly, []domain.Match{{ID: "e1"}, {ID: "e2"}})

	snap := c.Snapshot(1700000000000)
	if snap.Timestamp != 1700000000000 {
		t.Fatalf("timestamp = %d", snap.Timestamp)
	}
	if snap.MatchCount != 4 {
		t.Fatalf("match count = %d", snap.MatchCount)
	}
	if snap.Breakdown.Live != 1 || snap.Breakdown.Today != 1 || snap.Breakdown.Early != 2 {
		t.Fatalf("breakdown = %+v", snap.Breakdown)
	}
}

func TestSnapshotOfEmptyCache(t *testing.T) {
	snap := NewCategoryCache().Snapshot(42)
	if snap.MatchCount != 0 || len(snap.Matches) != 0 {
		t.Fatalf("snapshot = %+v", snap)
	}
}

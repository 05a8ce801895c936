package game

import (
	"testing"
	"time"

	"crash-game/models"
)

func entryAt(i int) models.HistoryEntry {
	return models.HistoryEntry{
		Multiplier: FormatMultiplier(1 + float64(i)/100),
		Timestamp:  time.Unix(int64(i), 0),
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	h := NewHistoryLog(20)
	for i := 0; i < 3; i++ {
		h.Add(entryAt(i))
	}
	got := h.Entries()
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, e := range got {
		if want := entryAt(2 - i); e != want {
			t.Fatalf("entry %d = %+v, want %+v", i, e, want)
		}
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistoryLog(20)
	for i := 0; i < 21; i++ {
		h.Add(entryAt(i))
	}
	got := h.Entries()
	if len(got) != 20 {
		t.Fatalf("len = %d, want 20", len(got))
	}
	if got[0] != entryAt(20) {
		t.Fatalf("head = %+v, want 21st entry", got[0])
	}
	if got[19] != entryAt(1) {
		t.Fatalf("tail = %+v, want second entry", got[19])
	}
	for _, e := range got {
		if e == entryAt(0) {
			t.Fatal("first entry was not evicted")
		}
	}
}

func TestHistoryEntriesIsACopy(t *testing.T) {
	h := NewHistoryLog(0)
	h.Add(entryAt(1))
	got := h.Entries()
	got[0].Multiplier = "changed"
	if h.Entries()[0].Multiplier == "changed" {
		t.Fatal("Entries exposed internal storage")
	}
	if h.capacity != DefaultHistorySize {
		t.Fatalf("capacity = %d, want default", h.capacity)
	}
}

package game

import "crash-game/models"

// DefaultHistorySize is how many past results the log keeps.
const DefaultHistorySize = 20

// HistoryLog keeps the most recent round results, newest first.
type HistoryLog struct {
	entries  []models.HistoryEntry
	capacity int
}

func NewHistoryLog(capacity int) *HistoryLog {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &HistoryLog{
		entries:  make([]models.HistoryEntry, 0, capacity),
		capacity: capacity,
	}
}

// Add inserts entry at the front, evicting the oldest entry when full.
func (h *HistoryLog) Add(entry models.HistoryEntry) {
	if len(h.entries) < h.capacity {
		h.entries = append(h.entries, models.HistoryEntry{})
	}
	copy(h.entries[1:], h.entries[:len(h.entries)-1])
	h.entries[0] = entry
}

// Entries returns a copy, newest first.
func (h *HistoryLog) Entries() []models.HistoryEntry {
	out := make([]models.HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func (h *HistoryLog) Len() int {
	return len(h.entries)
}

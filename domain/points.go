package domain

import "time"

// PointsLogEntry is one immutable grant or deduction in a user's ledger.
type PointsLogEntry struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Delta     int       `json:"points"`
	Reason    string    `json:"reason"`
	TaskID    *int64    `json:"task_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SumPoints totals the deltas of entries.
func SumPoints(entries []PointsLogEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Delta
	}
	return total
}

package domain

import "time"

// Snapshot is the reconciler's remembered view of the ledger: the row
// count seen on the previous verified poll. It is the single piece of
// state that distinguishes "rows were deleted" from "the read failed",
// so it must only advance after a successful read (and, when a change
// was detected, successful notification dispatch).
type Snapshot struct {
	RowCount   int
	ObservedAt time.Time
}

package events

import (
	"time"

	inventory "stockdeck/internal/inventory/domain"
)

// SnapshotPublished fires after each completed watch cycle with the full,
// self-consistent row set of that cycle.
type SnapshotPublished struct {
	Seq  int64
	Rows []inventory.RawRow
	At   time.Time
}

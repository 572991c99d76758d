package client

import (
	"encoding/json"
	"errors"
	"log"
	"sync"

	inventory "stockdeck/internal/inventory/domain"
)

// ConnState is the viewer's connectivity status, driven solely by stream
// lifecycle events.
type ConnState string

const (
	StateConnected    ConnState = "connected"
	StateDisconnected ConnState = "disconnected"
	StateError        ConnState = "error"
)

// ErrMalformedPayload is returned when a snapshot payload is not a sequence.
var ErrMalformedPayload = errors.New("client: malformed snapshot payload")

// Reconciler holds a viewer's local copy of the record set and replaces it
// atomically as snapshots arrive.
type Reconciler struct {
	logger *log.Logger

	mu      sync.RWMutex
	records []inventory.InventoryRecord
	state   ConnState
}

// NewReconciler constructs a reconciler with no records and a disconnected
// state.
func NewReconciler(logger *log.Logger) *Reconciler {
	if logger == nil {
		logger = log.Default()
	}
	return &Reconciler{logger: logger, state: StateDisconnected}
}

// Apply validates a snapshot payload and replaces the local record set. The
// payload must be a JSON array of raw rows; anything else is rejected with
// local state untouched. An empty-but-valid snapshot does not clear an
// existing non-empty view, which guards against a transient source-read
// race on the server.
func (rc *Reconciler) Apply(payload []byte) error {
	var rows []inventory.RawRow
	if err := json.Unmarshal(payload, &rows); err != nil {
		rc.logger.Printf("snapshot payload rejected: %v", err)
		return ErrMalformedPayload
	}

	records := inventory.NormalizeAll(rows)

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if len(records) == 0 && len(rc.records) > 0 {
		return nil
	}
	rc.records = records
	return nil
}

// Records returns a copy of the local record set.
func (rc *Reconciler) Records() []inventory.InventoryRecord {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return append([]inventory.InventoryRecord(nil), rc.records...)
}

// State returns the current connectivity status.
func (rc *Reconciler) State() ConnState {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.state
}

func (rc *Reconciler) setState(state ConnState) {
	rc.mu.Lock()
	rc.state = state
	rc.mu.Unlock()
}

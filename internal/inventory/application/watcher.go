package application

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"stockdeck/internal/inventory/application/events"
	inventory "stockdeck/internal/inventory/domain"
	"stockdeck/internal/observability/metrics"
)

// Source loads the current contents of the watched file.
type Source interface {
	ReadAll(ctx context.Context) []inventory.RawRow
	Path() string
}

// Publisher dispatches watch-cycle events.
type Publisher interface {
	Publish(ctx context.Context, event any) error
}

// Watcher polls the watched file and drives one read-and-publish cycle per
// detected change. Polling is deliberate: native filesystem notifications
// are unreliable on network mounts and in containers.
type Watcher struct {
	source   Source
	bus      Publisher
	interval time.Duration
	logger   *log.Logger

	inFlight atomic.Bool
	seq      atomic.Int64

	mu       sync.Mutex
	last     inventory.Snapshot
	haveLast bool
}

// MinPollInterval bounds how aggressively the watcher may poll.
const MinPollInterval = 25 * time.Millisecond

// NewWatcher constructs a watcher instance.
func NewWatcher(source Source, bus Publisher, interval time.Duration, logger *log.Logger) (*Watcher, error) {
	if source == nil {
		return nil, errors.New("watcher: nil source")
	}
	if bus == nil {
		return nil, errors.New("watcher: nil publisher")
	}
	if interval < MinPollInterval {
		interval = MinPollInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Watcher{source: source, bus: bus, interval: interval, logger: logger}, nil
}

type fingerprint struct {
	exists  bool
	modTime time.Time
	size    int64
}

func (w *Watcher) fingerprint() fingerprint {
	info, err := os.Stat(w.source.Path())
	if err != nil {
		return fingerprint{}
	}
	return fingerprint{exists: true, modTime: info.ModTime(), size: info.Size()}
}

// Run polls until ctx is done. One cycle always fires at startup so late
// process starts still establish an initial snapshot.
func (w *Watcher) Run(ctx context.Context) {
	w.Trigger(ctx)
	prev := w.fingerprint()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := w.fingerprint()
			if current == prev {
				continue
			}
			if w.Trigger(ctx) {
				prev = current
			}
		}
	}
}

// Trigger runs one read-and-publish cycle now. Overlapping triggers are
// dropped, not queued; the next poll tick re-evaluates the file. Returns
// whether a cycle actually ran.
func (w *Watcher) Trigger(ctx context.Context) bool {
	if !w.inFlight.CompareAndSwap(false, true) {
		return false
	}
	defer w.inFlight.Store(false)

	start := time.Now()
	rows := w.source.ReadAll(ctx)
	snapshot := inventory.Snapshot{
		Seq:  w.seq.Add(1),
		Rows: rows,
		At:   time.Now().UTC(),
	}

	w.mu.Lock()
	w.last = snapshot
	w.haveLast = true
	w.mu.Unlock()

	result := metrics.ResultSuccess
	err := w.bus.Publish(ctx, events.SnapshotPublished{Seq: snapshot.Seq, Rows: snapshot.Rows, At: snapshot.At})
	if err != nil {
		result = metrics.ResultError
		w.logger.Printf("snapshot publish error: %v", err)
	}
	metrics.ObserveCycle(result, time.Since(start))
	metrics.ObserveSnapshot(len(rows))
	return true
}

// Last returns the latest completed snapshot, if any cycle has finished.
func (w *Watcher) Last() (inventory.Snapshot, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last, w.haveLast
}

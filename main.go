package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"stockdeck/internal/eventing"
	"stockdeck/internal/inventory/application"
	"stockdeck/internal/inventory/application/events"
	inventory "stockdeck/internal/inventory/domain"
	"stockdeck/internal/inventory/infrastructure/xlsx"
	inventoryhttp "stockdeck/internal/inventory/interfaces/http"
	"stockdeck/internal/observability/metrics"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	cfg, err := application.LoadConfig()
	if err != nil {
		logger.Fatalf("config error: %v", err)
	}

	metrics.Init()

	reader, err := xlsx.NewReader(cfg.WatchPath, logger)
	if err != nil {
		logger.Fatalf("reader error: %v", err)
	}

	bus := eventing.NewInMemoryBus()
	broker := inventoryhttp.NewBroker()
	bus.Subscribe(eventing.EventTypeOf[events.SnapshotPublished](), func(_ context.Context, event any) error {
		evt, ok := event.(events.SnapshotPublished)
		if !ok {
			return eventing.ErrInvalidEventType
		}
		rows := evt.Rows
		if rows == nil {
			rows = []inventory.RawRow{}
		}
		payload, err := json.Marshal(rows)
		if err != nil {
			return err
		}
		broker.Publish(payload)
		return nil
	})
	bus.Subscribe(eventing.EventTypeOf[events.SnapshotPublished](), func(_ context.Context, event any) error {
		evt, ok := event.(events.SnapshotPublished)
		if !ok {
			return eventing.ErrInvalidEventType
		}
		logger.Printf("snapshot published: seq=%d rows=%d at=%s", evt.Seq, len(evt.Rows), evt.At.Format(time.RFC3339))
		return nil
	})

	watcher, err := application.NewWatcher(reader, bus, cfg.PollInterval(), logger)
	if err != nil {
		logger.Fatalf("watcher error: %v", err)
	}
	go watcher.Run(context.Background())

	handler, err := inventoryhttp.NewHandler(reader, logger)
	if err != nil {
		logger.Fatalf("inventory handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/inventory", handler)
	mux.Handle("/api/v1/inventory/upload", handler)
	mux.Handle("/api/v1/inventory/template", handler)
	mux.Handle("/api/v1/inventory/report.pdf", handler)
	mux.Handle("/api/v1/inventory/stream", inventoryhttp.NewStreamHandler(broker))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	logger.Printf("watching %s every %s", cfg.WatchPath, cfg.PollInterval())
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

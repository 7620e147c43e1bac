package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/iho/expensetracker/internal/adapter/http/dto"
	"github.com/iho/expensetracker/internal/domain"
)

const defaultKeepAlive = 15 * time.Second

// Subscriber registers callbacks for entry snapshots.
type Subscriber interface {
	Subscribe(ctx context.Context, fn func([]domain.Entry)) (unsubscribe func())
}

// StreamHandler pushes entry snapshots as server-sent events.
type StreamHandler struct {
	feed      Subscriber
	gauge     prometheus.Gauge
	keepAlive time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

// NewStreamHandler creates a new StreamHandler. gauge may be nil.
func NewStreamHandler(feed Subscriber, gauge prometheus.Gauge) *StreamHandler {
	return &StreamHandler{
		feed:      feed,
		gauge:     gauge,
		keepAlive: defaultKeepAlive,
		done:      make(chan struct{}),
	}
}

// Close ends every open stream.
func (h *StreamHandler) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Stream writes one "snapshot" event per feed emission until the client goes away.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported", "")
		return
	}

	ctx := r.Context()

	// Only this goroutine and the subscriber goroutine touch updates; the
	// subscriber drops the stale value before sending so it never blocks.
	updates := make(chan []domain.Entry, 1)
	unsubscribe := h.feed.Subscribe(ctx, func(snapshot []domain.Entry) {
		select {
		case <-updates:
		default:
		}
		updates <- snapshot
	})
	defer unsubscribe()

	if h.gauge != nil {
		h.gauge.Inc()
		defer h.gauge.Dec()
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case snapshot := <-updates:
			data, err := json.Marshal(dto.EntriesFromDomain(snapshot))
			if err != nil {
				zerolog.Ctx(ctx).Error().Err(err).Msg("encode snapshot")
				continue
			}
			if _, err := fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

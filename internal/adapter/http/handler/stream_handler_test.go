package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/iho/expensetracker/internal/domain"
)

type feedStub struct {
	snapshots    [][]domain.Entry
	unsubscribed bool
}

func (f *feedStub) Subscribe(ctx context.Context, fn func([]domain.Entry)) func() {
	for _, s := range f.snapshots {
		fn(s)
	}
	return func() { f.unsubscribed = true }
}

func TestStreamHandler_WritesSnapshotEvent(t *testing.T) {
	feed := &feedStub{snapshots: [][]domain.Entry{
		{domain.Entry{Title: "Salary", Type: domain.TypeIncome}.WithID(1)},
	}}
	gauge := prometheus.NewGauge(prometheus.GaugeOpts{Name: "test_feed_subscribers"})
	handler := NewStreamHandler(feed, gauge)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/entries/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.Stream(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event stream, got %q", ct)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: snapshot\n") || !strings.Contains(body, `"title":"Salary"`) {
		t.Fatalf("unexpected stream body %q", body)
	}
	if strings.Count(body, "event: snapshot") != 1 {
		t.Fatalf("expected exactly one snapshot event, got %q", body)
	}
	if !feed.unsubscribed {
		t.Fatal("expected unsubscribe on disconnect")
	}
	if got := testutil.ToFloat64(gauge); got != 0 {
		t.Fatalf("expected gauge back at 0, got %v", got)
	}
}

func TestStreamHandler_CoalescesPendingSnapshots(t *testing.T) {
	feed := &feedStub{snapshots: [][]domain.Entry{
		{domain.Entry{Title: "old"}.WithID(1)},
		{domain.Entry{Title: "new"}.WithID(1)},
	}}
	handler := NewStreamHandler(feed, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/entries/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	handler.Stream(rec, req)

	body := rec.Body.String()
	if strings.Contains(body, `"title":"old"`) || !strings.Contains(body, `"title":"new"`) {
		t.Fatalf("expected only the latest snapshot, got %q", body)
	}
}

func TestStreamHandler_CloseEndsStreams(t *testing.T) {
	handler := NewStreamHandler(&feedStub{}, nil)
	handler.Close()
	handler.Close()

	req := httptest.NewRequest(http.MethodGet, "/entries/stream", nil)
	rec := httptest.NewRecorder()

	finished := make(chan struct{})
	go func() {
		handler.Stream(rec, req)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("stream did not end after Close")
	}
}

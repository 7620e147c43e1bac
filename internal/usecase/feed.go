package usecase

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/iho/expensetracker/internal/domain"
)

// SnapshotLoader returns the current full list of entries.
type SnapshotLoader func(ctx context.Context) ([]domain.Entry, error)

// Feed fans out full entry snapshots to subscribers. Every subscriber receives
// the current snapshot when it subscribes and a fresh one after each Refresh.
type Feed struct {
	load   SnapshotLoader
	logger zerolog.Logger

	// refreshMu serializes snapshot loading and delivery so that a newer
	// snapshot is never overtaken by an older one.
	refreshMu sync.Mutex

	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
}

type subscriber struct {
	fn      func([]domain.Entry)
	mailbox chan []domain.Entry
	done    chan struct{}
	once    sync.Once
}

// NewFeed creates a Feed backed by load.
func NewFeed(load SnapshotLoader, logger *zerolog.Logger) *Feed {
	l := zerolog.Nop()
	if logger != nil {
		l = *logger
	}

	return &Feed{
		load:   load,
		logger: l,
		subs:   make(map[int]*subscriber),
	}
}

// Subscribe registers fn and returns a function that cancels the subscription.
// fn runs on a dedicated goroutine; while it is busy only the most recent
// pending snapshot is kept.
func (f *Feed) Subscribe(ctx context.Context, fn func([]domain.Entry)) (unsubscribe func()) {
	s := &subscriber{
		fn:      fn,
		mailbox: make(chan []domain.Entry, 1),
		done:    make(chan struct{}),
	}

	go s.run()

	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.subs[id] = s
	f.mu.Unlock()

	if snapshot, err := f.load(ctx); err != nil {
		f.logger.Error().Err(err).Msg("feed: initial snapshot failed")
	} else {
		s.offer(snapshot)
	}

	return func() {
		f.mu.Lock()
		delete(f.subs, id)
		f.mu.Unlock()
		s.stop()
	}
}

// Refresh loads the current snapshot and delivers it to every subscriber.
func (f *Feed) Refresh(ctx context.Context) {
	f.refreshMu.Lock()
	defer f.refreshMu.Unlock()

	subs := f.snapshotSubscribers()
	if len(subs) == 0 {
		return
	}

	snapshot, err := f.load(ctx)
	if err != nil {
		f.logger.Error().Err(err).Msg("feed: snapshot refresh failed")
		return
	}

	for _, s := range subs {
		s.offer(snapshot)
	}
}

// Len returns the number of active subscribers.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close cancels every subscription.
func (f *Feed) Close() {
	f.mu.Lock()
	subs := f.subs
	f.subs = make(map[int]*subscriber)
	f.mu.Unlock()

	for _, s := range subs {
		s.stop()
	}
}

func (f *Feed) snapshotSubscribers() []*subscriber {
	f.mu.Lock()
	defer f.mu.Unlock()

	subs := make([]*subscriber, 0, len(f.subs))
	for _, s := range f.subs {
		subs = append(subs, s)
	}
	return subs
}

// offer replaces any undelivered snapshot with the new one. Callers hold refreshMu.
func (s *subscriber) offer(snapshot []domain.Entry) {
	cp := make([]domain.Entry, len(snapshot))
	copy(cp, snapshot)

	for {
		select {
		case <-s.done:
			return
		case s.mailbox <- cp:
			return
		default:
			select {
			case <-s.mailbox:
			default:
			}
		}
	}
}

func (s *subscriber) run() {
	for {
		select {
		case <-s.done:
			return
		case snapshot := <-s.mailbox:
			select {
			case <-s.done:
				return
			default:
			}
			s.fn(snapshot)
		}
	}
}

func (s *subscriber) stop() {
	s.once.Do(func() { close(s.done) })
}

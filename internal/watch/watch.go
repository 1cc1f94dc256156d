// Package watch keeps in-memory consumers synchronized with a table. Every
// mutation re-reads the full collection and republishes it to all
// subscribers; this trades efficiency for a contract that is trivial to
// reason about. Callers with bulk mutations should batch at the repo level
// and Refresh once.
package watch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/alfredjeanlab/rowkit/internal/events"
	"github.com/alfredjeanlab/rowkit/internal/repo"
	"github.com/alfredjeanlab/rowkit/internal/row"
)

// ErrClosed is returned by operations on a closed Watcher.
var ErrClosed = errors.New("watcher closed")

// subscriberBuffer is the per-subscriber snapshot backlog before drops start.
const subscriberBuffer = 16

// Watcher multicasts full-collection snapshots after every mutation. No past
// snapshot is replayed to late subscribers.
type Watcher[T row.Row] struct {
	repo   *repo.Repo[T]
	pub    events.Publisher
	logger *slog.Logger

	mu     sync.Mutex
	subs   map[int]chan []T
	nextID int
	closed bool
}

// Option configures a Watcher.
type Option func(*options)

type options struct {
	pub    events.Publisher
	logger *slog.Logger
}

// WithPublisher mirrors every published snapshot onto the event bus, so
// out-of-process consumers can follow the table too. Mirror failures are
// logged and never fail the mutation.
func WithPublisher(pub events.Publisher) Option {
	return func(o *options) { o.pub = pub }
}

// WithLogger sets the logger used for mirror failures.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// New wraps a repository in a Watcher.
func New[T row.Row](r *repo.Repo[T], opts ...Option) *Watcher[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Watcher[T]{
		repo:   r,
		pub:    o.pub,
		logger: o.logger,
		subs:   make(map[int]chan []T),
	}
}

// Subscribe registers a consumer of snapshots. The first delivery follows the
// next refresh; slow consumers lose snapshots once their buffer fills. cancel
// unregisters the subscription and closes the channel. Subscribing to a
// closed Watcher yields a closed channel.
func (w *Watcher[T]) Subscribe() (<-chan []T, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		ch := make(chan []T)
		close(ch)
		return ch, func() {}
	}

	id := w.nextID
	w.nextID++
	ch := make(chan []T, subscriberBuffer)
	w.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if c, ok := w.subs[id]; ok {
				delete(w.subs, id)
				close(c)
			}
		})
	}
	return ch, cancel
}

// Refresh re-reads the full collection, publishes it to every subscriber and
// returns it. Consumers may call it directly to force a snapshot.
func (w *Watcher[T]) Refresh(ctx context.Context) ([]T, error) {
	if w.isClosed() {
		return nil, ErrClosed
	}
	rows, err := w.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	w.publish(ctx, rows)
	return rows, nil
}

// Create writes obj, then refreshes.
func (w *Watcher[T]) Create(ctx context.Context, obj T) (int64, error) {
	if w.isClosed() {
		return 0, ErrClosed
	}
	id, err := w.repo.Create(ctx, obj)
	if err != nil {
		return 0, err
	}
	if _, err := w.Refresh(ctx); err != nil {
		return id, err
	}
	return id, nil
}

// Update overwrites the records matching obj's key, then refreshes.
func (w *Watcher[T]) Update(ctx context.Context, obj T) (int64, error) {
	if w.isClosed() {
		return 0, ErrClosed
	}
	n, err := w.repo.Update(ctx, obj)
	if err != nil {
		return 0, err
	}
	if _, err := w.Refresh(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// Delete removes the records matching obj's key, then refreshes.
func (w *Watcher[T]) Delete(ctx context.Context, obj T) error {
	if w.isClosed() {
		return ErrClosed
	}
	if err := w.repo.Delete(ctx, obj); err != nil {
		return err
	}
	_, err := w.Refresh(ctx)
	return err
}

// DeleteKey removes the records whose first field equals key, then refreshes.
func (w *Watcher[T]) DeleteKey(ctx context.Context, key any) error {
	if w.isClosed() {
		return ErrClosed
	}
	if err := w.repo.DeleteKey(ctx, key); err != nil {
		return err
	}
	_, err := w.Refresh(ctx)
	return err
}

// DeleteAll empties the table, then refreshes.
func (w *Watcher[T]) DeleteAll(ctx context.Context) (int64, error) {
	if w.isClosed() {
		return 0, ErrClosed
	}
	n, err := w.repo.DeleteAll(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := w.Refresh(ctx); err != nil {
		return n, err
	}
	return n, nil
}

// Close closes every subscriber channel. Operations after Close return
// ErrClosed; further publishes are impossible.
func (w *Watcher[T]) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	for id, ch := range w.subs {
		delete(w.subs, id)
		close(ch)
	}
}

func (w *Watcher[T]) isClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

func (w *Watcher[T]) publish(ctx context.Context, rows []T) {
	w.mu.Lock()
	for _, ch := range w.subs {
		select {
		case ch <- rows:
		default:
			// Drop for slow consumers rather than stall the mutation path.
		}
	}
	w.mu.Unlock()

	if w.pub != nil {
		w.mirror(ctx, rows)
	}
}

// mirror publishes the snapshot to the event bus as a wire-map envelope.
func (w *Watcher[T]) mirror(ctx context.Context, rows []T) {
	recs := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		rec, err := row.ToMap(r)
		if err != nil {
			w.logger.Warn("snapshot mirror skipped", "table", w.repo.Table(), "err", err)
			return
		}
		recs = append(recs, rec)
	}
	snap, err := events.NewSnapshot(w.repo.Table(), recs)
	if err != nil {
		w.logger.Warn("snapshot mirror skipped", "table", w.repo.Table(), "err", err)
		return
	}
	if err := w.pub.Publish(ctx, events.SnapshotTopic(w.repo.Table()), snap); err != nil {
		w.logger.Warn("snapshot mirror failed", "table", w.repo.Table(), "err", err)
	}
}

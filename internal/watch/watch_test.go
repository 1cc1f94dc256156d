package watch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/rowkit/internal/events"
	"github.com/alfredjeanlab/rowkit/internal/repo"
	"github.com/alfredjeanlab/rowkit/internal/row"
	"github.com/alfredjeanlab/rowkit/internal/store"
	"github.com/alfredjeanlab/rowkit/internal/store/memstore"
)

type band struct {
	Name    string
	Defunct bool
}

func newBand() *band { return &band{} }

func (b *band) Table() string { return "bands" }

func (b *band) Fields() []row.Field {
	return []row.Field{
		row.Text("name", &b.Name),
		row.Bool("defunct", &b.Defunct),
	}
}

func newWatcher(t *testing.T, opts ...Option) *Watcher[*band] {
	t.Helper()
	w := New(repo.New[*band](memstore.New(), newBand), opts...)
	t.Cleanup(w.Close)
	return w
}

// recvSnapshot fails the test if no snapshot arrives promptly.
func recvSnapshot(t *testing.T, ch <-chan []*band) []*band {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("snapshot channel closed")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestMutationsPublishSnapshots(t *testing.T) {
	ctx := context.Background()
	w := newWatcher(t)

	snapshots, cancel := w.Subscribe()
	defer cancel()

	if _, err := w.Create(ctx, &band{Name: "Slayer"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	snap := recvSnapshot(t, snapshots)
	if len(snap) != 1 || snap[0].Name != "Slayer" {
		t.Fatalf("snapshot after create = %+v", snap)
	}

	if _, err := w.Update(ctx, &band{Name: "Slayer", Defunct: true}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	snap = recvSnapshot(t, snapshots)
	if len(snap) != 1 || !snap[0].Defunct {
		t.Fatalf("snapshot after update = %+v", snap)
	}

	if err := w.Delete(ctx, &band{Name: "Slayer", Defunct: true}); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	snap = recvSnapshot(t, snapshots)
	if len(snap) != 0 {
		t.Fatalf("snapshot after delete = %+v", snap)
	}
}

func TestDeleteKeyAndDeleteAllPublish(t *testing.T) {
	ctx := context.Background()
	w := newWatcher(t)

	for _, name := range []string{"Slayer", "Death"} {
		if _, err := w.Create(ctx, &band{Name: name}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	snapshots, cancel := w.Subscribe()
	defer cancel()

	if err := w.DeleteKey(ctx, "Slayer"); err != nil {
		t.Fatalf("DeleteKey error: %v", err)
	}
	snap := recvSnapshot(t, snapshots)
	if len(snap) != 1 || snap[0].Name != "Death" {
		t.Fatalf("snapshot after DeleteKey = %+v", snap)
	}

	n, err := w.DeleteAll(ctx)
	if err != nil {
		t.Fatalf("DeleteAll error: %v", err)
	}
	if n != 1 {
		t.Errorf("DeleteAll removed %d rows, want 1", n)
	}
	if snap = recvSnapshot(t, snapshots); len(snap) != 0 {
		t.Fatalf("snapshot after DeleteAll = %+v", snap)
	}
}

func TestRefresh_DirectForce(t *testing.T) {
	ctx := context.Background()
	w := newWatcher(t)

	snapshots, cancel := w.Subscribe()
	defer cancel()

	rows, err := w.Refresh(ctx)
	if err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("Refresh returned %d rows, want 0", len(rows))
	}
	if snap := recvSnapshot(t, snapshots); len(snap) != 0 {
		t.Fatalf("snapshot = %+v, want empty", snap)
	}
}

func TestSubscribe_MultipleConsumers(t *testing.T) {
	ctx := context.Background()
	w := newWatcher(t)

	a, cancelA := w.Subscribe()
	defer cancelA()
	b, cancelB := w.Subscribe()
	defer cancelB()

	if _, err := w.Create(ctx, &band{Name: "Slayer"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if snap := recvSnapshot(t, a); len(snap) != 1 {
		t.Errorf("subscriber a snapshot = %+v", snap)
	}
	if snap := recvSnapshot(t, b); len(snap) != 1 {
		t.Errorf("subscriber b snapshot = %+v", snap)
	}
}

func TestSubscribe_CancelStopsDelivery(t *testing.T) {
	ctx := context.Background()
	w := newWatcher(t)

	snapshots, cancel := w.Subscribe()
	cancel()
	// Cancel is idempotent.
	cancel()

	if _, ok := <-snapshots; ok {
		t.Fatal("canceled channel delivered a snapshot")
	}
	if _, err := w.Create(ctx, &band{Name: "Slayer"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestMutationErrorSkipsPublish(t *testing.T) {
	ctx := context.Background()
	w := newWatcher(t)

	snapshots, cancel := w.Subscribe()
	defer cancel()

	if _, err := w.Update(ctx, &band{Name: "nobody"}); !errors.Is(err, store.ErrNoRowsAffected) {
		t.Fatalf("Update error = %v, want ErrNoRowsAffected", err)
	}
	select {
	case snap := <-snapshots:
		t.Fatalf("failed mutation published snapshot %+v", snap)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClose(t *testing.T) {
	ctx := context.Background()
	w := newWatcher(t)

	snapshots, cancel := w.Subscribe()
	defer cancel()

	w.Close()
	// Close is idempotent.
	w.Close()

	if _, ok := <-snapshots; ok {
		t.Fatal("channel open after Close")
	}

	if _, err := w.Refresh(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Refresh error = %v, want ErrClosed", err)
	}
	if _, err := w.Create(ctx, &band{Name: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Create error = %v, want ErrClosed", err)
	}
	if _, err := w.Update(ctx, &band{Name: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Update error = %v, want ErrClosed", err)
	}
	if err := w.Delete(ctx, &band{Name: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Delete error = %v, want ErrClosed", err)
	}
	if err := w.DeleteKey(ctx, "x"); !errors.Is(err, ErrClosed) {
		t.Errorf("DeleteKey error = %v, want ErrClosed", err)
	}
	if _, err := w.DeleteAll(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("DeleteAll error = %v, want ErrClosed", err)
	}

	late, lateCancel := w.Subscribe()
	defer lateCancel()
	if _, ok := <-late; ok {
		t.Error("subscription on closed watcher delivered a snapshot")
	}
}

// recordingPublisher captures mirrored snapshots for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
	snaps  []*events.Snapshot
}

func (p *recordingPublisher) Publish(ctx context.Context, topic string, snap *events.Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.snaps = append(p.snaps, snap)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func TestMirror_PublishesEnvelope(t *testing.T) {
	ctx := context.Background()
	pub := &recordingPublisher{}
	w := newWatcher(t, WithPublisher(pub))

	if _, err := w.Create(ctx, &band{Name: "Slayer"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	if len(pub.snaps) != 1 {
		t.Fatalf("%d snapshots mirrored, want 1", len(pub.snaps))
	}
	if pub.topics[0] != "rowkit.bands.snapshot" {
		t.Errorf("topic = %q", pub.topics[0])
	}
	snap := pub.snaps[0]
	if snap.Table != "bands" || snap.Count != 1 || snap.ID == "" {
		t.Errorf("envelope = %+v", snap)
	}
	if snap.Rows[0]["name"] != "Slayer" {
		t.Errorf("mirrored row = %v", snap.Rows[0])
	}
}

func TestMirror_FailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	w := newWatcher(t, WithPublisher(&failingPublisher{}))

	if _, err := w.Create(ctx, &band{Name: "Slayer"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

type failingPublisher struct{}

func (p *failingPublisher) Publish(ctx context.Context, topic string, snap *events.Snapshot) error {
	return errors.New("bus down")
}

func (p *failingPublisher) Close() error { return nil }

package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/alfredjeanlab/rowkit/internal/store"
)

// Destination receives finished exports. Store reads one complete JSONL
// export of table from r and persists it; where it lands (object key, file
// path) is the destination's business.
type Destination interface {
	Store(ctx context.Context, table string, r io.Reader) error
}

// FileDestination stores exports at a fixed local path, replacing the
// previous export atomically so readers never see a half-written file.
type FileDestination struct {
	Path string
}

func (d *FileDestination) Store(ctx context.Context, table string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(d.Path), 0o755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	tmp := d.Path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write backup: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write backup: %w", err)
	}
	if err := os.Rename(tmp, d.Path); err != nil {
		return fmt.Errorf("replace backup: %w", err)
	}
	return nil
}

// Scheduler runs periodic exports of one table to one or more destinations.
type Scheduler struct {
	store        store.Store
	table        string
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports table from the store to the
// given destinations at the specified interval.
func NewScheduler(s store.Store, table string, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		table:        table,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
	}
}

// Start begins periodic export. It runs an initial export immediately, then
// on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current export (if any) to
// finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.exportOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.exportOnce(ctx)
		}
	}
}

func (s *Scheduler) exportOnce(ctx context.Context) {
	var buf bytes.Buffer
	if err := ExportJSONL(ctx, s.store, s.table, &buf); err != nil {
		s.logger.Error("backup export failed", "table", s.table, "err", err)
		return
	}
	data := buf.Bytes()

	for i, dest := range s.destinations {
		if err := dest.Store(ctx, s.table, bytes.NewReader(data)); err != nil {
			s.logger.Error("backup destination write failed", "destination", i, "err", err)
		}
	}

	s.logger.Info("backup completed", "table", s.table, "destinations", len(s.destinations), "bytes", len(data))
}

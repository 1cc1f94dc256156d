package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alfredjeanlab/rowkit/internal/store/memstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedStore(t *testing.T) *memstore.Store {
	t.Helper()
	s := memstore.New()
	ctx := context.Background()
	for _, rec := range []map[string]any{
		{"name": "Slayer", "formed": int64(1981)},
		{"name": "Death", "formed": int64(1984)},
	} {
		if _, err := s.Insert(ctx, "bands", rec); err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}
	return s
}

func TestExportJSONL(t *testing.T) {
	s := seedStore(t)

	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), s, "bands", &buf); err != nil {
		t.Fatalf("ExportJSONL error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("export has %d lines, want 3: %q", len(lines), buf.String())
	}

	var hdr header
	if err := json.Unmarshal([]byte(lines[0]), &hdr); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if hdr.Type != "header" || hdr.Table != "bands" || hdr.RowCount != 2 || hdr.Version != "1" {
		t.Errorf("header = %+v", hdr)
	}
	if hdr.Timestamp.IsZero() {
		t.Error("header timestamp is zero")
	}

	names := make([]string, 0, 2)
	for _, l := range lines[1:] {
		var rec struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		if err := json.Unmarshal([]byte(l), &rec); err != nil {
			t.Fatalf("unmarshal row line: %v", err)
		}
		if rec.Type != "row" {
			t.Errorf("line type = %q, want row", rec.Type)
		}
		names = append(names, rec.Data["name"].(string))
	}
	for _, want := range []string{"Slayer", "Death"} {
		found := false
		for _, n := range names {
			if n == want {
				found = true
			}
		}
		if !found {
			t.Errorf("export is missing band %q (got %v)", want, names)
		}
	}
}

func TestExportJSONL_StableOrder(t *testing.T) {
	s := seedStore(t)
	ctx := context.Background()

	var a, b bytes.Buffer
	if err := ExportJSONL(ctx, s, "bands", &a); err != nil {
		t.Fatalf("ExportJSONL error: %v", err)
	}
	if err := ExportJSONL(ctx, s, "bands", &b); err != nil {
		t.Fatalf("ExportJSONL error: %v", err)
	}

	// Headers carry timestamps; the row lines must match exactly.
	rowsA := strings.SplitN(a.String(), "\n", 2)[1]
	rowsB := strings.SplitN(b.String(), "\n", 2)[1]
	if rowsA != rowsB {
		t.Errorf("row lines differ between runs:\n%s\n%s", rowsA, rowsB)
	}
}

func TestExportJSONL_EmptyTable(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportJSONL(context.Background(), memstore.New(), "bands", &buf); err != nil {
		t.Fatalf("ExportJSONL error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1 {
		t.Fatalf("empty export has %d lines, want header only", len(lines))
	}
	var hdr header
	if err := json.Unmarshal([]byte(lines[0]), &hdr); err != nil {
		t.Fatalf("unmarshal header: %v", err)
	}
	if hdr.RowCount != 0 {
		t.Errorf("RowCount = %d, want 0", hdr.RowCount)
	}
}

func TestFileDestination_StoreAndReplace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "backup.jsonl")
	dest := &FileDestination{Path: path}
	ctx := context.Background()

	if err := dest.Store(ctx, "bands", strings.NewReader("first\n")); err != nil {
		t.Fatalf("Store error: %v", err)
	}
	if err := dest.Store(ctx, "bands", strings.NewReader("second\n")); err != nil {
		t.Fatalf("Store error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if string(data) != "second\n" {
		t.Errorf("backup content = %q, want the replacement", data)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestS3Destination_ObjectKey(t *testing.T) {
	for _, tc := range []struct {
		prefix string
		table  string
		want   string
	}{
		{"rowkit", "bands", "rowkit/bands.jsonl"},
		{"rowkit/", "bands", "rowkit/bands.jsonl"},
		{"", "bands", "bands.jsonl"},
		{"backups/nightly", "albums", "backups/nightly/albums.jsonl"},
	} {
		d := &S3Destination{prefix: tc.prefix}
		if got := d.ObjectKey(tc.table); got != tc.want {
			t.Errorf("ObjectKey(%q) with prefix %q = %q, want %q", tc.table, tc.prefix, got, tc.want)
		}
	}
}

func TestScheduler_ExportsImmediately(t *testing.T) {
	s := seedStore(t)
	path := filepath.Join(t.TempDir(), "backup.jsonl")

	sched := NewScheduler(s, "bands", []Destination{&FileDestination{Path: path}}, time.Hour, discardLogger())
	sched.Start()
	defer sched.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("scheduler never wrote the initial export")
		}
		time.Sleep(10 * time.Millisecond)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading backup: %v", err)
	}
	if !strings.Contains(string(data), `"row_count":2`) {
		t.Errorf("backup missing header row count: %q", data)
	}
}

func TestScheduler_StopIsIdempotentlySafe(t *testing.T) {
	s := memstore.New()
	sched := NewScheduler(s, "bands", nil, time.Hour, discardLogger())
	sched.Start()
	sched.Stop()
	sched.Stop()
}

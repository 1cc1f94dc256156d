// Package backup exports a table's full contents as JSONL to one or more
// destinations, on demand or on a schedule.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/rowkit/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version   string    `json:"version"`
	Type      string    `json:"type"`
	Table     string    `json:"table"`
	Timestamp time.Time `json:"timestamp"`
	RowCount  int       `json:"row_count"`
}

// line wraps a single JSONL record with a type discriminator.
type line struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every record of table to w, one JSON object per line,
// preceded by a header line. Records are sorted by their encoded form so the
// output is stable across runs regardless of store order.
func ExportJSONL(ctx context.Context, s store.Store, table string, w io.Writer) error {
	recs, err := s.Query(ctx, table, nil)
	if err != nil {
		return fmt.Errorf("query %s: %w", table, err)
	}

	encoded := make([]string, 0, len(recs))
	for _, rec := range recs {
		data, err := json.Marshal(line{Type: "row", Data: rec})
		if err != nil {
			return fmt.Errorf("encode %s record: %w", table, err)
		}
		encoded = append(encoded, string(data))
	}
	sort.Strings(encoded)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(header{
		Version:   "1",
		Type:      "header",
		Table:     table,
		Timestamp: time.Now().UTC(),
		RowCount:  len(recs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, l := range encoded {
		if _, err := io.WriteString(w, l+"\n"); err != nil {
			return fmt.Errorf("write %s record: %w", table, err)
		}
	}

	return nil
}

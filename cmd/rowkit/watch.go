package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rowkit/internal/events"
	"github.com/alfredjeanlab/rowkit/internal/row"
	"github.com/alfredjeanlab/rowkit/internal/watch"
)

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow catalog snapshots until interrupted",
	Long: `Subscribes to the band catalog and prints the full collection every time
it changes. The table is re-read on each interval tick, so mutations from
other rowkit processes show up too; with a NATS URL configured, snapshots
are also mirrored onto the event bus for out-of-process consumers.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var opts []watch.Option
		if cfg.NATSURL != "" {
			pub, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				return err
			}
			defer pub.Close()
			opts = append(opts, watch.WithPublisher(pub))
		}

		w := watch.New(bands, opts...)
		defer w.Close()

		snapshots, cancel := w.Subscribe()
		defer cancel()

		if _, err := w.Refresh(ctx); err != nil {
			return err
		}

		ticker := time.NewTicker(watchInterval)
		defer ticker.Stop()

		var last uint64
		seen := false
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if _, err := w.Refresh(ctx); err != nil {
					return err
				}
			case snap, ok := <-snapshots:
				if !ok {
					return nil
				}
				digest := snapshotDigest(snap)
				if seen && digest == last {
					continue
				}
				last, seen = digest, true
				if err := printSnapshot(snap); err != nil {
					return err
				}
			}
		}
	},
}

// snapshotDigest folds the per-row hashes together so unchanged snapshots
// can be skipped. Rows that fail to hash force a reprint.
func snapshotDigest(snap []*Band) uint64 {
	var digest uint64
	for i, b := range snap {
		h, err := row.Hash(b)
		if err != nil {
			return uint64(time.Now().UnixNano())
		}
		digest ^= h + uint64(i)*0x9e3779b97f4a7c15
	}
	return digest
}

func printSnapshot(snap []*Band) error {
	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(snap)
	}
	fmt.Printf("-- %d bands --\n", len(snap))
	for _, b := range snap {
		status := "active"
		if b.Defunct {
			status = "defunct"
		}
		fmt.Printf("  %s (%s, %s)\n", b.Name, b.Genre, status)
	}
	return nil
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Second, "refresh interval")
}

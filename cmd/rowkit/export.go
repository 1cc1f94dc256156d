package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rowkit/internal/backup"
)

var (
	exportOut   string
	exportS3    bool
	exportEvery time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog as JSONL",
	Long: `Writes the full bands table as JSONL to stdout, a file (--out), or the
configured S3 bucket (--s3). With --every, keeps exporting on a schedule
until interrupted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var destinations []backup.Destination
		if exportOut != "" {
			destinations = append(destinations, &backup.FileDestination{Path: exportOut})
		}
		if exportS3 {
			if cfg.BackupS3Bucket == "" {
				return fmt.Errorf("--s3 requires a configured bucket (ROWKIT_BACKUP_S3_BUCKET)")
			}
			dest, err := backup.NewS3Destination(cmd.Context(),
				cfg.BackupS3Bucket, cfg.BackupS3Prefix, cfg.BackupS3Region, cfg.BackupS3Endpoint)
			if err != nil {
				return err
			}
			destinations = append(destinations, dest)
		}

		if exportEvery > 0 {
			if len(destinations) == 0 {
				return fmt.Errorf("--every needs --out or --s3")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sched := backup.NewScheduler(st, bands.Table(), destinations, exportEvery, slog.Default())
			sched.Start()
			<-ctx.Done()
			sched.Stop()
			return nil
		}

		var buf bytes.Buffer
		if err := backup.ExportJSONL(cmd.Context(), st, bands.Table(), &buf); err != nil {
			return err
		}
		if len(destinations) == 0 {
			_, err := os.Stdout.Write(buf.Bytes())
			return err
		}
		for _, dest := range destinations {
			if err := dest.Store(cmd.Context(), bands.Table(), bytes.NewReader(buf.Bytes())); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "", "write to this file instead of stdout")
	exportCmd.Flags().BoolVar(&exportS3, "s3", false, "upload to the configured S3 bucket")
	exportCmd.Flags().DurationVar(&exportEvery, "every", 0, "repeat on this interval until interrupted")
}

// Command rowkit is a band-catalog CLI demonstrating the mapping layer
// end to end: typed rows, derived schema, repository access and snapshot
// watching against a PostgreSQL table.
package main

import (
	"database/sql"
	"embed"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/rowkit/internal/config"
	"github.com/alfredjeanlab/rowkit/internal/repo"
	"github.com/alfredjeanlab/rowkit/internal/store"
	"github.com/alfredjeanlab/rowkit/internal/store/sqlstore"
	"github.com/alfredjeanlab/rowkit/internal/ui"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	jsonOutput bool

	cfg   *config.Config
	st    store.Store
	bands *repo.Repo[*Band]
)

var rootCmd = &cobra.Command{
	Use:   "rowkit <command>",
	Short: "Band catalog built on the rowkit mapping layer",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if jsonOutput {
			ui.ForceNoColor()
		}

		c, err := config.Load()
		if err != nil {
			return err
		}
		cfg = c

		// schema only derives DDL text; it needs no database.
		if cmd.Name() == "schema" {
			return nil
		}

		if cfg.DatabaseURL == "" {
			return fmt.Errorf("no database configured (set ROWKIT_DATABASE_URL or database_url in the config file)")
		}

		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.Ping(); err != nil {
			db.Close()
			return fmt.Errorf("ping database: %w", err)
		}
		if err := sqlstore.Migrate(db, migrationsFS, "migrations"); err != nil {
			db.Close()
			return err
		}

		st = sqlstore.New(db, sqlstore.Options{Placeholders: sqlstore.Dollar})
		bands = repo.New(st, NewBand)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if st != nil {
			st.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

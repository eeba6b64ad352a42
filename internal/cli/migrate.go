package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/qdsl/internal/store"
)

// MigrateResult is the JSON payload of the migrate command.
type MigrateResult struct {
	Applied int   `json:"applied"`
	Version int64 `json:"version"`
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		Long: `Apply pending schema migrations to the configured database.

Every other command migrates on open as well; migrate reports what ran.

Example:
  qdsl migrate --db ./members.db
  qdsl migrate --driver postgres --db "postgres://localhost/qdsl?sslmode=disable"`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(rootOpts, cmd)
		},
	}
}

func runMigrate(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, err := opts.openStore(cmd, f, store.WithAutoMigrate(false))
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ctx := cmd.Context()
	applied, err := st.Migrate(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "migration failed", err)
	}
	version, err := st.SchemaVersion(ctx)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeDatabase, "migration failed", err)
	}

	return f.Success(MigrateResult{Applied: applied, Version: version}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ Schema at version %d (%d migration(s) applied)\n", version, applied)
		return err
	})
}

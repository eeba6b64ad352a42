package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/qdsl/internal/member"
)

// BulkResult is the JSON payload of every bulk subcommand.
type BulkResult struct {
	Operation string `json:"operation"`
	Affected  int64  `json:"affected"`
}

// NewBulkCommand creates the bulk command and its subcommands.
func NewBulkCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bulk",
		Short: "Update or delete many members in one statement",
		Long: `Run a single UPDATE or DELETE over every matching member.

Bulk statements go straight to the database; previously loaded results are
not refreshed.`,
	}

	cmd.AddCommand(newRenameYoungerCommand(rootOpts))
	cmd.AddCommand(newAddAgeCommand(rootOpts))
	cmd.AddCommand(newDeleteOlderCommand(rootOpts))

	return cmd
}

func newRenameYoungerCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		age      int64
		username string
	)
	cmd := &cobra.Command{
		Use:           "rename-younger",
		Short:         "Set the username of every member younger than --age",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(rootOpts, cmd, "rename-younger", func(ctx context.Context, repo *member.Repository) (int64, error) {
				return repo.RenameYoungerThan(ctx, age, username)
			})
		},
	}
	cmd.Flags().Int64Var(&age, "age", 0, "exclusive upper age bound")
	cmd.Flags().StringVar(&username, "username", "", "new username")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

func newAddAgeCommand(rootOpts *RootOptions) *cobra.Command {
	var delta int64
	cmd := &cobra.Command{
		Use:           "add-age",
		Short:         "Add --delta to every member's age",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(rootOpts, cmd, "add-age", func(ctx context.Context, repo *member.Repository) (int64, error) {
				return repo.AddAge(ctx, delta)
			})
		},
	}
	cmd.Flags().Int64Var(&delta, "delta", 1, "years to add (may be negative)")
	return cmd
}

func newDeleteOlderCommand(rootOpts *RootOptions) *cobra.Command {
	var age int64
	cmd := &cobra.Command{
		Use:           "delete-older",
		Short:         "Delete every member older than --age",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBulk(rootOpts, cmd, "delete-older", func(ctx context.Context, repo *member.Repository) (int64, error) {
				return repo.DeleteOlderThan(ctx, age)
			})
		},
	}
	cmd.Flags().Int64Var(&age, "age", 0, "exclusive lower age bound")
	_ = cmd.MarkFlagRequired("age")
	return cmd
}

func runBulk(opts *RootOptions, cmd *cobra.Command, operation string, fn func(context.Context, *member.Repository) (int64, error)) error {
	f := opts.formatter(cmd)

	var affected int64
	err := opts.withRepository(cmd, f, func(repo *member.Repository) error {
		n, err := fn(cmd.Context(), repo)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeQuery, operation+" failed", err)
		}
		affected = n
		return nil
	})
	if err != nil {
		return err
	}

	return f.Success(BulkResult{Operation: operation, Affected: affected}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "✓ %s: %d row(s) affected\n", operation, affected)
		return err
	})
}

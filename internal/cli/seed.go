package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/qdsl/internal/fixture"
	"github.com/roach88/qdsl/internal/member"
)

// SeedResult is the JSON payload of the seed command.
type SeedResult struct {
	Teams   int    `json:"teams"`
	Members int    `json:"members"`
	Hash    string `json:"hash"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed [dataset]",
		Short: "Load teams and members into the database",
		Long: `Insert a dataset of teams and members in one transaction.

The dataset is a YAML (.yaml, .yml) or CUE (.cue) file. Without a file the
built-in dataset is used: teamA with member1 (10) and member2 (20), teamB
with member3 (30) and member4 (40).

Example:
  qdsl seed --db ./members.db
  qdsl seed --db ./members.db ./people.cue`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args, cmd)
		},
	}
}

func runSeed(opts *RootOptions, args []string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	ds := fixture.Default()
	if len(args) == 1 {
		loaded, errs := fixture.Load(args[0])
		if len(errs) > 0 {
			return outputDatasetErrors(f, args[0], errs)
		}
		ds = loaded
	}

	hash, err := fixture.Hash(ds)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeDataset, "failed to hash dataset", err)
	}
	f.VerboseLog("Dataset %s", hash)

	var res fixture.ApplyResult
	err = opts.withRepository(cmd, f, func(repo *member.Repository) error {
		applied, err := fixture.Apply(cmd.Context(), repo, ds)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeDataset, "failed to apply dataset", err)
		}
		res = applied
		return nil
	})
	if err != nil {
		return err
	}

	return f.Success(SeedResult{Teams: res.Teams, Members: res.Members, Hash: hash}, func(w io.Writer) error {
		fmt.Fprintf(w, "✓ Seeded %d team(s), %d member(s)\n", res.Teams, res.Members)
		_, err := fmt.Fprintf(w, "  dataset: %s\n", hash)
		return err
	})
}

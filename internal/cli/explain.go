package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/qdsl/internal/member"
)

// ExplainResult is the JSON payload of the explain command.
type ExplainResult struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
	Hash   string `json:"hash"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Print the SQL a search would run",
		Long: `Compile a search for the configured database without running it.

Takes the same condition and paging flags as search and prints the SQL,
its bound parameters and the statement hash.

Example:
  qdsl explain --team teamB --age-goe 35 --limit 5
  qdsl explain --driver postgres --db "postgres://localhost/qdsl" --username member1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, cmd)
		},
	}

	opts.bind(cmd)

	return cmd
}

func runExplain(opts *SearchOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	page, err := opts.pageable()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeArgs, "invalid paging", err)
	}
	cond := opts.condition(cmd)

	var result ExplainResult
	err = opts.withRepository(cmd, f, func(repo *member.Repository) error {
		st, err := repo.ExplainSearch(cond, page)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeQuery, "failed to compile search", err)
		}
		params := st.Params
		if params == nil {
			params = []any{}
		}
		result = ExplainResult{SQL: st.SQL, Params: params, Hash: st.Hash}
		return nil
	})
	if err != nil {
		return err
	}

	return f.Success(result, func(w io.Writer) error {
		fmt.Fprintln(w, result.SQL)
		fmt.Fprintf(w, "  params: %v\n", result.Params)
		_, err := fmt.Fprintf(w, "  hash: %s\n", result.Hash)
		return err
	})
}

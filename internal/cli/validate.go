package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/qdsl/internal/fixture"
)

// ValidationResult is the JSON payload of a successful validate command.
type ValidationResult struct {
	Valid   bool   `json:"valid"`
	Teams   int    `json:"teams"`
	Members int    `json:"members"`
	Hash    string `json:"hash"`
}

// DatasetIssue is one problem found in a dataset file.
type DatasetIssue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <dataset>",
		Short: "Check a dataset file without touching the database",
		Long: `Parse and validate a YAML or CUE dataset.

Reports every empty or duplicate team name and negative age. CUE datasets
report the source line of each problem.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	ds, errs := fixture.Load(path)
	if len(errs) > 0 {
		return outputDatasetErrors(f, path, errs)
	}

	hash, err := fixture.Hash(ds)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeDataset, "failed to hash dataset", err)
	}

	members := len(ds.Members)
	for _, team := range ds.Teams {
		members += len(team.Members)
	}

	result := ValidationResult{Valid: true, Teams: len(ds.Teams), Members: members, Hash: hash}
	return f.Success(result, func(w io.Writer) error {
		fmt.Fprintf(w, "✓ Dataset valid: %d team(s), %d member(s)\n", result.Teams, result.Members)
		_, err := fmt.Fprintf(w, "  dataset: %s\n", result.Hash)
		return err
	})
}

// outputDatasetErrors reports fixture load errors and returns an
// ExitFailure error.
func outputDatasetErrors(f *OutputFormatter, path string, errs []error) error {
	issues := make([]DatasetIssue, 0, len(errs))
	for _, err := range errs {
		issue := DatasetIssue{Code: ErrCodeDataset, Message: err.Error()}
		var le *fixture.LoadError
		if errors.As(err, &le) {
			issue.Code = le.Code
			issue.Message = le.Message
			if le.Pos.IsValid() {
				issue.Line = le.Pos.Line()
				issue.Column = le.Pos.Column()
			}
		}
		issues = append(issues, issue)
	}

	if f.Format == "json" {
		if err := f.Error(ErrCodeDataset, fmt.Sprintf("invalid dataset %s", path), issues); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ Invalid dataset %s\n", path)
		for _, issue := range issues {
			if issue.Line > 0 {
				fmt.Fprintf(f.Writer, "%s:%d:%d\n", path, issue.Line, issue.Column)
			}
			fmt.Fprintf(f.Writer, "  %s: %s\n", issue.Code, issue.Message)
		}
	}
	return WrapExitError(ExitFailure, fmt.Sprintf("%s: invalid dataset %s", ErrCodeDataset, path), errors.Join(errs...))
}

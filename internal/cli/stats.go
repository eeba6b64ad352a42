package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/qdsl/internal/member"
)

// TeamStat is one team row of the stats command.
type TeamStat struct {
	Team   string  `json:"team"`
	AvgAge float64 `json:"avg_age"`
}

// AgeStats is the JSON form of member.AgeSummary.
type AgeStats struct {
	Count int64   `json:"count"`
	Sum   int64   `json:"sum"`
	Avg   float64 `json:"avg"`
	Max   int64   `json:"max"`
	Min   int64   `json:"min"`
}

// StatsResult is the JSON payload of the stats command.
type StatsResult struct {
	Ages  AgeStats   `json:"ages"`
	Teams []TeamStat `json:"teams"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize member ages overall and per team",
		Long: `Print count, sum, average, maximum and minimum member age, followed by
the average age of every team that has members.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()

	var result StatsResult
	err := opts.withRepository(cmd, f, func(repo *member.Repository) error {
		summary, err := repo.AgeSummary(ctx)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeQuery, "stats failed", err)
		}
		teams, err := repo.TeamAgeStats(ctx)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeQuery, "stats failed", err)
		}

		result.Ages = AgeStats(summary)
		result.Teams = make([]TeamStat, 0, len(teams))
		for _, t := range teams {
			result.Teams = append(result.Teams, TeamStat{Team: t.TeamName, AvgAge: t.AvgAge})
		}
		return nil
	})
	if err != nil {
		return err
	}

	return f.Success(result, func(w io.Writer) error {
		a := result.Ages
		fmt.Fprintf(w, "members: %d  sum: %d  avg: %.2f  max: %d  min: %d\n", a.Count, a.Sum, a.Avg, a.Max, a.Min)
		if len(result.Teams) == 0 {
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TEAM\tAVG AGE")
		for _, t := range result.Teams {
			fmt.Fprintf(tw, "%s\t%.2f\n", t.Team, t.AvgAge)
		}
		return tw.Flush()
	})
}

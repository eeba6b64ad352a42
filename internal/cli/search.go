package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/qdsl/internal/member"
)

// Paging strategies for the search command.
const (
	CountSimple  = "simple"  // always run a count query
	CountComplex = "complex" // skip the count query when the page decides the total
)

// conditionFlags binds the search condition flags shared by search and
// explain. A flag that is not given leaves its condition unset.
type conditionFlags struct {
	username string
	teamName string
	ageGoe   int
	ageLoe   int
	offset   int64
	limit    int64
}

func (c *conditionFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.username, "username", "", "exact username")
	cmd.Flags().StringVar(&c.teamName, "team", "", "exact team name")
	cmd.Flags().IntVar(&c.ageGoe, "age-goe", 0, "minimum age (inclusive)")
	cmd.Flags().IntVar(&c.ageLoe, "age-loe", 0, "maximum age (inclusive)")
	cmd.Flags().Int64Var(&c.offset, "offset", 0, "rows to skip")
	cmd.Flags().Int64Var(&c.limit, "limit", 0, "page size (0 = unbounded)")
}

func (c *conditionFlags) condition(cmd *cobra.Command) member.SearchCondition {
	var cond member.SearchCondition
	if cmd.Flags().Changed("username") {
		cond.Username = &c.username
	}
	if cmd.Flags().Changed("team") {
		cond.TeamName = &c.teamName
	}
	if cmd.Flags().Changed("age-goe") {
		cond.AgeGoe = &c.ageGoe
	}
	if cmd.Flags().Changed("age-loe") {
		cond.AgeLoe = &c.ageLoe
	}
	return cond
}

func (c *conditionFlags) pageable() (member.Pageable, error) {
	if c.offset < 0 {
		return member.Pageable{}, fmt.Errorf("--offset must not be negative, got %d", c.offset)
	}
	if c.limit < 0 {
		return member.Pageable{}, fmt.Errorf("--limit must not be negative, got %d", c.limit)
	}
	return member.Pageable{Offset: c.offset, Limit: c.limit}, nil
}

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	conditionFlags
	Count string
}

// MemberView is the JSON form of one search row. Absent values are null.
type MemberView struct {
	ID       int64   `json:"id"`
	Username *string `json:"username"`
	Age      int     `json:"age"`
	TeamID   *int64  `json:"team_id"`
	TeamName *string `json:"team_name"`
}

// SearchResult is the JSON payload of the search command.
type SearchResult struct {
	Members []MemberView `json:"members"`
	Total   int64        `json:"total"`
	Offset  int64        `json:"offset"`
	Limit   int64        `json:"limit"`
	HasNext bool         `json:"has_next"`
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search members with optional conditions",
		Long: `Search members joined to their team, one page at a time.

Only the conditions given are applied; with none, every member matches.
Members without a team are included unless --team is given.

Example:
  qdsl search --db ./members.db --team teamB --age-goe 35
  qdsl search --db ./members.db --offset 2 --limit 2 --count simple`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(opts, cmd)
		},
	}

	opts.bind(cmd)
	cmd.Flags().StringVar(&opts.Count, "count", CountComplex, "total strategy (simple|complex)")

	return cmd
}

func runSearch(opts *SearchOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	page, err := opts.pageable()
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeArgs, "invalid paging", err)
	}
	if opts.Count != CountSimple && opts.Count != CountComplex {
		return f.Fail(ExitCommandError, ErrCodeArgs, "invalid paging",
			fmt.Errorf("--count must be %s or %s, got %q", CountSimple, CountComplex, opts.Count))
	}
	cond := opts.condition(cmd)
	if cond.IsEmpty() {
		f.VerboseLog("No search conditions, listing every member")
	}

	var result member.Page[member.MemberTeamDto]
	err = opts.withRepository(cmd, f, func(repo *member.Repository) error {
		search := repo.SearchPageComplex
		if opts.Count == CountSimple {
			search = repo.SearchPageSimple
		}
		res, err := search(cmd.Context(), cond, page)
		if err != nil {
			return f.Fail(ExitFailure, ErrCodeQuery, "search failed", err)
		}
		result = res
		return nil
	})
	if err != nil {
		return err
	}

	return f.Success(searchResult(result), func(w io.Writer) error {
		if err := writeMemberTable(w, result.Content); err != nil {
			return err
		}
		fmt.Fprintf(w, "%d of %d member(s)", len(result.Content), result.Total)
		if result.HasNext() {
			fmt.Fprintf(w, ", next offset %d", result.Offset+int64(len(result.Content)))
		}
		_, err := fmt.Fprintln(w)
		return err
	})
}

func searchResult(page member.Page[member.MemberTeamDto]) SearchResult {
	views := make([]MemberView, 0, len(page.Content))
	for _, row := range page.Content {
		v := MemberView{ID: row.MemberID, Age: row.Age}
		if row.Username.Valid {
			v.Username = &row.Username.String
		}
		if row.TeamID.Valid {
			v.TeamID = &row.TeamID.Int64
		}
		if row.TeamName.Valid {
			v.TeamName = &row.TeamName.String
		}
		views = append(views, v)
	}
	return SearchResult{
		Members: views,
		Total:   page.Total,
		Offset:  page.Offset,
		Limit:   page.Limit,
		HasNext: page.HasNext(),
	}
}

const nullText = "<null>"

func writeMemberTable(w io.Writer, rows []member.MemberTeamDto) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tAGE\tTEAM")
	for _, row := range rows {
		username := nullText
		if row.Username.Valid {
			username = row.Username.String
		}
		team := "-"
		if row.TeamName.Valid {
			team = row.TeamName.String
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", row.MemberID, username, row.Age, team)
	}
	return tw.Flush()
}

package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/qdsl/internal/dsl"
	"github.com/roach88/qdsl/internal/ir"
	"github.com/roach88/qdsl/internal/store"
)

// ErrEmptyTeamName is returned by SaveTeam for a blank name.
var ErrEmptyTeamName = errors.New("team name is empty")

// Repository reads and writes members and teams.
//
// A Repository created by NewRepository opens a fresh Session per call.
// Inside InTx every call shares the transaction's Session.
type Repository struct {
	store *store.Store
	sess  *store.Session
}

// NewRepository returns a repository over st.
func NewRepository(st *store.Store) *Repository {
	return &Repository{store: st}
}

func (r *Repository) session() *store.Session {
	if r.sess != nil {
		return r.sess
	}
	return r.store.Session()
}

// InTx runs fn with a repository bound to one transaction.
func (r *Repository) InTx(ctx context.Context, fn func(*Repository) error) error {
	if r.sess != nil {
		return fn(r)
	}
	return r.store.InTx(ctx, func(sess *store.Session) error {
		return fn(&Repository{store: r.store, sess: sess})
	})
}

// SaveTeam inserts a team and returns it with its generated id.
func (r *Repository) SaveTeam(ctx context.Context, name string) (Team, error) {
	name = ir.NormalizeText(name)
	if name == "" {
		return Team{}, ErrEmptyTeamName
	}

	t := QTeams
	insert := dsl.InsertInto(t).
		Value(t.Name, name).
		Returning("team_id").
		Build()

	id, err := r.session().InsertReturning(ctx, insert)
	if err != nil {
		return Team{}, fmt.Errorf("save team: %w", err)
	}
	return Team{ID: id, Name: name}, nil
}

// SaveMember inserts m (ignoring m.ID and m.Team) and returns it with its
// generated id.
func (r *Repository) SaveMember(ctx context.Context, m Member) (Member, error) {
	var username, teamID any
	if m.Username.Valid {
		m.Username.String = ir.NormalizeText(m.Username.String)
		username = m.Username.String
	}
	if m.TeamID.Valid {
		teamID = m.TeamID.Int64
	}

	q := QMembers
	insert := dsl.InsertInto(q).
		Value(q.Username, username).
		Value(q.Age, m.Age).
		Value(q.TeamID, teamID).
		Returning("member_id").
		Build()

	id, err := r.session().InsertReturning(ctx, insert)
	if err != nil {
		return Member{}, fmt.Errorf("save member: %w", err)
	}
	m.ID = id
	m.Team = nil
	return m, nil
}

// ChangeTeam moves a member to another team. The relation lives only on
// the member row, so no team-side state needs updating.
func (r *Repository) ChangeTeam(ctx context.Context, memberID, teamID int64) error {
	q := QMembers
	update := dsl.Update(q).
		Set(q.TeamID, teamID).
		Where(q.ID.Eq(memberID)).
		Build()

	affected, err := r.session().Execute(ctx, update)
	if err != nil {
		return fmt.Errorf("change team: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("change team: member %d: %w", memberID, store.ErrNotFound)
	}
	return nil
}

// FindByID returns one member or store.ErrNotFound.
func (r *Repository) FindByID(ctx context.Context, id int64) (Member, error) {
	q := QMembers
	sel := dsl.SelectFrom(q).Where(q.ID.Eq(id)).Build()
	m, err := store.FetchOne[Member](ctx, r.session(), sel)
	if err != nil {
		return Member{}, fmt.Errorf("find member %d: %w", id, err)
	}
	return m, nil
}

// FindAll returns every member in id order.
func (r *Repository) FindAll(ctx context.Context) ([]Member, error) {
	return store.Fetch[Member](ctx, r.session(), dsl.SelectFrom(QMembers).Build())
}

// FindByUsername returns the members with exactly this username.
func (r *Repository) FindByUsername(ctx context.Context, username string) ([]Member, error) {
	q := QMembers
	sel := dsl.SelectFrom(q).Where(q.Username.Eq(username)).Build()
	return store.Fetch[Member](ctx, r.session(), sel)
}

// TeamMembers returns the members of one team.
func (r *Repository) TeamMembers(ctx context.Context, teamID int64) ([]Member, error) {
	q := QMembers
	sel := dsl.SelectFrom(q).Where(q.TeamID.Eq(teamID)).Build()
	return store.Fetch[Member](ctx, r.session(), sel)
}

// FindTeams returns every team in id order.
func (r *Repository) FindTeams(ctx context.Context) ([]Team, error) {
	return store.Fetch[Team](ctx, r.session(), dsl.SelectFrom(QTeams).Build())
}

// FindWithTeam returns members fetch-joined with their team. Members
// without a team are excluded.
func (r *Repository) FindWithTeam(ctx context.Context) ([]Member, error) {
	m, t := QMembers, QTeams
	sel := dsl.SelectFrom(m).
		Join(t).On(m.TeamID.EqExpr(t.ID)).
		FetchJoin().
		Build()
	return store.Fetch[Member](ctx, r.session(), sel)
}

// searchQuery is the member-with-team projection filtered by cond.
func searchQuery(cond SearchCondition) *dsl.SelectBuilder {
	m, t := QMembers, QTeams
	return dsl.Select(
		m.ID,
		m.Username,
		m.Age,
		t.ID.As("team_id"),
		t.Name.As("team_name"),
	).
		From(m).
		LeftJoin(t).On(m.TeamID.EqExpr(t.ID)).
		Where(SearchPredicate(cond)).
		OrderBy(m.ID.Asc())
}

// Search returns every member matching cond, with its team, in member id
// order.
func (r *Repository) Search(ctx context.Context, cond SearchCondition) ([]MemberTeamDto, error) {
	return store.Fetch[MemberTeamDto](ctx, r.session(), searchQuery(cond).Build())
}

// ExplainSearch compiles the search for cond without running it.
func (r *Repository) ExplainSearch(cond SearchCondition, page Pageable) (store.Statement, error) {
	sel := searchQuery(cond).Offset(page.Offset).Limit(page.Limit).Build()
	return r.session().Compile(sel)
}

// SearchPageSimple returns one page of search results. The total always
// comes from a separate count query.
func (r *Repository) SearchPageSimple(ctx context.Context, cond SearchCondition, page Pageable) (Page[MemberTeamDto], error) {
	sel := searchQuery(cond).Offset(page.Offset).Limit(page.Limit).Build()
	res, err := store.FetchResults[MemberTeamDto](ctx, r.session(), sel)
	if err != nil {
		return Page[MemberTeamDto]{}, fmt.Errorf("search page: %w", err)
	}
	return Page[MemberTeamDto]{
		Content: res.Items,
		Total:   res.Total,
		Offset:  res.Offset,
		Limit:   res.Limit,
	}, nil
}

// SearchPageComplex returns one page of search results, skipping the count
// query when the content alone determines the total: a first page shorter
// than the limit, or any non-empty page shorter than the limit (the last
// page).
func (r *Repository) SearchPageComplex(ctx context.Context, cond SearchCondition, page Pageable) (Page[MemberTeamDto], error) {
	sess := r.session()
	sel := searchQuery(cond).Offset(page.Offset).Limit(page.Limit).Build()

	content, err := store.Fetch[MemberTeamDto](ctx, sess, sel)
	if err != nil {
		return Page[MemberTeamDto]{}, fmt.Errorf("search page: %w", err)
	}

	total, counted := totalFromContent(page, len(content))
	if !counted {
		total, err = sess.FetchCount(ctx, sel)
		if err != nil {
			return Page[MemberTeamDto]{}, fmt.Errorf("search page: %w", err)
		}
	}
	return Page[MemberTeamDto]{
		Content: content,
		Total:   total,
		Offset:  page.Offset,
		Limit:   page.Limit,
	}, nil
}

// totalFromContent derives the total without a count query when possible.
func totalFromContent(page Pageable, n int) (int64, bool) {
	short := page.Limit == 0 || int64(n) < page.Limit
	if page.Offset == 0 && short {
		return int64(n), true
	}
	if n > 0 && short {
		return page.Offset + int64(n), true
	}
	return 0, false
}

// TeamAgeStats returns the average member age of every team with members,
// ordered by team name then id. Teams that share a name stay separate rows.
func (r *Repository) TeamAgeStats(ctx context.Context) ([]TeamAgeStat, error) {
	m, t := QMembers, QTeams
	sel := dsl.Select(t.Name.As("team_name"), m.Age.Avg().As("avg_age")).
		From(m).
		Join(t).On(m.TeamID.EqExpr(t.ID)).
		GroupBy(t.Name, t.ID).
		Build()
	return store.Fetch[TeamAgeStat](ctx, r.session(), sel)
}

// AgeSummary aggregates count, sum, average, maximum and minimum age over
// all members.
func (r *Repository) AgeSummary(ctx context.Context) (AgeSummary, error) {
	m := QMembers
	sel := dsl.Select(
		dsl.Count().As("count"),
		m.Age.Sum().As("sum"),
		m.Age.Avg().As("avg"),
		m.Age.Max().As("max"),
		m.Age.Min().As("min"),
	).From(m).Build()

	tuples, err := r.session().FetchTuples(ctx, sel)
	if err != nil {
		return AgeSummary{}, fmt.Errorf("age summary: %w", err)
	}
	if len(tuples) != 1 {
		return AgeSummary{}, fmt.Errorf("age summary: expected one row, got %d", len(tuples))
	}
	return summaryFromTuple(tuples[0])
}

func summaryFromTuple(tup store.Tuple) (AgeSummary, error) {
	var (
		s   AgeSummary
		err error
	)
	if s.Count, err = tup.Int64("count"); err != nil {
		return AgeSummary{}, fmt.Errorf("age summary: %w", err)
	}
	if s.Sum, err = tup.Int64("sum"); err != nil {
		return AgeSummary{}, fmt.Errorf("age summary: %w", err)
	}
	if s.Avg, err = tup.Float64("avg"); err != nil {
		return AgeSummary{}, fmt.Errorf("age summary: %w", err)
	}
	if s.Max, err = tup.Int64("max"); err != nil {
		return AgeSummary{}, fmt.Errorf("age summary: %w", err)
	}
	if s.Min, err = tup.Int64("min"); err != nil {
		return AgeSummary{}, fmt.Errorf("age summary: %w", err)
	}
	return s, nil
}

// MemberDtos projects every member into a MemberDto.
func (r *Repository) MemberDtos(ctx context.Context) ([]MemberDto, error) {
	m := QMembers
	sel := dsl.Select(m.Username, m.Age).From(m).Build()
	return store.Fetch[MemberDto](ctx, r.session(), sel)
}

// UserDtos projects every member's username as name, paired with the
// highest age of all members.
func (r *Repository) UserDtos(ctx context.Context) ([]UserDto, error) {
	m, ms := QMembers, NewQMember("ms")
	sel := dsl.Select(
		m.Username.As("name"),
		dsl.Sub(dsl.Select(ms.Age.Max()).From(ms)).As("age"),
	).From(m).Build()
	return store.Fetch[UserDto](ctx, r.session(), sel)
}

// RenameYoungerThan sets the username of every member younger than age.
func (r *Repository) RenameYoungerThan(ctx context.Context, age int64, username string) (int64, error) {
	q := QMembers
	update := dsl.Update(q).
		Set(q.Username, ir.NormalizeText(username)).
		Where(q.Age.Lt(age)).
		Build()

	n, err := r.session().Execute(ctx, update)
	if err != nil {
		return 0, fmt.Errorf("rename younger than %d: %w", age, err)
	}
	return n, nil
}

// AddAge adds delta (possibly negative) to every member's age.
func (r *Repository) AddAge(ctx context.Context, delta int64) (int64, error) {
	q := QMembers
	update := dsl.Update(q).Set(q.Age, q.Age.Add(delta)).Build()

	n, err := r.session().Execute(ctx, update)
	if err != nil {
		return 0, fmt.Errorf("add age: %w", err)
	}
	return n, nil
}

// DeleteOlderThan deletes every member older than age.
func (r *Repository) DeleteOlderThan(ctx context.Context, age int64) (int64, error) {
	q := QMembers
	del := dsl.DeleteFrom(q).Where(q.Age.Gt(age)).Build()

	n, err := r.session().Execute(ctx, del)
	if err != nil {
		return 0, fmt.Errorf("delete older than %d: %w", age, err)
	}
	return n, nil
}

// NewMember is a convenience constructor for SaveMember input.
func NewMember(username string, age int, teamID int64) Member {
	m := Member{
		Username: sql.NullString{String: username, Valid: true},
		Age:      age,
	}
	if teamID != 0 {
		m.TeamID = sql.NullInt64{Int64: teamID, Valid: true}
	}
	return m
}

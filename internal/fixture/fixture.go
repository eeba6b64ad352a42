package fixture

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"

	"github.com/roach88/qdsl/internal/ir"
	"github.com/roach88/qdsl/internal/member"
)

//go:embed default.yaml
var defaultYAML []byte

// Error codes carried by LoadError.
const (
	ErrCodeReadFailed  = "E201" // File could not be read
	ErrCodeFormat      = "E202" // Unsupported file extension
	ErrCodeParseFailed = "E203" // YAML or CUE syntax/build error
	ErrCodeEmptyName   = "E210" // Team without a name
	ErrCodeNegativeAge = "E211" // Member with a negative age
	ErrCodeDuplicate   = "E212" // Two teams with the same name
)

// Dataset is a set of teams with their members, plus teamless members.
type Dataset struct {
	Teams   []TeamData   `yaml:"teams" json:"teams"`
	Members []MemberData `yaml:"members,omitempty" json:"members,omitempty"`
}

// TeamData is one team and the members that belong to it.
type TeamData struct {
	Name    string       `yaml:"name" json:"name"`
	Members []MemberData `yaml:"members,omitempty" json:"members,omitempty"`
}

// MemberData is one member. A nil Username stores NULL.
type MemberData struct {
	Username *string `yaml:"username,omitempty" json:"username,omitempty"`
	Age      int     `yaml:"age" json:"age"`
}

// LoadError describes a dataset that could not be loaded or is invalid.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Default returns the canonical dataset:
// teamA{member1 10, member2 20}, teamB{member3 30, member4 40}.
func Default() *Dataset {
	ds, err := ParseYAML(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("fixture: embedded default dataset: %v", err))
	}
	return ds
}

// Load reads a dataset file, choosing the format by extension, and
// validates it. Every problem found is returned.
func Load(path string) (*Dataset, []error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeReadFailed, Message: fmt.Sprintf("reading dataset: %v", err)}}
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		ds, err := ParseYAML(data)
		if err != nil {
			return nil, []error{err}
		}
		if errs := Validate(ds); len(errs) > 0 {
			return nil, errs
		}
		return ds, nil
	case ".cue":
		return LoadCUE(data, path)
	default:
		return nil, []error{&LoadError{Code: ErrCodeFormat, Message: fmt.Sprintf("unsupported dataset format %q (want .yaml, .yml or .cue)", filepath.Ext(path))}}
	}
}

// ParseYAML decodes a YAML dataset. Unknown fields are rejected so typos
// like "member:" surface as errors.
func ParseYAML(data []byte) (*Dataset, error) {
	var ds Dataset
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ds); err != nil {
		return nil, &LoadError{Code: ErrCodeParseFailed, Message: fmt.Sprintf("parsing YAML: %v", err)}
	}
	return &ds, nil
}

// LoadCUE compiles and decodes a CUE dataset and validates it. Problems
// carry the CUE source position of the offending field.
func LoadCUE(data []byte, filename string) (*Dataset, []error) {
	value := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, []error{cueLoadError(err)}
	}

	var ds Dataset
	if err := value.Decode(&ds); err != nil {
		return nil, []error{cueLoadError(err)}
	}

	errs := validate(&ds, func(path string) token.Pos {
		return value.LookupPath(cue.ParsePath(path)).Pos()
	})
	if len(errs) > 0 {
		return nil, errs
	}
	return &ds, nil
}

func cueLoadError(err error) *LoadError {
	le := &LoadError{Code: ErrCodeParseFailed, Message: err.Error()}
	if errs := cueerrors.Errors(err); len(errs) > 0 {
		le.Message = errs[0].Error()
		if positions := cueerrors.Positions(errs[0]); len(positions) > 0 {
			le.Pos = positions[0]
		}
	}
	return le
}

// Validate checks that every team has a unique, non-empty name and every
// age is non-negative. Names are compared after NFC normalization.
func Validate(ds *Dataset) []error {
	return validate(ds, nil)
}

func validate(ds *Dataset, posOf func(path string) token.Pos) []error {
	var errs []error
	add := func(code, path, msg string) {
		le := &LoadError{Code: code, Message: path + ": " + msg}
		if posOf != nil {
			le.Pos = posOf(path)
		}
		errs = append(errs, le)
	}

	seen := make(map[string]int, len(ds.Teams))
	for i, team := range ds.Teams {
		path := fmt.Sprintf("teams[%d]", i)
		name := ir.NormalizeText(team.Name)
		switch {
		case name == "":
			add(ErrCodeEmptyName, path+".name", "team name is empty")
		case seen[name] > 0:
			add(ErrCodeDuplicate, path+".name", fmt.Sprintf("team %q already defined at teams[%d]", name, seen[name]-1))
		default:
			seen[name] = i + 1
		}
		for j, m := range team.Members {
			if m.Age < 0 {
				add(ErrCodeNegativeAge, fmt.Sprintf("%s.members[%d].age", path, j), fmt.Sprintf("negative age %d", m.Age))
			}
		}
	}
	for j, m := range ds.Members {
		if m.Age < 0 {
			add(ErrCodeNegativeAge, fmt.Sprintf("members[%d].age", j), fmt.Sprintf("negative age %d", m.Age))
		}
	}
	return errs
}

// ApplyResult counts the rows Apply wrote.
type ApplyResult struct {
	Teams   int
	Members int
}

// Apply writes ds through repo in one transaction. Nothing is written when
// any insert fails.
func Apply(ctx context.Context, repo *member.Repository, ds *Dataset) (ApplyResult, error) {
	if errs := Validate(ds); len(errs) > 0 {
		return ApplyResult{}, fmt.Errorf("apply dataset: %w", errors.Join(errs...))
	}

	var res ApplyResult
	err := repo.InTx(ctx, func(tx *member.Repository) error {
		res = ApplyResult{}
		for _, td := range ds.Teams {
			team, err := tx.SaveTeam(ctx, td.Name)
			if err != nil {
				return err
			}
			res.Teams++
			for _, md := range td.Members {
				if _, err := tx.SaveMember(ctx, md.toMember(team.ID)); err != nil {
					return err
				}
				res.Members++
			}
		}
		for _, md := range ds.Members {
			if _, err := tx.SaveMember(ctx, md.toMember(0)); err != nil {
				return err
			}
			res.Members++
		}
		return nil
	})
	if err != nil {
		return ApplyResult{}, fmt.Errorf("apply dataset: %w", err)
	}
	return res, nil
}

func (md MemberData) toMember(teamID int64) member.Member {
	m := member.Member{Age: md.Age}
	if md.Username != nil {
		m.Username = sql.NullString{String: *md.Username, Valid: true}
	}
	if teamID != 0 {
		m.TeamID = sql.NullInt64{Int64: teamID, Valid: true}
	}
	return m
}

// Hash fingerprints the dataset content (see ir.DatasetHash). Equal
// datasets hash equally whatever file format they came from.
func Hash(ds *Dataset) (string, error) {
	return ir.DatasetHash(ds.toIR())
}

func (ds *Dataset) toIR() ir.IRObject {
	teams := make(ir.IRArray, 0, len(ds.Teams))
	for _, td := range ds.Teams {
		teams = append(teams, ir.IRObject{
			"name":    ir.IRString(td.Name),
			"members": membersToIR(td.Members),
		})
	}
	return ir.IRObject{
		"teams":   teams,
		"members": membersToIR(ds.Members),
	}
}

func membersToIR(ms []MemberData) ir.IRArray {
	out := make(ir.IRArray, 0, len(ms))
	for _, m := range ms {
		var username ir.IRValue = ir.IRNull{}
		if m.Username != nil {
			username = ir.IRString(*m.Username)
		}
		out = append(out, ir.IRObject{
			"username": username,
			"age":      ir.IRInt(m.Age),
		})
	}
	return out
}

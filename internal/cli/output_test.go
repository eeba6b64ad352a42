package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_Success(t *testing.T) {
	payload := BulkResult{Operation: "add-age", Affected: 4}
	render := func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%d row(s)\n", payload.Affected)
		return err
	}

	testCases := []struct {
		name   string
		format string
		text   func(io.Writer) error
		want   string
	}{
		{"json ignores text renderer", "json", render, `{"status":"ok","data":{"operation":"add-age","affected":4}}` + "\n"},
		{"text uses renderer", "text", render, "4 row(s)\n"},
		{"text without renderer prints data", "text", nil, "{add-age 4}\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: tc.format, Writer: buf}
			require.NoError(t, f.Success(payload, tc.text))
			assert.Equal(t, tc.want, buf.String())
		})
	}
}

func TestOutputFormatter_SuccessRendererError(t *testing.T) {
	f := &OutputFormatter{Format: "text", Writer: &bytes.Buffer{}}
	err := f.Success(nil, func(io.Writer) error { return assert.AnError })
	assert.ErrorIs(t, err, assert.AnError)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: buf}

	details := []DatasetIssue{{Code: "E212", Message: "teams[2].name: duplicate", Line: 4, Column: 9}}
	require.NoError(t, f.Error(ErrCodeDataset, "invalid dataset people.cue", details))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeDataset, resp.Error.Code)
	assert.Equal(t, "invalid dataset people.cue", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
	assert.Nil(t, resp.Data)
}

func TestOutputFormatter_TextError(t *testing.T) {
	testCases := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			f := &OutputFormatter{Format: "text", Writer: buf, Verbose: tc.verbose}

			require.NoError(t, f.Error(ErrCodeQuery, "search failed", map[string]string{"table": "member"}))
			assert.Contains(t, buf.String(), "Error [E005]: search failed")
			if tc.wantDetails {
				assert.Contains(t, buf.String(), "Details: map[table:member]")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_Fail(t *testing.T) {
	buf := &bytes.Buffer{}
	f := &OutputFormatter{Format: "text", Writer: buf}

	err := f.Fail(ExitCommandError, ErrCodeDatabase, "failed to open database", assert.AnError)
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeDatabase+": failed to open database")
	assert.Contains(t, buf.String(), "Error [E003]: failed to open database: "+assert.AnError.Error())
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	testCases := []struct {
		name      string
		verbose   bool
		errWriter bool
	}{
		{"disabled", false, false},
		{"enabled, falls back to Writer", true, false},
		{"enabled, uses ErrWriter", true, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, diag := &bytes.Buffer{}, &bytes.Buffer{}
			f := &OutputFormatter{Format: "json", Writer: out, Verbose: tc.verbose}
			if tc.errWriter {
				f.ErrWriter = diag
			}

			f.VerboseLog("Opening %s", "members.db")

			switch {
			case !tc.verbose:
				assert.Empty(t, out.String())
				assert.Empty(t, diag.String())
			case tc.errWriter:
				assert.Empty(t, out.String(), "diagnostics never corrupt JSON output")
				assert.Equal(t, "Opening members.db\n", diag.String())
			default:
				assert.Equal(t, "Opening members.db\n", out.String())
			}
		})
	}
}

func TestExitError(t *testing.T) {
	plain := NewExitError(ExitFailure, "dataset rejected")
	assert.Equal(t, "dataset rejected", plain.Error())
	assert.Nil(t, plain.Unwrap())

	wrapped := WrapExitError(ExitCommandError, "E003: failed to open database", assert.AnError)
	assert.Equal(t, "E003: failed to open database: "+assert.AnError.Error(), wrapped.Error())
	assert.ErrorIs(t, fmt.Errorf("run: %w", wrapped), assert.AnError)
	assert.Equal(t, ExitCommandError, GetExitCode(fmt.Errorf("run: %w", wrapped)))
}

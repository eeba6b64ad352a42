package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with args and returns stdout.
// Logs go to a discarded buffer.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// createTestDB returns the path of a fresh database seeded with the
// built-in dataset.
func createTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	_, err := executeCommand(t, "--db", path, "seed")
	require.NoError(t, err)
	return path
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "qdsl", cmd.Use)
	assert.Contains(t, cmd.Long, "QDSL_")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"migrate", "seed", "validate", "search", "explain", "stats", "bulk"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "c", configFlag.Shorthand)

	for _, name := range []string{"db", "driver"} {
		flag := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Equal(t, "", flag.DefValue, "unset %s falls back to config", name)
	}
}

func TestSearchCommandFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"search", "explain"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			for _, flag := range []string{"username", "team", "age-goe", "age-loe", "offset", "limit"} {
				assert.NotNil(t, sub.Flags().Lookup(flag), flag)
			}
		})
	}

	search, _, err := cmd.Find([]string{"search"})
	require.NoError(t, err)
	countFlag := search.Flags().Lookup("count")
	require.NotNil(t, countFlag)
	assert.Equal(t, CountComplex, countFlag.DefValue)
}

func TestBulkSubcommands(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"rename-younger", "add-age", "delete-older"} {
		sub, _, err := cmd.Find([]string{"bulk", name})
		require.NoError(t, err, name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	_, err := executeCommand(t, "--format", "invalid", "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigErrors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{"unknown driver flag", []string{"--driver", "oracle", "stats"}, `unknown driver "oracle"`},
		{"config typo", []string{"--config", filepath.Join("..", "config", "testdata", "typo.yaml"), "stats"}, "drvier"},
		{"missing config", []string{"--config", "nope.yaml", "stats"}, "open config"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := executeCommand(t, tc.args...)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, err.Error(), ErrCodeConfig)
			assert.Contains(t, out, "Error ["+ErrCodeConfig+"]")
			assert.Contains(t, out, tc.want)
		})
	}
}

func TestConfigFileAndEnv(t *testing.T) {
	path := createTestDB(t)
	t.Setenv("QDSL_DB_DSN", path)
	t.Setenv("QDSL_DB_STATEMENT_CACHE", "0")

	out, err := executeCommand(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "members: 4")
}

func TestDBFlagOverridesEnv(t *testing.T) {
	path := createTestDB(t)
	t.Setenv("QDSL_DB_DSN", filepath.Join(t.TempDir(), "other.db"))

	out, err := executeCommand(t, "--db", path, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "members: 4")
}

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeAppConfig writes a minimal application config and returns its path.
// Defaults fill in everything the file leaves out.
func writeAppConfig(t *testing.T, configDir, dataDir string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "review.yaml")
	content := "projects:\n" +
		"  config_dir: " + configDir + "\n" +
		"  data_dir: " + dataDir + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// execute runs the root command with the given args and returns its combined
// output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)

	assert.Equal(t, "review", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
	assert.Contains(t, cmd.Version, Version)
}

func TestNewRootCommand_Subcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"serve", "projects", "render", "validate"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}
}

func TestNewRootCommand_GlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	pf := cmd.PersistentFlags()

	for _, name := range []string{"config", "log-level", "output", "verbose", "no-color", "timeout", "server"} {
		assert.NotNil(t, pf.Lookup(name), "missing flag %q", name)
	}

	output := pf.Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "text", output.DefValue)
	assert.Equal(t, "o", output.Shorthand)

	verbose := pf.Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)
}

func TestRootCommand_Help(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "review")
	assert.Contains(t, out, "render")
}

func TestRootCommand_UnknownSubcommand(t *testing.T) {
	_, err := execute(t, "definitely-not-a-command")
	require.Error(t, err)
}

func TestPersistentPreRun_BuildsContext(t *testing.T) {
	cfgPath := writeAppConfig(t, t.TempDir(), t.TempDir())

	var got *CLIContext
	probe := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := GetCLIContext(cmd)
			got = ctx
			return err
		},
	}

	cmd := NewRootCommand()
	cmd.AddCommand(probe)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "--output", "json", "probe"})
	require.NoError(t, cmd.Execute())

	require.NotNil(t, got)
	assert.NotNil(t, got.Config)
	assert.NotNil(t, got.Logger)
	assert.Equal(t, "json", got.OutputFormat)
}

func TestGetCLIContext_NotInitialized(t *testing.T) {
	cmd := &cobra.Command{Use: "orphan"}
	_, err := GetCLIContext(cmd)
	require.Error(t, err)
}

func TestPrintResult_JSONFallback(t *testing.T) {
	// Without CLIContext, PrintResult falls back to JSON.
	cmd := &cobra.Command{Use: "orphan"}
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)

	require.NoError(t, PrintResult(cmd, map[string]int{"points": 3}))

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 3, decoded["points"])
}

func TestFormatTable(t *testing.T) {
	out := FormatTable(
		[]string{"NAME", "COUNT"},
		[][]string{{"alpha", "3"}, {"beta", "12"}},
	)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "alpha")
	assert.Contains(t, out, "12")

	assert.Empty(t, FormatTable(nil, nil))
}

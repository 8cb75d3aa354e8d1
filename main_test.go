package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	for _, args := range [][]string{
		{"serve"},
		{"events", "list"},
		{"pmf", "status"},
		{"pmf", "reset"},
		{"jira", "login"},
		{"jira", "refresh"},
		{"jira", "issue"},
		{"debug"},
		{"version"},
	} {
		found, _, err := rootCmd.Find(args)
		require.NoError(t, err, "%v", args)
		assert.Equal(t, args[len(args)-1], found.Name())
	}
}

func TestServeFlags(t *testing.T) {
	serve, _, err := rootCmd.Find([]string{"serve"})
	require.NoError(t, err)
	for _, name := range []string{"screen", "workspace", "issue", "target", "remote"} {
		assert.NotNil(t, serve.Flags().Lookup(name), name)
	}
	assert.Equal(t, "welcomeScreen", serve.Flags().Lookup("screen").DefValue)
}

func TestDebugCommand(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ATLAS_CONFIG_DIR", dir)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"debug"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})
	require.NoError(t, rootCmd.Execute())

	assert.Contains(t, out.String(), "Config: "+dir)
	assert.Contains(t, out.String(), `"branch_prefixes"`)
	assert.Contains(t, out.String(), "Database: ")
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"serve", "calc", "batch", "load-borders", "migrate", "jobs", "variables", "config"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "geovar", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)

	flag = serveCmd.Flags().Lookup("no-worker")
	require.NotNil(t, flag, "serve command should have --no-worker flag")
	assert.Equal(t, "false", flag.DefValue)
}

func TestCalcCommand_Flags(t *testing.T) {
	flag := calcCmd.Flags().Lookup("border-type")
	require.NotNil(t, flag, "calc command should have --border-type flag")
	assert.Equal(t, "sgg", flag.DefValue)

	flag = calcCmd.Flags().Lookup("format")
	require.NotNil(t, flag, "calc command should have --format flag")
	assert.Equal(t, "csv", flag.DefValue)
}

func TestBatchCommand_Flags(t *testing.T) {
	for _, name := range []string{"year", "buffer-size", "out-dir", "concurrency", "cp949"} {
		require.NotNil(t, batchCmd.Flags().Lookup(name), "batch command should have --%s flag", name)
	}
}

func TestLoadBordersCommand_Flags(t *testing.T) {
	for _, name := range []string{"dataset", "year", "shp", "replace"} {
		require.NotNil(t, loadBordersCmd.Flags().Lookup(name), "load-borders command should have --%s flag", name)
	}
}

func TestJobsCommand_HasSubcommands(t *testing.T) {
	cmds := jobsCmd.Commands()
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	for _, name := range []string{"list", "show"} {
		assert.True(t, names[name], "expected jobs subcommand %q not found", name)
	}
}

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"analyze", "serve"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "epv-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestAnalyzeCommand_Flags(t *testing.T) {
	tests := []struct {
		name string
		def  string
	}{
		{"rate", "0.1"},
		{"maint-sga", "0"},
		{"maint-rnd", "0"},
		{"format", "markdown"},
		{"out", ""},
	}
	for _, tt := range tests {
		flag := analyzeCmd.Flags().Lookup(tt.name)
		require.NotNil(t, flag, "analyze should have --%s flag", tt.name)
		assert.Equal(t, tt.def, flag.DefValue, tt.name)
	}
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

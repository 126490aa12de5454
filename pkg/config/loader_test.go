package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestEnvironmentName(t *testing.T) {
	tests := []struct {
		name     string
		primary  string
		fallback string
		want     string
	}{
		{name: "primary wins", primary: "staging", fallback: "production", want: "staging"},
		{name: "fallback when primary unset", primary: "", fallback: "production", want: "production"},
		{name: "default when both unset", primary: "", fallback: "", want: DefaultEnvironment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvironmentVar, tt.primary)
			t.Setenv(FallbackEnvironmentVar, tt.fallback)
			assert.Equal(t, tt.want, EnvironmentName())
		})
	}
}

func TestLoad_LayerPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvironmentVar, "staging")

	writeSettings(t, dir, BaseFileName, `
trace_switches:
  EntityFetch: "1"
connection_strings:
  Main: host=base
  Reporting: host=reports
`)
	writeSettings(t, dir, "settings.staging.yaml", `
connection_strings:
  Main: host=staging
runtime:
  driver: sqlite
`)

	settings, err := Load(dir)
	require.NoError(t, err)

	// The environment layer overrides per key and leaves the rest intact.
	assert.Equal(t, "host=staging", settings.ConnectionStrings["Main"])
	assert.Equal(t, "host=reports", settings.ConnectionStrings["Reporting"])
	assert.Equal(t, "1", settings.TraceSwitches["EntityFetch"])
	require.NotNil(t, settings.Runtime)
	assert.Equal(t, "sqlite", settings.Runtime.Driver)
}

func TestLoad_AllLayersOptional(t *testing.T) {
	t.Setenv(EnvironmentVar, "staging")

	settings, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, settings.TraceSwitches)
	assert.Empty(t, settings.ConnectionStrings)
	assert.Nil(t, settings.Runtime)
	assert.Nil(t, settings.TraceListeners)
}

func TestLoad_MachineLayerWins(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvironmentVar, "staging")

	writeSettings(t, dir, BaseFileName, `
connection_strings:
  Main: host=base
`)
	writeSettings(t, dir, layerFileName(MachineName()), `
connection_strings:
  Main: host=thisbox
`)

	settings, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "host=thisbox", settings.ConnectionStrings["Main"])
}

func TestLoad_InvalidYAMLFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvironmentVar, "staging")
	writeSettings(t, dir, BaseFileName, "connection_strings: [not, a, map]")

	_, err := Load(dir)
	assert.Error(t, err)
}

func TestLoad_InvalidDriverFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvironmentVar, "staging")
	writeSettings(t, dir, BaseFileName, `
runtime:
  driver: oracle
`)

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	writeSettings(t, dir, "explicit.yaml", `
trace_switches:
  QueryEngine: "1"
trace_listeners:
  console: true
  file: /var/log/dal-trace.log
`)

	settings, err := LoadFile(filepath.Join(dir, "explicit.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "1", settings.TraceSwitches["QueryEngine"])
	require.NotNil(t, settings.TraceListeners)
	assert.True(t, settings.TraceListeners.Console)
	assert.False(t, settings.TraceListeners.Debug)
	assert.Equal(t, "/var/log/dal-trace.log", settings.TraceListeners.File)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

package runtime

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seasbee/go-dalx/pkg/config"
)

func strPtr(s string) *string { return &s }

func TestApply_TraceSwitches(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{
		TraceSwitches: map[string]string{
			"EntityFetch":         "2",
			QueryEngineSwitchName: "1",
			"BadValue":            "notanumber",
		},
	})

	level, ok := rt.TraceLevel("EntityFetch")
	require.True(t, ok)
	assert.Equal(t, 2, level)

	// The reserved switch is routed to the engine, never the registry.
	_, ok = rt.TraceLevel(QueryEngineSwitchName)
	assert.False(t, ok)
	assert.Equal(t, 1, rt.Engine().TraceLevel())

	// Non-numeric levels are skipped without failing the apply.
	_, ok = rt.TraceLevel("BadValue")
	assert.False(t, ok)

	assert.True(t, rt.TraceEnabled())
}

func TestApply_ZeroLevelDoesNotEnableTracing(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{
		TraceSwitches: map[string]string{"EntityFetch": "0"},
	})

	level, ok := rt.TraceLevel("EntityFetch")
	require.True(t, ok)
	assert.Equal(t, 0, level)
	assert.False(t, rt.TraceEnabled())
}

func TestApply_ConnectionStringsCarrySuffix(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{
		ConnectionStrings: map[string]string{"Main": "host=primary"},
	})

	value, ok := rt.ConnectionString("Main")
	require.True(t, ok)
	assert.Equal(t, "host=primary", value)
	assert.Equal(t, 1, rt.ConnectionStringCount())
}

func TestApply_RootConnectionStringsSuppressRuntimeFallback(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{
		ConnectionStrings: map[string]string{"Main": "host=root"},
		Runtime: &config.RuntimeSettings{
			ConnectionStrings: map[string]string{
				"Main":  "host=nested",
				"Other": "host=other",
			},
		},
	})

	value, ok := rt.ConnectionString("Main")
	require.True(t, ok)
	assert.Equal(t, "host=root", value)

	// The nested section is ignored entirely when the root section exists.
	_, ok = rt.ConnectionString("Other")
	assert.False(t, ok)
}

func TestApply_RuntimeConnectionStringsUsedWhenRootAbsent(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{
		Runtime: &config.RuntimeSettings{
			ConnectionStrings: map[string]string{"Main": "host=nested"},
		},
	})

	value, ok := rt.ConnectionString("Main")
	require.True(t, ok)
	assert.Equal(t, "host=nested", value)
}

func TestApply_QueryEngineDefaults(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{})

	engine := rt.Engine()
	assert.NotNil(t, engine.DriverFactory())
	assert.Equal(t, DefaultCompatibilityLevel, engine.CompatibilityLevel())
	assert.Equal(t, 0, engine.TraceLevel())
	assert.Equal(t, 0, engine.CatalogOverrideCount())
}

func TestApply_QueryEngineOverrides(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{
		Runtime: &config.RuntimeSettings{
			Driver:             "sqlite",
			CompatibilityLevel: 2022,
			CatalogOverrides: []config.CatalogOverride{
				{Catalog: "Northwind", Override: strPtr("northwind_test")},
				{Catalog: "Legacy", Override: nil},
				{Catalog: "", Override: strPtr("ignored")},
			},
		},
	})

	engine := rt.Engine()
	assert.Equal(t, 2022, engine.CompatibilityLevel())

	override, ok := engine.CatalogOverride("Northwind")
	require.True(t, ok)
	assert.Equal(t, "northwind_test", override)

	// A missing override value maps the catalog to the empty name.
	override, ok = engine.CatalogOverride("Legacy")
	require.True(t, ok)
	assert.Equal(t, "", override)

	// Entries without a catalog name are skipped.
	assert.Equal(t, 2, engine.CatalogOverrideCount())
}

func TestApply_ListenersUntouchedWithoutSection(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{
		TraceSwitches: map[string]string{"EntityFetch": "2"},
	})

	assert.Equal(t, 0, rt.Listeners().Len())
}

func TestApply_ListenersUntouchedWhenTracingDisabled(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{
		TraceListeners: &config.TraceListenerSettings{Console: true, Debug: true},
	})

	assert.Equal(t, 0, rt.Listeners().Len())
}

func TestApply_ListenersRebuiltWhenTracingEnabled(t *testing.T) {
	file := filepath.Join(t.TempDir(), "trace.log")

	rt := NewConfiguration(nil)
	settings := &config.Settings{
		TraceSwitches: map[string]string{"EntityFetch": "1"},
		TraceListeners: &config.TraceListenerSettings{
			Console: true,
			Debug:   true,
			File:    file,
		},
	}
	rt.Apply(settings)
	assert.Equal(t, 3, rt.Listeners().Len())

	// Re-applying replaces the set instead of accumulating duplicates.
	rt.Apply(settings)
	assert.Equal(t, 3, rt.Listeners().Len())
}

func TestApply_FileListenerOnlyWhenNamed(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{
		TraceSwitches:  map[string]string{"EntityFetch": "1"},
		TraceListeners: &config.TraceListenerSettings{Console: true},
	})

	assert.Equal(t, 1, rt.Listeners().Len())
}

func TestApply_FileListenerOpenFailureLeavesPartialSet(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(&config.Settings{
		TraceSwitches: map[string]string{"EntityFetch": "1"},
		TraceListeners: &config.TraceListenerSettings{
			Console: true,
			File:    filepath.Join(t.TempDir(), "missing", "nested", "trace.log"),
		},
	})

	// The console listener was added before the file open failed.
	assert.Equal(t, 1, rt.Listeners().Len())
}

func TestApply_NilSettingsIsNoOp(t *testing.T) {
	rt := NewConfiguration(nil)
	rt.Apply(nil)

	assert.False(t, rt.TraceEnabled())
	assert.Equal(t, 0, rt.ConnectionStringCount())
	assert.Nil(t, rt.Engine().DriverFactory())
}

func TestApply_Idempotent(t *testing.T) {
	settings := &config.Settings{
		TraceSwitches:     map[string]string{"EntityFetch": "2"},
		ConnectionStrings: map[string]string{"Main": "host=primary"},
		Runtime: &config.RuntimeSettings{
			Driver: "mysql",
			CatalogOverrides: []config.CatalogOverride{
				{Catalog: "Northwind", Override: strPtr("nw")},
			},
		},
	}

	rt := NewConfiguration(nil)
	rt.Apply(settings)
	rt.Apply(settings)

	assert.Equal(t, 1, rt.ConnectionStringCount())
	assert.Equal(t, 1, rt.Engine().CatalogOverrideCount())
	level, _ := rt.TraceLevel("EntityFetch")
	assert.Equal(t, 2, level)
}

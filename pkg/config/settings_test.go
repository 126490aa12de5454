package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{name: "empty document", settings: Settings{}},
		{name: "postgres driver", settings: Settings{Runtime: &RuntimeSettings{Driver: "postgres"}}},
		{name: "empty driver", settings: Settings{Runtime: &RuntimeSettings{}}},
		{name: "unknown driver", settings: Settings{Runtime: &RuntimeSettings{Driver: "oracle"}}, wantErr: true},
		{name: "negative compatibility level", settings: Settings{Runtime: &RuntimeSettings{CompatibilityLevel: -1}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSettings_MergeMapsPerKey(t *testing.T) {
	base := &Settings{
		TraceSwitches:     map[string]string{"EntityFetch": "1", "Linq": "2"},
		ConnectionStrings: map[string]string{"Main": "host=base"},
	}
	base.Merge(&Settings{
		TraceSwitches:     map[string]string{"EntityFetch": "3"},
		ConnectionStrings: map[string]string{"Replica": "host=replica"},
	})

	assert.Equal(t, "3", base.TraceSwitches["EntityFetch"])
	assert.Equal(t, "2", base.TraceSwitches["Linq"])
	assert.Equal(t, "host=base", base.ConnectionStrings["Main"])
	assert.Equal(t, "host=replica", base.ConnectionStrings["Replica"])
}

func TestSettings_MergeRuntimeSection(t *testing.T) {
	base := &Settings{
		Runtime: &RuntimeSettings{
			Driver:             "postgres",
			CompatibilityLevel: 2019,
			ConnectionStrings:  map[string]string{"Main": "host=base"},
		},
	}
	base.Merge(&Settings{
		Runtime: &RuntimeSettings{
			Driver: "mysql",
			CatalogOverrides: []CatalogOverride{
				{Catalog: "Northwind"},
			},
		},
	})

	require.NotNil(t, base.Runtime)
	assert.Equal(t, "mysql", base.Runtime.Driver)
	assert.Equal(t, 2019, base.Runtime.CompatibilityLevel)
	assert.Equal(t, "host=base", base.Runtime.ConnectionStrings["Main"])
	require.Len(t, base.Runtime.CatalogOverrides, 1)
}

func TestSettings_MergeNilAndAbsentSections(t *testing.T) {
	base := &Settings{
		TraceListeners: &TraceListenerSettings{Console: true},
	}

	base.Merge(nil)
	require.NotNil(t, base.TraceListeners)
	assert.True(t, base.TraceListeners.Console)

	// An absent listener section leaves the existing one alone; a present one
	// replaces it wholesale.
	base.Merge(&Settings{})
	assert.True(t, base.TraceListeners.Console)

	base.Merge(&Settings{TraceListeners: &TraceListenerSettings{Debug: true}})
	assert.False(t, base.TraceListeners.Console)
	assert.True(t, base.TraceListeners.Debug)
}

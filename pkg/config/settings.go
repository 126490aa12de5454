package config

import (
	"fmt"
)

// Settings represents the hierarchical configuration document consumed by the
// runtime configuration applier. All sections are optional; a missing section
// means "nothing to configure" rather than an error.
type Settings struct {
	// TraceSwitches maps a switch name to an integer verbosity level, kept as
	// the raw string so malformed values can be skipped leniently at apply
	// time instead of failing the whole load.
	TraceSwitches map[string]string `yaml:"trace_switches" json:"trace_switches"`

	// ConnectionStrings is the root-level named connection string section.
	// When present it takes precedence over the nested runtime section.
	ConnectionStrings map[string]string `yaml:"connection_strings" json:"connection_strings"`

	// Runtime configures the query engine descriptor.
	Runtime *RuntimeSettings `yaml:"runtime" json:"runtime"`

	// TraceListeners configures diagnostic output targets. A nil section
	// leaves existing listener registrations untouched.
	TraceListeners *TraceListenerSettings `yaml:"trace_listeners" json:"trace_listeners"`
}

// RuntimeSettings represents the query-engine section of the settings document
type RuntimeSettings struct {
	// Driver selects the database driver factory: postgres, mysql or sqlite.
	Driver string `yaml:"driver" json:"driver"`

	// CompatibilityLevel overrides the engine's default SQL compatibility level.
	CompatibilityLevel int `yaml:"compatibility_level" json:"compatibility_level"`

	// ConnectionStrings is the fallback connection string section, consulted
	// only when the root-level section is absent.
	ConnectionStrings map[string]string `yaml:"connection_strings" json:"connection_strings"`

	// CatalogOverrides remaps catalog names at SQL generation time.
	CatalogOverrides []CatalogOverride `yaml:"catalog_overrides" json:"catalog_overrides"`
}

// CatalogOverride maps a catalog name to its override. A nil Override is
// applied as the empty string; an entry with an empty Catalog is skipped.
type CatalogOverride struct {
	Catalog  string  `yaml:"catalog" json:"catalog"`
	Override *string `yaml:"override" json:"override"`
}

// TraceListenerSettings represents the trace listener section
type TraceListenerSettings struct {
	Console bool   `yaml:"console" json:"console"`
	Debug   bool   `yaml:"debug" json:"debug"`
	File    string `yaml:"file" json:"file"`
}

// DefaultSettings returns an empty settings document
func DefaultSettings() *Settings {
	return &Settings{}
}

// Validate validates the Settings
func (s *Settings) Validate() error {
	if s.Runtime != nil {
		switch s.Runtime.Driver {
		case "", "postgres", "mysql", "sqlite":
		default:
			return fmt.Errorf("unsupported driver: %s", s.Runtime.Driver)
		}
		if s.Runtime.CompatibilityLevel < 0 {
			return fmt.Errorf("compatibility_level cannot be negative, got %d", s.Runtime.CompatibilityLevel)
		}
	}
	return nil
}

// Merge overlays other onto s, last-applied-wins per key. Sections and map
// entries present in other replace or extend those in s; absent ones leave s
// unchanged.
func (s *Settings) Merge(other *Settings) {
	if other == nil {
		return
	}

	if len(other.TraceSwitches) > 0 {
		if s.TraceSwitches == nil {
			s.TraceSwitches = make(map[string]string, len(other.TraceSwitches))
		}
		for name, level := range other.TraceSwitches {
			s.TraceSwitches[name] = level
		}
	}

	if len(other.ConnectionStrings) > 0 {
		if s.ConnectionStrings == nil {
			s.ConnectionStrings = make(map[string]string, len(other.ConnectionStrings))
		}
		for name, value := range other.ConnectionStrings {
			s.ConnectionStrings[name] = value
		}
	}

	if other.Runtime != nil {
		if s.Runtime == nil {
			s.Runtime = &RuntimeSettings{}
		}
		if other.Runtime.Driver != "" {
			s.Runtime.Driver = other.Runtime.Driver
		}
		if other.Runtime.CompatibilityLevel != 0 {
			s.Runtime.CompatibilityLevel = other.Runtime.CompatibilityLevel
		}
		if len(other.Runtime.ConnectionStrings) > 0 {
			if s.Runtime.ConnectionStrings == nil {
				s.Runtime.ConnectionStrings = make(map[string]string, len(other.Runtime.ConnectionStrings))
			}
			for name, value := range other.Runtime.ConnectionStrings {
				s.Runtime.ConnectionStrings[name] = value
			}
		}
		if len(other.Runtime.CatalogOverrides) > 0 {
			s.Runtime.CatalogOverrides = other.Runtime.CatalogOverrides
		}
	}

	if other.TraceListeners != nil {
		s.TraceListeners = other.TraceListeners
	}
}

package runtime

import (
	"context"
	"strconv"

	"github.com/seasbee/go-dalx/pkg/config"
	"github.com/seasbee/go-dalx/pkg/logging"
)

// Apply translates a settings snapshot into this configuration context. It is
// a startup-time procedure: call it once after loading settings. Applying the
// same document twice is idempotent in effect.
//
// Malformed trace levels and catalog overrides without a catalog name are
// skipped silently; a missing section means nothing to configure.
func (c *Configuration) Apply(settings *config.Settings) {
	if settings == nil {
		return
	}

	c.applyTraceSwitches(settings)
	c.applyConnectionStrings(settings)
	c.applyQueryEngine(settings)
	c.applyTraceListeners(settings)
}

func (c *Configuration) applyTraceSwitches(settings *config.Settings) {
	ctx := context.Background()

	for name, raw := range settings.TraceSwitches {
		if name == QueryEngineSwitchName {
			// Routed to the engine's own trace level, not the switch registry.
			continue
		}

		level, err := strconv.Atoi(raw)
		if err != nil {
			c.logger.Debug(ctx, "Skipping trace switch with non-numeric level",
				logging.String("switch", name),
				logging.String("value", raw))
			continue
		}

		c.SetTraceLevel(name, level)
		if level > 0 {
			c.mu.Lock()
			c.traceEnabled = true
			c.mu.Unlock()
		}
	}
}

func (c *Configuration) applyConnectionStrings(settings *config.Settings) {
	section := settings.ConnectionStrings
	if section == nil && settings.Runtime != nil {
		section = settings.Runtime.ConnectionStrings
	}

	for name, value := range section {
		c.AddConnectionString(name, value)
	}
}

func (c *Configuration) applyQueryEngine(settings *config.Settings) {
	engine := c.Engine()

	driver := ""
	if settings.Runtime != nil {
		driver = settings.Runtime.Driver
	}
	engine.SetDriverFactory(DriverFactoryFor(driver))

	level := DefaultCompatibilityLevel
	if settings.Runtime != nil && settings.Runtime.CompatibilityLevel != 0 {
		level = settings.Runtime.CompatibilityLevel
	}
	engine.SetCompatibilityLevel(level)

	if raw, ok := settings.TraceSwitches[QueryEngineSwitchName]; ok {
		if traceLevel, err := strconv.Atoi(raw); err == nil {
			engine.SetTraceLevel(traceLevel)
		} else {
			c.logger.Debug(context.Background(), "Skipping query engine trace switch with non-numeric level",
				logging.String("value", raw))
		}
	}

	if settings.Runtime == nil {
		return
	}
	for _, override := range settings.Runtime.CatalogOverrides {
		if override.Catalog == "" {
			continue
		}
		value := ""
		if override.Override != nil {
			value = *override.Override
		}
		engine.SetCatalogOverride(override.Catalog, value)
	}
}

func (c *Configuration) applyTraceListeners(settings *config.Settings) {
	// Ship no listener changes unless someone asked for tracing.
	if !c.TraceEnabled() || settings.TraceListeners == nil {
		return
	}

	ctx := context.Background()
	listeners := c.Listeners()
	listeners.Clear()

	section := settings.TraceListeners
	if section.Console {
		listeners.Add(logging.NewConsoleLogger(logging.LogLevelDebug))
	}
	if section.Debug {
		listeners.Add(logging.NewDebugLogger(logging.LogLevelDebug))
	}
	if section.File != "" {
		fileLogger, err := logging.NewFileLogger(logging.LogLevelDebug, section.File)
		if err != nil {
			c.logger.Warn(ctx, "Failed to open trace listener file",
				logging.String("file", section.File),
				logging.ErrorField("error", err))
			return
		}
		listeners.Add(fileLogger)
	}
}

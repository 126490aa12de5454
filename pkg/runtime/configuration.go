// Package runtime holds the data access runtime configuration: trace
// switches, named connection strings, the query engine descriptor and the
// trace listener set. A Configuration is an explicit context object
// constructed once at startup and passed to whatever consumes it; two
// independent Configurations can coexist in one process.
package runtime

import (
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seasbee/go-dalx/pkg/logging"
)

const (
	// ConnectionStringSuffix is appended to every registered connection
	// string name.
	ConnectionStringSuffix = ".connectionString"

	// QueryEngineSwitchName is the reserved trace switch routed to the query
	// engine's own trace level instead of the generic switch registry.
	QueryEngineSwitchName = "QueryEngine"

	// DefaultCompatibilityLevel is the SQL compatibility level attached to a
	// query engine descriptor when the settings document does not override it.
	DefaultCompatibilityLevel = 2019
)

// DriverFactory produces a gorm dialector for a connection string.
type DriverFactory func(dsn string) gorm.Dialector

// DriverFactoryFor returns the driver factory for the named driver. An empty
// name selects the default postgres factory.
func DriverFactoryFor(driver string) DriverFactory {
	switch driver {
	case "mysql":
		return func(dsn string) gorm.Dialector { return mysql.Open(dsn) }
	case "sqlite":
		return func(dsn string) gorm.Dialector { return sqlite.Open(dsn) }
	default:
		return func(dsn string) gorm.Dialector { return postgres.Open(dsn) }
	}
}

// QueryEngineConfiguration describes which database driver and compatibility
// settings the SQL generation layer uses.
type QueryEngineConfiguration struct {
	mu sync.RWMutex

	driverFactory      DriverFactory
	compatibilityLevel int
	traceLevel         int
	catalogOverrides   map[string]string
}

// DriverFactory returns the configured driver factory.
func (e *QueryEngineConfiguration) DriverFactory() DriverFactory {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.driverFactory
}

// SetDriverFactory sets the driver factory.
func (e *QueryEngineConfiguration) SetDriverFactory(factory DriverFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driverFactory = factory
}

// CompatibilityLevel returns the configured compatibility level.
func (e *QueryEngineConfiguration) CompatibilityLevel() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.compatibilityLevel
}

// SetCompatibilityLevel sets the compatibility level.
func (e *QueryEngineConfiguration) SetCompatibilityLevel(level int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compatibilityLevel = level
}

// TraceLevel returns the engine's own trace level.
func (e *QueryEngineConfiguration) TraceLevel() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.traceLevel
}

// SetTraceLevel sets the engine's own trace level.
func (e *QueryEngineConfiguration) SetTraceLevel(level int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.traceLevel = level
}

// SetCatalogOverride registers a catalog name override.
func (e *QueryEngineConfiguration) SetCatalogOverride(catalog, override string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.catalogOverrides == nil {
		e.catalogOverrides = make(map[string]string)
	}
	e.catalogOverrides[catalog] = override
}

// CatalogOverride returns the override for a catalog name, if registered.
func (e *QueryEngineConfiguration) CatalogOverride(catalog string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	override, ok := e.catalogOverrides[catalog]
	return override, ok
}

// CatalogOverrideCount returns the number of registered overrides.
func (e *QueryEngineConfiguration) CatalogOverrideCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.catalogOverrides)
}

// Configuration is the runtime configuration context.
type Configuration struct {
	mu sync.RWMutex

	logger            logging.Logger
	traceSwitches     map[string]int
	traceEnabled      bool
	connectionStrings map[string]string
	engine            *QueryEngineConfiguration
	listeners         *logging.MultiLogger
}

// NewConfiguration creates an empty runtime configuration. A nil logger
// disables apply-time diagnostics.
func NewConfiguration(logger logging.Logger) *Configuration {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Configuration{
		logger:            logger,
		traceSwitches:     make(map[string]int),
		connectionStrings: make(map[string]string),
		engine:            &QueryEngineConfiguration{},
		listeners:         logging.NewMultiLogger(),
	}
}

// SetTraceLevel sets the verbosity level for the named switch.
func (c *Configuration) SetTraceLevel(name string, level int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.traceSwitches[name] = level
}

// TraceLevel returns the verbosity level for the named switch.
func (c *Configuration) TraceLevel(name string) (int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	level, ok := c.traceSwitches[name]
	return level, ok
}

// TraceEnabled reports whether any trace switch was set above zero.
func (c *Configuration) TraceEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.traceEnabled
}

// AddConnectionString registers a named connection string. The stored name
// carries the fixed ConnectionStringSuffix marker.
func (c *Configuration) AddConnectionString(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connectionStrings[name+ConnectionStringSuffix] = value
}

// ConnectionString returns the connection string registered under name.
func (c *Configuration) ConnectionString(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.connectionStrings[name+ConnectionStringSuffix]
	return value, ok
}

// ConnectionStringCount returns the number of registered connection strings.
func (c *Configuration) ConnectionStringCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.connectionStrings)
}

// Engine returns the query engine descriptor.
func (c *Configuration) Engine() *QueryEngineConfiguration {
	return c.engine
}

// Listeners returns the trace listener set.
func (c *Configuration) Listeners() *logging.MultiLogger {
	return c.listeners
}

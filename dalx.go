// Package dalx provides auxiliary utilities for a data access layer runtime:
// a configuration applier that loads layered settings and applies them to an
// explicit runtime configuration context, and a generic asynchronous wrapper
// that re-exposes a synchronous data access adapter's operation set as
// task-returning methods executed on worker goroutines.
package dalx

import (
	"github.com/seasbee/go-dalx/pkg/config"
	"github.com/seasbee/go-dalx/pkg/logging"
	"github.com/seasbee/go-dalx/pkg/runtime"
)

// Configure creates a runtime configuration from the layered settings files
// in dir, using ambient environment-based file discovery. A nil logger
// disables apply-time diagnostics.
func Configure(dir string, logger logging.Logger) (*runtime.Configuration, error) {
	settings, err := config.Load(dir)
	if err != nil {
		return nil, err
	}

	rt := runtime.NewConfiguration(logger)
	rt.Apply(settings)
	return rt, nil
}

// ConfigureFromFile creates a runtime configuration from one explicit
// settings file.
func ConfigureFromFile(path string, logger logging.Logger) (*runtime.Configuration, error) {
	settings, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	rt := runtime.NewConfiguration(logger)
	rt.Apply(settings)
	return rt, nil
}

// Version information
const (
	Version = "1.0.0"
	Name    = "go-dalx"
)

// GetVersion returns the package version
func GetVersion() string {
	return Version
}

// GetName returns the package name
func GetName() string {
	return Name
}

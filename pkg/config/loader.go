package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	// BaseFileName is the base settings file loaded first
	BaseFileName = "settings.yaml"

	// EnvironmentVar is the primary environment name variable
	EnvironmentVar = "DALX_ENVIRONMENT"

	// FallbackEnvironmentVar is consulted when EnvironmentVar is unset
	FallbackEnvironmentVar = "GO_ENV"

	// DefaultEnvironment is used when neither variable is set
	DefaultEnvironment = "development"
)

// EnvironmentName resolves the active environment name: the explicit
// DALX_ENVIRONMENT variable, then GO_ENV, then the fixed default.
func EnvironmentName() string {
	if env := os.Getenv(EnvironmentVar); env != "" {
		return env
	}
	if env := os.Getenv(FallbackEnvironmentVar); env != "" {
		return env
	}
	return DefaultEnvironment
}

// MachineName resolves the machine name used for the machine-specific layer.
func MachineName() string {
	host, err := os.Hostname()
	if err != nil {
		return ""
	}
	return strings.ToLower(host)
}

// Load reads the layered settings files from dir: the base file, then the
// environment-specific file, then the machine-specific file. Each layer is
// optional and later layers override earlier ones per key.
func Load(dir string) (*Settings, error) {
	settings := DefaultSettings()

	layers := []string{BaseFileName, layerFileName(EnvironmentName())}
	if machine := MachineName(); machine != "" {
		layers = append(layers, layerFileName(machine))
	}

	for _, name := range layers {
		layer, err := loadOptional(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		settings.Merge(layer)
	}

	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}

	return settings, nil
}

// LoadFile reads a single explicit settings file.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read settings file %s", path)
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, errors.Wrapf(err, "failed to parse settings file %s", path)
	}

	if err := settings.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid settings")
	}

	return settings, nil
}

// loadOptional reads one layer; a missing file yields a nil layer, any other
// failure is fatal for the whole load.
func loadOptional(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to read settings file %s", path)
	}

	layer := &Settings{}
	if err := yaml.Unmarshal(data, layer); err != nil {
		return nil, errors.Wrapf(err, "failed to parse settings file %s", path)
	}
	return layer, nil
}

// layerFileName builds the file name for an environment or machine layer,
// e.g. settings.production.yaml.
func layerFileName(qualifier string) string {
	return "settings." + qualifier + ".yaml"
}

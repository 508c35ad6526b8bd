// Package fixture loads simulated appliance definitions from YAML.
//
// A fixture describes one appliance: its identity block, the payloads
// its endpoints serve and how it announces itself. The simulator turns
// each fixture into a listening HTTP server plus an mDNS announcement.
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Fixture describes one simulated appliance.
type Fixture struct {
	// Name is the announcement instance name. Defaults to
	// "<product_type>-<serial>".
	Name string `yaml:"name"`
	// ProductName is the human readable product name. Defaults to the
	// product type token.
	ProductName string `yaml:"product_name"`
	// ProductType is the product type token. Required.
	ProductType string `yaml:"product_type"`
	// Serial is the appliance serial. Required and unique per run.
	Serial string `yaml:"serial"`
	// FirmwareVersion is reported at /api. Defaults to "1.00".
	FirmwareVersion string `yaml:"firmware_version"`
	// APIVersion selects the versioned endpoint root. Defaults to "v1".
	APIVersion string `yaml:"api_version"`
	// APIEnabled is what the announcement claims. Defaults to true.
	APIEnabled *bool `yaml:"api_enabled"`
	// Port to listen on; 0 picks an ephemeral port.
	Port int `yaml:"port"`

	// Data is the telemetry payload served at /api/{v}/data.
	Data map[string]any `yaml:"data"`
	// State is the controllable state served at /api/{v}/state, if any.
	State map[string]any `yaml:"state"`
	// System is the configuration served at /api/{v}/system, if any.
	System map[string]any `yaml:"system"`
	// Telegram is the raw telegram served at /api/{v}/telegram, if any.
	Telegram string `yaml:"telegram"`

	// JitterPct randomizes numeric telemetry fields by up to the given
	// percentage per poll, 0 to 50. Zero serves the payload verbatim.
	JitterPct float64 `yaml:"jitter_pct"`
}

// Enabled reports the announced api_enabled flag with its default
// applied.
func (f *Fixture) Enabled() bool {
	return f.APIEnabled == nil || *f.APIEnabled
}

// LoadError provides details about a fixture loading failure.
type LoadError struct {
	// File is the path that failed to load, empty when parsing bytes.
	File string
	// Message describes the error.
	Message string
	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse parses and validates a fixture from YAML bytes, applying
// defaults for omitted fields.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}

	if f.ProductType == "" {
		return nil, &LoadError{Message: "product_type is required"}
	}
	if f.Serial == "" {
		return nil, &LoadError{Message: "serial is required"}
	}
	if f.Port < 0 || f.Port > 65535 {
		return nil, &LoadError{Message: fmt.Sprintf("port %d out of range", f.Port)}
	}
	if f.JitterPct < 0 || f.JitterPct > 50 {
		return nil, &LoadError{Message: fmt.Sprintf("jitter_pct %s out of range 0-50", strconv.FormatFloat(f.JitterPct, 'g', -1, 64))}
	}

	if f.Name == "" {
		f.Name = f.ProductType + "-" + f.Serial
	}
	if f.ProductName == "" {
		f.ProductName = f.ProductType
	}
	if f.FirmwareVersion == "" {
		f.FirmwareVersion = "1.00"
	}
	if f.APIVersion == "" {
		f.APIVersion = "v1"
	}

	return &f, nil
}

// Load loads a fixture from a file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	f, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return f, nil
}

// LoadDirectory loads every .yaml or .yml fixture in a directory,
// non-recursively. Two fixtures sharing a serial is an error since the
// serial is the appliance identity.
func LoadDirectory(dir string) ([]*Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{File: dir, Message: "failed to read directory", Cause: err}
	}

	var fixtures []*Fixture
	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		f, err := Load(path)
		if err != nil {
			return nil, err
		}
		if previous, ok := seen[f.Serial]; ok {
			return nil, &LoadError{
				File:    path,
				Message: fmt.Sprintf("serial %s already defined in %s", f.Serial, previous),
			}
		}
		seen[f.Serial] = path
		fixtures = append(fixtures, f)
	}

	return fixtures, nil
}

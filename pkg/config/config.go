// Package config holds the pipeline defaults and loads them from JSON, YAML
// or TOML files.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"

	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/etlerr"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/io/objectstore"
	"github.com/lucasandre16112000-png/03-etl-pipeline/pkg/transform/missing"
)

type Config struct {
	LogLevel                string             `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat               string             `json:"log_format" yaml:"log_format" toml:"log_format"` // text|json
	BatchSize               int                `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	MaxWorkers              int                `json:"max_workers" yaml:"max_workers" toml:"max_workers"`
	StrictMode              bool               `json:"strict_mode" yaml:"strict_mode" toml:"strict_mode"`
	RemoveDuplicatesDefault bool               `json:"remove_duplicates_default" yaml:"remove_duplicates_default" toml:"remove_duplicates_default"`
	HandleMissingDefault    string             `json:"handle_missing_default" yaml:"handle_missing_default" toml:"handle_missing_default"`
	FailOnViolation         bool               `json:"fail_on_violation" yaml:"fail_on_violation" toml:"fail_on_violation"`
	ObjectStore             objectstore.Config `json:"object_store" yaml:"object_store" toml:"object_store"`
}

// Default returns the documented defaults. Strict mode is on, so transform
// failures stop the pipeline.
func Default() Config {
	return Config{
		LogLevel:                "info",
		LogFormat:               "text",
		BatchSize:               1000,
		MaxWorkers:              4,
		StrictMode:              true,
		RemoveDuplicatesDefault: true,
		HandleMissingDefault:    "auto",
	}
}

// Load reads path over the defaults, choosing the decoder by suffix. Unknown
// keys are rejected.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &etlerr.ConfigurationError{Key: "path", Value: path, Reason: "cannot read config", Err: err}
	}
	cfg, err := Decode(b, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Decode parses b in the given syntax (json, yaml, yml or toml) over the
// defaults and validates the result.
func Decode(b []byte, syntax string) (Config, error) {
	cfg := Default()
	if err := decodeStrict(b, syntax, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeStrict decodes b into v rejecting unknown keys. v keeps the values
// of keys that b does not mention.
func decodeStrict(b []byte, syntax string, v any) error {
	var err error
	switch syntax {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		err = dec.Decode(v)
	case "toml":
		dec := toml.NewDecoder(bytes.NewReader(b))
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	default:
		return &etlerr.ConfigurationError{Key: "format", Value: syntax, Reason: "expected json, yaml or toml"}
	}
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		return &etlerr.ConfigurationError{Key: syntax, Reason: "cannot decode config", Err: err}
	}
	return nil
}

// DecodeStrict is decodeStrict for callers with their own document types,
// such as job files.
func DecodeStrict(b []byte, syntax string, v any) error { return decodeStrict(b, syntax, v) }

// FromMap builds a Config from a flat option map keyed like the file form,
// e.g. {"strict_mode": false, "batch_size": 500}. Absent keys keep their
// defaults.
func FromMap(m map[string]any) (Config, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return Config{}, &etlerr.ConfigurationError{Reason: "options are not serialisable", Err: err}
	}
	return Decode(b, "json")
}

// Validate reports the first bad option as a ConfigurationError.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return &etlerr.ConfigurationError{Key: "log_level", Value: c.LogLevel, Reason: "expected debug, info, warn or error"}
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return &etlerr.ConfigurationError{Key: "log_format", Value: c.LogFormat, Reason: "expected text or json"}
	}
	if c.BatchSize <= 0 {
		return &etlerr.ConfigurationError{Key: "batch_size", Value: fmt.Sprint(c.BatchSize), Reason: "must be positive"}
	}
	if c.MaxWorkers <= 0 {
		return &etlerr.ConfigurationError{Key: "max_workers", Value: fmt.Sprint(c.MaxWorkers), Reason: "must be positive"}
	}
	if _, err := missing.ParseStrategy(c.HandleMissingDefault); err != nil {
		return &etlerr.ConfigurationError{Key: "handle_missing_default", Value: c.HandleMissingDefault, Reason: "unknown strategy", Err: err}
	}
	if err := c.ObjectStore.Validate(); err != nil {
		return &etlerr.ConfigurationError{Key: "object_store", Value: c.ObjectStore.Endpoint, Reason: "invalid object store", Err: err}
	}
	return nil
}

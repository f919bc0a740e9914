package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	apperrors "runnotate/pkg/errors"
)

// DefaultPath is the binding file looked up when --config is not given
const DefaultPath = "config.json"

// Config holds the binding file plus the tables resolved from it
type Config struct {
	// Directory holding the source images
	DataDir string `json:"data" yaml:"data"`

	// Destination CSV record
	OutPath string `json:"out" yaml:"out"`

	Labels   map[string]LabelSpec `json:"labels" yaml:"labels"`
	Controls ControlsSpec         `json:"controls" yaml:"controls"`
	Logging  LoggingConfig        `json:"logging" yaml:"logging"`

	bindings *Bindings
}

// LabelSpec is the declared key list and overlay color for one label
type LabelSpec struct {
	Keys  []string `json:"keys" yaml:"keys"`
	Color string   `json:"color,omitempty" yaml:"color,omitempty"`
}

// UnmarshalJSON accepts both {"keys": [...], "color": "#..."} and the older bare key list
func (l *LabelSpec) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		l.Keys = list
		l.Color = ""
		return nil
	}

	type plain LabelSpec
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*l = LabelSpec(p)
	return nil
}

// ControlsSpec lists the symbolic key names bound to each navigation action
type ControlsSpec struct {
	Quit   []string `json:"quit" yaml:"quit"`
	Next   []string `json:"next" yaml:"next"`
	Back   []string `json:"back" yaml:"back"`
	Delete []string `json:"delete,omitempty" yaml:"delete,omitempty"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file" yaml:"file"`
}

// Overrides are explicit caller values that beat both the environment and the file
type Overrides struct {
	Data     string
	Out      string
	LogLevel string
}

// Load reads, validates and resolves a binding file.
// Precedence order: overrides > environment (.env included) > file > defaults
func Load(path string, overrides Overrides) (*Config, error) {
	// .env is optional
	_ = godotenv.Load(".env")

	if path == "" {
		path = DefaultPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeConfig, "failed to read config file", err)
	}

	doc, err := normalize(path, raw)
	if err != nil {
		return nil, err
	}

	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	cfg := &Config{Logging: LoggingConfig{Level: "info"}}
	if err := json.Unmarshal(doc, cfg); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrorTypeConfig, "failed to parse config file", err)
	}

	cfg.LoadFromEnv()
	cfg.MergeOverrides(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bindings, err := Resolve(cfg.Labels, cfg.Controls)
	if err != nil {
		return nil, err
	}
	cfg.bindings = bindings

	return cfg, nil
}

// normalize returns the document as JSON, converting YAML files first
func normalize(path string, raw []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var doc interface{}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrorTypeConfig, "malformed YAML", err)
		}
		stringifyKeyNames(doc)
		out, err := json.Marshal(doc)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrorTypeConfig, "unsupported YAML structure", err)
		}
		return out, nil
	default:
		if !json.Valid(raw) {
			return nil, apperrors.Config("malformed JSON in %s", path)
		}
		return raw, nil
	}
}

// stringifyKeyNames turns scalar key names back into strings. YAML reads an
// unquoted 1 as an integer, but every key name is text.
func stringifyKeyNames(doc interface{}) {
	root, ok := doc.(map[string]interface{})
	if !ok {
		return
	}

	if labels, ok := root["labels"].(map[string]interface{}); ok {
		for name, spec := range labels {
			switch v := spec.(type) {
			case []interface{}:
				labels[name] = stringifyList(v)
			case map[string]interface{}:
				if list, ok := v["keys"].([]interface{}); ok {
					v["keys"] = stringifyList(list)
				}
			}
		}
	}

	if controls, ok := root["controls"].(map[string]interface{}); ok {
		for action, spec := range controls {
			if list, ok := spec.([]interface{}); ok {
				controls[action] = stringifyList(list)
			}
		}
	}
}

func stringifyList(list []interface{}) []interface{} {
	for i, item := range list {
		switch v := item.(type) {
		case int, int64, uint64, float64, bool:
			list[i] = fmt.Sprint(v)
		}
	}
	return list
}

// LoadFromEnv applies RUNNOTATE_* environment variables
func (c *Config) LoadFromEnv() {
	if data := os.Getenv("RUNNOTATE_DATA"); data != "" {
		c.DataDir = data
	}
	if out := os.Getenv("RUNNOTATE_OUT"); out != "" {
		c.OutPath = out
	}
	if level := os.Getenv("RUNNOTATE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("RUNNOTATE_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
}

// MergeOverrides applies non-empty caller overrides
func (c *Config) MergeOverrides(o Overrides) {
	if o.Data != "" {
		c.DataDir = o.Data
	}
	if o.Out != "" {
		c.OutPath = o.Out
	}
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
}

// Validate checks the fields the schema cannot, once overrides are applied
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return apperrors.Config("missing required section %q", "data")
	}
	if c.OutPath == "" {
		return apperrors.Config("missing required section %q", "out")
	}
	if c.Labels == nil {
		return apperrors.Config("missing required section %q", "labels")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "disabled": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return apperrors.Config("invalid log level %q", c.Logging.Level)
	}

	return nil
}

// Bindings returns the resolved key tables
func (c *Config) Bindings() *Bindings {
	return c.bindings
}

// Unresolved lists the key names that matched nothing in the key table
func (c *Config) Unresolved() []string {
	if c.bindings == nil {
		return nil
	}
	return c.bindings.Unresolved
}

// String renders the effective configuration as YAML
func (c *Config) String() string {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("<config: %v>", err)
	}
	return string(data)
}

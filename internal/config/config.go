// Package config loads the page configuration.
//
// Configuration is YAML. Unknown keys are rejected, and the decoded values
// are checked against an embedded CUE schema so that range and format errors
// are reported with the field path.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/dwitter/internal/message"
	"github.com/roach88/dwitter/internal/render"
)

//go:embed schema.cue
var schemaCUE string

// DefaultTemplate is used when no template file is configured.
const DefaultTemplate = `<article class="message" data-sender="${sender}">` +
	`<a class="title" href="${link}">${title}</a>` +
	`<time data-time="${time}"></time>` +
	`</article>` + "\n"

// Config is the page configuration.
type Config struct {
	// Container is the element messages are rendered into.
	Container string `yaml:"container" json:"container"`

	// Template is the element holding the message template.
	Template string `yaml:"template" json:"template"`

	// TemplateFile, if set, is loaded into the template element. Relative
	// paths are resolved against the config file's directory.
	TemplateFile string `yaml:"template_file,omitempty" json:"template_file,omitempty"`

	LinkPrefix string `yaml:"link_prefix" json:"link_prefix"`

	// Database is the SQLite meta store path.
	Database string `yaml:"database" json:"database"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Container:  render.DefaultContainerID,
		Template:   render.DefaultTemplateID,
		LinkPrefix: message.DefaultLinkPrefix,
		Database:   ":memory:",
		LogLevel:   "info",
	}
}

// Load reads a YAML config file over the defaults and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if cfg.TemplateFile != "" && !filepath.IsAbs(cfg.TemplateFile) {
		cfg.TemplateFile = filepath.Join(filepath.Dir(path), cfg.TemplateFile)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg against the CUE schema.
func (c *Config) Validate() error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	value := ctx.Encode(c)
	if err := value.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := def.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadTemplate returns the template file's contents, or DefaultTemplate.
func (c *Config) LoadTemplate() (string, error) {
	if c.TemplateFile == "" {
		return DefaultTemplate, nil
	}
	data, err := os.ReadFile(c.TemplateFile)
	if err != nil {
		return "", fmt.Errorf("failed to read template file: %w", err)
	}
	return string(data), nil
}

package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/ffifmt/boundary"
	"github.com/wippyai/ffifmt/cabi"
	"github.com/wippyai/ffifmt/errors"
	"github.com/wippyai/ffifmt/ryu"
	"github.com/wippyai/ffifmt/wasmhost"
)

// MaxMemoryPages is the 32-bit wasm memory limit in 64 KiB pages.
const MaxMemoryPages = 65536

// Config is the file-level configuration shared by every binding.
type Config struct {
	Style             string      `yaml:"style" json:"style"`
	Separator         string      `yaml:"separator" json:"separator"`
	TrailingSeparator bool        `yaml:"trailing_separator" json:"trailing_separator"`
	TrackAllocations  bool        `yaml:"track_allocations" json:"track_allocations"`
	Wasm              WasmOptions `yaml:"wasm" json:"wasm"`
	Log               LogOptions  `yaml:"log" json:"log"`
}

// WasmOptions configures the WebAssembly binding.
type WasmOptions struct {
	// MemoryLimitPages caps guest memory. 0 keeps the runtime default.
	MemoryLimitPages uint32 `yaml:"memory_limit_pages" json:"memory_limit_pages"`
	// GuestPages is the initial memory of the loopback guest.
	GuestPages  uint32 `yaml:"guest_pages" json:"guest_pages"`
	Interpreter bool   `yaml:"interpreter" json:"interpreter"`
}

// LogOptions configures the zap logger.
type LogOptions struct {
	Level       string `yaml:"level" json:"level"`
	Encoding    string `yaml:"encoding" json:"encoding"`
	Development bool   `yaml:"development" json:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Style:     ryu.Standard.Name,
		Separator: " ",
		Wasm: WasmOptions{
			MemoryLimitPages: 4096,
			GuestPages:       2,
		},
		Log: LogOptions{
			Level:    "info",
			Encoding: "console",
		},
	}
}

// Load reads a configuration file over the defaults. Files ending in .json
// or .jsonc are JSON with comments; everything else is YAML. Unknown keys
// are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(errors.PhaseConfig, "config file", path)
		}
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read "+path)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return Parse(data, FormatJSON)
	default:
		return Parse(data, FormatYAML)
	}
}

// Format is a configuration file syntax.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

// Parse decodes data over the defaults and validates the result.
func Parse(data []byte, format Format) (*Config, error) {
	cfg := Default()

	var err error
	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		err = dec.Decode(cfg)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(cfg)
	}
	if err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.New(errors.PhaseConfig, errors.KindInvalidData).
			Cause(err).
			Detail("decode config").
			Build()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field and reports the first invalid one.
func (c *Config) Validate() error {
	if _, ok := ryu.StyleByName(c.Style); !ok {
		return invalid([]string{"style"}, c.Style, "unknown style %q", c.Style)
	}
	if len(c.Separator) != 1 {
		return invalid([]string{"separator"}, c.Separator, "separator must be a single byte, got %q", c.Separator)
	}
	if !boundary.ValidSeparator(c.Separator[0]) {
		return invalid([]string{"separator"}, c.Separator, "separator %q would be ambiguous in formatted output", c.Separator)
	}

	if c.Wasm.MemoryLimitPages > MaxMemoryPages {
		return invalid([]string{"wasm", "memory_limit_pages"}, c.Wasm.MemoryLimitPages,
			"%d pages exceed the %d page limit", c.Wasm.MemoryLimitPages, MaxMemoryPages)
	}
	if c.Wasm.GuestPages == 0 {
		return invalid([]string{"wasm", "guest_pages"}, c.Wasm.GuestPages, "guest needs at least one page")
	}
	if c.Wasm.MemoryLimitPages > 0 && c.Wasm.GuestPages > c.Wasm.MemoryLimitPages {
		return invalid([]string{"wasm", "guest_pages"}, c.Wasm.GuestPages,
			"%d guest pages exceed memory_limit_pages %d", c.Wasm.GuestPages, c.Wasm.MemoryLimitPages)
	}

	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return invalid([]string{"log", "level"}, c.Log.Level, "unknown level %q", c.Log.Level)
	}
	switch c.Log.Encoding {
	case "console", "json":
	default:
		return invalid([]string{"log", "encoding"}, c.Log.Encoding, "encoding must be console or json, got %q", c.Log.Encoding)
	}
	return nil
}

func invalid(path []string, value any, format string, args ...any) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(path...).
		Value(value).
		Detail(format, args...).
		Build()
}

// FormatStyle returns the configured layout. Call Validate first.
func (c *Config) FormatStyle() ryu.Style {
	s, ok := ryu.StyleByName(c.Style)
	if !ok {
		return ryu.Standard
	}
	return s
}

// Adapter builds the in-process adapter. ledger may be nil.
func (c *Config) Adapter(ledger *boundary.Ledger) (*boundary.Adapter, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	opts := []boundary.Option{
		boundary.WithStyle(c.FormatStyle()),
		boundary.WithSeparator(c.Separator[0]),
		boundary.WithTrailingSeparator(c.TrailingSeparator),
	}
	if ledger != nil {
		opts = append(opts, boundary.WithLedger(ledger))
	}
	return boundary.New(opts...)
}

// WasmConfig returns the host runtime configuration.
func (c *Config) WasmConfig() wasmhost.Config {
	return wasmhost.Config{
		ModuleName:       wasmhost.DefaultModuleName,
		MemoryLimitPages: c.Wasm.MemoryLimitPages,
		Interpreter:      c.Wasm.Interpreter,
	}
}

// CABIOptions returns the options for cabi.Init.
func (c *Config) CABIOptions() cabi.Options {
	o := cabi.DefaultOptions()
	o.Style = c.FormatStyle()
	if len(c.Separator) == 1 {
		o.Separator = c.Separator[0]
	}
	o.TrailingSeparator = c.TrailingSeparator
	o.Track = c.TrackAllocations
	return o
}

// NewLogger builds a zap logger from the log section.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "log level")
	}

	zc := zap.NewProductionConfig()
	if c.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.Encoding = c.Log.Encoding
	if zc.Encoding == "console" {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	l, err := zc.Build()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "build logger")
	}
	return l, nil
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

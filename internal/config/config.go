// Package config loads the optional .hsmgen.yaml project file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/hsmgen/internal/compiler"
	"github.com/aretw0/hsmgen/internal/generator"
	"github.com/aretw0/hsmgen/internal/logging"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = ".hsmgen.yaml"

// Config mirrors the YAML file. Keys absent from the file keep their defaults.
type Config struct {
	Extensions  []string `mapstructure:"extensions" yaml:"extensions"`
	OutputDir   string   `mapstructure:"output_dir" yaml:"output_dir"`
	Suffix      string   `mapstructure:"suffix" yaml:"suffix"`
	TemplateDir string   `mapstructure:"template_dir" yaml:"template_dir"`
	Formats     []string `mapstructure:"formats" yaml:"formats"`
	Workers     int      `mapstructure:"workers" yaml:"workers"`

	Parser ParserConfig `mapstructure:"parser" yaml:"parser"`
	Cache  CacheConfig  `mapstructure:"cache" yaml:"cache"`
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

type ParserConfig struct {
	Unterminated  string   `mapstructure:"unterminated" yaml:"unterminated"`
	DuplicateInit string   `mapstructure:"duplicate_init" yaml:"duplicate_init"`
	Hierarchy     string   `mapstructure:"hierarchy" yaml:"hierarchy"`
	LinePrefixes  []string `mapstructure:"line_prefixes" yaml:"line_prefixes"`
}

// CacheConfig selects the model cache backend: none, memory, file or redis.
type CacheConfig struct {
	Backend  string        `mapstructure:"backend" yaml:"backend"`
	Dir      string        `mapstructure:"dir" yaml:"dir"`
	Addr     string        `mapstructure:"addr" yaml:"addr"`
	Password string        `mapstructure:"password" yaml:"password"`
	DB       int           `mapstructure:"db" yaml:"db"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type ServerConfig struct {
	Port    int  `mapstructure:"port" yaml:"port"`
	Metrics bool `mapstructure:"metrics" yaml:"metrics"`
}

// Cache backends.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheFile   = "file"
	CacheRedis  = "redis"
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Extensions: []string{".puml", ".plantuml", ".pu"},
		OutputDir:  "",
		Suffix:     "_HSM",
		Formats:    []string{string(generator.FormatYAML)},
		Parser: ParserConfig{
			Unterminated:  string(domain.UnterminatedDrop),
			DuplicateInit: string(domain.InitLastWins),
			Hierarchy:     string(domain.HierarchyTolerant),
		},
		Cache: CacheConfig{
			Backend: CacheNone,
			Dir:     ".hsmgen/cache",
			Addr:    "localhost:6379",
			Prefix:  "hsmgen:model:",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Port:    8080,
			Metrics: true,
		},
	}
}

// Load reads path, or DefaultFile when path is empty and the file exists.
// With no file at all the defaults are returned.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML onto the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}

	cfg := Default()
	if len(raw) == 0 {
		return cfg, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		ErrorUnused:      true,
		ZeroFields:       true,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects unknown policy, format, backend and logging names.
func (c *Config) Validate() error {
	var errs []error

	if _, err := c.ParserOptions(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.GeneratorFormats(); err != nil {
		errs = append(errs, err)
	}

	switch c.Cache.Backend {
	case "", CacheNone, CacheMemory, CacheFile, CacheRedis:
	default:
		errs = append(errs, fmt.Errorf("unknown cache backend %q (want none, memory, file or redis)", c.Cache.Backend))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q (want text or json)", c.Log.Format))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port out of range: %d", c.Server.Port))
	}

	return errors.Join(errs...)
}

// ParserOptions converts the parser section into compiler options.
func (c *Config) ParserOptions() ([]compiler.Option, error) {
	u, err := domain.ParseUnterminatedPolicy(c.Parser.Unterminated)
	if err != nil {
		return nil, err
	}
	i, err := domain.ParseInitPolicy(c.Parser.DuplicateInit)
	if err != nil {
		return nil, err
	}
	h, err := domain.ParseHierarchyPolicy(c.Parser.Hierarchy)
	if err != nil {
		return nil, err
	}

	return []compiler.Option{
		compiler.WithUnterminated(u),
		compiler.WithDuplicateInit(i),
		compiler.WithHierarchy(h),
		compiler.WithLinePrefixes(c.Parser.LinePrefixes...),
	}, nil
}

// GeneratorFormats validates the configured output formats.
func (c *Config) GeneratorFormats() ([]generator.Format, error) {
	out := make([]generator.Format, 0, len(c.Formats))
	for _, f := range c.Formats {
		format, err := generator.ParseFormat(f)
		if err != nil {
			return nil, err
		}
		out = append(out, format)
	}
	return out, nil
}

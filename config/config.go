// Package config loads jsparse settings from jsparse.yaml, jsparse.yml or
// jsparse.toml.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/hannajonsd/jsparse/mediatype"
	"github.com/hannajonsd/jsparse/parser"
)

const DefaultMaxFileSize = 10 << 20

// FileNames lists the config files Find looks for, in priority order.
var FileNames = []string{"jsparse.yaml", "jsparse.yml", "jsparse.toml"}

var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrInvalid           = errors.New("invalid config")
)

type Config struct {
	Mode        parser.Mode     `yaml:"mode" toml:"mode"`
	Tokens      bool            `yaml:"tokens" toml:"tokens"`
	Scope       bool            `yaml:"scope" toml:"scope"`
	Format      string          `yaml:"format" toml:"format"`
	Jobs        int             `yaml:"jobs" toml:"jobs"`
	Color       string          `yaml:"color" toml:"color"`
	MaxFileSize int64           `yaml:"max_file_size" toml:"max_file_size"`
	Exclude     []string        `yaml:"exclude" toml:"exclude"`
	Syntax      SyntaxOverrides `yaml:"syntax" toml:"syntax"`
}

// SyntaxOverrides adjusts the grammar configuration derived from a file's
// media type. Unset fields keep the derived value.
type SyntaxOverrides struct {
	JSX                        *bool `yaml:"jsx" toml:"jsx"`
	Decorators                 *bool `yaml:"decorators" toml:"decorators"`
	ImportAttributes           *bool `yaml:"import_attributes" toml:"import_attributes"`
	AllowReturnOutsideFunction *bool `yaml:"allow_return_outside_function" toml:"allow_return_outside_function"`
	NoEarlyErrors              *bool `yaml:"no_early_errors" toml:"no_early_errors"`
}

func Default() Config {
	return Config{
		Format:      "text",
		Color:       "auto",
		MaxFileSize: DefaultMaxFileSize,
	}
}

// Find returns the first config file present in dir, or "" if none is.
func Find(dir string) string {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Load reads a config file on top of Default. The format follows the
// file extension.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config %s: %w", path, err)
	}
	defer f.Close()

	cfg, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads a config in the format named by ext (".yaml", ".yml" or
// ".toml"). Unknown keys are rejected.
func Decode(r io.Reader, ext string) (Config, error) {
	cfg := Default()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	case ".toml":
		md, err := toml.NewDecoder(r).Decode(&cfg)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return Config{}, fmt.Errorf("%w: unknown key %s", ErrInvalid, undecoded[0])
		}
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Format {
	case "text", "json", "msgpack":
	default:
		return fmt.Errorf("%w: format must be text, json or msgpack, got %q", ErrInvalid, c.Format)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%w: color must be auto, always or never, got %q", ErrInvalid, c.Color)
	}
	if c.Jobs < 0 {
		return fmt.Errorf("%w: jobs must not be negative", ErrInvalid)
	}
	if c.MaxFileSize <= 0 {
		return fmt.Errorf("%w: max_file_size must be positive", ErrInvalid)
	}
	return nil
}

// SyntaxFor returns the grammar configuration for a media type with the
// overrides applied.
func (c Config) SyntaxFor(mt mediatype.MediaType) parser.Syntax {
	o := c.Syntax
	switch s := parser.GetSyntax(mt).(type) {
	case parser.TsSyntax:
		set(&s.Decorators, o.Decorators)
		set(&s.TSX, o.JSX)
		set(&s.NoEarlyErrors, o.NoEarlyErrors)
		return s
	case parser.EsSyntax:
		set(&s.JSX, o.JSX)
		set(&s.Decorators, o.Decorators)
		set(&s.ImportAttributes, o.ImportAttributes)
		set(&s.AllowReturnOutsideFunction, o.AllowReturnOutsideFunction)
		return s
	default:
		return s
	}
}

func set(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

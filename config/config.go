// Package config handles luna.toml runtime configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by Load and FindAndLoad.
const FileName = "luna.toml"

// Config represents a luna.toml configuration.
type Config struct {
	Log     LogConfig     `toml:"log"`
	Display DisplayConfig `toml:"display"`
	Wire    WireConfig    `toml:"wire"`

	// Path is the file the configuration was read from (set at load time,
	// empty for Default).
	Path string `toml:"-"`
}

// LogConfig configures commonlog output.
type LogConfig struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// DisplayConfig configures value rendering in tools.
type DisplayConfig struct {
	Width      int  `toml:"width"`
	Depth      int  `toml:"depth"`
	StrictText bool `toml:"strict-text"`
}

// WireConfig bounds constant pool decoding.
type WireConfig struct {
	MaxDepth int `toml:"max-depth"`
	MaxItems int `toml:"max-items"`
}

// Defaults
const (
	DefaultVerbosity = 1
	DefaultWidth     = 60
	DefaultDepth     = 2
	DefaultMaxDepth  = 64
	DefaultMaxItems  = 1 << 20
)

// Default returns the configuration used when no luna.toml exists.
func Default() *Config {
	c := &Config{}
	c.Log.Verbosity = DefaultVerbosity
	c.applyDefaults()
	return c
}

// Load parses the luna.toml file in dir.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c := &Config{Log: LogConfig{Verbosity: DefaultVerbosity}}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c.applyDefaults()

	c.Path, err = filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	return c, nil
}

// FindAndLoad walks up from startDir to find a luna.toml file, then loads
// and returns it. Returns Default() if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return Default(), nil
		}
		dir = parent
	}
}

func (c *Config) validate() error {
	var errs []error
	if c.Log.Verbosity < -4 || c.Log.Verbosity > 4 {
		errs = append(errs, fmt.Errorf("log.verbosity %d out of range [-4, 4]", c.Log.Verbosity))
	}
	if c.Display.Width < 0 {
		errs = append(errs, errors.New("display.width must not be negative"))
	}
	if c.Display.Depth < 0 {
		errs = append(errs, errors.New("display.depth must not be negative"))
	}
	if c.Wire.MaxDepth < 0 {
		errs = append(errs, errors.New("wire.max-depth must not be negative"))
	}
	if c.Wire.MaxItems < 0 {
		errs = append(errs, errors.New("wire.max-items must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) applyDefaults() {
	if c.Display.Width == 0 {
		c.Display.Width = DefaultWidth
	}
	if c.Display.Depth == 0 {
		c.Display.Depth = DefaultDepth
	}
	if c.Wire.MaxDepth == 0 {
		c.Wire.MaxDepth = DefaultMaxDepth
	}
	if c.Wire.MaxItems == 0 {
		c.Wire.MaxItems = DefaultMaxItems
	}
}

// LogPath returns the log file path, or nil for stderr.
func (c *Config) LogPath() *string {
	if c.Log.File == "" {
		return nil
	}
	p := c.Log.File
	if !filepath.IsAbs(p) && c.Path != "" {
		p = filepath.Join(filepath.Dir(c.Path), p)
	}
	return &p
}

// Package config loads annox.yml, the project file naming the sources to
// scan and the classpath their annotation types come from.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-version"
	"gopkg.in/yaml.v3"
)

const FileName = "annox.yml"

var ErrNoConfig = errors.New("no " + FileName + " found")

//go:embed defaults.yml
var defaultsYAML []byte

type Config struct {
	// Sources are directories or .java files.
	Sources []string `yaml:"sources"`
	// Classpath entries are directories, jars or glob patterns.
	Classpath []string `yaml:"classpath"`
	// Release is the Java feature release used to pick multi-release jar
	// entries. Empty means base entries only.
	Release   string `yaml:"release"`
	MaxDepth  int    `yaml:"maxDepth"`
	Workers   int    `yaml:"workers"`
	Format    string `yaml:"format"`
	Verbosity int    `yaml:"verbosity"`
	LogFile   string `yaml:"logFile"`

	// Dir is the directory relative paths are resolved against.
	Dir string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var c Config
	if err := yaml.Unmarshal(defaultsYAML, &c); err != nil {
		panic("failed to load default config: " + err.Error())
	}
	c.Dir = "."
	return &c
}

// Parse reads YAML over the defaults. Fields missing from data keep
// their default; lists present in data replace the default list.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return c, nil
}

// Load reads and validates the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	c.Dir = filepath.Dir(abs)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Find returns the path of the nearest annox.yml in dir or one of its
// parents.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		path := filepath.Join(dir, FileName)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNoConfig
		}
		dir = parent
	}
}

func (c *Config) Validate() error {
	if _, err := c.ReleaseVersion(); err != nil {
		return err
	}
	if c.MaxDepth < 1 {
		return fmt.Errorf("maxDepth must be positive, got %d", c.MaxDepth)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Verbosity < -4 {
		return fmt.Errorf("verbosity must be at least -4, got %d", c.Verbosity)
	}
	return nil
}

// ReleaseVersion parses Release. It returns nil when no release is set.
func (c *Config) ReleaseVersion() (*version.Version, error) {
	if c.Release == "" {
		return nil, nil
	}
	v, err := version.NewVersion(c.Release)
	if err != nil {
		return nil, fmt.Errorf("invalid release %q: %w", c.Release, err)
	}
	// Releases up to 8 are also written 1.N.
	feature := v.Segments()[0]
	if feature == 1 && len(v.Segments()) > 1 {
		feature = v.Segments()[1]
	}
	if feature < 5 {
		return nil, fmt.Errorf("invalid release %q: annotations need release 5 or later", c.Release)
	}
	return v, nil
}

// SourcePaths returns Sources resolved against Dir.
func (c *Config) SourcePaths() []string {
	return c.resolve(c.Sources)
}

// ClasspathEntries returns Classpath resolved against Dir; patterns are
// left for the classpath to expand.
func (c *Config) ClasspathEntries() []string {
	return c.resolve(c.Classpath)
}

func (c *Config) resolve(paths []string) []string {
	result := make([]string, len(paths))
	for i, p := range paths {
		if filepath.IsAbs(p) || c.Dir == "" {
			result[i] = p
			continue
		}
		result[i] = filepath.Join(c.Dir, p)
	}
	return result
}

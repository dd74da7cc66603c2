package config

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/databacker/dir-archiver/pkg/compression"
)

// Load reads a YAML config. Unknown fields are rejected.
func Load(r io.Reader) (*Config, error) {
	var conf Config
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&conf); err != nil && err != io.EOF {
		return nil, fmt.Errorf("fatal error reading config file: %w", err)
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Config) validate() error {
	if c.Type != "" && c.Type != configType {
		return fmt.Errorf("unknown config type %q, expected %q", c.Type, configType)
	}
	if c.Version != "" && c.Version != version {
		return fmt.Errorf("unknown config version %q, expected %q", c.Version, version)
	}
	switch c.Logging {
	case "", logLevelError, logLevelWarning, logLevelInfo, logLevelDebug, logLevelTrace:
	default:
		return fmt.Errorf("invalid logging level %q", c.Logging)
	}
	// the level check needs the algorithm, so it waits for the merged command options
	if c.Compress.Compression != "" {
		if _, err := compression.ParseAlgorithm(c.Compress.Compression); err != nil {
			return err
		}
	}
	if c.Decompress.Compression != "" {
		if _, err := compression.ParseAlgorithm(c.Decompress.Compression); err != nil {
			return err
		}
	}
	for _, name := range c.Compress.Targets {
		if _, ok := c.Targets[name]; !ok {
			return fmt.Errorf("compress target %q is not defined in targets", name)
		}
	}
	return nil
}

// LogLevel returns the configured logging level, defaulting to info.
func (c *Config) LogLevel() string {
	if c.Logging == "" {
		return string(logLevelDefault)
	}
	return string(c.Logging)
}

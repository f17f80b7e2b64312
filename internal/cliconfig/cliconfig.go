// Package cliconfig loads the jsonlt CLI's TOML configuration file,
// following the teacher CLI's table/column/constraint parsing in spirit:
// BurntSushi/toml decoded straight into plain structs.
package cliconfig

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk shape of a jsonlt CLI config file.
type Config struct {
	Table struct {
		Key              any    `toml:"key"`
		AutoReload       *bool  `toml:"auto_reload"`
		MaxFileSizeBytes int64  `toml:"max_file_size_bytes"`
		LockTimeoutMS    *int64 `toml:"lock_timeout_ms"`
	} `toml:"table"`

	Output struct {
		Format string `toml:"format"`
	} `toml:"output"`
}

// Default returns a Config with the jsonlt defaults: auto-reload on, no
// size limit, the engine's default lock timeout, pretty output.
func Default() Config {
	var c Config
	autoReload := true
	c.Table.AutoReload = &autoReload
	c.Output.Format = "pretty"
	return c
}

// Load reads and parses the TOML file at path. A missing file is not an
// error: Load returns Default().
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	cfg := Default()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("cannot parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// LockTimeout converts the configured millisecond value, if any, to a
// time.Duration.
func (c Config) LockTimeout() *time.Duration {
	if c.Table.LockTimeoutMS == nil {
		return nil
	}
	d := time.Duration(*c.Table.LockTimeoutMS) * time.Millisecond
	return &d
}

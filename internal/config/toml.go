// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Paths    PathsConfig    `toml:"paths"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Dict          *string `toml:"dict"`
	Chapter       *int    `toml:"chapter"`
	ChapterLength *int    `toml:"chapter-length"`
	Shuffle       *bool   `toml:"shuffle"`
	Review        *bool   `toml:"review"`
	ReviewIndex   *int    `toml:"review-index"`
	IgnoreCase    *bool   `toml:"ignore-case"`
}

// PathsConfig overrides the default storage locations.
type PathsConfig struct {
	Dicts    *string `toml:"dicts"`
	DB       *string `toml:"db"`
	UsageLog *string `toml:"usage-log"`
	Log      *string `toml:"log"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}

// Paths holds the resolved storage locations.
type Paths struct {
	Dicts    string
	DB       string
	UsageLog string
	Log      string
}

// ResolvePaths applies file overrides on top of the XDG defaults.
func (c FileConfig) ResolvePaths() Paths {
	p := Paths{
		Dicts:    DefaultDictDir(),
		DB:       DefaultDBPath(),
		UsageLog: DefaultUsageLogPath(),
		Log:      DefaultLogPath(),
	}
	pick(&p.Dicts, c.Paths.Dicts)
	pick(&p.DB, c.Paths.DB)
	pick(&p.UsageLog, c.Paths.UsageLog)
	pick(&p.Log, c.Paths.Log)
	return p
}

func pick(target, value *string) {
	if value != nil && *value != "" {
		*target = expandHome(*value)
	}
}

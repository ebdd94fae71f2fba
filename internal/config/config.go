// Package config reads environment defaults and resolves which database
// file an invocation works on.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/caarlos0/env/v11"
)

// DefaultDatabase is used when no database is configured and none exists
// in the working directory.
const DefaultDatabase = "combat.db"

// ErrAmbiguousDatabase is returned when several *.db files are present and
// none was chosen explicitly.
var ErrAmbiguousDatabase = errors.New("multiple encounter databases found")

// Config holds environment-provided defaults. Flags override them.
type Config struct {
	Database string `env:"INITIATIVE_DB"`
	Dir      string `env:"INITIATIVE_DIR"       envDefault:"."`
	Format   string `env:"INITIATIVE_FORMAT"    envDefault:"text"`
	LogLevel string `env:"INITIATIVE_LOG_LEVEL" envDefault:"info"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Level maps LogLevel to a slog level. Unknown values mean info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Candidates lists the *.db files in dir, sorted by name.
func Candidates(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.db"))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

// ResolveDatabase picks the database path.
//
// Order: explicit path, then the only *.db file in dir, then
// DefaultDatabase inside dir. With several candidates and no explicit path
// it returns the candidates and ErrAmbiguousDatabase so an interactive
// caller can ask the user.
func ResolveDatabase(explicit, dir string) (string, []string, error) {
	if explicit != "" {
		return explicit, nil, nil
	}

	files, err := Candidates(dir)
	if err != nil {
		return "", nil, err
	}

	switch len(files) {
	case 0:
		return filepath.Join(dir, DefaultDatabase), nil, nil
	case 1:
		return files[0], nil, nil
	default:
		return "", files, fmt.Errorf("%w in %s: %s", ErrAmbiguousDatabase, dir, strings.Join(files, ", "))
	}
}

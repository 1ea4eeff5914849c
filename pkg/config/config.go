// Package config loads sitelink configuration through koanf, layering
// embedded defaults, a project sitelink.toml and SITELINK_* environment
// variables (highest precedence).
package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/sitelink/pkg/errors"
	"github.com/arthur-debert/sitelink/pkg/paths"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New(errors.ErrInternal, "not implemented")
}

// Site configures the system-wide install location
type Site struct {
	Root          string `koanf:"root"`
	PythonVersion string `koanf:"python-version"`
}

// Install configures the local source installer
type Install struct {
	Trees         []string `koanf:"trees"`
	RegistryIndex string   `koanf:"registry-index"`
	FetchAttempts int      `koanf:"fetch-attempts"`
}

// Config is the fully merged sitelink configuration
type Config struct {
	Component string  `koanf:"component"`
	Site      Site    `koanf:"site"`
	Install   Install `koanf:"install"`
}

// Load merges configuration for the given project root. The project root
// is where sitelink.toml is looked up; pass "" for the current directory.
func Load(projectRoot string) (*Config, error) {
	if projectRoot == "" {
		projectRoot = "."
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. Project config if it exists
	path := filepath.Join(projectRoot, paths.ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path)
		}
	}

	// 3. Environment overrides: SITELINK_SITE__ROOT -> site.root
	if err := k.Load(env.Provider("SITELINK_", ".", envKeyMapper), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal config")
	}

	if cfg.Install.FetchAttempts <= 0 {
		cfg.Install.FetchAttempts = 3
	}

	return &cfg, nil
}

// envKeyMapper maps SITELINK_SITE__ROOT to site.root. A double underscore
// separates table from key so keys containing underscores survive.
func envKeyMapper(key string) string {
	key = strings.TrimPrefix(key, "SITELINK_")
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "__", ".")
}

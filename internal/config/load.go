package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

const (
	// Dir is the per-project state directory.
	Dir = ".goap"
	// DefaultPath is where "goap init" writes the config.
	DefaultPath = Dir + "/config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. GOAP_DATABASE.
	EnvPrefix = "GOAP"
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("domain", filepath.Join(Dir, "domain.yaml"))
	v.SetDefault("database", filepath.Join(Dir, "goap.db"))
	v.SetDefault("planner.max_expansions", 10000)
	v.SetDefault("planner.persist_resolved", true)
	v.SetDefault("retention.keep_last", 50)
}

// Load reads the config file at path, validates the file against the schema,
// applies defaults and GOAP_* environment overrides and decodes the result.
// Relative paths inside the config are resolved against root.
func Load(v *viper.Viper, root, path string) (Config, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	raw := viper.New()
	setFile(raw, path)
	if err := raw.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := ValidateSettings(raw.AllSettings()); err != nil {
		return Config{}, err
	}

	setFile(v, path)
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Check(); err != nil {
		return Config{}, fmt.Errorf("check config: %w", err)
	}
	cfg.Domain = resolvePath(root, cfg.Domain)
	cfg.Database = resolvePath(root, cfg.Database)
	return cfg, nil
}

func setFile(v *viper.Viper, path string) {
	v.SetConfigFile(path)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		v.SetConfigType("json")
	default:
		v.SetConfigType("yaml")
	}
}

func resolvePath(root, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

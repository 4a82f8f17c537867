// Package config loads goblin settings from defaults, ~/.goblin/config.yaml,
// GOBLIN_* environment variables and bound command line flags.
package config

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/alexandre1a/goblin-brew/internal/models/consts"
	"github.com/alexandre1a/goblin-brew/internal/models/types"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"go.trai.ch/zerr"
)

// Config is the resolved runtime configuration.
type Config struct {
	Prefix          string        `mapstructure:"prefix"`
	CacheDir        string        `mapstructure:"cache_dir"`
	LogLevel        string        `mapstructure:"log_level"`
	Verbose         bool          `mapstructure:"verbose"`
	HTTPTimeout     time.Duration `mapstructure:"http_timeout"`
	TestTimeout     time.Duration `mapstructure:"test_timeout"`
	AllowUnverified bool          `mapstructure:"allow_unverified"`
	SkipProbe       bool          `mapstructure:"skip_probe"`
	FormulaDirs     []string      `mapstructure:"formula_dirs"`
}

// ErrConfigInvalid is returned when the configuration cannot be read or decoded.
var ErrConfigInvalid = zerr.New("invalid configuration")

// Load resolves the configuration. home is the user home directory, used for
// the default prefix and to expand a leading "~/".
func Load(v *viper.Viper, home string) (*Config, error) {
	base := filepath.Join(home, consts.GoblinBaseDir)

	v.SetDefault("prefix", base)
	v.SetDefault("cache_dir", "")
	v.SetDefault("log_level", consts.DefaultLogLevel)
	v.SetDefault("http_timeout", consts.DefaultTimeout)
	v.SetDefault("test_timeout", consts.TestTimeout)
	v.SetDefault("allow_unverified", false)
	v.SetDefault("skip_probe", false)
	v.SetDefault("formula_dirs", []string{})

	v.SetConfigName(consts.ConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(base)

	v.SetEnvPrefix(consts.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, zerr.Wrap(err, ErrConfigInvalid.Error())
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, zerr.Wrap(err, ErrConfigInvalid.Error())
	}

	cfg.Prefix = expandHome(cfg.Prefix, home)
	if cfg.CacheDir == "" {
		cfg.CacheDir = filepath.Join(cfg.Prefix, consts.CacheDir)
	}
	cfg.CacheDir = expandHome(cfg.CacheDir, home)
	for i, dir := range cfg.FormulaDirs {
		cfg.FormulaDirs[i] = expandHome(dir, home)
	}

	return &cfg, nil
}

// BinDir is the shared executable directory.
func (c *Config) BinDir() string {
	return filepath.Join(c.Prefix, consts.BinDir)
}

// LockPath is the location of goblin.lock.
func (c *Config) LockPath() string {
	return filepath.Join(c.Prefix, consts.LockFilePath)
}

// Layout returns the directories a package named name is installed into.
func (c *Config) Layout(name string) types.Layout {
	return types.Layout{
		Prefix:  c.Prefix,
		Bin:     c.BinDir(),
		Libexec: filepath.Join(c.Prefix, consts.LibexecDir, name),
	}
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

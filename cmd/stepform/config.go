package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/aretw0/stepform/pkg/adapters/file"
	"github.com/aretw0/stepform/pkg/adapters/redis"
)

const (
	configFileName = "stepform"
	configFileType = "yaml"
	envPrefix      = "STEPFORM"

	defaultAddr      = ":8080"
	defaultLogLevel  = "info"
	defaultLogFormat = "text"
	defaultStoreKind = "memory"
	defaultStorePath = "stepform.db"
	defaultRedisAddr = "localhost:6379"
)

// Config is the CLI configuration. Values come from flags, STEPFORM_* env
// vars, the config file and defaults, in that order.
type Config struct {
	Addr          string      `mapstructure:"addr"`
	LogLevel      string      `mapstructure:"log_level"`
	LogFormat     string      `mapstructure:"log_format"`
	CookieSecure  bool        `mapstructure:"cookie_secure"`
	EncryptionKey string      `mapstructure:"encryption_key"`
	Wizard        []string    `mapstructure:"wizard"`
	Store         StoreConfig `mapstructure:"store"`
	Redis         RedisConfig `mapstructure:"redis"`
}

type StoreConfig struct {
	Kind string        `mapstructure:"kind"`
	Dir  string        `mapstructure:"dir"`
	Path string        `mapstructure:"path"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// flagKeys maps command flags to config keys.
var flagKeys = map[string]string{
	"addr":          "addr",
	"log-level":     "log_level",
	"log-format":    "log_format",
	"store":         "store.kind",
	"wizard":        "wizard",
	"cookie-secure": "cookie_secure",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", defaultAddr)
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("log_format", defaultLogFormat)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("encryption_key", "")
	v.SetDefault("wizard", []string{})
	v.SetDefault("store.kind", defaultStoreKind)
	v.SetDefault("store.dir", file.DefaultDir)
	v.SetDefault("store.path", defaultStorePath)
	v.SetDefault("store.ttl", time.Duration(0))
	v.SetDefault("redis.addr", defaultRedisAddr)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", redis.DefaultPrefix)
}

// loadConfig reads the config file at path, or stepform.yaml in the working
// directory when path is empty. Only an explicit path must exist.
func loadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

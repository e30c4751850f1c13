// Package config assembles the runtime settings from defaults, a .env file,
// an optional INI file, COURSENOTES_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

const EnvPrefix = "COURSENOTES_"

type Config struct {
	Base         string // path prefix, stripped off every HTTP request and prepended to every redirect
	DB           string // see github.com/xo/dburl
	Listen       string
	LecturesFile string // YAML, empty means built-in lectures
	CookieSecure bool
	IdleTimeout  time.Duration
	Lifetime     time.Duration
	BcryptCost   int
	LogLevel     string
	LogFormat    string // "console" or "json"
}

func Default() *Config {
	return &Config{
		DB:          "sqlite3:coursenotes.sqlite3?_busy_timeout=10000&_journal=WAL&_sync=NORMAL&_foreign_keys=1",
		Listen:      "127.0.0.1:8080",
		IdleTimeout: 12 * time.Hour,
		Lifetime:    720 * time.Hour,
		BcryptCost:  10,
		LogLevel:    "info",
		LogFormat:   "console",
	}
}

// Load builds a Config and parses args into fs. The caller may define additional flags on fs before.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	var cfg = Default()

	var file = configPath(args)
	if file == "" {
		file = os.Getenv(EnvPrefix + "CONFIG")
	}
	if file != "" {
		if err := cfg.loadIni(file); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	fs.String("config", file, "load settings from this INI `file`")
	cfg.bind(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return cfg, cfg.Validate()
}

func (cfg *Config) bind(fs *flag.FlagSet) {
	fs.StringVar(&cfg.Base, "base", cfg.Base, "strip off this `prefix` from every HTTP request and prepend it to every redirect")
	fs.StringVar(&cfg.DB, "db", cfg.DB, "sql database url, see github.com/xo/dburl")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "serve HTTP content at this `ip:port`")
	fs.StringVar(&cfg.LecturesFile, "lectures", cfg.LecturesFile, "seed lectures from this YAML `file` if there are none")
	fs.BoolVar(&cfg.CookieSecure, "cookie-secure", cfg.CookieSecure, "send the session cookie over HTTPS only")
	fs.DurationVar(&cfg.IdleTimeout, "idle-timeout", cfg.IdleTimeout, "session idle timeout")
	fs.DurationVar(&cfg.Lifetime, "lifetime", cfg.Lifetime, "absolute session lifetime")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", cfg.BcryptCost, "bcrypt cost for new password hashes")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "console or json")
}

// set assigns a value by flag name.
func (cfg *Config) set(key, value string) error {
	var err error
	switch key {
	case "base":
		cfg.Base = value
	case "db":
		cfg.DB = value
	case "listen":
		cfg.Listen = value
	case "lectures":
		cfg.LecturesFile = value
	case "cookie-secure":
		cfg.CookieSecure, err = strconv.ParseBool(value)
	case "idle-timeout":
		cfg.IdleTimeout, err = time.ParseDuration(value)
	case "lifetime":
		cfg.Lifetime, err = time.ParseDuration(value)
	case "bcrypt-cost":
		cfg.BcryptCost, err = strconv.Atoi(value)
	case "log-level":
		cfg.LogLevel = value
	case "log-format":
		cfg.LogFormat = value
	default:
		return fmt.Errorf("unknown setting %s", key)
	}
	if err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}
	return nil
}

var keys = []string{"base", "db", "listen", "lectures", "cookie-secure", "idle-timeout", "lifetime", "bcrypt-cost", "log-level", "log-format"}

func (cfg *Config) loadIni(path string) error {
	file, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("loading config file: %w", err)
	}
	for key, value := range file.Section("").KeysHash() {
		if err := cfg.set(key, value); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// loadEnv reads COURSENOTES_DB, COURSENOTES_IDLE_TIMEOUT etc.
func (cfg *Config) loadEnv(lookup func(string) (string, bool)) error {
	for _, key := range keys {
		var name = EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
		if value, ok := lookup(name); ok {
			if err := cfg.set(key, value); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}

func (cfg *Config) Validate() error {
	cfg.Base = strings.Trim(cfg.Base, "/")
	if cfg.Base != "" {
		cfg.Base = "/" + cfg.Base
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return fmt.Errorf("bcrypt cost must be between 4 and 31, got %d", cfg.BcryptCost)
	}
	switch cfg.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.LogFormat)
	}
	return nil
}

// configPath looks for -config or --config in args, so the file can be loaded before the flags are parsed.
func configPath(args []string) string {
	for i, arg := range args {
		if arg == "--" {
			break
		}
		var name = strings.TrimLeft(arg, "-")
		if name == arg {
			continue // not a flag
		}
		if value, ok := strings.CutPrefix(name, "config="); ok {
			return value
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

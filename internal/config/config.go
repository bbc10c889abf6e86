// Package config holds the settings of a conversion run.
//
// Every setting has a command-line flag and an environment variable; the environment supplies the
// default and the flag, when given, wins.
package config

import (
	"os"
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"go.uber.org/zap/zapcore"

	"github.com/928799934/cgbi-png-fix/internal/log"
)

// EnvPrefix prefixes the environment variable of every setting.
const EnvPrefix = "IPNGCONV_"

// Config is the configuration of a conversion run.
type Config struct {
	// Workers is how many files are converted at the same time.
	Workers int
	// Level is the zlib level of rebuilt pixel data, 1 to 9.
	Level int
	// CopyPlain copies PNG files that are not CgBI to the target unchanged.
	CopyPlain bool
	// Strict reports files without a PNG signature as failures instead of skipping them.
	Strict bool
	LogLevel  string
	LogFormat string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Workers:   runtime.GOMAXPROCS(0),
		Level:     9,
		LogLevel:  "info",
		LogFormat: string(log.FormatConsole),
	}
}

// FromEnv returns the default configuration overridden by the process environment.
func FromEnv() (Config, error) {
	return fromLookup(os.LookupEnv)
}

func fromLookup(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	if err := lookupInt(lookup, "WORKERS", &c.Workers); err != nil {
		return c, err
	}
	if err := lookupInt(lookup, "LEVEL", &c.Level); err != nil {
		return c, err
	}
	if err := lookupBool(lookup, "COPY_PLAIN", &c.CopyPlain); err != nil {
		return c, err
	}
	if err := lookupBool(lookup, "STRICT", &c.Strict); err != nil {
		return c, err
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok && v != "" {
		c.LogFormat = v
	}
	return c, nil
}

func lookupInt(lookup func(string) (string, bool), key string, dst *int) error {
	v, ok := lookup(EnvPrefix + key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrapf(err, "cannot parse %s%s", EnvPrefix, key)
	}
	*dst = n
	return nil
}

func lookupBool(lookup func(string) (string, bool), key string, dst *bool) error {
	v, ok := lookup(EnvPrefix + key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errors.Wrapf(err, "cannot parse %s%s", EnvPrefix, key)
	}
	*dst = b
	return nil
}

// BindFlags registers c's fields on fs, using their current values as defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.IntVarP(&c.Workers, "workers", "j", c.Workers, "Number of files converted in parallel ($"+EnvPrefix+"WORKERS).")
	fs.IntVar(&c.Level, "level", c.Level, "Compression level of the rebuilt pixel data, 1-9 ($"+EnvPrefix+"LEVEL).")
	fs.BoolVar(&c.CopyPlain, "copy-plain", c.CopyPlain, "Copy PNG files that are not CgBI to the target unchanged ($"+EnvPrefix+"COPY_PLAIN).")
	fs.BoolVar(&c.Strict, "strict", c.Strict, "Fail on .png files without a PNG signature instead of skipping them ($"+EnvPrefix+"STRICT).")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "One of debug, info, warn, error ($"+EnvPrefix+"LOG_LEVEL).")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "One of console, json ($"+EnvPrefix+"LOG_FORMAT).")
}

// Validate reports the first setting that is out of range.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return errors.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Level < 1 || c.Level > 9 {
		return errors.Errorf("level must be between 1 and 9, got %d", c.Level)
	}
	if _, err := c.ZapLevel(); err != nil {
		return err
	}
	switch log.Format(c.LogFormat) {
	case log.FormatConsole, log.FormatJSON:
	default:
		return errors.Errorf("unknown log format %q", c.LogFormat)
	}
	return nil
}

// ZapLevel parses LogLevel.
func (c Config) ZapLevel() (zapcore.Level, error) {
	return log.ParseLevel(c.LogLevel)
}

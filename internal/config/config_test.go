package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func env(kv map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := kv[k]
		return v, ok
	}
}

func TestFromLookup(t *testing.T) {
	c, err := fromLookup(env(map[string]string{
		"IPNGCONV_WORKERS":    "3",
		"IPNGCONV_LEVEL":      "6",
		"IPNGCONV_COPY_PLAIN": "true",
		"IPNGCONV_LOG_LEVEL":  "debug",
		"IPNGCONV_LOG_FORMAT": "",
	}))
	require.NoError(t, err)
	want := Config{Workers: 3, Level: 6, CopyPlain: true, LogLevel: "debug", LogFormat: "console"}
	if diff := cmp.Diff(c, want); diff != "" {
		t.Errorf("config (-got +want):\n%s", diff)
	}
	require.NoError(t, c.Validate())
}

func TestFromLookupErrors(t *testing.T) {
	_, err := fromLookup(env(map[string]string{"IPNGCONV_WORKERS": "many"}))
	require.ErrorContains(t, err, "IPNGCONV_WORKERS")

	_, err = fromLookup(env(map[string]string{"IPNGCONV_STRICT": "sometimes"}))
	require.ErrorContains(t, err, "IPNGCONV_STRICT")
}

func TestFlagsOverrideEnv(t *testing.T) {
	c, err := fromLookup(env(map[string]string{"IPNGCONV_WORKERS": "3"}))
	require.NoError(t, err)
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	c.BindFlags(fs)
	require.NoError(t, fs.Parse([]string{"-j", "8", "--strict", "--log-format=json"}))
	require.Equal(t, 8, c.Workers)
	require.True(t, c.Strict)
	require.Equal(t, "json", c.LogFormat)
	require.Equal(t, 9, c.Level)
}

func TestValidate(t *testing.T) {
	testData := []struct {
		name   string
		modify func(c *Config)
	}{
		{name: "workers", modify: func(c *Config) { c.Workers = 0 }},
		{name: "level low", modify: func(c *Config) { c.Level = 0 }},
		{name: "level high", modify: func(c *Config) { c.Level = 10 }},
		{name: "log level", modify: func(c *Config) { c.LogLevel = "loud" }},
		{name: "log format", modify: func(c *Config) { c.LogFormat = "xml" }},
	}
	for _, test := range testData {
		t.Run(test.name, func(t *testing.T) {
			c := Default()
			require.NoError(t, c.Validate())
			test.modify(&c)
			require.Error(t, c.Validate())
		})
	}

	l, err := Config{LogLevel: "warn"}.ZapLevel()
	require.NoError(t, err)
	require.Equal(t, zapcore.WarnLevel, l)
}

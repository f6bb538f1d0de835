package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/raphaelreyna/ez-httpd/pkg/config"
	"github.com/raphaelreyna/ez-httpd/pkg/message"
)

func TestConfigLoad(t *testing.T) {
	t.Run("JSON", func(t *testing.T) {
		cfg, err := config.Load("testdata/config.json")
		require.NoError(t, err)

		assert.Equal(t, &config.Config{
			Host:          "0.0.0.0",
			Port:          9090,
			DocumentRoot:  "www",
			ScriptTimeout: config.Duration(3 * time.Second),
			MaxBodyBytes:  message.DefaultMaxBodyBytes,
		}, cfg)
		assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	})

	t.Run("YAML", func(t *testing.T) {
		cfg, err := config.Load("testdata/config.yaml")
		require.NoError(t, err)

		assert.Equal(t, &config.Config{
			Host:         "localhost",
			Port:         8000,
			DocumentRoot: "./site",
			ReadTimeout:  config.Duration(10 * time.Second),
			WriteTimeout: config.Duration(time.Minute),
			MaxBodyBytes: 4096,
		}, cfg)
	})

	t.Run("Partial file keeps defaults", func(t *testing.T) {
		cfg, err := config.Load("testdata/partial.yaml")
		require.NoError(t, err)

		want := config.Default()
		want.Port = 8081
		assert.Equal(t, want, cfg)
	})

	t.Run("Missing file", func(t *testing.T) {
		cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.json"))
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("Bad duration", func(t *testing.T) {
		_, err := config.Load("testdata/bad-duration.yaml")
		require.Error(t, err)
	})

	t.Run("Port out of range", func(t *testing.T) {
		_, err := config.Load("testdata/bad-port.json")
		require.Error(t, err)
	})
}

func TestConfigValidate(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	tt := []struct {
		Name    string
		Mutate  func(*config.Config)
		WantErr bool
	}{
		{Name: "Valid", Mutate: func(c *config.Config) {}},
		{Name: "Zero port", Mutate: func(c *config.Config) { c.Port = 0 }, WantErr: true},
		{Name: "Empty root", Mutate: func(c *config.Config) { c.DocumentRoot = "" }, WantErr: true},
		{Name: "Missing root", Mutate: func(c *config.Config) { c.DocumentRoot = filepath.Join(dir, "gone") }, WantErr: true},
		{Name: "Root is a file", Mutate: func(c *config.Config) { c.DocumentRoot = file }, WantErr: true},
		{Name: "Negative body limit", Mutate: func(c *config.Config) { c.MaxBodyBytes = -1 }, WantErr: true},
	}
	for _, tc := range tt {
		t.Run(tc.Name, func(t *testing.T) {
			cfg := config.Default()
			cfg.DocumentRoot = dir
			tc.Mutate(cfg)

			err := cfg.Validate()
			if tc.WantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDurationMarshal(t *testing.T) {
	d := config.Duration(90 * time.Second)

	b, err := d.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(b))

	out, err := yaml.Marshal(struct {
		D config.Duration `yaml:"d"`
	}{d})
	require.NoError(t, err)
	assert.Equal(t, "d: 1m30s\n", string(out))

	var back config.Duration
	require.NoError(t, back.UnmarshalJSON(b))
	assert.Equal(t, 90*time.Second, back.Std())

	require.Error(t, back.UnmarshalJSON([]byte(`"-1s"`)))
	require.Error(t, back.UnmarshalJSON([]byte(`5`)))
}

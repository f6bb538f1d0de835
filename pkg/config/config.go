// Package config holds the server configuration. A Config is loaded once at
// startup and handed to the components that need it; nothing reads it from a
// global.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/raphaelreyna/ez-httpd/pkg/message"
)

// Values used for settings missing from the config file.
var (
	DefaultHost         = "127.0.0.1"
	DefaultPort  uint16 = 8080
	DefaultRoot         = "public"
	DefaultFile         = "config.json"
)

// Config holds the server settings read from the config file and
// overridden by command-line flags.
type Config struct {
	// Host is the address to listen on.
	Host string `json:"host" yaml:"host"`
	// Port is the TCP port to listen on.
	Port uint16 `json:"port" yaml:"port"`
	// DocumentRoot is the directory all served content must live under.
	// Request paths are resolved against the working directory, so it has
	// to be the working directory or lie below it.
	DocumentRoot string `json:"document_root" yaml:"document_root"`

	// ReadTimeout bounds reading the request. Zero disables it.
	ReadTimeout Duration `json:"read_timeout,omitempty" yaml:"read_timeout,omitempty"`
	// WriteTimeout bounds writing the response. Zero disables it.
	WriteTimeout Duration `json:"write_timeout,omitempty" yaml:"write_timeout,omitempty"`
	// ScriptTimeout bounds a CGI script run. Zero disables it.
	ScriptTimeout Duration `json:"script_timeout,omitempty" yaml:"script_timeout,omitempty"`
	// MaxBodyBytes is the largest Content-Length accepted.
	MaxBodyBytes int64 `json:"max_body_bytes,omitempty" yaml:"max_body_bytes,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		DocumentRoot: DefaultRoot,
		MaxBodyBytes: message.DefaultMaxBodyBytes,
	}
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}

// Load reads the configuration at path. Files ending in .json are decoded as
// JSON, anything else as YAML. Fields missing from the file keep their
// defaults. A missing file yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultFile
	}
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
		}
	}
	return cfg, nil
}

// Validate checks that the configuration can be served.
func (c *Config) Validate() error {
	if c.Port == 0 {
		return errors.New("port must be non-zero")
	}
	if c.DocumentRoot == "" {
		return errors.New("document_root must be set")
	}
	fi, err := os.Stat(c.DocumentRoot)
	if err != nil {
		return fmt.Errorf("document_root: %w", err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("document_root %s is not a directory", c.DocumentRoot)
	}
	if c.MaxBodyBytes < 0 {
		return errors.New("max_body_bytes must not be negative")
	}
	return nil
}

// Duration is a time.Duration written as a Go duration string ("5s") in
// configuration files.
type Duration time.Duration

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.set(s)
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	return d.set(s)
}

func (d *Duration) set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return fmt.Errorf("duration %s must not be negative", s)
	}
	*d = Duration(v)
	return nil
}

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	envRegion       = "AWS_REGION"
	envEndpoint     = "AWS_ENDPOINT_URL_S3"
	envForcePathSty = "AWS_S3_FORCE_PATH_STYLE"
)

type Config struct {
	S3    S3Config    `toml:"s3"`
	Codec CodecConfig `toml:"codec"`
	Log   LogConfig   `toml:"log"`
}

type S3Config struct {
	Endpoint        string   `toml:"endpoint"`
	Region          string   `toml:"region"`
	Profile         string   `toml:"profile"`
	UsePathStyle    bool     `toml:"use_path_style"`
	RequestTimeout  Duration `toml:"request_timeout"`
	ListPageTimeout Duration `toml:"list_page_timeout"`
	DeleteTimeout   Duration `toml:"delete_timeout"`
}

type CodecConfig struct {
	TextEncoding string `toml:"text_encoding"`
	JSONIndent   int    `toml:"json_indent"`
	YAMLIndent   int    `toml:"yaml_indent"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Duration decodes TOML strings such as "30s" or "2m".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultConfig() *Config {
	return &Config{
		S3: S3Config{
			RequestTimeout:  Duration{5 * time.Minute},
			ListPageTimeout: Duration{30 * time.Second},
			DeleteTimeout:   Duration{time.Minute},
		},
		Codec: CodecConfig{
			TextEncoding: "utf-8",
			JSONIndent:   4,
			YAMLIndent:   2,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	cfg.ApplyEnvironment()
	cfg.ApplyDefaults()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvironment lets the standard AWS variables override the file.
func (c *Config) ApplyEnvironment() {
	if v := strings.TrimSpace(os.Getenv(envRegion)); v != "" {
		c.S3.Region = v
	}
	if v := strings.TrimSpace(os.Getenv(envEndpoint)); v != "" {
		c.S3.Endpoint = v
	}
	if strings.EqualFold(strings.TrimSpace(os.Getenv(envForcePathSty)), "true") {
		c.S3.UsePathStyle = true
	}
}

func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.S3.RequestTimeout.Duration == 0 {
		c.S3.RequestTimeout = defaults.S3.RequestTimeout
	}
	if c.S3.ListPageTimeout.Duration == 0 {
		c.S3.ListPageTimeout = defaults.S3.ListPageTimeout
	}
	if c.S3.DeleteTimeout.Duration == 0 {
		c.S3.DeleteTimeout = defaults.S3.DeleteTimeout
	}
	if c.Codec.TextEncoding == "" {
		c.Codec.TextEncoding = defaults.Codec.TextEncoding
	}
	if c.Codec.JSONIndent == 0 {
		c.Codec.JSONIndent = defaults.Codec.JSONIndent
	}
	if c.Codec.YAMLIndent == 0 {
		c.Codec.YAMLIndent = defaults.Codec.YAMLIndent
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
}

func (c *Config) Normalize() {
	c.S3.Endpoint = strings.TrimRight(strings.TrimSpace(c.S3.Endpoint), "/")
	c.S3.Region = strings.TrimSpace(c.S3.Region)
	c.S3.Profile = strings.TrimSpace(c.S3.Profile)
	c.Codec.TextEncoding = strings.ToLower(strings.TrimSpace(c.Codec.TextEncoding))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

func (c *Config) Validate() error {
	if err := ValidateEndpoint(c.S3.Endpoint); err != nil {
		return err
	}
	if c.S3.RequestTimeout.Duration < 0 || c.S3.ListPageTimeout.Duration < 0 || c.S3.DeleteTimeout.Duration < 0 {
		return errors.New("s3 timeouts must be >= 0")
	}
	if c.Codec.JSONIndent < 0 || c.Codec.JSONIndent > 16 {
		return errors.New("codec.json_indent must be between 0 and 16")
	}
	if c.Codec.YAMLIndent < 0 || c.Codec.YAMLIndent > 16 {
		return errors.New("codec.yaml_indent must be between 0 and 16")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error", "none":
		return nil
	default:
		return errors.New("log.level must be debug, info, warn, error, or none")
	}
}

func ValidateEndpoint(endpoint string) error {
	if endpoint == "" {
		return nil
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return fmt.Errorf("s3.endpoint must be a valid http(s) URL: %q", endpoint)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("s3.endpoint must use http or https: %q", endpoint)
	}
	return nil
}

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/fwojciec/docsync"
	"github.com/fwojciec/docsync/update"
	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// DefaultManifestURL is the published manifest of the documentation site.
const DefaultManifestURL = "https://docs.example.com/manifest.json"

// ConfigFileName is the config file looked up in the data directory.
const ConfigFileName = "config.toml"

// Duration is a time.Duration read from strings such as "30s".
type Duration time.Duration

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config holds the tunables of the update workflow.
type Config struct {
	ManifestURL    string   `toml:"manifest_url" validate:"required,url"`
	Concurrency    int      `toml:"concurrency" validate:"min=1,max=64"`
	Timeout        Duration `toml:"timeout" validate:"gt=0"`
	MaxRetries     int      `toml:"max_retries" validate:"min=0,max=10"`
	RetryDelay     Duration `toml:"retry_delay" validate:"gte=0"`
	CacheTTL       Duration `toml:"cache_ttl" validate:"gt=0"`
	RateLimit      float64  `toml:"rate_limit" validate:"gte=0"`
	ChangelogLimit int      `toml:"changelog_limit" validate:"min=1"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		ManifestURL:    DefaultManifestURL,
		Concurrency:    update.DefaultConcurrency,
		Timeout:        Duration(update.DefaultFetchTimeout),
		MaxRetries:     update.DefaultMaxRetries,
		RetryDelay:     Duration(update.DefaultRetryDelay),
		CacheTTL:       Duration(update.DefaultCacheTTL),
		ChangelogLimit: update.DefaultChangelogLimit,
	}
}

// LoadConfig reads a TOML file over the defaults. A missing file is an
// error only when required is set.
func LoadConfig(path string, required bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return cfg, nil
	} else if err != nil {
		return nil, docsync.Errorf(docsync.EINVALID, "read config %s: %s", path, err)
	}

	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, docsync.Errorf(docsync.EINVALID, "parse config %s: %s", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate returns EINVALID listing every field that fails its constraints.
func (c *Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return docsync.Errorf(docsync.EINVALID, "invalid config: %s", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: must be %s %s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field(), fe.Tag()))
		}
	}
	return docsync.Errorf(docsync.EINVALID, "invalid config: %s", strings.Join(msgs, "; "))
}

var configValidator = newConfigValidator()

// newConfigValidator reports fields by their TOML key.
func newConfigValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/prometheus/client_golang/prometheus"

	"dirpx.dev/safecall/call"
	"dirpx.dev/safecall/curl"
	"dirpx.dev/safecall/eio"
	"dirpx.dev/safecall/logging"
	"dirpx.dev/safecall/metrics"
)

// EnvPrefix prefixes the environment variables Load reads.
const EnvPrefix = "SAFECALL_"

// Config is the full runtime configuration.
type Config struct {
	Log     logging.Config `koanf:"log"`
	Metrics MetricsConfig  `koanf:"metrics"`
	Mapper  MapperConfig   `koanf:"mapper"`
	Curl    CurlConfig     `koanf:"curl"`
	EIO     EIOConfig      `koanf:"eio"`
	PgSQL   PgSQLConfig    `koanf:"pgsql"`
}

// MetricsConfig controls the Prometheus observer.
type MetricsConfig struct {
	Enabled   bool   `koanf:"enabled"`
	Namespace string `koanf:"namespace" validate:"omitempty,alphanum"`
}

// CurlConfig holds the settings new transfer handles start with.
// MaxRedirects must be positive; disable FollowRedirects to refuse
// redirects altogether.
type CurlConfig struct {
	Timeout         time.Duration `koanf:"timeout" validate:"gte=0"`
	UserAgent       string        `koanf:"user_agent"`
	FollowRedirects bool          `koanf:"follow_redirects"`
	MaxRedirects    int           `koanf:"max_redirects" validate:"gt=0"`
}

// EIOConfig sizes asynchronous I/O loops.
type EIOConfig struct {
	Workers   int `koanf:"workers" validate:"gte=1,lte=1024"`
	QueueSize int `koanf:"queue_size" validate:"gte=1"`
}

// PgSQLConfig holds the default PostgreSQL connection string.
type PgSQLConfig struct {
	DSN string `koanf:"dsn"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Log:     logging.Config{Level: "INFO", Format: "text", Output: "stderr"},
		Metrics: MetricsConfig{Namespace: metrics.DefaultNamespace},
		Curl:    CurlConfig{Timeout: 30 * time.Second, MaxRedirects: 20},
		EIO:     EIOConfig{Workers: 4, QueueSize: 64},
	}
}

var validate = validator.New()

// Load reads the configuration. A path that does not exist is not an
// error; an empty path skips the file.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: failed to load %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the mapper rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("config: validation failed: %w", err)
		}
		var sb strings.Builder
		sb.WriteString("config: validation failed:")
		for _, e := range errs {
			fmt.Fprintf(&sb, "\n  %s: failed '%s' (value: %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return errors.New(sb.String())
	}
	if _, err := c.NewMapper(); err != nil {
		return err
	}
	return nil
}

// CurlDefaults converts the curl section for curl.WithDefaults.
func (c *Config) CurlDefaults() curl.Defaults {
	return curl.Defaults{
		Timeout:         c.Curl.Timeout,
		UserAgent:       c.Curl.UserAgent,
		FollowRedirects: c.Curl.FollowRedirects,
		MaxRedirects:    c.Curl.MaxRedirects,
	}
}

// LoopOptions converts the eio section for eio.New.
func (c *Config) LoopOptions() []eio.Option {
	return []eio.Option{eio.WithWorkers(c.EIO.Workers), eio.WithQueueSize(c.EIO.QueueSize)}
}

// Env configures the package logger from the log section and returns an
// Env observed by a logging.Observer and, when metrics are enabled, a
// metrics.Observer registered with reg.
func (c *Config) Env(reg prometheus.Registerer) (*call.Env, error) {
	if err := logging.Init(c.Log); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	obs := []call.Observer{logging.Observer{}}
	if c.Metrics.Enabled {
		m, err := metrics.NewObserver(reg, c.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		obs = append(obs, m)
	}
	return call.NewEnv(call.WithObserver(call.Observers(obs...))), nil
}

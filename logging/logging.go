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

package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// Config holds logger configuration.
type Config struct {
	Level  string `koanf:"level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=text json"`
	Output string `koanf:"output"` // stdout, stderr, or a file path
}

var (
	mu     sync.RWMutex
	level  = new(slog.LevelVar)
	output io.Writer = os.Stderr
	format = "text"
	logger = build()
)

func build() *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(output, opts))
	}
	return slog.New(slog.NewTextHandler(output, opts))
}

// Init configures the package logger. Empty fields keep their current
// value. Output may be "stdout", "stderr" or a file path, opened for
// appending.
func Init(cfg Config) error {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	var w io.Writer
	switch strings.ToLower(cfg.Output) {
	case "":
	case "stdout":
		w = os.Stdout
	case "stderr":
		w = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file %q: %w", cfg.Output, err)
		}
		w = f
	}

	mu.Lock()
	defer mu.Unlock()
	if w != nil {
		output = w
	}
	if cfg.Level != "" {
		level.Set(lvl)
	}
	if cfg.Format != "" {
		format = strings.ToLower(cfg.Format)
	}
	logger = build()
	return nil
}

// InitWithWriter sends log output to w. It is meant for tests.
func InitWithWriter(w io.Writer, lvl, fmtName string) error {
	mu.Lock()
	output = w
	mu.Unlock()
	return Init(Config{Level: lvl, Format: fmtName})
}

// ParseLevel parses DEBUG, INFO, WARN or ERROR in any case. The empty
// string is INFO.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(s) {
	case "", "INFO":
		return slog.LevelInfo, nil
	case "DEBUG":
		return slog.LevelDebug, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}

// Logger returns the package logger.
func Logger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logging builds the slog.Logger used across sirseer-activity:
// a colored tint handler for terminals or a JSON handler for machines.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/lmittmann/tint"

	"github.com/sirseerhq/sirseer-activity/internal/config"
)

// Validate checks that the level and format are ones New understands.
func Validate(cfg config.LogConfig) error {
	return validation.ValidateStruct(&cfg,
		validation.Field(&cfg.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&cfg.Format, validation.Required, validation.In("json", "text")),
	)
}

// New returns a logger writing to w. Progress and banners go through the
// same logger, so w is normally stderr and stdout stays free for the report.
func New(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid log config: %w", err)
	}

	level := Level(cfg.Level)

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     level,
			AddSource: cfg.AddSource,
		})
	default:
		handler = tint.NewHandler(w, &tint.Options{
			Level:      level,
			AddSource:  cfg.AddSource,
			TimeFormat: time.TimeOnly,
		})
	}

	return slog.New(handler), nil
}

// Level maps a config level name to its slog level. Unknown names map to info.
func Level(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Tests and library callers
// that do not care about output use it.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

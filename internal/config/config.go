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

// Package config provides configuration management for sirseer-activity
// with a well-defined precedence order:
//
//  1. DefaultConfig
//  2. a YAML file (explicit path, or the first of .sirseer-activity.yaml,
//     .sirseer-activity.yml, ~/.sirseer/activity.yaml)
//  3. environment variables (see the env tags in types.go)
//  4. command-line flags, applied by cmd/activity
//
// The affiliation tables live in the same file so that organizations can
// be maintained without a rebuild.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// LoadConfig builds the effective configuration. If configPath is empty the
// standard locations are searched and a missing file is not an error; an
// explicit path that cannot be read or parsed is.
//
// The result is not validated; call Validate after flag overrides.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if err := loadConfigFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	} else {
		for _, path := range defaultPaths() {
			if _, err := os.Stat(path); err == nil {
				if err := loadConfigFile(path, cfg); err != nil {
					return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
				}
				break
			}
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment variables: %w", err)
	}

	cfg.Output.Path = expandPath(cfg.Output.Path)

	return cfg, nil
}

func defaultPaths() []string {
	return []string{
		".sirseer-activity.yaml",
		".sirseer-activity.yml",
		filepath.Join(os.Getenv("HOME"), ".sirseer", "activity.yaml"),
	}
}

// loadConfigFile reads and parses a YAML config file on top of cfg. A file
// that lists affiliations replaces the default tables entirely.
func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	defaults := cfg.Affiliations
	cfg.Affiliations = nil
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if cfg.Affiliations == nil {
		cfg.Affiliations = defaults
	}

	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home := os.Getenv("HOME")
		if home == "" {
			home = os.Getenv("USERPROFILE") // Windows
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// Owner returns the owner half of GitHub.Repository.
func (c *Config) Owner() string {
	owner, _, _ := strings.Cut(c.GitHub.Repository, "/")
	return owner
}

// Name returns the repository half of GitHub.Repository.
func (c *Config) Name() string {
	_, name, _ := strings.Cut(c.GitHub.Repository, "/")
	return name
}

// Token returns the GitHub token from the configured environment variable.
// An empty result means unauthenticated requests.
func (c *Config) Token() string {
	return os.Getenv(c.GitHub.TokenEnv)
}

// Validate checks the configuration for values the run cannot work with.
// GitHub caps connection page sizes at 100.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(&c.GitHub,
		validation.Field(&c.GitHub.GraphQLEndpoint, validation.Required, is.URL),
		validation.Field(&c.GitHub.TokenEnv, validation.Required),
		validation.Field(&c.GitHub.Repository, validation.Required, validation.By(repositoryRule)),
	); err != nil {
		return fmt.Errorf("github: %w", err)
	}

	if err := validation.ValidateStruct(&c.Fetch,
		validation.Field(&c.Fetch.PageSize, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.Fetch.ParticipantsLimit, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.Fetch.LabelsLimit, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.Fetch.ProviderLabel, validation.Required),
	); err != nil {
		return fmt.Errorf("fetch: %w", err)
	}

	if err := validation.ValidateStruct(&c.Retry,
		validation.Field(&c.Retry.MaxAttempts, validation.Required, validation.Min(1)),
		validation.Field(&c.Retry.Multiplier, validation.Required),
		validation.Field(&c.Retry.MaxBackoff, validation.Required),
	); err != nil {
		return fmt.Errorf("retry: %w", err)
	}

	if err := validation.ValidateStruct(&c.Output,
		validation.Field(&c.Output.Path, validation.Required),
	); err != nil {
		return fmt.Errorf("output: %w", err)
	}

	return validateAffiliations(c.Affiliations)
}

func repositoryRule(value interface{}) error {
	repo, _ := value.(string)
	owner, name, ok := strings.Cut(repo, "/")
	if !ok || strings.TrimSpace(owner) == "" || strings.TrimSpace(name) == "" || strings.Contains(name, "/") {
		return errors.New("must be in the form <owner>/<repo>")
	}
	return nil
}

// validateAffiliations requires named organizations and disjoint login sets.
func validateAffiliations(tables []AffiliationConfig) error {
	seen := make(map[string]string)
	for i, table := range tables {
		if strings.TrimSpace(table.Organization) == "" {
			return fmt.Errorf("affiliations[%d]: organization cannot be empty", i)
		}
		for _, login := range table.Logins {
			if other, ok := seen[login]; ok && other != table.Organization {
				return fmt.Errorf("affiliations: login %q is listed for both %s and %s", login, other, table.Organization)
			}
			seen[login] = table.Organization
		}
	}
	return nil
}

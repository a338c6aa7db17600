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

// Package config types define the configuration structures used throughout
// sirseer-activity. Values come from DefaultConfig, then an optional YAML
// file, then environment variables, then command-line flags.
package config

import "time"

// Config is the complete runtime configuration for one report run.
type Config struct {
	GitHub       GitHubConfig        `yaml:"github"`
	Fetch        FetchConfig         `yaml:"fetch"`
	Retry        RetryConfig         `yaml:"retry"`
	Output       OutputConfig        `yaml:"output"`
	Log          LogConfig           `yaml:"log"`
	Affiliations []AffiliationConfig `yaml:"affiliations"`
}

// GitHubConfig contains the GraphQL endpoint, the repository to report on
// and the name of the environment variable holding the token. A custom
// endpoint allows pointing the tool at GitHub Enterprise.
type GitHubConfig struct {
	GraphQLEndpoint string `yaml:"graphql_endpoint" env:"GITHUB_GRAPHQL_ENDPOINT"`
	TokenEnv        string `yaml:"token_env" env:"ACTIVITY_TOKEN_ENV"`
	Repository      string `yaml:"repository" env:"ACTIVITY_REPOSITORY"`
}

// FetchConfig controls the shape of the pull request query.
type FetchConfig struct {
	PageSize          int    `yaml:"page_size" env:"ACTIVITY_PAGE_SIZE"`
	ParticipantsLimit int    `yaml:"participants_limit" env:"ACTIVITY_PARTICIPANTS_LIMIT"`
	LabelsLimit       int    `yaml:"labels_limit" env:"ACTIVITY_LABELS_LIMIT"`
	ProviderLabel     string `yaml:"provider_label" env:"ACTIVITY_PROVIDER_LABEL"`
}

// RetryConfig controls the per-request retry policy. The wait before attempt
// n+1 is drawn uniformly from [0, min(MaxBackoff, Multiplier*2^(n-1))].
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" env:"ACTIVITY_MAX_ATTEMPTS"`
	Multiplier  time.Duration `yaml:"multiplier" env:"ACTIVITY_RETRY_MULTIPLIER"`
	MaxBackoff  time.Duration `yaml:"max_backoff" env:"ACTIVITY_RETRY_MAX_BACKOFF"`
}

// OutputConfig holds the fixed path the report is written to.
type OutputConfig struct {
	Path string `yaml:"path" env:"ACTIVITY_OUTPUT"`
}

// LogConfig selects the slog handler. Format is "text" (tint) or "json".
type LogConfig struct {
	Level     string `yaml:"level" env:"ACTIVITY_LOG_LEVEL"`
	Format    string `yaml:"format" env:"ACTIVITY_LOG_FORMAT"`
	AddSource bool   `yaml:"add_source" env:"ACTIVITY_LOG_ADD_SOURCE"`
}

// AffiliationConfig maps a set of GitHub logins to one organization.
// Entries are matched in file order.
type AffiliationConfig struct {
	Organization string   `yaml:"organization"`
	Logins       []string `yaml:"logins"`
}

// DefaultConfig returns the configuration used when no file or environment
// override is present: the apache/airflow report with the Polidea and
// Astronomer member lists.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			GraphQLEndpoint: "https://api.github.com/graphql",
			TokenEnv:        "GITHUB_TOKEN",
			Repository:      "apache/airflow",
		},
		Fetch: FetchConfig{
			PageSize:          100,
			ParticipantsLimit: 50,
			LabelsLimit:       10,
			ProviderLabel:     "provider:Google",
		},
		Retry: RetryConfig{
			MaxAttempts: 7,
			Multiplier:  time.Second,
			MaxBackoff:  120 * time.Second,
		},
		Output: OutputConfig{
			Path: "all-activity.json",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Affiliations: []AffiliationConfig{
			{
				Organization: "Polidea",
				Logins: []string{
					"potiuk",
					"mschickensoup",
					"mik-laj",
					"turbaszek",
					"michalslowikowski00",
					"olchas",
				},
			},
			{
				Organization: "Astronomer",
				Logins: []string{
					"schnie", "ashb", "kaxil", "dimberman", "andriisoldatenko", "ryw", "andrewhharmon",
				},
			},
		},
	}
}

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

// Package metadata types describe a single report run: what was asked for
// and what came back.
package metadata

import (
	"log/slog"
	"time"
)

// RunMetadata is the summary of one report run. It is logged when the run
// finishes and never persisted.
type RunMetadata struct {
	Version       string     `json:"version"`
	MethodVersion string     `json:"method_version"`
	RunID         string     `json:"run_id"`
	Parameters    RunParams  `json:"parameters"`
	Results       RunResults `json:"results"`
}

// RunParams captures the inputs of a run.
type RunParams struct {
	Repository string `json:"repository"`
	Output     string `json:"output"`
	PageSize   int    `json:"page_size"`
}

// RunResults contains the statistics of a completed run. Merge times use
// the minute-precision form of the report.
type RunResults struct {
	PullRequests int       `json:"pull_requests"`
	Records      int       `json:"records"`
	Pages        int       `json:"pages"`
	APICallCount int       `json:"api_calls_made"`
	OldestMerge  string    `json:"oldest_merge,omitempty"`
	NewestMerge  string    `json:"newest_merge,omitempty"`
	Duration     string    `json:"duration"`
	StartedAt    time.Time `json:"started_at"`
	CompletedAt  time.Time `json:"completed_at"`
}

// LogValue implements slog.LogValuer so a run summary logs as one group.
func (m *RunMetadata) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("run_id", m.RunID),
		slog.String("version", m.Version),
		slog.String("repository", m.Parameters.Repository),
		slog.String("output", m.Parameters.Output),
		slog.Int("pull_requests", m.Results.PullRequests),
		slog.Int("records", m.Results.Records),
		slog.Int("pages", m.Results.Pages),
		slog.Int("api_calls", m.Results.APICallCount),
		slog.String("oldest_merge", m.Results.OldestMerge),
		slog.String("newest_merge", m.Results.NewestMerge),
		slog.String("duration", m.Results.Duration),
	)
}

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

// Package metadata tracks statistics about a report run: API attempts,
// pages, pull requests, derived records and the range of merge times.
//
// A Tracker is created at the start of a run and turned into a RunMetadata
// at the end. The summary is logged; nothing is written to disk.
package metadata

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// MethodVersion identifies the shape of the merged pull request query
	MethodVersion = "graphql-merged-pull-requests-v1"
)

// Tracker collects statistics during a run. It is safe for concurrent use.
type Tracker struct {
	mu           sync.Mutex
	runID        string
	startTime    time.Time
	apiCallCount int
	pages        int
	records      int
	prStats      PRStats
	now          func() time.Time
}

// PRStats holds statistics about the merged pull requests seen in a run.
type PRStats struct {
	TotalPRs    int    // Total number of PRs processed
	OldestMerge string // Earliest merge time, YYYY-MM-DDTHH:MM
	NewestMerge string // Latest merge time, YYYY-MM-DDTHH:MM
}

// New creates a new tracker with a fresh run id and the current time.
func New() *Tracker {
	return newTracker(time.Now)
}

func newTracker(now func() time.Time) *Tracker {
	return &Tracker{
		runID:     uuid.NewString(),
		startTime: now(),
		now:       now,
	}
}

// RunID returns the id that tags every log line of this run.
func (t *Tracker) RunID() string {
	return t.runID
}

// IncrementAPICall records one request attempt, successful or not.
func (t *Tracker) IncrementAPICall() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.apiCallCount++
}

// RecordPage records one page received from the API.
func (t *Tracker) RecordPage() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pages++
}

// UpdatePRStats updates the running statistics with one pull request's
// normalized merge time. Minute-precision timestamps order lexically.
func (t *Tracker) UpdatePRStats(mergedAt string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.prStats.TotalPRs++
	if t.prStats.OldestMerge == "" || mergedAt < t.prStats.OldestMerge {
		t.prStats.OldestMerge = mergedAt
	}
	if mergedAt > t.prStats.NewestMerge {
		t.prStats.NewestMerge = mergedAt
	}
}

// SetRecords records the number of derived activity records.
func (t *Tracker) SetRecords(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = n
}

// Stats returns a snapshot of the pull request statistics.
func (t *Tracker) Stats() PRStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.prStats
}

// GenerateMetadata creates the summary of the run so far.
func (t *Tracker) GenerateMetadata(version string, params RunParams) *RunMetadata {
	t.mu.Lock()
	defer t.mu.Unlock()

	completedAt := t.now()
	duration := completedAt.Sub(t.startTime)

	return &RunMetadata{
		Version:       version,
		MethodVersion: MethodVersion,
		RunID:         t.runID,
		Parameters:    params,
		Results: RunResults{
			PullRequests: t.prStats.TotalPRs,
			Records:      t.records,
			Pages:        t.pages,
			APICallCount: t.apiCallCount,
			OldestMerge:  t.prStats.OldestMerge,
			NewestMerge:  t.prStats.NewestMerge,
			Duration:     duration.Round(time.Millisecond).String(),
			StartedAt:    t.startTime,
			CompletedAt:  completedAt,
		},
	}
}

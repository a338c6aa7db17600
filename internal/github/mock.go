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

package github

import (
	"context"
	"fmt"

	relaierrors "github.com/sirseerhq/sirseer-activity/internal/errors"
)

// MockClient is a mock implementation of the GitHub Client interface for testing.
// It serves Pages in order, one per call, and ignores the cursor it is given
// apart from recording it.
type MockClient struct {
	// Pages to return, in call order
	Pages []PullRequestPage

	// Errors to return before serving pages; Errors[i] is returned on call i+1
	Errors []error

	// Behavior flags
	ShouldFailAuth     bool
	ShouldFailNetwork  bool
	ShouldFailNotFound bool

	// Track calls for verification
	CallCount int
	LastOwner string
	LastRepo  string
	Cursors   []string
	LastOpts  FetchOptions

	served int
}

// NewMockClient creates a new mock client with default test data
func NewMockClient() *MockClient {
	return &MockClient{
		Pages: []PullRequestPage{{
			Nodes:      generateTestPRs(),
			TotalCount: 3,
		}},
	}
}

// FetchMergedPullRequests implements the Client interface
func (m *MockClient) FetchMergedPullRequests(ctx context.Context, owner, repo string, opts FetchOptions) (*PullRequestPage, error) {
	m.CallCount++
	m.LastOwner = owner
	m.LastRepo = repo
	m.LastOpts = opts
	m.Cursors = append(m.Cursors, opts.After)

	// Check for context cancellation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	// Simulate various error conditions
	if m.ShouldFailAuth {
		return nil, fmt.Errorf("authentication failed: %w", relaierrors.ErrInvalidToken)
	}

	if m.ShouldFailNetwork {
		return nil, fmt.Errorf("network timeout: %w", relaierrors.ErrNetworkFailure)
	}

	if m.ShouldFailNotFound || (owner == "nonexistent" && repo == "repo") {
		return nil, fmt.Errorf("repository not found: %w", relaierrors.ErrRepoNotFound)
	}

	if idx := m.CallCount - 1; idx < len(m.Errors) && m.Errors[idx] != nil {
		return nil, m.Errors[idx]
	}

	if m.served >= len(m.Pages) {
		return nil, fmt.Errorf("mock: no page left after %d pages", m.served)
	}
	page := m.Pages[m.served]
	m.served++
	return &page, nil
}

func strPtr(s string) *string { return &s }

// generateTestPRs creates sample merged pull requests for testing
func generateTestPRs() []RawPullRequest {
	return []RawPullRequest{
		{
			Permalink:    "https://github.com/apache/airflow/pull/1234",
			Title:        "Add Dataflow operator",
			MergedAt:     "2021-03-15T08:42:31Z",
			Author:       strPtr("turbaszek"),
			MergedBy:     strPtr("potiuk"),
			Participants: []string{"turbaszek", "potiuk", "kaxil"},
			Labels:       []string{"provider:Google", "area:API"},
		},
		{
			Permalink:    "https://github.com/apache/airflow/pull/1233",
			Title:        "Fix scheduler loop",
			MergedAt:     "2021-03-14T10:00:59Z",
			Author:       strPtr("ashb"),
			MergedBy:     strPtr("kaxil"),
			Participants: []string{"ashb", "kaxil"},
			Labels:       []string{"area:scheduler"},
		},
		{
			Permalink:    "https://github.com/apache/airflow/pull/1232",
			Title:        "Update docs",
			MergedAt:     "2021-03-14T10:00:00Z",
			Author:       nil,
			MergedBy:     strPtr("mik-laj"),
			Participants: []string{"mik-laj"},
			Labels:       []string{"provider:AWS"},
		},
	}
}

// MockClientOption allows configuring the mock client
type MockClientOption func(*MockClient)

// WithPages sets the pages to serve
func WithPages(pages ...PullRequestPage) MockClientOption {
	return func(m *MockClient) {
		m.Pages = pages
	}
}

// WithErrors makes the first len(errs) calls fail with errs
func WithErrors(errs ...error) MockClientOption {
	return func(m *MockClient) {
		m.Errors = errs
	}
}

// WithAuthFailure makes the client simulate authentication failure
func WithAuthFailure() MockClientOption {
	return func(m *MockClient) {
		m.ShouldFailAuth = true
	}
}

// NewMockClientWithOptions creates a mock client with options
func NewMockClientWithOptions(opts ...MockClientOption) *MockClient {
	mock := NewMockClient()
	for _, opt := range opts {
		opt(mock)
	}
	return mock
}

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

// Package github provides types and interfaces for interacting with the GitHub API.
package github

// RawPullRequest is a merged pull request as returned by the GraphQL API,
// flattened to the fields activity records are derived from.
type RawPullRequest struct {
	Permalink    string   `json:"permalink"`
	Title        string   `json:"title"`
	MergedAt     string   `json:"merged_at"`
	Author       *string  `json:"author"`
	MergedBy     *string  `json:"merged_by"`
	Participants []string `json:"participants"`
	Labels       []string `json:"labels"`
}

// Page is one page of a GraphQL connection. An empty EndCursor means the
// connection has no further pages.
type Page[T any] struct {
	Nodes       []T
	TotalCount  int
	EndCursor   string
	StartCursor string
}

// PullRequestPage is a page of merged pull requests.
type PullRequestPage = Page[RawPullRequest]

// FetchOptions configures how pull requests are fetched.
type FetchOptions struct {
	// PageSize controls how many PRs to fetch per page.
	// Defaults to 100 if not specified. Maximum is 100 per GitHub's API limits.
	PageSize int

	// ParticipantsLimit and LabelsLimit bound the nested connections of
	// every pull request. They default to 50 and 10.
	ParticipantsLimit int
	LabelsLimit       int

	// After is the cursor for pagination.
	// Empty string fetches from the beginning.
	// Use PullRequestPage.EndCursor from previous response for next page.
	After string
}

// Default values for fetch operations
const (
	defaultPageSize          = 100
	defaultParticipantsLimit = 50
	defaultLabelsLimit       = 10
	maxConnectionSize        = 100
)

func (o FetchOptions) withDefaults() FetchOptions {
	if o.PageSize <= 0 {
		o.PageSize = defaultPageSize
	}
	if o.PageSize > maxConnectionSize {
		o.PageSize = maxConnectionSize
	}
	if o.ParticipantsLimit <= 0 {
		o.ParticipantsLimit = defaultParticipantsLimit
	}
	if o.LabelsLimit <= 0 {
		o.LabelsLimit = defaultLabelsLimit
	}
	return o
}

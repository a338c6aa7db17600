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
)

// PageFunc fetches the page that starts after cursor. An empty cursor asks
// for the first page.
type PageFunc[T any] func(ctx context.Context, cursor string) (*Page[T], error)

// ProgressReporter receives one call per fetched page. It is purely
// observational.
type ProgressReporter interface {
	Progress(collection string, percent float64, fetched, total int)
}

// ProgressFunc adapts a function to ProgressReporter.
type ProgressFunc func(collection string, percent float64, fetched, total int)

// Progress implements ProgressReporter.
func (f ProgressFunc) Progress(collection string, percent float64, fetched, total int) {
	f(collection, percent, fetched, total)
}

// Paginate walks a connection page by page and returns every node in the
// order received. Nodes are not deduplicated. The loop ends only when a
// page comes back with an empty EndCursor; there is no page limit.
//
// The total reported to progress is the one carried by the latest page, so
// a total that drifts while merges land mid-run is reported as it changes.
func Paginate[T any](ctx context.Context, collection string, fetch PageFunc[T], progress ProgressReporter) ([]T, error) {
	var (
		results = make([]T, 0)
		cursor  string
		pageNum int
	)

	for {
		pageNum++
		page, err := fetch(ctx, cursor)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch %s page %d: %w", collection, pageNum, err)
		}

		results = append(results, page.Nodes...)

		if progress != nil {
			fetched := len(results)
			progress.Progress(collection, Percent(fetched, page.TotalCount), fetched, page.TotalCount)
		}

		cursor = page.EndCursor
		if cursor == "" {
			return results, nil
		}
	}
}

// Percent returns fetched/total*100. An empty collection counts as complete.
func Percent(fetched, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(fetched) * 100 / float64(total)
}

// FetchAllMergedPullRequests pages through every merged pull request of
// owner/repo using client.
func FetchAllMergedPullRequests(ctx context.Context, client Client, owner, repo string, opts FetchOptions, progress ProgressReporter) ([]RawPullRequest, error) {
	fetch := func(ctx context.Context, cursor string) (*PullRequestPage, error) {
		pageOpts := opts
		pageOpts.After = cursor
		return client.FetchMergedPullRequests(ctx, owner, repo, pageOpts)
	}
	return Paginate(ctx, "pullRequests", fetch, progress)
}

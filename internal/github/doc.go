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

// Package github fetches merged pull requests from GitHub's GraphQL API.
//
// The package includes:
//   - A Client interface and its GraphQL implementation on shurcooL/graphql
//   - RetryClient, which retries failed attempts with jittered exponential backoff
//   - Paginate, a cursor loop over any connection with progress reporting
//   - MockClient for tests
//
// Basic usage:
//
//	client := github.NewRetryClient(
//	    github.NewGraphQLClient(token, "https://api.github.com/graphql"),
//	    github.DefaultRetryConfig(), logger)
//	prs, err := github.FetchAllMergedPullRequests(ctx, client, "apache", "airflow",
//	    github.FetchOptions{}, progress)
package github

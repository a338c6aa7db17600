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

// Package errors defines the sentinel errors shared across sirseer-activity.
// Callers wrap them with fmt.Errorf("...: %w", ...) and test with errors.Is;
// cmd/activity maps them to process exit codes.
package errors

import "errors"

var (
	// ErrInvalidToken indicates GitHub authentication failed.
	// Maps to exit code 2.
	ErrInvalidToken = errors.New("invalid github token")

	// ErrRepoNotFound indicates the specified repository does not exist or is not accessible.
	// Maps to exit code 2.
	ErrRepoNotFound = errors.New("repository not found")

	// ErrNetworkFailure indicates a network connection problem.
	// Maps to exit code 3.
	ErrNetworkFailure = errors.New("network connection failed")

	// ErrRateLimit indicates GitHub API rate limit has been exceeded.
	// Maps to exit code 2.
	ErrRateLimit = errors.New("github rate limit exceeded")

	// ErrTransport marks a failed request attempt: non-2xx status, a body that
	// is not JSON, a GraphQL errors payload or a response without data.
	// These are retried; once attempts run out the run aborts.
	ErrTransport = errors.New("graphql transport error")

	// ErrSchema indicates a well-formed response that lacks the repository or
	// collection we asked for. Never retried. Maps to exit code 4.
	ErrSchema = errors.New("unexpected graphql response shape")

	// ErrInvalidTimestamp indicates a mergedAt value that is not exactly
	// YYYY-MM-DDTHH:MM:SSZ. Maps to exit code 4.
	ErrInvalidTimestamp = errors.New("invalid merge timestamp")

	// ErrDerivation indicates a pull request that cannot be turned into
	// activity records, e.g. one without a merger. Maps to exit code 4.
	ErrDerivation = errors.New("cannot derive activity record")
)

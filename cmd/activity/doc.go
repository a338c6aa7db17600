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

// Package main implements the sirseer-activity command-line interface.
// It fetches every merged pull request of one GitHub repository over the
// GraphQL API, emits one activity record per participant, attributes each
// login to an organization and writes the result as a sorted JSON array.
//
// Usage:
//
//	sirseer-activity report [<owner>/<repo>] [flags]
//
// Example:
//
//	export GITHUB_TOKEN=your_token
//	sirseer-activity report apache/airflow --output all-activity.json
//
// Exit codes:
//   - 0: Success
//   - 1: General error
//   - 2: Authentication, not found or rate limit error
//   - 3: Network error
//   - 4: Unexpected response shape or a pull request that cannot be reported
package main

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

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirseerhq/sirseer-activity/internal/activity"
	"github.com/sirseerhq/sirseer-activity/internal/config"
	relaierrors "github.com/sirseerhq/sirseer-activity/internal/errors"
	"github.com/sirseerhq/sirseer-activity/internal/github"
	"github.com/sirseerhq/sirseer-activity/internal/logging"
	"github.com/sirseerhq/sirseer-activity/internal/metadata"
	"github.com/sirseerhq/sirseer-activity/internal/report"
	"github.com/sirseerhq/sirseer-activity/internal/testutil"
)

// setupEnv points the CLI at server and isolates it from user config.
func setupEnv(t *testing.T, server *testutil.MockServer) {
	t.Helper()

	t.Setenv("HOME", t.TempDir())
	t.Setenv("GITHUB_GRAPHQL_ENDPOINT", server.GraphQLURL())
	t.Setenv("GITHUB_TOKEN", "test-token")
	t.Setenv("ACTIVITY_MAX_ATTEMPTS", "3")
	t.Setenv("ACTIVITY_RETRY_MULTIPLIER", "1ms")
	t.Setenv("ACTIVITY_RETRY_MAX_BACKOFF", "2ms")
	t.Setenv("ACTIVITY_LOG_FORMAT", "json")
}

func runCLI(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func twoPageServer(t *testing.T) *testutil.MockServer {
	t.Helper()

	first := testutil.NewPullRequestNode(1234).
		WithTitle("Add Dataflow operator").
		WithMergedAt("2021-03-15T08:42:31Z").
		WithAuthor("turbaszek").
		WithMergedBy("potiuk").
		WithParticipants("turbaszek", "potiuk", "kaxil").
		WithLabels("provider:Google").
		Build()
	second := testutil.NewPullRequestNode(1232).
		WithTitle("Update docs").
		WithMergedAt("2021-03-14T10:00:00Z").
		WithoutAuthor().
		WithMergedBy("ashb").
		WithParticipants("random-contributor").
		WithLabels("provider:AWS").
		Build()

	return testutil.NewPagedServer(t,
		testutil.GeneratePRResponse([]map[string]interface{}{first}, 2, "cursor-1"),
		testutil.GeneratePRResponse([]map[string]interface{}{second}, 2, ""),
	)
}

func TestReportCommand_EndToEnd(t *testing.T) {
	server := twoPageServer(t)
	setupEnv(t, server)

	outputFile := filepath.Join(t.TempDir(), "all-activity.json")
	_, stderr, err := runCLI(t, "report", "apache/airflow", "--output", outputFile)
	require.NoError(t, err, stderr)

	assert.Equal(t, 2, server.RequestCount(), "no request after the last page")

	var entries []report.Entry
	testutil.ReadJSON(t, outputFile, &entries)
	require.Len(t, entries, 4)

	// Earliest merge first, with its deleted author
	assert.Nil(t, entries[0].Author)
	assert.Equal(t, "Unknown", entries[0].AuthorCompany)
	assert.Equal(t, "Unknown", entries[0].Company)
	assert.Equal(t, "Astronomer", entries[0].MergedByCompany)
	assert.Equal(t, "N", entries[0].IsGoogle)
	assert.Equal(t, "2021-03-14T10:00", entries[0].MergedAt)

	// Same pull request, ordered by participant login
	logins := []string{entries[1].UserLogin, entries[2].UserLogin, entries[3].UserLogin}
	assert.Equal(t, []string{"kaxil", "potiuk", "turbaszek"}, logins)
	for _, e := range entries[1:] {
		assert.Equal(t, "2021-03-15T08:42", e.MergedAt)
		assert.Equal(t, "Y", e.IsGoogle)
		assert.Equal(t, "Polidea", e.AuthorCompany)
		assert.Equal(t, "Polidea", e.MergedByCompany)
	}
	assert.Equal(t, "Astronomer", entries[1].Company)

	// Keys are sorted in the file
	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"author\": null,\n    \"author_company\": \"Unknown\",\n"))

	// Progress and banners go to the log
	assert.Contains(t, stderr, "Start fetching data")
	assert.Contains(t, stderr, "Progress 50.00% (1/2)")
	assert.Contains(t, stderr, "Progress 100.00% (2/2)")
	assert.Contains(t, stderr, "Fetched 2 pull requests")
	assert.Contains(t, stderr, "Created 4 items")
	assert.Contains(t, stderr, "Attributing participants")
	assert.Contains(t, stderr, "Finished")
	assert.Contains(t, stderr, `"run_id"`)
	assert.Contains(t, stderr, `"output":"`+outputFile+`"`)

	// Request shape
	reqs := server.Requests()
	assert.Nil(t, reqs[0].Variables["cursor"])
	assert.Equal(t, "cursor-1", reqs[1].Variables["cursor"])
	assert.Equal(t, "Token test-token", server.Headers()[0].Get("Authorization"))
}

func TestReportCommand_Stdout(t *testing.T) {
	server := twoPageServer(t)
	setupEnv(t, server)

	stdout, stderr, err := runCLI(t, "report", "apache/airflow", "--output", "-")
	require.NoError(t, err, stderr)

	var entries []report.Entry
	require.NoError(t, json.Unmarshal([]byte(stdout), &entries))
	assert.Len(t, entries, 4)
	assert.NotContains(t, stdout, "Finished", "logs must not mix with the report")
}

func TestReportCommand_NoToken(t *testing.T) {
	server := twoPageServer(t)
	setupEnv(t, server)
	t.Setenv("GITHUB_TOKEN", "")

	outputFile := filepath.Join(t.TempDir(), "all-activity.json")
	_, stderr, err := runCLI(t, "report", "--output", outputFile)
	require.NoError(t, err, stderr)

	assert.Empty(t, server.Headers()[0].Get("Authorization"))
	assert.Contains(t, stderr, "No GitHub token set")
	testutil.AssertFileExists(t, outputFile)
}

func TestReportCommand_Failures(t *testing.T) {
	tests := []struct {
		name         string
		server       func(t *testing.T) *testutil.MockServer
		wantCode     int
		wantRequests int
		wantStderr   string
	}{
		{
			name: "graphql errors until attempts run out",
			server: func(t *testing.T) *testutil.MockServer {
				return testutil.NewGraphQLErrorServer(t, "Something went wrong while executing your query")
			},
			wantCode:     1,
			wantRequests: 3,
			wantStderr:   "Request failed, retrying",
		},
		{
			name: "bad credentials",
			server: func(t *testing.T) *testutil.MockServer {
				return testutil.NewErrorServer(t, http.StatusUnauthorized)
			},
			wantCode:     2,
			wantRequests: 3,
		},
		{
			name: "missing repository",
			server: func(t *testing.T) *testutil.MockServer {
				return testutil.NewMockServer(t, func(w http.ResponseWriter, _ int, _ testutil.GraphQLRequest) {
					testutil.WriteJSONResponse(w, map[string]interface{}{
						"data": map[string]interface{}{"repository": nil},
					})
				})
			},
			wantCode:     4,
			wantRequests: 1,
		},
		{
			name: "pull request without merger",
			server: func(t *testing.T) *testutil.MockServer {
				node := testutil.NewPullRequestNode(1).WithoutMergedBy().Build()
				return testutil.NewPagedServer(t, testutil.GeneratePRResponse([]map[string]interface{}{node}, 1, ""))
			},
			wantCode:     4,
			wantRequests: 1,
			wantStderr:   "Cannot derive activity record",
		},
		{
			name: "fractional seconds in mergedAt",
			server: func(t *testing.T) *testutil.MockServer {
				node := testutil.NewPullRequestNode(1).WithMergedAt("2021-03-15T08:42:31.5Z").Build()
				return testutil.NewPagedServer(t, testutil.GeneratePRResponse([]map[string]interface{}{node}, 1, ""))
			},
			wantCode:     4,
			wantRequests: 1,
			wantStderr:   "https://github.com/apache/airflow/pull/1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := tt.server(t)
			setupEnv(t, server)

			outputFile := filepath.Join(t.TempDir(), "all-activity.json")
			previous := "[]\n"
			testutil.WriteFile(t, outputFile, previous)

			_, stderr, err := runCLI(t, "report", "apache/airflow", "--output", outputFile)
			require.Error(t, err)

			assert.Equal(t, tt.wantCode, mapErrorToExitCode(err), "error: %v", err)
			assert.Equal(t, tt.wantRequests, server.RequestCount())
			if tt.wantStderr != "" {
				assert.Contains(t, stderr, tt.wantStderr)
			}

			// The previous report survives and no temp file is left
			testutil.AssertFileContains(t, outputFile, previous)
			matches, _ := filepath.Glob(filepath.Join(filepath.Dir(outputFile), "*.tmp"))
			assert.Empty(t, matches)
		})
	}
}

func TestReportCommand_InvalidArguments(t *testing.T) {
	server := twoPageServer(t)
	setupEnv(t, server)

	tests := []struct {
		name string
		args []string
	}{
		{name: "bad repository", args: []string{"report", "not-a-repo"}},
		{name: "too many args", args: []string{"report", "a/b", "c/d"}},
		{name: "bad log level", args: []string{"report", "a/b", "--log-level", "loud"}},
		{name: "missing config file", args: []string{"report", "a/b", "--config", filepath.Join(t.TempDir(), "nope.yaml")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Equal(t, 1, mapErrorToExitCode(err))
		})
	}

	assert.Equal(t, 0, server.RequestCount())
}

func TestReportCommand_ConfigFile(t *testing.T) {
	server := twoPageServer(t)
	setupEnv(t, server)

	dir := t.TempDir()
	outputFile := filepath.Join(dir, "custom.json")
	configFile := filepath.Join(dir, "activity.yaml")
	testutil.WriteFile(t, configFile, `
github:
  repository: apache/airflow
output:
  path: `+outputFile+`
fetch:
  page_size: 1
affiliations:
  - organization: Contributors
    logins: [random-contributor]
`)

	_, stderr, err := runCLI(t, "report", "--config", configFile)
	require.NoError(t, err, stderr)

	assert.Equal(t, float64(1), server.Requests()[0].Variables["first"])

	var entries []report.Entry
	testutil.ReadJSON(t, outputFile, &entries)
	require.Len(t, entries, 4)
	assert.Equal(t, "Contributors", entries[0].Company)
	assert.Equal(t, "Unknown", entries[1].AuthorCompany, "file tables replace the defaults")
}

func TestCollectRecords_MockClient(t *testing.T) {
	mock := github.NewMockClient()
	cfg := config.DefaultConfig()
	tracker := metadata.New()

	records, err := collectRecords(context.Background(), mock, cfg, tracker, logging.Discard())
	require.NoError(t, err)

	// 3 + 2 + 1 participants
	assert.Len(t, records, 6)
	assert.Equal(t, 1, mock.CallCount)
	assert.Equal(t, "apache", mock.LastOwner)
	assert.Equal(t, "airflow", mock.LastRepo)
	assert.Equal(t, 100, mock.LastOpts.PageSize)

	stats := tracker.Stats()
	assert.Equal(t, 3, stats.TotalPRs)
	assert.Equal(t, "2021-03-14T10:00", stats.OldestMerge)
	assert.Equal(t, "2021-03-15T08:42", stats.NewestMerge)
}

func TestCollectRecords_Errors(t *testing.T) {
	t.Run("fetch failure", func(t *testing.T) {
		mock := github.NewMockClientWithOptions(github.WithAuthFailure())

		_, err := collectRecords(context.Background(), mock, config.DefaultConfig(), metadata.New(), logging.Discard())
		assert.ErrorIs(t, err, relaierrors.ErrInvalidToken)
		assert.Equal(t, 2, mapErrorToExitCode(err))
	})

	t.Run("derivation failure", func(t *testing.T) {
		bad := github.RawPullRequest{
			Permalink:    "https://github.com/apache/airflow/pull/9",
			MergedAt:     "2021-03-15T08:42:31Z",
			Participants: []string{"kaxil"},
		}
		mock := github.NewMockClientWithOptions(github.WithPages(github.PullRequestPage{
			Nodes:      []github.RawPullRequest{bad},
			TotalCount: 1,
		}))

		_, err := collectRecords(context.Background(), mock, config.DefaultConfig(), metadata.New(), logging.Discard())
		var derr *activity.DerivationError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, bad.Permalink, derr.PullRequest.Permalink)
		assert.Equal(t, 4, mapErrorToExitCode(err))
	})
}

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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirseerhq/sirseer-activity/internal/config"
	relaierrors "github.com/sirseerhq/sirseer-activity/internal/errors"
	"github.com/sirseerhq/sirseer-activity/internal/giterror"
	"github.com/sirseerhq/sirseer-activity/internal/github"
	"github.com/sirseerhq/sirseer-activity/internal/metadata"
	"github.com/sirseerhq/sirseer-activity/internal/output"
)

func TestParseRepository(t *testing.T) {
	tests := []struct {
		input     string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			input:     "apache/airflow",
			wantOwner: "apache",
			wantRepo:  "airflow",
		},
		{
			input:     " golang / go ",
			wantOwner: "golang",
			wantRepo:  "go",
		},
		{
			input:   "invalid",
			wantErr: true,
		},
		{
			input:   "too/many/slashes",
			wantErr: true,
		},
		{
			input:   "/repo",
			wantErr: true,
		},
		{
			input:   "owner/",
			wantErr: true,
		},
		{
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		owner, repo, err := parseRepository(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseRepository(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if !tt.wantErr {
			if owner != tt.wantOwner {
				t.Errorf("parseRepository(%q) owner = %q, want %q", tt.input, owner, tt.wantOwner)
			}
			if repo != tt.wantRepo {
				t.Errorf("parseRepository(%q) repo = %q, want %q", tt.input, repo, tt.wantRepo)
			}
		}
	}
}

func TestGetToken(t *testing.T) {
	tests := []struct {
		name      string
		flagToken string
		tokenEnv  string
		envValue  string
		want      string
	}{
		{
			name:      "flag takes precedence",
			flagToken: "flag-token",
			tokenEnv:  "GITHUB_TOKEN",
			envValue:  "env-token",
			want:      "flag-token",
		},
		{
			name:     "env var fallback",
			tokenEnv: "GITHUB_TOKEN",
			envValue: "env-token",
			want:     "env-token",
		},
		{
			name:     "custom env var",
			tokenEnv: "CUSTOM_ACTIVITY_TOKEN",
			envValue: "custom-token",
			want:     "custom-token",
		},
		{
			name:     "no token",
			tokenEnv: "GITHUB_TOKEN",
			envValue: "",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.tokenEnv, tt.envValue)
			cfg := config.DefaultConfig()
			cfg.GitHub.TokenEnv = tt.tokenEnv

			if got := getToken(tt.flagToken, cfg); got != tt.want {
				t.Errorf("getToken(%q) = %q, want %q", tt.flagToken, got, tt.want)
			}
		})
	}
}

func TestMapErrorToExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{name: "nil error", err: nil, wantCode: 0},
		{name: "general error", err: os.ErrClosed, wantCode: 1},
		{name: "transport error", err: fmt.Errorf("failed after 7 attempts: %w", relaierrors.ErrTransport), wantCode: 1},
		{name: "canceled", err: context.Canceled, wantCode: 1},
		{name: "invalid token", err: fmt.Errorf("wrapped: %w", relaierrors.ErrInvalidToken), wantCode: 2},
		{name: "repo not found", err: relaierrors.ErrRepoNotFound, wantCode: 2},
		{name: "rate limit", err: relaierrors.ErrRateLimit, wantCode: 2},
		{name: "network", err: relaierrors.ErrNetworkFailure, wantCode: 3},
		{name: "schema", err: relaierrors.ErrSchema, wantCode: 4},
		{name: "timestamp", err: relaierrors.ErrInvalidTimestamp, wantCode: 4},
		{name: "derivation", err: relaierrors.ErrDerivation, wantCode: 4},
		{
			name:     "request error after retries",
			err:      fmt.Errorf("failed after 7 attempts: %w", &github.RequestError{Kind: giterror.KindAuth, Hint: "authentication failed", Err: errors.New("401")}),
			wantCode: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErrorToExitCode(tt.err)
			if got != tt.wantCode {
				t.Errorf("mapErrorToExitCode(%v) = %d, want %d", tt.err, got, tt.wantCode)
			}
		})
	}
}

func TestTrackedClient(t *testing.T) {
	mock := github.NewMockClientWithOptions(github.WithErrors(errors.New("boom")))
	tracker := metadata.New()
	client := &trackedClient{Client: mock, tracker: tracker}

	_, _ = client.FetchMergedPullRequests(context.Background(), "apache", "airflow", github.FetchOptions{})
	_, _ = client.FetchMergedPullRequests(context.Background(), "apache", "airflow", github.FetchOptions{})

	md := tracker.GenerateMetadata("dev", metadata.RunParams{})
	if md.Results.APICallCount != 2 {
		t.Errorf("APICallCount = %d, want 2", md.Results.APICallCount)
	}
	if mock.CallCount != 2 {
		t.Errorf("CallCount = %d, want 2", mock.CallCount)
	}
}

func TestOutputDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "all-activity.json")
	fw, err := output.NewFileWriter(path)
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}
	defer fw.Close()

	if got := outputDestination(fw); got != path {
		t.Errorf("outputDestination(file) = %q, want %q", got, path)
	}
	if got := outputDestination(output.NewWriter(io.Discard)); got != "stdout" {
		t.Errorf("outputDestination(stream) = %q, want %q", got, "stdout")
	}
}

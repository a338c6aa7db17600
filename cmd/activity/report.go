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
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-activity/internal/activity"
	"github.com/sirseerhq/sirseer-activity/internal/affiliation"
	"github.com/sirseerhq/sirseer-activity/internal/config"
	"github.com/sirseerhq/sirseer-activity/internal/github"
	"github.com/sirseerhq/sirseer-activity/internal/logging"
	"github.com/sirseerhq/sirseer-activity/internal/metadata"
	"github.com/sirseerhq/sirseer-activity/internal/output"
	"github.com/sirseerhq/sirseer-activity/internal/report"
	"github.com/sirseerhq/sirseer-activity/pkg/version"
)

// stdoutPath selects standard output instead of a file.
const stdoutPath = "-"

type reportOptions struct {
	configPath string
	output     string
	token      string
	logLevel   string
	logFormat  string
}

// newReportCommand creates the report command
func newReportCommand() *cobra.Command {
	var opts reportOptions

	cmd := &cobra.Command{
		Use:   "report [<owner>/<repo>]",
		Short: "Write the merged pull request activity report",
		Long: `Fetch every merged pull request of a GitHub repository and write one
record per participant to a JSON file.

The repository defaults to github.repository from the config file.
The report replaces the output file only after every pull request was
fetched and processed; a failed run leaves an existing report untouched.

Authentication is optional but strongly recommended:
  - Use --token flag to provide token directly
  - Or set GITHUB_TOKEN environment variable`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var repoArg string
			if len(args) == 1 {
				repoArg = args[0]
			}
			return runReport(cmd.Context(), repoArg, opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	cmd.Flags().StringVar(&opts.output, "output", "", "Output file path, or - for stdout (default: all-activity.json)")
	cmd.Flags().StringVar(&opts.token, "token", "", "GitHub personal access token (overrides GITHUB_TOKEN env var)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json")

	return cmd
}

// runReport executes the report command
func runReport(ctx context.Context, repoArg string, opts reportOptions, stdout, stderr io.Writer) error {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}

	if repoArg != "" {
		owner, repo, err := parseRepository(repoArg)
		if err != nil {
			return err
		}
		cfg.GitHub.Repository = owner + "/" + repo
	}
	if opts.output != "" {
		cfg.Output.Path = opts.output
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		cfg.Log.Format = opts.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return err
	}

	tracker := metadata.New()
	logger = logger.With("run_id", tracker.RunID())

	token := getToken(opts.token, cfg)
	if token == "" {
		logger.Warn("No GitHub token set, requests are unauthenticated and heavily rate limited",
			"env", cfg.GitHub.TokenEnv)
	}

	client := github.NewRetryClient(
		&trackedClient{Client: github.NewGraphQLClient(token, cfg.GitHub.GraphQLEndpoint), tracker: tracker},
		&github.RetryConfig{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Multiplier:  cfg.Retry.Multiplier,
			MaxBackoff:  cfg.Retry.MaxBackoff,
		},
		logger,
	)

	records, err := collectRecords(ctx, client, cfg, tracker, logger)
	if err != nil {
		return err
	}

	writer, err := openOutput(cfg.Output.Path, stdout)
	if err != nil {
		return err
	}
	defer writer.Close()

	resolver := affiliation.FromConfig(cfg.Affiliations)
	logger.Info("Attributing participants", "organizations", resolver.Organizations())

	if _, err := report.Serialize(writer, records, resolver); err != nil {
		return err
	}
	tracker.SetRecords(writer.Count())

	summary := tracker.GenerateMetadata(version.Version, metadata.RunParams{
		Repository: cfg.GitHub.Repository,
		Output:     outputDestination(writer),
		PageSize:   cfg.Fetch.PageSize,
	})
	logger.Info("Finished", "summary", summary)

	return nil
}

// collectRecords fetches every merged pull request and derives the activity
// records. Nothing is written until both stages have succeeded.
func collectRecords(ctx context.Context, client github.Client, cfg *config.Config, tracker *metadata.Tracker, logger *slog.Logger) ([]activity.Record, error) {
	owner, repo := cfg.Owner(), cfg.Name()
	logger.Info("Start fetching data", "repository", cfg.GitHub.Repository)

	progress := github.ProgressFunc(func(collection string, percent float64, fetched, total int) {
		tracker.RecordPage()
		logger.Info(fmt.Sprintf("Progress %.2f%% (%d/%d)", percent, fetched, total), "collection", collection)
	})

	prs, err := github.FetchAllMergedPullRequests(ctx, client, owner, repo, github.FetchOptions{
		PageSize:          cfg.Fetch.PageSize,
		ParticipantsLimit: cfg.Fetch.ParticipantsLimit,
		LabelsLimit:       cfg.Fetch.LabelsLimit,
	}, progress)
	if err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("Fetched %d pull requests", len(prs)))

	records, err := activity.DeriveAll(prs, cfg.Fetch.ProviderLabel)
	if err != nil {
		var derr *activity.DerivationError
		if errors.As(err, &derr) {
			logger.Error("Cannot derive activity record",
				"pull_request", derr.PullRequest,
				"participant", derr.Participant,
				"error", derr.Err)
		}
		return nil, err
	}

	for _, pr := range prs {
		// DeriveAll already accepted every timestamp
		mergedAt, _ := activity.NormalizeMergedAt(pr.MergedAt)
		tracker.UpdatePRStats(mergedAt)
	}
	logger.Info(fmt.Sprintf("Created %d items", len(records)))

	return records, nil
}

// openOutput returns the writer for path. Files are replaced atomically on
// Commit; stdout is streamed.
func openOutput(path string, stdout io.Writer) (output.OutputWriter, error) {
	if path == stdoutPath {
		return output.NewWriter(stdout), nil
	}

	w, err := output.NewFileWriter(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return w, nil
}

// outputDestination names where w delivers its report.
func outputDestination(w output.OutputWriter) string {
	if fw, ok := w.(*output.FileWriter); ok {
		return fw.Path()
	}
	return "stdout"
}

// trackedClient counts every request attempt.
type trackedClient struct {
	github.Client
	tracker *metadata.Tracker
}

func (c *trackedClient) FetchMergedPullRequests(ctx context.Context, owner, repo string, opts github.FetchOptions) (*github.PullRequestPage, error) {
	c.tracker.IncrementAPICall()
	return c.Client.FetchMergedPullRequests(ctx, owner, repo, opts)
}

// parseRepository parses an owner/repo string into owner and repo components
func parseRepository(repoArg string) (owner, repo string, err error) {
	parts := strings.Split(repoArg, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository format. Expected: <owner>/<repo>, got: %s", repoArg)
	}

	owner = strings.TrimSpace(parts[0])
	repo = strings.TrimSpace(parts[1])

	if owner == "" || repo == "" {
		return "", "", fmt.Errorf("invalid repository format. Expected: <owner>/<repo>, got: %s", repoArg)
	}

	return owner, repo, nil
}

// getToken returns the GitHub token from the flag or the configured
// environment variable.
func getToken(flagToken string, cfg *config.Config) string {
	if flagToken != "" {
		return flagToken
	}
	return cfg.Token()
}

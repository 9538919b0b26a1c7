package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"workdesk/internal/config"
	"workdesk/internal/github"
	"workdesk/internal/jira"
	"workdesk/internal/logger"
	"workdesk/internal/worklist"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// credentials are the secrets resolved from flags or the environment
// variables named in the config file
type credentials struct {
	GitHubToken string
	JiraEmail   string
	JiraToken   string
}

// loadConfig reads the config file and applies flag overrides. A missing file
// is only an error when --config was given explicitly.
func loadConfig(ctx context.Context, cmd *cli.Command) (*config.Config, credentials, error) {
	path := cmd.String("config")

	cfg, err := config.LoadConfig(path)
	switch {
	case err == nil:
		logger.FromContext(ctx).Debug("Configuration loaded", zap.String("config_path", path))
	case errors.Is(err, fs.ErrNotExist) && !cmd.IsSet("config"):
		logger.FromContext(ctx).Debug("No config file, using flags and defaults", zap.String("config_path", path))
		cfg = config.DefaultConfig()
	default:
		return nil, credentials{}, fmt.Errorf("failed to load config: %w", err)
	}

	if org := cmd.String("org"); org != "" {
		cfg.GitHub.Organization = org
	}
	if user := cmd.String("user"); user != "" {
		cfg.GitHub.User = user
	}
	if jiraURL := cmd.String("jira-url"); jiraURL != "" {
		cfg.Jira.BaseURL = jiraURL
	}

	creds := credentials{
		GitHubToken: firstNonEmpty(cmd.String("github-token"), cfg.GitHubToken()),
		JiraEmail:   firstNonEmpty(cmd.String("jira-email"), cfg.JiraEmail()),
		JiraToken:   firstNonEmpty(cmd.String("jira-token"), cfg.JiraToken()),
	}
	return cfg, creds, nil
}

// buildAggregator wires the tracker and code host clients into an aggregator.
// Missing credentials are reported as configuration errors before any client
// is created.
func buildAggregator(cfg *config.Config, creds credentials) (*worklist.Aggregator, *jira.Client, error) {
	if creds.GitHubToken == "" {
		return nil, nil, fmt.Errorf("%w: GitHub token is not set (export %s or pass --github-token)",
			worklist.ErrConfiguration, cfg.GitHub.TokenEnv)
	}
	if cfg.GitHub.Organization == "" {
		return nil, nil, fmt.Errorf("%w: GitHub organization is not set (github.organization or --org)",
			worklist.ErrConfiguration)
	}
	if cfg.Jira.BaseURL == "" {
		return nil, nil, fmt.Errorf("%w: Jira base URL is not set (jira.base_url or --jira-url)",
			worklist.ErrConfiguration)
	}
	if creds.JiraEmail == "" || creds.JiraToken == "" {
		return nil, nil, fmt.Errorf("%w: Jira credentials are not set (export %s and %s)",
			worklist.ErrConfiguration, cfg.Jira.EmailEnv, cfg.Jira.TokenEnv)
	}

	host, err := github.NewClient(creds.GitHubToken, github.Options{
		BaseURL: cfg.GitHub.BaseURL,
		Timeout: cfg.Settings.Timeout(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}

	tracker, err := jira.NewClient(jira.Options{
		BaseURL:     cfg.Jira.BaseURL,
		Email:       creds.JiraEmail,
		Token:       creds.JiraToken,
		JQL:         cfg.Jira.JQL,
		SprintField: cfg.Jira.SprintField,
		BoardID:     cfg.Jira.BoardID,
		Timeout:     cfg.Settings.Timeout(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Jira client: %w", err)
	}

	aggregator := worklist.NewAggregator(tracker, host, worklist.Options{
		Token:             creds.GitHubToken,
		Organization:      cfg.GitHub.Organization,
		Actor:             cfg.GitHub.User,
		DetailConcurrency: cfg.Settings.DetailConcurrency,
		MergedWindow:      cfg.Settings.MergedWindow(),
		StatusMap:         cfg.StatusMap,
	})
	return aggregator, tracker, nil
}

func setupLogger(ctx context.Context, cmd *cli.Command, format logger.Format) (context.Context, error) {
	level, err := logger.ParseLogLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, fmt.Errorf("invalid log level: %w", err)
	}

	ctx, err = logger.Setup(ctx, logger.Options{Level: level, Format: format})
	if err != nil {
		return ctx, fmt.Errorf("failed to setup logger: %w", err)
	}
	return ctx, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

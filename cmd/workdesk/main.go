package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"workdesk/internal/config"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// Build-time variables (set by ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Load .env file if it exists (ignore errors for optional file)
	_ = godotenv.Load()

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "workdesk",
		Usage:   "One prioritized worklist from your Jira tickets and GitHub pull requests",
		Version: fmt.Sprintf("%s (built %s, commit %s)", Version, BuildTime, GitCommit),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to workdesk.yaml configuration file",
				Value:   config.DefaultConfigFile,
				Sources: cli.EnvVars("WORKDESK_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},

			// Credentials and scope (override config file)
			&cli.StringFlag{
				Name:    "github-token",
				Usage:   "GitHub access token",
				Sources: cli.EnvVars("WORKDESK_GITHUB_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "org",
				Usage:   "GitHub organization to search",
				Sources: cli.EnvVars("WORKDESK_ORG"),
			},
			&cli.StringFlag{
				Name:    "user",
				Usage:   "GitHub login (resolved from the token when empty)",
				Sources: cli.EnvVars("WORKDESK_USER"),
			},
			&cli.StringFlag{
				Name:    "jira-url",
				Usage:   "Jira base URL",
				Sources: cli.EnvVars("JIRA_BASE_URL"),
			},
			&cli.StringFlag{
				Name:    "jira-email",
				Usage:   "Jira account email",
				Sources: cli.EnvVars("WORKDESK_JIRA_EMAIL"),
			},
			&cli.StringFlag{
				Name:    "jira-token",
				Usage:   "Jira API token",
				Sources: cli.EnvVars("WORKDESK_JIRA_TOKEN"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "Run one aggregation cycle and print the worklist",
				Action: listCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (table, json, template)",
						Value:   "table",
					},
					&cli.StringFlag{
						Name:    "template",
						Aliases: []string{"t"},
						Usage:   "Go template rendered per item when --format=template (sprig functions available)",
					},
					&cli.StringFlag{
						Name:    "attention",
						Aliases: []string{"a"},
						Usage:   "Only show items at this attention level (e.g. NeedsMyAttention)",
					},
					&cli.BoolFlag{
						Name:    "quiet",
						Aliases: []string{"q"},
						Usage:   "Do not print progress messages",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Refresh the worklist periodically and serve it over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP server port (overrides config file)",
						Value:   0, // 0 means use config file value
						Sources: cli.EnvVars("WORKDESK_PORT"),
					},
					&cli.DurationFlag{
						Name:    "interval",
						Usage:   "Time between refresh cycles (overrides config file)",
						Sources: cli.EnvVars("WORKDESK_INTERVAL"),
					},
					&cli.StringFlag{
						Name:    "api-key",
						Usage:   "HTTP API key for authentication (overrides config file)",
						Sources: cli.EnvVars("WORKDESK_API_KEY"),
					},
				},
			},
			{
				Name:   "init",
				Usage:  "Create sample workdesk.yaml",
				Action: initCommand,
			},
		},
	}
}

func initCommand(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	if err := config.CreateSampleConfig(path); err != nil {
		return fmt.Errorf("failed to create sample config: %w", err)
	}

	fmt.Printf("Created sample %s\n", path)
	return nil
}

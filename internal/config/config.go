package config

import (
	"fmt"
	"maps"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	GitHub    GitHub            `yaml:"github"`
	Jira      Jira              `yaml:"jira"`
	StatusMap map[string]string `yaml:"status_map,omitempty"`
	Settings  Settings          `yaml:"settings"`
	Server    Server            `yaml:"server"`
}

type GitHub struct {
	TokenEnv     string `yaml:"token_env"`
	Organization string `yaml:"organization"`
	// User is the login whose pull requests are searched. Resolved from the
	// token when empty.
	User string `yaml:"user,omitempty"`
	// BaseURL points at a GitHub Enterprise API, e.g. https://github.example.com/api/v3/
	BaseURL string `yaml:"base_url,omitempty"`
}

type Jira struct {
	BaseURL     string `yaml:"base_url"`
	EmailEnv    string `yaml:"email_env"`
	TokenEnv    string `yaml:"token_env"`
	JQL         string `yaml:"jql,omitempty"`
	SprintField string `yaml:"sprint_field"`
	BoardID     int    `yaml:"board_id,omitempty"`
}

type Settings struct {
	DetailConcurrency int `yaml:"detail_concurrency"`
	MergedWindowDays  int `yaml:"merged_window_days"`
	RefreshInterval   int `yaml:"refresh_interval"` // seconds
	HTTPTimeout       int `yaml:"http_timeout"`     // seconds
}

type Server struct {
	Port      int    `yaml:"port"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Validate required fields
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	setDefaults(&config)

	return &config, nil
}

// DefaultConfig returns a configuration with every default applied. It is
// used when no config file exists and everything comes from flags.
func DefaultConfig() *Config {
	var config Config
	setDefaults(&config)
	return &config
}

func validateConfig(config *Config) error {
	if config.Jira.BaseURL == "" {
		return fmt.Errorf("jira.base_url is required")
	}
	if err := validateURL("jira.base_url", config.Jira.BaseURL); err != nil {
		return err
	}
	if config.GitHub.BaseURL != "" {
		if err := validateURL("github.base_url", config.GitHub.BaseURL); err != nil {
			return err
		}
	}

	if config.Jira.BoardID < 0 {
		return fmt.Errorf("jira.board_id must not be negative")
	}
	if config.Settings.DetailConcurrency < 0 {
		return fmt.Errorf("settings.detail_concurrency must not be negative")
	}
	if config.Settings.MergedWindowDays < 0 {
		return fmt.Errorf("settings.merged_window_days must not be negative")
	}
	if config.Settings.RefreshInterval < 0 {
		return fmt.Errorf("settings.refresh_interval must not be negative")
	}
	if config.Settings.HTTPTimeout < 0 {
		return fmt.Errorf("settings.http_timeout must not be negative")
	}
	if config.Server.Port < 0 || config.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}

	seen := make(map[string]string, len(config.StatusMap))
	for _, status := range slices.Sorted(maps.Keys(config.StatusMap)) {
		if status == "" || config.StatusMap[status] == "" {
			return fmt.Errorf("status_map entries must have a status and a stage")
		}
		folded := strings.ToLower(status)
		if other, ok := seen[folded]; ok {
			return fmt.Errorf("status_map entries %q and %q differ only by case", other, status)
		}
		seen[folded] = status
	}

	return nil
}

func validateURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", field, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must use http or https", field)
	}
	if u.Host == "" {
		return fmt.Errorf("%s must include a host", field)
	}
	return nil
}

func setDefaults(config *Config) {
	if config.GitHub.TokenEnv == "" {
		config.GitHub.TokenEnv = DefaultGitHubTokenEnv
	}
	if config.Jira.EmailEnv == "" {
		config.Jira.EmailEnv = DefaultJiraEmailEnv
	}
	if config.Jira.TokenEnv == "" {
		config.Jira.TokenEnv = DefaultJiraTokenEnv
	}
	if config.Jira.JQL == "" {
		config.Jira.JQL = DefaultJQL
	}
	if config.Jira.SprintField == "" {
		config.Jira.SprintField = DefaultSprintField
	}
	if config.Settings.DetailConcurrency == 0 {
		config.Settings.DetailConcurrency = DefaultDetailConcurrency
	}
	if config.Settings.MergedWindowDays == 0 {
		config.Settings.MergedWindowDays = DefaultMergedWindowDays
	}
	if config.Settings.RefreshInterval == 0 {
		config.Settings.RefreshInterval = DefaultRefreshInterval
	}
	if config.Settings.HTTPTimeout == 0 {
		config.Settings.HTTPTimeout = DefaultHTTPTimeout
	}
	if config.Server.Port == 0 {
		config.Server.Port = DefaultServerPort
	}
}

// GitHubToken returns the code host token from the configured environment variable
func (c *Config) GitHubToken() string {
	return os.Getenv(c.GitHub.TokenEnv)
}

// JiraEmail returns the tracker account email from the configured environment variable
func (c *Config) JiraEmail() string {
	return os.Getenv(c.Jira.EmailEnv)
}

// JiraToken returns the tracker API token from the configured environment variable
func (c *Config) JiraToken() string {
	return os.Getenv(c.Jira.TokenEnv)
}

// APIKey returns the server API key, or "" when authentication is disabled
func (c *Config) APIKey() string {
	if c.Server.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Server.APIKeyEnv)
}

func (s Settings) MergedWindow() time.Duration {
	return time.Duration(s.MergedWindowDays) * 24 * time.Hour
}

func (s Settings) RefreshEvery() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

func (s Settings) Timeout() time.Duration {
	return time.Duration(s.HTTPTimeout) * time.Second
}

func CreateSampleConfig(filename string) error {
	sampleConfig := Config{
		GitHub: GitHub{
			TokenEnv:     DefaultGitHubTokenEnv,
			Organization: "my-org",
		},
		Jira: Jira{
			BaseURL:     "https://my-org.atlassian.net",
			EmailEnv:    DefaultJiraEmailEnv,
			TokenEnv:    DefaultJiraTokenEnv,
			JQL:         DefaultJQL,
			SprintField: DefaultSprintField,
		},
		StatusMap: map[string]string{
			"Peer Review": "CodeReview",
			"Awaiting QA": "ReadyForQa",
		},
		Settings: Settings{
			DetailConcurrency: DefaultDetailConcurrency,
			MergedWindowDays:  DefaultMergedWindowDays,
			RefreshInterval:   DefaultRefreshInterval,
			HTTPTimeout:       DefaultHTTPTimeout,
		},
		Server: Server{
			Port: DefaultServerPort,
		},
	}

	data, err := yaml.Marshal(&sampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write sample config: %w", err)
	}

	return nil
}

package config

// File names
const (
	// DefaultConfigFile is looked up in the working directory
	DefaultConfigFile = "workdesk.yaml"
)

// Credential environment variables
const (
	DefaultGitHubTokenEnv = "GITHUB_TOKEN"
	DefaultJiraEmailEnv   = "JIRA_EMAIL"
	DefaultJiraTokenEnv   = "JIRA_API_TOKEN"
)

// Tracker defaults
const (
	// DefaultJQL selects the open tickets assigned to the authenticated user
	DefaultJQL = "assignee = currentUser() AND statusCategory != Done ORDER BY updated DESC"

	// DefaultSprintField is the custom field Jira Cloud uses for sprints
	DefaultSprintField = "customfield_10020"
)

// Runtime defaults
const (
	DefaultDetailConcurrency = 5
	DefaultMergedWindowDays  = 7
	DefaultRefreshInterval   = 300
	DefaultHTTPTimeout       = 30
	DefaultServerPort        = 8088
)

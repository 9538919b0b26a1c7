package worklist

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyFromBranch(t *testing.T) {
	tests := []struct {
		branch   string
		expected string
	}{
		{"ac/pm-1234/fix-thing", "PM-1234"},
		{"AC/PM-1234/fix-thing", "PM-1234"},
		{"feature/ABC-9/new-login", "ABC-9"},
		{"ac/pm-300/refactor", "PM-300"},
		{"pm-1234-fix-thing", ""},
		{"ac/pm-1234", ""},
		{"main", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.branch, func(t *testing.T) {
			assert.Equal(t, tt.expected, KeyFromBranch(tt.branch))
		})
	}
}

func TestKeyFromTitle(t *testing.T) {
	tests := []struct {
		title    string
		expected string
	}{
		{"[pm-5678] Fix bug", "PM-5678"},
		{"[PM-5678]Fix bug", "PM-5678"},
		{"Fix bug [PM-5678]", ""},
		{"PM-5678 Fix bug", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.expected, KeyFromTitle(tt.title))
		})
	}
}

func TestExtractKey(t *testing.T) {
	assert.Equal(t, "PM-1", ExtractKey("ac/pm-1/x", "[PM-2] title"))
	assert.Equal(t, "PM-2", ExtractKey("dependabot-bump", "[pm-2] title"))
	assert.Equal(t, "", ExtractKey("dependabot-bump", "Bump lodash"))

	// idempotent
	key := ExtractKey("ac/pm-1234/fix-thing", "")
	assert.Equal(t, key, ExtractKey("AC/"+key+"/fix-thing", ""))
}

package worklist

import (
	"regexp"
	"strings"
)

var (
	// <prefix>/<KEY-123>/<description>, e.g. ac/pm-1234/fix-thing
	branchKeyPattern = regexp.MustCompile(`(?i)^[a-z0-9._-]+/([a-z]+-\d+)/.+`)
	// [KEY-123] at the very start of a title
	titleKeyPattern = regexp.MustCompile(`(?i)^\[([a-z]+-\d+)\]`)
)

// KeyFromBranch extracts an uppercased ticket key from a branch name, or ""
func KeyFromBranch(branch string) string {
	m := branchKeyPattern.FindStringSubmatch(branch)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// KeyFromTitle extracts an uppercased ticket key from a bracket-prefixed title, or ""
func KeyFromTitle(title string) string {
	m := titleKeyPattern.FindStringSubmatch(title)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// ExtractKey tries the branch first and falls back to the title
func ExtractKey(branch, title string) string {
	if key := KeyFromBranch(branch); key != "" {
		return key
	}
	return KeyFromTitle(title)
}

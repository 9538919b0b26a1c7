package model

import (
	"fmt"
	"strings"
	"time"
)

// StubStatus is the raw status given to synthesized tickets
const StubStatus = "Code Review"

// Sprint contains the sprint a ticket belongs to
type Sprint struct {
	ID        int       `json:"id,omitempty"`
	Name      string    `json:"name"`
	State     string    `json:"state"` // "active", "future", "closed"
	StartDate time.Time `json:"start_date,omitempty"`
	EndDate   time.Time `json:"end_date,omitempty"`
}

// IsFuture returns true if the sprint has not started yet
func (s *Sprint) IsFuture() bool {
	return s != nil && strings.EqualFold(s.State, "future")
}

// Ticket represents a unit of tracked work from the tracker
type Ticket struct {
	Key            string    `json:"key"`
	Summary        string    `json:"summary"`
	Status         string    `json:"status"`
	StatusCategory string    `json:"status_category,omitempty"`
	Sprint         *Sprint   `json:"sprint,omitempty"`
	Updated        time.Time `json:"updated"` // zero when unknown
	URL            string    `json:"url"`
	Labels         []string  `json:"labels,omitempty"`
}

// NormalizeKey returns the comparison form of a ticket key
func NormalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

// RepositoryName returns the repository part of an "owner/repo" full name
func RepositoryName(fullName string) string {
	if _, name, ok := strings.Cut(fullName, "/"); ok {
		return name
	}
	return fullName
}

// StubKey builds the key used for tickets synthesized from a pull request
func StubKey(pr PullRequest) string {
	return fmt.Sprintf("%s#%d", RepositoryName(pr.Repository), pr.Number)
}

// NewStubTicket synthesizes a ticket for a pull request that has no tracker entry
func NewStubTicket(pr PullRequest) Ticket {
	var labels []string
	if len(pr.Labels) > 0 {
		labels = append(labels, pr.Labels...)
	}
	return Ticket{
		Key:     StubKey(pr),
		Summary: pr.Title,
		Status:  StubStatus,
		Updated: pr.Updated,
		URL:     pr.URL,
		Labels:  labels,
	}
}

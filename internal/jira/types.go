package jira

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"workdesk/internal/logger"
	"workdesk/internal/model"

	jira "github.com/andygrunwald/go-jira"
	"go.uber.org/zap"
)

var errNoSprint = errors.New("sprint field has no readable sprint")

func (c *Client) toTicket(ctx context.Context, issue *jira.Issue) model.Ticket {
	ticket := model.Ticket{
		Key: issue.Key,
		URL: c.baseURL + "/browse/" + issue.Key,
	}

	fields := issue.Fields
	if fields == nil {
		return ticket
	}

	ticket.Summary = fields.Summary
	ticket.Updated = time.Time(fields.Updated)
	if len(fields.Labels) > 0 {
		ticket.Labels = append([]string(nil), fields.Labels...)
	}
	if fields.Status != nil {
		ticket.Status = fields.Status.Name
		ticket.StatusCategory = fields.Status.StatusCategory.Key
	}

	if c.sprintField != "" {
		if raw, ok := fields.Unknowns[c.sprintField]; ok && raw != nil {
			sprint, err := pickSprint(parseSprints(raw))
			if err != nil {
				logger.FromContext(ctx).Debug("Could not read sprint field",
					zap.String("key", issue.Key),
					zap.String("field", c.sprintField),
					zap.Error(err))
			}
			ticket.Sprint = sprint
		}
	}

	return ticket
}

func fromJiraSprint(s jira.Sprint) model.Sprint {
	sprint := model.Sprint{
		ID:    s.ID,
		Name:  s.Name,
		State: strings.ToLower(s.State),
	}
	if s.StartDate != nil {
		sprint.StartDate = *s.StartDate
	}
	if s.EndDate != nil {
		sprint.EndDate = *s.EndDate
	}
	return sprint
}

// parseSprints reads the sprint custom field. Jira Cloud returns a list of
// objects; Jira Server returns a list of serialized strings such as
// "com.atlassian.greenhopper.service.sprint.Sprint@1f[id=3,state=ACTIVE,name=Sprint 3,...]".
func parseSprints(raw interface{}) []model.Sprint {
	entries, ok := raw.([]interface{})
	if !ok {
		entries = []interface{}{raw}
	}

	var sprints []model.Sprint
	for _, entry := range entries {
		switch v := entry.(type) {
		case map[string]interface{}:
			sprints = append(sprints, sprintFromObject(v))
		case string:
			if s, ok := sprintFromString(v); ok {
				sprints = append(sprints, s)
			}
		}
	}
	return sprints
}

func sprintFromObject(obj map[string]interface{}) model.Sprint {
	var sprint model.Sprint
	if id, ok := obj["id"].(float64); ok {
		sprint.ID = int(id)
	}
	sprint.Name, _ = obj["name"].(string)
	if state, ok := obj["state"].(string); ok {
		sprint.State = strings.ToLower(state)
	}
	sprint.StartDate = parseSprintTime(obj["startDate"])
	sprint.EndDate = parseSprintTime(obj["endDate"])
	return sprint
}

var serializedSprintPattern = regexp.MustCompile(`\[(.*)\]$`)

func sprintFromString(raw string) (model.Sprint, bool) {
	m := serializedSprintPattern.FindStringSubmatch(raw)
	if m == nil {
		return model.Sprint{}, false
	}

	var sprint model.Sprint
	for _, pair := range strings.Split(m[1], ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || value == "<null>" {
			continue
		}
		switch key {
		case "id":
			sprint.ID, _ = strconv.Atoi(value)
		case "name":
			sprint.Name = value
		case "state":
			sprint.State = strings.ToLower(value)
		case "startDate":
			sprint.StartDate = parseSprintTime(value)
		case "endDate":
			sprint.EndDate = parseSprintTime(value)
		}
	}
	return sprint, sprint.Name != ""
}

func parseSprintTime(raw interface{}) time.Time {
	s, ok := raw.(string)
	if !ok || s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z07:00", "2006-01-02T15:04:05.000-0700"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// pickSprint chooses the sprint a ticket belongs to now: the active one,
// else a future one, else the most recently ended one
func pickSprint(sprints []model.Sprint) (*model.Sprint, error) {
	if len(sprints) == 0 {
		return nil, errNoSprint
	}

	for _, state := range []string{"active", "future"} {
		for i := range sprints {
			if sprints[i].State == state {
				s := sprints[i]
				return &s, nil
			}
		}
	}

	latest := sprints[0]
	for _, s := range sprints[1:] {
		if s.EndDate.After(latest.EndDate) || (s.EndDate.Equal(latest.EndDate) && s.ID > latest.ID) {
			latest = s
		}
	}
	return &latest, nil
}

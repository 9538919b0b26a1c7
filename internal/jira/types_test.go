package jira

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workdesk/internal/model"
)

func TestParseSprints(t *testing.T) {
	t.Run("cloud objects", func(t *testing.T) {
		sprints := parseSprints([]interface{}{
			map[string]interface{}{"id": float64(3), "name": "Sprint 3", "state": "ACTIVE", "startDate": "2026-10-01T08:00:00.000Z"},
		})
		require.Len(t, sprints, 1)
		assert.Equal(t, 3, sprints[0].ID)
		assert.Equal(t, "active", sprints[0].State)
		assert.Equal(t, time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC), sprints[0].StartDate.UTC())
	})

	t.Run("server strings", func(t *testing.T) {
		sprints := parseSprints([]interface{}{
			"com.atlassian.greenhopper.service.sprint.Sprint@1f2e[id=4,rapidViewId=12,state=FUTURE,name=Sprint 4,startDate=<null>,endDate=<null>,sequence=4]",
			"garbage",
		})
		require.Len(t, sprints, 1)
		assert.Equal(t, model.Sprint{ID: 4, Name: "Sprint 4", State: "future"}, sprints[0])
	})

	t.Run("single object", func(t *testing.T) {
		sprints := parseSprints(map[string]interface{}{"name": "Solo", "state": "closed"})
		require.Len(t, sprints, 1)
		assert.Equal(t, "Solo", sprints[0].Name)
	})
}

func TestPickSprint(t *testing.T) {
	closedOld := model.Sprint{ID: 1, Name: "S1", State: "closed", EndDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)}
	closedNew := model.Sprint{ID: 2, Name: "S2", State: "closed", EndDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)}
	future := model.Sprint{ID: 3, Name: "S3", State: "future"}
	active := model.Sprint{ID: 4, Name: "S4", State: "active"}

	tests := []struct {
		name     string
		sprints  []model.Sprint
		expected string
	}{
		{"active wins", []model.Sprint{closedNew, future, active}, "S4"},
		{"future over closed", []model.Sprint{closedOld, future}, "S3"},
		{"most recent closed", []model.Sprint{closedNew, closedOld}, "S2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sprint, err := pickSprint(tt.sprints)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, sprint.Name)
		})
	}

	_, err := pickSprint(nil)
	assert.ErrorIs(t, err, errNoSprint)
}

func TestKeyQuery(t *testing.T) {
	assert.Equal(t, `key in ("PM-1", "PM-2")`, keyQuery([]string{"pm-1", " PM-2 "}))
}

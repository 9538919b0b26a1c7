package worklist

import (
	"context"
	"maps"
	"slices"
	"strings"

	"workdesk/internal/logger"
	"workdesk/internal/model"

	"go.uber.org/zap"
)

// DefaultStatusMap maps common tracker status names to stages
var DefaultStatusMap = map[string]string{
	"To Do":                    "ToDo",
	"Open":                     "ToDo",
	"Backlog":                  "ToDo",
	"Selected for Development": "ToDo",
	"In Analysis":              "InAnalysis",
	"In Progress":              "InProgress",
	"Code Review":              "CodeReview",
	"In Review":                "CodeReview",
	"Ready for QA":             "ReadyForQa",
	"In QA":                    "InQa",
	"QA":                       "InQa",
	"Ready for Merge":          "ReadyForMerge",
	"Blocked":                  "Blocked",
	"Product Review":           "ProductReview",
	"Done":                     "Done",
	"Closed":                   "Done",
	"Resolved":                 "Done",
}

// StageMapper maps raw tracker status names to workflow stages
type StageMapper struct {
	statuses map[string]string
	// folded is keyed by lower-cased status for the case-insensitive fallback
	folded map[string]string
}

// NewStageMapper creates a mapper from the default dictionary overlaid with
// overrides. An override replaces any default differing only by case. When
// overrides themselves differ only by case, the exact spelling still matches
// each one and the fallback resolves to the last in sorted order.
func NewStageMapper(overrides map[string]string) *StageMapper {
	statuses := make(map[string]string, len(DefaultStatusMap)+len(overrides))
	for status, stage := range DefaultStatusMap {
		statuses[status] = stage
	}
	for status := range overrides {
		for def := range DefaultStatusMap {
			if def != status && strings.EqualFold(def, status) {
				delete(statuses, def)
			}
		}
	}
	for status, stage := range overrides {
		statuses[status] = stage
	}

	folded := make(map[string]string, len(statuses))
	for _, status := range slices.Sorted(maps.Keys(statuses)) {
		folded[strings.ToLower(status)] = statuses[status]
	}
	return &StageMapper{statuses: statuses, folded: folded}
}

// Map returns the stage for a status name. It never fails: unmapped or
// unparseable entries degrade to StageUnknown with a diagnostic.
func (m *StageMapper) Map(ctx context.Context, status string) model.Stage {
	name, ok := m.statuses[status]
	if !ok {
		name, ok = m.folded[strings.ToLower(status)]
	}

	log := logger.FromContext(ctx)
	if !ok {
		log.Warn("No stage mapping for status", zap.String("status", status))
		return model.StageUnknown
	}

	stage, parsed := model.ParseStage(name)
	if !parsed {
		log.Warn("Status maps to an unknown stage",
			zap.String("status", status),
			zap.String("stage", name))
		return model.StageUnknown
	}
	return stage
}

// Package reconcile computes the operations needed to bring the Target's
// projects and tags in line with the Source. Everything here is pure: the
// caller fetches both sides and executes the resulting plan.
package reconcile

import (
	"fmt"

	"github.com/harrisonrobin/floaat/pkg/colors"
	"github.com/harrisonrobin/floaat/pkg/model"
)

// Plan is the set of project writes for one run. It is never persisted.
type Plan struct {
	ToCreate []model.Project
	ToUpdate []model.Project
	ToDelete []int64
}

// Empty reports whether the plan has nothing to do.
func (p Plan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToDelete) == 0
}

func (p Plan) Summary() string {
	return fmt.Sprintf("%d to create, %d to update, %d to delete", len(p.ToCreate), len(p.ToUpdate), len(p.ToDelete))
}

// PlanProjects diffs Source projects against Target projects.
//
// A Target project matches a Source project when its correlation key equals
// the Source id. Matches whose name or active flag differ are updated in
// place; active Source projects without a match are created; inactive ones
// without a match are skipped. Target projects still carrying only a legacy
// marker are scheduled for deletion.
func PlanProjects(source, target []model.Project, m *colors.Mapper) Plan {
	var plan Plan

	for _, sp := range source {
		tp, found := findCorrelated(target, sp.ID)
		if found {
			if tp.Name != sp.Name || tp.Active != sp.Active {
				plan.ToUpdate = append(plan.ToUpdate, model.Project{
					ID:             tp.ID,
					Name:           sp.Name,
					Color:          m.TargetColor(sp.Color),
					Active:         sp.Active,
					CorrelationKey: model.Int64(sp.ID),
				})
			}
			continue
		}
		if !sp.Active {
			continue
		}
		plan.ToCreate = append(plan.ToCreate, model.Project{
			Name:           sp.Name,
			Color:          m.TargetColor(sp.Color),
			Active:         true,
			CorrelationKey: model.Int64(sp.ID),
		})
	}

	plan.ToDelete = StaleProjects(target)
	return plan
}

// StaleProjects returns the ids of Target projects that carry a legacy
// marker but no correlation key. Their entries are migrated before they are
// removed, so deletion must run after every other step.
func StaleProjects(target []model.Project) []int64 {
	var ids []int64
	for _, tp := range target {
		if tp.LegacyKey != nil && tp.CorrelationKey == nil {
			ids = append(ids, tp.ID)
		}
	}
	return ids
}

// findCorrelated returns the Target project correlated with sourceID. When
// several projects carry the key (duplicated by hand in Toggl) the first
// active one wins, falling back to the first archived one.
func findCorrelated(target []model.Project, sourceID int64) (model.Project, bool) {
	var archived *model.Project
	for i := range target {
		if !target[i].HasCorrelation(sourceID) {
			continue
		}
		if target[i].Active {
			return target[i], true
		}
		if archived == nil {
			archived = &target[i]
		}
	}
	if archived != nil {
		return *archived, true
	}
	return model.Project{}, false
}

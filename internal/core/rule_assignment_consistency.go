package core

import (
	"context"
	"fmt"

	"assetcore/pkg/domain"
)

// NewAssignmentConsistencyRule blocks asset writes where the Assigned status
// and the assignee column disagree: an Assigned asset must name a holder and
// any other status must not.
func NewAssignmentConsistencyRule() domain.Rule {
	return assignmentConsistencyRule{}
}

type assignmentConsistencyRule struct{}

func (assignmentConsistencyRule) Name() string { return "assignment_consistency" }

func (r assignmentConsistencyRule) Evaluate(_ context.Context, _ domain.View, changes []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, change := range changes {
		if change.Collection != domain.CollectionAssets || change.After == nil {
			continue
		}
		status := domain.AssetStatus(change.After.String(domain.FieldStatus))
		holder := change.After.String(domain.FieldAssignedTo)
		if (status == domain.StatusAssigned) == (holder != "") {
			continue
		}
		result.Violations = append(result.Violations, domain.Violation{
			Rule:       r.Name(),
			Severity:   domain.SeverityBlock,
			Message:    fmt.Sprintf("asset %s has status %q with assignee %q", change.Key, status, holder),
			Collection: change.Collection,
			Key:        change.Key,
		})
	}
	return result, nil
}

package core

import (
	"context"
	"fmt"

	"assetcore/pkg/domain"
)

// NewStatusValuesRule blocks writes carrying enum values outside the declared
// vocabulary. Empty values pass: required-ness is enforced by the service
// layer, not the store.
func NewStatusValuesRule() domain.Rule {
	return statusValuesRule{}
}

type statusValuesRule struct{}

func (statusValuesRule) Name() string { return "status_values" }

func (r statusValuesRule) Evaluate(_ context.Context, _ domain.View, changes []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, change := range changes {
		if change.After == nil {
			continue
		}
		switch change.Collection {
		case domain.CollectionAssets:
			if v := change.After.String(domain.FieldStatus); v != "" && !domain.AssetStatus(v).Valid() {
				result.Violations = append(result.Violations, r.violation(change, fmt.Sprintf("asset %s has invalid status %q", change.Key, v)))
			}
			if v := change.After.String(domain.FieldCondition); v != "" && !domain.AssetCondition(v).Valid() {
				result.Violations = append(result.Violations, r.violation(change, fmt.Sprintf("asset %s has invalid condition %q", change.Key, v)))
			}
		case domain.CollectionEmployees:
			if v := change.After.String(domain.FieldStatus); v != "" && !domain.EmployeeStatus(v).Valid() {
				result.Violations = append(result.Violations, r.violation(change, fmt.Sprintf("employee %s has invalid status %q", change.Key, v)))
			}
		case domain.CollectionAccountability:
			if v := change.After.String(domain.FieldStatus); v != "" && !domain.AccountabilityStatus(v).Valid() {
				result.Violations = append(result.Violations, r.violation(change, fmt.Sprintf("accountability form %s has invalid status %q", change.Key, v)))
			}
		case domain.CollectionDisposals:
			if v := change.After.String(domain.FieldStatus); v != "" && !domain.DisposalStatus(v).Valid() {
				result.Violations = append(result.Violations, r.violation(change, fmt.Sprintf("disposal request %s has invalid status %q", change.Key, v)))
			}
			if v := change.After.String(domain.FieldMethod); v != "" && !domain.DisposalMethod(v).Valid() {
				result.Violations = append(result.Violations, r.violation(change, fmt.Sprintf("disposal request %s has invalid method %q", change.Key, v)))
			}
		}
	}
	return result, nil
}

func (r statusValuesRule) violation(change domain.Change, message string) domain.Violation {
	return domain.Violation{
		Rule:       r.Name(),
		Severity:   domain.SeverityBlock,
		Message:    message,
		Collection: change.Collection,
		Key:        change.Key,
	}
}

package core

import (
	"context"
	"fmt"

	"assetcore/pkg/domain"
)

// NewAccountabilityUniquenessRule blocks a write that would leave two active
// accountability forms bound to the same asset. PendingConfirmation and
// Completed both count as active.
func NewAccountabilityUniquenessRule() domain.Rule {
	return accountabilityUniquenessRule{}
}

type accountabilityUniquenessRule struct{}

func (accountabilityUniquenessRule) Name() string { return "accountability_uniqueness" }

func (r accountabilityUniquenessRule) Evaluate(_ context.Context, view domain.View, changes []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, change := range changes {
		if change.Collection != domain.CollectionAccountability || change.After == nil {
			continue
		}
		if !domain.AccountabilityStatus(change.After.String(domain.FieldStatus)).Active() {
			continue
		}
		tag := change.After.String(domain.FieldAssetTag)
		if tag == "" {
			continue
		}
		for _, other := range view.List(domain.CollectionAccountability) {
			if other.String(domain.FieldFormID) == change.Key {
				continue
			}
			if other.String(domain.FieldAssetTag) != tag {
				continue
			}
			if !domain.AccountabilityStatus(other.String(domain.FieldStatus)).Active() {
				continue
			}
			result.Violations = append(result.Violations, domain.Violation{
				Rule:       r.Name(),
				Severity:   domain.SeverityBlock,
				Message:    fmt.Sprintf("asset %s already has an active accountability form %s", tag, other.String(domain.FieldFormID)),
				Collection: change.Collection,
				Key:        change.Key,
			})
			break
		}
	}
	return result, nil
}

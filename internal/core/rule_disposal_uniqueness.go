package core

import (
	"context"
	"fmt"

	"assetcore/pkg/domain"
)

// NewDisposalUniquenessRule blocks a write that would leave two disposal
// requests pending approval for the same asset.
func NewDisposalUniquenessRule() domain.Rule {
	return disposalUniquenessRule{}
}

type disposalUniquenessRule struct{}

func (disposalUniquenessRule) Name() string { return "disposal_uniqueness" }

func (r disposalUniquenessRule) Evaluate(_ context.Context, view domain.View, changes []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, change := range changes {
		if change.Collection != domain.CollectionDisposals || change.After == nil {
			continue
		}
		if domain.DisposalStatus(change.After.String(domain.FieldStatus)) != domain.DisposalPending {
			continue
		}
		tag := change.After.String(domain.FieldAssetTag)
		if tag == "" {
			continue
		}
		for _, other := range view.List(domain.CollectionDisposals) {
			if other.String(domain.FieldDisposalID) == change.Key {
				continue
			}
			if other.String(domain.FieldAssetTag) != tag {
				continue
			}
			if domain.DisposalStatus(other.String(domain.FieldStatus)) != domain.DisposalPending {
				continue
			}
			result.Violations = append(result.Violations, domain.Violation{
				Rule:       r.Name(),
				Severity:   domain.SeverityBlock,
				Message:    fmt.Sprintf("asset %s already has a pending disposal request %s", tag, other.String(domain.FieldDisposalID)),
				Collection: change.Collection,
				Key:        change.Key,
			})
			break
		}
	}
	return result, nil
}

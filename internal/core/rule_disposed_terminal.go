package core

import (
	"context"
	"fmt"

	"assetcore/pkg/domain"
)

// NewDisposedTerminalRule blocks updates that move an asset out of the
// Disposed state. Disposal is final; a disposed tag is never reissued.
func NewDisposedTerminalRule() domain.Rule {
	return disposedTerminalRule{}
}

type disposedTerminalRule struct{}

func (disposedTerminalRule) Name() string { return "disposed_terminal" }

func (r disposedTerminalRule) Evaluate(_ context.Context, _ domain.View, changes []domain.Change) (domain.Result, error) {
	var result domain.Result
	for _, change := range changes {
		if change.Collection != domain.CollectionAssets || change.Action != domain.ActionUpdate {
			continue
		}
		if change.Before == nil || change.After == nil {
			continue
		}
		before := domain.AssetStatus(change.Before.String(domain.FieldStatus))
		after := domain.AssetStatus(change.After.String(domain.FieldStatus))
		if before != domain.StatusDisposed || after == domain.StatusDisposed {
			continue
		}
		result.Violations = append(result.Violations, domain.Violation{
			Rule:       r.Name(),
			Severity:   domain.SeverityBlock,
			Message:    fmt.Sprintf("asset %s is disposed and cannot change status", change.Key),
			Collection: change.Collection,
			Key:        change.Key,
		})
	}
	return result, nil
}

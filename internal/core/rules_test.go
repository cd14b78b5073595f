package core

import (
	"context"
	"testing"

	"assetcore/pkg/domain"
)

func assetChange(key string, before, after domain.Record) domain.Change {
	action := domain.ActionUpdate
	if before == nil {
		action = domain.ActionCreate
	}
	return domain.Change{
		Collection: domain.CollectionAssets,
		Action:     action,
		Key:        key,
		Before:     before,
		After:      after,
	}
}

func blockingRules(t *testing.T, result domain.Result) []string {
	t.Helper()
	names := make([]string, 0, len(result.Violations))
	for _, v := range result.Violations {
		if v.Severity == domain.SeverityBlock {
			names = append(names, v.Rule)
		}
	}
	return names
}

func TestStatusValuesRule(t *testing.T) {
	rule := NewStatusValuesRule()
	view := staticView{}

	result, err := rule.Evaluate(context.Background(), view, []domain.Change{
		assetChange("IT-1000", nil, domain.Record{domain.FieldStatus: "Sideways"}),
		assetChange("IT-1001", nil, domain.Record{domain.FieldStatus: "Available", domain.FieldCondition: "Shiny"}),
		assetChange("IT-1002", nil, domain.Record{domain.FieldStatus: "Available", domain.FieldCondition: "Good"}),
		{Collection: domain.CollectionDisposals, Action: domain.ActionCreate, Key: "DSP-1",
			After: domain.Record{domain.FieldStatus: "PendingApproval", domain.FieldMethod: "Vaporize"}},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if got := blockingRules(t, result); len(got) != 3 {
		t.Fatalf("violations = %+v, want 3 blocks", result.Violations)
	}

	// Empty enum columns are the service layer's problem, not the store's.
	result, err = rule.Evaluate(context.Background(), view, []domain.Change{
		assetChange("IT-1003", nil, domain.Record{domain.FieldSerialNumber: "SN"}),
	})
	if err != nil || len(result.Violations) != 0 {
		t.Fatalf("empty enums flagged: %+v, %v", result.Violations, err)
	}
}

func TestAssignmentConsistencyRule(t *testing.T) {
	rule := NewAssignmentConsistencyRule()
	view := staticView{}

	cases := []struct {
		name  string
		after domain.Record
		ok    bool
	}{
		{"assigned with holder", domain.Record{domain.FieldStatus: "Assigned", domain.FieldAssignedTo: "dana.cruz"}, true},
		{"assigned without holder", domain.Record{domain.FieldStatus: "Assigned"}, false},
		{"available with holder", domain.Record{domain.FieldStatus: "Available", domain.FieldAssignedTo: "dana.cruz"}, false},
		{"available clean", domain.Record{domain.FieldStatus: "Available"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := rule.Evaluate(context.Background(), view, []domain.Change{
				assetChange("IT-1000", nil, tc.after),
			})
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if (len(result.Violations) == 0) != tc.ok {
				t.Fatalf("violations = %+v, want ok=%v", result.Violations, tc.ok)
			}
		})
	}
}

func TestDisposedTerminalRule(t *testing.T) {
	rule := NewDisposedTerminalRule()
	view := staticView{}
	disposed := domain.Record{domain.FieldStatus: "Disposed"}

	result, err := rule.Evaluate(context.Background(), view, []domain.Change{
		assetChange("IT-1000", disposed, domain.Record{domain.FieldStatus: "Available"}),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.HasBlocking() {
		t.Fatal("revival of a disposed asset not blocked")
	}

	// Entering Disposed and staying Disposed both pass.
	result, err = rule.Evaluate(context.Background(), view, []domain.Change{
		assetChange("IT-1001", domain.Record{domain.FieldStatus: "Available"}, disposed),
		assetChange("IT-1002", disposed, domain.Record{domain.FieldStatus: "Disposed", domain.FieldNotes: "x"}),
	})
	if err != nil || len(result.Violations) != 0 {
		t.Fatalf("violations = %+v, %v", result.Violations, err)
	}
}

func TestAccountabilityUniquenessRule(t *testing.T) {
	rule := NewAccountabilityUniquenessRule()
	view := staticView{lists: map[string][]domain.Record{
		domain.CollectionAccountability: {
			{domain.FieldFormID: "ACC-1", domain.FieldAssetTag: "IT-1000", domain.FieldStatus: "Completed"},
			{domain.FieldFormID: "ACC-2", domain.FieldAssetTag: "IT-1001", domain.FieldStatus: "Returned"},
		},
	}}

	change := func(formID, tag, status string) domain.Change {
		return domain.Change{
			Collection: domain.CollectionAccountability,
			Action:     domain.ActionCreate,
			Key:        formID,
			After:      domain.Record{domain.FieldFormID: formID, domain.FieldAssetTag: tag, domain.FieldStatus: status},
		}
	}

	// A second active form for IT-1000 collides with the Completed one.
	result, err := rule.Evaluate(context.Background(), view, []domain.Change{
		change("ACC-3", "IT-1000", "PendingConfirmation"),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.HasBlocking() {
		t.Fatal("duplicate active form not blocked")
	}

	// A returned form frees the asset; a new form for IT-1001 passes, and a
	// non-active write never collides.
	result, err = rule.Evaluate(context.Background(), view, []domain.Change{
		change("ACC-4", "IT-1001", "PendingConfirmation"),
		change("ACC-5", "IT-1000", "Returned"),
	})
	if err != nil || len(result.Violations) != 0 {
		t.Fatalf("violations = %+v, %v", result.Violations, err)
	}

	// Updating a form in place does not collide with itself.
	result, err = rule.Evaluate(context.Background(), view, []domain.Change{
		change("ACC-1", "IT-1000", "Completed"),
	})
	if err != nil || len(result.Violations) != 0 {
		t.Fatalf("self-collision: %+v, %v", result.Violations, err)
	}
}

func TestDisposalUniquenessRule(t *testing.T) {
	rule := NewDisposalUniquenessRule()
	view := staticView{lists: map[string][]domain.Record{
		domain.CollectionDisposals: {
			{domain.FieldDisposalID: "DSP-1", domain.FieldAssetTag: "IT-1000", domain.FieldStatus: "PendingApproval"},
			{domain.FieldDisposalID: "DSP-2", domain.FieldAssetTag: "IT-1001", domain.FieldStatus: "Rejected"},
		},
	}}

	change := func(id, tag, status string) domain.Change {
		return domain.Change{
			Collection: domain.CollectionDisposals,
			Action:     domain.ActionCreate,
			Key:        id,
			After:      domain.Record{domain.FieldDisposalID: id, domain.FieldAssetTag: tag, domain.FieldStatus: status},
		}
	}

	result, err := rule.Evaluate(context.Background(), view, []domain.Change{
		change("DSP-3", "IT-1000", "PendingApproval"),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.HasBlocking() {
		t.Fatal("second pending request not blocked")
	}

	result, err = rule.Evaluate(context.Background(), view, []domain.Change{
		change("DSP-4", "IT-1001", "PendingApproval"),
		change("DSP-1", "IT-1000", "Cancelled"),
	})
	if err != nil || len(result.Violations) != 0 {
		t.Fatalf("violations = %+v, %v", result.Violations, err)
	}
}

func TestDefaultRulesEngineBlocksThroughAggregate(t *testing.T) {
	engine := NewDefaultRulesEngine()
	result, err := engine.Evaluate(context.Background(), staticView{}, []domain.Change{
		assetChange("IT-1000", nil, domain.Record{domain.FieldStatus: "Assigned"}),
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.HasBlocking() {
		t.Fatal("engine passed an inconsistent assignment")
	}
}

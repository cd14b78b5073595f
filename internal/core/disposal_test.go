package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"assetcore/pkg/domain"
)

func disposalInput(tag string) DisposalInput {
	return DisposalInput{
		AssetTag:       tag,
		Method:         string(domain.MethodRecycle),
		Reason:         "End of life",
		ITPersonnel:    "it-admin",
		ITSignature:    "it-admin",
		ApproverName:   "Morgan Reyes",
		ApproverEmail:  "morgan.reyes@example.com",
		EstimatedValue: 120.50,
	}
}

func TestSubmitDisposalOpensPendingRequest(t *testing.T) {
	fx := newWorkflowFixture(t)
	ctx := context.Background()
	asset := fx.addAsset(t, "SN-DSP-1")

	request, err := fx.svc.SubmitDisposal(ctx, disposalInput(asset.AssetTag))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if request.Status != domain.DisposalPending {
		t.Fatalf("status = %q, want PendingApproval", request.Status)
	}
	if !strings.HasPrefix(request.DisposalID, "DSP-") {
		t.Fatalf("id = %q, want DSP- prefix", request.DisposalID)
	}
	if !request.RequestDate.Equal(fixtureStart) {
		t.Fatalf("request date = %v", request.RequestDate)
	}

	sent := fx.notifier.Sent()
	if len(sent) != 1 || sent[0].To != "morgan.reyes@example.com" {
		t.Fatalf("approval request notification = %+v", sent)
	}
}

func TestSubmitDisposalValidatesRequiredFields(t *testing.T) {
	fx := newWorkflowFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*DisposalInput)
		field  string
	}{
		{"assetTag", func(in *DisposalInput) { in.AssetTag = "" }, domain.FieldAssetTag},
		{"method", func(in *DisposalInput) { in.Method = "" }, domain.FieldMethod},
		{"reason", func(in *DisposalInput) { in.Reason = "" }, domain.FieldReason},
		{"itPersonnel", func(in *DisposalInput) { in.ITPersonnel = "" }, domain.FieldITPersonnel},
		{"approverName", func(in *DisposalInput) { in.ApproverName = "" }, domain.FieldApproverName},
		{"approverEmail", func(in *DisposalInput) { in.ApproverEmail = "" }, domain.FieldApproverEmail},
		{"badMethod", func(in *DisposalInput) { in.Method = "Vaporize" }, domain.FieldMethod},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := disposalInput("IT-1000")
			tc.mutate(&input)
			_, err := fx.svc.SubmitDisposal(ctx, input)
			var verr domain.ValidationError
			if !errors.As(err, &verr) || verr.Field != tc.field {
				t.Fatalf("err = %v, want ValidationError on %s", err, tc.field)
			}
		})
	}
}

func TestSubmitDisposalRejectsAssignedAndDisposedAssets(t *testing.T) {
	fx := newWorkflowFixture(t)
	ctx := context.Background()
	asset := fx.addAsset(t, "SN-DSP-HELD")

	if _, err := fx.svc.SubmitAccountability(ctx, submitInput(asset.AssetTag)); err != nil {
		t.Fatalf("assign: %v", err)
	}

	_, err := fx.svc.SubmitDisposal(ctx, disposalInput(asset.AssetTag))
	var conflict domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if want := fmt.Sprintf("asset %s is currently assigned and must be returned before disposal", asset.AssetTag); conflict.Message != want {
		t.Fatalf("message = %q, want %q", conflict.Message, want)
	}
	requests, _ := fx.svc.SearchDisposals(ctx, nil, "")
	if len(requests) != 0 {
		t.Fatalf("requests = %d, want none after rejected submit", len(requests))
	}

	// Dispose the asset through the workflow, then try again.
	other := fx.addAsset(t, "SN-DSP-GONE")
	request, err := fx.svc.SubmitDisposal(ctx, disposalInput(other.AssetTag))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := fx.svc.DecideDisposal(ctx, request.DisposalID, DecisionInput{Approved: true, Signature: "Morgan Reyes"}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, err = fx.svc.SubmitDisposal(ctx, disposalInput(other.AssetTag))
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if want := fmt.Sprintf("asset %s is already disposed", other.AssetTag); conflict.Message != want {
		t.Fatalf("message = %q, want %q", conflict.Message, want)
	}
}

func TestDecideDisposalApprovalDisposesAssetExactlyOnce(t *testing.T) {
	fx := newWorkflowFixture(t)
	ctx := context.Background()
	asset := fx.addAsset(t, "SN-DSP-OK")

	request, err := fx.svc.SubmitDisposal(ctx, disposalInput(asset.AssetTag))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	fx.clock.Advance(2 * time.Hour)
	decided, err := fx.svc.DecideDisposal(ctx, request.DisposalID, DecisionInput{
		Approved:  true,
		Signature: "Morgan Reyes",
		Notes:     "approved per policy",
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != domain.DisposalApproved || decided.ApproverSignature != "Morgan Reyes" {
		t.Fatalf("decided = %+v", decided)
	}
	if !decided.ApprovalDate.Equal(fixtureStart.Add(2 * time.Hour)) {
		t.Fatalf("approval date = %v", decided.ApprovalDate)
	}

	got, err := fx.svc.GetAsset(ctx, asset.AssetTag)
	if err != nil {
		t.Fatalf("get asset: %v", err)
	}
	if got.Status != domain.StatusDisposed {
		t.Fatalf("asset status = %q, want Disposed", got.Status)
	}

	// The certificate lands in the archive and its key on the record.
	stored, _ := fx.svc.GetDisposal(ctx, request.DisposalID)
	if stored.DocumentRef == "" {
		t.Fatalf("documentRef not written after approval")
	}
	if _, err := fx.archive.Head(ctx, stored.DocumentRef); err != nil {
		t.Fatalf("certificate missing from archive: %v", err)
	}

	_, err = fx.svc.DecideDisposal(ctx, request.DisposalID, DecisionInput{Approved: false, Signature: "Morgan Reyes"})
	var conflict domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second decide err = %v, want ConflictError", err)
	}
	if want := fmt.Sprintf("disposal request %s is not awaiting approval", request.DisposalID); conflict.Message != want {
		t.Fatalf("message = %q, want %q", conflict.Message, want)
	}
}

func TestDecideDisposalRejectionLeavesAssetUntouched(t *testing.T) {
	fx := newWorkflowFixture(t)
	ctx := context.Background()
	asset := fx.addAsset(t, "SN-DSP-NO")

	request, err := fx.svc.SubmitDisposal(ctx, disposalInput(asset.AssetTag))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	decided, err := fx.svc.DecideDisposal(ctx, request.DisposalID, DecisionInput{
		Approved:  false,
		Signature: "Morgan Reyes",
		Notes:     "still serviceable",
	})
	if err != nil {
		t.Fatalf("decide: %v", err)
	}
	if decided.Status != domain.DisposalRejected {
		t.Fatalf("status = %q, want Rejected", decided.Status)
	}
	if decided.DocumentRef != "" {
		t.Fatalf("rejection rendered a certificate: %q", decided.DocumentRef)
	}

	got, _ := fx.svc.GetAsset(ctx, asset.AssetTag)
	if got.Status != domain.StatusAvailable {
		t.Fatalf("asset status = %q, want Available", got.Status)
	}
}

func TestDecideDisposalRequiresSignature(t *testing.T) {
	fx := newWorkflowFixture(t)
	_, err := fx.svc.DecideDisposal(context.Background(), "DSP-1", DecisionInput{Approved: true})
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != domain.FieldApproverSignature {
		t.Fatalf("err = %v, want ValidationError on approverSignature", err)
	}
}

func TestDecideDisposalRollsBackWhenAssetBecameIneligible(t *testing.T) {
	fx := newWorkflowFixture(t)
	ctx := context.Background()
	asset := fx.addAsset(t, "SN-DSP-RACE")

	request, err := fx.svc.SubmitDisposal(ctx, disposalInput(asset.AssetTag))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	// The asset gets assigned while the request waits: the Disposed write
	// now violates assignment consistency and must be rolled back.
	if _, err := fx.svc.SubmitAccountability(ctx, submitInput(asset.AssetTag)); err != nil {
		t.Fatalf("assign: %v", err)
	}
	assetBefore, _ := fx.svc.GetAsset(ctx, asset.AssetTag)

	_, err = fx.svc.DecideDisposal(ctx, request.DisposalID, DecisionInput{Approved: true, Signature: "Morgan Reyes"})
	var dep domain.DependencyError
	if !errors.As(err, &dep) {
		t.Fatalf("err = %v, want DependencyError", err)
	}
	var violation domain.RuleViolationError
	if !errors.As(err, &violation) {
		t.Fatalf("cause = %v, want RuleViolationError", err)
	}

	reverted, err := fx.svc.GetDisposal(ctx, request.DisposalID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reverted.Status != domain.DisposalPending {
		t.Fatalf("status = %q, want PendingApproval after rollback", reverted.Status)
	}
	if reverted.ApproverSignature != "" || !reverted.ApprovalDate.IsZero() {
		t.Fatalf("rollback left decision fields: %+v", reverted)
	}

	assetAfter, _ := fx.svc.GetAsset(ctx, asset.AssetTag)
	if assetAfter.Status != assetBefore.Status {
		t.Fatalf("asset status changed %q -> %q across failed approval", assetBefore.Status, assetAfter.Status)
	}
}

func TestCancelDisposal(t *testing.T) {
	fx := newWorkflowFixture(t)
	ctx := context.Background()
	asset := fx.addAsset(t, "SN-DSP-CXL")

	request, err := fx.svc.SubmitDisposal(ctx, disposalInput(asset.AssetTag))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	notificationsBefore := len(fx.notifier.Sent())

	cancelled, err := fx.svc.CancelDisposal(ctx, request.DisposalID, "asset redeployed")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != domain.DisposalCancelled {
		t.Fatalf("status = %q, want Cancelled", cancelled.Status)
	}
	if !strings.Contains(cancelled.Notes, "Cancelled: asset redeployed") {
		t.Fatalf("notes = %q, want cancellation reason appended", cancelled.Notes)
	}
	if len(fx.notifier.Sent()) != notificationsBefore+1 {
		t.Fatalf("approver not notified of cancellation")
	}

	_, err = fx.svc.CancelDisposal(ctx, request.DisposalID, "again")
	var conflict domain.ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second cancel err = %v, want ConflictError", err)
	}
}

func TestDisposalQueries(t *testing.T) {
	fx := newWorkflowFixture(t)
	ctx := context.Background()

	first := fx.addAsset(t, "SN-Q-1")
	second := fx.addAsset(t, "SN-Q-2")

	reqA, err := fx.svc.SubmitDisposal(ctx, disposalInput(first.AssetTag))
	if err != nil {
		t.Fatalf("submit a: %v", err)
	}
	inputB := disposalInput(second.AssetTag)
	inputB.ApproverEmail = "casey.lin@example.com"
	inputB.ApproverName = "Casey Lin"
	reqB, err := fx.svc.SubmitDisposal(ctx, inputB)
	if err != nil {
		t.Fatalf("submit b: %v", err)
	}
	if _, err := fx.svc.DecideDisposal(ctx, reqB.DisposalID, DecisionInput{Approved: false, Signature: "Casey Lin"}); err != nil {
		t.Fatalf("reject b: %v", err)
	}

	pending, err := fx.svc.DisposalsByStatus(ctx, domain.DisposalPending)
	if err != nil {
		t.Fatalf("by status: %v", err)
	}
	if len(pending) != 1 || pending[0].DisposalID != reqA.DisposalID {
		t.Fatalf("pending = %+v", pending)
	}

	if _, err := fx.svc.DisposalsByStatus(ctx, domain.DisposalStatus("Sideways")); err == nil {
		t.Fatal("invalid status accepted")
	}

	byApprover, err := fx.svc.DisposalsByApprover(ctx, "Casey.Lin@example.com")
	if err != nil {
		t.Fatalf("by approver: %v", err)
	}
	if len(byApprover) != 1 || byApprover[0].DisposalID != reqB.DisposalID {
		t.Fatalf("by approver = %+v", byApprover)
	}

	filtered, err := fx.svc.SearchDisposals(ctx, domain.Record{domain.FieldStatus: "PendingApproval"}, "")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(filtered) != 1 || filtered[0].DisposalID != reqA.DisposalID {
		t.Fatalf("filtered = %+v", filtered)
	}
}

func TestOverdueDisposalsAndReminders(t *testing.T) {
	fx := newWorkflowFixture(t)
	ctx := context.Background()

	stale := fx.addAsset(t, "SN-OD-1")
	fresh := fx.addAsset(t, "SN-OD-2")

	staleReq, err := fx.svc.SubmitDisposal(ctx, disposalInput(stale.AssetTag))
	if err != nil {
		t.Fatalf("submit stale: %v", err)
	}
	fx.clock.Advance(6 * 24 * time.Hour)
	if _, err := fx.svc.SubmitDisposal(ctx, disposalInput(fresh.AssetTag)); err != nil {
		t.Fatalf("submit fresh: %v", err)
	}

	overdue, err := fx.svc.OverdueDisposals(ctx, 0)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].DisposalID != staleReq.DisposalID {
		t.Fatalf("overdue = %+v", overdue)
	}

	before := len(fx.notifier.Sent())
	sent, err := fx.svc.SendDisposalReminders(ctx, 0)
	if err != nil {
		t.Fatalf("reminders: %v", err)
	}
	if sent != 1 || len(fx.notifier.Sent()) != before+1 {
		t.Fatalf("sent = %d, notifications %d -> %d", sent, before, len(fx.notifier.Sent()))
	}

	reloaded, _ := fx.svc.GetDisposal(ctx, staleReq.DisposalID)
	if reloaded.Status != domain.DisposalPending {
		t.Fatalf("reminder mutated status to %q", reloaded.Status)
	}
}

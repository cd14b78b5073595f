package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assetcore/pkg/domain"
)

// DefaultDisposalOverdue is the age after which an undecided disposal request
// counts as overdue.
const DefaultDisposalOverdue = 120 * time.Hour

// DisposalInput carries the submission fields for a disposal request.
type DisposalInput struct {
	AssetTag       string
	Method         string
	Reason         string
	ITPersonnel    string
	ITSignature    string
	ApproverName   string
	ApproverEmail  string
	EstimatedValue float64
	Notes          string
}

func (in DisposalInput) validate() error {
	switch {
	case in.AssetTag == "":
		return domain.MissingField(domain.FieldAssetTag)
	case in.Method == "":
		return domain.MissingField(domain.FieldMethod)
	case in.Reason == "":
		return domain.MissingField(domain.FieldReason)
	case in.ITPersonnel == "":
		return domain.MissingField(domain.FieldITPersonnel)
	case in.ApproverName == "":
		return domain.MissingField(domain.FieldApproverName)
	case in.ApproverEmail == "":
		return domain.MissingField(domain.FieldApproverEmail)
	}
	if !domain.DisposalMethod(in.Method).Valid() {
		return domain.ValidationError{Field: domain.FieldMethod, Message: fmt.Sprintf("invalid method %q", in.Method)}
	}
	return nil
}

// DecisionInput carries an approver's verdict on a pending request.
type DecisionInput struct {
	Approved  bool
	Signature string
	Notes     string
}

// SubmitDisposal opens a disposal request for an asset that is neither
// assigned nor already disposed.
func (s *Service) SubmitDisposal(ctx context.Context, input DisposalInput) (domain.DisposalRecord, error) {
	var request domain.DisposalRecord
	err := s.run(ctx, "submit_disposal", func(ctx context.Context) error {
		if err := input.validate(); err != nil {
			return err
		}
		asset, err := s.getAsset(ctx, input.AssetTag)
		if err != nil {
			return err
		}
		switch asset.Status {
		case domain.StatusAssigned:
			return domain.ConflictError{Message: fmt.Sprintf("asset %s is currently assigned and must be returned before disposal", input.AssetTag)}
		case domain.StatusDisposed:
			return domain.ConflictError{Message: fmt.Sprintf("asset %s is already disposed", input.AssetTag)}
		}
		now := s.now()
		record := domain.DisposalRecord{
			DisposalID:     NewDisposalID(now),
			AssetTag:       input.AssetTag,
			Method:         domain.DisposalMethod(input.Method),
			Reason:         input.Reason,
			RequestDate:    now,
			ITPersonnel:    input.ITPersonnel,
			ITSignature:    input.ITSignature,
			ApproverName:   input.ApproverName,
			ApproverEmail:  input.ApproverEmail,
			EstimatedValue: input.EstimatedValue,
			Status:         domain.DisposalPending,
			Notes:          input.Notes,
		}
		inserted, err := s.store.Insert(ctx, domain.CollectionDisposals, record.ToRecord())
		if err != nil {
			return err
		}
		request = domain.DisposalFromRecord(inserted)
		s.dispatchNotification(ctx, disposalApprovalRequestMessage(request))
		return nil
	})
	return request, err
}

// DecideDisposal records the approver's verdict. An approval additionally
// transitions the asset to Disposed; when that transition fails the decision
// is rolled back and the failure surfaces as a DependencyError.
func (s *Service) DecideDisposal(ctx context.Context, disposalID string, decision DecisionInput) (domain.DisposalRecord, error) {
	var request domain.DisposalRecord
	err := s.run(ctx, "decide_disposal", func(ctx context.Context) error {
		var err error
		request, err = s.decideDisposal(ctx, disposalID, decision)
		return err
	})
	return request, err
}

func (s *Service) decideDisposal(ctx context.Context, disposalID string, decision DecisionInput) (domain.DisposalRecord, error) {
	if decision.Signature == "" {
		return domain.DisposalRecord{}, domain.MissingField(domain.FieldApproverSignature)
	}
	current, err := s.getDisposal(ctx, disposalID)
	if err != nil {
		return domain.DisposalRecord{}, err
	}
	if current.Status != domain.DisposalPending {
		return domain.DisposalRecord{}, domain.ConflictError{Message: fmt.Sprintf("disposal request %s is not awaiting approval", disposalID)}
	}
	status := domain.DisposalRejected
	if decision.Approved {
		status = domain.DisposalApproved
	}
	patch := domain.Record{
		domain.FieldApproverSignature: decision.Signature,
		domain.FieldStatus:            string(status),
	}
	patch.SetTime(domain.FieldApprovalDate, s.now())
	if decision.Notes != "" {
		patch[domain.FieldNotes] = appendNotes(current.Notes, decision.Notes)
	}
	updated, err := s.store.Update(ctx, domain.CollectionDisposals, domain.FieldDisposalID, disposalID, patch)
	if err != nil {
		return domain.DisposalRecord{}, err
	}
	request := domain.DisposalFromRecord(updated)
	if decision.Approved {
		err = runCompensated(ctx,
			func(ctx context.Context) error {
				_, err := s.store.Update(ctx, domain.CollectionAssets, domain.FieldAssetTag, current.AssetTag, domain.Record{
					domain.FieldStatus: string(domain.StatusDisposed),
				})
				return err
			},
			func(ctx context.Context) error {
				_, err := s.store.Update(ctx, domain.CollectionDisposals, domain.FieldDisposalID, disposalID, domain.Record{
					domain.FieldStatus:            string(domain.DisposalPending),
					domain.FieldApproverSignature: "",
					domain.FieldApprovalDate:      "",
				})
				return err
			},
			func(undoErr error) {
				s.logger.Error("disposal rollback failed", "disposal", disposalID, "error", undoErr)
			},
		)
		if err != nil {
			return domain.DisposalRecord{}, domain.DependencyError{Op: "dispose asset", Err: err}
		}
		s.dispatchDocument(ctx, DocumentRequest{
			Kind:       DocumentDisposalCertificate,
			Collection: domain.CollectionDisposals,
			Key:        disposalID,
			Data: DocumentData{
				Title:     fmt.Sprintf("Disposal certificate %s", disposalID),
				RecordKey: disposalID,
				Fields:    updated.Clone(),
			},
		})
	}
	s.dispatchNotification(ctx, disposalDecisionMessage(request))
	return request, nil
}

// CancelDisposal withdraws a pending request.
func (s *Service) CancelDisposal(ctx context.Context, disposalID, reason string) (domain.DisposalRecord, error) {
	var request domain.DisposalRecord
	err := s.run(ctx, "cancel_disposal", func(ctx context.Context) error {
		current, err := s.getDisposal(ctx, disposalID)
		if err != nil {
			return err
		}
		if current.Status != domain.DisposalPending {
			return domain.ConflictError{Message: fmt.Sprintf("disposal request %s is not awaiting approval", disposalID)}
		}
		patch := domain.Record{
			domain.FieldStatus: string(domain.DisposalCancelled),
		}
		if reason != "" {
			patch[domain.FieldNotes] = appendNotes(current.Notes, "Cancelled: "+reason)
		}
		updated, err := s.store.Update(ctx, domain.CollectionDisposals, domain.FieldDisposalID, disposalID, patch)
		if err != nil {
			return err
		}
		request = domain.DisposalFromRecord(updated)
		s.dispatchNotification(ctx, disposalCancelledMessage(request))
		return nil
	})
	return request, err
}

// GetDisposal returns the request with the given id.
func (s *Service) GetDisposal(ctx context.Context, disposalID string) (domain.DisposalRecord, error) {
	var request domain.DisposalRecord
	err := s.run(ctx, "get_disposal", func(ctx context.Context) error {
		var err error
		request, err = s.getDisposal(ctx, disposalID)
		return err
	})
	return request, err
}

// SearchDisposals filters the disposals collection.
func (s *Service) SearchDisposals(ctx context.Context, filters domain.Record, freeText string) ([]domain.DisposalRecord, error) {
	var requests []domain.DisposalRecord
	err := s.run(ctx, "search_disposals", func(ctx context.Context) error {
		records, err := s.store.Search(ctx, domain.CollectionDisposals, filters, freeText)
		if err != nil {
			return err
		}
		requests = disposalsFromRecords(records)
		return nil
	})
	return requests, err
}

// DisposalsByStatus returns every request in the given state.
func (s *Service) DisposalsByStatus(ctx context.Context, status domain.DisposalStatus) ([]domain.DisposalRecord, error) {
	var requests []domain.DisposalRecord
	err := s.run(ctx, "disposals_by_status", func(ctx context.Context) error {
		if !status.Valid() {
			return domain.ValidationError{Field: domain.FieldStatus, Message: fmt.Sprintf("invalid status %q", status)}
		}
		records, err := s.store.GetAll(ctx, domain.CollectionDisposals)
		if err != nil {
			return err
		}
		requests = make([]domain.DisposalRecord, 0, len(records))
		for _, rec := range records {
			if domain.DisposalStatus(rec.String(domain.FieldStatus)) != status {
				continue
			}
			requests = append(requests, domain.DisposalFromRecord(rec))
		}
		return nil
	})
	return requests, err
}

// DisposalsByApprover returns every request addressed to the approver email.
func (s *Service) DisposalsByApprover(ctx context.Context, email string) ([]domain.DisposalRecord, error) {
	var requests []domain.DisposalRecord
	err := s.run(ctx, "disposals_by_approver", func(ctx context.Context) error {
		if email == "" {
			return domain.MissingField(domain.FieldApproverEmail)
		}
		records, err := s.store.GetAll(ctx, domain.CollectionDisposals)
		if err != nil {
			return err
		}
		requests = make([]domain.DisposalRecord, 0, len(records))
		for _, rec := range records {
			if !strings.EqualFold(rec.String(domain.FieldApproverEmail), email) {
				continue
			}
			requests = append(requests, domain.DisposalFromRecord(rec))
		}
		return nil
	})
	return requests, err
}

// OverdueDisposals returns requests still awaiting approval past the
// threshold. A non-positive threshold applies the default.
func (s *Service) OverdueDisposals(ctx context.Context, threshold time.Duration) ([]domain.DisposalRecord, error) {
	var requests []domain.DisposalRecord
	err := s.run(ctx, "overdue_disposals", func(ctx context.Context) error {
		var err error
		requests, err = s.overdueDisposals(ctx, threshold)
		return err
	})
	return requests, err
}

// SendDisposalReminders re-dispatches the approval request for every overdue
// disposal and reports how many reminders went out.
func (s *Service) SendDisposalReminders(ctx context.Context, threshold time.Duration) (int, error) {
	var sent int
	err := s.run(ctx, "send_disposal_reminders", func(ctx context.Context) error {
		overdue, err := s.overdueDisposals(ctx, threshold)
		if err != nil {
			return err
		}
		for _, request := range overdue {
			s.dispatchNotification(ctx, disposalApprovalRequestMessage(request))
			sent++
		}
		return nil
	})
	return sent, err
}

func (s *Service) getDisposal(ctx context.Context, disposalID string) (domain.DisposalRecord, error) {
	if disposalID == "" {
		return domain.DisposalRecord{}, domain.MissingField(domain.FieldDisposalID)
	}
	rec, found, err := s.store.GetOne(ctx, domain.CollectionDisposals, domain.FieldDisposalID, disposalID)
	if err != nil {
		return domain.DisposalRecord{}, err
	}
	if !found {
		return domain.DisposalRecord{}, domain.NotFoundError{Entity: "disposal request", Key: disposalID}
	}
	return domain.DisposalFromRecord(rec), nil
}

func (s *Service) overdueDisposals(ctx context.Context, threshold time.Duration) ([]domain.DisposalRecord, error) {
	if threshold <= 0 {
		threshold = DefaultDisposalOverdue
	}
	records, err := s.store.GetAll(ctx, domain.CollectionDisposals)
	if err != nil {
		return nil, err
	}
	now := s.now()
	overdue := make([]domain.DisposalRecord, 0)
	for _, rec := range records {
		request := domain.DisposalFromRecord(rec)
		if request.Status != domain.DisposalPending || request.RequestDate.IsZero() {
			continue
		}
		if now.Sub(request.RequestDate) <= threshold {
			continue
		}
		overdue = append(overdue, request)
	}
	return overdue, nil
}

func disposalsFromRecords(records []domain.Record) []domain.DisposalRecord {
	requests := make([]domain.DisposalRecord, 0, len(records))
	for _, rec := range records {
		requests = append(requests, domain.DisposalFromRecord(rec))
	}
	return requests
}

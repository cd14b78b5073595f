package core

import (
	"context"
	"fmt"
	"strings"
	"time"

	"assetcore/pkg/domain"
)

// DefaultAccountabilityOverdue is the age after which an unconfirmed form
// counts as overdue.
const DefaultAccountabilityOverdue = 72 * time.Hour

// AccountabilityInput carries the submission fields for a new form.
type AccountabilityInput struct {
	AssetTag      string
	EmployeeName  string
	EmployeeEmail string
	Department    string
	Position      string
	ITPersonnel   string
	ITSignature   string
	Notes         string
}

func (in AccountabilityInput) validate() error {
	switch {
	case in.AssetTag == "":
		return domain.MissingField(domain.FieldAssetTag)
	case in.EmployeeName == "":
		return domain.MissingField(domain.FieldEmployeeName)
	case in.EmployeeEmail == "":
		return domain.MissingField(domain.FieldEmployeeEmail)
	case in.ITPersonnel == "":
		return domain.MissingField(domain.FieldITPersonnel)
	}
	return nil
}

// ReturnInput carries the optional fields recorded when an asset comes back.
type ReturnInput struct {
	Condition string
	Notes     string
}

// SubmitAccountability opens a new accountability form and assigns the asset
// to the employee. The form insert and the assignment are linked by a
// compensation: when the assignment fails the inserted form is deleted and
// the failure surfaces as a DependencyError.
func (s *Service) SubmitAccountability(ctx context.Context, input AccountabilityInput) (domain.AccountabilityRecord, error) {
	var form domain.AccountabilityRecord
	err := s.run(ctx, "submit_accountability", func(ctx context.Context) error {
		var err error
		form, err = s.submitAccountability(ctx, input)
		return err
	})
	return form, err
}

func (s *Service) submitAccountability(ctx context.Context, input AccountabilityInput) (domain.AccountabilityRecord, error) {
	if err := input.validate(); err != nil {
		return domain.AccountabilityRecord{}, err
	}
	asset, err := s.getAsset(ctx, input.AssetTag)
	if err != nil {
		return domain.AccountabilityRecord{}, err
	}
	if asset.Status != domain.StatusAvailable {
		return domain.AccountabilityRecord{}, domain.ConflictError{Message: fmt.Sprintf("asset %s is not available for assignment", input.AssetTag)}
	}
	now := s.now()
	employeeID := EmployeeIDFromEmail(input.EmployeeEmail)
	record := domain.AccountabilityRecord{
		FormID:         NewFormID(now),
		AssetTag:       input.AssetTag,
		EmployeeID:     employeeID,
		EmployeeName:   input.EmployeeName,
		EmployeeEmail:  input.EmployeeEmail,
		AssignmentDate: now,
		ITPersonnel:    input.ITPersonnel,
		ITSignature:    input.ITSignature,
		Status:         domain.AccountabilityPending,
		Notes:          input.Notes,
	}
	inserted, err := s.store.Insert(ctx, domain.CollectionAccountability, record.ToRecord())
	if err != nil {
		return domain.AccountabilityRecord{}, err
	}
	form := domain.AccountabilityFromRecord(inserted)
	err = runCompensated(ctx,
		func(ctx context.Context) error {
			_, err := s.assignAsset(ctx, input.AssetTag, employeeID)
			return err
		},
		func(ctx context.Context) error {
			_, err := s.store.Delete(ctx, domain.CollectionAccountability, domain.FieldFormID, form.FormID)
			return err
		},
		func(undoErr error) {
			s.logger.Error("accountability rollback failed", "form", form.FormID, "error", undoErr)
		},
	)
	if err != nil {
		return domain.AccountabilityRecord{}, domain.DependencyError{Op: "assign asset", Err: err}
	}
	if _, err := s.upsertEmployee(ctx, EmployeeInput{
		Name:       input.EmployeeName,
		Email:      input.EmployeeEmail,
		Department: input.Department,
		Position:   input.Position,
	}); err != nil {
		s.logger.Warn("employee upsert failed after assignment", "form", form.FormID, "employee", employeeID, "error", err)
	}
	s.dispatchNotification(ctx, confirmationRequestMessage(form, asset))
	return form, nil
}

// ConfirmAccountability records the employee's acknowledgement and completes
// the form.
func (s *Service) ConfirmAccountability(ctx context.Context, formID, signature, notes string) (domain.AccountabilityRecord, error) {
	var form domain.AccountabilityRecord
	err := s.run(ctx, "confirm_accountability", func(ctx context.Context) error {
		if signature == "" {
			return domain.MissingField(domain.FieldEmployeeSignature)
		}
		current, err := s.getAccountability(ctx, formID)
		if err != nil {
			return err
		}
		if current.Status != domain.AccountabilityPending {
			return domain.ConflictError{Message: fmt.Sprintf("accountability form %s is not awaiting confirmation", formID)}
		}
		patch := domain.Record{
			domain.FieldEmployeeConfirmed: true,
			domain.FieldEmployeeSignature: signature,
			domain.FieldStatus:            string(domain.AccountabilityCompleted),
		}
		patch.SetTime(domain.FieldConfirmationDate, s.now())
		if notes != "" {
			patch[domain.FieldNotes] = appendNotes(current.Notes, notes)
		}
		updated, err := s.store.Update(ctx, domain.CollectionAccountability, domain.FieldFormID, formID, patch)
		if err != nil {
			return err
		}
		form = domain.AccountabilityFromRecord(updated)
		s.dispatchDocument(ctx, DocumentRequest{
			Kind:       DocumentAccountabilityForm,
			Collection: domain.CollectionAccountability,
			Key:        formID,
			Data: DocumentData{
				Title:     fmt.Sprintf("Accountability form %s", formID),
				RecordKey: formID,
				Fields:    updated.Clone(),
			},
		})
		s.dispatchNotification(ctx, confirmationReceivedMessage(form))
		return nil
	})
	return form, err
}

// ProcessReturn takes the asset back and closes the form. The asset mutates
// first; if the form update fails afterwards the asset stays returned and the
// failure surfaces as a DependencyError.
func (s *Service) ProcessReturn(ctx context.Context, formID string, input ReturnInput) (domain.AccountabilityRecord, error) {
	var form domain.AccountabilityRecord
	err := s.run(ctx, "process_return", func(ctx context.Context) error {
		current, err := s.getAccountability(ctx, formID)
		if err != nil {
			return err
		}
		if current.Status != domain.AccountabilityCompleted {
			return domain.ConflictError{Message: fmt.Sprintf("accountability form %s is not active", formID)}
		}
		returned, err := s.returnAsset(ctx, current.AssetTag, input.Condition)
		if err != nil {
			return err
		}
		condition := input.Condition
		if condition == "" {
			condition = string(returned.Condition)
		}
		patch := domain.Record{
			domain.FieldReturnCondition: condition,
			domain.FieldStatus:          string(domain.AccountabilityReturned),
		}
		patch.SetTime(domain.FieldReturnDate, s.now())
		if input.Notes != "" {
			patch[domain.FieldNotes] = appendNotes(current.Notes, input.Notes)
		}
		updated, err := s.store.Update(ctx, domain.CollectionAccountability, domain.FieldFormID, formID, patch)
		if err != nil {
			return domain.DependencyError{Op: "update accountability form", Err: err}
		}
		form = domain.AccountabilityFromRecord(updated)
		s.dispatchDocument(ctx, DocumentRequest{
			Kind:       DocumentReturnReceipt,
			Collection: domain.CollectionAccountability,
			Key:        formID,
			Data: DocumentData{
				Title:     fmt.Sprintf("Return receipt for form %s", formID),
				RecordKey: formID,
				Fields:    updated.Clone(),
			},
		})
		s.dispatchNotification(ctx, returnRecordedMessage(form))
		return nil
	})
	return form, err
}

// GetAccountability returns the form with the given id.
func (s *Service) GetAccountability(ctx context.Context, formID string) (domain.AccountabilityRecord, error) {
	var form domain.AccountabilityRecord
	err := s.run(ctx, "get_accountability", func(ctx context.Context) error {
		var err error
		form, err = s.getAccountability(ctx, formID)
		return err
	})
	return form, err
}

// SearchAccountability filters the forms collection.
func (s *Service) SearchAccountability(ctx context.Context, filters domain.Record, freeText string) ([]domain.AccountabilityRecord, error) {
	var forms []domain.AccountabilityRecord
	err := s.run(ctx, "search_accountability", func(ctx context.Context) error {
		records, err := s.store.Search(ctx, domain.CollectionAccountability, filters, freeText)
		if err != nil {
			return err
		}
		forms = accountabilityFromRecords(records)
		return nil
	})
	return forms, err
}

// AccountabilityByEmployee returns every form whose employee id or email
// matches, in insertion order.
func (s *Service) AccountabilityByEmployee(ctx context.Context, idOrEmail string) ([]domain.AccountabilityRecord, error) {
	var forms []domain.AccountabilityRecord
	err := s.run(ctx, "accountability_by_employee", func(ctx context.Context) error {
		if idOrEmail == "" {
			return domain.MissingField(domain.FieldEmployeeID)
		}
		records, err := s.store.GetAll(ctx, domain.CollectionAccountability)
		if err != nil {
			return err
		}
		forms = make([]domain.AccountabilityRecord, 0, len(records))
		for _, rec := range records {
			if rec.String(domain.FieldEmployeeID) != idOrEmail &&
				!strings.EqualFold(rec.String(domain.FieldEmployeeEmail), idOrEmail) {
				continue
			}
			forms = append(forms, domain.AccountabilityFromRecord(rec))
		}
		return nil
	})
	return forms, err
}

// OverdueAccountability returns forms still awaiting confirmation past the
// threshold. A non-positive threshold applies the default.
func (s *Service) OverdueAccountability(ctx context.Context, threshold time.Duration) ([]domain.AccountabilityRecord, error) {
	var forms []domain.AccountabilityRecord
	err := s.run(ctx, "overdue_accountability", func(ctx context.Context) error {
		var err error
		forms, err = s.overdueAccountability(ctx, threshold)
		return err
	})
	return forms, err
}

// SendAccountabilityReminders re-dispatches the confirmation request for
// every overdue form and reports how many reminders went out. Workflow state
// is not touched.
func (s *Service) SendAccountabilityReminders(ctx context.Context, threshold time.Duration) (int, error) {
	var sent int
	err := s.run(ctx, "send_accountability_reminders", func(ctx context.Context) error {
		overdue, err := s.overdueAccountability(ctx, threshold)
		if err != nil {
			return err
		}
		for _, form := range overdue {
			asset, err := s.getAsset(ctx, form.AssetTag)
			if err != nil {
				s.logger.Warn("reminder skipped", "form", form.FormID, "asset", form.AssetTag, "error", err)
				continue
			}
			s.dispatchNotification(ctx, confirmationRequestMessage(form, asset))
			sent++
		}
		return nil
	})
	return sent, err
}

func (s *Service) getAccountability(ctx context.Context, formID string) (domain.AccountabilityRecord, error) {
	if formID == "" {
		return domain.AccountabilityRecord{}, domain.MissingField(domain.FieldFormID)
	}
	rec, found, err := s.store.GetOne(ctx, domain.CollectionAccountability, domain.FieldFormID, formID)
	if err != nil {
		return domain.AccountabilityRecord{}, err
	}
	if !found {
		return domain.AccountabilityRecord{}, domain.NotFoundError{Entity: "accountability form", Key: formID}
	}
	return domain.AccountabilityFromRecord(rec), nil
}

func (s *Service) overdueAccountability(ctx context.Context, threshold time.Duration) ([]domain.AccountabilityRecord, error) {
	if threshold <= 0 {
		threshold = DefaultAccountabilityOverdue
	}
	records, err := s.store.GetAll(ctx, domain.CollectionAccountability)
	if err != nil {
		return nil, err
	}
	now := s.now()
	overdue := make([]domain.AccountabilityRecord, 0)
	for _, rec := range records {
		form := domain.AccountabilityFromRecord(rec)
		if form.Status != domain.AccountabilityPending || form.AssignmentDate.IsZero() {
			continue
		}
		if now.Sub(form.AssignmentDate) <= threshold {
			continue
		}
		overdue = append(overdue, form)
	}
	return overdue, nil
}

func accountabilityFromRecords(records []domain.Record) []domain.AccountabilityRecord {
	forms := make([]domain.AccountabilityRecord, 0, len(records))
	for _, rec := range records {
		forms = append(forms, domain.AccountabilityFromRecord(rec))
	}
	return forms
}

func appendNotes(existing, addition string) string {
	if existing == "" {
		return addition
	}
	if addition == "" {
		return existing
	}
	return existing + "\n" + addition
}

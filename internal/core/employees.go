package core

import (
	"context"
	"strings"

	"assetcore/pkg/domain"
)

// EmployeeInput carries the directory fields accepted by an upsert.
type EmployeeInput struct {
	Name       string
	Email      string
	Department string
	Position   string
}

// EmployeeIDFromEmail derives the directory id from the email local part.
// The derivation is pure so workflows can reference an employee before the
// directory row exists.
func EmployeeIDFromEmail(email string) string {
	local := strings.TrimSpace(email)
	if i := strings.Index(local, "@"); i >= 0 {
		local = local[:i]
	}
	return strings.ToLower(local)
}

// UpsertEmployee creates the directory row for the email if absent, or
// refreshes name, department, and position if present. The cached assignment
// count is recomputed either way.
func (s *Service) UpsertEmployee(ctx context.Context, input EmployeeInput) (domain.Employee, error) {
	var employee domain.Employee
	err := s.run(ctx, "upsert_employee", func(ctx context.Context) error {
		var err error
		employee, err = s.upsertEmployee(ctx, input)
		return err
	})
	return employee, err
}

// GetEmployee resolves an employee by id or email.
func (s *Service) GetEmployee(ctx context.Context, idOrEmail string) (domain.Employee, error) {
	var employee domain.Employee
	err := s.run(ctx, "get_employee", func(ctx context.Context) error {
		var err error
		employee, err = s.getEmployee(ctx, idOrEmail)
		return err
	})
	return employee, err
}

// ListEmployees returns the directory in insertion order.
func (s *Service) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	var employees []domain.Employee
	err := s.run(ctx, "list_employees", func(ctx context.Context) error {
		records, err := s.store.GetAll(ctx, domain.CollectionEmployees)
		if err != nil {
			return err
		}
		employees = make([]domain.Employee, 0, len(records))
		for _, rec := range records {
			employees = append(employees, domain.EmployeeFromRecord(rec))
		}
		return nil
	})
	return employees, err
}

// RecountEmployeeAssets recomputes the cached assignment count from the
// registry and persists it.
func (s *Service) RecountEmployeeAssets(ctx context.Context, employeeID string) (domain.Employee, error) {
	var employee domain.Employee
	err := s.run(ctx, "recount_employee_assets", func(ctx context.Context) error {
		_, found, err := s.store.GetOne(ctx, domain.CollectionEmployees, domain.FieldEmployeeID, employeeID)
		if err != nil {
			return err
		}
		if !found {
			return domain.NotFoundError{Entity: "employee", Key: employeeID}
		}
		count, err := s.countAssignedAssets(ctx, employeeID)
		if err != nil {
			return err
		}
		updated, err := s.store.Update(ctx, domain.CollectionEmployees, domain.FieldEmployeeID, employeeID, domain.Record{
			domain.FieldAssignedAssets: float64(count),
		})
		if err != nil {
			return err
		}
		employee = domain.EmployeeFromRecord(updated)
		return nil
	})
	return employee, err
}

func (s *Service) upsertEmployee(ctx context.Context, input EmployeeInput) (domain.Employee, error) {
	if input.Email == "" {
		return domain.Employee{}, domain.MissingField(domain.FieldEmail)
	}
	if input.Name == "" {
		return domain.Employee{}, domain.MissingField(domain.FieldName)
	}
	id := EmployeeIDFromEmail(input.Email)
	count, err := s.countAssignedAssets(ctx, id)
	if err != nil {
		return domain.Employee{}, err
	}
	existing, found, err := s.store.GetOne(ctx, domain.CollectionEmployees, domain.FieldEmail, input.Email)
	if err != nil {
		return domain.Employee{}, err
	}
	if found {
		patch := domain.Record{
			domain.FieldName:           input.Name,
			domain.FieldAssignedAssets: float64(count),
		}
		if input.Department != "" {
			patch[domain.FieldDepartment] = input.Department
		}
		if input.Position != "" {
			patch[domain.FieldPosition] = input.Position
		}
		updated, err := s.store.Update(ctx, domain.CollectionEmployees, domain.FieldEmployeeID, existing.String(domain.FieldEmployeeID), patch)
		if err != nil {
			return domain.Employee{}, err
		}
		return domain.EmployeeFromRecord(updated), nil
	}
	employee := domain.Employee{
		EmployeeID:     id,
		Name:           input.Name,
		Email:          input.Email,
		Department:     input.Department,
		Position:       input.Position,
		Status:         domain.EmployeeActive,
		AssignedAssets: int64(count),
	}
	inserted, err := s.store.Insert(ctx, domain.CollectionEmployees, employee.ToRecord())
	if err != nil {
		return domain.Employee{}, err
	}
	return domain.EmployeeFromRecord(inserted), nil
}

func (s *Service) getEmployee(ctx context.Context, idOrEmail string) (domain.Employee, error) {
	if idOrEmail == "" {
		return domain.Employee{}, domain.MissingField(domain.FieldEmployeeID)
	}
	rec, found, err := s.store.GetOne(ctx, domain.CollectionEmployees, domain.FieldEmployeeID, idOrEmail)
	if err != nil {
		return domain.Employee{}, err
	}
	if !found {
		rec, found, err = s.store.GetOne(ctx, domain.CollectionEmployees, domain.FieldEmail, idOrEmail)
		if err != nil {
			return domain.Employee{}, err
		}
	}
	if !found {
		return domain.Employee{}, domain.NotFoundError{Entity: "employee", Key: idOrEmail}
	}
	return domain.EmployeeFromRecord(rec), nil
}

func (s *Service) countAssignedAssets(ctx context.Context, employeeID string) (int, error) {
	records, err := s.store.GetAll(ctx, domain.CollectionAssets)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, rec := range records {
		if rec.String(domain.FieldAssignedTo) != employeeID {
			continue
		}
		if domain.AssetStatus(rec.String(domain.FieldStatus)) != domain.StatusAssigned {
			continue
		}
		count++
	}
	return count, nil
}

// recountIfPresent refreshes the cached count when the directory row exists.
// Assignments may legitimately precede the row (the accountability workflow
// upserts the employee after assigning), so absence is not an error.
func (s *Service) recountIfPresent(ctx context.Context, employeeID string) {
	if employeeID == "" {
		return
	}
	_, found, err := s.store.GetOne(ctx, domain.CollectionEmployees, domain.FieldEmployeeID, employeeID)
	if err != nil || !found {
		return
	}
	count, err := s.countAssignedAssets(ctx, employeeID)
	if err != nil {
		s.logger.Warn("employee recount failed", "employee", employeeID, "error", err)
		return
	}
	if _, err := s.store.Update(ctx, domain.CollectionEmployees, domain.FieldEmployeeID, employeeID, domain.Record{
		domain.FieldAssignedAssets: float64(count),
	}); err != nil {
		s.logger.Warn("employee recount failed", "employee", employeeID, "error", err)
	}
}

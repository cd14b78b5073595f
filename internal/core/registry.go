package core

import (
	"context"
	"fmt"
	"time"

	"assetcore/pkg/domain"
)

// Sequence names persisted in the settings collection.
const assetTagSequence = "assetTagSequence"

const assetTagStart = 1000

// AssetInput carries caller-supplied fields for a new asset. The tag is
// minted by the registry and never supplied.
type AssetInput struct {
	SerialNumber   string
	Category       string
	Brand          string
	Model          string
	Condition      string
	Status         string
	Location       string
	PurchasePrice  float64
	WarrantyExpiry time.Time
	DateReceived   time.Time
	Notes          string
}

func (in AssetInput) validate() error {
	switch {
	case in.SerialNumber == "":
		return domain.MissingField(domain.FieldSerialNumber)
	case in.Category == "":
		return domain.MissingField(domain.FieldCategory)
	case in.Brand == "":
		return domain.MissingField(domain.FieldBrand)
	case in.Model == "":
		return domain.MissingField(domain.FieldModel)
	case in.Condition == "":
		return domain.MissingField(domain.FieldCondition)
	case in.DateReceived.IsZero():
		return domain.MissingField(domain.FieldDateReceived)
	}
	if !domain.AssetCondition(in.Condition).Valid() {
		return domain.ValidationError{Field: domain.FieldCondition, Message: fmt.Sprintf("invalid condition %q", in.Condition)}
	}
	if in.Status != "" && !domain.AssetStatus(in.Status).Valid() {
		return domain.ValidationError{Field: domain.FieldStatus, Message: fmt.Sprintf("invalid status %q", in.Status)}
	}
	return nil
}

// AddAsset registers a new asset, minting its tag from the persistent
// sequence. New assets default to Available.
func (s *Service) AddAsset(ctx context.Context, input AssetInput) (domain.Asset, error) {
	var created domain.Asset
	err := s.run(ctx, "add_asset", func(ctx context.Context) error {
		if err := input.validate(); err != nil {
			return err
		}
		if _, found, err := s.store.GetOne(ctx, domain.CollectionAssets, domain.FieldSerialNumber, input.SerialNumber); err != nil {
			return err
		} else if found {
			return domain.DuplicateError{Collection: domain.CollectionAssets, Column: domain.FieldSerialNumber, Value: input.SerialNumber}
		}
		seq, err := s.store.NextSequence(ctx, assetTagSequence, assetTagStart)
		if err != nil {
			return err
		}
		asset := domain.Asset{
			AssetTag:       fmt.Sprintf("IT-%04d", seq),
			SerialNumber:   input.SerialNumber,
			Category:       input.Category,
			Brand:          input.Brand,
			Model:          input.Model,
			Condition:      domain.AssetCondition(input.Condition),
			Status:         domain.StatusAvailable,
			Location:       input.Location,
			PurchasePrice:  input.PurchasePrice,
			WarrantyExpiry: input.WarrantyExpiry,
			DateReceived:   input.DateReceived,
			Notes:          input.Notes,
		}
		if input.Status != "" {
			asset.Status = domain.AssetStatus(input.Status)
		}
		inserted, err := s.store.Insert(ctx, domain.CollectionAssets, asset.ToRecord())
		if err != nil {
			return err
		}
		created = domain.AssetFromRecord(inserted)
		return nil
	})
	return created, err
}

// UpdateAsset applies the mutator to the stored asset and persists the
// result. The tag is immutable; serial number changes re-check uniqueness.
func (s *Service) UpdateAsset(ctx context.Context, tag string, mutator func(*domain.Asset) error) (domain.Asset, error) {
	var updated domain.Asset
	err := s.run(ctx, "update_asset", func(ctx context.Context) error {
		current, err := s.getAsset(ctx, tag)
		if err != nil {
			return err
		}
		next := current
		if err := mutator(&next); err != nil {
			return err
		}
		if next.AssetTag != current.AssetTag {
			return domain.ValidationError{Field: domain.FieldAssetTag, Message: "assetTag is immutable"}
		}
		if next.Condition != "" && !next.Condition.Valid() {
			return domain.ValidationError{Field: domain.FieldCondition, Message: fmt.Sprintf("invalid condition %q", next.Condition)}
		}
		if !next.Status.Valid() {
			return domain.ValidationError{Field: domain.FieldStatus, Message: fmt.Sprintf("invalid status %q", next.Status)}
		}
		if next.SerialNumber == "" {
			return domain.MissingField(domain.FieldSerialNumber)
		}
		if next.SerialNumber != current.SerialNumber {
			if other, found, err := s.store.GetOne(ctx, domain.CollectionAssets, domain.FieldSerialNumber, next.SerialNumber); err != nil {
				return err
			} else if found && other.String(domain.FieldAssetTag) != tag {
				return domain.DuplicateError{Collection: domain.CollectionAssets, Column: domain.FieldSerialNumber, Value: next.SerialNumber}
			}
		}
		rec, err := s.store.Update(ctx, domain.CollectionAssets, domain.FieldAssetTag, tag, next.ToRecord())
		if err != nil {
			return err
		}
		updated = domain.AssetFromRecord(rec)
		return nil
	})
	return updated, err
}

// DeleteAsset removes an asset that is not currently held by an employee.
func (s *Service) DeleteAsset(ctx context.Context, tag string) error {
	return s.run(ctx, "delete_asset", func(ctx context.Context) error {
		asset, err := s.getAsset(ctx, tag)
		if err != nil {
			return err
		}
		if asset.Status == domain.StatusAssigned {
			return domain.ConflictError{Message: fmt.Sprintf("asset %s cannot be deleted while assigned", tag)}
		}
		_, err = s.store.Delete(ctx, domain.CollectionAssets, domain.FieldAssetTag, tag)
		return err
	})
}

// GetAsset returns the asset with the given tag.
func (s *Service) GetAsset(ctx context.Context, tag string) (domain.Asset, error) {
	var asset domain.Asset
	err := s.run(ctx, "get_asset", func(ctx context.Context) error {
		var err error
		asset, err = s.getAsset(ctx, tag)
		return err
	})
	return asset, err
}

// ListAssets returns every registered asset in insertion order.
func (s *Service) ListAssets(ctx context.Context) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := s.run(ctx, "list_assets", func(ctx context.Context) error {
		records, err := s.store.GetAll(ctx, domain.CollectionAssets)
		if err != nil {
			return err
		}
		assets = make([]domain.Asset, 0, len(records))
		for _, rec := range records {
			assets = append(assets, domain.AssetFromRecord(rec))
		}
		return nil
	})
	return assets, err
}

// SearchAssets filters the registry. String filters match as case-insensitive
// substrings, other scalars exactly; freeText must appear in some field.
func (s *Service) SearchAssets(ctx context.Context, filters domain.Record, freeText string) ([]domain.Asset, error) {
	var assets []domain.Asset
	err := s.run(ctx, "search_assets", func(ctx context.Context) error {
		records, err := s.store.Search(ctx, domain.CollectionAssets, filters, freeText)
		if err != nil {
			return err
		}
		assets = make([]domain.Asset, 0, len(records))
		for _, rec := range records {
			assets = append(assets, domain.AssetFromRecord(rec))
		}
		return nil
	})
	return assets, err
}

// AssignAsset hands an Available asset to an employee and refreshes the
// employee's cached assignment count.
func (s *Service) AssignAsset(ctx context.Context, tag, employeeID string) (domain.Asset, error) {
	var asset domain.Asset
	err := s.run(ctx, "assign_asset", func(ctx context.Context) error {
		var err error
		asset, err = s.assignAsset(ctx, tag, employeeID)
		return err
	})
	return asset, err
}

// ReturnAsset takes an Assigned asset back, optionally regrading its
// condition, and refreshes the previous holder's cached count.
func (s *Service) ReturnAsset(ctx context.Context, tag, condition string) (domain.Asset, error) {
	var asset domain.Asset
	err := s.run(ctx, "return_asset", func(ctx context.Context) error {
		var err error
		asset, err = s.returnAsset(ctx, tag, condition)
		return err
	})
	return asset, err
}

func (s *Service) getAsset(ctx context.Context, tag string) (domain.Asset, error) {
	if tag == "" {
		return domain.Asset{}, domain.MissingField(domain.FieldAssetTag)
	}
	rec, found, err := s.store.GetOne(ctx, domain.CollectionAssets, domain.FieldAssetTag, tag)
	if err != nil {
		return domain.Asset{}, err
	}
	if !found {
		return domain.Asset{}, domain.NotFoundError{Entity: "asset", Key: tag}
	}
	return domain.AssetFromRecord(rec), nil
}

func (s *Service) assignAsset(ctx context.Context, tag, employeeID string) (domain.Asset, error) {
	if employeeID == "" {
		return domain.Asset{}, domain.MissingField(domain.FieldEmployeeID)
	}
	asset, err := s.getAsset(ctx, tag)
	if err != nil {
		return domain.Asset{}, err
	}
	if asset.Status != domain.StatusAvailable {
		return domain.Asset{}, domain.ConflictError{Message: fmt.Sprintf("asset %s is not available for assignment", tag)}
	}
	patch := domain.Record{
		domain.FieldStatus:     string(domain.StatusAssigned),
		domain.FieldAssignedTo: employeeID,
	}
	patch.SetTime(domain.FieldAssignmentDate, s.now())
	rec, err := s.store.Update(ctx, domain.CollectionAssets, domain.FieldAssetTag, tag, patch)
	if err != nil {
		return domain.Asset{}, err
	}
	s.recountIfPresent(ctx, employeeID)
	return domain.AssetFromRecord(rec), nil
}

func (s *Service) returnAsset(ctx context.Context, tag, condition string) (domain.Asset, error) {
	asset, err := s.getAsset(ctx, tag)
	if err != nil {
		return domain.Asset{}, err
	}
	if asset.Status != domain.StatusAssigned {
		return domain.Asset{}, domain.ConflictError{Message: fmt.Sprintf("asset %s is not currently assigned", tag)}
	}
	if condition != "" && !domain.AssetCondition(condition).Valid() {
		return domain.Asset{}, domain.ValidationError{Field: domain.FieldCondition, Message: fmt.Sprintf("invalid condition %q", condition)}
	}
	patch := domain.Record{
		domain.FieldStatus:         string(domain.StatusAvailable),
		domain.FieldAssignedTo:     "",
		domain.FieldAssignmentDate: "",
	}
	if condition != "" {
		patch[domain.FieldCondition] = condition
	}
	rec, err := s.store.Update(ctx, domain.CollectionAssets, domain.FieldAssetTag, tag, patch)
	if err != nil {
		return domain.Asset{}, err
	}
	s.recountIfPresent(ctx, asset.AssignedTo)
	return domain.AssetFromRecord(rec), nil
}

package domain

// Collection names double as persistence bucket identifiers.
const (
	CollectionAssets         = "assets"
	CollectionEmployees      = "employees"
	CollectionAccountability = "accountability"
	CollectionDisposals      = "disposals"
	CollectionSettings       = "settings"
)

// System columns stamped by the store on every insert and update.
const (
	FieldCreatedAt = "createdAt"
	FieldCreatedBy = "createdBy"
	FieldUpdatedAt = "updatedAt"
	FieldUpdatedBy = "updatedBy"
)

// Columns shared by multiple collections.
const (
	FieldStatus = "status"
	FieldNotes  = "notes"
)

// Asset columns.
const (
	FieldAssetTag       = "assetTag"
	FieldSerialNumber   = "serialNumber"
	FieldCategory       = "category"
	FieldBrand          = "brand"
	FieldModel          = "model"
	FieldCondition      = "condition"
	FieldLocation       = "location"
	FieldPurchasePrice  = "purchasePrice"
	FieldWarrantyExpiry = "warrantyExpiry"
	FieldDateReceived   = "dateReceived"
	FieldAssignedTo     = "assignedTo"
	FieldAssignmentDate = "assignmentDate"
)

// Employee columns.
const (
	FieldEmployeeID     = "employeeId"
	FieldName           = "name"
	FieldEmail          = "email"
	FieldDepartment     = "department"
	FieldPosition       = "position"
	FieldAssignedAssets = "assignedAssets"
)

// Accountability columns.
const (
	FieldFormID            = "formId"
	FieldEmployeeName      = "employeeName"
	FieldEmployeeEmail     = "employeeEmail"
	FieldITPersonnel       = "itPersonnel"
	FieldITSignature       = "itSignature"
	FieldEmployeeConfirmed = "employeeConfirmed"
	FieldEmployeeSignature = "employeeSignature"
	FieldConfirmationDate  = "confirmationDate"
	FieldReturnDate        = "returnDate"
	FieldReturnCondition   = "returnCondition"
	FieldDocumentRef       = "documentRef"
)

// Disposal columns.
const (
	FieldDisposalID        = "disposalId"
	FieldMethod            = "method"
	FieldReason            = "reason"
	FieldRequestDate       = "requestDate"
	FieldApproverName      = "approverName"
	FieldApproverEmail     = "approverEmail"
	FieldApproverSignature = "approverSignature"
	FieldApprovalDate      = "approvalDate"
	FieldEstimatedValue    = "estimatedValue"
)

// Settings columns.
const (
	FieldKey   = "key"
	FieldValue = "value"
)

// SettingAuditEnabled is the settings key gating audit trail emission. Store
// implementations consult it before invoking their audit sink; an absent or
// unparsable row leaves the trail on.
const SettingAuditEnabled = "auditEnabled"

// Schema declares a collection: its persisted name, primary key column, and
// the full ordered column set. Inserts materialize every declared column.
type Schema struct {
	Name    string
	Key     string
	Columns []string
}

// HasColumn reports whether the schema declares the named column.
func (s Schema) HasColumn(name string) bool {
	for _, col := range s.Columns {
		if col == name {
			return true
		}
	}
	return false
}

func systemColumns() []string {
	return []string{FieldCreatedAt, FieldCreatedBy, FieldUpdatedAt, FieldUpdatedBy}
}

// Collections returns the declared schemas in registration order. Callers
// receive fresh copies and may not mutate shared state.
func Collections() []Schema {
	return []Schema{
		{
			Name: CollectionAssets,
			Key:  FieldAssetTag,
			Columns: append([]string{
				FieldAssetTag, FieldSerialNumber, FieldCategory, FieldBrand,
				FieldModel, FieldCondition, FieldStatus, FieldLocation,
				FieldPurchasePrice, FieldWarrantyExpiry, FieldDateReceived,
				FieldAssignedTo, FieldAssignmentDate, FieldNotes,
			}, systemColumns()...),
		},
		{
			Name: CollectionEmployees,
			Key:  FieldEmployeeID,
			Columns: append([]string{
				FieldEmployeeID, FieldName, FieldEmail, FieldDepartment,
				FieldPosition, FieldStatus, FieldAssignedAssets,
			}, systemColumns()...),
		},
		{
			Name: CollectionAccountability,
			Key:  FieldFormID,
			Columns: append([]string{
				FieldFormID, FieldAssetTag, FieldEmployeeID, FieldEmployeeName,
				FieldEmployeeEmail, FieldAssignmentDate, FieldITPersonnel,
				FieldITSignature, FieldEmployeeConfirmed, FieldEmployeeSignature,
				FieldConfirmationDate, FieldStatus, FieldDocumentRef,
				FieldReturnDate, FieldReturnCondition, FieldNotes,
			}, systemColumns()...),
		},
		{
			Name: CollectionDisposals,
			Key:  FieldDisposalID,
			Columns: append([]string{
				FieldDisposalID, FieldAssetTag, FieldMethod, FieldReason,
				FieldRequestDate, FieldITPersonnel, FieldITSignature,
				FieldApproverName, FieldApproverEmail, FieldApproverSignature,
				FieldApprovalDate, FieldEstimatedValue, FieldStatus,
				FieldDocumentRef, FieldNotes,
			}, systemColumns()...),
		},
		{
			Name: CollectionSettings,
			Key:  FieldKey,
			Columns: append([]string{
				FieldKey, FieldValue,
			}, systemColumns()...),
		},
	}
}

// SchemaFor returns the schema declared for the named collection.
func SchemaFor(name string) (Schema, bool) {
	for _, schema := range Collections() {
		if schema.Name == name {
			return schema, true
		}
	}
	return Schema{}, false
}

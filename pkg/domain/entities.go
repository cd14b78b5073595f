// Package domain defines the tabular record model, equipment lifecycle
// entities, and rule evaluation primitives used by assetcore.
package domain

import "time"

// AssetStatus enumerates the canonical asset lifecycle states.
type AssetStatus string

// Canonical asset statuses. Disposed is terminal: no transition leaves it.
const (
	// StatusAvailable marks an asset ready for assignment.
	StatusAvailable AssetStatus = "Available"
	// StatusAssigned marks an asset held by an employee under an active
	// accountability form.
	StatusAssigned         AssetStatus = "Assigned"
	StatusUnderMaintenance AssetStatus = "UnderMaintenance"
	StatusReserved         AssetStatus = "Reserved"
	StatusDisposed         AssetStatus = "Disposed"
	StatusLost             AssetStatus = "Lost"
)

// Valid reports whether the value is a declared asset status.
func (s AssetStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusAssigned, StatusUnderMaintenance, StatusReserved, StatusDisposed, StatusLost:
		return true
	}
	return false
}

// AssetCondition grades the physical state of an asset.
type AssetCondition string

// Canonical asset conditions recorded at intake and on return.
const (
	ConditionNew     AssetCondition = "New"
	ConditionGood    AssetCondition = "Good"
	ConditionFair    AssetCondition = "Fair"
	ConditionPoor    AssetCondition = "Poor"
	ConditionDamaged AssetCondition = "Damaged"
)

// Valid reports whether the value is a declared asset condition.
func (c AssetCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionFair, ConditionPoor, ConditionDamaged:
		return true
	}
	return false
}

// AccountabilityStatus enumerates accountability workflow states.
type AccountabilityStatus string

// Canonical accountability statuses. PendingConfirmation and Completed count
// as active; Returned is history.
const (
	AccountabilityPending   AccountabilityStatus = "PendingConfirmation"
	AccountabilityCompleted AccountabilityStatus = "Completed"
	AccountabilityReturned  AccountabilityStatus = "Returned"
)

// Valid reports whether the value is a declared accountability status.
func (s AccountabilityStatus) Valid() bool {
	switch s {
	case AccountabilityPending, AccountabilityCompleted, AccountabilityReturned:
		return true
	}
	return false
}

// Active reports whether a form in this state binds its asset.
func (s AccountabilityStatus) Active() bool {
	return s == AccountabilityPending || s == AccountabilityCompleted
}

// DisposalStatus enumerates disposal workflow states.
type DisposalStatus string

// Canonical disposal statuses.
const (
	DisposalPending   DisposalStatus = "PendingApproval"
	DisposalApproved  DisposalStatus = "Approved"
	DisposalRejected  DisposalStatus = "Rejected"
	DisposalCancelled DisposalStatus = "Cancelled"
)

// Valid reports whether the value is a declared disposal status.
func (s DisposalStatus) Valid() bool {
	switch s {
	case DisposalPending, DisposalApproved, DisposalRejected, DisposalCancelled:
		return true
	}
	return false
}

// DisposalMethod enumerates supported disposal channels.
type DisposalMethod string

// Canonical disposal methods.
const (
	MethodRecycle DisposalMethod = "Recycle"
	MethodDonate  DisposalMethod = "Donate"
	MethodSell    DisposalMethod = "Sell"
	MethodScrap   DisposalMethod = "Scrap"
	MethodDestroy DisposalMethod = "Destroy"
)

// Valid reports whether the value is a declared disposal method.
func (m DisposalMethod) Valid() bool {
	switch m {
	case MethodRecycle, MethodDonate, MethodSell, MethodScrap, MethodDestroy:
		return true
	}
	return false
}

// EmployeeStatus enumerates employee record states.
type EmployeeStatus string

// Canonical employee statuses. Employees deactivate, they are never deleted.
const (
	EmployeeActive   EmployeeStatus = "Active"
	EmployeeInactive EmployeeStatus = "Inactive"
)

// Valid reports whether the value is a declared employee status.
func (s EmployeeStatus) Valid() bool {
	return s == EmployeeActive || s == EmployeeInactive
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock aborts the mutation before commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Stamps carries the audit columns the store maintains on every record.
type Stamps struct {
	CreatedAt time.Time `json:"createdAt"`
	CreatedBy string    `json:"createdBy"`
	UpdatedAt time.Time `json:"updatedAt"`
	UpdatedBy string    `json:"updatedBy"`
}

func stampsFromRecord(rec Record) Stamps {
	return Stamps{
		CreatedAt: rec.Time(FieldCreatedAt),
		CreatedBy: rec.String(FieldCreatedBy),
		UpdatedAt: rec.Time(FieldUpdatedAt),
		UpdatedBy: rec.String(FieldUpdatedBy),
	}
}

// Asset is the typed view over a row in the assets collection.
type Asset struct {
	AssetTag       string         `json:"assetTag"`
	SerialNumber   string         `json:"serialNumber"`
	Category       string         `json:"category"`
	Brand          string         `json:"brand"`
	Model          string         `json:"model"`
	Condition      AssetCondition `json:"condition"`
	Status         AssetStatus    `json:"status"`
	Location       string         `json:"location"`
	PurchasePrice  float64        `json:"purchasePrice"`
	WarrantyExpiry time.Time      `json:"warrantyExpiry"`
	DateReceived   time.Time      `json:"dateReceived"`
	AssignedTo     string         `json:"assignedTo"`
	AssignmentDate time.Time      `json:"assignmentDate"`
	Notes          string         `json:"notes"`
	Stamps
}

// AssetFromRecord hydrates the typed view from a stored record.
func AssetFromRecord(rec Record) Asset {
	return Asset{
		AssetTag:       rec.String(FieldAssetTag),
		SerialNumber:   rec.String(FieldSerialNumber),
		Category:       rec.String(FieldCategory),
		Brand:          rec.String(FieldBrand),
		Model:          rec.String(FieldModel),
		Condition:      AssetCondition(rec.String(FieldCondition)),
		Status:         AssetStatus(rec.String(FieldStatus)),
		Location:       rec.String(FieldLocation),
		PurchasePrice:  rec.Float(FieldPurchasePrice),
		WarrantyExpiry: rec.Time(FieldWarrantyExpiry),
		DateReceived:   rec.Time(FieldDateReceived),
		AssignedTo:     rec.String(FieldAssignedTo),
		AssignmentDate: rec.Time(FieldAssignmentDate),
		Notes:          rec.String(FieldNotes),
		Stamps:         stampsFromRecord(rec),
	}
}

// ToRecord flattens the asset into its stored columns. System columns are
// omitted: the store stamps them.
func (a Asset) ToRecord() Record {
	rec := Record{
		FieldAssetTag:      a.AssetTag,
		FieldSerialNumber:  a.SerialNumber,
		FieldCategory:      a.Category,
		FieldBrand:         a.Brand,
		FieldModel:         a.Model,
		FieldCondition:     string(a.Condition),
		FieldStatus:        string(a.Status),
		FieldLocation:      a.Location,
		FieldPurchasePrice: a.PurchasePrice,
		FieldAssignedTo:    a.AssignedTo,
		FieldNotes:         a.Notes,
	}
	rec.SetTime(FieldWarrantyExpiry, a.WarrantyExpiry)
	rec.SetTime(FieldDateReceived, a.DateReceived)
	rec.SetTime(FieldAssignmentDate, a.AssignmentDate)
	return rec
}

// Employee is the typed view over a row in the employees collection.
type Employee struct {
	EmployeeID     string         `json:"employeeId"`
	Name           string         `json:"name"`
	Email          string         `json:"email"`
	Department     string         `json:"department"`
	Position       string         `json:"position"`
	Status         EmployeeStatus `json:"status"`
	AssignedAssets int64          `json:"assignedAssets"`
	Stamps
}

// EmployeeFromRecord hydrates the typed view from a stored record.
func EmployeeFromRecord(rec Record) Employee {
	return Employee{
		EmployeeID:     rec.String(FieldEmployeeID),
		Name:           rec.String(FieldName),
		Email:          rec.String(FieldEmail),
		Department:     rec.String(FieldDepartment),
		Position:       rec.String(FieldPosition),
		Status:         EmployeeStatus(rec.String(FieldStatus)),
		AssignedAssets: rec.Int(FieldAssignedAssets),
		Stamps:         stampsFromRecord(rec),
	}
}

// ToRecord flattens the employee into its stored columns.
func (e Employee) ToRecord() Record {
	return Record{
		FieldEmployeeID:     e.EmployeeID,
		FieldName:           e.Name,
		FieldEmail:          e.Email,
		FieldDepartment:     e.Department,
		FieldPosition:       e.Position,
		FieldStatus:         string(e.Status),
		FieldAssignedAssets: float64(e.AssignedAssets),
	}
}

// AccountabilityRecord is the typed view over a row in the accountability
// collection. A form binds one asset to one employee, referenced by id and
// email; lookups match either.
type AccountabilityRecord struct {
	FormID            string               `json:"formId"`
	AssetTag          string               `json:"assetTag"`
	EmployeeID        string               `json:"employeeId"`
	EmployeeName      string               `json:"employeeName"`
	EmployeeEmail     string               `json:"employeeEmail"`
	AssignmentDate    time.Time            `json:"assignmentDate"`
	ITPersonnel       string               `json:"itPersonnel"`
	ITSignature       string               `json:"itSignature"`
	EmployeeConfirmed bool                 `json:"employeeConfirmed"`
	EmployeeSignature string               `json:"employeeSignature"`
	ConfirmationDate  time.Time            `json:"confirmationDate"`
	Status            AccountabilityStatus `json:"status"`
	DocumentRef       string               `json:"documentRef"`
	ReturnDate        time.Time            `json:"returnDate"`
	ReturnCondition   string               `json:"returnCondition"`
	Notes             string               `json:"notes"`
	Stamps
}

// AccountabilityFromRecord hydrates the typed view from a stored record.
func AccountabilityFromRecord(rec Record) AccountabilityRecord {
	return AccountabilityRecord{
		FormID:            rec.String(FieldFormID),
		AssetTag:          rec.String(FieldAssetTag),
		EmployeeID:        rec.String(FieldEmployeeID),
		EmployeeName:      rec.String(FieldEmployeeName),
		EmployeeEmail:     rec.String(FieldEmployeeEmail),
		AssignmentDate:    rec.Time(FieldAssignmentDate),
		ITPersonnel:       rec.String(FieldITPersonnel),
		ITSignature:       rec.String(FieldITSignature),
		EmployeeConfirmed: rec.Bool(FieldEmployeeConfirmed),
		EmployeeSignature: rec.String(FieldEmployeeSignature),
		ConfirmationDate:  rec.Time(FieldConfirmationDate),
		Status:            AccountabilityStatus(rec.String(FieldStatus)),
		DocumentRef:       rec.String(FieldDocumentRef),
		ReturnDate:        rec.Time(FieldReturnDate),
		ReturnCondition:   rec.String(FieldReturnCondition),
		Notes:             rec.String(FieldNotes),
		Stamps:            stampsFromRecord(rec),
	}
}

// ToRecord flattens the form into its stored columns.
func (f AccountabilityRecord) ToRecord() Record {
	rec := Record{
		FieldFormID:            f.FormID,
		FieldAssetTag:          f.AssetTag,
		FieldEmployeeID:        f.EmployeeID,
		FieldEmployeeName:      f.EmployeeName,
		FieldEmployeeEmail:     f.EmployeeEmail,
		FieldITPersonnel:       f.ITPersonnel,
		FieldITSignature:       f.ITSignature,
		FieldEmployeeConfirmed: f.EmployeeConfirmed,
		FieldEmployeeSignature: f.EmployeeSignature,
		FieldStatus:            string(f.Status),
		FieldDocumentRef:       f.DocumentRef,
		FieldReturnCondition:   f.ReturnCondition,
		FieldNotes:             f.Notes,
	}
	rec.SetTime(FieldAssignmentDate, f.AssignmentDate)
	rec.SetTime(FieldConfirmationDate, f.ConfirmationDate)
	rec.SetTime(FieldReturnDate, f.ReturnDate)
	return rec
}

// DisposalRecord is the typed view over a row in the disposals collection.
type DisposalRecord struct {
	DisposalID        string         `json:"disposalId"`
	AssetTag          string         `json:"assetTag"`
	Method            DisposalMethod `json:"method"`
	Reason            string         `json:"reason"`
	RequestDate       time.Time      `json:"requestDate"`
	ITPersonnel       string         `json:"itPersonnel"`
	ITSignature       string         `json:"itSignature"`
	ApproverName      string         `json:"approverName"`
	ApproverEmail     string         `json:"approverEmail"`
	ApproverSignature string         `json:"approverSignature"`
	ApprovalDate      time.Time      `json:"approvalDate"`
	EstimatedValue    float64        `json:"estimatedValue"`
	Status            DisposalStatus `json:"status"`
	DocumentRef       string         `json:"documentRef"`
	Notes             string         `json:"notes"`
	Stamps
}

// DisposalFromRecord hydrates the typed view from a stored record.
func DisposalFromRecord(rec Record) DisposalRecord {
	return DisposalRecord{
		DisposalID:        rec.String(FieldDisposalID),
		AssetTag:          rec.String(FieldAssetTag),
		Method:            DisposalMethod(rec.String(FieldMethod)),
		Reason:            rec.String(FieldReason),
		RequestDate:       rec.Time(FieldRequestDate),
		ITPersonnel:       rec.String(FieldITPersonnel),
		ITSignature:       rec.String(FieldITSignature),
		ApproverName:      rec.String(FieldApproverName),
		ApproverEmail:     rec.String(FieldApproverEmail),
		ApproverSignature: rec.String(FieldApproverSignature),
		ApprovalDate:      rec.Time(FieldApprovalDate),
		EstimatedValue:    rec.Float(FieldEstimatedValue),
		Status:            DisposalStatus(rec.String(FieldStatus)),
		DocumentRef:       rec.String(FieldDocumentRef),
		Notes:             rec.String(FieldNotes),
		Stamps:            stampsFromRecord(rec),
	}
}

// ToRecord flattens the disposal request into its stored columns.
func (d DisposalRecord) ToRecord() Record {
	rec := Record{
		FieldDisposalID:        d.DisposalID,
		FieldAssetTag:          d.AssetTag,
		FieldMethod:            string(d.Method),
		FieldReason:            d.Reason,
		FieldITPersonnel:       d.ITPersonnel,
		FieldITSignature:       d.ITSignature,
		FieldApproverName:      d.ApproverName,
		FieldApproverEmail:     d.ApproverEmail,
		FieldApproverSignature: d.ApproverSignature,
		FieldEstimatedValue:    d.EstimatedValue,
		FieldStatus:            string(d.Status),
		FieldDocumentRef:       d.DocumentRef,
		FieldNotes:             d.Notes,
	}
	rec.SetTime(FieldRequestDate, d.RequestDate)
	rec.SetTime(FieldApprovalDate, d.ApprovalDate)
	return rec
}

// Change describes a mutation applied to a collection row.
type Change struct {
	Collection string
	Action     Action
	Key        string
	Before     Record
	After      Record
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in the audit
// trail.
const (
	// ActionCreate indicates a row was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates a row was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule       string
	Severity   Severity
	Message    string
	Collection string
	Key        string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock {
			return "mutation blocked by rules: " + v.Message
		}
	}
	return "mutation blocked by rules"
}

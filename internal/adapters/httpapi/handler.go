// Package httpapi exposes the service operations over HTTP. Every response
// uses the uniform envelope {success, message, data}; error messages come
// straight from the domain error taxonomy so clients can rely on them.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"assetcore/internal/core"
	"assetcore/pkg/domain"
)

// ActorHeader names the request header carrying the acting identity. The
// hosting environment authenticates the caller; the value is trusted as-is.
const ActorHeader = "X-Actor"

// Handler routes HTTP requests to a core.Service.
type Handler struct {
	svc    *core.Service
	logger domain.Logger
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithLogger overrides the handler logger.
func WithLogger(logger domain.Logger) HandlerOption {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHandler constructs a handler over the service.
func NewHandler(svc *core.Service, opts ...HandlerOption) *Handler {
	h := &Handler{svc: svc, logger: domain.NopLogger()}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Router builds the API route table. Static paths are registered before
// parameterized ones so /overdue never matches as an id.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(h.actorMiddleware)

	r.HandleFunc("/healthz", h.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/assets", h.handleAddAsset).Methods(http.MethodPost)
	api.HandleFunc("/assets", h.handleListAssets).Methods(http.MethodGet)
	api.HandleFunc("/assets/{tag}", h.handleGetAsset).Methods(http.MethodGet)
	api.HandleFunc("/assets/{tag}", h.handleUpdateAsset).Methods(http.MethodPut)
	api.HandleFunc("/assets/{tag}", h.handleDeleteAsset).Methods(http.MethodDelete)

	api.HandleFunc("/accountability", h.handleSubmitAccountability).Methods(http.MethodPost)
	api.HandleFunc("/accountability", h.handleSearchAccountability).Methods(http.MethodGet)
	api.HandleFunc("/accountability/overdue", h.handleOverdueAccountability).Methods(http.MethodGet)
	api.HandleFunc("/accountability/reminders", h.handleAccountabilityReminders).Methods(http.MethodPost)
	api.HandleFunc("/accountability/{id}", h.handleGetAccountability).Methods(http.MethodGet)
	api.HandleFunc("/accountability/{id}/confirm", h.handleConfirmAccountability).Methods(http.MethodPost)
	api.HandleFunc("/accountability/{id}/return", h.handleProcessReturn).Methods(http.MethodPost)

	api.HandleFunc("/disposals", h.handleSubmitDisposal).Methods(http.MethodPost)
	api.HandleFunc("/disposals", h.handleSearchDisposals).Methods(http.MethodGet)
	api.HandleFunc("/disposals/overdue", h.handleOverdueDisposals).Methods(http.MethodGet)
	api.HandleFunc("/disposals/reminders", h.handleDisposalReminders).Methods(http.MethodPost)
	api.HandleFunc("/disposals/{id}", h.handleGetDisposal).Methods(http.MethodGet)
	api.HandleFunc("/disposals/{id}/decision", h.handleDecideDisposal).Methods(http.MethodPost)
	api.HandleFunc("/disposals/{id}/cancel", h.handleCancelDisposal).Methods(http.MethodPost)

	api.HandleFunc("/employees", h.handleUpsertEmployee).Methods(http.MethodPost)
	api.HandleFunc("/employees", h.handleListEmployees).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id}", h.handleGetEmployee).Methods(http.MethodGet)
	api.HandleFunc("/employees/{id}/accountability", h.handleAccountabilityByEmployee).Methods(http.MethodGet)

	api.HandleFunc("/settings", h.handleListSettings).Methods(http.MethodGet)
	api.HandleFunc("/settings/{key}", h.handleGetSetting).Methods(http.MethodGet)
	api.HandleFunc("/settings/{key}", h.handlePutSetting).Methods(http.MethodPut)

	return r
}

func (h *Handler) actorMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if actor := strings.TrimSpace(r.Header.Get(ActorHeader)); actor != "" {
			r = r.WithContext(domain.WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, "ok", nil)
}

// --- assets ---

type assetRequest struct {
	SerialNumber   string  `json:"serialNumber"`
	Category       string  `json:"category"`
	Brand          string  `json:"brand"`
	Model          string  `json:"model"`
	Condition      string  `json:"condition"`
	Status         string  `json:"status"`
	Location       string  `json:"location"`
	PurchasePrice  float64 `json:"purchasePrice"`
	WarrantyExpiry string  `json:"warrantyExpiry"`
	DateReceived   string  `json:"dateReceived"`
	Notes          string  `json:"notes"`
}

func (h *Handler) handleAddAsset(w http.ResponseWriter, r *http.Request) {
	var req assetRequest
	if !h.decode(w, r, &req) {
		return
	}
	warranty, ok := h.parseTime(w, "warrantyExpiry", req.WarrantyExpiry)
	if !ok {
		return
	}
	received, ok := h.parseTime(w, "dateReceived", req.DateReceived)
	if !ok {
		return
	}
	asset, err := h.svc.AddAsset(r.Context(), core.AssetInput{
		SerialNumber:   req.SerialNumber,
		Category:       req.Category,
		Brand:          req.Brand,
		Model:          req.Model,
		Condition:      req.Condition,
		Status:         req.Status,
		Location:       req.Location,
		PurchasePrice:  req.PurchasePrice,
		WarrantyExpiry: warranty,
		DateReceived:   received,
		Notes:          req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, fmt.Sprintf("asset %s registered", asset.AssetTag), asset)
}

// assetFilterColumns lists the query parameters accepted as search filters.
var assetFilterColumns = []string{
	domain.FieldStatus, domain.FieldCategory, domain.FieldBrand,
	domain.FieldModel, domain.FieldCondition, domain.FieldLocation,
	domain.FieldAssignedTo, domain.FieldSerialNumber,
}

func (h *Handler) handleListAssets(w http.ResponseWriter, r *http.Request) {
	filters, freeText := queryFilters(r, assetFilterColumns)
	var (
		assets []domain.Asset
		err    error
	)
	if len(filters) == 0 && freeText == "" {
		assets, err = h.svc.ListAssets(r.Context())
	} else {
		assets, err = h.svc.SearchAssets(r.Context(), filters, freeText)
	}
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d assets", len(assets)), assets)
}

func (h *Handler) handleGetAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.svc.GetAsset(r.Context(), mux.Vars(r)["tag"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "asset found", asset)
}

type assetPatchRequest struct {
	SerialNumber   *string  `json:"serialNumber"`
	Category       *string  `json:"category"`
	Brand          *string  `json:"brand"`
	Model          *string  `json:"model"`
	Condition      *string  `json:"condition"`
	Status         *string  `json:"status"`
	Location       *string  `json:"location"`
	PurchasePrice  *float64 `json:"purchasePrice"`
	WarrantyExpiry *string  `json:"warrantyExpiry"`
	Notes          *string  `json:"notes"`
}

func (h *Handler) handleUpdateAsset(w http.ResponseWriter, r *http.Request) {
	var req assetPatchRequest
	if !h.decode(w, r, &req) {
		return
	}
	var warranty time.Time
	if req.WarrantyExpiry != nil {
		parsed, ok := h.parseTime(w, "warrantyExpiry", *req.WarrantyExpiry)
		if !ok {
			return
		}
		warranty = parsed
	}
	asset, err := h.svc.UpdateAsset(r.Context(), mux.Vars(r)["tag"], func(a *domain.Asset) error {
		if req.SerialNumber != nil {
			a.SerialNumber = *req.SerialNumber
		}
		if req.Category != nil {
			a.Category = *req.Category
		}
		if req.Brand != nil {
			a.Brand = *req.Brand
		}
		if req.Model != nil {
			a.Model = *req.Model
		}
		if req.Condition != nil {
			a.Condition = domain.AssetCondition(*req.Condition)
		}
		if req.Status != nil {
			a.Status = domain.AssetStatus(*req.Status)
		}
		if req.Location != nil {
			a.Location = *req.Location
		}
		if req.PurchasePrice != nil {
			a.PurchasePrice = *req.PurchasePrice
		}
		if req.WarrantyExpiry != nil {
			a.WarrantyExpiry = warranty
		}
		if req.Notes != nil {
			a.Notes = *req.Notes
		}
		return nil
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("asset %s updated", asset.AssetTag), asset)
}

func (h *Handler) handleDeleteAsset(w http.ResponseWriter, r *http.Request) {
	tag := mux.Vars(r)["tag"]
	if err := h.svc.DeleteAsset(r.Context(), tag); err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("asset %s deleted", tag), nil)
}

// --- accountability ---

type accountabilityRequest struct {
	AssetTag      string `json:"assetTag"`
	EmployeeName  string `json:"employeeName"`
	EmployeeEmail string `json:"employeeEmail"`
	Department    string `json:"department"`
	Position      string `json:"position"`
	ITPersonnel   string `json:"itPersonnel"`
	ITSignature   string `json:"itSignature"`
	Notes         string `json:"notes"`
}

func (h *Handler) handleSubmitAccountability(w http.ResponseWriter, r *http.Request) {
	var req accountabilityRequest
	if !h.decode(w, r, &req) {
		return
	}
	form, err := h.svc.SubmitAccountability(r.Context(), core.AccountabilityInput{
		AssetTag:      req.AssetTag,
		EmployeeName:  req.EmployeeName,
		EmployeeEmail: req.EmployeeEmail,
		Department:    req.Department,
		Position:      req.Position,
		ITPersonnel:   req.ITPersonnel,
		ITSignature:   req.ITSignature,
		Notes:         req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, fmt.Sprintf("accountability form %s submitted", form.FormID), form)
}

var accountabilityFilterColumns = []string{
	domain.FieldStatus, domain.FieldAssetTag, domain.FieldEmployeeID,
	domain.FieldEmployeeEmail, domain.FieldITPersonnel,
}

func (h *Handler) handleSearchAccountability(w http.ResponseWriter, r *http.Request) {
	filters, freeText := queryFilters(r, accountabilityFilterColumns)
	forms, err := h.svc.SearchAccountability(r.Context(), filters, freeText)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d accountability forms", len(forms)), forms)
}

func (h *Handler) handleGetAccountability(w http.ResponseWriter, r *http.Request) {
	form, err := h.svc.GetAccountability(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "accountability form found", form)
}

func (h *Handler) handleConfirmAccountability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Signature string `json:"signature"`
		Notes     string `json:"notes"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	form, err := h.svc.ConfirmAccountability(r.Context(), mux.Vars(r)["id"], req.Signature, req.Notes)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("accountability form %s confirmed", form.FormID), form)
}

func (h *Handler) handleProcessReturn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Condition string `json:"condition"`
		Notes     string `json:"notes"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	form, err := h.svc.ProcessReturn(r.Context(), mux.Vars(r)["id"], core.ReturnInput{
		Condition: req.Condition,
		Notes:     req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("return recorded on form %s", form.FormID), form)
}

func (h *Handler) handleOverdueAccountability(w http.ResponseWriter, r *http.Request) {
	threshold, ok := h.parseThreshold(w, r)
	if !ok {
		return
	}
	forms, err := h.svc.OverdueAccountability(r.Context(), threshold)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d overdue accountability forms", len(forms)), forms)
}

func (h *Handler) handleAccountabilityReminders(w http.ResponseWriter, r *http.Request) {
	threshold, ok := h.parseThreshold(w, r)
	if !ok {
		return
	}
	sent, err := h.svc.SendAccountabilityReminders(r.Context(), threshold)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d reminders sent", sent), map[string]int{"sent": sent})
}

func (h *Handler) handleAccountabilityByEmployee(w http.ResponseWriter, r *http.Request) {
	forms, err := h.svc.AccountabilityByEmployee(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d accountability forms", len(forms)), forms)
}

// --- disposals ---

type disposalRequest struct {
	AssetTag       string  `json:"assetTag"`
	Method         string  `json:"method"`
	Reason         string  `json:"reason"`
	ITPersonnel    string  `json:"itPersonnel"`
	ITSignature    string  `json:"itSignature"`
	ApproverName   string  `json:"approverName"`
	ApproverEmail  string  `json:"approverEmail"`
	EstimatedValue float64 `json:"estimatedValue"`
	Notes          string  `json:"notes"`
}

func (h *Handler) handleSubmitDisposal(w http.ResponseWriter, r *http.Request) {
	var req disposalRequest
	if !h.decode(w, r, &req) {
		return
	}
	request, err := h.svc.SubmitDisposal(r.Context(), core.DisposalInput{
		AssetTag:       req.AssetTag,
		Method:         req.Method,
		Reason:         req.Reason,
		ITPersonnel:    req.ITPersonnel,
		ITSignature:    req.ITSignature,
		ApproverName:   req.ApproverName,
		ApproverEmail:  req.ApproverEmail,
		EstimatedValue: req.EstimatedValue,
		Notes:          req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusCreated, fmt.Sprintf("disposal request %s submitted", request.DisposalID), request)
}

var disposalFilterColumns = []string{
	domain.FieldStatus, domain.FieldAssetTag, domain.FieldMethod,
	domain.FieldApproverEmail, domain.FieldITPersonnel,
}

func (h *Handler) handleSearchDisposals(w http.ResponseWriter, r *http.Request) {
	// The approver parameter delegates to the dedicated query so matches
	// stay case-insensitive on the address.
	if approver := r.URL.Query().Get("approver"); approver != "" {
		requests, err := h.svc.DisposalsByApprover(r.Context(), approver)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeOK(w, http.StatusOK, fmt.Sprintf("%d disposal requests", len(requests)), requests)
		return
	}
	filters, freeText := queryFilters(r, disposalFilterColumns)
	requests, err := h.svc.SearchDisposals(r.Context(), filters, freeText)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d disposal requests", len(requests)), requests)
}

func (h *Handler) handleGetDisposal(w http.ResponseWriter, r *http.Request) {
	request, err := h.svc.GetDisposal(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "disposal request found", request)
}

func (h *Handler) handleDecideDisposal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Approved  bool   `json:"approved"`
		Signature string `json:"signature"`
		Notes     string `json:"notes"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	request, err := h.svc.DecideDisposal(r.Context(), mux.Vars(r)["id"], core.DecisionInput{
		Approved:  req.Approved,
		Signature: req.Signature,
		Notes:     req.Notes,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	verdict := "rejected"
	if req.Approved {
		verdict = "approved"
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("disposal request %s %s", request.DisposalID, verdict), request)
}

func (h *Handler) handleCancelDisposal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	request, err := h.svc.CancelDisposal(r.Context(), mux.Vars(r)["id"], req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("disposal request %s cancelled", request.DisposalID), request)
}

func (h *Handler) handleOverdueDisposals(w http.ResponseWriter, r *http.Request) {
	threshold, ok := h.parseThreshold(w, r)
	if !ok {
		return
	}
	requests, err := h.svc.OverdueDisposals(r.Context(), threshold)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d overdue disposal requests", len(requests)), requests)
}

func (h *Handler) handleDisposalReminders(w http.ResponseWriter, r *http.Request) {
	threshold, ok := h.parseThreshold(w, r)
	if !ok {
		return
	}
	sent, err := h.svc.SendDisposalReminders(r.Context(), threshold)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d reminders sent", sent), map[string]int{"sent": sent})
}

// --- employees ---

func (h *Handler) handleUpsertEmployee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Department string `json:"department"`
		Position   string `json:"position"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	employee, err := h.svc.UpsertEmployee(r.Context(), core.EmployeeInput{
		Name:       req.Name,
		Email:      req.Email,
		Department: req.Department,
		Position:   req.Position,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("employee %s saved", employee.EmployeeID), employee)
}

func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.svc.ListEmployees(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d employees", len(employees)), employees)
}

func (h *Handler) handleGetEmployee(w http.ResponseWriter, r *http.Request) {
	employee, err := h.svc.GetEmployee(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "employee found", employee)
}

// --- settings ---

func (h *Handler) handleListSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.svc.Settings(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("%d settings", len(settings)), settings)
}

func (h *Handler) handleGetSetting(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	value, err := h.svc.Setting(r.Context(), key)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, "setting found", map[string]string{"key": key, "value": value})
}

func (h *Handler) handlePutSetting(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	key := mux.Vars(r)["key"]
	if err := h.svc.SetSetting(r.Context(), key, req.Value); err != nil {
		h.writeError(w, err)
		return
	}
	writeOK(w, http.StatusOK, fmt.Sprintf("setting %s saved", key), map[string]string{"key": key, "value": req.Value})
}

// --- plumbing ---

type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Encoding an envelope of marshalable values cannot fail; the error is
	// a broken connection, which the server already surfaces in its logs.
	_ = json.NewEncoder(w).Encode(body)
}

func writeOK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// writeError maps domain errors onto status codes and passes their messages
// through unchanged: the error taxonomy is part of the API contract.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var (
		validation domain.ValidationError
		duplicate  domain.DuplicateError
		notFound   domain.NotFoundError
		conflict   domain.ConflictError
		dependency domain.DependencyError
		violation  domain.RuleViolationError
	)
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &duplicate), errors.As(err, &conflict), errors.As(err, &violation):
		status = http.StatusConflict
	case errors.As(err, &dependency):
		status = http.StatusBadGateway
	default:
		h.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, envelope{Success: false, Message: err.Error()})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, into any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *Handler) parseTime(w http.ResponseWriter, field, value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false,
			Message: fmt.Sprintf("invalid %s: expected RFC 3339 timestamp", field),
		})
		return time.Time{}, false
	}
	return t, true
}

// parseThreshold reads an optional ?threshold=72h style duration. Zero
// applies the workflow default.
func (h *Handler) parseThreshold(w http.ResponseWriter, r *http.Request) (time.Duration, bool) {
	raw := r.URL.Query().Get("threshold")
	if raw == "" {
		return 0, true
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{
			Success: false,
			Message: "invalid threshold: expected a duration such as 72h",
		})
		return 0, false
	}
	return d, true
}

// queryFilters collects the allowed columns from the query string into a
// filter record. The q parameter carries free text.
func queryFilters(r *http.Request, columns []string) (domain.Record, string) {
	filters := domain.Record{}
	query := r.URL.Query()
	for _, col := range columns {
		if v := query.Get(col); v != "" {
			filters[col] = v
		}
	}
	return filters, query.Get("q")
}

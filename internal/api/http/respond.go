package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"bora-alugar-backend/internal/logger"
	"bora-alugar-backend/internal/repository"
	"bora-alugar-backend/internal/service"
	"bora-alugar-backend/internal/storage"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	Fields    map[string]string `json:"fields,omitempty"`
	Plan      string            `json:"plan,omitempty"`
	Limit     *int              `json:"limit,omitempty"`
	UpgradeTo string            `json:"upgradeTo,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}

// decode reads a JSON body into dst and runs its validate tags
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return &service.ValidationError{Fields: map[string]string{"body": "is required"}}
		}
		return &service.ValidationError{Fields: map[string]string{"body": err.Error()}}
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = describe(fe)
	}
	return &service.ValidationError{Fields: fields}
}

// fieldPath drops the root struct name: "itemRequest.delivery.feeCents" -> "delivery.feeCents"
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + fe.Param()
	case "min", "gte":
		return "must be at least " + fe.Param()
	case "max", "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "url":
		return "must be a valid URL"
	}
	return "is invalid"
}

type errorMapping struct {
	err    error
	status int
	code   string
}

// errorMappings is checked in order; the first match wins
var errorMappings = []errorMapping{
	{service.ErrValidation, http.StatusBadRequest, "validation"},
	{storage.ErrInvalidKey, http.StatusBadRequest, "invalid_key"},
	{storage.ErrUnsupportedType, http.StatusBadRequest, "unsupported_type"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{service.ErrInvalidToken, http.StatusUnauthorized, "invalid_token"},
	{service.ErrPlanLimitReached, http.StatusPaymentRequired, "plan_limit_reached"},
	{service.ErrKYCRequired, http.StatusForbidden, "kyc_required"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{repository.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrUnavailable, http.StatusConflict, "unavailable"},
	{service.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{service.ErrAlreadyReviewed, http.StatusConflict, "already_reviewed"},
	{service.ErrEmailTaken, http.StatusConflict, "email_taken"},
	{service.ErrKYCAlreadyFiled, http.StatusConflict, "kyc_already_filed"},
	{repository.ErrConflict, http.StatusConflict, "conflict"},
	{service.ErrItemNotRentable, http.StatusUnprocessableEntity, "item_not_rentable"},
	{service.ErrSelfRental, http.StatusUnprocessableEntity, "self_rental"},
	{service.ErrContractRequired, http.StatusUnprocessableEntity, "contract_required"},
	{service.ErrDeliveryUnavailable, http.StatusUnprocessableEntity, "delivery_unavailable"},
	{service.ErrReviewNotAllowed, http.StatusUnprocessableEntity, "review_not_allowed"},
}

// writeError maps service and repository errors to a status and a stable code.
// Anything unrecognised is logged and reported as a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := errorResponse{Error: "internal server error", Code: "internal"}
	status := http.StatusInternalServerError
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			status, resp.Code, resp.Error = m.status, m.code, err.Error()
			break
		}
	}

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		resp.Error = "validation failed"
		resp.Fields = verr.Fields
	}
	var limitErr *service.PlanLimitError
	if errors.As(err, &limitErr) {
		resp.Plan = string(limitErr.Plan)
		resp.Limit = &limitErr.Limit
		resp.UpgradeTo = string(limitErr.UpgradeTo)
	}

	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "Unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, resp)
}

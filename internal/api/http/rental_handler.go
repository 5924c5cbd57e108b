package http

import (
	"net/http"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/service"
	"bora-alugar-backend/internal/utils"

	"github.com/gorilla/mux"
)

// transitionTargets maps the action in /rentals/{id}/{action} to the status it requests
var transitionTargets = map[string]domain.RentalStatus{
	"confirm":  domain.RentalStatusConfirmed,
	"ship":     domain.RentalStatusShipped,
	"deliver":  domain.RentalStatusDelivered,
	"activate": domain.RentalStatusActive,
	"complete": domain.RentalStatusCompleted,
	"cancel":   domain.RentalStatusCancelled,
}

type RentalHandler struct {
	rentalSvc service.RentalService
	reviewSvc service.ReviewService
}

func NewRentalHandler(rentalSvc service.RentalService, reviewSvc service.ReviewService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc, reviewSvc: reviewSvc}
}

func (h *RentalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req rentalRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	fields := map[string]string{}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		fields["startDate"] = err.Error()
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		fields["endDate"] = err.Error()
	}
	if len(fields) > 0 {
		writeError(w, r, &service.ValidationError{Fields: fields})
		return
	}

	method := domain.DeliveryMethod(req.DeliveryMethod)
	if method == "" {
		method = domain.DeliveryMethodPickup
	}
	rental, err := h.rentalSvc.RequestRental(r.Context(), userID(r), service.RentalRequest{
		ItemID:           req.ItemID,
		StartDate:        start,
		EndDate:          end,
		DeliveryMethod:   method,
		DeliveryAddress:  req.DeliveryAddress,
		ContractAccepted: req.ContractAccepted,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapRental(rental))
}

func (h *RentalHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rental, err := h.rentalSvc.GetRental(r.Context(), userID(r), isAdmin(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRental(rental))
}

// Transition handles confirm, ship, deliver, activate, complete and cancel.
// The body is optional; only cancel reads its reason.
func (h *RentalHandler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	to, ok := transitionTargets[mux.Vars(r)["action"]]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown rental action", Code: "not_found"})
		return
	}

	var req transitionRequest
	if r.ContentLength != 0 {
		if err := decode(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	rental, err := h.rentalSvc.Transition(r.Context(), userID(r), isAdmin(r), id, to, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapRental(rental))
}

func (h *RentalHandler) Review(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req reviewRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	review, err := h.reviewSvc.CreateReview(r.Context(), userID(r), id, req.Rating, req.Comment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapReview(review))
}

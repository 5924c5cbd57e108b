package http

import (
	"net/http"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/service"
)

// UserHandler serves the signed-in member's own resources under /me
type UserHandler struct {
	userSvc         service.UserService
	itemSvc         service.ItemService
	rentalSvc       service.RentalService
	reviewSvc       service.ReviewService
	notificationSvc service.NotificationService
	subscriptionSvc service.SubscriptionService
}

func NewUserHandler(
	userSvc service.UserService,
	itemSvc service.ItemService,
	rentalSvc service.RentalService,
	reviewSvc service.ReviewService,
	notificationSvc service.NotificationService,
	subscriptionSvc service.SubscriptionService,
) *UserHandler {
	return &UserHandler{
		userSvc:         userSvc,
		itemSvc:         itemSvc,
		rentalSvc:       rentalSvc,
		reviewSvc:       reviewSvc,
		notificationSvc: notificationSvc,
		subscriptionSvc: subscriptionSvc,
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user, err := h.userSvc.GetProfile(r.Context(), userID(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.userSvc.UpdateProfile(r.Context(), userID(r), service.ProfileUpdate{
		Name:      req.Name,
		Phone:     req.Phone,
		TaxID:     req.TaxID,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

func (h *UserHandler) UpdateLocation(w http.ResponseWriter, r *http.Request) {
	var req locationRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.userSvc.UpdateLocation(r.Context(), userID(r), domain.GeoPoint{Lat: *req.Lat, Lng: *req.Lng})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

// UpdatePushToken registers the device token. An empty token unregisters it.
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	var req pushTokenRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.userSvc.UpdatePushToken(r.Context(), userID(r), req.Token); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ListMyItems(w http.ResponseWriter, r *http.Request) {
	p, size := page(r)
	items, total, err := h.itemSvc.ListMyItems(r.Context(), userID(r), p, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[itemResponse]{Items: mapItems(items), Total: total, Page: p, PageSize: size})
}

func (h *UserHandler) ListMyRentals(w http.ResponseWriter, r *http.Request) {
	p, size := page(r)
	status := domain.RentalStatus(r.URL.Query().Get("status"))
	rentals, total, err := h.rentalSvc.ListRentals(r.Context(), userID(r), status, p, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[rentalResponse]{Items: mapRentals(rentals), Total: total, Page: p, PageSize: size})
}

func (h *UserHandler) ListMyLendings(w http.ResponseWriter, r *http.Request) {
	p, size := page(r)
	status := domain.RentalStatus(r.URL.Query().Get("status"))
	rentals, total, err := h.rentalSvc.ListLendings(r.Context(), userID(r), status, p, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[rentalResponse]{Items: mapRentals(rentals), Total: total, Page: p, PageSize: size})
}

func (h *UserHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	p, size := page(r)
	notes, total, err := h.notificationSvc.GetNotifications(r.Context(), userID(r), p, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[notificationResponse]{Items: mapNotifications(notes), Total: total, Page: p, PageSize: size})
}

func (h *UserHandler) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.notificationSvc.MarkAsRead(r.Context(), userID(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) ChangePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.subscriptionSvc.ChangePlan(r.Context(), userID(r), domain.Plan(req.Plan))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(user))
}

func (h *UserHandler) SubmitKYC(w http.ResponseWriter, r *http.Request) {
	var req kycRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	kyc, err := h.userSvc.SubmitKYC(r.Context(), userID(r), req.DocumentKey, req.SelfieKey)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapKYC(kyc))
}

// ListUserReviews is public: the reviews a member received
func (h *UserHandler) ListUserReviews(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, size := page(r)
	reviews, total, err := h.reviewSvc.ListUserReviews(r.Context(), id, p, size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listResponse[reviewResponse]{Items: mapReviews(reviews), Total: total, Page: p, PageSize: size})
}

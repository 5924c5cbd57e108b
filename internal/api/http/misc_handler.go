package http

import (
	"context"
	"net/http"
	"time"

	"bora-alugar-backend/internal/domain"
	"bora-alugar-backend/internal/realtime"
	"bora-alugar-backend/internal/service"
)

type CatalogHandler struct {
	subscriptionSvc service.SubscriptionService
	userSvc         service.UserService
}

func NewCatalogHandler(subscriptionSvc service.SubscriptionService, userSvc service.UserService) *CatalogHandler {
	return &CatalogHandler{subscriptionSvc: subscriptionSvc, userSvc: userSvc}
}

func (h *CatalogHandler) Plans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapPlans(h.subscriptionSvc.Plans()))
}

// ReverseGeocode never fails on provider errors; it answers "unknown location"
func (h *CatalogHandler) ReverseGeocode(w http.ResponseWriter, r *http.Request) {
	point, err := queryPoint(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if point == nil {
		writeError(w, r, &service.ValidationError{Fields: map[string]string{"location": "lat and lng are required"}})
		return
	}
	place, err := h.userSvc.ReverseGeocode(r.Context(), domain.GeoPoint{Lat: point.Lat, Lng: point.Lng})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPlace(place))
}

type UploadHandler struct {
	uploadSvc service.UploadService
}

func NewUploadHandler(uploadSvc service.UploadService) *UploadHandler {
	return &UploadHandler{uploadSvc: uploadSvc}
}

// Request hands out an upload URL for a KYC document, selfie or avatar
func (h *UploadHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	ticket, err := h.uploadSvc.RequestUpload(r.Context(), userID(r), req.Purpose, req.ContentType)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadResponse{Key: ticket.Key, UploadURL: ticket.UploadURL, ExpiresAt: ticket.ExpiresAt})
}

func (h *UploadHandler) URL(w http.ResponseWriter, r *http.Request) {
	url, err := h.uploadSvc.DownloadURL(r.Context(), userID(r), isAdmin(r), r.URL.Query().Get("key"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, urlResponse{URL: url})
}

type RealtimeHandler struct {
	hub *realtime.Hub
}

func NewRealtimeHandler(hub *realtime.Hub) *RealtimeHandler {
	return &RealtimeHandler{hub: hub}
}

func (h *RealtimeHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	h.hub.ServeWS(w, r, userID(r))
}

// HealthCheck is one dependency probe, such as a database ping
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[name] = "ok"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "degraded"
	}
	writeJSON(w, status, map[string]any{"status": overall, "checks": results})
}

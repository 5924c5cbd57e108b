package http

import (
	"net/http"

	"bora-alugar-backend/internal/metrics"

	"github.com/gorilla/mux"
	"github.com/justinas/alice"
)

// Handlers bundles everything the router mounts. Storage is nil when objects
// live in S3 and clients never talk to this server for file bytes.
type Handlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Item     *ItemHandler
	Rental   *RentalHandler
	Message  *MessageHandler
	Admin    *AdminHandler
	Catalog  *CatalogHandler
	Upload   *UploadHandler
	Realtime *RealtimeHandler
	Health   *HealthHandler
	Storage  *StorageHandler
}

// NewRouter names every route so the authenticator can look up its security level
func NewRouter(h Handlers, auth *Authenticator, limiter *RateLimiter) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "route not found", Code: "not_found"})
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed", Code: "method_not_allowed"})
	})

	r.Use(metrics.Middleware, auth.Middleware)
	if limiter != nil {
		r.Use(limiter.Middleware)
	}

	r.HandleFunc("/healthz", h.Health.Health).Methods(http.MethodGet).Name("health")
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet).Name("metrics")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Auth
	api.HandleFunc("/auth/signup", h.Auth.Signup).Methods(http.MethodPost).Name("auth.signup")
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost).Name("auth.login")
	api.HandleFunc("/auth/refresh", h.Auth.Refresh).Methods(http.MethodPost).Name("auth.refresh")
	api.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost).Name("auth.logout")

	// Me
	api.HandleFunc("/me", h.User.GetMe).Methods(http.MethodGet).Name("me.get")
	api.HandleFunc("/me", h.User.UpdateMe).Methods(http.MethodPut).Name("me.update")
	api.HandleFunc("/me/location", h.User.UpdateLocation).Methods(http.MethodPut).Name("me.location")
	api.HandleFunc("/me/push-token", h.User.UpdatePushToken).Methods(http.MethodPut).Name("me.push_token")
	api.HandleFunc("/me/items", h.User.ListMyItems).Methods(http.MethodGet).Name("me.items")
	api.HandleFunc("/me/rentals", h.User.ListMyRentals).Methods(http.MethodGet).Name("me.rentals")
	api.HandleFunc("/me/lendings", h.User.ListMyLendings).Methods(http.MethodGet).Name("me.lendings")
	api.HandleFunc("/me/plan", h.User.ChangePlan).Methods(http.MethodPost).Name("me.plan")
	api.HandleFunc("/me/kyc", h.User.SubmitKYC).Methods(http.MethodPost).Name("me.kyc")
	api.HandleFunc("/me/conversations", h.Message.Conversations).Methods(http.MethodGet).Name("me.conversations")
	api.HandleFunc("/me/notifications", h.User.ListNotifications).Methods(http.MethodGet).Name("notifications.list")
	api.HandleFunc("/me/notifications/{id}/read", h.User.MarkNotificationRead).Methods(http.MethodPost).Name("notifications.read")

	// Items
	api.HandleFunc("/items", h.Item.Search).Methods(http.MethodGet).Name("items.search")
	api.HandleFunc("/items", h.Item.Create).Methods(http.MethodPost).Name("items.create")
	api.HandleFunc("/items/{id}", h.Item.Get).Methods(http.MethodGet).Name("items.get")
	api.HandleFunc("/items/{id}", h.Item.Update).Methods(http.MethodPut).Name("items.update")
	api.HandleFunc("/items/{id}", h.Item.Delete).Methods(http.MethodDelete).Name("items.delete")
	api.HandleFunc("/items/{id}/availability", h.Item.Availability).Methods(http.MethodGet).Name("items.availability")
	api.HandleFunc("/items/{id}/reviews", h.Item.Reviews).Methods(http.MethodGet).Name("items.reviews")
	api.HandleFunc("/items/{id}/images", h.Item.RequestImage).Methods(http.MethodPost).Name("items.images")
	api.HandleFunc("/items/{id}/images/{imageId}/confirm", h.Item.ConfirmImage).Methods(http.MethodPost).Name("items.images.confirm")

	// Rentals
	api.HandleFunc("/rentals", h.Rental.Create).Methods(http.MethodPost).Name("rentals.create")
	api.HandleFunc("/rentals/{id}", h.Rental.Get).Methods(http.MethodGet).Name("rentals.get")
	api.HandleFunc("/rentals/{id}/reviews", h.Rental.Review).Methods(http.MethodPost).Name("rentals.review")
	api.HandleFunc("/rentals/{id}/{action:confirm|ship|deliver|activate|complete|cancel}", h.Rental.Transition).
		Methods(http.MethodPost).Name("rentals.transition")
	api.HandleFunc("/users/{id}/reviews", h.User.ListUserReviews).Methods(http.MethodGet).Name("users.reviews")

	// Messages
	api.HandleFunc("/messages", h.Message.Send).Methods(http.MethodPost).Name("messages.send")
	api.HandleFunc("/messages/{userId}", h.Message.Conversation).Methods(http.MethodGet).Name("messages.conversation")
	api.HandleFunc("/messages/{id}/read", h.Message.MarkAsRead).Methods(http.MethodPost).Name("messages.read")

	// Plans, geocoding, uploads, realtime
	api.HandleFunc("/plans", h.Catalog.Plans).Methods(http.MethodGet).Name("plans.list")
	api.HandleFunc("/geo/reverse", h.Catalog.ReverseGeocode).Methods(http.MethodGet).Name("geo.reverse")
	api.HandleFunc("/uploads", h.Upload.Request).Methods(http.MethodPost).Name("uploads.request")
	api.HandleFunc("/uploads/url", h.Upload.URL).Methods(http.MethodGet).Name("uploads.url")
	api.HandleFunc("/realtime", h.Realtime.Subscribe).Methods(http.MethodGet).Name("realtime.subscribe")

	if h.Storage != nil {
		api.HandleFunc("/storage/upload", h.Storage.Upload).Methods(http.MethodPut).Name("storage.upload")
		api.HandleFunc("/storage/download", h.Storage.Download).Methods(http.MethodGet).Name("storage.download")
	}

	// Admin
	admin := api.PathPrefix("/admin").Subrouter()
	admin.HandleFunc("/kyc", h.Admin.ListKYC).Methods(http.MethodGet).Name("admin.kyc.list")
	admin.HandleFunc("/kyc/{id}/approve", h.Admin.ApproveKYC).Methods(http.MethodPost).Name("admin.kyc.approve")
	admin.HandleFunc("/kyc/{id}/reject", h.Admin.RejectKYC).Methods(http.MethodPost).Name("admin.kyc.reject")
	admin.HandleFunc("/users", h.Admin.ListUsers).Methods(http.MethodGet).Name("admin.users.list")
	admin.HandleFunc("/users/{id}/plan", h.Admin.SetUserPlan).Methods(http.MethodPut).Name("admin.users.plan")
	admin.HandleFunc("/items/{id}", h.Admin.DeleteItem).Methods(http.MethodDelete).Name("admin.items.delete")

	return alice.New(recoverPanic, logRequests, secureHeaders).Then(r)
}

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}

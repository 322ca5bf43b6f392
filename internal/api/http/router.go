package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/security"
	"rentwear-backend/internal/storage"
)

// Handlers groups the REST handlers mounted by NewRouter.
type Handlers struct {
	Health        *HealthHandler
	Rentals       *RentalHandler
	Returns       *ReturnHandler
	Notifications *NotificationHandler
	// MockStorage is set only when objects are kept on local disk.
	MockStorage *storage.MockStorageService
}

// NewRouter builds the API. Route names key into config.EndpointSecurityConfig.
func NewRouter(resolver security.IdentityResolver, h Handlers) *mux.Router {
	router := mux.NewRouter()
	router.NotFoundHandler = RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, domain.NotFound("Route not found"))
	}))
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, envelope{Success: false, Message: "Method not allowed"})
	})

	router.Use(RequestID, AccessLog, Recoverer, NewAuthMiddleware(resolver).Handler)

	router.HandleFunc("/healthz", h.Health.Healthz).Methods(http.MethodGet).Name("Healthz")

	api := router.PathPrefix("/api").Subrouter()

	// Fixed paths are registered before their {id} siblings.
	rentals := api.PathPrefix("/rentals").Subrouter()
	rentals.HandleFunc("", h.Rentals.CreateRental).Methods(http.MethodPost).Name("CreateRental")
	rentals.HandleFunc("", h.Rentals.ListRentals).Methods(http.MethodGet).Name("ListRentals")
	rentals.HandleFunc("/active", h.Rentals.ListActiveRentals).Methods(http.MethodGet).Name("ListActiveRentals")
	rentals.HandleFunc("/completed", h.Rentals.ListCompletedRentals).Methods(http.MethodGet).Name("ListCompletedRentals")
	rentals.HandleFunc("/{rentalId}", h.Rentals.GetRental).Methods(http.MethodGet).Name("GetRental")
	rentals.HandleFunc("/{rentalId}/cancel", h.Rentals.CancelRental).Methods(http.MethodPut).Name("CancelRental")

	returns := api.PathPrefix("/returns").Subrouter()
	returns.HandleFunc("/schedule", h.Returns.ScheduleReturn).Methods(http.MethodPost).Name("ScheduleReturn")
	returns.HandleFunc("/user", h.Returns.ListUserReturns).Methods(http.MethodGet).Name("ListUserReturns")
	returns.HandleFunc("/pending", h.Returns.ListPendingReturns).Methods(http.MethodGet).Name("ListPendingReturns")
	returns.HandleFunc("/completed", h.Returns.ListCompletedReturns).Methods(http.MethodGet).Name("ListCompletedReturns")
	returns.HandleFunc("/{returnId}", h.Returns.GetReturn).Methods(http.MethodGet).Name("GetReturn")
	returns.HandleFunc("/{returnId}/assign", h.Returns.AssignReturn).Methods(http.MethodPut).Name("AssignReturn")
	returns.HandleFunc("/{returnId}/status", h.Returns.UpdateReturnStatus).Methods(http.MethodPut).Name("UpdateReturnStatus")
	returns.HandleFunc("/{returnId}/inspection", h.Returns.SubmitInspection).Methods(http.MethodPost).Name("SubmitInspection")
	returns.HandleFunc("/{returnId}/complete", h.Returns.CompleteReturn).Methods(http.MethodPut).Name("CompleteReturn")

	notes := api.PathPrefix("/notifications").Subrouter()
	notes.HandleFunc("", h.Notifications.ListNotifications).Methods(http.MethodGet).Name("ListNotifications")
	notes.HandleFunc("/{id:[0-9]+}/read", h.Notifications.MarkNotificationRead).Methods(http.MethodPut).Name("MarkNotificationRead")

	if h.MockStorage != nil {
		RegisterMockStorageRoutes(router, h.MockStorage)
	}
	return router
}

package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/service"
	"rentwear-backend/internal/utils"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

type createRentalBody struct {
	ProductID       string `json:"productId"`
	StartDate       string `json:"startDate"`
	EndDate         string `json:"endDate"`
	TotalDays       int32  `json:"totalDays"`
	RentalPrice     int64  `json:"rentalPrice"`
	SecurityDeposit int64  `json:"securityDeposit"`
	TotalAmount     int64  `json:"totalAmount"`
	PaymentID       string `json:"paymentId"`
	OrderID         string `json:"orderId"`
	Signature       string `json:"signature"`
}

func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	var body createRentalBody
	if err := decodeJSON(r, &body); err != nil {
		respondError(w, r, err)
		return
	}
	start, err := utils.ParseDate(body.StartDate)
	if err != nil {
		respondError(w, r, domain.Validation("startDate: %v", err))
		return
	}
	end, err := utils.ParseDate(body.EndDate)
	if err != nil {
		respondError(w, r, domain.Validation("endDate: %v", err))
		return
	}

	rental, err := h.rentalSvc.CreateRental(r.Context(), caller.ID, service.CreateRentalRequest{
		ProductID:       body.ProductID,
		StartDate:       start,
		EndDate:         end,
		TotalDays:       body.TotalDays,
		RentalPrice:     body.RentalPrice,
		SecurityDeposit: body.SecurityDeposit,
		TotalAmount:     body.TotalAmount,
		PaymentID:       body.PaymentID,
		OrderID:         body.OrderID,
		Signature:       body.Signature,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, "Rental created successfully", rental)
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.RentalView(r.URL.Query().Get("view")))
}

func (h *RentalHandler) ListActiveRentals(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.RentalViewActive)
}

func (h *RentalHandler) ListCompletedRentals(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.RentalViewCompleted)
}

func (h *RentalHandler) list(w http.ResponseWriter, r *http.Request, view domain.RentalView) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	rentals, err := h.rentalSvc.ListRentalsForUser(r.Context(), caller.ID, view)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondList(w, rentals)
}

func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	rental, err := h.rentalSvc.GetRental(r.Context(), caller.ID, mux.Vars(r)["rentalId"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "", rental)
}

func (h *RentalHandler) CancelRental(w http.ResponseWriter, r *http.Request) {
	caller, err := IdentityFromContext(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	rental, err := h.rentalSvc.CancelRental(r.Context(), caller.ID, mux.Vars(r)["rentalId"])
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, "Rental cancelled successfully", rental)
}

package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type RentalStatus string

const (
	RentalStatusActive          RentalStatus = "active"
	RentalStatusReturnScheduled RentalStatus = "return_scheduled"
	RentalStatusReturned        RentalStatus = "returned"
	RentalStatusCompleted       RentalStatus = "completed"
	RentalStatusCancelled       RentalStatus = "cancelled"
)

// rentalTransitions lists every legal status edge. Anything missing is rejected.
var rentalTransitions = map[RentalStatus][]RentalStatus{
	RentalStatusActive:          {RentalStatusCancelled, RentalStatusReturnScheduled},
	RentalStatusReturnScheduled: {RentalStatusReturned},
	RentalStatusReturned:        {RentalStatusCompleted},
}

func (s RentalStatus) Valid() bool {
	switch s {
	case RentalStatusActive, RentalStatusReturnScheduled, RentalStatusReturned,
		RentalStatusCompleted, RentalStatusCancelled:
		return true
	}
	return false
}

func (s RentalStatus) Terminal() bool {
	return s == RentalStatusCompleted || s == RentalStatusCancelled
}

// CanTransition reports whether from -> to is a legal edge.
func (s RentalStatus) CanTransition(to RentalStatus) bool {
	for _, next := range rentalTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// RentalView selects a filtered listing of a customer's rentals.
type RentalView string

const (
	RentalViewAll       RentalView = ""
	RentalViewActive    RentalView = "active"
	RentalViewCompleted RentalView = "completed"
)

// Statuses returns the statuses included in the view; nil means all.
func (v RentalView) Statuses() []RentalStatus {
	switch v {
	case RentalViewActive:
		return []RentalStatus{RentalStatusActive, RentalStatusReturnScheduled}
	case RentalViewCompleted:
		return []RentalStatus{RentalStatusCompleted, RentalStatusReturned}
	}
	return nil
}

func (v RentalView) Valid() bool {
	return v == RentalViewAll || v == RentalViewActive || v == RentalViewCompleted
}

type Rental struct {
	ID        int64     `json:"id"`
	RentalID  string    `json:"rentalId"`
	UserID    string    `json:"user"`
	ProductID string    `json:"productId"`
	Product   *Product  `json:"product,omitempty"` // Populated on reads
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	TotalDays int32     `json:"totalDays"`
	// Amounts are in minor currency units and derived from the product at creation time.
	RentalPrice     int64        `json:"rentalPrice"`
	SecurityDeposit int64        `json:"securityDeposit"`
	TotalAmount     int64        `json:"totalAmount"`
	PaymentID       string       `json:"paymentId"`
	PaymentOrderID  string       `json:"paymentOrderId,omitempty"`
	Status          RentalStatus `json:"status"`
	Version         int32        `json:"-"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

// TransitionTo moves the rental to the next status if the edge is legal.
func (r *Rental) TransitionTo(next RentalStatus) error {
	if !r.Status.CanTransition(next) {
		return InvalidState("rental %s cannot move from %s to %s", r.RentalID, r.Status, next)
	}
	r.Status = next
	return nil
}

// OwnedBy reports whether userID is the customer who placed the rental.
func (r *Rental) OwnedBy(userID string) bool {
	return userID != "" && r.UserID == userID
}

// NewRentalID generates the human readable rental reference, e.g. RENT-1A2B3C4D.
func NewRentalID() string {
	return "RENT-" + shortCode()
}

func shortCode() string {
	return strings.ToUpper(uuid.NewString()[:8])
}

// RentalStatusChange asks the rental side to move a rental as a consequence of a
// return transition.
type RentalStatusChange struct {
	RentalID int64
	To       RentalStatus
	ReturnID string
}

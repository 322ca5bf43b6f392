package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/utils"
)

// maxIDAttempts bounds regeneration of external ids on collision.
const maxIDAttempts = 3

// RentalPolicy holds the configurable rules applied when creating rentals.
type RentalPolicy struct {
	MinDays          int32
	MaxDays          int32
	RequireSignature bool
}

type rentalService struct {
	rentalRepo  repository.RentalRepository
	productRepo repository.ProductRepository
	noteSvc     NotificationService
	verifier    PaymentVerifier
	policy      RentalPolicy
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	productRepo repository.ProductRepository,
	noteSvc NotificationService,
	verifier PaymentVerifier,
	policy RentalPolicy,
) RentalService {
	return &rentalService{
		rentalRepo:  rentalRepo,
		productRepo: productRepo,
		noteSvc:     noteSvc,
		verifier:    verifier,
		policy:      policy,
	}
}

func (s *rentalService) CreateRental(ctx context.Context, customerID string, req CreateRentalRequest) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CreateRental", "customerID", customerID, "productID", req.ProductID)

	if strings.TrimSpace(req.ProductID) == "" {
		return nil, domain.Validation("productId is required")
	}
	if strings.TrimSpace(req.PaymentID) == "" {
		return nil, domain.Validation("paymentId is required")
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err, "productID", req.ProductID)
		return nil, err
	}
	if !product.Available {
		return nil, domain.InvalidState("product %s is not available for rent", product.ID)
	}

	quote, err := utils.QuoteRental(req.StartDate, req.EndDate, product, s.policy.MinDays, s.policy.MaxDays)
	if err != nil {
		return nil, err
	}
	if err := quote.CheckClaimed(req.TotalDays, req.RentalPrice, req.SecurityDeposit, req.TotalAmount); err != nil {
		return nil, err
	}

	if err := s.verifyPayment(req); err != nil {
		return nil, err
	}

	rental := &domain.Rental{
		UserID:          customerID,
		ProductID:       product.ID,
		StartDate:       utils.DateOf(req.StartDate),
		EndDate:         utils.DateOf(req.EndDate),
		TotalDays:       quote.TotalDays,
		RentalPrice:     quote.RentalPrice,
		SecurityDeposit: quote.SecurityDeposit,
		TotalAmount:     quote.TotalAmount,
		PaymentID:       req.PaymentID,
		PaymentOrderID:  req.OrderID,
		Status:          domain.RentalStatusActive,
	}

	for attempt := 1; ; attempt++ {
		rental.RentalID = domain.NewRentalID()
		err = s.rentalRepo.Create(ctx, rental)
		if !errors.Is(err, repository.ErrIDCollision) || attempt == maxIDAttempts {
			break
		}
		logger.Warn("Rental id collision, regenerating", "rentalID", rental.RentalID, "attempt", attempt)
	}
	if err != nil {
		logger.ExitMethodWithError("rentalService.CreateRental", err)
		return nil, fmt.Errorf("failed to create rental: %w", err)
	}
	rental.Product = product

	s.noteSvc.Notify(ctx, customerID, "Rental confirmed",
		fmt.Sprintf("Your rental of %s from %s to %s is confirmed.", product.Name,
			rental.StartDate.Format("Jan 2"), rental.EndDate.Format("Jan 2, 2006")),
		map[string]string{"type": "RENTAL_CREATED", "rentalId": rental.RentalID})

	logger.ExitMethod("rentalService.CreateRental", "rentalID", rental.RentalID)
	return rental, nil
}

// verifyPayment checks the gateway signature when one is sent, and insists on it
// when the policy requires it.
func (s *rentalService) verifyPayment(req CreateRentalRequest) error {
	if req.Signature == "" && !s.policy.RequireSignature {
		return nil
	}
	if req.OrderID == "" || req.Signature == "" {
		return domain.Validation("orderId and signature are required for payment verification")
	}
	if s.verifier == nil || !s.verifier.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		return domain.Validation("payment verification failed")
	}
	return nil
}

func (s *rentalService) GetRental(ctx context.Context, callerID, rentalID string) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByRentalID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !rental.OwnedBy(callerID) {
		return nil, domain.Forbidden("unauthorized")
	}
	return rental, nil
}

func (s *rentalService) ListRentalsForUser(ctx context.Context, callerID string, view domain.RentalView) ([]domain.Rental, error) {
	if !view.Valid() {
		return nil, domain.Validation("invalid view %q", view)
	}
	return s.rentalRepo.ListByUser(ctx, callerID, view)
}

func (s *rentalService) CancelRental(ctx context.Context, callerID, rentalID string) (*domain.Rental, error) {
	logger.EnterMethod("rentalService.CancelRental", "callerID", callerID, "rentalID", rentalID)

	rental, err := s.rentalRepo.GetByRentalID(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if !rental.OwnedBy(callerID) {
		return nil, domain.Forbidden("unauthorized")
	}
	if rental.Status != domain.RentalStatusActive {
		return nil, domain.InvalidState("rental cannot be cancelled")
	}
	if err := rental.TransitionTo(domain.RentalStatusCancelled); err != nil {
		return nil, err
	}
	if err := s.rentalRepo.UpdateStatus(ctx, rental); err != nil {
		logger.ExitMethodWithError("rentalService.CancelRental", err)
		return nil, err
	}

	s.noteSvc.Notify(ctx, callerID, "Rental cancelled",
		fmt.Sprintf("Your rental %s has been cancelled.", rental.RentalID),
		map[string]string{"type": "RENTAL_CANCELLED", "rentalId": rental.RentalID})

	logger.ExitMethod("rentalService.CancelRental", "rentalID", rental.RentalID)
	return rental, nil
}

func (s *rentalService) ApplyStatusChange(ctx context.Context, change domain.RentalStatusChange) (*domain.Rental, error) {
	rental, err := s.rentalRepo.GetByID(ctx, change.RentalID)
	if err != nil {
		return nil, fmt.Errorf("rental for return %s: %w", change.ReturnID, err)
	}
	if err := rental.TransitionTo(change.To); err != nil {
		return nil, err
	}
	if err := s.rentalRepo.UpdateStatus(ctx, rental); err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Rental status changed by return", "rentalID", rental.RentalID, "returnID", change.ReturnID, "status", rental.Status)
	return rental, nil
}

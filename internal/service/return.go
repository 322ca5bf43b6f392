package service

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/repository"
	"rentwear-backend/internal/storage"
	"rentwear-backend/internal/utils"
)

const returnImagesFolder = "returns"

type returnService struct {
	tx         repository.Transactor
	returnRepo repository.ReturnRepository
	rentalRepo repository.RentalRepository
	rentalSvc  RentalService
	noteSvc    NotificationService
	uploader   ImageUploader
	maxImages  int
	now        func() time.Time
}

func NewReturnService(
	tx repository.Transactor,
	returnRepo repository.ReturnRepository,
	rentalRepo repository.RentalRepository,
	rentalSvc RentalService,
	noteSvc NotificationService,
	uploader ImageUploader,
	maxImages int,
) ReturnService {
	return &returnService{
		tx:         tx,
		returnRepo: returnRepo,
		rentalRepo: rentalRepo,
		rentalSvc:  rentalSvc,
		noteSvc:    noteSvc,
		uploader:   uploader,
		maxImages:  maxImages,
		now:        time.Now,
	}
}

func (s *returnService) ScheduleReturn(ctx context.Context, customerID string, req ScheduleReturnRequest) (*domain.Return, error) {
	logger.EnterMethod("returnService.ScheduleReturn", "customerID", customerID, "rentalID", req.RentalID)

	slot, err := domain.ParseTimeSlot(req.TimeSlot)
	if err != nil {
		return nil, err
	}
	if req.PickupDate.IsZero() {
		return nil, domain.Validation("pickupDate is required")
	}
	pickup := utils.DateOf(req.PickupDate)
	if pickup.Before(utils.DateOf(s.now().UTC())) {
		return nil, domain.Validation("pickupDate cannot be in the past")
	}

	var ret *domain.Return
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		rental, err := s.rentalRepo.GetByRentalID(ctx, req.RentalID)
		if err != nil {
			return err
		}
		if !rental.OwnedBy(customerID) {
			return domain.Forbidden("unauthorized")
		}

		existing, err := s.returnRepo.GetByRentalID(ctx, rental.ID)
		if err == nil && existing != nil {
			return domain.Conflict("return already scheduled for this rental")
		}
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		if !rental.Status.CanTransition(domain.RentalStatusReturnScheduled) {
			return domain.InvalidState("rental %s is %s and cannot be returned", rental.RentalID, rental.Status)
		}

		ret = &domain.Return{
			RentalID:        rental.ID,
			UserID:          rental.UserID,
			ProductID:       rental.ProductID,
			PickupDate:      pickup,
			TimeSlot:        slot,
			AdditionalNotes: strings.TrimSpace(req.AdditionalNotes),
			Status:          domain.ReturnStatusScheduled,
		}
		if err := s.createWithFreshID(ctx, ret); err != nil {
			return err
		}

		updated, err := s.rentalSvc.ApplyStatusChange(ctx, *ret.Scheduled())
		if err != nil {
			return err
		}
		ret.Rental = updated
		ret.Product = updated.Product
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("returnService.ScheduleReturn", err, "rentalID", req.RentalID)
		return nil, err
	}

	s.noteSvc.Notify(ctx, customerID, "Return scheduled",
		fmt.Sprintf("Pickup for your rental %s is scheduled on %s between %s.", req.RentalID, pickup.Format("Jan 2, 2006"), slot),
		map[string]string{"type": "RETURN_SCHEDULED", "returnId": ret.ReturnID, "rentalId": req.RentalID})

	logger.ExitMethod("returnService.ScheduleReturn", "returnID", ret.ReturnID)
	return ret, nil
}

func (s *returnService) createWithFreshID(ctx context.Context, ret *domain.Return) error {
	var err error
	for attempt := 1; attempt <= maxIDAttempts; attempt++ {
		ret.ReturnID = domain.NewReturnID()
		if err = s.returnRepo.Create(ctx, ret); !errors.Is(err, repository.ErrIDCollision) {
			return err
		}
		logger.Warn("Return id collision, regenerating", "returnID", ret.ReturnID, "attempt", attempt)
	}
	return fmt.Errorf("failed to create return: %w", err)
}

func (s *returnService) GetReturn(ctx context.Context, callerID string, role domain.Role, returnID string) (*domain.Return, error) {
	ret, err := s.returnRepo.GetByReturnID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	switch {
	case ret.UserID == callerID:
	case ret.AssignedTo(callerID):
	// Unclaimed pickups are visible to every delivery partner, as in the pending list.
	case role == domain.RoleDeliveryPartner && ret.DeliveryPartnerID == nil && ret.Status == domain.ReturnStatusScheduled:
	default:
		return nil, domain.Forbidden("unauthorized")
	}
	return ret, nil
}

func (s *returnService) ListUserReturns(ctx context.Context, customerID string) ([]domain.Return, error) {
	return s.returnRepo.ListByUser(ctx, customerID)
}

func (s *returnService) ListPendingReturns(ctx context.Context, partnerID string) ([]domain.Return, error) {
	return s.returnRepo.ListPending(ctx, partnerID)
}

func (s *returnService) ListCompletedReturns(ctx context.Context, partnerID string) ([]domain.Return, error) {
	return s.returnRepo.ListCompletedByPartner(ctx, partnerID)
}

func (s *returnService) AssignReturn(ctx context.Context, partnerID, returnID string) (*domain.Return, error) {
	logger.EnterMethod("returnService.AssignReturn", "partnerID", partnerID, "returnID", returnID)
	if err := s.returnRepo.Assign(ctx, returnID, partnerID); err != nil {
		logger.ExitMethodWithError("returnService.AssignReturn", err, "returnID", returnID)
		return nil, err
	}
	ret, err := s.returnRepo.GetByReturnID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	logger.ExitMethod("returnService.AssignReturn", "returnID", returnID)
	return ret, nil
}

func (s *returnService) UpdateReturnStatus(ctx context.Context, partnerID, returnID, status string) (*domain.Return, error) {
	next, err := domain.ParseReturnStatus(status)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, partnerID, returnID, next, nil)
}

func (s *returnService) CompleteReturn(ctx context.Context, partnerID, returnID string) (*domain.Return, error) {
	return s.transition(ctx, partnerID, returnID, domain.ReturnStatusCompleted, nil)
}

func (s *returnService) SubmitInspection(ctx context.Context, partnerID, returnID string, req InspectionRequest) (*domain.Return, error) {
	logger.EnterMethod("returnService.SubmitInspection", "partnerID", partnerID, "returnID", returnID, "images", len(req.Images))

	ret, err := s.returnRepo.GetByReturnID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	if !ret.AssignedTo(partnerID) {
		return nil, domain.Forbidden("unauthorized")
	}

	condition, err := domain.ParseCondition(req.Condition)
	if err != nil {
		return nil, err
	}
	issues, err := domain.ParseQualityIssues(req.QualityIssues)
	if err != nil {
		return nil, err
	}
	if s.maxImages > 0 && len(req.Images) > s.maxImages {
		return nil, domain.Validation("at most %d images are allowed", s.maxImages)
	}
	if !ret.Status.CanTransition(domain.ReturnStatusInspected) {
		return nil, domain.InvalidState("return %s is %s and cannot be inspected", ret.ReturnID, ret.Status)
	}

	// Uploaded objects are not removed if a later step fails.
	folder := path.Join(returnImagesFolder, ret.ReturnID)
	images := make([]string, 0, len(req.Images))
	for i, img := range req.Images {
		url, err := s.uploader.UploadImage(ctx, folder, img)
		if errors.Is(err, storage.ErrInvalidImage) || errors.Is(err, storage.ErrUnsupportedImage) {
			return nil, domain.Validation("inspection image %d: %v", i+1, err)
		}
		if err != nil {
			logger.ExitMethodWithError("returnService.SubmitInspection", err, "image", i)
			return nil, domain.Upstream(err, "failed to upload inspection image %d", i+1)
		}
		images = append(images, url)
	}

	inspection := &domain.Inspection{
		Condition:     condition,
		QualityIssues: issues,
		Comments:      strings.TrimSpace(req.Comments),
		Images:        images,
		InspectedAt:   s.now().UTC(),
	}
	ret, err = s.transition(ctx, partnerID, returnID, domain.ReturnStatusInspected, inspection)
	if err != nil {
		logger.ExitMethodWithError("returnService.SubmitInspection", err)
		return nil, err
	}
	logger.ExitMethod("returnService.SubmitInspection", "returnID", returnID, "condition", condition)
	return ret, nil
}

// transition moves a return assigned to partnerID to next, optionally recording an
// inspection first, and applies the rental cascade in the same transaction.
func (s *returnService) transition(ctx context.Context, partnerID, returnID string, next domain.ReturnStatus, inspection *domain.Inspection) (*domain.Return, error) {
	var ret *domain.Return
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.returnRepo.GetByReturnID(ctx, returnID)
		if err != nil {
			return err
		}
		if !ret.AssignedTo(partnerID) {
			return domain.Forbidden("unauthorized")
		}
		if inspection != nil {
			ret.Inspection = inspection
		}

		change, err := ret.TransitionTo(next)
		if err != nil {
			return err
		}
		if err := s.returnRepo.Update(ctx, ret); err != nil {
			return err
		}
		if change == nil {
			return nil
		}
		rental, err := s.rentalSvc.ApplyStatusChange(ctx, *change)
		if err != nil {
			return err
		}
		ret.Rental = rental
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyTransition(ctx, ret)
	return ret, nil
}

func (s *returnService) notifyTransition(ctx context.Context, ret *domain.Return) {
	var title, message string
	switch ret.Status {
	case domain.ReturnStatusPickedUp:
		title, message = "Return picked up", "Your rented item has been picked up and is on its way for inspection."
	case domain.ReturnStatusInspected:
		title, message = "Return inspected", fmt.Sprintf("Your returned item was inspected. Condition: %s.", ret.Inspection.Condition)
	case domain.ReturnStatusCompleted:
		title, message = "Return completed", "Your return is complete. Thank you for renting with us."
	default:
		return
	}
	s.noteSvc.Notify(ctx, ret.UserID, title, message,
		map[string]string{"type": "RETURN_" + strings.ToUpper(string(ret.Status)), "returnId": ret.ReturnID})
}

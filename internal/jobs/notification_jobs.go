package jobs

import (
	"context"
	"fmt"
	"time"

	"rentwear-backend/internal/domain"
	"rentwear-backend/internal/logger"
	"rentwear-backend/internal/utils"
)

// tomorrow is the UTC calendar day after now.
func (jr *JobRunner) tomorrow() time.Time {
	return utils.DateOf(jr.now().UTC()).AddDate(0, 0, 1)
}

// SendPickupReminders notifies customers and assigned delivery partners of returns
// scheduled for pickup tomorrow.
func (jr *JobRunner) SendPickupReminders() error {
	return jr.runWithRecovery("SendPickupReminders", jr.sendPickupReminders)
}

func (jr *JobRunner) sendPickupReminders(ctx context.Context) (int, error) {
	day := jr.tomorrow()
	returns, err := jr.returns.ListScheduledOn(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to list returns scheduled on %s: %w", day.Format(time.DateOnly), err)
	}

	count := 0
	for _, ret := range returns {
		item := "your rented item"
		if ret.Product != nil && ret.Product.Name != "" {
			item = ret.Product.Name
		}
		jr.services.Notification.Notify(ctx, ret.UserID, "Pickup tomorrow",
			fmt.Sprintf("We will collect %s tomorrow between %s (return %s). Please keep it packed and ready.", item, ret.TimeSlot, ret.ReturnID),
			map[string]string{"type": "PICKUP_REMINDER", "returnId": ret.ReturnID})
		count++

		if ret.DeliveryPartnerID == nil {
			logger.Warn("Return scheduled for tomorrow has no delivery partner", "returnID", ret.ReturnID)
			continue
		}
		jr.services.Notification.Notify(ctx, *ret.DeliveryPartnerID, "Pickup tomorrow",
			fmt.Sprintf("You have a pickup tomorrow between %s for return %s.", ret.TimeSlot, ret.ReturnID),
			map[string]string{"type": "PICKUP_REMINDER", "returnId": ret.ReturnID})
		count++
	}
	return count, nil
}

// SendReturnDueReminders reminds customers whose active rentals end tomorrow to
// schedule a return.
func (jr *JobRunner) SendReturnDueReminders() error {
	return jr.runWithRecovery("SendReturnDueReminders", jr.sendReturnDueReminders)
}

func (jr *JobRunner) sendReturnDueReminders(ctx context.Context) (int, error) {
	day := jr.tomorrow()
	rentals, err := jr.rentals.ListActiveEndingOn(ctx, day)
	if err != nil {
		return 0, fmt.Errorf("failed to list rentals ending on %s: %w", day.Format(time.DateOnly), err)
	}

	count := 0
	for _, rental := range rentals {
		if rental.Status != domain.RentalStatusActive {
			continue
		}
		jr.services.Notification.Notify(ctx, rental.UserID, "Rental ends tomorrow",
			fmt.Sprintf("Your rental %s ends on %s. Schedule a return pickup to avoid delays.", rental.RentalID, rental.EndDate.Format("Jan 2, 2006")),
			map[string]string{"type": "RETURN_DUE", "rentalId": rental.RentalID})
		count++
	}
	return count, nil
}

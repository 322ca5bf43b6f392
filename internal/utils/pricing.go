package utils

import (
	"fmt"
	"strings"
	"time"

	"rentwear-backend/internal/domain"
)

// RentalQuote is the server-side price of a rental period, in minor currency units.
type RentalQuote struct {
	TotalDays       int32
	RentalPrice     int64
	SecurityDeposit int64
	TotalAmount     int64
}

// ParseDate accepts a yyyy-mm-dd date or an RFC 3339 timestamp and returns the calendar
// date at UTC midnight.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("date is required")
	}
	if t, err := time.Parse(time.DateOnly, dateStr); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}
	return DateOf(t.UTC()), nil
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// RentalDays counts the nights between start and end: a rental from the 2nd to
// the 6th lasts 4 days.
func RentalDays(start, end time.Time) (int32, error) {
	start, end = DateOf(start), DateOf(end)
	if !end.After(start) {
		return 0, fmt.Errorf("end date must be after start date")
	}
	return int32(end.Sub(start).Hours() / 24), nil
}

// QuoteRental prices a rental of product between start and end. The period must be
// within [minDays, maxDays].
func QuoteRental(start, end time.Time, product *domain.Product, minDays, maxDays int32) (RentalQuote, error) {
	days, err := RentalDays(start, end)
	if err != nil {
		return RentalQuote{}, domain.Validation("%s", err.Error())
	}
	if minDays > 0 && days < minDays {
		return RentalQuote{}, domain.Validation("rental period must be at least %d days", minDays)
	}
	if maxDays > 0 && days > maxDays {
		return RentalQuote{}, domain.Validation("rental period cannot exceed %d days", maxDays)
	}

	rentalPrice := product.RentalPricePerDay * int64(days)
	return RentalQuote{
		TotalDays:       days,
		RentalPrice:     rentalPrice,
		SecurityDeposit: product.SecurityDeposit,
		TotalAmount:     rentalPrice + product.SecurityDeposit,
	}, nil
}

// CheckClaimed compares amounts sent by a client against the quote. Zero means the
// client did not send the field.
func (q RentalQuote) CheckClaimed(totalDays int32, rentalPrice, securityDeposit, totalAmount int64) error {
	switch {
	case totalDays != 0 && totalDays != q.TotalDays:
		return domain.Validation("totalDays %d does not match the rental period of %d days", totalDays, q.TotalDays)
	case rentalPrice != 0 && rentalPrice != q.RentalPrice:
		return domain.Validation("rentalPrice does not match the product price")
	case securityDeposit != 0 && securityDeposit != q.SecurityDeposit:
		return domain.Validation("securityDeposit does not match the product deposit")
	case totalAmount != 0 && totalAmount != q.TotalAmount:
		return domain.Validation("totalAmount does not match rentalPrice plus securityDeposit")
	}
	return nil
}

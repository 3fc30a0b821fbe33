package pricing

import (
	"fmt"
	"math"
	"time"

	"kosku/internal/domain"
	"kosku/internal/models"
)

// Quote is the computed price for one lease period of a room.
type Quote struct {
	BaseAmount    float64  `json:"base_amount"`
	TotalAmount   float64  `json:"total_amount"`
	DepositAmount *float64 `json:"deposit_amount,omitempty"`
	DurationDays  int      `json:"duration_days"`
	PricePerUnit  float64  `json:"price_per_unit"`
}

// Calculate resolves the price per lease unit from the room's price table and
// derives total and deposit amounts. When the room has no override for the
// requested period, the per-unit price falls back to a value derived from the
// monthly price on the simplified 30-day calendar:
//
//	daily     = monthly / 30
//	weekly    = monthly * 7 / 30
//	quarterly = monthly * 3
//	yearly    = monthly * 12
//
// The fallback is deliberate, not a bug: owners usually maintain only the
// monthly rate.
func Calculate(room *models.Room, leaseType string) (*Quote, error) {
	days, ok := domain.LeaseDurationDays[leaseType]
	if !ok {
		return nil, fmt.Errorf("%w: unknown lease type %q", domain.ErrValidation, leaseType)
	}
	unit := resolveUnitPrice(room, leaseType)
	if !validAmount(unit) {
		return nil, fmt.Errorf("%w: resolved price per unit %v for room %d", domain.ErrInvalidPricing, unit, room.ID)
	}
	q := &Quote{
		BaseAmount:   unit,
		TotalAmount:  unit,
		DurationDays: days,
		PricePerUnit: unit,
	}
	dep, err := depositAmount(room, q.TotalAmount)
	if err != nil {
		return nil, err
	}
	q.DepositAmount = dep
	return q, nil
}

// CheckOutDate derives the check-out date from the check-in date and lease
// type using the fixed day-count table. Deterministic: MONTHLY always adds
// exactly 30 days.
func CheckOutDate(checkIn time.Time, leaseType string) (time.Time, error) {
	days, ok := domain.LeaseDurationDays[leaseType]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: unknown lease type %q", domain.ErrValidation, leaseType)
	}
	return checkIn.AddDate(0, 0, days), nil
}

func resolveUnitPrice(room *models.Room, leaseType string) float64 {
	switch leaseType {
	case domain.LeaseDaily:
		if room.DailyPrice != nil {
			return *room.DailyPrice
		}
		return room.MonthlyPrice / 30
	case domain.LeaseWeekly:
		if room.WeeklyPrice != nil {
			return *room.WeeklyPrice
		}
		return room.MonthlyPrice * 7 / 30
	case domain.LeaseMonthly:
		return room.MonthlyPrice
	case domain.LeaseQuarterly:
		if room.QuarterlyPrice != nil {
			return *room.QuarterlyPrice
		}
		return room.MonthlyPrice * 3
	case domain.LeaseYearly:
		if room.YearlyPrice != nil {
			return *room.YearlyPrice
		}
		return room.MonthlyPrice * 12
	}
	return 0
}

func depositAmount(room *models.Room, total float64) (*float64, error) {
	switch room.DepositType {
	case "", domain.DepositNone:
		return nil, nil
	case domain.DepositFixed:
		if !validAmount(room.DepositValue) {
			return nil, fmt.Errorf("%w: fixed deposit misconfigured for room %d", domain.ErrInvalidPricing, room.ID)
		}
		v := room.DepositValue
		return &v, nil
	case domain.DepositPercentage:
		if !validAmount(room.DepositValue) {
			return nil, fmt.Errorf("%w: percentage deposit misconfigured for room %d", domain.ErrInvalidPricing, room.ID)
		}
		v := room.DepositValue * total / 100
		return &v, nil
	}
	return nil, fmt.Errorf("%w: unknown deposit type %q for room %d", domain.ErrInvalidPricing, room.DepositType, room.ID)
}

func validAmount(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

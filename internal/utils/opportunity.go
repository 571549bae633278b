package utils

import (
	"time"

	"github.com/MpenduloXulu/TTI-Website/internal/types"
)

// DeriveAvailability computes the non-persisted open/upcoming/closed state of
// an opportunity window. A passed closing date wins over a future opening
// date; missing dates leave the opportunity open.
func DeriveAvailability(openingDate, closingDate *time.Time, now time.Time) string {
	if closingDate != nil && closingDate.Before(now) {
		return types.AvailabilityClosed
	}

	if openingDate != nil && openingDate.After(now) {
		return types.AvailabilityUpcoming
	}

	return types.AvailabilityOpen
}

// AvailabilityRank orders opportunities for listings: open first, then
// upcoming, then closed.
func AvailabilityRank(availability string) int {
	switch availability {
	case types.AvailabilityOpen:
		return 0
	case types.AvailabilityUpcoming:
		return 1
	case types.AvailabilityClosed:
		return 2
	default:
		return 3
	}
}

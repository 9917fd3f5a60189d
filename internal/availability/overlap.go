// Package availability decides whether the guest apartment is free for a range
// and how each calendar day should be presented.
package availability

import "guestflat/internal/domain"

// CheckOverlap compares a candidate range against a booking snapshot.
// Cancelled bookings are ignored. Every conflicting id is returned, in snapshot order.
func CheckOverlap(candidate domain.DateRange, bookings []domain.Booking) (bool, []domain.BookingID, error) {
	if err := candidate.Validate(); err != nil {
		return false, nil, err
	}
	var conflicts []domain.BookingID
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		if candidate.Overlaps(b.Range()) {
			conflicts = append(conflicts, b.ID)
		}
	}
	return len(conflicts) == 0, conflicts, nil
}

// Validate is CheckOverlap folded into a single error: *domain.ValidationError
// for a malformed range, *domain.ConflictError when the range is taken.
func Validate(candidate domain.DateRange, bookings []domain.Booking) error {
	ok, conflicts, err := CheckOverlap(candidate, bookings)
	if err != nil {
		return err
	}
	if !ok {
		return &domain.ConflictError{IDs: conflicts}
	}
	return nil
}

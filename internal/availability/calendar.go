package availability

import (
	"time"

	"guestflat/internal/domain"
)

type DayState string

const (
	Available         DayState = "available"
	FullyBooked       DayState = "fully_booked"
	CheckoutOnly      DayState = "checkout_only"
	CheckinOnly       DayState = "checkin_only"
	BackToBackBlocked DayState = "back_to_back_blocked"
)

// Disabled reports whether a day cannot be picked in the calendar.
// CheckinOnly is intentionally selectable; product has not confirmed
// whether arrivals on another guest's check-in day should be blocked.
func (s DayState) Disabled() bool {
	return s == FullyBooked || s == BackToBackBlocked
}

// Classify derives the state of a single day from the booking snapshot.
func Classify(day time.Time, bookings []domain.Booking) DayState {
	day = domain.Day(day)
	var checkout, checkin bool
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		start, end := domain.Day(b.Start), domain.Day(b.End)
		switch {
		case start.Before(day) && day.Before(end):
			return FullyBooked
		case day.Equal(end):
			checkout = true
		case day.Equal(start):
			checkin = true
		}
	}
	// start < end for every valid booking, so checkout and checkin always
	// come from two different bookings here.
	switch {
	case checkout && checkin:
		return BackToBackBlocked
	case checkout:
		return CheckoutOnly
	case checkin:
		return CheckinOnly
	}
	return Available
}

type CalendarDay struct {
	Date     string   `json:"date"`
	State    DayState `json:"state"`
	Disabled bool     `json:"disabled"`
}

// ClassifyMonth classifies every day of the given month.
func ClassifyMonth(year int, month time.Month, bookings []domain.Booking) []CalendarDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	out := make([]CalendarDay, 0, 31)
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		st := Classify(d, bookings)
		out = append(out, CalendarDay{Date: d.Format(domain.DateLayout), State: st, Disabled: st.Disabled()})
	}
	return out
}

// DisabledDays lists the non-selectable days in [from, to).
func DisabledDays(from, to time.Time, bookings []domain.Booking) []time.Time {
	var out []time.Time
	for d := domain.Day(from); d.Before(domain.Day(to)); d = d.AddDate(0, 0, 1) {
		if Classify(d, bookings).Disabled() {
			out = append(out, d)
		}
	}
	return out
}

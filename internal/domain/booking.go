package domain

import "time"

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

type BookingID string

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

// Booking holds one stay of the guest apartment.
// Start is the check-in day (inclusive), End the check-out day (exclusive).
type Booking struct {
	ID         BookingID
	ResidentID int64
	Start      time.Time
	End        time.Time
	Parking    bool
	Status     Status
	CreatedAt  time.Time
}

// Active reports whether the booking takes part in overlap and revenue computation.
func (b Booking) Active() bool { return b.Status != StatusCancelled }

func (b Booking) Range() DateRange { return DateRange{Start: b.Start, End: b.End} }

// DateRange is a half-open span of calendar days [Start, End).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange normalizes both ends to calendar days and validates start < end.
func NewDateRange(start, end time.Time) (DateRange, error) {
	r := DateRange{Start: Day(start), End: Day(end)}
	return r, r.Validate()
}

func (r DateRange) Validate() error {
	if !r.Start.Before(r.End) {
		return &ValidationError{Field: "range", Reason: "start must be before end"}
	}
	return nil
}

// Overlaps uses half-open semantics, so r.End == o.Start is not an overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return r.Start.Before(o.End) && o.Start.Before(r.End)
}

// Nights counts calendar days between start and end, never negative.
func (r DateRange) Nights() int {
	n := DaysBetween(r.Start, r.End)
	if n < 0 {
		return 0
	}
	return n
}

// Day truncates t to 00:00 UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween is the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// ParseDay parses a YYYY-MM-DD string into a calendar day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &ValidationError{Field: "date", Reason: "expected YYYY-MM-DD, got " + s}
	}
	return t, nil
}

// Resident is the directory entry of a booking owner.
type Resident struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ApartmentNumber string `json:"apartment_number"`
}

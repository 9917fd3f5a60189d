// Package selection turns two calendar clicks into a date range.
package selection

import (
	"time"

	"guestflat/internal/domain"
)

type State string

const (
	Empty         State = "empty"
	StartSelected State = "start_selected"
	Complete      State = "complete"
)

func (s State) Valid() bool {
	switch s {
	case Empty, StartSelected, Complete:
		return true
	}
	return false
}

// Selection is the immutable state of the two-click picker.
// Start is set in StartSelected and Complete, End only in Complete.
type Selection struct {
	State State     `json:"state"`
	Start time.Time `json:"start,omitempty"`
	End   time.Time `json:"end,omitempty"`
}

// Click is the only transition function:
//
//	Empty         --d--> StartSelected{start: d}
//	StartSelected --d--> Complete{min(start,d), max(start,d)}
//	Complete      --d--> StartSelected{start: d}
func Click(s Selection, d time.Time) Selection {
	d = domain.Day(d)
	switch s.State {
	case StartSelected:
		if d.Before(s.Start) {
			return Selection{State: Complete, Start: d, End: s.Start}
		}
		return Selection{State: Complete, Start: s.Start, End: d}
	default:
		// Empty, Complete and anything unknown start a fresh selection.
		return Selection{State: StartSelected, Start: d}
	}
}

// Range returns the chosen range once the selection is complete.
// A same-day selection is returned as is (Start == End); it fails
// DateRange.Validate and must not be submitted as a booking.
func (s Selection) Range() (domain.DateRange, bool) {
	if s.State != Complete {
		return domain.DateRange{}, false
	}
	return domain.DateRange{Start: s.Start, End: s.End}, true
}

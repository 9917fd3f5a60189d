package app

import (
	"strconv"
	"strings"
	"time"

	"guestflat/internal/domain"
	"guestflat/internal/pricing"
)

/********** booking views **********/

// BookingView is the wire form of a booking, dates as YYYY-MM-DD.
type BookingView struct {
	ID         string                  `json:"id"`
	ResidentID int64                   `json:"resident_id"`
	Start      string                  `json:"start"`
	End        string                  `json:"end"`
	Parking    bool                    `json:"parking"`
	Status     string                  `json:"status"`
	CreatedAt  time.Time               `json:"created_at"`
	Price      *pricing.PriceBreakdown `json:"price,omitempty"`
}

func mapBooking(b domain.Booking, p *pricing.PriceBreakdown) BookingView {
	return BookingView{
		ID:         string(b.ID),
		ResidentID: b.ResidentID,
		Start:      b.Start.Format(domain.DateLayout),
		End:        b.End.Format(domain.DateLayout),
		Parking:    b.Parking,
		Status:     string(b.Status),
		CreatedAt:  b.CreatedAt,
		Price:      p,
	}
}

/********** report line items **********/

// mapLineItem prices one booking for its resident. A resident missing from
// the directory keeps an empty apartment number and lands in the unknown bucket.
func mapLineItem(r domain.Resident, p pricing.PriceBreakdown) domain.LineItem {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		name = "resident " + itoa(r.ID)
	}
	return domain.LineItem{
		ApartmentNumber: strings.TrimSpace(r.ApartmentNumber),
		ResidentName:    name,
		TotalAmount:     p.Total,
	}
}

/********** cache keys **********/

func calendarKey(year int, month time.Month) string {
	return "calendar:" + time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func residentKey(id int64) string { return "resident:" + itoa(id) }

// touchedMonths lists every month whose calendar shows r, check-out day included.
func touchedMonths(r domain.DateRange) []time.Time {
	first := time.Date(r.Start.Year(), r.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := time.Date(r.End.Year(), r.End.Month(), 1, 0, 0, 0, 0, time.UTC)
	var out []time.Time
	for m := first; !m.After(last); m = m.AddDate(0, 1, 0) {
		out = append(out, m)
	}
	return out
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

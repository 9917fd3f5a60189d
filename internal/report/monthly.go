// Package report aggregates priced bookings for the admin views.
package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"guestflat/internal/domain"
	"guestflat/internal/pricing"
)

// MonthGroup totals the bookings that check in during one month.
// Month is 0 for a yearly summary.
type MonthGroup struct {
	Year             int              `json:"year"`
	Month            time.Month       `json:"month"`
	Bookings         []domain.Booking `json:"-"`
	BookingCount     int              `json:"booking_count"`
	TotalNights      int              `json:"total_nights"`
	ApartmentRevenue decimal.Decimal  `json:"apartment_revenue"`
	ParkingRevenue   decimal.Decimal  `json:"parking_revenue"`
}

// Total is apartment plus parking revenue.
func (g MonthGroup) Total() decimal.Decimal { return g.ApartmentRevenue.Add(g.ParkingRevenue) }

func (g *MonthGroup) add(e *pricing.Engine, b domain.Booking) {
	p := e.PriceBooking(b)
	g.Bookings = append(g.Bookings, b)
	g.BookingCount++
	g.TotalNights += p.Nights
	g.ApartmentRevenue = g.ApartmentRevenue.Add(p.ApartmentRevenue)
	g.ParkingRevenue = g.ParkingRevenue.Add(p.ParkingRevenue)
}

type monthKey struct {
	year  int
	month time.Month
}

// GroupByMonth buckets active bookings by check-in month, ordered by (year, month).
// Bookings keep their input order within a group.
func GroupByMonth(e *pricing.Engine, bookings []domain.Booking) []MonthGroup {
	idx := map[monthKey]int{}
	var out []MonthGroup
	for _, b := range bookings {
		if !b.Active() {
			continue
		}
		start := domain.Day(b.Start)
		k := monthKey{start.Year(), start.Month()}
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, MonthGroup{Year: k.year, Month: k.month})
		}
		out[i].add(e, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Month < out[j].Month
	})
	return out
}

// YearlySummary totals the active bookings checking in during year.
func YearlySummary(e *pricing.Engine, bookings []domain.Booking, year int) MonthGroup {
	g := MonthGroup{Year: year}
	for _, b := range bookings {
		if !b.Active() || domain.Day(b.Start).Year() != year {
			continue
		}
		g.add(e, b)
	}
	return g
}

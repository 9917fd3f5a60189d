package pricing

import (
	"github.com/shopspring/decimal"

	"guestflat/internal/domain"
)

type PriceBreakdown struct {
	Nights           int             `json:"nights"`
	Tier             string          `json:"tier"`
	NightlyRate      decimal.Decimal `json:"nightly_rate"`
	ApartmentRevenue decimal.Decimal `json:"apartment_revenue"`
	ParkingRevenue   decimal.Decimal `json:"parking_revenue"`
	Total            decimal.Decimal `json:"total"`
}

type Engine struct {
	table   SeasonTable
	parking decimal.Decimal
}

func NewEngine(table SeasonTable, parkingNightly decimal.Decimal) (*Engine, error) {
	if parkingNightly.IsNegative() {
		return nil, ErrNegativeRate
	}
	return &Engine{table: table, parking: parkingNightly}, nil
}

func (e *Engine) Table() SeasonTable { return e.table }

func (e *Engine) ParkingRate() decimal.Decimal { return e.parking }

// Price prices a stay. The nightly rate is picked once from the check-in
// week and applied to every night. Invalid or same-day ranges price to zero;
// callers reject them before pricing.
func (e *Engine) Price(r domain.DateRange, parking bool) PriceBreakdown {
	nights := r.Nights()
	tier, rate := e.table.RateFor(domain.Day(r.Start))
	n := decimal.NewFromInt(int64(nights))

	out := PriceBreakdown{
		Nights:           nights,
		Tier:             tier,
		NightlyRate:      rate,
		ApartmentRevenue: rate.Mul(n),
		ParkingRevenue:   decimal.Zero,
	}
	if parking {
		out.ParkingRevenue = e.parking.Mul(n)
	}
	out.Total = out.ApartmentRevenue.Add(out.ParkingRevenue)
	return out
}

// PriceBooking prices a stored booking with its own parking flag.
func (e *Engine) PriceBooking(b domain.Booking) PriceBreakdown {
	return e.Price(b.Range(), b.Parking)
}

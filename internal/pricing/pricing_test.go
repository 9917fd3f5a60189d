package pricing_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"guestflat/internal/domain"
	"guestflat/internal/pricing"
)

func day(s string) time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

func dec(i int64) decimal.Decimal { return decimal.NewFromInt(i) }

func newEngine(t *testing.T, tennisWeeks []int) *pricing.Engine {
	t.Helper()
	table, err := pricing.StandardTable(dec(100), dec(150), dec(200), tennisWeeks)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	e, err := pricing.NewEngine(table, dec(75))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

func TestPrice_TennisWeekWithParking(t *testing.T) {
	e := newEngine(t, pricing.TennisWeeksWide)
	r := domain.DateRange{Start: day("2025-07-07"), End: day("2025-07-14")} // ISO week 28

	p := e.Price(r, true)
	if p.Nights != 7 {
		t.Fatalf("nights: want 7, got %d", p.Nights)
	}
	if p.Tier != pricing.TierTennis || !p.NightlyRate.Equal(dec(200)) {
		t.Fatalf("unexpected tier/rate: %s %s", p.Tier, p.NightlyRate)
	}
	if !p.ApartmentRevenue.Equal(dec(1400)) {
		t.Fatalf("apartment: want 1400, got %s", p.ApartmentRevenue)
	}
	if !p.ParkingRevenue.Equal(dec(525)) {
		t.Fatalf("parking: want 525, got %s", p.ParkingRevenue)
	}
	if !p.Total.Equal(dec(1925)) {
		t.Fatalf("total: want 1925, got %s", p.Total)
	}
}

func TestPrice_NoParking(t *testing.T) {
	e := newEngine(t, pricing.TennisWeeksWide)
	p := e.Price(domain.DateRange{Start: day("2025-03-03"), End: day("2025-03-05")}, false)
	if !p.ParkingRevenue.IsZero() || !p.Total.Equal(dec(200)) || p.Tier != pricing.TierLow {
		t.Fatalf("unexpected: %+v", p)
	}
}

func TestPrice_ZeroNightsIsZeroTotal(t *testing.T) {
	e := newEngine(t, pricing.TennisWeeksWide)
	for _, r := range []domain.DateRange{
		{Start: day("2025-07-07"), End: day("2025-07-07")},
		{Start: day("2025-07-09"), End: day("2025-07-07")},
	} {
		p := e.Price(r, true)
		if p.Nights != 0 || !p.Total.IsZero() {
			t.Fatalf("want zero, got %+v", p)
		}
	}
}

func TestPrice_RateFixedByCheckinWeek(t *testing.T) {
	e := newEngine(t, pricing.TennisWeeksWide)

	// Friday of week 23 through week 24: every night at the low rate.
	p := e.Price(domain.DateRange{Start: day("2025-06-06"), End: day("2025-06-13")}, false)
	if p.Tier != pricing.TierLow || !p.ApartmentRevenue.Equal(dec(700)) {
		t.Fatalf("want low 700, got %s %s", p.Tier, p.ApartmentRevenue)
	}

	// Starts in week 32 (high), runs into low season weeks.
	p = e.Price(domain.DateRange{Start: day("2025-08-08"), End: day("2025-08-18")}, false)
	if p.Tier != pricing.TierHigh || !p.ApartmentRevenue.Equal(dec(1500)) {
		t.Fatalf("want high 1500, got %s %s", p.Tier, p.ApartmentRevenue)
	}
}

func TestStandardTable_TennisVariants(t *testing.T) {
	week27 := day("2025-06-30")
	wide := newEngine(t, pricing.TennisWeeksWide)
	narrow := newEngine(t, pricing.TennisWeeksNarrow)

	if tier, _ := wide.Table().RateFor(week27); tier != pricing.TierTennis {
		t.Fatalf("wide: week 27 should be tennis, got %s", tier)
	}
	if tier, _ := narrow.Table().RateFor(week27); tier != pricing.TierHigh {
		t.Fatalf("narrow: week 27 should be high, got %s", tier)
	}
	for _, w := range []int{24, 30, 32} {
		if tier, rate := narrow.Table().RateForWeek(w); tier != pricing.TierHigh || !rate.Equal(dec(150)) {
			t.Fatalf("week %d: want high 150, got %s %s", w, tier, rate)
		}
	}
	for _, w := range []int{1, 23, 33, 53} {
		if tier, _ := narrow.Table().RateForWeek(w); tier != pricing.TierLow {
			t.Fatalf("week %d: want low, got %s", w, tier)
		}
	}
}

func TestSeasonTable_FirstMatchWins(t *testing.T) {
	table, err := pricing.NewSeasonTable(dec(10),
		pricing.SeasonRule{Name: "a", FromWeek: 5, ToWeek: 10, Rate: dec(1)},
		pricing.SeasonRule{Name: "b", FromWeek: 1, ToWeek: 52, Rate: dec(2)},
	)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if name, _ := table.RateForWeek(7); name != "a" {
		t.Fatalf("want a, got %s", name)
	}
	if name, _ := table.RateForWeek(12); name != "b" {
		t.Fatalf("want b, got %s", name)
	}
	if name, rate := table.RateForWeek(53); name != pricing.TierLow || !rate.Equal(dec(10)) {
		t.Fatalf("want default, got %s %s", name, rate)
	}
}

func TestSeasonTable_Validation(t *testing.T) {
	if _, err := pricing.NewSeasonTable(dec(-1)); !errors.Is(err, pricing.ErrNegativeRate) {
		t.Fatalf("want ErrNegativeRate, got %v", err)
	}
	_, err := pricing.NewSeasonTable(dec(1), pricing.SeasonRule{Name: "x", FromWeek: 30, ToWeek: 20, Rate: dec(1)})
	if !errors.Is(err, pricing.ErrInvalidWeek) {
		t.Fatalf("want ErrInvalidWeek, got %v", err)
	}
	if _, err := pricing.StandardTable(dec(1), dec(2), dec(3), nil); !errors.Is(err, pricing.ErrEmptyTennisSet) {
		t.Fatalf("want ErrEmptyTennisSet, got %v", err)
	}
	if _, err := pricing.NewEngine(pricing.SeasonTable{}, dec(-5)); !errors.Is(err, pricing.ErrNegativeRate) {
		t.Fatalf("want ErrNegativeRate, got %v", err)
	}
}

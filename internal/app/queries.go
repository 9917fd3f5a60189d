package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"guestflat/internal/availability"
	"guestflat/internal/domain"
	"guestflat/internal/pricing"
	"guestflat/internal/report"
)

type QueryService struct {
	repo     domain.BookingRepository
	cache    domain.Cache
	dir      domain.ResidentDirectory
	pricing  *pricing.Engine
	cacheTTL time.Duration
}

func NewQueryService(r domain.BookingRepository, c domain.Cache, d domain.ResidentDirectory, e *pricing.Engine, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, dir: d, pricing: e, cacheTTL: ttl}
}

func (s *QueryService) Pricing() *pricing.Engine { return s.pricing }

type AvailabilityResult struct {
	Start     string             `json:"start"`
	End       string             `json:"end"`
	Available bool               `json:"available"`
	Conflicts []domain.BookingID `json:"conflicts"`
}

func (s *QueryService) Availability(ctx context.Context, start, end time.Time) (AvailabilityResult, error) {
	r, err := domain.NewDateRange(start, end)
	if err != nil {
		return AvailabilityResult{}, err
	}
	snapshot, err := s.repo.ListActive(ctx, r.Start, r.End)
	if err != nil {
		return AvailabilityResult{}, fmt.Errorf("load bookings: %w", err)
	}
	ok, conflicts, err := availability.CheckOverlap(r, snapshot)
	if err != nil {
		return AvailabilityResult{}, err
	}
	if conflicts == nil {
		conflicts = []domain.BookingID{}
	}
	return AvailabilityResult{
		Start:     r.Start.Format(domain.DateLayout),
		End:       r.End.Format(domain.DateLayout),
		Available: ok,
		Conflicts: conflicts,
	}, nil
}

type MonthCalendar struct {
	Year  int                        `json:"year"`
	Month int                        `json:"month"`
	Days  []availability.CalendarDay `json:"days"`
}

// Calendar classifies every day of a month. Results are cached until a
// booking touching the month is created or cancelled.
func (s *QueryService) Calendar(ctx context.Context, year int, month time.Month) (MonthCalendar, error) {
	if month < time.January || month > time.December {
		return MonthCalendar{}, &domain.ValidationError{Field: "month", Reason: "must be 1..12"}
	}
	key := calendarKey(year, month)
	var out MonthCalendar
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &out); ok {
			return out, nil
		}
	}

	// One extra day each side so bookings ending on the 1st or starting on
	// the day after month end still mark their check-out/check-in days.
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	snapshot, err := s.repo.ListActive(ctx, first.AddDate(0, 0, -1), first.AddDate(0, 1, 1))
	if err != nil {
		return MonthCalendar{}, fmt.Errorf("load bookings: %w", err)
	}
	out = MonthCalendar{Year: year, Month: int(month), Days: availability.ClassifyMonth(year, month, snapshot)}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, out, int(s.cacheTTL.Seconds()))
	}
	return out, nil
}

// Quote prices a candidate stay without checking availability.
func (s *QueryService) Quote(start, end time.Time, parking bool) (pricing.PriceBreakdown, error) {
	r, err := domain.NewDateRange(start, end)
	if err != nil {
		return pricing.PriceBreakdown{}, err
	}
	return s.pricing.Price(r, parking), nil
}

func (s *QueryService) Booking(ctx context.Context, id domain.BookingID) (BookingView, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return BookingView{}, err
	}
	p := s.pricing.PriceBooking(b)
	return mapBooking(b, &p), nil
}

func (s *QueryService) yearBookings(ctx context.Context, year int) ([]domain.Booking, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	bs, err := s.repo.ListStartingBetween(ctx, from, from.AddDate(1, 0, 0))
	if err != nil {
		return nil, fmt.Errorf("load bookings for %d: %w", year, err)
	}
	return bs, nil
}

// MonthlyStatus groups a year's bookings by check-in month.
func (s *QueryService) MonthlyStatus(ctx context.Context, year int) ([]report.MonthGroup, error) {
	bs, err := s.yearBookings(ctx, year)
	if err != nil {
		return nil, err
	}
	groups := report.GroupByMonth(s.pricing, bs)
	if groups == nil {
		groups = []report.MonthGroup{}
	}
	return groups, nil
}

func (s *QueryService) YearSummary(ctx context.Context, year int) (report.MonthGroup, error) {
	bs, err := s.yearBookings(ctx, year)
	if err != nil {
		return report.MonthGroup{}, err
	}
	return report.YearlySummary(s.pricing, bs, year), nil
}

type ApartmentReport struct {
	From       string             `json:"from"`
	To         string             `json:"to"`
	Rows       []domain.ReportRow `json:"rows"`
	GrandTotal decimal.Decimal    `json:"grand_total"`
}

// ApartmentReport prices every active booking checking in within [from, to)
// and groups the lines per apartment with subtotals.
func (s *QueryService) ApartmentReport(ctx context.Context, from, to time.Time) (ApartmentReport, error) {
	r, err := domain.NewDateRange(from, to)
	if err != nil {
		return ApartmentReport{}, err
	}
	bs, err := s.repo.ListStartingBetween(ctx, r.Start, r.End)
	if err != nil {
		return ApartmentReport{}, fmt.Errorf("load bookings: %w", err)
	}

	seen := map[int64]domain.Resident{}
	items := make([]domain.LineItem, 0, len(bs))
	for _, b := range bs {
		if !b.Active() {
			continue
		}
		res, ok := seen[b.ResidentID]
		if !ok {
			res, err = s.resident(ctx, b.ResidentID)
			if err != nil {
				return ApartmentReport{}, err
			}
			seen[b.ResidentID] = res
		}
		items = append(items, mapLineItem(res, s.pricing.PriceBooking(b)))
	}

	rows := report.GroupByApartment(items)
	return ApartmentReport{
		From:       r.Start.Format(domain.DateLayout),
		To:         r.End.Format(domain.DateLayout),
		Rows:       rows,
		GrandTotal: report.GrandTotal(rows),
	}, nil
}

// resident reads through the cache. Residents unknown to the directory
// come back with only their id set.
func (s *QueryService) resident(ctx context.Context, id int64) (domain.Resident, error) {
	key := residentKey(id)
	var res domain.Resident
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &res); ok {
			return res, nil
		}
	}
	if s.dir == nil {
		return domain.Resident{ID: id}, nil
	}
	res, err := s.dir.GetResident(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		log.Warn().Int64("resident_id", id).Msg("resident missing from directory")
		return domain.Resident{ID: id}, nil
	}
	if err != nil {
		return domain.Resident{}, fmt.Errorf("directory: %w", err)
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, res, int(s.cacheTTL.Seconds()))
	}
	return res, nil
}

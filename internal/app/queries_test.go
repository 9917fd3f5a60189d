package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"guestflat/internal/app"
	"guestflat/internal/availability"
	"guestflat/internal/domain"
	"guestflat/internal/pricing"
)

// ---- fakes ----

type fakeRepo struct {
	bookings  []domain.Booking
	createErr error
	created   int
	listCalls int
}

func (f *fakeRepo) Create(ctx context.Context, b domain.Booking) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created++
	f.bookings = append(f.bookings, b)
	return nil
}

func (f *fakeRepo) Cancel(ctx context.Context, id domain.BookingID) error {
	for i := range f.bookings {
		if f.bookings[i].ID == id {
			f.bookings[i].Status = domain.StatusCancelled
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeRepo) Get(ctx context.Context, id domain.BookingID) (domain.Booking, error) {
	for _, b := range f.bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Booking{}, domain.ErrNotFound
}

func (f *fakeRepo) ListActive(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	f.listCalls++
	var out []domain.Booking
	for _, b := range f.bookings {
		if b.Active() && b.Start.Before(to) && b.End.After(from) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	var out []domain.Booking
	for _, b := range f.bookings {
		if !b.Start.Before(from) && b.Start.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

// fakeCache round-trips through JSON like the redis adapter does.
type fakeCache struct {
	store   map[string][]byte
	deleted []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(v, dst)
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.deleted = append(c.deleted, key)
	delete(c.store, key)
	return nil
}

type fakeDirectory struct {
	residents map[int64]domain.Resident
	calls     int
	err       error
}

func (d *fakeDirectory) GetResident(ctx context.Context, id int64) (domain.Resident, error) {
	d.calls++
	if d.err != nil {
		return domain.Resident{}, d.err
	}
	r, ok := d.residents[id]
	if !ok {
		return domain.Resident{}, domain.ErrNotFound
	}
	return r, nil
}

// ---- helpers ----

func day(s string) time.Time {
	t, _ := time.Parse(domain.DateLayout, s)
	return t
}

func dec(i int64) decimal.Decimal { return decimal.NewFromInt(i) }

func engine(t *testing.T) *pricing.Engine {
	t.Helper()
	table, err := pricing.StandardTable(dec(100), dec(150), dec(200), pricing.TennisWeeksWide)
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	e, err := pricing.NewEngine(table, dec(75))
	if err != nil {
		t.Fatalf("engine: %v", err)
	}
	return e
}

func booking(id string, resident int64, start, end string, parking bool) domain.Booking {
	return domain.Booking{
		ID: domain.BookingID(id), ResidentID: resident,
		Start: day(start), End: day(end), Parking: parking, Status: domain.StatusConfirmed,
	}
}

// ---- tests ----

func TestAvailability_BackToBackAndConflict(t *testing.T) {
	repo := &fakeRepo{bookings: []domain.Booking{booking("b1", 1, "2025-07-01", "2025-07-03", false)}}
	q := app.NewQueryService(repo, &fakeCache{}, nil, engine(t), time.Minute)
	ctx := context.Background()

	res, err := q.Availability(ctx, day("2025-07-03"), day("2025-07-05"))
	if err != nil || !res.Available || len(res.Conflicts) != 0 {
		t.Fatalf("back-to-back should be available: %+v %v", res, err)
	}
	res, err = q.Availability(ctx, day("2025-07-02"), day("2025-07-04"))
	if err != nil || res.Available || len(res.Conflicts) != 1 || res.Conflicts[0] != "b1" {
		t.Fatalf("expected conflict with b1: %+v %v", res, err)
	}
	calls := repo.listCalls
	if _, err := q.Availability(ctx, day("2025-07-04"), day("2025-07-04")); !domain.IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	if repo.listCalls != calls {
		t.Fatalf("invalid range must be rejected before loading bookings")
	}
}

func TestCalendar_CacheMissThenHit(t *testing.T) {
	repo := &fakeRepo{bookings: []domain.Booking{
		booking("b1", 1, "2025-06-28", "2025-07-01", false),
		booking("b2", 2, "2025-07-10", "2025-07-12", false),
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, nil, engine(t), 10*time.Minute)
	ctx := context.Background()

	cal, err := q.Calendar(ctx, 2025, time.July)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(cal.Days) != 31 {
		t.Fatalf("want 31 days, got %d", len(cal.Days))
	}
	if cal.Days[0].State != availability.CheckoutOnly {
		t.Fatalf("July 1 is b1's check-out day, got %s", cal.Days[0].State)
	}
	if cal.Days[10].State != availability.FullyBooked || !cal.Days[10].Disabled {
		t.Fatalf("July 11 should be fully booked, got %+v", cal.Days[10])
	}

	// Mutate repo to ensure second read indeed comes from cache
	repo.bookings = nil
	cal2, err := q.Calendar(ctx, 2025, time.July)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if cal2.Days[10].State != availability.FullyBooked {
		t.Fatalf("expected cached calendar, got %+v", cal2.Days[10])
	}

	if _, err := q.Calendar(ctx, 2025, time.Month(13)); !domain.IsValidation(err) {
		t.Fatalf("want ValidationError for month 13, got %v", err)
	}
}

func TestQuote(t *testing.T) {
	q := app.NewQueryService(&fakeRepo{}, nil, nil, engine(t), time.Minute)
	p, err := q.Quote(day("2025-07-07"), day("2025-07-14"), true)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if p.Nights != 7 || !p.ParkingRevenue.Equal(dec(525)) || !p.Total.Equal(dec(1925)) {
		t.Fatalf("unexpected quote: %+v", p)
	}
	if _, err := q.Quote(day("2025-07-14"), day("2025-07-07"), false); !domain.IsValidation(err) {
		t.Fatalf("want ValidationError, got %v", err)
	}
}

func TestMonthlyStatusAndYearSummary(t *testing.T) {
	cancelled := booking("x", 3, "2025-07-20", "2025-07-22", false)
	cancelled.Status = domain.StatusCancelled
	repo := &fakeRepo{bookings: []domain.Booking{
		booking("a", 1, "2025-07-07", "2025-07-14", true),
		booking("b", 2, "2025-03-03", "2025-03-05", false),
		booking("c", 2, "2024-12-30", "2025-01-02", false),
		cancelled,
	}}
	q := app.NewQueryService(repo, nil, nil, engine(t), time.Minute)
	ctx := context.Background()

	groups, err := q.MonthlyStatus(ctx, 2025)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(groups) != 2 || groups[0].Month != time.March || groups[1].Month != time.July {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	if groups[1].BookingCount != 1 || !groups[1].ParkingRevenue.Equal(dec(525)) {
		t.Fatalf("july group: %+v", groups[1])
	}

	sum, err := q.YearSummary(ctx, 2025)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if sum.Month != 0 || sum.BookingCount != 2 || !sum.Total().Equal(dec(1925+200)) {
		t.Fatalf("unexpected summary: %+v", sum)
	}

	empty, err := q.MonthlyStatus(ctx, 2031)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Fatalf("empty year should give an empty, non-nil list: %v %v", empty, err)
	}
}

func TestApartmentReport_GroupsResidentsAndCachesLookups(t *testing.T) {
	repo := &fakeRepo{bookings: []domain.Booking{
		booking("1", 10, "2025-03-03", "2025-03-05", false), // 200
		booking("2", 11, "2025-03-10", "2025-03-13", false), // 300
		booking("3", 12, "2025-04-07", "2025-04-09", false), // 200
		booking("4", 10, "2025-04-14", "2025-04-19", false), // 500
		booking("5", 99, "2025-05-05", "2025-05-06", false), // 100, unknown resident
	}}
	dir := &fakeDirectory{residents: map[int64]domain.Resident{
		10: {ID: 10, Name: "Ana", ApartmentNumber: "5"},
		11: {ID: 11, Name: "Ben", ApartmentNumber: "7"},
		12: {ID: 12, Name: "Cai", ApartmentNumber: "5"},
	}}
	cache := &fakeCache{}
	q := app.NewQueryService(repo, cache, dir, engine(t), time.Minute)

	rep, err := q.ApartmentReport(context.Background(), day("2025-01-01"), day("2026-01-01"))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	kinds := []domain.RowKind{domain.RowItem, domain.RowItem, domain.RowItem, domain.RowSubtotal, domain.RowItem, domain.RowItem}
	if len(rep.Rows) != len(kinds) {
		t.Fatalf("want %d rows, got %d: %+v", len(kinds), len(rep.Rows), rep.Rows)
	}
	for i, k := range kinds {
		if rep.Rows[i].Kind != k {
			t.Fatalf("row %d: want %s, got %s", i, k, rep.Rows[i].Kind)
		}
	}
	if !rep.Rows[3].Subtotal.Subtotal.Equal(dec(900)) {
		t.Fatalf("apartment 5 subtotal: %s", rep.Rows[3].Subtotal.Subtotal)
	}
	if rep.Rows[5].Item.ApartmentNumber != "" || rep.Rows[5].Item.ResidentName != "resident 99" {
		t.Fatalf("unknown resident should land last: %+v", rep.Rows[5].Item)
	}
	if !rep.GrandTotal.Equal(dec(1300)) {
		t.Fatalf("grand total: %s", rep.GrandTotal)
	}
	if dir.calls != 4 {
		t.Fatalf("each resident should be fetched once, got %d calls", dir.calls)
	}

	// second run served from cache
	if _, err := q.ApartmentReport(context.Background(), day("2025-01-01"), day("2026-01-01")); err != nil {
		t.Fatalf("err: %v", err)
	}
	if dir.calls != 5 { // only the unknown resident is not cached
		t.Fatalf("expected cached residents, got %d calls", dir.calls)
	}
}

func TestApartmentReport_DirectoryFailure(t *testing.T) {
	repo := &fakeRepo{bookings: []domain.Booking{booking("1", 10, "2025-03-03", "2025-03-05", false)}}
	boom := errors.New("boom")
	q := app.NewQueryService(repo, nil, &fakeDirectory{err: boom}, engine(t), time.Minute)
	if _, err := q.ApartmentReport(context.Background(), day("2025-01-01"), day("2026-01-01")); !errors.Is(err, boom) {
		t.Fatalf("want wrapped directory error, got %v", err)
	}
}

package availability_test

import (
	"errors"
	"testing"
	"time"

	"guestflat/internal/availability"
	"guestflat/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func booking(id, start, end string) domain.Booking {
	return domain.Booking{ID: domain.BookingID(id), Start: day(start), End: day(end), Status: domain.StatusConfirmed}
}

func rng(start, end string) domain.DateRange {
	return domain.DateRange{Start: day(start), End: day(end)}
}

// ---- overlap ----

func TestCheckOverlap_BackToBackIsAvailable(t *testing.T) {
	b2 := booking("b2", "2025-07-03", "2025-07-05")
	ok, conflicts, err := availability.CheckOverlap(rng("2025-07-01", "2025-07-03"), []domain.Booking{b2})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if !ok || len(conflicts) != 0 {
		t.Fatalf("expected available, got ok=%v conflicts=%v", ok, conflicts)
	}

	// and the mirror image
	b1 := booking("b1", "2025-07-01", "2025-07-03")
	ok, _, _ = availability.CheckOverlap(rng("2025-07-03", "2025-07-05"), []domain.Booking{b1})
	if !ok {
		t.Fatalf("checkout day followed by checkin must not conflict")
	}
}

func TestCheckOverlap_StrictlyInsideConflicts(t *testing.T) {
	b1 := booking("b1", "2025-07-01", "2025-07-03")
	ok, conflicts, err := availability.CheckOverlap(rng("2025-07-02", "2025-07-04"), []domain.Booking{b1})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if ok || len(conflicts) != 1 || conflicts[0] != "b1" {
		t.Fatalf("expected conflict with b1, got ok=%v conflicts=%v", ok, conflicts)
	}
}

func TestCheckOverlap_ReturnsEveryConflict(t *testing.T) {
	snap := []domain.Booking{
		booking("a", "2025-08-01", "2025-08-04"),
		booking("b", "2025-08-04", "2025-08-06"),
		booking("c", "2025-08-10", "2025-08-12"),
		booking("d", "2025-08-06", "2025-08-08"),
	}
	_, conflicts, _ := availability.CheckOverlap(rng("2025-08-03", "2025-08-07"), snap)
	want := []domain.BookingID{"a", "b", "d"}
	if len(conflicts) != len(want) {
		t.Fatalf("want %v, got %v", want, conflicts)
	}
	for i := range want {
		if conflicts[i] != want[i] {
			t.Fatalf("want %v, got %v", want, conflicts)
		}
	}
}

func TestCheckOverlap_IgnoresCancelled(t *testing.T) {
	b := booking("x", "2025-07-01", "2025-07-10")
	b.Status = domain.StatusCancelled
	ok, _, err := availability.CheckOverlap(rng("2025-07-02", "2025-07-04"), []domain.Booking{b})
	if err != nil || !ok {
		t.Fatalf("cancelled booking must not block, ok=%v err=%v", ok, err)
	}
}

func TestCheckOverlap_RejectsEmptyOrInvertedRange(t *testing.T) {
	cases := []domain.DateRange{
		rng("2025-07-03", "2025-07-03"),
		rng("2025-07-05", "2025-07-03"),
	}
	for _, c := range cases {
		// no bookings at all: the range alone decides
		_, _, err := availability.CheckOverlap(c, nil)
		var ve *domain.ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("expected ValidationError for %v, got %v", c, err)
		}
	}
}

func TestValidate_ConflictErrorCarriesIDs(t *testing.T) {
	snap := []domain.Booking{booking("b1", "2025-07-01", "2025-07-03")}
	err := availability.Validate(rng("2025-06-30", "2025-07-02"), snap)
	var ce *domain.ConflictError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ConflictError, got %v", err)
	}
	if len(ce.IDs) != 1 || ce.IDs[0] != "b1" {
		t.Fatalf("unexpected ids: %v", ce.IDs)
	}
	if err := availability.Validate(rng("2025-07-03", "2025-07-04"), snap); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

// ---- calendar ----

func TestClassify_States(t *testing.T) {
	snap := []domain.Booking{
		booking("b1", "2025-07-01", "2025-07-03"),
		booking("b2", "2025-07-03", "2025-07-05"),
		booking("b3", "2025-07-10", "2025-07-12"),
	}
	cases := map[string]availability.DayState{
		"2025-06-30": availability.Available,
		"2025-07-01": availability.CheckinOnly,
		"2025-07-02": availability.FullyBooked,
		"2025-07-03": availability.BackToBackBlocked,
		"2025-07-04": availability.FullyBooked,
		"2025-07-05": availability.CheckoutOnly,
		"2025-07-10": availability.CheckinOnly,
		"2025-07-11": availability.FullyBooked,
		"2025-07-12": availability.CheckoutOnly,
	}
	for d, want := range cases {
		if got := availability.Classify(day(d), snap); got != want {
			t.Fatalf("%s: want %s, got %s", d, want, got)
		}
	}
}

func TestClassify_IgnoresTimeOfDay(t *testing.T) {
	snap := []domain.Booking{booking("b1", "2025-07-01", "2025-07-03")}
	noon := day("2025-07-02").Add(12 * time.Hour)
	if got := availability.Classify(noon, snap); got != availability.FullyBooked {
		t.Fatalf("want fully_booked, got %s", got)
	}
}

func TestDisabled_CheckinOnlyStaysSelectable(t *testing.T) {
	if availability.CheckinOnly.Disabled() {
		t.Fatalf("checkin_only must stay selectable")
	}
	if availability.CheckoutOnly.Disabled() || availability.Available.Disabled() {
		t.Fatalf("checkout_only/available must be selectable")
	}
	if !availability.FullyBooked.Disabled() || !availability.BackToBackBlocked.Disabled() {
		t.Fatalf("fully_booked/back_to_back_blocked must be disabled")
	}
}

func TestClassifyMonth_CoversWholeMonth(t *testing.T) {
	snap := []domain.Booking{booking("b1", "2024-02-27", "2024-03-02")}
	days := availability.ClassifyMonth(2024, time.February, snap)
	if len(days) != 29 {
		t.Fatalf("leap february: want 29 days, got %d", len(days))
	}
	last := days[28]
	if last.Date != "2024-02-29" || last.State != availability.FullyBooked || !last.Disabled {
		t.Fatalf("unexpected last day: %+v", last)
	}
	if days[26].State != availability.CheckinOnly || days[26].Disabled {
		t.Fatalf("unexpected checkin day: %+v", days[26])
	}
}

func TestDisabledDays(t *testing.T) {
	snap := []domain.Booking{
		booking("b1", "2025-07-01", "2025-07-03"),
		booking("b2", "2025-07-03", "2025-07-05"),
	}
	got := availability.DisabledDays(day("2025-06-30"), day("2025-07-06"), snap)
	want := []string{"2025-07-02", "2025-07-03", "2025-07-04"}
	if len(got) != len(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	for i := range want {
		if got[i].Format(domain.DateLayout) != want[i] {
			t.Fatalf("want %v, got %v", want, got)
		}
	}
}

// Two bookings that pass the overlap check never share a fully booked day.
func TestNonConflictingBookingsNeverShareFullyBookedDay(t *testing.T) {
	base := day("2025-01-01")
	var ranges []domain.DateRange
	for s := 0; s < 8; s++ {
		for l := 1; l <= 4; l++ {
			ranges = append(ranges, domain.DateRange{Start: base.AddDate(0, 0, s), End: base.AddDate(0, 0, s+l)})
		}
	}
	for i, a := range ranges {
		for j, b := range ranges {
			if i == j {
				continue
			}
			bb := domain.Booking{ID: "b", Start: b.Start, End: b.End, Status: domain.StatusConfirmed}
			ok, _, err := availability.CheckOverlap(a, []domain.Booking{bb})
			if err != nil || !ok {
				continue
			}
			ab := domain.Booking{ID: "a", Start: a.Start, End: a.End, Status: domain.StatusConfirmed}
			for d := base; d.Before(base.AddDate(0, 0, 14)); d = d.AddDate(0, 0, 1) {
				fa := availability.Classify(d, []domain.Booking{ab}) == availability.FullyBooked
				fb := availability.Classify(d, []domain.Booking{bb}) == availability.FullyBooked
				if fa && fb {
					t.Fatalf("day %s fully booked by both %v and %v", d.Format(domain.DateLayout), a, b)
				}
			}
		}
	}
}

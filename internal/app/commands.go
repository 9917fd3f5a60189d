package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"guestflat/internal/adapters/observability"
	"guestflat/internal/availability"
	"guestflat/internal/domain"
	"guestflat/internal/pricing"
)

type ReserveRequest struct {
	ResidentID int64
	Start      time.Time
	End        time.Time
	Parking    bool
}

type BookingService struct {
	repo    domain.BookingRepository
	cache   domain.Cache
	pricing *pricing.Engine

	now   func() time.Time
	newID func() domain.BookingID
}

func NewBookingService(r domain.BookingRepository, c domain.Cache, e *pricing.Engine) *BookingService {
	return &BookingService{
		repo:    r,
		cache:   c,
		pricing: e,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() domain.BookingID { return domain.BookingID(uuid.NewString()) },
	}
}

// Reserve books the apartment for [Start, End). The snapshot check gives a
// fast, precise conflict answer; the store repeats it atomically on insert.
func (s *BookingService) Reserve(ctx context.Context, req ReserveRequest) (BookingView, error) {
	if req.ResidentID <= 0 {
		observability.ObserveBooking("invalid")
		return BookingView{}, &domain.ValidationError{Field: "resident_id", Reason: "must be positive"}
	}
	r, err := domain.NewDateRange(req.Start, req.End)
	if err != nil {
		observability.ObserveBooking("invalid")
		return BookingView{}, err
	}

	snapshot, err := s.repo.ListActive(ctx, r.Start, r.End)
	if err != nil {
		observability.ObserveBooking("error")
		return BookingView{}, fmt.Errorf("load bookings: %w", err)
	}
	if err := availability.Validate(r, snapshot); err != nil {
		return BookingView{}, s.rejected(req, err)
	}

	b := domain.Booking{
		ID:         s.newID(),
		ResidentID: req.ResidentID,
		Start:      r.Start,
		End:        r.End,
		Parking:    req.Parking,
		Status:     domain.StatusConfirmed,
		CreatedAt:  s.now(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		if domain.IsConflict(err) || domain.IsValidation(err) {
			return BookingView{}, s.rejected(req, err)
		}
		observability.ObserveBooking("error")
		return BookingView{}, fmt.Errorf("create booking: %w", err)
	}

	s.invalidateCalendar(ctx, r)
	observability.ObserveBooking("created")
	price := s.pricing.PriceBooking(b)
	log.Info().
		Str("booking_id", string(b.ID)).
		Int64("resident_id", b.ResidentID).
		Str("start", r.Start.Format(domain.DateLayout)).
		Str("end", r.End.Format(domain.DateLayout)).
		Str("total", price.Total.String()).
		Msg("booking created")
	return mapBooking(b, &price), nil
}

func (s *BookingService) rejected(req ReserveRequest, err error) error {
	var ce *domain.ConflictError
	if errors.As(err, &ce) {
		observability.ObserveBooking("conflict")
		log.Info().
			Int64("resident_id", req.ResidentID).
			Int("conflicts", len(ce.IDs)).
			Msg("booking rejected: range taken")
		return err
	}
	observability.ObserveBooking("invalid")
	return err
}

// Cancel frees a booking's range. Cancelled bookings stay in the store.
func (s *BookingService) Cancel(ctx context.Context, id domain.BookingID) error {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Cancel(ctx, id); err != nil {
		return err
	}
	s.invalidateCalendar(ctx, b.Range())
	observability.ObserveBooking("cancelled")
	log.Info().Str("booking_id", string(id)).Msg("booking cancelled")
	return nil
}

func (s *BookingService) invalidateCalendar(ctx context.Context, r domain.DateRange) {
	if s.cache == nil {
		return
	}
	for _, m := range touchedMonths(r) {
		if err := s.cache.Del(ctx, calendarKey(m.Year(), m.Month())); err != nil {
			log.Warn().Err(err).Str("month", m.Format("2006-01")).Msg("calendar cache invalidation failed")
		}
	}
}

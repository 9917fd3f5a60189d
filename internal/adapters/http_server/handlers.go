package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"guestflat/internal/adapters/export"
	"guestflat/internal/app"
	"guestflat/internal/domain"
	"guestflat/internal/selection"
)

type Handlers struct {
	Q *app.QueryService
	B *app.BookingService
}

type problem struct {
	Type      string             `json:"type"`
	Title     string             `json:"title"`
	Status    int                `json:"status"`
	Detail    string             `json:"detail,omitempty"`
	Conflicts []domain.BookingID `json:"conflicts,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/availability", h.availability)
	s.mux.Get("/v1/calendar/{year}/{month}", h.calendar)
	s.mux.Post("/v1/selection/click", h.click)
	s.mux.Get("/v1/quote", h.quote)
	s.mux.Post("/v1/bookings", h.createBooking)
	s.mux.Get("/v1/bookings/{id}", h.getBooking)
	s.mux.Delete("/v1/bookings/{id}", h.cancelBooking)
}

// MountAdmin adds the reporting routes behind the admin role.
func (s *Server) MountAdmin(h *Handlers, jwtSecret []byte) {
	s.mux.Route("/v1/admin", func(r chi.Router) {
		r.Use(RequireRole(jwtSecret, RoleAdmin))
		r.Get("/months", h.months)
		r.Get("/summary", h.summary)
		r.Get("/report", h.report)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *domain.ValidationError
		ce *domain.ConflictError
	)
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Invalid "+ve.Field, ve.Reason)
	case errors.As(err, &ce):
		writeProblemBody(w, problem{
			Type: "about:blank", Title: "Conflict", Status: http.StatusConflict,
			Detail: "the apartment is already booked for part of this range", Conflicts: ce.IDs,
		})
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "")
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func rangeParams(r *http.Request, startKey, endKey string) (time.Time, time.Time, error) {
	q := r.URL.Query()
	start, err := domain.ParseDay(q.Get(startKey))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := domain.ParseDay(q.Get(endKey))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func yearParam(r *http.Request) (int, error) {
	s := r.URL.Query().Get("year")
	if s == "" {
		return time.Now().UTC().Year(), nil
	}
	y, err := strconv.Atoi(s)
	if err != nil || y < 1970 || y > 9999 {
		return 0, &domain.ValidationError{Field: "year", Reason: "must be a four digit year"}
	}
	return y, nil
}

func (h *Handlers) availability(w http.ResponseWriter, r *http.Request) {
	start, end, err := rangeParams(r, "start", "end")
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.Availability(r.Context(), start, end)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) calendar(w http.ResponseWriter, r *http.Request) {
	year, yerr := strconv.Atoi(chi.URLParam(r, "year"))
	month, merr := strconv.Atoi(chi.URLParam(r, "month"))
	if yerr != nil || merr != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid month", "year and month must be numbers")
		return
	}
	out, err := h.Q.Calendar(r.Context(), year, time.Month(month))
	if err != nil {
		writeError(w, r, err)
		return
	}

	etag, body := calcETagAndBody(out)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write calendar body")
	}
}

type clickRequest struct {
	State string `json:"state"`
	Start string `json:"start"`
	End   string `json:"end"`
	Day   string `json:"day"`
}

type clickResponse struct {
	State    selection.State `json:"state"`
	Start    string          `json:"start,omitempty"`
	End      string          `json:"end,omitempty"`
	Bookable bool            `json:"bookable"`
}

func optionalDay(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return domain.ParseDay(s)
}

func (h *Handlers) click(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	d, err := domain.ParseDay(req.Day)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st := selection.State(req.State)
	if req.State == "" {
		st = selection.Empty
	}
	if !st.Valid() {
		writeProblem(w, http.StatusBadRequest, "Invalid state", "state must be empty, start_selected or complete")
		return
	}
	start, err := optionalDay(req.Start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := optionalDay(req.End)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if st == selection.StartSelected && start.IsZero() {
		writeProblem(w, http.StatusBadRequest, "Invalid selection", "start is required in start_selected")
		return
	}

	next := selection.Click(selection.Selection{State: st, Start: start, End: end}, d)
	out := clickResponse{State: next.State}
	if !next.Start.IsZero() {
		out.Start = next.Start.Format(domain.DateLayout)
	}
	if rg, ok := next.Range(); ok {
		out.End = rg.End.Format(domain.DateLayout)
		out.Bookable = rg.Validate() == nil
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) quote(w http.ResponseWriter, r *http.Request) {
	start, end, err := rangeParams(r, "start", "end")
	if err != nil {
		writeError(w, r, err)
		return
	}
	parking, _ := strconv.ParseBool(r.URL.Query().Get("parking"))
	out, err := h.Q.Quote(start, end, parking)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

type bookingRequest struct {
	ResidentID int64  `json:"resident_id"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Parking    bool   `json:"parking"`
}

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	start, err := domain.ParseDay(req.Start)
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := domain.ParseDay(req.End)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.B.Reserve(r.Context(), app.ReserveRequest{ResidentID: req.ResidentID, Start: start, End: end, Parking: req.Parking})
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/bookings/"+out.ID)
	writeJSON(w, http.StatusCreated, out)
}

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	out, err := h.Q.Booking(r.Context(), domain.BookingID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) cancelBooking(w http.ResponseWriter, r *http.Request) {
	if err := h.B.Cancel(r.Context(), domain.BookingID(chi.URLParam(r, "id"))); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) months(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.MonthlyStatus(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) summary(w http.ResponseWriter, r *http.Request) {
	year, err := yearParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out, err := h.Q.YearSummary(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handlers) report(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	from, to, err := rangeParams(r, "from", "to")
	if err != nil {
		writeError(w, r, err)
		return
	}
	rep, err := h.Q.ApartmentReport(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := export.Render(format, export.Document{
		Title:      "Guest apartment report",
		From:       rep.From,
		To:         rep.To,
		Rows:       rep.Rows,
		GrandTotal: rep.GrandTotal,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	if format != export.FormatJSON {
		name := fmt.Sprintf("report-%s-%s.%s", rep.From, rep.To, format.Ext())
		w.Header().Set("Content-Disposition", `attachment; filename="`+strings.ReplaceAll(name, `"`, "")+`"`)
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write report body")
	}
}

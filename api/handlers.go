/*
handlers.go - HTTP handlers for the booking engine

PURPOSE:
  Exposes the engine over REST. Handlers parse and validate the wire
  format, call the store/engine, and serialize the outcome. No booking
  rule lives here.

ENDPOINTS:
  Reservations:
    POST   /api/reservations                  evaluate + book
    GET    /api/reservations?date=YYYY-MM-DD  list a day
    GET    /api/reservations/{id}             fetch one
    POST   /api/reservations/{id}/status      staff status transition

  Tables:
    GET    /api/reservations/{id}/tables/blocked  blocked table IDs
    PUT    /api/reservations/{id}/tables          assign or clear a table
    GET    /api/tables                            list tables
    POST   /api/tables                            create a table

  Dashboards:
    GET    /api/timeline?date=...             15-minute + hourly occupancy
    GET    /api/availability?date=...         bookable slots for a date

  Configuration:
    GET/PUT /api/settings                     policy configuration
    GET/PUT /api/opening-hours                weekly schedule
    GET/POST /api/special-days                special opening days

ERROR HANDLING:
  - 400: malformed input (bad date/time strings, unknown enum values)
  - 404: missing reservation/table
  - 409: table-assignment conflict
  - 422: admission rejected; body carries the structured reasons
  - 500: store faults and configuration faults (curated message only,
         details go to the log, never to the client)

SEE ALSO:
  - dto.go: request/response shapes
  - server.go: router and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/terrazza/booking-engine/booking"
	"github.com/terrazza/booking-engine/factory"
	"github.com/terrazza/booking-engine/store/sqlite"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	Store *sqlite.Store
	Log   zerolog.Logger

	// Now supplies the venue-local current time; injectable for tests.
	Now func() time.Time
}

// NewHandler creates a handler around the given store.
func NewHandler(store *sqlite.Store, log zerolog.Logger) *Handler {
	return &Handler{Store: store, Log: log, Now: time.Now}
}

// =============================================================================
// RESERVATION HANDLERS
// =============================================================================

// CreateReservation runs admission control and persists the reservation on
// acceptance. Rejections return 422 with the structured reasons.
func (h *Handler) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cand := booking.Candidate{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		PartySize: req.PartySize,
		Notes:     req.Notes,
	}

	if req.Date != "" {
		d, err := booking.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
			return
		}
		cand.Date = d
	}
	if req.Time != "" {
		t, err := booking.ParseClockTime(req.Time)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid time format (use HH:MM)", err)
			return
		}
		cand.Time = t
	}

	cand.Preference = booking.SeatingPreference(req.SeatingPreference)
	if req.SeatingPreference == "" {
		cand.Preference = booking.PrefNone
	}
	if !cand.Preference.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown seating preference", nil)
		return
	}

	source := booking.SourceOnline
	if req.Source != "" {
		source = booking.Source(req.Source)
	}

	decision, res, err := h.Store.Book(r.Context(), cand, source, h.Now())
	if err != nil {
		h.writeFault(w, r, "booking failed", err)
		return
	}

	if decision.Rejected() {
		writeJSON(w, http.StatusUnprocessableEntity, DecisionDTO{Accepted: false, Reasons: decision.Reasons})
		return
	}

	dto := toReservationDTO(*res)
	writeJSON(w, http.StatusCreated, DecisionDTO{Accepted: true, Reservation: &dto})
}

// ListReservations returns the reservations for one date, optionally
// filtered by status.
func (h *Handler) ListReservations(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}
	reservations, err := h.Store.ListReservationsByDate(r.Context(), date)
	if err != nil {
		h.writeFault(w, r, "failed to list reservations", err)
		return
	}

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := booking.Status(raw)
		if !status.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown status", nil)
			return
		}
		filtered := reservations[:0]
		for _, res := range reservations {
			if res.Status == status {
				filtered = append(filtered, res)
			}
		}
		reservations = filtered
	}

	writeJSON(w, http.StatusOK, toReservationDTOs(reservations))
}

// GetReservation returns a single reservation.
func (h *Handler) GetReservation(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadReservation(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(res))
}

// UpdateReservationStatus applies a staff status transition.
func (h *Handler) UpdateReservationStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status := booking.Status(req.Status)
	if !status.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown status", nil)
		return
	}

	id := booking.ReservationID(chi.URLParam(r, "id"))
	if err := h.Store.UpdateReservationStatus(r.Context(), id, status); err != nil {
		if booking.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Reservation not found", nil)
			return
		}
		h.writeFault(w, r, "failed to update status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": string(id), "status": string(status)})
}

// =============================================================================
// TABLE ASSIGNMENT HANDLERS
// =============================================================================

// BlockedTables returns the table IDs unavailable to a reservation due to
// overlapping assignments.
func (h *Handler) BlockedTables(w http.ResponseWriter, r *http.Request) {
	res, ok := h.loadReservation(w, r)
	if !ok {
		return
	}
	blocked, ok := h.blockedFor(w, r, res)
	if !ok {
		return
	}

	ids := make([]string, 0, len(blocked))
	for _, id := range blocked.IDs() {
		ids = append(ids, string(id))
	}
	writeJSON(w, http.StatusOK, BlockedTablesDTO{ReservationID: string(res.ID), BlockedIDs: ids})
}

// AssignTable assigns a single table to a reservation, or clears the
// assignment when table_id is empty. Conflicts return 409.
func (h *Handler) AssignTable(w http.ResponseWriter, r *http.Request) {
	var req AssignTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, ok := h.loadReservation(w, r)
	if !ok {
		return
	}

	if req.TableID == "" {
		booking.ClearTables(&res)
		if err := h.Store.SetReservationTables(r.Context(), res.ID, nil); err != nil {
			h.writeFault(w, r, "failed to clear table assignment", err)
			return
		}
		writeJSON(w, http.StatusOK, toReservationDTO(res))
		return
	}

	table, err := h.Store.GetTable(r.Context(), booking.TableID(req.TableID))
	if err != nil {
		if booking.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Table not found", nil)
			return
		}
		h.writeFault(w, r, "failed to load table", err)
		return
	}

	blocked, ok := h.blockedFor(w, r, res)
	if !ok {
		return
	}

	if err := booking.AssignTable(&res, table, blocked); err != nil {
		if booking.IsConflict(err) {
			writeError(w, http.StatusConflict, "Table is already in use for an overlapping reservation", nil)
			return
		}
		h.writeFault(w, r, "failed to assign table", err)
		return
	}

	tableIDs := make([]booking.TableID, len(res.Tables))
	for i, t := range res.Tables {
		tableIDs[i] = t.ID
	}
	if err := h.Store.SetReservationTables(r.Context(), res.ID, tableIDs); err != nil {
		h.writeFault(w, r, "failed to persist table assignment", err)
		return
	}
	writeJSON(w, http.StatusOK, toReservationDTO(res))
}

// blockedFor computes the blocked-table set for a reservation.
func (h *Handler) blockedFor(w http.ResponseWriter, r *http.Request, res booking.Reservation) (booking.TableSet, bool) {
	policy, err := h.Store.LoadPolicy(r.Context())
	if err != nil {
		h.writeFault(w, r, "failed to load policy", err)
		return nil, false
	}
	others, err := h.Store.ListReservationsByDate(r.Context(), res.Date)
	if err != nil {
		h.writeFault(w, r, "failed to list reservations", err)
		return nil, false
	}
	return booking.BlockedTables(res, others, policy.Dwell()), true
}

// =============================================================================
// TABLE CONFIGURATION HANDLERS
// =============================================================================

// ListTables returns all tables; pass ?active=true for active only.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") == "true"
	tables, err := h.Store.ListTables(r.Context(), activeOnly)
	if err != nil {
		h.writeFault(w, r, "failed to list tables", err)
		return
	}
	dtos := toTableDTOs(tables)
	if dtos == nil {
		dtos = []TableDTO{}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTable creates a physical table.
func (h *Handler) CreateTable(w http.ResponseWriter, r *http.Request) {
	var req CreateTableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Label == "" || req.Capacity <= 0 {
		writeError(w, http.StatusBadRequest, "Table needs a label and a positive capacity", nil)
		return
	}
	area := booking.Area(req.Area)
	if area != booking.AreaIndoor && area != booking.AreaOutdoor {
		writeError(w, http.StatusBadRequest, "Area must be INDOOR or OUTDOOR", nil)
		return
	}

	t := booking.Table{
		ID:       booking.TableID(uuid.NewString()),
		Label:    req.Label,
		Capacity: req.Capacity,
		Area:     area,
		Active:   true,
	}
	if req.Active != nil {
		t.Active = *req.Active
	}
	if err := h.Store.SaveTable(r.Context(), t); err != nil {
		h.writeFault(w, r, "failed to save table", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTableDTO(t))
}

// =============================================================================
// DASHBOARD HANDLERS
// =============================================================================

// Timeline returns the occupancy timeline for a date.
func (h *Handler) Timeline(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}
	policy, err := h.Store.LoadPolicy(r.Context())
	if err != nil {
		h.writeFault(w, r, "failed to load policy", err)
		return
	}
	reservations, err := h.Store.ListReservationsByDate(r.Context(), date)
	if err != nil {
		h.writeFault(w, r, "failed to list reservations", err)
		return
	}

	tl := booking.BuildTimeline(date, reservations, policy.Dwell(),
		policy.IndoorCapacity, policy.OutdoorCapacity, h.Now())
	writeJSON(w, http.StatusOK, toTimelineDTO(tl))
}

// Availability returns the bookable start times for a date.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	date, ok := h.dateParam(w, r, "date")
	if !ok {
		return
	}
	cal, err := h.Store.LoadCalendar(r.Context())
	if err != nil {
		h.writeFault(w, r, "failed to load calendar", err)
		return
	}

	slots := cal.BookableSlots(date, 15*time.Minute)
	dto := AvailabilityDTO{Date: date.String(), Open: len(slots) > 0}
	for _, s := range slots {
		dto.Slots = append(dto.Slots, s.String())
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// CONFIGURATION HANDLERS
// =============================================================================

// GetSettings returns the effective policy configuration, defaults applied.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	policy, err := h.Store.LoadPolicy(r.Context())
	if err != nil {
		h.writeFault(w, r, "failed to load settings", err)
		return
	}
	raw, err := factory.ToJSON(policy)
	if err != nil {
		h.writeFault(w, r, "failed to serialize settings", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(raw))
}

// UpdateSettings validates and stores a new policy configuration.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var pj SettingsDTO
	if err := json.NewDecoder(r.Body).Decode(&pj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	cfg := factory.FromJSON(pj)
	if err := cfg.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Settings violate configuration invariants", err)
		return
	}
	raw, err := factory.ToJSON(cfg)
	if err != nil {
		h.writeFault(w, r, "failed to serialize settings", err)
		return
	}
	if err := h.Store.SaveSettingsJSON(r.Context(), raw); err != nil {
		h.writeFault(w, r, "failed to save settings", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(raw))
}

// GetOpeningHours returns the weekly schedule.
func (h *Handler) GetOpeningHours(w http.ResponseWriter, r *http.Request) {
	hours, err := h.Store.ListOpeningHours(r.Context())
	if err != nil {
		h.writeFault(w, r, "failed to list opening hours", err)
		return
	}
	dtos := make([]OpeningHoursDTO, len(hours))
	for i, oh := range hours {
		dtos[i] = toOpeningHoursDTO(oh)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PutOpeningHours replaces the rules for the posted weekdays.
func (h *Handler) PutOpeningHours(w http.ResponseWriter, r *http.Request) {
	var dtos []OpeningHoursDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	for _, dto := range dtos {
		if dto.Weekday < 0 || dto.Weekday > 6 {
			writeError(w, http.StatusBadRequest, "Weekday must be 0-6", nil)
			return
		}
		oh := booking.OpeningHours{Weekday: time.Weekday(dto.Weekday), Open: dto.Open}
		var err error
		if dto.OpenTime != "" {
			if oh.OpenTime, err = booking.ParseClockTime(dto.OpenTime); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid open_time", err)
				return
			}
		}
		if dto.CloseTime != "" {
			if oh.CloseTime, err = booking.ParseClockTime(dto.CloseTime); err != nil {
				writeError(w, http.StatusBadRequest, "Invalid close_time", err)
				return
			}
		}
		if dto.LastReservationTime != nil {
			ct, err := booking.ParseClockTime(*dto.LastReservationTime)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid last_reservation_time", err)
				return
			}
			oh.LastReservationTime = &ct
		}
		if err := h.Store.UpsertOpeningHours(r.Context(), oh); err != nil {
			h.writeFault(w, r, "failed to save opening hours", err)
			return
		}
	}
	h.GetOpeningHours(w, r)
}

// ListSpecialDays returns all special opening days.
func (h *Handler) ListSpecialDays(w http.ResponseWriter, r *http.Request) {
	days, err := h.Store.ListSpecialDays(r.Context())
	if err != nil {
		h.writeFault(w, r, "failed to list special days", err)
		return
	}
	dtos := make([]SpecialDayDTO, len(days))
	for i, sd := range days {
		dtos[i] = toSpecialDayDTO(sd)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateSpecialDay creates or replaces a special opening day.
func (h *Handler) CreateSpecialDay(w http.ResponseWriter, r *http.Request) {
	var dto SpecialDayDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sd := booking.SpecialOpeningDay{Open: dto.Open, PublicMessage: dto.PublicMessage}
	var err error
	if sd.Date, err = booking.ParseDate(dto.Date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if dto.BookingsOpenFrom != "" {
		if sd.BookingsOpenFrom, err = booking.ParseDate(dto.BookingsOpenFrom); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid bookings_open_from", err)
			return
		}
	}
	if sd.OpenTime, err = parseClockPtr(dto.OpenTime); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid open_time", err)
		return
	}
	if sd.CloseTime, err = parseClockPtr(dto.CloseTime); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid close_time", err)
		return
	}
	if sd.LastReservationTime, err = parseClockPtr(dto.LastReservationTime); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid last_reservation_time", err)
		return
	}

	if err := h.Store.UpsertSpecialDay(r.Context(), sd); err != nil {
		h.writeFault(w, r, "failed to save special day", err)
		return
	}
	writeJSON(w, http.StatusCreated, toSpecialDayDTO(sd))
}

// =============================================================================
// HELPERS
// =============================================================================

// loadReservation reads the {id} route parameter and fetches the record.
func (h *Handler) loadReservation(w http.ResponseWriter, r *http.Request) (booking.Reservation, bool) {
	id := booking.ReservationID(chi.URLParam(r, "id"))
	res, err := h.Store.GetReservation(r.Context(), id)
	if err != nil {
		if booking.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "Reservation not found", nil)
			return booking.Reservation{}, false
		}
		h.writeFault(w, r, "failed to load reservation", err)
		return booking.Reservation{}, false
	}
	return res, true
}

// dateParam parses a required YYYY-MM-DD query parameter.
func (h *Handler) dateParam(w http.ResponseWriter, r *http.Request, name string) (booking.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Missing required query parameter: "+name, nil)
		return booking.Date{}, false
	}
	d, err := booking.ParseDate(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return booking.Date{}, false
	}
	return d, true
}

// parseClockPtr parses an optional HH:MM string.
func parseClockPtr(s *string) (*booking.ClockTime, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	ct, err := booking.ParseClockTime(*s)
	if err != nil {
		return nil, err
	}
	return &ct, nil
}

// writeFault logs the full error and returns a curated message. Config
// faults in particular must never reach end users verbatim.
func (h *Handler) writeFault(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.Log.Error().Err(err).Str("path", r.URL.Path).Msg(msg)
	if errors.Is(err, booking.ErrInvalidPolicy) {
		writeError(w, http.StatusInternalServerError,
			"The venue configuration is invalid; bookings are paused until staff correct it.", nil)
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error", nil)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

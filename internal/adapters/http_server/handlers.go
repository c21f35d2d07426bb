// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staybook/internal/adapters/observability"
	"staybook/internal/app"
	"staybook/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	B *app.BookingService
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/listings", h.searchListings)
	s.mux.Get("/v1/listings/{id}", h.getListing)
	s.mux.Get("/v1/listings/{id}/availability", h.getAvailability)

	s.mux.Group(func(r chi.Router) {
		r.Use(RequireUser)
		r.Post("/v1/reservations", h.createReservation)
		r.Get("/v1/reservations", h.listReservations)
		r.Post("/v1/reservations/{id}/cancel", h.cancelReservation)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the domain taxonomy onto status codes. Anything not in
// the taxonomy is a 500 and the underlying fault is never masked as an
// empty result.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", ve.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeProblem(w, http.StatusConflict, "Booking Conflict", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
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

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// ---- response shapes (dates as YYYY-MM-DD, prices in minor units) ----

type listingResponse struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Location      string   `json:"location"`
	PricePerNight int64    `json:"price_per_night"`
	Rating        float64  `json:"rating"`
	ReviewCount   int      `json:"review_count"`
	Images        []string `json:"images,omitempty"`
	HostName      string   `json:"host_name"`
	HostAvatar    *string  `json:"host_avatar,omitempty"`
	Superhost     bool     `json:"is_superhost"`
	Amenities     []string `json:"amenities,omitempty"`
	Description   *string  `json:"description,omitempty"`
	PropertyType  string   `json:"property_type"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	Guests        int      `json:"guests"`
	Lat           *float64 `json:"latitude,omitempty"`
	Lon           *float64 `json:"longitude,omitempty"`
}

func toListingResponse(l domain.Listing) listingResponse {
	return listingResponse{
		ID:            l.ID,
		Title:         l.Title,
		Location:      l.Location,
		PricePerNight: l.PricePerNight,
		Rating:        l.Rating,
		ReviewCount:   l.ReviewCount,
		Images:        l.Images,
		HostName:      l.HostName,
		HostAvatar:    l.HostAvatar,
		Superhost:     l.Superhost,
		Amenities:     l.Amenities,
		Description:   l.Description,
		PropertyType:  l.PropertyType,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		Guests:        l.Guests,
		Lat:           l.Lat,
		Lon:           l.Lon,
	}
}

type reservationResponse struct {
	ID         int64  `json:"id"`
	ListingID  int64  `json:"listing_id"`
	UserID     string `json:"user_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	GuestCount int    `json:"guest_count"`
	Status     string `json:"status"`
	TotalPrice int64  `json:"total_price"`
	CreatedAt  string `json:"created_at"`

	// present on the per-user listing only
	ListingTitle    string   `json:"listing_title,omitempty"`
	ListingLocation string   `json:"listing_location,omitempty"`
	ListingImages   []string `json:"listing_images,omitempty"`
	HostName        string   `json:"host_name,omitempty"`
}

func toReservationResponse(r domain.Reservation) reservationResponse {
	return reservationResponse{
		ID:         r.ID,
		ListingID:  r.ListingID,
		UserID:     r.UserID,
		CheckIn:    r.Stay.CheckIn.Format(domain.DayFormat),
		CheckOut:   r.Stay.CheckOut.Format(domain.DayFormat),
		GuestCount: r.GuestCount,
		Status:     string(r.Status),
		TotalPrice: r.TotalPrice,
		CreatedAt:  r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ---- read handlers ----

func parseStay(r *http.Request) (*domain.DateRange, error) {
	in := r.URL.Query().Get("check_in")
	out := r.URL.Query().Get("check_out")
	if in == "" && out == "" {
		return nil, nil
	}
	if in == "" || out == "" {
		return nil, &domain.ValidationError{Field: "check_in", Reason: "check_in and check_out must be supplied together"}
	}
	stay, err := domain.ParseDateRange(in, out)
	if err != nil {
		return nil, err
	}
	return &stay, nil
}

func (h *Handlers) searchListings(w http.ResponseWriter, r *http.Request) {
	q := domain.SearchQuery{
		Location: r.URL.Query().Get("location"),
		Sort:     domain.SortOption(r.URL.Query().Get("sort")),
	}

	if gs := r.URL.Query().Get("guests"); gs != "" {
		g, err := strconv.Atoi(gs)
		if err != nil || g < 1 {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "guests must be a positive integer")
			return
		}
		q.Guests = g
	}
	if as := r.URL.Query().Get("amenities"); as != "" {
		for _, a := range strings.Split(as, ",") {
			if a = strings.TrimSpace(a); a != "" {
				q.Amenities = append(q.Amenities, a)
			}
		}
	}
	if ls := r.URL.Query().Get("limit"); ls != "" {
		l, err := strconv.Atoi(ls)
		if err != nil || l <= 0 || l > 200 {
			writeProblem(w, http.StatusBadRequest, "Invalid Request", "limit must be an integer between 1 and 200")
			return
		}
		q.Limit = l
	}
	stay, err := parseStay(r)
	if err != nil {
		writeError(w, err)
		return
	}
	q.Stay = stay

	listings, err := h.Q.Search(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]listingResponse, 0, len(listings))
	for _, l := range listings {
		out = append(out, toListingResponse(l))
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	l, err := h.Q.GetListing(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	etag, body := calcETagAndBody(toListingResponse(l))
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write getListing body")
	}
}

func (h *Handlers) getAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	stay, err := parseStay(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if stay == nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "check_in and check_out are required")
		return
	}

	ok, err := h.Q.IsAvailable(r.Context(), id, *stay)
	if err != nil {
		observability.ObserveAvailability("error")
		writeError(w, err)
		return
	}
	if ok {
		observability.ObserveAvailability("available")
	} else {
		observability.ObserveAvailability("unavailable")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"listing_id": id,
		"check_in":   stay.CheckIn.Format(domain.DayFormat),
		"check_out":  stay.CheckOut.Format(domain.DayFormat),
		"available":  ok,
	})
}

// ---- write handlers ----

type createReservationRequest struct {
	ListingID  int64  `json:"listing_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	GuestCount int    `json:"guest_count"`
}

func (h *Handlers) createReservation(w http.ResponseWriter, r *http.Request) {
	var req createReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	stay, err := domain.ParseDateRange(req.CheckIn, req.CheckOut)
	if err != nil {
		observability.ObserveReservation("invalid")
		writeError(w, err)
		return
	}

	res, err := h.B.Reserve(r.Context(), userID(r), req.ListingID, stay, req.GuestCount)
	if err != nil {
		switch {
		case domain.IsValidation(err):
			observability.ObserveReservation("invalid")
		case errors.Is(err, domain.ErrConflict):
			observability.ObserveReservation("conflict")
		default:
			observability.ObserveReservation("error")
		}
		writeError(w, err)
		return
	}
	observability.ObserveReservation("confirmed")
	writeJSON(w, http.StatusCreated, toReservationResponse(res))
}

func (h *Handlers) listReservations(w http.ResponseWriter, r *http.Request) {
	rs, err := h.B.ListUserReservations(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]reservationResponse, 0, len(rs))
	for _, ur := range rs {
		resp := toReservationResponse(ur.Reservation)
		resp.ListingTitle = ur.ListingTitle
		resp.ListingLocation = ur.ListingLocation
		resp.ListingImages = ur.ListingImages
		resp.HostName = ur.HostName
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out, "count": len(out)})
}

func (h *Handlers) cancelReservation(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a number")
		return
	}
	if err := h.B.Cancel(r.Context(), id, userID(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

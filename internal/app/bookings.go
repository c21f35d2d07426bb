package app

import (
	"context"

	"staybook/internal/domain"
)

// BookingService is the write side: reservation admission and cancellation.
// It validates up front, but correctness under concurrent callers comes
// from the repository's atomic overlap-check-and-insert, not from any
// in-process lock — the service runs on multiple stateless instances.
type BookingService struct {
	listings     domain.ListingRepository
	reservations domain.ReservationRepository
}

func NewBookingService(l domain.ListingRepository, r domain.ReservationRepository) *BookingService {
	return &BookingService{listings: l, reservations: r}
}

// Reserve admits a booking: full validation, price quote, then a single
// atomic commit. On conflict the caller gets domain.ErrConflict and no
// row is left behind; a retry re-runs everything from scratch.
func (s *BookingService) Reserve(ctx context.Context, userID string, listingID int64, stay domain.DateRange, guests int) (domain.Reservation, error) {
	if userID == "" {
		return domain.Reservation{}, &domain.ValidationError{Field: "user_id", Reason: "required"}
	}
	if !stay.Valid() {
		return domain.Reservation{}, &domain.ValidationError{Field: "check_in", Reason: "check-in must be before check-out"}
	}
	if guests < 1 {
		return domain.Reservation{}, &domain.ValidationError{Field: "guest_count", Reason: "must be at least 1"}
	}

	l, err := s.listings.GetListing(ctx, listingID)
	if err != nil {
		return domain.Reservation{}, err
	}
	if guests > l.Guests {
		return domain.Reservation{}, &domain.ValidationError{Field: "guest_count", Reason: "exceeds listing capacity"}
	}
	if !l.Available {
		return domain.Reservation{}, &domain.ValidationError{Field: "listing_id", Reason: "listing is not open for booking"}
	}

	quote := domain.PriceStay(l.PricePerNight, stay)
	res := domain.Reservation{
		ListingID:  listingID,
		UserID:     userID,
		Stay:       stay,
		GuestCount: guests,
		Status:     domain.StatusPending,
		TotalPrice: quote.Total,
	}
	return s.reservations.CreateReservation(ctx, res)
}

// Cancel flips the caller's reservation to cancelled. The overlap
// predicate is status-scoped, so the dates free up on commit.
func (s *BookingService) Cancel(ctx context.Context, id int64, userID string) error {
	if userID == "" {
		return &domain.ValidationError{Field: "user_id", Reason: "required"}
	}
	return s.reservations.CancelReservation(ctx, id, userID)
}

func (s *BookingService) ListUserReservations(ctx context.Context, userID string) ([]domain.UserReservation, error) {
	if userID == "" {
		return nil, &domain.ValidationError{Field: "user_id", Reason: "required"}
	}
	return s.reservations.ListUserReservations(ctx, userID)
}

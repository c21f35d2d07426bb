package domain

import "context"

type ListingRepository interface {
	// Write path (ingestor only; the serving core never mutates listings)
	UpsertListing(ctx context.Context, l Listing) error

	// Read paths
	GetListing(ctx context.Context, id int64) (Listing, error)
	SearchListings(ctx context.Context, q SearchQuery) ([]Listing, error)
}

type ReservationRepository interface {
	// HasOverlap evaluates the half-open overlap predicate against
	// confirmed reservations for one listing, inside the store.
	HasOverlap(ctx context.Context, listingID int64, stay DateRange) (bool, error)

	// CreateReservation re-checks overlap and inserts as one atomic unit.
	// Returns ErrConflict when an overlapping confirmed reservation exists
	// at commit time; on conflict no row is left behind.
	CreateReservation(ctx context.Context, r Reservation) (Reservation, error)

	// CancelReservation flips the caller's reservation to cancelled.
	// Terminal: a cancelled reservation never re-enters confirmed.
	CancelReservation(ctx context.Context, id int64, userID string) error

	ListUserReservations(ctx context.Context, userID string) ([]UserReservation, error)
}

// FeedClient pulls listing payloads from the external partner feed.
type FeedClient interface {
	ListIDs(ctx context.Context) ([]int64, error)
	GetListing(ctx context.Context, id int64) (map[string]any, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

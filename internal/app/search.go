package app

import (
	"context"
	"fmt"
	"time"

	"staybook/internal/domain"
)

// QueryService is the read side: listing detail, search, availability.
// Only the listing detail is cached; search and availability always hit
// the store so admission never races a stale exclusion.
type QueryService struct {
	listings     domain.ListingRepository
	reservations domain.ReservationRepository
	cache        domain.Cache
	cacheTTL     time.Duration
}

func NewQueryService(l domain.ListingRepository, r domain.ReservationRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{listings: l, reservations: r, cache: c, cacheTTL: ttl}
}

func listingKey(id int64) string { return fmt.Sprintf("listing:%d", id) }

func (s *QueryService) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	key := listingKey(id)
	var l domain.Listing
	if ok, _ := s.cache.Get(ctx, key, &l); ok {
		return l, nil
	}
	l, err := s.listings.GetListing(ctx, id)
	if err != nil {
		return domain.Listing{}, err
	}
	_ = s.cache.Set(ctx, key, l, int(s.cacheTTL.Seconds()))
	return l, nil
}

// Search applies every predicate at the query boundary and returns an
// empty slice (not an error) when nothing matches.
func (s *QueryService) Search(ctx context.Context, q domain.SearchQuery) ([]domain.Listing, error) {
	if !domain.ValidSort(q.Sort) {
		return nil, &domain.ValidationError{Field: "sort", Reason: "unknown sort option"}
	}
	if q.Stay != nil && !q.Stay.Valid() {
		return nil, &domain.ValidationError{Field: "check_in", Reason: "check-in must be before check-out"}
	}
	return s.listings.SearchListings(ctx, q)
}

// IsAvailable reports whether the listing is free for the half-open stay.
// Unknown listings are a NotFound error, never a boolean.
func (s *QueryService) IsAvailable(ctx context.Context, listingID int64, stay domain.DateRange) (bool, error) {
	if !stay.Valid() {
		return false, &domain.ValidationError{Field: "check_in", Reason: "check-in must be before check-out"}
	}
	if _, err := s.GetListing(ctx, listingID); err != nil {
		return false, err
	}
	overlap, err := s.reservations.HasOverlap(ctx, listingID, stay)
	if err != nil {
		return false, err
	}
	return !overlap, nil
}

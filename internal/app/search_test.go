package app_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"staybook/internal/app"
	"staybook/internal/domain"
)

// ---- fakes ----

// hits is atomic: the admission tests hammer GetListing from many
// goroutines at once.
type fakeListings struct {
	byID map[int64]domain.Listing
	hits atomic.Int64
}

func (f *fakeListings) UpsertListing(ctx context.Context, l domain.Listing) error {
	if f.byID == nil {
		f.byID = map[int64]domain.Listing{}
	}
	f.byID[l.ID] = l
	return nil
}

func (f *fakeListings) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	f.hits.Add(1)
	l, ok := f.byID[id]
	if !ok {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, nil
}

func (f *fakeListings) SearchListings(ctx context.Context, q domain.SearchQuery) ([]domain.Listing, error) {
	out := []domain.Listing{}
	for _, l := range f.byID {
		if !l.Available {
			continue
		}
		if q.Guests > 0 && l.Guests < q.Guests {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// fakeReservations admits atomically under a mutex, mirroring the
// store-side transaction contract of the real repository.
type fakeReservations struct {
	mu     sync.Mutex
	nextID int64
	rows   []domain.Reservation
}

func (f *fakeReservations) overlapLocked(listingID int64, stay domain.DateRange) bool {
	for _, r := range f.rows {
		if r.ListingID == listingID && r.Status == domain.StatusConfirmed && r.Stay.Overlaps(stay) {
			return true
		}
	}
	return false
}

func (f *fakeReservations) HasOverlap(ctx context.Context, listingID int64, stay domain.DateRange) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.overlapLocked(listingID, stay), nil
}

func (f *fakeReservations) CreateReservation(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.overlapLocked(r.ListingID, r.Stay) {
		return domain.Reservation{}, domain.ErrConflict
	}
	f.nextID++
	r.ID = f.nextID
	r.Status = domain.StatusConfirmed
	r.CreatedAt = time.Now()
	f.rows = append(f.rows, r)
	return r, nil
}

func (f *fakeReservations) CancelReservation(ctx context.Context, id int64, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id && r.UserID == userID {
			f.rows[i].Status = domain.StatusCancelled
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeReservations) ListUserReservations(ctx context.Context, userID string) ([]domain.UserReservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.UserReservation{}
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, domain.UserReservation{Reservation: r})
		}
	}
	return out, nil
}

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if c.store == nil {
		return false, nil
	}
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok := dst.(*domain.Listing); ok {
		*d = v.(domain.Listing)
	}
	return true, nil
}
func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}
func (c *fakeCache) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

func seedListing(id int64, guests int, price int64) domain.Listing {
	return domain.Listing{
		ID:            id,
		Title:         "Sea View Flat",
		Location:      "Lisbon, Portugal",
		PricePerNight: price,
		Guests:        guests,
		HostName:      "Marta",
		PropertyType:  "apartment",
		Available:     true,
	}
}

func mustStay(t *testing.T, in, out string) domain.DateRange {
	t.Helper()
	d, err := domain.ParseDateRange(in, out)
	if err != nil {
		t.Fatalf("ParseDateRange: %v", err)
	}
	return d
}

// ---- tests ----

func TestGetListing_CacheMissThenHit(t *testing.T) {
	listings := &fakeListings{byID: map[int64]domain.Listing{7: seedListing(7, 4, 10000)}}
	cache := &fakeCache{}
	q := app.NewQueryService(listings, &fakeReservations{}, cache, 10*time.Minute)

	l, err := q.GetListing(context.Background(), 7)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if l.Title != "Sea View Flat" {
		t.Fatalf("unexpected listing: %+v", l)
	}

	// Mutate repo to prove the second read comes from cache.
	mut := listings.byID[7]
	mut.Title = "SHOULD NOT SEE THIS"
	listings.byID[7] = mut

	l2, err := q.GetListing(context.Background(), 7)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if l2.Title != "Sea View Flat" {
		t.Fatalf("expected cached title, got %s", l2.Title)
	}
	if n := listings.hits.Load(); n != 1 {
		t.Fatalf("expected exactly one repo read, got %d", n)
	}
}

func TestGetListing_NotFound(t *testing.T) {
	q := app.NewQueryService(&fakeListings{}, &fakeReservations{}, &fakeCache{}, time.Minute)
	if _, err := q.GetListing(context.Background(), 404); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	listings := &fakeListings{byID: map[int64]domain.Listing{1: seedListing(1, 4, 10000)}}
	resv := &fakeReservations{}
	q := app.NewQueryService(listings, resv, &fakeCache{}, time.Minute)
	ctx := context.Background()

	if _, err := resv.CreateReservation(ctx, domain.Reservation{
		ListingID: 1, UserID: "u1", Stay: mustStay(t, "2024-03-01", "2024-03-05"), GuestCount: 2,
	}); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	// Back-to-back stay starting on checkout day is free.
	ok, err := q.IsAvailable(ctx, 1, mustStay(t, "2024-03-05", "2024-03-08"))
	if err != nil || !ok {
		t.Fatalf("expected available, got ok=%v err=%v", ok, err)
	}

	// Overlapping stay is not.
	ok, err = q.IsAvailable(ctx, 1, mustStay(t, "2024-03-04", "2024-03-06"))
	if err != nil || ok {
		t.Fatalf("expected unavailable, got ok=%v err=%v", ok, err)
	}

	// Unknown listing is an error, not a boolean.
	if _, err := q.IsAvailable(ctx, 999, mustStay(t, "2024-03-05", "2024-03-08")); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Inverted interval is a validation error.
	if _, err := q.IsAvailable(ctx, 1, mustStay(t, "2024-03-08", "2024-03-05")); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSearch_GuestFilterAndIdempotence(t *testing.T) {
	listings := &fakeListings{byID: map[int64]domain.Listing{
		1: seedListing(1, 2, 8000),
		2: seedListing(2, 6, 20000),
	}}
	q := app.NewQueryService(listings, &fakeReservations{}, &fakeCache{}, time.Minute)
	ctx := context.Background()

	got, err := q.Search(ctx, domain.SearchQuery{Guests: 5})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected only listing 2, got %+v", got)
	}

	// No intervening writes: identical result set.
	again, err := q.Search(ctx, domain.SearchQuery{Guests: 5})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(again) != len(got) || again[0].ID != got[0].ID {
		t.Fatalf("search not idempotent: %+v vs %+v", again, got)
	}
}

func TestSearch_RejectsBadInput(t *testing.T) {
	q := app.NewQueryService(&fakeListings{}, &fakeReservations{}, &fakeCache{}, time.Minute)
	ctx := context.Background()

	bad := mustStay(t, "2024-05-10", "2024-05-10")
	if _, err := q.Search(ctx, domain.SearchQuery{Stay: &bad}); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError for empty range, got %v", err)
	}
	if _, err := q.Search(ctx, domain.SearchQuery{Sort: "cheapest"}); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError for unknown sort, got %v", err)
	}
}

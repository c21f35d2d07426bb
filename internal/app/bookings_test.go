package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"staybook/internal/app"
	"staybook/internal/domain"
)

func newBookingFixture(t *testing.T) (*app.BookingService, *fakeListings, *fakeReservations) {
	t.Helper()
	listings := &fakeListings{byID: map[int64]domain.Listing{
		1: seedListing(1, 4, 10000),
	}}
	resv := &fakeReservations{}
	return app.NewBookingService(listings, resv), listings, resv
}

func TestReserve_Success(t *testing.T) {
	svc, _, resv := newBookingFixture(t)
	ctx := context.Background()

	r, err := svc.Reserve(ctx, "u1", 1, mustStay(t, "2024-06-01", "2024-06-04"), 2)
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if r.Status != domain.StatusConfirmed {
		t.Fatalf("status = %s, want confirmed", r.Status)
	}
	// 3 nights × 10000 + 14% + 12%
	if r.TotalPrice != 37800 {
		t.Fatalf("total = %d, want 37800", r.TotalPrice)
	}
	if len(resv.rows) != 1 {
		t.Fatalf("expected exactly one persisted row, got %d", len(resv.rows))
	}
}

func TestReserve_Validation(t *testing.T) {
	svc, listings, resv := newBookingFixture(t)
	ctx := context.Background()
	stay := mustStay(t, "2024-06-01", "2024-06-04")

	cases := []struct {
		name string
		run  func() error
	}{
		{"inverted range", func() error {
			_, err := svc.Reserve(ctx, "u1", 1, mustStay(t, "2024-06-04", "2024-06-01"), 2)
			return err
		}},
		{"zero-length range", func() error {
			_, err := svc.Reserve(ctx, "u1", 1, mustStay(t, "2024-06-01", "2024-06-01"), 2)
			return err
		}},
		{"guest count over capacity", func() error {
			_, err := svc.Reserve(ctx, "u1", 1, stay, 5)
			return err
		}},
		{"zero guests", func() error {
			_, err := svc.Reserve(ctx, "u1", 1, stay, 0)
			return err
		}},
		{"missing user", func() error {
			_, err := svc.Reserve(ctx, "", 1, stay, 2)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !domain.IsValidation(err) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
	if len(resv.rows) != 0 {
		t.Fatalf("validation failures must not persist rows, got %d", len(resv.rows))
	}

	// Host-unavailable listing rejects before any write.
	closed := seedListing(2, 4, 9000)
	closed.Available = false
	listings.byID[2] = closed
	if _, err := svc.Reserve(ctx, "u1", 2, stay, 2); !domain.IsValidation(err) {
		t.Fatalf("expected ValidationError for closed listing, got %v", err)
	}

	if _, err := svc.Reserve(ctx, "u1", 999, stay, 2); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReserve_ConflictOnOverlap(t *testing.T) {
	svc, _, _ := newBookingFixture(t)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, "u1", 1, mustStay(t, "2024-06-01", "2024-06-05"), 2); err != nil {
		t.Fatalf("first reserve: %v", err)
	}
	_, err := svc.Reserve(ctx, "u2", 1, mustStay(t, "2024-06-03", "2024-06-08"), 2)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	// Touching checkout day is legal.
	if _, err := svc.Reserve(ctx, "u2", 1, mustStay(t, "2024-06-05", "2024-06-08"), 2); err != nil {
		t.Fatalf("back-to-back reserve: %v", err)
	}
}

// N racing attempts for the same listing and identical interval: exactly
// one winner, everyone else gets ErrConflict.
func TestReserve_ConcurrentAttempts(t *testing.T) {
	svc, _, resv := newBookingFixture(t)
	ctx := context.Background()
	stay := mustStay(t, "2024-07-01", "2024-07-05")

	const n = 32
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Reserve(ctx, "racer", 1, stay, 2)
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || conflicts != n-1 {
		t.Fatalf("wins=%d conflicts=%d, want 1/%d", wins, conflicts, n-1)
	}
	if len(resv.rows) != 1 {
		t.Fatalf("expected one persisted row, got %d", len(resv.rows))
	}
}

func TestCancel_FreesDates(t *testing.T) {
	svc, _, _ := newBookingFixture(t)
	ctx := context.Background()
	stay := mustStay(t, "2024-08-01", "2024-08-05")

	r, err := svc.Reserve(ctx, "u1", 1, stay, 2)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if err := svc.Cancel(ctx, r.ID, "u1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// Cancelled rows stop counting toward overlap.
	if _, err := svc.Reserve(ctx, "u2", 1, stay, 2); err != nil {
		t.Fatalf("reserve after cancel: %v", err)
	}

	if err := svc.Cancel(ctx, 999, "u1"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUserReservations(t *testing.T) {
	svc, _, _ := newBookingFixture(t)
	ctx := context.Background()

	if _, err := svc.Reserve(ctx, "u1", 1, mustStay(t, "2024-09-01", "2024-09-03"), 2); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	mine, err := svc.ListUserReservations(ctx, "u1")
	if err != nil || len(mine) != 1 {
		t.Fatalf("expected 1 reservation, got %d (err %v)", len(mine), err)
	}
	other, err := svc.ListUserReservations(ctx, "someone-else")
	if err != nil || len(other) != 0 {
		t.Fatalf("expected empty list for other user, got %d (err %v)", len(other), err)
	}
}

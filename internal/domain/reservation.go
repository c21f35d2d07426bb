package domain

import "time"

// ReservationStatus is the lifecycle state of a reservation. Pending exists
// only inside admission; a persisted row is confirmed until an external
// collaborator cancels it. Cancelled is terminal and the row is kept for
// audit — cancellation never deletes.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
)

type Reservation struct {
	ID         int64
	ListingID  int64
	UserID     string
	Stay       DateRange
	GuestCount int
	Status     ReservationStatus
	TotalPrice int64 // minor units
	CreatedAt  time.Time
}

// UserReservation is the per-user read model: a reservation joined with
// the few listing fields the caller renders next to it.
type UserReservation struct {
	Reservation
	ListingTitle    string
	ListingLocation string
	ListingImages   []string
	HostName        string
}

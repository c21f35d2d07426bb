package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"staybook/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// ---------- listings ----------

func (r *Repo) UpsertListing(ctx context.Context, l domain.Listing) error {
	imgs, _ := json.Marshal(l.Images)
	amen, _ := json.Marshal(l.Amenities)
	_, err := r.db.ExecContext(ctx, upsertListingSQL,
		l.ID,
		l.Title,
		l.Location,
		l.PricePerNight,
		l.Rating,
		l.ReviewCount,
		string(imgs),
		l.HostName,
		valStr(l.HostAvatar),
		l.Superhost,
		string(amen),
		valStr(l.Description),
		l.PropertyType,
		l.Bedrooms,
		l.Bathrooms,
		l.Guests,
		valF64(l.Lat),
		valF64(l.Lon),
		l.Available,
	)
	return err
}

type listingScanner interface {
	Scan(dest ...any) error
}

func scanListing(row listingScanner) (domain.Listing, error) {
	var l domain.Listing
	var imagesJSON, amenitiesJSON []byte
	var hostAvatar, description sql.NullString
	var lat, lon sql.NullFloat64

	if err := row.Scan(
		&l.ID, &l.Title, &l.Location, &l.PricePerNight, &l.Rating, &l.ReviewCount,
		&imagesJSON, &l.HostName, &hostAvatar, &l.Superhost, &amenitiesJSON,
		&description, &l.PropertyType, &l.Bedrooms, &l.Bathrooms, &l.Guests,
		&lat, &lon, &l.Available, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return domain.Listing{}, err
	}

	_ = json.Unmarshal(imagesJSON, &l.Images)
	_ = json.Unmarshal(amenitiesJSON, &l.Amenities)
	if hostAvatar.Valid {
		s := hostAvatar.String
		l.HostAvatar = &s
	}
	if description.Valid {
		s := description.String
		l.Description = &s
	}
	if lat.Valid {
		f := lat.Float64
		l.Lat = &f
	}
	if lon.Valid {
		f := lon.Float64
		l.Lon = &f
	}
	return l, nil
}

func (r *Repo) GetListing(ctx context.Context, id int64) (domain.Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx, getListingSQL, id))
	if err == sql.ErrNoRows {
		return domain.Listing{}, domain.ErrNotFound
	}
	return l, err
}

func orderClause(s domain.SortOption) string {
	switch s {
	case domain.SortPriceAsc:
		return "l.price_per_night ASC, l.id ASC"
	case domain.SortPriceDesc:
		return "l.price_per_night DESC, l.id ASC"
	case domain.SortRatingDesc:
		return "l.rating DESC, l.id ASC"
	case domain.SortRecommended:
		return "l.rating DESC, l.is_superhost DESC, l.id ASC"
	default: // insertion recency
		return "l.created_at DESC, l.id DESC"
	}
}

// SearchListings composes every predicate into one statement so filtering
// (including the date exclusion) runs entirely inside MySQL.
func (r *Repo) SearchListings(ctx context.Context, q domain.SearchQuery) ([]domain.Listing, error) {
	var sb strings.Builder
	sb.WriteString("SELECT" + listingColumns + "\nFROM listings l\nWHERE l.available = TRUE")
	args := make([]any, 0, 8)

	if loc := strings.TrimSpace(q.Location); loc != "" {
		sb.WriteString("\n  AND LOWER(l.location) LIKE ?")
		args = append(args, "%"+strings.ToLower(loc)+"%")
	}
	if q.Guests > 0 {
		sb.WriteString("\n  AND l.guests >= ?")
		args = append(args, q.Guests)
	}
	for _, a := range q.Amenities {
		sb.WriteString("\n  AND JSON_CONTAINS(l.amenities, JSON_QUOTE(?))")
		args = append(args, a)
	}
	if q.Stay != nil {
		sb.WriteString(searchDateExclusion)
		args = append(args, q.Stay.CheckOut, q.Stay.CheckIn)
	}

	sb.WriteString("\nORDER BY " + orderClause(q.Sort))
	limit := q.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	sb.WriteString("\nLIMIT ?")
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// ---------- reservations ----------

func (r *Repo) HasOverlap(ctx context.Context, listingID int64, stay domain.DateRange) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, hasOverlapSQL, listingID, stay.CheckOut, stay.CheckIn).Scan(&exists)
	return exists, err
}

// CreateReservation is the admission commit. The listing row lock, the
// overlap re-check and the insert share one transaction, so two racing
// callers cannot both observe "no overlap" before either inserts: the
// second blocks on the row lock and re-checks after the first commits.
func (r *Repo) CreateReservation(ctx context.Context, res domain.Reservation) (domain.Reservation, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Reservation{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var available bool
	if err := tx.QueryRowContext(ctx, lockListingSQL, res.ListingID).Scan(&available); err != nil {
		if err == sql.ErrNoRows {
			return domain.Reservation{}, domain.ErrNotFound
		}
		return domain.Reservation{}, err
	}
	if !available {
		return domain.Reservation{}, &domain.ValidationError{Field: "listing_id", Reason: "listing is not open for booking"}
	}

	var overlapping int
	if err := tx.QueryRowContext(ctx, overlapForUpdateSQL,
		res.ListingID, res.Stay.CheckOut, res.Stay.CheckIn).Scan(&overlapping); err != nil {
		return domain.Reservation{}, err
	}
	if overlapping > 0 {
		return domain.Reservation{}, fmt.Errorf("listing %d %s: %w", res.ListingID, res.Stay, domain.ErrConflict)
	}

	out, err := tx.ExecContext(ctx, insertReservationSQL,
		res.ListingID,
		res.UserID,
		res.GuestCount,
		res.Stay.CheckIn,
		res.Stay.CheckOut,
		res.TotalPrice,
	)
	if err != nil {
		return domain.Reservation{}, err
	}
	id, err := out.LastInsertId()
	if err != nil {
		return domain.Reservation{}, err
	}
	if err := tx.QueryRowContext(ctx, getReservationCreatedAtSQL, id).Scan(&res.CreatedAt); err != nil {
		return domain.Reservation{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Reservation{}, err
	}

	res.ID = id
	res.Status = domain.StatusConfirmed
	return res, nil
}

func (r *Repo) CancelReservation(ctx context.Context, id int64, userID string) error {
	out, err := r.db.ExecContext(ctx, cancelReservationSQL, id, userID)
	if err != nil {
		return err
	}
	n, err := out.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	// Nothing flipped: either unknown/foreign reservation, or already
	// cancelled (cancel is idempotent, never a resurrection).
	var status string
	err = r.db.QueryRowContext(ctx, reservationStatusSQL, id, userID).Scan(&status)
	if err == sql.ErrNoRows {
		return domain.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == string(domain.StatusCancelled) {
		return nil
	}
	return domain.ErrNotFound
}

func (r *Repo) ListUserReservations(ctx context.Context, userID string) ([]domain.UserReservation, error) {
	rows, err := r.db.QueryContext(ctx, listUserReservationsSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.UserReservation{}
	for rows.Next() {
		var ur domain.UserReservation
		var status string
		var imagesJSON []byte
		if err := rows.Scan(
			&ur.ID, &ur.ListingID, &ur.UserID, &ur.GuestCount,
			&ur.Stay.CheckIn, &ur.Stay.CheckOut,
			&ur.TotalPrice, &status, &ur.CreatedAt,
			&ur.ListingTitle, &ur.ListingLocation, &imagesJSON, &ur.HostName,
		); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(imagesJSON, &ur.ListingImages)
		ur.Status = domain.ReservationStatus(status)
		out = append(out, ur)
	}
	return out, rows.Err()
}

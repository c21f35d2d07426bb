package mysql

const upsertListingSQL = `
INSERT INTO listings
  (id, title, location, price_per_night, rating, review_count, images,
   host_name, host_avatar, is_superhost, amenities, description,
   property_type, bedrooms, bathrooms, guests, lat, lon, available)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  title           = VALUES(title),
  location        = VALUES(location),
  price_per_night = VALUES(price_per_night),
  rating          = VALUES(rating),
  review_count    = VALUES(review_count),
  images          = VALUES(images),
  host_name       = VALUES(host_name),
  host_avatar     = VALUES(host_avatar),
  is_superhost    = VALUES(is_superhost),
  amenities       = VALUES(amenities),
  description     = VALUES(description),
  property_type   = VALUES(property_type),
  bedrooms        = VALUES(bedrooms),
  bathrooms       = VALUES(bathrooms),
  guests          = VALUES(guests),
  lat             = VALUES(lat),
  lon             = VALUES(lon),
  available       = VALUES(available),
  updated_at      = CURRENT_TIMESTAMP
`

// Shared column list so get and search scan identically.
const listingColumns = `
  l.id, l.title, l.location, l.price_per_night, l.rating, l.review_count,
  l.images, l.host_name, l.host_avatar, l.is_superhost, l.amenities,
  l.description, l.property_type, l.bedrooms, l.bathrooms, l.guests,
  l.lat, l.lon, l.available, l.created_at, l.updated_at`

const getListingSQL = `SELECT` + listingColumns + `
FROM listings l
WHERE l.id = ?`

// Half-open overlap predicate, evaluated inside MySQL and scoped by
// listing and status. [a,b) overlaps [c,d) iff a < d AND c < b, which in
// column terms is check_in < ? (requested end) AND check_out > ? (start).
const hasOverlapSQL = `
SELECT EXISTS (
  SELECT 1 FROM reservations
  WHERE listing_id = ?
    AND status = 'confirmed'
    AND check_in < ?
    AND check_out > ?
)`

// Same predicate as a correlated anti-join for search. The listing is
// excluded when at least one confirmed reservation overlaps the range;
// no reservation rows ever leave the database.
const searchDateExclusion = `
  AND NOT EXISTS (
    SELECT 1 FROM reservations r
    WHERE r.listing_id = l.id
      AND r.status = 'confirmed'
      AND r.check_in < ?
      AND r.check_out > ?
  )`

// Admission runs inside one transaction: the parent listing row is locked
// first, which serializes concurrent admission attempts per listing and
// closes the check-then-insert race without table-level locks.
const lockListingSQL = `SELECT available FROM listings WHERE id = ? FOR UPDATE`

// In-transaction re-check. Must be a locking read so it sees rows
// committed by a writer we just waited on, not the snapshot taken when
// the transaction started.
const overlapForUpdateSQL = `
SELECT COUNT(*) FROM reservations
WHERE listing_id = ?
  AND status = 'confirmed'
  AND check_in < ?
  AND check_out > ?
FOR UPDATE`

const insertReservationSQL = `
INSERT INTO reservations
  (listing_id, user_id, guest_count, check_in, check_out, total_price, status)
VALUES (?, ?, ?, ?, ?, ?, 'confirmed')`

const getReservationCreatedAtSQL = `SELECT created_at FROM reservations WHERE id = ?`

const cancelReservationSQL = `
UPDATE reservations SET status = 'cancelled', updated_at = CURRENT_TIMESTAMP
WHERE id = ? AND user_id = ? AND status = 'confirmed'`

const reservationStatusSQL = `SELECT status FROM reservations WHERE id = ? AND user_id = ?`

const listUserReservationsSQL = `
SELECT
  r.id, r.listing_id, r.user_id, r.guest_count, r.check_in, r.check_out,
  r.total_price, r.status, r.created_at,
  l.title, l.location, l.images, l.host_name
FROM reservations r
JOIN listings l ON l.id = r.listing_id
WHERE r.user_id = ?
ORDER BY r.created_at DESC, r.id DESC`

package domain

import "time"

// Listing is a rental property as published by the external listing feed.
// Prices are integer minor currency units (cents); display conversion is
// the caller's concern. The serving core treats listings as read-only.
type Listing struct {
	ID            int64
	Title         string
	Location      string
	PricePerNight int64 // minor units per night
	Rating        float64
	ReviewCount   int
	Images        []string
	HostName      string
	HostAvatar    *string
	Superhost     bool
	Amenities     []string
	Description   *string
	PropertyType  string
	Bedrooms      int
	Bathrooms     int
	Guests        int // capacity
	Lat, Lon      *float64
	Available     bool // host-controlled flag, independent of date availability
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SortOption selects the result order of a search.
type SortOption string

const (
	SortNewest      SortOption = ""            // insertion recency, the default
	SortPriceAsc    SortOption = "price_asc"
	SortPriceDesc   SortOption = "price_desc"
	SortRatingDesc  SortOption = "rating_desc"
	SortRecommended SortOption = "recommended" // rating desc, superhost breaks ties
)

// ValidSort reports whether s names a supported order.
func ValidSort(s SortOption) bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc, SortRatingDesc, SortRecommended:
		return true
	}
	return false
}

// SearchQuery carries the search predicates. All static predicates are
// evaluated at the query boundary; Stay, when set, additionally excludes
// listings with an overlapping confirmed reservation via a single
// query-time anti-join.
type SearchQuery struct {
	Location  string     // case-insensitive substring
	Guests    int        // minimum capacity; 0 means any
	Amenities []string   // all must be present
	Stay      *DateRange // optional date filter
	Sort      SortOption
	Limit     int
}

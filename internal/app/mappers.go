package app

import (
	"strconv"
	"strings"

	"staybook/internal/domain"
)

// Feed payloads are loosely structured JSON; partners disagree on field
// names, so each listing field reads through a small alias list.

var listingAliases = map[string][]string{
	"title":         {"title", "name", "listing_title", "headline"},
	"location":      {"location", "address", "address.city", "city"},
	"host_name":     {"host_name", "host.name", "owner.name", "hostName"},
	"host_avatar":   {"host_avatar", "host.avatar", "host.photo"},
	"description":   {"description", "summary", "about"},
	"property_type": {"property_type", "type", "propertyType", "category"},
}

/********** tiny helpers **********/

// lookupAny: safe nested lookup with dot paths on maps.
func lookupAny(m map[string]any, path string) any {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		v, ok := obj[part]
		if !ok {
			return nil
		}
		cur = v
	}
	return cur
}

func lookupStr(m map[string]any, path string) string {
	if v := lookupAny(m, path); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func firstNonEmptyAlias(m map[string]any, key string) string {
	for _, p := range listingAliases[key] {
		if s := lookupStr(m, p); s != "" {
			return s
		}
	}
	return ""
}

func ptrStr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// getFloatFlexible: number from several paths (float64/int/string like "4,5").
func getFloatFlexible(m map[string]any, paths ...string) *float64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			f := v
			return &f
		case int:
			f := float64(v)
			return &f
		case string:
			s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
			if s == "" {
				continue
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

func firstInt64Flexible(m map[string]any, paths ...string) *int64 {
	for _, k := range paths {
		switch v := lookupAny(m, k).(type) {
		case float64:
			x := int64(v)
			return &x
		case int:
			x := int64(v)
			return &x
		case int64:
			x := v
			return &x
		case string:
			s := strings.TrimSpace(v)
			if s == "" {
				continue
			}
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return &n
			}
		}
	}
	return nil
}

func firstInt(m map[string]any, def int, paths ...string) int {
	if v := firstInt64Flexible(m, paths...); v != nil {
		return int(*v)
	}
	return def
}

// firstSliceStrings: accept []any with either strings or {url/src/name}.
func firstSliceStrings(m map[string]any, paths ...string) []string {
	for _, k := range paths {
		if raw, ok := lookupAny(m, k).([]any); ok {
			out := make([]string, 0, len(raw))
			for _, it := range raw {
				switch t := it.(type) {
				case string:
					if t != "" {
						out = append(out, t)
					}
				case map[string]any:
					if u, ok := t["url"].(string); ok && u != "" {
						out = append(out, u)
						continue
					}
					if u, ok := t["src"].(string); ok && u != "" {
						out = append(out, u)
						continue
					}
					if n, ok := t["name"].(string); ok && n != "" {
						out = append(out, n)
						continue
					}
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func firstBool(m map[string]any, paths ...string) bool {
	for _, k := range paths {
		if b, ok := lookupAny(m, k).(bool); ok {
			return b
		}
	}
	return false
}

/********** listing mapper **********/

// mapListing normalizes a feed payload into a domain Listing. Prices
// arrive in minor units already; the feed never sends floats for money.
func mapListing(p map[string]any) domain.Listing {
	id := int64(0)
	if v := firstInt64Flexible(p, "listing_id", "id"); v != nil {
		id = *v
	}

	price := int64(0)
	if v := firstInt64Flexible(p, "price_per_night", "price", "nightly_price"); v != nil {
		price = *v
	}

	rating := 0.0
	if f := getFloatFlexible(p, "rating", "review_score", "stars"); f != nil {
		rating = *f
	}

	available := true
	if v, ok := lookupAny(p, "available").(bool); ok {
		available = v
	}

	return domain.Listing{
		ID:            id,
		Title:         firstNonEmptyAlias(p, "title"),
		Location:      firstNonEmptyAlias(p, "location"),
		PricePerNight: price,
		Rating:        rating,
		ReviewCount:   firstInt(p, 0, "review_count", "reviews", "reviewCount"),
		Images:        firstSliceStrings(p, "images", "photos"),
		HostName:      firstNonEmptyAlias(p, "host_name"),
		HostAvatar:    ptrStr(firstNonEmptyAlias(p, "host_avatar")),
		Superhost:     firstBool(p, "is_superhost", "host.superhost", "superhost"),
		Amenities:     firstSliceStrings(p, "amenities", "facilities"),
		Description:   ptrStr(firstNonEmptyAlias(p, "description")),
		PropertyType:  firstNonEmptyAlias(p, "property_type"),
		Bedrooms:      firstInt(p, 0, "bedrooms", "bedroom_count"),
		Bathrooms:     firstInt(p, 0, "bathrooms", "bathroom_count"),
		Guests:        firstInt(p, 1, "guests", "capacity", "max_guests"),
		Lat:           getFloatFlexible(p, "latitude", "lat", "coords.lat"),
		Lon:           getFloatFlexible(p, "longitude", "lon", "lng", "coords.lon"),
		Available:     available,
	}
}

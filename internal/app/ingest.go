package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"staybook/internal/domain"
)

// IngestionService imports listings from the external partner feed.
// The serving core reads listings only; this is the sole write path for
// them, and it runs out-of-band in cmd/ingestor.
type IngestionService struct {
	feed     domain.FeedClient
	listings domain.ListingRepository
	cache    domain.Cache
}

func NewIngestionService(f domain.FeedClient, l domain.ListingRepository, cache domain.Cache) *IngestionService {
	return &IngestionService{feed: f, listings: l, cache: cache}
}

// IngestListing fetches one listing payload, maps it and upserts it.
// A 404 from the feed means the listing was withdrawn: not an error,
// but the cached detail must not keep serving the old snapshot.
func (s *IngestionService) IngestListing(ctx context.Context, id int64) error {
	p, err := s.feed.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn().Int64("listing_id", id).Msg("feed miss: listing withdrawn")
			if s.cache != nil {
				_ = s.cache.Del(ctx, listingKey(id))
			}
			return nil
		}
		return err
	}

	l := mapListing(p)
	if l.ID == 0 {
		l.ID = id
	}
	if err := s.listings.UpsertListing(ctx, l); err != nil {
		return fmt.Errorf("upsert listing %d: %w", id, err)
	}
	if s.cache != nil {
		_ = s.cache.Del(ctx, listingKey(id))
	}
	return nil
}

package fincaraiz

import (
	"context"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/rs/zerolog/log"
)

// Stream yields one batch per non-empty page, for pages 1..maxPages.
// It is single use and must not be shared between goroutines.
//
//	s := fetcher.Stream(q, 5)
//	for s.Next(ctx) {
//		handle(s.Batch())
//	}
//	if err := s.Err(); err != nil { ... }
type Stream struct {
	fetcher  *Fetcher
	query    Query
	maxPages int

	page  int
	batch models.Batch
	done  bool
	err   error
}

func (f *Fetcher) Stream(q Query, maxPages int) *Stream {
	return &Stream{fetcher: f, query: q, maxPages: maxPages}
}

// Next advances to the next batch. It returns false once the page limit is
// reached, a page ends the stream, or ctx is cancelled.
func (s *Stream) Next(ctx context.Context) bool {
	if s.done {
		return false
	}
	if s.page >= s.maxPages {
		s.done = true
		return false
	}
	if s.page > 0 {
		if err := s.fetcher.Delay(ctx); err != nil {
			s.fail(err)
			return false
		}
	}

	s.page++
	result, err := s.fetcher.Fetch(ctx, s.query, s.page)
	if err != nil {
		s.fail(err)
		return false
	}
	if result.Stop != StopNone {
		log.Info().Str("taskID", s.query.TaskID).Int("page", s.page).Str("reason", string(result.Stop)).Msg("Listing stream ended")
		s.done = true
		return false
	}

	s.batch = models.Batch{Page: s.page, Listings: result.Listings}
	return true
}

func (s *Stream) Batch() models.Batch {
	return s.batch
}

// Err returns the error that stopped the stream, if any. Graceful stops
// such as an empty page or a bad status are not errors.
func (s *Stream) Err() error {
	return s.err
}

func (s *Stream) fail(err error) {
	s.err = err
	s.done = true
	s.batch = models.Batch{}
}

package fincaraiz

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/LexiconIndonesia/property-scraper-service/common/storage"
	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const maxPageBytes = 10 << 20

// StopReason tells why a page ended the stream.
type StopReason string

const (
	StopNone    StopReason = ""
	StopStatus  StopReason = "status"
	StopNetwork StopReason = "network"
	StopParse   StopReason = "parse"
	StopEmpty   StopReason = "empty"
)

// Query identifies one search on the site.
type Query struct {
	TaskID       string
	City         string
	Region       string
	PropertyType string
}

// PageURL builds {base}/venta/{type}/{city}/{region}, with /pagina-{n} for n > 1.
func PageURL(baseURL, propertyType, city, region string, page int) string {
	u := fmt.Sprintf("%s/venta/%s/%s/%s",
		strings.TrimRight(baseURL, "/"),
		strings.TrimSpace(propertyType),
		strings.ToLower(strings.TrimSpace(city)),
		strings.ToLower(strings.TrimSpace(region)))
	if page > 1 {
		u += fmt.Sprintf("/pagina-%d", page)
	}
	return u
}

// PageResult is the outcome of fetching a single result page. Listings is
// empty whenever Stop is set.
type PageResult struct {
	Page     int
	URL      string
	Cards    int
	Listings []models.Listing
	Stop     StopReason
}

// Fetcher downloads result pages. Each job owns its Fetcher and HTTP client.
type Fetcher struct {
	cfg       FincaraizConfig
	client    *http.Client
	extractor *Extractor
	archive   storage.PageArchive
	sleep     func(ctx context.Context, d time.Duration) error
}

type FetcherOption func(*Fetcher)

// WithArchive keeps a copy of every fetched page.
func WithArchive(archive storage.PageArchive) FetcherOption {
	return func(f *Fetcher) {
		if archive != nil {
			f.archive = archive
		}
	}
}

func WithSleep(sleep func(ctx context.Context, d time.Duration) error) FetcherOption {
	return func(f *Fetcher) {
		f.sleep = sleep
	}
}

func NewFetcher(cfg FincaraizConfig, client *http.Client, opts ...FetcherOption) (*Fetcher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	extractor, err := NewExtractor(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.RequestTimeout}
	}

	f := &Fetcher{
		cfg:       cfg,
		client:    client,
		extractor: extractor,
		archive:   storage.NopArchive{},
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

func (f *Fetcher) BaseURL() string {
	return f.extractor.BaseURL()
}

// Fetch downloads and extracts one page. Transport and markup problems are
// reported through PageResult.Stop; only context cancellation is an error.
func (f *Fetcher) Fetch(ctx context.Context, q Query, page int) (PageResult, error) {
	pageURL := PageURL(f.cfg.BaseURL, q.PropertyType, q.City, q.Region, page)
	result := PageResult{Page: page, URL: pageURL}
	logger := log.With().Str("taskID", q.TaskID).Str("url", pageURL).Int("page", page).Logger()

	logger.Info().Msg("Fetching results page")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to create request for results page")
		result.Stop = StopNetwork
		return result, nil
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		logger.Error().Err(err).Msg("Failed to fetch results page")
		result.Stop = StopNetwork
		return result, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Error().Int("status", resp.StatusCode).Msg("Failed to fetch results page")
		result.Stop = StopStatus
		return result, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		logger.Error().Err(err).Msg("Failed to read results page")
		result.Stop = StopNetwork
		return result, nil
	}

	if err := f.archive.ArchivePage(ctx, q.TaskID, page, body); err != nil {
		logger.Warn().Err(err).Msg("Failed to archive results page")
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		logger.Error().Err(err).Msg("Failed to parse results page")
		result.Stop = StopParse
		return result, nil
	}

	result.Cards = Cards(doc).Length()
	if result.Cards == 0 {
		logger.Info().Msg("No listings found on page")
		result.Stop = StopEmpty
		return result, nil
	}

	result.Listings = f.extractor.ExtractListings(doc, q.City, q.Region)
	logger.Info().Int("cards", result.Cards).Int("listings", len(result.Listings)).Msg("Extracted listings")
	return result, nil
}

// Delay waits a random duration in [MinDelay, MaxDelay].
func (f *Fetcher) Delay(ctx context.Context) error {
	return f.sleep(ctx, RandomDelay(f.cfg.MinDelay, f.cfg.MaxDelay))
}

func RandomDelay(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

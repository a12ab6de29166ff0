package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/LexiconIndonesia/property-scraper-service/repository"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/samber/mo"
)

const (
	DefaultCommitEvery = 50

	maxTitleLen       = 256
	maxShortTextLen   = 128
	maxSurfaceUnitLen = 10
	ellipsis          = "..."
)

// PropertyQuerier is the write side of the properties table.
type PropertyQuerier interface {
	ListPropertiesByURLs(ctx context.Context, urls []string) ([]repository.Property, error)
	CreateProperty(ctx context.Context, arg repository.CreatePropertyParams) (repository.Property, error)
	UpdatePropertyByURL(ctx context.Context, arg repository.UpdatePropertyByURLParams) (repository.Property, error)
}

// PropertyTx is an open transaction over the properties table.
type PropertyTx interface {
	PropertyQuerier
	// Savepoint runs fn in a nested transaction. When fn fails only its own
	// writes are undone and the outer transaction stays usable.
	Savepoint(ctx context.Context, fn func(q PropertyQuerier) error) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type TxBeginner interface {
	BeginPropertyTx(ctx context.Context) (PropertyTx, error)
}

// PropertyReader is the read side used by the API.
type PropertyReader interface {
	ListProperties(ctx context.Context, arg repository.ListPropertiesParams) ([]repository.Property, error)
	CountProperties(ctx context.Context) (int64, error)
	CountPropertiesByCity(ctx context.Context) ([]repository.CountPropertiesByCityRow, error)
	AvgPriceByCity(ctx context.Context) ([]repository.AvgPriceByCityRow, error)
}

// UpsertResult counts what happened to each listing of a batch.
type UpsertResult struct {
	Inserted int
	Updated  int
	Skipped  int
	Failed   int
}

// PropertyFilter narrows ListProperties. Text filters match substrings case-insensitively.
type PropertyFilter struct {
	City         mo.Option[string]
	Region       mo.Option[string]
	PropertyType mo.Option[string]
	MinPrice     mo.Option[float64]
	MaxPrice     mo.Option[float64]
	MinRooms     mo.Option[int32]
	MinBathrooms mo.Option[int32]
	Skip         int
	Limit        int
}

type PropertyStore struct {
	beginner    TxBeginner
	reader      PropertyReader
	commitEvery int
}

func NewPropertyStore(beginner TxBeginner, reader PropertyReader) *PropertyStore {
	return &PropertyStore{
		beginner:    beginner,
		reader:      reader,
		commitEvery: DefaultCommitEvery,
	}
}

// IsSkippableURL reports whether url cannot identify a listing.
func IsSkippableURL(url, baseURL string) bool {
	base := strings.TrimRight(baseURL, "/")
	return url == "" || url == base || url == base+"/"
}

// UpsertBatch writes listings keyed by URL. Existing rows are overwritten,
// new ones inserted. A failing row or commit is logged and does not stop
// the batch; only a failure to open a transaction or look up existing
// URLs is returned.
func (s *PropertyStore) UpsertBatch(ctx context.Context, listings []models.Listing, baseURL string) (UpsertResult, error) {
	var res UpsertResult
	if len(listings) == 0 {
		return res, nil
	}

	urls := lo.Uniq(lo.FilterMap(listings, func(l models.Listing, _ int) (string, bool) {
		return l.URL, l.URL != ""
	}))

	tx, err := s.beginner.BeginPropertyTx(ctx)
	if err != nil {
		return res, fmt.Errorf("begin property transaction: %w", err)
	}

	existing, err := tx.ListPropertiesByURLs(ctx, urls)
	if err != nil {
		_ = tx.Rollback(ctx)
		return res, fmt.Errorf("lookup existing properties: %w", err)
	}
	known := lo.SliceToMap(existing, func(p repository.Property) (string, bool) {
		return p.Url, true
	})

	log.Info().
		Int("existing", len(existing)).
		Int("scraped", len(listings)).
		Msg("Upserting property batch")

	var pendingInserted, pendingUpdated, processed int
	// URLs inserted since the last commit; forgotten again if the commit fails.
	var chunkInserted []string
	commit := func() {
		if err := tx.Commit(ctx); err != nil {
			log.Error().Err(err).Int("rows", pendingInserted+pendingUpdated).Msg("Property commit failed, rolling back")
			_ = tx.Rollback(ctx)
			res.Failed += pendingInserted + pendingUpdated
			for _, u := range chunkInserted {
				delete(known, u)
			}
		} else {
			res.Inserted += pendingInserted
			res.Updated += pendingUpdated
		}
		pendingInserted, pendingUpdated = 0, 0
		chunkInserted = chunkInserted[:0]
	}

	for _, l := range listings {
		if IsSkippableURL(l.URL, baseURL) {
			log.Warn().Str("url", l.URL).Msg("Skipping property with invalid URL")
			res.Skipped++
			continue
		}

		l = TruncateListing(l)
		update := known[l.URL]

		err := tx.Savepoint(ctx, func(q PropertyQuerier) error {
			if update {
				_, err := q.UpdatePropertyByURL(ctx, MergeProperty(l))
				return err
			}
			_, err := q.CreateProperty(ctx, NewPropertyParams(l))
			return err
		})
		if err != nil {
			log.Error().Err(err).Str("url", l.URL).Msg("Error saving property")
			res.Failed++
			continue
		}

		if update {
			pendingUpdated++
		} else {
			pendingInserted++
			known[l.URL] = true
			chunkInserted = append(chunkInserted, l.URL)
		}

		processed++
		if processed%s.commitEvery == 0 {
			commit()
			log.Info().Int("processed", processed).Int("total", len(listings)).Msg("Committed property chunk")

			tx, err = s.beginner.BeginPropertyTx(ctx)
			if err != nil {
				return res, fmt.Errorf("begin property transaction: %w", err)
			}
		}
	}

	commit()
	return res, nil
}

// TruncateListing clips text fields to their column widths.
func TruncateListing(l models.Listing) models.Listing {
	l.Title = ellipsize(l.Title, maxTitleLen)
	l.City = ellipsize(l.City, maxShortTextLen)
	l.Region = ellipsize(l.Region, maxShortTextLen)
	if pt, ok := l.PropertyType.Get(); ok {
		l.PropertyType = mo.Some(ellipsize(pt, maxShortTextLen))
	}
	if unit, ok := l.SurfaceUnit.Get(); ok && utf8.RuneCountInString(unit) > maxSurfaceUnitLen {
		l.SurfaceUnit = mo.Some(string([]rune(unit)[:maxSurfaceUnitLen]))
	}
	return l
}

// ellipsize keeps s within max runes, ending with "..." when it was cut.
func ellipsize(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-len(ellipsis)]) + ellipsis
}

func imageURLs(l models.Listing) []string {
	if l.ImageURLs == nil {
		return []string{}
	}
	return append([]string(nil), l.ImageURLs...)
}

func surfaceUnit(l models.Listing) mo.Option[string] {
	if l.Surface.IsPresent() && l.SurfaceUnit.IsAbsent() {
		return mo.Some(models.DefaultSurfaceUnit)
	}
	return l.SurfaceUnit
}

// NewPropertyParams maps a listing to an insert.
func NewPropertyParams(l models.Listing) repository.CreatePropertyParams {
	return repository.CreatePropertyParams{
		Url:          strings.TrimSpace(l.URL),
		Title:        text(l.Title),
		Price:        optFloat(l.Price),
		Rooms:        optInt4(l.Rooms),
		Bathrooms:    optInt4(l.Bathrooms),
		Surface:      optFloat(l.Surface),
		SurfaceUnit:  optText(surfaceUnit(l)),
		City:         text(l.City),
		Region:       text(l.Region),
		Description:  optText(l.Description),
		PropertyType: optText(l.PropertyType),
		ImageUrls:    imageURLs(l),
	}
}

// MergeProperty lists every mutable column overwritten when a URL is seen again.
func MergeProperty(l models.Listing) repository.UpdatePropertyByURLParams {
	return repository.UpdatePropertyByURLParams{
		Url:          strings.TrimSpace(l.URL),
		Title:        text(l.Title),
		Price:        optFloat(l.Price),
		Rooms:        optInt4(l.Rooms),
		Bathrooms:    optInt4(l.Bathrooms),
		Surface:      optFloat(l.Surface),
		SurfaceUnit:  optText(surfaceUnit(l)),
		City:         text(l.City),
		Region:       text(l.Region),
		Description:  optText(l.Description),
		PropertyType: optText(l.PropertyType),
		ImageUrls:    imageURLs(l),
	}
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

func (s *PropertyStore) List(ctx context.Context, f PropertyFilter) ([]repository.Property, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	rows, err := s.reader.ListProperties(ctx, repository.ListPropertiesParams{
		City:         optText(f.City),
		Region:       optText(f.Region),
		PropertyType: optText(f.PropertyType),
		MinPrice:     optFloat(f.MinPrice),
		MaxPrice:     optFloat(f.MaxPrice),
		MinRooms:     optInt4(f.MinRooms),
		MinBathrooms: optInt4(f.MinBathrooms),
		RowOffset:    int32(max(f.Skip, 0)),
		RowLimit:     int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	return rows, nil
}

func (s *PropertyStore) CountByCity(ctx context.Context) ([]models.CityCount, error) {
	rows, err := s.reader.CountPropertiesByCity(ctx)
	if err != nil {
		return nil, fmt.Errorf("count properties by city: %w", err)
	}
	return lo.Map(rows, func(r repository.CountPropertiesByCityRow, _ int) models.CityCount {
		return models.CityCount{City: r.City.String, Count: r.Count}
	}), nil
}

func (s *PropertyStore) AvgPriceByCity(ctx context.Context) ([]models.CityAvgPrice, error) {
	rows, err := s.reader.AvgPriceByCity(ctx)
	if err != nil {
		return nil, fmt.Errorf("average price by city: %w", err)
	}
	return lo.FilterMap(rows, func(r repository.AvgPriceByCityRow, _ int) (models.CityAvgPrice, bool) {
		return models.CityAvgPrice{City: r.City.String, AvgPrice: r.AvgPrice.Float64}, r.AvgPrice.Valid
	}), nil
}

func (s *PropertyStore) Stats(ctx context.Context) (models.PropertyStats, error) {
	total, err := s.reader.CountProperties(ctx)
	if err != nil {
		return models.PropertyStats{}, fmt.Errorf("count properties: %w", err)
	}
	byCity, err := s.CountByCity(ctx)
	if err != nil {
		return models.PropertyStats{}, err
	}
	avg, err := s.AvgPriceByCity(ctx)
	if err != nil {
		return models.PropertyStats{}, err
	}
	return models.PropertyStats{Total: total, ByCity: byCity, AvgPrices: avg}, nil
}

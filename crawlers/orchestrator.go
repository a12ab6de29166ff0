package crawlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/LexiconIndonesia/property-scraper-service/common/models"
	"github.com/LexiconIndonesia/property-scraper-service/common/services"
	"github.com/LexiconIndonesia/property-scraper-service/common/storage"
	"github.com/LexiconIndonesia/property-scraper-service/common/work"
	"github.com/LexiconIndonesia/property-scraper-service/crawlers/fincaraiz"
	"github.com/LexiconIndonesia/property-scraper-service/repository"
	"github.com/rs/zerolog/log"
)

// ScrapeRequest is one scrape job: a search on the site for up to MaxPages pages.
type ScrapeRequest struct {
	TaskID       string
	City         string
	Region       string
	PropertyType string
	MaxPages     int
}

// Tracker records task state. *services.TaskTracker implements it.
type Tracker interface {
	Create(ctx context.Context, ts services.TaskSpec) (repository.Task, error)
	MarkRunning(ctx context.Context, taskID string) error
	Progress(ctx context.Context, taskID string, found int) error
	Complete(ctx context.Context, taskID string, found int) error
	Fail(ctx context.Context, taskID string, message string) error
}

// Store persists listings. *services.PropertyStore implements it.
type Store interface {
	UpsertBatch(ctx context.Context, listings []models.Listing, baseURL string) (services.UpsertResult, error)
}

// Orchestrator runs a scrape job from task creation to its terminal status.
type Orchestrator struct {
	tracker   Tracker
	store     Store
	guard     work.RunGuard
	cfg       fincaraiz.FincaraizConfig
	archive   storage.PageArchive
	newClient func() *http.Client
	opts      []fincaraiz.FetcherOption
}

type OrchestratorOption func(*Orchestrator)

func WithPageArchive(archive storage.PageArchive) OrchestratorOption {
	return func(o *Orchestrator) {
		if archive != nil {
			o.archive = archive
		}
	}
}

func WithRunGuard(guard work.RunGuard) OrchestratorOption {
	return func(o *Orchestrator) {
		if guard != nil {
			o.guard = guard
		}
	}
}

// WithHTTPClient replaces the per-job client constructor.
func WithHTTPClient(newClient func() *http.Client) OrchestratorOption {
	return func(o *Orchestrator) {
		o.newClient = newClient
	}
}

func WithFetcherOptions(opts ...fincaraiz.FetcherOption) OrchestratorOption {
	return func(o *Orchestrator) {
		o.opts = append(o.opts, opts...)
	}
}

func NewOrchestrator(tracker Tracker, store Store, cfg fincaraiz.FincaraizConfig, opts ...OrchestratorOption) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scraper config: %w", err)
	}

	o := &Orchestrator{
		tracker: tracker,
		store:   store,
		guard:   work.NewMemoryGuard(),
		cfg:     cfg,
		archive: storage.NopArchive{},
	}
	o.newClient = func() *http.Client {
		return &http.Client{Timeout: o.cfg.RequestTimeout}
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run creates the task and executes it synchronously.
func (o *Orchestrator) Run(ctx context.Context, req ScrapeRequest) error {
	if _, err := o.Prepare(ctx, req); err != nil {
		return err
	}
	return o.Execute(ctx, req)
}

// Prepare creates the pending task row.
func (o *Orchestrator) Prepare(ctx context.Context, req ScrapeRequest) (repository.Task, error) {
	return o.tracker.Create(ctx, services.TaskSpec{
		ID:           req.TaskID,
		City:         req.City,
		Region:       req.Region,
		PropertyType: req.PropertyType,
		MaxPages:     req.MaxPages,
	})
}

// Execute drives a prepared task to completed or failed. Any error or panic
// after the task is marked running is recorded on the task and returned.
func (o *Orchestrator) Execute(ctx context.Context, req ScrapeRequest) (err error) {
	if err := o.guard.Acquire(ctx, req.TaskID); err != nil {
		log.Warn().Err(err).Str("taskID", req.TaskID).Msg("Refusing to run task")
		if !errors.Is(err, work.ErrAlreadyRunning) {
			o.fail(ctx, req.TaskID, fmt.Errorf("acquire run guard: %w", err))
		}
		return err
	}
	defer func() {
		if rerr := o.guard.Release(context.WithoutCancel(ctx), req.TaskID); rerr != nil {
			log.Warn().Err(rerr).Str("taskID", req.TaskID).Msg("Failed to release task")
		}
	}()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scrape panicked: %v", r)
			log.Error().Str("taskID", req.TaskID).Interface("panic", r).Msg("Recovered from scrape panic")
			o.fail(ctx, req.TaskID, err)
		}
	}()

	if err := o.tracker.MarkRunning(ctx, req.TaskID); err != nil {
		o.fail(ctx, req.TaskID, err)
		return err
	}

	found, err := o.scrape(ctx, req)
	if err != nil {
		o.fail(ctx, req.TaskID, err)
		return err
	}

	if err := o.tracker.Complete(context.WithoutCancel(ctx), req.TaskID, found); err != nil {
		log.Error().Err(err).Str("taskID", req.TaskID).Msg("Failed to complete task")
		o.fail(ctx, req.TaskID, err)
		return err
	}
	return nil
}

func (o *Orchestrator) scrape(ctx context.Context, req ScrapeRequest) (int, error) {
	client := o.newClient()
	defer client.CloseIdleConnections()

	opts := append([]fincaraiz.FetcherOption{fincaraiz.WithArchive(o.archive)}, o.opts...)
	fetcher, err := fincaraiz.NewFetcher(o.cfg, client, opts...)
	if err != nil {
		return 0, err
	}

	stream := fetcher.Stream(fincaraiz.Query{
		TaskID:       req.TaskID,
		City:         req.City,
		Region:       req.Region,
		PropertyType: req.PropertyType,
	}, req.MaxPages)

	found := 0
	for stream.Next(ctx) {
		batch := stream.Batch()
		found += len(batch.Listings)

		log.Info().
			Str("taskID", req.TaskID).
			Int("page", batch.Page).
			Msgf("Found %d properties on current page. Total so far: %d", len(batch.Listings), found)

		if err := o.tracker.Progress(ctx, req.TaskID, found); err != nil {
			return found, err
		}

		res, err := o.store.UpsertBatch(ctx, batch.Listings, fetcher.BaseURL())
		if err != nil {
			return found, fmt.Errorf("store page %d: %w", batch.Page, err)
		}
		log.Info().
			Str("taskID", req.TaskID).
			Int("page", batch.Page).
			Int("inserted", res.Inserted).
			Int("updated", res.Updated).
			Int("skipped", res.Skipped).
			Int("failed", res.Failed).
			Msg("Stored page listings")
	}
	if err := stream.Err(); err != nil {
		return found, err
	}
	return found, nil
}

// fail records err on the task. A task that already reached a terminal
// status keeps it.
func (o *Orchestrator) fail(ctx context.Context, taskID string, err error) {
	ferr := o.tracker.Fail(context.WithoutCancel(ctx), taskID, err.Error())
	if ferr == nil || errors.Is(ferr, services.ErrTerminalTask) {
		return
	}
	log.Error().Err(ferr).Str("taskID", taskID).Msg("Failed to record task failure")
}

// Package servicestest provides in-memory stores for exercising services
// without PostgreSQL.
package servicestest

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/LexiconIndonesia/property-scraper-service/common/services"
	"github.com/LexiconIndonesia/property-scraper-service/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

var ErrUniqueViolation = errors.New("duplicate key value violates unique constraint \"properties_url_key\"")

// TaskStore keeps tasks in a map and mirrors the terminal guard of UpdateTaskStatus.
type TaskStore struct {
	mu    sync.Mutex
	tasks map[string]repository.Task
}

func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]repository.Task)}
}

func (s *TaskStore) CreateTask(_ context.Context, arg repository.CreateTaskParams) (repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[arg.ID]; ok {
		return repository.Task{}, fmt.Errorf("duplicate task id %s", arg.ID)
	}
	t := repository.Task{
		ID:           arg.ID,
		City:         arg.City,
		Region:       arg.Region,
		PropertyType: arg.PropertyType,
		MaxPages:     arg.MaxPages,
		Status:       arg.Status,
		StartTime:    arg.StartTime,
	}
	s.tasks[arg.ID] = t
	return t, nil
}

func (s *TaskStore) GetTaskByID(_ context.Context, id string) (repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return repository.Task{}, pgx.ErrNoRows
	}
	return t, nil
}

func (s *TaskStore) ListTasks(_ context.Context, arg repository.ListTasksParams) ([]repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := make([]repository.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		all = append(all, t)
	}
	slices.SortFunc(all, func(a, b repository.Task) int {
		return b.StartTime.Compare(a.StartTime)
	})
	return page(all, int(arg.Offset), int(arg.Limit)), nil
}

func (s *TaskStore) CountTasks(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.tasks)), nil
}

func (s *TaskStore) UpdateTaskStatus(_ context.Context, arg repository.UpdateTaskStatusParams) (repository.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[arg.ID]
	if !ok || t.Status == "completed" || t.Status == "failed" {
		return repository.Task{}, pgx.ErrNoRows
	}
	t.Status = arg.Status
	if arg.PropertiesFound.Valid {
		t.PropertiesFound = arg.PropertiesFound.Int32
	}
	if arg.Error.Valid {
		t.Error = arg.Error
	}
	if arg.EndTime.Valid {
		t.EndTime = arg.EndTime
	}
	if arg.DurationSeconds.Valid {
		t.DurationSeconds = arg.DurationSeconds
	}
	s.tasks[arg.ID] = t
	return t, nil
}

// PropertyDB is an in-memory properties table with transaction semantics:
// writes become visible to new transactions only after Commit.
type PropertyDB struct {
	mu     sync.Mutex
	rows   map[string]repository.Property
	nextID int64
	clock  func() time.Time

	// FailURL makes every write for that URL fail.
	FailURL string
	// FailCommit is consulted with the 1-based commit number.
	FailCommit func(n int) bool

	Commits int
	Lookups int
}

func NewPropertyDB() *PropertyDB {
	return &PropertyDB{
		rows:  make(map[string]repository.Property),
		clock: time.Now,
	}
}

// Rows returns committed rows ordered by id.
func (db *PropertyDB) Rows() []repository.Property {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make([]repository.Property, 0, len(db.rows))
	for _, p := range db.rows {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b repository.Property) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (db *PropertyDB) Get(url string) (repository.Property, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	p, ok := db.rows[url]
	return p, ok
}

func (db *PropertyDB) BeginPropertyTx(_ context.Context) (services.PropertyTx, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return &propertyTx{db: db, rows: maps.Clone(db.rows)}, nil
}

type propertyTx struct {
	db   *PropertyDB
	rows map[string]repository.Property
	done bool
}

func (tx *propertyTx) ListPropertiesByURLs(_ context.Context, urls []string) ([]repository.Property, error) {
	tx.db.mu.Lock()
	tx.db.Lookups++
	tx.db.mu.Unlock()

	var out []repository.Property
	for _, u := range urls {
		if p, ok := tx.rows[u]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (tx *propertyTx) CreateProperty(_ context.Context, arg repository.CreatePropertyParams) (repository.Property, error) {
	if arg.Url == tx.db.FailURL {
		return repository.Property{}, fmt.Errorf("insert %s: forced failure", arg.Url)
	}
	if _, ok := tx.rows[arg.Url]; ok {
		return repository.Property{}, ErrUniqueViolation
	}

	tx.db.mu.Lock()
	tx.db.nextID++
	id := tx.db.nextID
	now := tx.db.clock()
	tx.db.mu.Unlock()

	p := repository.Property{
		ID:           id,
		Url:          arg.Url,
		Title:        arg.Title,
		Price:        arg.Price,
		Rooms:        arg.Rooms,
		Bathrooms:    arg.Bathrooms,
		Surface:      arg.Surface,
		SurfaceUnit:  arg.SurfaceUnit,
		City:         arg.City,
		Region:       arg.Region,
		Description:  arg.Description,
		PropertyType: arg.PropertyType,
		ImageUrls:    arg.ImageUrls,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	tx.rows[arg.Url] = p
	return p, nil
}

func (tx *propertyTx) UpdatePropertyByURL(_ context.Context, arg repository.UpdatePropertyByURLParams) (repository.Property, error) {
	if arg.Url == tx.db.FailURL {
		return repository.Property{}, fmt.Errorf("update %s: forced failure", arg.Url)
	}
	p, ok := tx.rows[arg.Url]
	if !ok {
		return repository.Property{}, pgx.ErrNoRows
	}

	p.Title = arg.Title
	p.Price = arg.Price
	p.Rooms = arg.Rooms
	p.Bathrooms = arg.Bathrooms
	p.Surface = arg.Surface
	p.SurfaceUnit = arg.SurfaceUnit
	p.City = arg.City
	p.Region = arg.Region
	p.Description = arg.Description
	p.PropertyType = arg.PropertyType
	p.ImageUrls = arg.ImageUrls
	p.UpdatedAt = tx.db.clock()
	tx.rows[arg.Url] = p
	return p, nil
}

func (tx *propertyTx) Savepoint(_ context.Context, fn func(q services.PropertyQuerier) error) error {
	snapshot := maps.Clone(tx.rows)
	if err := fn(tx); err != nil {
		tx.rows = snapshot
		return err
	}
	return nil
}

func (tx *propertyTx) Commit(_ context.Context) error {
	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()

	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.Commits++
	if tx.db.FailCommit != nil && tx.db.FailCommit(tx.db.Commits) {
		return errors.New("commit failed: constraint violation")
	}
	for k, v := range tx.rows {
		tx.db.rows[k] = v
	}
	return nil
}

func (tx *propertyTx) Rollback(_ context.Context) error {
	tx.done = true
	return nil
}

func (db *PropertyDB) ListProperties(_ context.Context, arg repository.ListPropertiesParams) ([]repository.Property, error) {
	rows := db.Rows()
	filtered := rows[:0:0]
	for _, p := range rows {
		if !containsFold(p.City, arg.City) || !containsFold(p.Region, arg.Region) || !containsFold(p.PropertyType, arg.PropertyType) {
			continue
		}
		if arg.MinPrice.Valid && (!p.Price.Valid || p.Price.Float64 < arg.MinPrice.Float64) {
			continue
		}
		if arg.MaxPrice.Valid && (!p.Price.Valid || p.Price.Float64 > arg.MaxPrice.Float64) {
			continue
		}
		if arg.MinRooms.Valid && (!p.Rooms.Valid || p.Rooms.Int32 < arg.MinRooms.Int32) {
			continue
		}
		if arg.MinBathrooms.Valid && (!p.Bathrooms.Valid || p.Bathrooms.Int32 < arg.MinBathrooms.Int32) {
			continue
		}
		filtered = append(filtered, p)
	}
	slices.SortStableFunc(filtered, func(a, b repository.Property) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return page(filtered, int(arg.RowOffset), int(arg.RowLimit)), nil
}

func (db *PropertyDB) CountProperties(_ context.Context) (int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return int64(len(db.rows)), nil
}

func (db *PropertyDB) CountPropertiesByCity(_ context.Context) ([]repository.CountPropertiesByCityRow, error) {
	counts := map[string]int64{}
	for _, p := range db.Rows() {
		counts[p.City.String]++
	}
	out := make([]repository.CountPropertiesByCityRow, 0, len(counts))
	for city, n := range counts {
		out = append(out, repository.CountPropertiesByCityRow{City: pgtype.Text{String: city, Valid: city != ""}, Count: n})
	}
	slices.SortFunc(out, func(a, b repository.CountPropertiesByCityRow) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.City.String, b.City.String)
	})
	return out, nil
}

func (db *PropertyDB) AvgPriceByCity(_ context.Context) ([]repository.AvgPriceByCityRow, error) {
	type acc struct {
		sum float64
		n   int
	}
	by := map[string]*acc{}
	for _, p := range db.Rows() {
		a, ok := by[p.City.String]
		if !ok {
			a = &acc{}
			by[p.City.String] = a
		}
		if p.Price.Valid {
			a.sum += p.Price.Float64
			a.n++
		}
	}
	out := make([]repository.AvgPriceByCityRow, 0, len(by))
	for city, a := range by {
		row := repository.AvgPriceByCityRow{City: pgtype.Text{String: city, Valid: city != ""}}
		if a.n > 0 {
			row.AvgPrice = pgtype.Float8{Float64: a.sum / float64(a.n), Valid: true}
		}
		out = append(out, row)
	}
	slices.SortFunc(out, func(a, b repository.AvgPriceByCityRow) int { return cmp.Compare(a.City.String, b.City.String) })
	return out, nil
}

func containsFold(v, filter pgtype.Text) bool {
	if !filter.Valid {
		return true
	}
	return v.Valid && strings.Contains(strings.ToLower(v.String), strings.ToLower(filter.String))
}

func page[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

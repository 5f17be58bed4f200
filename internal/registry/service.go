package registry

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/campus-atlas/campus-atlas/internal/shared"
)

// ListResult holds one page of records plus the total match count.
type ListResult struct {
	Items []University `json:"items"`
	Total int          `json:"total"`
}

// Service wraps catalog business rules with read-through caching.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

// NewService constructs a new Service.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns one page of records matching the filter. Results are cached in
// Redis keyed by the normalized filter and page; a cache failure falls back to
// the repository.
func (s *Service) List(ctx context.Context, f Filter, page shared.PageRequest) (ListResult, error) {
	key, err := s.cache.BuildKey(ctx, "registry", "list",
		f.Country, f.Continent, f.Name, f.EstablishedYear, f.Program,
		strconv.Itoa(page.Page), strconv.Itoa(page.Limit))
	if err != nil {
		s.warn("cache key", err)
		return s.listFromRepo(ctx, f, page)
	}

	var result ListResult
	if err := s.cache.FetchJSON(ctx, key, &result, func(ctx context.Context) (any, error) {
		return s.listFromRepo(ctx, f, page)
	}); err != nil {
		return ListResult{}, err
	}
	return result, nil
}

func (s *Service) listFromRepo(ctx context.Context, f Filter, page shared.PageRequest) (ListResult, error) {
	items, total, err := s.repo.List(ctx, f, page)
	if err != nil {
		return ListResult{}, err
	}
	if items == nil {
		items = []University{}
	}
	return ListResult{Items: items, Total: total}, nil
}

// Get fetches one record by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*University, error) {
	return s.repo.Get(ctx, id)
}

// Create inserts a record and invalidates cached listings.
func (s *Service) Create(ctx context.Context, u *University) error {
	if err := s.repo.Create(ctx, u); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// Update replaces a record and invalidates cached listings.
func (s *Service) Update(ctx context.Context, id uuid.UUID, u *University) error {
	if err := s.repo.Update(ctx, id, u); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

// Delete removes a record and invalidates cached listings.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.bump(ctx)
	return nil
}

func (s *Service) bump(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.warn("cache bump", err)
	}
}

func (s *Service) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warn(msg, slog.Any("error", err))
	}
}

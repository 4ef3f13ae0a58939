package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/stocklens/catalog-api/internal/cache"
	"github.com/stocklens/catalog-api/internal/models"
	"github.com/stocklens/catalog-api/internal/repository"
	"github.com/stocklens/catalog-api/internal/utils"
)

// TaxonomyStore is the storage surface the resolver needs. Implemented
// by repository.TaxonomyRepository.
type TaxonomyStore interface {
	GetByName(ctx context.Context, kind models.TaxonomyKind, name string) (*models.TaxonomyEntry, error)
	GetByCode(ctx context.Context, kind models.TaxonomyKind, code string) (*models.TaxonomyEntry, error)
	NextNumber(ctx context.Context, kind models.TaxonomyKind) (int64, error)
	Create(ctx context.Context, e *models.TaxonomyEntry) error
	List(ctx context.Context, kind models.TaxonomyKind) ([]models.TaxonomyEntry, error)
	SearchByName(ctx context.Context, kind models.TaxonomyKind, query string) ([]models.TaxonomyEntry, error)
	UpdateName(ctx context.Context, kind models.TaxonomyKind, code, name string) (*models.TaxonomyEntry, error)
}

// TaxonomyService resolves display names to stable codes, creating a
// new taxonomy entry with a freshly minted code when none matches.
//
// Code minting rides on a per-kind store sequence, so two concurrent
// resolves of different new names can never observe the same "current
// maximum" and collide. A concurrent create of the same name loses the
// unique-name race and adopts the winner's entry instead.
type TaxonomyService struct {
	repo  TaxonomyStore
	cache *cache.TaxonomyCache
}

// NewTaxonomyService constructs a TaxonomyService. The cache may be nil.
func NewTaxonomyService(repo TaxonomyStore, taxCache *cache.TaxonomyCache) *TaxonomyService {
	return &TaxonomyService{repo: repo, cache: taxCache}
}

// createRetries bounds how often a lost unique race is retried before
// surfacing a Conflict to the caller.
const createRetries = 3

// Resolve returns the code for a display name, creating the entry if it
// does not exist. Product lines must be resolved through
// ResolveProductLine so the owning category is recorded.
func (s *TaxonomyService) Resolve(ctx context.Context, kind models.TaxonomyKind, name string) (string, error) {
	return s.resolve(ctx, kind, name, "")
}

// ResolveProductLine resolves a product-line name, storing the owning
// category code when a new line is created.
func (s *TaxonomyService) ResolveProductLine(ctx context.Context, name, categoryCode string) (string, error) {
	return s.resolve(ctx, models.KindProductLine, name, categoryCode)
}

func (s *TaxonomyService) resolve(ctx context.Context, kind models.TaxonomyKind, name, categoryCode string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", utils.InvalidArgument("EMPTY_TAXONOMY_NAME", "taxonomy display name is required")
	}
	if !kind.Valid() {
		return "", utils.InvalidArgument("INVALID_TAXONOMY_KIND", "unknown taxonomy kind")
	}

	if code := s.cache.GetCode(ctx, kind, name); code != "" {
		return code, nil
	}

	entry, err := s.repo.GetByName(ctx, kind, name)
	if err == nil {
		s.cache.PutCode(ctx, kind, name, entry.Code)
		return entry.Code, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", utils.Internal("resolve-taxonomy", err)
	}

	for attempt := 1; attempt <= createRetries; attempt++ {
		n, err := s.repo.NextNumber(ctx, kind)
		if err != nil {
			return "", utils.Internal("resolve-taxonomy", err)
		}
		created := &models.TaxonomyEntry{
			Kind:       kind,
			Code:       models.FormatCode(kind, n),
			Name:       name,
			CategoryID: categoryCode,
		}
		err = s.repo.Create(ctx, created)
		if err == nil {
			log.Info().Str("kind", string(kind)).Str("code", created.Code).Str("name", name).Msg("taxonomy entry created")
			s.cache.PutCode(ctx, kind, name, created.Code)
			return created.Code, nil
		}
		if !repository.IsUniqueViolation(err) {
			return "", utils.Internal("resolve-taxonomy", err)
		}

		// Lost a race. Either another resolver created this name first
		// (adopt the winner) or a reseeded sequence collided on the
		// code (mint again).
		winner, lookupErr := s.repo.GetByName(ctx, kind, name)
		if lookupErr == nil {
			s.cache.PutCode(ctx, kind, name, winner.Code)
			return winner.Code, nil
		}
		if !errors.Is(lookupErr, sql.ErrNoRows) {
			return "", utils.Internal("resolve-taxonomy", lookupErr)
		}
	}

	return "", utils.Conflict("TAXONOMY_CODE_CONFLICT", "could not mint a unique taxonomy code")
}

// Get returns a single entry by code.
func (s *TaxonomyService) Get(ctx context.Context, kind models.TaxonomyKind, code string) (*models.TaxonomyEntry, error) {
	entry, err := s.repo.GetByCode(ctx, kind, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("TAXONOMY_NOT_FOUND", "no taxonomy entry with code "+code)
		}
		return nil, utils.Internal("", err)
	}
	return entry, nil
}

// List returns all entries of a kind ordered by code.
func (s *TaxonomyService) List(ctx context.Context, kind models.TaxonomyKind) ([]models.TaxonomyEntry, error) {
	if !kind.Valid() {
		return nil, utils.InvalidArgument("INVALID_TAXONOMY_KIND", "unknown taxonomy kind")
	}
	entries, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, utils.Internal("", err)
	}
	return entries, nil
}

// Search returns entries whose name contains the query.
func (s *TaxonomyService) Search(ctx context.Context, kind models.TaxonomyKind, query string) ([]models.TaxonomyEntry, error) {
	if strings.TrimSpace(query) == "" {
		return nil, utils.InvalidArgument("EMPTY_QUERY", "query parameter q is required")
	}
	entries, err := s.repo.SearchByName(ctx, kind, query)
	if err != nil {
		return nil, utils.Internal("", err)
	}
	return entries, nil
}

// Create resolves-or-creates through the same minting path as Resolve
// and returns the full entry; used by the taxonomy admin endpoints.
func (s *TaxonomyService) Create(ctx context.Context, kind models.TaxonomyKind, name, categoryCode string) (*models.TaxonomyEntry, error) {
	if kind == models.KindProductLine && strings.TrimSpace(categoryCode) == "" {
		return nil, utils.InvalidArgument("MISSING_CATEGORY", "product line requires a category id")
	}
	code, err := s.resolve(ctx, kind, name, categoryCode)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, kind, code)
}

// Rename updates an entry's display name; the code never changes.
func (s *TaxonomyService) Rename(ctx context.Context, kind models.TaxonomyKind, code, name string) (*models.TaxonomyEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, utils.InvalidArgument("EMPTY_TAXONOMY_NAME", "taxonomy display name is required")
	}
	old, err := s.repo.GetByCode(ctx, kind, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NotFound("TAXONOMY_NOT_FOUND", "no taxonomy entry with code "+code)
		}
		return nil, utils.Internal("", err)
	}
	entry, err := s.repo.UpdateName(ctx, kind, code, name)
	if err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, utils.Conflict("TAXONOMY_NAME_TAKEN", "another entry already uses that name")
		}
		return nil, utils.Internal("", err)
	}
	s.cache.Invalidate(ctx, kind, old.Name)
	s.cache.PutCode(ctx, kind, entry.Name, entry.Code)
	return entry, nil
}

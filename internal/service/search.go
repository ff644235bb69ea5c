package service

import (
	"context"

	"github.com/drios/memedb/internal/domain"
	"github.com/drios/memedb/internal/logger"
	"github.com/drios/memedb/internal/repository"
)

// SearchService answers description searches over stored memes.
type SearchService struct {
	repo   *repository.MemeRepository
	logger *logger.Logger
}

// MemeResult is one search hit.
type MemeResult struct {
	Description string `json:"descripcion"`
	Usuario     string `json:"usuario"`
	Ruta        string `json:"ruta"`
}

// Stats summarizes the stored corpus.
type Stats struct {
	Memes int64 `json:"memes"`
	Tags  int64 `json:"tags"`
}

// NewSearchService creates a new search service.
func NewSearchService(repo *repository.MemeRepository, log *logger.Logger) *SearchService {
	return &SearchService{repo: repo, logger: log}
}

// Search finds memes whose description contains q as a case-insensitive
// substring. An empty result is reported as a not-found error, which is a
// valid outcome distinct from a server failure.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - q: search term.
// Returns:
//   - []MemeResult: matching memes, newest first.
//   - error: validation error for empty q, not-found for zero matches,
//     persistence error otherwise.
func (s *SearchService) Search(ctx context.Context, q string) ([]MemeResult, error) {
	if q == "" {
		return nil, domain.NewValidationError("a search term is required")
	}

	memes, err := s.repo.SearchByDescription(ctx, q)
	if err != nil {
		return nil, domain.NewPersistenceError("search query failed", err)
	}
	if len(memes) == 0 {
		return nil, domain.NewNotFoundError("no memes matched the search")
	}

	results := make([]MemeResult, len(memes))
	for i, m := range memes {
		results[i] = MemeResult{
			Description: m.Description,
			Usuario:     m.Usuario,
			Ruta:        m.Ruta,
		}
	}
	return results, nil
}

// GetStats returns corpus counts.
func (s *SearchService) GetStats(ctx context.Context) (*Stats, error) {
	memes, err := s.repo.CountMemes(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to count memes", err)
	}
	tags, err := s.repo.CountTags(ctx)
	if err != nil {
		return nil, domain.NewPersistenceError("failed to count tags", err)
	}
	return &Stats{Memes: memes, Tags: tags}, nil
}

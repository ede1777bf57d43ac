package fetch

import (
	"context"
	"sync"
	"time"

	"github.com/matineehq/matinee/internal/domain/model"
	"github.com/matineehq/matinee/pkg/logger"
)

// defaultEnrichConcurrency bounds parallel TMDb lookups per catalog fetch.
const defaultEnrichConcurrency = 4

// CatalogFetcher composes the Cineville screening feed with TMDb metadata
// enrichment into the catalog the façade consumes. TMDb trouble never
// fails the catalog: a movie without metadata just has no genres and no
// tmdb payload.
type CatalogFetcher struct {
	cineville *CinevilleClient
	tmdb      *TMDBClient // nil disables enrichment

	enrichConcurrency int
	logger            logger.Logger
}

// CatalogOption applies a configuration option to the fetcher.
type CatalogOption func(*CatalogFetcher)

// WithEnrichConcurrency bounds parallel metadata lookups.
func WithEnrichConcurrency(n int) CatalogOption {
	return func(f *CatalogFetcher) {
		if n > 0 {
			f.enrichConcurrency = n
		}
	}
}

// NewCatalogFetcher creates the composed catalog fetcher. tmdb may be nil
// when no API key is configured.
func NewCatalogFetcher(cineville *CinevilleClient, tmdb *TMDBClient, opts ...CatalogOption) *CatalogFetcher {
	f := &CatalogFetcher{
		cineville:         cineville,
		tmdb:              tmdb,
		enrichConcurrency: defaultEnrichConcurrency,
		logger:            logger.Get().Named("catalog"),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchCatalog loads screenings and enriches each distinct movie with
// TMDb genres and ids.
func (f *CatalogFetcher) FetchCatalog(ctx context.Context, from time.Time, daysAhead int, limitAmsterdam bool) (model.Catalog, error) {
	screenings, err := f.cineville.FetchScreenings(ctx, from, daysAhead, limitAmsterdam)
	if err != nil {
		return model.Catalog{}, err
	}
	cat := toCatalog(screenings)
	if f.tmdb == nil {
		return cat, nil
	}

	sem := make(chan struct{}, f.enrichConcurrency)
	var wg sync.WaitGroup
	for i := range cat.Movies {
		wg.Add(1)
		sem <- struct{}{}
		go func(m *model.Movie) {
			defer func() {
				<-sem
				wg.Done()
			}()
			meta, err := f.tmdb.SearchMovie(ctx, m.Title, m.Year)
			if err != nil {
				f.logger.Debug(ctx, "metadata lookup failed",
					logger.String("title", m.Title),
					logger.Error(err),
				)
				return
			}
			if meta == nil {
				return
			}
			m.ExternalIDs.TMDB = meta.ID
			m.Genres = meta.Genres
			m.TMDB = meta.Raw
		}(&cat.Movies[i])
	}
	wg.Wait()
	return cat, nil
}

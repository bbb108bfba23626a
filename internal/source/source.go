// Package source coordinates metadata lookups against the YES24 book site.
//
// A lookup builds a search query (or goes straight to the detail page when a
// goods id is already known), parses the result listing into candidate URLs,
// fans out one worker per candidate, and merges the workers' records into a
// single relevance-ordered slice.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/bookfetch/yes24-metadata/internal/cache"
	"github.com/bookfetch/yes24-metadata/internal/fetcher"
	"github.com/bookfetch/yes24-metadata/internal/metadata"
	"github.com/bookfetch/yes24-metadata/internal/metrics"
	"github.com/bookfetch/yes24-metadata/internal/ratelimit"
	"github.com/bookfetch/yes24-metadata/internal/results"
	"github.com/bookfetch/yes24-metadata/internal/worker"
)

// Site URL templates.
const (
	BaseURL   = "http://www.yes24.com"
	BrowseURL = "http://www.yes24.com/24/Goods"
	SearchURL = "http://www.yes24.com/searchcorner/Search?domain=BOOK"
)

// ErrInsufficientMetadata is returned when neither a usable identifier nor
// any title/author tokens are available to build a query.
var ErrInsufficientMetadata = errors.New("insufficient metadata to construct query")

// ErrNoCover is returned when no cover URL could be located for a request.
var ErrNoCover = errors.New("no cover found")

// Fetcher is the page/bytes retrieval dependency.
type Fetcher interface {
	FetchPage(ctx context.Context, url string) (fetcher.Page, error)
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// Config bounds lookup behavior.
type Config struct {
	// MaxCandidates caps how many detail-page workers one lookup spawns.
	// Zero means no cap.
	MaxCandidates int
}

// Request carries the caller's known bibliographic hints.
type Request struct {
	Title       string            `json:"title,omitempty"`
	Authors     []string          `json:"authors,omitempty"`
	Identifiers map[string]string `json:"identifiers,omitempty"`
}

// Source is the lookup coordinator. It owns the per-session identifier cache
// shared by its workers.
type Source struct {
	fetcher Fetcher
	limiter *ratelimit.Limiter
	session *cache.Session
	logger  *zap.Logger
	cfg     Config
}

// New constructs a Source with a fresh session cache.
func New(f Fetcher, limiter *ratelimit.Limiter, logger *zap.Logger, cfg Config) *Source {
	return &Source{
		fetcher: f,
		limiter: limiter,
		session: cache.NewSession(),
		logger:  logger,
		cfg:     cfg,
	}
}

// BookURL returns the detail-page URL for a known goods id.
func (s *Source) BookURL(identifiers map[string]string) (string, bool) {
	id := identifiers[metadata.IDYes24]
	if id == "" {
		return "", false
	}
	return fmt.Sprintf("%s/%s", BrowseURL, id), true
}

// Identify runs a full lookup and returns records sorted by relevance.
// An empty result listing is a success with zero records.
func (s *Source) Identify(ctx context.Context, req Request) ([]*metadata.Record, error) {
	candidates, err := s.findCandidates(ctx, req)
	if err != nil {
		metrics.ObserveLookup("error")
		return nil, err
	}
	if len(candidates) == 0 {
		metrics.ObserveLookup("no_match")
		s.logger.Info("no candidates found")
		return nil, nil
	}
	if s.cfg.MaxCandidates > 0 && len(candidates) > s.cfg.MaxCandidates {
		candidates = candidates[:s.cfg.MaxCandidates]
	}
	s.logger.Info("candidates found", zap.Strings("urls", candidates))

	recs, err := s.runWorkers(ctx, candidates)
	if err != nil {
		metrics.ObserveLookup("aborted")
		return recs, err
	}

	metadata.SortByRelevance(recs, metadata.QueryHints{Title: req.Title, Authors: req.Authors})
	metrics.ObserveLookup("success")
	return recs, nil
}

// findCandidates resolves the list of detail-page URLs to fetch: either the
// direct goods URL, or the parsed search listing.
func (s *Source) findCandidates(ctx context.Context, req Request) ([]string, error) {
	if url, ok := s.BookURL(req.Identifiers); ok {
		return []string{url}, nil
	}

	query, err := s.BuildQuery(req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("querying", zap.String("url", query))

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	page, err := s.fetcher.FetchPage(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("identify query: %w", err)
	}
	metrics.ObserveFetchDuration("search", page.Duration)

	doc, err := scrapeSearchPage(page.Text)
	if err != nil {
		return nil, fmt.Errorf("parse search page: %w", err)
	}
	return parseSearchResults(doc), nil
}

// runWorkers fans out one worker per candidate with a fixed inter-launch
// delay and joins them, bounded by the context.
func (s *Source) runWorkers(ctx context.Context, candidates []string) ([]*metadata.Record, error) {
	out := results.NewQueue(len(candidates))
	defer out.Close()

	var wg sync.WaitGroup
	for i, url := range candidates {
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}
		w := worker.New(url, i, s.fetcher, s.session, out, s.logger)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return out.Drain(), nil
	case <-ctx.Done():
		// Workers observe the same context; collect whatever landed.
		<-done
		return out.Drain(), fmt.Errorf("identify aborted: %w", ctx.Err())
	}
}

// CachedCoverURL resolves a cover URL from the session cache via the goods
// id, falling back to the ISBN-to-id mapping.
func (s *Source) CachedCoverURL(identifiers map[string]string) string {
	id := identifiers[metadata.IDYes24]
	if id == "" {
		if isbn := identifiers[metadata.IDISBN]; isbn != "" {
			id = s.session.IDForISBN(metadata.ValidateISBN(isbn))
		}
	}
	if id == "" {
		return ""
	}
	return s.session.CoverForID(id)
}

// DownloadCover fetches the cover image bytes for a request, running a full
// identify first when the cache has no URL yet.
func (s *Source) DownloadCover(ctx context.Context, req Request) ([]byte, error) {
	coverURL := s.CachedCoverURL(req.Identifiers)
	if coverURL == "" {
		s.logger.Info("no cached cover found, running identify")
		recs, err := s.Identify(ctx, req)
		if err != nil {
			metrics.ObserveCoverDownload("error")
			return nil, err
		}
		for _, rec := range recs {
			if coverURL = s.CachedCoverURL(rec.Identifiers); coverURL != "" {
				break
			}
		}
	}
	if coverURL == "" {
		metrics.ObserveCoverDownload("missing")
		s.logger.Info("no cover found")
		return nil, ErrNoCover
	}

	s.logger.Info("downloading cover", zap.String("url", coverURL))
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	data, err := s.fetcher.FetchBytes(ctx, coverURL)
	if err != nil {
		metrics.ObserveCoverDownload("error")
		return nil, fmt.Errorf("download cover: %w", err)
	}
	metrics.ObserveCoverDownload("success")
	return data, nil
}

// absolutize prefixes listing hrefs with the site base unless they are
// already absolute.
func absolutize(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return BaseURL + href
}

package collect

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/nikbrunner/bmtag/internal/importer"
	"github.com/nikbrunner/bmtag/internal/locator"
	"github.com/nikbrunner/bmtag/internal/model"
	"github.com/nikbrunner/bmtag/internal/storage"
)

// DefaultEnrichLimit is how many of the newest records get content and a tag.
const DefaultEnrichLimit = 10

// parseConcurrency bounds how many stores are parsed at once.
const parseConcurrency = 4

// ContentFetcher downloads a page's main text.
type ContentFetcher interface {
	Fetch(ctx context.Context, url string) model.PageContent
}

// Tagger turns page text into a single label.
type Tagger interface {
	Tag(ctx context.Context, text string) (string, error)
}

// EnrichmentCache remembers successful enrichments between runs.
type EnrichmentCache interface {
	Get(url string) (*storage.Enrichment, error)
	Put(e storage.Enrichment) error
}

// Stats summarizes a collection run.
type Stats struct {
	Total     int            `json:"total"`
	ByBrowser map[string]int `json:"by_browser"`
}

// Analysis is the result of Analyze.
type Analysis struct {
	Bookmarks []model.BookmarkRecord `json:"bookmarks"`
	Stats     Stats                  `json:"stats"`
}

// Params holds parameters for creating an Orchestrator.
type Params struct {
	Sources     func() []locator.Source
	Parse       func(locator.Source) ([]model.BookmarkRecord, error)
	Fetcher     ContentFetcher
	Tagger      Tagger // nil tags every enriched record as failed
	Cache       EnrichmentCache
	Limiter     *rate.Limiter
	EnrichLimit int
	Logger      *slog.Logger
}

// Orchestrator collects bookmarks from every store and enriches the newest.
type Orchestrator struct {
	sources     func() []locator.Source
	parse       func(locator.Source) ([]model.BookmarkRecord, error)
	fetcher     ContentFetcher
	tagger      Tagger
	cache       EnrichmentCache
	limiter     *rate.Limiter
	enrichLimit int
	logger      *slog.Logger
}

// New creates an Orchestrator.
func New(params Params) *Orchestrator {
	o := &Orchestrator{
		sources:     params.Sources,
		parse:       params.Parse,
		fetcher:     params.Fetcher,
		tagger:      params.Tagger,
		cache:       params.Cache,
		limiter:     params.Limiter,
		enrichLimit: params.EnrichLimit,
		logger:      params.Logger,
	}
	if o.parse == nil {
		o.parse = importer.ParseSource
	}
	if o.limiter == nil {
		o.limiter = rate.NewLimiter(rate.Inf, 1)
	}
	if o.enrichLimit <= 0 {
		o.enrichLimit = DefaultEnrichLimit
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// Collect parses every discovered store. A store that fails to parse is
// logged and contributes no records. Records keep source discovery order.
func (o *Orchestrator) Collect(ctx context.Context) ([]model.BookmarkRecord, Stats, error) {
	sources := o.sources()
	perSource := make([][]model.BookmarkRecord, len(sources))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(parseConcurrency)
	for i, src := range sources {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := o.parse(src)
			if err != nil {
				o.logger.Warn("parse bookmarks failed", "store", src.Key(), "path", src.Path, "error", err)
				return nil
			}
			perSource[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Stats{}, err
	}

	stats := Stats{ByBrowser: map[string]int{
		string(model.Chrome): 0,
		string(model.Edge):   0,
		string(model.Safari): 0,
	}}
	var all []model.BookmarkRecord
	for i, records := range perSource {
		stats.ByBrowser[string(sources[i].Browser)] += len(records)
		all = append(all, records...)
	}
	stats.Total = len(all)

	return all, stats, nil
}

// Analyze collects all records, sorts them newest first and enriches the
// first EnrichLimit with page content and a tag.
func (o *Orchestrator) Analyze(ctx context.Context) (*Analysis, error) {
	records, stats, err := o.Collect(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DateAdded.After(records[j].DateAdded)
	})

	limit := min(o.enrichLimit, len(records))
	for i := range limit {
		if err := o.enrich(ctx, &records[i]); err != nil {
			return nil, err
		}
	}

	if records == nil {
		records = []model.BookmarkRecord{}
	}
	return &Analysis{Bookmarks: records, Stats: stats}, nil
}

// enrich fills in page content and a tag. Only context cancellation is
// returned; every other failure becomes the sentinel tag.
func (o *Orchestrator) enrich(ctx context.Context, r *model.BookmarkRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !isHTTP(r.URL) {
		r.PageContent = &model.PageContent{Status: model.ContentError, Error: "unsupported URL scheme"}
		r.Tags = model.Labels{model.SentinelTag}
		return nil
	}

	if o.cache != nil {
		cached, err := o.cache.Get(r.URL)
		if err != nil {
			o.logger.Warn("enrichment cache read failed", "url", r.URL, "error", err)
		} else if cached != nil {
			r.PageContent = &model.PageContent{Content: cached.Content, Status: model.ContentSuccess}
			r.Tags = model.Labels{cached.Tag}
			return nil
		}
	}

	if o.fetcher == nil {
		r.Tags = model.Labels{model.SentinelTag}
		return nil
	}

	content := o.fetcher.Fetch(ctx, r.URL)
	r.PageContent = &content
	if !content.OK() {
		o.logger.Debug("fetch page failed", "url", r.URL, "error", content.Error)
		r.Tags = model.Labels{model.SentinelTag}
		return nil
	}

	if o.tagger == nil {
		r.Tags = model.Labels{model.SentinelTag}
		return nil
	}

	if err := o.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}

	tag, err := o.tagger.Tag(ctx, content.Content)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		o.logger.Warn("tag page failed", "url", r.URL, "error", err)
		r.Tags = model.Labels{model.SentinelTag}
		return nil
	}
	r.Tags = model.Labels{tag}

	if o.cache != nil {
		if err := o.cache.Put(storage.Enrichment{URL: r.URL, Content: content.Content, Tag: tag}); err != nil {
			o.logger.Warn("enrichment cache write failed", "url", r.URL, "error", err)
		}
	}
	return nil
}

func isHTTP(url string) bool {
	return strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://")
}

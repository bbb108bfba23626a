// Package worker fetches one detail page and extracts a bibliographic record.
package worker

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/bookfetch/yes24-metadata/internal/cache"
	"github.com/bookfetch/yes24-metadata/internal/fetcher"
	"github.com/bookfetch/yes24-metadata/internal/metadata"
	"github.com/bookfetch/yes24-metadata/internal/metrics"
	"github.com/bookfetch/yes24-metadata/internal/results"
	"github.com/bookfetch/yes24-metadata/internal/scrape"
)

// PageFetcher retrieves and decodes one page.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (fetcher.Page, error)
}

// Worker retrieves one candidate detail page and emits at most one record.
// Workers are independent: a failure here never affects the others.
type Worker struct {
	url       string
	relevance int
	fetcher   PageFetcher
	cache     *cache.Session
	out       *results.Queue
	logger    *zap.Logger
}

// New constructs a Worker for a single detail-page URL. The relevance is the
// candidate's position in the search listing.
func New(url string, relevance int, f PageFetcher, session *cache.Session, out *results.Queue, logger *zap.Logger) *Worker {
	return &Worker{
		url:       url,
		relevance: relevance,
		fetcher:   f,
		cache:     session,
		out:       out,
		logger:    logger.With(zap.String("url", url)),
	}
}

// Run executes the fetch-parse-emit pipeline. Optional fields that fail to
// parse are logged and left empty; a record missing title, authors or the
// goods id is dropped.
func (w *Worker) Run(ctx context.Context) {
	metrics.IncActiveWorkers()
	defer metrics.DecActiveWorkers()

	page, err := w.fetcher.FetchPage(ctx, w.url)
	if err != nil {
		w.logger.Error("detail fetch failed", zap.Error(err))
		return
	}
	metrics.ObserveDetailPage(page.StatusCode)
	metrics.ObserveFetchDuration("detail", page.Duration)

	doc, err := scrape.ParseString(page.Text)
	if err != nil {
		w.logger.Error("detail parse failed", zap.Error(err))
		return
	}

	rec := w.parseDetails(doc)
	if rec == nil {
		return
	}
	if err := w.out.Put(ctx, rec); err != nil {
		w.logger.Warn("record dropped", zap.Error(err))
	}
}

func (w *Worker) parseDetails(doc *html.Node) *metadata.Record {
	goodsID := ParseGoodsID(w.url)
	title, series, seriesIdx := parseTitleSeries(doc)
	authors := parseAuthors(doc)

	if title == "" || len(authors) == 0 || goodsID == "" {
		w.logger.Error("missing mandatory fields",
			zap.String("goods_id", goodsID),
			zap.String("title", title),
			zap.Strings("authors", authors),
		)
		return nil
	}

	rec := metadata.NewRecord(title, authors)
	rec.Relevance = w.relevance
	rec.Language = "ko"
	rec.Series = series
	rec.SeriesIndex = seriesIdx
	rec.SetIdentifier(metadata.IDYes24, goodsID)

	if isbn := metadata.ValidateISBN(scrape.FirstText(doc, `//dd[@class="isbn10"]/p`)); isbn != "" {
		rec.SetIdentifier(metadata.IDISBN, isbn)
		w.cache.PutISBN(isbn, goodsID)
	} else {
		metrics.ObserveFieldParseFailure("isbn")
	}

	rec.Publisher = parsePublisher(doc)
	if rec.Publisher == "" {
		metrics.ObserveFieldParseFailure("publisher")
	}

	if date, ok := parsePubDate(doc); ok {
		rec.PubDate = &date
	} else {
		metrics.ObserveFieldParseFailure("pubdate")
		w.logger.Debug("no published date found")
	}

	rec.Comments = parseComments(doc)

	if coverURL := parseCover(doc); coverURL != "" {
		rec.CoverURL = coverURL
		w.cache.PutCover(goodsID, coverURL)
	} else {
		metrics.ObserveFieldParseFailure("cover")
		w.logger.Debug("no cover found")
	}

	return rec
}

// parseTitleSeries reads the title heading and the optional series marker.
// A series text of the form "name-2" yields the name and a numeric index.
func parseTitleSeries(doc *html.Node) (title, series string, seriesIdx float64) {
	title = scrape.FirstText(doc, `//h1/a`)
	if title == "" {
		title = scrape.FirstText(doc, `//meta[@property="og:title"]/@content`)
	}
	if title == "" {
		return "", "", 0
	}

	seriesText := scrape.FirstText(doc, `//span[@class="series"]/a`)
	if seriesText == "" {
		return title, "", 0
	}
	if i := strings.LastIndex(seriesText, "-"); i > 0 {
		if idx, err := strconv.ParseFloat(strings.TrimSpace(seriesText[i+1:]), 64); err == nil {
			return title, strings.TrimSpace(seriesText[:i]), idx
		}
	}
	return title, seriesText, 0
}

// parseAuthors splits the brief line under the title block: authors come
// before the first "|", comma-separated.
func parseAuthors(doc *html.Node) []string {
	brief := scrape.FirstText(doc, `//div[@id="title"]/p`)
	if brief == "" {
		return nil
	}
	head := strings.SplitN(brief, "|", 2)[0]
	var authors []string
	for _, a := range strings.Split(head, ",") {
		if a = strings.TrimSpace(a); a != "" {
			authors = append(authors, a)
		}
	}
	return authors
}

// parsePublisher reads the brief line's trailing segment. Lines with more
// than three "|" segments carry the publish date last, so the publisher sits
// one segment earlier.
func parsePublisher(doc *html.Node) string {
	brief := scrape.FirstText(doc, `//div[@id="title"]/p`)
	if brief == "" {
		return ""
	}
	parts := strings.Split(brief, "|")
	idx := len(parts) - 1
	if len(parts) > 3 {
		idx = len(parts) - 2
	}
	return strings.TrimSpace(parts[idx])
}

// parsePubDate converts the site's date text, e.g. "2011년 8월 30일".
func parsePubDate(doc *html.Node) (time.Time, bool) {
	text := scrape.FirstText(doc, `//dd[@class="pdDate"]/p`)
	if text == "" {
		return time.Time{}, false
	}
	m := pubDatePattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}

// parseComments extracts the 책소개 (book introduction) paragraph as
// sanitized HTML.
func parseComments(doc *html.Node) string {
	node := scrape.First(doc, `//div/h2/img[@title="책소개"]/../../p`)
	if node == nil {
		return ""
	}
	return scrape.SanitizeComments(scrape.OuterHTML(node))
}

// parseCover reads the og:image URL, upgrading the medium-size suffix to the
// full-size one.
func parseCover(doc *html.Node) string {
	pageURL := scrape.FirstText(doc, `//meta[@property="og:image"]/@content`)
	if pageURL == "" {
		return ""
	}
	if strings.HasSuffix(pageURL, "/M") {
		pageURL = strings.TrimSuffix(pageURL, "/M") + "/L"
	}
	return pageURL
}

// Package fetcher implements single-shot page retrieval using gocolly.
//
// Each URL gets exactly one best-effort GET: no retries, no backoff. That is
// all the lookup flow needs, and it keeps load on the bookseller minimal.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrNotFound marks a page that does not exist, whether reported by HTTP
// status or by the site's soft-404 body marker.
var ErrNotFound = errors.New("page not found")

// softNotFoundMarker appears in bodies the site serves with a 200 status for
// malformed goods URLs.
const softNotFoundMarker = "HTTP 404."

// siteCharset is the encoding the bookseller serves pages in, declared or not.
const siteCharset = "euc-kr"

// Config controls collector behavior.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

// Page is one fetched and decoded document.
type Page struct {
	URL        string
	StatusCode int
	Body       []byte // body as delivered, already transcoded to UTF-8
	Text       string
	Duration   time.Duration
}

// Fetcher retrieves pages from the bookseller site.
type Fetcher struct {
	cfg           Config
	transport     http.RoundTripper
	baseCollector *colly.Collector
}

// New builds a Fetcher.
func New(cfg Config) *Fetcher {
	c := colly.NewCollector(colly.Async(false))
	transport := newHTTPTransport()
	c.WithTransport(transport)

	return &Fetcher{
		cfg:           cfg,
		transport:     transport,
		baseCollector: c,
	}
}

// FetchPage executes a single GET and decodes the EUC-KR body. The collector
// does the transcoding exactly once; the site's charset is forced so pages
// missing the Content-Type declaration decode the same way.
func (f *Fetcher) FetchPage(ctx context.Context, url string) (Page, error) {
	body, status, duration, err := f.fetch(ctx, url, siteCharset)
	if err != nil {
		return Page{}, err
	}

	text := string(body)
	if strings.Contains(text, softNotFoundMarker) {
		return Page{}, fmt.Errorf("%s: %w", url, ErrNotFound)
	}
	return Page{
		URL:        url,
		StatusCode: status,
		Body:       body,
		Text:       text,
		Duration:   duration,
	}, nil
}

// FetchBytes executes a single GET and returns the raw body, for covers and
// other binary payloads.
func (f *Fetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	body, _, _, err := f.fetch(ctx, url, "")
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *Fetcher) fetch(ctx context.Context, url, charset string) (body []byte, status int, duration time.Duration, err error) {
	collector := f.baseCollector.Clone()
	collector.IgnoreRobotsTxt = true
	collector.AllowURLRevisit = true
	if charset != "" {
		collector.OnRequest(func(r *colly.Request) {
			r.ResponseCharacterEncoding = charset
		})
	}
	if f.cfg.UserAgent != "" {
		collector.UserAgent = f.cfg.UserAgent
	}
	timeout := f.cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	collector.WithTransport(f.transport)

	start := time.Now()
	var fetchErr error
	var errStatus int

	collector.OnResponse(func(r *colly.Response) {
		body = append([]byte(nil), r.Body...)
		status = r.StatusCode
		duration = time.Since(start)
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = err
		if r != nil {
			errStatus = r.StatusCode
		}
	})

	if err := f.runCollector(ctx, collector, url, &fetchErr, &errStatus); err != nil {
		return nil, 0, 0, err
	}
	return body, status, duration, nil
}

func (f *Fetcher) runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error, errStatus *int) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err == nil && *fetchErr != nil {
			err = *fetchErr
		}
		if err != nil {
			if *errStatus == http.StatusNotFound {
				return fmt.Errorf("%s: %w", url, ErrNotFound)
			}
			return fmt.Errorf("visit %s: %w", url, err)
		}
		return nil
	}
}

// DecodeEUCKR converts EUC-KR bytes to a UTF-8 string. Invalid byte
// sequences are replaced with U+FFFD.
func DecodeEUCKR(b []byte) (string, error) {
	out, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), b)
	if err != nil {
		return "", fmt.Errorf("euc-kr decode: %w", err)
	}
	return string(out), nil
}

// EncodeEUCKR converts a UTF-8 string to EUC-KR bytes. Runes outside the
// EUC-KR repertoire fail the conversion.
func EncodeEUCKR(s string) ([]byte, error) {
	out, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("euc-kr encode: %w", err)
	}
	return out, nil
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}

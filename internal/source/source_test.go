package source

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bookfetch/yes24-metadata/internal/fetcher"
	"github.com/bookfetch/yes24-metadata/internal/metadata"
	"github.com/bookfetch/yes24-metadata/internal/metrics"
	"github.com/bookfetch/yes24-metadata/internal/ratelimit"
)

func TestMain(m *testing.M) {
	metrics.Init()
	m.Run()
}

const searchListing = `<html><body><table>
<tr><td class="goods_infogrp">
  <p class="goods_name"><a href="/24/Goods/72289">해리포터와 마법사의 돌 1</a></p>
</td></tr>
<tr><td class="goods_infogrp">
  <p class="goods_name mgr"><a href="/24/Goods/2128248">아투안의 무덤</a></p>
</td></tr>
<tr><td class="goods_infogrp"><p class="other"><a href="/ignored">x</a></p></td></tr>
</table></body></html>`

func detailPage(title, isbn string) string {
	return `<html><head>
<meta property="og:image" content="http://image.yes24.com/goods/72289/M"/>
</head><body>
<h1><a>` + title + `</a></h1>
<div id="title"><p>저자 저 | 출판사</p></div>
<dd class="isbn10"><p>` + isbn + `</p></dd>
</body></html>`
}

// stubFetcher serves canned pages keyed by URL substring and records every
// URL it was asked for.
type stubFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	blobs map[string][]byte
	seen  []string
	delay time.Duration
}

func (f *stubFetcher) record(url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, url)
}

func (f *stubFetcher) requested(substr string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.seen {
		if strings.Contains(u, substr) {
			return true
		}
	}
	return false
}

func (f *stubFetcher) FetchPage(ctx context.Context, url string) (fetcher.Page, error) {
	f.record(url)
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return fetcher.Page{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	text, ok := f.pages[url]
	if !ok {
		return fetcher.Page{}, fetcher.ErrNotFound
	}
	return fetcher.Page{URL: url, StatusCode: http.StatusOK, Text: text}, nil
}

func (f *stubFetcher) FetchBytes(_ context.Context, url string) ([]byte, error) {
	f.record(url)
	blob, ok := f.blobs[url]
	if !ok {
		return nil, fetcher.ErrNotFound
	}
	return blob, nil
}

func newSearchFixture() *stubFetcher {
	pages := make(map[string]string)
	pages[SearchURL+"&query=9788983920683"] = searchListing
	pages["http://www.yes24.com/24/Goods/72289"] = detailPage("해리포터와 마법사의 돌 1", "9788983920683")
	pages["http://www.yes24.com/24/Goods/2128248"] = detailPage("아투안의 무덤", "9788932902890")
	return &stubFetcher{
		pages: pages,
		blobs: map[string][]byte{
			"http://image.yes24.com/goods/72289/L": {0xff, 0xd8, 0xff},
		},
	}
}

func TestIdentify_SearchFanOut(t *testing.T) {
	t.Parallel()

	f := newSearchFixture()
	s := newTestSource(f)

	recs, err := s.Identify(context.Background(), Request{
		Identifiers: map[string]string{metadata.IDISBN: "9788983920683"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 2)
	require.True(t, f.requested("searchcorner"))

	ids := []string{recs[0].Identifier(metadata.IDYes24), recs[1].Identifier(metadata.IDYes24)}
	require.ElementsMatch(t, []string{"72289", "2128248"}, ids)
}

func TestIdentify_DirectIDSkipsSearch(t *testing.T) {
	t.Parallel()

	f := newSearchFixture()
	s := newTestSource(f)

	recs, err := s.Identify(context.Background(), Request{
		Identifiers: map[string]string{metadata.IDYes24: "72289"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "72289", recs[0].Identifier(metadata.IDYes24))
	require.False(t, f.requested("searchcorner"))
}

func TestIdentify_EmptyListingIsSuccess(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string]string{
		SearchURL + "&query=9788983920683": "<html><body>검색 결과가 없습니다</body></html>",
	}}
	s := newTestSource(f)

	recs, err := s.Identify(context.Background(), Request{
		Identifiers: map[string]string{metadata.IDISBN: "9788983920683"},
	})
	require.NoError(t, err)
	require.Empty(t, recs)
}

func TestIdentify_InsufficientMetadata(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{}
	s := newTestSource(f)

	_, err := s.Identify(context.Background(), Request{})
	require.ErrorIs(t, err, ErrInsufficientMetadata)
	require.Empty(t, f.seen)
}

func TestIdentify_MaxCandidatesCap(t *testing.T) {
	t.Parallel()

	f := newSearchFixture()
	s := New(f, ratelimit.New(0), zap.NewNop(), Config{MaxCandidates: 1})

	recs, err := s.Identify(context.Background(), Request{
		Identifiers: map[string]string{metadata.IDISBN: "9788983920683"},
	})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.False(t, f.requested("2128248"))
}

func TestIdentify_AbortStopsWorkers(t *testing.T) {
	t.Parallel()

	f := newSearchFixture()
	f.delay = 200 * time.Millisecond
	s := newTestSource(f)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := s.Identify(ctx, Request{
		Identifiers: map[string]string{metadata.IDISBN: "9788983920683"},
	})
	require.Error(t, err)
}

func TestDownloadCover_RunsIdentifyOnCacheMiss(t *testing.T) {
	t.Parallel()

	f := newSearchFixture()
	s := newTestSource(f)

	data, err := s.DownloadCover(context.Background(), Request{
		Identifiers: map[string]string{metadata.IDISBN: "9788983920683"},
	})
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	require.True(t, f.requested("searchcorner"))
}

func TestDownloadCover_UsesCache(t *testing.T) {
	t.Parallel()

	f := newSearchFixture()
	s := newTestSource(f)
	s.session.PutISBN("9788983920683", "72289")
	s.session.PutCover("72289", "http://image.yes24.com/goods/72289/L")

	data, err := s.DownloadCover(context.Background(), Request{
		Identifiers: map[string]string{metadata.IDISBN: "9788983920683"},
	})
	require.NoError(t, err)
	require.Equal(t, []byte{0xff, 0xd8, 0xff}, data)
	require.False(t, f.requested("searchcorner"))
}

func TestDownloadCover_NoCover(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string]string{
		SearchURL + "&query=9788983920683": "<html><body></body></html>",
	}}
	s := newTestSource(f)

	_, err := s.DownloadCover(context.Background(), Request{
		Identifiers: map[string]string{metadata.IDISBN: "9788983920683"},
	})
	require.ErrorIs(t, err, ErrNoCover)
}

func TestParseSearchResults(t *testing.T) {
	t.Parallel()

	doc, err := scrapeSearchPage(searchListing)
	require.NoError(t, err)
	urls := parseSearchResults(doc)
	require.Equal(t, []string{
		"http://www.yes24.com/24/Goods/72289",
		"http://www.yes24.com/24/Goods/2128248",
	}, urls)
}

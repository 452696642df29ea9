package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Metro FM Newswire</title>
  <item>
    <title>Council Approves Transit Budget</title>
    <description>The city council approved a new transit budget today.</description>
    <link>https://example.com/transit</link>
  </item>
  <item>
    <title>Storm Expected This Weekend</title>
    <description>Forecasters warn of heavy rain on Saturday.</description>
    <link>https://example.com/storm</link>
  </item>
</channel>
</rss>`

const samplePage = `<html><body>
<article>
  <h2>Harbor Bridge Closed for Repairs</h2>
  <p>The harbor bridge will be closed for two weeks.</p>
  <a href="/bridge">more</a>
</article>
<article>
  <h2>Night Market Returns Downtown</h2>
  <p>Vendors set up along the riverfront this Friday.</p>
  <a href="https://example.com/market">more</a>
</article>
</body></html>`

func noShuffle(items []Item) {}

func fixedClock() time.Time {
	return time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
}

func TestFetchBatchFromRSS(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer srv.Close()

	f := NewFetcher(
		[]Endpoint{{Name: "metro-fm", Feed: srv.URL}},
		WithShuffle(noShuffle),
		WithClock(fixedClock),
	)
	items, err := f.FetchBatch(context.Background(), []string{"metro-fm"}, nil, 10)
	if err != nil {
		t.Fatalf("FetchBatch returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Title != "Council Approves Transit Budget" {
		t.Fatalf("wrong first title: %q", items[0].Title)
	}
	if items[0].Source != "metro-fm" {
		t.Fatalf("wrong source: %q", items[0].Source)
	}
	if !strings.HasPrefix(items[0].ID, "metro-fm-0-") {
		t.Fatalf("unexpected id shape: %q", items[0].ID)
	}
}

func TestFetchBatchScrapesWhenFeedFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/feed") {
			http.Error(w, "gone", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(samplePage))
	}))
	defer srv.Close()

	f := NewFetcher(
		[]Endpoint{{Name: "city-desk", Feed: srv.URL + "/feed", Page: srv.URL + "/news"}},
		WithShuffle(noShuffle),
		WithClock(fixedClock),
	)
	items, err := f.FetchBatch(context.Background(), []string{"city-desk"}, nil, 10)
	if err != nil {
		t.Fatalf("FetchBatch returned error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 scraped items, got %d", len(items))
	}
	if items[0].Title != "Harbor Bridge Closed for Repairs" {
		t.Fatalf("wrong scraped title: %q", items[0].Title)
	}
	if !strings.Contains(items[0].ID, "-scraped-") {
		t.Fatalf("expected scraped id, got %q", items[0].ID)
	}
	if !strings.HasPrefix(items[0].URL, srv.URL) {
		t.Fatalf("relative link not resolved: %q", items[0].URL)
	}
}

func TestFetchBatchFallsBackToSynthetic(t *testing.T) {
	f := NewFetcher(
		[]Endpoint{{Name: "offline", Feed: "http://127.0.0.1:1/feed"}},
		WithHTTPClient(&http.Client{Timeout: 100 * time.Millisecond}),
		WithShuffle(noShuffle),
		WithClock(fixedClock),
	)
	items, err := f.FetchBatch(context.Background(), []string{"offline"}, nil, 10)
	if err != nil {
		t.Fatalf("FetchBatch returned error: %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("expected 5 synthetic items, got %d", len(items))
	}
	for _, item := range items {
		if !strings.Contains(item.ID, "-mock-") {
			t.Fatalf("expected synthetic id, got %q", item.ID)
		}
	}
}

func TestFetchBatchTruncatesToLimit(t *testing.T) {
	f := NewFetcher(nil, WithShuffle(noShuffle), WithClock(fixedClock))
	items, err := f.FetchBatch(context.Background(), []string{"a", "b"}, nil, 3)
	if err != nil {
		t.Fatalf("FetchBatch returned error: %v", err)
	}
	// Both names are unknown, so the batch is one synthetic fallback batch.
	if len(items) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(items))
	}
}

func TestFetchBatchAppliesCategoryFilter(t *testing.T) {
	const feed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Metro FM Newswire</title>
  <item>
    <title>Football Squad Wins Regional Tournament</title>
    <description>The squad lifted the trophy on Sunday.</description>
    <link>https://example.com/cup</link>
  </item>
  <item>
    <title>Storm Expected This Weekend</title>
    <description>Forecasters warn of heavy winds on Saturday.</description>
    <link>https://example.com/storm</link>
  </item>
</channel>
</rss>`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	f := NewFetcher(
		[]Endpoint{{Name: "metro-fm", Feed: srv.URL}},
		WithShuffle(noShuffle),
		WithClock(fixedClock),
	)

	items, err := f.FetchBatch(context.Background(), []string{"metro-fm"}, []string{"sports"}, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Football Squad Wins Regional Tournament" {
		t.Fatalf("expected only the sports story, got %+v", items)
	}

	// A filter no story matches keeps the full batch.
	items, err = f.FetchBatch(context.Background(), []string{"metro-fm"}, []string{"health"}, 10)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected the unfiltered batch, got %d items", len(items))
	}
}

func TestFilterByCategory(t *testing.T) {
	items := []Item{
		{Title: "Council vote on budget", Content: "city hall session"},
		{Title: "Storm expected Sunday", Content: "heavy winds forecast"},
		{Title: "New AI software released", Content: "local tech scene"},
	}
	kept := FilterByCategory(items, []string{"technology"})
	if len(kept) != 1 {
		t.Fatalf("expected 1 technology item, got %d", len(kept))
	}
	if kept[0].Title != "New AI software released" {
		t.Fatalf("wrong item kept: %q", kept[0].Title)
	}
	if got := FilterByCategory(items, nil); len(got) != 3 {
		t.Fatalf("empty categories should keep all, got %d", len(got))
	}
}

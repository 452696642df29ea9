// internal/news/fetcher.go
//
// News acquisition for show preparation. Each configured endpoint is tried
// RSS first, then a generic page scrape, and finally a synthetic batch so the
// script pipeline always has input to work with.

package news

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/airwavefm/airwave/internal/logbook"
)

// Item is one raw news item as fetched, before any pipeline processing.
type Item struct {
	ID          string    `json:"id"`
	Source      string    `json:"source"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
}

// Endpoint describes where a named source can be fetched from. Feed is an
// RSS URL; Page is an HTML page scraped when the feed is missing or fails.
type Endpoint struct {
	Name string
	Feed string
	Page string
}

// Source supplies raw news batches to the pipeline.
type Source interface {
	FetchBatch(ctx context.Context, sources, categories []string, limit int) ([]Item, error)
}

const (
	defaultLimit    = 10
	scrapeMax       = 10
	mockBatchSize   = 5
	fetchTimeout    = 10 * time.Second
	fetcherUA       = "Airwave/1.0"
	articleSelector = "article, .post, .news-item, .article"
	titleSelector   = "h1, h2, h3, .title, .headline"
	bodySelector    = "p, .excerpt, .summary"
)

// Fetcher is the default Source over a set of configured endpoints.
type Fetcher struct {
	endpoints map[string]Endpoint
	order     []string
	client    *http.Client
	parser    *gofeed.Parser
	shuffle   func([]Item)
	now       func() time.Time
	book      *logbook.Logbook
}

// Option customizes a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient swaps the HTTP client used for feeds and pages.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

// WithShuffle replaces the batch shuffle. Tests pass a no-op.
func WithShuffle(fn func([]Item)) Option {
	return func(f *Fetcher) { f.shuffle = fn }
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) { f.now = now }
}

// WithLogbook attaches a session logbook.
func WithLogbook(book *logbook.Logbook) Option {
	return func(f *Fetcher) { f.book = book }
}

// NewFetcher builds a Fetcher over the given endpoints, preserving their
// declared order.
func NewFetcher(endpoints []Endpoint, opts ...Option) *Fetcher {
	f := &Fetcher{
		endpoints: make(map[string]Endpoint, len(endpoints)),
		client:    &http.Client{Timeout: fetchTimeout},
		parser:    gofeed.NewParser(),
		now:       time.Now,
	}
	for _, ep := range endpoints {
		if _, dup := f.endpoints[ep.Name]; dup {
			continue
		}
		f.endpoints[ep.Name] = ep
		f.order = append(f.order, ep.Name)
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.shuffle == nil {
		rng := rand.New(rand.NewSource(f.now().UnixNano()))
		f.shuffle = func(items []Item) {
			rng.Shuffle(len(items), func(i, j int) {
				items[i], items[j] = items[j], items[i]
			})
		}
	}
	return f
}

// FetchBatch gathers items from the named sources (all configured endpoints
// when sources is empty), shuffles them, and truncates to limit. A source
// whose feed and page both fail contributes a synthetic batch instead, so the
// result is never empty.
func (f *Fetcher) FetchBatch(ctx context.Context, sources, categories []string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if len(sources) == 0 {
		sources = f.order
	}

	var all []Item
	for _, name := range sources {
		ep, ok := f.endpoints[name]
		if !ok {
			f.book.Warn("news: unknown source %q, skipping", name)
			continue
		}

		var items []Item
		if ep.Feed != "" {
			fetched, err := f.fetchFeed(ctx, ep)
			if err != nil {
				f.book.Warn("news: rss %s: %v", ep.Name, err)
			}
			items = fetched
		}
		if len(items) == 0 && ep.Page != "" {
			scraped, err := f.scrapePage(ctx, ep)
			if err != nil {
				f.book.Warn("news: scrape %s: %v", ep.Name, err)
			}
			items = scraped
		}
		if len(items) == 0 {
			f.book.Warn("news: using synthetic items for %s", ep.Name)
			items = f.syntheticItems(ep.Name, mockBatchSize)
		}
		all = append(all, items...)

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	if len(all) == 0 {
		all = f.syntheticItems("local", mockBatchSize)
	}

	if len(categories) > 0 {
		// An over-narrow filter falls back to the full batch so a show can
		// still be produced.
		if kept := FilterByCategory(all, categories); len(kept) > 0 {
			all = kept
		} else {
			f.book.Warn("news: no items matched categories %v, keeping full batch", categories)
		}
	}

	f.shuffle(all)
	if len(all) > limit {
		all = all[:limit]
	}
	f.book.Info("news: fetched %d items from %d sources", len(all), len(sources))
	return all, nil
}

func (f *Fetcher) fetchFeed(ctx context.Context, ep Endpoint) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.Feed, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", fetcherUA)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := f.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	stamp := f.now().UnixMilli()
	items := make([]Item, 0, len(feed.Items))
	for i, entry := range feed.Items {
		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = "Untitled"
		}
		content := entry.Description
		if content == "" {
			content = entry.Content
		}
		published := f.now()
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		}
		items = append(items, Item{
			ID:          fmt.Sprintf("%s-%d-%d", ep.Name, i, stamp),
			Source:      ep.Name,
			Title:       title,
			Content:     strings.TrimSpace(content),
			URL:         entry.Link,
			PublishedAt: published,
		})
	}
	return items, nil
}

func (f *Fetcher) scrapePage(ctx context.Context, ep Endpoint) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ep.Page, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", fetcherUA)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	stamp := f.now().UnixMilli()
	var items []Item
	doc.Find(articleSelector).EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if i >= scrapeMax {
			return false
		}
		title := strings.TrimSpace(sel.Find(titleSelector).First().Text())
		if title == "" {
			return true
		}
		content := strings.TrimSpace(sel.Find(bodySelector).First().Text())
		if content == "" {
			content = title
		}
		link, _ := sel.Find("a").First().Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = ep.Page + link
		}
		items = append(items, Item{
			ID:          fmt.Sprintf("%s-scraped-%d-%d", ep.Name, i, stamp),
			Source:      ep.Name,
			Title:       title,
			Content:     content,
			URL:         link,
			PublishedAt: f.now(),
		})
		return true
	})
	return items, nil
}

var syntheticTitles = []string{
	"Mayor Announces New Transit Plan for the City Center",
	"Local Tech Startup Raises Funding for Expansion",
	"Regional Team Qualifies for National Tournament",
	"Universities to Adopt Revised Curriculum Next Term",
	"Healthcare Workers Reach Agreement After Negotiations",
	"Film Festival Brings International Guests Downtown",
	"Fuel Prices Expected to Ease Next Week",
	"New Infrastructure Projects Launched Across the Region",
	"City Commits to Expanded Green Energy Program",
	"Community Market Reopens After Renovation",
}

var syntheticBodies = []string{
	"In a major development today, officials announced significant changes that will affect residents across the region.",
	"Local authorities have confirmed new measures aimed at addressing long-standing challenges in the area.",
	"Experts believe this development marks a turning point in ongoing efforts to improve conditions citywide.",
	"Community leaders have welcomed the announcement, calling it a step in the right direction.",
	"The initiative is expected to create jobs and boost economic activity in the coming months.",
}

// syntheticItems produces placeholder items so a dead source never empties
// the batch.
func (f *Fetcher) syntheticItems(source string, count int) []Item {
	stamp := f.now().UnixMilli()
	items := make([]Item, count)
	for i := range items {
		items[i] = Item{
			ID:          fmt.Sprintf("%s-mock-%d-%d", source, i, stamp),
			Source:      source,
			Title:       syntheticTitles[i%len(syntheticTitles)],
			Content:     syntheticBodies[i%len(syntheticBodies)],
			URL:         fmt.Sprintf("https://example.com/news/%d", i),
			PublishedAt: f.now().Add(-time.Duration(i+1) * time.Hour),
		}
	}
	return items
}

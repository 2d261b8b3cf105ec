// Package ingestion streams finance news from RSS feeds into the
// retrieval corpus.
package ingestion

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"log/slog"
)

// Article is one feed item after parsing and cleanup.
type Article struct {
	ID          string
	Title       string
	Summary     string
	URL         string
	Feed        string
	PublishedAt time.Time
}

// rssFeed is the RSS 2.0 document shape.
type rssFeed struct {
	XMLName xml.Name `xml:"rss"`
	Channel struct {
		Title string    `xml:"title"`
		Items []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

// atomFeed is the Atom document shape some publishers use instead.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string `xml:"title"`
	Link      struct {
		Href string `xml:"href,attr"`
	} `xml:"link"`
	Content struct {
		Value string `xml:",chardata"`
	} `xml:"content"`
	Summary   string `xml:"summary"`
	Published string `xml:"published"`
	Updated   string `xml:"updated"`
	ID        string `xml:"id"`
}

// Connector fetches and parses one feed at a time.
type Connector struct {
	client *http.Client
	logger *slog.Logger
}

// NewConnector creates a connector with the given per-request timeout.
func NewConnector(timeout time.Duration, logger *slog.Logger) *Connector {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Connector{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch retrieves one feed and returns its items newest first. Both
// RSS 2.0 and Atom documents are accepted.
func (c *Connector) Fetch(ctx context.Context, feedURL string) ([]Article, error) {
	body, err := c.get(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	items, err := parseFeed(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	articles := make([]Article, 0, len(items))
	for _, item := range items {
		url := strings.TrimSpace(item.Link)
		if url == "" {
			url = strings.TrimSpace(item.GUID)
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			c.logger.Debug("skipping item without usable URL", "title", item.Title)
			continue
		}

		summary := cleanText(item.Description)
		articles = append(articles, Article{
			ID:          articleID(url),
			Title:       cleanText(item.Title),
			Summary:     summary,
			URL:         url,
			Feed:        feedURL,
			PublishedAt: parsePubDate(item.PubDate),
		})
	}

	sort.Slice(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	return articles, nil
}

func (c *Connector) get(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	// Some publishers reject requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7)")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch feed %s: status %d", feedURL, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	return body, nil
}

// parseFeed tries RSS 2.0 first and falls back to Atom.
func parseFeed(body []byte) ([]rssItem, error) {
	var rss rssFeed
	rssErr := xml.Unmarshal(body, &rss)
	if rssErr == nil && len(rss.Channel.Items) > 0 {
		return rss.Channel.Items, nil
	}

	var atom atomFeed
	atomErr := xml.Unmarshal(body, &atom)
	if atomErr == nil && len(atom.Entries) > 0 {
		items := make([]rssItem, 0, len(atom.Entries))
		for _, entry := range atom.Entries {
			summary := entry.Summary
			if summary == "" {
				summary = entry.Content.Value
			}
			published := entry.Published
			if published == "" {
				published = entry.Updated
			}
			items = append(items, rssItem{
				Title:       entry.Title,
				Link:        entry.Link.Href,
				Description: summary,
				PubDate:     published,
				GUID:        entry.ID,
			})
		}
		return items, nil
	}

	return nil, fmt.Errorf("not RSS (%v) or Atom (%v)", rssErr, atomErr)
}

// parsePubDate accepts the common RSS and Atom date formats; anything
// unparseable falls back to now so the item still sorts.
func parsePubDate(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}

	formats := []string{
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		"2006-01-02 15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, raw); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

// cleanText strips HTML tags and collapses whitespace.
func cleanText(text string) string {
	for _, br := range []string{"<p>", "</p>", "<br>", "<br/>", "<br />"} {
		text = strings.ReplaceAll(text, br, " ")
	}
	for {
		start := strings.Index(text, "<")
		if start == -1 {
			break
		}
		end := strings.Index(text[start:], ">")
		if end == -1 {
			break
		}
		text = text[:start] + " " + text[start+end+1:]
	}
	return strings.Join(strings.Fields(text), " ")
}

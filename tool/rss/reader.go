package rss

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/habiliai/agentloop/errors"
	"github.com/habiliai/agentloop/internal/stringutils"
	"github.com/mmcdole/gofeed"
)

const (
	readTimeout        = 30 * time.Second
	descriptionPreview = 160
)

type Reader struct {
	parser *gofeed.Parser
}

type Item struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Published   time.Time `json:"published,omitzero"`
	Author      string    `json:"author,omitempty"`
	Categories  []string  `json:"categories,omitempty"`
}

// Hit is an item matched by Search along with the feed it came from.
type Hit struct {
	Source string
	Item
}

func NewReader() *Reader {
	return &Reader{
		parser: gofeed.NewParser(),
	}
}

// Read fetches feedURL and returns at most limit items. A limit <= 0 returns all of them.
func (r *Reader) Read(ctx context.Context, feedURL string, limit int) ([]Item, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	feed, err := r.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse feed")
	}

	items := make([]Item, 0, len(feed.Items))
	for _, fi := range feed.Items {
		if limit > 0 && len(items) == limit {
			break
		}
		item := Item{
			Title:       strings.TrimSpace(fi.Title),
			Description: strings.TrimSpace(fi.Description),
			Link:        fi.Link,
			Categories:  fi.Categories,
		}
		if fi.PublishedParsed != nil {
			item.Published = *fi.PublishedParsed
		}
		if fi.Author != nil {
			item.Author = fi.Author.Name
		}
		items = append(items, item)
	}

	return items, nil
}

// Search reads every feed concurrently and keeps items whose title or
// description contains query. Feeds that fail to load are skipped.
// Results follow the order of feedURLs.
func (r *Reader) Search(ctx context.Context, feedURLs []string, query string, maxHits int) []Hit {
	type result struct {
		idx   int
		items []Item
	}

	ch := make(chan result, len(feedURLs))
	for i, u := range feedURLs {
		go func() {
			items, err := r.Read(ctx, u, 0)
			if err != nil {
				items = nil
			}
			ch <- result{idx: i, items: items}
		}()
	}

	perFeed := make([][]Item, len(feedURLs))
	for range feedURLs {
		res := <-ch
		perFeed[res.idx] = res.items
	}

	query = strings.ToLower(strings.TrimSpace(query))
	var hits []Hit
	for i, items := range perFeed {
		for _, item := range items {
			if maxHits > 0 && len(hits) == maxHits {
				return hits
			}
			if strings.Contains(strings.ToLower(item.Title), query) ||
				strings.Contains(strings.ToLower(item.Description), query) {
				hits = append(hits, Hit{Source: feedURLs[i], Item: item})
			}
		}
	}
	return hits
}

// Format renders items as a numbered plain-text list.
func Format(items []Item) string {
	if len(items) == 0 {
		return "(no items)"
	}

	var sb strings.Builder
	for i, item := range items {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, item.Title)
		if !item.Published.IsZero() {
			fmt.Fprintf(&sb, " (%s)", item.Published.Format(time.DateOnly))
		}
		if item.Link != "" {
			sb.WriteString("\n   " + item.Link)
		}
		if item.Description != "" {
			sb.WriteString("\n   " + stringutils.Truncate(item.Description, descriptionPreview, "..."))
		}
	}
	return sb.String()
}

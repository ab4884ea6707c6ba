package tool

import (
	"strings"

	"github.com/habiliai/agentloop/tool/rss"
	"github.com/samber/lo"
)

type (
	ReadFeedInput struct {
		URL   string `json:"url"`
		Limit int    `json:"limit,omitempty"`
	}
	SearchFeedsInput struct {
		URLs  string `json:"urls"`
		Query string `json:"query"`
		Limit int    `json:"limit,omitempty"`
	}
)

func feedTools() []Tool {
	reader := rss.NewReader()

	return []Tool{
		NewTool(Schema{
			Name:        "read_feed",
			Description: "Read the latest items of an RSS or Atom feed.",
			Params: []Param{
				{Name: "url", Type: TypeString, Description: "Feed URL", Required: true, Aliases: []string{"feed", "feed_url"}},
				{Name: "limit", Type: TypeInteger, Description: "Maximum number of items (default 10)"},
			},
		}, func(ctx *Context, in ReadFeedInput) (string, error) {
			if in.Limit <= 0 {
				in.Limit = 10
			}
			items, err := reader.Read(ctx, in.URL, in.Limit)
			if err != nil {
				return "", err
			}
			return rss.Format(items), nil
		}),
		NewTool(Schema{
			Name:        "search_feeds",
			Description: "Search several feeds for items mentioning a query.",
			Params: []Param{
				{Name: "urls", Type: TypeString, Description: "Comma separated feed URLs", Required: true, Aliases: []string{"feeds"}},
				{Name: "query", Type: TypeString, Description: "Text to look for", Required: true, Aliases: []string{"q"}},
				{Name: "limit", Type: TypeInteger, Description: "Maximum number of matches (default 10)"},
			},
		}, func(ctx *Context, in SearchFeedsInput) (string, error) {
			if in.Limit <= 0 {
				in.Limit = 10
			}
			urls := lo.Compact(lo.Map(strings.Split(in.URLs, ","), func(s string, _ int) string {
				return strings.TrimSpace(s)
			}))
			hits := reader.Search(ctx, urls, in.Query, in.Limit)
			if len(hits) == 0 {
				return "(no matches)", nil
			}
			items := lo.Map(hits, func(h rss.Hit, _ int) rss.Item {
				return h.Item
			})
			return rss.Format(items), nil
		}),
	}
}

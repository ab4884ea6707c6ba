package tool

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/habiliai/agentloop/config"
	"github.com/habiliai/agentloop/errors"
	firecrawl "github.com/mendableai/firecrawl-go"
)

const (
	searchResultLimit = 5
	minSnippetLen     = 20
	userAgent         = "Mozilla/5.0 (X11; Linux x86_64) agentloop"
)

type (
	WebSearchInput struct {
		Query string `json:"query"`
	}
	FetchURLInput struct {
		URL string `json:"url"`
	}
	DownloadFileInput struct {
		URL      string `json:"url"`
		FilePath string `json:"file_path,omitempty"`
	}
)

func webTools(conf *config.ToolConfig) []Tool {
	client := resty.New().SetHeader("User-Agent", userAgent)

	tools := []Tool{
		NewTool(Schema{
			Name:        "web_search",
			Description: "Search the web and return the top result snippets.",
			Params: []Param{
				{Name: "query", Type: TypeString, Description: "Search terms", Required: true, Aliases: []string{"q", "search", "text"}},
			},
		}, func(ctx *Context, in WebSearchInput) (string, error) {
			return webSearch(ctx, client, conf.SearchURL, in.Query)
		}),
		NewTool(Schema{
			Name:        "download_file",
			Description: "Download a URL to a local file.",
			Params: []Param{
				{Name: "url", Type: TypeString, Description: "URL to download", Required: true, Aliases: []string{"link"}},
				{Name: "file_path", Type: TypeString, Description: "Where to save it", Aliases: []string{"path", "destination"}},
			},
		}, func(ctx *Context, in DownloadFileInput) (string, error) {
			return downloadFile(ctx, client, in)
		}),
	}

	if conf.FireCrawlAPIKey != "" {
		tools = append(tools, NewTool(Schema{
			Name:        "fetch_url",
			Description: "Fetch a web page and return its content as markdown.",
			Params: []Param{
				{Name: "url", Type: TypeString, Description: "Page URL", Required: true, Aliases: []string{"link", "page"}},
			},
		}, func(ctx *Context, in FetchURLInput) (string, error) {
			return fetchURL(conf, in.URL)
		}))
	}

	return tools
}

func webSearch(ctx *Context, client *resty.Client, searchURL, query string) (string, error) {
	resp, err := client.R().
		SetContext(ctx).
		SetFormData(map[string]string{"q": query}).
		Post(searchURL)
	if err != nil {
		return "", errors.Wrapf(err, "search request failed")
	}
	if resp.IsError() {
		return "", errors.Errorf("search returned %s", resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return "", errors.Wrapf(err, "failed to parse search results")
	}

	results := collectText(doc.Find(".result__snippet"), minSnippetLen)
	if len(results) == 0 {
		results = collectText(doc.Find(".result__a"), 0)
	}
	if len(results) == 0 {
		return "No results for: " + query, nil
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%d. %s", i+1, r)
	}
	return sb.String(), nil
}

func collectText(sel *goquery.Selection, minLen int) []string {
	var out []string
	sel.EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := strings.Join(strings.Fields(s.Text()), " ")
		if len(text) > minLen {
			out = append(out, text)
		}
		return len(out) < searchResultLimit
	})
	return out
}

func fetchURL(conf *config.ToolConfig, pageURL string) (string, error) {
	app, err := firecrawl.NewFirecrawlApp(conf.FireCrawlAPIKey, conf.FireCrawlAPIURL)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create firecrawl client")
	}

	doc, err := app.ScrapeURL(pageURL, &firecrawl.ScrapeParams{
		Formats: []string{"markdown"},
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to fetch %s", pageURL)
	}
	if doc == nil || strings.TrimSpace(doc.Markdown) == "" {
		return "(empty page)", nil
	}
	return doc.Markdown, nil
}

func downloadFile(ctx *Context, client *resty.Client, in DownloadFileInput) (string, error) {
	u, err := url.Parse(in.URL)
	if err != nil || u.Host == "" {
		return "", errors.Errorf("Invalid URL: %s", in.URL)
	}

	dest := in.FilePath
	if dest == "" {
		dest = path.Base(u.Path)
		if dest == "" || dest == "/" || dest == "." {
			dest = "download"
		}
	}
	dest = ctx.ResolvePath(dest)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", errors.WithStack(err)
	}

	resp, err := client.R().
		SetContext(ctx).
		SetOutput(dest).
		Get(in.URL)
	if err != nil {
		return "", errors.Wrapf(err, "download failed")
	}
	if resp.IsError() {
		_ = os.Remove(dest)
		return "", errors.Errorf("download returned %s", resp.Status())
	}

	info, err := os.Stat(dest)
	if err != nil {
		return "", errors.WithStack(err)
	}
	return fmt.Sprintf("Downloaded: %s (%d bytes)", dest, info.Size()), nil
}

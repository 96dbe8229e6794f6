// Package crawler は接続サイトの有界クロールを提供します
package crawler

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/jinford/seo-autopilot/internal/platform/config"
	"golang.org/x/net/html"
)

// maxBodySize は1ページあたりの読み込み上限です
const maxBodySize = 2 << 20 // 2MiB

// Crawler はHTTP経由でサイトのページを収集します
type Crawler struct {
	client    *http.Client
	userAgent string
	logger    *slog.Logger
}

// New は新しいCrawlerを作成します
func New(cfg config.CrawlerConfig, logger *slog.Logger) *Crawler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Crawler{
		client: &http.Client{
			Timeout: cfg.PageTimeout,
		},
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

var _ domain.Crawler = (*Crawler)(nil)

type crawlTarget struct {
	url   *url.URL
	depth int
}

// Crawl はドメイン配下のページを幅優先でページ数・深度の上限まで取得します
// 同一ホスト外へのリンクは追跡しません
func (c *Crawler) Crawl(ctx context.Context, siteDomain string, maxPages, maxDepth int) (*domain.CrawlResult, error) {
	seedURL := siteDomain
	if !strings.Contains(seedURL, "://") {
		seedURL = "https://" + seedURL
	}
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid domain %q: %w", siteDomain, err)
	}

	queue := []crawlTarget{{url: seed, depth: 0}}
	visited := map[string]bool{seed.String(): true}
	result := &domain.CrawlResult{Pages: []domain.CrawledPage{}}

	for len(queue) > 0 && len(result.Pages) < maxPages {
		target := queue[0]
		queue = queue[1:]

		page, links, err := c.fetchPage(ctx, target.url)
		if err != nil {
			// シードページの失敗はクロール全体の失敗。それ以外は読み飛ばします
			if len(result.Pages) == 0 && len(queue) == 0 {
				return nil, fmt.Errorf("failed to crawl %s: %w", target.url, err)
			}
			c.logger.Debug("Page fetch failed, skipping", "url", target.url, "error", err)
			continue
		}

		result.Pages = append(result.Pages, *page)

		if target.depth >= maxDepth {
			continue
		}
		for _, link := range links {
			if link.Host != seed.Host || visited[link.String()] {
				continue
			}
			visited[link.String()] = true
			queue = append(queue, crawlTarget{url: link, depth: target.depth + 1})
		}
	}

	c.logger.Info("Crawl finished", "domain", siteDomain, "pages", len(result.Pages))

	return result, nil
}

// fetchPage は1ページを取得して解析します
func (c *Crawler) fetchPage(ctx context.Context, pageURL *url.URL) (*domain.CrawledPage, []*url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, pageURL)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse html: %w", err)
	}

	page, links := extract(doc, pageURL)

	return page, links, nil
}

// extract はHTMLツリーからページ情報とリンクを抽出します
func extract(doc *html.Node, base *url.URL) (*domain.CrawledPage, []*url.URL) {
	page := &domain.CrawledPage{URL: base.String()}
	var (
		links []*url.URL
		text  strings.Builder
	)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.ElementNode:
			switch n.Data {
			case "title":
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					page.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				if attr(n, "name") == "description" && strings.TrimSpace(attr(n, "content")) != "" {
					page.HasMetaDescription = true
				}
			case "img":
				page.HasImages = true
			case "a":
				if link := resolveLink(attr(n, "href"), base); link != nil {
					links = append(links, link)
				}
			case "script", "style", "noscript":
				return // 本文に含めない
			}
		case html.TextNode:
			text.WriteString(n.Data)
			text.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	page.Content = strings.Join(strings.Fields(text.String()), " ")
	page.WordCount = len(strings.Fields(page.Content))

	return page, links
}

// resolveLink は相対リンクを解決し、追跡対象外のリンクを除外します
func resolveLink(href string, base *url.URL) *url.URL {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
		return nil
	}
	link, err := base.Parse(href)
	if err != nil {
		return nil
	}
	if link.Scheme != "http" && link.Scheme != "https" {
		return nil
	}
	link.Fragment = ""
	return link
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

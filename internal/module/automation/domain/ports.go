package domain

import (
	"context"

	"github.com/google/uuid"
)

// CrawledPage はクロールで取得した1ページの情報を表します
type CrawledPage struct {
	URL                string `json:"url"`
	Title              string `json:"title"`
	Content            string `json:"content"`
	WordCount          int    `json:"wordCount"`
	HasImages          bool   `json:"hasImages"`
	HasMetaDescription bool   `json:"hasMetaDescription"`
}

// CrawlResult はサイトクロールの結果を表します
type CrawlResult struct {
	Pages []CrawledPage `json:"pages"`
}

// Crawler はサイトのページ取得を担当するコラボレーターです
type Crawler interface {
	// Crawl はドメイン配下のページをページ数・深度の上限内で取得します
	Crawl(ctx context.Context, domain string, maxPages, maxDepth int) (*CrawlResult, error)
}

// SiteImage は接続サイト上の1画像を表します
type SiteImage struct {
	URL     string `json:"url"`
	PageURL string `json:"pageURL"`
	AltText string `json:"altText"`
}

// MissingAlt はalt属性が設定されていないかどうかを返します
func (i SiteImage) MissingAlt() bool {
	return i.AltText == ""
}

// ImageScanner は接続サイトの画像列挙と保存を担当するコラボレーターです
type ImageScanner interface {
	// ScanImages は接続上の画像を列挙します
	ScanImages(ctx context.Context, connectionID uuid.UUID) ([]SiteImage, error)
	// StoreImages は列挙した画像情報を保存します
	StoreImages(ctx context.Context, connectionID uuid.UUID, images []SiteImage) error
}

// DetectedIssue はAI分析が返す1件の検出結果を表します
type DetectedIssue struct {
	IssueType      string   `json:"issueType"`
	Title          string   `json:"title"`
	Severity       Severity `json:"severity"`
	PageURL        string   `json:"pageURL"`
	Description    string   `json:"description"`
	Recommendation string   `json:"recommendation"`
	FixCode        string   `json:"fixCode"`
}

// SEOAnalyzer はページ内容のSEO分析を担当するAIコラボレーターです
type SEOAnalyzer interface {
	// AnalyzeForSEO は代表ページの内容を分析し検出結果を返します
	AnalyzeForSEO(ctx context.Context, domain string, pages []CrawledPage, platform Platform) ([]DetectedIssue, error)
}

// FixExecution は修正実行デリゲートの結果を表します
type FixExecution struct {
	Success bool  `json:"success"`
	Fixes   []Fix `json:"fixes"`
}

// FixExecutor はプラットフォーム固有の修正実行を担当するコラボレーターです
// 実体はShopify/WordPress等の外部アダプターです
type FixExecutor interface {
	// ExecuteFixes は接続に対する修正の生成・適用を行います
	ExecuteFixes(ctx context.Context, connectionID, userID uuid.UUID) (*FixExecution, error)
}

// OptimizeOptions は画像最適化の制約を表します
type OptimizeOptions struct {
	OnlyMissingAlt bool `json:"onlyMissingAlt"`
	MaxImages      int  `json:"maxImages"`
}

// OptimizeResult は画像最適化の結果を表します
type OptimizeResult struct {
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// ImageOptimizer はAIによるalt属性生成を担当するコラボレーターです
type ImageOptimizer interface {
	// OptimizeImages は制約の範囲内で画像のalt属性を生成します
	OptimizeImages(ctx context.Context, connectionID uuid.UUID, opts OptimizeOptions) (*OptimizeResult, error)
}

// ReportSummary はメール送信に渡すレポート要約を表します
type ReportSummary struct {
	ReportID        uuid.UUID `json:"reportID"`
	SitesScanned    int       `json:"sitesScanned"`
	IssuesFound     int       `json:"issuesFound"`
	IssuesFixed     int       `json:"issuesFixed"`
	IssuesPending   int       `json:"issuesPending"`
	ImagesOptimized int       `json:"imagesOptimized"`
}

// EmailSender は日次レポートメールの送信を担当するコラボレーターです
type EmailSender interface {
	// SendDailyReport は日次レポートメールを送信します
	SendDailyReport(ctx context.Context, userID uuid.UUID, email string, summary ReportSummary) error
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/jinford/seo-autopilot/internal/platform/config"
)

// フェーズごとの活動名。レポートの監査証跡に表示されます
const (
	ActivitySiteCrawl         = "Site Crawl"
	ActivityImageScan         = "Image Scan"
	ActivitySEOAnalysis       = "SEO Analysis"
	ActivityApplyFixes        = "Apply Fixes"
	ActivityImageOptimization = "Image Optimization"
	ActivitySiteProcessing    = "Site Processing"
)

// SiteProcessor は1接続に対する5フェーズのパイプラインを実行します
// 各フェーズは独立に失敗を封じ込め、後続フェーズの実行を妨げません
type SiteProcessor struct {
	crawler   domain.Crawler
	scanner   domain.ImageScanner
	analyzer  domain.SEOAnalyzer
	policy    *ExecutionPolicy
	optimizer domain.ImageOptimizer
	issueRepo domain.IssueRepository
	cfg       config.AutomationConfig
	crawlCfg  config.CrawlerConfig
	logger    *slog.Logger
}

// NewSiteProcessor は新しいSiteProcessorを作成します
func NewSiteProcessor(
	crawler domain.Crawler,
	scanner domain.ImageScanner,
	analyzer domain.SEOAnalyzer,
	policy *ExecutionPolicy,
	optimizer domain.ImageOptimizer,
	issueRepo domain.IssueRepository,
	cfg config.AutomationConfig,
	crawlCfg config.CrawlerConfig,
	logger *slog.Logger,
) *SiteProcessor {
	if logger == nil {
		logger = slog.Default()
	}

	return &SiteProcessor{
		crawler:   crawler,
		scanner:   scanner,
		analyzer:  analyzer,
		policy:    policy,
		optimizer: optimizer,
		issueRepo: issueRepo,
		cfg:       cfg,
		crawlCfg:  crawlCfg,
		logger:    logger,
	}
}

// ProcessSite は接続に対して crawl → image-scan → analyze → fix → image-optimize を
// この順で実行し、サイトレポートとバッチ結果への加算を返します
// フェーズの失敗はレポートのエラーと失敗活動として記録され、処理は継続します
func (p *SiteProcessor) ProcessSite(ctx context.Context, user *domain.User, conn *domain.Connection, result *domain.AutomationResult) (*domain.SiteReport, error) {
	report := domain.NewSiteReport(conn)

	p.logger.Info("Processing site",
		"connectionID", conn.ID,
		"domain", conn.Domain,
		"platform", conn.Platform,
		"mode", user.ExecutionMode,
	)

	pages := p.runCrawl(ctx, conn, report, result)
	images := p.runImageScan(ctx, conn, report, result)
	issues := p.runAnalyze(ctx, conn, pages, report, result)
	p.runApplyFixes(ctx, user, conn, issues, report, result)
	p.runOptimizeImages(ctx, conn, images, report, result)

	result.SitesScanned++
	result.SiteReports = append(result.SiteReports, *report)

	return report, nil
}

// runCrawl はフェーズ1: サイトクロールを実行します
// 失敗時は空のページ集合に置き換え、アクセス水準をlimitedに落とします
func (p *SiteProcessor) runCrawl(ctx context.Context, conn *domain.Connection, report *domain.SiteReport, result *domain.AutomationResult) []domain.CrawledPage {
	crawlCtx, cancel := context.WithTimeout(ctx, p.cfg.PhaseTimeout)
	defer cancel()

	crawled, err := p.crawler.Crawl(crawlCtx, conn.Domain, p.crawlCfg.MaxPages, p.crawlCfg.MaxDepth)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Crawl: %v", err))
		report.AccessLevel = domain.AccessLevelLimited
		result.AddActivity(domain.Activity{
			Site:     conn.Domain,
			Activity: ActivitySiteCrawl,
			Status:   domain.ActivityStatusFailed,
			Reason:   err.Error(),
		})
		p.logger.Warn("Site crawl failed", "domain", conn.Domain, "error", err)
		return nil
	}

	report.PagesCrawled = len(crawled.Pages)
	result.PagesAnalyzed += len(crawled.Pages)
	result.AddActivity(domain.Activity{
		Site:     conn.Domain,
		Activity: ActivitySiteCrawl,
		Status:   domain.ActivityStatusSuccess,
		Details:  fmt.Sprintf("%d pages crawled", len(crawled.Pages)),
	})

	return crawled.Pages
}

// runImageScan はフェーズ2: 画像スキャンを実行します
// 画像が0件の場合は失敗ではなくスキップとして記録します
func (p *SiteProcessor) runImageScan(ctx context.Context, conn *domain.Connection, report *domain.SiteReport, result *domain.AutomationResult) []domain.SiteImage {
	scanCtx, cancel := context.WithTimeout(ctx, p.cfg.PhaseTimeout)
	defer cancel()

	images, err := p.scanner.ScanImages(scanCtx, conn.ID)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Image scan: %v", err))
		result.AddActivity(domain.Activity{
			Site:     conn.Domain,
			Activity: ActivityImageScan,
			Status:   domain.ActivityStatusFailed,
			Reason:   err.Error(),
		})
		p.logger.Warn("Image scan failed", "domain", conn.Domain, "error", err)
		return nil
	}

	if len(images) == 0 {
		result.AddActivity(domain.Activity{
			Site:     conn.Domain,
			Activity: ActivityImageScan,
			Status:   domain.ActivityStatusSkipped,
			Reason:   "No images found",
		})
		return nil
	}

	if err := p.scanner.StoreImages(scanCtx, conn.ID, images); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Image scan: %v", err))
		result.AddActivity(domain.Activity{
			Site:     conn.Domain,
			Activity: ActivityImageScan,
			Status:   domain.ActivityStatusFailed,
			Reason:   err.Error(),
		})
		return images
	}

	result.AddActivity(domain.Activity{
		Site:     conn.Domain,
		Activity: ActivityImageScan,
		Status:   domain.ActivityStatusSuccess,
		Details:  fmt.Sprintf("%d images found", len(images)),
	})

	return images
}

// runAnalyze はフェーズ3: AIによるSEO分析を実行します
// クロールが1ページも返さなかった場合は最小の合成入力で分析を試みます
func (p *SiteProcessor) runAnalyze(ctx context.Context, conn *domain.Connection, pages []domain.CrawledPage, report *domain.SiteReport, result *domain.AutomationResult) []*domain.Issue {
	analyzeCtx, cancel := context.WithTimeout(ctx, p.cfg.PhaseTimeout)
	defer cancel()

	if len(pages) == 0 {
		pages = []domain.CrawledPage{placeholderPage(conn.Domain)}
	}

	detected, err := p.analyzer.AnalyzeForSEO(analyzeCtx, conn.Domain, pages, conn.Platform)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Analysis: %v", err))
		result.AddActivity(domain.Activity{
			Site:     conn.Domain,
			Activity: ActivitySEOAnalysis,
			Status:   domain.ActivityStatusFailed,
			Reason:   err.Error(),
		})
		p.logger.Warn("SEO analysis failed", "domain", conn.Domain, "error", err)
		return nil
	}

	issues := make([]*domain.Issue, 0, len(detected))
	severityCounts := map[domain.Severity]int{}
	for _, d := range detected {
		issues = append(issues, &domain.Issue{
			ID:             uuid.New(),
			ConnectionID:   conn.ID,
			IssueType:      d.IssueType,
			Title:          d.Title,
			Severity:       d.Severity,
			PageURL:        d.PageURL,
			Description:    d.Description,
			Recommendation: d.Recommendation,
			Status:         domain.IssueStatusDetected,
			CreatedAt:      time.Now(),
		})
		severityCounts[d.Severity]++
	}

	if err := p.issueRepo.CreateBatch(analyzeCtx, issues); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Analysis: %v", err))
		result.AddActivity(domain.Activity{
			Site:     conn.Domain,
			Activity: ActivitySEOAnalysis,
			Status:   domain.ActivityStatusFailed,
			Reason:   err.Error(),
		})
		return nil
	}

	report.IssuesFound = len(issues)
	report.IssuesBySeverity = severityCounts
	result.IssuesFound += len(issues)
	result.AddActivity(domain.Activity{
		Site:     conn.Domain,
		Activity: ActivitySEOAnalysis,
		Status:   domain.ActivityStatusSuccess,
		Details:  fmt.Sprintf("%d issues detected (%d critical)", len(issues), severityCounts[domain.SeverityCritical]),
	})

	return issues
}

// runApplyFixes はフェーズ4: 実行ポリシーに従った修正適用を実行します
// デリゲートの失敗時はこの接続の修正件数を0のまま残します
func (p *SiteProcessor) runApplyFixes(ctx context.Context, user *domain.User, conn *domain.Connection, issues []*domain.Issue, report *domain.SiteReport, result *domain.AutomationResult) {
	if len(issues) == 0 {
		result.AddActivity(domain.Activity{
			Site:     conn.Domain,
			Activity: ActivityApplyFixes,
			Status:   domain.ActivityStatusSkipped,
			Reason:   "No issues to fix",
		})
		return
	}

	fixCtx, cancel := context.WithTimeout(ctx, p.cfg.PhaseTimeout)
	defer cancel()

	policyResult, err := p.policy.Resolve(fixCtx, user.ExecutionMode, conn, user.ID, issues)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Fixes: %v", err))
		result.AddActivity(domain.Activity{
			Site:     conn.Domain,
			Activity: ActivityApplyFixes,
			Status:   domain.ActivityStatusFailed,
			Reason:   err.Error(),
		})
		p.logger.Warn("Fix application failed", "domain", conn.Domain, "error", err)
		return
	}

	for _, fix := range policyResult.Applied {
		report.Changes = append(report.Changes, domain.SiteChange{
			FixID:       fix.FixID,
			Description: fix.Description,
			ChangeType:  "fix",
			Before:      fix.Before,
			After:       fix.After,
		})
	}

	pendingCount := policyResult.PendingIssueCount()
	report.FixesApplied = len(policyResult.Applied)
	report.IssuesPending = pendingCount
	result.FixesApplied = append(result.FixesApplied, policyResult.Applied...)
	result.PendingApproval = append(result.PendingApproval, policyResult.Pending...)
	result.IssuesFixed += len(policyResult.Applied)
	result.IssuesPending += pendingCount

	result.AddActivity(domain.Activity{
		Site:     conn.Domain,
		Activity: ActivityApplyFixes,
		Status:   domain.ActivityStatusSuccess,
		Details:  fmt.Sprintf("%d applied, %d pending approval", len(policyResult.Applied), pendingCount),
	})
}

// runOptimizeImages はフェーズ5: alt属性の生成を実行します
// alt属性の欠けた画像のみを対象とし、1実行あたりの上限件数で打ち切ります
func (p *SiteProcessor) runOptimizeImages(ctx context.Context, conn *domain.Connection, images []domain.SiteImage, report *domain.SiteReport, result *domain.AutomationResult) {
	missing := 0
	for _, img := range images {
		if img.MissingAlt() {
			missing++
		}
	}
	if missing == 0 {
		result.AddActivity(domain.Activity{
			Site:     conn.Domain,
			Activity: ActivityImageOptimization,
			Status:   domain.ActivityStatusSkipped,
			Reason:   "No images require optimization",
		})
		return
	}

	optCtx, cancel := context.WithTimeout(ctx, p.cfg.PhaseTimeout)
	defer cancel()

	optimized, err := p.optimizer.OptimizeImages(optCtx, conn.ID, domain.OptimizeOptions{
		OnlyMissingAlt: true,
		MaxImages:      p.cfg.MaxImagesPerRun,
	})
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("Image optimization: %v", err))
		result.AddActivity(domain.Activity{
			Site:     conn.Domain,
			Activity: ActivityImageOptimization,
			Status:   domain.ActivityStatusFailed,
			Reason:   err.Error(),
		})
		p.logger.Warn("Image optimization failed", "domain", conn.Domain, "error", err)
		return
	}

	report.ImagesOptimized = optimized.Successful
	result.ImagesOptimized += optimized.Successful
	result.AddActivity(domain.Activity{
		Site:     conn.Domain,
		Activity: ActivityImageOptimization,
		Status:   domain.ActivityStatusSuccess,
		Details:  fmt.Sprintf("%d optimized, %d failed", optimized.Successful, optimized.Failed),
	})
}

// placeholderPage はクロール不能なサイト向けの最小の合成入力を返します
func placeholderPage(siteDomain string) domain.CrawledPage {
	return domain.CrawledPage{
		URL:   "https://" + siteDomain,
		Title: siteDomain,
	}
}

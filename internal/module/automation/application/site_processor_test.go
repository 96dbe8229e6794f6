package application_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/application"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSiteProcessor_ImageScanSkippedWhenNoImages(t *testing.T) {
	// Setup
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModeAutomatic)
	conn := connection("store.example.com", domain.PlatformShopify)
	result := domain.NewAutomationResult()

	// Execute
	report, err := h.processor.ProcessSite(ctx, user, conn, result)

	// Assert: 画像0件はスキップ扱いで、エラーにはならない
	require.NoError(t, err)
	assert.Empty(t, report.Errors)
	var scan, opt *domain.Activity
	for i, a := range result.Activities {
		switch a.Activity {
		case application.ActivityImageScan:
			scan = &result.Activities[i]
		case application.ActivityImageOptimization:
			opt = &result.Activities[i]
		}
	}
	require.NotNil(t, scan)
	assert.Equal(t, domain.ActivityStatusSkipped, scan.Status)
	assert.Equal(t, "No images found", scan.Reason)
	require.NotNil(t, opt)
	assert.Equal(t, domain.ActivityStatusSkipped, opt.Status)
	assert.Equal(t, "No images require optimization", opt.Reason)
}

func TestSiteProcessor_OptimizesOnlyMissingAltWithinLimit(t *testing.T) {
	// Setup: alt欠落2件を含む画像3件
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModeAutomatic)
	conn := connection("store.example.com", domain.PlatformShopify)

	h.scanner.ScanImagesFunc = func(ctx context.Context, connectionID uuid.UUID) ([]domain.SiteImage, error) {
		return []domain.SiteImage{
			{URL: "https://store.example.com/a.jpg", AltText: ""},
			{URL: "https://store.example.com/b.jpg", AltText: "Product photo"},
			{URL: "https://store.example.com/c.jpg", AltText: ""},
		}, nil
	}
	var gotOpts domain.OptimizeOptions
	h.optimizer.OptimizeImagesFunc = func(ctx context.Context, connectionID uuid.UUID, opts domain.OptimizeOptions) (*domain.OptimizeResult, error) {
		gotOpts = opts
		return &domain.OptimizeResult{Successful: 2}, nil
	}

	result := domain.NewAutomationResult()

	// Execute
	report, err := h.processor.ProcessSite(ctx, user, conn, result)

	// Assert: alt欠落画像のみ、設定上限付きで最適化される
	require.NoError(t, err)
	assert.True(t, gotOpts.OnlyMissingAlt)
	assert.Equal(t, 5, gotOpts.MaxImages)
	assert.Equal(t, 2, report.ImagesOptimized)
	assert.Equal(t, 2, result.ImagesOptimized)
}

func TestSiteProcessor_AnalysisFailureSkipsFixPhase(t *testing.T) {
	// Setup
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModeAutomatic)
	conn := connection("store.example.com", domain.PlatformShopify)

	h.analyzer.AnalyzeForSEOFunc = func(ctx context.Context, siteDomain string, pages []domain.CrawledPage, platform domain.Platform) ([]domain.DetectedIssue, error) {
		return nil, errors.New("model overloaded")
	}
	executorCalled := false
	h.executor.ExecuteFixesFunc = func(ctx context.Context, connectionID, userID uuid.UUID) (*domain.FixExecution, error) {
		executorCalled = true
		return &domain.FixExecution{Success: true}, nil
	}

	result := domain.NewAutomationResult()

	// Execute
	report, err := h.processor.ProcessSite(ctx, user, conn, result)

	// Assert: 分析が失敗したら修正フェーズは問題ゼロとしてスキップされる
	require.NoError(t, err)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "Analysis:")
	assert.False(t, executorCalled)
	assert.Zero(t, result.IssuesFixed)
	assert.Zero(t, result.IssuesFound)
}

func TestSiteProcessor_FixDelegateFailureKeepsCountsZero(t *testing.T) {
	// Setup
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModeAutomatic)
	conn := connection("store.example.com", domain.PlatformShopify)

	h.analyzer.AnalyzeForSEOFunc = func(ctx context.Context, siteDomain string, pages []domain.CrawledPage, platform domain.Platform) ([]domain.DetectedIssue, error) {
		return detectedIssues(2, domain.SeverityHigh), nil
	}
	h.executor.ExecuteFixesFunc = func(ctx context.Context, connectionID, userID uuid.UUID) (*domain.FixExecution, error) {
		return nil, errors.New("adapter rejected request")
	}

	result := domain.NewAutomationResult()

	// Execute
	report, err := h.processor.ProcessSite(ctx, user, conn, result)

	// Assert: 検出件数は残り、修正・承認待ちはゼロのまま
	require.NoError(t, err)
	assert.Equal(t, 2, report.IssuesFound)
	assert.Zero(t, report.FixesApplied)
	assert.Zero(t, report.IssuesPending)
	assert.Zero(t, result.IssuesFixed)
	assert.Zero(t, result.IssuesPending)

	var found bool
	for _, a := range result.Activities {
		if a.Activity == application.ActivityApplyFixes {
			assert.Equal(t, domain.ActivityStatusFailed, a.Status)
			found = true
		}
	}
	assert.True(t, found, "failed fix activity not recorded")
}

func TestSiteProcessor_PersistsDetectedIssues(t *testing.T) {
	// Setup
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModePlan)
	conn := connection("blog.example.com", domain.PlatformWordPress)

	h.crawler.CrawlFunc = func(ctx context.Context, siteDomain string, maxPages, maxDepth int) (*domain.CrawlResult, error) {
		return pages(3), nil
	}
	h.analyzer.AnalyzeForSEOFunc = func(ctx context.Context, siteDomain string, p []domain.CrawledPage, platform domain.Platform) ([]domain.DetectedIssue, error) {
		return detectedIssues(2, domain.SeverityCritical), nil
	}

	result := domain.NewAutomationResult()

	// Execute
	report, err := h.processor.ProcessSite(ctx, user, conn, result)

	// Assert: 検出結果が接続に紐づいたIssueとして保存される
	require.NoError(t, err)
	require.Len(t, h.issues.Created, 2)
	for _, issue := range h.issues.Created {
		assert.Equal(t, conn.ID, issue.ConnectionID)
		assert.Equal(t, domain.IssueStatusDetected, issue.Status)
	}
	assert.Equal(t, 2, report.IssuesBySeverity[domain.SeverityCritical])
	assert.Equal(t, 3, report.PagesCrawled)
}

package application_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/application"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	testutil "github.com/jinford/seo-autopilot/internal/module/automation/testing"
	"github.com/jinford/seo-autopilot/internal/platform/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// harness はオーケストレーター一式をモックで組み立てたテスト環境です
type harness struct {
	users         *testutil.MockUserRepository
	conns         *testutil.MockConnectionRepository
	jobs          *testutil.MockJobRepository
	issues        *testutil.MockIssueRepository
	crawler       *testutil.MockCrawler
	scanner       *testutil.MockImageScanner
	analyzer      *testutil.MockSEOAnalyzer
	executor      *testutil.MockFixExecutor
	optimizer     *testutil.MockImageOptimizer
	reports       *testutil.MockReportRepository
	notifications *testutil.MockNotificationRepository
	email         *testutil.MockEmailSender
	snapshots     *testutil.MockSnapshotRepository

	processor    *application.SiteProcessor
	orchestrator *application.Orchestrator
	scheduler    *application.Scheduler
}

func newHarness() *harness {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

	h := &harness{
		users:         &testutil.MockUserRepository{},
		conns:         &testutil.MockConnectionRepository{},
		jobs:          &testutil.MockJobRepository{},
		issues:        &testutil.MockIssueRepository{},
		crawler:       &testutil.MockCrawler{},
		scanner:       &testutil.MockImageScanner{},
		analyzer:      &testutil.MockSEOAnalyzer{},
		executor:      &testutil.MockFixExecutor{},
		optimizer:     &testutil.MockImageOptimizer{},
		reports:       &testutil.MockReportRepository{},
		notifications: &testutil.MockNotificationRepository{},
		email:         &testutil.MockEmailSender{},
		snapshots:     &testutil.MockSnapshotRepository{},
	}

	policy := application.NewExecutionPolicy(h.executor, log)
	h.processor = application.NewSiteProcessor(
		h.crawler, h.scanner, h.analyzer, policy, h.optimizer, h.issues,
		config.AutomationConfig{MaxImagesPerRun: 5, PhaseTimeout: time.Minute},
		config.CrawlerConfig{MaxPages: 10, MaxDepth: 2},
		log)
	reporter := application.NewReportAggregator(h.reports, h.notifications, h.email, log)
	snapshots := application.NewSnapshotStore(h.snapshots, log)
	h.orchestrator = application.NewOrchestrator(h.users, h.conns, h.jobs, h.processor, reporter, snapshots, log)
	h.scheduler = application.NewScheduler(
		config.SchedulerConfig{CronSchedule: "0 3 * * *", MaxConcurrentUsers: 2},
		h.users, h.jobs, h.orchestrator, log)

	return h
}

func (h *harness) withUser(mode domain.ExecutionMode) *domain.User {
	user := &domain.User{
		ID:                uuid.New(),
		Email:             "owner@example.com",
		ExecutionMode:     mode,
		AutomationEnabled: true,
	}
	h.users.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
		if id == user.ID {
			return user, nil
		}
		return nil, domain.ErrUserNotFound
	}
	return user
}

func (h *harness) withConnections(userID uuid.UUID, conns ...*domain.Connection) {
	h.conns.ListConnectedFunc = func(ctx context.Context, id uuid.UUID) ([]*domain.Connection, error) {
		return conns, nil
	}
}

func connection(domainName string, platform domain.Platform) *domain.Connection {
	return &domain.Connection{
		ID:       uuid.New(),
		Platform: platform,
		Domain:   domainName,
		Status:   domain.ConnectionStatusConnected,
	}
}

func pages(n int) *domain.CrawlResult {
	result := &domain.CrawlResult{}
	for i := 0; i < n; i++ {
		result.Pages = append(result.Pages, domain.CrawledPage{
			URL:       "https://example.com/page",
			Title:     "Page",
			WordCount: 250,
		})
	}
	return result
}

func detectedIssues(n int, severity domain.Severity) []domain.DetectedIssue {
	issues := make([]domain.DetectedIssue, n)
	for i := range issues {
		issues[i] = domain.DetectedIssue{
			IssueType:      "missing_meta_description",
			Title:          "Missing meta description",
			Severity:       severity,
			PageURL:        "https://example.com/page",
			Recommendation: "Add a meta description",
		}
	}
	return issues
}

func fixes(n int) *domain.FixExecution {
	execution := &domain.FixExecution{Success: true}
	for i := 0; i < n; i++ {
		execution.Fixes = append(execution.Fixes, domain.Fix{
			FixID:       uuid.NewString(),
			Description: "Set meta description",
			Before:      "",
			After:       "A concise meta description",
		})
	}
	return execution
}

func TestOrchestrator_NoConnections(t *testing.T) {
	// Setup
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModeAutomatic)
	h.withConnections(user.ID)

	// Execute
	job, err := h.orchestrator.RunForUser(ctx, user.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.Result)
	assert.Zero(t, job.Result.SitesScanned)
	assert.Zero(t, job.Result.IssuesFound)
	assert.Empty(t, job.Result.FixesApplied)
	// 接続ゼロの実行ではレポートもスナップショットも作られない
	assert.Nil(t, h.reports.Created)
	assert.Nil(t, h.snapshots.Created)
}

func TestOrchestrator_AutomaticMode_AppliesFixes(t *testing.T) {
	// Setup: 2接続、接続Aは10ページ・クリティカル3件、AUTOMATICモード
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModeAutomatic)
	connA := connection("store-a.example.com", domain.PlatformShopify)
	connB := connection("blog-b.example.com", domain.PlatformWordPress)
	h.withConnections(user.ID, connA, connB)

	h.crawler.CrawlFunc = func(ctx context.Context, siteDomain string, maxPages, maxDepth int) (*domain.CrawlResult, error) {
		if siteDomain == connA.Domain {
			return pages(10), nil
		}
		return pages(2), nil
	}
	h.analyzer.AnalyzeForSEOFunc = func(ctx context.Context, siteDomain string, p []domain.CrawledPage, platform domain.Platform) ([]domain.DetectedIssue, error) {
		if siteDomain == connA.Domain {
			return detectedIssues(3, domain.SeverityCritical), nil
		}
		return nil, nil
	}
	h.executor.ExecuteFixesFunc = func(ctx context.Context, connectionID, userID uuid.UUID) (*domain.FixExecution, error) {
		return fixes(3), nil
	}

	// Execute
	job, err := h.orchestrator.RunForUser(ctx, user.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	result := job.Result
	require.NotNil(t, result)
	assert.Equal(t, 2, result.SitesScanned)
	assert.Equal(t, 12, result.PagesAnalyzed)
	assert.Equal(t, 3, result.IssuesFound)
	assert.Len(t, result.FixesApplied, 3)
	assert.Equal(t, 3, result.IssuesFixed)
	assert.Zero(t, result.IssuesPending)
	assert.Empty(t, result.PendingApproval)

	// 接続Aの活動記録にクロール・分析・修正適用が残る
	names := activityNames(result.Activities, connA.Domain)
	assert.Contains(t, names, application.ActivitySiteCrawl)
	assert.Contains(t, names, application.ActivitySEOAnalysis)
	assert.Contains(t, names, application.ActivityApplyFixes)

	// レポートとスナップショットが両方作られる
	require.NotNil(t, h.reports.Created)
	require.NotNil(t, h.snapshots.Created)
	assert.Equal(t, h.reports.Created.ID, h.snapshots.Created.ReportID)
	require.NotNil(t, h.notifications.Created)
}

func TestOrchestrator_CrawlFailureDoesNotAbortBatch(t *testing.T) {
	// Setup: 接続Bのクロールだけがネットワークエラーで失敗する
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModeAutomatic)
	connA := connection("store-a.example.com", domain.PlatformShopify)
	connB := connection("broken-b.example.com", domain.PlatformCustom)
	h.withConnections(user.ID, connA, connB)

	analyzedPages := map[string][]domain.CrawledPage{}
	h.crawler.CrawlFunc = func(ctx context.Context, siteDomain string, maxPages, maxDepth int) (*domain.CrawlResult, error) {
		if siteDomain == connB.Domain {
			return nil, errors.New("network timeout")
		}
		return pages(4), nil
	}
	h.analyzer.AnalyzeForSEOFunc = func(ctx context.Context, siteDomain string, p []domain.CrawledPage, platform domain.Platform) ([]domain.DetectedIssue, error) {
		analyzedPages[siteDomain] = p
		return nil, nil
	}

	// Execute
	job, err := h.orchestrator.RunForUser(ctx, user.ID)

	// Assert: バッチは完了する
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	assert.Equal(t, 2, job.Result.SitesScanned)

	// 接続Bのサイトレポートに Crawl: 接頭辞のエラーが残り、アクセス水準が落ちる
	reportB := siteReportFor(t, job.Result, connB.ID)
	require.NotEmpty(t, reportB.Errors)
	assert.Contains(t, reportB.Errors[0], "Crawl:")
	assert.Equal(t, domain.AccessLevelLimited, reportB.AccessLevel)

	// 失敗の活動記録が残る
	var found bool
	for _, a := range job.Result.Activities {
		if a.Site == connB.Domain && a.Activity == application.ActivitySiteCrawl {
			assert.Equal(t, domain.ActivityStatusFailed, a.Status)
			assert.Contains(t, a.Reason, "network timeout")
			found = true
		}
	}
	assert.True(t, found, "failed crawl activity not recorded")

	// 接続Bの分析は合成ページで実行されている
	require.Len(t, analyzedPages[connB.Domain], 1)
	assert.Equal(t, "https://"+connB.Domain, analyzedPages[connB.Domain][0].URL)
}

func TestOrchestrator_SitePanicDoesNotAbortBatch(t *testing.T) {
	// Setup: 接続Bの処理中にアダプターがpanicする
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModeAutomatic)
	connA := connection("store-a.example.com", domain.PlatformShopify)
	connB := connection("panics-b.example.com", domain.PlatformCustom)
	h.withConnections(user.ID, connA, connB)

	h.crawler.CrawlFunc = func(ctx context.Context, siteDomain string, maxPages, maxDepth int) (*domain.CrawlResult, error) {
		if siteDomain == connB.Domain {
			panic("nil map write in adapter")
		}
		return pages(3), nil
	}

	// Execute
	job, err := h.orchestrator.RunForUser(ctx, user.ID)

	// Assert: バッチは完了し、接続Aは通常どおり処理される
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	reportA := siteReportFor(t, job.Result, connA.ID)
	assert.Empty(t, reportA.Errors)

	// 接続Bは Processing: 接頭辞のエラー付きレポートに封じ込められる
	reportB := siteReportFor(t, job.Result, connB.ID)
	require.NotEmpty(t, reportB.Errors)
	assert.Contains(t, reportB.Errors[0], "Processing:")
	assert.Contains(t, reportB.Errors[0], "nil map write")
	assert.Equal(t, domain.AccessLevelLimited, reportB.AccessLevel)

	// 失敗の活動記録が残る
	var found bool
	for _, a := range job.Result.Activities {
		if a.Site == connB.Domain && a.Activity == application.ActivitySiteProcessing {
			assert.Equal(t, domain.ActivityStatusFailed, a.Status)
			found = true
		}
	}
	assert.True(t, found, "failed processing activity not recorded")
}

func TestOrchestrator_UserNotFoundIsFatal(t *testing.T) {
	// Setup
	ctx := context.Background()
	h := newHarness()
	h.users.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*domain.User, error) {
		return nil, domain.ErrUserNotFound
	}

	// Execute
	_, err := h.orchestrator.RunForUser(ctx, uuid.New())

	// Assert
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.True(t, h.jobs.Failed)
	assert.Contains(t, h.jobs.FailedMessage, "failed to load user")
}

func TestOrchestrator_ReportPersistenceFailureIsFatal(t *testing.T) {
	// Setup
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModeAutomatic)
	h.withConnections(user.ID, connection("store.example.com", domain.PlatformShopify))
	h.reports.CreateFunc = func(ctx context.Context, report *domain.DailyReport) error {
		return errors.New("connection refused")
	}

	// Execute
	_, err := h.orchestrator.RunForUser(ctx, user.ID)

	// Assert: レポートが永続化できなければジョブは失敗し、スナップショットは作られない
	require.Error(t, err)
	assert.True(t, h.jobs.Failed)
	assert.Nil(t, h.snapshots.Created)
}

func TestOrchestrator_EmailFailureDoesNotFailJob(t *testing.T) {
	// Setup
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModePlan)
	h.withConnections(user.ID, connection("store.example.com", domain.PlatformShopify))
	h.email.SendDailyReportFunc = func(ctx context.Context, userID uuid.UUID, address string, summary domain.ReportSummary) error {
		return errors.New("smtp unavailable")
	}

	// Execute
	job, err := h.orchestrator.RunForUser(ctx, user.ID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, job.Status)
	require.NotNil(t, h.reports.Created)
	assert.False(t, h.reports.Created.EmailSent)
	assert.False(t, h.reports.EmailSentMarked)
}

func TestOrchestrator_ProgressIsMonotonic(t *testing.T) {
	// Setup
	ctx := context.Background()
	h := newHarness()
	user := h.withUser(domain.ExecutionModeAutomatic)
	h.withConnections(user.ID,
		connection("a.example.com", domain.PlatformShopify),
		connection("b.example.com", domain.PlatformWordPress),
		connection("c.example.com", domain.PlatformCustom))

	// Execute
	job, err := h.orchestrator.RunForUser(ctx, user.ID)

	// Assert
	require.NoError(t, err)
	require.NotEmpty(t, h.jobs.ProgressUpdates)
	assert.Equal(t, 5, h.jobs.ProgressUpdates[0])
	for i := 1; i < len(h.jobs.ProgressUpdates); i++ {
		assert.Greater(t, h.jobs.ProgressUpdates[i], h.jobs.ProgressUpdates[i-1])
	}
	assert.Equal(t, 95, h.jobs.ProgressUpdates[len(h.jobs.ProgressUpdates)-1])
	assert.Equal(t, 100, job.Progress)
}

// activityNames は指定サイトの活動名を集めます
func activityNames(activities []domain.Activity, site string) []string {
	var names []string
	for _, a := range activities {
		if a.Site == site {
			names = append(names, a.Activity)
		}
	}
	return names
}

// siteReportFor は接続IDに対応するサイトレポートを取り出します
func siteReportFor(t *testing.T, result *domain.AutomationResult, connectionID uuid.UUID) domain.SiteReport {
	t.Helper()
	for _, report := range result.SiteReports {
		if report.ConnectionID == connectionID {
			return report
		}
	}
	t.Fatalf("site report not found for connection %s", connectionID)
	return domain.SiteReport{}
}

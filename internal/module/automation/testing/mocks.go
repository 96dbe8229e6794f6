// Package testing は自動化モジュールのテスト用モックを提供します
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// MockCrawler はテスト用のモックCrawlerです
type MockCrawler struct {
	CrawlFunc func(ctx context.Context, siteDomain string, maxPages, maxDepth int) (*domain.CrawlResult, error)
}

func (m *MockCrawler) Crawl(ctx context.Context, siteDomain string, maxPages, maxDepth int) (*domain.CrawlResult, error) {
	if m.CrawlFunc != nil {
		return m.CrawlFunc(ctx, siteDomain, maxPages, maxDepth)
	}
	return &domain.CrawlResult{Pages: []domain.CrawledPage{}}, nil
}

// MockImageScanner はテスト用のモックImageScannerです
type MockImageScanner struct {
	ScanImagesFunc  func(ctx context.Context, connectionID uuid.UUID) ([]domain.SiteImage, error)
	StoreImagesFunc func(ctx context.Context, connectionID uuid.UUID, images []domain.SiteImage) error
}

func (m *MockImageScanner) ScanImages(ctx context.Context, connectionID uuid.UUID) ([]domain.SiteImage, error) {
	if m.ScanImagesFunc != nil {
		return m.ScanImagesFunc(ctx, connectionID)
	}
	return nil, nil
}

func (m *MockImageScanner) StoreImages(ctx context.Context, connectionID uuid.UUID, images []domain.SiteImage) error {
	if m.StoreImagesFunc != nil {
		return m.StoreImagesFunc(ctx, connectionID, images)
	}
	return nil
}

// MockSEOAnalyzer はテスト用のモックSEOAnalyzerです
type MockSEOAnalyzer struct {
	AnalyzeForSEOFunc func(ctx context.Context, siteDomain string, pages []domain.CrawledPage, platform domain.Platform) ([]domain.DetectedIssue, error)
}

func (m *MockSEOAnalyzer) AnalyzeForSEO(ctx context.Context, siteDomain string, pages []domain.CrawledPage, platform domain.Platform) ([]domain.DetectedIssue, error) {
	if m.AnalyzeForSEOFunc != nil {
		return m.AnalyzeForSEOFunc(ctx, siteDomain, pages, platform)
	}
	return nil, nil
}

// MockFixExecutor はテスト用のモックFixExecutorです
type MockFixExecutor struct {
	ExecuteFixesFunc func(ctx context.Context, connectionID, userID uuid.UUID) (*domain.FixExecution, error)
}

func (m *MockFixExecutor) ExecuteFixes(ctx context.Context, connectionID, userID uuid.UUID) (*domain.FixExecution, error) {
	if m.ExecuteFixesFunc != nil {
		return m.ExecuteFixesFunc(ctx, connectionID, userID)
	}
	return &domain.FixExecution{Success: true}, nil
}

// MockImageOptimizer はテスト用のモックImageOptimizerです
type MockImageOptimizer struct {
	OptimizeImagesFunc func(ctx context.Context, connectionID uuid.UUID, opts domain.OptimizeOptions) (*domain.OptimizeResult, error)
}

func (m *MockImageOptimizer) OptimizeImages(ctx context.Context, connectionID uuid.UUID, opts domain.OptimizeOptions) (*domain.OptimizeResult, error) {
	if m.OptimizeImagesFunc != nil {
		return m.OptimizeImagesFunc(ctx, connectionID, opts)
	}
	return &domain.OptimizeResult{}, nil
}

// MockEmailSender はテスト用のモックEmailSenderです
type MockEmailSender struct {
	SendDailyReportFunc func(ctx context.Context, userID uuid.UUID, address string, summary domain.ReportSummary) error
}

func (m *MockEmailSender) SendDailyReport(ctx context.Context, userID uuid.UUID, address string, summary domain.ReportSummary) error {
	if m.SendDailyReportFunc != nil {
		return m.SendDailyReportFunc(ctx, userID, address, summary)
	}
	return nil
}

// MockUserRepository はテスト用のモックUserRepositoryです
type MockUserRepository struct {
	GetByIDFunc           func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ListAutomationDueFunc func(ctx context.Context) ([]*domain.User, error)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) ListAutomationDue(ctx context.Context) ([]*domain.User, error) {
	if m.ListAutomationDueFunc != nil {
		return m.ListAutomationDueFunc(ctx)
	}
	return nil, nil
}

// MockConnectionRepository はテスト用のモックConnectionRepositoryです
type MockConnectionRepository struct {
	ListConnectedFunc func(ctx context.Context, userID uuid.UUID) ([]*domain.Connection, error)
}

func (m *MockConnectionRepository) ListConnected(ctx context.Context, userID uuid.UUID) ([]*domain.Connection, error) {
	if m.ListConnectedFunc != nil {
		return m.ListConnectedFunc(ctx, userID)
	}
	return nil, nil
}

// MockJobRepository はテスト用のモックJobRepositoryです
// 引数なしの場合はジョブの状態遷移をメモリ上に記録します
// 記録フィールドは並行実行されるテストからも書き込まれるためロックで保護します
type MockJobRepository struct {
	CreateFunc         func(ctx context.Context, job *domain.Job) error
	GetByIDFunc        func(ctx context.Context, id uuid.UUID) (*domain.Job, error)
	MarkRunningFunc    func(ctx context.Context, id uuid.UUID, startedAt time.Time) error
	UpdateProgressFunc func(ctx context.Context, id uuid.UUID, progress int) error
	CompleteFunc       func(ctx context.Context, id uuid.UUID, result *domain.AutomationResult, completedAt time.Time) error
	FailFunc           func(ctx context.Context, id uuid.UUID, errMsg string, failedAt time.Time) error
	HasActiveFunc      func(ctx context.Context, userID uuid.UUID) (bool, error)

	// 記録用
	mu              sync.Mutex
	ProgressUpdates []int
	Completed       bool
	Failed          bool
	FailedMessage   string
}

func (m *MockJobRepository) Create(ctx context.Context, job *domain.Job) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, job)
	}
	return nil
}

func (m *MockJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockJobRepository) MarkRunning(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	if m.MarkRunningFunc != nil {
		return m.MarkRunningFunc(ctx, id, startedAt)
	}
	return nil
}

func (m *MockJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error {
	if m.UpdateProgressFunc != nil {
		return m.UpdateProgressFunc(ctx, id, progress)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProgressUpdates = append(m.ProgressUpdates, progress)
	return nil
}

func (m *MockJobRepository) Complete(ctx context.Context, id uuid.UUID, result *domain.AutomationResult, completedAt time.Time) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, id, result, completedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Completed = true
	return nil
}

func (m *MockJobRepository) Fail(ctx context.Context, id uuid.UUID, errMsg string, failedAt time.Time) error {
	if m.FailFunc != nil {
		return m.FailFunc(ctx, id, errMsg, failedAt)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed = true
	m.FailedMessage = errMsg
	return nil
}

func (m *MockJobRepository) HasActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	if m.HasActiveFunc != nil {
		return m.HasActiveFunc(ctx, userID)
	}
	return false, nil
}

// MockIssueRepository はテスト用のモックIssueRepositoryです
type MockIssueRepository struct {
	CreateBatchFunc func(ctx context.Context, issues []*domain.Issue) error

	// 記録用
	mu      sync.Mutex
	Created []*domain.Issue
}

func (m *MockIssueRepository) CreateBatch(ctx context.Context, issues []*domain.Issue) error {
	if m.CreateBatchFunc != nil {
		return m.CreateBatchFunc(ctx, issues)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = append(m.Created, issues...)
	return nil
}

// MockReportRepository はテスト用のモックReportRepositoryです
type MockReportRepository struct {
	CreateFunc          func(ctx context.Context, report *domain.DailyReport) error
	MarkEmailSentFunc   func(ctx context.Context, id uuid.UUID) error
	GetLatestByUserFunc func(ctx context.Context, userID uuid.UUID) (*domain.DailyReport, error)

	// 記録用
	mu              sync.Mutex
	Created         *domain.DailyReport
	EmailSentMarked bool
}

func (m *MockReportRepository) Create(ctx context.Context, report *domain.DailyReport) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, report)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = report
	return nil
}

func (m *MockReportRepository) MarkEmailSent(ctx context.Context, id uuid.UUID) error {
	if m.MarkEmailSentFunc != nil {
		return m.MarkEmailSentFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmailSentMarked = true
	return nil
}

func (m *MockReportRepository) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*domain.DailyReport, error) {
	if m.GetLatestByUserFunc != nil {
		return m.GetLatestByUserFunc(ctx, userID)
	}
	return nil, nil
}

// MockSnapshotRepository はテスト用のモックSnapshotRepositoryです
type MockSnapshotRepository struct {
	CreateFunc           func(ctx context.Context, snapshot *domain.AutomationSnapshot) error
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*domain.AutomationSnapshot, error)
	ListActiveByUserFunc func(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.AutomationSnapshot, error)

	// 記録用
	mu      sync.Mutex
	Created *domain.AutomationSnapshot
}

func (m *MockSnapshotRepository) Create(ctx context.Context, snapshot *domain.AutomationSnapshot) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, snapshot)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = snapshot
	return nil
}

func (m *MockSnapshotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AutomationSnapshot, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockSnapshotRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.AutomationSnapshot, error) {
	if m.ListActiveByUserFunc != nil {
		return m.ListActiveByUserFunc(ctx, userID, now)
	}
	return nil, nil
}

// MockNotificationRepository はテスト用のモックNotificationRepositoryです
type MockNotificationRepository struct {
	CreateFunc func(ctx context.Context, notification *domain.Notification) error

	// 記録用
	mu      sync.Mutex
	Created *domain.Notification
}

func (m *MockNotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, notification)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Created = notification
	return nil
}

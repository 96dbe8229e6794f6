package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// 導出メトリクスの係数。実測に基づかないプレースホルダーであり、
// レポート上は常に推定値として表示されます
// TODO(metrics): 実トラフィックデータで係数を較正する
const (
	trafficImpactPerFix = 0.5  // 修正1件あたりの推定トラフィック改善（%ポイント）
	seoScoreScale       = 10.0 // 修正済み/検出済み比率のスコアスケール
)

// ReportAggregator はバッチ結果を1件の日次レポートに集約します
type ReportAggregator struct {
	reportRepo       domain.ReportRepository
	notificationRepo domain.NotificationRepository
	email            domain.EmailSender
	logger           *slog.Logger
}

// NewReportAggregator は新しいReportAggregatorを作成します
func NewReportAggregator(
	reportRepo domain.ReportRepository,
	notificationRepo domain.NotificationRepository,
	email domain.EmailSender,
	logger *slog.Logger,
) *ReportAggregator {
	if logger == nil {
		logger = slog.Default()
	}

	return &ReportAggregator{
		reportRepo:       reportRepo,
		notificationRepo: notificationRepo,
		email:            email,
		logger:           logger,
	}
}

// DeriveMetrics は集約結果から推定メトリクスを計算します
// 件数のみの純関数であり、同一入力に対して常に同一の値を返します
func DeriveMetrics(result *domain.AutomationResult) (seoScoreChange, estimatedTrafficImpact float64) {
	if result.IssuesFound > 0 {
		seoScoreChange = float64(result.IssuesFixed) / float64(result.IssuesFound) * seoScoreScale
	}
	estimatedTrafficImpact = float64(result.IssuesFixed) * trafficImpactPerFix
	return seoScoreChange, estimatedTrafficImpact
}

// Finalize は日次レポートを永続化し、ベストエフォートでメール送信と
// 通知作成を行います。レポートの永続化失敗のみが致命的です
func (a *ReportAggregator) Finalize(ctx context.Context, user *domain.User, result *domain.AutomationResult) (*domain.DailyReport, error) {
	seoScore, trafficImpact := DeriveMetrics(result)

	report := &domain.DailyReport{
		ID:                     uuid.New(),
		UserID:                 user.ID,
		ReportDate:             time.Now(),
		ExecutionMode:          user.ExecutionMode,
		SitesScanned:           result.SitesScanned,
		PagesAnalyzed:          result.PagesAnalyzed,
		IssuesFound:            result.IssuesFound,
		IssuesFixed:            result.IssuesFixed,
		IssuesPending:          result.IssuesPending,
		ImagesOptimized:        result.ImagesOptimized,
		FixesApplied:           result.FixesApplied,
		PendingApproval:        result.PendingApproval,
		EstimatedTrafficImpact: trafficImpact,
		SEOScoreChange:         seoScore,
		FullReport: domain.ReportPayload{
			Activities:  result.Activities,
			SiteReports: result.SiteReports,
		},
		EmailSent: false,
		CreatedAt: time.Now(),
	}

	if err := a.reportRepo.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("failed to create daily report: %w", err)
	}

	a.sendEmail(ctx, user, report)
	a.createNotification(ctx, user, report)

	return report, nil
}

// sendEmail は日次レポートメールをベストエフォートで送信します
// 送信失敗はログに残すだけでジョブを失敗させません
func (a *ReportAggregator) sendEmail(ctx context.Context, user *domain.User, report *domain.DailyReport) {
	summary := domain.ReportSummary{
		ReportID:        report.ID,
		SitesScanned:    report.SitesScanned,
		IssuesFound:     report.IssuesFound,
		IssuesFixed:     report.IssuesFixed,
		IssuesPending:   report.IssuesPending,
		ImagesOptimized: report.ImagesOptimized,
	}

	if err := a.email.SendDailyReport(ctx, user.ID, user.Email, summary); err != nil {
		a.logger.Warn("Failed to send daily report email", "userID", user.ID, "reportID", report.ID, "error", err)
		return
	}

	if err := a.reportRepo.MarkEmailSent(ctx, report.ID); err != nil {
		a.logger.Warn("Failed to mark report email as sent", "reportID", report.ID, "error", err)
		return
	}
	report.EmailSent = true
}

// createNotification はバッチ完了通知をベストエフォートで作成します
func (a *ReportAggregator) createNotification(ctx context.Context, user *domain.User, report *domain.DailyReport) {
	notification := &domain.Notification{
		ID:     uuid.New(),
		UserID: user.ID,
		Type:   "daily_report",
		Title:  "Daily SEO automation completed",
		Message: fmt.Sprintf("%d sites scanned, %d issues found, %d fixed, %d pending approval",
			report.SitesScanned, report.IssuesFound, report.IssuesFixed, report.IssuesPending),
		ActionURL: fmt.Sprintf("/reports/%s", report.ID),
		CreatedAt: time.Now(),
	}

	if err := a.notificationRepo.Create(ctx, notification); err != nil {
		a.logger.Warn("Failed to create notification", "userID", user.ID, "reportID", report.ID, "error", err)
	}
}

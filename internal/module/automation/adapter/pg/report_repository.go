package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// ReportRepository は日次レポートの永続化アダプターです
type ReportRepository struct {
	db DBTX
}

// NewReportRepository は新しいReportRepositoryを作成します
func NewReportRepository(db DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

var _ domain.ReportRepository = (*ReportRepository)(nil)

// Create は新しい日次レポートを永続化します
func (r *ReportRepository) Create(ctx context.Context, report *domain.DailyReport) error {
	fixesApplied, err := json.Marshal(report.FixesApplied)
	if err != nil {
		return fmt.Errorf("failed to marshal applied fixes: %w", err)
	}
	pendingApproval, err := json.Marshal(report.PendingApproval)
	if err != nil {
		return fmt.Errorf("failed to marshal pending approval: %w", err)
	}
	fullReport, err := json.Marshal(report.FullReport)
	if err != nil {
		return fmt.Errorf("failed to marshal full report: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO daily_reports (
			id, user_id, report_date, execution_mode,
			sites_scanned, pages_analyzed, issues_found, issues_fixed, issues_pending, images_optimized,
			fixes_applied, pending_approval, estimated_traffic_impact, seo_score_change,
			full_report, email_sent, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		report.ID, report.UserID, report.ReportDate, report.ExecutionMode,
		report.SitesScanned, report.PagesAnalyzed, report.IssuesFound, report.IssuesFixed,
		report.IssuesPending, report.ImagesOptimized,
		fixesApplied, pendingApproval, report.EstimatedTrafficImpact, report.SEOScoreChange,
		fullReport, report.EmailSent, report.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create daily report: %w", err)
	}

	return nil
}

// MarkEmailSent はメール送信済みフラグを立てます
func (r *ReportRepository) MarkEmailSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `UPDATE daily_reports SET email_sent = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark report email sent: %w", err)
	}

	return nil
}

// GetLatestByUser はユーザーの最新レポートを取得します
func (r *ReportRepository) GetLatestByUser(ctx context.Context, userID uuid.UUID) (*domain.DailyReport, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, user_id, report_date, execution_mode,
			sites_scanned, pages_analyzed, issues_found, issues_fixed, issues_pending, images_optimized,
			fixes_applied, pending_approval, estimated_traffic_impact, seo_score_change,
			full_report, email_sent, created_at
		 FROM daily_reports WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`, userID)

	var (
		report          domain.DailyReport
		fixesApplied    []byte
		pendingApproval []byte
		fullReport      []byte
	)
	if err := row.Scan(&report.ID, &report.UserID, &report.ReportDate, &report.ExecutionMode,
		&report.SitesScanned, &report.PagesAnalyzed, &report.IssuesFound, &report.IssuesFixed,
		&report.IssuesPending, &report.ImagesOptimized,
		&fixesApplied, &pendingApproval, &report.EstimatedTrafficImpact, &report.SEOScoreChange,
		&fullReport, &report.EmailSent, &report.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no reports found for user: %s", userID)
		}
		return nil, fmt.Errorf("failed to get latest report: %w", err)
	}

	if err := json.Unmarshal(fixesApplied, &report.FixesApplied); err != nil {
		return nil, fmt.Errorf("failed to unmarshal applied fixes: %w", err)
	}
	if err := json.Unmarshal(pendingApproval, &report.PendingApproval); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending approval: %w", err)
	}
	if err := json.Unmarshal(fullReport, &report.FullReport); err != nil {
		return nil, fmt.Errorf("failed to unmarshal full report: %w", err)
	}

	return &report, nil
}

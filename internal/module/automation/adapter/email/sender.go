// Package email は日次レポートメール送信の実装を提供します
// 実際のテンプレート描画と配信は外部のメールサービスの責務であり、
// ここではその呼び出し口とローカル開発向けの実装のみを持ちます
package email

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// LogSender は送信内容をログに出力するEmailSender実装です
// ローカル開発と、配信基盤が未設定の環境で使用します
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender は新しいLogSenderを作成します
func NewLogSender(logger *slog.Logger) *LogSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogSender{logger: logger}
}

var _ domain.EmailSender = (*LogSender)(nil)

// SendDailyReport はレポート要約をログに出力します
func (s *LogSender) SendDailyReport(ctx context.Context, userID uuid.UUID, address string, summary domain.ReportSummary) error {
	s.logger.Info("Daily report email",
		"userID", userID,
		"to", address,
		"reportID", summary.ReportID,
		"sitesScanned", summary.SitesScanned,
		"issuesFound", summary.IssuesFound,
		"issuesFixed", summary.IssuesFixed,
		"issuesPending", summary.IssuesPending,
		"imagesOptimized", summary.ImagesOptimized,
	)
	return nil
}

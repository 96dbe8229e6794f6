package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// 進捗率の節目。外部からのポーリングに備えて単調増加で更新されます
const (
	progressStarted    = 5
	progressFinalizing = 95
	progressCompleted  = 100
	progressSpan       = progressFinalizing - progressStarted
)

// Orchestrator は1ユーザー分の自動化バッチを統括します
// 接続単位の失敗は封じ込め、セットアップと最終永続化の失敗のみを
// ジョブの失敗として扱います
type Orchestrator struct {
	userRepo  domain.UserRepository
	connRepo  domain.ConnectionRepository
	jobRepo   domain.JobRepository
	processor *SiteProcessor
	reporter  *ReportAggregator
	snapshots *SnapshotStore
	logger    *slog.Logger
}

// NewOrchestrator は新しいOrchestratorを作成します
func NewOrchestrator(
	userRepo domain.UserRepository,
	connRepo domain.ConnectionRepository,
	jobRepo domain.JobRepository,
	processor *SiteProcessor,
	reporter *ReportAggregator,
	snapshots *SnapshotStore,
	logger *slog.Logger,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Orchestrator{
		userRepo:  userRepo,
		connRepo:  connRepo,
		jobRepo:   jobRepo,
		processor: processor,
		reporter:  reporter,
		snapshots: snapshots,
		logger:    logger,
	}
}

// RunForUser はユーザーの全接続を処理し、終端状態のジョブを返します
// 致命的エラー時はジョブをFAILEDにした上でエラーを呼び出し元に返します
// （リトライの判断はスケジューラー層の責務です）
func (o *Orchestrator) RunForUser(ctx context.Context, userID uuid.UUID) (*domain.Job, error) {
	job := domain.NewJob(userID)
	if err := o.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	return o.runJob(ctx, job)
}

// RunJob は作成済みのPENDINGジョブを実行します（スケジューラー経由）
func (o *Orchestrator) RunJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	return o.runJob(ctx, job)
}

func (o *Orchestrator) runJob(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	startedAt := time.Now()
	if err := o.jobRepo.MarkRunning(ctx, job.ID, startedAt); err != nil {
		return nil, o.failJob(ctx, job, fmt.Errorf("failed to mark job running: %w", err))
	}
	job.Status = domain.JobStatusRunning
	job.StartedAt = &startedAt
	o.setProgress(ctx, job, progressStarted)

	userID := job.Payload.UserID
	o.logger.Info("Starting automation run", "jobID", job.ID, "userID", userID)

	// セットアップ。ここでの失敗はジョブ全体の失敗です
	user, err := o.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, o.failJob(ctx, job, fmt.Errorf("failed to load user: %w", err))
	}

	connections, err := o.connRepo.ListConnected(ctx, userID)
	if err != nil {
		return nil, o.failJob(ctx, job, fmt.Errorf("failed to load connections: %w", err))
	}

	result := domain.NewAutomationResult()

	// 接続が無ければ全ゼロの結果で正常完了。スナップショットは作りません
	if len(connections) == 0 {
		o.logger.Info("No connected sites, completing with empty result", "userID", userID)
		return o.completeJob(ctx, job, result)
	}

	for i, conn := range connections {
		if err := o.processSite(ctx, user, conn, result); err != nil {
			// 1接続の失敗はバッチを止めません
			o.recordSiteFailure(conn, err, result)
		}
		o.setProgress(ctx, job, progressStarted+(i+1)*progressSpan/len(connections))
	}

	o.setProgress(ctx, job, progressFinalizing)

	// 最終永続化。レポートとスナップショットの両方が揃って初めて
	// バッチの成果が永続化されたと見なします
	report, err := o.reporter.Finalize(ctx, user, result)
	if err != nil {
		return nil, o.failJob(ctx, job, fmt.Errorf("failed to finalize report: %w", err))
	}

	if _, err := o.snapshots.Capture(ctx, userID, report.ID, result); err != nil {
		return nil, o.failJob(ctx, job, fmt.Errorf("failed to capture snapshot: %w", err))
	}

	return o.completeJob(ctx, job, result)
}

// processSite は1接続分の処理を実行します
// アダプター実装内のpanicは1接続の失敗として封じ込め、バッチは継続します
func (o *Orchestrator) processSite(ctx context.Context, user *domain.User, conn *domain.Connection, result *domain.AutomationResult) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	_, err = o.processor.ProcessSite(ctx, user, conn, result)
	return err
}

// recordSiteFailure は接続単位の想定外エラーをレポートに記録します
func (o *Orchestrator) recordSiteFailure(conn *domain.Connection, err error, result *domain.AutomationResult) {
	o.logger.Error("Site processing failed", "connectionID", conn.ID, "domain", conn.Domain, "error", err)

	report := domain.NewSiteReport(conn)
	report.AccessLevel = domain.AccessLevelLimited
	report.Errors = append(report.Errors, fmt.Sprintf("Processing: %v", err))
	result.SiteReports = append(result.SiteReports, *report)
	result.AddActivity(domain.Activity{
		Site:     conn.Domain,
		Activity: ActivitySiteProcessing,
		Status:   domain.ActivityStatusFailed,
		Reason:   err.Error(),
	})
}

// setProgress は進捗率を永続化します。更新失敗は実行を妨げません
func (o *Orchestrator) setProgress(ctx context.Context, job *domain.Job, progress int) {
	if progress <= job.Progress {
		return
	}
	job.Progress = progress
	if err := o.jobRepo.UpdateProgress(ctx, job.ID, progress); err != nil {
		o.logger.Warn("Failed to update job progress", "jobID", job.ID, "progress", progress, "error", err)
	}
}

// completeJob はジョブを結果付きでCOMPLETEDに遷移させます
func (o *Orchestrator) completeJob(ctx context.Context, job *domain.Job, result *domain.AutomationResult) (*domain.Job, error) {
	completedAt := time.Now()
	if err := o.jobRepo.Complete(ctx, job.ID, result, completedAt); err != nil {
		return nil, o.failJob(ctx, job, fmt.Errorf("failed to complete job: %w", err))
	}

	job.Status = domain.JobStatusCompleted
	job.Progress = progressCompleted
	job.Result = result
	job.CompletedAt = &completedAt

	o.logger.Info("Automation run completed",
		"jobID", job.ID,
		"sitesScanned", result.SitesScanned,
		"issuesFound", result.IssuesFound,
		"issuesFixed", result.IssuesFixed,
		"issuesPending", result.IssuesPending,
	)

	return job, nil
}

// failJob はジョブをFAILEDに遷移させ、元のエラーを返します
func (o *Orchestrator) failJob(ctx context.Context, job *domain.Job, cause error) error {
	failedAt := time.Now()
	job.Status = domain.JobStatusFailed
	job.Error = cause.Error()
	job.CompletedAt = &failedAt

	if err := o.jobRepo.Fail(ctx, job.ID, cause.Error(), failedAt); err != nil {
		o.logger.Error("Failed to persist job failure", "jobID", job.ID, "error", err)
	}

	o.logger.Error("Automation run failed", "jobID", job.ID, "error", cause)

	return cause
}

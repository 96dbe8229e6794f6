package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/jinford/seo-autopilot/internal/platform/config"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Scheduler は実行周期ごとに処理対象ユーザーを決定し、
// ユーザー単位のバッチをワーカープール上で起動します
// 同一ユーザーの前回ジョブが終端状態に達していない場合は新しい実行を積みません
type Scheduler struct {
	cfg          config.SchedulerConfig
	userRepo     domain.UserRepository
	jobRepo      domain.JobRepository
	orchestrator *Orchestrator
	cron         *cron.Cron
	logger       *slog.Logger
}

// NewScheduler は新しいSchedulerを作成します
func NewScheduler(
	cfg config.SchedulerConfig,
	userRepo domain.UserRepository,
	jobRepo domain.JobRepository,
	orchestrator *Orchestrator,
	logger *slog.Logger,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		cfg:          cfg,
		userRepo:     userRepo,
		jobRepo:      jobRepo,
		orchestrator: orchestrator,
		cron:         cron.New(),
		logger:       logger,
	}
}

// Start はスケジューラーを起動します
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.CronSchedule, func() {
		if err := s.RunOnce(context.Background()); err != nil {
			s.logger.Error("Scheduled automation cycle failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to register cron job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Automation scheduler started", "schedule", s.cfg.CronSchedule)

	return nil
}

// Stop はスケジューラーを停止します
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("Automation scheduler stopped")
}

// RunOnce は1周期分の処理を実行します（手動実行可能）
// ユーザー間は独立なので上限付きで並列実行します。1ユーザーの失敗は
// ログに残すのみで、同じ周期の他ユーザーの処理を止めません
func (s *Scheduler) RunOnce(ctx context.Context) error {
	users, err := s.userRepo.ListAutomationDue(ctx)
	if err != nil {
		return fmt.Errorf("failed to list due users: %w", err)
	}

	s.logger.Info("Starting automation cycle", "users", len(users))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent())

	for _, user := range users {
		g.Go(func() error {
			active, err := s.jobRepo.HasActive(gctx, user.ID)
			if err != nil {
				s.logger.Error("Failed to check active jobs", "userID", user.ID, "error", err)
				return nil
			}
			if active {
				s.logger.Warn("Previous run still active, skipping user", "userID", user.ID)
				return nil
			}

			if _, err := s.orchestrator.RunForUser(gctx, user.ID); err != nil {
				// 致命的エラーはジョブ側に記録済み。次周期での再試行に委ねます
				s.logger.Error("Automation run failed for user", "userID", user.ID, "error", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("automation cycle aborted: %w", err)
	}

	s.logger.Info("Automation cycle finished", "users", len(users))

	return nil
}

func (s *Scheduler) maxConcurrent() int {
	if s.cfg.MaxConcurrentUsers > 0 {
		return s.cfg.MaxConcurrentUsers
	}
	return 1
}

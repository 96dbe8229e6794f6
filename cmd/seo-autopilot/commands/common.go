package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jinford/seo-autopilot/internal/module/automation/adapter/bridge"
	"github.com/jinford/seo-autopilot/internal/module/automation/adapter/crawler"
	"github.com/jinford/seo-autopilot/internal/module/automation/adapter/email"
	"github.com/jinford/seo-autopilot/internal/module/automation/adapter/llm"
	"github.com/jinford/seo-autopilot/internal/module/automation/adapter/pg"
	"github.com/jinford/seo-autopilot/internal/module/automation/application"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	"github.com/jinford/seo-autopilot/internal/platform/config"
	"github.com/jinford/seo-autopilot/internal/platform/database"
	"github.com/jinford/seo-autopilot/internal/platform/logger"
)

// AppContext はコマンド実行に必要な共通コンテキストを保持する
type AppContext struct {
	Config       *config.Config
	Database     *database.DB
	Logger       *slog.Logger
	Orchestrator *application.Orchestrator
	Scheduler    *application.Scheduler
	Reports      *pg.ReportRepository
	Snapshots    *pg.SnapshotRepository
	Jobs         *pg.JobRepository
}

// NewAppContext は設定ファイルを読み込み、DBに接続して全コンポーネントを組み立てる
func NewAppContext(ctx context.Context, envFile string) (*AppContext, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	// リポジトリ
	userRepo := pg.NewUserRepository(db.Pool)
	connRepo := pg.NewConnectionRepository(db.Pool)
	jobRepo := pg.NewJobRepository(db.Pool)
	issueRepo := pg.NewIssueRepository(db.Pool)
	reportRepo := pg.NewReportRepository(db.Pool)
	snapshotRepo := pg.NewSnapshotRepository(db.Pool)
	notificationRepo := pg.NewNotificationRepository(db.Pool)

	// 外部コラボレーター
	analyzer, err := llm.NewAnalyzer(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("OpenAIクライアントの初期化に失敗: %w", err)
	}
	platformAPI := bridge.New(cfg.PlatformAPI)
	siteCrawler := crawler.New(cfg.Crawler, appLogger)
	emailSender := email.NewLogSender(appLogger)

	// alt属性生成はデフォルトでLLMが担当し、ALT_TEXT_PROVIDER=platformで
	// プラットフォーム側の最適化に切り替えられる
	var optimizer domain.ImageOptimizer
	switch cfg.Automation.AltTextProvider {
	case "platform":
		optimizer = platformAPI
	default:
		optimizer = llm.NewAltTextOptimizer(analyzer, platformAPI, appLogger)
	}

	// アプリケーション層
	policy := application.NewExecutionPolicy(platformAPI, appLogger)
	processor := application.NewSiteProcessor(
		siteCrawler, platformAPI, analyzer, policy, optimizer,
		issueRepo, cfg.Automation, cfg.Crawler, appLogger)
	reporter := application.NewReportAggregator(reportRepo, notificationRepo, emailSender, appLogger)
	snapshots := application.NewSnapshotStore(snapshotRepo, appLogger)
	orchestrator := application.NewOrchestrator(
		userRepo, connRepo, jobRepo, processor, reporter, snapshots, appLogger)
	scheduler := application.NewScheduler(cfg.Scheduler, userRepo, jobRepo, orchestrator, appLogger)

	return &AppContext{
		Config:       cfg,
		Database:     db,
		Logger:       appLogger,
		Orchestrator: orchestrator,
		Scheduler:    scheduler,
		Reports:      reportRepo,
		Snapshots:    snapshotRepo,
		Jobs:         jobRepo,
	}, nil
}

// Close はAppContextが保持するリソースをクリーンアップする
func (ac *AppContext) Close() {
	if ac.Database != nil {
		ac.Database.Close()
	}
}

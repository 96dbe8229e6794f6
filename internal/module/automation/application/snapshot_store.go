package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// RollbackRetention はスナップショットの保持期間です
// 期限を過ぎたスナップショットは読み取り専用の履歴になります
const RollbackRetention = 90 * 24 * time.Hour

// SnapshotStore は1バッチ実行の完全なロールバック記録を構築・永続化します
// 巻き戻しの実行自体は外部のプラットフォームアダプターの責務であり、
// ここでは適用済みの全変更が保持期間内に復元可能であることのみを保証します
type SnapshotStore struct {
	snapshotRepo domain.SnapshotRepository
	logger       *slog.Logger
}

// NewSnapshotStore は新しいSnapshotStoreを作成します
func NewSnapshotStore(snapshotRepo domain.SnapshotRepository, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}

	return &SnapshotStore{
		snapshotRepo: snapshotRepo,
		logger:       logger,
	}
}

// Capture はレポート永続化後に1件のスナップショットを作成します
// バッチ全体の状態とサイト別の変更内訳を必ず両方含み、部分的な書き込みは行いません
func (s *SnapshotStore) Capture(ctx context.Context, userID, reportID uuid.UUID, result *domain.AutomationResult) (*domain.AutomationSnapshot, error) {
	now := time.Now()

	siteStates := make([]domain.SiteChangeSet, 0, len(result.SiteReports))
	sitesAffected := 0
	for _, site := range result.SiteReports {
		if len(site.Changes) == 0 {
			continue
		}
		sitesAffected++
		siteStates = append(siteStates, domain.SiteChangeSet{
			ConnectionID: site.ConnectionID,
			Domain:       site.Domain,
			Platform:     site.Platform,
			Changes:      site.Changes,
		})
	}

	snapshot := &domain.AutomationSnapshot{
		ID:           uuid.New(),
		UserID:       userID,
		ReportID:     reportID,
		SnapshotType: domain.SnapshotTypeDailyAutomation,
		Description: fmt.Sprintf("Automation run of %s: %d fixes across %d sites",
			now.Format("2006-01-02"), len(result.FixesApplied), sitesAffected),
		FullState:       *result,
		SiteStates:      siteStates,
		CanRollback:     true,
		RollbackExpiry:  now.Add(RollbackRetention),
		SitesAffected:   sitesAffected,
		FixesApplied:    len(result.FixesApplied),
		ImagesOptimized: result.ImagesOptimized,
		CreatedAt:       now,
	}

	if err := s.snapshotRepo.Create(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("failed to create automation snapshot: %w", err)
	}

	s.logger.Info("Rollback snapshot captured",
		"snapshotID", snapshot.ID,
		"userID", userID,
		"sitesAffected", sitesAffected,
		"fixesApplied", snapshot.FixesApplied,
		"expiry", snapshot.RollbackExpiry,
	)

	return snapshot, nil
}

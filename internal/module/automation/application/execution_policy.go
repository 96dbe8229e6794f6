package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// PolicyResult は実行ポリシー解決の結果を表します
// デリゲートが生成した修正は必ずAppliedまたはPendingのどちらか一方に現れます
type PolicyResult struct {
	Applied []domain.Fix
	Pending []domain.PendingFix
}

// PendingIssueCount は承認待ちの問題件数を返します
// PLANモードでは1エントリが複数の問題を代表するためIssueCountを合算します
func (r *PolicyResult) PendingIssueCount() int {
	total := 0
	for _, p := range r.Pending {
		total += p.IssueCount
	}
	return total
}

// strategyFunc は1実行モード分の修正分類戦略です
type strategyFunc func(ctx context.Context, conn *domain.Connection, userID uuid.UUID, issues []*domain.Issue) (*PolicyResult, error)

// ExecutionPolicy はユーザーの実行モードを修正適用戦略に対応付けます
type ExecutionPolicy struct {
	executor   domain.FixExecutor
	strategies map[domain.ExecutionMode]strategyFunc
	logger     *slog.Logger
}

// NewExecutionPolicy は新しいExecutionPolicyを作成します
func NewExecutionPolicy(executor domain.FixExecutor, logger *slog.Logger) *ExecutionPolicy {
	if logger == nil {
		logger = slog.Default()
	}

	p := &ExecutionPolicy{
		executor: executor,
		logger:   logger,
	}
	p.strategies = map[domain.ExecutionMode]strategyFunc{
		domain.ExecutionModeAutomatic: p.resolveAutomatic,
		domain.ExecutionModeApprove:   p.resolveApprove,
		domain.ExecutionModePlan:      p.resolvePlan,
	}

	return p
}

// Resolve は実行モードに従って修正を適用済みまたは承認待ちに分類します
// モードの追加はstrategiesへの登録のみで済み、呼び出し側の変更は不要です
func (p *ExecutionPolicy) Resolve(ctx context.Context, mode domain.ExecutionMode, conn *domain.Connection, userID uuid.UUID, issues []*domain.Issue) (*PolicyResult, error) {
	strategy, ok := p.strategies[mode]
	if !ok {
		return nil, fmt.Errorf("unknown execution mode: %s", mode)
	}

	return strategy(ctx, conn, userID, issues)
}

// resolveAutomatic はデリゲートが返した全修正を即時適用済みとして扱います
func (p *ExecutionPolicy) resolveAutomatic(ctx context.Context, conn *domain.Connection, userID uuid.UUID, issues []*domain.Issue) (*PolicyResult, error) {
	execution, err := p.executor.ExecuteFixes(ctx, conn.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to execute fixes: %w", err)
	}

	result := &PolicyResult{Pending: []domain.PendingFix{}}
	for _, fix := range execution.Fixes {
		fix.ConnectionID = conn.ID
		result.Applied = append(result.Applied, fix)
	}

	p.logger.Info("Fixes applied automatically",
		"connectionID", conn.ID,
		"domain", conn.Domain,
		"count", len(result.Applied),
	)

	return result, nil
}

// resolveApprove はデリゲートが返した修正を1件ずつ個別承認待ちとして扱います
func (p *ExecutionPolicy) resolveApprove(ctx context.Context, conn *domain.Connection, userID uuid.UUID, issues []*domain.Issue) (*PolicyResult, error) {
	execution, err := p.executor.ExecuteFixes(ctx, conn.ID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare fixes for approval: %w", err)
	}

	result := &PolicyResult{Applied: []domain.Fix{}}
	for _, fix := range execution.Fixes {
		result.Pending = append(result.Pending, domain.PendingFix{
			FixID:        fix.FixID,
			ConnectionID: conn.ID,
			Description:  fix.Description,
			Code:         fix.Code,
			Kind:         domain.PendingFixKindFix,
			IssueCount:   1,
		})
	}

	p.logger.Info("Fixes queued for individual approval",
		"connectionID", conn.ID,
		"domain", conn.Domain,
		"count", len(result.Pending),
	)

	return result, nil
}

// resolvePlan は接続の全問題を1件の一括プランとして承認待ちにします
// APPROVEモードと異なり修正単位ではなく接続単位で1エントリになります
func (p *ExecutionPolicy) resolvePlan(ctx context.Context, conn *domain.Connection, userID uuid.UUID, issues []*domain.Issue) (*PolicyResult, error) {
	if _, err := p.executor.ExecuteFixes(ctx, conn.ID, userID); err != nil {
		return nil, fmt.Errorf("failed to build fix plan: %w", err)
	}

	result := &PolicyResult{Applied: []domain.Fix{}}
	if len(issues) > 0 {
		result.Pending = append(result.Pending, domain.PendingFix{
			FixID:        uuid.NewString(),
			ConnectionID: conn.ID,
			Description:  fmt.Sprintf("Optimization plan for %s covering %d issues", conn.Domain, len(issues)),
			Kind:         domain.PendingFixKindPlan,
			IssueCount:   len(issues),
		})
	}

	p.logger.Info("Batch plan queued for approval",
		"connectionID", conn.ID,
		"domain", conn.Domain,
		"issueCount", len(issues),
	)

	return result, nil
}

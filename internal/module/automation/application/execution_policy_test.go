package application_test

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/application"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
	testutil "github.com/jinford/seo-autopilot/internal/module/automation/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPolicy(executor *testutil.MockFixExecutor) *application.ExecutionPolicy {
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	return application.NewExecutionPolicy(executor, log)
}

func issuesOf(n int) []*domain.Issue {
	issues := make([]*domain.Issue, n)
	for i := range issues {
		issues[i] = &domain.Issue{
			ID:       uuid.New(),
			Severity: domain.SeverityHigh,
			Title:    "Missing meta description",
		}
	}
	return issues
}

func TestExecutionPolicy_AutomaticAppliesAll(t *testing.T) {
	// Setup
	ctx := context.Background()
	executor := &testutil.MockFixExecutor{
		ExecuteFixesFunc: func(ctx context.Context, connectionID, userID uuid.UUID) (*domain.FixExecution, error) {
			return fixes(4), nil
		},
	}
	policy := newPolicy(executor)
	conn := connection("store.example.com", domain.PlatformShopify)

	// Execute
	result, err := policy.Resolve(ctx, domain.ExecutionModeAutomatic, conn, uuid.New(), issuesOf(4))

	// Assert: 全修正が適用済み、承認待ちはゼロ
	require.NoError(t, err)
	assert.Len(t, result.Applied, 4)
	assert.Empty(t, result.Pending)
	assert.Zero(t, result.PendingIssueCount())
	for _, fix := range result.Applied {
		assert.Equal(t, conn.ID, fix.ConnectionID)
	}
}

func TestExecutionPolicy_ApproveQueuesEachFix(t *testing.T) {
	// Setup
	ctx := context.Background()
	executor := &testutil.MockFixExecutor{
		ExecuteFixesFunc: func(ctx context.Context, connectionID, userID uuid.UUID) (*domain.FixExecution, error) {
			return fixes(3), nil
		},
	}
	policy := newPolicy(executor)
	conn := connection("store.example.com", domain.PlatformShopify)

	// Execute
	result, err := policy.Resolve(ctx, domain.ExecutionModeApprove, conn, uuid.New(), issuesOf(3))

	// Assert: 修正1件ごとに承認待ちエントリが1件
	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	require.Len(t, result.Pending, 3)
	assert.Equal(t, 3, result.PendingIssueCount())
	for _, pending := range result.Pending {
		assert.Equal(t, domain.PendingFixKindFix, pending.Kind)
		assert.Equal(t, conn.ID, pending.ConnectionID)
		assert.Equal(t, 1, pending.IssueCount)
	}
}

func TestExecutionPolicy_PlanQueuesSingleEntry(t *testing.T) {
	// Setup
	ctx := context.Background()
	policy := newPolicy(&testutil.MockFixExecutor{})
	conn := connection("store.example.com", domain.PlatformWordPress)

	// Execute
	result, err := policy.Resolve(ctx, domain.ExecutionModePlan, conn, uuid.New(), issuesOf(7))

	// Assert: 問題数に関わらず接続あたり1エントリ、IssueCountが全件を代表する
	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	require.Len(t, result.Pending, 1)
	plan := result.Pending[0]
	assert.Equal(t, domain.PendingFixKindPlan, plan.Kind)
	assert.Equal(t, 7, plan.IssueCount)
	assert.Equal(t, 7, result.PendingIssueCount())
	assert.Equal(t, fmt.Sprintf("Optimization plan for %s covering 7 issues", conn.Domain), plan.Description)
}

func TestExecutionPolicy_PlanWithoutIssuesQueuesNothing(t *testing.T) {
	// Setup
	ctx := context.Background()
	policy := newPolicy(&testutil.MockFixExecutor{})
	conn := connection("store.example.com", domain.PlatformWordPress)

	// Execute
	result, err := policy.Resolve(ctx, domain.ExecutionModePlan, conn, uuid.New(), nil)

	// Assert
	require.NoError(t, err)
	assert.Empty(t, result.Applied)
	assert.Empty(t, result.Pending)
}

func TestExecutionPolicy_UnknownModeIsRejected(t *testing.T) {
	// Setup
	ctx := context.Background()
	policy := newPolicy(&testutil.MockFixExecutor{})
	conn := connection("store.example.com", domain.PlatformShopify)

	// Execute
	_, err := policy.Resolve(ctx, domain.ExecutionMode("turbo"), conn, uuid.New(), issuesOf(1))

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown execution mode")
}

func TestExecutionPolicy_ExecutorFailurePropagates(t *testing.T) {
	// Setup
	ctx := context.Background()
	executor := &testutil.MockFixExecutor{
		ExecuteFixesFunc: func(ctx context.Context, connectionID, userID uuid.UUID) (*domain.FixExecution, error) {
			return nil, errors.New("platform API unreachable")
		},
	}
	policy := newPolicy(executor)
	conn := connection("store.example.com", domain.PlatformShopify)

	// Execute
	_, err := policy.Resolve(ctx, domain.ExecutionModeAutomatic, conn, uuid.New(), issuesOf(2))

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "platform API unreachable")
}

package commands

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// RunAction は1ユーザー分の自動化バッチを即時実行します
func RunAction(ctx context.Context, cmd *cli.Command) error {
	userID, err := uuid.Parse(cmd.String("user"))
	if err != nil {
		return fmt.Errorf("不正なユーザーID: %w", err)
	}

	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	job, err := app.Orchestrator.RunForUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("自動化バッチの実行に失敗: %w", err)
	}

	fmt.Printf("ジョブ %s が完了しました (status=%s)\n", job.ID, job.Status)
	if job.Result != nil {
		fmt.Printf("  サイト数: %d\n", job.Result.SitesScanned)
		fmt.Printf("  分析ページ数: %d\n", job.Result.PagesAnalyzed)
		fmt.Printf("  検出した問題: %d\n", job.Result.IssuesFound)
		fmt.Printf("  適用した修正: %d\n", job.Result.IssuesFixed)
		fmt.Printf("  承認待ち: %d\n", job.Result.IssuesPending)
		fmt.Printf("  最適化した画像: %d\n", job.Result.ImagesOptimized)
	}

	return nil
}

package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"
)

// ReportShowAction はユーザーの最新の日次レポートを表示します
func ReportShowAction(ctx context.Context, cmd *cli.Command) error {
	userID, err := uuid.Parse(cmd.String("user"))
	if err != nil {
		return fmt.Errorf("不正なユーザーID: %w", err)
	}

	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	report, err := app.Reports.GetLatestByUser(ctx, userID)
	if err != nil {
		return err
	}

	fmt.Printf("日次レポート %s (%s)\n", report.ID, report.ReportDate.Format(time.DateOnly))
	fmt.Printf("  実行モード: %s\n", report.ExecutionMode)
	fmt.Printf("  サイト数: %d / 分析ページ数: %d\n", report.SitesScanned, report.PagesAnalyzed)
	fmt.Printf("  問題: %d件検出 / %d件修正 / %d件承認待ち\n", report.IssuesFound, report.IssuesFixed, report.IssuesPending)
	fmt.Printf("  最適化した画像: %d\n", report.ImagesOptimized)
	fmt.Printf("  推定SEOスコア変化: %.1f / 推定トラフィック改善: %.1f%%\n", report.SEOScoreChange, report.EstimatedTrafficImpact)
	fmt.Printf("  メール送信: %t\n", report.EmailSent)

	for _, activity := range report.FullReport.Activities {
		line := fmt.Sprintf("  [%s] %s: %s", activity.Status, activity.Site, activity.Activity)
		if activity.Reason != "" {
			line += " (" + activity.Reason + ")"
		}
		fmt.Println(line)
	}

	return nil
}

// SnapshotListAction はユーザーの巻き戻し可能なスナップショットを表示します
func SnapshotListAction(ctx context.Context, cmd *cli.Command) error {
	userID, err := uuid.Parse(cmd.String("user"))
	if err != nil {
		return fmt.Errorf("不正なユーザーID: %w", err)
	}

	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	snapshots, err := app.Snapshots.ListActiveByUser(ctx, userID, time.Now())
	if err != nil {
		return err
	}

	if len(snapshots) == 0 {
		fmt.Println("巻き戻し可能なスナップショットはありません")
		return nil
	}

	for _, snapshot := range snapshots {
		fmt.Printf("%s  %s\n", snapshot.ID, snapshot.Description)
		fmt.Printf("  期限: %s / 対象サイト: %d / 修正: %d\n",
			snapshot.RollbackExpiry.Format(time.DateOnly), snapshot.SitesAffected, snapshot.FixesApplied)
	}

	return nil
}

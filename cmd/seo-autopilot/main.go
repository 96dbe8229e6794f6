package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jinford/seo-autopilot/cmd/seo-autopilot/commands"
	"github.com/urfave/cli/v3"
)

func envFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "env",
		Usage: "環境変数ファイルパス",
		Value: ".env",
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Usage:    "ユーザーID (UUID)",
		Required: true,
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "seo-autopilot",
		Usage: "接続サイトのSEO自動改善エンジン",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "1ユーザー分の自動化バッチを即時実行",
				Flags:  []cli.Flag{envFlag(), userFlag()},
				Action: commands.RunAction,
			},
			{
				Name:  "scheduler",
				Usage: "スケジューラーデーモンを起動",
				Flags: []cli.Flag{
					envFlag(),
					&cli.BoolFlag{
						Name:  "once",
						Usage: "1周期分だけ実行して終了",
					},
				},
				Action: commands.SchedulerAction,
			},
			{
				Name:  "report",
				Usage: "日次レポートの確認",
				Commands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "ユーザーの最新レポートを表示",
						Flags:  []cli.Flag{envFlag(), userFlag()},
						Action: commands.ReportShowAction,
					},
				},
			},
			{
				Name:  "snapshot",
				Usage: "ロールバックスナップショットの確認",
				Commands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "巻き戻し可能なスナップショットを一覧表示",
						Flags:  []cli.Flag{envFlag(), userFlag()},
						Action: commands.SnapshotListAction,
					},
				},
			},
			{
				Name:   "migrate",
				Usage:  "データベーススキーマを適用",
				Flags:  []cli.Flag{envFlag()},
				Action: commands.MigrateAction,
			},
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

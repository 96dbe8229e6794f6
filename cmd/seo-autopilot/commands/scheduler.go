package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// SchedulerAction はスケジューラーデーモンを起動します
// シグナル受信で停止します
func SchedulerAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	if cmd.Bool("once") {
		return app.Scheduler.RunOnce(ctx)
	}

	if err := app.Scheduler.Start(); err != nil {
		return fmt.Errorf("スケジューラーの起動に失敗: %w", err)
	}
	defer app.Scheduler.Stop()

	<-ctx.Done()

	return nil
}

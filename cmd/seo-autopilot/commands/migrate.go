package commands

import (
	"context"
	"fmt"

	"github.com/jinford/seo-autopilot/internal/module/automation/adapter/pg"
	"github.com/urfave/cli/v3"
)

// MigrateAction はデータベーススキーマを適用します
func MigrateAction(ctx context.Context, cmd *cli.Command) error {
	app, err := NewAppContext(ctx, cmd.String("env"))
	if err != nil {
		return err
	}
	defer app.Close()

	if err := pg.Migrate(ctx, app.Database.Pool); err != nil {
		return fmt.Errorf("マイグレーションに失敗: %w", err)
	}

	fmt.Println("マイグレーションが完了しました")

	return nil
}

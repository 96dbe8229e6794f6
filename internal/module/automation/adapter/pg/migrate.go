package pg

import (
	"context"
	"fmt"
)

// schema は自動化エンジンが所有するテーブル群のDDLです
// users/connectionsは接続レジストリ側が所有しますが、
// ローカル開発とテストのためにここで一緒に作成します
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		execution_mode TEXT NOT NULL DEFAULT 'plan',
		automation_enabled BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS connections (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		platform TEXT NOT NULL,
		domain TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'connected',
		page_count INT NOT NULL DEFAULT 0,
		issue_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		id UUID PRIMARY KEY,
		job_type TEXT NOT NULL,
		status TEXT NOT NULL,
		progress INT NOT NULL DEFAULT 0,
		payload JSONB NOT NULL,
		result JSONB,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL,
		started_at TIMESTAMPTZ,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status)`,
	`CREATE TABLE IF NOT EXISTS issues (
		id UUID PRIMARY KEY,
		connection_id UUID NOT NULL REFERENCES connections(id),
		issue_type TEXT NOT NULL,
		title TEXT NOT NULL,
		severity TEXT NOT NULL,
		page_url TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		recommendation TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'detected',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_issues_connection ON issues(connection_id)`,
	`CREATE TABLE IF NOT EXISTS daily_reports (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		report_date TIMESTAMPTZ NOT NULL,
		execution_mode TEXT NOT NULL,
		sites_scanned INT NOT NULL DEFAULT 0,
		pages_analyzed INT NOT NULL DEFAULT 0,
		issues_found INT NOT NULL DEFAULT 0,
		issues_fixed INT NOT NULL DEFAULT 0,
		issues_pending INT NOT NULL DEFAULT 0,
		images_optimized INT NOT NULL DEFAULT 0,
		fixes_applied JSONB NOT NULL DEFAULT '[]',
		pending_approval JSONB NOT NULL DEFAULT '[]',
		estimated_traffic_impact DOUBLE PRECISION NOT NULL DEFAULT 0,
		seo_score_change DOUBLE PRECISION NOT NULL DEFAULT 0,
		full_report JSONB NOT NULL DEFAULT '{}',
		email_sent BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_reports_user ON daily_reports(user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS automation_snapshots (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		report_id UUID NOT NULL REFERENCES daily_reports(id),
		snapshot_type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		full_state JSONB NOT NULL,
		site_states JSONB NOT NULL DEFAULT '[]',
		can_rollback BOOLEAN NOT NULL DEFAULT TRUE,
		rollback_expiry TIMESTAMPTZ NOT NULL,
		sites_affected INT NOT NULL DEFAULT 0,
		fixes_applied INT NOT NULL DEFAULT 0,
		images_optimized INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_user ON automation_snapshots(user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id UUID PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL DEFAULT '',
		action_url TEXT NOT NULL DEFAULT '',
		read BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
}

// Migrate はスキーマを適用します
func Migrate(ctx context.Context, db DBTX) error {
	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}

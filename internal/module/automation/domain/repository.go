package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrUserNotFound はユーザーが存在しない場合のエラー
var ErrUserNotFound = errors.New("user not found")

// UserRepository はユーザーの読み取りを担当するリポジトリインターフェース
// このエンジンからは読み取り専用です
type UserRepository interface {
	// GetByID はIDでユーザーを取得します
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	// ListAutomationDue は自動化が有効なユーザーを一覧取得します
	ListAutomationDue(ctx context.Context) ([]*User, error)
}

// ConnectionRepository は接続レジストリの読み取りを担当するリポジトリインターフェース
// このエンジンからは読み取り専用です
type ConnectionRepository interface {
	// ListConnected はCONNECTED状態の接続を一覧取得します
	ListConnected(ctx context.Context, userID uuid.UUID) ([]*Connection, error)
}

// JobRepository はジョブの永続化を担当するリポジトリインターフェース
type JobRepository interface {
	// Create は新しいジョブを永続化します
	Create(ctx context.Context, job *Job) error
	// GetByID はIDでジョブを取得します
	GetByID(ctx context.Context, id uuid.UUID) (*Job, error)
	// MarkRunning はジョブをRUNNINGに遷移させます
	MarkRunning(ctx context.Context, id uuid.UUID, startedAt time.Time) error
	// UpdateProgress は進捗率を更新します（単一書き込み者による単調増加）
	UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error
	// Complete はジョブを結果付きでCOMPLETEDに遷移させます
	Complete(ctx context.Context, id uuid.UUID, result *AutomationResult, completedAt time.Time) error
	// Fail はジョブをエラーメッセージ付きでFAILEDに遷移させます
	Fail(ctx context.Context, id uuid.UUID, errMsg string, failedAt time.Time) error
	// HasActive は終端状態に達していないジョブが存在するかを返します
	HasActive(ctx context.Context, userID uuid.UUID) (bool, error)
}

// IssueRepository は検出された問題の永続化を担当するリポジトリインターフェース
type IssueRepository interface {
	// CreateBatch は検出された問題をまとめて永続化します
	CreateBatch(ctx context.Context, issues []*Issue) error
}

// ReportRepository は日次レポートの永続化を担当するリポジトリインターフェース
type ReportRepository interface {
	// Create は新しい日次レポートを永続化します
	Create(ctx context.Context, report *DailyReport) error
	// MarkEmailSent はメール送信済みフラグを立てます
	// 作成後に変更されるのはこのフィールドのみです
	MarkEmailSent(ctx context.Context, id uuid.UUID) error
	// GetLatestByUser はユーザーの最新レポートを取得します
	GetLatestByUser(ctx context.Context, userID uuid.UUID) (*DailyReport, error)
}

// SnapshotRepository はロールバックスナップショットの永続化を担当するリポジトリインターフェース
type SnapshotRepository interface {
	// Create は新しいスナップショットを永続化します
	Create(ctx context.Context, snapshot *AutomationSnapshot) error
	// GetByID はIDでスナップショットを取得します
	GetByID(ctx context.Context, id uuid.UUID) (*AutomationSnapshot, error)
	// ListActiveByUser は巻き戻し可能（期限内かつcanRollback）なスナップショットを一覧取得します
	ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*AutomationSnapshot, error)
}

// NotificationRepository は通知の永続化を担当するリポジトリインターフェース
type NotificationRepository interface {
	// Create は新しい通知を永続化します
	Create(ctx context.Context, notification *Notification) error
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// === User集約 ===

// User は自動化対象のユーザーを表します
type User struct {
	ID                uuid.UUID     `json:"id"`
	Email             string        `json:"email"`
	Name              string        `json:"name"`
	ExecutionMode     ExecutionMode `json:"executionMode"`
	AutomationEnabled bool          `json:"automationEnabled"`
	CreatedAt         time.Time     `json:"createdAt"`
}

// ExecutionMode は検出された修正をどう適用するかのユーザーポリシーを表します
type ExecutionMode string

const (
	// ExecutionModeAutomatic は修正を即時適用するモード
	ExecutionModeAutomatic ExecutionMode = "automatic"
	// ExecutionModeApprove は修正ごとに個別承認を待つモード
	ExecutionModeApprove ExecutionMode = "approve"
	// ExecutionModePlan は接続単位の一括プランとして承認を待つモード
	ExecutionModePlan ExecutionMode = "plan"
)

// === Connection集約 ===

// Connection はユーザーが連携したサイトを表します
type Connection struct {
	ID         uuid.UUID        `json:"id"`
	UserID     uuid.UUID        `json:"userID"`
	Platform   Platform         `json:"platform"`
	Domain     string           `json:"domain"`
	Status     ConnectionStatus `json:"status"`
	PageCount  int              `json:"pageCount"`
	IssueCount int              `json:"issueCount"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// Platform は連携サイトのプラットフォーム種別を表します
type Platform string

const (
	PlatformShopify   Platform = "shopify"
	PlatformWordPress Platform = "wordpress"
	PlatformCustom    Platform = "custom"
)

// ConnectionStatus は接続の状態を表します
type ConnectionStatus string

const (
	ConnectionStatusConnected    ConnectionStatus = "connected"
	ConnectionStatusDisconnected ConnectionStatus = "disconnected"
	ConnectionStatusError        ConnectionStatus = "error"
)

// === Job集約 ===

// Job はスケジュールされた1作業単位を表します
type Job struct {
	ID          uuid.UUID         `json:"id"`
	JobType     string            `json:"jobType"`
	Status      JobStatus         `json:"status"`
	Progress    int               `json:"progress"` // 0-100、単調増加
	Payload     JobPayload        `json:"payload"`
	Result      *AutomationResult `json:"result,omitempty"`
	Error       string            `json:"error,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	StartedAt   *time.Time        `json:"startedAt,omitempty"`
	CompletedAt *time.Time        `json:"completedAt,omitempty"`
}

// JobStatus はジョブの状態を表します
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// JobTypeDailyAutomation は日次自動化バッチのジョブ種別
const JobTypeDailyAutomation = "daily_automation"

// JobPayload はジョブへの入力を表します
type JobPayload struct {
	UserID uuid.UUID `json:"userID"`
}

// NewJob は指定ユーザーの日次自動化ジョブをPENDING状態で作成します
func NewJob(userID uuid.UUID) *Job {
	return &Job{
		ID:        uuid.New(),
		JobType:   JobTypeDailyAutomation,
		Status:    JobStatusPending,
		Progress:  0,
		Payload:   JobPayload{UserID: userID},
		CreatedAt: time.Now(),
	}
}

// Terminal はジョブが終端状態（再開不可）かどうかを返します
func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}

// === Issue ===

// Issue は検出された1件のSEO欠陥を表します
type Issue struct {
	ID             uuid.UUID   `json:"id"`
	ConnectionID   uuid.UUID   `json:"connectionID"`
	IssueType      string      `json:"issueType"`
	Title          string      `json:"title"`
	Severity       Severity    `json:"severity"`
	PageURL        string      `json:"pageURL"`
	Description    string      `json:"description"`
	Recommendation string      `json:"recommendation"`
	Status         IssueStatus `json:"status"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// Severity は問題の深刻度を表します
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// IssueStatus は問題の状態を表します
type IssueStatus string

// IssueStatusDetected は検出直後の初期状態
const IssueStatusDetected IssueStatus = "detected"

// === Fix ===

// Fix は適用された（または適用可能な）1件の修正を表します
type Fix struct {
	FixID        string    `json:"fixID"`
	ConnectionID uuid.UUID `json:"connectionID"`
	Description  string    `json:"description"`
	Code         string    `json:"code"`
	Before       string    `json:"before"`
	After        string    `json:"after"`
}

// PendingFix は承認待ちの修正またはプランを表します
type PendingFix struct {
	FixID        string    `json:"fixID"`
	ConnectionID uuid.UUID `json:"connectionID"`
	Description  string    `json:"description"`
	Code         string    `json:"code,omitempty"`
	Kind         string    `json:"kind"` // "fix"（個別承認）または "plan"（一括プラン）
	IssueCount   int       `json:"issueCount"`
}

// PendingFixKindFix / PendingFixKindPlan はPendingFixの種別
const (
	PendingFixKindFix  = "fix"
	PendingFixKindPlan = "plan"
)

// === DailyReport ===

// DailyReport は1バッチ実行のユーザー向けサマリーを表します
type DailyReport struct {
	ID                     uuid.UUID     `json:"id"`
	UserID                 uuid.UUID     `json:"userID"`
	ReportDate             time.Time     `json:"reportDate"`
	ExecutionMode          ExecutionMode `json:"executionMode"`
	SitesScanned           int           `json:"sitesScanned"`
	PagesAnalyzed          int           `json:"pagesAnalyzed"`
	IssuesFound            int           `json:"issuesFound"`
	IssuesFixed            int           `json:"issuesFixed"`
	IssuesPending          int           `json:"issuesPending"`
	ImagesOptimized        int           `json:"imagesOptimized"`
	FixesApplied           []Fix         `json:"fixesApplied"`
	PendingApproval        []PendingFix  `json:"pendingApproval"`
	EstimatedTrafficImpact float64       `json:"estimatedTrafficImpact"` // 推定値。実測ではない
	SEOScoreChange         float64       `json:"seoScoreChange"`         // 推定値。実測ではない
	FullReport             ReportPayload `json:"fullReport"`
	EmailSent              bool          `json:"emailSent"`
	CreatedAt              time.Time     `json:"createdAt"`
}

// ReportPayload は監査・デバッグ用の完全な構造化レポートを表します
type ReportPayload struct {
	Activities  []Activity   `json:"activities"`
	SiteReports []SiteReport `json:"siteReports"`
}

// === AutomationSnapshot ===

// AutomationSnapshot は1バッチ実行のロールバック単位を表します
type AutomationSnapshot struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"userID"`
	ReportID        uuid.UUID        `json:"reportID"`
	SnapshotType    string           `json:"snapshotType"`
	Description     string           `json:"description"`
	FullState       AutomationResult `json:"fullState"`
	SiteStates      []SiteChangeSet  `json:"siteStates"`
	CanRollback     bool             `json:"canRollback"`
	RollbackExpiry  time.Time        `json:"rollbackExpiry"`
	SitesAffected   int              `json:"sitesAffected"`
	FixesApplied    int              `json:"fixesApplied"`
	ImagesOptimized int              `json:"imagesOptimized"`
	CreatedAt       time.Time        `json:"createdAt"`
}

// SnapshotTypeDailyAutomation は日次自動化バッチのスナップショット種別
const SnapshotTypeDailyAutomation = "daily_automation"

// SiteChangeSet は1サイトに対して行われた変更の集合を表します
type SiteChangeSet struct {
	ConnectionID uuid.UUID    `json:"connectionID"`
	Domain       string       `json:"domain"`
	Platform     Platform     `json:"platform"`
	Changes      []SiteChange `json:"changes"`
}

// SiteChange はロールバック可能な1件の変更を表します
// Beforeの値が外部のプラットフォームアダプターによる巻き戻しに使われます
type SiteChange struct {
	FixID       string `json:"fixID"`
	Description string `json:"description"`
	ChangeType  string `json:"changeType"`
	Before      string `json:"before"`
	After       string `json:"after"`
}

// Expired はスナップショットの保持期限が過ぎているかどうかを返します
// 期限切れまたはcanRollback=falseのスナップショットは読み取り専用の履歴であり、
// 巻き戻しに使用してはなりません
func (s *AutomationSnapshot) Expired(now time.Time) bool {
	return !s.CanRollback || now.After(s.RollbackExpiry)
}

// === Notification ===

// Notification はバッチ完了時にユーザーへ作成される通知を表します
type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userID"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActionURL string    `json:"actionURL"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

package domain

import "github.com/google/uuid"

// AutomationResult は1バッチ実行の集約結果を表します
// サイト処理の進行に伴いインクリメンタルに蓄積されます
type AutomationResult struct {
	SitesScanned    int          `json:"sitesScanned"`
	PagesAnalyzed   int          `json:"pagesAnalyzed"`
	IssuesFound     int          `json:"issuesFound"`
	IssuesFixed     int          `json:"issuesFixed"`
	IssuesPending   int          `json:"issuesPending"`
	ImagesOptimized int          `json:"imagesOptimized"`
	FixesApplied    []Fix        `json:"fixesApplied"`
	PendingApproval []PendingFix `json:"pendingApproval"`
	Activities      []Activity   `json:"activities"`
	SiteReports     []SiteReport `json:"siteReports"`
}

// NewAutomationResult は空の集約結果を作成します
func NewAutomationResult() *AutomationResult {
	return &AutomationResult{
		FixesApplied:    []Fix{},
		PendingApproval: []PendingFix{},
		Activities:      []Activity{},
		SiteReports:     []SiteReport{},
	}
}

// AddActivity は活動記録を1件追加します
func (r *AutomationResult) AddActivity(a Activity) {
	r.Activities = append(r.Activities, a)
}

// Activity は1フェーズの実行記録を表します
// 監査証跡としてレポートに表示されるため、何もしなかった場合も
// その理由（Reason）を失敗と区別して記録します
type Activity struct {
	Site     string         `json:"site"`
	Activity string         `json:"activity"`
	Status   ActivityStatus `json:"status"`
	Reason   string         `json:"reason,omitempty"`
	Details  string         `json:"details,omitempty"`
}

// ActivityStatus は活動記録の結果種別を表します
type ActivityStatus string

const (
	ActivityStatusSuccess ActivityStatus = "success"
	ActivityStatusSkipped ActivityStatus = "skipped"
	ActivityStatusFailed  ActivityStatus = "failed"
)

// SiteReport は1接続の処理結果を表します
type SiteReport struct {
	ConnectionID     uuid.UUID        `json:"connectionID"`
	Domain           string           `json:"domain"`
	Platform         Platform         `json:"platform"`
	AccessLevel      AccessLevel      `json:"accessLevel"`
	Capabilities     []Capability     `json:"capabilities"`
	PagesCrawled     int              `json:"pagesCrawled"`
	IssuesFound      int              `json:"issuesFound"`
	IssuesBySeverity map[Severity]int `json:"issuesBySeverity,omitempty"`
	FixesApplied     int              `json:"fixesApplied"`
	IssuesPending    int              `json:"issuesPending"`
	ImagesOptimized  int              `json:"imagesOptimized"`
	Errors           []string         `json:"errors,omitempty"`
	Changes          []SiteChange     `json:"changes,omitempty"`
}

// AccessLevel はサイトへのアクセス水準を表します
type AccessLevel string

const (
	// AccessLevelFull はクロールに成功し全フェーズが実データで動作した状態
	AccessLevelFull AccessLevel = "full"
	// AccessLevelLimited はクロールに失敗し合成入力で動作した状態
	AccessLevelLimited AccessLevel = "limited"
)

// NewSiteReport は接続に対する空のサイトレポートを作成します
func NewSiteReport(conn *Connection) *SiteReport {
	return &SiteReport{
		ConnectionID: conn.ID,
		Domain:       conn.Domain,
		Platform:     conn.Platform,
		AccessLevel:  AccessLevelFull,
		Capabilities: CapabilitiesFor(conn.Platform),
	}
}

package pg

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// IssueRepository は検出された問題の永続化アダプターです
type IssueRepository struct {
	db DBTX
}

// NewIssueRepository は新しいIssueRepositoryを作成します
func NewIssueRepository(db DBTX) *IssueRepository {
	return &IssueRepository{db: db}
}

var _ domain.IssueRepository = (*IssueRepository)(nil)

// CreateBatch は検出された問題をまとめて永続化します
func (r *IssueRepository) CreateBatch(ctx context.Context, issues []*domain.Issue) error {
	if len(issues) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, issue := range issues {
		batch.Queue(
			`INSERT INTO issues (id, connection_id, issue_type, title, severity, page_url, description, recommendation, status, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			issue.ID, issue.ConnectionID, issue.IssueType, issue.Title, issue.Severity,
			issue.PageURL, issue.Description, issue.Recommendation, issue.Status, issue.CreatedAt)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	for range issues {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert issue: %w", err)
		}
	}

	return nil
}

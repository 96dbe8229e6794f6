package pg

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// ConnectionRepository は接続レジストリの読み取り専用アダプターです
type ConnectionRepository struct {
	db DBTX
}

// NewConnectionRepository は新しいConnectionRepositoryを作成します
func NewConnectionRepository(db DBTX) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

var _ domain.ConnectionRepository = (*ConnectionRepository)(nil)

// ListConnected はCONNECTED状態の接続を一覧取得します
func (r *ConnectionRepository) ListConnected(ctx context.Context, userID uuid.UUID) ([]*domain.Connection, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, platform, domain, status, page_count, issue_count, created_at
		 FROM connections WHERE user_id = $1 AND status = $2 ORDER BY created_at`,
		userID, domain.ConnectionStatusConnected)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections: %w", err)
	}
	defer rows.Close()

	var connections []*domain.Connection
	for rows.Next() {
		var c domain.Connection
		if err := rows.Scan(&c.ID, &c.UserID, &c.Platform, &c.Domain, &c.Status, &c.PageCount, &c.IssueCount, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan connection: %w", err)
		}
		connections = append(connections, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate connections: %w", err)
	}

	return connections, nil
}

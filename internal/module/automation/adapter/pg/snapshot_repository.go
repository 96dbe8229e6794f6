package pg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jinford/seo-autopilot/internal/module/automation/domain"
)

// SnapshotRepository はロールバックスナップショットの永続化アダプターです
type SnapshotRepository struct {
	db DBTX
}

// NewSnapshotRepository は新しいSnapshotRepositoryを作成します
func NewSnapshotRepository(db DBTX) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

var _ domain.SnapshotRepository = (*SnapshotRepository)(nil)

// Create は新しいスナップショットを永続化します
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *domain.AutomationSnapshot) error {
	fullState, err := json.Marshal(snapshot.FullState)
	if err != nil {
		return fmt.Errorf("failed to marshal full state: %w", err)
	}
	siteStates, err := json.Marshal(snapshot.SiteStates)
	if err != nil {
		return fmt.Errorf("failed to marshal site states: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO automation_snapshots (
			id, user_id, report_id, snapshot_type, description,
			full_state, site_states, can_rollback, rollback_expiry,
			sites_affected, fixes_applied, images_optimized, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		snapshot.ID, snapshot.UserID, snapshot.ReportID, snapshot.SnapshotType, snapshot.Description,
		fullState, siteStates, snapshot.CanRollback, snapshot.RollbackExpiry,
		snapshot.SitesAffected, snapshot.FixesApplied, snapshot.ImagesOptimized, snapshot.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}

	return nil
}

// GetByID はIDでスナップショットを取得します
func (r *SnapshotRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.AutomationSnapshot, error) {
	row := r.db.QueryRow(ctx, snapshotSelect+` WHERE id = $1`, id)

	snapshot, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("snapshot not found: %s", id)
		}
		return nil, err
	}

	return snapshot, nil
}

// ListActiveByUser は巻き戻し可能なスナップショットを一覧取得します
// 期限切れ・無効化済みのものは読み取り専用の履歴であり、ここには現れません
func (r *SnapshotRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.AutomationSnapshot, error) {
	rows, err := r.db.Query(ctx,
		snapshotSelect+` WHERE user_id = $1 AND can_rollback AND rollback_expiry > $2 ORDER BY created_at DESC`,
		userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*domain.AutomationSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}

	return snapshots, nil
}

const snapshotSelect = `SELECT id, user_id, report_id, snapshot_type, description,
	full_state, site_states, can_rollback, rollback_expiry,
	sites_affected, fixes_applied, images_optimized, created_at
 FROM automation_snapshots`

func scanSnapshot(row pgx.Row) (*domain.AutomationSnapshot, error) {
	var (
		snapshot   domain.AutomationSnapshot
		fullState  []byte
		siteStates []byte
	)
	if err := row.Scan(&snapshot.ID, &snapshot.UserID, &snapshot.ReportID, &snapshot.SnapshotType,
		&snapshot.Description, &fullState, &siteStates, &snapshot.CanRollback, &snapshot.RollbackExpiry,
		&snapshot.SitesAffected, &snapshot.FixesApplied, &snapshot.ImagesOptimized, &snapshot.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	if err := json.Unmarshal(fullState, &snapshot.FullState); err != nil {
		return nil, fmt.Errorf("failed to unmarshal full state: %w", err)
	}
	if err := json.Unmarshal(siteStates, &snapshot.SiteStates); err != nil {
		return nil, fmt.Errorf("failed to unmarshal site states: %w", err)
	}

	return &snapshot, nil
}

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

// JobRepository はジョブの永続化アダプターです
type JobRepository struct {
	db DBTX
}

// NewJobRepository は新しいJobRepositoryを作成します
func NewJobRepository(db DBTX) *JobRepository {
	return &JobRepository{db: db}
}

var _ domain.JobRepository = (*JobRepository)(nil)

// Create は新しいジョブを永続化します
func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal job payload: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO jobs (id, job_type, status, progress, payload, error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		job.ID, job.JobType, job.Status, job.Progress, payload, job.Error, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

// GetByID はIDでジョブを取得します
func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, job_type, status, progress, payload, result, error, created_at, started_at, completed_at
		 FROM jobs WHERE id = $1`, id)

	var (
		job     domain.Job
		payload []byte
		result  []byte
	)
	if err := row.Scan(&job.ID, &job.JobType, &job.Status, &job.Progress, &payload, &result,
		&job.Error, &job.CreatedAt, &job.StartedAt, &job.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("job not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if err := json.Unmarshal(payload, &job.Payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job payload: %w", err)
	}
	if result != nil {
		job.Result = &domain.AutomationResult{}
		if err := json.Unmarshal(result, job.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job result: %w", err)
		}
	}

	return &job, nil
}

// MarkRunning はジョブをRUNNINGに遷移させます
func (r *JobRepository) MarkRunning(ctx context.Context, id uuid.UUID, startedAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE jobs SET status = $2, started_at = $3 WHERE id = $1 AND status = $4`,
		id, domain.JobStatusRunning, startedAt, domain.JobStatusPending)
	if err != nil {
		return fmt.Errorf("failed to mark job running: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("job %s is not pending", id)
	}

	return nil
}

// UpdateProgress は進捗率を更新します
// 書き込み者はオーケストレーターのみで、値は単調増加します
func (r *JobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) error {
	_, err := r.db.Exec(ctx,
		`UPDATE jobs SET progress = $2 WHERE id = $1 AND progress < $2`,
		id, progress)
	if err != nil {
		return fmt.Errorf("failed to update job progress: %w", err)
	}

	return nil
}

// Complete はジョブを結果付きでCOMPLETEDに遷移させます
func (r *JobRepository) Complete(ctx context.Context, id uuid.UUID, result *domain.AutomationResult, completedAt time.Time) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal job result: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`UPDATE jobs SET status = $2, progress = 100, result = $3, completed_at = $4 WHERE id = $1`,
		id, domain.JobStatusCompleted, encoded, completedAt)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return nil
}

// Fail はジョブをエラーメッセージ付きでFAILEDに遷移させます
func (r *JobRepository) Fail(ctx context.Context, id uuid.UUID, errMsg string, failedAt time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE jobs SET status = $2, error = $3, completed_at = $4 WHERE id = $1`,
		id, domain.JobStatusFailed, errMsg, failedAt)
	if err != nil {
		return fmt.Errorf("failed to fail job: %w", err)
	}

	return nil
}

// HasActive は終端状態に達していないジョブが存在するかを返します
func (r *JobRepository) HasActive(ctx context.Context, userID uuid.UUID) (bool, error) {
	row := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM jobs
			WHERE status IN ($1, $2) AND payload->>'userID' = $3
		)`,
		domain.JobStatusPending, domain.JobStatusRunning, userID.String())

	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check active jobs: %w", err)
	}

	return exists, nil
}

package dblib

import (
	"context"
	"database/sql"

	"github.com/iwat/iostream/internal/domain"
)

const createRun = `-- name: CreateRun :exec
INSERT INTO run (id, started_at) VALUES (?, ?)
`

func (q *Queries) CreateRun(ctx context.Context, arg *domain.Run) error {
	_, err := q.db.ExecContext(ctx, createRun, arg.ID, arg.StartedAt)
	return err
}

const finishRun = `-- name: FinishRun :exec
UPDATE run SET finished_at = ? WHERE id = ?
`

func (q *Queries) FinishRun(ctx context.Context, arg *domain.Run) error {
	_, err := q.db.ExecContext(ctx, finishRun, arg.FinishedAt, arg.ID)
	return err
}

const recentRuns = `-- name: RecentRuns :many
SELECT id, started_at, finished_at
FROM run
ORDER BY id DESC
LIMIT ?
`

func (q *Queries) RecentRuns(ctx context.Context, limit int) ([]*domain.Run, error) {
	rows, err := q.db.QueryContext(ctx, recentRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*domain.Run
	for rows.Next() {
		var (
			i          domain.Run
			finishedAt sql.NullTime
		)
		if err := rows.Scan(
			&i.ID,
			&i.StartedAt,
			&finishedAt,
		); err != nil {
			return nil, err
		}
		if finishedAt.Valid {
			i.FinishedAt = finishedAt.Time
		}
		items = append(items, &i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const createStageResult = `-- name: CreateStageResult :one
INSERT INTO stage_result (
    run_id, stage, path, bytes, digest, error, started_at, finished_at
) VALUES (
    ?, ?, ?, ?, ?, ?, ?, ?
)
RETURNING id
`

func (q *Queries) CreateStageResult(ctx context.Context, arg *domain.StageResult) (*domain.StageResult, error) {
	row := q.db.QueryRowContext(ctx, createStageResult,
		arg.RunID,
		arg.Stage.String(),
		arg.Path,
		arg.Bytes,
		arg.Digest,
		arg.Error,
		arg.StartedAt,
		arg.FinishedAt,
	)
	i := *arg
	err := row.Scan(&i.ID)
	return &i, err
}

const stageResultsByRunID = `-- name: StageResultsByRunID :many
SELECT
    id, run_id, stage, path, bytes, digest, error, started_at, finished_at
FROM stage_result
WHERE run_id = ?
ORDER BY id
`

func (q *Queries) StageResultsByRunID(ctx context.Context, runID string) ([]*domain.StageResult, error) {
	rows, err := q.db.QueryContext(ctx, stageResultsByRunID, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*domain.StageResult
	for rows.Next() {
		var (
			i     domain.StageResult
			stage string
		)
		if err := rows.Scan(
			&i.ID,
			&i.RunID,
			&stage,
			&i.Path,
			&i.Bytes,
			&i.Digest,
			&i.Error,
			&i.StartedAt,
			&i.FinishedAt,
		); err != nil {
			return nil, err
		}
		if i.Stage, err = domain.ParseStage(stage); err != nil {
			return nil, err
		}
		items = append(items, &i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteStageResultsBeyond = `-- name: DeleteStageResultsBeyond :exec
DELETE FROM stage_result
WHERE run_id NOT IN (SELECT id FROM run ORDER BY id DESC LIMIT ?)
`

const deleteRunsBeyond = `-- name: DeleteRunsBeyond :execrows
DELETE FROM run
WHERE id NOT IN (SELECT id FROM run ORDER BY id DESC LIMIT ?)
`

func (q *Queries) DeleteRunsBeyond(ctx context.Context, keep int) (int64, error) {
	if _, err := q.db.ExecContext(ctx, deleteStageResultsBeyond, keep); err != nil {
		return 0, err
	}
	result, err := q.db.ExecContext(ctx, deleteRunsBeyond, keep)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// PruneRuns keeps the newest keep runs and deletes the others with their
// stage results in a single transaction.
func (q *Queries) PruneRuns(ctx context.Context, keep int) (int64, error) {
	tx, err := q.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	deleted, err := tx.DeleteRunsBeyond(ctx, keep)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return deleted, nil
}

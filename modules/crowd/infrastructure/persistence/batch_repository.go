package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/batch"
	"github.com/iota-uz/taskpool/modules/crowd/infrastructure/persistence/models"
	"github.com/iota-uz/taskpool/pkg/composables"
	"github.com/iota-uz/taskpool/pkg/repo"
)

// Task counts are always computed from crowd_tasks, never stored on the
// batch row, so they cannot drift.
const selectBatchQuery = `
	SELECT b.id, b.template_id, b.name, b.filename, b.assignments_per_task, b.active, b.created_at,
	       COUNT(t.id) AS total_tasks,
	       COUNT(t.id) FILTER (WHERE t.completed) AS completed_tasks
	FROM crowd_batches b
	LEFT JOIN crowd_tasks t ON t.batch_id = b.id
`

const selectTaskQuery = `
	SELECT id, batch_id, ordinal, input_fields, completed, created_at
	FROM crowd_tasks
`

type CrowdBatchRepository struct{}

func NewCrowdBatchRepository() batch.Repository {
	return &CrowdBatchRepository{}
}

func (r *CrowdBatchRepository) GetPaginated(ctx context.Context, params *batch.FindParams) ([]batch.Batch, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := selectBatchQuery
	var args []interface{}
	if params != nil && params.TemplateID != nil {
		query += " WHERE b.template_id = $1"
		args = append(args, params.TemplateID.String())
	}
	query += " GROUP BY b.id ORDER BY b.created_at DESC"
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanBatches(rows)
}

func (r *CrowdBatchRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM crowd_batches`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CrowdBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (batch.Batch, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return batch.Batch{}, err
	}

	rows, err := tx.Query(ctx, selectBatchQuery+" WHERE b.id = $1 GROUP BY b.id", id.String())
	if err != nil {
		return batch.Batch{}, err
	}
	defer rows.Close()

	entities, err := scanBatches(rows)
	if err != nil {
		return batch.Batch{}, err
	}
	if len(entities) == 0 {
		return batch.Batch{}, batch.ErrNotFound
	}
	return entities[0], nil
}

func (r *CrowdBatchRepository) Create(ctx context.Context, entity batch.Batch) (batch.Batch, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return batch.Batch{}, err
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO crowd_batches (id, template_id, name, filename, assignments_per_task, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entity.ID().String(),
		entity.TemplateID().String(),
		entity.Name(),
		entity.Filename(),
		entity.AssignmentsPerTask(),
		entity.Active(),
		entity.CreatedAt(),
	)
	if err != nil {
		return batch.Batch{}, err
	}
	return entity, nil
}

func (r *CrowdBatchRepository) CreateTasks(ctx context.Context, tasks []batch.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	dbRows := make([]*models.Task, 0, len(tasks))
	for _, task := range tasks {
		dbRow, err := toDBTask(task)
		if err != nil {
			return err
		}
		dbRows = append(dbRows, dbRow)
	}

	copied, err := tx.CopyFrom(
		ctx,
		pgx.Identifier{"crowd_tasks"},
		[]string{"id", "batch_id", "ordinal", "input_fields", "completed", "created_at"},
		pgx.CopyFromSlice(len(dbRows), func(i int) ([]interface{}, error) {
			row := dbRows[i]
			return []interface{}{
				row.ID,
				row.BatchID,
				row.Ordinal,
				row.InputFields,
				row.Completed,
				row.CreatedAt,
			}, nil
		}),
	)
	if err != nil {
		return err
	}
	if copied != int64(len(dbRows)) {
		return errors.New("task bulk insert copied an unexpected number of rows")
	}
	return nil
}

func (r *CrowdBatchRepository) Tasks(ctx context.Context, batchID uuid.UUID) ([]batch.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, selectTaskQuery+" WHERE batch_id = $1 ORDER BY ordinal", batchID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (r *CrowdBatchRepository) GetTaskByID(ctx context.Context, id uuid.UUID) (batch.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return batch.Task{}, err
	}

	rows, err := tx.Query(ctx, selectTaskQuery+" WHERE id = $1", id.String())
	if err != nil {
		return batch.Task{}, err
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		return batch.Task{}, err
	}
	if len(tasks) == 0 {
		return batch.Task{}, batch.ErrTaskNotFound
	}
	return tasks[0], nil
}

func (r *CrowdBatchRepository) CompleteTask(ctx context.Context, id uuid.UUID) (batch.Task, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return batch.Task{}, err
	}

	tag, err := tx.Exec(ctx, `UPDATE crowd_tasks SET completed = TRUE WHERE id = $1`, id.String())
	if err != nil {
		return batch.Task{}, err
	}
	if tag.RowsAffected() == 0 {
		return batch.Task{}, batch.ErrTaskNotFound
	}
	return r.GetTaskByID(ctx, id)
}

func (r *CrowdBatchRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `UPDATE crowd_batches SET active = $2 WHERE id = $1`, id.String(), active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return batch.ErrNotFound
	}
	return nil
}

func (r *CrowdBatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM crowd_batches WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return batch.ErrNotFound
	}
	return nil
}

func scanBatches(rows pgx.Rows) ([]batch.Batch, error) {
	var entities []batch.Batch
	for rows.Next() {
		var row models.Batch
		if err := rows.Scan(
			&row.ID,
			&row.TemplateID,
			&row.Name,
			&row.Filename,
			&row.AssignmentsPerTask,
			&row.Active,
			&row.CreatedAt,
			&row.TotalTasks,
			&row.CompletedTasks,
		); err != nil {
			return nil, err
		}
		entity, err := toDomainBatch(&row)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entities, nil
}

func scanTasks(rows pgx.Rows) ([]batch.Task, error) {
	var tasks []batch.Task
	for rows.Next() {
		var row models.Task
		if err := rows.Scan(
			&row.ID,
			&row.BatchID,
			&row.Ordinal,
			&row.InputFields,
			&row.Completed,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		task, err := toDomainTask(&row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

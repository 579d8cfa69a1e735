package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/template"
	"github.com/iota-uz/taskpool/modules/crowd/infrastructure/persistence/models"
	"github.com/iota-uz/taskpool/pkg/composables"
	"github.com/iota-uz/taskpool/pkg/repo"
)

const selectTemplateQuery = `
	SELECT id, name, body, default_assignments, created_at, updated_at
	FROM crowd_templates
`

type CrowdTemplateRepository struct{}

func NewCrowdTemplateRepository() template.Repository {
	return &CrowdTemplateRepository{}
}

func (r *CrowdTemplateRepository) GetPaginated(
	ctx context.Context,
	params *template.FindParams,
) ([]template.Template, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := selectTemplateQuery + " ORDER BY created_at DESC"
	if params != nil {
		query += " " + repo.FormatLimitOffset(params.Limit, params.Offset)
	}

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTemplates(rows)
}

func (r *CrowdTemplateRepository) Count(ctx context.Context) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM crowd_templates`).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *CrowdTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (template.Template, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return template.Template{}, err
	}

	rows, err := tx.Query(ctx, selectTemplateQuery+" WHERE id = $1", id.String())
	if err != nil {
		return template.Template{}, err
	}
	defer rows.Close()

	entities, err := scanTemplates(rows)
	if err != nil {
		return template.Template{}, err
	}
	if len(entities) == 0 {
		return template.Template{}, template.ErrNotFound
	}
	return entities[0], nil
}

func (r *CrowdTemplateRepository) Create(ctx context.Context, entity template.Template) (template.Template, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return template.Template{}, err
	}

	_, err = tx.Exec(
		ctx,
		`INSERT INTO crowd_templates (id, name, body, default_assignments, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		entity.ID().String(),
		entity.Name(),
		entity.Body(),
		entity.DefaultAssignments(),
		entity.CreatedAt(),
		entity.UpdatedAt(),
	)
	if err != nil {
		return template.Template{}, err
	}
	return entity, nil
}

func (r *CrowdTemplateRepository) Update(ctx context.Context, entity template.Template) (template.Template, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return template.Template{}, err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE crowd_templates
		 SET name = $2, body = $3, default_assignments = $4, updated_at = $5
		 WHERE id = $1`,
		entity.ID().String(),
		entity.Name(),
		entity.Body(),
		entity.DefaultAssignments(),
		entity.UpdatedAt(),
	)
	if err != nil {
		return template.Template{}, err
	}
	if tag.RowsAffected() == 0 {
		return template.Template{}, template.ErrNotFound
	}
	return entity, nil
}

func (r *CrowdTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM crowd_templates WHERE id = $1`, id.String())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return template.ErrNotFound
	}
	return nil
}

func scanTemplates(rows pgx.Rows) ([]template.Template, error) {
	var entities []template.Template
	for rows.Next() {
		var row models.Template
		if err := rows.Scan(
			&row.ID,
			&row.Name,
			&row.Body,
			&row.DefaultAssignments,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entity, err := toDomainTemplate(&row)
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

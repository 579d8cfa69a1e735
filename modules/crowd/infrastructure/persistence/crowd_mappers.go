package persistence

import (
	"encoding/json"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/batch"
	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/template"
	"github.com/iota-uz/taskpool/modules/crowd/infrastructure/persistence/models"
)

func toDomainTemplate(row *models.Template) (template.Template, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return template.Template{}, errors.Wrap(err, "invalid template id")
	}
	return template.Hydrate(
		id,
		row.Name,
		row.Body,
		row.DefaultAssignments,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func toDomainBatch(row *models.Batch) (batch.Batch, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return batch.Batch{}, errors.Wrap(err, "invalid batch id")
	}
	templateID, err := uuid.Parse(row.TemplateID)
	if err != nil {
		return batch.Batch{}, errors.Wrap(err, "invalid template id")
	}
	return batch.Hydrate(
		id,
		templateID,
		row.Name,
		row.Filename,
		row.AssignmentsPerTask,
		row.Active,
		row.TotalTasks,
		row.CompletedTasks,
		row.CreatedAt,
	), nil
}

func toDomainTask(row *models.Task) (batch.Task, error) {
	id, err := uuid.Parse(row.ID)
	if err != nil {
		return batch.Task{}, errors.Wrap(err, "invalid task id")
	}
	batchID, err := uuid.Parse(row.BatchID)
	if err != nil {
		return batch.Task{}, errors.Wrap(err, "invalid batch id")
	}
	var inputFields map[string]string
	if len(row.InputFields) > 0 {
		if err := json.Unmarshal(row.InputFields, &inputFields); err != nil {
			return batch.Task{}, errors.Wrap(err, "invalid task input fields")
		}
	}
	return batch.HydrateTask(id, batchID, row.Ordinal, inputFields, row.Completed, row.CreatedAt), nil
}

func toDBTask(entity batch.Task) (*models.Task, error) {
	inputFields, err := json.Marshal(entity.InputFields())
	if err != nil {
		return nil, errors.Wrap(err, "could not encode task input fields")
	}
	return &models.Task{
		ID:          entity.ID().String(),
		BatchID:     entity.BatchID().String(),
		Ordinal:     entity.Ordinal(),
		InputFields: inputFields,
		Completed:   entity.Completed(),
		CreatedAt:   entity.CreatedAt(),
	}, nil
}

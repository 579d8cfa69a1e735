package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/batch"
	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/template"
	"github.com/iota-uz/taskpool/modules/crowd/domain/events"
	"github.com/iota-uz/taskpool/modules/crowd/domain/tabular"
	"github.com/iota-uz/taskpool/pkg/composables"
	"github.com/iota-uz/taskpool/pkg/eventbus"
)

type BatchService struct {
	repo      batch.Repository
	templates template.Repository
	publisher eventbus.EventBus
}

func NewBatchService(
	repo batch.Repository,
	templates template.Repository,
	publisher eventbus.EventBus,
) *BatchService {
	return &BatchService{
		repo:      repo,
		templates: templates,
		publisher: publisher,
	}
}

func (s *BatchService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *BatchService) GetPaginated(ctx context.Context, params *batch.FindParams) ([]batch.Batch, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *BatchService) GetByID(ctx context.Context, id uuid.UUID) (batch.Batch, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *BatchService) Tasks(ctx context.Context, batchID uuid.UUID) ([]batch.Task, error) {
	if _, err := s.repo.GetByID(ctx, batchID); err != nil {
		return nil, err
	}
	return s.repo.Tasks(ctx, batchID)
}

func (s *BatchService) CompleteTask(ctx context.Context, id uuid.UUID) (batch.Task, error) {
	var task batch.Task
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		task, err = s.repo.CompleteTask(txCtx, id)
		return err
	})
	if err != nil {
		return batch.Task{}, err
	}
	return task, nil
}

// Create ingests an uploaded file into a batch. The file is decoded and
// validated against the template's fields before anything touches the
// database; the batch row and every task row are then written in a single
// transaction, so a failed upload leaves no trace.
func (s *BatchService) Create(ctx context.Context, data *batch.CreateDTO) (batch.Batch, error) {
	templateID, err := uuid.Parse(data.TemplateID)
	if err != nil {
		return batch.Batch{}, template.ErrNotFound
	}
	tpl, err := s.templates.GetByID(ctx, templateID)
	if err != nil {
		return batch.Batch{}, err
	}

	doc, err := tabular.Decode(data.Filename, data.Content)
	if err != nil {
		return batch.Batch{}, err
	}
	if issues := tabular.Validate(tpl.Fields(), doc.Header, doc.Rows); len(issues) > 0 {
		return batch.Batch{}, &batch.ValidationFailedError{Issues: issues}
	}

	assignments := data.AssignmentsPerTask
	if assignments < 1 {
		assignments = tpl.DefaultAssignments()
	}

	entity := batch.New(tpl.ID(), data.Name, data.Filename, assignments)
	tasks := materializeTasks(entity, doc)

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.Create(txCtx, entity); err != nil {
			return err
		}
		return s.repo.CreateTasks(txCtx, tasks)
	})
	if err != nil {
		return batch.Batch{}, err
	}

	created, err := s.repo.GetByID(ctx, entity.ID())
	if err != nil {
		return batch.Batch{}, err
	}
	s.publisher.Publish(events.BatchCreated{
		BatchID:    created.ID(),
		TemplateID: created.TemplateID(),
		Name:       created.Name(),
		TotalTasks: created.TotalTasks(),
		OccurredAt: time.Now(),
	})
	return created, nil
}

func (s *BatchService) Publish(ctx context.Context, id uuid.UUID) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.SetActive(txCtx, id, true)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(events.BatchPublished{BatchID: id, OccurredAt: time.Now()})
	return nil
}

func (s *BatchService) Cancel(ctx context.Context, id uuid.UUID) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.SetActive(txCtx, id, false)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(events.BatchCancelled{BatchID: id, OccurredAt: time.Now()})
	return nil
}

func (s *BatchService) Delete(ctx context.Context, id uuid.UUID) error {
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return err
	}
	s.publisher.Publish(events.BatchDeleted{BatchID: id, OccurredAt: time.Now()})
	return nil
}

// materializeTasks expands each data row into assignmentsPerTask task copies.
// Ordinals follow file order so a batch's tasks list reads like the file.
func materializeTasks(entity batch.Batch, doc tabular.Document) []batch.Task {
	tasks := make([]batch.Task, 0, len(doc.Rows)*entity.AssignmentsPerTask())
	ordinal := 1
	for _, row := range doc.Rows {
		inputFields := make(map[string]string, len(doc.Header))
		for i, name := range doc.Header {
			inputFields[name] = row[i]
		}
		for a := 0; a < entity.AssignmentsPerTask(); a++ {
			tasks = append(tasks, batch.NewTask(entity.ID(), ordinal, inputFields))
			ordinal++
		}
	}
	return tasks
}

package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/template"
	"github.com/iota-uz/taskpool/modules/crowd/domain/events"
	"github.com/iota-uz/taskpool/pkg/composables"
	"github.com/iota-uz/taskpool/pkg/eventbus"
)

type TemplateService struct {
	repo      template.Repository
	publisher eventbus.EventBus
}

func NewTemplateService(repo template.Repository, publisher eventbus.EventBus) *TemplateService {
	return &TemplateService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *TemplateService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

func (s *TemplateService) GetPaginated(
	ctx context.Context, params *template.FindParams,
) ([]template.Template, error) {
	return s.repo.GetPaginated(ctx, params)
}

func (s *TemplateService) GetByID(ctx context.Context, id uuid.UUID) (template.Template, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TemplateService) Create(ctx context.Context, data *template.CreateDTO) (template.Template, error) {
	entity := data.ToEntity()
	var created template.Template
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		created, err = s.repo.Create(txCtx, entity)
		return err
	})
	if err != nil {
		return template.Template{}, err
	}
	s.publisher.Publish(events.TemplateCreated{
		TemplateID: created.ID(),
		Name:       created.Name(),
		Fields:     created.Fields(),
		OccurredAt: time.Now(),
	})
	return created, nil
}

func (s *TemplateService) Update(ctx context.Context, id uuid.UUID, data *template.UpdateDTO) (template.Template, error) {
	entity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return template.Template{}, err
	}
	entity = data.Apply(entity)

	var updated template.Template
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.repo.Update(txCtx, entity)
		return err
	})
	if err != nil {
		return template.Template{}, err
	}
	return updated, nil
}

func (s *TemplateService) Delete(ctx context.Context, id uuid.UUID) error {
	return composables.InTx(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
}

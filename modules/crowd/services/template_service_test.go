package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/template"
	"github.com/iota-uz/taskpool/modules/crowd/domain/events"
	"github.com/iota-uz/taskpool/modules/crowd/services"
	"github.com/iota-uz/taskpool/pkg/composables"
	"github.com/iota-uz/taskpool/pkg/eventbus"
)

func TestTemplateService_Create_PublishesFields(t *testing.T) {
	repo := &fakeTemplateRepository{templates: map[uuid.UUID]template.Template{}}
	publisher := eventbus.NewEventPublisher(logrus.New())

	var captured events.TemplateCreated
	publisher.Subscribe(func(e events.TemplateCreated) { captured = e })

	service := services.NewTemplateService(repo, publisher)
	ctx := composables.WithTx(context.Background(), &fakeTx{})

	created, err := service.Create(ctx, &template.CreateDTO{
		Name: "Cities",
		Body: `<p>${city} and ${country} and ${city}</p>`,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"city", "country"}, created.Fields())
	require.Equal(t, created.ID(), captured.TemplateID)
	require.Equal(t, []string{"city", "country"}, captured.Fields)
}

func TestTemplateService_Update_ChangesFields(t *testing.T) {
	repo := &fakeTemplateRepository{templates: map[uuid.UUID]template.Template{}}
	service := services.NewTemplateService(repo, eventbus.NewEventPublisher(logrus.New()))
	ctx := composables.WithTx(context.Background(), &fakeTx{})

	created, err := service.Create(ctx, &template.CreateDTO{Name: "Cities", Body: `<p>${city}</p>`})
	require.NoError(t, err)

	updated, err := service.Update(ctx, created.ID(), &template.UpdateDTO{
		Name: "Cities v2",
		Body: `<p>${city} ${mayor}</p>`,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"city", "mayor"}, updated.Fields())

	_, err = service.Update(ctx, uuid.New(), &template.UpdateDTO{Name: "x", Body: "y"})
	require.ErrorIs(t, err, template.ErrNotFound)
}

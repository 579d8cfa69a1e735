package batch

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("batch not found")
	ErrTaskNotFound = errors.New("task not found")
)

type FindParams struct {
	TemplateID *uuid.UUID
	Limit      int
	Offset     int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Batch, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Batch, error)
	Create(ctx context.Context, entity Batch) (Batch, error)
	CreateTasks(ctx context.Context, tasks []Task) error
	Tasks(ctx context.Context, batchID uuid.UUID) ([]Task, error)
	GetTaskByID(ctx context.Context, id uuid.UUID) (Task, error)
	CompleteTask(ctx context.Context, id uuid.UUID) (Task, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
}

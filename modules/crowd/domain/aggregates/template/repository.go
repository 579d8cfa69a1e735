package template

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("template not found")

type FindParams struct {
	Limit  int
	Offset int
}

type Repository interface {
	GetPaginated(ctx context.Context, params *FindParams) ([]Template, error)
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (Template, error)
	Create(ctx context.Context, entity Template) (Template, error)
	Update(ctx context.Context, entity Template) (Template, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

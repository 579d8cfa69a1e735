package batch

import (
	"time"

	"github.com/google/uuid"
)

// Task is a single unit of work materialized from one data row. A row that
// needs N assignments produces N tasks sharing the same input fields.
type Task struct {
	id          uuid.UUID
	batchID     uuid.UUID
	ordinal     int
	inputFields map[string]string
	completed   bool
	createdAt   time.Time
}

func NewTask(batchID uuid.UUID, ordinal int, inputFields map[string]string) Task {
	return Task{
		id:          uuid.New(),
		batchID:     batchID,
		ordinal:     ordinal,
		inputFields: inputFields,
		createdAt:   time.Now(),
	}
}

func HydrateTask(
	id, batchID uuid.UUID,
	ordinal int,
	inputFields map[string]string,
	completed bool,
	createdAt time.Time,
) Task {
	return Task{
		id:          id,
		batchID:     batchID,
		ordinal:     ordinal,
		inputFields: inputFields,
		completed:   completed,
		createdAt:   createdAt,
	}
}

func (t Task) ID() uuid.UUID {
	return t.id
}

func (t Task) BatchID() uuid.UUID {
	return t.batchID
}

func (t Task) Ordinal() int {
	return t.ordinal
}

func (t Task) InputFields() map[string]string {
	return t.inputFields
}

func (t Task) Completed() bool {
	return t.completed
}

func (t Task) CreatedAt() time.Time {
	return t.createdAt
}

func (t Task) Complete() Task {
	t.completed = true
	return t
}

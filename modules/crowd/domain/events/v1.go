package events

import (
	"time"

	"github.com/google/uuid"
)

type TemplateCreated struct {
	TemplateID uuid.UUID
	Name       string
	Fields     []string
	OccurredAt time.Time
}

type BatchCreated struct {
	BatchID    uuid.UUID
	TemplateID uuid.UUID
	Name       string
	TotalTasks int64
	OccurredAt time.Time
}

type BatchPublished struct {
	BatchID    uuid.UUID
	OccurredAt time.Time
}

type BatchCancelled struct {
	BatchID    uuid.UUID
	OccurredAt time.Time
}

type BatchDeleted struct {
	BatchID    uuid.UUID
	OccurredAt time.Time
}

package batch

import (
	"time"

	"github.com/google/uuid"
)

type Batch struct {
	id                 uuid.UUID
	templateID         uuid.UUID
	name               string
	filename           string
	assignmentsPerTask int
	active             bool
	totalTasks         int64
	completedTasks     int64
	createdAt          time.Time
}

func New(templateID uuid.UUID, name, filename string, assignmentsPerTask int) Batch {
	if assignmentsPerTask < 1 {
		assignmentsPerTask = 1
	}
	// New batches start inactive so an operator can review them before
	// publishing makes their tasks available.
	return Batch{
		id:                 uuid.New(),
		templateID:         templateID,
		name:               name,
		filename:           filename,
		assignmentsPerTask: assignmentsPerTask,
		active:             false,
		createdAt:          time.Now(),
	}
}

func Hydrate(
	id, templateID uuid.UUID,
	name, filename string,
	assignmentsPerTask int,
	active bool,
	totalTasks, completedTasks int64,
	createdAt time.Time,
) Batch {
	return Batch{
		id:                 id,
		templateID:         templateID,
		name:               name,
		filename:           filename,
		assignmentsPerTask: assignmentsPerTask,
		active:             active,
		totalTasks:         totalTasks,
		completedTasks:     completedTasks,
		createdAt:          createdAt,
	}
}

func (b Batch) ID() uuid.UUID {
	return b.id
}

func (b Batch) TemplateID() uuid.UUID {
	return b.templateID
}

func (b Batch) Name() string {
	return b.name
}

func (b Batch) Filename() string {
	return b.filename
}

func (b Batch) AssignmentsPerTask() int {
	return b.assignmentsPerTask
}

func (b Batch) Active() bool {
	return b.active
}

// TotalTasks and CompletedTasks are derived counts, populated by the
// repository from the task table at read time.
func (b Batch) TotalTasks() int64 {
	return b.totalTasks
}

func (b Batch) CompletedTasks() int64 {
	return b.completedTasks
}

func (b Batch) CreatedAt() time.Time {
	return b.createdAt
}

package models

import (
	"encoding/json"
	"time"
)

type Template struct {
	ID                 string
	Name               string
	Body               string
	DefaultAssignments int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

type Batch struct {
	ID                 string
	TemplateID         string
	Name               string
	Filename           string
	AssignmentsPerTask int
	Active             bool
	TotalTasks         int64
	CompletedTasks     int64
	CreatedAt          time.Time
}

type Task struct {
	ID          string
	BatchID     string
	Ordinal     int
	InputFields json.RawMessage
	Completed   bool
	CreatedAt   time.Time
}

package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/batch"
	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/template"
	"github.com/iota-uz/taskpool/modules/crowd/domain/tabular"
	"github.com/iota-uz/taskpool/modules/crowd/services"
	"github.com/iota-uz/taskpool/pkg/application"
	"github.com/iota-uz/taskpool/pkg/configuration"
)

type BatchesAPIController struct {
	app      application.Application
	batches  *services.BatchService
	basePath string
}

func NewBatchesAPIController(app application.Application) application.Controller {
	return &BatchesAPIController{
		app:      app,
		batches:  app.Service(services.BatchService{}).(*services.BatchService),
		basePath: "/crowd/api/batches",
	}
}

func (c *BatchesAPIController) Key() string {
	return c.basePath
}

func (c *BatchesAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	router.HandleFunc("/{id}/tasks", c.Tasks).Methods(http.MethodGet)
	router.HandleFunc("/{id}/publish", c.Publish).Methods(http.MethodPost)
	router.HandleFunc("/{id}/cancel", c.Cancel).Methods(http.MethodPost)
	router.HandleFunc("/{id}/tasks/{taskID}/complete", c.CompleteTask).Methods(http.MethodPost)
}

func (c *BatchesAPIController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	limit, offset := paginationParams(r, conf.PageSize, conf.MaxPageSize)

	params := &batch.FindParams{Limit: limit, Offset: offset}
	if v := strings.TrimSpace(r.URL.Query().Get("template_id")); v != "" {
		templateID, err := uuid.Parse(v)
		if err != nil {
			writeAPIError(w, r, http.StatusBadRequest, "CROWD_INVALID_TEMPLATE_ID", "invalid template_id")
			return
		}
		params.TemplateID = &templateID
	}

	items, err := c.batches.GetPaginated(r.Context(), params)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
		return
	}
	total, err := c.batches.Count(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, batchToResponse(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *BatchesAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := c.batchID(w, r)
	if !ok {
		return
	}
	entity, err := c.batches.GetByID(r.Context(), id)
	if err != nil {
		c.writeBatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, batchToResponse(entity))
}

// Create accepts a multipart form with template_id, name, an optional
// assignments_per_task and the uploaded file under csv_file.
func (c *BatchesAPIController) Create(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	if err := r.ParseMultipartForm(conf.MaxUploadMemory); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CROWD_INVALID_FORM", "invalid multipart form")
		return
	}

	file, fileHeader, err := r.FormFile("csv_file")
	if err != nil {
		uploadsRejected.WithLabelValues("missing_file").Inc()
		writeAPIError(w, r, http.StatusBadRequest, "CROWD_FILE_REQUIRED", "csv_file is required")
		return
	}
	defer func() {
		_ = file.Close()
	}()

	content, err := io.ReadAll(io.LimitReader(file, conf.MaxUploadSize+1))
	if err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CROWD_UPLOAD_FAILED", "could not read uploaded file")
		return
	}
	if int64(len(content)) > conf.MaxUploadSize {
		uploadsRejected.WithLabelValues("too_large").Inc()
		writeAPIError(w, r, http.StatusRequestEntityTooLarge, "CROWD_FILE_TOO_LARGE", "uploaded file is too large")
		return
	}

	if !allowedUploadType(content) {
		uploadsRejected.WithLabelValues("bad_type").Inc()
		writeAPIError(w, r, http.StatusBadRequest, "CROWD_UNSUPPORTED_FILE_TYPE", "uploaded file must be CSV or XLSX")
		return
	}

	dto := batch.CreateDTO{
		TemplateID: r.FormValue("template_id"),
		Name:       r.FormValue("name"),
		Filename:   fileHeader.Filename,
		Content:    content,
	}
	if v := strings.TrimSpace(r.FormValue("assignments_per_task")); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			writeAPIError(w, r, http.StatusUnprocessableEntity, "CROWD_VALIDATION_FAILED", "assignments_per_task must be a positive integer")
			return
		}
		dto.AssignmentsPerTask = parsed
	}
	if errs, ok := dto.Ok(); !ok {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "CROWD_VALIDATION_FAILED", firstError(errs))
		return
	}

	created, err := c.batches.Create(r.Context(), &dto)
	if err != nil {
		var validationErr *batch.ValidationFailedError
		var decodeErr *tabular.DecodeError
		switch {
		case errors.As(err, &validationErr):
			uploadsRejected.WithLabelValues("schema_mismatch").Inc()
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"code":    "CROWD_FILE_VALIDATION_FAILED",
				"message": validationErr.Error(),
				"issues":  validationErr.Issues,
			})
		case errors.As(err, &decodeErr):
			uploadsRejected.WithLabelValues("decode_failed").Inc()
			writeAPIError(w, r, http.StatusBadRequest, "CROWD_DECODE_FAILED", decodeErr.Error())
		case errors.Is(err, template.ErrNotFound):
			writeAPIError(w, r, http.StatusNotFound, "CROWD_TEMPLATE_NOT_FOUND", "template not found")
		default:
			writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
		}
		return
	}

	batchesCreated.Inc()
	tasksMaterialized.Add(float64(created.TotalTasks()))
	writeJSON(w, http.StatusCreated, batchToResponse(created))
}

func (c *BatchesAPIController) Tasks(w http.ResponseWriter, r *http.Request) {
	id, ok := c.batchID(w, r)
	if !ok {
		return
	}
	tasks, err := c.batches.Tasks(r.Context(), id)
	if err != nil {
		c.writeBatchError(w, r, err)
		return
	}

	out := make([]map[string]any, 0, len(tasks))
	for _, task := range tasks {
		out = append(out, taskToResponse(task))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": len(out),
	})
}

func (c *BatchesAPIController) Publish(w http.ResponseWriter, r *http.Request) {
	id, ok := c.batchID(w, r)
	if !ok {
		return
	}
	if err := c.batches.Publish(r.Context(), id); err != nil {
		c.writeBatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id.String(), "active": true})
}

func (c *BatchesAPIController) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := c.batchID(w, r)
	if !ok {
		return
	}
	if err := c.batches.Cancel(r.Context(), id); err != nil {
		c.writeBatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id.String(), "active": false})
}

func (c *BatchesAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := c.batchID(w, r)
	if !ok {
		return
	}
	if err := c.batches.Delete(r.Context(), id); err != nil {
		c.writeBatchError(w, r, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (c *BatchesAPIController) CompleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(mux.Vars(r)["taskID"])
	if err != nil {
		writeAPIError(w, r, http.StatusNotFound, "CROWD_TASK_NOT_FOUND", "task not found")
		return
	}
	task, err := c.batches.CompleteTask(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, batch.ErrTaskNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "CROWD_TASK_NOT_FOUND", "task not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, taskToResponse(task))
}

func (c *BatchesAPIController) batchID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusNotFound, "CROWD_BATCH_NOT_FOUND", "batch not found")
		return uuid.Nil, false
	}
	return id, true
}

func (c *BatchesAPIController) writeBatchError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, batch.ErrNotFound) {
		writeAPIError(w, r, http.StatusNotFound, "CROWD_BATCH_NOT_FOUND", "batch not found")
		return
	}
	writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
}

func allowedUploadType(content []byte) bool {
	if len(content) == 0 {
		return true
	}
	for mt := mimetype.Detect(content); mt != nil; mt = mt.Parent() {
		if mt.Is("text/csv") || mt.Is("text/plain") ||
			mt.Is("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet") {
			return true
		}
	}
	return false
}

func batchToResponse(entity batch.Batch) map[string]any {
	return map[string]any{
		"id":                   entity.ID().String(),
		"template_id":          entity.TemplateID().String(),
		"name":                 entity.Name(),
		"filename":             entity.Filename(),
		"assignments_per_task": entity.AssignmentsPerTask(),
		"active":               entity.Active(),
		"total_tasks":          entity.TotalTasks(),
		"completed_tasks":      entity.CompletedTasks(),
		"created_at":           entity.CreatedAt(),
	}
}

func taskToResponse(task batch.Task) map[string]any {
	return map[string]any{
		"id":           task.ID().String(),
		"batch_id":     task.BatchID().String(),
		"ordinal":      task.Ordinal(),
		"input_fields": task.InputFields(),
		"completed":    task.Completed(),
		"created_at":   task.CreatedAt(),
	}
}

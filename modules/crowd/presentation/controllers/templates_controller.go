package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/template"
	"github.com/iota-uz/taskpool/modules/crowd/services"
	"github.com/iota-uz/taskpool/pkg/application"
	"github.com/iota-uz/taskpool/pkg/configuration"
)

type TemplatesAPIController struct {
	app       application.Application
	templates *services.TemplateService
	basePath  string
}

func NewTemplatesAPIController(app application.Application) application.Controller {
	return &TemplatesAPIController{
		app:       app,
		templates: app.Service(services.TemplateService{}).(*services.TemplateService),
		basePath:  "/crowd/api/templates",
	}
}

func (c *TemplatesAPIController) Key() string {
	return c.basePath
}

func (c *TemplatesAPIController) Register(r *mux.Router) {
	router := r.PathPrefix(c.basePath).Subrouter()
	router.HandleFunc("", c.List).Methods(http.MethodGet)
	router.HandleFunc("", c.Create).Methods(http.MethodPost)
	router.HandleFunc("/{id}", c.Get).Methods(http.MethodGet)
	router.HandleFunc("/{id}", c.Update).Methods(http.MethodPut)
	router.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
}

func (c *TemplatesAPIController) List(w http.ResponseWriter, r *http.Request) {
	conf := configuration.Use()
	limit, offset := paginationParams(r, conf.PageSize, conf.MaxPageSize)

	items, err := c.templates.GetPaginated(r.Context(), &template.FindParams{Limit: limit, Offset: offset})
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
		return
	}
	total, err := c.templates.Count(r.Context())
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
		return
	}

	out := make([]map[string]any, 0, len(items))
	for _, item := range items {
		out = append(out, templateToResponse(item))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": out,
		"total": total,
	})
}

func (c *TemplatesAPIController) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusNotFound, "CROWD_TEMPLATE_NOT_FOUND", "template not found")
		return
	}

	entity, err := c.templates.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, template.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "CROWD_TEMPLATE_NOT_FOUND", "template not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, templateToResponse(entity))
}

func (c *TemplatesAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto template.CreateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CROWD_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "CROWD_VALIDATION_FAILED", firstError(errs))
		return
	}

	created, err := c.templates.Create(r.Context(), &dto)
	if err != nil {
		writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, templateToResponse(created))
}

func (c *TemplatesAPIController) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusNotFound, "CROWD_TEMPLATE_NOT_FOUND", "template not found")
		return
	}

	var dto template.UpdateDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeAPIError(w, r, http.StatusBadRequest, "CROWD_INVALID_JSON", "invalid json")
		return
	}
	if errs, ok := dto.Ok(); !ok {
		writeAPIError(w, r, http.StatusUnprocessableEntity, "CROWD_VALIDATION_FAILED", firstError(errs))
		return
	}

	updated, err := c.templates.Update(r.Context(), id, &dto)
	if err != nil {
		if errors.Is(err, template.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "CROWD_TEMPLATE_NOT_FOUND", "template not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusOK, templateToResponse(updated))
}

func (c *TemplatesAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeAPIError(w, r, http.StatusNotFound, "CROWD_TEMPLATE_NOT_FOUND", "template not found")
		return
	}

	if err := c.templates.Delete(r.Context(), id); err != nil {
		if errors.Is(err, template.ErrNotFound) {
			writeAPIError(w, r, http.StatusNotFound, "CROWD_TEMPLATE_NOT_FOUND", "template not found")
			return
		}
		writeAPIError(w, r, http.StatusInternalServerError, "CROWD_INTERNAL", "internal error")
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func templateToResponse(entity template.Template) map[string]any {
	return map[string]any{
		"id":                  entity.ID().String(),
		"name":                entity.Name(),
		"body":                entity.Body(),
		"fields":              entity.Fields(),
		"default_assignments": entity.DefaultAssignments(),
		"created_at":          entity.CreatedAt(),
		"updated_at":          entity.UpdatedAt(),
	}
}

func paginationParams(r *http.Request, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 && parsed <= maxLimit {
			limit = parsed
		}
	}
	offset := 0
	if v := strings.TrimSpace(r.URL.Query().Get("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	return limit, offset
}

func firstError(errs map[string]string) string {
	for _, message := range errs {
		if strings.TrimSpace(message) != "" {
			return message
		}
	}
	return "validation failed"
}

package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/batch"
	"github.com/iota-uz/taskpool/modules/crowd/domain/aggregates/template"
	"github.com/iota-uz/taskpool/modules/crowd/presentation/controllers"
	"github.com/iota-uz/taskpool/modules/crowd/services"
	"github.com/iota-uz/taskpool/pkg/application"
	"github.com/iota-uz/taskpool/pkg/composables"
	"github.com/iota-uz/taskpool/pkg/eventbus"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	templateRepo := &memTemplateRepository{templates: map[uuid.UUID]template.Template{}}
	batchRepo := &memBatchRepository{batches: map[uuid.UUID]batch.Batch{}}
	publisher := eventbus.NewEventPublisher(logrus.New())

	templateService := services.NewTemplateService(templateRepo, publisher)
	batchService := services.NewBatchService(batchRepo, templateRepo, publisher)

	app := application.New(&application.ApplicationOptions{
		EventBus: publisher,
		Logger:   logrus.New(),
	})
	app.RegisterServices(templateService, batchService)

	router := mux.NewRouter()
	controllers.NewTemplatesAPIController(app).Register(router)
	controllers.NewBatchesAPIController(app).Register(router)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := composables.WithTx(r.Context(), &memTx{})
		router.ServeHTTP(w, r.WithContext(ctx))
	})
	return handler
}

func createTemplate(t *testing.T, handler http.Handler, body string) uuid.UUID {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"name": "Cities", "body": body})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crowd/api/templates", bytes.NewReader(payload))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	id, err := uuid.Parse(response["id"].(string))
	require.NoError(t, err)
	return id
}

func multipartUpload(t *testing.T, templateID uuid.UUID, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("template_id", templateID.String()))
	require.NoError(t, writer.WriteField("name", "Test run"))
	part, err := writer.CreateFormFile("csv_file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestTemplatesAPI_CreateReturnsFields(t *testing.T) {
	handler := newTestHandler(t)

	payload := []byte(`{"name":"Cities","body":"<p>${city} and ${country} and ${city}</p>"}`)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crowd/api/templates", bytes.NewReader(payload))
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, []any{"city", "country"}, response["fields"])
}

func TestTemplatesAPI_CreateValidationFailure(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crowd/api/templates", bytes.NewReader([]byte(`{"body":"x"}`)))
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestTemplatesAPI_GetUnknownReturns404(t *testing.T) {
	handler := newTestHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/crowd/api/templates/"+uuid.NewString(), nil)
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBatchesAPI_UploadCreatesBatch(t *testing.T) {
	handler := newTestHandler(t)
	templateID := createTemplate(t, handler, "<p>${city} in ${country}</p>")

	body, contentType := multipartUpload(t, templateID, "cities.csv",
		[]byte("city,country\nOslo,Norway\nTashkent,Uzbekistan\n"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crowd/api/batches", body)
	req.Header.Set("Content-Type", contentType)
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, float64(2), response["total_tasks"])
	require.Equal(t, float64(0), response["completed_tasks"])
	require.Equal(t, false, response["active"])

	batchID := response["id"].(string)
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/crowd/api/batches/"+batchID+"/tasks", nil)
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	items := tasks["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	require.Equal(t, map[string]any{"city": "Oslo", "country": "Norway"}, first["input_fields"])
}

func TestBatchesAPI_UploadSchemaMismatchReturnsIssues(t *testing.T) {
	handler := newTestHandler(t)
	templateID := createTemplate(t, handler, "<p>${city} in ${country}</p>")

	body, contentType := multipartUpload(t, templateID, "cities.csv", []byte("city,zip\nOslo,0150\n"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crowd/api/batches", body)
	req.Header.Set("Content-Type", contentType)
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	issues := response["issues"].([]any)
	require.Len(t, issues, 2)
	first := issues[0].(map[string]any)
	require.Equal(t, "extra_fields", first["category"])
	require.Contains(t, first["message"], "extra fields")
	second := issues[1].(map[string]any)
	require.Equal(t, "missing_fields", second["category"])
	require.Contains(t, second["message"], "missing fields")
}

func TestBatchesAPI_UploadRowArityReturnsLineNumbers(t *testing.T) {
	handler := newTestHandler(t)
	templateID := createTemplate(t, handler, "<p>${a} ${b} ${c}</p>")

	body, contentType := multipartUpload(t, templateID, "rows.csv",
		[]byte("a,b,c\n1,2\n1,2,3\n1,2,3,4\n"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crowd/api/batches", body)
	req.Header.Set("Content-Type", contentType)
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	issues := response["issues"].([]any)
	require.Len(t, issues, 2)
	require.Contains(t, issues[0].(map[string]any)["message"], "line 2 has 2 fields")
	require.Contains(t, issues[1].(map[string]any)["message"], "line 4 has 4 fields")
}

func TestBatchesAPI_UploadBrokenCSVReturns400(t *testing.T) {
	handler := newTestHandler(t)
	templateID := createTemplate(t, handler, "<p>${city}</p>")

	body, contentType := multipartUpload(t, templateID, "broken.csv", []byte("city\n\"Oslo"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crowd/api/batches", body)
	req.Header.Set("Content-Type", contentType)
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, "CROWD_DECODE_FAILED", response["code"])
}

func TestBatchesAPI_UploadMissingFileReturns400(t *testing.T) {
	handler := newTestHandler(t)
	templateID := createTemplate(t, handler, "<p>${city}</p>")

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("template_id", templateID.String()))
	require.NoError(t, writer.WriteField("name", "No file"))
	require.NoError(t, writer.Close())

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crowd/api/batches", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	require.Equal(t, "CROWD_FILE_REQUIRED", response["code"])
}

func TestBatchesAPI_PublishAndCancel(t *testing.T) {
	handler := newTestHandler(t)
	templateID := createTemplate(t, handler, "<p>${city}</p>")

	body, contentType := multipartUpload(t, templateID, "cities.csv", []byte("city\nOslo\n"))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/crowd/api/batches", body)
	req.Header.Set("Content-Type", contentType)
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var response map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	batchID := response["id"].(string)
	require.Equal(t, false, response["active"])

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/crowd/api/batches/"+batchID+"/publish", nil)
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/crowd/api/batches/"+batchID, nil)
	handler.ServeHTTP(rec, req)
	var fetched map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, true, fetched["active"])

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/crowd/api/batches/"+batchID+"/cancel", nil)
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/crowd/api/batches/"+batchID, nil)
	handler.ServeHTTP(rec, req)
	fetched = map[string]any{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fetched))
	require.Equal(t, false, fetched["active"])
}

type memTemplateRepository struct {
	templates map[uuid.UUID]template.Template
}

func (f *memTemplateRepository) GetPaginated(ctx context.Context, params *template.FindParams) ([]template.Template, error) {
	var out []template.Template
	for _, tpl := range f.templates {
		out = append(out, tpl)
	}
	return out, nil
}

func (f *memTemplateRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(f.templates)), nil
}

func (f *memTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (template.Template, error) {
	tpl, ok := f.templates[id]
	if !ok {
		return template.Template{}, template.ErrNotFound
	}
	return tpl, nil
}

func (f *memTemplateRepository) Create(ctx context.Context, entity template.Template) (template.Template, error) {
	f.templates[entity.ID()] = entity
	return entity, nil
}

func (f *memTemplateRepository) Update(ctx context.Context, entity template.Template) (template.Template, error) {
	if _, ok := f.templates[entity.ID()]; !ok {
		return template.Template{}, template.ErrNotFound
	}
	f.templates[entity.ID()] = entity
	return entity, nil
}

func (f *memTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.templates[id]; !ok {
		return template.ErrNotFound
	}
	delete(f.templates, id)
	return nil
}

type memBatchRepository struct {
	batches map[uuid.UUID]batch.Batch
	tasks   []batch.Task
}

func (f *memBatchRepository) GetPaginated(ctx context.Context, params *batch.FindParams) ([]batch.Batch, error) {
	var out []batch.Batch
	for id := range f.batches {
		entity, err := f.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, entity)
	}
	return out, nil
}

func (f *memBatchRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(f.batches)), nil
}

func (f *memBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (batch.Batch, error) {
	entity, ok := f.batches[id]
	if !ok {
		return batch.Batch{}, batch.ErrNotFound
	}
	var total, completed int64
	for _, task := range f.tasks {
		if task.BatchID() != id {
			continue
		}
		total++
		if task.Completed() {
			completed++
		}
	}
	return batch.Hydrate(
		entity.ID(), entity.TemplateID(), entity.Name(), entity.Filename(),
		entity.AssignmentsPerTask(), entity.Active(), total, completed, entity.CreatedAt(),
	), nil
}

func (f *memBatchRepository) Create(ctx context.Context, entity batch.Batch) (batch.Batch, error) {
	f.batches[entity.ID()] = entity
	return entity, nil
}

func (f *memBatchRepository) CreateTasks(ctx context.Context, tasks []batch.Task) error {
	f.tasks = append(f.tasks, tasks...)
	return nil
}

func (f *memBatchRepository) Tasks(ctx context.Context, batchID uuid.UUID) ([]batch.Task, error) {
	var out []batch.Task
	for _, task := range f.tasks {
		if task.BatchID() == batchID {
			out = append(out, task)
		}
	}
	return out, nil
}

func (f *memBatchRepository) GetTaskByID(ctx context.Context, id uuid.UUID) (batch.Task, error) {
	for _, task := range f.tasks {
		if task.ID() == id {
			return task, nil
		}
	}
	return batch.Task{}, batch.ErrTaskNotFound
}

func (f *memBatchRepository) CompleteTask(ctx context.Context, id uuid.UUID) (batch.Task, error) {
	for i, task := range f.tasks {
		if task.ID() == id {
			f.tasks[i] = task.Complete()
			return f.tasks[i], nil
		}
	}
	return batch.Task{}, batch.ErrTaskNotFound
}

func (f *memBatchRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	entity, ok := f.batches[id]
	if !ok {
		return batch.ErrNotFound
	}
	f.batches[id] = batch.Hydrate(
		entity.ID(), entity.TemplateID(), entity.Name(), entity.Filename(),
		entity.AssignmentsPerTask(), active, entity.TotalTasks(), entity.CompletedTasks(), entity.CreatedAt(),
	)
	return nil
}

func (f *memBatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.batches[id]; !ok {
		return batch.ErrNotFound
	}
	delete(f.batches, id)
	return nil
}

// memTx satisfies pgx.Tx so transactional flows can run without a database.
type memTx struct{}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { return nil }
func (t *memTx) Rollback(ctx context.Context) error        { return nil }

func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, errors.New("copy not implemented")
}

func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }

func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, errors.New("prepare not implemented")
}

func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("query not implemented")
}

func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                               { return nil }

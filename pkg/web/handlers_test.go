package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/brandforge/brandforge/pkg/fanout"
	"github.com/brandforge/brandforge/pkg/mocks"
	"github.com/brandforge/brandforge/pkg/models"
	"github.com/brandforge/brandforge/pkg/naming"
	filepersistence "github.com/brandforge/brandforge/pkg/persistence/file"
	"github.com/brandforge/brandforge/pkg/provider"
	"github.com/brandforge/brandforge/pkg/supervisor"
	"github.com/brandforge/brandforge/pkg/web"
	"github.com/brandforge/brandforge/pkg/workflow"
)

func testConfig() workflow.Config {
	config := workflow.DefaultConfig()
	config.PerBranchTimeout = time.Second
	config.OverallBudget = 5 * time.Second

	return config
}

func setupTestApp(t *testing.T, config workflow.Config) *fiber.App {
	return setupTestAppWith(t, config,
		provider.NewStaticClient("dalle", "https://img.test", 0),
		provider.NewStaticClient("sdxl", "https://img.test", 0),
		provider.NewStaticClient("gemini", "https://img.test", 0),
	)
}

func setupTestAppWith(t *testing.T, config workflow.Config, clients ...provider.Client) *fiber.App {
	t.Helper()

	p := filepersistence.NewPersistence(t.TempDir())
	tracer := noop.NewTracerProvider().Tracer("test")
	fallbacks := provider.NewFallbackRegistry()
	executor := fanout.NewExecutor(provider.NewRegistry(clients...), fallbacks, tracer)
	generator := naming.NewGeneratorWithSeed(naming.DefaultScoringConfig(), 42)

	controller := workflow.NewController(p, nil, executor, generator, fallbacks, tracer, config)
	sup := supervisor.NewSupervisor(controller, p)

	handlers := web.NewAPIHandlers(controller, sup, p, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/:id", handlers.GetSession)
	s.Get("/:id/status", handlers.GetStatus)
	s.Get("/:id/events", handlers.GetEvents)
	s.Post("/:id/analysis", handlers.RunAnalysis)
	s.Post("/:id/names/suggest", handlers.SuggestNames)
	s.Post("/:id/names/regenerate", handlers.RegenerateNames)
	s.Post("/:id/names/select", handlers.SelectName)
	s.Post("/:id/signboards/generate", handlers.GenerateSignboards)
	s.Post("/:id/signboards/select", handlers.SelectSignboard)
	s.Post("/:id/interiors/generate", handlers.GenerateInteriors)
	s.Post("/:id/interiors/select", handlers.SelectInterior)
	s.Post("/:id/report", handlers.BuildReport)
	s.Post("/:id/recover", handlers.Recover)

	app.Get("/status/:id", handlers.GetStatus)
	app.Get("/stats", handlers.GetStats)
	app.Get("/health", handlers.HealthCheck)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader

	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)

		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, raw
}

func createTestSession(t *testing.T, app *fiber.App) *models.Session {
	t.Helper()

	resp, body := doJSON(t, app, http.MethodPost, "/sessions/", web.CreateSessionRequest{
		Industry: "restaurant",
		Region:   "seoul",
		Size:     "small",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session models.Session
	require.NoError(t, json.Unmarshal(body, &session))
	require.NotEmpty(t, session.ID)

	return &session
}

type suggestionsResponse struct {
	Suggestions      []models.NameSuggestion `json:"suggestions"`
	MaxRegenerations int                     `json:"max_regenerations"`
}

func TestCreateSession(t *testing.T) {
	app := setupTestApp(t, testConfig())

	session := createTestSession(t, app)
	assert.Equal(t, models.StepCreated, session.CurrentStep)
	assert.Equal(t, models.SessionStatusActive, session.Status)
}

func TestCreateSession_InvalidPayloads(t *testing.T) {
	app := setupTestApp(t, testConfig())

	// Missing fields.
	resp, _ := doJSON(t, app, http.MethodPost, "/sessions/", web.CreateSessionRequest{
		Industry: "restaurant",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown vocabulary is rejected by the workflow layer.
	resp, _ = doJSON(t, app, http.MethodPost, "/sessions/", web.CreateSessionRequest{
		Industry: "piracy",
		Region:   "seoul",
		Size:     "small",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFullPipelineOverHTTP(t *testing.T) {
	app := setupTestApp(t, testConfig())
	session := createTestSession(t, app)
	base := "/sessions/" + session.ID

	resp, _ := doJSON(t, app, http.MethodPost, base+"/analysis", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, base+"/names/suggest", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var names suggestionsResponse
	require.NoError(t, json.Unmarshal(body, &names))
	require.Len(t, names.Suggestions, 3)
	assert.Equal(t, models.MaxNameRegenerations, names.MaxRegenerations)

	resp, _ = doJSON(t, app, http.MethodPost, base+"/names/select", web.SelectNameRequest{
		Name: names.Suggestions[0].Name,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, base+"/signboards/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var signboards models.ImageSet
	require.NoError(t, json.Unmarshal(body, &signboards))
	require.Len(t, signboards.Images, 3)

	resp, _ = doJSON(t, app, http.MethodPost, base+"/signboards/select", web.SelectImageRequest{
		URL: signboards.Images[0].URL,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, base+"/interiors/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var interiors models.ImageSet
	require.NoError(t, json.Unmarshal(body, &interiors))
	require.Len(t, interiors.Images, 3)

	resp, _ = doJSON(t, app, http.MethodPost, base+"/interiors/select", web.SelectImageRequest{
		URL: interiors.Images[1].URL,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, app, http.MethodPost, base+"/report", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report models.Report
	require.NoError(t, json.Unmarshal(body, &report))
	assert.Equal(t, names.Suggestions[0].Name, report.BusinessName)

	resp, body = doJSON(t, app, http.MethodGet, base+"/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view supervisor.StatusView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, models.SessionStatusCompleted, view.Status)
	assert.Equal(t, models.StepCompleted, view.CurrentStep)
}

func TestStatusShortRoute(t *testing.T) {
	app := setupTestApp(t, testConfig())
	session := createTestSession(t, app)

	resp, body := doJSON(t, app, http.MethodGet, "/status/"+session.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var view supervisor.StatusView
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, session.ID, view.SessionID)
	assert.Equal(t, models.StepCreated, view.CurrentStep)
}

func TestGetSession_NotFound(t *testing.T) {
	app := setupTestApp(t, testConfig())

	resp, _ := doJSON(t, app, http.MethodGet, "/sessions/does-not-exist", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetStatus_ExpiredSessionIsGone(t *testing.T) {
	config := testConfig()
	config.SessionTTL = time.Millisecond

	app := setupTestApp(t, config)
	session := createTestSession(t, app)

	time.Sleep(5 * time.Millisecond)

	resp, _ := doJSON(t, app, http.MethodGet, "/sessions/"+session.ID+"/status", nil)
	assert.Equal(t, http.StatusGone, resp.StatusCode)
}

func TestOperationOutOfOrderIsConflict(t *testing.T) {
	app := setupTestApp(t, testConfig())
	session := createTestSession(t, app)

	resp, _ := doJSON(t, app, http.MethodPost, "/sessions/"+session.ID+"/names/suggest", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRegenerationLimitIsConflict(t *testing.T) {
	app := setupTestApp(t, testConfig())
	session := createTestSession(t, app)
	base := "/sessions/" + session.ID

	resp, _ := doJSON(t, app, http.MethodPost, base+"/analysis", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPost, base+"/names/suggest", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	for i := 0; i < models.MaxNameRegenerations; i++ {
		resp, _ = doJSON(t, app, http.MethodPost, base+"/names/regenerate", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, _ = doJSON(t, app, http.MethodPost, base+"/names/regenerate", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSelectImage_RejectsMalformedURL(t *testing.T) {
	app := setupTestApp(t, testConfig())
	session := createTestSession(t, app)

	resp, _ := doJSON(t, app, http.MethodPost, "/sessions/"+session.ID+"/signboards/select", web.SelectImageRequest{
		URL: "not a url",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// flakyProviderClient fails its first generation and succeeds afterwards.
func flakyProviderClient(name string) *mocks.MockProviderClient {
	client := &mocks.MockProviderClient{}
	client.On("Name").Return(name)
	client.On("Generate", mock.Anything, mock.Anything).Return(nil, provider.ErrProviderFailure).Once()
	client.On("Generate", mock.Anything, mock.Anything).Return(&provider.Result{
		URL:         "https://img.test/" + name,
		Provider:    name,
		GeneratedAt: time.Now().UTC(),
	}, nil)

	return client
}

func TestGenerateSignboards_RetriesDegradedFanOut(t *testing.T) {
	app := setupTestAppWith(t, testConfig(),
		flakyProviderClient("dalle"), flakyProviderClient("sdxl"), flakyProviderClient("gemini"))
	session := createTestSession(t, app)
	base := "/sessions/" + session.ID

	resp, _ := doJSON(t, app, http.MethodPost, base+"/analysis", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodPost, base+"/names/suggest", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var names suggestionsResponse
	require.NoError(t, json.Unmarshal(body, &names))

	resp, _ = doJSON(t, app, http.MethodPost, base+"/names/select", web.SelectNameRequest{
		Name: names.Suggestions[0].Name,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// The first fan-out settles all-fallback; the handler lets the
	// supervisor retry before answering, so the client gets real images.
	resp, body = doJSON(t, app, http.MethodPost, base+"/signboards/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var signboards models.ImageSet
	require.NoError(t, json.Unmarshal(body, &signboards))
	require.Len(t, signboards.Images, 3)
	assert.False(t, signboards.AllFallback())

	resp, body = doJSON(t, app, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.Session
	require.NoError(t, json.Unmarshal(body, &stored))

	state := stored.StepStates[models.StepSignboard]
	assert.Equal(t, 2, state.Attempts)
	assert.False(t, state.IsFallback)
}

func TestRecoverHealthySession(t *testing.T) {
	app := setupTestApp(t, testConfig())
	session := createTestSession(t, app)

	resp, _ := doJSON(t, app, http.MethodPost, "/sessions/"+session.ID+"/recover", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestGetEvents(t *testing.T) {
	app := setupTestApp(t, testConfig())
	session := createTestSession(t, app)

	resp, body := doJSON(t, app, http.MethodGet, "/sessions/"+session.ID+"/events", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Events []*models.WorkflowEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.NotEmpty(t, payload.Events)
}

func TestStatsAndHealth(t *testing.T) {
	app := setupTestApp(t, testConfig())
	createTestSession(t, app)

	resp, body := doJSON(t, app, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats supervisor.Stats
	require.NoError(t, json.Unmarshal(body, &stats))
	assert.Equal(t, 1, stats.Total)

	resp, _ = doJSON(t, app, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/cognitive-insights/internal/application/command"
	"github.com/alem-hub/cognitive-insights/internal/application/query"
	"github.com/alem-hub/cognitive-insights/internal/domain/cohort"
	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
	"github.com/alem-hub/cognitive-insights/internal/domain/submission"
	"github.com/alem-hub/cognitive-insights/internal/infrastructure/metrics"
	"github.com/alem-hub/cognitive-insights/internal/infrastructure/persistence/memory"
	"github.com/alem-hub/cognitive-insights/internal/interface/http/handlers"
	"github.com/alem-hub/cognitive-insights/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// TEST SERVER
// ══════════════════════════════════════════════════════════════════════════════

const testPopulation = 50

type testEnv struct {
	server  *Server
	metrics *metrics.Registry
	now     time.Time
}

func newTestEnv(t *testing.T, mutate func(*Config, *Dependencies)) *testEnv {
	t.Helper()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	log := logger.Nop()
	reg := metrics.New()

	subs := memory.NewSubmissionRepository()
	settings := memory.NewSettingsRepository()

	builder := query.NewPopulationBuilder(query.PopulationConfig{
		Size:               testPopulation,
		Seed:               42,
		IncludeSubmissions: true,
	}, subs, reg, log)

	deps := Dependencies{
		GetStudentsHandler:     query.NewGetStudentsHandler(builder),
		GetStudentHandler:      query.NewGetStudentHandler(builder),
		GetChartsHandler:       query.NewGetChartsHandler(builder, nil, 0, log),
		PredictScoreHandler:    query.NewPredictScoreHandler(),
		ListSubmissionsHandler: query.NewListSubmissionsHandler(subs),
		GetSettingsHandler:     query.NewGetSettingsHandler(settings, clock),
		SubmitProjectHandler: command.NewSubmitProjectHandler(subs, settings, time.UTC, log,
			command.WithClock(clock),
			command.WithSubmissionObserver(reg),
		),
		UpdateSettingsHandler: command.NewUpdateSettingsHandler(settings, clock, log),
		Logger:                log,
		MetricsHandler:        reg.Handler(),
		RequestObserver:       reg,
	}

	cfg := DefaultConfig()
	cfg.RateLimitPerMinute = 0

	if mutate != nil {
		mutate(&cfg, &deps)
	}

	srv := NewServer(cfg, deps)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	return &testEnv{server: srv, metrics: reg, now: now}
}

func (e *testEnv) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	return e.do(t, httptest.NewRequest(http.MethodGet, target, nil))
}

func (e *testEnv) postJSON(t *testing.T, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return e.do(t, req)
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/submissions", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func submissionFields() map[string]string {
	return map[string]string{
		"studentName": "Grace Hopper",
		"studentId":   "SUB-HOPPER",
		"email":       "grace@example.com",
		"comments":    "compiler attached",
	}
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH
// ══════════════════════════════════════════════════════════════════════════════

func TestHealth_NoChecker(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/health", "/healthz", "/ready", "/live", "/"} {
		rec := env.get(t, path)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Header().Get("Content-Type"), "application/json", path)
	}
}

func TestHealth_FailingCheck(t *testing.T) {
	env := newTestEnv(t, func(_ *Config, d *Dependencies) {
		checker := handlers.NewCompositeHealthChecker("test")
		checker.AddCheck("database", func(context.Context) error { return errors.New("connection refused") })
		d.HealthChecker = checker
	})

	assert.Equal(t, http.StatusServiceUnavailable, env.get(t, "/health").Code)
	assert.Equal(t, http.StatusServiceUnavailable, env.get(t, "/ready").Code)
	assert.Equal(t, http.StatusOK, env.get(t, "/live").Code)
}

func TestRequestID(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/live")
	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)

	req := httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec = env.do(t, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENTS & CHARTS
// ══════════════════════════════════════════════════════════════════════════════

func TestGetStudents_Pagination(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/api/v1/students?page=2&limit=5&stats=true")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[query.GetStudentsResult](t, rec)
	assert.Len(t, res.Students, 5)
	assert.Equal(t, query.Pagination{Page: 2, Limit: 5, Total: testPopulation, TotalPages: 10}, res.Pagination)
	require.NotNil(t, res.Stats)
	assert.Equal(t, testPopulation, res.Stats.TotalStudents)

	for _, s := range res.Students {
		assert.True(t, s.Persona.IsValid(), s.ID)
	}
}

func TestGetStudents_DefaultsWithoutStats(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/api/v1/students")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[query.GetStudentsResult](t, rec)
	assert.Len(t, res.Students, query.DefaultPageLimit)
	assert.Equal(t, 1, res.Pagination.Page)
	assert.Nil(t, res.Stats)
}

func TestGetStudents_NegativePage(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/api/v1/students?page=-1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetStudent(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/api/v1/students/STU0003")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "STU0003", decode[cohort.StudentRecord](t, rec).ID)

	rec = env.get(t, "/api/v1/students/stu0003")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.get(t, "/api/v1/students/NOPE")
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decode[ErrorResponse](t, rec)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, "not_found", body.Error.Code)
	assert.NotEmpty(t, body.RequestID)
}

func TestGetCharts(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/api/v1/charts")
	require.Equal(t, http.StatusOK, rec.Code)

	charts := decode[cohort.ChartData](t, rec)
	assert.Len(t, charts.SkillsComparison, 4)
	assert.NotEmpty(t, charts.PersonaDistribution)
}

// ══════════════════════════════════════════════════════════════════════════════
// PREDICT
// ══════════════════════════════════════════════════════════════════════════════

func TestPredict(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.postJSON(t, "/api/v1/predict",
		`{"comprehension":80,"attention":75,"focus":70,"retention":85,"engagement_time":120}`)
	require.Equal(t, http.StatusOK, rec.Code)

	p := decode[cohort.Prediction](t, rec)
	assert.InDelta(t, 50, p.PredictedAssessmentScore, 50)
	assert.GreaterOrEqual(t, p.Confidence, 70.0)
	assert.Equal(t, 120.0, p.InputFeatures.EngagementTime)
}

func TestPredict_Invalid(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing fields", `{"comprehension":80}`, "Missing or invalid field: attention"},
		{"wrong type", `{"comprehension":"high","attention":1,"focus":1,"retention":1,"engagement_time":1}`, "Missing or invalid field: comprehension"},
		{"malformed", `{`, "Invalid JSON body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.postJSON(t, "/api/v1/predict", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			body := decode[ErrorResponse](t, rec)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.message, body.Error.Message)
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSIONS
// ══════════════════════════════════════════════════════════════════════════════

func TestSubmitProject(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, multipartRequest(t, submissionFields(), "project.zip", []byte("PK\x03\x04")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[command.SubmitProjectResult](t, rec)
	assert.Equal(t, "Submission successful", res.Message)
	assert.Len(t, res.SubmissionID, 36)

	rec = env.get(t, "/api/v1/submissions")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Submissions []submission.Submission `json:"submissions"`
	}](t, rec)
	require.Len(t, list.Submissions, 1)
	assert.Equal(t, "project.zip", list.Submissions[0].FileName)
	assert.Equal(t, int64(4), list.Submissions[0].FileSize)
	assert.Equal(t, submission.StatusPending, list.Submissions[0].Status)

	// The submitted student joins the population.
	rec = env.get(t, "/api/v1/students?search=sub-hopper")
	require.Equal(t, http.StatusOK, rec.Code)
	students := decode[query.GetStudentsResult](t, rec)
	require.Len(t, students.Students, 1)
	assert.Equal(t, cohort.SubmittedClass, students.Students[0].CohortClass)

	rec = env.get(t, "/api/v1/students?limit=1&stats=true")
	assert.Equal(t, testPopulation+1, decode[query.GetStudentsResult](t, rec).Pagination.Total)
}

func TestSubmitProject_Rejected(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("file type", func(t *testing.T) {
		rec := env.do(t, multipartRequest(t, submissionFields(), "virus.exe", []byte("MZ")))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation_error", decode[ErrorResponse](t, rec).Error.Code)
	})

	t.Run("missing file", func(t *testing.T) {
		rec := env.do(t, multipartRequest(t, submissionFields(), "", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := env.do(t, multipartRequest(t, map[string]string{"studentName": "x"}, "project.zip", []byte("PK")))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec := env.postJSON(t, "/api/v1/submissions", `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	rec := env.get(t, "/api/v1/submissions")
	list := decode[map[string][]json.RawMessage](t, rec)
	assert.Empty(t, list["submissions"])
}

func TestSubmitProject_DeadlinePassed(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.postJSON(t, "/api/v1/submissions/settings",
		`{"deadline":"2026-02-01","deadlineTime":"23:59","allowLateSubmissions":false,"maxFileSize":100,"allowedFileTypes":["zip"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, multipartRequest(t, submissionFields(), "project.zip", []byte("PK")))
	require.Equal(t, http.StatusConflict, rec.Code)

	body := decode[ErrorResponse](t, rec)
	assert.Equal(t, "deadline_passed", body.Error.Code)
	assert.True(t, strings.HasPrefix(body.Error.Message, "submission deadline has passed"), body.Error.Message)
}

func TestSubmitProject_LateAllowed(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.postJSON(t, "/api/v1/submissions/settings",
		`{"deadline":"2026-02-01","deadlineTime":"23:59","allowLateSubmissions":true,"lateSubmissionPenalty":15,"maxFileSize":100}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, multipartRequest(t, submissionFields(), "project.zip", []byte("PK")))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[command.SubmitProjectResult](t, rec)
	assert.True(t, res.Late)
	assert.Equal(t, 15.0, res.Penalty)
}

// ══════════════════════════════════════════════════════════════════════════════
// SETTINGS
// ══════════════════════════════════════════════════════════════════════════════

type settingsResponse struct {
	Success  bool                `json:"success"`
	Message  string              `json:"message"`
	Settings submission.Settings `json:"settings"`
}

func TestGetSettings_Defaults(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.get(t, "/api/v1/submissions/settings")
	require.Equal(t, http.StatusOK, rec.Code)

	res := decode[settingsResponse](t, rec)
	assert.True(t, res.Success)
	assert.Equal(t, "2026-03-08", res.Settings.Deadline)
	assert.Equal(t, submission.DefaultDeadlineTime, res.Settings.DeadlineTime)
	assert.Equal(t, int64(submission.DefaultMaxFileSizeMB), res.Settings.MaxFileSize)
}

func TestUpdateSettings(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.postJSON(t, "/api/v1/submissions/settings",
		`{"deadline":"2026-04-01","deadlineTime":"18:00","reminderDays":[2],"allowedFileTypes":["zip","7z"]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	res := decode[settingsResponse](t, rec)
	assert.Equal(t, "Settings updated successfully", res.Message)
	assert.Equal(t, []int{2}, res.Settings.ReminderDays)
	assert.Equal(t, []string{"zip", "7z"}, res.Settings.AllowedFileTypes)

	rec = env.get(t, "/api/v1/submissions/settings")
	assert.Equal(t, "18:00", decode[settingsResponse](t, rec).Settings.DeadlineTime)
}

func TestUpdateSettings_Invalid(t *testing.T) {
	env := newTestEnv(t, nil)

	for name, body := range map[string]string{
		"malformed":        `{"deadline":`,
		"missing deadline": `{"deadlineTime":"18:00"}`,
		"bad time":         `{"deadline":"2026-04-01","deadlineTime":"6pm"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := env.postJSON(t, "/api/v1/submissions/settings", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil)

	require.Equal(t, http.StatusOK, env.get(t, "/api/v1/charts").Code)

	rec := env.get(t, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	out, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(out), `route="GET /api/v1/charts"`)
	assert.Contains(t, string(out), "cohort_population_size")
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(c *Config, _ *Dependencies) {
		c.RateLimitPerMinute = 2
	})

	assert.Equal(t, http.StatusOK, env.get(t, "/live").Code)
	assert.Equal(t, http.StatusOK, env.get(t, "/live").Code)

	rec := env.get(t, "/live")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
}

func TestRequestSizeLimit(t *testing.T) {
	env := newTestEnv(t, func(c *Config, _ *Dependencies) {
		c.MaxUploadBytes = 64
	})

	rec := env.do(t, multipartRequest(t, submissionFields(), "project.zip", bytes.Repeat([]byte("x"), 1024)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, func(c *Config, _ *Dependencies) {
		c.AllowedOrigins = []string{"https://dashboard.example.com"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/charts", nil)
	req.Header.Set("Origin", "https://dashboard.example.com")
	rec := env.do(t, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://dashboard.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/live", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = env.do(t, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{shared.ErrStudentNotFound, http.StatusNotFound},
		{shared.ErrDeadlinePassed, http.StatusConflict},
		{shared.ErrFileTooLarge, http.StatusBadRequest},
		{shared.ErrInvalidSettings, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		status, _, _ := classifyError(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}
}

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/alem-hub/cognitive-insights/internal/application/command"
	"github.com/alem-hub/cognitive-insights/internal/application/query"
	"github.com/alem-hub/cognitive-insights/internal/domain/shared"
	"github.com/alem-hub/cognitive-insights/pkg/logger"
	"github.com/alem-hub/cognitive-insights/pkg/validate"
)

// multipartMemory is the part of an upload kept in memory; the rest spills
// to temporary files.
const multipartMemory = 32 << 20

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "Cognitive Insights API",
		"version": s.config.Version,
		"endpoints": map[string]string{
			"health":      "/health",
			"students":    "/api/v1/students",
			"charts":      "/api/v1/charts",
			"predict":     "/api/v1/predict",
			"submissions": "/api/v1/submissions",
			"settings":    "/api/v1/submissions/settings",
		},
	})
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"healthy": true,
		"uptime":  s.Uptime().Round(time.Second).String(),
		"version": s.config.Version,
	})
}

// handleReady handles the readiness probe endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "not_ready",
				"message": status.Message,
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint.
func (s *Server) handleLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// COHORT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetStudents handles GET /api/v1/students.
func (s *Server) handleGetStudents(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStudentsHandler == nil {
		writeNotConfigured(w, "Students")
		return
	}

	result, err := s.deps.GetStudentsHandler.Handle(r.Context(), query.GetStudentsQuery{
		Page:         getQueryParamInt(r, "page", 0),
		Limit:        getQueryParamInt(r, "limit", 0),
		Search:       r.URL.Query().Get("search"),
		IncludeStats: getQueryParamBool(r, "stats"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleGetStudent handles GET /api/v1/students/{id}.
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStudentHandler == nil {
		writeNotConfigured(w, "Student")
		return
	}

	record, err := s.deps.GetStudentHandler.Handle(r.Context(), query.GetStudentQuery{
		StudentID: r.PathValue("id"),
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// handleGetCharts handles GET /api/v1/charts.
func (s *Server) handleGetCharts(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetChartsHandler == nil {
		writeNotConfigured(w, "Charts")
		return
	}

	charts, err := s.deps.GetChartsHandler.Handle(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, charts)
}

// handlePredict handles POST /api/v1/predict.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if s.deps.PredictScoreHandler == nil {
		writeNotConfigured(w, "Predict")
		return
	}

	var q query.PredictScoreQuery
	if err := decodeJSON(r.Body, &q); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			writeJSONError(w, http.StatusBadRequest, "validation_error", "Missing or invalid field: "+typeErr.Field)
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	prediction, err := s.deps.PredictScoreHandler.Handle(r.Context(), q)
	if err != nil {
		var fieldErrs validate.FieldErrors
		if errors.As(err, &fieldErrs) {
			writeJSONError(w, http.StatusBadRequest, "validation_error", "Missing or invalid field: "+firstField(fieldErrs))
			return
		}
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, prediction)
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleSubmitProject handles POST /api/v1/submissions (multipart form).
func (s *Server) handleSubmitProject(w http.ResponseWriter, r *http.Request) {
	if s.deps.SubmitProjectHandler == nil {
		writeNotConfigured(w, "Submission")
		return
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Expected a multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	cmd := command.SubmitProjectCommand{
		StudentName: r.FormValue("studentName"),
		StudentID:   r.FormValue("studentId"),
		Email:       r.FormValue("email"),
		Comments:    r.FormValue("comments"),
	}

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		_ = file.Close()
		cmd.FileName = header.Filename
		cmd.FileSize = header.Size
	case !errors.Is(err, http.ErrMissingFile):
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Unreadable file part")
		return
	}

	result, err := s.deps.SubmitProjectHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleListSubmissions handles GET /api/v1/submissions.
func (s *Server) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListSubmissionsHandler == nil {
		writeNotConfigured(w, "Submissions")
		return
	}

	subs, err := s.deps.ListSubmissionsHandler.Handle(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"submissions": subs})
}

// handleGetSettings handles GET /api/v1/submissions/settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetSettingsHandler == nil {
		writeNotConfigured(w, "Settings")
		return
	}

	settings, err := s.deps.GetSettingsHandler.Handle(r.Context())
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"settings": settings,
	})
}

// handleUpdateSettings handles POST /api/v1/submissions/settings.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if s.deps.UpdateSettingsHandler == nil {
		writeNotConfigured(w, "Settings")
		return
	}

	var cmd command.UpdateSettingsCommand
	if err := decodeJSON(r.Body, &cmd); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	settings, err := s.deps.UpdateSettingsHandler.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Settings updated successfully",
		"settings": settings,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// APIError is the error part of the response envelope.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope of every failed request.
type ErrorResponse struct {
	Success   bool      `json:"success"`
	Error     *APIError `json:"error"`
	RequestID string    `json:"requestId,omitempty"`
}

// writeJSON writes data as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeJSONError writes an error JSON response.
func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	})
}

func writeNotConfigured(w http.ResponseWriter, what string) {
	writeJSONError(w, http.StatusNotImplemented, "not_implemented", what+" handler not configured")
}

// writeDomainError maps domain errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message := classifyError(err)

	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error("request failed", logger.String("path", r.URL.Path), logger.Err(err))
	} else {
		log.Debug("request rejected", logger.String("path", r.URL.Path), logger.Err(err))
	}

	writeJSON(w, status, ErrorResponse{
		Success:   false,
		Error:     &APIError{Code: code, Message: message},
		RequestID: getRequestID(r.Context()),
	})
}

func classifyError(err error) (status int, code, message string) {
	var domainErr *shared.DomainError
	var fieldErrs validate.FieldErrors

	switch {
	case shared.IsExpired(err):
		return http.StatusConflict, "deadline_passed", errorMessage(err, "Submission deadline has passed")
	case errors.As(err, &fieldErrs):
		return http.StatusBadRequest, "validation_error", fieldErrs.Error()
	case shared.IsValidation(err):
		return http.StatusBadRequest, "validation_error", errorMessage(err, "Invalid request")
	case shared.IsNotFound(err):
		return http.StatusNotFound, "not_found", errorMessage(err, "Not found")
	case errors.As(err, &domainErr):
		return http.StatusInternalServerError, "internal_error", domainErr.Message
	default:
		return http.StatusInternalServerError, "internal_error", "An unexpected error occurred"
	}
}

// errorMessage renders err without the domain and operation prefix of the
// DomainError it wraps.
func errorMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) && domainErr.Message != "" {
		return strings.Replace(err.Error(), domainErr.Error(), domainErr.Message, 1)
	}
	return err.Error()
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func decodeJSON(body io.Reader, dest any) error {
	if body == nil {
		return io.EOF
	}
	return json.NewDecoder(body).Decode(dest)
}

// getQueryParamInt extracts an integer query parameter with a default value.
func getQueryParamInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	var result int
	if _, err := fmt.Sscanf(value, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// getQueryParamBool extracts a boolean query parameter.
func getQueryParamBool(r *http.Request, key string) bool {
	value := strings.ToLower(r.URL.Query().Get(key))
	return value == "true" || value == "1" || value == "yes"
}

func firstField(errs validate.FieldErrors) string {
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return keys[0]
}

// internal/web/handlers_test.go
package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-assessment/internal/assessment"
	"sentinel-assessment/internal/audit"
	"sentinel-assessment/internal/common/config"
	apperrors "sentinel-assessment/internal/common/errors"
	"sentinel-assessment/internal/common/logger"
	"sentinel-assessment/internal/report"
)

// ==========================
// Test Helper Functions
// ==========================

var fakePDF = []byte("%PDF-1.3 fake")

type fakeReports struct {
	calls []report.Report
	err   error
}

func (f *fakeReports) Generate(_ context.Context, rep report.Report) ([]byte, error) {
	f.calls = append(f.calls, rep)
	if f.err != nil {
		return nil, f.err
	}
	return fakePDF, nil
}

type fakeRecorder struct {
	outcomes []audit.Outcome
	err      error
}

func (f *fakeRecorder) Record(_ context.Context, outcome audit.Outcome) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.outcomes = append(f.outcomes, outcome)
	return "9b2e4f7a-1c0d-4e55-8a10-2f3b6c7d8e90", nil
}

type fakeStats struct {
	counts map[assessment.RiskTier]int
}

func (f fakeStats) TierCounts(context.Context) (map[assessment.RiskTier]int, error) {
	return f.counts, nil
}

func createTestConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "sentinel-assessment", Version: "1.2.0"},
		Server: config.ServerConfig{Port: 8080, Mode: "test"},
		Upload: config.UploadConfig{MaxBytes: 1 << 20, PreviewRows: 2},
	}
}

type testEnv struct {
	server   *Server
	reports  *fakeReports
	recorder *fakeRecorder
}

func newTestEnv(t *testing.T, cfg *config.Config, mutate func(*Deps)) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{reports: &fakeReports{}, recorder: &fakeRecorder{}}
	deps := Deps{
		Reports:  env.reports,
		Recorder: env.recorder,
		Logger:   logger.NewTestLogger(t),
	}
	if mutate != nil {
		mutate(&deps)
	}

	server, err := NewServer(cfg, deps)
	require.NoError(t, err)
	env.server = server
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(w, req)
	return w
}

func highAnswers() url.Values {
	return url.Values{
		"stress":   {"Almost all the time"},
		"support":  {"Not at all"},
		"coping":   {"Substances or harmful habits"},
		"pressure": {"Overwhelming"},
	}
}

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func postJSON(t *testing.T, path string, body interface{}) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartUpload(t *testing.T, path, field, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no file"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type apiErrorBody struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		Retryable bool   `json:"retryable"`
	} `json:"error"`
}

func decodeAPIError(t *testing.T, w *httptest.ResponseRecorder) apiErrorBody {
	t.Helper()
	var body apiErrorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

const studentsCSV = "student_id,attendance,grade\ns1,0.91,A\ns2,0.62,C\ns3,0.40,D\n"

// ==========================
// Page Tests
// ==========================

func TestPages_Render(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	tests := []struct {
		path     string
		contains []string
	}{
		{path: "/", contains: []string{"Sentinel-AI", `href="/" class="active"`}},
		{path: "/assessment", contains: []string{"Rarely or never", "Substances or harmful habits", `name="pressure"`}},
		{path: "/upload", contains: []string{`enctype="multipart/form-data"`, "first 2 rows"}},
		{path: "/about", contains: []string{"Version 1.2.0", "No model artifact is loaded."}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := env.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, w.Code)
			for _, s := range tt.contains {
				assert.Contains(t, w.Body.String(), s)
			}
			assert.NotEmpty(t, w.Header().Get(requestIDHeader))
		})
	}
}

func TestSubmitAssessment_HighRisk(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	w := env.do(postForm("/assessment", highAnswers()))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, ">HIGH<")
	assert.Contains(t, body, "background: "+report.AccentFor(assessment.TierHigh).Hex())
	assert.Contains(t, body, "Total score: <strong>12</strong> out of 12")
	assert.Contains(t, body, `action="/assessment/report"`)

	require.Len(t, env.recorder.outcomes, 1)
	assert.Equal(t, audit.Outcome{Total: 12, Tier: assessment.TierHigh, Channel: audit.ChannelWeb}, env.recorder.outcomes[0])
}

func TestSubmitAssessment_InvalidAnswerKeepsSelection(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	form := highAnswers()
	form.Set("coping", "Meditation")
	w := env.do(postForm("/assessment", form))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Please choose one of the listed options")
	assert.Contains(t, w.Body.String(), `value="Almost all the time" checked`)
	assert.Empty(t, env.recorder.outcomes)
}

func TestSubmitAssessment_RecorderFailureDoesNotFailRequest(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)
	env.recorder.err = apperrors.NewAuditWriteFailedError(errors.New("connection refused"))

	w := env.do(postForm("/assessment", highAnswers()))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDownloadReport(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	w := env.do(postForm("/assessment/report", highAnswers()))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Header().Get("Content-Disposition"), report.Filename)
	assert.Equal(t, fakePDF, w.Body.Bytes())

	require.Len(t, env.reports.calls, 1)
	assert.Equal(t, assessment.TierHigh, env.reports.calls[0].Tier)
	assert.Empty(t, env.recorder.outcomes, "downloading a report must not record a second outcome")
}

func TestDownloadReport_MalformedForm(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/assessment/report", strings.NewReader("stress=%zz&support=Rarely"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := env.do(req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Input validation failed")
	assert.NotContains(t, w.Body.String(), "Please choose one of the listed options")
	assert.Empty(t, env.reports.calls)
}

func TestDownloadReport_RenderFailure(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)
	env.reports.err = apperrors.NewResourceUnavailableError("font", errors.New("open DejaVuSans.ttf: no such file"))

	w := env.do(postForm("/assessment/report", highAnswers()))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "required resource is unavailable")
	assert.Contains(t, w.Body.String(), ">HIGH<")
}

func TestSubmitUpload(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	w := env.do(multipartUpload(t, "/upload", "file", "students.csv", studentsCSV))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "File uploaded successfully: <strong>students.csv</strong>")
	assert.Contains(t, body, "<th>attendance</th>")
	assert.Contains(t, body, "<td>s2</td>")
	assert.NotContains(t, body, "<td>s3</td>")
	assert.Contains(t, body, "Showing the first 2 rows.")
}

func TestSubmitUpload_Errors(t *testing.T) {
	small := createTestConfig()
	small.Upload.MaxBytes = 64

	tests := []struct {
		name       string
		cfg        *config.Config
		req        func(t *testing.T) *http.Request
		wantStatus int
		wantText   string
	}{
		{
			name: "missing file",
			cfg:  createTestConfig(),
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "/upload", "", "", "")
			},
			wantStatus: http.StatusBadRequest,
			wantText:   "Please choose a CSV file to upload",
		},
		{
			name: "empty file",
			cfg:  createTestConfig(),
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "/upload", "file", "empty.csv", "")
			},
			wantStatus: http.StatusBadRequest,
			wantText:   "could not be read as comma-separated values",
		},
		{
			name: "too large",
			cfg:  small,
			req: func(t *testing.T) *http.Request {
				return multipartUpload(t, "/upload", "file", "big.csv", strings.Repeat(studentsCSV, 10))
			},
			wantStatus: http.StatusRequestEntityTooLarge,
			wantText:   "exceeds the 64 byte limit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, tt.cfg, nil)
			w := env.do(tt.req(t))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantText)
		})
	}
}

func TestAboutPage_TierCounts(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), func(d *Deps) {
		d.Stats = fakeStats{counts: map[assessment.RiskTier]int{assessment.TierHigh: 4, assessment.TierLow: 7}}
	})

	w := env.do(httptest.NewRequest(http.MethodGet, "/about", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<td>HIGH</td><td>4</td>")
	assert.Contains(t, w.Body.String(), "<td>MEDIUM</td><td>0</td>")
	assert.Contains(t, w.Body.String(), "<td>LOW</td><td>7</td>")
}

// ==========================
// API Tests
// ==========================

func TestAPIQuestions(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	w := env.do(httptest.NewRequest(http.MethodGet, "/api/v1/questions", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Questions  []assessment.Question `json:"questions"`
		Thresholds map[string]int        `json:"thresholds"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Questions, 4)
	assert.Equal(t, map[string]int{"medium": 5, "high": 9, "max": 12}, body.Thresholds)
}

func TestAPIScore(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	w := env.do(postJSON(t, "/api/v1/assessments", map[string]string{
		"stress":   "Frequently",
		"support":  "Rarely",
		"coping":   "Distraction (sleep, entertainment)",
		"pressure": "Somewhat manageable",
	}))
	require.Equal(t, http.StatusOK, w.Code)

	var body ScoreResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 6, body.Total)
	assert.Equal(t, assessment.TierMedium, body.Tier)
	assert.Equal(t, 12, body.MaxTotal)
	assert.Len(t, body.Answers, 4)
	assert.Equal(t, "9b2e4f7a-1c0d-4e55-8a10-2f3b6c7d8e90", body.OutcomeID)

	require.Len(t, env.recorder.outcomes, 1)
	assert.Equal(t, audit.ChannelAPI, env.recorder.outcomes[0].Channel)
}

func TestAPIScore_Errors(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	tests := []struct {
		name     string
		body     map[string]string
		wantCode string
	}{
		{
			name:     "missing answer",
			body:     map[string]string{"stress": "Frequently", "support": "Rarely", "coping": "Avoidance or isolation"},
			wantCode: string(apperrors.ErrCodeInputValidationFailed),
		},
		{
			name: "unknown label",
			body: map[string]string{
				"stress":   "Sometimes",
				"support":  "Rarely",
				"coping":   "Avoidance or isolation",
				"pressure": "Overwhelming",
			},
			wantCode: string(apperrors.ErrCodeInvalidAnswer),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(postJSON(t, "/api/v1/assessments", tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)

			body := decodeAPIError(t, w)
			assert.Equal(t, tt.wantCode, body.Error.Code)
			assert.False(t, body.Error.Retryable)
		})
	}
	assert.Empty(t, env.recorder.outcomes)
}

func TestAPIScore_WithoutRecorder(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), func(d *Deps) { d.Recorder = nil })

	w := env.do(postJSON(t, "/api/v1/assessments", map[string]string{
		"stress":   "Rarely or never",
		"support":  "Yes, strongly",
		"coping":   "Healthy activities (exercise, talking, hobbies)",
		"pressure": "Very manageable",
	}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "outcomeId")
}

func TestAPIReport(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	w := env.do(postJSON(t, "/api/v1/reports", map[string]string{
		"stress":   "Almost all the time",
		"support":  "Not at all",
		"coping":   "Substances or harmful habits",
		"pressure": "Overwhelming",
	}))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, fakePDF, w.Body.Bytes())
}

func TestAPIReport_RenderFailureIsRetryable(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)
	env.reports.err = apperrors.NewResourceUnavailableError("font", errors.New("missing"))

	w := env.do(postJSON(t, "/api/v1/reports", map[string]string{
		"stress":   "Almost all the time",
		"support":  "Not at all",
		"coping":   "Substances or harmful habits",
		"pressure": "Overwhelming",
	}))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	body := decodeAPIError(t, w)
	assert.Equal(t, string(apperrors.ErrCodeResourceUnavailable), body.Error.Code)
	assert.True(t, body.Error.Retryable)
}

func TestAPIUploadPreview(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	w := env.do(multipartUpload(t, "/api/v1/uploads/preview", "file", "students.csv", studentsCSV))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Filename  string     `json:"filename"`
		Header    []string   `json:"header"`
		Rows      [][]string `json:"rows"`
		TotalRows int        `json:"totalRows"`
		Truncated bool       `json:"truncated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "students.csv", body.Filename)
	assert.Equal(t, []string{"student_id", "attendance", "grade"}, body.Header)
	assert.Len(t, body.Rows, 2)
	assert.Equal(t, 3, body.TotalRows)
	assert.True(t, body.Truncated)
}

func TestAPIUploadPreview_MissingFile(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	w := env.do(multipartUpload(t, "/api/v1/uploads/preview", "", "", ""))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, string(apperrors.ErrCodeUploadMissing), decodeAPIError(t, w).Error.Code)
}

// ==========================
// Health Tests
// ==========================

func TestHealth(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	w := env.do(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		required   bool
		checks     map[string]ReadinessCheck
		wantStatus int
	}{
		{
			name:       "no dependencies",
			wantStatus: http.StatusOK,
		},
		{
			name: "healthy dependency",
			checks: map[string]ReadinessCheck{
				"redis": func(context.Context) error { return nil },
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "failing dependency",
			checks: map[string]ReadinessCheck{
				"postgres": func(context.Context) error { return errors.New("connection refused") },
			},
			wantStatus: http.StatusServiceUnavailable,
		},
		{
			name:       "required model missing",
			required:   true,
			wantStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := createTestConfig()
			cfg.Model.Required = tt.required
			env := newTestEnv(t, cfg, func(d *Deps) { d.Checks = tt.checks })

			w := env.do(httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRequestIDPropagation(t *testing.T) {
	env := newTestEnv(t, createTestConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-123")
	w := env.do(req)

	assert.Equal(t, "req-123", w.Header().Get(requestIDHeader))
}

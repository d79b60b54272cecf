// internal/web/pages.go
package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"sentinel-assessment/internal/assessment"
	"sentinel-assessment/internal/audit"
	apperrors "sentinel-assessment/internal/common/errors"
	"sentinel-assessment/internal/common/metrics"
	"sentinel-assessment/internal/report"
	"sentinel-assessment/internal/upload"
)

const uploadField = "file"

// answersForm is the questionnaire as posted by the HTML form.
type answersForm struct {
	Stress   string `form:"stress"`
	Support  string `form:"support"`
	Coping   string `form:"coping"`
	Pressure string `form:"pressure"`
}

func (f answersForm) selected() map[string]string {
	return map[string]string{
		string(assessment.QuestionStress):   f.Stress,
		string(assessment.QuestionSupport):  f.Support,
		string(assessment.QuestionCoping):   f.Coping,
		string(assessment.QuestionPressure): f.Pressure,
	}
}

// page fills the fields every template expects.
func (s *Server) page(title, active string, data gin.H) gin.H {
	if data == nil {
		data = gin.H{}
	}
	data["Title"] = title
	data["Active"] = active
	if _, ok := data["Error"]; !ok {
		data["Error"] = ""
	}
	return data
}

// renderError re-renders the current page with the error message and the
// status matching its code.
func (s *Server) renderError(c *gin.Context, tmpl, title, active string, data gin.H, err error) {
	stdErr := s.observeError(c, err)
	if data == nil {
		data = gin.H{}
	}
	data["Error"] = stdErr.Message
	c.HTML(apperrors.HTTPStatus(stdErr.Code), tmpl, s.page(title, active, data))
}

func (s *Server) observeError(c *gin.Context, err error) *apperrors.StandardError {
	stdErr := apperrors.Normalize(err)
	metrics.RequestErrors.WithLabelValues(string(stdErr.Code)).Inc()
	s.logger.Warn("request failed", map[string]interface{}{
		"requestId": c.GetString(requestIDKey),
		"errorCode": string(stdErr.Code),
		"category":  apperrors.GetErrorCategory(stdErr.Code),
		"details":   stdErr.Details,
	})
	return stdErr
}

// score parses and scores answers, then records the anonymous outcome when a
// recorder is configured. Recording failures never fail the request.
func (s *Server) score(ctx context.Context, stress, support, coping, pressure, channel string) (assessment.Result, string, error) {
	a, err := assessment.ParseAnswers(stress, support, coping, pressure)
	if err != nil {
		return assessment.Result{}, "", err
	}
	result := assessment.Score(a)

	metrics.AssessmentsScored.WithLabelValues(string(result.Tier), channel).Inc()
	s.deps.Obs.RecordAssessment(ctx, channel, string(result.Tier))

	var outcomeID string
	if s.deps.Recorder != nil {
		id, err := s.deps.Recorder.Record(ctx, audit.Outcome{Total: result.Total, Tier: result.Tier, Channel: channel})
		if err != nil {
			s.logger.Warn("failed to record assessment outcome", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			outcomeID = id
		}
	}

	return result, outcomeID, nil
}

func (s *Server) homePage(c *gin.Context) {
	c.HTML(http.StatusOK, "home.tmpl", s.page("Home", "home", nil))
}

func (s *Server) assessmentData(form answersForm) gin.H {
	return gin.H{
		"Questions": assessment.Questions(),
		"Selected":  form.selected(),
	}
}

func (s *Server) assessmentPage(c *gin.Context) {
	c.HTML(http.StatusOK, "assessment.tmpl", s.page("Manual Assessment", "assessment", s.assessmentData(answersForm{})))
}

func (s *Server) submitAssessment(c *gin.Context) {
	var form answersForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderError(c, "assessment.tmpl", "Manual Assessment", "assessment", s.assessmentData(form),
			apperrors.NewInputValidationFailedError(err.Error()))
		return
	}

	result, _, err := s.score(c.Request.Context(), form.Stress, form.Support, form.Coping, form.Pressure, audit.ChannelWeb)
	if err != nil {
		s.renderError(c, "assessment.tmpl", "Manual Assessment", "assessment", s.assessmentData(form), err)
		return
	}

	c.HTML(http.StatusOK, "result.tmpl", s.page("Result", "assessment", resultData(result)))
}

func resultData(result assessment.Result) gin.H {
	accent := report.AccentFor(result.Tier).Hex()
	return gin.H{
		"Result":      result,
		"AccentStyle": template.CSS("background: " + accent),
	}
}

// downloadReport rescores the posted answers and streams the PDF. The
// answers are not recorded a second time.
func (s *Server) downloadReport(c *gin.Context) {
	var form answersForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderError(c, "assessment.tmpl", "Manual Assessment", "assessment", s.assessmentData(form),
			apperrors.NewInputValidationFailedError(err.Error()))
		return
	}

	a, err := assessment.ParseAnswers(form.Stress, form.Support, form.Coping, form.Pressure)
	if err != nil {
		s.renderError(c, "assessment.tmpl", "Manual Assessment", "assessment", s.assessmentData(form), err)
		return
	}
	result := assessment.Score(a)

	pdf, err := s.deps.Reports.Generate(c.Request.Context(), report.New(result))
	if err != nil {
		s.renderError(c, "result.tmpl", "Result", "assessment", resultData(result), err)
		return
	}

	sendPDF(c, pdf)
}

func sendPDF(c *gin.Context, pdf []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", report.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, report.ContentType, pdf)
}

func (s *Server) uploadData(preview *upload.Preview) gin.H {
	return gin.H{
		"PreviewRows": s.cfg.Upload.PreviewRows,
		"Preview":     preview,
	}
}

func (s *Server) uploadPage(c *gin.Context) {
	c.HTML(http.StatusOK, "upload.tmpl", s.page("Upload File", "upload", s.uploadData(nil)))
}

func (s *Server) submitUpload(c *gin.Context) {
	preview, err := s.readUpload(c)
	if err != nil {
		metrics.UploadsPreviewed.WithLabelValues("failed").Inc()
		s.renderError(c, "upload.tmpl", "Upload File", "upload", s.uploadData(nil), err)
		return
	}

	metrics.UploadsPreviewed.WithLabelValues("ok").Inc()
	c.HTML(http.StatusOK, "upload.tmpl", s.page("Upload File", "upload", s.uploadData(preview)))
}

// readUpload enforces the size limit and parses the multipart file field.
func (s *Server) readUpload(c *gin.Context) (*upload.Preview, error) {
	limit := s.cfg.Upload.MaxBytes
	if c.Request.ContentLength > limit {
		return nil, apperrors.NewUploadTooLargeError(limit)
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return nil, apperrors.NewUploadTooLargeError(limit)
		case errors.Is(err, http.ErrMissingFile):
			return nil, apperrors.NewUploadMissingError(uploadField)
		default:
			return nil, apperrors.NewUploadParseError("", err)
		}
	}

	f, err := header.Open()
	if err != nil {
		return nil, apperrors.NewUploadParseError(header.Filename, err)
	}
	defer f.Close()

	return upload.ReadPreview(f, header.Filename, s.cfg.Upload.PreviewRows)
}

func (s *Server) aboutPage(c *gin.Context) {
	data := gin.H{
		"Version":    s.cfg.App.Version,
		"Model":      s.deps.Model.Status(),
		"Tiers":      []assessment.RiskTier{assessment.TierLow, assessment.TierMedium, assessment.TierHigh},
		"TierCounts": map[assessment.RiskTier]int{},
	}

	if s.deps.Stats != nil {
		counts, err := s.deps.Stats.TierCounts(c.Request.Context())
		if err != nil {
			s.logger.Warn("failed to load outcome statistics", map[string]interface{}{"error": err.Error()})
		} else {
			data["TierCounts"] = counts
		}
	}

	c.HTML(http.StatusOK, "about.tmpl", s.page("About System", "about", data))
}

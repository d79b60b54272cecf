// internal/web/api.go
package web

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"sentinel-assessment/internal/assessment"
	"sentinel-assessment/internal/audit"
	apperrors "sentinel-assessment/internal/common/errors"
	"sentinel-assessment/internal/common/metrics"
	"sentinel-assessment/internal/report"
)

// AnswersRequest is the JSON body accepted by the scoring and report endpoints.
type AnswersRequest struct {
	Stress   string `json:"stress" binding:"required"`
	Support  string `json:"support" binding:"required"`
	Coping   string `json:"coping" binding:"required"`
	Pressure string `json:"pressure" binding:"required"`
}

// ScoreResponse is returned by POST /api/v1/assessments.
type ScoreResponse struct {
	assessment.Result
	OutcomeID string `json:"outcomeId,omitempty"`
}

func (s *Server) apiError(c *gin.Context, err error) {
	stdErr := s.observeError(c, err)
	c.AbortWithStatusJSON(apperrors.HTTPStatus(stdErr.Code), gin.H{
		"error": gin.H{
			"code":      stdErr.Code,
			"message":   stdErr.Message,
			"retryable": stdErr.Retryable,
		},
	})
}

func (s *Server) bindAnswers(c *gin.Context) (*AnswersRequest, bool) {
	var req AnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.apiError(c, apperrors.NewInputValidationFailedError(err.Error()))
		return nil, false
	}
	return &req, true
}

func (s *Server) apiQuestions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"questions": assessment.Questions(),
		"thresholds": gin.H{
			"medium": assessment.MediumRiskThreshold,
			"high":   assessment.HighRiskThreshold,
			"max":    assessment.MaxTotal,
		},
	})
}

func (s *Server) apiScore(c *gin.Context) {
	req, ok := s.bindAnswers(c)
	if !ok {
		return
	}

	result, outcomeID, err := s.score(c.Request.Context(), req.Stress, req.Support, req.Coping, req.Pressure, audit.ChannelAPI)
	if err != nil {
		s.apiError(c, err)
		return
	}

	c.JSON(http.StatusOK, ScoreResponse{Result: result, OutcomeID: outcomeID})
}

func (s *Server) apiReport(c *gin.Context) {
	req, ok := s.bindAnswers(c)
	if !ok {
		return
	}

	a, err := assessment.ParseAnswers(req.Stress, req.Support, req.Coping, req.Pressure)
	if err != nil {
		s.apiError(c, err)
		return
	}

	pdf, err := s.deps.Reports.Generate(c.Request.Context(), report.New(assessment.Score(a)))
	if err != nil {
		s.apiError(c, err)
		return
	}

	sendPDF(c, pdf)
}

func (s *Server) apiUploadPreview(c *gin.Context) {
	preview, err := s.readUpload(c)
	if err != nil {
		metrics.UploadsPreviewed.WithLabelValues("failed").Inc()
		s.apiError(c, err)
		return
	}

	metrics.UploadsPreviewed.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{
		"filename":  preview.Filename,
		"header":    preview.Header,
		"rows":      preview.Rows,
		"totalRows": preview.TotalRows,
		"columns":   preview.Columns,
		"truncated": preview.Truncated(),
	})
}

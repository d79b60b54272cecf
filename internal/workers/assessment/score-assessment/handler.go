// internal/workers/assessment/score-assessment/handler.go
package scoreassessment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	"sentinel-assessment/internal/assessment"
	"sentinel-assessment/internal/audit"
	"sentinel-assessment/internal/common/errors"
	"sentinel-assessment/internal/common/logger"
	"sentinel-assessment/internal/common/metrics"
	"sentinel-assessment/internal/common/observability"
	"sentinel-assessment/internal/common/validation"
)

const (
	TaskType = "score-assessment"
)

var inputValidator = validation.MustValidator(inputSchema)

type Handler struct {
	config       *Config
	recorder     audit.Recorder
	obs          *observability.Observability
	logger       logger.Logger
	errorHandler *errors.ErrorHandler
}

// NewHandler builds the worker handler. recorder may be nil.
func NewHandler(config *Config, recorder audit.Recorder, obs *observability.Observability, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		recorder:     recorder,
		obs:          obs,
		logger:       log,
		errorHandler: errors.NewErrorHandler(log),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.process(ctx, job.Variables)
	if err != nil {
		h.recordFailure(ctx, err, start)
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	if err := h.completeJob(ctx, client, job, output); err != nil {
		h.recordFailure(ctx, err, start)
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, "success")
	h.obs.RecordJobDuration(ctx, time.Since(start), "success")
}

func (h *Handler) process(ctx context.Context, variables string) (*Output, error) {
	if result := inputValidator.ValidateJSON([]byte(variables)); !result.Valid {
		return nil, result.Err()
	}

	var input Input
	if err := json.Unmarshal([]byte(variables), &input); err != nil {
		return nil, errors.NewInputValidationFailedError(err.Error())
	}

	return h.Execute(ctx, &input)
}

// Execute scores the answers and optionally records the outcome.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	a, err := assessment.ParseAnswers(input.Stress, input.Support, input.Coping, input.Pressure)
	if err != nil {
		return nil, err
	}

	result := assessment.Score(a)
	output := &Output{
		RiskTotal:   result.Total,
		RiskTier:    string(result.Tier),
		Explanation: result.Explanation,
		Answers:     result.Answers,
	}

	metrics.AssessmentsScored.WithLabelValues(string(result.Tier), audit.ChannelCamunda).Inc()
	h.obs.RecordAssessment(ctx, audit.ChannelCamunda, string(result.Tier))

	if h.recorder != nil && h.config.RecordOutcomes {
		id, err := h.recorder.Record(ctx, audit.Outcome{
			Total:   result.Total,
			Tier:    result.Tier,
			Channel: audit.ChannelCamunda,
		})
		if err != nil {
			return nil, err
		}
		output.OutcomeID = id
	}

	h.logger.Info("assessment scored", map[string]interface{}{
		"riskTotal": output.RiskTotal,
		"riskTier":  output.RiskTier,
		"outcomeId": output.OutcomeID,
	})

	return output, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func (h *Handler) recordFailure(ctx context.Context, err error, start time.Time) {
	code := errors.Normalize(err).Code
	metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(code)).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(start).Seconds())
	h.obs.RecordJobProcessed(ctx, "failed")
	h.obs.RecordJobDuration(ctx, time.Since(start), "failed")
}

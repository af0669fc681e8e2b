package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/distriventas/dv_api/internal/jobs"
	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/service"
)

// RecommendationWorker drains the pending job list and runs recommendation
// generation for each job.
type RecommendationWorker struct {
	queue    *jobs.RedisQueue
	recSvc   *service.RecommendationService
	interval time.Duration
}

// NewRecommendationWorker constructs a RecommendationWorker.
func NewRecommendationWorker(queue *jobs.RedisQueue, recSvc *service.RecommendationService, interval time.Duration) *RecommendationWorker {
	return &RecommendationWorker{
		queue:    queue,
		recSvc:   recSvc,
		interval: interval,
	}
}

// Start begins the polling loop until context is canceled.
func (w *RecommendationWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting recommendation worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.drain(ctx)
		case <-ctx.Done():
			log.Info().Msg("Recommendation worker stopped")
			return
		}
	}
}

// drain processes every pending job, respecting cancellation between jobs.
func (w *RecommendationWorker) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		id, ok, err := w.queue.Dequeue(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to dequeue recommendation job")
			return
		}
		if !ok {
			return
		}
		w.process(ctx, id)
	}
}

func (w *RecommendationWorker) process(ctx context.Context, id string) {
	job, err := w.queue.Get(ctx, id)
	if err != nil || job == nil {
		log.Error().Err(err).Str("job_id", id).Msg("Dequeued job could not be loaded")
		return
	}

	now := time.Now()
	job.Status = models.JobActive
	job.Progress = 10
	job.StartedAt = &now
	if err := w.queue.Save(ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", id).Msg("Failed to mark job active")
	}

	// Jobs go through the same cache gate as synchronous reads; a computed
	// payload lands in the cache for subsequent requests.
	result, err := w.recSvc.Generate(ctx, job.Params, false)
	finished := time.Now()
	job.FinishedAt = &finished

	if err != nil {
		job.Status = models.JobFailed
		job.Error = err.Error()
		log.Error().Err(err).Str("job_id", id).Msg("Recommendation job failed")
	} else {
		raw, marshalErr := json.Marshal(result.Payload)
		if marshalErr != nil {
			job.Status = models.JobFailed
			job.Error = marshalErr.Error()
		} else {
			job.Status = models.JobCompleted
			job.Progress = 100
			job.Result = raw
		}
	}

	if err := w.queue.Save(ctx, job); err != nil {
		log.Error().Err(err).Str("job_id", id).Msg("Failed to persist job result")
		return
	}

	log.Info().
		Str("job_id", id).
		Str("status", string(job.Status)).
		Dur("took", finished.Sub(now)).
		Msg("Recommendation job processed")
}

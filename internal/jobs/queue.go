package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/distriventas/dv_api/internal/cache"
	"github.com/distriventas/dv_api/internal/models"
)

// Queue is the capability interface for asynchronous recommendation
// generation. A deployment without a backing queue simply wires nil; the
// handlers surface that as a configuration error, the engine never branches
// on it.
type Queue interface {
	Enqueue(ctx context.Context, params models.RecommendationJobParams) (*models.RecommendationJob, error)
	Get(ctx context.Context, id string) (*models.RecommendationJob, error)
}

const (
	jobKeyPrefix   = "assistant:job:"
	pendingListKey = "assistant:jobs:pending"
	jobRetention   = 24 * time.Hour
)

// RedisQueue is the Redis-backed Queue. Jobs are JSON blobs under
// assistant:job:{id}; pending job IDs wait on a list the worker pops.
type RedisQueue struct {
	redis *cache.RedisClient
}

// NewRedisQueue creates a queue on top of an existing Redis client.
func NewRedisQueue(redisClient *cache.RedisClient) *RedisQueue {
	return &RedisQueue{redis: redisClient}
}

// Enqueue registers a queued job and pushes it for the worker.
func (q *RedisQueue) Enqueue(ctx context.Context, params models.RecommendationJobParams) (*models.RecommendationJob, error) {
	job := &models.RecommendationJob{
		ID:        uuid.New().String(),
		Status:    models.JobQueued,
		Params:    params,
		CreatedAt: time.Now(),
	}
	if err := q.Save(ctx, job); err != nil {
		return nil, err
	}
	if err := q.redis.Client().LPush(ctx, pendingListKey, job.ID).Err(); err != nil {
		return nil, fmt.Errorf("failed to push job to pending list: %w", err)
	}
	return job, nil
}

// Get returns a job by id, or nil when unknown or expired.
func (q *RedisQueue) Get(ctx context.Context, id string) (*models.RecommendationJob, error) {
	raw, err := q.redis.Get(ctx, jobKeyPrefix+id)
	if err != nil {
		if cache.IsNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var job models.RecommendationJob
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job %s: %w", id, err)
	}
	return &job, nil
}

// Dequeue pops the oldest pending job ID. ok is false when the list is empty.
func (q *RedisQueue) Dequeue(ctx context.Context) (string, bool, error) {
	id, err := q.redis.Client().RPop(ctx, pendingListKey).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return id, true, nil
}

// Save persists the job state with the retention TTL.
func (q *RedisQueue) Save(ctx context.Context, job *models.RecommendationJob) error {
	raw, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job %s: %w", job.ID, err)
	}
	return q.redis.Set(ctx, jobKeyPrefix+job.ID, string(raw), jobRetention)
}

package models

import (
	"encoding/json"
	"time"
)

// JobStatus enumerates the lifecycle of a background recommendation job.
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobActive    JobStatus = "active"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// RecommendationJobParams are the generation parameters carried by a job.
// They mirror the query parameters of the synchronous endpoint.
type RecommendationJobParams struct {
	HorizonDays int        `json:"horizonDays,omitempty"`
	RecentDays  int        `json:"recentDays,omitempty"`
	StartDate   *time.Time `json:"startDate,omitempty"`
	EndDate     *time.Time `json:"endDate,omitempty"`
}

// RecommendationJob tracks one asynchronous generation request.
type RecommendationJob struct {
	ID         string                  `json:"jobId"`
	Status     JobStatus               `json:"status"`
	Progress   int                     `json:"progress"`
	Params     RecommendationJobParams `json:"params"`
	Result     json.RawMessage         `json:"result,omitempty"`
	Error      string                  `json:"error,omitempty"`
	CreatedAt  time.Time               `json:"createdAt"`
	StartedAt  *time.Time              `json:"startedAt,omitempty"`
	FinishedAt *time.Time              `json:"finishedAt,omitempty"`
}

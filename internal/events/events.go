// Package events provides Redis pub/sub notifications for job
// lifecycle transitions. Publishing is best-effort: the job record in
// the store is the source of truth, events only exist so external
// consumers can react without polling check.
package events

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BV-BRC/cwe-judge/internal/job"
)

// Channels jobs are announced on.
const (
	JobSubmissionChannel = "job_submission"
	JobCompletionChannel = "job_completion"
)

// Event types carried in JobEvent.Type.
const (
	TypeJobSubmitted = "job_submitted"
	TypeJobCompleted = "job_completed"
)

// JobEvent is the wire form of a lifecycle notification.
type JobEvent struct {
	Type      string `json:"type"`
	JobID     string `json:"job_id"`
	StatusID  int    `json:"status_id"`
	Status    string `json:"status"`
	Timestamp int64  `json:"time"`
}

// Publisher publishes job lifecycle events to Redis.
type Publisher struct {
	redis *redis.Client
}

// NewPublisher creates a new event publisher.
func NewPublisher(redisClient *redis.Client) *Publisher {
	return &Publisher{redis: redisClient}
}

// PublishSubmission announces a freshly enqueued job.
func (p *Publisher) PublishSubmission(ctx context.Context, j *job.Job) error {
	return p.publish(ctx, JobSubmissionChannel, JobEvent{
		Type:     TypeJobSubmitted,
		JobID:    strconv.FormatUint(j.ID, 10),
		StatusID: j.Status.ID(),
		Status:   j.Status.Description(),
	})
}

// PublishCompletion announces a job that reached a terminal verdict.
func (p *Publisher) PublishCompletion(ctx context.Context, j *job.Job) error {
	return p.publish(ctx, JobCompletionChannel, JobEvent{
		Type:     TypeJobCompleted,
		JobID:    strconv.FormatUint(j.ID, 10),
		StatusID: j.Status.ID(),
		Status:   j.Status.Description(),
	})
}

// JobFinished is the worker pool's notification hook. Errors are
// logged and swallowed: a lost event never fails a job whose record
// has already been persisted.
func (p *Publisher) JobFinished(ctx context.Context, j *job.Job) {
	if err := p.PublishCompletion(ctx, j); err != nil {
		log.Printf("events: publish completion for job %d failed: %v", j.ID, err)
	}
}

func (p *Publisher) publish(ctx context.Context, channel string, event JobEvent) error {
	event.Timestamp = time.Now().Unix()
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return p.redis.Publish(ctx, channel, string(data)).Err()
}

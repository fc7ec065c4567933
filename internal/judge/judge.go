// Package judge is the submit/check façade: the thin layer between
// the external surface (HTTP adapter, CLI) and the queue client.
package judge

import (
	"context"
	"fmt"
	"log"
	"strconv"

	"github.com/BV-BRC/cwe-judge/internal/job"
)

// Queue is the subset of the queue client the façade needs.
type Queue interface {
	Create(ctx context.Context, key, queueName string, j *job.Job) error
	Get(ctx context.Context, key string) (*job.Job, bool, error)
}

// Announcer publishes a submission notification. Publishing is
// best-effort; a lost event never fails a submit whose record and
// queue entry are already written.
type Announcer interface {
	PublishSubmission(ctx context.Context, j *job.Job) error
}

// Service implements submit/check over a Queue.
type Service struct {
	queue     Queue
	queueName string
	announcer Announcer
}

// New creates a Service. queueName is the FIFO queue jobs are pushed
// onto.
func New(queue Queue, queueName string) *Service {
	return &Service{queue: queue, queueName: queueName}
}

// WithAnnouncer attaches an optional submission announcer and returns
// the service for chaining.
func (s *Service) WithAnnouncer(a Announcer) *Service {
	s.announcer = a
	return s
}

// Key derives the store key for a job id: its decimal string form.
func Key(id uint64) string {
	return strconv.FormatUint(id, 10)
}

// Submit stores the job record and enqueues it for processing,
// atomically, and returns its id.
func (s *Service) Submit(ctx context.Context, j *job.Job) (uint64, error) {
	if err := s.queue.Create(ctx, Key(j.ID), s.queueName, j); err != nil {
		return 0, fmt.Errorf("judge: submit job %d: %w", j.ID, err)
	}
	if s.announcer != nil {
		if err := s.announcer.PublishSubmission(ctx, j); err != nil {
			log.Printf("judge: publish submission for job %d failed: %v", j.ID, err)
		}
	}
	return j.ID, nil
}

// Check reads a job record by id. found is false iff no record exists
// under that id.
func (s *Service) Check(ctx context.Context, id uint64) (*job.Job, bool, error) {
	j, found, err := s.queue.Get(ctx, Key(id))
	if err != nil {
		return nil, false, fmt.Errorf("judge: check job %d: %w", id, err)
	}
	return j, found, nil
}

// StatusView is the wire projection of a Status inside a CheckResponse.
type StatusView struct {
	ID          int    `json:"id"`
	Description string `json:"description"`
}

// CheckResponse is the stable wire object check returns, keyed by
// token (the job id as a decimal string) rather than by the raw job
// record.
type CheckResponse struct {
	StartedAt     *int64     `json:"started_at,omitempty"`
	FinishedAt    *int64     `json:"finished_at,omitempty"`
	Stdout        string     `json:"stdout"`
	Time          float64    `json:"time"`
	Memory        int64      `json:"memory"`
	Stderr        string     `json:"stderr"`
	Token         string     `json:"token"`
	CompileOutput string     `json:"compile_output"`
	Message       string     `json:"message"`
	Status        StatusView `json:"status"`
}

// ToCheckResponse projects a Job into its wire form.
func ToCheckResponse(j *job.Job) CheckResponse {
	return CheckResponse{
		StartedAt:     j.StartedAt,
		FinishedAt:    j.FinishedAt,
		Stdout:        j.Output.Stdout,
		Time:          j.Output.Time,
		Memory:        j.Output.Memory,
		Stderr:        j.Output.Stderr,
		Token:         Key(j.ID),
		CompileOutput: j.Output.CompileOutput,
		Message:       j.Output.Message,
		Status: StatusView{
			ID:          j.Status.ID(),
			Description: j.Status.Description(),
		},
	}
}

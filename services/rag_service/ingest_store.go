package rag_service

import (
	"log/slog"
	"sync"
	"time"

	"docqa/qa_type"
)

type IngestStatus string

const (
	IngestStarted   IngestStatus = "started"
	IngestCompleted IngestStatus = "completed"
	IngestFailed    IngestStatus = "failed"
)

type IngestJob struct {
	JobID       string                    `json:"job_id"`
	Document    string                    `json:"document"`
	Status      IngestStatus              `json:"status"`
	SubmittedAt string                    `json:"submitted_at"`
	CompletedAt string                    `json:"completed_at,omitempty"`
	Error       string                    `json:"error,omitempty"`
	Metadata    *qa_type.DocumentMetadata `json:"metadata,omitempty"`
}

type TimeProvider interface {
	Now() time.Time
}

type realTimeProvider struct{}

func (rtp *realTimeProvider) Now() time.Time {
	return time.Now()
}

// IngestStore tracks asynchronous ingestion jobs in memory so the
// upload endpoint can return immediately and clients can poll for the
// outcome. Finished jobs are dropped after a retention threshold.
type IngestStore struct {
	mu            sync.RWMutex
	jobs          map[string]*IngestJob
	clock         TimeProvider
	logger        *slog.Logger
	cleanupTicker *time.Ticker
	stopCleanup   chan struct{}
}

func NewIngestStore(logger *slog.Logger) *IngestStore {
	return &IngestStore{
		jobs:   make(map[string]*IngestJob),
		clock:  &realTimeProvider{},
		logger: logger,
	}
}

func (s *IngestStore) Add(jobID, document string) *IngestJob {
	job := &IngestJob{
		JobID:       jobID,
		Document:    document,
		Status:      IngestStarted,
		SubmittedAt: s.clock.Now().Format(time.RFC3339),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[jobID] = job
	return job
}

// Get returns a copy so callers can marshal it without racing a
// concurrent status update.
func (s *IngestStore) Get(jobID string) (IngestJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, exists := s.jobs[jobID]
	if !exists {
		return IngestJob{}, false
	}
	return *job, true
}

func (s *IngestStore) MarkCompleted(jobID string, metadata *qa_type.DocumentMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, exists := s.jobs[jobID]; exists {
		job.Status = IngestCompleted
		job.CompletedAt = s.clock.Now().Format(time.RFC3339)
		job.Metadata = metadata
	}
}

func (s *IngestStore) MarkFailed(jobID string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, exists := s.jobs[jobID]; exists {
		job.Status = IngestFailed
		job.CompletedAt = s.clock.Now().Format(time.RFC3339)
		job.Error = errMsg
	}
}

// StartCleanup starts a goroutine that periodically drops jobs whose
// completion is older than threshold.
func (s *IngestStore) StartCleanup(threshold, cleanupInterval time.Duration) {
	s.stopCleanup = make(chan struct{})
	s.cleanupTicker = time.NewTicker(cleanupInterval)

	go func() {
		for {
			select {
			case <-s.cleanupTicker.C:
				s.performCleanup(threshold)
			case <-s.stopCleanup:
				s.cleanupTicker.Stop()
				return
			}
		}
	}()
}

func (s *IngestStore) StopCleanup() {
	if s.stopCleanup != nil {
		close(s.stopCleanup)
	}
}

func (s *IngestStore) performCleanup(threshold time.Duration) {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for jobID, job := range s.jobs {
		if job.CompletedAt == "" {
			continue
		}
		completedAt, err := time.Parse(time.RFC3339, job.CompletedAt)
		if err == nil && now.Sub(completedAt) > threshold {
			delete(s.jobs, jobID)
			s.logger.Debug("Dropped expired ingest job",
				slog.String("job_id", jobID))
		}
	}
}

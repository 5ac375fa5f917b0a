package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coastaloak/livedeck/internal/model"
	"github.com/coastaloak/livedeck/internal/repository"
)

const (
	auditQueueSize    = 256
	auditWriteTimeout = 5 * time.Second
)

// AuditService appends lifecycle events to the audit log as a best-effort
// side channel. Record never blocks and never fails the caller: entries are
// handed to a background worker, and a full queue or a failed write is
// logged locally and otherwise dropped.
type AuditService struct {
	repo    repository.AuditRepository
	queue   chan *model.AuditRecord
	pending sync.WaitGroup
	stopped chan struct{}
	once    sync.Once
}

func NewAuditService(repo repository.AuditRepository) *AuditService {
	s := &AuditService{
		repo:    repo,
		queue:   make(chan *model.AuditRecord, auditQueueSize),
		stopped: make(chan struct{}),
	}

	go s.writeLoop()

	return s
}

// Record enqueues one trace entry. Fire-and-forget: the primary operation
// that triggered the event must not observe audit failures.
func (s *AuditService) Record(action, tokenPrefix, subject, detail string) {
	rec := &model.AuditRecord{
		Action:      action,
		TokenPrefix: tokenPrefix,
		Subject:     subject,
		Detail:      detail,
		CreatedAt:   time.Now(),
	}

	s.pending.Add(1)
	select {
	case s.queue <- rec:
	default:
		s.pending.Done()
		slog.Warn("audit queue full, dropping record", "action", action)
	}
}

func (s *AuditService) writeLoop() {
	defer close(s.stopped)

	for rec := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		err := s.repo.Append(ctx, rec)
		cancel()
		if err != nil {
			slog.Warn("audit write failed", "action", rec.Action, "error", err)
		}
		s.pending.Done()
	}
}

// Flush blocks until every record accepted so far has been written (or
// dropped). Used by tests and by shutdown.
func (s *AuditService) Flush() {
	s.pending.Wait()
}

// Close drains the queue and stops the worker.
func (s *AuditService) Close() {
	s.once.Do(func() {
		s.pending.Wait()
		close(s.queue)
		<-s.stopped
	})
}

// Recent returns the newest audit records, most recent first.
func (s *AuditService) Recent(ctx context.Context, limit int) ([]*model.AuditRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	recs, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return recs, nil
}

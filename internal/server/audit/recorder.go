// Package audit records security-relevant actions. Recording is
// fire-and-forget: callers never observe a sink failure.
package audit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/secretvault/internal/common"
	"github.com/dmitrijs2005/secretvault/internal/logging"
	"github.com/dmitrijs2005/secretvault/internal/server/models"
	"github.com/google/uuid"
)

// Event describes one audited outcome. Empty ActorID and TargetID are
// stored as NULL.
type Event struct {
	ActorID  string
	Action   string
	TargetID string
	Success  bool
	Meta     models.RequestMeta
}

type Recorder interface {
	Record(ctx context.Context, ev Event)
}

// Sink persists a finished audit record.
type Sink interface {
	Write(ctx context.Context, rec *models.AuditRecord) error
}

// Multi writes to every sink and joins their errors.
type Multi []Sink

func (m Multi) Write(ctx context.Context, rec *models.AuditRecord) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Async hands each record to its sink on a separate goroutine. The write
// outlives request cancellation but is bounded by timeout.
type Async struct {
	sink    Sink
	logger  logging.Logger
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

func NewAsync(sink Sink, timeout time.Duration, logger logging.Logger) *Async {
	return &Async{
		sink:    sink,
		logger:  logger.With("module", "audit"),
		timeout: timeout,
		now:     time.Now,
	}
}

func (a *Async) Record(ctx context.Context, ev Event) {
	rec := &models.AuditRecord{
		ID:        uuid.NewString(),
		UserID:    common.StringPtr(ev.ActorID),
		Action:    ev.Action,
		TargetID:  common.StringPtr(ev.TargetID),
		IP:        common.StringPtr(ev.Meta.IP),
		UserAgent: common.StringPtr(ev.Meta.UserAgent),
		Success:   ev.Success,
		CreatedAt: a.now(),
	}

	wctx := context.WithoutCancel(ctx)
	cancel := context.CancelFunc(func() {})
	if a.timeout > 0 {
		wctx, cancel = context.WithTimeout(wctx, a.timeout)
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				a.logger.Error(wctx, "audit sink panicked", "action", rec.Action, "panic", r)
			}
		}()

		if err := a.sink.Write(wctx, rec); err != nil {
			a.logger.Warn(wctx, "audit write failed", "action", rec.Action, "error", err)
		}
	}()
}

// Wait blocks until in-flight writes finish. Used on shutdown.
func (a *Async) Wait() {
	a.wg.Wait()
}

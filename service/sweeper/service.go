package sweeper

import (
	"context"
	"time"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/internal/clock"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/approval"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/task"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/gate"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/loop"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/tracing"
)

const (
	// DefaultInterval between periodic sweeps when none is configured.
	DefaultInterval = 5 * time.Minute
	// DefaultStaleAfter is the idle threshold beyond which an in-progress
	// task is surfaced as stale.
	DefaultStaleAfter = 30 * time.Minute
)

// Report summarises the outcome of one sweep pass.
type Report struct {
	SweptAt time.Time `json:"sweptAt"`
	// Expired approvals transitioned by this pass.
	Expired []*approval.Record `json:"expired,omitempty"`
	// Recovered tasks whose interrupted approval resolution was replayed.
	Recovered []*task.Record `json:"recovered,omitempty"`
	// Stale in-progress tasks idle beyond the staleness threshold.  They are
	// surfaced for operators, never mutated – tasks have no wall-clock
	// timeout, only the iteration bound.
	Stale []*task.Record `json:"stale,omitempty"`
}

// Service runs the periodic maintenance pass: expiring stale approvals,
// finishing interrupted pause resolutions and surfacing blocked tasks.
type Service struct {
	gate       *gate.Service
	loop       *loop.Service
	taskDao    dao.Service[string, task.Record]
	interval   time.Duration
	staleAfter time.Duration
}

// New creates a sweeper over the supplied gate and loop controller.
func New(gateService *gate.Service, loopService *loop.Service, taskDao dao.Service[string, task.Record], options ...Option) *Service {
	ret := &Service{
		gate:       gateService,
		loop:       loopService,
		taskDao:    taskDao,
		interval:   DefaultInterval,
		staleAfter: DefaultStaleAfter,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Sweep performs one pass relative to the supplied reference time.  Running
// it twice with the same time produces the same set of expired records and no
// double resolution of dependent tasks.
func (s *Service) Sweep(ctx context.Context, now time.Time) (*Report, error) {
	ctx, span := tracing.StartSpan(ctx, "sweeper.sweep", "INTERNAL")
	report, err := s.sweep(ctx, now)
	tracing.EndSpan(span, err)
	return report, err
}

func (s *Service) sweep(ctx context.Context, now time.Time) (*Report, error) {
	report := &Report{SweptAt: now}

	expired, err := s.gate.SweepExpired(ctx, now)
	if err != nil {
		return report, err
	}
	report.Expired = expired

	recovered, err := s.loop.Recover(ctx)
	if err != nil {
		return report, err
	}
	report.Recovered = recovered

	inProgress, err := s.taskDao.List(ctx, dao.NewParameter("Status", string(task.StatusInProgress)))
	if err != nil {
		return report, err
	}
	for _, record := range inProgress {
		if now.Sub(record.UpdatedAt) >= s.staleAfter {
			report.Stale = append(report.Stale, record)
		}
	}
	return report, nil
}

// Start launches a goroutine running Sweep on a ticker.  It returns stop() –
// call it (or cancel ctx) to exit.
func (s *Service) Start(ctx context.Context) (stop func()) {
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				_, _ = s.Sweep(ctx, clock.Now())
			}
		}
	}()
	return func() { close(done) }
}

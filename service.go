package employee

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs/url"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/approval"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/task"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
	approvalfs "github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/approval/fs"
	approvalmem "github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/approval/memory"
	taskfs "github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/task/fs"
	taskmem "github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/task/memory"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/gate"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/hook"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/loop"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/messaging"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/sweeper"
)

// Service is the orchestration façade.  It owns the record stores and wires
// the task loop, approval gate, suspension hook and sweeper together.
type Service struct {
	taskDao     dao.Service[string, task.Record]
	approvalDao dao.Service[string, approval.Record]
	events      messaging.Queue[gate.Event]
	executor    gate.Executor

	defaultExpiry        time.Duration
	claimTTL             time.Duration
	defaultMaxIterations int
	sweepInterval        time.Duration
	staleAfter           time.Duration

	gate    *gate.Service
	loop    *loop.Service
	hook    *hook.Service
	sweeper *sweeper.Service
}

// Gate returns the approval gate service.
func (s *Service) Gate() *gate.Service { return s.gate }

// Loop returns the task loop controller.
func (s *Service) Loop() *loop.Service { return s.loop }

// Hook returns the suspension hook adapter.
func (s *Service) Hook() *hook.Service { return s.hook }

// Sweeper returns the expiration and recovery sweeper.
func (s *Service) Sweeper() *sweeper.Service { return s.sweeper }

// New creates an orchestration service backed by in-memory record stores
// unless overridden through options.
func New(options ...Option) *Service {
	srv := &Service{}
	for _, option := range options {
		option(srv)
	}
	srv.applyDefaults()
	srv.wire()
	return srv
}

// NewFromConfig creates an orchestration service from configuration, using
// durable file-backed record stores rooted at the configured base URL.
// Options are applied after the configuration and take precedence.
func NewFromConfig(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	srv := &Service{
		defaultExpiry:        time.Duration(config.Approval.DefaultExpiryHours) * time.Hour,
		claimTTL:             time.Duration(config.Approval.ClaimTTLMinutes) * time.Minute,
		defaultMaxIterations: config.Task.DefaultMaxIterations,
		sweepInterval:        time.Duration(config.Sweeper.IntervalMinutes) * time.Minute,
		staleAfter:           time.Duration(config.Sweeper.StaleAfterMinutes) * time.Minute,
	}
	if config.Store.BaseURL != "" {
		taskStore, err := taskfs.New(url.Join(config.Store.BaseURL, "tasks"))
		if err != nil {
			return nil, fmt.Errorf("failed to open task store: %w", err)
		}
		approvalStore, err := approvalfs.New(url.Join(config.Store.BaseURL, "approvals"))
		if err != nil {
			return nil, fmt.Errorf("failed to open approval store: %w", err)
		}
		srv.taskDao = taskStore
		srv.approvalDao = approvalStore
	}
	for _, option := range options {
		option(srv)
	}
	srv.applyDefaults()
	srv.wire()
	return srv, nil
}

func (s *Service) applyDefaults() {
	if s.taskDao == nil {
		s.taskDao = taskmem.New()
	}
	if s.approvalDao == nil {
		s.approvalDao = approvalmem.New()
	}
	if s.defaultExpiry <= 0 {
		s.defaultExpiry = approval.DefaultExpiry
	}
	if s.claimTTL <= 0 {
		s.claimTTL = gate.DefaultClaimTTL
	}
	if s.defaultMaxIterations <= 0 {
		s.defaultMaxIterations = task.DefaultMaxIterations
	}
	if s.sweepInterval <= 0 {
		s.sweepInterval = sweeper.DefaultInterval
	}
	if s.staleAfter <= 0 {
		s.staleAfter = sweeper.DefaultStaleAfter
	}
}

func (s *Service) wire() {
	s.loop = loop.New(s.taskDao, s.approvalDao,
		loop.WithDefaultMaxIterations(s.defaultMaxIterations))
	gateOptions := []gate.Option{
		gate.WithResolver(s.loop),
		gate.WithDefaultExpiry(s.defaultExpiry),
		gate.WithClaimTTL(s.claimTTL),
	}
	if s.events != nil {
		gateOptions = append(gateOptions, gate.WithQueue(s.events))
	}
	if s.executor != nil {
		gateOptions = append(gateOptions, gate.WithExecutor(s.executor))
	}
	s.gate = gate.New(s.approvalDao, gateOptions...)
	s.hook = hook.New(s.taskDao)
	s.sweeper = sweeper.New(s.gate, s.loop, s.taskDao,
		sweeper.WithInterval(s.sweepInterval),
		sweeper.WithStaleAfter(s.staleAfter))
}

package hook

import (
	"context"
	"errors"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/task"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
)

// Decision is the answer returned to the host on every reasoning-agent turn
// boundary.  When AllowExit is false the host must re-invoke the agent with
// the original prompt and the accumulated context.
type Decision struct {
	AllowExit bool   `json:"allowExit"`
	Prompt    string `json:"prompt,omitempty"`
	Context   string `json:"context,omitempty"`
}

// Service answers the host's per-turn "may the agent exit?" question.  It is
// a pure read over the task store – checking never advances iteration or
// mutates any record.
type Service struct {
	taskDao dao.Service[string, task.Record]
}

// New creates a suspension hook over the supplied task store.
func New(taskDao dao.Service[string, task.Record]) *Service {
	return &Service{taskDao: taskDao}
}

// Check reports whether the agent may exit for the given task.  Unknown,
// terminal and paused tasks all allow exit – a paused task is legitimately
// waiting on a human outside the agent's turn loop.  Only an in-progress task
// blocks exit, returning the original prompt and current context for
// re-injection.
func (s *Service) Check(ctx context.Context, taskID string) (*Decision, error) {
	if taskID == "" {
		return &Decision{AllowExit: true}, nil
	}
	record, err := s.taskDao.Load(ctx, taskID)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return &Decision{AllowExit: true}, nil
		}
		return nil, err
	}
	if record.Status != task.StatusInProgress {
		return &Decision{AllowExit: true}, nil
	}
	return &Decision{
		AllowExit: false,
		Prompt:    record.Prompt,
		Context:   record.Context,
	}, nil
}

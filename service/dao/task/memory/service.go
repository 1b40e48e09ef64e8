package memory

import (
	"context"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/task"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/criteria"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/store"
)

// Service implements an in-memory, thread-safe task store.  Records are
// cloned on the way in and out so callers never share mutable state with the
// store – the same value semantics the filesystem store provides.
type Service struct {
	records *store.MemoryStore[string, task.Record]
}

var _ dao.Service[string, task.Record] = (*Service)(nil)

func (s *Service) Save(ctx context.Context, record *task.Record) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	if record.ID == "" {
		return dao.ErrInvalidID
	}
	return s.records.Save(ctx, record.Clone())
}

func (s *Service) Load(ctx context.Context, id string) (*task.Record, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}
	record, err := s.records.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, dao.ErrNotFound
	}
	return record.Clone(), nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}
	return s.records.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*task.Record, error) {
	all, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*task.Record, 0, len(all))
	for _, record := range all {
		if !criteria.Match(map[string]string{"Status": string(record.Status)}, parameters) {
			continue
		}
		out = append(out, record.Clone())
	}
	return out, nil
}

func New() *Service {
	return &Service{
		records: store.NewMemoryStore[string, task.Record](func(r *task.Record) string { return r.ID }),
	}
}

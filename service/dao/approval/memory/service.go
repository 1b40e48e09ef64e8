package memory

import (
	"context"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/approval"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/criteria"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/store"
)

// Service implements an in-memory, thread-safe approval store with the same
// clone-on-read/write value semantics as the filesystem store.
type Service struct {
	records *store.MemoryStore[string, approval.Record]
}

var _ dao.Service[string, approval.Record] = (*Service)(nil)

func (s *Service) Save(ctx context.Context, record *approval.Record) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	if record.ID == "" {
		return dao.ErrInvalidID
	}
	return s.records.Save(ctx, record.Clone())
}

func (s *Service) Load(ctx context.Context, id string) (*approval.Record, error) {
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

func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*approval.Record, error) {
	all, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*approval.Record, 0, len(all))
	for _, record := range all {
		fields := map[string]string{
			"Status":   string(record.Status),
			"Category": record.Category,
		}
		if !criteria.Match(fields, parameters) {
			continue
		}
		out = append(out, record.Clone())
	}
	return out, nil
}

func New() *Service {
	return &Service{
		records: store.NewMemoryStore[string, approval.Record](func(r *approval.Record) string { return r.ID }),
	}
}

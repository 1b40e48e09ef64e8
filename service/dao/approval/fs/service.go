package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/approval"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/criteria"
)

// Service implements filesystem-backed approval record storage with the same
// write-new-then-move replacement discipline as the task store.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

var _ dao.Service[string, approval.Record] = (*Service)(nil)

// Save persists an approval record.
func (s *Service) Save(ctx context.Context, record *approval.Record) error {
	if record == nil {
		return dao.ErrNilEntity
	}
	if record.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal approval %s: %w", record.ID, err)
	}

	stagingPath := s.recordPath(record.ID) + ".staging"
	if err = s.fs.Upload(ctx, stagingPath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to stage approval %s: %w", record.ID, err)
	}
	if err = s.fs.Move(ctx, stagingPath, s.recordPath(record.ID)); err != nil {
		return fmt.Errorf("failed to commit approval %s: %w", record.ID, err)
	}
	return nil
}

// Load retrieves an approval record by id.
func (s *Service) Load(ctx context.Context, id string) (*approval.Record, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recordPath := s.recordPath(id)
	exists, err := s.fs.Exists(ctx, recordPath)
	if err != nil {
		return nil, fmt.Errorf("failed to check approval %s: %w", id, err)
	}
	if !exists {
		return nil, fmt.Errorf("approval %s: %w", id, dao.ErrNotFound)
	}

	data, err := s.fs.DownloadWithURL(ctx, recordPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read approval %s: %w", id, err)
	}

	var record approval.Record
	if err = json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal approval %s: %w", id, err)
	}
	return &record, nil
}

// Delete removes an approval record.  Like tasks, approvals are retained for
// audit in normal operation.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordPath := s.recordPath(id)
	exists, err := s.fs.Exists(ctx, recordPath)
	if err != nil {
		return fmt.Errorf("failed to check approval %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("approval %s: %w", id, dao.ErrNotFound)
	}
	return s.fs.Delete(ctx, recordPath)
}

// List returns approval records matching the supplied parameters via a full
// scan of the store.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*approval.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list approval records: %w", err)
	}

	var records []*approval.Record
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		var record approval.Record
		if err = json.Unmarshal(data, &record); err != nil {
			continue
		}
		fields := map[string]string{
			"Status":   string(record.Status),
			"Category": record.Category,
		}
		if !criteria.Match(fields, parameters) {
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

func (s *Service) recordPath(id string) string {
	return url.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a filesystem approval store rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	fs := afs.New()
	ctx := context.Background()
	basePath = url.Normalize(basePath, file.Scheme)
	exists, err := fs.Exists(ctx, basePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check base directory %s: %w", basePath, err)
	}
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}
	return &Service{basePath: basePath, fs: fs}, nil
}

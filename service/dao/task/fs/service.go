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

	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/model/task"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao"
	"github.com/JahanzaibTayyab/personal-ai-employee-sub000/service/dao/criteria"
)

// Service implements filesystem-backed task record storage.  Each record is a
// single JSON blob under basePath; replacement is write-new-then-move so a
// crash mid-write never leaves a partially written record behind.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

var _ dao.Service[string, task.Record] = (*Service)(nil)

// Save persists a task record.
func (s *Service) Save(ctx context.Context, record *task.Record) error {
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
		return fmt.Errorf("failed to marshal task %s: %w", record.ID, err)
	}

	stagingPath := s.recordPath(record.ID) + ".staging"
	if err = s.fs.Upload(ctx, stagingPath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to stage task %s: %w", record.ID, err)
	}
	if err = s.fs.Move(ctx, stagingPath, s.recordPath(record.ID)); err != nil {
		return fmt.Errorf("failed to commit task %s: %w", record.ID, err)
	}
	return nil
}

// Load retrieves a task record by id.
func (s *Service) Load(ctx context.Context, id string) (*task.Record, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	recordPath := s.recordPath(id)
	exists, err := s.fs.Exists(ctx, recordPath)
	if err != nil {
		return nil, fmt.Errorf("failed to check task %s: %w", id, err)
	}
	if !exists {
		return nil, fmt.Errorf("task %s: %w", id, dao.ErrNotFound)
	}

	data, err := s.fs.DownloadWithURL(ctx, recordPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read task %s: %w", id, err)
	}

	var record task.Record
	if err = json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task %s: %w", id, err)
	}
	return &record, nil
}

// Delete removes a task record.  Normal operation never deletes tasks –
// terminal records are retained for audit – but external archival tooling may
// relocate them.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recordPath := s.recordPath(id)
	exists, err := s.fs.Exists(ctx, recordPath)
	if err != nil {
		return fmt.Errorf("failed to check task %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("task %s: %w", id, dao.ErrNotFound)
	}
	return s.fs.Delete(ctx, recordPath)
}

// List returns task records matching the supplied parameters.  The listing is
// a full scan – no incremental index is maintained, so freshness never
// depends on anything but the records themselves.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*task.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list task records: %w", err)
	}

	var records []*task.Record
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := s.fs.Download(ctx, object)
		if err != nil {
			continue
		}
		var record task.Record
		if err = json.Unmarshal(data, &record); err != nil {
			continue
		}
		if !criteria.Match(map[string]string{"Status": string(record.Status)}, parameters) {
			continue
		}
		records = append(records, &record)
	}
	return records, nil
}

func (s *Service) recordPath(id string) string {
	return url.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a filesystem task store rooted at basePath.
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

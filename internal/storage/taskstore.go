// Package storage provides the durable layers under the task graph: the
// markdown task store (source of truth), the rebuildable YAML index, and
// the filesystem claim coordinator.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

const (
	tasksDirName    = "tasks"
	archivedDirName = "_archived"
	taskFileExt     = ".md"
)

// TaskStore persists task documents as markdown files with YAML
// frontmatter. The store is the single source of truth; every other
// artifact is derived from it.
type TaskStore interface {
	// Create writes a new task document. It fails if the id already exists.
	Create(task *models.Task) error

	// Read loads a task by id. Returns models.ErrTaskNotFound when no
	// document exists.
	Read(id string) (*models.Task, error)

	// Write persists the task, bumping its updated timestamp. The write is
	// atomic: readers never observe a partial document.
	Write(task *models.Task) error

	// Update loads the task, applies mutate, and writes it back. The
	// mutation is abandoned if mutate returns an error.
	Update(id string, mutate func(*models.Task) error) (*models.Task, error)

	// Archive moves the task document into the archived area. Archived
	// tasks are invisible to Read and ListAll.
	Archive(id string) error

	// Unarchive moves an archived task document back into the active area.
	Unarchive(id string) (*models.Task, error)

	// Exists reports whether an active document exists for id.
	Exists(id string) bool

	// ListAll loads every active task, sorted by id.
	ListAll() ([]*models.Task, error)

	// Path returns the filesystem path of the active document for id.
	Path(id string) string

	// BasePath returns the store's root directory.
	BasePath() string
}

type fileTaskStore struct {
	basePath string
}

// NewTaskStore creates a file-backed task store rooted at basePath,
// creating the tasks and archive directories if needed.
func NewTaskStore(basePath string) (TaskStore, error) {
	s := &fileTaskStore{basePath: basePath}
	if err := os.MkdirAll(s.archivedDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create task directories: %w", err)
	}
	return s, nil
}

func (s *fileTaskStore) tasksDir() string {
	return filepath.Join(s.basePath, tasksDirName)
}

func (s *fileTaskStore) archivedDir() string {
	return filepath.Join(s.tasksDir(), archivedDirName)
}

func (s *fileTaskStore) BasePath() string {
	return s.basePath
}

func (s *fileTaskStore) Path(id string) string {
	return filepath.Join(s.tasksDir(), id+taskFileExt)
}

func (s *fileTaskStore) archivedPath(id string) string {
	return filepath.Join(s.archivedDir(), id+taskFileExt)
}

func (s *fileTaskStore) Exists(id string) bool {
	_, err := os.Stat(s.Path(id))
	return err == nil
}

func (s *fileTaskStore) Create(task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	if s.Exists(task.ID) {
		return fmt.Errorf("task %s already exists", task.ID)
	}
	return s.writeDocument(task)
}

func (s *fileTaskStore) Read(id string) (*models.Task, error) {
	data, err := os.ReadFile(s.Path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("task %s: %w", id, models.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("failed to read task %s: %w", id, err)
	}
	task, err := models.ParseTask(data)
	if err != nil {
		return nil, fmt.Errorf("task %s is malformed: %w", id, err)
	}
	return task, nil
}

func (s *fileTaskStore) Write(task *models.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}
	task.Updated = time.Now().UTC().Truncate(time.Second)
	return s.writeDocument(task)
}

func (s *fileTaskStore) Update(id string, mutate func(*models.Task) error) (*models.Task, error) {
	task, err := s.Read(id)
	if err != nil {
		return nil, err
	}
	if err := mutate(task); err != nil {
		return nil, err
	}
	if err := s.Write(task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *fileTaskStore) Archive(id string) error {
	src := s.Path(id)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("task %s: %w", id, models.ErrTaskNotFound)
		}
		return fmt.Errorf("failed to stat task %s: %w", id, err)
	}
	if err := os.Rename(src, s.archivedPath(id)); err != nil {
		return fmt.Errorf("failed to archive task %s: %w", id, err)
	}
	return nil
}

func (s *fileTaskStore) Unarchive(id string) (*models.Task, error) {
	src := s.archivedPath(id)
	if _, err := os.Stat(src); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("archived task %s: %w", id, models.ErrTaskNotFound)
		}
		return nil, fmt.Errorf("failed to stat archived task %s: %w", id, err)
	}
	if err := os.Rename(src, s.Path(id)); err != nil {
		return nil, fmt.Errorf("failed to unarchive task %s: %w", id, err)
	}
	return s.Read(id)
}

func (s *fileTaskStore) ListAll() ([]*models.Task, error) {
	entries, err := os.ReadDir(s.tasksDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	var tasks []*models.Task
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), taskFileExt) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), taskFileExt)
		task, err := s.Read(id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// writeDocument renders the task and replaces its file atomically: write to
// a temp file in the same directory, then rename over the target.
func (s *fileTaskStore) writeDocument(task *models.Task) error {
	data, err := task.ToMarkdown()
	if err != nil {
		return fmt.Errorf("failed to render task %s: %w", task.ID, err)
	}
	return atomicWrite(s.Path(task.ID), data)
}

func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

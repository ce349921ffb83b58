package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/taskgraph/pkg/models"

	"github.com/valter-silva-au/taskgraph/internal/graph"
)

const (
	indexFileName = "index.yaml"
	indexVersion  = 1
)

// indexFile is the on-disk shape of the index. Tasks is a map keyed by id;
// yaml emits map keys sorted, so rebuilding from the same store state
// produces byte-identical output. The file deliberately carries no
// timestamp or other nondeterministic field.
type indexFile struct {
	Version int                          `yaml:"version"`
	Tasks   map[string]models.IndexEntry `yaml:"tasks"`
}

// IndexManager maintains the derived query index over the task store. The
// index is a cache: any operation may fall back to a full rebuild, and a
// rebuild always wins over whatever the file currently says.
type IndexManager interface {
	// Rebuild regenerates the index from the full task set and replaces
	// the file atomically.
	Rebuild(tasks []*models.Task) ([]models.IndexEntry, error)

	// Upsert refreshes one task's entry in place, recomputing derived
	// fields from the updated edge state. Returns an error wrapping
	// os.ErrNotExist when no index file exists yet; callers rebuild then.
	Upsert(task *models.Task) error

	// Remove drops a task's entry, recomputing derived fields of the
	// remaining entries.
	Remove(id string) error

	// Entries returns all entries sorted by id.
	Entries() ([]models.IndexEntry, error)

	// Query returns the entries matching the filter, sorted by id.
	Query(filter models.IndexFilter) ([]models.IndexEntry, error)

	// Path returns the index file path.
	Path() string
}

type fileIndexManager struct {
	basePath string
}

// NewIndexManager creates an index manager storing its file directly under
// basePath.
func NewIndexManager(basePath string) IndexManager {
	return &fileIndexManager{basePath: basePath}
}

func (m *fileIndexManager) Path() string {
	return filepath.Join(m.basePath, indexFileName)
}

func (m *fileIndexManager) Rebuild(tasks []*models.Task) ([]models.IndexEntry, error) {
	// Leaf and depth are structural; the ready policy does not affect the
	// projection, so the options here are irrelevant.
	g := graph.FromTasks(tasks, graph.Options{})
	entries := g.Entries()
	if err := m.write(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (m *fileIndexManager) Upsert(task *models.Task) error {
	entries, err := m.Entries()
	if err != nil {
		return err
	}

	replaced := false
	for i, e := range entries {
		if e.ID == task.ID {
			entries[i] = projectTask(task)
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, projectTask(task))
	}

	// Re-deriving through a graph keeps leaf and depth consistent when the
	// task's parent edge changed.
	g := graph.FromEntries(entries, graph.Options{})
	return m.write(g.Entries())
}

func (m *fileIndexManager) Remove(id string) error {
	entries, err := m.Entries()
	if err != nil {
		return err
	}

	kept := entries[:0]
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}

	g := graph.FromEntries(kept, graph.Options{})
	return m.write(g.Entries())
}

func (m *fileIndexManager) Entries() ([]models.IndexEntry, error) {
	data, err := os.ReadFile(m.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("index not built yet: %w", err)
		}
		return nil, fmt.Errorf("failed to read index: %w", err)
	}

	var file indexFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("index is corrupt: %w", err)
	}

	entries := make([]models.IndexEntry, 0, len(file.Tasks))
	for id, e := range file.Tasks {
		e.ID = id
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

func (m *fileIndexManager) Query(filter models.IndexFilter) ([]models.IndexEntry, error) {
	entries, err := m.Entries()
	if err != nil {
		return nil, err
	}

	var matched []models.IndexEntry
	for _, e := range entries {
		if filter.Matches(e) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

func (m *fileIndexManager) write(entries []models.IndexEntry) error {
	file := indexFile{
		Version: indexVersion,
		Tasks:   make(map[string]models.IndexEntry, len(entries)),
	}
	for _, e := range entries {
		file.Tasks[e.ID] = e
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to render index: %w", err)
	}
	if err := atomicWrite(m.Path(), data); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

func projectTask(t *models.Task) models.IndexEntry {
	return models.IndexEntry{
		ID:        t.ID,
		Title:     t.Title,
		Status:    t.Status,
		Priority:  t.Priority,
		Project:   t.Project,
		Parent:    t.Parent,
		DependsOn: t.DependsOn,
	}
}

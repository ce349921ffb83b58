package core

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/valter-silva-au/taskgraph/internal/graph"
	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// AddOptions describes a task to create. Zero-valued Type and Priority fall
// back to the configured defaults.
type AddOptions struct {
	Title     string
	Type      models.TaskType
	Priority  models.Priority
	Project   string
	Parent    string
	DependsOn []string
	Assignee  string
	Tags      []string
	Body      string
}

// Subtask describes one child task in a decomposition request.
type Subtask struct {
	Title    string
	Type     models.TaskType
	Priority models.Priority
	Body     string
}

// TreeNode is one node of a rendered task subtree, children sorted by id.
type TreeNode struct {
	Task     *models.Task
	Children []*TreeNode
}

// TaskService orchestrates the task graph workflow over the store, index,
// and claim coordinator.
type TaskService interface {
	// Add creates a single task, validating graph edges before commit.
	Add(opts AddOptions) (*models.Task, error)

	// Get loads a task by id.
	Get(id string) (*models.Task, error)

	// List queries the index; a missing index is rebuilt transparently.
	List(filter models.IndexFilter) ([]models.IndexEntry, error)

	// Update applies a field patch. Status changes go through the state
	// machine; parent and depends_on changes are validated against the
	// graph under the structural lock.
	Update(id string, patch Patch) (*models.Task, error)

	// Decompose creates the given subtasks under parentID atomically.
	// With sequential set, each subtask depends on the previous one.
	Decompose(parentID string, subtasks []Subtask, sequential bool) ([]*models.Task, error)

	// Ready returns the claimable tasks sorted by priority then id,
	// optionally restricted to a project.
	Ready(project string) ([]*models.Task, error)

	// Tree returns the subtree rooted at rootID, or the whole forest as
	// children of a nil-task node when rootID is empty.
	Tree(rootID string) (*TreeNode, error)

	// ClaimNext claims the best ready task for holder. The false return
	// without error means nothing was claimable.
	ClaimNext(holder, project string) (*models.Task, bool, error)

	// ClaimTask claims one specific task for holder, with the same
	// verification as ClaimNext.
	ClaimTask(taskID, holder string) (*models.Task, bool, error)

	// Release gives up holder's claim. With done set the task is also
	// marked done, which re-evaluates its dependents. Returns false when
	// holder did not hold the claim; that is a routine no-op, not an
	// error.
	Release(taskID, holder string, done bool) (bool, error)

	// ReclaimStale force-releases claims older than timeout and returns
	// the reclaimed task ids. A zero timeout uses the configured default.
	ReclaimStale(timeout time.Duration) ([]string, error)

	// Claims lists the live claim markers.
	Claims() ([]models.ClaimMarker, error)

	// Reopen moves a terminal task back to the given status.
	Reopen(id string, to models.TaskStatus) (*models.Task, error)

	// Archive retires a task from the active set and drops it from the
	// index. The document is retained for audit.
	Archive(id string) error

	// RebuildIndex regenerates the index from the full store.
	RebuildIndex() ([]models.IndexEntry, error)
}

type taskService struct {
	store  TaskStore
	index  Index
	claims Claims
	events EventLogger
	cfg    *Config
	now    func() time.Time
}

// NewTaskService wires a task service over the given stores. events may be
// nil; the event log is advisory and never blocks an operation.
func NewTaskService(store TaskStore, index Index, claims Claims, events EventLogger, cfg *Config) TaskService {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &taskService{
		store:  store,
		index:  index,
		claims: claims,
		events: events,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (s *taskService) Add(opts AddOptions) (*models.Task, error) {
	if opts.Title == "" {
		return nil, &models.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if opts.Type == "" {
		opts.Type = s.cfg.DefaultType
	}
	if opts.Priority == "" {
		opts.Priority = s.cfg.DefaultPriority
	}

	var task *models.Task
	err := withGraphLock(s.store.BasePath(), func() error {
		now := s.now().UTC().Truncate(time.Second)
		task = &models.Task{
			ID:        NewTaskID(opts.Title, now, s.cfg.SlugMax, s.store.Exists),
			Title:     opts.Title,
			Type:      opts.Type,
			Status:    models.StatusInbox,
			Priority:  opts.Priority,
			Project:   opts.Project,
			Parent:    opts.Parent,
			DependsOn: opts.DependsOn,
			Assignee:  opts.Assignee,
			Tags:      opts.Tags,
			Created:   now,
			Updated:   now,
			Body:      opts.Body,
		}
		if err := task.Validate(); err != nil {
			return err
		}

		tasks, err := s.store.ListAll()
		if err != nil {
			return err
		}
		if err := s.validateEdges(append(tasks, task), task); err != nil {
			return err
		}
		if err := s.store.Create(task); err != nil {
			return err
		}
		return s.updateIndex(task)
	})
	if err != nil {
		return nil, err
	}

	s.logEvent("task.created", task.ID, opts.Assignee, map[string]any{
		"title": task.Title,
		"type":  string(task.Type),
	})
	return task, nil
}

func (s *taskService) Get(id string) (*models.Task, error) {
	return s.store.Read(id)
}

func (s *taskService) List(filter models.IndexFilter) ([]models.IndexEntry, error) {
	entries, err := s.index.Query(filter)
	if err == nil && !s.indexDiverged(entries) {
		return entries, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	// Missing or stale index; the store is the source of truth.
	if _, err := s.RebuildIndex(); err != nil {
		return nil, err
	}
	return s.index.Query(filter)
}

// indexDiverged reports whether any index entry refers to a task document
// that no longer exists in the store.
func (s *taskService) indexDiverged(entries []models.IndexEntry) bool {
	for _, e := range entries {
		if !s.store.Exists(e.ID) {
			return true
		}
	}
	return false
}

func (s *taskService) Ready(project string) ([]*models.Task, error) {
	g, err := s.loadGraph()
	if err != nil {
		return nil, err
	}

	nodes := g.ReadyNodes(project)
	tasks := make([]*models.Task, len(nodes))
	for i, n := range nodes {
		tasks[i] = n.Task
	}
	return tasks, nil
}

func (s *taskService) Tree(rootID string) (*TreeNode, error) {
	tasks, err := s.store.ListAll()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}
	g := graph.FromTasks(tasks, graph.Options{ParentsReady: s.cfg.ParentsReady})

	var build func(id string) *TreeNode
	build = func(id string) *TreeNode {
		node := &TreeNode{Task: byID[id]}
		for _, child := range g.Children(id) {
			node.Children = append(node.Children, build(child))
		}
		return node
	}

	if rootID != "" {
		if !g.Contains(rootID) {
			return nil, fmt.Errorf("task %s: %w", rootID, models.ErrTaskNotFound)
		}
		return build(rootID), nil
	}

	var roots []string
	for _, t := range tasks {
		if t.Parent == "" || !g.Contains(t.Parent) {
			roots = append(roots, t.ID)
		}
	}
	sort.Strings(roots)

	forest := &TreeNode{}
	for _, id := range roots {
		forest.Children = append(forest.Children, build(id))
	}
	return forest, nil
}

func (s *taskService) Reopen(id string, to models.TaskStatus) (*models.Task, error) {
	if to == "" {
		to = models.StatusActive
	}
	if to != models.StatusInbox && to != models.StatusActive {
		return nil, &models.ValidationError{TaskID: id, Field: "status", Reason: "reopen target must be inbox or active"}
	}

	var from models.TaskStatus
	task, err := s.store.Update(id, func(t *models.Task) error {
		if !t.Status.IsTerminal() {
			return fmt.Errorf("task %s is %s; only done or cancelled tasks can be reopened", id, t.Status)
		}
		from = t.Status
		t.Status = to
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.updateIndex(task); err != nil {
		return nil, err
	}

	s.logEvent("task.reopened", id, "", map[string]any{
		"from": string(from),
		"to":   string(to),
	})
	return task, nil
}

func (s *taskService) Archive(id string) error {
	marker, err := s.claims.Holder(id)
	if err != nil {
		return err
	}
	if marker != nil {
		return fmt.Errorf("task %s is claimed by %s; release before archiving", id, marker.Holder)
	}

	if err := s.store.Archive(id); err != nil {
		return err
	}
	if err := s.index.Remove(id); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	s.logEvent("task.archived", id, "", nil)
	return nil
}

func (s *taskService) RebuildIndex() ([]models.IndexEntry, error) {
	tasks, err := s.store.ListAll()
	if err != nil {
		return nil, err
	}
	entries, err := s.index.Rebuild(tasks)
	if err != nil {
		return nil, err
	}

	s.logEvent("index.rebuilt", "", "", map[string]any{"tasks": len(entries)})
	return entries, nil
}

// loadGraph builds the graph from the full store under the configured
// ready policy.
func (s *taskService) loadGraph() (*graph.Graph, error) {
	tasks, err := s.store.ListAll()
	if err != nil {
		return nil, err
	}
	return graph.FromTasks(tasks, graph.Options{ParentsReady: s.cfg.ParentsReady}), nil
}

// validateEdges checks the mutated task's parent and dependency references
// for existence and acyclicity against the candidate task set, which must
// already include the mutation.
func (s *taskService) validateEdges(tasks []*models.Task, task *models.Task) error {
	g := graph.FromTasks(tasks, graph.Options{ParentsReady: s.cfg.ParentsReady})

	if task.Parent != "" {
		if !g.Contains(task.Parent) {
			return &models.ValidationError{TaskID: task.ID, Field: "parent", Reason: fmt.Sprintf("task %s does not exist", task.Parent)}
		}
		if err := g.ValidateEdge(task.ID, task.Parent); err != nil {
			return err
		}
	}
	for _, dep := range task.DependsOn {
		if !g.Contains(dep) {
			return &models.ValidationError{TaskID: task.ID, Field: "depends_on", Reason: fmt.Sprintf("task %s does not exist", dep)}
		}
		if err := g.ValidateEdge(task.ID, dep); err != nil {
			return err
		}
	}
	return nil
}

// updateIndex refreshes the task's index entry, falling back to a full
// rebuild when the index file does not exist yet.
func (s *taskService) updateIndex(task *models.Task) error {
	err := s.index.Upsert(task)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	tasks, err := s.store.ListAll()
	if err != nil {
		return err
	}
	_, err = s.index.Rebuild(tasks)
	return err
}

// logEvent emits an event if an EventLogger is configured. The event log is
// advisory; append failures never fail the operation.
func (s *taskService) logEvent(eventType, taskID, actor string, data map[string]any) {
	if s.events != nil {
		_ = s.events.LogEvent(eventType, taskID, actor, data)
	}
}

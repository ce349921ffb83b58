// Package mcp provides an MCP (Model Context Protocol) server that exposes
// the task graph as MCP tools for AI coding assistants.
package mcp

import (
	"context"
	"fmt"
	"time"

	gomcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/valter-silva-au/taskgraph/internal/core"
	"github.com/valter-silva-au/taskgraph/internal/observability"
	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// Server wraps the task service and exposes it as MCP tools.
type Server struct {
	server      *gomcp.Server
	tasks       core.TaskService
	metricsCalc observability.MetricsCalculator
}

// NewServer creates an MCP server over the given services. metricsCalc may
// be nil if observability is disabled.
func NewServer(tasks core.TaskService, metricsCalc observability.MetricsCalculator, version string) *Server {
	if version == "" {
		version = "dev"
	}

	s := &Server{
		tasks:       tasks,
		metricsCalc: metricsCalc,
	}

	s.server = gomcp.NewServer(
		&gomcp.Implementation{Name: "tg", Version: version},
		nil,
	)

	s.registerTools()

	return s
}

// Run starts the MCP server on stdio, blocking until the client disconnects
// or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &gomcp.StdioTransport{})
}

// MCPServer returns the underlying mcp.Server for testing purposes.
func (s *Server) MCPServer() *gomcp.Server {
	return s.server
}

// --- Tool input/output types ---

type createTaskInput struct {
	Title     string   `json:"title" jsonschema:"required,the task title"`
	Type      string   `json:"type,omitempty" jsonschema:"task type (goal, project, epic, task, action); defaults to the configured default"`
	Priority  string   `json:"priority,omitempty" jsonschema:"priority (P0-P3); defaults to the configured default"`
	Project   string   `json:"project,omitempty" jsonschema:"project the task belongs to"`
	Parent    string   `json:"parent,omitempty" jsonschema:"parent task id"`
	DependsOn []string `json:"depends_on,omitempty" jsonschema:"ids of tasks this task depends on"`
	Assignee  string   `json:"assignee,omitempty" jsonschema:"worker the task is routed to"`
	Body      string   `json:"body,omitempty" jsonschema:"markdown body"`
}

type taskOutput struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Type      string   `json:"type"`
	Status    string   `json:"status"`
	Priority  string   `json:"priority"`
	Project   string   `json:"project,omitempty"`
	Parent    string   `json:"parent,omitempty"`
	DependsOn []string `json:"depends_on,omitempty"`
	Assignee  string   `json:"assignee,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Created   string   `json:"created"`
	Updated   string   `json:"updated"`
}

type getTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the task id (e.g. 20260824-write-intro)"`
}

type decomposeTaskInput struct {
	ParentID   string   `json:"parent_id" jsonschema:"required,id of the task to decompose"`
	Subtasks   []string `json:"subtasks" jsonschema:"required,titles of the subtasks to create"`
	Sequential bool     `json:"sequential,omitempty" jsonschema:"chain each subtask onto the previous one with a dependency"`
}

type decomposeTaskOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type getReadyTasksInput struct {
	Project string `json:"project,omitempty" jsonschema:"restrict to one project"`
}

type getReadyTasksOutput struct {
	Tasks []taskOutput `json:"tasks"`
	Count int          `json:"count"`
}

type getTaskTreeInput struct {
	RootID string `json:"root_id,omitempty" jsonschema:"subtree root; empty returns the whole forest"`
}

// treeNodeOutput is one node of the hierarchy in preorder. The type must
// stay non-recursive; schema inference rejects cyclic output types. Callers
// rebuild nesting from Depth and the task's parent id.
type treeNodeOutput struct {
	Task  taskOutput `json:"task"`
	Depth int        `json:"depth"`
}

type getTaskTreeOutput struct {
	Nodes []treeNodeOutput `json:"nodes"`
	Count int              `json:"count"`
}

type updateTaskInput struct {
	TaskID    string   `json:"task_id" jsonschema:"required,the task id"`
	Title     string   `json:"title,omitempty" jsonschema:"new title"`
	Status    string   `json:"status,omitempty" jsonschema:"new status (inbox, active, blocked, waiting, done, cancelled)"`
	Priority  string   `json:"priority,omitempty" jsonschema:"new priority (P0-P3)"`
	Parent    *string  `json:"parent,omitempty" jsonschema:"new parent id; empty string detaches"`
	DependsOn []string `json:"depends_on,omitempty" jsonschema:"replacement dependency list"`
	Body      string   `json:"body,omitempty" jsonschema:"replacement markdown body"`
}

type claimNextTaskInput struct {
	Holder  string `json:"holder" jsonschema:"required,identity of the claiming worker"`
	Project string `json:"project,omitempty" jsonschema:"restrict to one project"`
}

type claimNextTaskOutput struct {
	Claimed bool       `json:"claimed"`
	Task    taskOutput `json:"task,omitempty"`
}

type releaseTaskInput struct {
	TaskID string `json:"task_id" jsonschema:"required,the claimed task id"`
	Holder string `json:"holder" jsonschema:"required,identity of the releasing worker"`
	Done   bool   `json:"done,omitempty" jsonschema:"also mark the task done"`
}

type releaseTaskOutput struct {
	Released bool   `json:"released"`
	Message  string `json:"message"`
}

type rebuildIndexInput struct{}

type rebuildIndexOutput struct {
	Tasks int `json:"tasks"`
}

type getMetricsInput struct {
	Since string `json:"since,omitempty" jsonschema:"time window for metrics (e.g. 7d, 30d, 24h). Defaults to 7d."`
}

type metricsOutput struct {
	TasksCreated   int            `json:"tasks_created"`
	TasksCompleted int            `json:"tasks_completed"`
	TasksClaimed   int            `json:"tasks_claimed"`
	TasksReleased  int            `json:"tasks_released"`
	TasksReclaimed int            `json:"tasks_reclaimed"`
	Decompositions int            `json:"decompositions"`
	TasksByType    map[string]int `json:"tasks_by_type"`
	StatusChanges  map[string]int `json:"status_changes"`
	EventCount     int            `json:"event_count"`
	OldestEvent    string         `json:"oldest_event,omitempty"`
	NewestEvent    string         `json:"newest_event,omitempty"`
}

// --- Tool registration ---

func (s *Server) registerTools() {
	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "create_task",
		Description: "Create a task. Parent and dependency references are validated; an edge that would create a cycle is rejected.",
	}, s.handleCreateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task",
		Description: "Get task details by id, including graph edges and assignee.",
	}, s.handleGetTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "decompose_task",
		Description: "Split a task into subtasks atomically. With sequential=true each subtask depends on the previous one.",
	}, s.handleDecomposeTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_ready_tasks",
		Description: "List tasks eligible to work on: status inbox or active with every dependency done, sorted by priority then id.",
	}, s.handleGetReadyTasks)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_task_tree",
		Description: "Walk the parent/child hierarchy in preorder, optionally rooted at one task. Each node carries its depth; nesting follows from depth and parent ids.",
	}, s.handleGetTaskTree)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "update_task",
		Description: "Update task fields. Status changes follow the state machine; graph edits are cycle-checked.",
	}, s.handleUpdateTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "claim_next_task",
		Description: "Atomically claim the highest-priority ready task for a worker. Returns claimed=false when nothing is available.",
	}, s.handleClaimNextTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "release_task",
		Description: "Release a claimed task, optionally marking it done (which unblocks dependents).",
	}, s.handleReleaseTask)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "rebuild_index",
		Description: "Regenerate the query index from the task store. The store always wins over a diverged index.",
	}, s.handleRebuildIndex)

	gomcp.AddTool(s.server, &gomcp.Tool{
		Name:        "get_metrics",
		Description: "Get workflow metrics from the event log: tasks created, completed, claimed, released, and status change counts.",
	}, s.handleGetMetrics)
}

// --- Tool handlers ---

func (s *Server) handleCreateTask(_ context.Context, _ *gomcp.CallToolRequest, input createTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.Title == "" {
		return errorResult("title is required"), taskOutput{}, nil
	}

	task, err := s.tasks.Add(core.AddOptions{
		Title:     input.Title,
		Type:      models.TaskType(input.Type),
		Priority:  models.Priority(input.Priority),
		Project:   input.Project,
		Parent:    input.Parent,
		DependsOn: input.DependsOn,
		Assignee:  input.Assignee,
		Body:      input.Body,
	})
	if err != nil {
		return errorResult(fmt.Sprintf("creating task: %s", err)), taskOutput{}, nil
	}
	return nil, taskToOutput(task), nil
}

func (s *Server) handleGetTask(_ context.Context, _ *gomcp.CallToolRequest, input getTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	task, err := s.tasks.Get(input.TaskID)
	if err != nil {
		return errorResult(fmt.Sprintf("getting task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}
	return nil, taskToOutput(task), nil
}

func (s *Server) handleDecomposeTask(_ context.Context, _ *gomcp.CallToolRequest, input decomposeTaskInput) (*gomcp.CallToolResult, decomposeTaskOutput, error) {
	if input.ParentID == "" {
		return errorResult("parent_id is required"), decomposeTaskOutput{}, nil
	}
	if len(input.Subtasks) == 0 {
		return errorResult("subtasks is required"), decomposeTaskOutput{}, nil
	}

	subtasks := make([]core.Subtask, len(input.Subtasks))
	for i, title := range input.Subtasks {
		subtasks[i] = core.Subtask{Title: title}
	}

	created, err := s.tasks.Decompose(input.ParentID, subtasks, input.Sequential)
	if err != nil {
		return errorResult(fmt.Sprintf("decomposing task %s: %s", input.ParentID, err)), decomposeTaskOutput{}, nil
	}

	out := decomposeTaskOutput{
		Tasks: make([]taskOutput, len(created)),
		Count: len(created),
	}
	for i, t := range created {
		out.Tasks[i] = taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleGetReadyTasks(_ context.Context, _ *gomcp.CallToolRequest, input getReadyTasksInput) (*gomcp.CallToolResult, getReadyTasksOutput, error) {
	tasks, err := s.tasks.Ready(input.Project)
	if err != nil {
		return errorResult(fmt.Sprintf("listing ready tasks: %s", err)), getReadyTasksOutput{}, nil
	}

	out := getReadyTasksOutput{
		Tasks: make([]taskOutput, len(tasks)),
		Count: len(tasks),
	}
	for i, t := range tasks {
		out.Tasks[i] = taskToOutput(t)
	}
	return nil, out, nil
}

func (s *Server) handleGetTaskTree(_ context.Context, _ *gomcp.CallToolRequest, input getTaskTreeInput) (*gomcp.CallToolResult, getTaskTreeOutput, error) {
	tree, err := s.tasks.Tree(input.RootID)
	if err != nil {
		return errorResult(fmt.Sprintf("building task tree: %s", err)), getTaskTreeOutput{}, nil
	}

	var out getTaskTreeOutput
	if tree.Task != nil {
		out.Nodes = flattenTree(tree, 0, out.Nodes)
	} else {
		for _, child := range tree.Children {
			out.Nodes = flattenTree(child, 0, out.Nodes)
		}
	}
	out.Count = len(out.Nodes)
	return nil, out, nil
}

func (s *Server) handleUpdateTask(_ context.Context, _ *gomcp.CallToolRequest, input updateTaskInput) (*gomcp.CallToolResult, taskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), taskOutput{}, nil
	}

	var patch core.Patch
	if input.Title != "" {
		patch.Title = &input.Title
	}
	if input.Status != "" {
		status := models.NormalizeStatus(input.Status)
		if !models.ValidStatus(status) {
			return errorResult(fmt.Sprintf("invalid status %q", input.Status)), taskOutput{}, nil
		}
		patch.Status = &status
	}
	if input.Priority != "" {
		priority := models.Priority(input.Priority)
		if !models.ValidPriority(priority) {
			return errorResult(fmt.Sprintf("invalid priority %q", input.Priority)), taskOutput{}, nil
		}
		patch.Priority = &priority
	}
	if input.Parent != nil {
		patch.Parent = input.Parent
	}
	if input.DependsOn != nil {
		patch.DependsOn = &input.DependsOn
	}
	if input.Body != "" {
		patch.Body = &input.Body
	}

	task, err := s.tasks.Update(input.TaskID, patch)
	if err != nil {
		return errorResult(fmt.Sprintf("updating task %s: %s", input.TaskID, err)), taskOutput{}, nil
	}
	return nil, taskToOutput(task), nil
}

func (s *Server) handleClaimNextTask(_ context.Context, _ *gomcp.CallToolRequest, input claimNextTaskInput) (*gomcp.CallToolResult, claimNextTaskOutput, error) {
	if input.Holder == "" {
		return errorResult("holder is required"), claimNextTaskOutput{}, nil
	}

	task, ok, err := s.tasks.ClaimNext(input.Holder, input.Project)
	if err != nil {
		return errorResult(fmt.Sprintf("claiming next task: %s", err)), claimNextTaskOutput{}, nil
	}
	if !ok {
		return nil, claimNextTaskOutput{Claimed: false}, nil
	}
	return nil, claimNextTaskOutput{Claimed: true, Task: taskToOutput(task)}, nil
}

func (s *Server) handleReleaseTask(_ context.Context, _ *gomcp.CallToolRequest, input releaseTaskInput) (*gomcp.CallToolResult, releaseTaskOutput, error) {
	if input.TaskID == "" {
		return errorResult("task_id is required"), releaseTaskOutput{}, nil
	}
	if input.Holder == "" {
		return errorResult("holder is required"), releaseTaskOutput{}, nil
	}

	released, err := s.tasks.Release(input.TaskID, input.Holder, input.Done)
	if err != nil {
		return errorResult(fmt.Sprintf("releasing task %s: %s", input.TaskID, err)), releaseTaskOutput{}, nil
	}
	if !released {
		return nil, releaseTaskOutput{
			Released: false,
			Message:  fmt.Sprintf("task %s is not claimed by %s; nothing to release", input.TaskID, input.Holder),
		}, nil
	}

	msg := fmt.Sprintf("task %s released by %s", input.TaskID, input.Holder)
	if input.Done {
		msg += " and marked done"
	}
	return nil, releaseTaskOutput{Released: true, Message: msg}, nil
}

func (s *Server) handleRebuildIndex(_ context.Context, _ *gomcp.CallToolRequest, _ rebuildIndexInput) (*gomcp.CallToolResult, rebuildIndexOutput, error) {
	entries, err := s.tasks.RebuildIndex()
	if err != nil {
		return errorResult(fmt.Sprintf("rebuilding index: %s", err)), rebuildIndexOutput{}, nil
	}
	return nil, rebuildIndexOutput{Tasks: len(entries)}, nil
}

func (s *Server) handleGetMetrics(_ context.Context, _ *gomcp.CallToolRequest, input getMetricsInput) (*gomcp.CallToolResult, metricsOutput, error) {
	if s.metricsCalc == nil {
		return errorResult("metrics calculator not available (observability may be disabled)"), emptyMetricsOutput(), nil
	}

	sinceStr := input.Since
	if sinceStr == "" {
		sinceStr = "7d"
	}

	sinceTime, err := parseSince(sinceStr)
	if err != nil {
		return errorResult(fmt.Sprintf("parsing since duration: %s", err)), emptyMetricsOutput(), nil
	}

	metrics, err := s.metricsCalc.Calculate(sinceTime)
	if err != nil {
		return errorResult(fmt.Sprintf("calculating metrics: %s", err)), emptyMetricsOutput(), nil
	}

	out := metricsOutput{
		TasksCreated:   metrics.TasksCreated,
		TasksCompleted: metrics.TasksCompleted,
		TasksClaimed:   metrics.TasksClaimed,
		TasksReleased:  metrics.TasksReleased,
		TasksReclaimed: metrics.TasksReclaimed,
		Decompositions: metrics.Decompositions,
		TasksByType:    metrics.TasksByType,
		StatusChanges:  metrics.StatusChanges,
		EventCount:     metrics.EventCount,
	}
	if metrics.OldestEvent != nil {
		out.OldestEvent = metrics.OldestEvent.Format(time.RFC3339)
	}
	if metrics.NewestEvent != nil {
		out.NewestEvent = metrics.NewestEvent.Format(time.RFC3339)
	}
	return nil, out, nil
}

// --- Helpers ---

func taskToOutput(t *models.Task) taskOutput {
	return taskOutput{
		ID:        t.ID,
		Title:     t.Title,
		Type:      string(t.Type),
		Status:    string(t.Status),
		Priority:  string(t.Priority),
		Project:   t.Project,
		Parent:    t.Parent,
		DependsOn: t.DependsOn,
		Assignee:  t.Assignee,
		Tags:      t.Tags,
		Created:   t.Created.Format(time.RFC3339),
		Updated:   t.Updated.Format(time.RFC3339),
	}
}

func flattenTree(node *core.TreeNode, depth int, acc []treeNodeOutput) []treeNodeOutput {
	acc = append(acc, treeNodeOutput{Task: taskToOutput(node.Task), Depth: depth})
	for _, child := range node.Children {
		acc = flattenTree(child, depth+1, acc)
	}
	return acc
}

func emptyMetricsOutput() metricsOutput {
	return metricsOutput{
		TasksByType:   make(map[string]int),
		StatusChanges: make(map[string]int),
	}
}

func errorResult(msg string) *gomcp.CallToolResult {
	return &gomcp.CallToolResult{
		Content: []gomcp.Content{&gomcp.TextContent{Text: msg}},
		IsError: true,
	}
}

// parseSince parses a human-friendly duration string like "7d", "30d", or
// "24h" into the corresponding time in the past.
func parseSince(s string) (time.Time, error) {
	now := time.Now().UTC()

	if len(s) < 2 {
		return time.Time{}, fmt.Errorf("invalid duration %q", s)
	}

	suffix := s[len(s)-1]
	numStr := s[:len(s)-1]
	var num int
	if _, err := fmt.Sscanf(numStr, "%d", &num); err != nil {
		return time.Time{}, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch suffix {
	case 'd':
		return now.AddDate(0, 0, -num), nil
	case 'h':
		return now.Add(-time.Duration(num) * time.Hour), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported duration suffix %q (use d or h)", string(suffix))
	}
}

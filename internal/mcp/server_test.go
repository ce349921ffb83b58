package mcp

import (
	"context"
	"testing"

	"github.com/valter-silva-au/taskgraph/internal/core"
	"github.com/valter-silva-au/taskgraph/internal/storage"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	base := t.TempDir()

	store, err := storage.NewTaskStore(base)
	if err != nil {
		t.Fatalf("NewTaskStore: %v", err)
	}
	claims, err := storage.NewClaimCoordinator(base)
	if err != nil {
		t.Fatalf("NewClaimCoordinator: %v", err)
	}
	svc := core.NewTaskService(store, storage.NewIndexManager(base), claims, nil, core.DefaultConfig())
	return NewServer(svc, nil, "test")
}

func TestHandleCreateAndGetTask(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	result, created, err := s.handleCreateTask(ctx, nil, createTaskInput{Title: "Write intro", Priority: "P1"})
	if err != nil {
		t.Fatalf("handleCreateTask: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("unexpected error result: %+v", result)
	}
	if created.Status != "inbox" || created.Priority != "P1" {
		t.Fatalf("unexpected created task: %+v", created)
	}

	_, got, err := s.handleGetTask(ctx, nil, getTaskInput{TaskID: created.ID})
	if err != nil {
		t.Fatalf("handleGetTask: %v", err)
	}
	if got.ID != created.ID || got.Title != "Write intro" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
}

func TestHandleCreateTask_MissingTitle(t *testing.T) {
	s := newTestServer(t)

	result, _, err := s.handleCreateTask(context.Background(), nil, createTaskInput{})
	if err != nil {
		t.Fatalf("handleCreateTask: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected error result for missing title")
	}
}

func TestHandleDecomposeAndTree(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, parent, err := s.handleCreateTask(ctx, nil, createTaskInput{Title: "Thesis", Type: "project"})
	if err != nil {
		t.Fatalf("handleCreateTask: %v", err)
	}

	result, decomposed, err := s.handleDecomposeTask(ctx, nil, decomposeTaskInput{
		ParentID:   parent.ID,
		Subtasks:   []string{"Outline", "Draft", "Revise"},
		Sequential: true,
	})
	if err != nil {
		t.Fatalf("handleDecomposeTask: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("unexpected error result: %+v", result)
	}
	if decomposed.Count != 3 {
		t.Fatalf("expected 3 subtasks, got %d", decomposed.Count)
	}
	if len(decomposed.Tasks[1].DependsOn) != 1 {
		t.Fatalf("sequential chain missing: %+v", decomposed.Tasks[1])
	}

	_, tree, err := s.handleGetTaskTree(ctx, nil, getTaskTreeInput{RootID: parent.ID})
	if err != nil {
		t.Fatalf("handleGetTaskTree: %v", err)
	}
	if tree.Count != 4 || len(tree.Nodes) != 4 {
		t.Fatalf("expected 4 nodes in preorder, got %+v", tree)
	}
	if tree.Nodes[0].Task.ID != parent.ID || tree.Nodes[0].Depth != 0 {
		t.Fatalf("first node should be the root at depth 0: %+v", tree.Nodes[0])
	}
	for _, node := range tree.Nodes[1:] {
		if node.Depth != 1 || node.Task.Parent != parent.ID {
			t.Fatalf("subtask node must sit at depth 1 under %s: %+v", parent.ID, node)
		}
	}
}

func TestHandleGetTaskTree_SchemaSafeOutput(t *testing.T) {
	// Registering the tools infers JSON schemas from the output types; a
	// self-referential tree type would make NewServer panic here.
	s := newTestServer(t)
	ctx := context.Background()

	_, parent, err := s.handleCreateTask(ctx, nil, createTaskInput{Title: "Root", Type: "epic"})
	if err != nil {
		t.Fatalf("handleCreateTask: %v", err)
	}
	_, child, err := s.handleCreateTask(ctx, nil, createTaskInput{Title: "Leaf", Parent: parent.ID})
	if err != nil {
		t.Fatalf("handleCreateTask: %v", err)
	}
	_, grand, err := s.handleCreateTask(ctx, nil, createTaskInput{Title: "Deep leaf", Parent: child.ID})
	if err != nil {
		t.Fatalf("handleCreateTask: %v", err)
	}

	_, tree, err := s.handleGetTaskTree(ctx, nil, getTaskTreeInput{})
	if err != nil {
		t.Fatalf("handleGetTaskTree: %v", err)
	}
	wantDepths := map[string]int{parent.ID: 0, child.ID: 1, grand.ID: 2}
	if tree.Count != len(wantDepths) {
		t.Fatalf("expected %d nodes, got %+v", len(wantDepths), tree)
	}
	for _, node := range tree.Nodes {
		if want, ok := wantDepths[node.Task.ID]; !ok || node.Depth != want {
			t.Fatalf("node %s at depth %d, want %d", node.Task.ID, node.Depth, wantDepths[node.Task.ID])
		}
	}
}

func TestHandleClaimReleaseCycle(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, task, err := s.handleCreateTask(ctx, nil, createTaskInput{Title: "Solo job"})
	if err != nil {
		t.Fatalf("handleCreateTask: %v", err)
	}

	_, claim, err := s.handleClaimNextTask(ctx, nil, claimNextTaskInput{Holder: "worker-a"})
	if err != nil {
		t.Fatalf("handleClaimNextTask: %v", err)
	}
	if !claim.Claimed || claim.Task.ID != task.ID {
		t.Fatalf("unexpected claim: %+v", claim)
	}

	// Nothing else is claimable while the task is held.
	_, second, err := s.handleClaimNextTask(ctx, nil, claimNextTaskInput{Holder: "worker-b"})
	if err != nil {
		t.Fatalf("handleClaimNextTask: %v", err)
	}
	if second.Claimed {
		t.Fatalf("second claim should find nothing: %+v", second)
	}

	// A release by a worker that does not hold the claim is routine, not an
	// error, and changes nothing.
	result, out, err := s.handleReleaseTask(ctx, nil, releaseTaskInput{TaskID: task.ID, Holder: "worker-b", Done: true})
	if err != nil {
		t.Fatalf("handleReleaseTask: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("non-holder release should not be an error result: %+v", result)
	}
	if out.Released {
		t.Fatalf("non-holder release must report released=false: %+v", out)
	}

	result, out, err = s.handleReleaseTask(ctx, nil, releaseTaskInput{TaskID: task.ID, Holder: "worker-a", Done: true})
	if err != nil {
		t.Fatalf("handleReleaseTask: %v", err)
	}
	if result != nil && result.IsError {
		t.Fatalf("unexpected error result: %+v", result)
	}
	if !out.Released || out.Message == "" {
		t.Fatalf("expected release confirmation: %+v", out)
	}

	_, got, err := s.handleGetTask(ctx, nil, getTaskInput{TaskID: task.ID})
	if err != nil {
		t.Fatalf("handleGetTask: %v", err)
	}
	if got.Status != "done" {
		t.Fatalf("release with done did not complete the task: %s", got.Status)
	}
}

func TestHandleUpdateTask_InvalidStatus(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, task, err := s.handleCreateTask(ctx, nil, createTaskInput{Title: "Typo target"})
	if err != nil {
		t.Fatalf("handleCreateTask: %v", err)
	}

	result, _, err := s.handleUpdateTask(ctx, nil, updateTaskInput{TaskID: task.ID, Status: "paused"})
	if err != nil {
		t.Fatalf("handleUpdateTask: %v", err)
	}
	if result == nil || !result.IsError {
		t.Fatal("expected error result for invalid status")
	}
}

func TestHandleRebuildIndex(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two"} {
		if _, _, err := s.handleCreateTask(ctx, nil, createTaskInput{Title: title}); err != nil {
			t.Fatalf("handleCreateTask: %v", err)
		}
	}

	_, out, err := s.handleRebuildIndex(ctx, nil, rebuildIndexInput{})
	if err != nil {
		t.Fatalf("handleRebuildIndex: %v", err)
	}
	if out.Tasks != 2 {
		t.Fatalf("expected 2 indexed tasks, got %d", out.Tasks)
	}
}

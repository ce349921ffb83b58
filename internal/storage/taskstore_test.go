package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

func newTestStore(t *testing.T) TaskStore {
	t.Helper()
	store, err := NewTaskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewTaskStore: %v", err)
	}
	return store
}

func storeTask(id string) *models.Task {
	return &models.Task{
		ID:       id,
		Title:    "Task " + id,
		Type:     models.TypeTask,
		Status:   models.StatusInbox,
		Priority: models.P2,
		Created:  time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
		Updated:  time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCreateReadRoundTrip(t *testing.T) {
	store := newTestStore(t)

	task := storeTask("20260201-write-intro")
	task.DependsOn = []string{"20260131-outline"}
	task.Body = "Draft the introduction chapter."

	if err := store.Create(task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.Read(task.ID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Title != task.Title || got.Status != task.Status {
		t.Fatalf("round trip lost fields: %+v", got)
	}
	if len(got.DependsOn) != 1 || got.DependsOn[0] != "20260131-outline" {
		t.Fatalf("round trip lost dependencies: %+v", got.DependsOn)
	}
	if got.Body == "" {
		t.Fatal("round trip lost body")
	}
}

func TestCreate_DuplicateID(t *testing.T) {
	store := newTestStore(t)
	task := storeTask("20260201-dup")

	if err := store.Create(task); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.Create(task); err == nil {
		t.Fatal("expected error creating duplicate id")
	}
}

func TestRead_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read("20260201-missing")
	if !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestRead_Malformed(t *testing.T) {
	store := newTestStore(t)

	path := store.Path("20260201-broken")
	if err := os.WriteFile(path, []byte("no frontmatter here\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, err := store.Read("20260201-broken")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for malformed document, got %v", err)
	}
}

func TestUpdate_BumpsTimestampAndAppliesMutation(t *testing.T) {
	store := newTestStore(t)
	task := storeTask("20260201-bump")
	if err := store.Create(task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := store.Update(task.ID, func(t *models.Task) error {
		t.Status = models.StatusActive
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Status != models.StatusActive {
		t.Fatalf("mutation not applied: %s", updated.Status)
	}
	if !updated.Updated.After(task.Created) {
		t.Fatalf("updated timestamp not bumped: %v", updated.Updated)
	}
}

func TestUpdate_MutationErrorAbandonsWrite(t *testing.T) {
	store := newTestStore(t)
	task := storeTask("20260201-abort")
	if err := store.Create(task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	wantErr := errors.New("refused")
	_, err := store.Update(task.ID, func(t *models.Task) error {
		t.Status = models.StatusDone
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected mutation error, got %v", err)
	}

	got, err := store.Read(task.ID)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Status != models.StatusInbox {
		t.Fatalf("abandoned mutation leaked to disk: %s", got.Status)
	}
}

func TestArchiveUnarchive(t *testing.T) {
	store := newTestStore(t)
	task := storeTask("20260201-archive")
	if err := store.Create(task); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.Archive(task.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if store.Exists(task.ID) {
		t.Fatal("archived task still visible as active")
	}
	if _, err := store.Read(task.ID); !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound after archive, got %v", err)
	}

	archived := filepath.Join(store.BasePath(), tasksDirName, archivedDirName, task.ID+taskFileExt)
	if _, err := os.Stat(archived); err != nil {
		t.Fatalf("archived file missing: %v", err)
	}

	restored, err := store.Unarchive(task.ID)
	if err != nil {
		t.Fatalf("Unarchive: %v", err)
	}
	if restored.ID != task.ID {
		t.Fatalf("unexpected restored task: %+v", restored)
	}
	if !store.Exists(task.ID) {
		t.Fatal("unarchived task not visible as active")
	}
}

func TestListAll_SortedAndSkipsArchived(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"20260203-c", "20260201-a", "20260202-b"} {
		if err := store.Create(storeTask(id)); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	if err := store.Archive("20260202-b"); err != nil {
		t.Fatalf("Archive: %v", err)
	}

	tasks, err := store.ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 active tasks, got %d", len(tasks))
	}
	if tasks[0].ID != "20260201-a" || tasks[1].ID != "20260203-c" {
		t.Fatalf("unexpected order: %s, %s", tasks[0].ID, tasks[1].ID)
	}
}

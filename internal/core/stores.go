package core

import (
	"time"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// TaskStore is the subset of the storage task store that core services
// need. The interface is defined locally to avoid importing storage.
type TaskStore interface {
	Create(task *models.Task) error
	Read(id string) (*models.Task, error)
	Write(task *models.Task) error
	Update(id string, mutate func(*models.Task) error) (*models.Task, error)
	Archive(id string) error
	Unarchive(id string) (*models.Task, error)
	Exists(id string) bool
	ListAll() ([]*models.Task, error)
	BasePath() string
}

// Index is the subset of the storage index manager that core services
// need.
type Index interface {
	Rebuild(tasks []*models.Task) ([]models.IndexEntry, error)
	Upsert(task *models.Task) error
	Remove(id string) error
	Entries() ([]models.IndexEntry, error)
	Query(filter models.IndexFilter) ([]models.IndexEntry, error)
}

// Claims is the subset of the storage claim coordinator that core services
// need.
type Claims interface {
	Claim(taskID, holder string) (bool, error)
	Release(taskID, holder string) (bool, error)
	Holder(taskID string) (*models.ClaimMarker, error)
	List() ([]models.ClaimMarker, error)
	ReclaimStale(timeout time.Duration) ([]string, error)
}

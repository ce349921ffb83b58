package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

const (
	claimsDirName = "claims"
	claimFileExt  = ".claim"
)

// ClaimCoordinator arbitrates exclusive task ownership between concurrent
// workers through marker files. Exclusivity rides on the filesystem's
// atomic exclusive-create: exactly one O_EXCL open of a given marker path
// can succeed.
type ClaimCoordinator interface {
	// Claim attempts to acquire the task for holder. Returns true on
	// success and false when another worker already holds the claim.
	// Losing the race is an expected outcome, not an error.
	Claim(taskID, holder string) (bool, error)

	// Release removes the marker if holder owns it. Releasing a claim held
	// by someone else, or not held at all, is a routine no-op returning
	// false.
	Release(taskID, holder string) (bool, error)

	// Holder returns the current marker for the task, or nil when
	// unclaimed.
	Holder(taskID string) (*models.ClaimMarker, error)

	// List returns all live markers sorted by task id.
	List() ([]models.ClaimMarker, error)

	// ReclaimStale force-removes markers older than timeout and returns
	// the reclaimed task ids.
	ReclaimStale(timeout time.Duration) ([]string, error)
}

type fileClaimCoordinator struct {
	basePath string
	now      func() time.Time
}

// NewClaimCoordinator creates a coordinator storing markers under
// basePath/claims.
func NewClaimCoordinator(basePath string) (ClaimCoordinator, error) {
	c := &fileClaimCoordinator{basePath: basePath, now: time.Now}
	if err := os.MkdirAll(c.claimsDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create claims directory: %w", err)
	}
	return c, nil
}

func (c *fileClaimCoordinator) claimsDir() string {
	return filepath.Join(c.basePath, claimsDirName)
}

func (c *fileClaimCoordinator) markerPath(taskID string) string {
	return filepath.Join(c.claimsDir(), taskID+claimFileExt)
}

func (c *fileClaimCoordinator) Claim(taskID, holder string) (bool, error) {
	marker := models.ClaimMarker{
		TaskID:   taskID,
		Holder:   holder,
		Acquired: c.now().UTC().Truncate(time.Second),
	}
	data, err := yaml.Marshal(&marker)
	if err != nil {
		return false, fmt.Errorf("failed to render claim marker: %w", err)
	}

	f, err := os.OpenFile(c.markerPath(taskID), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create claim marker for %s: %w", taskID, err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(c.markerPath(taskID))
		return false, fmt.Errorf("failed to write claim marker for %s: %w", taskID, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(c.markerPath(taskID))
		return false, fmt.Errorf("failed to close claim marker for %s: %w", taskID, err)
	}
	return true, nil
}

func (c *fileClaimCoordinator) Release(taskID, holder string) (bool, error) {
	marker, err := c.Holder(taskID)
	if err != nil {
		return false, err
	}
	if marker == nil || marker.Holder != holder {
		return false, nil
	}
	if err := os.Remove(c.markerPath(taskID)); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to remove claim marker for %s: %w", taskID, err)
	}
	return true, nil
}

func (c *fileClaimCoordinator) Holder(taskID string) (*models.ClaimMarker, error) {
	marker, err := c.readMarker(c.markerPath(taskID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return marker, nil
}

func (c *fileClaimCoordinator) List() ([]models.ClaimMarker, error) {
	entries, err := os.ReadDir(c.claimsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list claims: %w", err)
	}

	var markers []models.ClaimMarker
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), claimFileExt) {
			continue
		}
		marker, err := c.readMarker(filepath.Join(c.claimsDir(), e.Name()))
		if err != nil {
			if os.IsNotExist(err) {
				// Released between the directory scan and the read.
				continue
			}
			return nil, err
		}
		markers = append(markers, *marker)
	}
	sort.Slice(markers, func(i, j int) bool { return markers[i].TaskID < markers[j].TaskID })
	return markers, nil
}

func (c *fileClaimCoordinator) ReclaimStale(timeout time.Duration) ([]string, error) {
	markers, err := c.List()
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	var reclaimed []string
	for _, m := range markers {
		if !m.Stale(timeout, now) {
			continue
		}
		if err := os.Remove(c.markerPath(m.TaskID)); err != nil && !os.IsNotExist(err) {
			return reclaimed, fmt.Errorf("failed to reclaim %s: %w", m.TaskID, err)
		}
		reclaimed = append(reclaimed, m.TaskID)
	}
	return reclaimed, nil
}

func (c *fileClaimCoordinator) readMarker(path string) (*models.ClaimMarker, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read claim marker %s: %w", path, err)
	}

	var marker models.ClaimMarker
	if err := yaml.Unmarshal(data, &marker); err != nil {
		return nil, fmt.Errorf("claim marker %s is corrupt: %w", path, err)
	}
	marker.TaskID = strings.TrimSuffix(filepath.Base(path), claimFileExt)
	return &marker, nil
}

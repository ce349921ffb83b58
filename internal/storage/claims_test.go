package storage

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

func newTestClaims(t *testing.T) ClaimCoordinator {
	t.Helper()
	c, err := NewClaimCoordinator(t.TempDir())
	if err != nil {
		t.Fatalf("NewClaimCoordinator: %v", err)
	}
	return c
}

func TestClaim_Exclusive(t *testing.T) {
	c := newTestClaims(t)

	ok, err := c.Claim("20260201-task", "worker-a")
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = c.Claim("20260201-task", "worker-b")
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if ok {
		t.Fatal("second claim on held task must lose")
	}

	marker, err := c.Holder("20260201-task")
	if err != nil {
		t.Fatalf("Holder: %v", err)
	}
	if marker == nil || marker.Holder != "worker-a" {
		t.Fatalf("unexpected holder: %+v", marker)
	}
}

func TestClaim_ConcurrentSingleWinner(t *testing.T) {
	c := newTestClaims(t)

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan string, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(holder string) {
			defer wg.Done()
			ok, err := c.Claim("20260201-contested", holder)
			if err != nil {
				t.Errorf("Claim(%s): %v", holder, err)
				return
			}
			if ok {
				wins <- holder
			}
		}(fmt.Sprintf("worker-%02d", i))
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	if len(winners) != 1 {
		t.Fatalf("expected exactly one winner, got %v", winners)
	}

	marker, err := c.Holder("20260201-contested")
	if err != nil {
		t.Fatalf("Holder: %v", err)
	}
	if marker == nil || marker.Holder != winners[0] {
		t.Fatalf("marker holder %+v does not match winner %s", marker, winners[0])
	}
}

func TestRelease(t *testing.T) {
	c := newTestClaims(t)

	if _, err := c.Claim("20260201-task", "worker-a"); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	released, err := c.Release("20260201-task", "worker-b")
	if err != nil {
		t.Fatalf("release by non-holder: %v", err)
	}
	if released {
		t.Fatal("release by non-holder must be a no-op reporting false")
	}

	released, err = c.Release("20260201-task", "worker-a")
	if err != nil || !released {
		t.Fatalf("release by holder: released=%v err=%v", released, err)
	}

	released, err = c.Release("20260201-task", "worker-a")
	if err != nil {
		t.Fatalf("release of unclaimed task: %v", err)
	}
	if released {
		t.Fatal("release of unclaimed task must report false")
	}

	// Task is claimable again after release.
	ok, err := c.Claim("20260201-task", "worker-b")
	if err != nil || !ok {
		t.Fatalf("reclaim after release: ok=%v err=%v", ok, err)
	}
}

func TestReclaimStale(t *testing.T) {
	dir := t.TempDir()
	clock := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	c := &fileClaimCoordinator{basePath: dir, now: func() time.Time { return clock }}
	if _, err := NewClaimCoordinator(dir); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	if _, err := c.Claim("20260201-old", "worker-a"); err != nil {
		t.Fatalf("Claim: %v", err)
	}
	clock = clock.Add(3 * time.Hour)
	if _, err := c.Claim("20260201-fresh", "worker-b"); err != nil {
		t.Fatalf("Claim: %v", err)
	}

	reclaimed, err := c.ReclaimStale(2 * time.Hour)
	if err != nil {
		t.Fatalf("ReclaimStale: %v", err)
	}
	if len(reclaimed) != 1 || reclaimed[0] != "20260201-old" {
		t.Fatalf("unexpected reclaimed set: %v", reclaimed)
	}

	markers, err := c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(markers) != 1 || markers[0].TaskID != "20260201-fresh" {
		t.Fatalf("unexpected surviving markers: %+v", markers)
	}

	// The reclaimed task is claimable by a new worker.
	ok, err := c.Claim("20260201-old", "worker-c")
	if err != nil || !ok {
		t.Fatalf("claim after reclaim: ok=%v err=%v", ok, err)
	}
}

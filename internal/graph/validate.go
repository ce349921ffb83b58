package graph

import (
	"sort"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// ValidateEdge checks whether adding an edge from source to target (a new
// parent or depends_on reference on source) would create a cycle. Parent and
// dependency edges share one reachability space: a cycle through any mix of
// the two is still a cycle.
//
// The check runs against the graph as it is; callers validate before
// committing the mutation. A nil return means the edge is safe.
func (g *Graph) ValidateEdge(sourceID, targetID string) error {
	if sourceID == targetID {
		return &models.CycleError{
			SourceID: sourceID,
			TargetID: targetID,
			Path:     []string{sourceID, targetID},
		}
	}
	if !g.Contains(targetID) {
		return nil
	}

	// The new edge source -> target closes a cycle exactly when source is
	// already reachable from target.
	if path := g.pathBetween(targetID, sourceID); path != nil {
		return &models.CycleError{
			SourceID: sourceID,
			TargetID: targetID,
			Path:     append([]string{sourceID}, path...),
		}
	}
	return nil
}

// pathBetween returns a path from -> ... -> to along outgoing parent and
// depends_on edges, or nil if to is unreachable. Neighbors are visited in
// sorted order so the witness path is deterministic.
func (g *Graph) pathBetween(from, to string) []string {
	visited := make(map[string]bool)
	var path []string

	var walk func(id string) bool
	walk = func(id string) bool {
		if visited[id] {
			return false
		}
		visited[id] = true
		path = append(path, id)
		if id == to {
			return true
		}
		for _, next := range g.outgoing(id) {
			if walk(next) {
				return true
			}
		}
		path = path[:len(path)-1]
		return false
	}

	if walk(from) {
		return path
	}
	return nil
}

// outgoing returns the ids that id references, deduplicated and sorted.
func (g *Graph) outgoing(id string) []string {
	n := g.nodes[id]
	if n == nil {
		return nil
	}
	set := make(map[string]bool, len(n.DependsOn)+1)
	if n.Parent != "" {
		set[n.Parent] = true
	}
	for _, dep := range n.DependsOn {
		set[dep] = true
	}
	out := make([]string, 0, len(set))
	for ref := range set {
		out = append(out, ref)
	}
	sort.Strings(out)
	return out
}

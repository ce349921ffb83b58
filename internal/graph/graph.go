// Package graph implements the in-memory view of parent and dependency
// edges over the task store. It computes the derived properties (ready,
// leaf, depth) and rejects graph-invalidating edges before they are
// committed.
//
// The graph is an arena of nodes keyed by task id; edges are stored as id
// references, never live pointers, so a stale or dangling reference can be
// detected rather than followed.
package graph

import (
	"sort"

	"github.com/valter-silva-au/taskgraph/pkg/models"
)

// Node is the graph's lightweight projection of a task. Task is set when the
// graph was built from full documents and nil when built from index entries.
type Node struct {
	ID        string
	Title     string
	Status    models.TaskStatus
	Priority  models.Priority
	Project   string
	Parent    string
	DependsOn []string

	Task *models.Task
}

// Options control policy knobs for derived-property computation.
type Options struct {
	// ParentsReady controls whether a non-leaf task with incomplete
	// children can be ready. True (the default policy) means parents are
	// independently ready unless explicitly blocked; false restricts the
	// ready set to leaves.
	ParentsReady bool
}

// Graph is the in-memory arena of task nodes plus the reverse child index.
type Graph struct {
	nodes    map[string]*Node
	children map[string][]string
	opts     Options
}

// FromTasks builds a graph from full task documents.
func FromTasks(tasks []*models.Task, opts Options) *Graph {
	g := newGraph(opts, len(tasks))
	for _, t := range tasks {
		g.add(&Node{
			ID:        t.ID,
			Title:     t.Title,
			Status:    t.Status,
			Priority:  t.Priority,
			Project:   t.Project,
			Parent:    t.Parent,
			DependsOn: t.DependsOn,
			Task:      t,
		})
	}
	g.indexChildren()
	return g
}

// FromEntries builds a graph from index entries. Derived fields on the
// entries are ignored; the graph recomputes them from edge state.
func FromEntries(entries []models.IndexEntry, opts Options) *Graph {
	g := newGraph(opts, len(entries))
	for _, e := range entries {
		g.add(&Node{
			ID:        e.ID,
			Title:     e.Title,
			Status:    e.Status,
			Priority:  e.Priority,
			Project:   e.Project,
			Parent:    e.Parent,
			DependsOn: e.DependsOn,
		})
	}
	g.indexChildren()
	return g
}

func newGraph(opts Options, size int) *Graph {
	return &Graph{
		nodes:    make(map[string]*Node, size),
		children: make(map[string][]string),
		opts:     opts,
	}
}

func (g *Graph) add(n *Node) {
	g.nodes[n.ID] = n
}

func (g *Graph) indexChildren() {
	g.children = make(map[string][]string)
	for _, n := range g.nodes {
		if n.Parent != "" {
			g.children[n.Parent] = append(g.children[n.Parent], n.ID)
		}
	}
	for _, ids := range g.children {
		sort.Strings(ids)
	}
}

// Node returns the node for id, or nil if the id is not in the graph.
func (g *Graph) Node(id string) *Node {
	return g.nodes[id]
}

// Contains reports whether id is present in the graph.
func (g *Graph) Contains(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int { return len(g.nodes) }

// Children returns the sorted ids of tasks whose parent is id.
func (g *Graph) Children(id string) []string {
	return g.children[id]
}

// Leaf reports whether no other task references id as its parent.
func (g *Graph) Leaf(id string) bool {
	return len(g.children[id]) == 0
}

// Depth returns the distance from the root along parent edges: 0 for a
// root, 1 + depth(parent) otherwise. A dangling or cyclic parent chain
// terminates the walk rather than recursing forever.
func (g *Graph) Depth(id string) int {
	depth := 0
	seen := map[string]bool{id: true}

	cur := g.nodes[id]
	for cur != nil && cur.Parent != "" {
		parent := g.nodes[cur.Parent]
		if parent == nil || seen[parent.ID] {
			break
		}
		seen[parent.ID] = true
		depth++
		cur = parent
	}
	return depth
}

// Ready reports whether the task is eligible to be claimed: status inbox or
// active, every dependency done, and (under the leaves-only policy) no
// children. A dependency missing from the graph counts as unmet.
func (g *Graph) Ready(id string) bool {
	n := g.nodes[id]
	if n == nil {
		return false
	}
	if n.Status != models.StatusInbox && n.Status != models.StatusActive {
		return false
	}
	for _, dep := range n.DependsOn {
		depNode := g.nodes[dep]
		if depNode == nil || depNode.Status != models.StatusDone {
			return false
		}
	}
	if !g.opts.ParentsReady && !g.Leaf(id) {
		return false
	}
	return true
}

// ReadyNodes returns all ready nodes, optionally restricted to a project,
// sorted by priority then id. Ids carry a date prefix, so the id tiebreak
// is chronological.
func (g *Graph) ReadyNodes(project string) []*Node {
	var ready []*Node
	for _, n := range g.nodes {
		if project != "" && n.Project != project {
			continue
		}
		if g.Ready(n.ID) {
			ready = append(ready, n)
		}
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].Priority != ready[j].Priority {
			return ready[i].Priority < ready[j].Priority
		}
		return ready[i].ID < ready[j].ID
	})
	return ready
}

// DependentsOf returns the ids of tasks that name id in their depends_on.
func (g *Graph) DependentsOf(id string) []string {
	var out []string
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if dep == id {
				out = append(out, n.ID)
				break
			}
		}
	}
	sort.Strings(out)
	return out
}

// Entry projects the node into its denormalized index form, recomputing the
// derived leaf and depth fields from current edge state.
func (g *Graph) Entry(id string) (models.IndexEntry, bool) {
	n := g.nodes[id]
	if n == nil {
		return models.IndexEntry{}, false
	}
	return models.IndexEntry{
		ID:        n.ID,
		Title:     n.Title,
		Status:    n.Status,
		Priority:  n.Priority,
		Project:   n.Project,
		Parent:    n.Parent,
		DependsOn: n.DependsOn,
		Leaf:      g.Leaf(n.ID),
		Depth:     g.Depth(n.ID),
	}, true
}

// Entries projects every node, sorted by id.
func (g *Graph) Entries() []models.IndexEntry {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entries := make([]models.IndexEntry, 0, len(ids))
	for _, id := range ids {
		entry, _ := g.Entry(id)
		entries = append(entries, entry)
	}
	return entries
}

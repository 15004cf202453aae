// Package depgraph implements the directed multigraph of spec.md
// §4.3: nodes are keyed by arbitrary string identifiers (package paths
// and synthetic keys), edges model "depends on", and subscribers are
// notified whenever the node they watch or any transitive dependency
// changes. Generalizes the teacher's file-keyed DependencyGraph in
// server/symbols.go beyond file-import edges to any string key.
package depgraph

// Handle is returned by Subscribe; the caller releases it via
// Unsubscribe when it no longer cares about a key.
type Handle struct {
	key string
	id  uint64
}

// Graph is a directed multigraph over string-keyed nodes.
type Graph struct {
	// edges[a][b] being present means a depends on b: a change to b
	// must notify subscribers of a. Parallel edges are not tracked
	// separately since fanout is determined by reachability alone.
	edges map[string]map[string]struct{}
	// reverse[b][a] mirrors edges the other way, letting Changed(b)
	// find every node that transitively depends on b without a full
	// graph scan.
	reverse map[string]map[string]struct{}

	subscribers map[string]map[uint64]func(key string)
	nextID      uint64
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		edges:       map[string]map[string]struct{}{},
		reverse:     map[string]map[string]struct{}{},
		subscribers: map[string]map[uint64]func(key string){},
	}
}

// AddNode ensures key exists with no edges, a no-op if already present.
func (g *Graph) AddNode(key string) {
	if _, ok := g.edges[key]; !ok {
		g.edges[key] = map[string]struct{}{}
	}
	if _, ok := g.reverse[key]; !ok {
		g.reverse[key] = map[string]struct{}{}
	}
}

// AddEdge records that from depends on to: a change notification on to
// propagates to from's subscribers.
func (g *Graph) AddEdge(from, to string) {
	g.AddNode(from)
	g.AddNode(to)
	g.edges[from][to] = struct{}{}
	g.reverse[to][from] = struct{}{}
}

// AddDependency is an alias for AddEdge matching the vocabulary spec.md
// §4.3 uses ("add edge") and §9's program-coordinator prose ("add
// dependency") interchangeably.
func (g *Graph) AddDependency(from, to string) {
	g.AddEdge(from, to)
}

// RemoveNode deletes key and every edge incident to it, in either
// direction.
func (g *Graph) RemoveNode(key string) {
	for to := range g.edges[key] {
		delete(g.reverse[to], key)
	}
	for from := range g.reverse[key] {
		delete(g.edges[from], key)
	}
	delete(g.edges, key)
	delete(g.reverse, key)
	delete(g.subscribers, key)
}

// Subscribe registers fn to fire whenever key, or any node that key
// (transitively) depends on, changes via Changed. Returns a Handle for
// Unsubscribe.
func (g *Graph) Subscribe(key string, fn func(key string)) Handle {
	g.nextID++
	id := g.nextID
	if g.subscribers[key] == nil {
		g.subscribers[key] = map[uint64]func(string){}
	}
	g.subscribers[key][id] = fn
	return Handle{key: key, id: id}
}

// Unsubscribe releases a subscription previously returned by Subscribe.
func (g *Graph) Unsubscribe(h Handle) {
	delete(g.subscribers[h.key], h.id)
}

// Changed notifies subscribers of key and of every node transitively
// reachable from key by following reverse edges (i.e. every dependent),
// each exactly once regardless of how many paths reach it — the
// cycle-safety spec.md §4.3 requires.
func (g *Graph) Changed(key string) {
	visited := map[string]struct{}{}
	var visit func(k string)
	visit = func(k string) {
		if _, seen := visited[k]; seen {
			return
		}
		visited[k] = struct{}{}
		g.notify(k)
		for dependent := range g.reverse[k] {
			visit(dependent)
		}
	}
	visit(key)
}

func (g *Graph) notify(key string) {
	for _, fn := range g.subscribers[key] {
		fn(key)
	}
}

// DependsOn reports whether from has a direct edge to to.
func (g *Graph) DependsOn(from, to string) bool {
	_, ok := g.edges[from][to]
	return ok
}

// Nodes returns every known node key, order unspecified.
func (g *Graph) Nodes() []string {
	out := make([]string, 0, len(g.edges))
	for k := range g.edges {
		out = append(out, k)
	}
	return out
}

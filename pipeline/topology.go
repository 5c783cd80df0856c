package pipeline

import (
	"fmt"

	langextract "github.com/avalon-data/langextract"
)

// Topology is the step dependency graph, ordered into layers where every
// step in a layer depends only on steps in earlier layers. Grounded on the
// pack's `turtacn-kubestack-ai` planning.DAG (Kahn's algorithm over an
// in-degree map with an edge adjacency list), adapted to compute layers in
// a single pass instead of a topological order followed by a second
// level-assignment pass over it.
type Topology struct {
	steps  map[string]Step
	order  []string   // all step IDs, layer by layer
	Layers [][]string // step IDs grouped by layer; layer 0 has no dependencies
}

// NewTopology builds and validates the DAG from a step list, per spec
// §4.7: "Build a directed graph from depends_on edges. Reject if cyclic."
func NewTopology(steps []Step) (*Topology, error) {
	nodes := make(map[string]Step, len(steps))
	for _, s := range steps {
		nodes[s.ID] = s
	}

	inDegree := make(map[string]int, len(steps))
	dependents := make(map[string][]string, len(steps))
	for _, s := range steps {
		inDegree[s.ID] = len(s.DependsOn)
		for _, dep := range s.DependsOn {
			if _, ok := nodes[dep]; !ok {
				return nil, fmt.Errorf("pipeline: step %q depends on unknown step %q", s.ID, dep)
			}
			dependents[dep] = append(dependents[dep], s.ID)
		}
	}

	var layers [][]string
	remaining := len(nodes)
	for remaining > 0 {
		var layer []string
		for id, degree := range inDegree {
			if degree == 0 {
				layer = append(layer, id)
			}
		}
		if len(layer) == 0 {
			return nil, langextract.ErrCyclicDependency
		}
		for _, id := range layer {
			delete(inDegree, id)
			remaining--
			for _, dependent := range dependents[id] {
				inDegree[dependent]--
			}
		}
		layers = append(layers, layer)
	}

	var order []string
	for _, layer := range layers {
		order = append(order, layer...)
	}

	return &Topology{steps: nodes, order: order, Layers: layers}, nil
}

// Step returns the step definition for id.
func (t *Topology) Step(id string) (Step, bool) {
	s, ok := t.steps[id]
	return s, ok
}

// Order returns all step IDs in a valid execution order (layer by layer,
// arbitrary order within a layer).
func (t *Topology) Order() []string {
	return t.order
}

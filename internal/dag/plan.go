package dag

import (
	"container/heap"
	"fmt"
)

// Plan is the subset of a Graph needed to reach a set of targets, together
// with a deterministic execution order.
type Plan struct {
	Targets []string
	// Order is a topological order of the planned tasks. Ties are broken by
	// declaration order.
	Order []*Task

	graph *Graph
	in    map[string]bool
	preds map[string][]string
	succs map[string][]string
}

// Plan computes the closure of targets over hard dependencies. Ordering-only
// edges between planned tasks are honored; those reaching outside the plan
// are ignored. An empty target list plans every task.
func (g *Graph) Plan(targets ...string) (*Plan, error) {
	if len(targets) == 0 {
		for _, t := range g.tasks {
			targets = append(targets, t.Name)
		}
	}

	p := &Plan{
		Targets: append([]string(nil), targets...),
		graph:   g,
		in:      make(map[string]bool),
		preds:   make(map[string][]string),
		succs:   make(map[string][]string),
	}

	var include func(n *node)
	include = func(n *node) {
		if p.in[n.task.Name] {
			return
		}
		p.in[n.task.Name] = true
		for _, d := range n.deps {
			include(d)
		}
	}
	for _, name := range targets {
		n, ok := g.nodes[name]
		if !ok {
			return nil, configErrorf(ErrUnknownTask, "target %q is not a declared task", name)
		}
		include(n)
	}

	for _, t := range g.tasks {
		if !p.in[t.Name] {
			continue
		}
		n := g.nodes[t.Name]
		for _, pred := range append(append([]*node{}, n.deps...), n.after...) {
			if !p.in[pred.task.Name] || contains(p.preds[t.Name], pred.task.Name) {
				continue
			}
			p.preds[t.Name] = append(p.preds[t.Name], pred.task.Name)
			p.succs[pred.task.Name] = append(p.succs[pred.task.Name], t.Name)
		}
	}

	order, err := p.topoSort()
	if err != nil {
		return nil, err
	}
	p.Order = order
	return p, nil
}

// topoSort is Kahn's algorithm with a min-heap on declaration index.
func (p *Plan) topoSort() ([]*Task, error) {
	pending := make(map[string]int, len(p.in))
	ready := &indexHeap{}
	for _, t := range p.graph.tasks {
		if !p.in[t.Name] {
			continue
		}
		pending[t.Name] = len(p.preds[t.Name])
		if pending[t.Name] == 0 {
			heap.Push(ready, p.graph.nodes[t.Name])
		}
	}

	order := make([]*Task, 0, len(p.in))
	for ready.Len() > 0 {
		n := heap.Pop(ready).(*node)
		order = append(order, n.task)
		for _, s := range p.succs[n.task.Name] {
			pending[s]--
			if pending[s] == 0 {
				heap.Push(ready, p.graph.nodes[s])
			}
		}
	}

	if len(order) != len(p.in) {
		// Unreachable for a Graph built by New.
		return nil, configErrorf(ErrCycle, "plan for %v could not be ordered", p.Targets)
	}
	return order, nil
}

// Contains reports whether the task is part of the plan.
func (p *Plan) Contains(name string) bool {
	return p.in[name]
}

// Len returns the number of planned tasks.
func (p *Plan) Len() int {
	return len(p.Order)
}

// Predecessors returns the planned tasks that must finish before name starts,
// hard and ordering-only alike, in declaration order.
func (p *Plan) Predecessors(name string) []string {
	return p.preds[name]
}

// Successors returns the planned tasks waiting on name.
func (p *Plan) Successors(name string) []string {
	return p.succs[name]
}

// HardDependencies returns the hard dependencies of name. They are always
// part of the plan.
func (p *Plan) HardDependencies(name string) []string {
	n := p.graph.mustNode(name)
	out := make([]string, 0, len(n.deps))
	for _, d := range n.deps {
		out = append(out, d.task.Name)
	}
	return out
}

// Names returns the planned task names in execution order.
func (p *Plan) Names() []string {
	names := make([]string, len(p.Order))
	for i, t := range p.Order {
		names[i] = t.Name
	}
	return names
}

func (p *Plan) String() string {
	return fmt.Sprintf("plan%v", p.Names())
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type indexHeap []*node

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i].index < h[j].index }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(*node)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	*h = old[:len(old)-1]
	return n
}

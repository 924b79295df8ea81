package dag

import "fmt"

// New validates the tasks and links them into a Graph. Task order is kept as
// the declaration order.
func New(tasks ...*Task) (*Graph, error) {
	g := &Graph{nodes: make(map[string]*node, len(tasks))}

	for i, t := range tasks {
		if t == nil || t.Name == "" {
			return nil, configErrorf(ErrConfiguration, "task #%d has no name", i+1)
		}
		if _, exists := g.nodes[t.Name]; exists {
			return nil, configErrorf(ErrDuplicateTask, "task %q is declared more than once", t.Name)
		}
		g.nodes[t.Name] = &node{task: t, index: i}
		g.tasks = append(g.tasks, t)
	}

	for _, t := range g.tasks {
		n := g.nodes[t.Name]
		var err error
		if n.deps, err = g.resolve(t.Name, "depends_on", t.DependsOn); err != nil {
			return nil, err
		}
		if n.after, err = g.resolve(t.Name, "must_run_after", t.MustRunAfter); err != nil {
			return nil, err
		}
	}

	if err := g.detectCycles(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Graph) resolve(owner, field string, names []string) ([]*node, error) {
	seen := make(map[string]bool, len(names))
	out := make([]*node, 0, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		n, ok := g.nodes[name]
		if !ok {
			return nil, configErrorf(ErrUnknownTask, "task %q %s references unknown task %q", owner, field, name)
		}
		out = append(out, n)
	}
	return out, nil
}

// detectCycles runs a depth-first search over the union of hard and
// ordering-only edges and reports the first cycle found as a path.
func (g *Graph) detectCycles() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(n *node) error
	visit = func(n *node) error {
		state[n.task.Name] = visiting
		stack = append(stack, n.task.Name)

		preds := append(append([]*node{}, n.deps...), n.after...)
		for _, p := range preds {
			switch state[p.task.Name] {
			case visiting:
				return cycleError(cyclePath(stack, p.task.Name))
			case unvisited:
				if err := visit(p); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[n.task.Name] = done
		return nil
	}

	for _, t := range g.tasks {
		if state[t.Name] == unvisited {
			if err := visit(g.nodes[t.Name]); err != nil {
				return err
			}
		}
	}
	return nil
}

// cyclePath renders the stack segment starting at name, in execution order.
func cyclePath(stack []string, name string) []string {
	start := 0
	for i, s := range stack {
		if s == name {
			start = i
			break
		}
	}
	seg := stack[start:]
	path := make([]string, 0, len(seg)+1)
	for i := len(seg) - 1; i >= 0; i-- {
		path = append(path, seg[i])
	}
	return append(path, seg[len(seg)-1])
}

// Tasks returns every task in declaration order.
func (g *Graph) Tasks() []*Task {
	return append([]*Task(nil), g.tasks...)
}

// Task returns the task with the given name.
func (g *Graph) Task(name string) (*Task, bool) {
	n, ok := g.nodes[name]
	if !ok {
		return nil, false
	}
	return n.task, true
}

// Len returns the number of tasks.
func (g *Graph) Len() int {
	return len(g.tasks)
}

func (g *Graph) mustNode(name string) *node {
	n, ok := g.nodes[name]
	if !ok {
		panic(fmt.Sprintf("dag: task %q not in graph", name))
	}
	return n
}

package astar

import "github.com/metalagman/goap/internal/goap"

type node struct {
	state  goap.WorldState
	g      float64
	h      float64
	seq    int
	parent *node
	action *goap.Action
}

func (n *node) f() float64 {
	return n.g + n.h
}

func (n *node) plan(goal goap.Goal) *goap.Plan {
	var reversed []goap.Action
	for cur := n; cur.parent != nil; cur = cur.parent {
		reversed = append(reversed, *cur.action)
	}
	actions := make([]goap.Action, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		actions = append(actions, reversed[i])
	}
	return &goap.Plan{Actions: actions, Goal: goal}
}

// nodeQueue is a min-heap on f, then h, then insertion order.
type nodeQueue []*node

func (q nodeQueue) Len() int { return len(q) }

func (q nodeQueue) Less(i, j int) bool {
	if q[i].f() != q[j].f() {
		return q[i].f() < q[j].f()
	}
	if q[i].h != q[j].h {
		return q[i].h < q[j].h
	}
	return q[i].seq < q[j].seq
}

func (q nodeQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *nodeQueue) Push(x any) { *q = append(*q, x.(*node)) }

func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

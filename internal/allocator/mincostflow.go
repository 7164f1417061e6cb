package allocator

import (
	"math"
	"time"
)

// flowNetwork is a small successive-shortest-path min-cost-flow solver.
// Both optimizers reduce to it: the assigner as a max-weight matching
// (negative costs, augment while the marginal path gain is positive),
// the distributor as a transportation problem (positive costs, augment
// until demand or supply is exhausted).
type flowNetwork struct {
	n     int
	graph [][]int
	edges []flowEdge
}

type flowEdge struct {
	from, to int
	cap      int
	cost     float64
}

func newFlowNetwork(n int) *flowNetwork {
	return &flowNetwork{
		n:     n,
		graph: make([][]int, n),
	}
}

// addEdge inserts a directed edge and its residual twin. The returned
// id can be used with flowOf after solving. Residual edges live at id^1.
func (f *flowNetwork) addEdge(from, to, capacity int, cost float64) int {
	id := len(f.edges)
	f.edges = append(f.edges, flowEdge{from: from, to: to, cap: capacity, cost: cost})
	f.edges = append(f.edges, flowEdge{from: to, to: from, cap: 0, cost: -cost})
	f.graph[from] = append(f.graph[from], id)
	f.graph[to] = append(f.graph[to], id+1)
	return id
}

// flowOf reports how many units were pushed through edge id.
func (f *flowNetwork) flowOf(id int) int {
	return f.edges[id^1].cap
}

// shortestPath runs SPFA from s, returning per-node distances and the
// edge used to reach each node. Handles the negative edge costs the
// assigner produces.
func (f *flowNetwork) shortestPath(s int) (dist []float64, prevEdge []int) {
	dist = make([]float64, f.n)
	prevEdge = make([]int, f.n)
	inQueue := make([]bool, f.n)
	for i := range dist {
		dist[i] = math.Inf(1)
		prevEdge[i] = -1
	}
	dist[s] = 0

	queue := []int{s}
	inQueue[s] = true
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		inQueue[u] = false
		for _, id := range f.graph[u] {
			e := f.edges[id]
			if e.cap <= 0 {
				continue
			}
			if nd := dist[u] + e.cost; nd < dist[e.to]-1e-12 {
				dist[e.to] = nd
				prevEdge[e.to] = id
				if !inQueue[e.to] {
					queue = append(queue, e.to)
					inQueue[e.to] = true
				}
			}
		}
	}
	return dist, prevEdge
}

// run pushes flow along successive shortest paths from s to t.
// If onlyNegative is set, it stops once the cheapest augmenting path no
// longer improves the objective (path cost >= 0). A non-zero deadline
// bounds wall-clock time; exceeding it abandons the solve.
func (f *flowNetwork) run(s, t int, onlyNegative bool, deadline time.Time) (flow int, cost float64, budgetExceeded bool) {
	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			return flow, cost, true
		}

		dist, prevEdge := f.shortestPath(s)
		if math.IsInf(dist[t], 1) {
			return flow, cost, false
		}
		if onlyNegative && dist[t] >= 0 {
			return flow, cost, false
		}

		// Bottleneck along the path.
		bottleneck := math.MaxInt
		for v := t; v != s; {
			e := f.edges[prevEdge[v]]
			if e.cap < bottleneck {
				bottleneck = e.cap
			}
			v = e.from
		}

		for v := t; v != s; {
			id := prevEdge[v]
			f.edges[id].cap -= bottleneck
			f.edges[id^1].cap += bottleneck
			v = f.edges[id].from
		}

		flow += bottleneck
		cost += float64(bottleneck) * dist[t]
	}
}

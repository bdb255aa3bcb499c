package detour

import (
	"math"

	"github.com/gorustyt/polynav/common"
)

// Graph is a weighted cell graph. Edge costs must be centroid distances for the
// Euclidean heuristic to stay admissible.
type Graph interface {
	NodeCount() int
	Centroid(i int) common.Point
	Neighbors(i int, visit func(j int, cost float64))
}

// Locator maps a world point to a cell index, -1 when no cell contains it.
type Locator interface {
	Locate(p common.Point) int
}

// LocatorFunc adapts a plain function to Locator.
type LocatorFunc func(p common.Point) int

func (f LocatorFunc) Locate(p common.Point) int {
	return f(p)
}

type DtNavMeshQuery struct {
	m_graph    Graph
	m_nodePool *DtNodePool
	m_openList NodeQueue[*DtNode]
}

func NewDtNavMeshQuery(g Graph) *DtNavMeshQuery {
	return &DtNavMeshQuery{
		m_graph:    g,
		m_nodePool: NewDtNodePool(g.NodeCount()),
		m_openList: NewNodeQueue(func(a, b *DtNode) bool {
			if a.Total != b.Total {
				return a.Total < b.Total
			}
			return a.seq < b.seq
		}),
	}
}

func (q *DtNavMeshQuery) heuristic(a, b int) float64 {
	return common.Dist(q.m_graph.Centroid(a), q.m_graph.Centroid(b))
}

// FindPath runs A* from startRef to endRef and returns the visited cell indices in
// order. An unreachable goal or an out of range index yields nil.
func (q *DtNavMeshQuery) FindPath(startRef, endRef int) []int {
	n := q.m_graph.NodeCount()
	if startRef < 0 || endRef < 0 || startRef >= n || endRef >= n {
		return nil
	}
	if startRef == endRef {
		return []int{startRef}
	}

	q.m_nodePool.Clear()
	q.m_openList.Reset()
	startNode := q.m_nodePool.GetNode(startRef)
	startNode.Cost = 0
	startNode.Total = q.heuristic(startRef, endRef)
	startNode.Flags = DT_NODE_OPEN
	q.m_openList.Offer(startNode)

	for !q.m_openList.Empty() {
		// Remove node from open list and put it in closed list.
		bestNode := q.m_openList.Poll()
		bestNode.Flags &^= DT_NODE_OPEN
		bestNode.Flags |= DT_NODE_CLOSED

		// Reached the goal, stop searching.
		if bestNode.Id == endRef {
			return q.getPathToNode(bestNode)
		}

		q.m_graph.Neighbors(bestNode.Id, func(neighbourRef int, cost float64) {
			// do not expand back to where we came from
			if neighbourRef == bestNode.Pidx {
				return
			}
			neighbourNode := q.m_nodePool.GetNode(neighbourRef)
			g := bestNode.Cost + cost
			if neighbourNode.Flags != 0 && g >= neighbourNode.Cost {
				return
			}
			neighbourNode.Pidx = bestNode.Id
			neighbourNode.Cost = g
			neighbourNode.Total = g + q.heuristic(neighbourRef, endRef)
			neighbourNode.Flags &^= DT_NODE_CLOSED

			if neighbourNode.Flags&DT_NODE_OPEN != 0 {
				// Already in open, update node location.
				q.m_openList.Update(neighbourNode)
			} else {
				neighbourNode.Flags |= DT_NODE_OPEN
				q.m_openList.Offer(neighbourNode)
			}
		})
	}
	return nil
}

func (q *DtNavMeshQuery) getPathToNode(endNode *DtNode) []int {
	var path []int
	for node := endNode; node != nil; {
		path = append(path, node.Id)
		if node.Pidx == DT_NULL_IDX {
			break
		}
		node = q.m_nodePool.FindNode(node.Pidx)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FindPath is a one shot query over g.
func FindPath(g Graph, start, end int) []int {
	if g.NodeCount() == 0 {
		return nil
	}
	return NewDtNavMeshQuery(g).FindPath(start, end)
}

// PathPoints resolves both points to cells and returns the waypoint list: the literal
// start, the centroids of the intermediate cells, the literal end. Points outside every
// cell or an unreachable goal give nil; two points in the same cell give [start, end].
func PathPoints(g Graph, loc Locator, start, end common.Point) []common.Point {
	startRef := loc.Locate(start)
	endRef := loc.Locate(end)
	if startRef < 0 || endRef < 0 {
		return nil
	}
	if startRef == endRef {
		return []common.Point{start, end}
	}
	refs := FindPath(g, startRef, endRef)
	if len(refs) == 0 {
		return nil
	}
	res := make([]common.Point, 0, len(refs))
	res = append(res, start)
	for _, ref := range refs[1 : len(refs)-1] {
		res = append(res, g.Centroid(ref))
	}
	return append(res, end)
}

// PathCost sums the stored edge costs along a cell path. Missing edges count as +Inf.
func PathCost(g Graph, refs []int) float64 {
	total := 0.0
	for i := 1; i < len(refs); i++ {
		found := false
		g.Neighbors(refs[i-1], func(j int, cost float64) {
			if !found && j == refs[i] {
				total += cost
				found = true
			}
		})
		if !found {
			return math.Inf(1)
		}
	}
	return total
}

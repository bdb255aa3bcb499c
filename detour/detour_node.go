package detour

import (
	"container/heap"
)

const (
	DT_NODE_OPEN   = 0x01
	DT_NODE_CLOSED = 0x02
)

const DT_NULL_IDX = -1

type DtNode struct {
	Cost  float64 ///< Cost from the start node to this node.
	Total float64 ///< Cost plus heuristic.
	Pidx  int     ///< Parent node index, DT_NULL_IDX for none.
	Flags uint32  ///< Node flags. A combination of DT_NODE_OPEN / DT_NODE_CLOSED.
	Id    int     ///< Cell index the node corresponds to.
	seq   int     //入队顺序，用于打破f相同的情况
	_index int    //堆中移除和更新对象用
}

func (node *DtNode) SetIndex(index int) {
	node._index = index
}

func (node *DtNode) GetIndex() int {
	return node._index
}

type NodeQueueIndex interface {
	SetIndex(index int)
	GetIndex() int
}

type NodeQueue[T NodeQueueIndex] interface {
	Peek() T   //查看堆顶，不会移除元素
	Poll() T   //从堆顶弹出一个元素
	Update(T)  //更新元素
	Offer(T)   //插入一个元素
	Reset()
	Empty() bool
}

// 优先级队列
type nodeQueue[T NodeQueueIndex] struct {
	data []T
	less func(t1, t2 T) bool
}

func NewNodeQueue[T NodeQueueIndex](less func(t1, t2 T) bool) NodeQueue[T] {
	q := &nodeQueue[T]{less: less}
	heap.Init(q)
	return q
}

func (q *nodeQueue[T]) Reset() {
	q.data = q.data[:0]
}

func (q *nodeQueue[T]) Peek() T {
	return q.data[0]
}

func (q *nodeQueue[T]) Poll() T {
	return heap.Pop(q).(T)
}

func (q *nodeQueue[T]) Update(value T) {
	heap.Fix(q, value.GetIndex())
}

func (q *nodeQueue[T]) Offer(value T) {
	heap.Push(q, value)
}

func (q *nodeQueue[T]) Push(x any) {
	v := x.(T)
	v.SetIndex(len(q.data))
	q.data = append(q.data, v)
}

func (q *nodeQueue[T]) Pop() any {
	n := len(q.data) - 1
	res := q.data[n]
	q.data = q.data[:n]
	res.SetIndex(-1)
	return res
}

func (q *nodeQueue[T]) Len() int {
	return len(q.data)
}

func (q *nodeQueue[T]) Empty() bool {
	return q.Len() == 0
}

func (q *nodeQueue[T]) Less(i, j int) bool { return q.less(q.data[i], q.data[j]) }

func (q *nodeQueue[T]) Swap(i, j int) {
	q.data[i], q.data[j] = q.data[j], q.data[i]
	q.data[i].SetIndex(i)
	q.data[j].SetIndex(j)
}

// DtNodePool hands out one node per cell index for the duration of a query.
type DtNodePool struct {
	m_nodes []*DtNode
	m_count int
}

func NewDtNodePool(maxNodes int) *DtNodePool {
	return &DtNodePool{m_nodes: make([]*DtNode, maxNodes)}
}

func (p *DtNodePool) Clear() {
	for i := range p.m_nodes {
		p.m_nodes[i] = nil
	}
	p.m_count = 0
}

// GetNode returns the node for id, allocating it on first use.
func (p *DtNodePool) GetNode(id int) *DtNode {
	if node := p.m_nodes[id]; node != nil {
		return node
	}
	node := &DtNode{Id: id, Pidx: DT_NULL_IDX, seq: p.m_count, _index: -1}
	p.m_nodes[id] = node
	p.m_count++
	return node
}

func (p *DtNodePool) FindNode(id int) *DtNode {
	return p.m_nodes[id]
}

func (p *DtNodePool) GetNodeCount() int {
	return p.m_count
}

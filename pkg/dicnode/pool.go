package dicnode

import "container/heap"

// Pool is a fixed-capacity arena of DicNode slots with a singly-linked free
// list of unused slot indices. Every slot is either referenced from some
// Queue or sits on the free list: never both, never neither.
type Pool struct {
	capacity        int
	slots           []DicNode
	nextUnusedSlot  []int
	nextUnusedHead  int
}

const notANodeID = -1

// NewPool allocates capacity+1 slots, matching the original engine's
// "capacity plus one" headroom so that a push-while-full eviction never
// races the slot it is about to replace.
func NewPool(capacity int) *Pool {
	p := &Pool{capacity: capacity}
	p.slots = make([]DicNode, capacity+1)
	p.nextUnusedSlot = make([]int, capacity+1)
	p.resetFreeList()
	return p
}

func (p *Pool) resetFreeList() {
	for i := range p.slots {
		p.slots[i].remove()
		if i == len(p.slots)-1 {
			p.nextUnusedSlot[i] = notANodeID
		} else {
			p.nextUnusedSlot[i] = i + 1
		}
	}
	p.nextUnusedHead = 0
}

// UsedSlots counts slots currently marked in-use, for pool-integrity checks.
func (p *Pool) UsedSlots() int {
	n := 0
	for i := range p.slots {
		if p.slots[i].IsUsed() {
			n++
		}
	}
	return n
}

// acquire removes the head of the free list and marks that slot used.
// Acquiring with no free slot is a programming error: the comparator-driven
// push/evict invariant in Queue guarantees a slot is always freed before a
// new one is needed. We return (nil, false) rather than panicking so a
// caller can treat it as an expansion silently dropped.
func (p *Pool) acquire() (*DicNode, bool) {
	if p.nextUnusedHead == notANodeID {
		return nil, false
	}
	idx := p.nextUnusedHead
	p.nextUnusedHead = p.nextUnusedSlot[idx]
	p.nextUnusedSlot[idx] = notANodeID
	p.slots[idx].used = true
	return &p.slots[idx], true
}

// release returns a slot to the free list. Releasing an already-free slot
// is a no-op, matching the original's idempotent onReleased.
func (p *Pool) release(n *DicNode) {
	idx := p.indexOf(n)
	if idx < 0 || !n.used {
		return
	}
	n.remove()
	p.nextUnusedSlot[idx] = p.nextUnusedHead
	p.nextUnusedHead = idx
}

func (p *Pool) indexOf(n *DicNode) int {
	for i := range p.slots {
		if &p.slots[i] == n {
			return i
		}
	}
	return -1
}

// --- Queue ---

// Queue is a max-heap of pointers into a Pool, bounded by maxSize ≤
// capacity, ordered by DicNode.Compare so that the worst admissible node
// sits at the top and is the one evicted.
type Queue struct {
	pool    *Pool
	maxSize int
	heap    nodeHeap
}

// NewQueue creates a queue of the given maxSize backed by pool. maxSize must
// not exceed the pool's capacity.
func NewQueue(pool *Pool, maxSize int) *Queue {
	if maxSize > pool.capacity {
		maxSize = pool.capacity
	}
	q := &Queue{pool: pool, maxSize: maxSize}
	q.heap = make(nodeHeap, 0, maxSize)
	return q
}

// Size returns the number of nodes currently queued.
func (q *Queue) Size() int { return len(q.heap) }

// MaxSize returns the configured bound.
func (q *Queue) MaxSize() int { return q.maxSize }

// SetMaxSize changes the bound, clamped to the pool's capacity.
func (q *Queue) SetMaxSize(maxSize int) {
	if maxSize > q.pool.capacity {
		maxSize = q.pool.capacity
	}
	q.maxSize = maxSize
}

// Clear releases every queued node's slot and empties the queue, keeping
// the current maxSize.
func (q *Queue) Clear() {
	for _, n := range q.heap {
		q.pool.release(n)
	}
	q.heap = q.heap[:0]
}

// CopyPush implements the three-way push policy:
//  1. queue not full: acquire a slot, copy src in, push.
//  2. queue full and src beats the current worst: evict worst, acquire, push.
//  3. otherwise: drop src silently (routine pruning, not an error).
func (q *Queue) CopyPush(src *DicNode) bool {
	if len(q.heap) < q.maxSize {
		slot, ok := q.pool.acquire()
		if !ok {
			return false
		}
		*slot = *src
		slot.used = true
		heap.Push(&q.heap, slot)
		return true
	}
	worst := q.heap[0]
	if worst.Compare(src) {
		heap.Pop(&q.heap)
		q.pool.release(worst)
		slot, ok := q.pool.acquire()
		if !ok {
			return false
		}
		*slot = *src
		slot.used = true
		heap.Push(&q.heap, slot)
		return true
	}
	return false
}

// CopyPop pops the worst (top) node, copying it into dest if non-nil, and
// releases its slot.
func (q *Queue) CopyPop(dest *DicNode) bool {
	if len(q.heap) == 0 {
		return false
	}
	top := q.heap[0]
	if dest != nil {
		*dest = *top
		dest.used = true
	}
	heap.Pop(&q.heap)
	q.pool.release(top)
	return true
}

// Peek returns the current worst (top) node without popping, or nil if
// empty.
func (q *Queue) Peek() *DicNode {
	if len(q.heap) == 0 {
		return nil
	}
	return q.heap[0]
}

// Nodes returns the live nodes currently queued, in heap order (not sorted).
func (q *Queue) Nodes() []*DicNode { return q.heap }

// nodeHeap implements container/heap.Interface over *DicNode using
// DicNode.Compare as the ordering: Compare(a,b)==true means a is "worse"
// (should sit at the top of the max-heap so it's evicted/popped first).
type nodeHeap []*DicNode

func (h nodeHeap) Len() int { return len(h) }
func (h nodeHeap) Less(i, j int) bool {
	// container/heap produces a min-heap over Less; we want the "worst"
	// node (per Compare) at index 0, so Less(i,j) should be true when i is
	// worse than j, i.e. h[i].Compare(h[j]).
	return h[i].Compare(h[j])
}
func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)   { *h = append(*h, x.(*DicNode)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

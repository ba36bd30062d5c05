package graph

// distanceTolerance is the slack used when comparing path distances.
// Two distances closer than this are considered equal and the tie
// falls through to the accumulated penalties, then to the insertion
// id, which is unique.
const distanceTolerance = 1e-5

// Item is one priority-queue element. The id is assigned at push time
// and makes the total order strict.
type Item struct {
	Key       Key
	Distance  float64
	Penalties float64
	id        int
	pos       int
}

// Heap is a binary min-heap with stable handles, so a vertex waiting
// in the queue can have its priority decreased in O(log n) without a
// linear re-find. A handle is an index into the item arena and stays
// valid until the item is popped.
type Heap struct {
	items []Item
	order []int
	next  int
}

// NewHeap returns an empty heap.
func NewHeap() *Heap {
	return &Heap{}
}

// Len returns the number of queued items.
func (h *Heap) Len() int {
	return len(h.order)
}

func (h *Heap) less(a, b int) bool {
	ia, ib := &h.items[a], &h.items[b]
	if ia.Distance-ib.Distance < -distanceTolerance {
		return true
	}
	if ib.Distance-ia.Distance < -distanceTolerance {
		return false
	}
	if ia.Penalties != ib.Penalties {
		return ia.Penalties < ib.Penalties
	}
	return ia.id < ib.id
}

func (h *Heap) swap(i, j int) {
	h.order[i], h.order[j] = h.order[j], h.order[i]
	h.items[h.order[i]].pos = i
	h.items[h.order[j]].pos = j
}

func (h *Heap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(h.order[i], h.order[parent]) {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *Heap) down(i int) {
	n := len(h.order)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		smallest := left
		if right := left + 1; right < n && h.less(h.order[right], h.order[left]) {
			smallest = right
		}
		if !h.less(h.order[smallest], h.order[i]) {
			return
		}
		h.swap(i, smallest)
		i = smallest
	}
}

// Push enqueues a vertex and returns its handle.
func (h *Heap) Push(k Key, distance, penalties float64) int {
	handle := len(h.items)
	h.items = append(h.items, Item{
		Key:       k,
		Distance:  distance,
		Penalties: penalties,
		id:        h.next,
		pos:       len(h.order),
	})
	h.next++
	h.order = append(h.order, handle)
	h.up(h.items[handle].pos)
	return handle
}

// Decrease lowers the priority of a queued item. Calling it with a
// handle that has already been popped is an invariant violation.
func (h *Heap) Decrease(handle int, distance, penalties float64) {
	if handle < 0 || handle >= len(h.items) || h.items[handle].pos < 0 {
		panic("graph: decrease on a missing heap handle")
	}
	h.items[handle].Distance = distance
	h.items[handle].Penalties = penalties
	h.up(h.items[handle].pos)
}

// PopMin removes and returns the minimum item.
func (h *Heap) PopMin() Item {
	if len(h.order) == 0 {
		panic("graph: pop on an empty heap")
	}
	top := h.order[0]
	last := len(h.order) - 1
	h.swap(0, last)
	h.order = h.order[:last]
	if last > 0 {
		h.down(0)
	}
	h.items[top].pos = -1
	return h.items[top]
}

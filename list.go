package lrucache

// nilIndex marks the absence of a neighbour or an empty chain.
const nilIndex int32 = -1

// node is a single arena slot.
type node[K comparable, V any] struct {
	key   K
	value V

	// seq is the recency marker: the value of the list clock at the last
	// insert or touch.
	seq uint64

	prev int32
	next int32
}

// recencyList is a doubly linked list of arena slots addressed by index.
//
// head is the most recently used slot, tail the least recently used one.
// Released slots are chained through next starting at free and are reused
// before the arena grows.
type recencyList[K comparable, V any] struct {
	nodes []node[K, V]
	head  int32
	tail  int32
	free  int32
	len   int
	clock uint64
}

func (l *recencyList[K, V]) init(prealloc int) {
	l.nodes = make([]node[K, V], 0, prealloc)
	l.head, l.tail, l.free = nilIndex, nilIndex, nilIndex
}

// pushFront stores (k, v) in a slot and links it as the most recently used.
func (l *recencyList[K, V]) pushFront(k K, v V) int32 {
	var i int32
	if l.free != nilIndex {
		i = l.free
		l.free = l.nodes[i].next
	} else {
		l.nodes = append(l.nodes, node[K, V]{})
		i = int32(len(l.nodes) - 1)
	}

	n := &l.nodes[i]
	n.key = k
	n.value = v
	l.clock++
	n.seq = l.clock
	l.linkFront(i)
	l.len++

	return i
}

// touch marks slot i as the most recently used.
func (l *recencyList[K, V]) touch(i int32) {
	l.clock++
	l.nodes[i].seq = l.clock
	if l.head == i {
		return
	}
	l.unlink(i)
	l.linkFront(i)
}

// remove unlinks slot i, returns what it held and puts it on the free chain.
func (l *recencyList[K, V]) remove(i int32) (K, V) {
	l.unlink(i)

	n := &l.nodes[i]
	k, v := n.key, n.value
	// Zero the slot so the arena does not pin released keys and values.
	*n = node[K, V]{prev: nilIndex, next: l.free}
	l.free = i
	l.len--

	return k, v
}

func (l *recencyList[K, V]) reset() {
	clear(l.nodes)
	l.nodes = l.nodes[:0]
	l.head, l.tail, l.free = nilIndex, nilIndex, nilIndex
	l.len = 0
	l.clock = 0
}

func (l *recencyList[K, V]) linkFront(i int32) {
	n := &l.nodes[i]
	n.prev = nilIndex
	n.next = l.head
	if l.head != nilIndex {
		l.nodes[l.head].prev = i
	} else {
		l.tail = i
	}
	l.head = i
}

func (l *recencyList[K, V]) unlink(i int32) {
	n := &l.nodes[i]
	if n.prev != nilIndex {
		l.nodes[n.prev].next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nilIndex {
		l.nodes[n.next].prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nilIndex, nilIndex
}

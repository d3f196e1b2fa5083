package atomicx

// registry is the kernel's intrusive doubly-linked list of thread control
// blocks. Insertion order is total and stable; attach, detach, and the
// cyclic-successor query are all O(1). The links live on the Thread
// itself, so membership costs no allocation.
type registry struct {
	head  *Thread
	tail  *Thread
	count int
}

// attach appends t at the tail.
func (r *registry) attach(t *Thread) {
	if r.head == nil {
		r.head = t
		r.tail = t
	} else {
		t.prev = r.tail
		r.tail.next = t
		r.tail = t
	}
	r.count++
}

// detach splices t out, fixing head/tail. Detaching a non-member is
// undefined (the links are the membership).
func (r *registry) detach(t *Thread) {
	switch {
	case t.prev == nil && t.next == nil:
		r.head = nil
		r.tail = nil
	case t.prev == nil:
		t.next.prev = nil
		r.head = t.next
	case t.next == nil:
		t.prev.next = nil
		r.tail = t.prev
	default:
		t.prev.next = t.next
		t.next.prev = t.prev
	}
	t.prev = nil
	t.next = nil
	r.count--
}

// cyclicNext returns t's successor, wrapping from tail to head. With a nil
// t it returns the head.
func (r *registry) cyclicNext(t *Thread) *Thread {
	if t == nil || t.next == nil {
		return r.head
	}
	return t.next
}

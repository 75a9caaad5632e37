package kettle

// History is a fixed-capacity FIFO of sampled state for charting. When
// full, pushes overwrite the oldest sample.
// Not safe for concurrent use — the process controller serializes access.
type History struct {
	buf      []Sample
	capacity int
	head     int // next write position
	count    int
}

func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{
		buf:      make([]Sample, capacity),
		capacity: capacity,
	}
}

func (h *History) Push(s Sample) {
	h.buf[h.head] = s
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}
}

// Samples returns the buffered samples oldest-first as a copy.
func (h *History) Samples() []Sample {
	if h.count == 0 {
		return nil
	}
	out := make([]Sample, h.count)
	start := (h.head - h.count + h.capacity) % h.capacity
	for i := 0; i < h.count; i++ {
		out[i] = h.buf[(start+i)%h.capacity]
	}
	return out
}

func (h *History) Len() int      { return h.count }
func (h *History) Capacity() int { return h.capacity }

func (h *History) Reset() {
	h.head = 0
	h.count = 0
}

package ring

// Window is a fixed-capacity running-mean filter over the most recent
// confidence values. It is seeded with capacity copies of a seed value so the
// mean is defined from the first push.
//
// The sum is maintained incrementally over a circular buffer and recomputed
// once per rotation; Push is amortised O(1).
// A Window is not safe for concurrent use.
type Window struct {
	buf  []float64
	next int
	sum  float64
}

// NewWindow returns a window holding capacity copies of seed.
// Returns [ErrEmptyWindow] if capacity is less than 1.
func NewWindow(capacity int, seed float64) (*Window, error) {
	if capacity < 1 {
		return nil, ErrEmptyWindow
	}
	buf := make([]float64, capacity)
	for i := range buf {
		buf[i] = seed
	}
	return &Window{buf: buf, sum: seed * float64(capacity)}, nil
}

// Push appends v, evicting the oldest value, and returns the mean of the
// current contents.
func (w *Window) Push(v float64) float64 {
	w.sum += v - w.buf[w.next]
	w.buf[w.next] = v
	w.next++
	if w.next == len(w.buf) {
		w.next = 0
		// Recompute once per rotation to drop accumulated rounding error.
		w.sum = 0
		for _, x := range w.buf {
			w.sum += x
		}
	}
	return w.Mean()
}

// Mean returns the arithmetic mean of the current contents.
func (w *Window) Mean() float64 {
	return w.sum / float64(len(w.buf))
}

// Len returns the window capacity. It never changes after construction.
func (w *Window) Len() int {
	return len(w.buf)
}

// Values returns a copy of the contents, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, 0, len(w.buf))
	out = append(out, w.buf[w.next:]...)
	return append(out, w.buf[:w.next]...)
}

package telemetry

// History is a fixed-size ring of speed samples, oldest dropped first.
// It starts filled with zeros so displays have a full-width trace.
type History struct {
	buf  []float64
	head int
}

// NewHistory returns a zero-filled history of size n (minimum 1).
func NewHistory(n int) *History {
	if n < 1 {
		n = 1
	}
	return &History{buf: make([]float64, n)}
}

// Push records v, evicting the oldest sample.
func (h *History) Push(v float64) {
	h.buf[h.head] = v
	h.head = (h.head + 1) % len(h.buf)
}

// Values returns the samples oldest first.
func (h *History) Values() []float64 {
	out := make([]float64, 0, len(h.buf))
	out = append(out, h.buf[h.head:]...)
	out = append(out, h.buf[:h.head]...)
	return out
}

// Max returns the largest sample.
func (h *History) Max() float64 {
	return Max(h.buf)
}

// Mean returns the average over the whole ring, zeros included.
func (h *History) Mean() float64 {
	return Mean(h.buf)
}

// Reset refills the ring with zeros.
func (h *History) Reset() {
	for i := range h.buf {
		h.buf[i] = 0
	}
	h.head = 0
}

// Size returns the ring length.
func (h *History) Size() int { return len(h.buf) }

// Max returns the largest value in vs, or 0 when vs is empty.
func Max(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	m := vs[0]
	for _, v := range vs[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// Mean returns the average of vs, or 0 when vs is empty.
func Mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

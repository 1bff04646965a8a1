package capture

// RingBuffer is a circular buffer for audio samples. Callers are expected
// to provide their own locking; Microphone guards it with its mutex.
type RingBuffer struct {
	data     []float32
	writePos int
	size     int
	filled   int
}

// NewRingBuffer creates a ring buffer with the given sample capacity.
func NewRingBuffer(size int) *RingBuffer {
	if size <= 0 {
		size = 1
	}
	return &RingBuffer{
		data: make([]float32, size),
		size: size,
	}
}

// Write appends samples, overwriting the oldest data when full.
func (rb *RingBuffer) Write(samples []float32) {
	for _, s := range samples {
		rb.data[rb.writePos] = s
		rb.writePos = (rb.writePos + 1) % rb.size
		if rb.filled < rb.size {
			rb.filled++
		}
	}
}

// Read returns a copy of the last n samples, oldest first.
func (rb *RingBuffer) Read(n int) []float32 {
	if n > rb.filled {
		n = rb.filled
	}
	if n == 0 {
		return nil
	}

	result := make([]float32, n)
	start := (rb.writePos - n + rb.size) % rb.size
	for i := 0; i < n; i++ {
		result[i] = rb.data[(start+i)%rb.size]
	}
	return result
}

// Len returns the number of valid samples in the buffer.
func (rb *RingBuffer) Len() int {
	return rb.filled
}

// Clear resets the buffer without releasing storage.
func (rb *RingBuffer) Clear() {
	rb.writePos = 0
	rb.filled = 0
}

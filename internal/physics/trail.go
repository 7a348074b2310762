package physics

import "gonum.org/v1/gonum/spatial/r2"

// Trail is a fixed-capacity history of positions. Once full, each push
// overwrites the oldest point.
type Trail struct {
	points []r2.Vec
	start  int
	size   int
	pushed int
}

func NewTrail(capacity int) *Trail {
	if capacity < 1 {
		capacity = 1
	}
	return &Trail{points: make([]r2.Vec, capacity)}
}

func (t *Trail) Push(p r2.Vec) {
	c := len(t.points)
	if t.size < c {
		t.points[(t.start+t.size)%c] = p
		t.size++
	} else {
		t.points[t.start] = p
		t.start = (t.start + 1) % c
	}
	t.pushed++
}

// Len and Cap are zero on a nil trail, as held by a Body not built with
// NewBody.
func (t *Trail) Len() int {
	if t == nil {
		return 0
	}
	return t.size
}

func (t *Trail) Cap() int {
	if t == nil {
		return 0
	}
	return len(t.points)
}

// Pushed reports how many points were ever recorded, including overwritten ones.
func (t *Trail) Pushed() int { return t.pushed }

// At returns the i-th point in chronological order.
func (t *Trail) At(i int) r2.Vec {
	if i < 0 || i >= t.size {
		panic("physics: trail index out of range")
	}
	return t.points[(t.start+i)%len(t.points)]
}

func (t *Trail) Last() (r2.Vec, bool) {
	if t.Len() == 0 {
		return r2.Vec{}, false
	}
	return t.At(t.size - 1), true
}

// Points copies the trail, oldest first.
func (t *Trail) Points() []r2.Vec {
	out := make([]r2.Vec, t.Len())
	for i := range out {
		out[i] = t.points[(t.start+i)%len(t.points)]
	}
	return out
}

func (t *Trail) Reset() {
	t.start, t.size, t.pushed = 0, 0, 0
}

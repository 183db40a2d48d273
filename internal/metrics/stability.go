package metrics

import (
	"math"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// Stability is the fraction of observed states inside the screening box
// |x_i| <= bound. A healthy key-material run stays at 1.
type Stability struct {
	bound   float64
	inside  int
	samples int
	// escape is the time of the first state outside the box, NaN if none.
	escape float64
}

func NewStability(bound float64) *Stability {
	return &Stability{bound: bound, escape: math.NaN()}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(x dynamo.State, t float64) {
	s.samples++
	if x.Bounded(s.bound) {
		s.inside++
		return
	}
	if math.IsNaN(s.escape) {
		s.escape = t
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1
	}
	return float64(s.inside) / float64(s.samples)
}

// FirstEscape returns the time the trajectory first left the box.
func (s *Stability) FirstEscape() (float64, bool) {
	return s.escape, !math.IsNaN(s.escape)
}

func (s *Stability) Reset() {
	s.inside, s.samples = 0, 0
	s.escape = math.NaN()
}

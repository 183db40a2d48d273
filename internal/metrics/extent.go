package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// Extent tracks the largest absolute value of one state component, a cheap
// proxy for the attractor's radius along that axis.
type Extent struct {
	component int
	max       float64
}

func NewExtent(component int) *Extent {
	return &Extent{component: component}
}

func (e *Extent) Name() string { return fmt.Sprintf("extent_%d", e.component) }

func (e *Extent) Observe(x dynamo.State, _ float64) {
	if e.component < len(x) {
		e.max = math.Max(e.max, math.Abs(x[e.component]))
	}
}

func (e *Extent) Value() float64 { return e.max }
func (e *Extent) Reset()         { e.max = 0 }

// Mean is the running mean of one state component. Over a material run it
// matches the bitstream threshold up to sampling.
type Mean struct {
	component int
	sum       float64
	n         int
}

func NewMean(component int) *Mean {
	return &Mean{component: component}
}

func (m *Mean) Name() string { return fmt.Sprintf("mean_%d", m.component) }

func (m *Mean) Observe(x dynamo.State, _ float64) {
	if m.component < len(x) {
		m.sum += x[m.component]
		m.n++
	}
}

func (m *Mean) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.sum / float64(m.n)
}

func (m *Mean) Reset() { m.sum, m.n = 0, 0 }

// Standard returns the metrics attached to every material run.
func Standard(bound float64) []dynamo.Metric {
	ms := []dynamo.Metric{NewStability(bound)}
	for i := 0; i < dynamo.Dim; i++ {
		ms = append(ms, NewExtent(i))
	}
	return append(ms, NewMean(0))
}

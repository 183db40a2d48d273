package dynamo

// Trajectory is an immutable sequence of sampled states. The sample
// spacing in time is Dt*Stride.
type Trajectory struct {
	system string
	dt     float64
	stride int
	states []State
}

// NewTrajectory takes ownership of states; callers must not retain them.
func NewTrajectory(system string, dt float64, stride int, states []State) *Trajectory {
	if stride < 1 {
		stride = 1
	}
	return &Trajectory{system: system, dt: dt, stride: stride, states: states}
}

func (t *Trajectory) System() string { return t.system }
func (t *Trajectory) Dt() float64    { return t.dt }
func (t *Trajectory) Stride() int    { return t.stride }
func (t *Trajectory) Len() int       { return len(t.states) }

// SampleInterval is the time between consecutive samples.
func (t *Trajectory) SampleInterval() float64 { return t.dt * float64(t.stride) }

// At returns a copy of sample i.
func (t *Trajectory) At(i int) State { return t.states[i].Clone() }

// Component returns column j as a fresh slice.
func (t *Trajectory) Component(j int) []float64 {
	col := make([]float64, len(t.states))
	for i, s := range t.states {
		col[i] = s[j]
	}
	return col
}

// Mean returns the arithmetic mean of component j.
func (t *Trajectory) Mean(j int) float64 {
	if len(t.states) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range t.states {
		sum += s[j]
	}
	return sum / float64(len(t.states))
}

// Each calls fn for every sample in order without copying. fn must not
// modify the state it receives.
func (t *Trajectory) Each(fn func(i int, s State)) {
	for i, s := range t.states {
		fn(i, s)
	}
}

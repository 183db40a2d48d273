package systems

import (
	"fmt"
	"math"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

// Flow is a hyperchaotic vector field with a Jacobian and tunable parameters.
type Flow interface {
	dynamo.Linearizable
	dynamo.Configurable
	Name() string
}

// Spec is a fully determined system instance: its kind, parameter values
// in ParamNames order and the initial condition. Specs are values and
// safe to share.
type Spec struct {
	kind   Kind
	params []float64
	init   [dynamo.Dim]float64
}

// NewSpec validates the parameter count and finiteness of every value.
func NewSpec(kind Kind, params []float64, init [dynamo.Dim]float64) (Spec, error) {
	if !kind.Valid() {
		return Spec{}, fmt.Errorf("%w: unknown system kind %d", dynamo.ErrInvalidInput, int(kind))
	}
	if want := len(paramNames[kind]); len(params) != want {
		return Spec{}, fmt.Errorf("%w: %s expects %d parameters, got %d",
			dynamo.ErrInvalidInput, kind, want, len(params))
	}
	for i, v := range params {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Spec{}, fmt.Errorf("%w: %s parameter %s is not finite",
				dynamo.ErrInvalidInput, kind, paramNames[kind][i])
		}
	}
	for i, v := range init {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Spec{}, fmt.Errorf("%w: %s initial component %d is not finite",
				dynamo.ErrInvalidInput, kind, i)
		}
	}
	return Spec{kind: kind, params: append([]float64(nil), params...), init: init}, nil
}

func mustSpec(kind Kind, params []float64, init [dynamo.Dim]float64) Spec {
	s, err := NewSpec(kind, params, init)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Spec) Kind() Kind { return s.kind }

func (s Spec) Params() []float64 { return append([]float64(nil), s.params...) }

// Param looks up a parameter by name.
func (s Spec) Param(name string) (float64, bool) {
	for i, n := range paramNames[s.kind] {
		if n == name {
			return s.params[i], true
		}
	}
	return 0, false
}

func (s Spec) Init() dynamo.State {
	return dynamo.State{s.init[0], s.init[1], s.init[2], s.init[3]}
}

// WithParam returns a copy of s with one parameter replaced.
func (s Spec) WithParam(name string, v float64) (Spec, error) {
	params := s.Params()
	for i, n := range paramNames[s.kind] {
		if n == name {
			params[i] = v
			return NewSpec(s.kind, params, s.init)
		}
	}
	return Spec{}, fmt.Errorf("%w: %s has no parameter %q", dynamo.ErrInvalidInput, s.kind, name)
}

// WithInit returns a copy of s starting from a different initial condition.
func (s Spec) WithInit(init [dynamo.Dim]float64) (Spec, error) {
	return NewSpec(s.kind, s.params, init)
}

// System builds a fresh vector field with the parameters of s.
func (s Spec) System() Flow {
	p := s.params
	switch s.kind {
	case Rossler:
		return NewRossler(p[0], p[1], p[2], p[3])
	case Chen:
		return NewChen(p[0], p[1], p[2], p[3], p[4])
	case Lorenz:
		return NewLorenz(p[0], p[1], p[2], p[3])
	}
	panic(fmt.Sprintf("systems: unknown kind %d", int(s.kind)))
}

// Info is a serializable description of a spec.
type Info struct {
	Name              string             `json:"name" yaml:"name"`
	Label             string             `json:"label" yaml:"label"`
	Dimensions        int                `json:"dimensions" yaml:"dimensions"`
	Parameters        map[string]float64 `json:"parameters" yaml:"parameters"`
	InitialConditions []float64          `json:"initial_conditions" yaml:"initial_conditions"`
}

func (s Spec) Info() Info {
	params := make(map[string]float64, len(s.params))
	for i, n := range paramNames[s.kind] {
		params[n] = s.params[i]
	}
	return Info{
		Name:              s.kind.String(),
		Label:             s.kind.Label(),
		Dimensions:        dynamo.Dim,
		Parameters:        params,
		InitialConditions: s.Init(),
	}
}

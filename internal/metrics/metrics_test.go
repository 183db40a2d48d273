package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

func TestStability(t *testing.T) {
	m := NewStability(10)
	if m.Value() != 1.0 {
		t.Errorf("empty stability should be 1, got %v", m.Value())
	}

	m.Observe(dynamo.State{1, 2, 3, 4}, 0)
	m.Observe(dynamo.State{1, 20, 3, 4}, 0.1)
	m.Observe(dynamo.State{math.NaN(), 0, 0, 0}, 0.2)
	m.Observe(dynamo.State{-10, 0, 0, 0}, 0.3)

	if got := m.Value(); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %v", got)
	}
	if at, ok := m.FirstEscape(); !ok || at != 0.1 {
		t.Errorf("expected first escape at 0.1, got %v (%v)", at, ok)
	}

	m.Reset()
	if m.Value() != 1.0 {
		t.Errorf("expected 1 after reset, got %v", m.Value())
	}
	if _, ok := m.FirstEscape(); ok {
		t.Error("escape should be cleared by Reset")
	}
}

func TestExtent(t *testing.T) {
	m := NewExtent(1)
	m.Observe(dynamo.State{100, -3, 0, 0}, 0)
	m.Observe(dynamo.State{0, 2, 0, 0}, 0)

	if m.Value() != 3 {
		t.Errorf("expected extent 3, got %v", m.Value())
	}
	if m.Name() != "extent_1" {
		t.Errorf("unexpected name %q", m.Name())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected 0 after reset, got %v", m.Value())
	}
}

func TestMean(t *testing.T) {
	m := NewMean(0)
	for _, v := range []float64{1, 2, 3, 6} {
		m.Observe(dynamo.State{v, 0, 0, 0}, 0)
	}
	if m.Value() != 3 {
		t.Errorf("expected mean 3, got %v", m.Value())
	}
}

func TestStandard(t *testing.T) {
	ms := Standard(1e4)
	names := make(map[string]bool)
	for _, m := range ms {
		if names[m.Name()] {
			t.Errorf("duplicate metric %q", m.Name())
		}
		names[m.Name()] = true
	}
	for _, want := range []string{"stability", "extent_0", "extent_3", "mean_0"} {
		if !names[want] {
			t.Errorf("missing metric %q", want)
		}
	}
}

package systems

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

func TestDerive_MatchesEquations(t *testing.T) {
	s := dynamo.State{1.5, -2, 0.5, 3}
	x, y, z, w := s[0], s[1], s[2], s[3]

	tests := []struct {
		name string
		flow Flow
		want dynamo.State
	}{
		{
			"rossler", NewRossler(0.25, 3, 0.5, 0.05),
			dynamo.State{-y - z, x + 0.25*y + w, 3 + x*z, -0.5*z + 0.05*w},
		},
		{
			"chen", NewChen(35, 3, 15, 7, 0.5),
			dynamo.State{35*(y-x) + w, 7*x - x*z + 15*y, x*y - 3*z, x*z + 0.5*w},
		},
		{
			"lorenz", NewLorenz(10, 28, 8.0/3.0, 1.6),
			dynamo.State{10*(y-x) + w, 28*x - y - x*z, x*y - 8.0/3.0*z, -x*z + 1.6*w},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.flow.Derive(s, 0)
			if len(got) != dynamo.Dim {
				t.Fatalf("expected %d components, got %d", dynamo.Dim, len(got))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("component %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestJacobian_MatchesFiniteDifferences(t *testing.T) {
	points := []dynamo.State{
		{1, 1, 1, 1},
		{-3.2, 4.1, 12.5, -7},
		{0.3, -0.8, 20, 45},
	}
	const h = 1e-6

	for _, spec := range Defaults() {
		flow := spec.System()
		for _, p := range points {
			jac := flow.Jacobian(p)
			for col := 0; col < dynamo.Dim; col++ {
				plus, minus := p.Clone(), p.Clone()
				plus[col] += h
				minus[col] -= h
				fp, fm := flow.Derive(plus, 0), flow.Derive(minus, 0)
				for row := 0; row < dynamo.Dim; row++ {
					fd := (fp[row] - fm[row]) / (2 * h)
					if math.Abs(fd-jac[row][col]) > 1e-5*(1+math.Abs(fd)) {
						t.Errorf("%s at %v: J[%d][%d] = %v, finite difference %v",
							flow.Name(), p, row, col, jac[row][col], fd)
					}
				}
			}
		}
	}
}

func TestSetParam(t *testing.T) {
	for _, spec := range Defaults() {
		flow := spec.System()
		for _, name := range spec.Kind().ParamNames() {
			if err := flow.SetParam(name, 1.25); err != nil {
				t.Errorf("%s.SetParam(%q): %v", flow.Name(), name, err)
			}
			if got := flow.GetParams()[name]; got != 1.25 {
				t.Errorf("%s: %s = %v after SetParam", flow.Name(), name, got)
			}
		}
		if err := flow.SetParam("nope", 1); !errors.Is(err, dynamo.ErrInvalidInput) {
			t.Errorf("%s: expected ErrInvalidInput for unknown parameter, got %v", flow.Name(), err)
		}
	}
}

func TestGetParams_MatchSpec(t *testing.T) {
	for _, spec := range Defaults() {
		got := spec.System().GetParams()
		names := spec.Kind().ParamNames()
		if len(got) != len(names) {
			t.Fatalf("%s: expected %d params, got %d", spec.Kind(), len(names), len(got))
		}
		for _, n := range names {
			want, _ := spec.Param(n)
			if got[n] != want {
				t.Errorf("%s: %s = %v, want %v", spec.Kind(), n, got[n], want)
			}
		}
	}
}

func TestNewSpec_Validation(t *testing.T) {
	tests := []struct {
		name   string
		kind   Kind
		params []float64
	}{
		{"too few", Rossler, []float64{1, 2, 3}},
		{"too many", Lorenz, []float64{1, 2, 3, 4, 5}},
		{"chen short", Chen, []float64{1, 2, 3, 4}},
		{"NaN", Rossler, []float64{1, math.NaN(), 3, 4}},
		{"Inf", Chen, []float64{1, 2, 3, 4, math.Inf(1)}},
		{"bad kind", Kind(7), []float64{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpec(tt.kind, tt.params, [dynamo.Dim]float64{})
			if !errors.Is(err, dynamo.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSpec_IsImmutable(t *testing.T) {
	spec := Default(Chen)
	p := spec.Params()
	p[0] = -1
	if v, _ := spec.Param("a"); v != 35 {
		t.Errorf("Params leaked internal storage: a = %v", v)
	}

	changed, err := spec.WithParam("r", 0.55)
	if err != nil {
		t.Fatalf("WithParam: %v", err)
	}
	if v, _ := spec.Param("r"); v != 0.5 {
		t.Errorf("WithParam modified the receiver: r = %v", v)
	}
	if v, _ := changed.Param("r"); v != 0.55 {
		t.Errorf("expected r = 0.55, got %v", v)
	}
	if _, err := spec.WithParam("sigma", 1); err == nil {
		t.Error("expected error for parameter of another system")
	}

	moved, err := spec.WithInit([dynamo.Dim]float64{2, 3, 4, 5})
	if err != nil {
		t.Fatalf("WithInit: %v", err)
	}
	if got := moved.Init(); got[0] != 2 || got[3] != 5 {
		t.Errorf("unexpected init %v", got)
	}
	if v, _ := moved.Param("r"); v != 0.5 {
		t.Errorf("WithInit changed parameters: r = %v", v)
	}
	if _, err := spec.WithInit([dynamo.Dim]float64{math.NaN(), 0, 0, 0}); !errors.Is(err, dynamo.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for NaN init, got %v", err)
	}
}

func TestDefaults_InsideBounds(t *testing.T) {
	for _, spec := range Defaults() {
		if !Contains(spec) {
			t.Errorf("%s default %v / %v outside validated bounds", spec.Kind(), spec.Params(), spec.Init())
		}
	}
}

func TestRange_At(t *testing.T) {
	r := Range{Lo: 2, Hi: 4}
	if r.At(0) != 2 {
		t.Errorf("At(0) = %v", r.At(0))
	}
	if r.At(0.5) != 3 {
		t.Errorf("At(0.5) = %v", r.At(0.5))
	}
	if v := r.At(math.Nextafter(1, 0)); !r.Contains(v) {
		t.Errorf("At(1-eps) = %v outside range", v)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"rossler", Rossler, true},
		{"Chen", Chen, true},
		{" LORENZ ", Lorenz, true},
		{"b", Chen, true},
		{"duffing", 0, false},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseKind(%q) error = %v", tt.in, err)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInfo(t *testing.T) {
	info := Default(Lorenz).Info()
	if info.Name != "lorenz" || info.Dimensions != 4 {
		t.Errorf("unexpected info: %+v", info)
	}
	if info.Parameters["sigma"] != 10 || len(info.InitialConditions) != 4 {
		t.Errorf("unexpected info: %+v", info)
	}
}

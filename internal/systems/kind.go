package systems

import (
	"fmt"
	"strings"
)

// Kind identifies one of the three hyperchaotic flows. The numeric value
// is the system's position in the round schedule.
type Kind int

const (
	Rossler Kind = iota
	Chen
	Lorenz
)

// Count is the number of systems the cipher cycles through.
const Count = 3

var Kinds = [Count]Kind{Rossler, Chen, Lorenz}

var kindNames = [Count]string{"rossler", "chen", "lorenz"}

var kindLabels = [Count]string{
	"SystemA (Rossler-type hyperchaos)",
	"SystemB (Chen-type hyperchaos)",
	"SystemC (Lorenz-type hyperchaos)",
}

var paramNames = [Count][]string{
	{"a", "b", "c", "d"},
	{"a", "b", "c", "d", "r"},
	{"sigma", "r", "b", "k"},
}

func (k Kind) Valid() bool { return k >= 0 && int(k) < Count }

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) Label() string {
	if !k.Valid() {
		return k.String()
	}
	return kindLabels[k]
}

// ParamNames returns the ordered parameter names of the flow.
func (k Kind) ParamNames() []string {
	if !k.Valid() {
		return nil
	}
	return append([]string(nil), paramNames[k]...)
}

func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, kn := range kindNames {
		if n == kn {
			return Kind(i), nil
		}
	}
	switch n {
	case "a", "systema":
		return Rossler, nil
	case "b", "systemb":
		return Chen, nil
	case "c", "systemc":
		return Lorenz, nil
	}
	return 0, fmt.Errorf("unknown system: %s", name)
}

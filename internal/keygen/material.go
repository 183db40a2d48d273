package keygen

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

// Options selects how trajectories are turned into bits.
type Options struct {
	// Coordinates lists the state components thresholded into the
	// bitstream. More than one coordinate XORs the per-coordinate streams.
	Coordinates []int `json:"coordinates" yaml:"coordinates"`
}

func DefaultOptions() Options {
	return Options{Coordinates: []int{0}}
}

// Material is everything derived from a seed: the system specs, their
// trajectories and the per-system bitstream, key and S-box.
type Material struct {
	Specs        [systems.Count]systems.Spec
	Trajectories [systems.Count]*dynamo.Trajectory
	Bitstreams   [systems.Count]Bitstream
	Keys         [systems.Count]Key
	SBoxes       [systems.Count]SBox
}

// NewMaterial derives keys and S-boxes from one trajectory per system.
func NewMaterial(specs [systems.Count]systems.Spec, trajs [systems.Count]*dynamo.Trajectory, opts Options) (*Material, error) {
	coords := opts.Coordinates
	if len(coords) == 0 {
		coords = DefaultOptions().Coordinates
	}

	m := &Material{Specs: specs, Trajectories: trajs}
	for i, traj := range trajs {
		name := specs[i].Kind().String()
		bits, err := ToBitstreamXOR(traj, coords...)
		if err != nil {
			return nil, fmt.Errorf("%s bitstream: %w", name, err)
		}
		key, err := ToKey(bits)
		if err != nil {
			return nil, fmt.Errorf("%s key: %w", name, err)
		}
		src, err := NewCycler(bits)
		if err != nil {
			return nil, fmt.Errorf("%s s-box: %w", name, err)
		}

		m.Bitstreams[i] = bits
		m.Keys[i] = key
		m.SBoxes[i] = ToSBox(src)
	}
	return m, nil
}

// Fingerprint is BLAKE2b-256 over the three keys followed by the three
// S-boxes. Two materials encrypt identically iff their fingerprints match.
func (m *Material) Fingerprint() [32]byte {
	h, _ := blake2b.New256(nil)
	for _, k := range m.Keys {
		h.Write(k[:])
	}
	for _, s := range m.SBoxes {
		h.Write(s[:])
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (m *Material) FingerprintHex() string {
	fp := m.Fingerprint()
	return hex.EncodeToString(fp[:])
}

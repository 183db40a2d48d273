package cipher

import (
	"bytes"
	"context"
	"testing"

	"pgregory.net/rapid"

	"github.com/san-kum/chaoscrypt/internal/keygen"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

func drawSchedule(t *rapid.T) *Schedule {
	var keys [systems.Count]keygen.Key
	var sboxes [systems.Count]keygen.SBox
	for i := range keys {
		bits := rapid.SliceOfN(rapid.Uint8Range(0, 1), 1, 512).Draw(t, "bits")
		k, err := keygen.ToKey(bits)
		if err != nil {
			t.Fatal(err)
		}
		src, err := keygen.NewCycler(bits)
		if err != nil {
			t.Fatal(err)
		}
		keys[i] = k
		sboxes[i] = keygen.ToSBox(src)
	}
	s, err := NewSchedule(keys, sboxes)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		sched := drawSchedule(t)
		shape := Shape{
			Height:   rapid.IntRange(1, 24).Draw(t, "height"),
			Width:    rapid.IntRange(1, 24).Draw(t, "width"),
			Channels: rapid.IntRange(1, MaxChannels).Draw(t, "channels"),
		}
		pixels := rapid.SliceOfN(rapid.Byte(), shape.Len(), shape.Len()).Draw(t, "pixels")
		rounds := rapid.IntRange(1, 10).Draw(t, "rounds")

		enc, err := sched.Encrypt(context.Background(), pixels, shape, rounds)
		if err != nil {
			t.Fatal(err)
		}
		dec, err := sched.Decrypt(context.Background(), enc, shape, rounds)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(dec, pixels) {
			t.Fatalf("round trip failed for %s, %d rounds", shape, rounds)
		}
	})
}

package keygen

import "math/bits"

// SBox is a byte substitution table. A valid SBox is a permutation of 0..255.
type SBox [256]byte

func IdentitySBox() SBox {
	var s SBox
	for i := range s {
		s[i] = byte(i)
	}
	return s
}

// ToSBox shuffles the identity permutation with Fisher-Yates. For i from
// 255 down to 1 it reads bits.Len(i) decision bits MSB-first into v and
// swaps s[i] with s[v mod (i+1)]. The result is always a bijection.
func ToSBox(src DecisionSource) SBox {
	s := IdentitySBox()
	for i := 255; i > 0; i-- {
		need := bits.Len(uint(i))
		v := 0
		for q := 0; q < need; q++ {
			v = v<<1 | int(src.NextBit()&1)
		}
		j := v % (i + 1)
		s[i], s[j] = s[j], s[i]
	}
	return s
}

// Inverse returns the inverse permutation. The result is only meaningful
// for a valid SBox.
func (s SBox) Inverse() SBox {
	var inv SBox
	for i, v := range s {
		inv[v] = byte(i)
	}
	return inv
}

// Valid reports whether s is a bijection on bytes.
func (s SBox) Valid() bool {
	var seen [256]bool
	for _, v := range s {
		if seen[v] {
			return false
		}
		seen[v] = true
	}
	return true
}

// FixedPoints counts entries with s[i] == i.
func (s SBox) FixedPoints() int {
	n := 0
	for i, v := range s {
		if int(v) == i {
			n++
		}
	}
	return n
}

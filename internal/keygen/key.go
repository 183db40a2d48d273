package keygen

import (
	"encoding/hex"
	"fmt"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
)

const KeySize = 32

// Key is a 32-byte round key.
type Key [KeySize]byte

// ToKey packs the bitstream MSB-first into 32 bytes. Shorter streams are
// cycled, never zero-padded.
func ToKey(bits Bitstream) (Key, error) {
	var k Key
	if len(bits) == 0 {
		return k, fmt.Errorf("%w: empty bitstream", dynamo.ErrInvalidInput)
	}
	for j := 0; j < KeySize; j++ {
		var v byte
		for q := 0; q < 8; q++ {
			v = v<<1 | bits[(8*j+q)%len(bits)]&1
		}
		k[j] = v
	}
	return k, nil
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

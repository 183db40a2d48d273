package imagestats

import (
	"fmt"
	"math"

	"github.com/san-kum/chaoscrypt/internal/dynamo"
	"github.com/san-kum/chaoscrypt/internal/systems"
)

// AES256Bits is the reference key size the key space is compared against.
const AES256Bits = 256

// DefaultPrecisionDigits is the number of significant decimal digits a
// float64 reliably carries.
const DefaultPrecisionDigits = 15

type SystemKeySpace struct {
	System            string `json:"system"`
	InitialConditions int    `json:"initial_conditions"`
	Parameters        int    `json:"parameters"`
}

// KeySpace estimates the key space when every initial condition and
// parameter is a secret known to precisionDigits decimal digits.
type KeySpace struct {
	TotalElements     int              `json:"total_parameters"`
	InitialConditions int              `json:"initial_conditions"`
	SystemParameters  int              `json:"system_parameters"`
	PrecisionDigits   int              `json:"precision_decimal"`
	Bits              float64          `json:"key_space_bits"`
	Decimal           string           `json:"key_space_decimal"`
	RatioAES256       float64          `json:"comparison_aes256"`
	Systems           []SystemKeySpace `json:"systems_breakdown"`
}

func ComputeKeySpace(specs [systems.Count]systems.Spec, precisionDigits int) KeySpace {
	if precisionDigits <= 0 {
		precisionDigits = DefaultPrecisionDigits
	}
	ks := KeySpace{PrecisionDigits: precisionDigits}
	for _, s := range specs {
		p := len(s.Params())
		ks.Systems = append(ks.Systems, SystemKeySpace{
			System:            s.Kind().String(),
			InitialConditions: dynamo.Dim,
			Parameters:        p,
		})
		ks.InitialConditions += dynamo.Dim
		ks.SystemParameters += p
	}
	ks.TotalElements = ks.InitialConditions + ks.SystemParameters
	ks.Bits = float64(ks.TotalElements*precisionDigits) * math.Log2(10)
	ks.Decimal = fmt.Sprintf("10^%d", ks.TotalElements*precisionDigits)
	ks.RatioAES256 = ks.Bits / AES256Bits
	return ks
}

// Package cipher implements the multi-round substitution cipher over raw
// interleaved pixel buffers.
//
// Each round XORs every byte with the round key (cycled every 32 bytes)
// and passes it through the round S-box. Rounds cycle through the three
// systems' material in schedule order. Positions are independent, so
// large buffers are processed in parallel with identical results.
package cipher

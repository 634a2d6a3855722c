package utils

import (
	crand "crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// RandomInt32 generates a secure random 32-bit integer
func RandomInt32() int32 {
	var num int32
	err := binary.Read(crand.Reader, binary.BigEndian, &num)
	if err != nil {
		panic("generate random int32 failed")
	}

	return num
}

// NewSeededRand returns a deterministic source for the given seed. A zero
// seed draws a fresh one, for callers that only want reproducibility when
// explicitly configured.
func NewSeededRand(seed int64) *mrand.Rand {
	if seed == 0 {
		seed = int64(RandomInt32())
	}
	return mrand.New(mrand.NewSource(seed))
}

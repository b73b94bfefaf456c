// Package random draws high-entropy seeds for pseudo-random sources.
//
// The engine seeds a PRNG per dice roll and persists the breakdown, so the
// seed itself must come from crypto/rand rather than the wall clock.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed returns a crypto/rand-backed seed for a math/rand source.
func NewSeed() (int64, error) {
	var buf [8]byte
	if _, err := crand.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

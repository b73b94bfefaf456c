package random

import "testing"

func TestNewSeedVaries(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 8; i++ {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("new seed: %v", err)
		}
		if seen[seed] {
			t.Fatalf("seed %d repeated", seed)
		}
		seen[seed] = true
	}
}

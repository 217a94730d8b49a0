package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Generator creates opaque IDs for external references. The prefix names the
// entity kind (ev, d, tok, snap) so an ID is recognisable in logs and ledger
// payloads without a lookup.
type Generator interface {
	NewID(prefix string) (string, error)
}

type RandomGenerator struct{}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{}
}

func (g *RandomGenerator) NewID(prefix string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	if prefix == "" {
		return hex.EncodeToString(buf), nil
	}
	return prefix + "-" + hex.EncodeToString(buf), nil
}

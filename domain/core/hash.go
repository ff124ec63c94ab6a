package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// SeriesHash fingerprints the sampled data a report was computed from
type SeriesHash Hash

// NewSeriesHash creates a series hash from raw bytes
func NewSeriesHash(data []byte) SeriesHash { return SeriesHash(NewHash(data)) }

// String conversion
func (h SeriesHash) String() string { return Hash(h).String() }

// ComputeSeriesHash fingerprints a time/flux series so stored reports can be
// traced back to the exact cadences they were computed from. Go's %v prints
// the shortest round-trippable form of a float64, so equal slices hash equal.
func ComputeSeriesHash(times, flux []float64) SeriesHash {
	var data strings.Builder
	for i := range times {
		data.WriteString(fmt.Sprintf("%v,", times[i]))
	}
	data.WriteString(";")
	for i := range flux {
		data.WriteString(fmt.Sprintf("%v,", flux[i]))
	}
	return NewSeriesHash([]byte(data.String()))
}

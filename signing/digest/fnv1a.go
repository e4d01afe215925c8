// Package digest computes the 32-bit FNV-1a content digest that FNV signatures are built on.
//
// The digest is not cryptographically secure. It only detects accidental content changes and
// must stay bit-for-bit stable, because every signature ever produced records it.
package digest

import (
	"fmt"
	"hash/fnv"
	"io"
	"strconv"
)

const (
	// OffsetBasis is the initial accumulator value of 32-bit FNV-1a.
	OffsetBasis uint32 = 2166136261
	// Prime is the 32-bit FNV prime.
	Prime uint32 = 16777619
)

// Digest is a 32-bit FNV-1a value.
type Digest uint32

// FNV1a calculates the digest over data. An empty input yields OffsetBasis.
func FNV1a(data []byte) Digest {
	h := fnv.New32a()
	// fnv32a can never fail to write
	_, _ = h.Write(data)
	return Digest(h.Sum32())
}

// FromReader calculates the digest over everything readable from r.
func FromReader(r io.Reader) (Digest, error) {
	h := fnv.New32a()
	if _, err := io.Copy(h, r); err != nil {
		return 0, fmt.Errorf("read content for digest: %w", err)
	}
	return Digest(h.Sum32()), nil
}

// String renders the digest as lowercase hex without zero padding, e.g. "811c9dc5".
func (d Digest) String() string {
	return strconv.FormatUint(uint64(d), 16)
}

// Parse reads a hex rendered digest back.
func Parse(s string) (Digest, error) {
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid fnv1a digest %q: %w", s, err)
	}
	return Digest(v), nil
}

// Package checksum implements the pluggable checksum collaborator from
// spec §6: `calculateCRC(bytes, startByteIndex, endByteIndex, seed)`,
// registered by algorithm id and invoked exactly once per message by
// the message driver (spec §4.6 step 5).
package checksum

import (
	"hash/crc32"

	"github.com/binframe/codec/errs"
)

// Algorithm computes a checksum over buf[start:end] seeded with seed.
// The CRC16 family takes seed as the initial register value; CRC32
// ignores seed (IEEE polynomial has a fixed initial value of 0xFFFFFFFF
// baked into hash/crc32, matching the teacher's runtime.CRC32 helper).
type Algorithm func(buf []byte, start, end int, seed uint64) (uint64, error)

// Registry maps an algorithm id to its implementation. Registries are
// immutable after construction and safe to share across invocations
// (spec §5).
type Registry struct {
	algorithms map[string]Algorithm
}

// NewRegistry returns a Registry pre-populated with the built-in
// algorithms; callers may add more via Register.
func NewRegistry() *Registry {
	r := &Registry{algorithms: map[string]Algorithm{}}
	r.Register("CRC16/CCITT-FALSE", CRC16CCITTFalse)
	r.Register("CRC32/IEEE", CRC32IEEE)
	return r
}

// Register adds or replaces an algorithm under id.
func (r *Registry) Register(id string, alg Algorithm) {
	r.algorithms[id] = alg
}

// Lookup returns the algorithm registered under id.
func (r *Registry) Lookup(id string) (Algorithm, bool) {
	alg, ok := r.algorithms[id]
	return alg, ok
}

func checkRange(buf []byte, start, end int) error {
	if start < 0 || end > len(buf) || start > end {
		return errs.Newf(errs.KindChecksumMismatch, "invalid checksum range [%d:%d) over %d bytes", start, end, len(buf))
	}
	return nil
}

// CRC16CCITTFalse implements the CRC-16/CCITT-FALSE algorithm used by
// spec Scenario E, polynomial 0x1021, seeded by the caller (spec
// Scenario E uses seed 0xFFFF).
func CRC16CCITTFalse(buf []byte, start, end int, seed uint64) (uint64, error) {
	if err := checkRange(buf, start, end); err != nil {
		return 0, err
	}
	crc := uint16(seed)
	for _, b := range buf[start:end] {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return uint64(crc), nil
}

// CRC32IEEE implements the CRC-32 (IEEE 802.3) algorithm, delegating to
// the standard library's table-driven implementation the way the
// teacher's runtime.CRC32 helper does (runtime/bitstream.go); seed is
// ignored since hash/crc32 fixes the initial register internally.
func CRC32IEEE(buf []byte, start, end int, _ uint64) (uint64, error) {
	if err := checkRange(buf, start, end); err != nil {
		return 0, err
	}
	return uint64(crc32.ChecksumIEEE(buf[start:end])), nil
}

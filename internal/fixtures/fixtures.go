// Package fixtures loads data-driven test cases from JSON5 files: a
// byte sequence plus the object graph a driver.Decode of it should
// produce. Adapted from the teacher's cross-language test/loader.go,
// re-targeted from the old codegen test-suite shape (schema + generated
// code + TypeScript comparison) to this engine's own decode/encode
// round-trip shape (message name + bytes + decoded map).
package fixtures

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/aeolun/json5"
)

// Case is one decode/encode expectation: raw bytes on one side, the
// decoded object graph on the other.
type Case struct {
	Description string         `json:"description"`
	Message     string         `json:"message"` // name of the Message this case targets
	Bytes       []byte         `json:"bytes"`
	Bits        []int          `json:"bits,omitempty"`
	BitOrder    string         `json:"bit_order,omitempty"`
	Decoded     map[string]any `json:"decoded"`
	ShouldError bool           `json:"should_error,omitempty"`
	ErrorKind   string         `json:"error_kind,omitempty"`
}

// Suite is a named group of Cases loaded from a single file.
type Suite struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Cases       []Case `json:"cases"`
}

// Load reads and parses a single *.fixture.json5 file.
func Load(path string) (*Suite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("fixtures: read %s: %w", path, err)
	}
	var suite Suite
	if err := json5.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("fixtures: parse %s: %w", path, err)
	}
	suite.Cases = normalizeBigInts(suite.Cases)
	suite.Cases = fillBytesFromBits(suite.Cases)
	return &suite, nil
}

// LoadDir recursively loads every *.fixture.json5 file under root.
func LoadDir(root string) ([]*Suite, error) {
	var suites []*Suite
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(path, ".fixture.json5") {
			return nil
		}
		suite, err := Load(path)
		if err != nil {
			return err
		}
		suites = append(suites, suite)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return suites, nil
}

// normalizeBigInts converts trailing-"n" BigInt-style strings (e.g.
// "12345n") in decoded values to int64/uint64, the same convention the
// teacher's cross-language suites used for values outside float64's
// safe integer range.
func normalizeBigInts(cases []Case) []Case {
	for i := range cases {
		cases[i].Decoded = normalizeValue(cases[i].Decoded).(map[string]any)
	}
	return cases
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case string:
		if strings.HasSuffix(t, "n") {
			numStr := strings.TrimSuffix(t, "n")
			if n, err := strconv.ParseInt(numStr, 10, 64); err == nil {
				return n
			}
			if n, err := strconv.ParseUint(numStr, 10, 64); err == nil {
				return n
			}
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = normalizeValue(v)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}

func fillBytesFromBits(cases []Case) []Case {
	for i := range cases {
		if len(cases[i].Bits) > 0 && len(cases[i].Bytes) == 0 {
			cases[i].Bytes = BitsToBytes(cases[i].Bits, cases[i].BitOrder)
		}
	}
	return cases
}

// BitsToBytes packs a 0/1 bit array into bytes, respecting bitOrder
// ("msb_first", the default, or "lsb_first"), letting a fixture author
// spell out bit-level Bits/BitSet test vectors without hand-computing
// the packed hex.
func BitsToBytes(bits []int, bitOrder string) []byte {
	if len(bits) == 0 {
		return []byte{}
	}
	out := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit == 0 {
			continue
		}
		byteIdx := i / 8
		var bitIdx int
		if bitOrder == "lsb_first" {
			bitIdx = i % 8
		} else {
			bitIdx = 7 - (i % 8)
		}
		out[byteIdx] |= 1 << bitIdx
	}
	return out
}

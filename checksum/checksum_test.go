package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarioECRC16(t *testing.T) {
	// spec.md Scenario E: {byte a; byte b; short crc}, skipStart=0,
	// skipEnd=2, seed=0xFFFF, covering bytes 0x12 0x34.
	got, err := CRC16CCITTFalse([]byte{0x12, 0x34}, 0, 2, 0xFFFF)
	require.NoError(t, err)

	// Flipping a covered bit must change the checksum.
	flipped, err := CRC16CCITTFalse([]byte{0x13, 0x34}, 0, 2, 0xFFFF)
	require.NoError(t, err)
	require.NotEqual(t, got, flipped)
}

func TestCRC32Known(t *testing.T) {
	got, err := CRC32IEEE([]byte("123456789"), 0, 9, 0)
	require.NoError(t, err)
	require.EqualValues(t, 0xCBF43926, got)
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry()
	alg, ok := r.Lookup("CRC16/CCITT-FALSE")
	require.True(t, ok)
	require.NotNil(t, alg)

	_, ok = r.Lookup("does-not-exist")
	require.False(t, ok)
}

func TestInvalidRange(t *testing.T) {
	_, err := CRC32IEEE([]byte{1, 2, 3}, 1, 10, 0)
	require.Error(t, err)
}

package bitstream

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScenarioAFixedIntegers(t *testing.T) {
	// spec.md Scenario A: Int(BE) a; Short(LE) b.
	raw := []byte{0x00, 0x00, 0x01, 0x2C, 0x34, 0x12}
	r := NewReader(raw)

	a, err := r.GetInt(BigEndian)
	require.NoError(t, err)
	require.EqualValues(t, 300, a)

	b, err := r.GetShort(LittleEndian)
	require.NoError(t, err)
	require.EqualValues(t, 0x1234, b)

	w := NewWriter()
	w.PutInt(a, BigEndian)
	w.PutShort(b, LittleEndian)
	require.Equal(t, raw, w.Flush())
}

func TestScenarioBTerminatedString(t *testing.T) {
	raw := []byte{0x48, 0x65, 0x6C, 0x6C, 0x6F, 0x00}
	r := NewReader(raw)
	s, err := r.GetTextUntil(0x00, true)
	require.NoError(t, err)
	require.Equal(t, "Hello", s)

	w := NewWriter()
	require.NoError(t, w.PutTextTerminated(s, "UTF-8", 0x00))
	require.Equal(t, raw, w.Flush())
}

func TestScenarioCBitSetLittleEndian(t *testing.T) {
	// First 12 bits of 0xF0 0x0F are 1111_0000_0000.
	raw := []byte{0xF0, 0x0F}
	r := NewReader(raw)
	v, err := r.GetBits(12)
	require.NoError(t, err)
	require.Equal(t, uint64(0b1111_0000_0000), v)

	reversed := ReverseBits(v, 12)
	require.Equal(t, uint64(0b0000_0000_1111), reversed)
}

func TestEndiannessDuality(t *testing.T) {
	values := []uint32{0, 1, 0xDEADBEEF, 0x12345678}
	for _, v := range values {
		wBE := NewWriter()
		wBE.PutInt(int32(v), BigEndian)
		be := wBE.Flush()

		wLE := NewWriter()
		wLE.PutInt(int32(v), LittleEndian)
		le := wLE.Flush()

		require.Equal(t, []byte{be[3], be[2], be[1], be[0]}, le)

		rBE := NewReader(be)
		got, err := rBE.GetInt(BigEndian)
		require.NoError(t, err)
		require.Equal(t, int32(v), got)
	}
}

func TestBigIntegerRoundTrip(t *testing.T) {
	w := NewWriter()
	val := big.NewInt(-12345)
	require.NoError(t, w.PutBigInteger(val, 24, BigEndian, true))
	raw := w.Flush()
	require.Len(t, raw, 3)

	r := NewReader(raw)
	got, err := r.GetBigInteger(24, BigEndian, true)
	require.NoError(t, err)
	require.Equal(t, val, got)
}

func TestBigIntegerNonByteAlignedWidth(t *testing.T) {
	r := NewReader([]byte{0xF0, 0xA0})
	got, err := r.GetBigInteger(12, BigEndian, false)
	require.NoError(t, err)
	require.Equal(t, big.NewInt(0xF0A), got)
}

func TestBigIntegerNonByteAlignedRoundTrip(t *testing.T) {
	val := big.NewInt(3850) // 0xF0A, a 12-bit value
	w := NewWriter()
	require.NoError(t, w.PutBigInteger(val, 12, BigEndian, false))
	raw := w.Flush()

	r := NewReader(raw)
	got, err := r.GetBigInteger(12, BigEndian, false)
	require.NoError(t, err)
	require.Equal(t, val, got)
}

func TestBigIntegerWidthOver64Bits(t *testing.T) {
	val := new(big.Int)
	val.SetString("123456789012345678901234567890", 10) // needs >64 bits
	w := NewWriter()
	require.NoError(t, w.PutBigInteger(val, 100, BigEndian, false))
	raw := w.Flush()

	r := NewReader(raw)
	got, err := r.GetBigInteger(100, BigEndian, false)
	require.NoError(t, err)
	require.Equal(t, val, got)
}

func TestInsufficientBytes(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, err := r.GetInt(BigEndian)
	require.Error(t, err)
}

func TestSkipAndPosition(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03})
	require.NoError(t, r.Skip(8))
	b, err := r.GetByte()
	require.NoError(t, err)
	require.EqualValues(t, 0x02, b)
	require.Equal(t, 16, r.Position())
}

func TestSkipUntilTerminatorNotConsumed(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x00, 0x03})
	require.NoError(t, r.SkipUntil(0x00, false))
	b, err := r.GetByte()
	require.NoError(t, err)
	require.EqualValues(t, 0x00, b)
}

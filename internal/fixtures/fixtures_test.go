package fixtures_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/driver"
	"github.com/binframe/codec/internal/fixtures"
)

func TestLoadParsesBytesAndDecoded(t *testing.T) {
	suite, err := fixtures.Load("testdata/simple.fixture.json5")
	require.NoError(t, err)
	require.Equal(t, "simple-integers", suite.Name)
	require.Len(t, suite.Cases, 2)

	first := suite.Cases[0]
	require.Equal(t, []byte{0x01, 0x00, 0x00, 0x01, 0x2C}, first.Bytes)
	require.EqualValues(t, 1, first.Decoded["flag"])
	require.EqualValues(t, 300, first.Decoded["value"])

	second := suite.Cases[1]
	require.Equal(t, []byte{0xA3}, second.Bytes, "bit array should pack MSB-first into 0xA3")
}

func TestFixtureDrivesDecoder(t *testing.T) {
	suite, err := fixtures.Load("testdata/simple.fixture.json5")
	require.NoError(t, err)

	simple := &descriptor.Message{
		Name: "Simple",
		Fields: []*descriptor.Field{
			{Name: "flag", Kind: descriptor.KindByte},
			{Name: "value", Kind: descriptor.KindInt},
		},
	}
	nibbles := &descriptor.Message{
		Name: "Nibbles",
		Fields: []*descriptor.Field{
			{Name: "hi", Kind: descriptor.KindBits, BitSize: "4"},
			{Name: "lo", Kind: descriptor.KindBits, BitSize: "4"},
		},
	}
	messages := map[string]*descriptor.Message{"Simple": simple, "Nibbles": nibbles}

	d := driver.New()
	for _, c := range suite.Cases {
		msg, ok := messages[c.Message]
		require.True(t, ok, "no descriptor registered for %q", c.Message)

		obj, err := d.Decode(msg, c.Bytes)
		require.NoError(t, err, c.Description)
		for k, want := range c.Decoded {
			require.EqualValues(t, want, obj[k], "%s: field %s", c.Description, k)
		}
	}
}

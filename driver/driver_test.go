package driver_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/driver"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"

	"github.com/binframe/codec/bitstream"
)

func TestRoundTripFixedIntegers(t *testing.T) {
	msg := &descriptor.Message{
		Name: "Simple",
		Fields: []*descriptor.Field{
			{Name: "flag", Kind: descriptor.KindByte},
			{Name: "value", Kind: descriptor.KindInt, Endianness: bitstream.BigEndian},
		},
	}
	raw := []byte{0x01, 0x00, 0x00, 0x01, 0x2C}

	d := driver.New()
	obj, err := d.Decode(msg, raw)
	require.NoError(t, err)
	require.Equal(t, int8(1), obj["flag"])
	require.Equal(t, int32(300), obj["value"])

	out, err := d.Encode(msg, obj)
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

func TestRoundTripTerminatedString(t *testing.T) {
	msg := &descriptor.Message{
		Name: "Greeting",
		Fields: []*descriptor.Field{
			{Name: "text", Kind: descriptor.KindStringTerminated, Terminator: 0x00, ConsumeTerminator: true},
		},
	}
	raw := []byte("Hello\x00")

	d := driver.New()
	obj, err := d.Decode(msg, raw)
	require.NoError(t, err)
	require.Equal(t, "Hello", obj["text"])

	out, err := d.Encode(msg, obj)
	require.NoError(t, err)
	require.Equal(t, raw, out)
}

func TestChecksumRoundTripAndMismatch(t *testing.T) {
	msg := &descriptor.Message{
		Name: "Frame",
		Fields: []*descriptor.Field{
			{Name: "payload", Kind: descriptor.KindShort, Endianness: bitstream.BigEndian},
			{Name: "crc", Kind: descriptor.KindChecksum, Checksum: &descriptor.ChecksumSpec{
				Algorithm: "CRC16/CCITT-FALSE",
				Seed:      0xFFFF,
				SkipStart: 0,
				SkipEnd:   2,
				WidthBits: 16,
			}},
		},
	}

	d := driver.New()
	out, err := d.Encode(msg, map[string]any{"payload": int16(0x1234)})
	require.NoError(t, err)
	require.Len(t, out, 4)

	obj, err := d.Decode(msg, out)
	require.NoError(t, err)
	require.Equal(t, int16(0x1234), obj["payload"])

	corrupt := append([]byte(nil), out...)
	corrupt[0] ^= 0xFF
	_, err = d.Decode(msg, corrupt)
	require.Error(t, err)
	var ce *errs.CodecError
	require.True(t, errors.As(err, &ce))
	require.True(t, errors.Is(err, errs.ErrChecksumMismatch))
}

func TestChoiceTableByPrefixRoundTrip(t *testing.T) {
	typeA := &descriptor.Message{
		Name:   "TypeA",
		Fields: []*descriptor.Field{{Name: "x", Kind: descriptor.KindByte}},
	}
	typeB := &descriptor.Message{
		Name:   "TypeB",
		Fields: []*descriptor.Field{{Name: "y", Kind: descriptor.KindShort, Endianness: bitstream.BigEndian}},
	}
	zero := uint64(0)
	one := uint64(1)
	choice := &descriptor.ChoiceTable{
		PrefixSize: 8,
		Alternatives: []descriptor.Alternative{
			{TypeName: "TypeA", Type: typeA, Condition: eval.MustParse("prefix == 0"), PrefixValue: &zero},
			{TypeName: "TypeB", Type: typeB, Condition: eval.MustParse("prefix == 1"), PrefixValue: &one},
		},
	}
	wrapper := &descriptor.Message{
		Name: "Wrapper",
		Fields: []*descriptor.Field{
			{Name: "item", Kind: descriptor.KindObject, Choice: choice},
		},
	}

	raw := []byte{0x00, 0x05}

	d := driver.New()
	obj, err := d.Decode(wrapper, raw)
	require.NoError(t, err)
	item, ok := obj["item"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "TypeA", item["__type"])
	require.Equal(t, int8(5), item["x"])

	out, err := d.Encode(wrapper, obj)
	require.NoError(t, err)
	require.Equal(t, raw, out)

	rawB := []byte{0x01, 0x01, 0x2C}
	objB, err := d.Decode(wrapper, rawB)
	require.NoError(t, err)
	itemB := objB["item"].(map[string]any)
	require.Equal(t, "TypeB", itemB["__type"])
	require.Equal(t, int16(0x012C), itemB["y"])

	outB, err := d.Encode(wrapper, objB)
	require.NoError(t, err)
	require.Equal(t, rawB, outB)
}

func TestArrayObjectTolerantNoCodec(t *testing.T) {
	// Kind 99 has no registered codec, so every element fails with
	// NoCodec; the array codec tolerates that and leaves the element nil.
	elem := &descriptor.Message{
		Name:   "Elem",
		Fields: []*descriptor.Field{{Name: "v", Kind: descriptor.Kind(99)}},
	}
	msg := &descriptor.Message{
		Name: "Holder",
		Fields: []*descriptor.Field{
			{Name: "items", Kind: descriptor.KindArrayObject, Size: "2", ElementType: elem},
		},
	}
	raw := []byte{0x01, 0x02}

	d := driver.New()
	obj, err := d.Decode(msg, raw)
	require.NoError(t, err)
	items := obj["items"].([]any)
	require.Len(t, items, 2)
	require.Nil(t, items[0])
	require.Nil(t, items[1])
}

func TestArrayObjectPositionOfAndCorrespondingType(t *testing.T) {
	typeA := &descriptor.Message{
		Name:   "TypeA",
		Fields: []*descriptor.Field{{Name: "a", Kind: descriptor.KindByte}},
	}
	typeB := &descriptor.Message{
		Name:   "TypeB",
		Fields: []*descriptor.Field{{Name: "b", Kind: descriptor.KindByte}},
	}
	zero := uint64(0)
	one := uint64(1)
	choice := &descriptor.ChoiceTable{
		PrefixSize: 8,
		Alternatives: []descriptor.Alternative{
			{TypeName: "TypeA", Type: typeA, Condition: eval.MustParse("prefix == 0"), PrefixValue: &zero},
			{TypeName: "TypeB", Type: typeB, Condition: eval.MustParse("prefix == 1"), PrefixValue: &one},
		},
	}
	batch := &descriptor.Message{
		Name: "Batch",
		Fields: []*descriptor.Field{
			{Name: "items", Kind: descriptor.KindArrayObject, Size: "3", Choice: choice},
		},
		Evaluated: []*descriptor.EvaluatedField{
			{Name: "lastBPos", ValueExpr: eval.MustParse("position_of(items, TypeB)")},
			{Name: "lastBVal", ValueExpr: eval.MustParse("corresponding<TypeB>(items).b")},
		},
	}

	// elem0: TypeA a=0x10 at byte 0; elem1: TypeB b=0x20 at byte 2;
	// elem2: TypeB b=0x30 at byte 4.
	raw := []byte{0x00, 0x10, 0x01, 0x20, 0x01, 0x30}

	d := driver.New()
	obj, err := d.Decode(batch, raw)
	require.NoError(t, err)

	items := obj["items"].([]any)
	require.Len(t, items, 3)
	require.Equal(t, "TypeB", items[2].(map[string]any)["__type"])

	require.EqualValues(t, 4, obj["lastBPos"])
	require.Equal(t, int8(0x30), obj["lastBVal"])
}

func TestHeaderMismatchIsBadTerminator(t *testing.T) {
	msg := &descriptor.Message{
		Name:   "Framed",
		Header: &descriptor.Header{Start: []byte{0xAA}, End: []byte{0xFF}},
		Fields: []*descriptor.Field{{Name: "v", Kind: descriptor.KindByte}},
	}
	d := driver.New()
	_, err := d.Decode(msg, []byte{0xAB, 0x01, 0xFF})
	require.Error(t, err)
	require.True(t, errors.Is(err, errs.ErrBadTerminator))
}

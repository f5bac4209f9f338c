package validate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/eval"
	"github.com/binframe/codec/validate"
)

func TestValidMessagePasses(t *testing.T) {
	msg := &descriptor.Message{
		Name: "Simple",
		Fields: []*descriptor.Field{
			{Name: "flag", Kind: descriptor.KindByte},
			{Name: "text", Kind: descriptor.KindStringFixed, Size: "4", Charset: "UTF-8"},
		},
	}
	v := validate.New(nil)
	require.Empty(t, v.Validate(msg))
}

func TestBigDecimalUnderlyingMustBeFloatOrDouble(t *testing.T) {
	msg := &descriptor.Message{
		Name: "Bad",
		Fields: []*descriptor.Field{
			{Name: "amount", Kind: descriptor.KindBigDecimal, BigDecimalUnderlying: descriptor.KindByte},
		},
	}
	v := validate.New(nil)
	problems := v.Validate(msg)
	require.NotEmpty(t, problems)
}

func TestChecksumWidthMustBeByteMultiple(t *testing.T) {
	msg := &descriptor.Message{
		Name: "Bad",
		Fields: []*descriptor.Field{
			{Name: "crc", Kind: descriptor.KindChecksum, Checksum: &descriptor.ChecksumSpec{Algorithm: "CRC16/CCITT-FALSE", WidthBits: 10}},
		},
	}
	v := validate.New(nil)
	require.NotEmpty(t, v.Validate(msg))
}

func TestChoiceTableRequiresAlternativesOrDefault(t *testing.T) {
	msg := &descriptor.Message{
		Name: "Bad",
		Fields: []*descriptor.Field{
			{Name: "item", Kind: descriptor.KindObject, Choice: &descriptor.ChoiceTable{}},
		},
	}
	v := validate.New(nil)
	require.NotEmpty(t, v.Validate(msg))
}

func TestChoiceAlternativeNeedsConditionWithoutPrefix(t *testing.T) {
	alt := &descriptor.Message{Name: "Alt", Fields: []*descriptor.Field{{Name: "x", Kind: descriptor.KindByte}}}
	msg := &descriptor.Message{
		Name: "Bad",
		Fields: []*descriptor.Field{
			{Name: "item", Kind: descriptor.KindObject, Choice: &descriptor.ChoiceTable{
				Alternatives: []descriptor.Alternative{{TypeName: "Alt", Type: alt}},
			}},
		},
	}
	v := validate.New(nil)
	require.NotEmpty(t, v.Validate(msg))
}

func TestChoiceAlternativeOKWithCondition(t *testing.T) {
	alt := &descriptor.Message{Name: "Alt", Fields: []*descriptor.Field{{Name: "x", Kind: descriptor.KindByte}}}
	msg := &descriptor.Message{
		Name: "Good",
		Fields: []*descriptor.Field{
			{Name: "item", Kind: descriptor.KindObject, Choice: &descriptor.ChoiceTable{
				Alternatives: []descriptor.Alternative{{TypeName: "Alt", Type: alt, Condition: eval.MustParse("self.x == 1")}},
			}},
		},
	}
	v := validate.New(nil)
	require.Empty(t, v.Validate(msg))
}

func TestUnknownCharsetRejected(t *testing.T) {
	msg := &descriptor.Message{
		Name: "Bad",
		Fields: []*descriptor.Field{
			{Name: "text", Kind: descriptor.KindStringFixed, Size: "4", Charset: "SHIFT-JIS"},
		},
	}
	v := validate.New(nil)
	require.NotEmpty(t, v.Validate(msg))
}

func TestRecursiveSelfReferenceDoesNotLoop(t *testing.T) {
	node := &descriptor.Message{Name: "Node"}
	node.Fields = []*descriptor.Field{
		{Name: "value", Kind: descriptor.KindByte},
		{Name: "next", Kind: descriptor.KindObject, ElementType: node},
	}
	v := validate.New(nil)
	require.Empty(t, v.Validate(node))
}

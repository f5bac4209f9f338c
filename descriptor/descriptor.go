// Package descriptor is the in-memory data model for one message's wire
// layout (spec §3): an ordered list of field descriptors plus optional
// header, checksum, and evaluated-field metadata. A descriptor list is
// built once at load time, validated by package validate, and shared
// freely and immutably afterward (spec §3 "Ownership/lifecycle", §5).
package descriptor

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/convert"
	"github.com/binframe/codec/eval"
)

// Kind tags one of the field-descriptor variants from spec §3's table.
type Kind int

const (
	KindByte Kind = iota
	KindShort
	KindInt
	KindLong
	KindBigInteger
	KindFloat
	KindDouble
	KindBigDecimal
	KindBits
	KindBitSet
	KindStringFixed
	KindStringTerminated
	KindArrayPrimitive
	KindArrayObject
	KindObject
	KindChecksum
)

func (k Kind) String() string {
	names := [...]string{
		"Byte", "Short", "Int", "Long", "BigInteger", "Float", "Double",
		"BigDecimal", "Bits", "BitSet", "StringFixed", "StringTerminated",
		"ArrayPrimitive", "ArrayObject", "Object", "Checksum",
	}
	if int(k) < 0 || int(k) >= len(names) {
		return "Unknown"
	}
	return names[k]
}

// IsPrimitive reports whether Kind denotes a fixed-width scalar wire
// type, used by the validator's Object/ArrayPrimitive sanity checks
// (spec §4.7).
func (k Kind) IsPrimitive() bool {
	switch k {
	case KindByte, KindShort, KindInt, KindLong, KindBigInteger, KindFloat,
		KindDouble, KindBigDecimal, KindBits, KindBitSet:
		return true
	default:
		return false
	}
}

// Skip is a directive evaluated before its owning field, advancing the
// cursor by a bit count or up to a terminator (spec §3, §4.6 step 2a).
type Skip struct {
	Condition         *eval.Expr // nil or empty ⇒ always applied
	SizeExpr          string     // mutually exclusive with Terminator
	Terminator        *byte
	ConsumeTerminator bool
}

// Header describes the fixed byte sequences that open/close a message
// (spec §3, §6).
type Header struct {
	Start   []byte
	End     []byte
	Charset string
}

// ChecksumSpec holds the attributes of a Checksum-kind field (spec §3
// table, §4.6 step 5).
type ChecksumSpec struct {
	Algorithm string
	Seed      uint64
	SkipStart int
	SkipEnd   int
	WidthBits int // integer width of the checksum field itself
}

// Alternative is one row of a ChoiceTable (spec §3 "Choice table").
type Alternative struct {
	TypeName  string
	Type      *Message
	Condition *eval.Expr

	// PrefixValue is the literal prefix this alternative writes on
	// encode when the choice table has PrefixSize > 0 (spec §4.5:
	// encode "determine the alternative whose declared type equals the
	// runtime type of the value ... write its prefix"). Encode selects
	// by runtime type, not by re-evaluating Condition, so the concrete
	// value to write must be known directly rather than inferred from
	// an arbitrary condition expression.
	PrefixValue *uint64
}

// ChoiceTable is the polymorphic selector described in spec §3/§4.5.
type ChoiceTable struct {
	PrefixSize      int // 0..32 bits
	DeclaredType    string
	Alternatives    []Alternative
	DefaultTypeName string
	Default         *Message
}

// EvaluatedField is a derived field populated after all byte-consuming
// fields, in declaration order (spec §3, §4.6 step 3).
type EvaluatedField struct {
	Name      string
	Condition *eval.Expr
	ValueExpr *eval.Expr
}

// Field is the discriminated union over field kinds from spec §3's
// table. Not every attribute applies to every Kind; package validate
// enforces which combinations are well-formed.
type Field struct {
	Name string
	Kind Kind

	Endianness bitstream.Endianness

	// BitSize is the expr for BigInteger/Bits/BitSet widths.
	BitSize string
	Signed  bool // BigInteger only

	// Size is the expr for StringFixed length and Array* length.
	Size string

	Charset           string
	Terminator        byte
	ConsumeTerminator bool

	// ElementKind is the primitive element kind for ArrayPrimitive.
	ElementKind Kind

	// ElementType is the nested message type for Object/ArrayObject
	// when no ChoiceTable is present.
	ElementType *Message

	// Choice, when non-nil, makes Object/ArrayObject polymorphic.
	Choice *ChoiceTable

	// BigDecimalUnderlying must be KindFloat or KindDouble.
	BigDecimalUnderlying Kind

	Converters *convert.Set
	Validator  func(any) error

	Condition *eval.Expr
	Skips     []Skip

	Checksum *ChecksumSpec // only set when Kind == KindChecksum
}

// Message is one message type's full descriptor list (spec §3).
type Message struct {
	Name      string
	Header    *Header
	Fields    []*Field
	Evaluated []*EvaluatedField

	// Implements lists abstract/choice type names this concrete
	// message is a valid alternative for, standing in for a real
	// subtyping relation the descriptor model doesn't otherwise have
	// (spec §3 choice-table invariant "all alternative types are
	// subtypes of the descriptor's declared type").
	Implements []string
}

// IsAssignableTo reports whether m may stand in for declaredType, used
// by the validator's choice-table checks. Encode-side choice resolution
// does not call it; it matches Alternative.TypeName against the type
// name recorded on the value.
func (m *Message) IsAssignableTo(declaredType string) bool {
	if m == nil {
		return false
	}
	if m.Name == declaredType {
		return true
	}
	for _, t := range m.Implements {
		if t == declaredType {
			return true
		}
	}
	return false
}

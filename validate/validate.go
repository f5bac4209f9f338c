// Package validate implements the load-time descriptor validator from
// spec §4.7: structural and semantic checks over a descriptor list,
// run once when a Message is loaded, well before any bytes are
// decoded or encoded against it.
package validate

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/codec"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
)

// Validator checks descriptor.Message values against a codec registry,
// confirming every field kind it names has a dispatch-table entry.
type Validator struct {
	registry *codec.Registry
}

// New builds a Validator against reg. Passing nil uses codec.NewRegistry().
func New(reg *codec.Registry) *Validator {
	if reg == nil {
		reg = codec.NewRegistry()
	}
	return &Validator{registry: reg}
}

// Validate walks msg and every nested/choice message it reaches,
// collecting every structural problem rather than stopping at the
// first one, so an author sees the whole list in one pass.
func (v *Validator) Validate(msg *descriptor.Message) []error {
	var errs []error
	v.validateMessage(msg, map[*descriptor.Message]bool{}, &errs)
	return errs
}

// MustValidate wraps Validate, returning the first problem found (if
// any) as a single *errs.CodecError of kind AnnotationError, the form
// callers that just want a load-time go/no-go decision want.
func (v *Validator) MustValidate(msg *descriptor.Message) error {
	if problems := v.Validate(msg); len(problems) > 0 {
		return errs.Wrap(errs.KindAnnotation, problems[0])
	}
	return nil
}

func (v *Validator) validateMessage(msg *descriptor.Message, seen map[*descriptor.Message]bool, out *[]error) {
	if msg == nil || seen[msg] {
		return
	}
	seen[msg] = true

	for _, f := range msg.Fields {
		v.validateField(msg, f, seen, out)
	}
	for _, ef := range msg.Evaluated {
		if ef.ValueExpr == nil {
			addf(out, msg, ef.Name, "evaluated field has no value expression")
		}
	}
	if msg.Header != nil && msg.Header.Charset != "" && !bitstream.IsKnownCharset(msg.Header.Charset) {
		addf(out, msg, "<header>", "unrecognized charset %q", msg.Header.Charset)
	}
}

func (v *Validator) validateField(msg *descriptor.Message, f *descriptor.Field, seen map[*descriptor.Message]bool, out *[]error) {
	if !v.registry.HasCodec(f.Kind) {
		addf(out, msg, f.Name, "no codec registered for kind %s", f.Kind)
	}

	switch f.Kind {
	case descriptor.KindBigInteger, descriptor.KindBits, descriptor.KindBitSet:
		if f.BitSize == "" {
			addf(out, msg, f.Name, "%s field requires a BitSize expression", f.Kind)
		}

	case descriptor.KindStringFixed:
		if f.Size == "" {
			addf(out, msg, f.Name, "StringFixed field requires a Size expression")
		}
		if !bitstream.IsKnownCharset(f.Charset) {
			addf(out, msg, f.Name, "unrecognized charset %q", f.Charset)
		}

	case descriptor.KindStringTerminated:
		if !bitstream.IsKnownCharset(f.Charset) {
			addf(out, msg, f.Name, "unrecognized charset %q", f.Charset)
		}

	case descriptor.KindBigDecimal:
		if f.BigDecimalUnderlying != descriptor.KindFloat && f.BigDecimalUnderlying != descriptor.KindDouble {
			addf(out, msg, f.Name, "BigDecimal underlying kind must be Float or Double, got %s", f.BigDecimalUnderlying)
		}

	case descriptor.KindArrayPrimitive:
		if f.Size == "" {
			addf(out, msg, f.Name, "ArrayPrimitive field requires a Size expression")
		}
		if !f.ElementKind.IsPrimitive() || f.ElementKind == descriptor.KindBigInteger ||
			f.ElementKind == descriptor.KindBigDecimal || f.ElementKind == descriptor.KindBits ||
			f.ElementKind == descriptor.KindBitSet {
			addf(out, msg, f.Name, "ArrayPrimitive element kind %s is not a supported fixed-width primitive", f.ElementKind)
		}

	case descriptor.KindArrayObject:
		if f.Size == "" {
			addf(out, msg, f.Name, "ArrayObject field requires a Size expression")
		}
		v.validateObjectLike(msg, f, seen, out)

	case descriptor.KindObject:
		v.validateObjectLike(msg, f, seen, out)

	case descriptor.KindChecksum:
		if f.Checksum == nil {
			addf(out, msg, f.Name, "Checksum field missing ChecksumSpec")
		} else if f.Checksum.WidthBits <= 0 || f.Checksum.WidthBits%8 != 0 || f.Checksum.WidthBits > 64 {
			addf(out, msg, f.Name, "Checksum field must be integer-valued: width %d is not a multiple of 8 in [8,64]", f.Checksum.WidthBits)
		}
	}

	if f.Converters != nil {
		for i, alt := range f.Converters.Alternatives {
			if alt.Condition == nil {
				addf(out, msg, f.Name, "converter alternative %d has no condition", i)
			}
			if alt.Converter == nil {
				addf(out, msg, f.Name, "converter alternative %d has no converter", i)
			}
		}
	}
}

func (v *Validator) validateObjectLike(msg *descriptor.Message, f *descriptor.Field, seen map[*descriptor.Message]bool, out *[]error) {
	if f.ElementType == nil && f.Choice == nil {
		addf(out, msg, f.Name, "%s field requires either ElementType or a Choice table", f.Kind)
		return
	}
	if f.ElementType != nil {
		v.validateMessage(f.ElementType, seen, out)
	}
	if f.Choice != nil {
		v.validateChoice(msg, f.Name, f.Choice, seen, out)
	}
}

func (v *Validator) validateChoice(msg *descriptor.Message, fieldName string, choice *descriptor.ChoiceTable, seen map[*descriptor.Message]bool, out *[]error) {
	if choice.PrefixSize < 0 || choice.PrefixSize > 32 {
		addf(out, msg, fieldName, "choice table PrefixSize %d out of range [0,32]", choice.PrefixSize)
	}
	if len(choice.Alternatives) == 0 && choice.Default == nil {
		addf(out, msg, fieldName, "choice table has no alternatives and no default")
	}
	for i, alt := range choice.Alternatives {
		if alt.Type == nil {
			addf(out, msg, fieldName, "alternative %d (%s) has no Type", i, alt.TypeName)
			continue
		}
		if choice.DeclaredType != "" && !alt.Type.IsAssignableTo(choice.DeclaredType) {
			addf(out, msg, fieldName, "alternative %s is not assignable to declared type %s", alt.TypeName, choice.DeclaredType)
		}
		if choice.PrefixSize == 0 && alt.Condition == nil {
			addf(out, msg, fieldName, "alternative %s needs a Condition when the choice table has no prefix", alt.TypeName)
		}
		if choice.PrefixSize > 0 && alt.PrefixValue == nil {
			addf(out, msg, fieldName, "alternative %s needs a PrefixValue to encode against a %d-bit prefix", alt.TypeName, choice.PrefixSize)
		}
		v.validateMessage(alt.Type, seen, out)
	}
	if choice.Default != nil {
		v.validateMessage(choice.Default, seen, out)
	}
}

func addf(out *[]error, msg *descriptor.Message, fieldName, format string, args ...any) {
	*out = append(*out, errs.WithField(errs.Newf(errs.KindAnnotation, format, args...), msg.Name, fieldName))
}

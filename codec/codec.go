// Package codec implements the codec dispatch table and the per-kind
// leaf codecs from spec §4.3/§4.4: a registry mapping each descriptor
// kind to a (decode, encode) pair, looked up in O(1) by the message
// driver as it walks a field list.
package codec

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/checksum"
	"github.com/binframe/codec/convert"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
	"github.com/binframe/codec/log"
)

// Recurser lets Object/ArrayObject codecs recurse into the message
// driver without this package importing it, keeping the dispatch table
// and the driver's field-iteration orchestration decoupled per spec
// §2's component split (the driver "consults the dispatch table" —
// dependency points from driver to codec, not back).
type Recurser interface {
	DecodeMessage(msg *descriptor.Message, r *bitstream.Reader, ctx *eval.Context) (map[string]any, error)
	EncodeMessage(msg *descriptor.Message, w *bitstream.Writer, ctx *eval.Context, value map[string]any) error
}

// Env carries the collaborators a codec needs beyond the field
// descriptor itself.
type Env struct {
	Recurse   Recurser
	Checksums *checksum.Registry
	Logger    log.Logger
}

// Codec is the decode/encode pair for one descriptor Kind (spec §4.3).
type Codec interface {
	Decode(env *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error)
	Encode(env *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error
}

// Registry is the dispatch table: kind tag -> Codec. Immutable after
// construction, freely shared across threads (spec §3, §5).
type Registry struct {
	codecs map[descriptor.Kind]Codec
}

// NewRegistry returns a Registry with every built-in kind registered.
func NewRegistry() *Registry {
	r := &Registry{codecs: map[descriptor.Kind]Codec{}}
	r.Register(descriptor.KindByte, integerCodec{width: 1})
	r.Register(descriptor.KindShort, integerCodec{width: 2})
	r.Register(descriptor.KindInt, integerCodec{width: 4})
	r.Register(descriptor.KindLong, integerCodec{width: 8})
	r.Register(descriptor.KindBigInteger, bigIntegerCodec{})
	r.Register(descriptor.KindFloat, floatCodec{double: false})
	r.Register(descriptor.KindDouble, floatCodec{double: true})
	r.Register(descriptor.KindBigDecimal, bigDecimalCodec{})
	r.Register(descriptor.KindBits, bitsCodec{})
	r.Register(descriptor.KindBitSet, bitSetCodec{})
	r.Register(descriptor.KindStringFixed, stringFixedCodec{})
	r.Register(descriptor.KindStringTerminated, stringTerminatedCodec{})
	r.Register(descriptor.KindArrayPrimitive, arrayPrimitiveCodec{})
	r.Register(descriptor.KindArrayObject, arrayObjectCodec{})
	r.Register(descriptor.KindObject, objectCodec{})
	r.Register(descriptor.KindChecksum, checksumCodec{})
	return r
}

// Register adds or replaces the codec for kind.
func (r *Registry) Register(kind descriptor.Kind, c Codec) {
	r.codecs[kind] = c
}

// Lookup returns the codec registered for kind, or NoCodec (spec §4.3:
// "Missing entry ⇒ NoCodec").
func (r *Registry) Lookup(kind descriptor.Kind) (Codec, error) {
	c, ok := r.codecs[kind]
	if !ok {
		return nil, errs.Newf(errs.KindNoCodec, "no codec registered for kind %s", kind)
	}
	return c, nil
}

// HasCodec reports whether kind has a registered codec, used by the
// descriptor validator's load-time completeness check.
func (r *Registry) HasCodec(kind descriptor.Kind) bool {
	_, ok := r.codecs[kind]
	return ok
}

func applyConverterAndValidate(ctx *eval.Context, f *descriptor.Field, wire any) (any, error) {
	user, err := f.Converters.DecodeValue(ctx, wire)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	if err := convert.Validate(user, f.Validator); err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	return user, nil
}

func applyValidateAndConverter(ctx *eval.Context, f *descriptor.Field, user any) (any, error) {
	if err := convert.Validate(user, f.Validator); err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	wire, err := f.Converters.EncodeValue(ctx, user)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	return wire, nil
}

package codec

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
)

// bitsCodec handles Bits fields: a raw bit-string of a computed width,
// little-endian meaning the whole bit-string is reversed, not the byte
// order (spec §4.4 "Bits", §9 Open Question (iii)).
type bitsCodec struct{}

func (bitsCodec) Decode(_ *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	n, err := eval.EvaluateSize(f.BitSize, ctx)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	raw, err := r.GetBits(n)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	wire := raw
	if f.Endianness == bitstream.LittleEndian {
		wire = bitstream.ReverseBits(raw, n)
	}
	return applyConverterAndValidate(ctx, f, wire)
}

func (bitsCodec) Encode(_ *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	n, err := eval.EvaluateSize(f.BitSize, ctx)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	wire, err := applyValidateAndConverter(ctx, f, value)
	if err != nil {
		return err
	}
	v, err := asUint64(wire)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	if f.Endianness == bitstream.LittleEndian {
		v = bitstream.ReverseBits(v, n)
	}
	w.PutBits(v, n)
	return nil
}

func asUint64(v any) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case uint32:
		return uint64(t), nil
	case uint16:
		return uint64(t), nil
	case uint8:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case int:
		return uint64(t), nil
	default:
		return 0, errs.Newf(errs.KindEncode, "cannot encode %T as a bit value", v)
	}
}

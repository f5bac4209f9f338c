package codec

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
)

// bitSetCodec handles BitSet fields: a fixed-width bit string
// reinterpreted as the set of indices whose bit is 1 (spec §4.4
// "BitSet").
type bitSetCodec struct{}

func (bitSetCodec) Decode(_ *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	n, err := eval.EvaluateSize(f.BitSize, ctx)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	raw, err := r.GetBits(n)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	if f.Endianness == bitstream.LittleEndian {
		raw = bitstream.ReverseBits(raw, n)
	}
	set := make([]any, 0, n)
	for i := 0; i < n; i++ {
		if (raw>>i)&1 == 1 {
			set = append(set, int64(i))
		}
	}
	return applyConverterAndValidate(ctx, f, set)
}

func (bitSetCodec) Encode(_ *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	n, err := eval.EvaluateSize(f.BitSize, ctx)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	wire, err := applyValidateAndConverter(ctx, f, value)
	if err != nil {
		return err
	}
	set, ok := wire.([]any)
	if !ok {
		return errs.WithField(errs.Newf(errs.KindEncode, "BitSet requires a []any of set indices, got %T", wire), "", f.Name)
	}
	var raw uint64
	for _, idxAny := range set {
		idx, err := asInt64(idxAny)
		if err != nil {
			return errs.WithField(err, "", f.Name)
		}
		if idx < 0 || int(idx) >= n {
			return errs.WithField(errs.Newf(errs.KindEncode, "BitSet index %d out of range [0,%d)", idx, n), "", f.Name)
		}
		raw |= 1 << uint(idx)
	}
	if f.Endianness == bitstream.LittleEndian {
		raw = bitstream.ReverseBits(raw, n)
	}
	w.PutBits(raw, n)
	return nil
}

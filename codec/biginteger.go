package codec

import (
	"math/big"

	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
)

// bigIntegerCodec handles BigInteger fields: bit-size is itself an
// expression (spec §3 table), read MSB-first and byte-order adjusted.
type bigIntegerCodec struct{}

func (bigIntegerCodec) Decode(_ *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	n, err := eval.EvaluateSize(f.BitSize, ctx)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	wire, err := r.GetBigInteger(n, f.Endianness, f.Signed)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	return applyConverterAndValidate(ctx, f, wire)
}

func (bigIntegerCodec) Encode(_ *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	n, err := eval.EvaluateSize(f.BitSize, ctx)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	wire, err := applyValidateAndConverter(ctx, f, value)
	if err != nil {
		return err
	}
	bi, err := asBigInt(wire)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	if err := w.PutBigInteger(bi, n, f.Endianness, f.Signed); err != nil {
		return errs.WithField(err, "", f.Name)
	}
	return nil
}

func asBigInt(v any) (*big.Int, error) {
	switch t := v.(type) {
	case *big.Int:
		return t, nil
	case int64:
		return big.NewInt(t), nil
	case int:
		return big.NewInt(int64(t)), nil
	case uint64:
		return new(big.Int).SetUint64(t), nil
	default:
		return nil, errs.Newf(errs.KindEncode, "cannot encode %T as BigInteger", v)
	}
}

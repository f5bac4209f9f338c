package codec

import (
	"math/big"

	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
)

// bigDecimalCodec decodes an underlying Float or Double then lifts it
// to arbitrary precision with no rounding (spec §4.4 "BigDecimal").
type bigDecimalCodec struct{}

func (bigDecimalCodec) Decode(_ *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	var wire *big.Float
	switch f.BigDecimalUnderlying {
	case descriptor.KindFloat:
		v, err := r.GetFloat(f.Endianness)
		if err != nil {
			return nil, errs.WithField(err, "", f.Name)
		}
		wire = big.NewFloat(float64(v)).SetPrec(24)
	case descriptor.KindDouble:
		v, err := r.GetDouble(f.Endianness)
		if err != nil {
			return nil, errs.WithField(err, "", f.Name)
		}
		wire = big.NewFloat(v).SetPrec(53)
	default:
		return nil, errs.WithField(errs.New(errs.KindAnnotation, "BigDecimal underlying kind must be Float or Double"), "", f.Name)
	}
	return applyConverterAndValidate(ctx, f, wire)
}

func (bigDecimalCodec) Encode(_ *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	wire, err := applyValidateAndConverter(ctx, f, value)
	if err != nil {
		return err
	}
	bf, err := asBigFloat(wire)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	switch f.BigDecimalUnderlying {
	case descriptor.KindFloat:
		v, _ := bf.Float32()
		w.PutFloat(v, f.Endianness)
	case descriptor.KindDouble:
		v, _ := bf.Float64()
		w.PutDouble(v, f.Endianness)
	default:
		return errs.WithField(errs.New(errs.KindAnnotation, "BigDecimal underlying kind must be Float or Double"), "", f.Name)
	}
	return nil
}

func asBigFloat(v any) (*big.Float, error) {
	switch t := v.(type) {
	case *big.Float:
		return t, nil
	case float64:
		return big.NewFloat(t), nil
	case float32:
		return big.NewFloat(float64(t)), nil
	default:
		return nil, errs.Newf(errs.KindEncode, "cannot encode %T as BigDecimal", v)
	}
}

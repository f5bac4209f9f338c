package codec

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
)

// floatCodec handles Float/Double fields (spec §4.4).
type floatCodec struct {
	double bool
}

func (c floatCodec) Decode(_ *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	var wire any
	var err error
	if c.double {
		wire, err = r.GetDouble(f.Endianness)
	} else {
		wire, err = r.GetFloat(f.Endianness)
	}
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	return applyConverterAndValidate(ctx, f, wire)
}

func (c floatCodec) Encode(_ *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	wire, err := applyValidateAndConverter(ctx, f, value)
	if err != nil {
		return err
	}
	fv, err := asFloat64(wire)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	if c.double {
		w.PutDouble(fv, f.Endianness)
	} else {
		w.PutFloat(float32(fv), f.Endianness)
	}
	return nil
}

func asFloat64(v any) (float64, error) {
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case int:
		return float64(t), nil
	default:
		return 0, errs.Newf(errs.KindEncode, "cannot encode %T as float", v)
	}
}

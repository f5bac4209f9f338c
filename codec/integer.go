package codec

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
)

// integerCodec handles Byte/Short/Int/Long (spec §4.4 "Integer codecs":
// "Decode via getN(endian), apply converter, validate. Encode inverts:
// validate, convert, putN(endian).").
type integerCodec struct {
	width int // 1, 2, 4, or 8 bytes
}

func (c integerCodec) Decode(_ *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	var wire any
	var err error
	switch c.width {
	case 1:
		wire, err = r.GetInt8()
	case 2:
		wire, err = r.GetShort(f.Endianness)
	case 4:
		wire, err = r.GetInt(f.Endianness)
	case 8:
		wire, err = r.GetLong(f.Endianness)
	}
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	return applyConverterAndValidate(ctx, f, wire)
}

func (c integerCodec) Encode(_ *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	wire, err := applyValidateAndConverter(ctx, f, value)
	if err != nil {
		return err
	}
	switch c.width {
	case 1:
		v, err := asInt8(wire)
		if err != nil {
			return errs.WithField(err, "", f.Name)
		}
		w.PutInt8(v)
	case 2:
		v, err := asInt16(wire)
		if err != nil {
			return errs.WithField(err, "", f.Name)
		}
		w.PutShort(v, f.Endianness)
	case 4:
		v, err := asInt32(wire)
		if err != nil {
			return errs.WithField(err, "", f.Name)
		}
		w.PutInt(v, f.Endianness)
	case 8:
		v, err := asInt64(wire)
		if err != nil {
			return errs.WithField(err, "", f.Name)
		}
		w.PutLong(v, f.Endianness)
	}
	return nil
}

func asInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int32:
		return int64(t), nil
	case int16:
		return int64(t), nil
	case int8:
		return int64(t), nil
	case int:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case uint16:
		return int64(t), nil
	case uint8:
		return int64(t), nil
	case float64:
		return int64(t), nil
	default:
		return 0, errs.Newf(errs.KindEncode, "cannot encode %T as integer", v)
	}
}

func asInt8(v any) (int8, error) {
	i, err := asInt64(v)
	return int8(i), err
}

func asInt16(v any) (int16, error) {
	i, err := asInt64(v)
	return int16(i), err
}

func asInt32(v any) (int32, error) {
	i, err := asInt64(v)
	return int32(i), err
}

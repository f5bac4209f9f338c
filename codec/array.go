package codec

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
)

// arrayPrimitiveCodec handles ArrayPrimitive: size = evalSize; read
// size elements of the declared primitive kind, converting and
// validating each element individually (spec §4.4 "ArrayPrimitive").
type arrayPrimitiveCodec struct{}

func readPrimitive(kind descriptor.Kind, endian bitstream.Endianness, r *bitstream.Reader) (any, error) {
	switch kind {
	case descriptor.KindByte:
		return r.GetInt8()
	case descriptor.KindShort:
		return r.GetShort(endian)
	case descriptor.KindInt:
		return r.GetInt(endian)
	case descriptor.KindLong:
		return r.GetLong(endian)
	case descriptor.KindFloat:
		return r.GetFloat(endian)
	case descriptor.KindDouble:
		return r.GetDouble(endian)
	default:
		return nil, errs.Newf(errs.KindAnnotation, "unsupported ArrayPrimitive element kind %s", kind)
	}
}

func writePrimitive(kind descriptor.Kind, endian bitstream.Endianness, w *bitstream.Writer, v any) error {
	switch kind {
	case descriptor.KindByte:
		i, err := asInt8(v)
		if err != nil {
			return err
		}
		w.PutInt8(i)
	case descriptor.KindShort:
		i, err := asInt16(v)
		if err != nil {
			return err
		}
		w.PutShort(i, endian)
	case descriptor.KindInt:
		i, err := asInt32(v)
		if err != nil {
			return err
		}
		w.PutInt(i, endian)
	case descriptor.KindLong:
		i, err := asInt64(v)
		if err != nil {
			return err
		}
		w.PutLong(i, endian)
	case descriptor.KindFloat:
		f, err := asFloat64(v)
		if err != nil {
			return err
		}
		w.PutFloat(float32(f), endian)
	case descriptor.KindDouble:
		f, err := asFloat64(v)
		if err != nil {
			return err
		}
		w.PutDouble(f, endian)
	default:
		return errs.Newf(errs.KindAnnotation, "unsupported ArrayPrimitive element kind %s", kind)
	}
	return nil
}

func (arrayPrimitiveCodec) Decode(_ *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	n, err := eval.EvaluateSize(f.Size, ctx)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	out := make([]any, 0, n)
	for i := 0; i < n; i++ {
		wire, err := readPrimitive(f.ElementKind, f.Endianness, r)
		if err != nil {
			return nil, errs.WithField(err, "", f.Name)
		}
		user, err := applyConverterAndValidate(ctx, f, wire)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, nil
}

func (arrayPrimitiveCodec) Encode(_ *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	n, err := eval.EvaluateSize(f.Size, ctx)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	arr, ok := value.([]any)
	if !ok {
		return errs.WithField(errs.Newf(errs.KindEncode, "ArrayPrimitive requires a []any, got %T", value), "", f.Name)
	}
	if len(arr) != n {
		return errs.WithField(errs.Newf(errs.KindSizeMismatch, "declared size %d != supplied %d", n, len(arr)), "", f.Name)
	}
	for _, user := range arr {
		wire, err := applyValidateAndConverter(ctx, f, user)
		if err != nil {
			return err
		}
		if err := writePrimitive(f.ElementKind, f.Endianness, w, wire); err != nil {
			return errs.WithField(err, "", f.Name)
		}
	}
	return nil
}

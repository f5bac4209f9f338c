package codec

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
)

// stringFixedCodec handles StringFixed: exactly Size bytes in the
// declared charset (spec §4.4). Encode truncates to Size code units
// (not code points) if the user value is longer, per spec §9 Open
// Question (ii).
type stringFixedCodec struct{}

func (stringFixedCodec) Decode(_ *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	n, err := eval.EvaluateSize(f.Size, ctx)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	wire, err := r.GetText(n, f.Charset)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	return applyConverterAndValidate(ctx, f, wire)
}

func (stringFixedCodec) Encode(_ *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	n, err := eval.EvaluateSize(f.Size, ctx)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	wire, err := applyValidateAndConverter(ctx, f, value)
	if err != nil {
		return err
	}
	s, ok := wire.(string)
	if !ok {
		return errs.WithField(errs.Newf(errs.KindEncode, "StringFixed requires a string, got %T", wire), "", f.Name)
	}
	// Code-unit truncation: for UTF-8/ASCII a code unit is a byte, so
	// truncate/pad against raw bytes rather than runes once encoded.
	raw, err := encodeCharsetBytes(s, f.Charset)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	if len(raw) > n {
		raw = raw[:n]
	} else if len(raw) < n {
		padded := make([]byte, n)
		copy(padded, raw)
		raw = padded
	}
	for _, b := range raw {
		w.PutByte(b)
	}
	return nil
}

func encodeCharsetBytes(s string, charset string) ([]byte, error) {
	w := bitstream.NewWriter()
	if err := w.PutText(s, charset); err != nil {
		return nil, err
	}
	return w.Flush(), nil
}

// stringTerminatedCodec handles StringTerminated: bytes up to a
// terminator byte, optionally consumed on read, always written on
// encode (spec §4.4, §6).
type stringTerminatedCodec struct{}

func (stringTerminatedCodec) Decode(_ *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	wire, err := r.GetTextUntil(f.Terminator, f.ConsumeTerminator)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	return applyConverterAndValidate(ctx, f, wire)
}

func (stringTerminatedCodec) Encode(_ *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	wire, err := applyValidateAndConverter(ctx, f, value)
	if err != nil {
		return err
	}
	s, ok := wire.(string)
	if !ok {
		return errs.WithField(errs.Newf(errs.KindEncode, "StringTerminated requires a string, got %T", wire), "", f.Name)
	}
	if err := w.PutTextTerminated(s, f.Charset, f.Terminator); err != nil {
		return errs.WithField(err, "", f.Name)
	}
	return nil
}

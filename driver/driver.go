// Package driver implements the message driver from spec §4.6: it
// walks a message descriptor's field list, applying conditions, skips,
// choice resolution, checksum verification/back-patching, and
// evaluated-field population, consulting the codec dispatch table for
// each byte-consuming field.
package driver

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/checksum"
	"github.com/binframe/codec/codec"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
	"github.com/binframe/codec/log"
)

// Driver is the single-threaded-per-invocation engine entry point.
// Driver values are immutable after construction and safe to share
// across goroutines; each Decode/Encode call owns its own Reader/Writer
// and Context (spec §5).
type Driver struct {
	registry  *codec.Registry
	checksums *checksum.Registry
	logger    log.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithRegistry overrides the default codec dispatch table.
func WithRegistry(r *codec.Registry) Option { return func(d *Driver) { d.registry = r } }

// WithChecksums overrides the default checksum algorithm registry.
func WithChecksums(r *checksum.Registry) Option { return func(d *Driver) { d.checksums = r } }

// WithLogger injects a Logger; default is log.Nop{} (spec §7: the
// NoCodec-during-choice-resolution tolerance is "logged").
func WithLogger(l log.Logger) Option { return func(d *Driver) { d.logger = l } }

// New builds a Driver with sensible defaults, overridable via Option.
func New(opts ...Option) *Driver {
	d := &Driver{
		registry:  codec.NewRegistry(),
		checksums: checksum.NewRegistry(),
		logger:    log.Nop{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) env() *codec.Env {
	return &codec.Env{Recurse: d, Checksums: d.checksums, Logger: d.logger}
}

// Decode decodes raw against msg's descriptor list, producing a
// map[string]any object graph (spec §4.6).
func (d *Driver) Decode(msg *descriptor.Message, raw []byte) (map[string]any, error) {
	r := bitstream.NewReader(raw)
	ctx := eval.NewContext(map[string]any{})
	return d.DecodeMessage(msg, r, ctx)
}

// Encode encodes value against msg's descriptor list, producing the
// exact bytes a matching Decode would consume (spec §4.6, §8 property 1).
func (d *Driver) Encode(msg *descriptor.Message, value map[string]any) ([]byte, error) {
	w := bitstream.NewWriter()
	ctx := eval.NewContext(value)
	if err := d.EncodeMessage(msg, w, ctx, value); err != nil {
		return nil, err
	}
	return w.Flush(), nil
}

// DecodeMessage implements codec.Recurser, letting Object/ArrayObject
// codecs recurse back into the driver (spec §4.6 step labelled
// "parentRoot?" in the procedure signature).
func (d *Driver) DecodeMessage(msg *descriptor.Message, r *bitstream.Reader, ctx *eval.Context) (map[string]any, error) {
	cur := map[string]any{}
	nestedCtx := ctx.PushSelf(cur)

	startBit := r.Position()

	if msg.Header != nil && len(msg.Header.Start) > 0 {
		if err := expectBytes(r, msg.Header.Start); err != nil {
			return nil, errs.WithField(err, msg.Name, "<header.start>")
		}
	}

	var checksumField *descriptor.Field

	for _, f := range msg.Fields {
		if err := d.applySkips(f.Skips, nestedCtx, r, nil); err != nil {
			return nil, errs.WithField(err, msg.Name, f.Name)
		}

		include, err := evalConditionDefaultTrue(f.Condition, nestedCtx)
		if err != nil {
			return nil, errs.WithField(err, msg.Name, f.Name)
		}
		if !include {
			continue
		}

		c, err := d.registry.Lookup(f.Kind)
		if err != nil {
			return nil, errs.WithField(err, msg.Name, f.Name)
		}

		value, err := c.Decode(d.env(), f, nestedCtx, r)
		if err != nil {
			return nil, errs.WithField(err, msg.Name, f.Name)
		}
		cur[f.Name] = value

		if f.Kind == descriptor.KindChecksum {
			checksumField = f
		}
	}

	for _, ef := range msg.Evaluated {
		include, err := evalConditionDefaultTrue(ef.Condition, nestedCtx)
		if err != nil {
			return nil, errs.WithField(err, msg.Name, ef.Name)
		}
		if !include {
			continue
		}
		val, err := ef.ValueExpr.Eval(nestedCtx)
		if err != nil {
			return nil, errs.WithField(err, msg.Name, ef.Name)
		}
		cur[ef.Name] = val
	}

	if msg.Header != nil && len(msg.Header.End) > 0 {
		if err := expectBytes(r, msg.Header.End); err != nil {
			return nil, errs.WithField(err, msg.Name, "<header.end>")
		}
	}

	if checksumField != nil {
		if err := d.verifyChecksum(msg, checksumField, r, startBit, cur); err != nil {
			return nil, err
		}
	}

	return cur, nil
}

// EncodeMessage implements codec.Recurser's encode half, mirroring
// DecodeMessage's field order (spec §4.6 "encode mirrors").
func (d *Driver) EncodeMessage(msg *descriptor.Message, w *bitstream.Writer, ctx *eval.Context, value map[string]any) error {
	cur := value
	nestedCtx := ctx.PushSelf(cur)

	startBit := w.Position()

	if msg.Header != nil && len(msg.Header.Start) > 0 {
		for _, b := range msg.Header.Start {
			w.PutByte(b)
		}
	}

	var checksumField *descriptor.Field
	checksumBitPos := -1

	for _, f := range msg.Fields {
		if err := d.applySkips(f.Skips, nestedCtx, nil, w); err != nil {
			return errs.WithField(err, msg.Name, f.Name)
		}

		include, err := evalConditionDefaultTrue(f.Condition, nestedCtx)
		if err != nil {
			return errs.WithField(err, msg.Name, f.Name)
		}
		if !include {
			continue
		}

		c, err := d.registry.Lookup(f.Kind)
		if err != nil {
			return errs.WithField(err, msg.Name, f.Name)
		}

		if f.Kind == descriptor.KindChecksum {
			checksumField = f
			checksumBitPos = w.Position()
		}

		if err := c.Encode(d.env(), f, nestedCtx, w, cur[f.Name]); err != nil {
			return errs.WithField(err, msg.Name, f.Name)
		}
	}

	if msg.Header != nil && len(msg.Header.End) > 0 {
		for _, b := range msg.Header.End {
			w.PutByte(b)
		}
	}

	if checksumField != nil {
		if err := d.backpatchChecksum(msg, checksumField, w, startBit, checksumBitPos); err != nil {
			return err
		}
	}

	return nil
}

func evalConditionDefaultTrue(e *eval.Expr, ctx *eval.Context) (bool, error) {
	if e == nil {
		return true, nil
	}
	return e.Bool(ctx)
}

func expectBytes(r *bitstream.Reader, want []byte) error {
	for _, w := range want {
		got, err := r.GetByte()
		if err != nil {
			return err
		}
		if got != w {
			return errs.Newf(errs.KindBadTerminator, "expected 0x%02X, got 0x%02X", w, got)
		}
	}
	return nil
}

func (d *Driver) applySkips(skips []descriptor.Skip, ctx *eval.Context, r *bitstream.Reader, w *bitstream.Writer) error {
	for _, skip := range skips {
		apply, err := evalConditionDefaultTrue(skip.Condition, ctx)
		if err != nil {
			return err
		}
		if !apply {
			continue
		}
		if r != nil {
			if skip.Terminator != nil {
				if err := r.SkipUntil(*skip.Terminator, skip.ConsumeTerminator); err != nil {
					return err
				}
			} else {
				n, err := eval.EvaluateSize(skip.SizeExpr, ctx)
				if err != nil {
					return err
				}
				if err := r.Skip(n); err != nil {
					return err
				}
			}
		}
		if w != nil {
			if skip.Terminator != nil {
				if skip.ConsumeTerminator {
					w.PutByte(*skip.Terminator)
				}
			} else {
				n, err := eval.EvaluateSize(skip.SizeExpr, ctx)
				if err != nil {
					return err
				}
				w.PutZeroBits(n)
			}
		}
	}
	return nil
}

func (d *Driver) verifyChecksum(msg *descriptor.Message, field *descriptor.Field, r *bitstream.Reader, startBit int, cur map[string]any) error {
	spec := field.Checksum
	alg, ok := d.checksums.Lookup(spec.Algorithm)
	if !ok {
		return errs.WithField(errs.Newf(errs.KindNoCodec, "no checksum algorithm registered for %q", spec.Algorithm), msg.Name, field.Name)
	}
	start := startBit/8 + spec.SkipStart
	end := r.Position()/8 - spec.SkipEnd
	computed, err := alg(r.Bytes(), start, end, spec.Seed)
	if err != nil {
		return errs.WithField(err, msg.Name, field.Name)
	}
	decoded, err := asUint64Local(cur[field.Name])
	if err != nil {
		return errs.WithField(err, msg.Name, field.Name)
	}
	if computed != decoded {
		return errs.WithField(errs.Newf(errs.KindChecksumMismatch, "checksum mismatch: computed 0x%X, decoded 0x%X", computed, decoded), msg.Name, field.Name)
	}
	return nil
}

func (d *Driver) backpatchChecksum(msg *descriptor.Message, field *descriptor.Field, w *bitstream.Writer, startBit, checksumBitPos int) error {
	spec := field.Checksum
	alg, ok := d.checksums.Lookup(spec.Algorithm)
	if !ok {
		return errs.WithField(errs.Newf(errs.KindNoCodec, "no checksum algorithm registered for %q", spec.Algorithm), msg.Name, field.Name)
	}
	start := startBit/8 + spec.SkipStart
	end := w.Position()/8 - spec.SkipEnd
	val, err := alg(w.Bytes(), start, end, spec.Seed)
	if err != nil {
		return errs.WithField(err, msg.Name, field.Name)
	}
	widthBytes := spec.WidthBits / 8
	bytePos := checksumBitPos / 8
	for i := 0; i < widthBytes; i++ {
		b := byte(val >> uint(8*(widthBytes-1-i)))
		if err := w.PatchByte(bytePos+i, b); err != nil {
			return errs.WithField(err, msg.Name, field.Name)
		}
	}
	return nil
}

func asUint64Local(v any) (uint64, error) {
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int64:
		return uint64(t), nil
	default:
		return 0, errs.Newf(errs.KindDecode, "checksum field holds non-integer value %T", v)
	}
}

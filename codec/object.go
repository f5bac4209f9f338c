package codec

import (
	"github.com/binframe/codec/bitstream"
	"github.com/binframe/codec/descriptor"
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
)

// TypeKey is the reserved key used inside a decoded object's
// map[string]any representation to record which concrete message type
// it was decoded as, so encode-side choice resolution can determine
// "the runtime type of the value" per spec §4.5 without a real
// language-level type system to reflect on.
const TypeKey = "__type"

// objectCodec handles Object: a single recursion into the driver for
// either a fixed nested type or the chosen choice-table alternative
// (spec §4.4 "Object", §4.5).
type objectCodec struct{}

func (objectCodec) Decode(env *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	nested, err := decodeNested(env, f.ElementType, f.Choice, ctx, r)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	return applyConverterAndValidate(ctx, f, nested)
}

func (objectCodec) Encode(env *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	wire, err := applyValidateAndConverter(ctx, f, value)
	if err != nil {
		return err
	}
	nested, ok := wire.(map[string]any)
	if !ok {
		return errs.WithField(errs.Newf(errs.KindEncode, "Object requires a map[string]any, got %T", wire), "", f.Name)
	}
	if err := encodeNested(env, f.ElementType, f.Choice, ctx, w, nested); err != nil {
		return errs.WithField(err, "", f.Name)
	}
	return nil
}

// arrayObjectCodec handles ArrayObject: a length-evaluated array whose
// elements each recurse into the driver for a fixed element type or a
// choice-table alternative (spec §4.4 "ArrayObject").
//
// Per spec §4.7/§4.6 failure semantics, a NoCodec failure while
// resolving a choice for one element is tolerated: it is logged and the
// element is left nil, while every other error propagates and fails the
// whole decode.
type arrayObjectCodec struct{}

func (arrayObjectCodec) Decode(env *Env, f *descriptor.Field, ctx *eval.Context, r *bitstream.Reader) (any, error) {
	n, err := eval.EvaluateSize(f.Size, ctx)
	if err != nil {
		return nil, errs.WithField(err, "", f.Name)
	}
	out := make([]any, n)
	ctx.SetArrayIteration(f.Name, out, 0)
	for i := 0; i < n; i++ {
		ctx.SetArrayIteration(f.Name, out, i)
		elemStart := r.Position() / 8
		nested, err := decodeNested(env, f.ElementType, f.Choice, ctx, r)
		if err != nil {
			if ce, ok := err.(*errs.CodecError); ok && ce.Kind == errs.KindNoCodec {
				if env.Logger != nil {
					env.Logger.Warnf("tolerated NoCodec for %s[%d]: %v", f.Name, i, err)
				}
				out[i] = nil
				continue
			}
			return nil, errs.WithField(err, "", f.Name)
		}
		out[i] = nested
		if typeName, ok := nested[TypeKey].(string); ok {
			ctx.RecordTypeOccurrence(f.Name, typeName, i)
			ctx.TrackPosition(f.Name+"_"+typeName, elemStart)
		}
	}
	return applyConverterAndValidate(ctx, f, out)
}

func (arrayObjectCodec) Encode(env *Env, f *descriptor.Field, ctx *eval.Context, w *bitstream.Writer, value any) error {
	n, err := eval.EvaluateSize(f.Size, ctx)
	if err != nil {
		return errs.WithField(err, "", f.Name)
	}
	wire, err := applyValidateAndConverter(ctx, f, value)
	if err != nil {
		return err
	}
	arr, ok := wire.([]any)
	if !ok {
		return errs.WithField(errs.Newf(errs.KindEncode, "ArrayObject requires a []any, got %T", wire), "", f.Name)
	}
	if len(arr) != n {
		return errs.WithField(errs.Newf(errs.KindSizeMismatch, "declared size %d != supplied %d", n, len(arr)), "", f.Name)
	}
	ctx.SetArrayIteration(f.Name, arr, 0)
	for i, elem := range arr {
		ctx.SetArrayIteration(f.Name, arr, i)
		nested, ok := elem.(map[string]any)
		if !ok {
			return errs.WithField(errs.Newf(errs.KindEncode, "ArrayObject element %d is not a map[string]any, got %T", i, elem), "", f.Name)
		}
		elemStart := w.Position() / 8
		if err := encodeNested(env, f.ElementType, f.Choice, ctx, w, nested); err != nil {
			return errs.WithField(err, "", f.Name)
		}
		if typeName, ok := nested[TypeKey].(string); ok {
			ctx.RecordTypeOccurrence(f.Name, typeName, i)
			ctx.TrackPosition(f.Name+"_"+typeName, elemStart)
		}
	}
	return nil
}

// decodeNested resolves (if needed) a choice table, then recurses into
// the driver for the selected or fixed element type.
func decodeNested(env *Env, elementType *descriptor.Message, choice *descriptor.ChoiceTable, ctx *eval.Context, r *bitstream.Reader) (map[string]any, error) {
	target := elementType
	if choice != nil {
		selected, nestedCtx, err := resolveChoiceForDecode(choice, ctx, r)
		if err != nil {
			return nil, err
		}
		target = selected
		ctx = nestedCtx
	}
	if target == nil {
		return nil, errs.New(errs.KindNoCodec, "no target type for Object/ArrayObject field")
	}
	obj, err := env.Recurse.DecodeMessage(target, r, ctx)
	if err != nil {
		return nil, err
	}
	obj[TypeKey] = target.Name
	return obj, nil
}

func encodeNested(env *Env, elementType *descriptor.Message, choice *descriptor.ChoiceTable, ctx *eval.Context, w *bitstream.Writer, value map[string]any) error {
	target := elementType
	if choice != nil {
		selected, err := resolveChoiceForEncode(choice, value)
		if err != nil {
			return err
		}
		target = selected.Type
		if choice.PrefixSize > 0 {
			if selected.PrefixValue == nil {
				return errs.Newf(errs.KindEncode, "alternative %s has no PrefixValue to encode", selected.TypeName)
			}
			w.PutBits(*selected.PrefixValue, choice.PrefixSize)
		}
	}
	if target == nil {
		return errs.New(errs.KindNoCodec, "no target type for Object/ArrayObject field")
	}
	return env.Recurse.EncodeMessage(target, w, ctx, value)
}

// resolveChoiceForDecode implements spec §4.5's decode-side selection.
func resolveChoiceForDecode(choice *descriptor.ChoiceTable, ctx *eval.Context, r *bitstream.Reader) (*descriptor.Message, *eval.Context, error) {
	nestedCtx := ctx
	if choice.PrefixSize > 0 {
		prefix, err := r.GetBits(choice.PrefixSize)
		if err != nil {
			return nil, nil, err
		}
		nestedCtx = ctx.WithPrefix(prefix)
	}
	for _, alt := range choice.Alternatives {
		ok, err := alt.Condition.Bool(nestedCtx)
		if err != nil {
			return nil, nil, errs.Wrap(errs.KindDecode, err)
		}
		if ok {
			return alt.Type, nestedCtx, nil
		}
	}
	if choice.Default != nil {
		return choice.Default, nestedCtx, nil
	}
	return nil, nil, errs.New(errs.KindNoMatchingAlternative, "no choice alternative matched and no default is set")
}

// resolveChoiceForEncode implements spec §4.5's encode-side selection:
// "determine the alternative whose declared type equals the runtime
// type of the value (not by condition)".
func resolveChoiceForEncode(choice *descriptor.ChoiceTable, value map[string]any) (*descriptor.Alternative, error) {
	typeName, _ := value[TypeKey].(string)
	for i := range choice.Alternatives {
		if choice.Alternatives[i].TypeName == typeName {
			return &choice.Alternatives[i], nil
		}
	}
	if choice.Default != nil && (typeName == "" || typeName == choice.Default.Name) {
		return &descriptor.Alternative{TypeName: choice.Default.Name, Type: choice.Default}, nil
	}
	return nil, errs.Newf(errs.KindNoMatchingAlternative, "no choice alternative matches runtime type %q", typeName)
}

// Package convert implements the converter pipeline from spec §4.2: a
// converter set picks the first alternative whose condition is true (or
// the default), translating a decoded wire value to the field's
// user-facing value and back.
package convert

import (
	"github.com/binframe/codec/errs"
	"github.com/binframe/codec/eval"
)

// Converter is a pair of pure functions mapping wire representation to
// user representation and back (spec §6 "Converter interface").
type Converter struct {
	Name   string
	Decode func(wire any) (user any, err error)
	Encode func(user any) (wire any, err error)
}

// Identity returns a Converter that passes values through unchanged,
// the implicit default when a field carries no converter set.
func Identity() *Converter {
	return &Converter{
		Name:   "identity",
		Decode: func(w any) (any, error) { return w, nil },
		Encode: func(u any) (any, error) { return u, nil },
	}
}

// Alternative pairs a condition with the converter to use when it holds.
type Alternative struct {
	Condition *eval.Expr
	Converter *Converter
}

// Set is an ordered list of conditional converters plus a default
// (spec §3 "Converter set"). A nil Default, like a nil Set, falls back
// to Identity.
type Set struct {
	Alternatives []Alternative
	Default      *Converter
}

// NewSet builds a Set whose only member is the given default converter.
func NewSet(def *Converter) *Set {
	return &Set{Default: def}
}

// Choose evaluates alternatives in order against ctx, returning the
// first whose condition is true, else Default (spec §4.2 chooseConverter).
func (s *Set) Choose(ctx *eval.Context) (*Converter, error) {
	if s == nil {
		return Identity(), nil
	}
	for _, alt := range s.Alternatives {
		ok, err := alt.Condition.Bool(ctx)
		if err != nil {
			return nil, errs.Wrap(errs.KindConverter, err)
		}
		if ok {
			return alt.Converter, nil
		}
	}
	if s.Default != nil {
		return s.Default, nil
	}
	return Identity(), nil
}

// DecodeValue chooses a converter and applies its Decode function,
// wrapping any failure as a ConverterError (spec §4.2: "any exception becomes a ConverterError tagged with
// class and field name" — field name is attached by the caller via
// errs.WithField).
func (s *Set) DecodeValue(ctx *eval.Context, wire any) (any, error) {
	conv, err := s.Choose(ctx)
	if err != nil {
		return nil, err
	}
	user, err := conv.Decode(wire)
	if err != nil {
		return nil, errs.Wrap(errs.KindConverter, err)
	}
	return user, nil
}

// EncodeValue chooses a converter and applies its Encode function.
func (s *Set) EncodeValue(ctx *eval.Context, user any) (any, error) {
	conv, err := s.Choose(ctx)
	if err != nil {
		return nil, err
	}
	wire, err := conv.Encode(user)
	if err != nil {
		return nil, errs.Wrap(errs.KindConverter, err)
	}
	return wire, nil
}

// Validate applies an optional predicate to value, raising
// ValidationError on rejection (spec §4.2 validate(value)).
func Validate(value any, validator func(any) error) error {
	if validator == nil {
		return nil
	}
	if err := validator(value); err != nil {
		return errs.Wrap(errs.KindValidation, err)
	}
	return nil
}

// Package errs defines the engine's error taxonomy.
//
// Every error the codec engine raises is a *CodecError wrapping one of
// the sentinel Kind values below, optionally annotated with the
// descriptor's class/field name per spec §7 ("every error is fatal to
// its decode/encode call and must be annotated with (className,
// fieldName) when raised inside a field").
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies one of the conceptual error categories from spec §7.
type Kind int

const (
	_ Kind = iota
	KindAnnotation
	KindNoCodec
	KindInsufficientBytes
	KindDecode
	KindConverter
	KindValidation
	KindNoMatchingAlternative
	KindBadTerminator
	KindChecksumMismatch
	KindSizeMismatch
	KindEncode
)

func (k Kind) String() string {
	switch k {
	case KindAnnotation:
		return "AnnotationError"
	case KindNoCodec:
		return "NoCodec"
	case KindInsufficientBytes:
		return "InsufficientBytes"
	case KindDecode:
		return "DecodeError"
	case KindConverter:
		return "ConverterError"
	case KindValidation:
		return "ValidationError"
	case KindNoMatchingAlternative:
		return "NoMatchingAlternative"
	case KindBadTerminator:
		return "BadTerminator"
	case KindChecksumMismatch:
		return "ChecksumMismatch"
	case KindSizeMismatch:
		return "SizeMismatch"
	case KindEncode:
		return "EncodeError"
	default:
		return "UnknownError"
	}
}

// Sentinel errors usable with errors.Is, one per Kind.
var (
	ErrAnnotation           = &CodecError{Kind: KindAnnotation}
	ErrNoCodec              = &CodecError{Kind: KindNoCodec}
	ErrInsufficientBytes    = &CodecError{Kind: KindInsufficientBytes}
	ErrDecode               = &CodecError{Kind: KindDecode}
	ErrConverter            = &CodecError{Kind: KindConverter}
	ErrValidation           = &CodecError{Kind: KindValidation}
	ErrNoMatchingAlternative = &CodecError{Kind: KindNoMatchingAlternative}
	ErrBadTerminator        = &CodecError{Kind: KindBadTerminator}
	ErrChecksumMismatch     = &CodecError{Kind: KindChecksumMismatch}
	ErrSizeMismatch         = &CodecError{Kind: KindSizeMismatch}
	ErrEncode               = &CodecError{Kind: KindEncode}
)

// CodecError is the single error type raised by every engine package.
type CodecError struct {
	Kind      Kind
	ClassName string
	FieldName string
	Cause     error
}

func (e *CodecError) Error() string {
	loc := ""
	if e.ClassName != "" || e.FieldName != "" {
		loc = fmt.Sprintf(" (%s.%s)", e.ClassName, e.FieldName)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s%s: %v", e.Kind, loc, e.Cause)
	}
	return fmt.Sprintf("%s%s", e.Kind, loc)
}

func (e *CodecError) Unwrap() error { return e.Cause }

// Is reports whether target is a *CodecError with the same Kind,
// regardless of ClassName/FieldName/Cause — this lets callers write
// errors.Is(err, errs.ErrChecksumMismatch).
func (e *CodecError) Is(target error) bool {
	t, ok := target.(*CodecError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a bare CodecError of the given kind.
func New(kind Kind, msg string) *CodecError {
	return &CodecError{Kind: kind, Cause: errors.New(msg)}
}

// Newf builds a bare CodecError of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *CodecError {
	return &CodecError{Kind: kind, Cause: fmt.Errorf(format, args...)}
}

// Wrap annotates an existing error with a Kind, becoming the Cause.
func Wrap(kind Kind, cause error) *CodecError {
	return &CodecError{Kind: kind, Cause: cause}
}

// WithField returns a copy of e annotated with the given class/field
// names, per the spec §4.6 field-level state machine requirement that
// any failing transition be tagged (className, fieldName).
func WithField(err error, className, fieldName string) error {
	var ce *CodecError
	if errors.As(err, &ce) {
		annotated := *ce
		if annotated.ClassName == "" {
			annotated.ClassName = className
		}
		if annotated.FieldName == "" {
			annotated.FieldName = fieldName
		}
		return &annotated
	}
	return &CodecError{Kind: KindDecode, ClassName: className, FieldName: fieldName, Cause: err}
}

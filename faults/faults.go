// Package faults defines the structured fatal-error type shared by every
// core component (bitvec, alu, shifter, mdu, fpu, regfile, memory, decoder,
// datapath, cpu). These are invariant violations, not expected runtime
// outcomes — callers are not expected to recover, only to report.
package faults

import "fmt"

// Kind categorizes a fatal invariant violation.
type Kind int

const (
	KindWidthMismatch Kind = iota
	KindOutOfRange
	KindUnaligned
	KindMalformedInput
	KindUnsupported
)

func (k Kind) String() string {
	switch k {
	case KindWidthMismatch:
		return "width mismatch"
	case KindOutOfRange:
		return "out of range"
	case KindUnaligned:
		return "unaligned access"
	case KindMalformedInput:
		return "malformed input"
	case KindUnsupported:
		return "unsupported"
	default:
		return "unknown fault"
	}
}

// Fault is a fatal invariant violation raised by a core component. It names
// the offending component and the bad input, following the same shape as
// the teacher's parser.Error / encoder.EncodingError types.
type Fault struct {
	Component string
	Kind      Kind
	Message   string
	Wrapped   error
}

func (f *Fault) Error() string {
	if f.Wrapped != nil {
		return fmt.Sprintf("%s: %s: %s: %v", f.Component, f.Kind, f.Message, f.Wrapped)
	}
	return fmt.Sprintf("%s: %s: %s", f.Component, f.Kind, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Wrapped
}

// New constructs a Fault for the given component.
func New(component string, kind Kind, format string, args ...any) *Fault {
	return &Fault{Component: component, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs a Fault that carries an underlying error.
func Wrap(component string, kind Kind, err error, format string, args ...any) *Fault {
	return &Fault{Component: component, Kind: kind, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// IsKind reports whether err is a *Fault of the given kind.
func IsKind(err error, kind Kind) bool {
	var f *Fault
	for err != nil {
		if ff, ok := err.(*Fault); ok {
			f = ff
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return f != nil && f.Kind == kind
}

package pipeline

import (
	stderrors "errors"

	"github.com/cockroachdb/errors"
)

// Kind classifies a pipeline failure.
type Kind int

// Failure kinds. Every kind is fatal to the invocation.
const (
	KindUnknown Kind = iota
	KindInvalidInputExtension
	KindConfigValidation
	KindCompiler
	KindTransform
	KindOptimization
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInputExtension:
		return "invalid input extension"
	case KindConfigValidation:
		return "config validation"
	case KindCompiler:
		return "compiler"
	case KindTransform:
		return "transform"
	case KindOptimization:
		return "optimization"
	case KindWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is checks against a *Error.
var (
	ErrInvalidInputExtension = errors.New("invalid input extension")
	ErrConfigValidation      = errors.New("config validation failed")
	ErrCompiler              = errors.New("compiler failed")
	ErrTransform             = errors.New("style transform failed")
	ErrOptimization          = errors.New("optimization failed")
	ErrWrite                 = errors.New("write failed")
)

var sentinels = map[Kind]error{
	KindInvalidInputExtension: ErrInvalidInputExtension,
	KindConfigValidation:      ErrConfigValidation,
	KindCompiler:              ErrCompiler,
	KindTransform:             ErrTransform,
	KindOptimization:          ErrOptimization,
	KindWrite:                 ErrWrite,
}

// Error is returned by Pipeline.Compile for every failure.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var pe *Error
	if stderrors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}

// fail builds a *Error, attaching hint for the user when non-empty.
func fail(kind Kind, op string, err error, hint string) error {
	var out error = &Error{Kind: kind, Op: op, Err: err}
	if hint != "" {
		out = errors.WithHint(out, hint)
	}
	return out
}

// Hints returns the user-facing hints attached to err.
func Hints(err error) []string {
	return errors.GetAllHints(err)
}

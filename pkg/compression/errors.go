package compression

import "errors"

// Kind classifies the failures surfaced by compression and decompression.
type Kind int

const (
	Other Kind = iota
	InvalidLevel
	UnknownType
	UnreachableTarget
	SourceDoesNotExist
)

var kindMessages = map[Kind]string{
	Other:              "",
	InvalidLevel:       "compression level is not valid for this algorithm",
	UnknownType:        "compression algorithm is not recognized",
	UnreachableTarget:  "target is not reachable",
	SourceDoesNotExist: "source does not exist",
}

func (k Kind) String() string {
	switch k {
	case InvalidLevel:
		return "InvalidLevel"
	case UnknownType:
		return "UnknownType"
	case UnreachableTarget:
		return "UnreachableTarget"
	case SourceDoesNotExist:
		return "SourceDoesNotExist"
	default:
		return "Other"
	}
}

// Sentinels for errors.Is; they match any *Error of the same kind.
var (
	ErrInvalidLevel       = &Error{Kind: InvalidLevel}
	ErrUnknownType        = &Error{Kind: UnknownType}
	ErrUnreachableTarget  = &Error{Kind: UnreachableTarget}
	ErrSourceDoesNotExist = &Error{Kind: SourceDoesNotExist}
)

// Error is the error type returned by the archiving operations.
type Error struct {
	Kind Kind
	Err  error
}

// Wrap returns err as an *Error of kind Other, unless it already carries a kind.
func Wrap(err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: Other, Err: err}
}

func (e *Error) Error() string {
	msg := kindMessages[e.Kind]
	switch {
	case msg == "" && e.Err != nil:
		msg = e.Err.Error()
	case msg == "":
		msg = "unknown failure"
	case e.Err != nil:
		msg += ": " + e.Err.Error()
	}
	return "compression error: " + msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or Other.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Other
}

package hashcore

import "github.com/pkg/errors"

// Sentinel error kinds, matched with errors.Is by callers.
var (
	// ErrInvalidArgument is returned for programmer errors such as
	// NextToken(InvalidToken).
	ErrInvalidArgument = errors.New("hashcore: invalid argument")

	// ErrIndexOutOfRange names the out-of-bounds error kind. No function in
	// this module returns it: the bounds checks in pkg/bitvec, pkg/packedvec
	// and pkg/nullseq panic with their own error values instead.
	ErrIndexOutOfRange = errors.New("hashcore: index out of range")

	// ErrConcurrentModification is returned when a safe-iteration call
	// observes a version mismatch against the token it was handed.
	ErrConcurrentModification = errors.New("hashcore: concurrent modification")

	// ErrCorruptState indicates a violated internal invariant — a bug in
	// this package, not a user error. It is raised via panic, never
	// returned, since there is no sane recovery from it.
	ErrCorruptState = errors.New("hashcore: corrupt state")
)

func corrupt(format string, args ...interface{}) {
	panic(errors.Wrapf(ErrCorruptState, format, args...))
}

package simplefs

import "fmt"

// Error is implemented by every error simplefs returns from its core
// operations. It extends the standard error interface with the two
// combinators the rest of the package uses to add context without losing the
// ability to test against a sentinel with errors.Is.
type Error interface {
	error
	// WithMessage returns a new Error with extra context appended to the
	// message. The returned error still unwraps to the receiver.
	WithMessage(message string) Error
	// WrapError returns a new Error whose message mentions err, and which
	// unwraps to err instead of the receiver.
	WrapError(err error) Error
	Unwrap() error
}

type taggedError struct {
	message string
	cause   error
}

func (e *taggedError) Error() string { return e.message }
func (e *taggedError) Unwrap() error { return e.cause }

func (e *taggedError) WithMessage(message string) Error {
	return &taggedError{
		message: fmt.Sprintf("%s: %s", e.message, message),
		cause:   e,
	}
}

func (e *taggedError) WrapError(err error) Error {
	return &taggedError{
		message: fmt.Sprintf("%s: %s", e.message, err.Error()),
		cause:   err,
	}
}

// The six-entry error taxonomy from the filesystem's error handling design.
// Core operations report these, optionally dressed up with WithMessage.
// Compare against them with errors.Is rather than ==. An error built with
// WrapError unwraps to its cause instead, so it does not match its sentinel
// under errors.Is.
var (
	// ErrDiskIO means a block read or write did not transfer exactly
	// BlockSize bytes.
	ErrDiskIO Error = &taggedError{message: "disk I/O did not transfer a full block"}

	// ErrSanity means a precondition the caller is responsible for was
	// violated: a closed or nil disk, an out-of-range block number, a
	// mount/unmount called out of turn, and so on.
	ErrSanity Error = &taggedError{message: "sanity check failed"}

	// ErrFormat means the superblock's magic number didn't match on mount.
	ErrFormat Error = &taggedError{message: "not a simplefs image: magic number mismatch"}

	// ErrNoSpace means there was no free inode to satisfy Create, or no free
	// data block to satisfy a Write allocation.
	ErrNoSpace Error = &taggedError{message: "no space left on device"}

	// ErrInvalidInode means the operation referenced an inode slot that is
	// out of range or not currently valid.
	ErrInvalidInode Error = &taggedError{message: "invalid inode"}

	// ErrCorruption means an on-disk structure violated an invariant the
	// filesystem relies on, such as a zero pointer inside a file's live size
	// range.
	ErrCorruption Error = &taggedError{message: "filesystem corruption detected"}
)

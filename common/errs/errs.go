package errs

// ErrorKind identifies a kind of internal error.
// fully support for errors.Is and errors.As.
type ErrorKind string

const (
	// NotFound is returned when a requested item is not found.
	NotFound = ErrorKind("Not Found")

	// InvalidArgument is returned when the given argument is malformed.
	InvalidArgument = ErrorKind("Invalid Argument")

	// Unsupported is returned when a configured option or feature is not supported.
	Unsupported = ErrorKind("Unsupported")

	// NotSupported is returned when a script or document shape can't be handled.
	NotSupported = ErrorKind("Not Supported")

	// Conflict is returned when a compare-and-set lost against a concurrent writer.
	Conflict = ErrorKind("Conflict")

	// ConflictSetting is returned when the stored state doesn't match the configuration.
	ConflictSetting = ErrorKind("Conflict Setting")

	Timeout            = ErrorKind("Timeout")
	InternalError      = ErrorKind("Internal Error")
	SomethingWentWrong = ErrorKind("Something Went Wrong")
)

// Error satisfies the error interface and prints human-readable errors.
func (e ErrorKind) Error() string {
	return string(e)
}

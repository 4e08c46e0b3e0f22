package apperrors

// Code tags an error crossing the core/presentation boundary.
type Code string

const (
	CodeUnknown         Code = "UNKNOWN"
	CodeInvalidInput    Code = "INVALID_INPUT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeAlreadyExists   Code = "ALREADY_EXISTS"
	CodeForbidden       Code = "FORBIDDEN"
	CodePolicyDenied    Code = "POLICY_DENIED"
	CodeSelfReference   Code = "SELF_REFERENCE"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeStorageFailure  Code = "STORAGE_FAILURE"
	CodeInternal        Code = "INTERNAL"
)

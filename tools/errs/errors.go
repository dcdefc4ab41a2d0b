package errs

// Error codes are grouped by concern: 10xx request validation,
// 11xx domain state, 12xx infrastructure.
var (
	ErrArgs             = NewCodeError(1001, "invalid argument")
	ErrSelfTarget       = NewCodeError(1002, "cannot target yourself")
	ErrUsernameTaken    = NewCodeError(1003, "username already exists")
	ErrUsernameInvalid  = NewCodeError(1004, "username not allowed")
	ErrBadCredentials   = NewCodeError(1005, "invalid username or password")
	ErrTokenInvalid     = NewCodeError(1006, "invalid or expired token")
	ErrDuplicateRequest = NewCodeError(1101, "friend request already sent")
	ErrNotFound         = NewCodeError(1102, "record not found")
	ErrPersistence      = NewCodeError(1201, "persistence unavailable")
	ErrRelay            = NewCodeError(1202, "relay unavailable")
)

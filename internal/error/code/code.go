package code

// HTTP status codes.
const (
	// StatusOK - 200: success.
	StatusOK = 200
	// StatusBadRequest - 400: invalid request parameters.
	StatusBadRequest = 400
	// StatusUnauthorized - 401: unauthorized.
	StatusUnauthorized = 401
	// StatusForbidden - 403: forbidden.
	StatusForbidden = 403
	// StatusNotFound - 404: resource not found.
	StatusNotFound = 404
	// StatusConflict - 409: conflicting update.
	StatusConflict = 409
	// StatusInternalServerError - 500: internal server error.
	StatusInternalServerError = 500
	// StatusTooManyRequests - 429: too many requests.
	StatusTooManyRequests = 429
)

// Generic error codes (100xxx).
const (
	// ErrSuccess - 200: success.
	ErrSuccess int = iota + 100000
	// ErrUnknown - 500: unknown error.
	ErrUnknown
	// ErrBind - 400: request parameter binding error.
	ErrBind
	// ErrValidation - 400: request parameter validation error.
	ErrValidation
	// ErrTokenInvalid - 401: authentication required or token invalid.
	ErrTokenInvalid
	// ErrTokenExpired - 401: token expired, session ended.
	ErrTokenExpired
	// ErrTooManyRequests - 429: request rate too high.
	ErrTooManyRequests
)

// User related error codes (101xxx).
const (
	// ErrUserNotFound - 404: user not found.
	ErrUserNotFound int = iota + 101000
	// ErrUserAlreadyExist - 400: user already exists.
	ErrUserAlreadyExist
	// ErrUserPasswordIncorrect - 401: incorrect email or password.
	ErrUserPasswordIncorrect
)

// Convert related error codes (102xxx).
const (
	// ErrConvertNotFound - 404: convert not found.
	ErrConvertNotFound int = iota + 102000
	// ErrInvalidStageTransition - 400: stage transition not allowed.
	ErrInvalidStageTransition
	// ErrStageConflict - 409: convert stage changed concurrently.
	ErrStageConflict
)

// Alert related error codes (103xxx).
const (
	// ErrAlertNotFound - 404: alert not found.
	ErrAlertNotFound int = iota + 103000
	// ErrInvalidAlertTransition - 400: alert status transition not allowed.
	ErrInvalidAlertTransition
	// ErrDuplicateOpenAlert - 409: an open alert already exists for this rule.
	ErrDuplicateOpenAlert
)

// Voice call related error codes (104xxx).
const (
	// ErrCallNotFound - 404: voice call not found.
	ErrCallNotFound int = iota + 104000
	// ErrCallInvalidState - 400: call is not in a state that allows the operation.
	ErrCallInvalidState
	// ErrScriptNotFound - 404: call script not found.
	ErrScriptNotFound
)

// Storage related error codes (105xxx).
const (
	// ErrDatabase - 500: database error.
	ErrDatabase int = iota + 105000
	// ErrRecordNotFound - 404: record not found.
	ErrRecordNotFound
	// ErrTransientStorage - 500: storage failed after retries.
	ErrTransientStorage
)

package code

// messages maps error codes to their default human-readable message
var messages = map[int]string{
	ErrSuccess:         "success",
	ErrUnknown:         "internal server error",
	ErrBind:            "request parameter binding error",
	ErrValidation:      "request parameter validation error",
	ErrTokenInvalid:    "authentication required",
	ErrTokenExpired:    "session expired, please log in again",
	ErrTooManyRequests: "request rate too high, please retry later",

	ErrUserNotFound:          "user not found",
	ErrUserAlreadyExist:      "user already exists",
	ErrUserPasswordIncorrect: "incorrect email or password",

	ErrConvertNotFound:        "convert not found",
	ErrInvalidStageTransition: "stage transition not allowed",
	ErrStageConflict:          "convert stage changed concurrently",

	ErrAlertNotFound:          "alert not found",
	ErrInvalidAlertTransition: "alert status transition not allowed",
	ErrDuplicateOpenAlert:     "an open alert already exists for this rule",

	ErrCallNotFound:     "voice call not found",
	ErrCallInvalidState: "call state does not allow this operation",
	ErrScriptNotFound:   "call script not found",

	ErrDatabase:         "database error",
	ErrRecordNotFound:   "record not found",
	ErrTransientStorage: "storage temporarily unavailable",
}

// statuses maps error codes to their HTTP status
var statuses = map[int]int{
	ErrSuccess:         StatusOK,
	ErrUnknown:         StatusInternalServerError,
	ErrBind:            StatusBadRequest,
	ErrValidation:      StatusBadRequest,
	ErrTokenInvalid:    StatusUnauthorized,
	ErrTokenExpired:    StatusUnauthorized,
	ErrTooManyRequests: StatusTooManyRequests,

	ErrUserNotFound:          StatusNotFound,
	ErrUserAlreadyExist:      StatusBadRequest,
	ErrUserPasswordIncorrect: StatusUnauthorized,

	ErrConvertNotFound:        StatusNotFound,
	ErrInvalidStageTransition: StatusBadRequest,
	ErrStageConflict:          StatusConflict,

	ErrAlertNotFound:          StatusNotFound,
	ErrInvalidAlertTransition: StatusBadRequest,
	ErrDuplicateOpenAlert:     StatusConflict,

	ErrCallNotFound:     StatusNotFound,
	ErrCallInvalidState: StatusBadRequest,
	ErrScriptNotFound:   StatusNotFound,

	ErrDatabase:         StatusInternalServerError,
	ErrRecordNotFound:   StatusNotFound,
	ErrTransientStorage: StatusInternalServerError,
}

// GetMessage returns the default message for an error code
func GetMessage(errorCode int) string {
	if msg, ok := messages[errorCode]; ok {
		return msg
	}
	return messages[ErrUnknown]
}

// GetStatus returns the HTTP status for an error code
func GetStatus(errorCode int) int {
	if status, ok := statuses[errorCode]; ok {
		return status
	}
	return StatusInternalServerError
}
